package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KodiakAI/kodiak/services/assistant/conversation"
	"github.com/KodiakAI/kodiak/services/assistant/datatypes"
	"github.com/KodiakAI/kodiak/services/assistant/rag"
	"github.com/KodiakAI/kodiak/services/llm"
)

// =============================================================================
// Test Helpers
// =============================================================================

type fakeRetriever struct {
	mu       sync.Mutex
	docs     []datatypes.RetrievedRecord
	meetings []datatypes.RetrievedRecord
	calls    int
}

func (f *fakeRetriever) SearchBoth(ctx context.Context, query string, limit int) ([]datatypes.RetrievedRecord, []datatypes.RetrievedRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.docs, f.meetings
}

type fakeRecency struct {
	text string
}

func (f *fakeRecency) RecentMeetings(ctx context.Context) string {
	return f.text
}

func staticLLM(response string, err error) llm.GenerateFunc {
	return func(ctx context.Context, prompt string, params llm.GenerationParams) (string, error) {
		return response, err
	}
}

func capturingLLM(response string, captured *string) llm.GenerateFunc {
	return func(ctx context.Context, prompt string, params llm.GenerationParams) (string, error) {
		*captured = prompt
		return response, nil
	}
}

type serviceFixture struct {
	service   *ChatService
	store     *conversation.Store
	retriever *fakeRetriever
}

// newFixture wires a ChatService with a scripted classifier verdict,
// expander output, synthesis behavior, and canned retrieval results.
func newFixture(t *testing.T, verdict string, expansion string, synth llm.LLMClient, retriever *fakeRetriever) *serviceFixture {
	t.Helper()

	prompts := rag.Prompts{BotName: "Kodiak", AccountName: "Acme"}
	store := conversation.NewStore(conversation.MemoryConfig{Window: 6, BotName: "Kodiak"})

	svc := NewChatService(
		store,
		rag.NewClassifier(staticLLM(verdict, nil), prompts),
		rag.NewExpander(staticLLM(expansion, nil), prompts),
		rag.NewAggregator(retriever),
		&fakeRecency{text: "Here are the most recent meetings recorded (use these for chronological context):\n- **2025-08-01**: Weekly Sync (URL: https://m.example/1)"},
		synth,
		prompts,
		nil,
	)

	return &serviceFixture{service: svc, store: store, retriever: retriever}
}

func request(query string) *datatypes.ChatRequest {
	req := &datatypes.ChatRequest{Query: query}
	req.EnsureDefaults()
	return req
}

// =============================================================================
// CHAT Path
// =============================================================================

func TestProcess_ChatPathSkipsRetrieval(t *testing.T) {
	retriever := &fakeRetriever{}
	fx := newFixture(t, "CHAT", "unused", staticLLM("Hi! How can I help?", nil), retriever)

	resp, err := fx.service.Process(context.Background(), request("hello"))

	require.NoError(t, err)
	assert.Equal(t, "Hi! How can I help?", resp.Answer)
	assert.NotNil(t, resp.Sources)
	assert.Empty(t, resp.Sources)
	assert.Equal(t, datatypes.ConfidenceHigh, resp.Confidence)
	assert.Zero(t, retriever.calls, "CHAT queries must not touch the retriever")
}

func TestProcess_ChatPathSavesMemory(t *testing.T) {
	fx := newFixture(t, "CHAT", "", staticLLM("the answer", nil), &fakeRetriever{})

	_, err := fx.service.Process(context.Background(), request("hello"))

	require.NoError(t, err)
	assert.Equal(t, 1, fx.store.Len(datatypes.DefaultConversationId))
	assert.Contains(t, fx.store.Render(datatypes.DefaultConversationId), "the answer")
}

func TestProcess_ChatPathSynthesisFailure(t *testing.T) {
	fx := newFixture(t, "CHAT", "", staticLLM("", errors.New("backend down")), &fakeRetriever{})

	_, err := fx.service.Process(context.Background(), request("hello"))

	require.Error(t, err)
	assert.True(t, IsSynthesisError(err))
	assert.Zero(t, fx.store.Len(datatypes.DefaultConversationId), "failed requests must not touch memory")
}

// =============================================================================
// SEARCH Path
// =============================================================================

func TestProcess_SearchPathFullPipeline(t *testing.T) {
	retriever := &fakeRetriever{
		docs: []datatypes.RetrievedRecord{
			{Id: "d1", Content: "the contract terms", Similarity: 0.85, Document: &datatypes.DocumentMeta{Title: "Contract"}},
		},
		meetings: []datatypes.RetrievedRecord{
			{Id: "m1", Content: "we agreed on terms", Similarity: 0.8, Meeting: &datatypes.MeetingMeta{MeetingTitle: "Negotiation Call"}},
		},
	}
	var prompt string
	fx := newFixture(t, "SEARCH", "variant one\nvariant two", capturingLLM("grounded answer", &prompt), retriever)

	resp, err := fx.service.Process(context.Background(), request("what are the contract terms?"))

	require.NoError(t, err)
	assert.Equal(t, "grounded answer", resp.Answer)
	assert.Len(t, resp.Sources, 2)
	assert.Equal(t, datatypes.ConfidenceHigh, resp.Confidence)
	// Primary query plus two variants, each one retriever call.
	assert.Equal(t, 3, retriever.calls)

	// The synthesis prompt carries all four context blocks.
	assert.Contains(t, prompt, conversation.NoHistory)
	assert.Contains(t, prompt, "the contract terms")
	assert.Contains(t, prompt, "Weekly Sync")
	assert.Contains(t, prompt, "what are the contract terms?")
}

func TestProcess_SearchPathEmptyRetrieval(t *testing.T) {
	var prompt string
	fx := newFixture(t, "SEARCH", "", capturingLLM("nothing found answer", &prompt), &fakeRetriever{})

	resp, err := fx.service.Process(context.Background(), request("unknown topic"))

	require.NoError(t, err)
	assert.Contains(t, prompt, NoRelevantContext)
	assert.Empty(t, resp.Sources)
	assert.Equal(t, datatypes.ConfidenceLow, resp.Confidence)
}

func TestProcess_SearchPathBelowFloorRetrieval(t *testing.T) {
	// Records exist but none clears the similarity floor, so the context
	// falls back to the sentinel and confidence is low.
	retriever := &fakeRetriever{
		docs: []datatypes.RetrievedRecord{
			{Id: "d1", Content: "weak match", Similarity: 0.1, Document: &datatypes.DocumentMeta{Title: "T"}},
		},
	}
	var prompt string
	fx := newFixture(t, "SEARCH", "", capturingLLM("answer", &prompt), retriever)

	resp, err := fx.service.Process(context.Background(), request("q"))

	require.NoError(t, err)
	assert.Contains(t, prompt, NoRelevantContext)
	assert.NotContains(t, prompt, "weak match")
	assert.Equal(t, datatypes.ConfidenceLow, resp.Confidence)
}

func TestProcess_SearchPathSynthesisFailure(t *testing.T) {
	llmErr := errors.New("LLM unavailable")
	fx := newFixture(t, "SEARCH", "", staticLLM("", llmErr), &fakeRetriever{})

	_, err := fx.service.Process(context.Background(), request("q"))

	require.Error(t, err)
	assert.True(t, IsSynthesisError(err))
	assert.ErrorIs(t, err, llmErr)
	assert.Zero(t, fx.store.Len(datatypes.DefaultConversationId))
}

// =============================================================================
// Memory Round-Trip
// =============================================================================

func TestProcess_HistoryCarriesIntoNextRequest(t *testing.T) {
	var prompt string
	fx := newFixture(t, "SEARCH", "", capturingLLM("first answer", &prompt), &fakeRetriever{})

	_, err := fx.service.Process(context.Background(), request("first question"))
	require.NoError(t, err)

	_, err = fx.service.Process(context.Background(), request("follow-up"))
	require.NoError(t, err)

	assert.Contains(t, prompt, "User: first question")
	assert.Contains(t, prompt, "Kodiak: first answer")
	assert.False(t, strings.Contains(prompt, conversation.NoHistory))
}

func TestProcess_ConversationsIsolated(t *testing.T) {
	var prompt string
	fx := newFixture(t, "CHAT", "", capturingLLM("answer", &prompt), &fakeRetriever{})

	reqA := &datatypes.ChatRequest{Query: "alpha question", ConversationId: "a"}
	reqB := &datatypes.ChatRequest{Query: "beta question", ConversationId: "b"}

	_, err := fx.service.Process(context.Background(), reqA)
	require.NoError(t, err)
	_, err = fx.service.Process(context.Background(), reqB)
	require.NoError(t, err)

	// The second request's history must not contain the first conversation.
	assert.Contains(t, prompt, conversation.NoHistory)
	assert.NotContains(t, prompt, "alpha question")
}
