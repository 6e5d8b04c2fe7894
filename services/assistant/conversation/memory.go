// Package conversation provides in-process conversation memory for the
// assistant. Each conversation keeps a sliding window of recent exchanges
// that is rendered into the synthesis prompt for follow-up questions.
package conversation

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// NoHistory is the sentinel rendered when a conversation has no stored
// exchanges. Prompt templates rely on this exact string.
const NoHistory = "No previous conversation."

// Exchange is a single completed question/answer turn.
type Exchange struct {
	Question string
	Answer   string
}

// MemoryConfig holds configuration for the conversation memory store.
//
// # Description
//
// Window bounds how many exchanges are retained per conversation; older
// exchanges are evicted as new ones arrive. MaxConversations optionally
// bounds the number of concurrently tracked conversations with LRU
// eviction; zero means unbounded.
type MemoryConfig struct {
	// Window is the number of exchanges retained per conversation.
	// Default: 6
	Window int

	// MaxConversations bounds the number of tracked conversations.
	// 0 means unbounded. Default: 0
	MaxConversations int

	// BotName is the label used for assistant turns when rendering
	// history. Default: "Kodiak"
	BotName string
}

// DefaultMemoryConfig returns the default memory configuration.
//
// # Description
//
// Values can be overridden via environment variables:
//   - CONV_MEMORY_WINDOW (default: 6)
//   - CONV_MEMORY_MAX_CONVERSATIONS (default: 0)
//   - ASSISTANT_BOT_NAME (default: "Kodiak")
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Window:           getEnvInt("CONV_MEMORY_WINDOW", 6),
		MaxConversations: getEnvInt("CONV_MEMORY_MAX_CONVERSATIONS", 0),
		BotName:          getEnvString("ASSISTANT_BOT_NAME", "Kodiak"),
	}
}

// getEnvInt returns an environment variable as int, or defaultVal if not set/invalid.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// getEnvString returns an environment variable as string, or defaultVal if not set.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// history is the per-conversation window. Its mutex serializes appends and
// renders for that conversation only, so concurrent requests on the same
// conversation id observe a consistent window without blocking other
// conversations.
type history struct {
	mu        sync.Mutex
	exchanges []Exchange
	window    int
}

func (h *history) append(question, answer string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.exchanges = append(h.exchanges, Exchange{Question: question, Answer: answer})
	if len(h.exchanges) > h.window {
		// Copy instead of re-slicing so evicted exchanges can be collected.
		trimmed := make([]Exchange, h.window)
		copy(trimmed, h.exchanges[len(h.exchanges)-h.window:])
		h.exchanges = trimmed
	}
}

func (h *history) render(botName string) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.exchanges) == 0 {
		return NoHistory
	}

	var sb strings.Builder
	for i, ex := range h.exchanges {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "User: %s\n%s: %s", ex.Question, botName, ex.Answer)
	}
	return sb.String()
}

func (h *history) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.exchanges)
}

// Store is the in-process conversation memory.
//
// # Description
//
// Store maps conversation ids to per-conversation histories. Lookups take a
// store-level lock briefly; append and render work is serialized per
// conversation. Memory is process-local and lost on restart, which is
// acceptable for short-lived follow-up context.
//
// # Example
//
//	store := NewStore(DefaultMemoryConfig())
//	store.Append("default", "What is the rollout plan?", "The plan is...")
//	history := store.Render("default")
//
// # Thread Safety
//
// All methods are safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	config MemoryConfig

	// Exactly one of convs or cache is non-nil, chosen at construction
	// based on MaxConversations.
	convs map[string]*history
	cache *lru.Cache[string, *history]
}

// NewStore creates a conversation memory store.
//
// # Inputs
//
//   - config: Window and eviction settings. A non-positive Window falls
//     back to the default of 6.
//
// # Outputs
//
//   - *Store: Ready-to-use store.
func NewStore(config MemoryConfig) *Store {
	if config.Window <= 0 {
		config.Window = 6
	}
	if config.BotName == "" {
		config.BotName = "Kodiak"
	}

	s := &Store{config: config}
	if config.MaxConversations > 0 {
		// lru.New only errors on non-positive size, which is excluded here.
		cache, err := lru.New[string, *history](config.MaxConversations)
		if err != nil {
			panic(fmt.Sprintf("conversation: bad LRU size %d: %v", config.MaxConversations, err))
		}
		s.cache = cache
	} else {
		s.convs = make(map[string]*history)
	}
	return s
}

// getOrCreate returns the history for id, creating it on first use.
func (s *Store) getOrCreate(id string) *history {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache != nil {
		if h, ok := s.cache.Get(id); ok {
			return h
		}
		h := &history{window: s.config.Window}
		s.cache.Add(id, h)
		return h
	}

	if h, ok := s.convs[id]; ok {
		return h
	}
	h := &history{window: s.config.Window}
	s.convs[id] = h
	return h
}

// get returns the history for id without creating one.
func (s *Store) get(id string) (*history, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache != nil {
		return s.cache.Get(id)
	}
	h, ok := s.convs[id]
	return h, ok
}

// Append records a completed exchange for the conversation, evicting the
// oldest exchange once the window is full.
func (s *Store) Append(conversationID, question, answer string) {
	s.getOrCreate(conversationID).append(question, answer)
}

// Render returns the conversation's history as prompt-ready text: exchanges
// oldest first, each as a "User:" line followed by a bot line. Returns
// NoHistory for unknown or empty conversations.
func (s *Store) Render(conversationID string) string {
	h, ok := s.get(conversationID)
	if !ok {
		return NoHistory
	}
	return h.render(s.config.BotName)
}

// Len returns the number of stored exchanges for the conversation.
func (s *Store) Len(conversationID string) int {
	h, ok := s.get(conversationID)
	if !ok {
		return 0
	}
	return h.len()
}
