package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrompts_ChatSubstitution(t *testing.T) {
	p := Prompts{BotName: "Kodiak", AccountName: "Acme"}

	out := p.Chat("User: hi\nKodiak: hello", "how are you?")

	assert.Contains(t, out, "You are Kodiak")
	assert.Contains(t, out, "Acme account")
	assert.Contains(t, out, "User: hi\nKodiak: hello")
	assert.Contains(t, out, "how are you?")
	assert.False(t, strings.Contains(out, "{bot_name}"))
	assert.False(t, strings.Contains(out, "{chat_history}"))
}

func TestPrompts_KnowledgeSubstitution(t *testing.T) {
	p := Prompts{BotName: "Kodiak", AccountName: "Acme"}

	out := p.Knowledge("no history", "recent block", "context block", "the question")

	assert.Contains(t, out, "recent block")
	assert.Contains(t, out, "context block")
	assert.Contains(t, out, "the question")
	assert.False(t, strings.Contains(out, "{context}"))
	assert.False(t, strings.Contains(out, "{recent_meetings}"))
	assert.False(t, strings.Contains(out, "{question}"))
}

func TestPrompts_ClassifyQuotesQuery(t *testing.T) {
	p := Prompts{BotName: "Kodiak", AccountName: "Acme"}

	out := p.Classify("find the contract")

	assert.Contains(t, out, `Query: "find the contract"`)
	assert.Contains(t, out, `"SEARCH" or "CHAT"`)
}
