package pipeline

import (
	"fmt"
	"strings"

	"github.com/vaultmind/vault-agent/internal/bedrock"
	"github.com/vaultmind/vault-agent/internal/conversation"
	"github.com/vaultmind/vault-agent/internal/retrieval"
)

const defaultSystemPrompt = `You are a careful assistant that answers questions using only the provided document excerpts.
Cite every excerpt you rely on with a bracketed marker like [1] or [2], matching the excerpt numbering.
If the excerpts do not contain the answer, say so plainly instead of guessing.`

const emptyVaultContext = `The user's document vault is currently empty, so there are no documents to ground answers in.
Answer conversationally from general knowledge, and mention that uploading documents will let you give grounded, cited answers.`

const defaultMaxTokens = 2000

// Conversation turns included in the prompt are capped; older turns add cost
// without adding grounding.
const maxHistoryMessages = 10

func (p *Pipeline) buildGenerateRequest(in QueryInput, chunks []retrieval.RetrievedChunk) bedrock.ClaudeRequest {
	system := in.SystemPrompt
	if system == "" {
		system = defaultSystemPrompt
	}

	var sb strings.Builder
	sb.WriteString("Relevant excerpts from the user's documents:\n<context>\n")
	for i, chunk := range chunks {
		sb.WriteString(fmt.Sprintf("[%d] %s (relevance: %.2f)\n%s\n\n", i+1, chunk.DocumentName, chunk.Similarity, chunk.Content))
	}
	sb.WriteString("</context>\n\nCurrent question: ")
	sb.WriteString(in.Query)

	return bedrock.ClaudeRequest{
		System:      system,
		Messages:    appendUserTurn(historyMessages(in.History), sb.String()),
		MaxTokens:   maxTokensOrDefault(in.MaxTokens),
		Temperature: in.Temperature,
	}
}

// buildDirectRequest builds the empty-vault direct-chat request: no context
// block, just a system note that the vault is empty.
func (p *Pipeline) buildDirectRequest(in QueryInput) bedrock.ClaudeRequest {
	system := in.SystemPrompt
	if system == "" {
		system = defaultSystemPrompt
	}
	system = system + "\n\n" + emptyVaultContext

	return bedrock.ClaudeRequest{
		System:      system,
		Messages:    appendUserTurn(historyMessages(in.History), in.Query),
		MaxTokens:   maxTokensOrDefault(in.MaxTokens),
		Temperature: in.Temperature,
	}
}

func historyMessages(history []conversation.Message) []bedrock.Message {
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}

	messages := make([]bedrock.Message, 0, len(history)+1)
	for _, msg := range history {
		messages = append(messages, bedrock.Message{Role: msg.Role, Content: msg.Content})
	}
	return messages
}

func appendUserTurn(messages []bedrock.Message, content string) []bedrock.Message {
	return append(messages, bedrock.Message{Role: "user", Content: content})
}

func maxTokensOrDefault(maxTokens int) int {
	if maxTokens <= 0 {
		return defaultMaxTokens
	}
	return maxTokens
}
