package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// Message is one conversation turn sent to Claude.
type Message struct {
	Role    string
	Content string
}

// ClaudeRequest is the message sent to Claude. Messages must end with the
// user turn carrying the current question.
type ClaudeRequest struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// ClaudeResponse is Claude's response
type ClaudeResponse struct {
	Content    string
	StopReason string
}

// Claude API request format (what Bedrock expects)
type claudeMessageRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxToken         int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature,omitempty"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Claude API response format (what Bedrock returns)
type claudeMessageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

var anthropic_version = "bedrock-2023-05-31"

func buildPayload(request ClaudeRequest) claudeMessageRequest {
	messages := make([]claudeMessage, 0, len(request.Messages))
	for _, msg := range request.Messages {
		messages = append(messages, claudeMessage{Role: msg.Role, Content: msg.Content})
	}

	return claudeMessageRequest{
		AnthropicVersion: anthropic_version,
		MaxToken:         request.MaxTokens,
		Temperature:      request.Temperature,
		System:           request.System,
		Messages:         messages,
	}
}

func (c *Client) InvokeModel(ctx context.Context, request ClaudeRequest) (*ClaudeResponse, error) {
	body, err := json.Marshal(buildPayload(request))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Call Bedrock
	output, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke model: %w", err)
	}

	// Parse response
	var response claudeMessageResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bedrock response: %w", err)
	}

	var content string
	if len(response.Content) > 0 {
		content = response.Content[0].Text
	}

	return &ClaudeResponse{
		Content:    content,
		StopReason: response.StopReason,
	}, nil
}

type StreamCallback func(chunk string) error

// streamChunk is the decoded payload of one response-stream frame. Claude
// interleaves delta, content_block and message events on the same stream.
type streamChunk struct {
	texts      []string
	stopReason string
}

// parseStreamChunk decodes one raw frame into its text fragments and stop
// reason. A frame that fails to decode reports ok=false so the caller can
// skip it; one truncated frame must not abort the whole stream.
func parseStreamChunk(data []byte) (streamChunk, bool) {
	var payload struct {
		Delta struct {
			Text string `json:"text"`
		} `json:"delta"`
		ContentBlock struct {
			Text string `json:"text"`
		} `json:"content_block"`
		Message struct {
			StopReason string `json:"stop_reason"`
		} `json:"message"`
	}

	if err := json.Unmarshal(data, &payload); err != nil {
		return streamChunk{}, false
	}

	var chunk streamChunk
	// Streaming text arrives as deltas; the first block can carry initial text.
	if payload.Delta.Text != "" {
		chunk.texts = append(chunk.texts, payload.Delta.Text)
	}
	if payload.ContentBlock.Text != "" {
		chunk.texts = append(chunk.texts, payload.ContentBlock.Text)
	}
	chunk.stopReason = payload.Message.StopReason

	return chunk, true
}

func (c *Client) InvokeModelStream(ctx context.Context, req ClaudeRequest, callback StreamCallback) (*ClaudeResponse, error) {
	body, err := json.Marshal(buildPayload(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := c.client.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     &c.modelID,
		Body:        body,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to invoke model stream: %w", err)
	}

	// Process the stream
	stream := output.GetStream()
	defer stream.Close()

	var fullContent strings.Builder
	var stopReason string

	// Read events from the stream
	for event := range stream.Events() {
		switch v := event.(type) {
		case *types.ResponseStreamMemberChunk:
			chunk, ok := parseStreamChunk(v.Value.Bytes)
			if !ok {
				// Just skip chunks we can't parse
				continue
			}

			for _, text := range chunk.texts {
				fullContent.WriteString(text)
				if callback != nil {
					if err := callback(text); err != nil {
						return nil, fmt.Errorf("callback error: %w", err)
					}
				}
			}

			// Capture stop reason if present
			if chunk.stopReason != "" {
				stopReason = chunk.stopReason
			}

		default:
			// Ignore other event types we don't need
			continue
		}
	}

	// Check for stream errors
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("stream error: %w", err)
	}

	return &ClaudeResponse{
		Content:    fullContent.String(),
		StopReason: stopReason,
	}, nil
}
