package bedrock

import (
	"strings"
	"testing"
)

func TestParseStreamChunk(t *testing.T) {
	tests := []struct {
		name           string
		data           string
		wantOk         bool
		wantTexts      []string
		wantStopReason string
	}{
		{
			name:      "delta text",
			data:      `{"type":"content_block_delta","delta":{"type":"text_delta","text":"Hello "}}`,
			wantOk:    true,
			wantTexts: []string{"Hello "},
		},
		{
			name:      "content block start text",
			data:      `{"type":"content_block_start","content_block":{"type":"text","text":"Hi"}}`,
			wantOk:    true,
			wantTexts: []string{"Hi"},
		},
		{
			name:           "message stop reason",
			data:           `{"type":"message_delta","message":{"stop_reason":"end_turn"}}`,
			wantOk:         true,
			wantStopReason: "end_turn",
		},
		{
			name:   "ping frame with no text",
			data:   `{"type":"ping"}`,
			wantOk: true,
		},
		{
			name:   "truncated frame",
			data:   `{"delta":{"te`,
			wantOk: false,
		},
		{
			name:   "garbage frame",
			data:   `not json at all`,
			wantOk: false,
		},
		{
			name:   "empty frame",
			data:   ``,
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk, ok := parseStreamChunk([]byte(tt.data))
			if ok != tt.wantOk {
				t.Fatalf("parseStreamChunk ok = %v, want %v", ok, tt.wantOk)
			}
			if len(chunk.texts) != len(tt.wantTexts) {
				t.Fatalf("expected %d texts, got %v", len(tt.wantTexts), chunk.texts)
			}
			for i, text := range tt.wantTexts {
				if chunk.texts[i] != text {
					t.Errorf("text %d: expected %q, got %q", i, text, chunk.texts[i])
				}
			}
			if chunk.stopReason != tt.wantStopReason {
				t.Errorf("expected stop reason %q, got %q", tt.wantStopReason, chunk.stopReason)
			}
		})
	}
}

func TestParseStreamChunk_BadFrameOmittedFromAssembly(t *testing.T) {
	// Mirrors the stream read loop: malformed frames are dropped one at a
	// time and never abort assembly of the surrounding fragments.
	frames := []string{
		`{"delta":{"text":"Refunds are accepted "}}`,
		`{"delta":{"te`,
		`{"delta":{"text":"within 30 days."}}`,
		`{"message":{"stop_reason":"end_turn"}}`,
	}

	var full strings.Builder
	var stopReason string
	for _, frame := range frames {
		chunk, ok := parseStreamChunk([]byte(frame))
		if !ok {
			continue
		}
		for _, text := range chunk.texts {
			full.WriteString(text)
		}
		if chunk.stopReason != "" {
			stopReason = chunk.stopReason
		}
	}

	if full.String() != "Refunds are accepted within 30 days." {
		t.Errorf("bad frame corrupted assembly: %q", full.String())
	}
	if stopReason != "end_turn" {
		t.Errorf("expected stop reason end_turn, got %q", stopReason)
	}
}
