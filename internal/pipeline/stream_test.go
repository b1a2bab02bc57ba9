package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/vaultmind/vault-agent/internal/bedrock"
	"github.com/vaultmind/vault-agent/internal/config"
	"github.com/vaultmind/vault-agent/internal/pipeline/mocks"
)

func collectEvents(events *[]Event) EmitFunc {
	return func(e Event) error {
		*events = append(*events, e)
		return nil
	}
}

func streamingGenerator(fragments []string) func(ctx context.Context, req bedrock.ClaudeRequest, cb bedrock.StreamCallback) (*bedrock.ClaudeResponse, error) {
	return func(ctx context.Context, req bedrock.ClaudeRequest, cb bedrock.StreamCallback) (*bedrock.ClaudeResponse, error) {
		var full string
		for _, f := range fragments {
			if err := cb(f); err != nil {
				return nil, err
			}
			full += f
		}
		return &bedrock.ClaudeResponse{Content: full, StopReason: "end_turn"}, nil
	}
}

func TestExecuteStream_ForwardsFragmentsThenMetadata(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	access := mocks.NewMockAccessResolver(ctrl)
	retriever := mocks.NewMockChunkRetriever(ctrl)
	generator := mocks.NewMockGenerator(ctrl)

	access.EXPECT().ResolveAccessibleDocuments(gomock.Any(), "user-1", 2, false).Return([]string{"d1", "d2", "d3"}, nil)
	retriever.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any(), 10).Return(strongChunks())
	generator.EXPECT().InvokeModelStream(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(streamingGenerator([]string{"Refunds are accepted ", "within 30 days ", "[1][2][3]."}))
	generator.EXPECT().ModelID().Return("claude-3").AnyTimes()

	p := New(access, retriever, generator, &captureSink{}, config.DefaultPolicy())

	var events []Event
	if err := p.ExecuteStream(context.Background(), testInput(), collectEvents(&events)); err != nil {
		t.Fatalf("ExecuteStream failed: %v", err)
	}

	if len(events) != 4 {
		t.Fatalf("expected 3 fragments plus 1 metadata event, got %d events", len(events))
	}
	for i, fragment := range []string{"Refunds are accepted ", "within 30 days ", "[1][2][3]."} {
		if events[i].Type != EventFragment || events[i].Fragment != fragment {
			t.Errorf("event %d: expected fragment %q, got %+v", i, fragment, events[i])
		}
	}

	last := events[len(events)-1]
	if last.Type != EventMetadata {
		t.Fatalf("expected trailing metadata event, got %s", last.Type)
	}
	if last.Result.Outcome != OutcomeAnswered {
		t.Errorf("expected answered outcome, got %s", last.Result.Outcome)
	}
	if last.Result.Answer != "Refunds are accepted within 30 days [1][2][3]." {
		t.Errorf("metadata must carry the assembled answer, got %q", last.Result.Answer)
	}
	if len(last.Result.Citations) != 3 {
		t.Errorf("expected 3 citations in metadata, got %d", len(last.Result.Citations))
	}
}

func TestExecuteStream_NoEvidenceEmitsOnlyMetadata(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	access := mocks.NewMockAccessResolver(ctrl)
	retriever := mocks.NewMockChunkRetriever(ctrl)
	generator := mocks.NewMockGenerator(ctrl)

	access.EXPECT().ResolveAccessibleDocuments(gomock.Any(), "user-1", 2, false).Return([]string{"d1"}, nil)
	retriever.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any(), 10).Return(nil)
	generator.EXPECT().ModelID().Return("claude-3").AnyTimes()

	p := New(access, retriever, generator, &captureSink{}, config.DefaultPolicy())

	var events []Event
	if err := p.ExecuteStream(context.Background(), testInput(), collectEvents(&events)); err != nil {
		t.Fatalf("ExecuteStream failed: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected exactly 1 metadata event, got %d", len(events))
	}
	if events[0].Type != EventMetadata || events[0].Result.Outcome != OutcomeNoEvidence {
		t.Errorf("expected no-evidence metadata event, got %+v", events[0])
	}
}

func TestExecuteStream_EmptyVaultStreamsDirectAnswer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	access := mocks.NewMockAccessResolver(ctrl)
	retriever := mocks.NewMockChunkRetriever(ctrl)
	generator := mocks.NewMockGenerator(ctrl)

	access.EXPECT().ResolveAccessibleDocuments(gomock.Any(), "user-1", 2, false).Return(nil, nil)
	generator.EXPECT().InvokeModelStream(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(streamingGenerator([]string{"Happy to chat!"}))
	generator.EXPECT().ModelID().Return("claude-3").AnyTimes()

	p := New(access, retriever, generator, &captureSink{}, config.DefaultPolicy())

	var events []Event
	if err := p.ExecuteStream(context.Background(), testInput(), collectEvents(&events)); err != nil {
		t.Fatalf("ExecuteStream failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 1 fragment plus 1 metadata event, got %d", len(events))
	}
	if events[1].Result.Outcome != OutcomeEmptyVault {
		t.Errorf("expected empty vault outcome, got %s", events[1].Result.Outcome)
	}
	if events[1].Result.Confidence.Overall != 0.95 {
		t.Errorf("expected fixed confidence 0.95, got %.2f", events[1].Result.Confidence.Overall)
	}
}

func TestExecuteStream_EmitErrorStopsStream(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	access := mocks.NewMockAccessResolver(ctrl)
	retriever := mocks.NewMockChunkRetriever(ctrl)
	generator := mocks.NewMockGenerator(ctrl)

	access.EXPECT().ResolveAccessibleDocuments(gomock.Any(), "user-1", 2, false).Return([]string{"d1"}, nil)
	retriever.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any(), 10).Return(strongChunks())
	generator.EXPECT().InvokeModelStream(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(streamingGenerator([]string{"one ", "two ", "three"}))
	generator.EXPECT().ModelID().Return("claude-3").AnyTimes()

	p := New(access, retriever, generator, &captureSink{}, config.DefaultPolicy())

	clientGone := errors.New("client disconnected")
	var events []Event
	err := p.ExecuteStream(context.Background(), testInput(), func(e Event) error {
		events = append(events, e)
		if len(events) == 1 {
			return clientGone
		}
		return nil
	})

	if !errors.Is(err, clientGone) {
		t.Fatalf("expected emit error to propagate, got %v", err)
	}
	for _, e := range events {
		if e.Type == EventMetadata {
			t.Error("no metadata event may follow a failed emit")
		}
	}
}

func TestExecuteStream_CancelledContextEmitsNoMetadata(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	access := mocks.NewMockAccessResolver(ctrl)
	retriever := mocks.NewMockChunkRetriever(ctrl)
	generator := mocks.NewMockGenerator(ctrl)

	ctx, cancel := context.WithCancel(context.Background())

	access.EXPECT().ResolveAccessibleDocuments(gomock.Any(), "user-1", 2, false).Return([]string{"d1"}, nil)
	retriever.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any(), 10).Return(strongChunks())
	generator.EXPECT().InvokeModelStream(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req bedrock.ClaudeRequest, cb bedrock.StreamCallback) (*bedrock.ClaudeResponse, error) {
			if err := cb("partial "); err != nil {
				return nil, err
			}
			cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		})
	generator.EXPECT().ModelID().Return("claude-3").AnyTimes()

	p := New(access, retriever, generator, &captureSink{}, config.DefaultPolicy())

	var events []Event
	err := p.ExecuteStream(ctx, testInput(), collectEvents(&events))

	if err == nil {
		t.Fatal("expected a cancelled stream to return an error")
	}
	for _, e := range events {
		if e.Type == EventMetadata {
			t.Error("no metadata event may be emitted for a cancelled run")
		}
	}
}

func TestExecuteStream_GenerationFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	access := mocks.NewMockAccessResolver(ctrl)
	retriever := mocks.NewMockChunkRetriever(ctrl)
	generator := mocks.NewMockGenerator(ctrl)

	access.EXPECT().ResolveAccessibleDocuments(gomock.Any(), "user-1", 2, false).Return([]string{"d1"}, nil)
	retriever.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any(), 10).Return(strongChunks())
	generator.EXPECT().InvokeModelStream(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("model unavailable"))
	generator.EXPECT().ModelID().Return("claude-3").AnyTimes()

	p := New(access, retriever, generator, &captureSink{}, config.DefaultPolicy())

	var events []Event
	err := p.ExecuteStream(context.Background(), testInput(), collectEvents(&events))
	if err == nil {
		t.Fatal("expected generation failure to propagate")
	}
	if !strings.Contains(err.Error(), "generation failed") {
		t.Errorf("expected wrapped generation error, got %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events on generation failure, got %d", len(events))
	}
}

func TestExecuteStream_EmptyVaultGenerationFailureWraps(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	access := mocks.NewMockAccessResolver(ctrl)
	retriever := mocks.NewMockChunkRetriever(ctrl)
	generator := mocks.NewMockGenerator(ctrl)

	access.EXPECT().ResolveAccessibleDocuments(gomock.Any(), "user-1", 2, false).Return(nil, nil)
	generator.EXPECT().InvokeModelStream(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("model unavailable"))
	generator.EXPECT().ModelID().Return("claude-3").AnyTimes()

	p := New(access, retriever, generator, &captureSink{}, config.DefaultPolicy())

	var events []Event
	err := p.ExecuteStream(context.Background(), testInput(), collectEvents(&events))
	if err == nil {
		t.Fatal("expected generation failure to propagate")
	}
	if !strings.Contains(err.Error(), "generation failed") {
		t.Errorf("expected the same wrapped error surface as the blocking path, got %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events on generation failure, got %d", len(events))
	}
}
