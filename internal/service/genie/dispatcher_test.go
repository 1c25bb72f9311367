package genie

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestSendTurnStreamingAccumulatesChunks(t *testing.T) {
	run := &stubRunner{
		stream: func(context.Context, map[string]any) (*schema.StreamReader[*schema.Message], error) {
			return schema.StreamReaderFromArray([]*schema.Message{
				schema.AssistantMessage("Tre", nil),
				schema.AssistantMessage(" desideri", nil),
			}), nil
		},
	}
	d := NewDispatcher(newStubHolder(run))

	var chunks []string
	final, err := d.SendTurnStreaming(context.Background(), "Quanti desideri posso avere?", func(accumulated string) {
		chunks = append(chunks, accumulated)
	})
	if err != nil {
		t.Fatalf("SendTurnStreaming err: %v", err)
	}

	if final != "Tre desideri" {
		t.Fatalf("unexpected final text: %q", final)
	}
	if len(chunks) != 2 || chunks[0] != "Tre" || chunks[1] != "Tre desideri" {
		t.Fatalf("unexpected chunk sequence: %v", chunks)
	}
}

func TestSendTurnStreamingEmptyStreamFallsBack(t *testing.T) {
	run := &stubRunner{
		stream: func(context.Context, map[string]any) (*schema.StreamReader[*schema.Message], error) {
			return schema.StreamReaderFromArray([]*schema.Message(nil)), nil
		},
	}
	d := NewDispatcher(newStubHolder(run))

	calls := 0
	final, err := d.SendTurnStreaming(context.Background(), "ciao", func(string) { calls++ })
	if err != nil {
		t.Fatalf("SendTurnStreaming err: %v", err)
	}

	if final != FallbackReply {
		t.Fatalf("expected fallback reply, got %q", final)
	}
	if calls != 0 {
		t.Fatalf("expected zero chunk calls, got %d", calls)
	}
}

func TestSendTurnStreamingFailureResolvesInCharacter(t *testing.T) {
	run := &stubRunner{
		stream: func(context.Context, map[string]any) (*schema.StreamReader[*schema.Message], error) {
			reader, writer := schema.Pipe[*schema.Message](2)
			writer.Send(schema.AssistantMessage("Tre", nil), nil)
			writer.Send(nil, errors.New("quota exhausted"))
			writer.Close()
			return reader, nil
		},
	}
	holder := newStubHolder(run)
	d := NewDispatcher(holder)

	if _, err := holder.EnsureSession(context.Background()); err != nil {
		t.Fatalf("EnsureSession err: %v", err)
	}

	var chunks []string
	final, err := d.SendTurnStreaming(context.Background(), "ciao", func(accumulated string) {
		chunks = append(chunks, accumulated)
	})
	if err != nil {
		t.Fatalf("streaming must resolve, not fail: %v", err)
	}

	if final != ProviderErrorReply {
		t.Fatalf("expected in-character error reply, got %q", final)
	}
	if len(chunks) == 0 || chunks[len(chunks)-1] != ProviderErrorReply {
		t.Fatalf("expected final chunk to carry the error reply, got %v", chunks)
	}

	// The corrupted session must not be reused: the next turn builds fresh.
	if _, err := holder.EnsureSession(context.Background()); err != nil {
		t.Fatalf("EnsureSession err: %v", err)
	}
	if got := holder.Generation(); got != 2 {
		t.Fatalf("expected a fresh session after failure, generation=%d", got)
	}
}

func TestSendTurnStreamingConfigurationErrorSurfaces(t *testing.T) {
	d := NewDispatcher(NewHolder(enabledConfig()))
	holder := d.holder
	holder.build = func(context.Context) (runner, error) {
		return nil, errors.New("boom")
	}

	calls := 0
	if _, err := d.SendTurnStreaming(context.Background(), "ciao", func(string) { calls++ }); err == nil {
		t.Fatal("expected session construction error to surface")
	}
	if calls != 0 {
		t.Fatalf("no chunks expected on construction failure, got %d", calls)
	}
}

func TestSendTurnEmptyReplyFallsBack(t *testing.T) {
	run := &stubRunner{
		invoke: func(context.Context, map[string]any) (*schema.Message, error) {
			return schema.AssistantMessage("  ", nil), nil
		},
	}
	d := NewDispatcher(newStubHolder(run))

	final, err := d.SendTurn(context.Background(), "ciao")
	if err != nil {
		t.Fatalf("SendTurn err: %v", err)
	}
	if final != FallbackReply {
		t.Fatalf("expected fallback reply, got %q", final)
	}
}

func TestSendTurnFailureReturnsProviderError(t *testing.T) {
	run := &stubRunner{
		invoke: func(context.Context, map[string]any) (*schema.Message, error) {
			return nil, errors.New("transport down")
		},
	}
	holder := newStubHolder(run)
	d := NewDispatcher(holder)

	if _, err := holder.EnsureSession(context.Background()); err != nil {
		t.Fatalf("EnsureSession err: %v", err)
	}

	_, err := d.SendTurn(context.Background(), "ciao")
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}

	if _, err := holder.EnsureSession(context.Background()); err != nil {
		t.Fatalf("EnsureSession err: %v", err)
	}
	if got := holder.Generation(); got != 2 {
		t.Fatalf("expected session reset after failure, generation=%d", got)
	}
}

func TestSendTurnRemembersExchange(t *testing.T) {
	run := &stubRunner{
		invoke: func(context.Context, map[string]any) (*schema.Message, error) {
			return schema.AssistantMessage("Tre desideri", nil), nil
		},
	}
	holder := newStubHolder(run)
	d := NewDispatcher(holder)

	if _, err := d.SendTurn(context.Background(), "Quanti desideri?"); err != nil {
		t.Fatalf("SendTurn err: %v", err)
	}

	session, err := holder.EnsureSession(context.Background())
	if err != nil {
		t.Fatalf("EnsureSession err: %v", err)
	}
	if len(session.history) != 2 {
		t.Fatalf("expected exchange in history, got %d messages", len(session.history))
	}
}
