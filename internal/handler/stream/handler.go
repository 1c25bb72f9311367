package stream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/lampadamagica/genio/backend/internal/model/chat"
	"github.com/lampadamagica/genio/backend/internal/service/conversation"
	"github.com/lampadamagica/genio/backend/pkg/utils"
)

// Handler streams one turn's reconciliation over Server-Sent Events.
type Handler struct {
	conv *conversation.Service
}

// New creates the stream handler.
func New(conv *conversation.Service) *Handler {
	return &Handler{conv: conv}
}

// StreamResponse is one SSE payload.
type StreamResponse struct {
	Event    string `json:"event"`
	TurnID   string `json:"turnId,omitempty"`
	Content  string `json:"content,omitempty"`
	Finished bool   `json:"finished,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HandleStreamRequest runs one streamed turn. Every delta event carries the
// model turn's accumulated text so far, so the widget can overwrite its bubble
// in place; the message event carries the finalized text.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	h.sendSSE(w, flusher, StreamResponse{Event: "start"})

	turn, err := h.conv.Submit(ctx, userMessage, func(pending chat.Turn) {
		h.sendSSE(w, flusher, StreamResponse{
			Event:   "delta",
			TurnID:  pending.ID,
			Content: pending.Text,
		})
	})
	if err != nil && !errors.Is(err, conversation.ErrEmptyMessage) && !errors.Is(err, conversation.ErrTurnInFlight) {
		// The turn still resolved in character; tell the widget and finish.
		log.Printf("[stream] turn failed: %v", err)
	}
	if errors.Is(err, conversation.ErrEmptyMessage) || errors.Is(err, conversation.ErrTurnInFlight) {
		h.sendSSE(w, flusher, StreamResponse{Event: "error", Error: err.Error()})
		return err
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:   "message",
		TurnID:  turn.ID,
		Content: turn.Text,
	})

	h.sendSSE(w, flusher, StreamResponse{Event: "end", Finished: true})
	return nil
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}
