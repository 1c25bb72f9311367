package lamp

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lampadamagica/genio/backend/internal/service/conversation"
	"github.com/lampadamagica/genio/backend/pkg/utils"
)

// Handler exposes the lamp surface: activation, transcript and the blocking
// message endpoint.
type Handler struct {
	conv          *conversation.Service
	greetingDelay time.Duration
}

// New creates the lamp handler.
func New(conv *conversation.Service, greetingDelay time.Duration) *Handler {
	return &Handler{conv: conv, greetingDelay: greetingDelay}
}

// RegisterRoutes wires the lamp routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/lamp/rub", h.handleRub)
	r.Get("/conversation", h.handleConversation)
	r.Post("/messages", h.handleMessage)
}

// handleRub activates the conversation on first touch. The greeting turn shows
// up after the configured delay; the widget uses greetingDelayMs to keep its
// entry animation in sync.
func (h *Handler) handleRub(w http.ResponseWriter, _ *http.Request) {
	first := h.conv.Activate()

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"activated":       first,
		"greetingDelayMs": h.greetingDelay.Milliseconds(),
	})
}

func (h *Handler) handleConversation(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"turns":            h.conv.Turns(),
		"awaitingResponse": h.conv.Awaiting(),
	})
}

// handleMessage runs one blocking turn and returns the finalized model turn.
func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turn, err := h.conv.Submit(r.Context(), payload.Text, nil)
	switch {
	case errors.Is(err, conversation.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, "text must not be empty")
		return
	case errors.Is(err, conversation.ErrTurnInFlight):
		utils.RespondError(w, http.StatusConflict, "a turn is already in flight")
		return
	case err != nil:
		// Missing provider credential or session construction failure. The
		// turn itself already resolved in character.
		utils.RespondError(w, http.StatusServiceUnavailable, "the genie is unavailable")
		return
	}

	utils.RespondJSON(w, http.StatusOK, turn)
}
