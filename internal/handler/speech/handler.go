package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	speechmodel "github.com/lampadamagica/genio/backend/internal/model/speech"
	"github.com/lampadamagica/genio/backend/pkg/utils"
)

// SpeechService abstracts the speech business logic for testing.
type SpeechService interface {
	Synthesize(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error)
	Utterance() (*speechmodel.TTSResponse, bool)
	Cancel()
}

// Handler exposes the speech endpoints.
type Handler struct {
	speechSvc SpeechService
}

// New creates the speech handler.
func New(speechSvc SpeechService) *Handler {
	return &Handler{speechSvc: speechSvc}
}

// RegisterRoutes wires the speech routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/speech", func(speechRouter chi.Router) {
		speechRouter.Post("/synthesize", h.handleSynthesize)
		speechRouter.Get("/utterance", h.handleUtterance)
		speechRouter.Post("/stop", h.handleStop)
		speechRouter.Get("/health", h.handleHealth)
	})
}

type synthesizeResponse struct {
	Audio    string `json:"audio"` // base64
	Format   string `json:"format"`
	Voice    string `json:"voice"`
	Duration int64  `json:"duration"`
}

func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text  string `json:"text"`
		Voice string `json:"voice"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	response, err := h.speechSvc.Synthesize(r.Context(), &speechmodel.TTSRequest{
		Text:  payload.Text,
		Voice: payload.Voice,
	})
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, "synthesis failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, synthesizeResponse{
		Audio:    base64.StdEncoding.EncodeToString(response.AudioData),
		Format:   response.Format,
		Voice:    response.Voice,
		Duration: response.Duration,
	})
}

// handleUtterance serves the most recent genie reply voiced by the
// conversation fan-out.
func (h *Handler) handleUtterance(w http.ResponseWriter, _ *http.Request) {
	response, ok := h.speechSvc.Utterance()
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "no utterance ready")
		return
	}

	utils.RespondJSON(w, http.StatusOK, synthesizeResponse{
		Audio:    base64.StdEncoding.EncodeToString(response.AudioData),
		Format:   response.Format,
		Voice:    response.Voice,
		Duration: response.Duration,
	})
}

func (h *Handler) handleStop(w http.ResponseWriter, _ *http.Request) {
	h.speechSvc.Cancel()
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
