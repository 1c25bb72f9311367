package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lampadamagica/genio/backend/internal/handler/lamp"
	speechHandler "github.com/lampadamagica/genio/backend/internal/handler/speech"
	"github.com/lampadamagica/genio/backend/internal/handler/stream"
	middlewarePkg "github.com/lampadamagica/genio/backend/internal/middleware"
	"github.com/lampadamagica/genio/backend/internal/service/conversation"
	speechService "github.com/lampadamagica/genio/backend/internal/service/speech"
	"github.com/lampadamagica/genio/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the core services. speechSvc may be nil when
// the synthesis backend is not configured; its endpoints then answer 501.
func NewRouter(conv *conversation.Service, greetingDelay time.Duration, speechSvc *speechService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	lampHandler := lamp.New(conv, greetingDelay)
	streamHandler := stream.New(conv)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		lampHandler.RegisterRoutes(api)

		api.Get("/stream", func(w http.ResponseWriter, r *http.Request) {
			userMessage := r.URL.Query().Get("message")
			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			// Errors are already reported on the stream itself.
			_ = streamHandler.HandleStreamRequest(r.Context(), w, userMessage)
		})

		if speechSvc != nil {
			speechHandler.New(speechSvc).RegisterRoutes(api)
		} else {
			api.Route("/speech", func(sr chi.Router) {
				sr.HandleFunc("/*", func(w http.ResponseWriter, _ *http.Request) {
					utils.RespondError(w, http.StatusNotImplemented, "speech backend not configured")
				})
			})
		}
	})

	return r
}
