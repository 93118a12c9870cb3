package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/GaryBary/noosa26/internal/handler/chat"
	credentialHandler "github.com/GaryBary/noosa26/internal/handler/credential"
	localityHandler "github.com/GaryBary/noosa26/internal/handler/locality"
	speechHandler "github.com/GaryBary/noosa26/internal/handler/speech"
	streamHandler "github.com/GaryBary/noosa26/internal/handler/stream"
	middlewarePkg "github.com/GaryBary/noosa26/internal/middleware"
	localityModel "github.com/GaryBary/noosa26/internal/model/locality"
	chatService "github.com/GaryBary/noosa26/internal/service/chat"
	credentialService "github.com/GaryBary/noosa26/internal/service/credential"
	sessionService "github.com/GaryBary/noosa26/internal/service/session"
	"github.com/GaryBary/noosa26/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(
	localities localityModel.Store,
	store *chatService.Service,
	controller *sessionService.Controller,
	speechSvc speechHandler.SpeechService,
	credentials *credentialService.Manager,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatH := chatHandler.New(store, controller, localities)
	localityH := localityHandler.New(localities)
	credentialH := credentialHandler.New(credentials)
	streamH := streamHandler.New(controller)

	r.Route("/api", func(api chi.Router) {
		chatH.RegisterRoutes(api)
		localityH.RegisterRoutes(api)
		credentialH.RegisterRoutes(api)

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage := r.URL.Query().Get("message")
			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamH.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
				log.Printf("[stream] error handling request: %v", err)
			}
		})

		if speechSvc != nil {
			speechH := speechHandler.New(speechSvc, controller)
			speechH.RegisterRoutes(api, controller)
		}
	})

	return r
}
