package api

import (
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "coursehub/backend/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates and configures a new chi router with all the application's routes.
func NewRouter(workspaceHandler *WorkspaceHandler, draftHandler *DraftHandler, relayHandler *RelayHandler) *chi.Mux {
	r := chi.NewRouter()

	// --- Global Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- Public Routes ---
	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// --- API Version 1 Routes ---
	r.Route("/api/v1", func(r chi.Router) {

		// Standard JSON routes run under a request timeout.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// --- Workspaces ---
			r.Post("/workspaces/{studentID}/{taskKey}", workspaceHandler.HandleOpen)
			r.Get("/workspaces/{studentID}/{taskKey}", workspaceHandler.HandleGetState)
			r.Delete("/workspaces/{studentID}/{taskKey}", workspaceHandler.HandleClose)
			r.Put("/workspaces/{studentID}/{taskKey}/content", workspaceHandler.HandleEdit)
			r.Post("/workspaces/{studentID}/{taskKey}/save", workspaceHandler.HandleSave)
			r.Post("/workspaces/{studentID}/{taskKey}/versions", workspaceHandler.HandleNewVersion)
			r.Post("/workspaces/{studentID}/{taskKey}/versions/{version}/load", workspaceHandler.HandleLoadVersion)
			r.Post("/workspaces/{studentID}/{taskKey}/unload", workspaceHandler.HandleUnload)

			// --- Drafts ---
			r.Get("/drafts", draftHandler.HandleListDrafts)
			r.Post("/drafts/beacon", draftHandler.HandleBeacon)

			// --- Usage ---
			r.Get("/usage/{studentID}", relayHandler.HandleUsage)
		})

		// Streaming routes hold the connection open and must NOT have a timeout.
		// Their own deadline comes from the feedback timeout.
		r.Group(func(r chi.Router) {
			r.Post("/workspaces/{studentID}/{taskKey}/feedback", workspaceHandler.HandleFeedback)
			r.Post("/workspaces/{studentID}/{taskKey}/followups", workspaceHandler.HandleFollowUp)
			r.Post("/chat", relayHandler.HandleChat)
		})
	})

	return r
}
