package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/botify/storebot/backend/internal/handler/chat"
	policyHandler "github.com/botify/storebot/backend/internal/handler/policy"
	"github.com/botify/storebot/backend/internal/handler/stream"
	"github.com/botify/storebot/backend/internal/handler/webhook"
	"github.com/botify/storebot/backend/internal/handler/ws"
	middlewarePkg "github.com/botify/storebot/backend/internal/middleware"
	"github.com/botify/storebot/backend/internal/model/policy"
	"github.com/botify/storebot/backend/internal/service/assistant"
	chatService "github.com/botify/storebot/backend/internal/service/chat"
	"github.com/botify/storebot/backend/pkg/utils"
)

// Dependencies are the services the HTTP layer talks to.
type Dependencies struct {
	Assistant   *assistant.Service
	History     chatService.Store
	Policies    policy.Store
	Sender      webhook.Sender
	VerifyToken string
	CORSOrigins []string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	webhook.New(deps.Assistant, deps.Sender, deps.VerifyToken).RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		chat.New(deps.Assistant, deps.History).RegisterRoutes(api)
		stream.New(deps.Assistant).RegisterRoutes(api)
		ws.New(deps.Assistant, deps.CORSOrigins).RegisterRoutes(api)
		policyHandler.New(deps.Policies).RegisterRoutes(api)
	})

	return r
}
