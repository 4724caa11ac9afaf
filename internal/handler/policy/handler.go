package policy

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/botify/storebot/backend/internal/model/policy"
	"github.com/botify/storebot/backend/pkg/utils"
)

// Handler exposes the canned store policies.
type Handler struct {
	policies policy.Store
}

// New creates a policy handler.
func New(policies policy.Store) *Handler {
	return &Handler{policies: policies}
}

// RegisterRoutes mounts the policy routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/policies", h.handleList)
	r.Get("/policies/{policyID}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.policies.List())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	item, ok := h.policies.FindByID(chi.URLParam(r, "policyID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "policy not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}
