package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fleetdesk/apiserver/internal/permissions"
	"github.com/fleetdesk/apiserver/internal/services"
	"github.com/fleetdesk/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
)

// RowsHandler serves the generic resource endpoints. Every route runs
// the same gate: verified claims, alias resolution, permission check,
// then delegation to the sync engine.
type RowsHandler struct {
	engine *services.Engine
}

func NewRowsHandler(engine *services.Engine) *RowsHandler {
	return &RowsHandler{engine: engine}
}

// RowsRouter registers the resource routes on the given router.
func RowsRouter(r chi.Router, handler *RowsHandler, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Get("/{resource}", handler.List)
	r.With(authMiddleware).Post("/add/{resource}", handler.Add)
	r.With(authMiddleware).Put("/edit/{resource}/{rowIndex}", handler.Edit)
	r.With(authMiddleware).Delete("/delete/{resource}/{rowIndex}", handler.Delete)
}

func (h *RowsHandler) List(w http.ResponseWriter, r *http.Request) {
	resource, ok := h.authorize(w, r, permissions.ActionView)
	if !ok {
		return
	}

	records, err := h.engine.List(r.Context(), resource)
	if err != nil {
		h.upstreamError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"rows": records})
}

func (h *RowsHandler) Add(w http.ResponseWriter, r *http.Request) {
	resource, ok := h.authorize(w, r, permissions.ActionAdd)
	if !ok {
		return
	}

	sub, ok := decodeSubmission(w, r)
	if !ok {
		return
	}

	result, err := h.engine.Add(r.Context(), resource, sub)
	if err != nil {
		h.upstreamError(w, err)
		return
	}

	payload := map[string]any{"added": true, "timestamp": result.Timestamp}
	if warnings := services.Warnings(result.Effects); warnings != nil {
		payload["warnings"] = warnings
	}
	writeSuccess(w, http.StatusOK, payload)
}

func (h *RowsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	resource, ok := h.authorize(w, r, permissions.ActionEdit)
	if !ok {
		return
	}
	index, ok := parseRowIndex(w, r)
	if !ok {
		return
	}

	sub, ok := decodeSubmission(w, r)
	if !ok {
		return
	}

	effects, err := h.engine.Edit(r.Context(), resource, index, sub)
	if err != nil {
		h.upstreamError(w, err)
		return
	}

	payload := map[string]any{"updated": true}
	if warnings := services.Warnings(effects); warnings != nil {
		payload["warnings"] = warnings
	}
	writeSuccess(w, http.StatusOK, payload)
}

func (h *RowsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	resource, ok := h.authorize(w, r, permissions.ActionDelete)
	if !ok {
		return
	}
	index, ok := parseRowIndex(w, r)
	if !ok {
		return
	}

	effects, err := h.engine.Delete(r.Context(), resource, index)
	if err != nil {
		h.upstreamError(w, err)
		return
	}

	payload := map[string]any{"message": fmt.Sprintf("row %d deleted", index)}
	if warnings := services.Warnings(effects); warnings != nil {
		payload["warnings"] = warnings
	}
	writeSuccess(w, http.StatusOK, payload)
}

// authorize resolves the resource alias and checks the caller's role
// for the action. It writes the error response itself on failure.
func (h *RowsHandler) authorize(w http.ResponseWriter, r *http.Request, action string) (string, bool) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}

	resource, ok := permissions.Resolve(chi.URLParam(r, "resource"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown resource")
		return "", false
	}

	if !permissions.Allowed(resource, action, claims.Role) {
		writeError(w, http.StatusForbidden,
			fmt.Sprintf("role %q is not allowed to %s %s", claims.Role, action, resource))
		return "", false
	}
	return resource, true
}

func (h *RowsHandler) upstreamError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "row or resource not found")
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

func parseRowIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "rowIndex")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 1 {
		writeError(w, http.StatusBadRequest, "invalid row index")
		return 0, false
	}
	return index, true
}

func decodeSubmission(w http.ResponseWriter, r *http.Request) (services.Submission, bool) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return services.NewSubmission(raw), true
}
