package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"starsystem-server/internal/auth"
	"starsystem-server/internal/shared/errors"
	"starsystem-server/internal/shared/response"
	"starsystem-server/internal/system"

	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20 // 1 MB

type CreateSystemResponse struct {
	System *system.SystemView `json:"system"`
	Token  string             `json:"token"`
}

type SystemHandler struct {
	service *system.Service
	tokens  *auth.TokenIssuer
}

func NewSystemHandler(service *system.Service, tokens *auth.TokenIssuer) *SystemHandler {
	return &SystemHandler{service: service, tokens: tokens}
}

func systemID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return uuid.Nil, errors.Validation("system ID is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.WrapValidation("invalid system ID format", err)
	}
	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.WrapValidation("invalid JSON in request body", err)
	}
	return nil
}

func (h *SystemHandler) CreateSystem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "create_system")

	var req system.CreateSystemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	view, err := h.service.CreateSystem(ctx, req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	token, err := h.tokens.Issue(view.ID)
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to issue owner token", err))
		return
	}

	response.Success(w, http.StatusCreated, CreateSystemResponse{System: view, Token: token})
}

func (h *SystemHandler) GetSystem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_system")

	id, err := systemID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	view, err := h.service.GetSystem(ctx, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, view)
}

func (h *SystemHandler) DeleteSystem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "delete_system")

	id, err := systemID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if err := h.service.DeleteSystem(ctx, id); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SystemHandler) SetPositioning(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "set_positioning")

	id, err := systemID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var req system.PositioningRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	view, err := h.service.SetRelativePositioning(ctx, id, req.RelativePositioning)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, view)
}
