package handlers

import (
	"log/slog"
	"net/http"

	"starsystem-server/internal/shared/errors"
	"starsystem-server/internal/shared/response"
	"starsystem-server/internal/system"
)

func (h *SystemHandler) AddPlanet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "add_planet")

	id, err := systemID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var req system.BodyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	planet, err := h.service.AddPlanet(ctx, id, req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, planet)
}

func (h *SystemHandler) RemovePlanet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "remove_planet")

	id, err := systemID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	removed, err := h.service.RemovePlanet(ctx, id, r.PathValue("query"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, removed)
}

func (h *SystemHandler) AddSatellite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "add_satellite")

	id, err := systemID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var req system.BodyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	satellite, err := h.service.AddSatellite(ctx, id, r.PathValue("query"), req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, satellite)
}

func (h *SystemHandler) RemoveSatellite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "remove_satellite")

	id, err := systemID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	removed, err := h.service.RemoveSatellite(ctx, id, r.PathValue("query"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, removed)
}

func (h *SystemHandler) DescribeBody(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "describe_body")

	id, err := systemID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	desc, err := h.service.DescribeBody(ctx, id, r.PathValue("query"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, desc)
}

func (h *SystemHandler) Route(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "route")

	id, err := systemID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" || to == "" {
		response.Error(w, r, logger, errors.Validation("both from and to query parameters are required"))
		return
	}

	route, err := h.service.Route(ctx, id, from, to)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, route)
}

func (h *SystemHandler) Collisions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "collisions")

	id, err := systemID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.Collisions(ctx, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

func (h *SystemHandler) CenterOfMass(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "center_of_mass")

	id, err := systemID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	center, err := h.service.CenterOfMass(ctx, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, center)
}
