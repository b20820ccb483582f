package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/league-stats/services"
)

type SnapshotHandler struct {
	statsService    *services.StatsService
	snapshotService *services.SnapshotService
}

func NewSnapshotHandler(statsService *services.StatsService, snapshotService *services.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{statsService: statsService, snapshotService: snapshotService}
}

type publishInput struct {
	Week int `json:"week"`
}

func (h *SnapshotHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var input publishInput
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}
	if input.Week < 0 {
		badRequestResponse(w, r, errors.New("week must not be negative"))
		return
	}

	snapshot, err := h.statsService.PublishSnapshot(r.Context(), input.Week)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, snapshot, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SnapshotHandler) Latest(w http.ResponseWriter, r *http.Request) {
	week, err := parseWeek(r.URL.Query().Get("week"), true)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	standings, err := h.snapshotService.Latest(r.Context(), week)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	standings, err := h.snapshotService.Get(r.Context(), chi.URLParam(r, "snapshotID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SnapshotHandler) DeleteWeek(w http.ResponseWriter, r *http.Request) {
	week, err := parseWeek(chi.URLParam(r, "week"), false)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.snapshotService.DeleteWeek(r.Context(), week); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
