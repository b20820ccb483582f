package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/league-stats/services"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) weekParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	week, err := parseWeek(chi.URLParam(r, "week"), false)
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, false
	}
	return week, true
}

func (h *StatsHandler) CurrentWeek(w http.ResponseWriter, r *http.Request) {
	info, err := h.statsService.CurrentWeek(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, info, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) WeekView(w http.ResponseWriter, r *http.Request) {
	week, ok := h.weekParam(w, r)
	if !ok {
		return
	}
	view, err := h.statsService.WeekView(r.Context(), week)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) Matchups(w http.ResponseWriter, r *http.Request) {
	week, ok := h.weekParam(w, r)
	if !ok {
		return
	}
	results, err := h.statsService.Matchups(r.Context(), week)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"week": week, "matchups": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) RankBonuses(w http.ResponseWriter, r *http.Request) {
	week, ok := h.weekParam(w, r)
	if !ok {
		return
	}
	bonuses, err := h.statsService.RankBonuses(r.Context(), week)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"week": week, "rank_bonuses": bonuses}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.statsService.Summary(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) Standings(w http.ResponseWriter, r *http.Request) {
	week, err := parseWeek(r.URL.Query().Get("week"), true)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	standings, err := h.statsService.Standings(r.Context(), week)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) Scores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.statsService.Scores(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"scores": scores}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) ScheduleIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := h.statsService.ScheduleIssues(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"issues": issues}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Refresh reloads the season on demand.
func (h *StatsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.statsService.Refresh(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func Health(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
