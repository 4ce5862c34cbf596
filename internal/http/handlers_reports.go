package http

import (
	"net/http"
	"strconv"
	"strings"

	"walletnote/internal/log"
)

const dashboardRecent = 10

func (s *Server) handleChartSummary(w http.ResponseWriter, r *http.Request) {
	totals, err := s.deps.Reports.Summary(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleChartExpense(w http.ResponseWriter, r *http.Request) {
	totals, err := s.deps.Reports.ExpenseByService(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleChartMonthly(w http.ResponseWriter, r *http.Request) {
	params := ParseMonthParams(r.URL.Query(), s.now())
	totals, err := s.deps.Reports.Monthly(r.Context(), currentUser(r).ID, params.Year, params.Month)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleChartYearly(w http.ResponseWriter, r *http.Request) {
	year := s.now().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	totals, err := s.deps.Reports.Yearly(r.Context(), currentUser(r).ID, year)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleChartToday(w http.ResponseWriter, r *http.Request) {
	totals, err := s.deps.Reports.Today(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Reports.Dashboard(r.Context(), currentUser(r).ID, dashboardRecent)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
