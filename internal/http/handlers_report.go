package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"tempo/internal/core"
	"tempo/internal/export"
	applog "tempo/internal/log"
	"tempo/internal/report"
)

// analysisData feeds the analysis template.
type analysisData struct {
	Allocations []report.Allocation
	Start       string
	End         string
}

func (s *Server) handleAnalysisPage(w http.ResponseWriter, r *http.Request, userID int64) {
	start, end, err := parseRangeQuery(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	allocations, err := report.ComputeAllocation(r.Context(), s.store, userID, start, end)
	if err != nil {
		if errors.Is(err, report.ErrInvalidRange) {
			BadRequestError("Start date is after end date").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Allocation computation failed",
			applog.FieldComponent, applog.ComponentReport,
			applog.FieldUserID, userID, "error", err)
		InternalServerError("Could not compute allocation").Write(w)
		return
	}

	s.render(w, r, "analysis.html", analysisData{
		Allocations: allocations,
		Start:       start.String(),
		End:         end.String(),
	})
}

func (s *Server) handleAnalysisJSON(w http.ResponseWriter, r *http.Request, userID int64) {
	start, end, err := parseRangeQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	allocations, err := report.ComputeAllocation(r.Context(), s.store, userID, start, end)
	if err != nil {
		if errors.Is(err, report.ErrInvalidRange) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start date is after end date"})
			return
		}
		slog.ErrorContext(r.Context(), "Allocation computation failed",
			applog.FieldComponent, applog.ComponentReport,
			applog.FieldUserID, userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not compute allocation"})
		return
	}

	writeJSON(w, http.StatusOK, allocations)
}

func (s *Server) handleWeeklyJSON(w http.ResponseWriter, r *http.Request, userID int64) {
	refDate, err := core.ParseDate(r.PathValue("date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	week, err := report.GroupWeek(r.Context(), s.store, userID, refDate)
	if err != nil {
		slog.ErrorContext(r.Context(), "Weekly grouping failed",
			applog.FieldComponent, applog.ComponentReport,
			applog.FieldUserID, userID,
			applog.FieldDate, refDate.String(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load weekly timesheet"})
		return
	}

	writeJSON(w, http.StatusOK, week)
}

// weeklyData feeds the weekly template.
type weeklyData struct {
	Week  report.Week
	Total float64
}

func (s *Server) handleWeeklyPage(w http.ResponseWriter, r *http.Request, userID int64) {
	refDate, err := parseWeekDate(r)
	if err != nil {
		BadRequestError("Invalid date, expected YYYY-MM-DD").Write(w)
		return
	}

	week, err := report.GroupWeek(r.Context(), s.store, userID, refDate)
	if err != nil {
		slog.ErrorContext(r.Context(), "Weekly grouping failed",
			applog.FieldComponent, applog.ComponentReport,
			applog.FieldUserID, userID, "error", err)
		InternalServerError("Could not load weekly timesheet").Write(w)
		return
	}

	s.render(w, r, "weekly.html", weeklyData{Week: week, Total: week.TotalHours()})
}

func (s *Server) handleExportWeeklyExcel(w http.ResponseWriter, r *http.Request, userID int64) {
	week, ok := s.weekForExport(w, r, userID)
	if !ok {
		return
	}

	filename := fmt.Sprintf("timesheet-week-%s.xlsx", week.Start)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.WriteWeeklyExcel(w, week); err != nil {
		slog.ErrorContext(r.Context(), "Excel export failed",
			applog.FieldComponent, applog.ComponentExport,
			applog.FieldUserID, userID, "error", err)
	}
}

func (s *Server) handleExportWeeklyCSV(w http.ResponseWriter, r *http.Request, userID int64) {
	week, ok := s.weekForExport(w, r, userID)
	if !ok {
		return
	}

	filename := fmt.Sprintf("timesheet-week-%s.csv", week.Start)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.WriteWeeklyCSV(w, week); err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed",
			applog.FieldComponent, applog.ComponentExport,
			applog.FieldUserID, userID, "error", err)
	}
}

func (s *Server) weekForExport(w http.ResponseWriter, r *http.Request, userID int64) (report.Week, bool) {
	refDate, err := parseWeekDate(r)
	if err != nil {
		BadRequestError("Invalid date, expected YYYY-MM-DD").Write(w)
		return report.Week{}, false
	}

	week, err := report.GroupWeek(r.Context(), s.store, userID, refDate)
	if err != nil {
		slog.ErrorContext(r.Context(), "Weekly grouping failed",
			applog.FieldComponent, applog.ComponentExport,
			applog.FieldUserID, userID, "error", err)
		InternalServerError("Could not load weekly timesheet").Write(w)
		return report.Week{}, false
	}
	return week, true
}
