package http

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"portfolio/internal/chart"
	"portfolio/internal/core"
	"portfolio/internal/forecast"
)

type analysisPage struct {
	Names      []string
	Categories []string
	Error      string

	// Set after a successful run.
	HasResult   bool
	Selection   string
	Mode        string
	ChartBase64 string
	DownloadURL string
	Actual      []core.SeriesPoint
	Forecast    []core.ForecastPoint
}

// handleAnalysis renders the analysis form (GET) and runs the analysis
// (POST). Every run recomputes from a fresh query; nothing is cached
// between requests.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	user, _ := sessionUser(r)

	names, categories, err := s.analysis.Options(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Analysis options error", "error", err)
	}
	page := analysisPage{Names: names, Categories: categories}

	if r.Method != http.MethodPost {
		s.render(w, r, "analysis.html", page)
		return
	}

	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		page.Error = "Invalid request format"
		s.render(w, r, "analysis.html", page)
		return
	}

	mode := core.SelectionMode(r.Form.Get("mode"))
	selection := sanitizeInput(r.Form.Get("selection"))

	result, err := s.analysis.Run(r.Context(), user.ID, mode, selection)
	if err != nil {
		switch {
		case errors.Is(err, forecast.ErrInsufficientData):
			page.Error = "Not enough data for this selection. Add at least one matching product entry first."
		case errors.Is(err, core.ErrInvalidMode), errors.Is(err, core.ErrEmptySelection):
			page.Error = "Choose a product or category to analyze."
		default:
			slog.ErrorContext(r.Context(), "Analysis failed", "error", err,
				"mode", string(mode), "selection", selection)
			page.Error = "Analysis failed"
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "analysis.html", page)
		return
	}

	page.HasResult = true
	page.Selection = result.Selection
	page.Mode = string(result.Mode)
	page.ChartBase64 = base64.StdEncoding.EncodeToString(result.PNG)
	page.DownloadURL = fmt.Sprintf("/analysis/chart.png?mode=%s&selection=%s&download=1",
		url.QueryEscape(string(result.Mode)), url.QueryEscape(result.Selection))
	page.Actual = result.Actual
	page.Forecast = result.Forecast

	s.render(w, r, "analysis.html", page)
}

// handleAnalysisChart streams the rendered chart. With download=1 the
// image is served as an attachment under its fixed export name.
func (s *Server) handleAnalysisChart(w http.ResponseWriter, r *http.Request) {
	user, _ := sessionUser(r)

	mode := core.SelectionMode(r.URL.Query().Get("mode"))
	selection := sanitizeInput(r.URL.Query().Get("selection"))

	result, err := s.analysis.Run(r.Context(), user.ID, mode, selection)
	if err != nil {
		if errors.Is(err, forecast.ErrInsufficientData) ||
			errors.Is(err, core.ErrInvalidMode) ||
			errors.Is(err, core.ErrEmptySelection) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		slog.ErrorContext(r.Context(), "Chart render failed", "error", err)
		http.Error(w, "chart render failed", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", chart.Filename))
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(result.PNG)
}
