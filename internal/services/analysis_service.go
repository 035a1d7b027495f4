package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"portfolio/internal/chart"
	"portfolio/internal/core"
	"portfolio/internal/forecast"

	"golang.org/x/sync/errgroup"
)

// SeriesReader is the aggregation surface the analysis needs from the
// store.
type SeriesReader interface {
	SeriesByName(ctx context.Context, userID int64, name string) ([]core.SeriesPoint, error)
	SeriesByCategory(ctx context.Context, userID int64, category string) ([]core.SeriesPoint, error)
	Categories(ctx context.Context) ([]string, error)
	ProductNames(ctx context.Context, userID int64) ([]string, error)
}

// Analysis is the transient result of one portfolio analysis run. Nothing
// here is persisted; every run recomputes from a fresh query.
type Analysis struct {
	Mode      core.SelectionMode
	Selection string
	Actual    []core.SeriesPoint
	Forecast  []core.ForecastPoint
	PNG       []byte
}

// AnalysisService aggregates a series, fits the forecast model and
// renders the chart.
type AnalysisService struct {
	store      SeriesReader
	forecaster *forecast.Forecaster
}

func NewAnalysisService(store SeriesReader, forecaster *forecast.Forecaster) *AnalysisService {
	return &AnalysisService{store: store, forecaster: forecaster}
}

// Run aggregates the selected series, fits the forecast model and renders
// the chart. An empty series surfaces forecast.ErrInsufficientData.
func (s *AnalysisService) Run(ctx context.Context, userID int64, mode core.SelectionMode, selection string) (*Analysis, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	selection = strings.TrimSpace(selection)
	if selection == "" {
		return nil, core.ErrEmptySelection
	}

	start := time.Now()

	var (
		actual []core.SeriesPoint
		err    error
	)
	switch mode {
	case core.ByName:
		actual, err = s.store.SeriesByName(ctx, userID, selection)
	case core.ByCategory:
		actual, err = s.store.SeriesByCategory(ctx, userID, selection)
	}
	if err != nil {
		return nil, fmt.Errorf("aggregate series: %w", err)
	}

	predicted, err := s.forecaster.Forecast(actual)
	if err != nil {
		return nil, err
	}

	png, err := chart.Render(selection, actual, predicted)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}

	slog.InfoContext(ctx, "Analysis completed",
		"user_id", userID,
		"mode", string(mode),
		"selection", selection,
		"actual_points", len(actual),
		"forecast_points", len(predicted),
		"duration_ms", time.Since(start).Milliseconds())

	return &Analysis{
		Mode:      mode,
		Selection: selection,
		Actual:    actual,
		Forecast:  predicted,
		PNG:       png,
	}, nil
}

// Options returns the selectable product names and categories for the
// analysis form, fetched concurrently.
func (s *AnalysisService) Options(ctx context.Context, userID int64) (names []string, categories []string, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		names, err = s.store.ProductNames(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.store.Categories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("load analysis options: %w", err)
	}
	return names, categories, nil
}
