// Package chart renders an analysis result to a PNG image.
package chart

import (
	"bytes"
	"fmt"

	"portfolio/internal/core"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Filename is the download name offered for the exported image.
const Filename = "product_portfolio_analysis.png"

const (
	width  = 7 * vg.Inch
	height = 4.5 * vg.Inch
)

// Render draws the actual and predicted series as two labeled lines and
// returns the encoded PNG. A fresh plot is built per call, so concurrent
// renders never share drawing state.
func Render(title string, actual []core.SeriesPoint, predicted []core.ForecastPoint) ([]byte, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Amount"
	p.Legend.Top = true

	var series []any
	if len(actual) > 0 {
		actualXYs := make(plotter.XYs, len(actual))
		for i, pt := range actual {
			actualXYs[i].X = float64(pt.Year)
			actualXYs[i].Y = pt.Amount
		}
		series = append(series, "Actual", actualXYs)
	}
	if len(predicted) > 0 {
		predictedXYs := make(plotter.XYs, len(predicted))
		for i, pt := range predicted {
			predictedXYs[i].X = float64(pt.Year)
			predictedXYs[i].Y = pt.Amount
		}
		series = append(series, "Predicted", predictedXYs)
	}

	if len(series) > 0 {
		if err := plotutil.AddLinePoints(p, series...); err != nil {
			return nil, fmt.Errorf("add series: %w", err)
		}
	} else {
		// Keep the axes finite when there is nothing to draw.
		p.X.Min, p.X.Max = 0, 1
		p.Y.Min, p.Y.Max = 0, 1
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write chart: %w", err)
	}
	return buf.Bytes(), nil
}
