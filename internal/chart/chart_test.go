package chart

import (
	"bytes"
	"testing"

	"portfolio/internal/core"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderProducesPNG(t *testing.T) {
	actual := []core.SeriesPoint{
		{Year: 2021, Amount: 10},
		{Year: 2022, Amount: 20},
	}
	predicted := []core.ForecastPoint{
		{Year: 2023, Amount: 18},
		{Year: 2024, Amount: 19},
	}

	img, err := Render("Furniture", actual, predicted)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(img) == 0 {
		t.Fatal("expected non-empty image buffer")
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Fatalf("expected PNG header, got % x", img[:4])
	}
}

func TestRenderEmptySeries(t *testing.T) {
	// Degenerate but must not fail: the analysis layer decides whether an
	// empty series is an error before rendering.
	img, err := Render("Empty", nil, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Fatal("expected PNG output")
	}
}
