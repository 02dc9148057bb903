package charts

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/core"
	"spendwise/internal/stats"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want colorful.Color
	}{
		{"hsl(0, 0%, 60%)", colorful.Hsl(0, 0, 0.6)},
		{"hsl(200, 80%, 60%)", colorful.Hsl(200, 0.8, 0.6)},
		{"hsl(80,60%,55%)", colorful.Hsl(80, 0.6, 0.55)},
		{"HSL( 220 , 80% ,60% )", colorful.Hsl(220, 0.8, 0.6)},
		{"hsl(80 60% 55%)", fallback},
		{"#ff0000", colorful.Color{R: 1, G: 0, B: 0}},
		{"tomato", fallback},
		{"#zzz", fallback},
	}
	for _, tt := range tests {
		got := ParseColor(tt.in)
		assert.True(t, got.AlmostEqualRgb(tt.want), "%s: got %v want %v", tt.in, got, tt.want)
	}
}

func TestRenderBreakdownEmpty(t *testing.T) {
	_, err := RenderBreakdown(nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRenderBreakdownPNG(t *testing.T) {
	d := core.NewDate(2024, 6, 15)
	slices := stats.Breakdown([]core.Expense{
		{ID: "1", Description: "rent", Amount: core.NewMoney(950), Category: "Bills", Date: d},
		{ID: "2", Description: "gum", Amount: core.NewMoney(2), Category: "Food", Date: d},
		{ID: "3", Description: "bus", Amount: core.NewMoney(48), Category: "Transportation", Date: d},
	}, func(string) string { return "hsl(10, 80%, 60%)" })

	data, err := RenderBreakdown(slices)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Width, img.Bounds().Dx())
	assert.Equal(t, Height, img.Bounds().Dy())
}

func TestRenderBreakdownSingleSlice(t *testing.T) {
	slices := []stats.Slice{{
		CategoryTotal: stats.CategoryTotal{Category: "Food", Total: core.NewMoney(10)},
		Color:         "hsl(10, 80%, 60%)",
		Share:         1,
		Labeled:       true,
	}}
	data, err := RenderBreakdown(slices)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
