// Package charts renders the category breakdown as a PNG pie chart.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"spendwise/internal/stats"
)

var ErrNoData = errors.New("no data to chart")

const (
	Width  = 640
	Height = 480
)

var fallback = colorful.Hsl(0, 0, 0.6)

// RenderBreakdown draws one slice per category. Slices that are not Labeled
// are drawn without text.
func RenderBreakdown(slices []stats.Slice) ([]byte, error) {
	values := make([]chart.Value, 0, len(slices))
	for _, s := range slices {
		v := s.Total.Float()
		if v <= 0 {
			continue
		}
		label := ""
		if s.Labeled {
			label = fmt.Sprintf("%s %.0f%%", s.Category, s.Share*100)
		}
		values = append(values, chart.Value{
			Label: label,
			Value: v,
			Style: chart.Style{
				FillColor:   toDrawing(ParseColor(s.Color)),
				StrokeColor: chart.ColorWhite,
				StrokeWidth: 2,
				FontColor:   chart.ColorBlack,
			},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := chart.PieChart{
		Width:  Width,
		Height: Height,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    20,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render category breakdown: %w", err)
	}
	return buffer.Bytes(), nil
}

// ParseColor understands the CSS forms categories use: hsl(h, s%, l%) and #rrggbb.
// Anything else maps to neutral gray.
func ParseColor(css string) colorful.Color {
	css = strings.TrimSpace(css)
	if strings.HasPrefix(css, "#") {
		if c, err := colorful.Hex(css); err == nil {
			return c
		}
		return fallback
	}

	// Accepts hsl(80, 60%, 55%) and hsl(80,60%,55%) alike.
	compact := strings.ToLower(strings.Join(strings.Fields(css), ""))
	var h, s, l float64
	if _, err := fmt.Sscanf(compact, "hsl(%f,%f%%,%f%%)", &h, &s, &l); err != nil {
		return fallback
	}
	return colorful.Hsl(h, s/100, l/100).Clamped()
}

func toDrawing(c colorful.Color) drawing.Color {
	r, g, b := c.RGB255()
	return drawing.Color{R: r, G: g, B: b, A: 255}
}
