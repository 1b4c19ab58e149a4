package server

import (
	"fmt"
	"math"
	"strings"
	"time"

	"sp500-dashboard/src/models"
)

const (
	chartPadLeft   = 64.0
	chartPadRight  = 16.0
	chartPadTop    = 16.0
	chartPadBottom = 96.0

	maxXTicks = 8
	yTicks    = 5
)

// Tick is one axis label position.
type Tick struct {
	X     float64
	Y     float64
	Label string
}

// Chart is the SVG geometry of a closing price area chart. Points is the input
// projection, untouched; the other fields only describe how to draw it.
type Chart struct {
	Points models.MClosingSeries
	Width  float64
	Height float64
	Line   string
	Area   string
	XTicks []Tick
	YTicks []Tick
	Min    float64
	Max    float64
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// -----------------------------------------------------------------------------

// BuildChart lays out points with x proportional to time and y to the closing
// price. No resampling or smoothing is applied.
func BuildChart(points models.MClosingSeries, width, height int) *Chart {
	c := &Chart{
		Points: points,
		Width:  float64(width),
		Height: float64(height),
		Left:   chartPadLeft,
		Right:  float64(width) - chartPadRight,
		Top:    chartPadTop,
		Bottom: float64(height) - chartPadBottom,
	}
	if len(points) == 0 {
		return c
	}

	c.Min, c.Max = points[0].Close, points[0].Close
	for _, p := range points[1:] {
		c.Min = math.Min(c.Min, p.Close)
		c.Max = math.Max(c.Max, p.Close)
	}
	lo, hi := c.Min, c.Max
	if hi == lo {
		lo, hi = lo-1, hi+1
	}

	t0 := points[0].Timestamp
	span := points[len(points)-1].Timestamp.Sub(t0)
	plotW := c.Right - c.Left
	plotH := c.Bottom - c.Top

	xOf := func(i int) float64 {
		if span <= 0 {
			return c.Left + plotW/2
		}
		return c.Left + plotW*float64(points[i].Timestamp.Sub(t0))/float64(span)
	}
	yOf := func(v float64) float64 {
		return c.Top + plotH*(hi-v)/(hi-lo)
	}

	var line strings.Builder
	for i, p := range points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&line, "%s%.2f,%.2f ", cmd, xOf(i), yOf(p.Close))
	}
	c.Line = strings.TrimSpace(line.String())
	c.Area = fmt.Sprintf("%s L%.2f,%.2f L%.2f,%.2f Z", c.Line, xOf(len(points)-1), c.Bottom, xOf(0), c.Bottom)

	layout := tickLayout(points)
	step := 1
	if len(points) > maxXTicks {
		step = int(math.Ceil(float64(len(points)) / maxXTicks))
	}
	for i := 0; i < len(points); i += step {
		c.XTicks = append(c.XTicks, Tick{X: xOf(i), Y: c.Bottom + 12, Label: points[i].Timestamp.Format(layout)})
	}

	for i := 0; i < yTicks; i++ {
		v := lo + (hi-lo)*float64(i)/float64(yTicks-1)
		c.YTicks = append(c.YTicks, Tick{X: c.Left - 6, Y: yOf(v), Label: fmt.Sprintf("%.2f", v)})
	}

	return c
}

// tickLayout drops the time of day when every point sits on midnight.
func tickLayout(points models.MClosingSeries) string {
	for _, p := range points {
		if h, m, s := p.Timestamp.Clock(); h != 0 || m != 0 || s != 0 {
			return "01-02 15:04"
		}
	}
	return time.DateOnly
}
