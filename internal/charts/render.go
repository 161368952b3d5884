package charts

import (
	"io"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is an output image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ContentType is the MIME type of the rendered image.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ParseFormat accepts "png" or "svg"; blank means png.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	}
	return "", eris.Errorf("charts: unknown format %q", s)
}

// RenderOptions sizes the output image.
type RenderOptions struct {
	Width  int
	Height int
	Format Format
}

const (
	defaultWidth  = 1024
	defaultHeight = 600

	padTop    = 48
	padLeft   = 56
	padRight  = 16
	padBottom = 110
)

var (
	barFill   = drawing.ColorFromHex("87ceeb")
	barStroke = drawing.ColorBlack
)

// Render draws c onto a fresh canvas and writes the encoded image to w.
func (c *Chart) Render(w io.Writer, opts RenderOptions) error {
	if c == nil || len(c.Bars) == 0 {
		return eris.New("charts: nothing to render")
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	maxValue := 0.0
	values := make([]chart.Value, len(c.Bars))
	for i, b := range c.Bars {
		maxValue = math.Max(maxValue, b.Value)
		values[i] = chart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: chart.Style{FillColor: barFill, StrokeColor: barStroke, StrokeWidth: 1},
		}
	}
	if maxValue <= 0 {
		maxValue = 1
	}

	// Every bar gets an equal slot of the plot width.
	slot := (width - padLeft - padRight - 40) / len(values)
	if slot < 2 {
		slot = 2
	}
	barWidth := slot * 7 / 10
	if barWidth < 1 {
		barWidth = 1
	}

	bc := chart.BarChart{
		Title:      c.Title,
		TitleStyle: chart.Style{FontSize: 13},
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: padTop, Left: padLeft, Right: padRight, Bottom: padBottom}},
		XAxis:      chart.Style{TextRotationDegrees: c.LabelRotation, FontSize: 9},
		YAxis: chart.YAxis{
			Name:  c.YAxisTitle,
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
		},
		BarWidth:   barWidth,
		BarSpacing: slot - barWidth,
		Bars:       values,
	}
	bc.Elements = []chart.Renderable{axisTitles(c.XAxisTitle, c.YAxisTitle, height)}

	provider := chart.PNG
	if opts.Format == FormatSVG {
		provider = chart.SVG
	}
	if err := bc.Render(provider, w); err != nil {
		return eris.Wrap(err, "charts: render")
	}
	return nil
}

// axisTitles draws the axis names, which the go-chart bar chart leaves out.
func axisTitles(xTitle, yTitle string, height int) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
		style := chart.Style{FontSize: 10, FontColor: drawing.ColorBlack}.InheritFrom(defaults)
		style.GetTextOptions().WriteToRenderer(r)
		defer r.ResetStyle()

		if xTitle != "" {
			tb := r.MeasureText(xTitle)
			x := canvasBox.Left + (canvasBox.Width()-tb.Width())/2
			chart.Draw.Text(r, xTitle, x, height-10, style)
		}
		if yTitle != "" {
			tb := r.MeasureText(yTitle)
			rotated := style
			rotated.TextRotationDegrees = 270
			y := canvasBox.Top + (canvasBox.Height()+tb.Width())/2
			chart.Draw.Text(r, yTitle, 14, y, rotated)
		}
	}
}
