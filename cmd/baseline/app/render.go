package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"gonum.org/v1/gonum/floats"

	"github.com/roman-kulish/radiometer/internal/spectrum"
)

const (
	dpi            = 96.0
	fontSize       = 10.0
	titleFontSize  = 13.0
	tickMarkLength = 5
	pixelsPerXTick = 120.0
	pixelsPerYTick = 60.0
	legendSwatch   = 18
	lineThickness  = 2

	// Default border sizes in pixels
	defaultTopBorder    = 50
	defaultLeftBorder   = 80
	defaultBottomBorder = 60
	defaultRightBorder  = 30
)

// BorderConfig defines the sizes of white space around the plot area
type BorderConfig struct {
	Top    int // Space for the title
	Left   int // Space for the temperature scale
	Bottom int // Space for the frequency scale and the info bar
	Right  int // Right padding
}

// RenderConfig holds all configuration options for chart rendering
type RenderConfig struct {
	Width, Height int // Plot area size in pixels
	FontSize      float64
	BorderConfig  BorderConfig
}

// ChartSeries is a single line on the chart.
type ChartSeries struct {
	Name   string
	Color  color.Color
	Points spectrum.Series
}

// ChartData holds everything drawn on the chart.
type ChartData struct {
	Title  string
	Info   string
	Series []ChartSeries
}

// bounds returns the data range over all non-empty series, padded so that
// lines do not touch the frame.
func (d *ChartData) bounds() (xMin, xMax, yMin, yMax float64, ok bool) {
	xMin, yMin = math.Inf(1), math.Inf(1)
	xMax, yMax = math.Inf(-1), math.Inf(-1)

	for _, s := range d.Series {
		xs, ys := finiteValues(s.Points)
		if len(xs) == 0 {
			continue
		}
		xMin, xMax = min(xMin, floats.Min(xs)), max(xMax, floats.Max(xs))
		yMin, yMax = min(yMin, floats.Min(ys)), max(yMax, floats.Max(ys))
		ok = true
	}
	if !ok {
		return 0, 0, 0, 0, false
	}

	if xMax == xMin {
		xMin, xMax = xMin-1, xMax+1
	}
	if yMax == yMin {
		yMin, yMax = yMin-1, yMax+1
	}
	pad := (yMax - yMin) * 0.05
	return xMin, xMax, yMin - pad, yMax + pad, true
}

// ChartRenderer draws temperature spectra as line charts
type ChartRenderer struct {
	config RenderConfig
	font   *truetype.Font
}

// NewChartRenderer creates a new chart renderer with the given configuration
func NewChartRenderer(config RenderConfig) (*ChartRenderer, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("invalid plot size: %dx%d", config.Width, config.Height)
	}

	// Set defaults for zero values
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.BorderConfig.Top == 0 {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}

	parsedFont, err := freetype.ParseFont(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	return &ChartRenderer{config: config, font: parsedFont}, nil
}

// Render creates an image of the chart
func (r *ChartRenderer) Render(data *ChartData) (*image.RGBA, error) {
	xMin, xMax, yMin, yMax, ok := data.bounds()
	if !ok {
		return nil, fmt.Errorf("nothing to render: all series are empty")
	}

	b := r.config.BorderConfig
	fullWidth := r.config.Width + b.Left + b.Right
	fullHeight := r.config.Height + b.Top + b.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	plotArea := image.Rect(b.Left, b.Top, b.Left+r.config.Width, b.Top+r.config.Height)
	proj := projection{area: plotArea, xMin: xMin, xMax: xMax, yMin: yMin, yMax: yMax}

	ann := newAnnotator(r.font, r.config.FontSize, img)
	defer ann.Close()

	// Grid and scales go first, lines are drawn on top of them
	steps := []struct {
		msg string
		fn  func() error
	}{
		{"drawing frequency scale", func() error { return r.drawFrequencyScale(img, ann, proj) }},
		{"drawing temperature scale", func() error { return r.drawTemperatureScale(img, ann, proj) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return nil, fmt.Errorf("%s: %w", s.msg, err)
		}
	}

	plot := img.SubImage(plotArea).(*image.RGBA)
	for _, s := range data.Series {
		r.drawSeries(plot, proj, s)
	}
	drawRect(img, plotArea, color.Black)

	steps = []struct {
		msg string
		fn  func() error
	}{
		{"drawing legend", func() error { return r.drawLegend(img, ann, plotArea, data.Series) }},
		{"drawing title", func() error { return r.drawTitle(ann, data.Title) }},
		{"drawing info bar", func() error { return r.drawInfoBar(img, ann, data.Info) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return nil, fmt.Errorf("%s: %w", s.msg, err)
		}
	}

	return img, nil
}

// drawSeries connects consecutive points. Non-finite points are not drawn and
// break the line.
func (r *ChartRenderer) drawSeries(plot *image.RGBA, proj projection, s ChartSeries) {
	var x0, y0 int
	var connected bool
	for i, p := range s.Points {
		if !finite(p) {
			connected = false
			continue
		}

		x1, y1 := proj.point(p)
		switch {
		case connected:
			drawLine(plot, x0, y0, x1, y1, s.Color, lineThickness)
		case i == len(s.Points)-1 || !finite(s.Points[i+1]):
			drawLine(plot, x1, y1, x1, y1, s.Color, lineThickness)
		}
		x0, y0, connected = x1, y1, true
	}
}

func (r *ChartRenderer) drawFrequencyScale(img *image.RGBA, ann *annotator, proj projection) error {
	step := niceStep(proj.xMax-proj.xMin, float64(proj.area.Dx())/pixelsPerXTick)
	textY := proj.area.Max.Y + tickMarkLength + ann.height() + 2

	for f := math.Ceil(proj.xMin/step) * step; f <= proj.xMax; f += step {
		x := proj.x(f)

		for y := proj.area.Min.Y; y < proj.area.Max.Y; y++ {
			img.Set(x, y, colorGrid)
		}
		for y := proj.area.Max.Y; y < proj.area.Max.Y+tickMarkLength; y++ {
			img.Set(x, y, color.Black)
		}

		label := formatFrequency(f)
		if err := ann.drawString(label, x-ann.width(label)/2, textY); err != nil {
			return fmt.Errorf("drawing frequency label: %w", err)
		}
	}
	return nil
}

func (r *ChartRenderer) drawTemperatureScale(img *image.RGBA, ann *annotator, proj projection) error {
	step := niceStep(proj.yMax-proj.yMin, float64(proj.area.Dy())/pixelsPerYTick)

	for t := math.Ceil(proj.yMin/step) * step; t <= proj.yMax; t += step {
		y := proj.y(t)

		for x := proj.area.Min.X; x < proj.area.Max.X; x++ {
			img.Set(x, y, colorGrid)
		}
		for x := proj.area.Min.X - tickMarkLength; x < proj.area.Min.X; x++ {
			img.Set(x, y, color.Black)
		}

		label := formatTemperature(t, step)
		x := proj.area.Min.X - tickMarkLength - 3 - ann.width(label)
		if err := ann.drawString(label, x, y+ann.height()/2); err != nil {
			return fmt.Errorf("drawing temperature label: %w", err)
		}
	}

	label := "Temperature (K)"
	return ann.drawString(label, 5, proj.area.Min.Y-8)
}

func (r *ChartRenderer) drawLegend(img *image.RGBA, ann *annotator, area image.Rectangle, series []ChartSeries) error {
	var names []ChartSeries
	var textWidth int
	for _, s := range series {
		if len(s.Points) == 0 || s.Name == "" {
			continue
		}
		names = append(names, s)
		textWidth = max(textWidth, ann.width(s.Name))
	}
	if len(names) == 0 {
		return nil
	}

	rowHeight := ann.height() + 6
	box := image.Rect(0, 0, legendSwatch+textWidth+20, rowHeight*len(names)+8).
		Add(image.Pt(area.Max.X-legendSwatch-textWidth-30, area.Min.Y+10))
	draw.Draw(img, box, image.White, image.Point{}, draw.Src)
	drawRect(img, box, color.Gray{Y: 0x80})

	for i, s := range names {
		y := box.Min.Y + 4 + i*rowHeight + rowHeight/2
		drawLine(img, box.Min.X+5, y, box.Min.X+5+legendSwatch, y, s.Color, lineThickness+1)
		if err := ann.drawString(s.Name, box.Min.X+10+legendSwatch, y+ann.height()/2-1); err != nil {
			return fmt.Errorf("drawing legend entry: %w", err)
		}
	}
	return nil
}

func (r *ChartRenderer) drawTitle(ann *annotator, title string) error {
	if title == "" {
		return nil
	}

	ann.setSize(titleFontSize)
	defer ann.setSize(r.config.FontSize)

	x := r.config.BorderConfig.Left + (r.config.Width-ann.width(title))/2
	return ann.drawString(title, x, r.config.BorderConfig.Top/2+ann.height()/2)
}

func (r *ChartRenderer) drawInfoBar(img *image.RGBA, ann *annotator, info string) error {
	if info == "" {
		return nil
	}
	y := img.Bounds().Max.Y - 8
	return ann.drawString(info, r.config.BorderConfig.Left, y)
}

// projection maps data coordinates onto the plot area
type projection struct {
	area                   image.Rectangle
	xMin, xMax, yMin, yMax float64
}

func (p projection) x(f float64) int {
	ratio := (f - p.xMin) / (p.xMax - p.xMin)
	return p.area.Min.X + int(math.Round(ratio*float64(p.area.Dx()-1)))
}

func (p projection) y(t float64) int {
	ratio := (t - p.yMin) / (p.yMax - p.yMin)
	return p.area.Max.Y - 1 - int(math.Round(ratio*float64(p.area.Dy()-1)))
}

func (p projection) point(pt spectrum.Point) (int, int) {
	return p.x(pt.Frequency), p.y(pt.Temperature)
}

// annotator draws text with a single font at a changeable size
type annotator struct {
	font    *truetype.Font
	context *freetype.Context
	face    font.Face
}

func newAnnotator(f *truetype.Font, size float64, dst *image.RGBA) *annotator {
	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(f)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)
	ctx.SetClip(dst.Bounds())
	ctx.SetDst(dst)

	a := &annotator{font: f, context: ctx}
	a.setSize(size)
	return a
}

func (a *annotator) setSize(size float64) {
	if a.face != nil {
		_ = a.face.Close()
	}
	a.context.SetFontSize(size)
	a.face = truetype.NewFace(a.font, &truetype.Options{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingNone,
	})
}

func (a *annotator) Close() error {
	if a.face != nil {
		return a.face.Close()
	}
	return nil
}

// height returns the ascent of the current font in pixels
func (a *annotator) height() int {
	return a.face.Metrics().Ascent.Round()
}

func (a *annotator) width(s string) int {
	return font.MeasureString(a.face, s).Round()
}

// drawString draws s with its baseline at y
func (a *annotator) drawString(s string, x, y int) error {
	_, err := a.context.DrawString(s, freetype.Pt(x, y))
	return err
}

func finite(p spectrum.Point) bool {
	return !math.IsNaN(p.Frequency) && !math.IsInf(p.Frequency, 0) &&
		!math.IsNaN(p.Temperature) && !math.IsInf(p.Temperature, 0)
}

// finiteValues returns frequencies and temperatures of the finite points of s.
func finiteValues(s spectrum.Series) (xs, ys []float64) {
	for _, p := range s {
		if finite(p) {
			xs = append(xs, p.Frequency)
			ys = append(ys, p.Temperature)
		}
	}
	return xs, ys
}

// drawLine draws a straight line using Bresenham's algorithm. Pixels outside
// dst bounds are silently dropped.
func drawLine(dst *image.RGBA, x0, y0, x1, y1 int, c color.Color, thickness int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	off := thickness / 2
	plot := func(x, y int) {
		for i := 0; i < thickness; i++ {
			for j := 0; j < thickness; j++ {
				dst.Set(x+i-off, y+j-off, c)
			}
		}
	}

	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func drawRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.Set(x, r.Min.Y, c)
		dst.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.Set(r.Min.X, y, c)
		dst.Set(r.Max.X-1, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Helper functions

// niceStep returns a 1, 2 or 5 times power of ten step that splits span into
// roughly the desired number of intervals.
func niceStep(span, desired float64) float64 {
	if span <= 0 {
		return 1
	}
	desired = max(desired, 1)

	rough := span / desired
	magnitude := math.Pow(10, math.Floor(math.Log10(rough)))
	for _, m := range []float64{1, 2, 5, 10} {
		if step := m * magnitude; step >= rough {
			return step
		}
	}
	return 10 * magnitude
}

// formatFrequency formats a frequency given in MHz with an SI prefix.
func formatFrequency(mhz float64) string {
	value, prefix := humanize.ComputeSI(mhz * 1e6)
	return fmt.Sprintf("%s %sHz", humanize.FtoaWithDigits(value, 3), prefix)
}

// formatTemperature formats a scale label with as many decimals as the step needs.
func formatTemperature(t, step float64) string {
	decimals := 0
	if step < 1 {
		decimals = int(math.Ceil(-math.Log10(step)))
	}
	return fmt.Sprintf("%.*f", decimals, t)
}
