// Package chart renders one power-over-time chart per calendar day.
//
// Charts are drawn with go-chart. The X axis always spans the whole day
// (0 to 24 hours) so that charts of different days line up; the Y axis is
// fitted to the day's power range and always includes zero.
package chart

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/xtxerr/solarplot/internal/constants"
	"github.com/xtxerr/solarplot/internal/errors"
	"github.com/xtxerr/solarplot/internal/logging"
	"github.com/xtxerr/solarplot/internal/storage/aggregate"
	"github.com/xtxerr/solarplot/internal/storage/types"
)

// Options configures a Renderer.
type Options struct {
	// Output is the path prefix. Each day is written to
	// <Output>-<YYYY-MM-DD>.<Format>.
	Output string

	// Format is "png" or "svg".
	Format string

	Width  int
	Height int
}

// Renderer writes day charts to files.
type Renderer struct {
	opts Options
}

// New creates a renderer. A ".png" or ".svg" suffix on opts.Output selects
// the format and is stripped from the prefix.
func New(opts Options) *Renderer {
	opts.Output, opts.Format = SplitOutput(opts.Output, opts.Format)
	return &Renderer{opts: opts}
}

// SplitOutput separates an explicit image extension from an output prefix.
func SplitOutput(output, format string) (string, string) {
	ext := strings.ToLower(filepath.Ext(output))
	switch ext {
	case "." + constants.ChartFormatPNG, "." + constants.ChartFormatSVG:
		return strings.TrimSuffix(output, filepath.Ext(output)), ext[1:]
	}
	if format == "" {
		format = constants.ChartFormatPNG
	}
	return output, format
}

// Path returns the file a day with the given label is written to.
func (r *Renderer) Path(label string) string {
	return fmt.Sprintf("%s-%s.%s", r.opts.Output, label, r.opts.Format)
}

// Render draws seg and writes it to Path(seg.Label()). The file is replaced
// atomically.
func (r *Renderer) Render(seg types.DaySegment, sum aggregate.DaySummary) (string, error) {
	log := logging.Component("chart")

	path := r.Path(seg.Label())
	if seg.Len() == 0 {
		return "", errors.Wrapf(errors.ErrRender, "%s: empty segment", seg.Label())
	}

	ch := r.Build(seg, sum)

	if err := writeAtomic(path, func(w *bufio.Writer) error {
		return ch.Render(r.rendererProvider(), w)
	}); err != nil {
		return "", errors.Wrapf(errors.ErrRender, "%s: %v", path, err)
	}

	log.Debug("chart written", "date", seg.Label(), "path", path, "points", seg.Len())
	return path, nil
}

func (r *Renderer) rendererProvider() gochart.RendererProvider {
	if r.opts.Format == constants.ChartFormatSVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// Build returns the chart for seg without rendering it.
func (r *Renderer) Build(seg types.DaySegment, sum aggregate.DaySummary) gochart.Chart {
	xs := make([]float64, 0, seg.Len())
	ys := make([]float64, 0, seg.Len())
	for _, p := range seg.Points() {
		xs = append(xs, p.Hour)
		ys = append(ys, p.PowerW)
	}

	// A single point has no extent; draw it as a one-minute segment.
	if len(xs) == 1 {
		xs = append(xs, xs[0]+1.0/60.0)
		ys = append(ys, ys[0])
	}

	yMin, yMax := YRange(ys)

	return gochart.Chart{
		Title:  Title(seg.Label(), sum),
		Width:  r.opts.Width,
		Height: r.opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: gochart.XAxis{
			Name:  "Hour",
			Range: &gochart.ContinuousRange{Min: 0, Max: 24},
			Ticks: hourTicks(),
		},
		YAxis: gochart.YAxis{
			Name:  "Power (W)",
			Range: &gochart.ContinuousRange{Min: yMin, Max: yMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    "Power",
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: gochart.ColorBlue,
					FillColor:   gochart.ColorBlue.WithAlpha(48),
					StrokeWidth: 2,
				},
			},
			zeroLine(),
		},
	}
}

// Title returns the chart title for a day.
func Title(label string, sum aggregate.DaySummary) string {
	return fmt.Sprintf("Solar power %s (peak %.0f W, %.0f Wh)", label, sum.PeakW, sum.EnergyWh)
}

// YRange returns the Y axis bounds for power values: always including zero,
// at least one watt tall, padded by 10% on each side.
func YRange(values []float64) (float64, float64) {
	lo, hi := 0.0, 1.0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.1
	if lo < 0 {
		lo -= pad
	}
	return lo, hi + pad
}

func hourTicks() []gochart.Tick {
	ticks := make([]gochart.Tick, 0, 13)
	for h := 0; h <= 24; h += 2 {
		ticks = append(ticks, gochart.Tick{Value: float64(h), Label: fmt.Sprintf("%02d:00", h)})
	}
	return ticks
}

func zeroLine() gochart.Series {
	return gochart.ContinuousSeries{
		Name:    "0 W",
		XValues: []float64{0, 24},
		YValues: []float64{0, 0},
		Style: gochart.Style{
			StrokeColor:     drawing.ColorFromHex("888888"),
			StrokeWidth:     1,
			StrokeDashArray: []float64{4, 4},
		},
	}
}

// writeAtomic writes through a temporary file in the target directory and
// renames it into place.
func writeAtomic(path string, fn func(w *bufio.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
