package plan

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/arthur-debert/stratum/pkg/layer"
	"github.com/arthur-debert/stratum/pkg/logging"
)

// ColorMode mirrors the config color setting.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Renderer writes plan output to a writer, with color decided once at
// construction.
type Renderer struct {
	w     io.Writer
	color bool
}

// NewRenderer builds a renderer for w. In auto mode color is enabled only
// for terminals, and NO_COLOR is honored.
func NewRenderer(w io.Writer, mode ColorMode) *Renderer {
	logger := logging.GetLogger("plan")
	color := colorEnabled(w, mode)
	logger.Debug().
		Str("mode", string(mode)).
		Bool("color", color).
		Msg("Renderer created")
	return &Renderer{w: w, color: color}
}

func colorEnabled(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if termenv.EnvNoColor() {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func (r *Renderer) styled(s string, style interface{ Render(...string) string }) string {
	if !r.color {
		return s
	}
	return style.Render(s)
}

// Text writes the application order of a compiled layer, one numbered line
// per feature.
func (r *Renderer) Text(res *layer.Result) error {
	ordered := res.Graph.Ordered()

	header := res.Layer.Label
	summary := fmt.Sprintf("%d features, %d edges", len(ordered), len(res.Graph.Edges()))
	if _, err := fmt.Fprintf(r.w, "%s  %s\n\n",
		r.styled(header, headerStyle), r.styled(summary, summaryStyle)); err != nil {
		return err
	}

	width := len(fmt.Sprintf("%d", len(ordered)))
	for i, f := range ordered {
		idx := fmt.Sprintf("%*d.", width, i+1)
		if _, err := fmt.Fprintf(r.w, "  %s %s %s\n",
			r.styled(idx, indexStyle),
			r.styled(string(f.Kind()), kindStyle),
			r.styled("'"+f.Label+"'", labelStyle)); err != nil {
			return err
		}
	}
	return nil
}
