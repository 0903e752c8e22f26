package evaluation

import (
	"image/color"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var scatterFormats = map[string]bool{".png": true, ".svg": true, ".pdf": true}

// methodGlyphs are assigned to methods in result set order and reused past the end.
var methodGlyphs = []draw.GlyphDrawer{
	draw.CrossGlyph{},
	draw.PlusGlyph{},
	draw.TriangleGlyph{},
	draw.SquareGlyph{},
	draw.PyramidGlyph{},
	draw.RingGlyph{},
}

// CollectionColors returns n evenly spaced hues, one per accepted collection.
func CollectionColors(n int) []color.Color {
	colors := make([]color.Color, n)
	for i := range colors {
		colors[i] = colorful.Hcl(360*float64(i)/float64(n), 0.6, 0.55).Clamped()
	}
	return colors
}

// SaveScatter plots every per-point error, x against y, with one colour per collection and one marker
// per method. The file format follows the extension: .png, .svg or .pdf.
func SaveScatter(r *Report, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !scatterFormats[ext] {
		return errors.Errorf("unsupported plot format %q, expected .png, .svg or .pdf", ext)
	}

	p := plot.New()
	p.Title.Text = "Difference between the image points and the reprojected points"
	p.X.Label.Text = "x error (pixels)"
	p.Y.Label.Text = "y error (pixels)"
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	colors := CollectionColors(len(r.Collections))
	for ci, c := range r.Collections {
		for mi, m := range c.Methods {
			pts := make(plotter.XYs, len(m.Errors))
			for i, e := range m.Errors {
				pts[i] = plotter.XY{X: e.X, Y: e.Y}
			}
			s, err := plotter.NewScatter(pts)
			if err != nil {
				return errors.Wrapf(err, "collection %s, method %s", c.Collection, m.Method)
			}
			s.GlyphStyle.Color = colors[ci]
			s.GlyphStyle.Shape = methodGlyphs[mi%len(methodGlyphs)]
			s.GlyphStyle.Radius = vg.Points(3)
			p.Add(s)
			if mi == 0 {
				p.Legend.Add("collection "+c.Collection, s)
			}
		}
	}
	for mi, m := range r.Methods() {
		s, err := plotter.NewScatter(plotter.XYs{})
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = color.Black
		s.GlyphStyle.Shape = methodGlyphs[mi%len(methodGlyphs)]
		s.GlyphStyle.Radius = vg.Points(3)
		p.Legend.Add(m, s)
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrap(err, "saving scatter plot")
	}
	return nil
}
