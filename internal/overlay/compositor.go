package overlay

import (
	"fmt"
	"image"
	"math"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"

	"dubstudio/internal/captions"
	"dubstudio/internal/services"
)

const referenceHeight = 720.0

// Panel and text colours as straight RGBA in [0,1].
var (
	panelColor  = [4]float64{2.0 / 255, 6.0 / 255, 23.0 / 255, 0.85}
	textColor   = [4]float64{1, 1, 1, 1}
	shadowColor = [4]float64{0, 0, 0, 0.5}
)

// Layout is the caption geometry for one output size and text.
type Layout struct {
	FontSize  int
	TextWidth float64
	PanelX    float64
	PanelY    float64
	PanelW    float64
	PanelH    float64
	Radius    float64
	CenterX   float64
	BaselineY float64
}

// Compositor renders frames with an optional caption overlay. Faces are
// shared between calls, so one Compositor serves one render at a time.
type Compositor struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[int]font.Face
}

// NewCompositor parses the embedded Go Bold font.
func NewCompositor() (*Compositor, error) {
	parsed, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("overlay: parse font: %w", err)
	}
	return &Compositor{font: parsed, faces: make(map[int]font.Face)}, nil
}

// Composite draws frame into dst scaled to w×h and, when active is non-nil,
// the caption panel and text on top. With no caption dst holds exactly the
// scaled frame.
func (c *Compositor) Composite(dst *image.RGBA, frame image.Image, active *captions.Caption, w, h int) error {
	if dst == nil || frame == nil {
		return services.Wrap(services.ErrRenderResource, "composite", "validate", "nil frame or target", nil)
	}
	if w <= 0 || h <= 0 {
		return services.Wrap(services.ErrRenderResource, "composite", "validate", fmt.Sprintf("invalid size %dx%d", w, h), nil)
	}
	target := image.Rect(0, 0, w, h)
	if !target.In(dst.Bounds()) {
		return services.Wrap(services.ErrRenderResource, "composite", "validate", fmt.Sprintf("target %v smaller than %dx%d", dst.Bounds(), w, h), nil)
	}

	src := frame.Bounds()
	if src.Dx() == w && src.Dy() == h {
		xdraw.Draw(dst, target, frame, src.Min, xdraw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(dst, target, frame, src, xdraw.Src, nil)
	}

	if active == nil {
		return nil
	}
	text := captionLine(active.Text)
	if text == "" {
		return nil
	}

	face, err := c.face(fontSize(h))
	if err != nil {
		return err
	}
	dc := gg.NewContextForRGBA(dst.SubImage(target).(*image.RGBA))
	dc.SetFontFace(face)
	layout := c.layout(dc, text, w, h)

	dc.SetRGBA(panelColor[0], panelColor[1], panelColor[2], panelColor[3])
	dc.DrawRoundedRectangle(layout.PanelX, layout.PanelY, layout.PanelW, layout.PanelH, layout.Radius)
	dc.Fill()

	drawShadow(dc, text, layout, h)

	dc.SetRGBA(textColor[0], textColor[1], textColor[2], textColor[3])
	dc.DrawStringAnchored(text, layout.CenterX, layout.BaselineY, 0.5, 0)
	return nil
}

// Layout measures text at the font size used for an h-pixel-tall output.
func (c *Compositor) Layout(text string, w, h int) (Layout, error) {
	face, err := c.face(fontSize(h))
	if err != nil {
		return Layout{}, err
	}
	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face)
	return c.layout(dc, captionLine(text), w, h), nil
}

// Close releases cached font faces.
func (c *Compositor) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var first error
	for size, face := range c.faces {
		if err := face.Close(); err != nil && first == nil {
			first = err
		}
		delete(c.faces, size)
	}
	return first
}

func (c *Compositor) layout(dc *gg.Context, text string, w, h int) Layout {
	size := fontSize(h)
	scale := float64(h) / referenceHeight
	padX := 30 * scale
	padY := 30 * scale
	textW, _ := dc.MeasureString(text)
	fs := float64(size)
	return Layout{
		FontSize:  size,
		TextWidth: textW,
		PanelX:    float64(w)/2 - textW/2 - padX,
		PanelY:    float64(h) - fs*2.5,
		PanelW:    textW + 2*padX,
		PanelH:    fs + padY,
		Radius:    15 * scale,
		CenterX:   float64(w) / 2,
		BaselineY: float64(h) - fs*1.6,
	}
}

func (c *Compositor) face(size int) (font.Face, error) {
	if size < 1 {
		size = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if face, ok := c.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrRenderResource, "composite", "font face", fmt.Sprintf("size %d", size), err)
	}
	c.faces[size] = face
	return face, nil
}

// drawShadow approximates a 10 px blur with a ring of faint offset copies.
func drawShadow(dc *gg.Context, text string, layout Layout, h int) {
	radius := math.Max(1, 3*float64(h)/referenceHeight)
	const steps = 8
	alpha := shadowColor[3] / 4
	for ring := 1; ring <= 2; ring++ {
		r := radius * float64(ring) / 2
		for i := 0; i < steps; i++ {
			angle := 2 * math.Pi * float64(i) / steps
			dc.SetRGBA(shadowColor[0], shadowColor[1], shadowColor[2], alpha/float64(ring))
			dc.DrawStringAnchored(text, layout.CenterX+r*math.Cos(angle), layout.BaselineY+r*math.Sin(angle), 0.5, 0)
		}
	}
}

func fontSize(h int) int {
	return int(math.Floor(float64(h) / 18))
}

func captionLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
