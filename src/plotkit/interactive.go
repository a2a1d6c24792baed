package plotkit

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// InteractiveFigure is the windowed figure: the rendered raster plus a
// crosshair/tooltip overlay tracking the mouse.
type InteractiveFigure struct {
	Canvas fyne.CanvasObject

	img  image.Image
	plan *Plan
}

func (f *InteractiveFigure) Backend() Backend { return BackendInteractive }

// Image returns the underlying raster, e.g. for export.
func (f *InteractiveFigure) Image() image.Image { return f.img }

// ShowWindow opens the figure in its own window and blocks until it closes.
// Fails fast when no windowing environment is available instead of letting
// the driver abort deep inside initialization.
func (f *InteractiveFigure) ShowWindow(title string) error {
	if runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return &RenderError{
			Backend: BackendInteractive,
			Op:      "open window",
			Err:     fmt.Errorf("no display available; the interactive backend needs a windowing environment"),
		}
	}
	a := app.New()
	w := a.NewWindow(title)
	w.SetContent(f.Canvas)
	w.Resize(fyne.NewSize(float32(f.plan.Config.Width), float32(f.plan.Config.Height)))
	w.ShowAndRun()
	return nil
}

type interactiveBackend struct{}

func (b interactiveBackend) render(plan *Plan) (Figure, error) {
	img, err := imageBackend{}.renderImage(plan)
	if err != nil {
		return nil, &RenderError{Backend: BackendInteractive, Op: "render " + plan.Kind.String(), Err: err}
	}
	imgCanvas := canvas.NewImageFromImage(img)
	imgCanvas.FillMode = canvas.ImageFillContain
	imgCanvas.SetMinSize(fyne.NewSize(float32(plan.Config.Width)/2, float32(plan.Config.Height)/2))

	overlay := newHoverOverlay(plan, imgCanvas)
	return &InteractiveFigure{
		Canvas: container.NewStack(imgCanvas, overlay),
		img:    img,
		plan:   plan,
	}, nil
}

// hoverPoint is one observation in display coordinates: the y value is
// intensity for 1D kinds and the spatial y for 2D kinds.
type hoverPoint struct {
	x, y  float64
	hover string
}

func collectHoverPoints(plan *Plan) []hoverPoint {
	if !plan.ShowTooltips {
		return nil
	}
	twoD := plan.Kind.twoDimensional()
	var out []hoverPoint
	add := func(series []Series) {
		for _, s := range series {
			for _, p := range s.Points {
				hp := hoverPoint{x: p.X, y: p.Intensity, hover: p.Hover}
				if twoD {
					hp.y = p.Y
				}
				out = append(out, hp)
			}
		}
	}
	add(plan.Series)
	add(plan.MirrorSeries)
	return out
}

// nearestIndex returns the index of the closest position to (mx, my) and
// the distance, or -1 for empty input. Positions and the cursor share one
// coordinate space.
func nearestIndex(px, py []float32, mx, my float32) (int, float32) {
	best := -1
	bestD := float32(math.MaxFloat32)
	for i := range px {
		dx := px[i] - mx
		dy := py[i] - my
		d := dx*dx + dy*dy
		if d < bestD {
			bestD = d
			best = i
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, float32(math.Sqrt(float64(bestD)))
}

// snapRadius is how close (in overlay pixels) the cursor must be to a point
// before its tooltip shows.
const snapRadius = 28

// chart gutter approximation in image pixel space: the background padding
// used by the raster renderer plus the axis label band go-chart adds.
const (
	plotInsetLeft   = float32(16 + 34)
	plotInsetRight  = float32(12)
	plotInsetTop    = float32(14 + 10)
	plotInsetBottom = float32(14 + 28)
)

// hoverOverlay draws a crosshair over the chart image and a tooltip with
// the nearest observation's hover text.
type hoverOverlay struct {
	widget.BaseWidget
	plan      *Plan
	points    []hoverPoint
	imgCanvas *canvas.Image
	mouse     fyne.Position
	hovering  bool
}

func newHoverOverlay(plan *Plan, imgCanvas *canvas.Image) *hoverOverlay {
	o := &hoverOverlay{plan: plan, points: collectHoverPoints(plan), imgCanvas: imgCanvas}
	o.ExtendBaseWidget(o)
	return o
}

func (o *hoverOverlay) CreateRenderer() fyne.WidgetRenderer {
	// transparent background so the whole area receives hover events
	bg := canvas.NewRectangle(color.RGBA{})
	lineV := canvas.NewLine(color.RGBA{R: 200, G: 200, B: 200, A: 220})
	lineV.StrokeWidth = 1
	lineH := canvas.NewLine(color.RGBA{R: 200, G: 200, B: 200, A: 220})
	lineH.StrokeWidth = 1
	label := widget.NewRichText()
	label.Wrapping = fyne.TextWrapOff
	labelBG := canvas.NewRectangle(color.RGBA{A: 170})
	return &hoverRenderer{
		o: o, bg: bg, lineV: lineV, lineH: lineH, labelBG: labelBG, label: label,
		objs: []fyne.CanvasObject{bg, lineV, lineH, labelBG, label},
	}
}

func (o *hoverOverlay) MouseMoved(ev *desktop.MouseEvent) {
	o.hovering = true
	o.mouse = ev.Position
	o.Refresh()
}
func (o *hoverOverlay) MouseIn(ev *desktop.MouseEvent) { o.hovering = true; o.Refresh() }
func (o *hoverOverlay) MouseOut()                      { o.hovering = false; o.Refresh() }

var _ desktop.Hoverable = (*hoverOverlay)(nil)

type hoverRenderer struct {
	o       *hoverOverlay
	bg      *canvas.Rectangle
	lineV   *canvas.Line
	lineH   *canvas.Line
	labelBG *canvas.Rectangle
	label   *widget.RichText
	objs    []fyne.CanvasObject
}

func (r *hoverRenderer) Destroy()                     {}
func (r *hoverRenderer) MinSize() fyne.Size           { return fyne.NewSize(10, 10) }
func (r *hoverRenderer) Objects() []fyne.CanvasObject { return r.objs }

func (r *hoverRenderer) Refresh() {
	r.Layout(r.o.Size())
	r.bg.Refresh()
	r.lineV.Refresh()
	r.lineH.Refresh()
	r.labelBG.Refresh()
	r.label.Refresh()
}

func (r *hoverRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	if !r.o.hovering {
		r.hide()
		return
	}
	x, y := clampPos(r.o.mouse, size)

	// crosshair follows the mouse
	r.lineV.Position1 = fyne.NewPos(x, 0)
	r.lineV.Position2 = fyne.NewPos(x, size.Height)
	r.lineH.Position1 = fyne.NewPos(0, y)
	r.lineH.Position2 = fyne.NewPos(size.Width, y)

	if len(r.o.points) == 0 {
		r.hideLabel()
		return
	}
	px, py := r.projectPoints(size)
	idx, dist := nearestIndex(px, py, x, y)
	if idx < 0 || dist > snapRadius {
		r.hideLabel()
		return
	}
	r.label.Segments = []widget.RichTextSegment{&widget.TextSegment{Text: r.o.points[idx].hover}}
	r.label.Refresh()

	pad := float32(6)
	ts := r.label.MinSize()
	bgW := ts.Width + 2*pad
	bgH := ts.Height + 2*pad
	tx, ty := x+8, y+8
	if tx+bgW > size.Width {
		tx = size.Width - bgW
	}
	if ty+bgH > size.Height {
		ty = size.Height - bgH
	}
	r.labelBG.Resize(fyne.NewSize(bgW, bgH))
	r.labelBG.Move(fyne.NewPos(tx, ty))
	r.label.Move(fyne.NewPos(tx+pad, ty+pad))
}

// projectPoints maps every hover point from data coordinates into overlay
// pixels, accounting for the contain-fit scaling of the chart image.
func (r *hoverRenderer) projectPoints(size fyne.Size) (px, py []float32) {
	imgW, imgH := float32(r.o.plan.Config.Width), float32(r.o.plan.Config.Height)
	if r.o.imgCanvas != nil && r.o.imgCanvas.Image != nil {
		b := r.o.imgCanvas.Image.Bounds()
		imgW, imgH = float32(b.Dx()), float32(b.Dy())
	}
	sx := size.Width / imgW
	sy := size.Height / imgH
	scale := sx
	if sy < sx {
		scale = sy
	}
	drawW := imgW * scale
	drawH := imgH * scale
	drawX := (size.Width - drawW) / 2
	drawY := (size.Height - drawH) / 2

	plotW := imgW - plotInsetLeft - plotInsetRight
	plotH := imgH - plotInsetTop - plotInsetBottom
	if plotW < 1 {
		plotW = imgW
	}
	if plotH < 1 {
		plotH = imgH
	}
	xr, yr := r.o.plan.XRange, r.o.plan.YRange
	px = make([]float32, len(r.o.points))
	py = make([]float32, len(r.o.points))
	for i, p := range r.o.points {
		fx := 0.0
		if xr.Span() > 0 {
			fx = (p.x - xr.Min) / xr.Span()
		}
		fy := 0.0
		if yr.Span() > 0 {
			fy = (p.y - yr.Min) / yr.Span()
		}
		pxImg := plotInsetLeft + float32(fx)*plotW
		pyImg := plotInsetTop + (1-float32(fy))*plotH
		px[i] = drawX + pxImg*scale
		py[i] = drawY + pyImg*scale
	}
	return px, py
}

func (r *hoverRenderer) hide() {
	r.lineV.Position1 = fyne.NewPos(-10, -10)
	r.lineV.Position2 = fyne.NewPos(-10, -10)
	r.lineH.Position1 = fyne.NewPos(-10, -10)
	r.lineH.Position2 = fyne.NewPos(-10, -10)
	r.hideLabel()
}

func (r *hoverRenderer) hideLabel() {
	r.label.Segments = nil
	r.labelBG.Resize(fyne.NewSize(0, 0))
	r.labelBG.Move(fyne.NewPos(-1000, -1000))
	r.label.Move(fyne.NewPos(-1000, -1000))
}

func clampPos(p fyne.Position, size fyne.Size) (float32, float32) {
	x, y := p.X, p.Y
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x > size.Width {
		x = size.Width
	}
	if y > size.Height {
		y = size.Height
	}
	return x, y
}
