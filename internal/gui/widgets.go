package gui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"codeberg.org/snonux/accentcoach/internal/evaluation"
)

// spectrumBars is the number of bars drawn by SpectrumDisplay
const spectrumBars = 32

// SpectrumDisplay draws microphone frequency bars while recording
type SpectrumDisplay struct {
	widget.BaseWidget

	bars   []*canvas.Rectangle
	levels []byte
}

// NewSpectrumDisplay creates an empty spectrum display
func NewSpectrumDisplay() *SpectrumDisplay {
	d := &SpectrumDisplay{
		bars:   make([]*canvas.Rectangle, spectrumBars),
		levels: make([]byte, spectrumBars),
	}
	for i := range d.bars {
		d.bars[i] = canvas.NewRectangle(theme.Color(theme.ColorNamePrimary))
	}
	d.ExtendBaseWidget(d)
	return d
}

// SetLevels sets the bar heights, 0 to 255. Must run on the fyne thread.
func (d *SpectrumDisplay) SetLevels(levels []byte) {
	copy(d.levels, levels)
	for i := len(levels); i < len(d.levels); i++ {
		d.levels[i] = 0
	}
	d.Refresh()
}

// Clear flattens all bars
func (d *SpectrumDisplay) Clear() {
	d.SetLevels(nil)
}

// CreateRenderer implements fyne.Widget
func (d *SpectrumDisplay) CreateRenderer() fyne.WidgetRenderer {
	objects := make([]fyne.CanvasObject, len(d.bars))
	for i, b := range d.bars {
		objects[i] = b
	}
	return &spectrumRenderer{display: d, objects: objects}
}

type spectrumRenderer struct {
	display *SpectrumDisplay
	objects []fyne.CanvasObject
}

func (r *spectrumRenderer) Layout(size fyne.Size) {
	n := len(r.display.bars)
	width := size.Width / float32(n)
	for i, bar := range r.display.bars {
		h := size.Height * float32(r.display.levels[i]) / 255
		bar.Resize(fyne.NewSize(width-1, h))
		bar.Move(fyne.NewPos(float32(i)*width, size.Height-h))
	}
}

func (r *spectrumRenderer) MinSize() fyne.Size {
	return fyne.NewSize(float32(2*len(r.display.bars)), 60)
}

func (r *spectrumRenderer) Refresh() {
	fill := theme.Color(theme.ColorNamePrimary)
	for _, bar := range r.display.bars {
		bar.FillColor = fill
		bar.Refresh()
	}
	r.Layout(r.display.Size())
}

func (r *spectrumRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *spectrumRenderer) Destroy() {}

// EvaluationPanel shows the score of the last take
type EvaluationPanel struct {
	widget.BaseWidget

	container *fyne.Container
	overall   *widget.Label
	advice    *widget.Label
	details   *fyne.Container
}

// NewEvaluationPanel creates a panel in its waiting state
func NewEvaluationPanel() *EvaluationPanel {
	p := &EvaluationPanel{}

	p.overall = widget.NewLabel("")
	p.overall.TextStyle = fyne.TextStyle{Bold: true}
	p.advice = widget.NewLabel("")
	p.advice.Wrapping = fyne.TextWrapWord
	p.details = container.NewVBox()

	p.container = container.NewBorder(
		widget.NewLabel("Evaluation:"),
		nil, nil, nil,
		container.NewVScroll(container.NewVBox(p.overall, p.advice, p.details)),
	)

	p.SetResult(nil)
	p.ExtendBaseWidget(p)
	return p
}

// CreateRenderer implements fyne.Widget
func (p *EvaluationPanel) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.container)
}

// SetResult shows res, or the waiting state when res is nil
func (p *EvaluationPanel) SetResult(res *evaluation.Result) {
	p.details.RemoveAll()

	switch {
	case res == nil:
		p.overall.SetText("")
		p.advice.SetText(waitingForPractice)
	case res.Report == nil:
		p.overall.SetText("Advice")
		p.advice.SetText(res.Advice)
	default:
		p.overall.SetText(fmt.Sprintf("Overall: %d/100", res.Report.OverallScore))
		p.advice.SetText(res.Report.OverallAdvice)
		for _, d := range res.Report.Dimensions() {
			p.details.Add(dimensionRow(d))
		}
	}
	p.details.Refresh()
}

func dimensionRow(d evaluation.NamedDimension) fyne.CanvasObject {
	bar := widget.NewProgressBar()
	bar.Max = 100
	bar.SetValue(float64(d.Score))

	advice := widget.NewLabel(d.Advice)
	advice.Wrapping = fyne.TextWrapWord

	title := canvas.NewText(d.Name, color.Gray{Y: 0x99})
	title.TextStyle = fyne.TextStyle{Bold: true}

	return container.NewVBox(container.NewBorder(nil, nil, title, nil, bar), advice)
}
