package objects

import (
	"image/color"

	"github.com/cbodonnell/goban/client/fonts"
	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
)

// HUDObject is a one line status bar along the top edge of the board.
type HUDObject struct {
	*BaseObject

	statusFn func() string
	ui       *ebitenui.UI
	label    *widget.Text
}

var _ GameObject = &HUDObject{}

func NewHUDObject(id string, statusFn func() string) *HUDObject {
	return &HUDObject{
		BaseObject: NewBaseObject(id, &NewBaseObjectOptions{ZIndex: 5}),
		statusFn:   statusFn,
	}
}

func (o *HUDObject) Init() error {
	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout(
			widget.AnchorLayoutOpts.Padding(widget.Insets{Top: 2, Left: 4, Right: 4}),
		)),
	)

	o.label = widget.NewText(
		widget.TextOpts.Text("", fonts.MPlusSmallFont, color.NRGBA{R: 40, G: 30, B: 20, A: 255}),
		widget.TextOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionStart,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
			}),
		),
	)
	root.AddChild(o.label)

	o.ui = &ebitenui.UI{
		Container: root,
	}
	return nil
}

func (o *HUDObject) Update() error {
	o.label.Label = o.statusFn()
	o.ui.Update()
	return nil
}

func (o *HUDObject) Draw(screen *ebiten.Image) {
	o.ui.Draw(screen)
}
