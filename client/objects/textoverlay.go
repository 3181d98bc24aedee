package objects

import (
	"image/color"
	"strings"

	"github.com/cbodonnell/goban/client/fonts"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

// TextOverlayObject dims the screen and centers a message on it.
type TextOverlayObject struct {
	*BaseObject

	textFn func() string
}

func NewTextOverlayObject(id string, msg string) GameObject {
	return NewDynamicTextOverlayObject(id, func() string { return msg })
}

// NewDynamicTextOverlayObject draws the text returned by textFn on every frame.
// Nothing is drawn while it is empty.
func NewDynamicTextOverlayObject(id string, textFn func() string) GameObject {
	return &TextOverlayObject{
		BaseObject: NewBaseObject(id, &NewBaseObjectOptions{ZIndex: 10}),
		textFn:     textFn,
	}
}

func (o *TextOverlayObject) Draw(screen *ebiten.Image) {
	t := strings.ToUpper(o.textFn())
	if t == "" {
		return
	}
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	vector.DrawFilledRect(screen, 0, 0, float32(w), float32(h), color.NRGBA{A: 160}, false)

	f := fonts.TTFLargeFont
	lines := strings.Split(t, "\n")
	lineHeight := f.Metrics().Height.Ceil()
	top := h/2 - lineHeight*len(lines)/2
	for i, line := range lines {
		bounds, _ := font.BoundString(f, line)
		x := w/2 - (bounds.Max.X-bounds.Min.X).Ceil()/2
		y := top + lineHeight*(i+1)
		text.Draw(screen, line, f, x, y, color.White)
	}
}
