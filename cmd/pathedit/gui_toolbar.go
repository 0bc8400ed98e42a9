package main

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/pathedit/config"
)

const toolbarHeight = 32

type palette struct {
	background color.Color
	bar        color.Color
	button     color.Color
	buttonText color.Color
	cell       color.Color
	emptyCell  color.Color
	grid       color.Color
	object     color.Color
	collision  color.Color
	selected   color.Color
	band       color.Color
	text       color.Color
	panel      color.Color
}

func paletteFor(theme string) palette {
	if theme == config.ThemeLight {
		return palette{
			background: color.RGBA{0xf0, 0xf0, 0xf0, 0xff},
			bar:        color.RGBA{220, 220, 240, 255},
			button:     color.RGBA{180, 180, 180, 255},
			buttonText: color.Black,
			cell:       color.RGBA{0xc8, 0xd8, 0xe8, 0xff},
			emptyCell:  color.RGBA{0xdc, 0xdc, 0xdc, 0xff},
			grid:       color.RGBA{0x80, 0x80, 0x80, 0xff},
			object:     color.RGBA{0xd0, 0x60, 0x00, 0xff},
			collision:  color.RGBA{0x00, 0x90, 0x00, 0xff},
			selected:   color.RGBA{0x00, 0x40, 0xff, 0xff},
			band:       color.RGBA{0x00, 0x40, 0xff, 0x40},
			text:       color.Black,
			panel:      color.RGBA{0xe4, 0xe4, 0xe4, 0xff},
		}
	}
	return palette{
		background: color.RGBA{0x18, 0x18, 0x18, 0xff},
		bar:        color.RGBA{40, 40, 40, 255},
		button:     color.RGBA{0x33, 0x33, 0x33, 0xff},
		buttonText: color.White,
		cell:       color.RGBA{0x2f, 0x4f, 0x4f, 0xff},
		emptyCell:  color.RGBA{0x20, 0x20, 0x20, 0xff},
		grid:       color.RGBA{0x60, 0x60, 0x60, 0xff},
		object:     color.RGBA{0xff, 0xa5, 0x00, 0xff},
		collision:  color.RGBA{0x00, 0xff, 0x00, 0xff},
		selected:   color.RGBA{0x40, 0xc0, 0xff, 0xff},
		band:       color.RGBA{0x40, 0xc0, 0xff, 0x40},
		text:       color.White,
		panel:      color.RGBA{0x24, 0x24, 0x24, 0xff},
	}
}

// itemAlpha is the opacity of items drawn with transparency enabled.
const itemAlpha = 0x60

// withItemAlpha returns the palette with the item colors faded to alpha.
func (p palette) withItemAlpha(alpha uint8) palette {
	p.object = fade(p.object, alpha)
	p.collision = fade(p.collision, alpha)
	p.selected = fade(p.selected, alpha)
	return p
}

// fade scales c's premultiplied channels to alpha.
func fade(c color.Color, alpha uint8) color.Color {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return color.RGBA{}
	}
	scale := func(v uint32) uint8 { return uint8(v * uint32(alpha) / a) }
	return color.RGBA{scale(r), scale(g), scale(b), alpha}
}

type toolAction struct {
	label string
	run   func()
}

// buildToolbar lays the actions out left to right along the top edge with
// a status label after them.
func buildToolbar(pal palette, actions []toolAction) (*ebitenui.UI, *widget.Text) {
	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	btnImg := &widget.ButtonImage{
		Idle:    imageui.NewNineSliceColor(pal.button),
		Hover:   imageui.NewNineSliceColor(pal.grid),
		Pressed: imageui.NewNineSliceColor(pal.selected),
	}
	btnText := &widget.ButtonTextColor{Idle: pal.buttonText}

	bar := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(imageui.NewNineSliceColor(pal.bar)),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(4),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 4, Bottom: 4, Left: 4, Right: 4}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(0, toolbarHeight),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionStart,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
				StretchHorizontal:  true,
			}),
		),
	)
	for _, a := range actions {
		run := a.run
		bar.AddChild(widget.NewButton(
			widget.ButtonOpts.Image(btnImg),
			widget.ButtonOpts.Text(a.label, &face, btnText),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(7*len(a.label)+12, toolbarHeight-8)),
			widget.ButtonOpts.ClickedHandler(func(*widget.ButtonClickedEventArgs) { run() }),
		))
	}
	status := widget.NewText(
		widget.TextOpts.Text("", &face, pal.text),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)
	bar.AddChild(status)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(bar)
	return &ebitenui.UI{Container: root}, status
}
