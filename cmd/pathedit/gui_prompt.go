package main

import (
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// prompt is a one-line modal text input. Enter submits, Escape cancels.
// Hints are shown under the input, e.g. the enum values of a property or
// the path ids of a level.
type prompt struct {
	open    bool
	label   string
	input   string
	hints   []string
	onEnter func(string)
	chars   []rune
}

func (p *prompt) IsOpen() bool { return p.open }

func (p *prompt) Open(label, initial string, hints []string, onEnter func(string)) {
	p.label, p.input, p.hints, p.onEnter = label, initial, hints, onEnter
	p.open = true
}

func (p *prompt) close() {
	*p = prompt{chars: p.chars[:0]}
}

// Update consumes keyboard input while open and reports whether it did.
func (p *prompt) Update() bool {
	if !p.open {
		return false
	}
	p.chars = ebiten.AppendInputChars(p.chars[:0])
	for _, r := range p.chars {
		if r == '\n' || r == '\r' {
			continue
		}
		p.input += string(r)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(p.input) > 0 {
		rs := []rune(p.input)
		p.input = string(rs[:len(rs)-1])
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
		cur, fn := p.input, p.onEnter
		p.open = false
		if fn != nil {
			fn(cur)
		}
		// The callback may chain another prompt.
		if !p.open {
			p.close()
		}
		return true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		p.close()
		return true
	}
	return true
}

func (p *prompt) Draw(screen *ebiten.Image) {
	if !p.open {
		return
	}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	lines := 1
	if len(p.hints) > 0 {
		lines++
	}
	h := float32(16*lines + 24)
	top := float32(sh)/2 - h/2
	vector.FillRect(screen, 0, top, float32(sw), h, color.RGBA{A: 0xc0}, false)
	ebitenutil.DebugPrintAt(screen, p.label+" "+p.input+"_", 16, int(top)+8)
	if len(p.hints) > 0 {
		ebitenutil.DebugPrintAt(screen, strings.Join(p.hints, "  "), 16, int(top)+26)
	}
}
