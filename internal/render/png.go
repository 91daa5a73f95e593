package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/seabattle-client/internal/board"
)

const (
	cellSize   = 40
	sideMargin = 28
	hudHeight  = 52
	gapToBoard = 14
	panelInset = 6
	iconInset  = 4
)

var (
	waterLight   = color.RGBA{R: 171, G: 205, B: 228, A: 255}
	waterDark    = color.RGBA{R: 150, G: 188, B: 216, A: 255}
	zoneShade    = color.NRGBA{R: 255, G: 244, B: 190, A: 90}
	ownTint      = color.NRGBA{R: 76, G: 124, B: 224, A: 255}
	enemyTint    = color.NRGBA{R: 214, G: 84, B: 72, A: 255}
	hiddenTint   = color.NRGBA{R: 120, G: 124, B: 136, A: 255}
	labelColor   = color.NRGBA{R: 250, G: 250, B: 255, A: 255}
	coordColor   = color.NRGBA{R: 36, G: 46, B: 70, A: 255}
	hudPanel     = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudText      = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudUrgent    = color.NRGBA{R: 255, G: 144, B: 120, A: 255}
	originFill   = color.NRGBA{R: 255, G: 228, B: 120, A: 150}
	memberFill   = color.NRGBA{R: 255, G: 200, B: 90, A: 120}
	destFill     = color.NRGBA{R: 120, G: 220, B: 140, A: 130}
	candFill     = color.NRGBA{R: 182, G: 184, B: 190, A: 130}
	carriedFill  = color.NRGBA{R: 148, G: 207, B: 255, A: 150}
	targetFill   = color.NRGBA{R: 230, G: 60, B: 60, A: 110}
	boardOutline = color.NRGBA{R: 36, G: 46, B: 70, A: 255}
)

// PNG draws the scene as an image. The context is checked between the
// drawing passes.
func PNG(ctx context.Context, s Scene) ([]byte, error) {
	boardW := board.Cols * cellSize
	boardH := board.Rows * cellSize
	top := sideMargin
	if s.Header != "" || s.HUD != nil {
		top = hudHeight + gapToBoard
	}
	origin := image.Point{X: sideMargin, Y: top}
	img := image.NewRGBA(image.Rect(0, 0, boardW+sideMargin*2, boardH+top+sideMargin))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 232, G: 238, B: 244, A: 255}), image.Point{}, draw.Src)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	drawWater(img, s, origin)
	drawOverlay(img, s, origin)
	if err := drawPieces(img, s, origin); err != nil {
		return nil, err
	}
	drawOutline(img, image.Rect(origin.X, origin.Y, origin.X+boardW, origin.Y+boardH))
	drawCoordinates(img, origin)
	drawHUD(img, s, image.Rect(panelInset, panelInset, img.Bounds().Dx()-panelInset, hudHeight))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func cellRect(row, col int, origin image.Point) image.Rectangle {
	x := origin.X + col*cellSize
	y := origin.Y + row*cellSize
	return image.Rect(x, y, x+cellSize, y+cellSize)
}

func drawWater(img *image.RGBA, s Scene, origin image.Point) {
	cells(s.Seat, func(row, col int, at board.Coord) {
		clr := waterLight
		if (row+col)%2 == 1 {
			clr = waterDark
		}
		r := cellRect(row, col, origin)
		draw.Draw(img, r, image.NewUniform(clr), image.Point{}, draw.Src)
		if s.Zone && board.InZone(s.Seat, at) {
			draw.Draw(img, r, image.NewUniform(zoneShade), image.Point{}, draw.Over)
		}
	})
}

func markFill(m Mark) (color.Color, bool) {
	switch m {
	case MarkOrigin:
		return originFill, true
	case MarkMember:
		return memberFill, true
	case MarkDestination:
		return destFill, true
	case MarkCandidate:
		return candFill, true
	case MarkCarried:
		return carriedFill, true
	case MarkTarget:
		return targetFill, true
	default:
		return nil, false
	}
}

func drawOverlay(img *image.RGBA, s Scene, origin image.Point) {
	marks := Marks(s.Selection)
	if len(marks) == 0 {
		return
	}
	cells(s.Seat, func(row, col int, at board.Coord) {
		clr, ok := markFill(marks[at])
		if !ok {
			return
		}
		draw.Draw(img, cellRect(row, col, origin), image.NewUniform(clr), image.Point{}, draw.Over)
	})
}

func drawPieces(img *image.RGBA, s Scene, origin image.Point) error {
	if s.Board == nil {
		return nil
	}
	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	var firstErr error
	cells(s.Seat, func(row, col int, at board.Coord) {
		p, ok := s.Board.At(at)
		if !ok || firstErr != nil {
			return
		}
		tint, label := ownTint, string(p.Kind)
		switch {
		case p.Owner != s.Seat && p.Hidden():
			tint, label = hiddenTint, ""
		case p.Owner != s.Seat:
			tint = enemyTint
		}
		size := cellSize - iconInset*2
		icon, err := renderIcon(iconName(p.Kind), tint, size)
		if err != nil {
			firstErr = err
			return
		}
		r := cellRect(row, col, origin)
		dst := image.Rect(r.Min.X+iconInset, r.Min.Y+iconInset, r.Max.X-iconInset, r.Max.Y-iconInset)
		draw.Draw(img, dst, icon, image.Point{}, draw.Over)
		if label != "" {
			drawCenteredString(drawer, image.Rect(r.Min.X, r.Max.Y-16, r.Max.X, r.Max.Y), label, labelColor)
		}
	})
	return firstErr
}

func drawOutline(img *image.RGBA, r image.Rectangle) {
	fill := image.NewUniform(boardOutline)
	draw.Draw(img, image.Rect(r.Min.X-2, r.Min.Y-2, r.Max.X+2, r.Min.Y), fill, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X-2, r.Max.Y, r.Max.X+2, r.Max.Y+2), fill, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X-2, r.Min.Y, r.Min.X, r.Max.Y), fill, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Max.X, r.Min.Y, r.Max.X+2, r.Max.Y), fill, image.Point{}, draw.Src)
}

func drawCoordinates(img *image.RGBA, origin image.Point) {
	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	for row := 0; row < board.Rows; row++ {
		r := cellRect(row, 0, origin)
		drawCenteredString(drawer, image.Rect(0, r.Min.Y, origin.X-2, r.Max.Y), fmt.Sprint(row+1), coordColor)
	}
	for col := 0; col < board.Cols; col++ {
		r := cellRect(board.Rows-1, col, origin)
		drawCenteredString(drawer, image.Rect(r.Min.X, r.Max.Y+2, r.Max.X, r.Max.Y+sideMargin), string(rune('a'+col)), coordColor)
	}
}

func drawHUD(img *image.RGBA, s Scene, rect image.Rectangle) {
	if s.Header == "" && s.HUD == nil {
		return
	}
	drawRoundedPanel(img, rect, 10, hudPanel)
	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	half := rect.Dy() / 2
	top := image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+half)
	bottom := image.Rect(rect.Min.X, rect.Min.Y+half, rect.Max.X, rect.Max.Y)

	header := truncateWithEllipsis(basicfont.Face7x13, s.Header, rect.Dx()-20)
	if s.HUD == nil {
		drawCenteredString(drawer, rect, header, hudText)
		return
	}
	drawCenteredString(drawer, top, header, hudText)
	clr := color.Color(hudText)
	if s.HUD.TurnUrgent {
		clr = hudUrgent
	}
	drawCenteredString(drawer, bottom, hudLine(*s.HUD), clr)
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if rect.Empty() {
		return
	}
	radius = min(radius, rect.Dx()/2, rect.Dy()/2)
	fill := image.NewUniform(clr)
	draw.Draw(img, image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y), fill, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius), fill, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius), fill, image.Point{}, draw.Over)
	corners := []image.Point{
		{rect.Min.X + radius, rect.Min.Y + radius},
		{rect.Max.X - radius - 1, rect.Min.Y + radius},
		{rect.Min.X + radius, rect.Max.Y - radius - 1},
		{rect.Max.X - radius - 1, rect.Max.Y - radius - 1},
	}
	for _, c := range corners {
		drawQuarter(img, c, radius, rect, fill)
	}
}

// drawQuarter fills the part of a disc at c that lies in the corner
// square outside the panel's cross.
func drawQuarter(img *image.RGBA, c image.Point, radius int, rect image.Rectangle, fill image.Image) {
	rr := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			px, py := c.X+x, c.Y+y
			if x*x+y*y > rr || !(image.Point{X: px, Y: py}).In(rect) {
				continue
			}
			inCross := (px >= rect.Min.X+radius && px < rect.Max.X-radius) ||
				(py >= rect.Min.Y+radius && py < rect.Max.Y-radius)
			if inCross {
				continue
			}
			draw.Draw(img, image.Rect(px, py, px+1, py+1), fill, image.Point{}, draw.Over)
		}
	}
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if drawer == nil || text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := max(rect.Min.X, rect.Min.X+(rect.Dx()-width)/2)
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 {
		return trimmed
	}
	d := font.Drawer{Face: face}
	if d.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}
	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if c := string(runes) + "..."; d.MeasureString(c).Round() <= maxWidth {
			return c
		}
	}
	return "..."
}
