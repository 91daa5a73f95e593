package render

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/seabattle-client/internal/fleet"
)

//go:embed icons/*.svg
var iconFiles embed.FS

const tintPlaceholder = "#PIECE"

type iconKey struct {
	name string
	tint color.NRGBA
	size int
}

var (
	iconCache   = map[iconKey]image.Image{}
	iconCacheMu sync.RWMutex
)

func iconName(k fleet.Kind) string {
	switch k {
	case fleet.M, fleet.SM, fleet.AB:
		return "mine"
	case fleet.S:
		return "plane"
	case fleet.PL, fleet.KRPL:
		return "sub"
	case fleet.VMB:
		return "base"
	case fleet.Unknown, "":
		return "hidden"
	default:
		return "ship"
	}
}

func renderIcon(name string, tint color.NRGBA, size int) (image.Image, error) {
	key := iconKey{name: name, tint: tint, size: size}

	iconCacheMu.RLock()
	if img, ok := iconCache[key]; ok {
		iconCacheMu.RUnlock()
		return img, nil
	}
	iconCacheMu.RUnlock()

	path := "icons/" + name + ".svg"
	data, err := iconFiles.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read icon %s: %w", path, err)
	}
	data = bytes.ReplaceAll(sanitizeSVG(data), []byte(tintPlaceholder), []byte(hex(tint)))

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse icon %s: %w", name, err)
	}
	if icon.ViewBox.W <= 0 {
		icon.ViewBox.W = float64(size)
	}
	if icon.ViewBox.H <= 0 {
		icon.ViewBox.H = float64(size)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	iconCacheMu.Lock()
	iconCache[key] = img
	iconCacheMu.Unlock()
	return img, nil
}

func hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// oksvg is strict about whitespace inside style declarations.
func sanitizeSVG(svg []byte) []byte {
	fixed := bytes.ReplaceAll(svg, []byte("fill: #"), []byte("fill:#"))
	fixed = bytes.ReplaceAll(fixed, []byte("stroke: #"), []byte("stroke:#"))
	fixed = bytes.ReplaceAll(fixed, []byte("stop-color: #"), []byte("stop-color:#"))
	return fixed
}
