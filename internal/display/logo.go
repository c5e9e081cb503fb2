package display

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

// LoadLogo decodes a PNG or JPEG file.
func LoadLogo(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening logo: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding logo: %w", err)
	}
	return img, nil
}

// fitCells returns the largest cell size (columns x rows) that fits
// maxCols x maxRows while keeping the image aspect ratio. Each cell holds
// two vertical pixels.
func fitCells(b image.Rectangle, maxCols, maxRows int) (cols, rows int) {
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || maxCols <= 0 || maxRows <= 0 {
		return 0, 0
	}
	cols = maxCols
	rows = (h*cols + w - 1) / w / 2
	if rows > maxRows {
		rows = maxRows
		cols = w * rows * 2 / h
	}
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// RenderLogo draws img as half-block characters no larger than maxCols x
// maxRows. The upper half of each cell is the foreground, the lower half
// the background, so one terminal row shows two pixel rows.
func RenderLogo(img image.Image, maxCols, maxRows int) string {
	if img == nil {
		return ""
	}
	cols, rows := fitCells(img.Bounds(), maxCols, maxRows)
	if cols == 0 {
		return ""
	}

	scaled := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Over, nil)

	var b strings.Builder
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := scaled.RGBAAt(x, y*2)
			bottom := scaled.RGBAAt(x, y*2+1)
			b.WriteString(halfBlock(top, bottom))
		}
		if y < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// halfBlock renders one cell. Fully transparent halves are left to the
// terminal background.
func halfBlock(top, bottom color.RGBA) string {
	switch {
	case top.A == 0 && bottom.A == 0:
		return " "
	case bottom.A == 0:
		return lipgloss.NewStyle().Foreground(hex(top)).Render("▀")
	case top.A == 0:
		return lipgloss.NewStyle().Foreground(hex(bottom)).Render("▄")
	default:
		return lipgloss.NewStyle().Foreground(hex(top)).Background(hex(bottom)).Render("▀")
	}
}

func hex(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
