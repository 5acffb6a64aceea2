package display

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	on  = color.Gray{Y: 0xff}
	off = color.Gray{Y: 0}
)

// Renderer draws text and shapes into a grayscale image that is packed to
// 1 bit per pixel for the OLED
type Renderer struct {
	img  *image.Gray
	face font.Face
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		img:  image.NewGray(image.Rect(0, 0, width, height)),
		face: basicfont.Face7x13,
	}
}

func (r *Renderer) Width() int  { return r.img.Bounds().Dx() }
func (r *Renderer) Height() int { return r.img.Bounds().Dy() }

// LineHeight is the distance between wrapped text lines
func (r *Renderer) LineHeight() int {
	return r.face.Metrics().Height.Ceil()
}

// Ascent is the offset from the top of a line to its baseline
func (r *Renderer) Ascent() int {
	return r.face.Metrics().Ascent.Ceil()
}

func (r *Renderer) Clear() {
	r.fill(r.img.Bounds(), off)
}

// ClearRect turns off every pixel in the rectangle
func (r *Renderer) ClearRect(x, y, width, height int) {
	r.fill(image.Rect(x, y, x+width, y+height), off)
}

func (r *Renderer) FillRect(x, y, width, height int) {
	r.fill(image.Rect(x, y, x+width, y+height), on)
}

// DrawRect draws a one pixel outline
func (r *Renderer) DrawRect(x, y, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.FillRect(x, y, width, 1)
	r.FillRect(x, y+height-1, width, 1)
	r.FillRect(x, y, 1, height)
	r.FillRect(x+width-1, y, 1, height)
}

func (r *Renderer) fill(rect image.Rectangle, c color.Gray) {
	draw.Draw(r.img, rect.Intersect(r.img.Bounds()), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func (r *Renderer) SetPixel(x, y int, lit bool) {
	if lit {
		r.img.SetGray(x, y, on)
	} else {
		r.img.SetGray(x, y, off)
	}
}

// DrawText draws text with its baseline at y
func (r *Renderer) DrawText(x, y int, text string) {
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(on),
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// DrawTextWrapped draws text word-wrapped to maxWidth starting with the
// baseline at y. It returns the height used.
func (r *Renderer) DrawTextWrapped(x, y, maxWidth int, text string) int {
	lines := r.wrap(text, maxWidth)
	for i, line := range lines {
		r.DrawText(x, y+i*r.LineHeight(), line)
	}
	return len(lines) * r.LineHeight()
}

func (r *Renderer) wrap(text string, maxWidth int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if line != "" && font.MeasureString(r.face, candidate).Ceil() > maxWidth {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// GetFrameBuffer packs the whole image, row-major, 8 pixels per byte, MSB first
func (r *Renderer) GetFrameBuffer() []byte {
	return r.pack(r.img.Bounds())
}

// GetRegion packs a sub-rectangle the same way as GetFrameBuffer
func (r *Renderer) GetRegion(x, y, width, height int) []byte {
	return r.pack(image.Rect(x, y, x+width, y+height))
}

func (r *Renderer) pack(rect image.Rectangle) []byte {
	bytesPerRow := (rect.Dx() + 7) / 8
	data := make([]byte, bytesPerRow*rect.Dy())

	for dy := 0; dy < rect.Dy(); dy++ {
		for dx := 0; dx < rect.Dx(); dx++ {
			if r.img.GrayAt(rect.Min.X+dx, rect.Min.Y+dy).Y > 127 {
				data[dy*bytesPerRow+dx/8] |= 0x80 >> (dx % 8)
			}
		}
	}
	return data
}
