// imagebatch/crop.go - Cover-fit cropping strategies
package imagebatch

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

// attention has no saliency model here; it falls back to the centre
var anchors = map[string]imaging.Anchor{
	"attention": imaging.Center,
	"center":    imaging.Center,
	"centre":    imaging.Center,
	"north":     imaging.Top,
	"top":       imaging.Top,
	"south":     imaging.Bottom,
	"bottom":    imaging.Bottom,
	"east":      imaging.Right,
	"right":     imaging.Right,
	"west":      imaging.Left,
	"left":      imaging.Left,
	"northeast": imaging.TopRight,
	"northwest": imaging.TopLeft,
	"southeast": imaging.BottomRight,
	"southwest": imaging.BottomLeft,
}

const strategyEntropy = "entropy"

func validStrategy(s string) bool {
	s = strings.ToLower(s)
	_, ok := anchors[s]
	return ok || s == strategyEntropy
}

// Fill resizes img to cover w x h and crops the excess according to strategy
func Fill(img image.Image, w, h int, strategy string) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d", w, h)
	}
	s := strings.ToLower(strategy)
	if s == strategyEntropy {
		return entropyFill(img, w, h), nil
	}
	anchor, ok := anchors[s]
	if !ok {
		return nil, fmt.Errorf("unknown crop strategy %q", strategy)
	}
	return imaging.Fill(img, w, h, anchor, imaging.Lanczos), nil
}

// entropyFill keeps the window with the highest luminance entropy
func entropyFill(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	scale := math.Max(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	rw := max(w, int(math.Ceil(float64(b.Dx())*scale)))
	rh := max(h, int(math.Ceil(float64(b.Dy())*scale)))
	resized := imaging.Resize(img, rw, rh, imaging.Lanczos)

	const steps = 8
	best, bestScore := image.Rect(0, 0, w, h), -1.0
	for i := 0; i <= steps; i++ {
		x := (rw - w) * i / steps
		y := (rh - h) * i / steps
		r := image.Rect(x, y, x+w, y+h)
		if score := entropy(imaging.Crop(resized, r)); score > bestScore {
			best, bestScore = r, score
		}
	}
	return imaging.Crop(resized, best)
}

func entropy(img image.Image) float64 {
	gray := imaging.Grayscale(img)
	var hist [256]int
	n := 0
	for i := 0; i < len(gray.Pix); i += 4 {
		hist[gray.Pix[i]]++
		n++
	}
	if n == 0 {
		return 0
	}
	var e float64
	for _, c := range hist {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(n)
		e -= p * math.Log2(p)
	}
	return e
}
