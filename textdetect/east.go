// Package textdetect finds candidate text regions in a screenshot. The
// neural scene-text model (EAST) is an opaque Engine capability; this
// package owns everything around it: padding the input to the model's
// 32-pixel stride, decoding the rotated-box geometry maps into
// axis-aligned rectangles, and suppressing overlapping detections.
package textdetect

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// MinConfidence is the score below which raw detections are discarded.
const MinConfidence = 0.8

// cellStride is the ratio between input pixels and the model's feature
// map cells.
const cellStride = 4

// Box is an axis-aligned text region in the pixel space of the image
// passed to Detect, with the model's confidence for the region.
type Box struct {
	X1, Y1, X2, Y2 int
	Score          float64
}

// RawOutput is the model's raw prediction: a score map and five geometry
// channels (distances to the rotated box's top/right/bottom/left edges
// plus the rotation angle), each Rows×Cols in row-major order.
type RawOutput struct {
	Rows     int
	Cols     int
	Scores   []float32
	Geometry [5][]float32
}

func (o *RawOutput) validate() error {
	want := o.Rows * o.Cols
	if len(o.Scores) != want {
		return fmt.Errorf("textdetect: score map has %d cells, want %d", len(o.Scores), want)
	}
	for i, g := range o.Geometry {
		if len(g) != want {
			return fmt.Errorf("textdetect: geometry channel %d has %d cells, want %d", i, len(g), want)
		}
	}
	return nil
}

// Engine runs the text-detection model on an already padded image.
type Engine interface {
	Infer(ctx context.Context, img image.Image) (*RawOutput, error)
}

// Detector decodes Engine output into deduplicated text boxes.
type Detector struct {
	engine Engine
}

// New returns a Detector backed by the given engine.
func New(engine Engine) *Detector {
	return &Detector{engine: engine}
}

// PaddedSize returns the model input size for an image: each dimension
// grows to the next multiple of 32, always adding at least one pixel.
func PaddedSize(w, h int) (int, int) {
	return w + (32 - w%32), h + (32 - h%32)
}

// Pad places img on a canvas of its padded size, keeping the origin so
// decoded coordinates stay valid in the original pixel space.
func Pad(img image.Image) *image.NRGBA {
	b := img.Bounds()
	w, h := PaddedSize(b.Dx(), b.Dy())
	return imaging.Paste(imaging.New(w, h, image.Black), img, image.Pt(0, 0))
}

// Detect pads the image, runs the engine, decodes confident cells into
// rectangles and applies confidence-weighted non-max suppression. The
// returned boxes are clamped to the padded canvas; degenerate rectangles
// are discarded.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]Box, error) {
	padded := Pad(img)
	out, err := d.engine.Infer(ctx, padded)
	if err != nil {
		return nil, fmt.Errorf("textdetect: infer: %w", err)
	}
	if err := out.validate(); err != nil {
		return nil, err
	}

	candidates := decode(out)
	kept := nonMaxSuppression(candidates, 0.3)

	maxX := padded.Bounds().Dx()
	maxY := padded.Bounds().Dy()
	boxes := kept[:0]
	for _, b := range kept {
		b.X1 = clamp(b.X1, 0, maxX)
		b.X2 = clamp(b.X2, 0, maxX)
		b.Y1 = clamp(b.Y1, 0, maxY)
		b.Y2 = clamp(b.Y2, 0, maxY)
		if b.X1 >= b.X2 || b.Y1 >= b.Y2 {
			continue
		}
		boxes = append(boxes, b)
	}
	return boxes, nil
}

// decode turns confident score cells into axis-aligned rectangles using
// the per-cell offsets, edge distances and rotation angle.
func decode(out *RawOutput) []Box {
	var boxes []Box
	for y := 0; y < out.Rows; y++ {
		for x := 0; x < out.Cols; x++ {
			i := y*out.Cols + x
			score := float64(out.Scores[i])
			if score < MinConfidence {
				continue
			}

			offX := float64(x) * cellStride
			offY := float64(y) * cellStride
			top := float64(out.Geometry[0][i])
			right := float64(out.Geometry[1][i])
			bottom := float64(out.Geometry[2][i])
			left := float64(out.Geometry[3][i])
			angle := float64(out.Geometry[4][i])

			cos := math.Cos(angle)
			sin := math.Sin(angle)
			h := top + bottom
			w := right + left

			endX := offX + cos*right + sin*bottom
			endY := offY - sin*right + cos*bottom

			boxes = append(boxes, Box{
				X1:    int(endX - w),
				Y1:    int(endY - h),
				X2:    int(endX),
				Y2:    int(endY),
				Score: score,
			})
		}
	}
	return boxes
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
