package media

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

// Variant describes one derivative of an upload
type Variant struct {
	Name    string
	Width   int
	Height  int
	Quality int
}

// Derivatives produced for every upload
var (
	WebVariant = Variant{Name: "web", Width: 400, Height: 400, Quality: 85}
	PDFVariant = Variant{Name: "pdf", Width: 200, Height: 200, Quality: 80}
)

// Resizer renders a decoded image as the encoded bytes of a variant
type Resizer interface {
	Resize(src image.Image, v Variant) ([]byte, error)
}

// ImagingResizer center-crops to the variant's square and encodes JPEG
type ImagingResizer struct{}

// Resize fills v.Width x v.Height from the center of src
func (ImagingResizer) Resize(src image.Image, v Variant) ([]byte, error) {
	dst := imaging.Fill(src, v.Width, v.Height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, imaging.JPEG, imaging.JPEGQuality(v.Quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
