package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// EncodedImage is an image ready to be returned over the wire.
type EncodedImage struct {
	Name        string `json:"name"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodeImage PNG-encodes img as base64, optionally rescaled.
//
// Parameters:
//   - name: Label stored in the result (for example "final_mask").
//   - img: The image to encode.
//   - scale: Resize factor. Values other than 1 and greater than 0 resize
//     with Lanczos resampling; anything else keeps the original size.
func EncodeImage(name string, img image.Image, scale float64) (*EncodedImage, error) {
	if scale != 1.0 && scale > 0 {
		w := int(float64(img.Bounds().Dx()) * scale)
		h := int(float64(img.Bounds().Dy()) * scale)
		if w > 0 && h > 0 {
			img = imaging.Resize(img, w, h, imaging.Lanczos)
		}
	}

	data, err := EncodePNGBase64(img)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", name)
	}
	return &EncodedImage{
		Name:        name,
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: data,
		MimeType:    "image/png",
	}, nil
}

// EncodePNGBase64 encodes an image as PNG and returns it base64-encoded.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", errors.Wrap(err, "failed to encode image")
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
