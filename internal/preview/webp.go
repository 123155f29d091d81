package preview

import (
	"bytes"
	"image"

	"github.com/gen2brain/webp"
)

// WebPEncoder encodes a preview image as WebP using the pure-Go gen2brain
// codec (wazero-compiled libwebp), the same decoder the teacher's own
// DecodeImage reaches for, used here for both directions since preview
// images never need to round-trip through CGo.
type WebPEncoder struct {
	Quality int // 1-100, default 85
}

func (e *WebPEncoder) Encode(img image.Image) ([]byte, error) {
	quality := e.Quality
	if quality <= 0 {
		quality = 85
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *WebPEncoder) Format() string        { return "webp" }
func (e *WebPEncoder) FileExtension() string { return ".webp" }

// DecodeWebP decodes WebP image bytes back to an image.Image. Nothing in
// this module calls it; wfcpreview re-renders from a .wfcw export instead.
func DecodeWebP(data []byte) (image.Image, error) {
	return webp.Decode(bytes.NewReader(data))
}
