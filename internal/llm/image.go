package llm

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrEmptyImage = errors.New("image payload is empty")

// NormalizeImage detects the format of data. PNG and JPEG are passed through
// untouched; every other decodable format is re-encoded as PNG.
func NormalizeImage(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrEmptyImage
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}
	switch format {
	case "png":
		return Image{MIMEType: "image/png", Data: data}, nil
	case "jpeg":
		return Image{MIMEType: "image/jpeg", Data: data}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("decode %s image: %w", format, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Image{}, fmt.Errorf("re-encode %s image as png: %w", format, err)
	}
	return Image{MIMEType: "image/png", Data: buf.Bytes()}, nil
}
