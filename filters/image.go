package filters

import (
	"bytes"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

// ImageInfo describes a decoded embedded bitmap payload.
type ImageInfo struct {
	Format string // "bmp", "png", ...
	Width  int
	Height int
}

// SniffImage identifies an embedded image payload and its pixel
// dimensions without decoding the pixel data. Embedded schematic logos
// are almost always BMP, but the format does not require it.
func SniffImage(data []byte) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, err
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// MIMEType maps a sniffed format name to the media type used when the
// renderer embeds the image payload.
func MIMEType(format string) string {
	switch format {
	case "bmp":
		return "image/bmp"
	case "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	default:
		return "image/png"
	}
}
