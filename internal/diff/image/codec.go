package image

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/xerrors"
)

// Decode reads a PNG, JPEG, GIF, BMP or TIFF image and applies its EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, xerrors.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, xerrors.Errorf("failed to load image %s: %w", path, err)
	}
	return img, nil
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buffer bytes.Buffer
	if err := imaging.Encode(&buffer, img, imaging.PNG); err != nil {
		return nil, xerrors.Errorf("failed to encode image: %w", err)
	}
	return buffer.Bytes(), nil
}
