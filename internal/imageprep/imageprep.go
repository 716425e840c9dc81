package imageprep

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/cozy-creator/dbi/internal/utils/pathutil"
	"github.com/cozy-creator/dbi/pkg/dbi"

	"github.com/anthonynsimon/bild/transform"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 90

var rasterTypes = []string{"image/jpeg", "image/png", "image/gif", "image/bmp", "image/webp"}

func DetectMIME(content []byte) string {
	return mimetype.Detect(content).String()
}

func IsRaster(content []byte) bool {
	mtype := mimetype.Detect(content)
	for _, t := range rasterTypes {
		if mtype.Is(t) {
			return true
		}
	}
	return false
}

// Prepare shrinks file so that neither side exceeds maxDim pixels. Files that
// already fit, non-raster files and maxDim <= 0 are returned untouched.
func Prepare(file dbi.ImageFile, maxDim int) (dbi.ImageFile, error) {
	if maxDim <= 0 || !IsRaster(file.Content) {
		return file, nil
	}

	img, format, err := image.Decode(bytes.NewReader(file.Content))
	if err != nil {
		return dbi.ImageFile{}, fmt.Errorf("error decoding %s: %w", file.Name, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxDim && height <= maxDim {
		return file, nil
	}

	newWidth, newHeight := fitWithin(width, height, maxDim)
	resized := transform.Resize(img, newWidth, newHeight, transform.Lanczos)

	var output bytes.Buffer
	name := file.Name
	if format == "jpeg" {
		err = jpeg.Encode(&output, resized, &jpeg.Options{Quality: jpegQuality})
	} else {
		err = png.Encode(&output, resized)
		name = pathutil.ReplaceExt(name, ".png")
	}
	if err != nil {
		return dbi.ImageFile{}, fmt.Errorf("error encoding %s: %w", file.Name, err)
	}

	return dbi.NewImageFile(name, output.Bytes()), nil
}

func fitWithin(width, height, maxDim int) (int, int) {
	if width >= height {
		h := height * maxDim / width
		return maxDim, max(h, 1)
	}

	w := width * maxDim / height
	return max(w, 1), maxDim
}
