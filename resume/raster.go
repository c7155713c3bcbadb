package resume

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
)

// DefaultJPEGQuality matches the 0.98 quality used for embedded rasters.
const DefaultJPEGQuality = 98

// DefaultRasterOptions returns the capture settings for an A4 resume: a
// 794px (210mm at 96 DPI) wide, at least 1123px (297mm) tall raster at 3x.
func DefaultRasterOptions() RasterOptions {
	return RasterOptions{
		Width:      794,
		MinHeight:  1123,
		Scale:      3,
		Background: "#ffffff",
		Clone: CloneStyle{
			Root: Style{
				"box-sizing":       "border-box",
				"background-color": "#ffffff",
				"color":            "#111827",
				"margin":           "0",
				"padding":          "20mm",
				"width":            "210mm",
				"max-width":        "210mm",
				"min-height":       "297mm",
				"overflow":         "visible",
				"transform":        "none",
			},
			StripAncestor: []string{"transform"},
			Eager:         true,
			CrossOrigin:   "anonymous",
			AvoidBreaks:   []string{"section", "h2", "h3", "ul", "li", "div"},
		},
	}
}

// EncodeJPEG compresses img as an opaque JPEG. Transparent pixels are
// composited over white.
func EncodeJPEG(name string, img image.Image, quality int) (EncodedImage, error) {
	if img == nil {
		return EncodedImage{}, NewError(KindEncoding, "raster is empty", nil)
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return EncodedImage{}, NewError(KindEncoding, "raster is empty", nil)
	}

	opaque := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(opaque, opaque.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(opaque, opaque.Bounds(), img, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, opaque, &jpeg.Options{Quality: quality}); err != nil {
		return EncodedImage{}, NewError(KindEncoding, "jpeg encode failed", err)
	}
	return EncodedImage{
		Name:   name,
		Type:   "JPG",
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Data:   buf.Bytes(),
	}, nil
}

// SliceRows returns rows [top, top+height) of img.
func SliceRows(img image.Image, top, height int) image.Image {
	bounds := img.Bounds()
	rect := image.Rect(bounds.Min.X, bounds.Min.Y+top, bounds.Max.X, bounds.Min.Y+top+height).Intersect(bounds)
	if sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(rect)
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), img, rect.Min, draw.Src)
	return out
}

// Digest returns a hex sha256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func encodeForLayout(img image.Image, layout Layout, quality int) ([]EncodedImage, error) {
	if layout.Mode != PlacementCrop {
		encoded, err := EncodeJPEG("resume", img, quality)
		if err != nil {
			return nil, err
		}
		return []EncodedImage{encoded}, nil
	}
	images := make([]EncodedImage, 0, len(layout.Placements))
	for _, p := range layout.Placements {
		encoded, err := EncodeJPEG(fmt.Sprintf("resume-page-%d", p.Page+1), SliceRows(img, p.SliceTop, p.SliceHeight), quality)
		if err != nil {
			return nil, err
		}
		images = append(images, encoded)
	}
	return images, nil
}
