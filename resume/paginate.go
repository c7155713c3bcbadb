package resume

import (
	"fmt"
	"math"
)

// A4 is the portrait A4 page with the export side margin, in millimetres.
var A4 = PageGeometry{Width: 210, Height: 297, Margin: 10}

// pageEpsilon absorbs float noise in the page ratio only.
const pageEpsilon = 1e-9

// Paginate computes the placement plan for a canvasW x canvasH raster on
// pages of geometry geo. The image is scaled to the page width minus both
// margins; page k shows the window starting k page heights into the image.
func Paginate(canvasW, canvasH int, geo PageGeometry, mode PlacementMode) (Layout, error) {
	if canvasW <= 0 || canvasH <= 0 {
		return Layout{}, NewError(KindValidation, fmt.Sprintf("invalid canvas size %dx%d", canvasW, canvasH), nil)
	}
	if geo.Width <= 0 || geo.Height <= 0 || geo.Margin < 0 || geo.Width-2*geo.Margin <= 0 {
		return Layout{}, NewError(KindValidation, "invalid page geometry", nil)
	}
	if mode == "" {
		mode = PlacementShift
	}

	imgW := geo.Width - 2*geo.Margin
	imgH := float64(canvasH) * imgW / float64(canvasW)
	pages := PageCount(imgH, geo.Height)

	layout := Layout{
		Mode:       mode,
		Geometry:   geo,
		ImgWidth:   imgW,
		ImgHeight:  imgH,
		Placements: make([]Placement, 0, pages),
	}

	switch mode {
	case PlacementShift:
		for k := 0; k < pages; k++ {
			layout.Placements = append(layout.Placements, Placement{
				Page: k,
				X:    geo.Margin,
				Y:    -float64(k) * geo.Height,
				W:    imgW,
				H:    imgH,
			})
		}
	case PlacementCrop:
		pxPerPage := geo.Height * float64(canvasW) / imgW
		top := 0
		for k := 0; k < pages; k++ {
			bottom := canvasH
			if k < pages-1 {
				// Leave at least one row for each remaining page.
				bottom = min(int(math.Round(float64(k+1)*pxPerPage)), canvasH-(pages-k-1))
			}
			if bottom <= top {
				bottom = top + 1
			}
			height := bottom - top
			layout.Placements = append(layout.Placements, Placement{
				Page:        k,
				X:           geo.Margin,
				Y:           0,
				W:           imgW,
				H:           float64(height) * imgW / float64(canvasW),
				SliceTop:    top,
				SliceHeight: height,
			})
			top = bottom
		}
	default:
		return Layout{}, NewError(KindValidation, fmt.Sprintf("unknown placement mode %q", mode), nil)
	}

	return layout, nil
}

// PageCount returns ceil(imgHeight / pageHeight), never less than one.
func PageCount(imgHeight, pageHeight float64) int {
	if pageHeight <= 0 || imgHeight <= 0 {
		return 1
	}
	pages := int(math.Ceil(imgHeight/pageHeight - pageEpsilon))
	if pages < 1 {
		return 1
	}
	return pages
}
