// Package rasterize converts a PDF into an ordered sequence of page images.
package rasterize

import (
	"fmt"
	"image/png"
	"os"

	"github.com/gen2brain/go-fitz"

	"github.com/kestrelcase/intakex/internal/errs"
	"github.com/kestrelcase/intakex/internal/model"
	"github.com/kestrelcase/intakex/internal/workspace"
)

// Rasterize opens pdfPath with MuPDF and writes one PNG per page into ws, in
// page order. It fails with *errs.RasterizationError if zero pages result.
func Rasterize(pdfPath string, ws *workspace.Workspace) ([]model.PageImage, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, &errs.RasterizationError{Path: pdfPath, Err: err}
	}
	defer doc.Close()

	n := doc.NumPage()
	if n <= 0 {
		return nil, &errs.RasterizationError{Path: pdfPath, Err: fmt.Errorf("document has no pages")}
	}

	pages := make([]model.PageImage, 0, n)
	for i := 0; i < n; i++ {
		img, err := doc.Image(i)
		if err != nil {
			return nil, &errs.RasterizationError{Path: pdfPath, Err: fmt.Errorf("render page %d: %w", i, err)}
		}

		outPath := ws.PagePath(i)
		f, err := os.Create(outPath)
		if err != nil {
			return nil, &errs.RasterizationError{Path: pdfPath, Err: fmt.Errorf("write page %d: %w", i, err)}
		}
		encErr := png.Encode(f, img)
		closeErr := f.Close()
		if encErr != nil {
			return nil, &errs.RasterizationError{Path: pdfPath, Err: fmt.Errorf("encode page %d: %w", i, encErr)}
		}
		if closeErr != nil {
			return nil, &errs.RasterizationError{Path: pdfPath, Err: fmt.Errorf("close page %d: %w", i, closeErr)}
		}

		pages = append(pages, model.PageImage{Path: outPath, Index: i})
	}

	if len(pages) == 0 {
		return nil, &errs.RasterizationError{Path: pdfPath, Err: fmt.Errorf("zero pages produced")}
	}
	return pages, nil
}
