// Package preprocess prepares a rasterized page image for OCR: grayscale,
// deskew, denoise, adaptive threshold, in that order.
package preprocess

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"github.com/kestrelcase/intakex/internal/errs"
)

const (
	denoiseStrength = 30

	binarizeBlockSize = 31
	binarizeC         = 15

	houghThreshold   = 80
	houghMinLineLen  = 40
	houghMaxLineGap  = 10
	deskewThreshBlock = 31
	deskewThreshC     = 15
)

// Preprocess reads imgPath as grayscale, deskews, denoises, and binarizes it,
// writing the result to outPath. Returns *errs.ImageReadError if the source
// image is empty or unreadable.
func Preprocess(imgPath, outPath string) error {
	gray := gocv.IMRead(imgPath, gocv.IMReadGrayScale)
	defer gray.Close()
	if gray.Empty() {
		return &errs.ImageReadError{Path: imgPath, Err: fmt.Errorf("empty image")}
	}

	deskewed := deskew(gray)
	defer deskewed.Close()

	denoised := gocv.NewMat()
	defer denoised.Close()
	gocv.FastNlMeansDenoisingWithParams(deskewed, &denoised, denoiseStrength, 7, 21)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(denoised, &binary, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, binarizeBlockSize, binarizeC)

	ok := gocv.IMWrite(outPath, binary)
	if !ok {
		return &errs.ImageReadError{Path: imgPath, Err: fmt.Errorf("failed to write preprocessed tile")}
	}
	return nil
}

// deskew estimates a skew angle via Hough lines on an adaptively thresholded
// inverse image, keeping only lines whose angle from the x-axis lies in
// (0,45) or (135,180) degrees, and rotates by the average accepted angle.
func deskew(gray gocv.Mat) gocv.Mat {
	inv := gocv.NewMat()
	defer inv.Close()
	gocv.AdaptiveThreshold(gray, &inv, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinaryInv, deskewThreshBlock, deskewThreshC)

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(inv, &lines, 1, math.Pi/180, houghThreshold, houghMinLineLen, houghMaxLineGap)

	var sum float64
	var count int
	for i := 0; i < lines.Rows(); i++ {
		x1 := float64(lines.GetIntAt(i, 0))
		y1 := float64(lines.GetIntAt(i, 1))
		x2 := float64(lines.GetIntAt(i, 2))
		y2 := float64(lines.GetIntAt(i, 3))

		angle := math.Atan2(y2-y1, x2-x1) * 180 / math.Pi
		if angle < 0 {
			angle += 180
		}
		if angle >= 80 && angle <= 100 {
			continue // near-horizontal: baseline bias, discard
		}
		if (angle > 0 && angle < 45) || (angle > 135 && angle < 180) {
			sum += angle
			count++
		}
	}

	if count == 0 {
		out := gocv.NewMat()
		gray.CopyTo(&out)
		return out
	}

	avg := sum / float64(count)
	rotation := avg
	if avg > 135 {
		// Angles near 180 degrees represent a small negative rotation.
		rotation = avg - 180
	}

	center := gocv.Point2f{X: float32(gray.Cols()) / 2, Y: float32(gray.Rows()) / 2}
	rotMat := gocv.GetRotationMatrix2D(center, rotation, 1.0)
	defer rotMat.Close()

	rotated := gocv.NewMat()
	gocv.WarpAffineWithParams(gray, &rotated, rotMat, gray.Size(), gocv.InterpolationLinear, gocv.BorderReplicate, gocv.NewScalar(0, 0, 0, 0))
	return rotated
}
