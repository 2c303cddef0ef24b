package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kestrelcase/intakex/internal/errs"
	"github.com/kestrelcase/intakex/internal/model"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".tif": true, ".tiff": true, ".bmp": true, ".webp": true,
}

// classifyExt returns the MediaKind for a file extension, and whether the
// extension is one the orchestrator knows how to route.
func classifyExt(path string) (model.MediaKind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		return model.MediaPDF, true
	}
	if imageExts[ext] {
		return model.MediaImage, true
	}
	return "", false
}

// CollectInputs resolves root to a sorted list of document inputs. A file
// root yields a single input (error if its extension is unsupported); a
// directory root is scanned non-recursively for supported extensions,
// sorted lexicographically by path.
func CollectInputs(root string) ([]model.InputRef, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &errs.IOError{Path: root, Err: err}
	}

	if !info.IsDir() {
		kind, ok := classifyExt(root)
		if !ok {
			return nil, &errs.UnsupportedFileType{Path: root, Ext: filepath.Ext(root)}
		}
		return []model.InputRef{{Path: root, Kind: kind}}, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &errs.IOError{Path: root, Err: err}
	}

	var inputs []model.InputRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(root, e.Name())
		if kind, ok := classifyExt(path); ok {
			inputs = append(inputs, model.InputRef{Path: path, Kind: kind})
		}
	}

	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Path < inputs[j].Path })
	return inputs, nil
}
