package checkers

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/park285/cheese-checkers/internal/checkers"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed assets/pieces/*.svg
var pieceFiles embed.FS

type pieceCacheKey struct {
	piece checkers.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

// renderPieceImage rasterizes the SVG asset of a piece at size×size and
// memoizes the result.
func renderPieceImage(piece checkers.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	name, err := pieceAssetName(piece)
	if err != nil {
		return nil, err
	}
	data, err := pieceFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read piece asset %s: %w", name, err)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(sanitizeSVG(data)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	if icon.ViewBox.W <= 0 {
		icon.ViewBox.W = float64(size)
	}
	if icon.ViewBox.H <= 0 {
		icon.ViewBox.H = float64(size)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}

func pieceAssetName(piece checkers.Piece) (string, error) {
	var code string
	switch piece {
	case checkers.WhiteMan:
		code = "wm"
	case checkers.WhiteKing:
		code = "wk"
	case checkers.BlackMan:
		code = "bm"
	case checkers.BlackKing:
		code = "bk"
	default:
		return "", fmt.Errorf("no asset for %v", piece)
	}
	return fmt.Sprintf("assets/pieces/%s.svg", code), nil
}
