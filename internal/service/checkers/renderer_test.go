package checkers

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/park285/cheese-checkers/internal/checkers"
)

func TestRenderPNGProducesDecodableImage(t *testing.T) {
	r := NewBoardRenderer()
	g := checkers.NewGame()
	sel := checkers.Square{Row: 5, Col: 2}

	data, err := r.RenderPNG(context.Background(), g.Board(), RenderOptions{
		Selected:  &sel,
		Targets:   g.LegalMoves(sel).Destinations(),
		Score:     &Score{White: 12, Black: 12},
		HUDHeader: "alice vs bob",
		HUDTurn:   "White to move",
	})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != boardSize+sideMargin*2 || b.Dy() != boardSize+topMargin+bottomMargin {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestRenderPNGFlipChangesOutput(t *testing.T) {
	r := NewBoardRenderer()
	board := checkers.NewGame().Board()
	last := &MoveHighlight{From: checkers.Square{Row: 2, Col: 1}, To: checkers.Square{Row: 3, Col: 2}}

	normal, err := r.RenderPNG(context.Background(), board, RenderOptions{LastMove: last})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	flipped, err := r.RenderPNG(context.Background(), board, RenderOptions{LastMove: last, Flip: true})
	if err != nil {
		t.Fatalf("RenderPNG flipped: %v", err)
	}
	if bytes.Equal(normal, flipped) {
		t.Fatalf("flipped render must differ")
	}
}

func TestRenderPNGHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBoardRenderer().RenderPNG(ctx, checkers.InitialBoard(), RenderOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestPieceImagesAreCached(t *testing.T) {
	for _, p := range []checkers.Piece{checkers.WhiteMan, checkers.BlackMan, checkers.WhiteKing, checkers.BlackKing} {
		first, err := renderPieceImage(p, 32)
		if err != nil {
			t.Fatalf("renderPieceImage(%v): %v", p, err)
		}
		second, err := renderPieceImage(p, 32)
		if err != nil {
			t.Fatalf("renderPieceImage(%v) again: %v", p, err)
		}
		if first != second {
			t.Fatalf("piece %v was rasterized twice", p)
		}
	}
	if _, err := renderPieceImage(checkers.NoPiece, 32); err == nil {
		t.Fatalf("expected error for empty piece")
	}
}

func TestSanitizeSVGNormalizesStyles(t *testing.T) {
	got := string(sanitizeSVG([]byte(`style="fill: 000000; stroke: #333; stroke-width: 2"`)))
	for _, want := range []string{"fill:#000000", "stroke:#333", "stroke-width:2"} {
		if !strings.Contains(got, want) {
			t.Fatalf("sanitized %q missing %q", got, want)
		}
	}
}
