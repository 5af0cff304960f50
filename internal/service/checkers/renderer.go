package checkers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strconv"
	"strings"

	"github.com/park285/cheese-checkers/internal/checkers"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// MoveHighlight marks the last played step on the board.
type MoveHighlight struct {
	From checkers.Square
	To   checkers.Square
}

// Score is the remaining piece count shown in the HUD.
type Score struct {
	White int
	Black int
}

type RenderOptions struct {
	LastMove  *MoveHighlight
	Selected  *checkers.Square
	Targets   []checkers.Square
	Captures  []checkers.Square
	Score     *Score
	HUDHeader string
	HUDTurn   string
	// Flip draws the board from Black's side.
	Flip bool
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, board checkers.Board, opts RenderOptions) ([]byte, error)
}

type svgBoardRenderer struct {
	face font.Face
}

func NewBoardRenderer() BoardRenderer {
	return &svgBoardRenderer{face: basicfont.Face7x13}
}

const (
	squareSize       = 72
	boardSize        = squareSize * checkers.Size
	sideMargin       = 36
	topMargin        = 110
	bottomMargin     = 36
	titleHeight      = 40
	secondaryHeight  = 32
	gapBetweenPanels = 14
	gapToBoard       = 22
	panelRadius      = 12
	panelPaddingX    = 24
	titleMinWidth    = 300
	scoreMinWidth    = 96
	turnMinWidth     = 140
	shadowOffsetY    = 6
)

var (
	lightSquare       = color.RGBA{240, 217, 181, 255}
	darkSquare        = color.RGBA{118, 84, 58, 255}
	whiteMoveFill     = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackMoveArrow    = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	neutralMoveArrow  = color.NRGBA{R: 182, G: 184, B: 190, A: 140}
	selectedFill      = color.NRGBA{R: 120, G: 200, B: 120, A: 150}
	targetDotColor    = color.NRGBA{R: 40, G: 160, B: 70, A: 200}
	captureMarkColor  = color.NRGBA{R: 220, G: 60, B: 60, A: 150}
	hudPanelColor     = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTurnPanelColor = color.NRGBA{R: 32, G: 35, B: 52, A: 245}
	hudShadowColor    = color.NRGBA{0, 0, 0, 50}
	hudTextPrimary    = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTurnTextColor  = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	coordinateTextClr = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
	backgroundColor   = color.RGBA{20, 22, 30, 255}
)

// layout maps board squares to pixel rectangles, honoring orientation.
type layout struct {
	origin image.Point
	flip   bool
}

func (l layout) cell(sq checkers.Square) (row, col int) {
	if l.flip {
		return checkers.Size - 1 - sq.Row, checkers.Size - 1 - sq.Col
	}
	return sq.Row, sq.Col
}

func (l layout) rect(sq checkers.Square) image.Rectangle {
	row, col := l.cell(sq)
	x := l.origin.X + col*squareSize
	y := l.origin.Y + row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func (l layout) center(sq checkers.Square) image.Point {
	r := l.rect(sq)
	return image.Pt(r.Min.X+squareSize/2, r.Min.Y+squareSize/2)
}

func (r *svgBoardRenderer) RenderPNG(ctx context.Context, board checkers.Board, opts RenderOptions) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	totalWidth := boardSize + sideMargin*2
	totalHeight := boardSize + topMargin + bottomMargin
	lay := layout{origin: image.Pt(sideMargin, topMargin), flip: opts.Flip}
	boardRect := image.Rect(lay.origin.X, lay.origin.Y, lay.origin.X+boardSize, lay.origin.Y+boardSize)

	img := image.NewRGBA(image.Rect(0, 0, totalWidth, totalHeight))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	r.drawHUD(img, opts, boardRect)
	drawSquares(img, lay)
	drawLastMove(img, board, opts.LastMove, lay)
	if opts.Selected != nil && opts.Selected.Valid() {
		drawSquareOverlay(img, lay.rect(*opts.Selected), selectedFill)
	}
	for _, sq := range opts.Captures {
		if sq.Valid() {
			drawSquareOverlay(img, lay.rect(sq), captureMarkColor)
		}
	}
	if err := drawPieces(img, board, lay); err != nil {
		return nil, err
	}
	for _, sq := range opts.Targets {
		if sq.Valid() {
			drawDisc(img, lay.center(sq), squareSize/7, targetDotColor)
		}
	}
	r.drawCoordinates(img, lay)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSquares(dst *image.RGBA, lay layout) {
	for row := 0; row < checkers.Size; row++ {
		for col := 0; col < checkers.Size; col++ {
			sq := checkers.Square{Row: row, Col: col}
			clr := lightSquare
			if sq.Dark() {
				clr = darkSquare
			}
			imagedraw.Draw(dst, lay.rect(sq), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst *image.RGBA, board checkers.Board, lay layout) error {
	for row := 0; row < checkers.Size; row++ {
		for col := 0; col < checkers.Size; col++ {
			sq := checkers.Square{Row: row, Col: col}
			piece := board.At(sq)
			if piece == checkers.NoPiece {
				continue
			}
			pieceImg, err := renderPieceImage(piece, squareSize)
			if err != nil {
				return err
			}
			imagedraw.Draw(dst, lay.rect(sq), pieceImg, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

// drawLastMove fills both squares for a white mover and draws an arrow for black.
func drawLastMove(img *image.RGBA, board checkers.Board, hl *MoveHighlight, lay layout) {
	if hl == nil || !hl.From.Valid() || !hl.To.Valid() {
		return
	}
	mover := board.At(hl.To)
	switch {
	case mover == checkers.NoPiece:
		drawArrow(img, lay.center(hl.From), lay.center(hl.To), neutralMoveArrow)
	case mover.Color() == checkers.White:
		drawSquareOverlay(img, lay.rect(hl.From), whiteMoveFill)
		drawSquareOverlay(img, lay.rect(hl.To), whiteMoveFill)
	default:
		drawArrow(img, lay.center(hl.From), lay.center(hl.To), blackMoveArrow)
	}
}

func (r *svgBoardRenderer) drawHUD(img *image.RGBA, opts RenderOptions, boardRect image.Rectangle) {
	drawer := &font.Drawer{Dst: img, Face: r.face}

	title := strings.TrimSpace(opts.HUDHeader)
	if title == "" {
		title = "Checkers"
	}
	turnText := strings.TrimSpace(opts.HUDTurn)
	if turnText == "" {
		turnText = "Turn"
	}
	scoreText := "-"
	if opts.Score != nil {
		scoreText = strconv.Itoa(opts.Score.White) + " : " + strconv.Itoa(opts.Score.Black)
	}

	turnBottom := boardRect.Min.Y - gapToBoard
	turnTop := turnBottom - secondaryHeight
	titleBottom := turnTop - gapBetweenPanels
	titleTop := titleBottom - titleHeight

	scoreWidth := maxInt(scoreMinWidth, drawer.MeasureString(scoreText).Round()+panelPaddingX*2)
	titleWidth := maxInt(titleMinWidth, drawer.MeasureString(title).Round()+panelPaddingX*2)
	if limit := boardRect.Dx() - scoreWidth - 24; titleWidth > limit {
		titleWidth = limit
	}
	turnWidth := maxInt(turnMinWidth, drawer.MeasureString(turnText).Round()+panelPaddingX*2)
	if limit := boardRect.Dx() - 40; turnWidth > limit {
		turnWidth = limit
	}

	titleRect := image.Rect(boardRect.Min.X, titleTop, boardRect.Min.X+titleWidth, titleBottom)
	scoreRect := image.Rect(boardRect.Max.X-scoreWidth, turnTop, boardRect.Max.X, turnBottom)
	turnLeft := boardRect.Min.X + (boardRect.Dx()-turnWidth)/2
	turnRect := image.Rect(turnLeft, turnTop, turnLeft+turnWidth, turnBottom)

	shadow := image.Pt(0, shadowOffsetY)
	for _, rect := range []image.Rectangle{titleRect, scoreRect, turnRect} {
		drawRoundedPanel(img, rect.Add(shadow), panelRadius, hudShadowColor)
	}
	drawRoundedPanel(img, titleRect, panelRadius, hudPanelColor)
	drawRoundedPanel(img, scoreRect, panelRadius, hudPanelColor)
	drawRoundedPanel(img, turnRect, panelRadius, hudTurnPanelColor)

	title = truncateWithEllipsis(r.face, title, titleRect.Dx()-panelPaddingX*2)
	turnText = truncateWithEllipsis(r.face, turnText, turnRect.Dx()-panelPaddingX*2)

	drawCenteredString(drawer, titleRect, title, hudTextPrimary)
	drawCenteredString(drawer, scoreRect, scoreText, hudTextPrimary)
	drawCenteredString(drawer, turnRect, turnText, hudTurnTextColor)
}

func (r *svgBoardRenderer) drawCoordinates(img *image.RGBA, lay layout) {
	drawer := &font.Drawer{Dst: img, Face: r.face, Src: image.NewUniform(coordinateTextClr)}
	ascent := r.face.Metrics().Ascent.Ceil()
	bottom := lay.origin.Y + boardSize

	for i := 0; i < checkers.Size; i++ {
		rankSq := checkers.Square{Row: i, Col: 0}
		fileSq := checkers.Square{Row: checkers.Size - 1, Col: i}

		rankLabel := rankSq.String()[1:]
		c := lay.center(rankSq)
		drawCenteredText(drawer, rankLabel, lay.origin.X-sideMargin/2, c.Y+ascent/2)

		fileLabel := fileSq.String()[:1]
		c = lay.center(fileSq)
		drawCenteredText(drawer, fileLabel, c.X, bottom+ascent+4)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
