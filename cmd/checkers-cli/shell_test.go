package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/park285/cheese-checkers/internal/checkers"
	"github.com/stretchr/testify/require"
)

func runShell(t *testing.T, g *checkers.Game, input string) (*shell, string) {
	t.Helper()
	var out bytes.Buffer
	s := newShell(g, &out)
	require.NoError(t, s.run(context.Background(), strings.NewReader(input)))
	return s, out.String()
}

func TestShellListsAndPlaysMoves(t *testing.T) {
	s, out := runShell(t, nil, "moves\nc3\nc3-d4\nc3-d4\nquit\n")

	require.Contains(t, out, "a3 c3 e3 g3")
	require.Contains(t, out, "c3: b4 d4")
	require.Contains(t, out, "white plays c3-d4")
	require.Contains(t, out, "error: c3 d4: illegal move")
	require.Equal(t, checkers.Black, s.game.Turn())
	require.Equal(t, checkers.WhiteMan, s.game.Piece(checkers.Square{Row: 4, Col: 3}))
}

func TestShellReportsChainContinuation(t *testing.T) {
	// white man on c3, black men on d4 and f6: c3:e5 must continue to g7
	b, err := checkers.ParsePosition("......../......../.....b../......../...b..../..w...../......../........")
	require.NoError(t, err)
	g, err := checkers.NewGameFromBoard(b, checkers.White)
	require.NoError(t, err)

	s, out := runShell(t, g, "c3\nc3:e5\ne5-f4\n")
	require.Contains(t, out, "c3: e5")
	require.Contains(t, out, "white plays c3:e5")
	require.Contains(t, out, "must continue capturing from e5: g7")
	require.Contains(t, out, "(continue from e5)")

	pinned, chain := s.game.Chain()
	require.True(t, chain)
	require.Equal(t, "e5", pinned.String())
}

func TestShellSaveLoadAndPNG(t *testing.T) {
	dir := t.TempDir()
	saved := filepath.Join(dir, "game.json")
	img := filepath.Join(dir, "board.png")

	_, out := runShell(t, nil, "c3-d4\nsave "+saved+"\npng "+img+"\n")
	require.Contains(t, out, "saved "+saved)
	require.Contains(t, out, "wrote "+img)

	data, err := os.ReadFile(img)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	g, err := loadGame(saved)
	require.NoError(t, err)
	require.Equal(t, checkers.Black, g.Turn())

	s, out := runShell(t, nil, "load "+saved+"\nnew\n")
	require.Contains(t, out, "white 12  black 12")
	require.Equal(t, checkers.White, s.game.Turn())
}

func TestShellRejectsUnknownInput(t *testing.T) {
	_, out := runShell(t, nil, "castle\nsave\nd4\n")
	require.Contains(t, out, `error: unknown command "castle"`)
	require.Contains(t, out, "error: save needs a file name")
	require.Contains(t, out, "d4: no moves")
}

func TestStartGameFromPosition(t *testing.T) {
	const pos = "......../......../......../......../...b..../......../......../W......."

	g, err := startGame("", pos, "b")
	require.NoError(t, err)
	require.Equal(t, checkers.Black, g.Turn())
	require.Equal(t, 1, g.Remaining(checkers.White))

	_, err = startGame("", pos, "red")
	require.Error(t, err)

	_, err = startGame("", "8/8/8/8/8/8/8/8", "white")
	require.ErrorIs(t, err, checkers.ErrInvalidPosition)
}
