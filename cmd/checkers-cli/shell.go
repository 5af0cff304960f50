package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/park285/cheese-checkers/internal/checkers"
	svc "github.com/park285/cheese-checkers/internal/service/checkers"
)

// shell is a hot-seat session: both sides type moves at the same prompt.
type shell struct {
	game     *checkers.Game
	renderer svc.BoardRenderer
	out      io.Writer
	last     *svc.MoveHighlight
}

func newShell(g *checkers.Game, out io.Writer) *shell {
	if g == nil {
		g = checkers.NewGame()
	}
	return &shell{game: g, renderer: svc.NewBoardRenderer(), out: out}
}

const shellHelp = `commands:
  c3            legal destinations of the piece on c3
  c3-d4, c3:e5  play one step (a capture chain is played step by step)
  board         show the board
  moves         pieces that can move
  save <file>   write the game as JSON
  load <file>   read a game written by save
  png <file>    render the board to a PNG
  new           start over
  quit`

// run reads commands from in until EOF or quit.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	s.printBoard()
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprintf(s.out, "%s> ", s.game.Turn())
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := s.exec(ctx, line); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

func (s *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	switch fields[0] {
	case "help", "?":
		fmt.Fprintln(s.out, shellHelp)
	case "board":
		s.printBoard()
	case "moves":
		fmt.Fprintln(s.out, joinSquares(s.game.Movable()))
	case "new":
		s.game, s.last = checkers.NewGame(), nil
		s.printBoard()
	case "save":
		return s.save(arg)
	case "load":
		return s.load(arg)
	case "png":
		return s.png(ctx, arg)
	default:
		if checkers.LooksLikeMove(fields[0]) {
			return s.play(fields[0])
		}
		sq, err := checkers.ParseSquare(fields[0])
		if err != nil {
			return fmt.Errorf("unknown command %q", fields[0])
		}
		moves := s.game.LegalMoves(sq)
		if len(moves) == 0 {
			fmt.Fprintf(s.out, "%s: no moves\n", sq)
			return nil
		}
		fmt.Fprintf(s.out, "%s: %s\n", sq, joinSquares(moves.Destinations()))
	}
	return nil
}

func (s *shell) play(text string) error {
	from, to, err := checkers.ParseMove(text)
	if err != nil {
		return err
	}
	captured := s.game.LegalMoves(from)[to]
	mover := s.game.Turn()
	if _, err := s.game.Play(from, to); err != nil {
		if pinned, chain := s.game.Chain(); chain {
			return fmt.Errorf("%w (continue from %s)", err, pinned)
		}
		return err
	}
	s.last = &svc.MoveHighlight{From: from, To: to}
	fmt.Fprintf(s.out, "%s plays %s\n", mover, checkers.FormatMove(from, to, captured))

	if winner, over := s.game.Winner(); over {
		s.printBoard()
		fmt.Fprintf(s.out, "%s wins\n", winner)
		return nil
	}
	if pinned, chain := s.game.Chain(); chain {
		fmt.Fprintf(s.out, "%s must continue capturing from %s: %s\n", mover, pinned, joinSquares(s.game.LegalMoves(pinned).Destinations()))
		return nil
	}
	s.printBoard()
	return nil
}

func (s *shell) save(path string) error {
	if path == "" {
		return errors.New("save needs a file name")
	}
	raw, err := json.MarshalIndent(s.game, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "saved %s\n", path)
	return nil
}

func (s *shell) load(path string) error {
	g, err := loadGame(path)
	if err != nil {
		return err
	}
	s.game, s.last = g, nil
	s.printBoard()
	return nil
}

func loadGame(path string) (*checkers.Game, error) {
	if path == "" {
		return nil, errors.New("load needs a file name")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g := new(checkers.Game)
	if err := json.Unmarshal(raw, g); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return g, nil
}

func (s *shell) png(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("png needs a file name")
	}
	score := svc.Score{White: s.game.Remaining(checkers.White), Black: s.game.Remaining(checkers.Black)}
	opts := svc.RenderOptions{LastMove: s.last, Score: &score, HUDHeader: "hot seat", HUDTurn: s.game.Turn().String() + " to move"}
	if pinned, chain := s.game.Chain(); chain {
		moves := s.game.LegalMoves(pinned)
		opts.Selected = &pinned
		opts.Targets = moves.Destinations()
	}
	data, err := s.renderer.RenderPNG(ctx, s.game.Board(), opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "wrote %s (%d bytes)\n", path, len(data))
	return nil
}

func (s *shell) printBoard() {
	b := s.game.Board()
	fmt.Fprintln(s.out, b.String())
	fmt.Fprintf(s.out, "white %d  black %d  %s\n", s.game.Remaining(checkers.White), s.game.Remaining(checkers.Black), s.game.Status())
}

func joinSquares(list []checkers.Square) string {
	if len(list) == 0 {
		return "-"
	}
	names := make([]string, 0, len(list))
	for _, sq := range list {
		names = append(names, sq.String())
	}
	return strings.Join(names, " ")
}
