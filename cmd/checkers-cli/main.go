package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/park285/cheese-checkers/internal/checkers"
)

func main() {
	load := flag.String("load", "", "resume a game saved with the save command")
	position := flag.String("position", "", "start from a position string (8 rows separated by '/')")
	turn := flag.String("turn", "white", "side to move with -position")
	flag.Parse()

	g, err := startGame(*load, *position, *turn)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newShell(g, os.Stdout).run(ctx, os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func startGame(load, position, turn string) (*checkers.Game, error) {
	switch {
	case load != "":
		return loadGame(load)
	case position != "":
		b, err := checkers.ParsePosition(position)
		if err != nil {
			return nil, err
		}
		c, err := checkers.ParseColor(turn)
		if err != nil {
			return nil, err
		}
		return checkers.NewGameFromBoard(b, c)
	}
	return checkers.NewGame(), nil
}
