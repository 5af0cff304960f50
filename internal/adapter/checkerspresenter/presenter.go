package checkerspresenter

import (
	"encoding/base64"
	"strings"

	"github.com/park285/cheese-checkers/pkg/checkersdto"
)

// Presenter delivers texts and board images without coupling to the command layer.
type Presenter struct {
	sendMessage func(room, message string) error
	sendImage   func(room, imageBase64 string) error
}

func NewPresenter(sendMessage func(room, message string) error, sendImage func(room, imageBase64 string) error) *Presenter {
	return &Presenter{sendMessage: sendMessage, sendImage: sendImage}
}

// Text sends message alone. Blank messages are dropped.
func (p *Presenter) Text(room, message string) error {
	if p == nil || p.sendMessage == nil || strings.TrimSpace(message) == "" {
		return nil
	}
	return p.sendMessage(room, message)
}

// Board sends message, then the board PNG as base64 when state carries one.
func (p *Presenter) Board(room, message string, state *checkersdto.BoardState) error {
	if p == nil {
		return nil
	}
	if err := p.Text(room, message); err != nil {
		return err
	}
	if state != nil && len(state.BoardImage) > 0 && p.sendImage != nil {
		return p.sendImage(room, base64.StdEncoding.EncodeToString(state.BoardImage))
	}
	return nil
}

// Broadcast shows the same board in every distinct room, stopping at the
// first failure.
func (p *Presenter) Broadcast(rooms []string, message string, state *checkersdto.BoardState) error {
	seen := make(map[string]struct{}, len(rooms))
	for _, room := range rooms {
		room = strings.TrimSpace(room)
		if room == "" {
			continue
		}
		if _, dup := seen[room]; dup {
			continue
		}
		seen[room] = struct{}{}
		if err := p.Board(room, message, state); err != nil {
			return err
		}
	}
	return nil
}
