package irisfast

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Egress sends replies over HTTP or the WebSocket.
type Egress interface {
	SendText(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room, imageBase64 string) error
}

const (
	ModeHTTP = "http"
	ModeWS   = "ws"
	ModeAuto = "auto"
)

// NewEgress picks a transport by mode. In auto mode the WebSocket is used
// while connected and a failed write falls back to HTTP once. With dryrun
// set nothing leaves the process; each reply is only logged.
func NewEgress(mode string, dryrun bool, c *Client, ws *WebSocket, logger *zap.Logger) Egress {
	if logger == nil {
		logger = zap.NewNop()
	}
	var out Egress
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeWS:
		out = &wsEgress{ws: ws}
	case ModeAuto:
		out = &autoEgress{ws: &wsEgress{ws: ws}, http: &httpEgress{c: c}, logger: logger}
	default:
		out = &httpEgress{c: c}
	}
	if dryrun {
		return &dryrunEgress{logger: logger}
	}
	return out
}

type httpEgress struct{ c *Client }

func (h *httpEgress) SendText(ctx context.Context, room, message string) error {
	if h == nil || h.c == nil {
		return errors.New("http egress not available")
	}
	return h.c.SendMessage(ctx, room, message)
}

func (h *httpEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if h == nil || h.c == nil {
		return errors.New("http egress not available")
	}
	return h.c.SendImage(ctx, room, imageBase64)
}

type wsEgress struct{ ws *WebSocket }

func (w *wsEgress) available() bool { return w != nil && w.ws != nil && w.ws.Connected() }

func (w *wsEgress) SendText(ctx context.Context, room, message string) error {
	return w.write(ctx, ReplyRequest{Type: "text", Room: room, Data: message})
}

func (w *wsEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	return w.write(ctx, ReplyRequest{Type: "image", Room: room, Data: imageBase64})
}

func (w *wsEgress) write(ctx context.Context, req ReplyRequest) error {
	if !w.available() {
		return ErrNotConnected
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	return w.ws.WriteJSON(ctx, &req)
}

type autoEgress struct {
	ws     *wsEgress
	http   *httpEgress
	logger *zap.Logger
}

func (a *autoEgress) SendText(ctx context.Context, room, message string) error {
	if a.ws.available() {
		err := a.ws.SendText(ctx, room, message)
		if err == nil {
			return nil
		}
		a.logger.Warn("egress_fallback", zap.String("type", "text"), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendText(ctx, room, message)
}

func (a *autoEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if a.ws.available() {
		err := a.ws.SendImage(ctx, room, imageBase64)
		if err == nil {
			return nil
		}
		a.logger.Warn("egress_fallback", zap.String("type", "image"), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendImage(ctx, room, imageBase64)
}

type dryrunEgress struct{ logger *zap.Logger }

func (d *dryrunEgress) SendText(_ context.Context, room, message string) error {
	d.logger.Info("egress_dryrun", zap.String("type", "text"), zap.String("room", room), zap.Int("len", len(message)))
	return nil
}

func (d *dryrunEgress) SendImage(_ context.Context, room, imageBase64 string) error {
	d.logger.Info("egress_dryrun", zap.String("type", "image"), zap.String("room", room), zap.Int("len", len(imageBase64)))
	return nil
}
