// irischeck probes an Iris deployment: /config over HTTP, then the WebSocket
// feed for a short window. With IRISCHECK_ROOM set it also posts the opening
// board image to that room.
package main

import (
	"context"
	"encoding/base64"
	"os"
	"strings"
	"time"

	"github.com/park285/cheese-checkers/internal/checkers"
	"github.com/park285/cheese-checkers/internal/irisfast"
	"github.com/park285/cheese-checkers/internal/obslog"
	svc "github.com/park285/cheese-checkers/internal/service/checkers"
	"go.uber.org/zap"
)

func main() {
	_ = os.Setenv("LOG_TO_FILE", "false")
	if err := obslog.InitFromEnv(); err != nil {
		panic(err)
	}
	defer obslog.Sync()
	logger := obslog.L()

	baseURL := strings.TrimSpace(os.Getenv("IRIS_BASE_URL"))
	wsURL := strings.TrimSpace(os.Getenv("IRIS_WS_URL"))
	room := strings.TrimSpace(os.Getenv("IRISCHECK_ROOM"))
	if baseURL == "" {
		logger.Fatal("IRIS_BASE_URL is required")
	}

	headers := func() map[string]string {
		m := map[string]string{}
		for header, key := range map[string]string{"X-User-Id": "X_USER_ID", "X-User-Email": "X_USER_EMAIL", "X-Session-Id": "X_SESSION_ID"} {
			if v := strings.TrimSpace(os.Getenv(key)); v != "" {
				m[header] = v
			}
		}
		return m
	}

	client := irisfast.NewClient(baseURL,
		irisfast.WithHeaderProvider(headers),
		irisfast.WithTimeout(8*time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cfg, err := client.GetConfig(ctx)
	if err != nil {
		logger.Warn("config_failed", zap.Error(err))
	} else {
		logger.Info("config_ok",
			zap.String("bot", cfg.BotName),
			zap.Int("port", cfg.Port),
			zap.Int("polling", cfg.PollingSpeed),
			zap.Int("rate", cfg.MessageRate),
			zap.String("endpoint", cfg.WebserverEndpoint),
		)
	}

	if room != "" {
		sendOpeningBoard(ctx, client, room, logger)
	}

	if wsURL == "" {
		logger.Info("ws_skipped", zap.String("reason", "IRIS_WS_URL not set"))
		return
	}

	ws := irisfast.NewWebSocket(wsURL, 5, time.Second)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.String("state", state.String()))
	})
	ws.OnMessage(func(msg *irisfast.Message) {
		from := "?"
		if msg.Sender != nil {
			from = *msg.Sender
		}
		logger.Info("ws_message", zap.String("room", msg.Room), zap.String("from", from), zap.String("text", msg.Msg))
	})

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	if err := ws.Connect(cctx); err != nil {
		logger.Warn("ws_connect_failed", zap.Error(err))
		return
	}

	time.Sleep(10 * time.Second)
	_ = ws.Close(context.Background())
}

func sendOpeningBoard(ctx context.Context, client *irisfast.Client, room string, logger *zap.Logger) {
	png, err := svc.NewBoardRenderer().RenderPNG(ctx, checkers.InitialBoard(), svc.RenderOptions{
		Score:     &svc.Score{White: 12, Black: 12},
		HUDHeader: "irischeck",
		HUDTurn:   "white to move",
	})
	if err != nil {
		logger.Warn("render_failed", zap.Error(err))
		return
	}
	if err := client.SendImage(ctx, room, base64.StdEncoding.EncodeToString(png)); err != nil {
		logger.Warn("send_image_failed", zap.String("room", room), zap.Error(err))
		return
	}
	logger.Info("send_image_ok", zap.String("room", room), zap.Int("bytes", len(png)))
}
