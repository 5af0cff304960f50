package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/cheese-checkers/internal/adapter/checkerspresenter"
	"github.com/park285/cheese-checkers/internal/checkersbuilder"
	appcfg "github.com/park285/cheese-checkers/internal/config"
	"github.com/park285/cheese-checkers/internal/irisfast"
	"github.com/park285/cheese-checkers/internal/obslog"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()
	logger := obslog.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := checkersbuilder.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("checkers init error", zap.Error(err))
	}
	defer deps.Close()

	client := irisfast.NewClient(cfg.IrisBaseURL, irisfast.WithHeaderProvider(cfg.Headers))
	ws := irisfast.NewWebSocket(cfg.IrisWSURL, 5, time.Second)
	ws.SetHeaderProvider(cfg.Headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.Stringer("state", state))
	})

	egress := irisfast.NewEgress(cfg.EgressMode, cfg.EgressDryRun, client, ws, logger)
	sendText, sendImage := bindEgress(egress, 15*time.Second)

	b := &bot{
		cfg:       cfg,
		deps:      deps,
		presenter: checkerspresenter.NewPresenter(sendText, sendImage),
		formatter: checkerspresenter.NewFormatter(prefixProvider{prefix: cfg.BotPrefix}, deps.Catalog),
		logger:    logger,
	}

	g, gctx := errgroup.WithContext(ctx)
	inbox := make(chan *irisfast.Message, 64)
	ws.OnMessage(func(msg *irisfast.Message) {
		select {
		case inbox <- msg:
		case <-gctx.Done():
		default:
			logger.Warn("inbox_full", zap.String("room", msg.Room))
		}
	})

	// a few workers so a slow render never blocks the read loop
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case msg := <-inbox:
					hctx, cancel := context.WithTimeout(gctx, 30*time.Second)
					b.handle(hctx, msg)
					cancel()
				}
			}
		})
	}
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, 10*time.Second)
		defer cancel()
		if err := ws.Connect(cctx); err != nil {
			return err
		}
		logger.Info("checkers_bot_started", zap.String("prefix", cfg.BotPrefix), zap.String("egress", cfg.EgressMode))
		<-gctx.Done()
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		return ws.Close(closeCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("checkers_bot_stopped", zap.Error(err))
		return
	}
	logger.Info("checkers_bot_stopped")
}

// bindEgress adapts egress to the presenter's callbacks, bounding each send.
func bindEgress(egress irisfast.Egress, timeout time.Duration) (func(room, message string) error, func(room, image string) error) {
	text := func(room, message string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return egress.SendText(ctx, room, message)
	}
	image := func(room, data string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return egress.SendImage(ctx, room, data)
	}
	return text, image
}

type prefixProvider struct{ prefix string }

func (p prefixProvider) Prefix() string { return p.prefix }
