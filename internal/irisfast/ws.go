package irisfast

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/park285/cheese-checkers/internal/obslog"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

var ErrNotConnected = errors.New("ws not connected")

type callbackEntry struct {
	id       int
	callback MessageCallback
}

type stateCallbackEntry struct {
	id       int
	callback StateCallback
}

// WebSocket receives Iris chat events and can also carry reply frames.
// It reconnects with backoff after read or ping failures.
type WebSocket struct {
	wsURL string

	conn   *websocket.Conn
	state  WebSocketState
	connM  sync.RWMutex
	writeM sync.Mutex

	msgCbs   []callbackEntry
	stateCbs []stateCallbackEntry
	nextID   int
	cbM      sync.RWMutex

	maxReconnectAttempts int
	reconnectDelay       time.Duration
	pingInterval         time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc

	headerProvider HeaderProvider
}

func NewWebSocket(wsURL string, maxReconnectAttempts int, reconnectDelay time.Duration) *WebSocket {
	return &WebSocket{
		wsURL:                wsURL,
		state:                WSStateDisconnected,
		maxReconnectAttempts: maxReconnectAttempts,
		reconnectDelay:       reconnectDelay,
		pingInterval:         30 * time.Second,
		stopCh:               make(chan struct{}),
	}
}

// SetHeaderProvider injects headers into the handshake.
func (ws *WebSocket) SetHeaderProvider(h HeaderProvider) {
	ws.headerProvider = h
}

func (ws *WebSocket) Connect(ctx context.Context) error {
	ws.connM.Lock()
	if ws.state == WSStateConnected || ws.state == WSStateConnecting {
		ws.connM.Unlock()
		return nil
	}
	if ws.rootCtx == nil {
		ws.rootCtx, ws.rootCancel = context.WithCancel(context.Background())
	}
	ws.connM.Unlock()
	ws.setState(WSStateConnecting)

	conn, err := ws.dial(ctx)
	if err != nil {
		ws.setState(WSStateFailed)
		ws.scheduleReconnect()
		return err
	}
	ws.attach(conn)
	return nil
}

func (ws *WebSocket) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, ws.wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      ws.buildHeaders(),
	})
	return conn, err
}

func (ws *WebSocket) attach(conn *websocket.Conn) {
	ws.connM.Lock()
	ws.conn = conn
	ws.connM.Unlock()
	ws.setState(WSStateConnected)

	ws.wg.Add(2)
	go ws.listen(conn)
	go ws.pingLoop(conn)
}

// Connected reports whether reply frames can be written right now.
func (ws *WebSocket) Connected() bool {
	ws.connM.RLock()
	defer ws.connM.RUnlock()
	return ws.conn != nil && ws.state == WSStateConnected
}

// WriteJSON sends v as one text frame. Writes are serialized.
func (ws *WebSocket) WriteJSON(ctx context.Context, v any) error {
	ws.connM.RLock()
	conn := ws.conn
	ws.connM.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}
	ws.writeM.Lock()
	defer ws.writeM.Unlock()
	return wsjson.Write(ctx, conn, v)
}

func (ws *WebSocket) listen(conn *websocket.Conn) {
	defer ws.wg.Done()
	for {
		var msg Message
		if err := wsjson.Read(ws.rootCtx, conn, &msg); err != nil {
			if ws.isStopping() {
				return
			}
			obslog.L().Warn("ws_read_failed", zap.Error(err))
			ws.drop(conn, "reconnect")
			return
		}

		ws.cbM.RLock()
		callbacks := make([]callbackEntry, len(ws.msgCbs))
		copy(callbacks, ws.msgCbs)
		ws.cbM.RUnlock()
		for _, entry := range callbacks {
			if entry.callback != nil {
				entry.callback(&msg)
			}
		}
	}
}

func (ws *WebSocket) pingLoop(conn *websocket.Conn) {
	defer ws.wg.Done()
	t := time.NewTicker(ws.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-ws.stopCh:
			return
		case <-ws.rootCtx.Done():
			return
		case <-t.C:
		}
		if !ws.isCurrent(conn) {
			return
		}
		ctx, cancel := context.WithTimeout(ws.rootCtx, 3*time.Second)
		err := conn.Ping(ctx)
		cancel()
		if err == nil {
			failures = 0
			continue
		}
		failures++
		if failures >= 2 {
			if !ws.isStopping() {
				obslog.L().Warn("ws_ping_failed", zap.Error(err))
				ws.drop(conn, "ping failure")
			}
			return
		}
	}
}

// drop closes conn if it is still the live connection and starts reconnecting.
func (ws *WebSocket) drop(conn *websocket.Conn, reason string) {
	ws.connM.Lock()
	if ws.conn != conn {
		ws.connM.Unlock()
		return
	}
	ws.conn = nil
	ws.connM.Unlock()
	_ = conn.Close(websocket.StatusGoingAway, reason)
	ws.setState(WSStateDisconnected)
	ws.scheduleReconnect()
}

func (ws *WebSocket) isCurrent(conn *websocket.Conn) bool {
	ws.connM.RLock()
	defer ws.connM.RUnlock()
	return ws.conn == conn
}

func (ws *WebSocket) scheduleReconnect() {
	if ws.maxReconnectAttempts <= 0 || ws.isStopping() {
		return
	}
	ws.setState(WSStateReconnecting)

	go func() {
		for attempt := 1; attempt <= ws.maxReconnectAttempts; attempt++ {
			select {
			case <-ws.stopCh:
				return
			case <-time.After(ws.reconnectDelay + backoffDuration(attempt)):
			}
			conn, err := ws.dial(ws.rootCtx)
			if err != nil {
				obslog.L().Warn("ws_reconnect_failed", zap.Int("attempt", attempt), zap.Error(err))
				continue
			}
			if ws.isStopping() {
				_ = conn.Close(websocket.StatusNormalClosure, "close")
				return
			}
			obslog.L().Info("ws_reconnected", zap.Int("attempt", attempt))
			ws.attach(conn)
			return
		}
		ws.setState(WSStateFailed)
	}()
}

func (ws *WebSocket) OnMessage(cb MessageCallback) int {
	ws.cbM.Lock()
	defer ws.cbM.Unlock()
	ws.nextID++
	ws.msgCbs = append(ws.msgCbs, callbackEntry{id: ws.nextID, callback: cb})
	return ws.nextID
}

func (ws *WebSocket) RemoveMessageCallback(id int) {
	ws.cbM.Lock()
	defer ws.cbM.Unlock()
	for i, cb := range ws.msgCbs {
		if cb.id == id {
			ws.msgCbs = append(ws.msgCbs[:i], ws.msgCbs[i+1:]...)
			return
		}
	}
}

func (ws *WebSocket) OnStateChange(cb StateCallback) int {
	ws.cbM.Lock()
	defer ws.cbM.Unlock()
	ws.nextID++
	ws.stateCbs = append(ws.stateCbs, stateCallbackEntry{id: ws.nextID, callback: cb})
	return ws.nextID
}

func (ws *WebSocket) RemoveStateCallback(id int) {
	ws.cbM.Lock()
	defer ws.cbM.Unlock()
	for i, cb := range ws.stateCbs {
		if cb.id == id {
			ws.stateCbs = append(ws.stateCbs[:i], ws.stateCbs[i+1:]...)
			return
		}
	}
}

func (ws *WebSocket) setState(state WebSocketState) {
	ws.connM.Lock()
	ws.state = state
	ws.connM.Unlock()

	ws.cbM.RLock()
	callbacks := make([]stateCallbackEntry, len(ws.stateCbs))
	copy(callbacks, ws.stateCbs)
	ws.cbM.RUnlock()
	for _, entry := range callbacks {
		if entry.callback != nil {
			entry.callback(state)
		}
	}
}

func (ws *WebSocket) Close(ctx context.Context) error {
	ws.stopOnce.Do(func() { close(ws.stopCh) })

	ws.connM.Lock()
	conn := ws.conn
	ws.conn = nil
	cancel := ws.rootCancel
	ws.connM.Unlock()
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "close")
	}
	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		ws.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		ws.setState(WSStateDisconnected)
		return nil
	}
}

func (ws *WebSocket) isStopping() bool {
	select {
	case <-ws.stopCh:
		return true
	default:
		return false
	}
}

func (ws *WebSocket) buildHeaders() http.Header {
	hdr := http.Header{}
	if ws.headerProvider == nil {
		return hdr
	}
	for k, v := range ws.headerProvider() {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		hdr.Set(k, v)
	}
	return hdr
}
