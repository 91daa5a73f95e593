package gameapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/seabattle-client/pkg/wire"
)

const pathGameWS = "/ws/game/%s/"

type WSState int

const (
	WSStateDisconnected WSState = iota
	WSStateConnecting
	WSStateConnected
	WSStateReconnecting
	WSStateFailed
)

func (s WSState) String() string {
	switch s {
	case WSStateConnecting:
		return "connecting"
	case WSStateConnected:
		return "connected"
	case WSStateReconnecting:
		return "reconnecting"
	case WSStateFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

// Push is a frame the server sent without being asked: a state broadcast
// or a timer tick. Exactly one of Reply and Tick is set.
type Push struct {
	GameID string
	Reply  *wire.Reply
	Tick   *wire.Tick
}

type PushCallback func(p Push)

type StateCallback func(state WSState)

type pushEntry struct {
	id       int
	callback PushCallback
}

type stateEntry struct {
	id       int
	callback StateCallback
}

type wsResult struct {
	reply *wire.Reply
	err   error
}

// WSClient carries framed requests for one game over a websocket and
// matches replies to requests by id.
type WSClient struct {
	baseURL string
	headers HeaderProvider
	logger  *zap.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	gameID string
	state  WSState

	writeM sync.Mutex

	pendM   sync.Mutex
	pending map[string]chan wsResult

	cbM      sync.RWMutex
	pushCbs  []pushEntry
	stateCbs []stateEntry
	nextCbID int

	maxReconnectAttempts int
	pingInterval         time.Duration
	replyTimeout         time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc
}

type WSOption func(*WSClient)

func WithWSHeaders(h HeaderProvider) WSOption {
	return func(w *WSClient) { w.headers = h }
}

func WithWSLogger(l *zap.Logger) WSOption {
	return func(w *WSClient) {
		if l != nil {
			w.logger = l
		}
	}
}

func WithReconnect(maxAttempts int) WSOption {
	return func(w *WSClient) { w.maxReconnectAttempts = maxAttempts }
}

func WithPingInterval(d time.Duration) WSOption {
	return func(w *WSClient) {
		if d > 0 {
			w.pingInterval = d
		}
	}
}

func WithReplyTimeout(d time.Duration) WSOption {
	return func(w *WSClient) {
		if d > 0 {
			w.replyTimeout = d
		}
	}
}

// NewWSClient takes the ws:// or wss:// origin of the game server.
func NewWSClient(baseURL string, opts ...WSOption) *WSClient {
	w := &WSClient{
		baseURL:              strings.TrimRight(baseURL, "/"),
		logger:               zap.NewNop(),
		state:                WSStateDisconnected,
		pending:              make(map[string]chan wsResult),
		maxReconnectAttempts: 5,
		pingInterval:         30 * time.Second,
		replyTimeout:         10 * time.Second,
		stopCh:               make(chan struct{}),
	}
	w.rootCtx, w.rootCancel = context.WithCancel(context.Background())
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *WSClient) State() WSState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// ConnectedTo reports whether a live connection for gameID exists.
func (w *WSClient) ConnectedTo(gameID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn != nil && w.state == WSStateConnected && w.gameID == gameID
}

// Connect dials the game's socket, replacing a connection to another game.
func (w *WSClient) Connect(ctx context.Context, gameID string) error {
	if w.isStopping() {
		return errClosed
	}
	if w.ConnectedTo(gameID) {
		return nil
	}
	w.mu.Lock()
	old := w.conn
	w.conn = nil
	w.gameID = gameID
	w.mu.Unlock()
	if old != nil {
		_ = old.Close(websocket.StatusNormalClosure, "switch game")
		w.failPending(errLost)
	}

	w.setState(WSStateConnecting)
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, err := w.dial(dialCtx, gameID)
	if err != nil {
		w.setState(WSStateFailed)
		return fmt.Errorf("ws dial: %w", err)
	}
	w.install(conn, gameID, false)
	return nil
}

func (w *WSClient) dial(ctx context.Context, gameID string) (*websocket.Conn, error) {
	u := w.baseURL + fmt.Sprintf(pathGameWS, url.PathEscape(gameID))
	conn, _, err := websocket.Dial(ctx, u, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      w.buildHeaders(),
	})
	return conn, err
}

// install makes conn the live connection. With onlyIfIdle it gives way to
// a connection that appeared meanwhile.
func (w *WSClient) install(conn *websocket.Conn, gameID string, onlyIfIdle bool) bool {
	w.mu.Lock()
	if onlyIfIdle && (w.conn != nil || w.gameID != gameID) {
		w.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "superseded")
		return false
	}
	w.conn = conn
	w.gameID = gameID
	w.mu.Unlock()
	w.setState(WSStateConnected)
	w.logger.Info("ws_connected", zap.String("game_id", gameID))

	w.wg.Add(2)
	go w.listen(conn, gameID)
	go w.pingLoop(conn)
	return true
}

func (w *WSClient) current() *websocket.Conn {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn
}

// Send writes env with a fresh id and waits for the matching reply.
// Errors wrapping errNotSent mean nothing reached the server.
func (w *WSClient) Send(ctx context.Context, gameID string, env wire.Envelope) (*wire.Reply, error) {
	if err := w.Connect(ctx, gameID); err != nil {
		return nil, fmt.Errorf("%w: %v", errNotSent, err)
	}
	conn := w.current()
	if conn == nil {
		return nil, fmt.Errorf("%w: not connected", errNotSent)
	}

	env.ID = uuid.NewString()
	ch := make(chan wsResult, 1)
	w.pendM.Lock()
	w.pending[env.ID] = ch
	w.pendM.Unlock()
	defer func() {
		w.pendM.Lock()
		delete(w.pending, env.ID)
		w.pendM.Unlock()
	}()

	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	w.writeM.Lock()
	err := wsjson.Write(wctx, conn, env)
	w.writeM.Unlock()
	cancel()
	if err != nil {
		w.lost(conn, "write")
		return nil, fmt.Errorf("%w: %v", errNotSent, err)
	}

	t := time.NewTimer(w.replyTimeout)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.C:
		return nil, fmt.Errorf("%s: %w", env.Type, errReplyTimeout)
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("%s: %w", env.Type, res.err)
		}
		if !res.reply.Succeeded() {
			return nil, &RequestError{Op: env.Type, Message: firstNonEmpty(res.reply.Message, res.reply.Error)}
		}
		return res.reply, nil
	}
}

func (w *WSClient) listen(conn *websocket.Conn, gameID string) {
	defer w.wg.Done()
	for {
		var raw json.RawMessage
		if err := wsjson.Read(w.rootCtx, conn, &raw); err != nil {
			if w.isStopping() {
				return
			}
			w.lost(conn, "read")
			return
		}
		w.dispatch(gameID, raw)
	}
}

func (w *WSClient) dispatch(gameID string, raw json.RawMessage) {
	var head struct {
		Type    string `json:"type"`
		ReplyTo string `json:"reply_to"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		w.logger.Debug("ws_frame_undecodable", zap.Error(err))
		return
	}
	if head.ReplyTo != "" {
		var r wire.Reply
		res := wsResult{reply: &r}
		if err := json.Unmarshal(raw, &r); err != nil {
			res = wsResult{err: fmt.Errorf("decode reply: %w", err)}
		}
		w.pendM.Lock()
		ch, ok := w.pending[head.ReplyTo]
		w.pendM.Unlock()
		if ok {
			select {
			case ch <- res:
			default:
			}
		}
		return
	}

	var p Push
	switch head.Type {
	case "tick":
		var t wire.Tick
		if err := json.Unmarshal(raw, &t); err != nil {
			return
		}
		p = Push{GameID: gameID, Tick: &t}
	case "state":
		var r wire.Reply
		if err := json.Unmarshal(raw, &r); err != nil {
			return
		}
		p = Push{GameID: gameID, Reply: &r}
	default:
		return
	}
	w.cbM.RLock()
	callbacks := make([]pushEntry, len(w.pushCbs))
	copy(callbacks, w.pushCbs)
	w.cbM.RUnlock()
	for _, entry := range callbacks {
		if entry.callback != nil {
			entry.callback(p)
		}
	}
}

func (w *WSClient) pingLoop(conn *websocket.Conn) {
	defer w.wg.Done()
	t := time.NewTicker(w.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-w.stopCh:
			return
		case <-t.C:
			if w.current() != conn {
				return
			}
			ctx, cancel := context.WithTimeout(w.rootCtx, 3*time.Second)
			err := conn.Ping(ctx)
			cancel()
			if err == nil {
				failures = 0
				continue
			}
			failures++
			if failures >= 2 {
				w.lost(conn, "ping failure")
				return
			}
		}
	}
}

// lost tears down conn if it is still the live one and starts reconnecting.
func (w *WSClient) lost(conn *websocket.Conn, reason string) {
	w.mu.Lock()
	if w.conn != conn {
		w.mu.Unlock()
		return
	}
	w.conn = nil
	gameID := w.gameID
	w.mu.Unlock()

	_ = conn.Close(websocket.StatusGoingAway, reason)
	w.failPending(errLost)
	w.setState(WSStateDisconnected)
	w.logger.Warn("ws_lost", zap.String("game_id", gameID), zap.String("reason", reason))
	if !w.isStopping() {
		w.scheduleReconnect(gameID)
	}
}

func (w *WSClient) failPending(err error) {
	w.pendM.Lock()
	defer w.pendM.Unlock()
	for id, ch := range w.pending {
		select {
		case ch <- wsResult{err: err}:
		default:
		}
		delete(w.pending, id)
	}
}

func (w *WSClient) scheduleReconnect(gameID string) {
	if w.maxReconnectAttempts <= 0 {
		return
	}
	w.setState(WSStateReconnecting)

	go func() {
		for attempt := 1; attempt <= w.maxReconnectAttempts; attempt++ {
			select {
			case <-w.stopCh:
				return
			case <-time.After(backoffDuration(attempt)):
			}
			w.mu.Lock()
			stale := w.gameID != gameID || w.conn != nil
			w.mu.Unlock()
			if stale {
				return
			}

			dialCtx, cancel := context.WithTimeout(w.rootCtx, 10*time.Second)
			conn, err := w.dial(dialCtx, gameID)
			cancel()
			if err != nil {
				continue
			}
			w.install(conn, gameID, true)
			return
		}
		w.setState(WSStateFailed)
	}()
}

func (w *WSClient) OnPush(cb PushCallback) int {
	w.cbM.Lock()
	defer w.cbM.Unlock()
	w.nextCbID++
	w.pushCbs = append(w.pushCbs, pushEntry{id: w.nextCbID, callback: cb})
	return w.nextCbID
}

func (w *WSClient) RemovePushCallback(id int) {
	w.cbM.Lock()
	defer w.cbM.Unlock()
	for i, cb := range w.pushCbs {
		if cb.id == id {
			w.pushCbs = append(w.pushCbs[:i], w.pushCbs[i+1:]...)
			break
		}
	}
}

func (w *WSClient) OnStateChange(cb StateCallback) int {
	w.cbM.Lock()
	defer w.cbM.Unlock()
	w.nextCbID++
	w.stateCbs = append(w.stateCbs, stateEntry{id: w.nextCbID, callback: cb})
	return w.nextCbID
}

func (w *WSClient) RemoveStateCallback(id int) {
	w.cbM.Lock()
	defer w.cbM.Unlock()
	for i, cb := range w.stateCbs {
		if cb.id == id {
			w.stateCbs = append(w.stateCbs[:i], w.stateCbs[i+1:]...)
			break
		}
	}
}

func (w *WSClient) setState(state WSState) {
	w.mu.Lock()
	w.state = state
	w.mu.Unlock()

	w.cbM.RLock()
	callbacks := make([]stateEntry, len(w.stateCbs))
	copy(callbacks, w.stateCbs)
	w.cbM.RUnlock()
	for _, entry := range callbacks {
		if entry.callback != nil {
			entry.callback(state)
		}
	}
}

func (w *WSClient) Close(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.mu.Lock()
	conn := w.conn
	w.conn = nil
	w.mu.Unlock()
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "close")
	}
	w.failPending(errClosed)
	w.rootCancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (w *WSClient) isStopping() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}

func (w *WSClient) buildHeaders() http.Header {
	hdr := http.Header{}
	if w.headers == nil {
		return hdr
	}
	for k, v := range w.headers() {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		hdr.Set(k, v)
	}
	return hdr
}

func isNotSent(err error) bool { return errors.Is(err, errNotSent) }
