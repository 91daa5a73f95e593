package syncloop

import (
	"context"
	"maps"
	"time"

	"go.uber.org/zap"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/clock"
	"github.com/park285/seabattle-client/internal/fleet"
	"github.com/park285/seabattle-client/internal/game"
	"github.com/park285/seabattle-client/internal/session"
	"github.com/park285/seabattle-client/internal/sessionstore"
)

const (
	DefaultPollInterval   = time.Second
	DefaultRequestTimeout = 10 * time.Second
)

// Sink receives everything the runner wants shown. Calls come from the
// runner goroutine, one at a time.
type Sink interface {
	Notice(n session.Notice)
	Frame(f Frame)
	Ended(f Frame)
}

// PushSource delivers server-initiated snapshots, e.g. from a websocket.
type PushSource interface {
	OnPush(fn func(*game.Snapshot, *clock.Tick)) (remove func())
}

type ResumeStore interface {
	Save(ctx context.Context, rec sessionstore.Record) error
	Load(ctx context.Context, gameID string) (*sessionstore.Record, error)
	Delete(ctx context.Context, gameID string) error
}

type Option func(*Runner)

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.pollEvery = d
		}
	}
}

func WithCountdownInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.countdownEvery = d
		}
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.reqTimeout = d
		}
	}
}

// WithStore keeps a resume record for the game under its invite code.
func WithStore(s ResumeStore, code string) Option {
	return func(r *Runner) {
		r.store = s
		r.code = code
	}
}

func WithPushes(p PushSource) Option {
	return func(r *Runner) { r.pushes = p }
}

func WithSessionOptions(opts ...session.Option) Option {
	return func(r *Runner) { r.sessOpts = append(r.sessOpts, opts...) }
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// Runner owns one session. Input, poll ticks, countdown ticks, the setup
// deadline and network results all arrive on a single inbox.
type Runner struct {
	remote game.Remote
	sink   Sink
	store  ResumeStore
	pushes PushSource
	code   string
	log    *zap.Logger
	now    func() time.Time

	pollEvery      time.Duration
	countdownEvery time.Duration
	reqTimeout     time.Duration
	sessOpts       []session.Option

	sess   *session.Session
	gameID string

	inbox  chan Msg
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	boardBusy   bool
	timerBusy   bool
	killedBusy  bool
	killedSeen  bool
	killedFor   *board.Board
	killed      map[fleet.Kind]int
	killedFails int
	fails       map[string]int
	deadline    *time.Timer
	deadlineC   <-chan time.Time
	pollStopped bool
}

// Start opens a session from snap and runs it until ctx ends or Leave.
func Start(parent context.Context, remote game.Remote, snap *game.Snapshot, sink Sink, opts ...Option) *Runner {
	ctx, cancel := context.WithCancel(parent)
	r := &Runner{
		remote:         remote,
		sink:           sink,
		log:            zap.NewNop(),
		now:            time.Now,
		pollEvery:      DefaultPollInterval,
		countdownEvery: time.Second,
		reqTimeout:     DefaultRequestTimeout,
		inbox:          make(chan Msg, 64),
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
		fails:          make(map[string]int),
		killed:         map[fleet.Kind]int{},
	}
	for _, o := range opts {
		o(r)
	}
	if r.sink == nil {
		r.sink = nopSink{}
	}

	sessOpts := append([]session.Option{session.WithLogger(r.log), session.WithClock(r.now)}, r.sessOpts...)
	sess, eff := session.Open(snap, sessOpts...)
	r.sess = sess
	r.gameID = sess.GameID()
	r.restore()

	go r.loop(eff)
	return r
}

func (r *Runner) Inbox() chan<- Msg { return r.inbox }

// Send posts m unless the runner already stopped.
func (r *Runner) Send(m Msg) bool {
	select {
	case r.inbox <- m:
		return true
	case <-r.done:
		return false
	}
}

// Frame returns the current frame, or false once the runner stopped.
func (r *Runner) Frame() (Frame, bool) {
	reply := make(chan Frame, 1)
	if !r.Send(GetFrame{Reply: reply}) {
		return Frame{}, false
	}
	select {
	case f := <-reply:
		return f, true
	case <-r.done:
		return Frame{}, false
	}
}

func (r *Runner) Done() <-chan struct{} { return r.done }

// Stop leaves the view and waits for the loop to exit.
func (r *Runner) Stop() {
	r.cancel()
	<-r.done
}

func (r *Runner) loop(initial session.Effects) {
	defer close(r.done)
	defer r.cancel()

	if r.pushes != nil {
		remove := r.pushes.OnPush(func(snap *game.Snapshot, tick *clock.Tick) {
			r.post(pushed{snap: snap, tick: tick})
		})
		defer remove()
	}

	poll := time.NewTicker(r.pollEvery)
	defer poll.Stop()
	countdown := time.NewTicker(r.countdownEvery)
	defer countdown.Stop()
	defer r.disarm()

	r.handle(initial)
	r.save()
	r.poll()

	for {
		select {
		case <-r.ctx.Done():
			r.log.Info("sync_stopped", zap.String("game_id", r.gameID))
			return

		case <-poll.C:
			if r.sess.Ended() {
				if !r.pollStopped {
					r.pollStopped = true
					poll.Stop()
				}
				continue
			}
			r.poll()

		case now := <-countdown.C:
			if r.sess.View() == session.ViewPlay {
				r.sink.Frame(r.frame(now))
			}

		case now := <-r.deadlineC:
			r.deadlineC = nil
			r.handle(r.sess.OnDeadline(now))

		case m := <-r.inbox:
			if stop := r.dispatch(m); stop {
				r.log.Info("sync_left", zap.String("game_id", r.gameID))
				return
			}
		}
	}
}

func (r *Runner) dispatch(m Msg) (stop bool) {
	switch msg := m.(type) {
	case Click:
		eff, _ := r.sess.Click(msg.At)
		r.handle(eff)
	case SelectKind:
		eff, _ := r.sess.SelectKind(msg.Kind)
		r.handle(eff)
	case Command:
		r.handle(r.command(msg))
	case GetFrame:
		msg.Reply <- r.frame(r.now())
	case Leave:
		return true

	case boardFetched:
		r.boardBusy = false
		if r.polled(msg.err, "state") {
			r.handle(r.sess.OnBoardSnapshot(msg.snap))
		}
	case timerFetched:
		r.timerBusy = false
		if r.polled(msg.err, "timer") {
			r.handle(r.sess.OnTimer(msg.tick))
		}
	case killedFetched:
		r.killedBusy = false
		next := msg.killed
		if msg.err != nil {
			if r.ctx.Err() != nil {
				return false
			}
			r.killedFails++
			r.log.Warn("query_degraded",
				zap.String("kind", "killed"),
				zap.String("game_id", r.gameID),
				zap.Int("degraded_total", r.killedFails),
				zap.Error(msg.err))
		}
		if next == nil {
			next = map[fleet.Kind]int{}
		}
		if !maps.Equal(next, r.killed) {
			r.killed = next
			r.sink.Frame(r.frame(r.now()))
		}
		r.refreshKilled()
	case pushed:
		if msg.snap != nil {
			r.handle(r.sess.OnBoardSnapshot(msg.snap))
		}
		if msg.tick != nil {
			r.handle(r.sess.OnTimer(msg.tick))
		}
	case resultArrived:
		r.handle(r.sess.OnResult(msg.res))
		if msg.res.Req.Kind == session.ReqPause && msg.res.Err == nil {
			r.save()
		}
	}
	return false
}

func (r *Runner) command(c Command) session.Effects {
	var (
		eff session.Effects
		err error
	)
	switch c.Op {
	case OpClear:
		eff, err = r.sess.ClearSetup()
	case OpAuto:
		eff, err = r.sess.AutoSetup()
	case OpSubmit:
		eff, err = r.sess.SubmitSetup()
	case OpPause:
		eff, err = r.sess.Pause(c.Pause)
	case OpCancelPause:
		eff, err = r.sess.CancelPause()
	case OpResign:
		eff, err = r.sess.Resign()
	}
	if err != nil {
		r.log.Debug("input_rejected", zap.Int("op", int(c.Op)), zap.Error(err))
	}
	return eff
}

// polled records a finished poll; false means there is nothing to apply.
// Failures are counted per fetch so one working endpoint does not hide
// the other being down.
func (r *Runner) polled(err error, what string) bool {
	if err == nil {
		if r.fails[what] > 0 {
			r.sink.Notice(session.Notice{Level: session.Info, Key: "sync.restored"})
		}
		delete(r.fails, what)
		return true
	}
	if r.ctx.Err() != nil {
		return false
	}
	r.fails[what]++
	r.log.Warn("sync_poll_failed",
		zap.String("game_id", r.gameID),
		zap.String("what", what),
		zap.Int("consecutive", r.fails[what]),
		zap.Error(err))
	if r.fails[what] == 1 {
		r.sink.Notice(session.Notice{Level: session.Warn, Key: "sync.offline", Err: err})
	}
	return false
}

func (r *Runner) handle(eff session.Effects) {
	for _, req := range eff.Requests {
		r.issue(req)
	}
	if eff.CancelDeadline {
		r.disarm()
	}
	if !eff.ArmDeadline.IsZero() && !r.sess.Ended() {
		r.arm(eff.ArmDeadline)
	}
	for _, n := range eff.Notices {
		r.sink.Notice(n)
	}
	if eff.Redraw || eff.Timer != nil {
		r.sink.Frame(r.frame(r.now()))
	}
	if eff.Ended {
		r.sink.Ended(r.frame(r.now()))
		r.forget()
	}
	r.refreshKilled()
}

// refreshKilled fetches the loss tally when the play board differs from the
// one the last tally was fetched for. One fetch runs at a time; its arrival
// checks again, so a board that moved on meanwhile is fetched next.
func (r *Runner) refreshKilled() {
	if r.killedBusy || r.sess.View() != session.ViewPlay {
		return
	}
	b := r.sess.Board()
	if r.killedSeen && b.Equal(r.killedFor) {
		return
	}
	r.killedBusy, r.killedSeen, r.killedFor = true, true, b
	go func() {
		ctx, cancel := context.WithTimeout(r.ctx, r.reqTimeout)
		defer cancel()
		killed, err := r.remote.Killed(ctx, r.gameID)
		r.post(killedFetched{killed: killed, err: err})
	}()
}

func (r *Runner) arm(at time.Time) {
	r.disarm()
	d := at.Sub(r.now())
	if d < 0 {
		d = 0
	}
	r.deadline = time.NewTimer(d)
	r.deadlineC = r.deadline.C
}

func (r *Runner) disarm() {
	if r.deadline != nil {
		r.deadline.Stop()
		r.deadline = nil
	}
	r.deadlineC = nil
}

// poll starts both snapshot fetches; each is skipped while its previous
// fetch is still in flight.
func (r *Runner) poll() {
	if !r.boardBusy {
		r.boardBusy = true
		go func() {
			ctx, cancel := context.WithTimeout(r.ctx, r.reqTimeout)
			defer cancel()
			snap, err := r.remote.FetchState(ctx, r.gameID)
			r.post(boardFetched{snap: snap, err: err})
		}()
	}
	if !r.timerBusy {
		r.timerBusy = true
		go func() {
			ctx, cancel := context.WithTimeout(r.ctx, r.reqTimeout)
			defer cancel()
			tick, err := r.remote.FetchTimer(ctx, r.gameID)
			r.post(timerFetched{tick: tick, err: err})
		}()
	}
}

func (r *Runner) issue(req session.Request) {
	r.log.Debug("request_issued",
		zap.String("game_id", r.gameID),
		zap.String("kind", req.Kind.String()),
		zap.Uint64("seq", req.Seq))
	go func() {
		ctx, cancel := context.WithTimeout(r.ctx, r.reqTimeout)
		defer cancel()
		r.post(resultArrived{res: execute(ctx, r.remote, r.gameID, req)})
	}()
}

func (r *Runner) post(m Msg) {
	select {
	case r.inbox <- m:
	case <-r.ctx.Done():
	}
}

func (r *Runner) frame(now time.Time) Frame {
	s := r.sess
	st := s.Setup()
	return Frame{
		GameID:        s.GameID(),
		Seat:          s.Seat(),
		View:          s.View(),
		Phase:         s.Phase(),
		Turn:          s.Turn(),
		MyTurn:        s.MyTurn(),
		Board:         s.Board(),
		Selection:     s.Selection(),
		SetupStage:    st.Stage(),
		SetupSelected: st.Selected(),
		Remaining:     st.Remaining(),
		SetupDeadline: st.Deadline(),
		HUD:           s.HUD(now),
		Ended:         s.Ended(),
		Winner:        s.Winner(),
		Reason:        s.WinReason(),
		Killed:        maps.Clone(r.killed),
		Pauses:        s.Pauses(),
		Degraded:      s.DegradedQueries() + r.killedFails,
	}
}

func (r *Runner) restore() {
	if r.store == nil || r.gameID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(r.ctx, 2*time.Second)
	defer cancel()
	rec, err := r.store.Load(ctx, r.gameID)
	if err != nil {
		r.log.Warn("resume_load_failed", zap.String("game_id", r.gameID), zap.Error(err))
		return
	}
	if rec != nil {
		r.sess.RestorePauses(rec.Pauses)
		r.log.Info("resume_restored", zap.String("game_id", r.gameID))
	}
}

func (r *Runner) save() {
	if r.store == nil || r.gameID == "" || r.sess.Ended() {
		return
	}
	ctx, cancel := context.WithTimeout(r.ctx, 2*time.Second)
	defer cancel()
	rec := sessionstore.Record{
		GameID:    r.gameID,
		Code:      r.code,
		Seat:      int(r.sess.Seat()),
		Pauses:    r.sess.Pauses(),
		UpdatedAt: r.now().UTC(),
	}
	if err := r.store.Save(ctx, rec); err != nil {
		r.log.Warn("resume_save_failed", zap.String("game_id", r.gameID), zap.Error(err))
	}
}

func (r *Runner) forget() {
	if r.store == nil || r.gameID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(r.ctx, 2*time.Second)
	defer cancel()
	if err := r.store.Delete(ctx, r.gameID); err != nil {
		r.log.Warn("resume_delete_failed", zap.String("game_id", r.gameID), zap.Error(err))
	}
}

type nopSink struct{}

func (nopSink) Notice(session.Notice) {}
func (nopSink) Frame(Frame)           {}
func (nopSink) Ended(Frame)           {}
