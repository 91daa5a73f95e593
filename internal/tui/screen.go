package tui

import (
	"context"
	"sync"

	"github.com/nsf/termbox-go"
	"go.uber.org/zap"

	"github.com/park285/seabattle-client/internal/adapter/gamepresenter"
	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/session"
	"github.com/park285/seabattle-client/internal/syncloop"
)

const noticeHistory = 32

// Screen is a full-terminal view of one runner. It is the runner's Sink;
// the sink methods only record state and wake the draw loop.
type Screen struct {
	fmt *gamepresenter.Formatter
	log *zap.Logger

	mu      sync.Mutex
	frame   syncloop.Frame
	have    bool
	notices []string
	cursor  Cursor

	wake chan struct{}
}

var _ syncloop.Sink = (*Screen)(nil)

func NewScreen(f *gamepresenter.Formatter, log *zap.Logger) *Screen {
	if log == nil {
		log = zap.NewNop()
	}
	return &Screen{
		fmt:    f,
		log:    log,
		cursor: Cursor{Col: board.Cols / 2, Row: board.Rows - 1},
		wake:   make(chan struct{}, 1),
	}
}

func (s *Screen) Notice(n session.Notice) {
	text := s.fmt.Notice(n)
	if text == "" {
		return
	}
	s.mu.Lock()
	s.notices = append(s.notices, text)
	if len(s.notices) > noticeHistory {
		s.notices = s.notices[len(s.notices)-noticeHistory:]
	}
	s.mu.Unlock()
	s.poke()
}

func (s *Screen) Frame(fr syncloop.Frame) {
	s.mu.Lock()
	s.frame, s.have = fr, true
	s.mu.Unlock()
	s.poke()
}

func (s *Screen) Ended(fr syncloop.Frame) {
	s.mu.Lock()
	s.frame, s.have = fr, true
	s.notices = append(s.notices, s.fmt.Ended(fr)+"  (q to quit)")
	s.mu.Unlock()
	s.poke()
}

func (s *Screen) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run takes over the terminal until the user quits, ctx ends or the
// runner stops. Quitting sends Leave to the runner.
func (s *Screen) Run(ctx context.Context, r *syncloop.Runner) error {
	if err := termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()

	events := make(chan termbox.Event)
	go func() {
		for {
			ev := termbox.PollEvent()
			select {
			case events <- ev:
			case <-r.Done():
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		if err := s.draw(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			r.Send(syncloop.Leave{})
			return ctx.Err()
		case <-r.Done():
			return nil
		case <-s.wake:
		case ev := <-events:
			switch ev.Type {
			case termbox.EventError:
				return ev.Err
			case termbox.EventKey:
				if quit := s.key(ev, r); quit {
					r.Send(syncloop.Leave{})
					return nil
				}
			}
		}
	}
}

func (s *Screen) key(ev termbox.Event, r *syncloop.Runner) (quit bool) {
	a := ActionOf(ev)
	if a == ActQuit {
		return true
	}
	s.mu.Lock()
	s.cursor = s.cursor.Move(a)
	cur, fr := s.cursor, s.frame
	s.mu.Unlock()

	if msg, ok := Message(a, cur, fr); ok {
		if !r.Send(msg) {
			s.log.Debug("tui_input_dropped")
		}
	}
	return false
}

func (s *Screen) draw() error {
	s.mu.Lock()
	fr, have := s.frame, s.have
	cur := s.cursor
	notices := append([]string(nil), s.notices...)
	s.mu.Unlock()
	if !have {
		return nil
	}
	w, _ := termbox.Size()
	return Layout(s.fmt, fr, cur, notices, w).flush()
}
