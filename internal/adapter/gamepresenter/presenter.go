package gamepresenter

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/seabattle-client/internal/render"
	"github.com/park285/seabattle-client/internal/session"
	"github.com/park285/seabattle-client/internal/syncloop"
)

const renderTimeout = 5 * time.Second

// Presenter delivers notices and board drawings through injected senders.
// It satisfies syncloop.Sink. The board is re-sent only when its drawing
// changes; the countdown alone does not trigger output.
type Presenter struct {
	sendMessage func(message string) error
	sendImage   func(png []byte) error
	fmt         *Formatter
	log         *zap.Logger

	mu        sync.Mutex
	lastBoard string
}

var _ syncloop.Sink = (*Presenter)(nil)

func NewPresenter(f *Formatter, sendMessage func(message string) error, sendImage func(png []byte) error, log *zap.Logger) *Presenter {
	if log == nil {
		log = zap.NewNop()
	}
	if f == nil {
		f = NewFormatter(nil)
	}
	return &Presenter{sendMessage: sendMessage, sendImage: sendImage, fmt: f, log: log}
}

func (p *Presenter) Notice(n session.Notice) {
	if p == nil {
		return
	}
	if n.Err != nil {
		p.log.Debug("notice_error", zap.String("key", n.Key), zap.Error(n.Err))
	}
	p.say(p.fmt.Notice(n))
}

func (p *Presenter) Frame(fr syncloop.Frame) {
	if p == nil {
		return
	}
	p.board(fr, false)
}

func (p *Presenter) Ended(fr syncloop.Frame) {
	if p == nil {
		return
	}
	p.board(fr, true)
	p.say(p.fmt.Ended(fr))
}

// Show sends the board and status lines regardless of what was sent before.
func (p *Presenter) Show(fr syncloop.Frame) {
	if p == nil {
		return
	}
	p.board(fr, true)
	p.Status(fr)
}

// Status sends the clock, setup and pause lines for fr.
func (p *Presenter) Status(fr syncloop.Frame) {
	if p == nil {
		return
	}
	lines := []string{p.fmt.Header(fr)}
	if s := p.fmt.Clock(fr); s != "" {
		lines = append(lines, s)
	}
	if s := p.fmt.Remaining(fr); s != "" {
		lines = append(lines, s)
	}
	if fr.View != session.ViewSetup {
		lines = append(lines, p.fmt.Pauses(fr), p.fmt.Killed(fr))
	}
	p.say(strings.Join(lines, "\n"))
}

func (p *Presenter) Help() { p.say(p.fmt.Help()) }

func (p *Presenter) board(fr syncloop.Frame, force bool) {
	scene := p.fmt.Scene(fr)
	text := render.Text(scene)
	// the header carries a countdown; compare the grid alone
	bare := scene
	bare.Header = ""
	killed := p.fmt.Killed(fr)
	key := render.Text(bare) + "\n" + killed

	p.mu.Lock()
	changed := force || key != p.lastBoard
	p.lastBoard = key
	p.mu.Unlock()

	if changed {
		if s := p.fmt.Remaining(fr); s != "" && fr.View == session.ViewSetup {
			text += "\n" + s
		}
		if killed != "" {
			text += "\n" + killed
		}
		p.say(text)
	}
	if changed && p.sendImage != nil {
		ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
		defer cancel()
		img, err := render.PNG(ctx, scene)
		if err != nil {
			p.log.Warn("board_render_failed", zap.Error(err))
			return
		}
		if err := p.sendImage(img); err != nil {
			p.log.Warn("board_image_send_failed", zap.Error(err))
		}
	}
}

func (p *Presenter) say(text string) {
	if strings.TrimSpace(text) == "" || p.sendMessage == nil {
		return
	}
	if err := p.sendMessage(text); err != nil {
		p.log.Warn("message_send_failed", zap.Error(err))
	}
}
