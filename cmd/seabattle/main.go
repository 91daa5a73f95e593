package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/park285/seabattle-client/internal/adapter/gamepresenter"
	"github.com/park285/seabattle-client/internal/board"
	appcfg "github.com/park285/seabattle-client/internal/config"
	"github.com/park285/seabattle-client/internal/game"
	"github.com/park285/seabattle-client/internal/gameapi"
	"github.com/park285/seabattle-client/internal/msgcat"
	"github.com/park285/seabattle-client/internal/obslog"
	"github.com/park285/seabattle-client/internal/render"
	"github.com/park285/seabattle-client/internal/session"
	"github.com/park285/seabattle-client/internal/sessionstore"
	"github.com/park285/seabattle-client/internal/syncloop"
	"github.com/park285/seabattle-client/internal/tui"
)

func main() {
	var (
		code    = flag.String("code", "", "invite or game code to open")
		gameID  = flag.String("game", "", "resume a known game id")
		token   = flag.String("invite", "", "invite token to wait on (cancelled on interrupt)")
		useTUI  = flag.Bool("tui", false, "full-screen terminal view")
		envFile = flag.String("env", "", "dotenv file (default .env)")
	)
	flag.Parse()

	cfg, err := appcfg.Load(*envFile)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	closeLog, err := obslog.Init(obslog.OptionsFromEnv())
	if err != nil {
		log.Fatalf("log init error: %v", err)
	}
	defer closeLog()
	logger := obslog.L()

	if *code == "" && *gameID == "" {
		log.Fatal("one of -code or -game is required")
	}

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Fatalf("messages error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	headers := gameapi.SessionHeaders(cfg.CSRFToken, cfg.SessionCookie)
	client := gameapi.NewClient(cfg.BaseURL,
		gameapi.WithHeaderProvider(headers),
		gameapi.WithTimeout(cfg.RequestTimeout),
	)
	mode, _ := gameapi.ParseMode(cfg.Transport)
	var ws *gameapi.WSClient
	if mode != gameapi.ModeHTTP {
		ws = gameapi.NewWSClient(cfg.WSURL,
			gameapi.WithWSHeaders(headers),
			gameapi.WithWSLogger(logger),
			gameapi.WithReplyTimeout(cfg.RequestTimeout),
		)
		ws.OnStateChange(func(s gameapi.WSState) {
			logger.Info("ws_state", zap.String("state", s.String()))
		})
	}
	remote := gameapi.NewRemote(mode, client, ws, logger)

	store := openStore(ctx, cfg.RedisURL, logger)

	snap, err := openGame(ctx, remote, store, *code, *gameID, *token, cfg.PollInterval, logger)
	if err != nil {
		_ = shutdown(ws, store)
		if errors.Is(err, context.Canceled) {
			fmt.Println("cancelled")
			return
		}
		log.Fatalf("open game error: %v", err)
	}
	if ws != nil {
		cctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
		if err := ws.Connect(cctx, snap.GameID); err != nil {
			logger.Warn("ws_connect_failed", zap.String("game_id", snap.GameID), zap.Error(err))
		}
		cancel()
	}

	if *code == "" {
		// keep the code of a resumed record so later saves do not drop it
		if rec, _ := store.Load(ctx, snap.GameID); rec != nil {
			*code = rec.Code
		}
	}

	formatter := gamepresenter.NewFormatter(cat)
	opts := []syncloop.Option{
		syncloop.WithLogger(logger),
		syncloop.WithPollInterval(cfg.PollInterval),
		syncloop.WithRequestTimeout(cfg.RequestTimeout),
		syncloop.WithStore(store, *code),
		syncloop.WithSessionOptions(session.WithSetupDuration(cfg.SetupDeadline)),
	}
	if ws != nil {
		opts = append(opts, syncloop.WithPushes(remote))
	}

	if *useTUI {
		screen := tui.NewScreen(formatter, logger)
		runner := syncloop.Start(ctx, remote, snap, screen, opts...)
		if err := screen.Run(ctx, runner); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("tui_failed", zap.Error(err))
		}
		wait(runner)
	} else {
		out := &lockedWriter{w: os.Stdout}
		presenter := gamepresenter.NewPresenter(formatter, out.line, pngWriter(cfg.BoardPNGPath), logger)
		runner := syncloop.Start(ctx, remote, snap, presenter, opts...)
		presenter.Help()
		prompt(ctx, os.Stdin, runner, presenter, out)
		wait(runner)
	}

	if err := shutdown(ws, store); err != nil {
		logger.Warn("shutdown_errors", zap.Error(err))
	}
}

func openStore(ctx context.Context, redisURL string, logger *zap.Logger) sessionstore.Store {
	if strings.TrimSpace(redisURL) == "" {
		return sessionstore.NewMemory()
	}
	sctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	s, err := sessionstore.Open(sctx, redisURL)
	if err != nil {
		logger.Warn("resume_store_fallback", zap.Error(err))
		return sessionstore.NewMemory()
	}
	return s
}

// openGame resolves the starting snapshot: a stored record for the code or
// id first, then the invite wait, then a plain by-code lookup.
func openGame(ctx context.Context, remote *gameapi.Remote, store sessionstore.Store, code, gameID, token string, every time.Duration, logger *zap.Logger) (*game.Snapshot, error) {
	var rec *sessionstore.Record
	switch {
	case gameID != "":
		rec, _ = store.Load(ctx, gameID)
		if rec == nil {
			rec = &sessionstore.Record{GameID: gameID}
		}
	case code != "":
		rec, _ = store.LoadByCode(ctx, code)
	}
	if rec != nil {
		snap, err := remote.Resume(ctx, rec.GameID, board.Seat(rec.Seat))
		if err == nil {
			logger.Info("session_resumed", zap.String("game_id", rec.GameID), zap.Int("seat", int(snap.Seat)))
			return snap, nil
		}
		if code == "" {
			return nil, err
		}
		logger.Warn("resume_failed", zap.String("game_id", rec.GameID), zap.Error(err))
	}
	if token != "" {
		fmt.Println("waiting for the opponent to accept…")
		return syncloop.NewWaiter(remote, every, logger).Wait(ctx, code, token)
	}
	return remote.OpenByCode(ctx, code)
}

func prompt(ctx context.Context, in io.Reader, runner *syncloop.Runner, presenter *gamepresenter.Presenter, out *lockedWriter) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			runner.Send(syncloop.Leave{})
			return
		case <-runner.Done():
			return
		case line, ok := <-lines:
			if !ok {
				runner.Send(syncloop.Leave{})
				return
			}
			msg, local, err := parseLine(line)
			if err != nil {
				_ = out.line("! " + err.Error())
				continue
			}
			switch local {
			case cmdQuit:
				runner.Send(syncloop.Leave{})
				return
			case cmdHelp:
				presenter.Help()
			case cmdLegend:
				_ = out.line(render.Legend())
			case cmdBoard, cmdStatus:
				fr, ok := runner.Frame()
				if !ok {
					return
				}
				if local == cmdBoard {
					presenter.Show(fr)
				} else {
					presenter.Status(fr)
				}
			}
			if msg != nil {
				runner.Send(msg)
			}
		}
	}
}

func wait(r *syncloop.Runner) {
	select {
	case <-r.Done():
	case <-time.After(3 * time.Second):
		r.Stop()
	}
}

func shutdown(ws *gameapi.WSClient, store sessionstore.Store) error {
	var err error
	if ws != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = multierr.Append(err, ws.Close(ctx))
		cancel()
	}
	return multierr.Append(err, store.Close())
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) line(s string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintln(l.w, s)
	return err
}

// pngWriter overwrites path with every new board image; nil disables it.
func pngWriter(path string) func([]byte) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return func(b []byte) error {
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, b, 0o644); err != nil {
			return err
		}
		return os.Rename(tmp, path)
	}
}
