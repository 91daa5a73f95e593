package main

import (
	"context"
	"flag"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	appcfg "github.com/park285/seabattle-client/internal/config"
	"github.com/park285/seabattle-client/internal/gameapi"
)

func main() {
	gameID := flag.String("game", "", "game id for the websocket and state checks")
	code := flag.String("code", "", "code for the by-code lookup check")
	envFile := flag.String("env", "", "dotenv file (default .env)")
	flag.Parse()

	cfg, err := appcfg.Load(*envFile)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	headers := gameapi.SessionHeaders(cfg.CSRFToken, cfg.SessionCookie)
	client := gameapi.NewClient(cfg.BaseURL,
		gameapi.WithHeaderProvider(headers),
		gameapi.WithTimeout(8*time.Second),
		gameapi.WithRetry(0),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		status, err := client.Probe(gctx)
		if err != nil {
			log.Printf("http %s: %v", cfg.BaseURL, err)
			return err
		}
		log.Printf("http %s: status %d", cfg.BaseURL, status)
		return nil
	})
	if *code != "" {
		g.Go(func() error {
			reply, err := client.ByCode(gctx, *code)
			if err != nil {
				log.Printf("by_code %s: %v", *code, err)
				return nil
			}
			log.Printf("by_code %s: game=%s status=%s my_player=%v", *code, reply.ID, reply.Status, reply.MyPlayer)
			return nil
		})
	}
	if *gameID != "" {
		g.Go(func() error {
			tick, err := client.Timer(gctx, *gameID)
			if err != nil {
				log.Printf("timer %s: %v", *gameID, err)
				return nil
			}
			log.Printf("timer %s: turn=%d paused=%v finished=%v", *gameID, tick.Turn, tick.Paused, tick.Finished)
			return nil
		})
		g.Go(func() error {
			ws := gameapi.NewWSClient(cfg.WSURL, gameapi.WithWSHeaders(headers), gameapi.WithReconnect(0))
			ws.OnStateChange(func(s gameapi.WSState) { log.Printf("ws state: %s", s) })
			defer ws.Close(context.Background())
			seen := make(chan struct{}, 1)
			ws.OnPush(func(gameapi.Push) {
				select {
				case seen <- struct{}{}:
				default:
				}
			})
			if err := ws.Connect(gctx, *gameID); err != nil {
				log.Printf("ws %s: %v", cfg.WSURL, err)
				return nil
			}
			// watch for pushes for a short window
			select {
			case <-seen:
				log.Printf("ws %s: push received", cfg.WSURL)
			case <-time.After(5 * time.Second):
				log.Printf("ws %s: connected, no push within 5s", cfg.WSURL)
			case <-gctx.Done():
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("check failed: %v", err)
	}
}
