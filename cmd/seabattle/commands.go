package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/fleet"
	"github.com/park285/seabattle-client/internal/game"
	"github.com/park285/seabattle-client/internal/syncloop"
)

// local commands handled by the prompt itself
type localCmd int

const (
	cmdNone localCmd = iota
	cmdHelp
	cmdBoard
	cmdStatus
	cmdLegend
	cmdQuit
)

var errUnknownCommand = errors.New("unknown command, try 'help'")

// parseLine turns one prompt line into a runner message or a local command.
func parseLine(line string) (syncloop.Msg, localCmd, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(line)))
	if len(fields) == 0 {
		return nil, cmdNone, nil
	}
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "help", "?":
		return nil, cmdHelp, nil
	case "board", "b":
		return nil, cmdBoard, nil
	case "status":
		return nil, cmdStatus, nil
	case "legend":
		return nil, cmdLegend, nil
	case "quit", "exit", "leave":
		return nil, cmdQuit, nil

	case "kind", "k":
		if len(args) != 1 {
			return nil, cmdNone, errors.New("usage: kind <code>")
		}
		// labels are case-sensitive; retry with the raw argument
		raw := strings.Fields(strings.TrimSpace(line))[1]
		k, ok := fleet.ParseKind(raw)
		if !ok {
			return nil, cmdNone, fmt.Errorf("unknown kind %q", raw)
		}
		return syncloop.SelectKind{Kind: k}, cmdNone, nil
	case "clear":
		return syncloop.Command{Op: syncloop.OpClear}, cmdNone, nil
	case "auto":
		return syncloop.Command{Op: syncloop.OpAuto}, cmdNone, nil
	case "submit":
		return syncloop.Command{Op: syncloop.OpSubmit}, cmdNone, nil
	case "pause":
		kind := game.PauseShort
		if len(args) > 0 {
			switch args[0] {
			case "short":
			case "long":
				kind = game.PauseLong
			default:
				return nil, cmdNone, errors.New("usage: pause short|long")
			}
		}
		return syncloop.Command{Op: syncloop.OpPause, Pause: kind}, cmdNone, nil
	case "unpause", "resume":
		return syncloop.Command{Op: syncloop.OpCancelPause}, cmdNone, nil
	case "resign":
		return syncloop.Command{Op: syncloop.OpResign}, cmdNone, nil
	}

	if at, err := parseCell(cmd); err == nil {
		return syncloop.Click{At: at}, cmdNone, nil
	}
	return nil, cmdNone, errUnknownCommand
}

// parseCell reads "c12" as column c, row 12 of the local view.
func parseCell(s string) (board.Coord, error) {
	if len(s) < 2 {
		return board.Coord{}, errors.New("cell too short")
	}
	col := int(s[0] - 'a')
	row, err := strconv.Atoi(s[1:])
	if err != nil {
		return board.Coord{}, fmt.Errorf("cell row: %w", err)
	}
	c := board.Coord{X: col, Y: row - 1}
	if !c.InBounds() {
		return board.Coord{}, fmt.Errorf("cell %s is off the board", s)
	}
	return c, nil
}
