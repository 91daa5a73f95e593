package gamepresenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/park285/seabattle-client/internal/fleet"
	"github.com/park285/seabattle-client/internal/msgcat"
	"github.com/park285/seabattle-client/internal/render"
	"github.com/park285/seabattle-client/internal/session"
	"github.com/park285/seabattle-client/internal/setup"
	"github.com/park285/seabattle-client/internal/syncloop"
)

var levelMarks = map[session.Level]string{
	session.Info:  "•",
	session.Warn:  "!",
	session.Error: "✗",
}

// Formatter turns frames and notices into terminal text.
type Formatter struct {
	cat *msgcat.Catalog
	now func() time.Time
}

func NewFormatter(cat *msgcat.Catalog) *Formatter {
	return &Formatter{cat: cat, now: time.Now}
}

// Notice renders n through the catalog; unknown keys print the key.
func (f *Formatter) Notice(n session.Notice) string {
	text := n.Key
	if f != nil && f.cat != nil {
		text = f.cat.Text(n.Key, n.Data)
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return levelMarks[n.Level] + " " + text
}

// Scene projects a frame for the board renderers.
func (f *Formatter) Scene(fr syncloop.Frame) render.Scene {
	return render.Scene{
		Seat:      fr.Seat,
		Board:     fr.Board,
		Selection: fr.Selection,
		Zone:      fr.View == session.ViewSetup && fr.SetupStage == setup.Placing,
		Header:    f.Header(fr),
	}
}

// Header is the one-line game summary above the board.
func (f *Formatter) Header(fr syncloop.Frame) string {
	parts := []string{fmt.Sprintf("game %s", fr.GameID), fmt.Sprintf("seat %d", fr.Seat)}
	switch fr.View {
	case session.ViewSetup:
		parts = append(parts, "setup "+fr.SetupStage.String())
		if !fr.SetupDeadline.IsZero() {
			left := max(0, int(fr.SetupDeadline.Sub(f.now()).Round(time.Second).Seconds()))
			parts = append(parts, fmt.Sprintf("%d:%02d left", left/60, left%60))
		}
	case session.ViewPlay:
		if fr.MyTurn {
			parts = append(parts, "your turn")
		} else {
			parts = append(parts, "opponent's turn")
		}
	case session.ViewEnded:
		parts = append(parts, "finished")
	}
	if fr.Degraded > 0 {
		parts = append(parts, fmt.Sprintf("%d queries degraded", fr.Degraded))
	}
	return strings.Join(parts, " | ")
}

// Clock is the HUD line, empty outside play.
func (f *Formatter) Clock(fr syncloop.Frame) string {
	if fr.View != session.ViewPlay {
		return ""
	}
	d := fr.HUD
	line := fmt.Sprintf("turn %s | you %s | opponent %s", d.TurnText, d.MyBank, d.OpponentBank)
	if d.TurnUrgent {
		line += " | hurry"
	}
	if d.Overlay != nil {
		line += fmt.Sprintf(" | paused by seat %d, %s", d.Overlay.Initiator, d.Overlay.Text)
		if d.Overlay.CanCancel {
			line += " (unpause to resume)"
		}
	}
	return line
}

// Remaining lists unplaced kinds as "KR×6 F×2", strongest first.
func (f *Formatter) Remaining(fr syncloop.Frame) string {
	if len(fr.Remaining) == 0 {
		return ""
	}
	var parts []string
	for _, k := range fleet.Kinds() {
		if n := fr.Remaining[k]; n > 0 {
			mark := ""
			if k == fr.SetupSelected {
				mark = ">"
			}
			parts = append(parts, fmt.Sprintf("%s%s×%d", mark, k, n))
		}
	}
	if len(parts) == 0 {
		return "all pieces placed"
	}
	return "to place: " + strings.Join(parts, " ")
}

// Killed lists the opponent's losses as lost/started per kind. It is empty
// during setup.
func (f *Formatter) Killed(fr syncloop.Frame) string {
	if fr.View == session.ViewSetup {
		return ""
	}
	var parts []string
	for _, k := range fleet.Kinds() {
		n := fr.Killed[k]
		if n <= 0 {
			continue
		}
		if spec, ok := fleet.Lookup(k); ok {
			parts = append(parts, fmt.Sprintf("%s %d/%d", k, n, spec.InitialCount))
		}
	}
	if len(parts) == 0 {
		return "opponent lost: none"
	}
	return "opponent lost: " + strings.Join(parts, " ")
}

// Pauses reports which pauses are still available.
func (f *Formatter) Pauses(fr syncloop.Frame) string {
	left := []string{}
	if !fr.Pauses.Short {
		left = append(left, "short")
	}
	if !fr.Pauses.Long {
		left = append(left, "long")
	}
	if len(left) == 0 {
		return "no pauses left"
	}
	return "pauses left: " + strings.Join(left, ", ")
}

func (f *Formatter) Ended(fr syncloop.Frame) string {
	var sb strings.Builder
	sb.WriteString("■ game over")
	switch {
	case fr.Winner == fr.Seat:
		sb.WriteString(": you won")
	case fr.Winner.Valid():
		sb.WriteString(": you lost")
	}
	if fr.Reason != "" {
		sb.WriteString(" (" + fr.Reason + ")")
	}
	return sb.String()
}

func (f *Formatter) Help() string {
	return strings.Join([]string{
		"commands:",
		"  <col><row>      click a cell, e.g. c12",
		"  kind <code>     choose a piece kind to place",
		"  clear | auto | submit",
		"  pause short|long | unpause | resign",
		"  board | status | legend | help | quit",
		"kinds: " + render.Legend(),
	}, "\n")
}
