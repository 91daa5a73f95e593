package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedNoticesRender(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cases := map[string]map[string]any{
		"hint.selected":        {"Kind": "Cruiser"},
		"hint.group":           {"Size": 3, "Strength": 12},
		"error.immobile":       {"Kind": "Mine"},
		"error.rejected":       {"Message": "bad move"},
		"error.network":        nil,
		"setup.deadline":       nil,
		"phase.started":        {"MyTurn": true},
		"game.won":             {"Reason": "flag"},
		"game.over":            {"Reason": ""},
		"pause.short":          {"Seconds": 30},
		"outcome.combat":       {"Event": "combat", "Destroyed": []string{"Cruiser"}, "Lost": []string(nil), "ExtraTurn": true},
		"outcome.other":        {"Event": "whirlpool", "Destroyed": []string(nil), "Lost": []string(nil), "ExtraTurn": false},
		"outcome.mine_cleared": {"Event": "mine_swept", "Destroyed": []string(nil), "Lost": []string(nil), "ExtraTurn": false},
		"sync.offline":         nil,
	}
	for key, data := range cases {
		s, err := c.Render(key, data)
		if err != nil || s == "" {
			t.Fatalf("render %s: %q, %v", key, s, err)
		}
	}

	s, _ := c.Render("outcome.combat", cases["outcome.combat"])
	if !strings.Contains(s, "Cruiser") || !strings.Contains(s, "Extra turn") {
		t.Fatalf("unexpected combat text %q", s)
	}
	if s, _ := c.Render("error.rejected", cases["error.rejected"]); !strings.Contains(s, "bad move") {
		t.Fatalf("server message dropped: %q", s)
	}
}

func TestMissingKeysAndFields(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := c.Render("no.such.key", nil); err == nil {
		t.Fatalf("expected missing template error")
	}
	if _, err := c.Render("hint.selected", map[string]any{}); err == nil {
		t.Fatalf("expected missing field error")
	}
	if got := c.Text("no.such.key", nil); got != "no.such.key" {
		t.Fatalf("Text fallback = %q", got)
	}
}

func TestOverrideDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("hint:\n  cancelled: \"Never mind.\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := c.Text("hint.cancelled", nil); got != "Never mind." {
		t.Fatalf("override not applied: %q", got)
	}
	if !c.Has("setup.cleared") {
		t.Fatalf("embedded defaults lost after override")
	}

	if err := os.WriteFile(filepath.Join(dir, "b.yml"), []byte("hint:\n  cancelled: \"Again.\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestEveryNoticeKeyHasTemplate(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	keys := []string{
		"hint.cancelled", "hint.move_sent", "hint.group_sent", "hint.selected", "hint.group",
		"hint.torpedo_ready", "hint.air_ready", "hint.attack_sent",
		"error.immobile", "error.not_your_turn", "error.game_finished", "error.wrong_phase",
		"error.pause_used", "error.not_pause_initiator", "error.not_paused", "error.unknown_kind",
		"error.no_kind", "error.kind_depleted", "error.outside_zone", "error.cell_occupied",
		"error.setup_incomplete", "error.already_submitted", "error.rejected", "error.network",
		"setup.cleared", "setup.auto", "setup.waiting", "setup.submitted", "setup.deadline",
		"phase.started", "game.won", "game.lost", "game.over",
		"pause.short", "pause.long", "pause.cancelled",
		"outcome.move", "outcome.combat", "outcome.explosion", "outcome.atomic_explosion",
		"outcome.mine_explosion", "outcome.mine_cleared", "outcome.tanker_explosion",
		"outcome.static_mine_explosion", "outcome.draw", "outcome.torpedo", "outcome.air",
		"outcome.defeat", "outcome.other",
		"sync.offline", "sync.restored",
	}
	for _, k := range keys {
		if !c.Has(k) {
			t.Errorf("missing template %s", k)
		}
	}
}
