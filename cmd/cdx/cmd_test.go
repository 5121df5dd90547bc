package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/daviddao/critterdex/pkg/catalog"
	"github.com/daviddao/critterdex/pkg/model"
)

// setupProfile points cdx at a fresh profile in a temp dir.
func setupProfile(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CRITTERDEX_DB", filepath.Join(dir, "critterdex.db"))
	t.Setenv("CRITTERDEX_KV_BACKEND", "bolt")
	t.Setenv("CRITTERDEX_KV_PATH", filepath.Join(dir, "effects.db"))
	t.Setenv("CRITTERDEX_LEDGER_URL", "")
	t.Setenv("CRITTERDEX_CATALOG", "")
	t.Setenv("CRITTERDEX_LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("cdx %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func missionsJSON(t *testing.T, args ...string) map[string]model.Mission {
	t.Helper()
	out := mustRun(t, append([]string{"missions", "--json"}, args...)...)
	var ms []model.Mission
	if err := json.Unmarshal([]byte(out), &ms); err != nil {
		t.Fatalf("decode missions: %v\n%s", err, out)
	}
	byID := make(map[string]model.Mission, len(ms))
	for _, m := range ms {
		byID[m.ID] = m
	}
	return byID
}

// --- command tests ---

func TestLoginOncePerDay(t *testing.T) {
	setupProfile(t)

	out := mustRun(t, "login")
	if !strings.Contains(out, "login credited") {
		t.Fatalf("first login: %q", out)
	}
	out = mustRun(t, "login")
	if !strings.Contains(out, "already logged in") {
		t.Fatalf("second login: %q", out)
	}

	ms := missionsJSON(t)
	if got := ms["login_days"].Progress; got != 1 {
		t.Fatalf("login_days progress = %d, want 1", got)
	}
}

func TestClaimLoginCreditsWallet(t *testing.T) {
	setupProfile(t)

	out := mustRun(t, "claim", "daily_login")
	if !strings.Contains(out, "100G") || !strings.Contains(out, "mission complete") {
		t.Fatalf("claim output: %q", out)
	}
	if _, ok := missionsJSON(t)["daily_login"]; ok {
		t.Fatal("claimed login mission still listed")
	}

	var w map[string]interface{}
	if err := json.Unmarshal([]byte(mustRun(t, "wallet", "--json")), &w); err != nil {
		t.Fatalf("decode wallet: %v", err)
	}
	if w["soft"].(float64) != 100 || w["xp"].(float64) != 1 {
		t.Fatalf("wallet = %v, want soft=100 xp=1", w)
	}
}

func TestClaimRequiresCompletion(t *testing.T) {
	setupProfile(t)

	if _, err := run(t, "claim", "daily_items"); err == nil || !strings.Contains(err.Error(), "not completed") {
		t.Fatalf("claim incomplete: err = %v", err)
	}
	if _, err := run(t, "claim", "nope"); err == nil {
		t.Fatal("claim of unknown mission should fail")
	}
}

func TestGetAndGalleryProgress(t *testing.T) {
	setupProfile(t)

	mustRun(t, "get", "apple")
	mustRun(t, "get", "apple", "--held", "2")

	ms := missionsJSON(t)
	if got := ms["item_apple"].Progress; got != 1 {
		t.Fatalf("item_apple progress = %d, want 1", got)
	}
	if got := ms["items_total"].Progress; got != 2 {
		t.Fatalf("items_total progress = %d, want 2", got)
	}
	if got := ms["gallery_meadow"].Progress; got != 20 {
		t.Fatalf("gallery_meadow progress = %d, want 20", got)
	}

	ready := missionsJSON(t, "--ready")
	if _, ok := ready["gallery_meadow"]; !ok {
		t.Fatal("gallery_meadow should be ready")
	}
	if _, ok := ready["items_total"]; ok {
		t.Fatal("items_total should not be ready")
	}

	if _, err := run(t, "get", "apple", "--held", "0"); err == nil {
		t.Fatal("--held 0 should be rejected")
	}
}

func TestCatchAndBuyMap(t *testing.T) {
	setupProfile(t)

	mustRun(t, "catch", "cinder", "--new")
	mustRun(t, "catch", "cinder")
	if _, err := run(t, "buy-map", "atlantis"); err == nil {
		t.Fatal("unknown map should fail")
	}
	mustRun(t, "buy-map", "volcano")

	ms := missionsJSON(t)
	if got := ms["monster_cinder"].Progress; got != 2 {
		t.Fatalf("monster_cinder progress = %d, want 2", got)
	}
	if got := ms["gallery_volcano"]; got.Progress != 1 || got.Target != 1 {
		t.Fatalf("gallery_volcano = %d/%d, want 1/1", got.Progress, got.Target)
	}

	out := mustRun(t, "claim", "gallery_volcano")
	if !strings.Contains(out, "next: Complete 20% of the Volcano gallery") {
		t.Fatalf("claim output: %q", out)
	}
}

func TestToolCommands(t *testing.T) {
	setupProfile(t)

	if _, err := run(t, "tool", "use", "magnet"); err == nil {
		t.Fatal("using a tool with none held should fail")
	}
	mustRun(t, "tool", "buy", "magnet", "--qty", "2")
	out := mustRun(t, "tool", "use", "magnet")
	if !strings.Contains(out, "magnet active for") {
		t.Fatalf("tool use output: %q", out)
	}

	var rows []toolStatus
	if err := json.Unmarshal([]byte(mustRun(t, "tool", "status", "--json")), &rows); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	found := false
	for _, r := range rows {
		if r.Tool == "magnet" {
			found = true
			if r.Held != 1 || !r.Active {
				t.Fatalf("magnet status = %+v", r)
			}
		}
	}
	if !found {
		t.Fatal("magnet missing from status")
	}

	if _, err := run(t, "tool", "buy", "rocket"); err == nil {
		t.Fatal("buying an unknown tool should fail")
	}
}

func TestResetReportsStartupCheck(t *testing.T) {
	setupProfile(t)
	out := mustRun(t, "reset")
	if !strings.Contains(out, "daily missions reset") || !strings.Contains(out, "next reset:") {
		t.Fatalf("first reset output: %q", out)
	}
	out = mustRun(t, "reset")
	if !strings.Contains(out, "daily missions current") {
		t.Fatalf("second reset output: %q", out)
	}
}

// --- helpers ---

func TestFilterMissions(t *testing.T) {
	ms := catalog.Build(catalog.Default())

	daily := filterMissions(ms, true, false)
	if len(daily) != len(catalog.Default().Daily) {
		t.Fatalf("daily filter: got %d missions", len(daily))
	}
	for _, m := range filterMissions(ms, false, true) {
		if !m.Completed() {
			t.Fatalf("ready filter returned incomplete %s", m.ID)
		}
	}
	if got := len(filterMissions(ms, false, false)); got != len(ms) {
		t.Fatalf("no filter: got %d, want %d", got, len(ms))
	}
}

func TestMissionLine(t *testing.T) {
	ms := catalog.Build(catalog.Default())
	var line string
	for _, m := range ms {
		if m.ID == "item_apple" {
			line = missionLine(m)
		}
	}
	for _, want := range []string{"[ ]", "item_apple", "0/50", "20G", "stage 1/4", "Newly own Apple 50 times"} {
		if !strings.Contains(line, want) {
			t.Fatalf("missionLine = %q, missing %q", line, want)
		}
	}
}
