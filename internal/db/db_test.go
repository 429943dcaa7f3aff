package db

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSettings(t *testing.T) {
	database := newTestDB(t)

	if v, err := database.GetSetting("missing"); err != nil || v != "" {
		t.Fatalf("GetSetting(missing) = %q, %v; want empty, nil", v, err)
	}
	if err := database.SetSetting("k", "one"); err != nil {
		t.Fatal(err)
	}
	if err := database.SetSetting("k", "two"); err != nil {
		t.Fatal(err)
	}
	if v, _ := database.GetSetting("k"); v != "two" {
		t.Errorf("GetSetting(k) = %q, want %q", v, "two")
	}
	if err := database.DeleteSetting("k"); err != nil {
		t.Fatal(err)
	}
	if v, _ := database.GetSetting("k"); v != "" {
		t.Errorf("GetSetting(k) after delete = %q, want empty", v)
	}
}

func TestTokenStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	first, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := NewTokenStore(first, log).SetToken("abc"); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	store := NewTokenStore(second, log)
	if got := store.Token(); got != "abc" {
		t.Fatalf("Token() after reopen = %q, want %q", got, "abc")
	}
	if err := store.ClearToken(); err != nil {
		t.Fatal(err)
	}
	if got := store.Token(); got != "" {
		t.Errorf("Token() after clear = %q, want empty", got)
	}
}

func TestPathUsesOverride(t *testing.T) {
	dir := t.TempDir()
	got, err := Path(dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "taskdeck.db"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}
