package main_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	main "github.com/fwojciec/pricewatch/cmd/pricewatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain_Run_EndToEnd(t *testing.T) {
	t.Parallel()

	var cents atomic.Int64
	cents.Store(3999)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/kettle":
			c := cents.Load()
			fmt.Fprintf(w, `<html><body><span class="price">€ %d,%02d</span></body></html>`, c/100, c%100)
		case "/lamp":
			fmt.Fprint(w, `<html><head><meta itemprop="price" content="89.00"></head></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	itemsPath := filepath.Join(dir, "items.yaml")
	items := fmt.Sprintf(`items:
  - name: Kettle
    url: %[1]s/kettle
    selector: .price
  - name: Lamp
    url: %[1]s/lamp
    selector: "[itemprop='price']"
    attribute: content
  - name: Gone
    url: %[1]s/gone
    selector: .price
  - name: Paused
    url: %[1]s/kettle
    enabled: false
`, srv.URL)
	require.NoError(t, os.WriteFile(itemsPath, []byte(items), 0o600))

	run := func(args ...string) (string, string, error) {
		m := main.NewMain()
		m.DBPath = filepath.Join(dir, "pricewatch.db")
		m.TelegramToken = ""
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		err := m.Run(context.Background(), append([]string{"--items", itemsPath}, args...), stdout, stderr)
		return stdout.String(), stderr.String(), err
	}

	out, _, err := run("run")
	require.NoError(t, err)
	assert.Contains(t, out, "• *Kettle*: €39.99 (new)")
	assert.Contains(t, out, "• *Lamp*: €89.00 (new)")
	assert.Contains(t, out, "• *Gone*: error: HTTP 404")
	assert.NotContains(t, out, "Paused")
	assert.Contains(t, out, "_One or more items returned errors.")
	assert.Contains(t, out, "Tracked 3 item(s); 2 change(s).")

	cents.Store(3450)

	out, _, err = run("run", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "• *Kettle*: €34.50 (-€5.49)")

	out, _, err = run("run")
	require.NoError(t, err)
	assert.Contains(t, out, "• *Kettle*: €34.50 (-€5.49)")
	assert.Contains(t, out, "• *Lamp*: €89.00 (no change)")
	assert.Contains(t, out, "Tracked 3 item(s); 1 change(s).")

	out, _, err = run("history", "Kettle")
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
	require.Len(t, lines, 2, "dry run must not record history")
	assert.Contains(t, string(lines[0]), "€34.50")
	assert.Contains(t, string(lines[1]), "€39.99")

	reportDir := filepath.Join(dir, "reports")
	out, _, err = run("--report-dir", reportDir, "run")
	require.NoError(t, err)
	entries, err := os.ReadDir(reportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	archived, err := os.ReadFile(filepath.Join(reportDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, out, string(archived)+"\n")
}

func TestMain_Run_Check(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mozilla/5.0 (compatible; PriceTrackerBot/1.0)", r.Header.Get("User-Agent"))
		fmt.Fprint(w, `<div data-price="24.95">Now only $24.95!</div>`)
	}))
	defer srv.Close()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "unused.db")
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"check", srv.URL, "--pattern", `only \$([0-9.]+)`, "--currency", "$"}, stdout, stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "price:    $24.95")
	assert.Contains(t, stdout.String(), "strategy: pattern")
	_, statErr := os.Stat(m.DBPath)
	assert.True(t, os.IsNotExist(statErr), "check must not open the database")
}

func TestMain_Run_BrokenItemDoesNotStopRun(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<span class="price">€ 39,99</span>`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	itemsPath := filepath.Join(dir, "items.yaml")
	items := fmt.Sprintf(`items:
  - name: Kettle
    url: %s/kettle
    selector: .price
  - name: Lamp
    url: shop.example.com/lamp
  - name: Old
    enabled: false
`, srv.URL)
	require.NoError(t, os.WriteFile(itemsPath, []byte(items), 0o600))

	m := main.NewMain()
	m.DBPath = filepath.Join(dir, "pricewatch.db")
	m.TelegramToken = ""
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--items", itemsPath, "run"}, stdout, stderr)

	require.NoError(t, err)
	out := stdout.String()
	assert.Contains(t, out, "• *Kettle*: €39.99 (new)")
	assert.Contains(t, out, "• *Lamp*: invalid rule: ")
	assert.NotContains(t, out, "Old")
	assert.Contains(t, out, "Tracked 2 item(s); 1 change(s).")
}
