package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/vibesync/internal/credentials"
	"github.com/desertthunder/vibesync/internal/formatter"
	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/services"
	"github.com/desertthunder/vibesync/internal/shared"
	tu "github.com/desertthunder/vibesync/internal/testing"
	"github.com/urfave/cli/v3"
)

func testComparison() models.Comparison {
	return models.Comparison{
		UserA: models.Participant{ID: "u1", DisplayName: "Alex"},
		UserB: models.Participant{ID: "u2", DisplayName: "Sam"},
		OnlyA: []models.Track{
			{ID: "1", Name: "Teardrop", Artists: []string{"Massive Attack"}, Album: "Mezzanine"},
			{ID: "2", Name: "Windowlicker", Artists: []string{"Aphex Twin"}},
		},
		OnlyB:  []models.Track{{ID: "3", Name: "Hyperballad", Artists: []string{"Björk"}}},
		Common: []models.Track{{ID: "4", Name: "Roads", Artists: []string{"Portishead"}}},
		Stats: models.Stats{
			TotalA: 3, TotalB: 2, OnlyACount: 2, OnlyBCount: 1, CommonCount: 1, CompatibilityScore: 85,
		},
	}
}

// fakeService serves the VibeSync endpoints the commands call.
func fakeService(t *testing.T) http.Handler {
	t.Helper()

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}
	authorized := func(token string) bool { return token == "tok-123456789" }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r.URL.Query().Get("token")) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token"})
			return
		}
		writeJSON(w, http.StatusOK, models.Profile{UserID: "u1", DisplayName: "Alex"})
	})
	mux.HandleFunc("POST /refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Refresh failed"})
	})
	mux.HandleFunc("POST /room/create", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"room_code": "abc123", "expires_in_minutes": 10})
	})
	mux.HandleFunc("GET /room/check", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("code") == "ABC123" {
			writeJSON(w, http.StatusOK, models.RoomCheck{Valid: true, Host: "Sam"})
			return
		}
		writeJSON(w, http.StatusOK, models.RoomCheck{Valid: false})
	})
	mux.HandleFunc("POST /room/join", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RoomCode string `json:"room_code"`
			Token    string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode join body: %v", err)
		}
		if !authorized(body.Token) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token"})
			return
		}
		if body.RoomCode != "ABC123" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Room not found"})
			return
		}
		writeJSON(w, http.StatusOK, testComparison())
	})
	return mux
}

type testEnv struct {
	runner *Runner
	output *bytes.Buffer
	store  *credentials.Store
}

func newTestEnv(t *testing.T, loggedIn bool) *testEnv {
	t.Helper()

	server := httptest.NewServer(fakeService(t))
	t.Cleanup(server.Close)

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	config := shared.DefaultConfig()
	config.API.BaseURL = server.URL
	config.API.RateLimit = 0

	store := credentials.NewStore(nil, nil)
	if loggedIn {
		store.Save("tok-123456789")
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		DB:     db,
		Store:  store,
		Logger: shared.DiscardLogger(),
		Output: output,
	})
	return &testEnv{runner: runner, output: output, store: store}
}

func (e *testEnv) run(args ...string) error {
	e.output.Reset()
	app := &cli.Command{Name: "vibesync", Commands: e.runner.register()}
	return app.Run(context.Background(), append([]string{"vibesync"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			store := credentials.NewStore(nil, nil)
			api := services.NewAPIService(services.APIOpts{Store: store})

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Store:      store,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.store != store {
				t.Error("expected store to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if runner.gateway == nil || runner.machine == nil {
				t.Error("expected gateway and machine to be wired")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.api.BaseURL() != services.DefaultBaseURL {
				t.Errorf("expected default base url, got %s", runner.api.BaseURL())
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses configured timeout", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.API.TimeoutSeconds = 7
			runner := NewRunner(RunnerOpts{Config: config})

			if runner.httpClient.Timeout != config.API.Timeout() {
				t.Errorf("expected timeout %v, got %v", config.API.Timeout(), runner.httpClient.Timeout)
			}
		})

		t.Run("without database has no history", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: shared.DiscardLogger()})

			if _, err := runner.history(); !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})

		t.Run("sqlite storage without database keeps credentials in memory", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Storage.Backend = shared.StorageBackendSQLite
			runner := NewRunner(RunnerOpts{Config: config, Logger: shared.DiscardLogger()})

			runner.store.Save("tok-123456789")
			if cred, ok := runner.store.Load(); !ok || cred != "tok-123456789" {
				t.Errorf("expected credential in memory, got %q", cred)
			}
		})

		t.Run("sqlite storage uses the slots table", func(t *testing.T) {
			db, err := shared.NewDatabase(":memory:")
			if err != nil {
				t.Fatalf("failed to open database: %v", err)
			}
			defer db.Close()
			if err := shared.RunMigrations(db); err != nil {
				t.Fatalf("failed to run migrations: %v", err)
			}

			config := shared.DefaultConfig()
			config.Storage.Backend = shared.StorageBackendSQLite
			runner := NewRunner(RunnerOpts{Config: config, DB: db, Logger: shared.DiscardLogger()})
			runner.store.Save("tok-123456789")

			var value string
			if err := db.QueryRow(`SELECT value FROM slots WHERE name = ?`, config.Storage.Slot).Scan(&value); err != nil {
				t.Fatalf("expected slot row, got %v", err)
			}
			if value != "tok-123456789" {
				t.Errorf("expected stored token, got %q", value)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)

			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, name := range []string{"setup", "auth", "room", "history", "tui"} {
			if !names[name] {
				t.Errorf("expected %s command to be registered", name)
			}
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("status when logged in", func(t *testing.T) {
		env := newTestEnv(t, true)

		if err := env.run("auth", "status", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var report statusReport
		if err := json.Unmarshal(env.output.Bytes(), &report); err != nil {
			t.Fatalf("expected JSON report, got %v: %s", err, env.output.String())
		}
		if !report.Healthy || report.Status != "ok" {
			t.Errorf("expected healthy service, got %+v", report)
		}
		if !report.LoggedIn || report.Token != "tok-…6789" {
			t.Errorf("expected logged in with redacted token, got %+v", report)
		}
	})

	t.Run("status when logged out", func(t *testing.T) {
		env := newTestEnv(t, false)

		if err := env.run("auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "Not logged in") {
			t.Errorf("expected logged out status, got %s", env.output.String())
		}
	})

	t.Run("whoami", func(t *testing.T) {
		env := newTestEnv(t, true)

		if err := env.run("auth", "whoami"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "Alex") {
			t.Errorf("expected display name, got %s", env.output.String())
		}
	})

	t.Run("whoami requires a login", func(t *testing.T) {
		env := newTestEnv(t, false)

		err := env.run("auth", "whoami")
		if !errors.Is(err, shared.ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("rejected token with refused refresh logs out", func(t *testing.T) {
		env := newTestEnv(t, false)
		env.store.Save("tok-stale-000000")

		err := env.run("auth", "whoami")
		if !errors.Is(err, shared.ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
		if _, ok := env.store.Load(); ok {
			t.Error("expected credential to be cleared")
		}
		if env.runner.nav.HomeCount() != 1 {
			t.Errorf("expected one forced navigation, got %d", env.runner.nav.HomeCount())
		}
	})

	t.Run("logout", func(t *testing.T) {
		env := newTestEnv(t, true)

		if err := env.run("auth", "logout"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := env.store.Load(); ok {
			t.Error("expected credential to be cleared")
		}
		if !strings.Contains(env.output.String(), "Logged out") {
			t.Errorf("expected confirmation, got %s", env.output.String())
		}
	})
}

func TestLoginCallback(t *testing.T) {
	t.Run("busy callback port fails before the login URL is shown", func(t *testing.T) {
		env := newTestEnv(t, false)

		busy, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to reserve a port: %v", err)
		}
		defer busy.Close()

		env.runner.config.Session.CallbackHost = "127.0.0.1"
		env.runner.config.Session.CallbackPort = busy.Addr().(*net.TCPAddr).Port

		var out bytes.Buffer
		if _, err := env.runner.login(context.Background(), false, &out); err == nil {
			t.Fatal("expected listen error")
		}
		if strings.Contains(out.String(), "Open this URL") {
			t.Errorf("expected no login URL before the callback is bound, got %q", out.String())
		}
	})

	t.Run("callback is bound before the login URL is shown", func(t *testing.T) {
		env := newTestEnv(t, false)

		free, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to reserve a port: %v", err)
		}
		addr := free.Addr().String()
		free.Close()

		env.runner.config.Session.CallbackHost = "127.0.0.1"
		env.runner.config.Session.CallbackPort = free.Addr().(*net.TCPAddr).Port
		env.runner.config.Session.LoginTimeoutSeconds = 1

		pr, pw := io.Pipe()
		done := make(chan error, 1)
		go func() {
			_, err := env.runner.login(context.Background(), false, pw)
			pw.Close()
			done <- err
		}()

		buf := make([]byte, 1)
		if _, err := pr.Read(buf); err != nil {
			t.Fatalf("expected login output, got %v", err)
		}
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			t.Fatalf("expected callback server to accept connections once output starts: %v", err)
		}
		conn.Close()

		go io.Copy(io.Discard, pr)
		if err := <-done; !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})
}

func TestRoomCommands(t *testing.T) {
	t.Run("create copies the code", func(t *testing.T) {
		env := newTestEnv(t, true)

		var copied string
		original := copyToClipboard
		copyToClipboard = func(s string) error { copied = s; return nil }
		defer func() { copyToClipboard = original }()

		if err := env.run("room", "create", "--copy"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := env.output.String()
		if !strings.Contains(out, "Your room code: ABC123") {
			t.Errorf("expected normalized room code, got %s", out)
		}
		if !strings.Contains(out, "Expires in 10 minutes") {
			t.Errorf("expected expiry, got %s", out)
		}
		if copied != "ABC123" {
			t.Errorf("expected code on clipboard, got %q", copied)
		}
	})

	t.Run("create requires a login", func(t *testing.T) {
		env := newTestEnv(t, false)

		if err := env.run("room", "create"); !errors.Is(err, shared.ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("check", func(t *testing.T) {
		env := newTestEnv(t, false)

		if err := env.run("room", "check", "abc-123"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "Room ABC123 is open (host: Sam)") {
			t.Errorf("expected open room, got %s", env.output.String())
		}

		if err := env.run("room", "check", "QQQ111"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "No open room") {
			t.Errorf("expected closed room, got %s", env.output.String())
		}
	})

	t.Run("check rejects short codes", func(t *testing.T) {
		env := newTestEnv(t, false)

		if err := env.run("room", "check", "AB"); !errors.Is(err, shared.ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("join prints the comparison and records it", func(t *testing.T) {
		env := newTestEnv(t, true)

		if err := env.run("room", "join", "abc123"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := env.output.String()
		for _, want := range []string{"Musical Soulmates", "85% compatible", "Only Sam (1)", "Massive Attack - Teardrop"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got %s", want, out)
			}
		}

		if err := env.run("history", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "#1") || !strings.Contains(env.output.String(), "ABC123") {
			t.Errorf("expected recorded comparison, got %s", env.output.String())
		}
	})

	t.Run("join filters with search", func(t *testing.T) {
		env := newTestEnv(t, true)

		if err := env.run("room", "join", "--search", "aphex", "--set", "mine", "ABC123"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := env.output.String()
		if !strings.Contains(out, "Windowlicker") || strings.Contains(out, "Teardrop") {
			t.Errorf("expected only the matching track, got %s", out)
		}
		if strings.Contains(out, "Hyperballad") {
			t.Errorf("expected other sets to be hidden, got %s", out)
		}
	})

	t.Run("join exports to a directory", func(t *testing.T) {
		env := newTestEnv(t, true)
		dir := t.TempDir()

		if err := env.run("room", "join", "--format", "csv", "--output", dir, "ABC123"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		c := testComparison()
		path := filepath.Join(dir, formatter.DefaultFilename(&c, formatter.CSV))
		tu.AssertFileExists(t, path)
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "Hyperballad") {
			t.Errorf("expected CSV export, got %s", content)
		}
	})

	t.Run("join surfaces the service reason", func(t *testing.T) {
		env := newTestEnv(t, true)

		err := env.run("room", "join", "ZZZ999")
		if !errors.Is(err, shared.ErrRequestFailed) {
			t.Fatalf("expected ErrRequestFailed, got %v", err)
		}
		if shared.Reason(err) != "Room not found" {
			t.Errorf("expected reason, got %q", shared.Reason(err))
		}
		if env.runner.machine.State().Reason != "Room not found" {
			t.Errorf("expected machine reason, got %q", env.runner.machine.State().Reason)
		}
	})

	t.Run("join rejects unknown formats", func(t *testing.T) {
		env := newTestEnv(t, true)

		if err := env.run("room", "join", "--format", "xml", "ABC123"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestHistoryCommands(t *testing.T) {
	env := newTestEnv(t, true)
	if err := env.run("room", "join", "ABC123"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	t.Run("show renders by number", func(t *testing.T) {
		if err := env.run("history", "show", "--format", "json", "1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var c models.Comparison
		if err := json.Unmarshal(env.output.Bytes(), &c); err != nil {
			t.Fatalf("expected JSON comparison, got %v", err)
		}
		if c.UserB.DisplayName != "Sam" || len(c.Common) != 1 {
			t.Errorf("unexpected comparison: %+v", c)
		}
	})

	t.Run("list as JSON", func(t *testing.T) {
		if err := env.run("history", "list", "--json", "--code", "abc123"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var entries []historyEntry
		if err := json.Unmarshal(env.output.Bytes(), &entries); err != nil {
			t.Fatalf("expected JSON entries, got %v", err)
		}
		if len(entries) != 1 || entries[0].Number != 1 || entries[0].Score != 85 {
			t.Errorf("unexpected entries: %+v", entries)
		}
	})

	t.Run("show unknown record", func(t *testing.T) {
		if err := env.run("history", "show", "42"); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("export writes a manifest", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "export")
		if err := env.run("history", "export", "--format", "csv", "--output", dir, "--workers", "2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := env.output.String()
		if !strings.Contains(out, "Exported: 1/1") {
			t.Errorf("expected export summary, got %s", out)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
	})

	t.Run("delete", func(t *testing.T) {
		if err := env.run("history", "delete", "1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := env.run("history", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "No saved comparisons") {
			t.Errorf("expected empty history, got %s", env.output.String())
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("config writes defaults once", func(t *testing.T) {
		env := newTestEnv(t, false)
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := env.run("setup", "config", "--config", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, path)

		if _, err := shared.LoadConfig(path); err != nil {
			t.Errorf("expected written config to load, got %v", err)
		}

		if err := env.run("setup", "config", "--config", path); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("database runs migrations", func(t *testing.T) {
		env := newTestEnv(t, false)
		dir := t.TempDir()
		t.Chdir(dir)

		if err := env.run("setup", "database", "--config", filepath.Join(dir, "config.toml")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "vibesync.db"))
	})
}
