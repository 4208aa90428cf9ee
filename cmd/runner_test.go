package main

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/domo/internal/shared"
	tu "github.com/desertthunder/domo/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
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
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				HTTPClient: nil,
			})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/config.toml",
			})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with empty configPath", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "",
			})

			if runner.configPath != "" {
				t.Errorf("expected empty configPath, got %s", runner.configPath)
			}
		})
	})

	t.Run("setLogger", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		replacement := shared.NewLogger(&bytes.Buffer{})

		runner.setLogger(replacement)

		if runner.logger != replacement {
			t.Error("expected logger to be replaced")
		}
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

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writes plain text without formatting", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("simple text")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "simple text" {
				t.Errorf("expected 'simple text', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlainln", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		err := runner.writePlainln("step %d", 1)

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if result != "\nstep 1\n" {
			t.Errorf("expected surrounding newlines, got %q", result)
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}

func TestBuildStack(t *testing.T) {
	newTestRunner := func(t *testing.T) *Runner {
		t.Helper()
		config := shared.DefaultConfig()
		config.Database.Path = filepath.Join(t.TempDir(), "domo.db")
		return NewRunner(RunnerOpts{
			Config: config,
			Logger: shared.NewLogger(&bytes.Buffer{}),
			Output: &bytes.Buffer{},
		})
	}

	t.Run("wires the playback graph", func(t *testing.T) {
		runner := newTestRunner(t)

		st, cleanup, err := runner.buildStack()
		if err != nil {
			t.Fatalf("buildStack failed: %v", err)
		}
		defer cleanup()

		if st.db == nil || st.repos == nil {
			t.Error("expected database and repositories to be wired")
		}
		if st.engine == nil || st.catalog == nil || st.fetcher == nil {
			t.Error("expected engine, catalog, and fetcher to be wired")
		}
		if st.facade == nil || st.home == nil || st.loop == nil {
			t.Error("expected facade, home, and sync loop to be wired")
		}

		if got := len(st.engine.Playlist()); got == 0 {
			t.Error("expected engine to be preloaded with the demo playlist")
		}
	})

	t.Run("without credentials leaves session nil", func(t *testing.T) {
		runner := newTestRunner(t)

		st, cleanup, err := runner.buildStack()
		if err != nil {
			t.Fatalf("buildStack failed: %v", err)
		}
		defer cleanup()

		if st.session != nil {
			t.Error("expected nil session without spotify credentials")
		}
	})

	t.Run("with credentials wires the session", func(t *testing.T) {
		runner := newTestRunner(t)
		runner.config.Credentials.Spotify.ClientID = "test_client"

		st, cleanup, err := runner.buildStack()
		if err != nil {
			t.Fatalf("buildStack failed: %v", err)
		}
		defer cleanup()

		if st.session == nil {
			t.Error("expected session to be wired with client credentials")
		}
	})

	t.Run("rejects unknown player backend", func(t *testing.T) {
		runner := newTestRunner(t)
		runner.config.Player.Backend = "cassette"

		_, _, err := runner.buildStack()
		if err == nil {
			t.Fatal("expected error for unknown backend")
		}
		if !strings.Contains(err.Error(), "cassette") {
			t.Errorf("expected backend name in error, got %v", err)
		}
	})
}
