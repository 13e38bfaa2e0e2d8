package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/NDP4/CompanyLock-Manager/internal/core/service"
	"github.com/NDP4/CompanyLock-Manager/internal/server/config"
	"github.com/NDP4/CompanyLock-Manager/internal/server/devserver"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/metric"
)

// testEnv is a dev server plus a CLI config pointing at it.
type testEnv struct {
	t       *testing.T
	dir     string
	cfgPath string
	ts      *httptest.Server
	srv     *devserver.Server

	// serverClock drives bearer and token expiry on the server side.
	serverClock   *service.ManualClock
	serverMetrics *metric.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	srvCfg := config.Default()
	srvCfg.RateLimit = config.RateLimitConfig{}
	clk := service.NewManualClock(time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC))
	reg := metric.NewRegistry()
	srv, err := devserver.New(devserver.Options{Config: srvCfg, Metrics: reg, Now: clk.Now})
	if err != nil {
		t.Fatalf("devserver.New() error: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})

	dir := t.TempDir()
	e := &testEnv{
		t:             t,
		dir:           dir,
		cfgPath:       filepath.Join(dir, "cli.yaml"),
		ts:            ts,
		srv:           srv,
		serverClock:   clk,
		serverMetrics: reg,
	}
	e.writeConfig("")
	return e
}

// writeConfig writes the CLI config file; extra is appended verbatim.
func (e *testEnv) writeConfig(extra string) {
	e.t.Helper()
	cfg := fmt.Sprintf(`server: %s
api_base: /api
timeout: 5s
output: json
session:
  backend: file
  path: %s
history_file: %s
log:
  level: error
%s`, e.ts.URL, filepath.Join(e.dir, "session.json"), filepath.Join(e.dir, "history"), extra)
	if err := os.WriteFile(e.cfgPath, []byte(cfg), 0600); err != nil {
		e.t.Fatal(err)
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes one CLI invocation with the env's config.
func (e *testEnv) run(args ...string) result {
	e.t.Helper()
	return e.runWith("", nil, args...)
}

// runWith executes one CLI invocation with stdin and, when clk is set,
// a manual clock that is advanced a second at a time until the command
// returns.
func (e *testEnv) runWith(stdin string, clk *service.ManualClock, args ...string) result {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	opts := []Option{WithIO(strings.NewReader(stdin), &stdout, &stderr)}
	if clk != nil {
		opts = append(opts, WithClock(clk))
	}
	app := App(opts...)
	argv := append([]string{AppName, "--config", e.cfgPath}, args...)

	if clk == nil {
		err := app.Run(argv)
		return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
	}

	done := make(chan error, 1)
	go func() { done <- app.Run(argv) }()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case err := <-done:
			return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
		case <-deadline:
			e.t.Fatalf("%v did not finish", args)
		default:
			if clk.Pending() > 0 {
				clk.Advance(time.Second)
			} else {
				time.Sleep(time.Millisecond)
			}
		}
	}
}

// login logs the admin in through a password file.
func (e *testEnv) login() {
	e.t.Helper()
	pw := filepath.Join(e.dir, "password")
	if err := os.WriteFile(pw, []byte(config.DefaultAdminPassword+"\n"), 0600); err != nil {
		e.t.Fatal(err)
	}
	if r := e.run("login", "--password-file", pw, config.DefaultAdminUsername); r.err != nil {
		e.t.Fatalf("login: %v\n%s", r.err, r.stderr)
	}
}

// decode parses the JSON written to stdout.
func decode[T any](t *testing.T, r result) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(r.stdout), &v); err != nil {
		t.Fatalf("decode %q: %v", r.stdout, err)
	}
	return v
}
