package command

import (
	"strings"
	"testing"

	"github.com/NDP4/CompanyLock-Manager/internal/infra/buildinfo"
)

func TestSystemCommand(t *testing.T) {
	cmd := SystemCommand()
	if cmd == nil {
		t.Fatal("SystemCommand returned nil")
	}

	if cmd.Name != "system" {
		t.Errorf("Name = %q, want %q", cmd.Name, "system")
	}
	if len(cmd.Aliases) == 0 || cmd.Aliases[0] != "sys" {
		t.Error("expected alias 'sys'")
	}

	subNames := make(map[string]bool)
	for _, sub := range cmd.Subcommands {
		subNames[sub.Name] = true
	}
	for _, name := range []string{"health", "metrics", "version"} {
		if !subNames[name] {
			t.Errorf("missing subcommand: %s", name)
		}
	}
}

func TestSystemHealth_Success(t *testing.T) {
	env := newTestEnv(t)

	r := env.run("system", "health")
	if r.err != nil {
		t.Fatalf("system health: %v", r.err)
	}
	h := decode[map[string]any](t, r)
	if h["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", h["status"])
	}
	if h["target"] != env.ts.URL+"/api" {
		t.Errorf("target = %v, want %s/api", h["target"], env.ts.URL)
	}
}

func TestSystemHealth_TableFormat(t *testing.T) {
	env := newTestEnv(t)

	r := env.run("-o", "table", "system", "health")
	if r.err != nil {
		t.Fatalf("system health: %v", r.err)
	}
	for _, want := range []string{"FIELD", "status", "healthy", "encryption"} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("table output missing %q:\n%s", want, r.stdout)
		}
	}
}

func TestSystemHealth_Unreachable(t *testing.T) {
	env := newTestEnv(t)
	env.ts.Close()

	r := env.run("system", "health")
	if r.err == nil || !strings.Contains(r.err.Error(), "health check failed") {
		t.Errorf("error = %v, want health check failure", r.err)
	}
}

func TestSystemMetrics(t *testing.T) {
	env := newTestEnv(t)

	r := env.run("system", "metrics")
	if r.err != nil {
		t.Fatalf("system metrics: %v", r.err)
	}
	for _, want := range []string{"companylock_session_authenticated", "# TYPE"} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("metrics output missing %q:\n%s", want, r.stdout)
		}
	}
}

func TestSystemVersion(t *testing.T) {
	env := newTestEnv(t)

	r := env.run("system", "version")
	if r.err != nil {
		t.Fatalf("system version: %v", r.err)
	}
	info := decode[buildinfo.Info](t, r)
	if info.Version != buildinfo.Version || info.GoVersion == "" {
		t.Errorf("version = %+v", info)
	}
}
