package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testSealer(t *testing.T) *Sealer {
	t.Helper()
	s, err := NewSealer(bytes.Repeat([]byte{7}, 32))
	if err != nil {
		t.Fatalf("NewSealer() error = %v", err)
	}
	return s
}

// exercisePersister runs the shared contract against any backend.
func exercisePersister(t *testing.T, p Persister) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty load", func(t *testing.T) {
		if _, err := p.Load(ctx); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("save and load", func(t *testing.T) {
		blob := []byte(`{"version":1}`)
		if err := p.Save(ctx, blob); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		got, err := p.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !bytes.Equal(got, blob) {
			t.Errorf("Load() = %q, want %q", got, blob)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		if err := p.Save(ctx, []byte("second")); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		got, _ := p.Load(ctx)
		if string(got) != "second" {
			t.Errorf("Load() = %q", got)
		}
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		if err := p.Clear(ctx); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if err := p.Clear(ctx); err != nil {
			t.Fatalf("second Clear() error = %v", err)
		}
		if _, err := p.Load(ctx); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load() after Clear error = %v", err)
		}
	})

	t.Run("closed", func(t *testing.T) {
		if err := p.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if err := p.Save(ctx, []byte("x")); !errors.Is(err, ErrClosed) {
			t.Errorf("Save() after Close error = %v", err)
		}
	})
}

func TestMemoryPersister(t *testing.T) {
	exercisePersister(t, NewMemoryPersister())
}

func TestFilePersister(t *testing.T) {
	p, err := NewFilePersister(filepath.Join(t.TempDir(), "state", "session.json"), testSealer(t), nil)
	if err != nil {
		t.Fatalf("NewFilePersister() error = %v", err)
	}
	exercisePersister(t, p)
}

func TestBadgerPersister(t *testing.T) {
	cfg := DefaultBadgerConfig("")
	cfg.InMemory = true
	p, err := NewBadgerPersister(cfg, testSealer(t), nil)
	if err != nil {
		t.Fatalf("NewBadgerPersister() error = %v", err)
	}
	exercisePersister(t, p)
}

func TestBadgerPersister_OnDiskAndMetrics(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	p, err := NewBadgerPersister(DefaultBadgerConfig(dir), testSealer(t), nil)
	if err != nil {
		t.Fatalf("NewBadgerPersister() error = %v", err)
	}
	reg := prometheus.NewRegistry()
	p.RegisterMetrics(reg)

	if err := p.Save(ctx, []byte("persisted")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := testutil.ToFloat64(p.metricsWrites); got != 1 {
		t.Errorf("writes_total = %v, want 1", got)
	}
	if err := p.GC(ctx); err != nil {
		t.Errorf("GC() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewBadgerPersister(DefaultBadgerConfig(dir), testSealer(t), nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != "persisted" {
		t.Errorf("Load() = %q", got)
	}
}

func TestFilePersister_SealedAndPrivate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	p, err := NewFilePersister(path, testSealer(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	secret := []byte(`{"bearer_credential":"very-secret"}`)
	if err := p.Save(context.Background(), secret); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(raw, []byte("very-secret")) {
		t.Error("session file holds plaintext credential")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("session file perm = %o, want 600", perm)
	}
}

func TestFilePersister_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("garbage that is not sealed"), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := NewFilePersister(path, testSealer(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if _, err := p.Load(context.Background()); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Load() error = %v, want ErrCorrupt", err)
	}
}

func TestFilePersister_WrongKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	ctx := context.Background()

	writer, _ := NewFilePersister(path, testSealer(t), nil)
	if err := writer.Save(ctx, []byte("data")); err != nil {
		t.Fatal(err)
	}

	other, err := NewSealer(bytes.Repeat([]byte{9}, 32))
	if err != nil {
		t.Fatal(err)
	}
	reader, _ := NewFilePersister(path, other, nil)
	if _, err := reader.Load(ctx); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Load() with wrong key error = %v, want ErrCorrupt", err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Backend: BackendMemory}, false},
		{"file", Config{Backend: BackendFile, Path: filepath.Join(dir, "f", "session.json")}, false},
		{"default is file", Config{Path: filepath.Join(dir, "d", "session.json")}, false},
		{"badger", Config{Backend: BackendBadger, Path: filepath.Join(dir, "badger")}, false},
		{"file without path", Config{Backend: BackendFile}, true},
		{"unknown", Config{Backend: "etcd", Path: dir}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Open(tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if p != nil {
				p.Close()
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "f", "session.key")); err != nil {
		t.Errorf("key file not created next to session: %v", err)
	}
}
