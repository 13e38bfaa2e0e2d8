package tlsroots

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewCertReloader(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	writeSelfSigned(t, certFile, keyFile, "localhost")

	r, err := NewCertReloader(certFile, keyFile)
	if err != nil {
		t.Fatalf("NewCertReloader() error = %v", err)
	}
	cert, err := r.GetCertificate(nil)
	if err != nil || cert == nil {
		t.Fatalf("GetCertificate() = %v, %v", cert, err)
	}
}

func TestNewCertReloader_Invalid(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")

	if _, err := NewCertReloader(certFile, keyFile); err == nil {
		t.Error("NewCertReloader() should fail for missing files")
	}

	if err := os.WriteFile(certFile, []byte("bad"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyFile, []byte("bad"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewCertReloader(certFile, keyFile); err == nil {
		t.Error("NewCertReloader() should fail for invalid PEM")
	}
}

func TestCertReloader_ServesTrustedCertificate(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	writeSelfSigned(t, certFile, keyFile, "localhost")

	r, err := NewCertReloader(certFile, keyFile)
	if err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	ts.TLS = r.ServerConfig()
	ts.StartTLS()
	defer ts.Close()

	pool := NewEmptyPool()
	if err := pool.Add(certFile); err != nil {
		t.Fatal(err)
	}
	client := &http.Client{Transport: &http.Transport{TLSClientConfig: pool.ClientConfig()}}

	resp, err := client.Get(ts.URL)
	if err != nil {
		t.Fatalf("GET with trusted CA: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}

	untrusted := &http.Client{Transport: &http.Transport{TLSClientConfig: NewEmptyPool().ClientConfig()}}
	if _, err := untrusted.Get(ts.URL); err == nil {
		t.Error("GET without the CA should fail verification")
	}
}

func TestCertReloader_ReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	writeSelfSigned(t, certFile, keyFile, "first")

	r, err := NewCertReloader(certFile, keyFile, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	r.StartAsync()
	defer r.Stop()

	first, _ := r.GetCertificate(nil)
	time.Sleep(100 * time.Millisecond)
	writeSelfSigned(t, certFile, keyFile, "second")

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		cur, _ := r.GetCertificate(&tls.ClientHelloInfo{})
		if cur != first {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("certificate was not reloaded")
}

func TestCertReloader_StopTwice(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	writeSelfSigned(t, certFile, keyFile, "localhost")

	r, err := NewCertReloader(certFile, keyFile)
	if err != nil {
		t.Fatal(err)
	}
	r.StartAsync()
	r.Stop()
	r.Stop()
}
