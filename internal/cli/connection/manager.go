package connection

import (
	"crypto/tls"
	"errors"
	"net/http"
	"time"
)

// ErrNotConnected is returned by API before Connect.
var ErrNotConnected = errors.New("not connected to a server")

// Connection describes the remote service in use.
type Connection struct {
	Server  string
	APIBase string
	Timeout time.Duration

	// TLS overrides the client TLS settings, e.g. to trust a private CA.
	TLS *tls.Config
}

// Manager owns the current connection and the API built for it.
type Manager struct {
	base    PipelineConfig
	current *Connection
	api     *API
}

// NewManager creates a manager; base is applied to every pipeline it builds.
func NewManager(base PipelineConfig) *Manager {
	return &Manager{base: base}
}

// Connect validates conn and builds its pipeline and API.
func (m *Manager) Connect(conn *Connection) error {
	if conn == nil {
		return errors.New("connection is nil")
	}
	if err := ValidateServer(conn.Server); err != nil {
		return err
	}
	apiBase := conn.APIBase
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}

	cfg := m.base
	if conn.Timeout > 0 && cfg.Client == nil {
		cfg.Timeout = conn.Timeout
	}
	if conn.TLS != nil && cfg.Client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = conn.TLS
		cfg.Client = &http.Client{Timeout: timeout, Transport: transport}
	}
	pipeline := NewPipeline(cfg)

	m.current = conn
	m.api = NewAPI(NewHTTPClient(conn.Server, apiBase, pipeline))
	return nil
}

// Disconnect forgets the current connection.
func (m *Manager) Disconnect() {
	m.current = nil
	m.api = nil
}

// Current returns the current connection.
func (m *Manager) Current() *Connection {
	return m.current
}

// IsConnected returns true after a successful Connect.
func (m *Manager) IsConnected() bool {
	return m.current != nil
}

// API returns the API for the current connection.
func (m *Manager) API() (*API, error) {
	if m.api == nil {
		return nil, ErrNotConnected
	}
	return m.api, nil
}
