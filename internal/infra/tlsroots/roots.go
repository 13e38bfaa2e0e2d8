package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoCertsFound is returned when no certificates are found in PEM data.
	ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM data")

	// ErrInvalidPEM is returned when a CERTIFICATE block cannot be parsed.
	ErrInvalidPEM = errors.New("tlsroots: invalid PEM data")
)

// Pool is a set of trusted root certificates: the system roots plus any
// custom CAs added to it.
type Pool struct {
	certPool *x509.CertPool
	added    int
}

// NewPool creates a pool seeded with the system roots. Systems without
// a readable root store get an empty pool.
func NewPool() *Pool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	return &Pool{certPool: pool}
}

// NewEmptyPool creates a pool without system roots.
func NewEmptyPool() *Pool {
	return &Pool{certPool: x509.NewCertPool()}
}

// AddCertPEM adds every CERTIFICATE block of pemData.
func (p *Pool) AddCertPEM(pemData []byte) error {
	var added int
	for len(pemData) > 0 {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPEM, err)
		}
		p.certPool.AddCert(cert)
		added++
	}
	if added == 0 {
		return ErrNoCertsFound
	}
	p.added += added
	return nil
}

// AddCertFile adds the certificates of a PEM file.
func (p *Pool) AddCertFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tlsroots: read cert file: %w", err)
	}
	if err := p.AddCertPEM(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// AddCertDir adds every .pem, .crt and .cer file in dir. Files that do
// not parse are skipped; at least one certificate must be found.
func (p *Pool) AddCertDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("tlsroots: read dir: %w", err)
	}

	before := p.added
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pem", ".crt", ".cer":
			_ = p.AddCertFile(filepath.Join(dir, entry.Name()))
		}
	}
	if p.added == before {
		return fmt.Errorf("%s: %w", dir, ErrNoCertsFound)
	}
	return nil
}

// Add adds a PEM file or a directory of PEM files.
func (p *Pool) Add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("tlsroots: %w", err)
	}
	if info.IsDir() {
		return p.AddCertDir(path)
	}
	return p.AddCertFile(path)
}

// Added returns how many custom certificates were added.
func (p *Pool) Added() int {
	return p.added
}

// Pool returns the underlying x509.CertPool.
func (p *Pool) Pool() *x509.CertPool {
	return p.certPool
}

// ClientConfig returns a client TLS config trusting this pool.
func (p *Pool) ClientConfig() *tls.Config {
	return &tls.Config{
		RootCAs:    p.certPool,
		MinVersion: tls.VersionTLS12,
	}
}
