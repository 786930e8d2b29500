package embersock

import (
	"crypto/tls"
	"net"

	"golang.org/x/crypto/acme/autocert"
)

// TLSFactory is the TLS-terminating Factory. Either CertFile/KeyFile name
// a fixed certificate pair, or AutoCert is set and certificates are
// obtained and renewed automatically via Let's Encrypt through
// golang.org/x/crypto/acme/autocert.
//
// The teacher repo hand-rolls its own ACME client (pkg/shockwave/tls);
// that code exists to support HTTP/2/3 ALPN negotiation, which is out of
// this engine's scope, so it is not adapted here. autocert covers the
// same certificate-acquisition need for a plain HTTP/1.1 listener with
// far less surface, and is the dependency the teacher's go.mod already
// names golang.org/x/crypto for.
type TLSFactory struct {
	CertFile string
	KeyFile  string

	AutoCert bool
	Domains  []string
	CacheDir string
	Tuning   *Tuning
}

// Listen implements Factory.
func (f *TLSFactory) Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	tuning := f.Tuning
	if tuning == nil {
		tuning = DefaultTuning()
	}
	if tcpLn, ok := ln.(*net.TCPListener); ok {
		_ = applyListenerTuning(tcpLn, tuning)
	}

	cfg, err := f.tlsConfig()
	if err != nil {
		ln.Close()
		return nil, err
	}
	return tls.NewListener(ln, cfg), nil
}

// Secure implements Factory.
func (f *TLSFactory) Secure() bool { return true }

func (f *TLSFactory) tlsConfig() (*tls.Config, error) {
	if f.AutoCert {
		manager := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(f.Domains...),
			Cache:      autocert.DirCache(cacheDirOrDefault(f.CacheDir)),
		}
		return manager.TLSConfig(), nil
	}

	cert, err := tls.LoadX509KeyPair(f.CertFile, f.KeyFile)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func cacheDirOrDefault(dir string) string {
	if dir == "" {
		return "./.autocert-cache"
	}
	return dir
}
