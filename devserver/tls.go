package devserver

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"math/big"
	"net"
	"strings"
	"time"
)

// DefaultCertHosts are the names a development certificate covers when none
// are configured.
var DefaultCertHosts = []string{"localhost", "127.0.0.1", "::1"}

// CertConfig describes a self-signed development certificate.
type CertConfig struct {
	// Hosts are DNS names or IP addresses. Defaults to DefaultCertHosts.
	Hosts []string
	// ValidFor defaults to 24h.
	ValidFor time.Duration
	// Organization defaults to "webglhost dev".
	Organization string
}

// GenerateSelfSignedCert creates an in-memory self-signed TLS certificate for
// the configured hosts.
func GenerateSelfSignedCert(cfg CertConfig) (tls.Certificate, error) {
	hosts := cfg.Hosts
	if len(hosts) == 0 {
		hosts = DefaultCertHosts
	}
	validFor := cfg.ValidFor
	if validFor <= 0 {
		validFor = 24 * time.Hour
	}
	org := cfg.Organization
	if org == "" {
		org = "webglhost dev"
	}

	now := time.Now()
	tmpl := x509.Certificate{
		Subject:     pkix.Name{Organization: []string{org}},
		NotBefore:   now,
		NotAfter:    now.Add(validFor),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	for _, h := range hosts {
		h = strings.TrimSpace(h)
		switch ip := net.ParseIP(h); {
		case h == "":
		case ip != nil:
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
		default:
			tmpl.DNSNames = append(tmpl.DNSNames, h)
		}
	}
	if len(tmpl.IPAddresses) == 0 && len(tmpl.DNSNames) == 0 {
		return tls.Certificate{}, errors.New("no certificate hosts given")
	}

	var err error
	tmpl.SerialNumber, err = rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generating serial number: %w", err)
	}
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generating key: %w", err)
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("creating certificate: %w", err)
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}, nil
}
