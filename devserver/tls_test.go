package devserver

import (
	"crypto/x509"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestGenerateSelfSignedCert(t *testing.T) {
	tests := []struct {
		name      string
		cfg       CertConfig
		wantOrg   string
		wantDNS   []string
		wantIPs   []string
		wantValid time.Duration
	}{
		{
			name:      "defaults",
			wantOrg:   "webglhost dev",
			wantDNS:   []string{"localhost"},
			wantIPs:   []string{"127.0.0.1", "::1"},
			wantValid: 24 * time.Hour,
		},
		{
			name: "configured",
			cfg: CertConfig{
				Hosts:        []string{"game.test", " 10.0.0.7 ", ""},
				ValidFor:     time.Hour,
				Organization: "lan party",
			},
			wantOrg:   "lan party",
			wantDNS:   []string{"game.test"},
			wantIPs:   []string{"10.0.0.7"},
			wantValid: time.Hour,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cert, err := GenerateSelfSignedCert(tc.cfg)
			require.NoError(t, err)
			require.Len(t, cert.Certificate, 1)

			parsed, err := x509.ParseCertificate(cert.Certificate[0])
			require.NoError(t, err)
			require.Equal(t, []string{tc.wantOrg}, parsed.Subject.Organization)
			if diff := cmp.Diff(tc.wantDNS, parsed.DNSNames); diff != "" {
				t.Errorf("DNS names mismatch (-want +got):\n%s", diff)
			}
			var ips []string
			for _, ip := range parsed.IPAddresses {
				ips = append(ips, ip.String())
			}
			if diff := cmp.Diff(tc.wantIPs, ips); diff != "" {
				t.Errorf("IP addresses mismatch (-want +got):\n%s", diff)
			}
			require.Equal(t, tc.wantValid, parsed.NotAfter.Sub(parsed.NotBefore))
			require.NoError(t, parsed.VerifyHostname(tc.wantDNS[0]))
		})
	}
}

func TestGenerateSelfSignedCertNoHosts(t *testing.T) {
	_, err := GenerateSelfSignedCert(CertConfig{Hosts: []string{" "}})
	require.Error(t, err)
}
