package cert

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	certPEM, keyPEM, err := Generate(now)
	require.NoError(t, err)

	_, err = tls.X509KeyPair(certPEM, keyPEM)
	require.NoError(t, err)

	block, _ := pem.Decode(certPEM)
	require.NotNil(t, block)
	c, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)

	assert.Equal(t, now, c.NotBefore)
	assert.Contains(t, c.DNSNames, "localhost")
	assert.NoError(t, c.VerifyHostname("127.0.0.1"))
}

func TestEnsure(t *testing.T) {
	dir := t.TempDir()

	certPath, keyPath, err := Ensure(dir)
	require.NoError(t, err)
	first, err := os.ReadFile(certPath)
	require.NoError(t, err)

	// повторный вызов не перевыпускает сертификат
	certPath2, keyPath2, err := Ensure(dir)
	require.NoError(t, err)
	assert.Equal(t, certPath, certPath2)
	assert.Equal(t, keyPath, keyPath2)

	second, err := os.ReadFile(certPath2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
