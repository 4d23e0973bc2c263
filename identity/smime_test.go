package identity

import (
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireOpenSSL(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("openssl"); err != nil {
		t.Skip("openssl not on PATH, skipping external S/MIME tests")
	}
}

func TestSMIMESignDetached(t *testing.T) {
	requireOpenSSL(t)

	id, err := NewSMIMEIdentity("")
	require.NoError(t, err)

	message := []byte("Content-Type: text/plain\r\n\r\nIt works!\r\n")
	sig, err := id.SignDetached(message, fixedTime)
	require.NoError(t, err)

	assert.Equal(t, "application/pkcs7-signature", sig.Protocol)
	assert.Equal(t, "sha-256", sig.Micalg)
	assert.Equal(t, "smime.p7s", sig.FileName)
	assert.Equal(t, "base64", sig.Encoding,
		"the DER blob only survives parsing if the part declares base64")
	assert.NotEmpty(t, sig.Body)
	for _, line := range strings.Split(strings.TrimRight(sig.Body, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), 64, "base64 body must be wrapped")
	}

	// no signed attributes, deterministic keys: repeated signing is stable
	again, err := id.SignDetached(message, fixedTime)
	require.NoError(t, err)
	assert.Equal(t, sig.Body, again.Body)
}

func TestSMIMESignOpaque(t *testing.T) {
	requireOpenSSL(t)

	id, err := NewSMIMEIdentity("")
	require.NoError(t, err)

	op, err := id.SignOpaque([]byte("payload\r\n"), fixedTime)
	require.NoError(t, err)
	assert.Equal(t, "application/pkcs7-mime", op.ContentType)
	assert.Equal(t, "signed-data", op.SMIMEType)
	assert.Equal(t, "smime.p7m", op.FileName)
	assert.NotEmpty(t, op.Body)
}

func TestSMIMEEncrypt(t *testing.T) {
	requireOpenSSL(t)

	id, err := NewSMIMEIdentity("")
	require.NoError(t, err)

	ct, err := id.Encrypt([]byte("secret\r\n"), []byte("seed"), fixedTime, false)
	require.NoError(t, err)
	assert.True(t, ct.OnePart)
	assert.Equal(t, "application/pkcs7-mime", ct.ContentType)
	assert.Equal(t, "enveloped-data", ct.SMIMEType)
	assert.NotEmpty(t, ct.Body)
}

func TestSMIMECombinedUnsupported(t *testing.T) {
	id := &SMIMEIdentity{}
	_, err := id.Encrypt([]byte("x"), nil, fixedTime, true)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestSMIMEFailureSurfacesCommand(t *testing.T) {
	requireOpenSSL(t)

	id, err := NewSMIMEIdentity("")
	require.NoError(t, err)
	id.OpenSSL = "openssl-definitely-not-installed"

	_, err = id.SignDetached([]byte("x"), fixedTime)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openssl-definitely-not-installed",
		"the failing command must be visible in the error")
}

func TestSMIMECredentialsDeterministic(t *testing.T) {
	a, err := newSMIMECredential("Light", "light@sun", 1001)
	require.NoError(t, err)
	b, err := newSMIMECredential("Light", "light@sun", 1001)
	require.NoError(t, err)

	assert.Equal(t, a.certPEM, b.certPEM, "certificate PEM must be byte-stable")
	assert.Equal(t, a.keyPEM, b.keyPEM)
}
