package protomail

import (
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/modfin/protomail/identity"
	"github.com/modfin/protomail/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func haveOpenSSL() bool {
	_, err := exec.LookPath("openssl")
	return err == nil
}

func skipWithoutTool(t *testing.T, s Scenario) {
	t.Helper()
	if s.SMIME && !haveOpenSSL() {
		t.Skipf("%s needs openssl on PATH", s.Name)
	}
}

func TestEveryScenarioGenerates(t *testing.T) {
	gen := &Generator{}
	for _, name := range ScenarioNames() {
		s, err := LookupScenario(name)
		require.NoError(t, err)

		t.Run(name, func(t *testing.T) {
			skipWithoutTool(t, s)
			out, err := gen.Generate(name)
			require.NoError(t, err)
			assert.NotEmpty(t, out)
			assert.Contains(t, out, "MIME-Version: 1.0\r\n")
		})
	}
}

// Byte-identical output across runs. S/MIME encryption is excluded: the
// external tool mints a fresh content-encryption key per call, so those
// vectors are only structurally stable.
func TestGenerateDeterministic(t *testing.T) {
	for _, name := range ScenarioNames() {
		s, err := LookupScenario(name)
		require.NoError(t, err)
		if s.SMIME && s.Encrypt {
			continue
		}

		t.Run(name, func(t *testing.T) {
			skipWithoutTool(t, s)
			a, err := (&Generator{}).Generate(name)
			require.NoError(t, err)
			b, err := (&Generator{}).Generate(name)
			require.NoError(t, err)
			assert.Equal(t, a, b)
		})
	}
}

func TestEncryptedSubjectObscured(t *testing.T) {
	gen := &Generator{}
	for _, name := range ScenarioNames() {
		s, err := LookupScenario(name)
		require.NoError(t, err)
		if !s.Encrypt {
			continue
		}

		t.Run(name, func(t *testing.T) {
			skipWithoutTool(t, s)
			out, err := gen.Generate(name)
			require.NoError(t, err)

			assert.Contains(t, out, "Subject: "+placeholderSubject+"\r\n")
			assert.NotContains(t, out, s.Subject,
				"the true subject must not leak outside the envelope")
		})
	}
}

func TestOuterHeadersMatchPayload(t *testing.T) {
	gen := &Generator{}
	for _, name := range ScenarioNames() {
		s, err := LookupScenario(name)
		require.NoError(t, err)

		t.Run(name, func(t *testing.T) {
			skipWithoutTool(t, s)
			out, err := gen.Generate(name)
			require.NoError(t, err)
			header := strings.SplitN(out, "\r\n\r\n", 2)[0]

			assert.Contains(t, header, "From: "+senderAddr)
			assert.Contains(t, header, "To: "+recipientAddr)
			assert.Contains(t, header, "Date: "+s.Timestamp().Format(dateFormat))
			assert.Contains(t, header, "Message-ID: "+MessageID(s))
			if !s.Encrypt {
				assert.Contains(t, header, "Subject: "+s.Subject)
			}
		})
	}
}

func TestPgpmimeSigned(t *testing.T) {
	gen := &Generator{}
	out, err := gen.Generate("pgpmime-signed")
	require.NoError(t, err)

	assert.Contains(t, out, "Content-Type: multipart/signed;")
	assert.Contains(t, out, `protocol="application/pgp-signature"`)
	assert.Contains(t, out, `micalg="pgp-`)
	assert.Contains(t, out, "-----BEGIN PGP SIGNATURE-----")

	// the detached signature covers the first child exactly as serialized
	s, err := LookupScenario("pgpmime-signed")
	require.NoError(t, err)
	boundary := utils.Boundary(MessageID(s), "signed")

	open := "--" + boundary + "\r\n"
	closing := "\r\n--" + boundary + "\r\n"
	i := strings.Index(out, open)
	require.Greater(t, i, -1)
	rest := out[i+len(open):]
	j := strings.Index(rest, closing)
	require.Greater(t, j, -1)
	// the CRLF before the delimiter is the delimiter's, not the part's;
	// what remains is exactly what a conforming parser hands the verifier
	signed := rest[:j]

	k := strings.Index(rest, "-----BEGIN PGP SIGNATURE-----")
	require.Greater(t, k, -1)
	sig := rest[k:strings.Index(rest, "-----END PGP SIGNATURE-----")] + "-----END PGP SIGNATURE-----\n"

	pgp, err := identity.NewPGPIdentity()
	require.NoError(t, err)
	_, err = openpgp.CheckArmoredDetachedSignature(
		pgp.Keyring(), strings.NewReader(signed), strings.NewReader(sig), nil)
	assert.NoError(t, err, "signature must verify over the serialized payload")
}

func TestSmimeMultipartSigned(t *testing.T) {
	if !haveOpenSSL() {
		t.Skip("openssl not on PATH")
	}
	out, err := (&Generator{}).Generate("smime-multipart-signed")
	require.NoError(t, err)

	assert.Contains(t, out, "Content-Type: multipart/signed;")
	assert.Contains(t, out, `protocol="application/pkcs7-signature"`)
	assert.Contains(t, out, `micalg="sha-256"`)

	// the signature part declares its own encoding and disposition so the
	// DER reaches the verifier intact
	assert.Contains(t, out, "Content-Transfer-Encoding: base64\r\n")
	assert.Contains(t, out, `Content-Disposition: attachment; filename="smime.p7s"`)
}

func TestSmimeOnepartSigned(t *testing.T) {
	if !haveOpenSSL() {
		t.Skip("openssl not on PATH")
	}
	out, err := (&Generator{}).Generate("smime-onepart-signed")
	require.NoError(t, err)

	assert.Contains(t, out, "Content-Type: application/pkcs7-mime;")
	assert.Contains(t, out, `smime-type="signed-data"`)
	assert.Contains(t, out, "Content-Transfer-Encoding: base64\r\n")
	assert.NotContains(t, out, "multipart/", "one-part vectors have no multipart layer")
	assert.Contains(t, out, "Subject: "+trueSubject)
}

func TestUnfortunatelyComplex(t *testing.T) {
	out, err := (&Generator{}).Generate("unfortunately-complex")
	require.NoError(t, err)

	assert.Contains(t, out, "Content-Type: multipart/encrypted;")
	assert.Contains(t, out, `protocol="application/pgp-encrypted"`)
	assert.Contains(t, out, "Subject: ...\r\n")

	// decrypt and look inside
	i := strings.Index(out, "-----BEGIN PGP MESSAGE-----")
	require.Greater(t, i, -1)
	j := strings.Index(out, "-----END PGP MESSAGE-----")
	require.Greater(t, j, -1)
	armored := out[i:j] + "-----END PGP MESSAGE-----\n"

	pgp, err := identity.NewPGPIdentity()
	require.NoError(t, err)
	block, err := armor.Decode(strings.NewReader(armored))
	require.NoError(t, err)
	md, err := openpgp.ReadMessage(block.Body, pgp.Keyring(), nil, nil)
	require.NoError(t, err)
	plain, err := io.ReadAll(md.UnverifiedBody)
	require.NoError(t, err)
	inner := string(plain)

	assert.True(t, md.IsSigned, "the payload is signed inside the envelope")
	assert.Contains(t, inner, "Content-Type: multipart/mixed;")
	assert.Contains(t, inner, "BarCorp contract signed, let's go!")
	assert.Contains(t, inner, `protected-headers="legacy-display"`)

	// legacy display precedes the original payload
	disp := strings.Index(inner, `protected-headers="legacy-display"`)
	body := strings.Index(inner, "multipart/alternative")
	require.Greater(t, body, -1)
	assert.Less(t, disp, body)

	// the true subject is available inside, both as header and display text
	assert.Contains(t, inner, "Subject: "+trueSubject)
}

func TestGenerateUnknownScenario(t *testing.T) {
	_, err := (&Generator{}).Generate("nope")
	assert.ErrorIs(t, err, ErrUnknownScenario)
}
