package identity

import (
	"bytes"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// SMIMEIdentity signs and encrypts by invoking an external S/MIME tool
// (openssl cms) as a blocking subprocess. Credential material lives in a
// temp directory scoped to a single call and is removed immediately after.
// Any non-zero exit is fatal to the caller, with the failing command line
// and the tool's stderr in the error.
type SMIMEIdentity struct {
	// OpenSSL is the binary to invoke, "openssl" when empty
	OpenSSL string

	signer    *smimeCredential
	recipient *smimeCredential
}

type smimeCredential struct {
	certPEM []byte
	keyPEM  []byte
}

// certNotBefore/certNotAfter pin the certificate validity window; together
// with the deterministic keys this keeps the PEM material byte-stable.
var certNotBefore = time.Date(2019, time.October, 1, 0, 0, 0, 0, time.UTC)
var certNotAfter = certNotBefore.AddDate(10, 0, 0)

var credentialsOnce sync.Once
var signerCredential, recipientCredential *smimeCredential
var credentialsErr error

// NewSMIMEIdentity derives the fixed X.509 credentials. Derivation is pure:
// both RSA keys come out of a seeded stream and the self-signatures are
// plain PKCS#1 v1.5, so certificate and key PEM are identical across runs.
func NewSMIMEIdentity(openssl string) (*SMIMEIdentity, error) {
	credentialsOnce.Do(func() {
		signerCredential, credentialsErr = newSMIMECredential("Light", "light@sun", 1001)
		if credentialsErr != nil {
			return
		}
		recipientCredential, credentialsErr = newSMIMECredential("Test McTestington", "test@example.com", 1002)
	})
	if credentialsErr != nil {
		return nil, fmt.Errorf("smime credentials: %w", credentialsErr)
	}
	return &SMIMEIdentity{
		OpenSSL:   openssl,
		signer:    signerCredential,
		recipient: recipientCredential,
	}, nil
}

func newSMIMECredential(cn, email string, serial int64) (*smimeCredential, error) {
	key, err := deterministicRSAKey(2048, deterministicReader([]byte(email), "smime-rsa"))
	if err != nil {
		return nil, err
	}

	tmpl := x509.Certificate{
		SerialNumber:          big.NewInt(serial),
		Subject:               pkix.Name{CommonName: cn},
		EmailAddresses:        []string{email},
		NotBefore:             certNotBefore,
		NotAfter:              certNotAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageEmailProtection},
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(deterministicReader([]byte(email), "smime-cert"), &tmpl, &tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, err
	}
	return &smimeCredential{
		certPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		keyPEM:  pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}),
	}, nil
}

func (id *SMIMEIdentity) SignDetached(message []byte, at time.Time) (*Signature, error) {
	der, err := id.withCredentials(func(dir string) ([]byte, error) {
		return id.run(message,
			"cms", "-sign", "-binary", "-noattr", "-md", "sha256",
			"-signer", filepath.Join(dir, "signer.pem"),
			"-inkey", filepath.Join(dir, "signer.key"),
			"-outform", "DER")
	})
	if err != nil {
		return nil, err
	}
	return &Signature{
		Protocol: "application/pkcs7-signature",
		Micalg:   "sha-256",
		FileName: "smime.p7s",
		Encoding: "base64",
		Body:     wrapBase64(der),
	}, nil
}

func (id *SMIMEIdentity) SignOpaque(message []byte, at time.Time) (*Opaque, error) {
	der, err := id.withCredentials(func(dir string) ([]byte, error) {
		return id.run(message,
			"cms", "-sign", "-binary", "-nodetach", "-noattr", "-md", "sha256",
			"-signer", filepath.Join(dir, "signer.pem"),
			"-inkey", filepath.Join(dir, "signer.key"),
			"-outform", "DER")
	})
	if err != nil {
		return nil, err
	}
	return &Opaque{
		ContentType: "application/pkcs7-mime",
		SMIMEType:   "signed-data",
		FileName:    "smime.p7m",
		Body:        wrapBase64(der),
	}, nil
}

// Encrypt encrypts for the recipient and the signer, so the sender can read
// its own vectors. The external tool mints the content-encryption key
// itself; seed and combined have no effect on this variant.
func (id *SMIMEIdentity) Encrypt(message []byte, seed []byte, at time.Time, combined bool) (*Ciphertext, error) {
	if combined {
		return nil, fmt.Errorf("smime combined sign+encrypt in one layer: %w", ErrUnsupported)
	}
	der, err := id.withCredentials(func(dir string) ([]byte, error) {
		return id.run(message,
			"cms", "-encrypt", "-binary", "-aes-128-cbc",
			"-outform", "DER",
			filepath.Join(dir, "signer.pem"),
			filepath.Join(dir, "recipient.pem"))
	})
	if err != nil {
		return nil, err
	}
	return &Ciphertext{
		OnePart:     true,
		ContentType: "application/pkcs7-mime",
		SMIMEType:   "enveloped-data",
		FileName:    "smime.p7m",
		Body:        wrapBase64(der),
	}, nil
}

// withCredentials writes the PEM material to a fresh scratch directory for
// the duration of one external call and discards it after.
func (id *SMIMEIdentity) withCredentials(fn func(dir string) ([]byte, error)) ([]byte, error) {
	dir, err := os.MkdirTemp("", "protomail-smime-")
	if err != nil {
		return nil, fmt.Errorf("smime scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	files := map[string][]byte{
		"signer.pem":    id.signer.certPEM,
		"signer.key":    id.signer.keyPEM,
		"recipient.pem": id.recipient.certPEM,
	}
	for name, data := range files {
		if err = os.WriteFile(filepath.Join(dir, name), data, 0600); err != nil {
			return nil, fmt.Errorf("smime scratch dir: %w", err)
		}
	}
	return fn(dir)
}

func (id *SMIMEIdentity) run(input []byte, args ...string) ([]byte, error) {
	bin := id.OpenSSL
	if bin == "" {
		bin = "openssl"
	}

	cmd := exec.Command(bin, args...)
	cmd.Stdin = bytes.NewReader(input)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s %s: %w: %s",
			bin, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}

// wrapBase64 encodes DER output at 64 columns, the customary width for
// S/MIME body parts.
func wrapBase64(der []byte) string {
	enc := base64.StdEncoding.EncodeToString(der)
	var b strings.Builder
	for len(enc) > 64 {
		b.WriteString(enc[:64] + "\n")
		enc = enc[64:]
	}
	b.WriteString(enc + "\n")
	return b.String()
}
