package identity

import (
	"bytes"
	"crypto"
	"crypto/sha256"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// PGPIdentity signs and encrypts in-process with OpenPGP. The signer and the
// fixed recipient set come from the embedded sample keys; every operation is
// driven by a fixed timestamp and a deterministic random stream, so repeated
// runs emit identical bytes.
type PGPIdentity struct {
	signer     *openpgp.Entity
	recipients openpgp.EntityList
	hash       crypto.Hash
}

// NewPGPIdentity loads the embedded sample keys and unlocks their secret
// material.
func NewPGPIdentity() (*PGPIdentity, error) {
	signer, err := loadEntity(signerKeyArmor, signerPassphrase)
	if err != nil {
		return nil, fmt.Errorf("load signer key: %w", err)
	}
	recipient, err := loadEntity(recipientKeyArmor, recipientPassphrase)
	if err != nil {
		return nil, fmt.Errorf("load recipient key: %w", err)
	}

	return &PGPIdentity{
		signer: signer,
		// the sender is always a recipient as well, so the sender can
		// decrypt its own vectors
		recipients: openpgp.EntityList{recipient, signer},
		hash:       crypto.SHA512,
	}, nil
}

// Keyring exposes every loaded entity, secret material unlocked. Intended
// for verification of generated vectors.
func (id *PGPIdentity) Keyring() openpgp.EntityList {
	return id.recipients
}

func (id *PGPIdentity) SignDetached(message []byte, at time.Time) (*Signature, error) {
	sum := sha256.Sum256(message)
	cfg := id.config(at, deterministicReader(sum[:], "pgp-sign"))

	var buf bytes.Buffer
	err := openpgp.ArmoredDetachSign(&buf, id.signer, bytes.NewReader(message), cfg)
	if err != nil {
		return nil, fmt.Errorf("pgp detach-sign: %w", err)
	}
	return &Signature{
		Protocol: "application/pgp-signature",
		Micalg:   micalg(id.hash),
		FileName: "signature.asc",
		Body:     buf.String(),
	}, nil
}

func (id *PGPIdentity) SignOpaque(message []byte, at time.Time) (*Opaque, error) {
	return nil, fmt.Errorf("pgp one-part signed-data: %w", ErrUnsupported)
}

func (id *PGPIdentity) Encrypt(message []byte, seed []byte, at time.Time, combined bool) (*Ciphertext, error) {
	cfg := id.config(at, deterministicReader(seed, "pgp-encrypt"))

	var signed *openpgp.Entity
	if combined {
		signed = id.signer
	}

	var buf bytes.Buffer
	aw, err := armor.Encode(&buf, "PGP MESSAGE", nil)
	if err != nil {
		return nil, fmt.Errorf("pgp armor: %w", err)
	}
	pt, err := openpgp.Encrypt(aw, id.recipients, signed, nil, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgp encrypt: %w", err)
	}
	if _, err = pt.Write(message); err != nil {
		return nil, fmt.Errorf("pgp encrypt: %w", err)
	}
	if err = pt.Close(); err != nil {
		return nil, fmt.Errorf("pgp encrypt: %w", err)
	}
	if err = aw.Close(); err != nil {
		return nil, fmt.Errorf("pgp armor: %w", err)
	}

	return &Ciphertext{
		OnePart:     false,
		ContentType: "application/octet-stream",
		Protocol:    "application/pgp-encrypted",
		Control:     "Version: 1\n",
		Body:        buf.String(),
	}, nil
}

func (id *PGPIdentity) config(at time.Time, rand io.Reader) *packet.Config {
	return &packet.Config{
		Rand:          rand,
		Time:          func() time.Time { return at },
		DefaultHash:   id.hash,
		DefaultCipher: packet.CipherAES256,
	}
}

func loadEntity(armored, passphrase string) (*openpgp.Entity, error) {
	ring, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armored))
	if err != nil {
		return nil, err
	}
	if len(ring) != 1 {
		return nil, fmt.Errorf("expected a single key, got %d", len(ring))
	}
	e := ring[0]

	if e.PrivateKey != nil && e.PrivateKey.Encrypted {
		if err = e.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
			return nil, err
		}
	}
	for _, sk := range e.Subkeys {
		if sk.PrivateKey != nil && sk.PrivateKey.Encrypted {
			if err = sk.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
				return nil, err
			}
		}
	}
	return e, nil
}

func micalg(h crypto.Hash) string {
	switch h {
	case crypto.SHA1:
		return "pgp-sha1"
	case crypto.SHA256:
		return "pgp-sha256"
	case crypto.SHA384:
		return "pgp-sha384"
	case crypto.SHA512:
		return "pgp-sha512"
	default:
		return "pgp-" + strings.ToLower(strings.ReplaceAll(h.String(), "-", ""))
	}
}
