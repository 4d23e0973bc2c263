// Package identity holds the credential models behind the cryptographic
// envelope: an in-process OpenPGP identity and an X.509 identity driven
// through an external S/MIME tool. Callers depend on the Identity interface
// only, never on which variant is active.
package identity

import (
	"errors"
	"time"
)

// ErrUnsupported is returned when a credential variant cannot perform the
// requested operation, e.g. one-part opaque signatures with OpenPGP.
var ErrUnsupported = errors.New("identity: operation not supported")

// Signature is the result of a detached signing operation, ready to become
// the second child of a multipart/signed wrapper.
type Signature struct {
	// Protocol is the content type of the signature part and the value of
	// the multipart/signed protocol parameter
	Protocol string
	Micalg   string
	FileName string
	// Encoding is the transfer encoding the signature part must declare;
	// empty for armored text, which is already 7-bit clean
	Encoding string
	Body     string
}

// Opaque is a one-part signed-data blob replacing the message content type.
type Opaque struct {
	ContentType string
	SMIMEType   string
	FileName    string
	// Body is base64 text ready for a Content-Transfer-Encoding: base64 part
	Body string
}

// Ciphertext is the result of an encryption operation. OnePart results
// replace the message content type outright; two-part results become a
// multipart/encrypted structure with a control part.
type Ciphertext struct {
	OnePart bool

	// one-part (S/MIME)
	ContentType string
	SMIMEType   string
	FileName    string

	// two-part (OpenPGP)
	Protocol string
	Control  string

	Body string
}

// Identity is a credential model over the {sign, encrypt} capability set.
// Every operation takes the deterministic scenario timestamp; no identity
// may consult the wall clock.
type Identity interface {
	// SignDetached produces a detached signature over message exactly as
	// serialized
	SignDetached(message []byte, at time.Time) (*Signature, error)

	// SignOpaque produces a one-part opaque signed-data body
	SignOpaque(message []byte, at time.Time) (*Opaque, error)

	// Encrypt encrypts message for the fixed recipients plus the sender,
	// so the sender can also decrypt. seed drives any randomness the
	// operation needs; combined additionally signs inside the same
	// cryptographic operation where the variant supports it.
	Encrypt(message []byte, seed []byte, at time.Time, combined bool) (*Ciphertext, error)
}
