// Package protomail generates deterministic test vectors for the
// protected-headers e-mail scheme: given a scenario name it emits one
// byte-stable MIME message showing how a cryptographic envelope wraps, and
// optionally obscures, the message headers.
package protomail

import (
	"fmt"
	"log/slog"

	"github.com/modfin/protomail/envelope"
	"github.com/modfin/protomail/identity"
)

// Generator is the facade tying the fixed scenario table, the payload
// builder, header projection and the cryptographic envelope together.
// The zero value is usable; identities are set up lazily on first use.
type Generator struct {
	// Logger receives progress at debug level; silent when nil
	Logger *slog.Logger

	// OpenSSL overrides the external S/MIME binary, "openssl" when empty
	OpenSSL string

	pgp   *identity.PGPIdentity
	smime *identity.SMIMEIdentity
}

func (g *Generator) log() *slog.Logger {
	if g.Logger == nil {
		return noopLogger()
	}
	return g.Logger
}

// Generate builds the named scenario and returns the serialized message.
// Output is a pure function of the scenario table: repeated calls return
// identical bytes.
func (g *Generator) Generate(name string) (string, error) {
	s, err := LookupScenario(name)
	if err != nil {
		return "", err
	}

	id, err := g.identityFor(s)
	if err != nil {
		return "", err
	}

	msgid := MessageID(s)
	ts := s.Timestamp()
	g.log().Debug("building vector", "scenario", s.Name, "message_id", msgid, "date", ts)

	payload := buildPayload(s.Multipart, msgid)
	if s.Legacy {
		payload = wrapLegacyDisplay(payload, s.Subject, msgid)
	}
	protectHeaders(payload, s, msgid)

	root, err := buildEnvelope(payload, s, id, ts, msgid)
	if err != nil {
		return "", fmt.Errorf("scenario %q: %w", s.Name, err)
	}

	projectHeaders(payload, root)
	if s.Encrypt {
		// the one header that is never projected outwards
		root.SetHeader("Subject", placeholderSubject)
	}
	root.SetHeader("MIME-Version", "1.0")

	return envelope.Render(root), nil
}

func (g *Generator) identityFor(s Scenario) (identity.Identity, error) {
	if s.SMIME {
		if g.smime == nil {
			id, err := identity.NewSMIMEIdentity(g.OpenSSL)
			if err != nil {
				return nil, err
			}
			g.smime = id
		}
		return g.smime, nil
	}
	if g.pgp == nil {
		id, err := identity.NewPGPIdentity()
		if err != nil {
			return nil, err
		}
		g.pgp = id
	}
	return g.pgp, nil
}
