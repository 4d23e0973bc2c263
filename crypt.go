package protomail

import (
	"fmt"
	"time"

	"github.com/modfin/protomail/envelope"
	"github.com/modfin/protomail/identity"
	"github.com/modfin/protomail/utils"
)

// buildEnvelope wraps the payload in the scenario's Cryptographic Envelope
// and returns the root part of the transport message, still without
// transport headers. Any failure of an underlying signing or encryption
// operation aborts generation; a test vector built from uncertain crypto
// output is worse than none.
func buildEnvelope(payload *envelope.Part, s Scenario, id identity.Identity, at time.Time, msgid string) (*envelope.Part, error) {
	switch {
	case s.Encrypt:
		return buildEncrypted(payload, s, id, at, msgid)
	case s.Sign && s.OnePart:
		op, err := id.SignOpaque([]byte(envelope.Render(payload)), at)
		if err != nil {
			return nil, err
		}
		return opaquePart(op.ContentType, op.SMIMEType, op.FileName, op.Body), nil
	case s.Sign:
		return buildSigned(payload, id, at, msgid, "signed")
	}
	return nil, fmt.Errorf("scenario %q has no cryptographic operation", s.Name)
}

func buildEncrypted(payload *envelope.Part, s Scenario, id identity.Identity, at time.Time, msgid string) (*envelope.Part, error) {
	inner := payload
	combined := false

	switch {
	case s.Sign && s.Multilayer:
		// the signature travels inside the encrypted envelope as its own
		// multipart/signed wrapper
		signed, err := buildSigned(inner, id, at, msgid, "inner-signed")
		if err != nil {
			return nil, err
		}
		inner = signed
	case s.Sign && s.SMIME:
		// CMS gets a one-part signed-data layer first, then the envelope
		op, err := id.SignOpaque([]byte(envelope.Render(inner)), at)
		if err != nil {
			return nil, err
		}
		inner = opaquePart(op.ContentType, op.SMIMEType, op.FileName, op.Body)
	case s.Sign:
		// OpenPGP signs and encrypts in a single combined operation
		combined = true
	}

	ct, err := id.Encrypt([]byte(envelope.Render(inner)), s.SessionKey, at, combined)
	if err != nil {
		return nil, err
	}

	if ct.OnePart {
		return opaquePart(ct.ContentType, ct.SMIMEType, ct.FileName, ct.Body), nil
	}

	control := &envelope.Part{Type: ct.Protocol, Body: ct.Control}
	cipher := &envelope.Part{Type: ct.ContentType, Body: ct.Body}

	enc := envelope.NewMultipart("multipart/encrypted", utils.Boundary(msgid, "encrypted"), control, cipher)
	enc.SetParam("protocol", ct.Protocol)
	return enc, nil
}

// buildSigned serializes the payload with the canonical line-ending
// convention, detach-signs those exact bytes and wraps payload and signature
// under multipart/signed.
func buildSigned(payload *envelope.Part, id identity.Identity, at time.Time, msgid, label string) (*envelope.Part, error) {
	sig, err := id.SignDetached([]byte(envelope.Render(payload)), at)
	if err != nil {
		return nil, err
	}

	sigPart := &envelope.Part{
		Type:        sig.Protocol,
		Body:        sig.Body,
		Encoding:    sig.Encoding,
		Disposition: "attachment",
		FileName:    sig.FileName,
	}
	sigPart.SetParam("name", sig.FileName)

	signed := envelope.NewMultipart("multipart/signed", utils.Boundary(msgid, label), payload, sigPart)
	signed.SetParam("protocol", sig.Protocol)
	signed.SetParam("micalg", sig.Micalg)
	return signed, nil
}

func opaquePart(contentType, smimeType, fileName, body string) *envelope.Part {
	p := &envelope.Part{
		Type:        contentType,
		Body:        body,
		Encoding:    "base64",
		Disposition: "attachment",
		FileName:    fileName,
	}
	p.SetParam("smime-type", smimeType)
	p.SetParam("name", fileName)
	return p
}
