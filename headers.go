package protomail

import (
	"net/mail"
	"strings"

	"github.com/modfin/protomail/envelope"
	"github.com/modfin/protomail/utils"
)

// The fixed cast. The addresses match the user IDs of the embedded sample
// keys so verifiers resolve them without extra key mapping.
const senderAddr = `Light <light@sun>`
const recipientAddr = `Test McTestington <test@example.com>`

// placeholderSubject is what the outside world sees instead of the true
// Subject on every encrypted vector.
const placeholderSubject = "..."

const dateFormat = "Mon, 02 Jan 2006 15:04:05 -0700"

// MessageID derives the scenario's fixed Message-ID, angle brackets
// included. The host part is the sender's domain.
func MessageID(s Scenario) string {
	domain := "invalid"
	if from, err := mail.ParseAddress(senderAddr); err == nil {
		domain = utils.DomainOfEmail(from)
	}
	return "<" + utils.DeterministicID("message-id:"+s.Name) + "@" + domain + ">"
}

// protectHeaders places the message headers on the payload itself and marks
// it as carrying protected headers. From here on the payload is the
// authoritative copy of every header.
func protectHeaders(payload *envelope.Part, s Scenario, msgid string) {
	payload.SetHeader("From", senderAddr)
	payload.SetHeader("To", recipientAddr)
	payload.SetHeader("Subject", s.Subject)
	payload.SetHeader("Date", s.Timestamp().Format(dateFormat))
	payload.SetHeader("Message-ID", msgid)
	payload.SetParam("protected-headers", "v1")
}

// projectHeaders copies every non content-* header from the payload onto the
// enclosing message. A header the destination already holds with an
// identical value is left alone. Projection runs payload -> message only,
// never back.
//
// Subject is special-cased by the caller: on encrypted vectors it is
// overwritten with the placeholder after projection, unconditionally. Keep
// that asymmetry, it is the point of the scheme.
func projectHeaders(payload, dst *envelope.Part) {
	for _, h := range payload.Headers {
		if strings.HasPrefix(strings.ToLower(h.Name), "content-") {
			continue
		}
		if dst.HasHeader(h.Name) && dst.Header(h.Name) == h.Value {
			continue
		}
		dst.SetHeader(h.Name, h.Value)
	}
}
