package protomail

import (
	"github.com/modfin/protomail/envelope"
	"github.com/modfin/protomail/utils"
)

// wrapLegacyDisplay nests the payload one level deeper under a
// multipart/mixed whose first child restates the true Subject in plain text,
// for clients that do not understand header protection. Must run before
// header projection so the true Subject still ends up on the payload root
// while only the placeholder leaves the envelope.
func wrapLegacyDisplay(payload *envelope.Part, subject, msgid string) *envelope.Part {
	display := envelope.NewText("text/plain", "us-ascii", "Subject: "+subject+"\n")
	display.SetParam("protected-headers", "legacy-display")
	display.Disposition = "inline"

	return envelope.NewMultipart("multipart/mixed", utils.Boundary(msgid, "legacy-display"),
		display, payload)
}
