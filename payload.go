package protomail

import (
	"strings"

	"github.com/modfin/protomail/envelope"
	"github.com/modfin/protomail/utils"
)

// The factual content shared by the plain and HTML renditions. Tests compare
// the two renditions on exactly these facts.
const accountURL = "https://barcorp.example/"
const accountUser = "test"
const accountPassword = "all-the-letters-of-the-alphabet"

const diffFileName = "contract.diff"

// buildPayload constructs the Cryptographic Payload: either a single plain
// text part, or multipart/mixed holding a text/HTML alternative pair plus an
// attached diff. msgid is embedded in the body so each vector refers to
// itself. Pure construction, no failure modes.
func buildPayload(multipart bool, msgid string) *envelope.Part {
	if !multipart {
		return envelope.NewText("text/plain", "us-ascii", plainBody(msgid))
	}

	alt := envelope.NewMultipart("multipart/alternative", utils.Boundary(msgid, "alternative"),
		envelope.NewText("text/plain", "us-ascii", plainBody(msgid)),
		envelope.NewText("text/html", "us-ascii", htmlBody(msgid)),
	)

	diff := envelope.NewText("text/x-diff", "us-ascii", diffBody())
	diff.Disposition = "inline"
	diff.FileName = diffFileName

	return envelope.NewMultipart("multipart/mixed", utils.Boundary(msgid, "mixed"), alt, diff)
}

func plainBody(msgid string) string {
	return strings.Join([]string{
		"Hi Test!",
		"",
		"The BarCorp contract is finally signed. The countersigned copy is",
		"waiting in the portal, log in with the account below.",
		"",
		"    url:      " + accountURL,
		"    username: " + accountUser,
		"    password: " + accountPassword,
		"",
		"This is test vector " + msgid + ".",
		"",
		"-- ",
		"Light",
		"",
	}, "\n")
}

func htmlBody(msgid string) string {
	return strings.Join([]string{
		"<html><head></head><body>",
		"<p>Hi Test!</p>",
		"<p>The BarCorp contract is finally signed. The countersigned copy",
		"is waiting in the portal, log in with the account below.</p>",
		"<dl>",
		`<dt>url</dt><dd><a href="` + accountURL + `">` + accountURL + `</a></dd>`,
		"<dt>username</dt><dd>" + accountUser + "</dd>",
		"<dt>password</dt><dd>" + accountPassword + "</dd>",
		"</dl>",
		"<p>This is test vector <tt>" + msgid + "</tt>.</p>",
		"<p>-- <br>Light</p>",
		"</body></html>",
		"",
	}, "\n")
}

func diffBody() string {
	return strings.Join([]string{
		"--- contract.txt.orig",
		"+++ contract.txt",
		"@@ -1,3 +1,3 @@",
		" BarCorp Master Services Agreement",
		"-Status: unsigned draft",
		"+Status: signed by both parties",
		" Term: 24 months",
		"",
	}, "\n")
}
