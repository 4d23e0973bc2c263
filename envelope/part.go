// Package envelope models a MIME message as a tree of parts and renders it
// to a canonical textual form. Construction is fully explicit: headers and
// content-type parameters are ordered slices, never maps, so a given tree
// always renders to the same bytes.
package envelope

import (
	"strings"
)

const CRLF = "\r\n"

// Param is a single Content-Type parameter. Parameters keep the order they
// were added in.
type Param struct {
	Name  string
	Value string
}

// Header is a single message header. Content-Type and Content-Disposition
// are modeled as Part fields instead and must not be added here.
type Header struct {
	Name  string
	Value string
}

// Part is a node in the MIME tree. A part either carries a leaf Body or an
// ordered list of Subparts; a part with subparts must declare a boundary
// parameter before rendering.
type Part struct {
	// Type is the media type, e.g. "text/plain" or "multipart/signed"
	Type string

	// Charset, when set, is rendered as the first content-type parameter
	Charset string

	Params []Param

	// Disposition is rendered as a Content-Disposition header when set,
	// with FileName as its filename parameter
	Disposition string
	FileName    string

	// Encoding is rendered as a Content-Transfer-Encoding header when set.
	// Text leaves stay 7-bit clean and leave it empty.
	Encoding string

	Headers []Header

	Body     string
	Subparts []*Part
}

// NewText returns a leaf text part. The body is kept verbatim; line endings
// are normalized at render time.
func NewText(mediaType, charset, body string) *Part {
	return &Part{Type: mediaType, Charset: charset, Body: body}
}

// NewMultipart returns a multipart node wrapping children, with the given
// boundary.
func NewMultipart(mediaType, boundary string, children ...*Part) *Part {
	p := &Part{Type: mediaType, Subparts: children}
	p.SetParam("boundary", boundary)
	return p
}

// Header returns the first value of the named header, or "".
func (p *Part) Header(name string) string {
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// HasHeader reports whether the named header is present.
func (p *Part) HasHeader(name string) bool {
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}

// SetHeader replaces the first occurrence of the named header in place, or
// appends it. Replacing in place keeps the header order stable.
func (p *Part) SetHeader(name, value string) {
	for i, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			p.Headers[i].Value = value
			return
		}
	}
	p.Headers = append(p.Headers, Header{Name: name, Value: value})
}

// Param returns the named content-type parameter, or "".
func (p *Part) Param(name string) string {
	if strings.EqualFold(name, "charset") {
		return p.Charset
	}
	for _, pr := range p.Params {
		if strings.EqualFold(pr.Name, name) {
			return pr.Value
		}
	}
	return ""
}

// SetParam replaces the named content-type parameter in place, or appends it.
func (p *Part) SetParam(name, value string) {
	if strings.EqualFold(name, "charset") {
		p.Charset = value
		return
	}
	for i, pr := range p.Params {
		if strings.EqualFold(pr.Name, name) {
			p.Params[i].Value = value
			return
		}
	}
	p.Params = append(p.Params, Param{Name: name, Value: value})
}

// Boundary returns the declared multipart boundary, or "".
func (p *Part) Boundary() string {
	return p.Param("boundary")
}

// Walk visits p and every descendant, depth first.
func (p *Part) Walk(fn func(*Part)) {
	fn(p)
	for _, c := range p.Subparts {
		c.Walk(fn)
	}
}
