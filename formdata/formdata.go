// Package formdata is a hand-rolled multipart/form-data body parser.
//
// It exists because the service receives complete request bodies (often
// after a base64 decode) rather than streams, and because its tolerance
// rules are part of the API contract: a malformed part is skipped, never
// fatal, and a missing boundary is reported as "nothing found" instead of
// an error. Header and boundary matching operate on raw bytes throughout;
// content is only decoded to text after a part has been classified.
//
// Two entry points cover the two upload shapes:
//
//   - ExtractFile: returns the first part named "file" that carries a
//     filename attribute and non-empty content. Used by the plain file
//     upload endpoint.
//   - Parse: returns every part keyed by field name, files and plain
//     fields alike. Used by the image upload endpoint, which reads
//     metadata out of sibling text fields.
//
// The parser is pure and stateless: it reads the input buffer, allocates
// its result, and touches nothing else, so concurrent calls need no
// coordination.
package formdata

import (
	"bytes"
	"regexp"
	"unicode/utf8"
)

// Part is one decoded segment of a multipart body.
//
// File parts (those whose headers carry a filename attribute) have
// Filename and ContentType set. Plain field parts additionally expose
// their content as Value when it is valid UTF-8; binary field content
// stays raw in Content with Value empty.
type Part struct {
	Filename    string
	ContentType string
	Content     []byte
	Value       string
	IsFile      bool
}

// Form maps field names to their decoded parts. Duplicate names keep the
// last part seen.
type Form map[string]Part

var (
	boundaryPattern    = regexp.MustCompile(`(?i)boundary=([^;]+)`)
	namePattern        = regexp.MustCompile(`name="([^"]+)"`)
	filenamePattern    = regexp.MustCompile(`filename="([^"]+)"`)
	contentTypePattern = regexp.MustCompile(`Content-Type: ([^\r\n]+)`)
)

var (
	crlfcrlf     = []byte("\r\n\r\n")
	closingCRLF  = []byte("--\r\n")
	bareCRLF     = []byte("\r\n")
	filenameAttr = []byte("filename=")
)

// Boundary extracts the boundary token from a Content-Type header value.
// The match is case-insensitive and the token runs to the next ';' or the
// end of the header; surrounding quotes are kept as-is. Returns false when
// the header carries no boundary.
func Boundary(contentType string) (string, bool) {
	m := boundaryPattern.FindStringSubmatch(contentType)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// split cuts the body at every occurrence of the "--<boundary>" delimiter
// and drops the first and last pieces: the preamble before the first
// delimiter and the closing "--" marker after the last one are never real
// parts. A body without a single delimiter yields no parts.
func split(body []byte, boundary string) [][]byte {
	delim := append([]byte("--"), boundary...)
	pieces := bytes.Split(body, delim)
	if len(pieces) < 2 {
		return nil
	}
	return pieces[1 : len(pieces)-1]
}

// decompose splits one candidate part into its header and content blocks
// at the first blank line. Parts without the CRLFCRLF separator are
// malformed; the caller skips them. Both blocks are whitespace-trimmed and
// the content's trailing closing marker ("--\r\n", else a bare "\r\n") is
// stripped - at most one of the two, in that order.
func decompose(part []byte) (header, content []byte, ok bool) {
	i := bytes.Index(part, crlfcrlf)
	if i < 0 {
		return nil, nil, false
	}

	header = bytes.TrimSpace(part[:i])
	content = bytes.TrimSpace(part[i+len(crlfcrlf):])

	switch {
	case bytes.HasSuffix(content, closingCRLF):
		content = content[:len(content)-len(closingCRLF)]
	case bytes.HasSuffix(content, bareCRLF):
		content = content[:len(content)-len(bareCRLF)]
	}

	return header, content, true
}

// ExtractFile pulls the uploaded file out of a multipart body: the first
// part whose field name is exactly "file", which declares a filename and
// has non-empty content. Later parts are not inspected. Returns ok=false
// when the boundary is missing or no such part exists; both are caller
// errors, not parse failures.
func ExtractFile(body []byte, contentType string) (content []byte, filename string, ok bool) {
	boundary, found := Boundary(contentType)
	if !found {
		return nil, "", false
	}

	for _, raw := range split(body, boundary) {
		header, partContent, wellFormed := decompose(raw)
		if !wellFormed {
			continue
		}

		if name := namePattern.FindSubmatch(header); name == nil || string(name[1]) != "file" {
			continue
		}

		fn := filenamePattern.FindSubmatch(header)
		if fn == nil || len(partContent) == 0 {
			continue
		}

		return partContent, string(fn[1]), true
	}

	return nil, "", false
}

// Parse decodes every part of a multipart body into a Form. File parts
// keep their declared filename and content type (application/octet-stream
// when the part declares none); plain fields are decoded to UTF-8 text
// when possible and kept as raw bytes otherwise. Parts without a name
// attribute or without a header/content separator are skipped. Returns
// ok=false only when the boundary is missing from the content type.
func Parse(body []byte, contentType string) (Form, bool) {
	boundary, found := Boundary(contentType)
	if !found {
		return nil, false
	}

	form := make(Form)

	for _, raw := range split(body, boundary) {
		header, content, wellFormed := decompose(raw)
		if !wellFormed {
			continue
		}

		name := namePattern.FindSubmatch(header)
		if name == nil {
			continue
		}

		if bytes.Contains(header, filenameAttr) {
			part := Part{IsFile: true, Content: content, ContentType: "application/octet-stream"}
			if fn := filenamePattern.FindSubmatch(header); fn != nil {
				part.Filename = string(fn[1])
			}
			if ct := contentTypePattern.FindSubmatch(header); ct != nil {
				part.ContentType = string(ct[1])
			}
			form[string(name[1])] = part
			continue
		}

		part := Part{Content: content}
		if utf8.Valid(content) {
			part.Value = string(content)
		}
		form[string(name[1])] = part
	}

	return form, true
}
