package geojsonio

import (
	"net/url"
	"strings"
)

const (
	dataFragment = "#data=data:application/json,"
	gistFragment = "#id=gist:/"
)

// Kind identifies how a viewer reference carries its payload.
type Kind string

const (
	// KindInline references carry the full payload in the fragment.
	KindInline Kind = "inline"
	// KindGist references carry only a gist identifier.
	KindGist Kind = "gist"
)

// Reference is a parsed viewer URL.
type Reference struct {
	Kind Kind
	// BaseDomain is everything before the fragment.
	BaseDomain string
	// Data is the decoded payload of an inline reference.
	Data string
	// ID is the gist identifier of a gist reference.
	ID string
}

// InlineURL embeds payload in the fragment of base.
func InlineURL(base, payload string) string {
	return base + dataFragment + Escape(payload)
}

// GistURL points base at the gist with the given id.
func GistURL(base, id string) string {
	return base + gistFragment + id
}

// Escape percent-encodes every byte of s except ASCII letters, digits and
// "_.-~/". Hex digits are uppercase.
func Escape(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '_', c == '.', c == '-', c == '~', c == '/':
		return true
	}
	return false
}

// ParseReference decodes a URL produced by InlineURL or GistURL.
func ParseReference(rawURL string) (Reference, error) {
	idx := strings.IndexByte(rawURL, '#')
	if idx == -1 {
		return Reference{}, &Error{Code: ErrInvalidReference, Message: "url has no fragment"}
	}
	base, fragment := rawURL[:idx], rawURL[idx:]

	switch {
	case strings.HasPrefix(fragment, dataFragment):
		data, err := url.PathUnescape(strings.TrimPrefix(fragment, dataFragment))
		if err != nil {
			return Reference{}, &Error{Code: ErrInvalidReference, Message: "malformed data fragment", Err: err}
		}
		return Reference{Kind: KindInline, BaseDomain: base, Data: data}, nil
	case strings.HasPrefix(fragment, gistFragment):
		id := strings.TrimPrefix(fragment, gistFragment)
		if id == "" {
			return Reference{}, &Error{Code: ErrInvalidReference, Message: "empty gist id"}
		}
		return Reference{Kind: KindGist, BaseDomain: base, ID: id}, nil
	default:
		return Reference{}, &Error{Code: ErrInvalidReference, Message: "unrecognised fragment"}
	}
}
