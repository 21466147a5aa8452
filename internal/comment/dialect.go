// Package comment recognizes comment spans in raw text for the four comment
// syntaxes doctree understands.
//
// Recognition is purely syntactic. A dialect does not know about string
// literals, nesting or the language of the file it scans, so a "#" inside a
// Go string is reported as a hash comment just like a real one.
package comment

import (
	"fmt"
	"iter"
	"strings"
)

// Kind identifies a comment dialect.
type Kind int

const (
	// BlockStar is a C-style block comment: /* ... */
	BlockStar Kind = iota
	// HTML is a markup comment: <!-- ... -->
	HTML
	// DoubleSlash is a line comment: // ... to end of line
	DoubleSlash
	// Hash is a shell/Python style line comment: # ... to end of line
	Hash
)

var kindNames = [...]string{
	BlockStar:   "block-star",
	HTML:        "html",
	DoubleSlash: "double-slash",
	Hash:        "hash",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler so kinds render by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses a dialect name as produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown comment dialect %q", s)
}

// Span is one recognized comment.
type Span struct {
	Kind Kind
	// Text is the verbatim comment including its delimiters.
	Text string
	// Doc is the interior of the comment with the delimiters stripped.
	Doc string
	// Offset is the byte offset of the opening delimiter in the buffer.
	Offset int
	// Line is the 1-based line of the opening delimiter.
	Line int
}

// Dialect finds every comment of one syntax in a buffer.
type Dialect interface {
	// Kind reports which syntax this dialect recognizes.
	Kind() Kind

	// FindAll yields non-overlapping comment spans in left-to-right order.
	// The sequence is lazy: stopping early skips the rest of the scan.
	FindAll(buf string) iter.Seq[Span]
}

// Priority returns the dialects in the order brief extraction applies them.
func Priority() []Dialect {
	return []Dialect{blockStar, html, doubleSlash, hash}
}

// ForKind returns the dialect for k.
func ForKind(k Kind) (Dialect, error) {
	for _, d := range Priority() {
		if d.Kind() == k {
			return d, nil
		}
	}
	return nil, fmt.Errorf("unknown comment dialect %s", k)
}
