// Package decoding turns raw file bytes into text by trying an ordered list of
// character encodings and keeping the first one that accepts the input.
package decoding

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrUndecodable is returned by Chain.Decode when no decoder accepted the input.
var ErrUndecodable = errors.New("content is not valid in any configured encoding")

// Decoder converts bytes in one character encoding to a UTF-8 string.
// Decode must fail rather than substitute replacement characters.
type Decoder interface {
	Name() string
	Decode(b []byte) (string, error)
}

// Chain is an ordered list of decoders tried in sequence.
type Chain []Decoder

// Decode returns the text produced by the first decoder that accepts b,
// along with that decoder's name.
func (c Chain) Decode(b []byte) (string, string, error) {
	var lastErr error
	for _, d := range c {
		text, err := d.Decode(b)
		if err == nil {
			return text, d.Name(), nil
		}
		lastErr = err
	}
	if lastErr == nil {
		return "", "", ErrUndecodable
	}
	return "", "", fmt.Errorf("%w: %w", ErrUndecodable, lastErr)
}

// Names lists the decoder names in order.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, d := range c {
		names[i] = d.Name()
	}
	return names
}

// NewChain builds a Chain from WHATWG encoding labels such as "utf-8" or "gbk".
func NewChain(labels []string) (Chain, error) {
	if len(labels) == 0 {
		return nil, errors.New("no encodings configured")
	}
	chain := make(Chain, 0, len(labels))
	for _, label := range labels {
		d, err := Lookup(label)
		if err != nil {
			return nil, err
		}
		chain = append(chain, d)
	}
	return chain, nil
}

// DefaultChain is UTF-8 followed by GBK.
func DefaultChain() Chain {
	chain, err := NewChain([]string{"utf-8", "gbk"})
	if err != nil {
		panic(err)
	}
	return chain
}

// Lookup returns the strict decoder registered for label.
func Lookup(label string) (Decoder, error) {
	enc, err := htmlindex.Get(strings.TrimSpace(label))
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", label, err)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return nil, fmt.Errorf("unnamed encoding %q: %w", label, err)
	}
	switch name {
	case "utf-8":
		return UTF8(), nil
	case "gbk":
		return &legacyDecoder{name: name, enc: enc, check: gbkSingleByteEuro}, nil
	}
	return &legacyDecoder{name: name, enc: enc}, nil
}

type utf8Decoder struct{}

// UTF8 returns a decoder that accepts only well-formed UTF-8.
func UTF8() Decoder { return utf8Decoder{} }

func (utf8Decoder) Name() string { return "utf-8" }

func (utf8Decoder) Decode(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", &InvalidSequenceError{Encoding: "utf-8", Offset: firstInvalidUTF8(b)}
	}
	return string(b), nil
}

// legacyDecoder wraps an x/text encoding. Those decoders map malformed input
// to U+FFFD instead of failing, and none of the legacy multi-byte tables map a
// valid sequence to U+FFFD, so its presence in the output marks invalid input.
type legacyDecoder struct {
	name string
	enc  encoding.Encoding
	// check returns the offset of a sequence the table accepts but the
	// encoding proper does not, or -1.
	check func(b []byte) int
}

func (d *legacyDecoder) Name() string { return d.name }

func (d *legacyDecoder) Decode(b []byte) (string, error) {
	out, err := d.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%s: %w", d.name, err)
	}
	if strings.ContainsRune(string(out), utf8.RuneError) {
		return "", &InvalidSequenceError{Encoding: d.name, Offset: -1}
	}
	if d.check != nil {
		if off := d.check(b); off >= 0 {
			return "", &InvalidSequenceError{Encoding: d.name, Offset: off}
		}
	}
	return string(out), nil
}

// gbkSingleByteEuro finds a lone 0x80 byte. The WHATWG GBK index maps it to
// U+20AC as code page 936 does, but GBK itself leaves 0x80 unassigned.
// b must already have decoded cleanly, so every byte from 0x81 up starts a
// two-byte sequence.
func gbkSingleByteEuro(b []byte) int {
	for i := 0; i < len(b); {
		switch c := b[i]; {
		case c < 0x80:
			i++
		case c == 0x80:
			return i
		default:
			i += 2
		}
	}
	return -1
}

// InvalidSequenceError reports input bytes that are not valid in Encoding.
// Offset is the byte offset of the first bad sequence, or -1 when unknown.
type InvalidSequenceError struct {
	Encoding string
	Offset   int
}

func (e *InvalidSequenceError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("'%s' codec can't decode byte at position %d: invalid sequence", e.Encoding, e.Offset)
	}
	return fmt.Sprintf("'%s' codec can't decode content: invalid sequence", e.Encoding)
}

func firstInvalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
