package stream

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder turns a sequence of byte chunks into text. A multi-byte character
// split across two chunks is held back until the rest of it arrives, and
// ill-formed input is replaced with U+FFFD instead of failing.
type Decoder struct {
	t       transform.Transformer
	pending []byte
}

func NewDecoder() *Decoder {
	return &Decoder{t: unicode.UTF8.NewDecoder()}
}

// Decode returns the text that chunk completes. Bytes of an unfinished
// character are kept for the next call.
func (d *Decoder) Decode(chunk []byte) string {
	return d.decode(chunk, false)
}

// Flush returns whatever is still pending, with an unfinished trailing
// character replaced by U+FFFD, and resets the decoder.
func (d *Decoder) Flush() string {
	out := d.decode(nil, true)
	d.t.Reset()
	return out
}

func (d *Decoder) decode(chunk []byte, atEOF bool) string {
	src := make([]byte, 0, len(d.pending)+len(chunk))
	src = append(src, d.pending...)
	src = append(src, chunk...)
	d.pending = d.pending[:0]

	if len(src) == 0 {
		return ""
	}

	var out strings.Builder
	// U+FFFD is three bytes, so an input of only bad bytes triples in size.
	dst := make([]byte, 3*len(src)+utf8.UTFMax)
	for {
		nDst, nSrc, err := d.t.Transform(dst, src, atEOF)
		out.Write(dst[:nDst])
		src = src[nSrc:]

		switch err {
		case nil:
			return out.String()
		case transform.ErrShortSrc:
			d.pending = append(d.pending, src...)
			return out.String()
		case transform.ErrShortDst:
			if nDst == 0 && nSrc == 0 {
				dst = make([]byte, 2*len(dst))
			}
		default:
			// The UTF-8 decoder only reports short buffers; anything else
			// is passed through untouched.
			out.Write(src)
			return out.String()
		}
	}
}
