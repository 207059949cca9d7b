// Package encoding converts uploaded statement files to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

// Fallback is used when nothing better can be detected. Vietnamese banks
// still export legacy files in it.
const Fallback = "windows-1258"

var boms = []struct {
	prefix []byte
	name   string
}{
	{[]byte{0xEF, 0xBB, 0xBF}, "UTF-8"},
	{[]byte{0xFF, 0xFE}, "UTF-16LE"},
	{[]byte{0xFE, 0xFF}, "UTF-16BE"},
}

// decoders maps chardet charset names to decoders. UTF-8 is absent on purpose:
// it needs no transform.
var decoders = map[string]xencoding.Encoding{
	"UTF-16LE":     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"UTF-16BE":     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-15":  charmap.ISO8859_15,
	"windows-1258": charmap.Windows1258,
	"windows-1250": charmap.Windows1250,
	"ISO-8859-2":   charmap.ISO8859_2,
}

// Detect names the charset of a sample: a BOM wins, then UTF-8 validity,
// then chardet, then Fallback.
func Detect(sample []byte) string {
	for _, b := range boms {
		if bytes.HasPrefix(sample, b.prefix) {
			return b.name
		}
	}

	if utf8.Valid(sample) {
		return "UTF-8"
	}

	res, err := chardet.NewTextDetector().DetectBest(sample)
	if err == nil {
		if _, ok := decoders[res.Charset]; ok || res.Charset == "UTF-8" {
			return res.Charset
		}
	}

	return Fallback
}

// NewUTF8Reader returns a reader producing the content of r as UTF-8,
// with any UTF-8 byte order mark removed.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	sample, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	name := Detect(sample)

	if name == "UTF-8" {
		if bytes.HasPrefix(sample, boms[0].prefix) {
			_, _ = br.Discard(len(boms[0].prefix))
		}

		return br, nil
	}

	return transform.NewReader(br, decoders[name].NewDecoder()), nil
}
