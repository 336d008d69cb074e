// Package descriptor decodes descriptor documents: files that hold either
// one descriptor array or a page mapping, written in JSON, YAML, TOML or
// MessagePack.
//
// Mappings decode to spawn.Config in document order, so configuration
// entries run in the order they were written. Arrays decode to []any and
// scalars to string, int, float64, bool or nil.
package descriptor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"

	"github.com/vango-dev/spawn/internal/errors"
)

// Format is a descriptor document encoding.
type Format int

const (
	FormatAuto Format = iota
	FormatJSON
	FormatYAML
	FormatTOML
	FormatMsgPack
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatMsgPack:
		return "msgpack"
	}
	return "auto"
}

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "msgpack", "mp", "mpk":
		return FormatMsgPack, nil
	}
	return FormatAuto, errors.New("S051").WithDetailf("unknown format %q", s)
}

// FormatFromPath picks a format from a file extension. Unknown
// extensions give FormatAuto.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return FormatAuto
	}
	return f
}

// sniff guesses the format of data: MessagePack maps and arrays start
// with a binary marker, JSON with '{' or '['. Anything else is YAML, which
// also accepts JSON.
func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return FormatYAML
	}
	switch c := data[0]; {
	case c >= 0x80 && c <= 0x9f, c == 0xdc, c == 0xdd, c == 0xde, c == 0xdf:
		return FormatMsgPack
	}
	switch trimmed[0] {
	case '{', '[':
		return FormatJSON
	}
	return FormatYAML
}

// Decode reads a whole document from r.
func Decode(r io.Reader, f Format) (*Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	return decode(data, f, "<input>")
}

// DecodeBytes decodes one document.
func DecodeBytes(data []byte, f Format) (*Page, error) {
	return decode(data, f, "<input>")
}

// DecodeFile decodes the document at path. The format comes from the
// extension, falling back to content sniffing.
func DecodeFile(path string) (*Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	return decode(data, FormatFromPath(path), path)
}

// DecodeValue decodes one document to its raw value without interpreting
// it as a page.
func DecodeValue(data []byte, f Format) (any, error) {
	return decodeValue(data, f, "<input>")
}

func decode(data []byte, f Format, name string) (*Page, error) {
	v, err := decodeValue(data, f, name)
	if err != nil {
		return nil, err
	}
	page, err := FromValue(v)
	if err != nil {
		return nil, errors.FromError(err, "S050").WithSuggestion("Check " + name)
	}
	return page, nil
}

func decodeValue(data []byte, f Format, name string) (any, error) {
	if f == FormatAuto {
		f = sniff(data)
	}

	var (
		v   any
		err error
	)
	switch f {
	case FormatJSON:
		v, err = decodeJSON(data)
	case FormatYAML:
		v, err = decodeYAML(data)
	case FormatTOML:
		v, err = decodeTOML(data)
	case FormatMsgPack:
		v, err = decodeMsgPack(data)
	default:
		return nil, errors.New("S051").WithDetailf("unknown format %d", int(f))
	}
	if err != nil {
		se := errors.New("S050").WithDetailf("%s document", f).Wrap(err)
		if pe, ok := err.(*PositionError); ok {
			se.WithLocation(name, pe.Line, pe.Column)
		}
		return nil, se
	}
	return v, nil
}

// PositionError is a decoding error with a 1-based position.
type PositionError struct {
	Line   int
	Column int
	Err    error
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *PositionError) Unwrap() error { return e.Err }

// position converts a byte offset into a line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for _, c := range data[:offset] {
		if c == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

// normalizeInt narrows decoded integers to int when they fit.
func normalizeInt(i int64) any {
	if n, err := safecast.Conv[int](i); err == nil {
		return n
	}
	return i
}
