package form

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Values maps field names to their current value: strings for text-like
// inputs, numbers when seeded from records, *FileHandle for file inputs.
type Values map[string]any

// Clone copies the map. File handles are shared, not duplicated.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// String renders a value for an input's value attribute.
func (v Values) String(name string) string {
	switch val := v[name].(type) {
	case nil:
		return ""
	case string:
		return val
	case *FileHandle:
		if val == nil {
			return ""
		}
		return val.Filename
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// File returns the file handle stored under name.
func (v Values) File(name string) (*FileHandle, bool) {
	fh, ok := v[name].(*FileHandle)
	return fh, ok && fh != nil
}

// FileHandle is an uploaded file held in memory until the caller stores it.
type FileHandle struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// Open returns a reader over the file contents.
func (f *FileHandle) Open() io.Reader {
	return bytes.NewReader(f.Data)
}

// IsImage reports whether the declared media type is image/*.
func (f *FileHandle) IsImage() bool {
	return f != nil && strings.HasPrefix(strings.ToLower(f.ContentType), "image/")
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case *FileHandle:
		return v == nil
	default:
		return false
	}
}

// numeric extracts a number from value; ok is false for blank or non-numeric input.
func numeric(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, !math.IsNaN(v)
	case float32:
		return float64(v), !math.IsNaN(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		return parseNumber(v)
	case fmt.Stringer:
		return parseNumber(v.String())
	default:
		return 0, false
	}
}

// parseNumber reads s the way a browser's Number() does: decimal and
// exponent forms, 0x/0o/0b integers and the literal Infinity. NaN, Go's
// "inf" spellings and digit separators are not numbers.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0, false
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	if strings.Contains(s, "_") {
		return 0, false
	}
	if len(s) > 2 && s[0] == '0' && strings.ContainsRune("xXoObB", rune(s[1])) {
		n, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return 0, false
		}
		return float64(n), true
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(lower, "x") {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}
