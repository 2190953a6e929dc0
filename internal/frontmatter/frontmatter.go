// Package frontmatter splits and decodes the YAML preamble of Markdown
// content files.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a delimiter line, had is false and body
// is the full input. A closing delimiter on the last line without a trailing
// newline is accepted.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}
	if bytes.Equal(rest, []byte("---")) {
		return []byte{}, []byte{}, true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	if idx := bytes.Index(rest, closeSeq); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
	}
	if tail := []byte(nl + "---"); bytes.HasSuffix(rest, tail) {
		return rest[:len(rest)-len("---")], []byte{}, true, nil
	}
	return nil, nil, false, ErrMissingClosingDelimiter
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Document is a content file split into its decoded preamble and body.
type Document struct {
	Fields map[string]any
	Body   []byte
	// Had is true when a well-formed frontmatter block was present.
	Had bool
	// Malformed is set when a preamble was present but could not be used;
	// Fields is then empty and Body is the full input.
	Malformed bool
	Err       error
}

// Parse splits and decodes content. It never fails: unusable frontmatter is
// reported through Malformed and Err and the document degrades to a body
// without fields.
func Parse(content []byte) Document {
	fm, body, had, err := Split(content)
	if err != nil {
		return Document{Fields: map[string]any{}, Body: content, Malformed: true, Err: err}
	}
	if !had {
		return Document{Fields: map[string]any{}, Body: body}
	}
	fields, err := ParseYAML(fm)
	if err != nil {
		return Document{Fields: map[string]any{}, Body: content, Malformed: true, Err: fmt.Errorf("invalid frontmatter yaml: %w", err)}
	}
	return Document{Fields: fields, Body: body, Had: true}
}

// String returns a non-empty, trimmed string field.
func (d Document) String(key string) (string, bool) {
	v, ok := d.Fields[key]
	if !ok || v == nil {
		return "", false
	}
	var s string
	switch vv := v.(type) {
	case string:
		s = vv
	case int, int64, float64, bool:
		s = fmt.Sprint(vv)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Number returns a numeric field. Integer and float scalars are accepted,
// as are strings holding a number.
func (d Document) Number(key string) (float64, bool) {
	switch v := d.Fields[key].(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Compose renders fields as a `---` delimited block followed by body. Keys
// are emitted in sorted order. Empty fields yield body unchanged.
func Compose(fields map[string]any, body []byte) ([]byte, error) {
	if len(fields) == 0 {
		return body, nil
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fields); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("---\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
