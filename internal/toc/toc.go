// Package toc extracts the in-page table of contents from Markdown bodies.
package toc

import (
	"bufio"
	"regexp"
	"strings"
)

// Item is one table of contents entry.
type Item struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

var atxHeading = regexp.MustCompile(`^ {0,3}(#{1,6})\s+(.+?)(?:\s+#+)?\s*$`)

// Extract collects level-2 and level-3 ATX headings outside fenced code.
// Only those headings draw ids; the renderer numbers the remaining
// headings after them, so anchors still match.
func Extract(body string) []Item {
	ids := NewHeadingIDs()
	items := []Item{}

	sc := bufio.NewScanner(strings.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var fence fenceState
	for sc.Scan() {
		line := sc.Text()
		if fence.consume(line) {
			continue
		}
		m := atxHeading.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		level := len(m[1])
		text := Unescape(strings.TrimSpace(m[2]))
		if text == "" {
			continue
		}
		if level == 2 || level == 3 {
			items = append(items, Item{ID: ids.Next(text), Text: text, Level: level})
		}
	}
	return items
}

var unescaper = strings.NewReplacer(
	`\<`, "<",
	`\>`, ">",
	`\[`, "[",
	`\]`, "]",
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
)

// Unescape undoes Markdown backslash escapes and the common HTML entities
// in heading text.
func Unescape(s string) string {
	s = unescaper.Replace(s)
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && isASCIIPunct(s[i+1]) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isASCIIPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}

// fenceState tracks ``` and ~~~ fenced code blocks.
type fenceState struct {
	marker string
}

// consume reports whether line is part of (or delimits) a fenced block.
func (f *fenceState) consume(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 && f.marker == "" {
		return false
	}
	if f.marker != "" {
		if strings.HasPrefix(trimmed, f.marker) && strings.TrimSpace(strings.TrimLeft(trimmed, f.marker[:1])) == "" {
			f.marker = ""
		}
		return true
	}
	for _, c := range []string{"`", "~"} {
		if strings.HasPrefix(trimmed, strings.Repeat(c, 3)) {
			n := len(trimmed) - len(strings.TrimLeft(trimmed, c))
			f.marker = strings.Repeat(c, n)
			return true
		}
	}
	return false
}
