package toc

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
)

// HeadingIDs generates GitHub-style heading anchors and resolves duplicates
// with -1, -2, … suffixes. It implements goldmark's parser.IDs so the same
// generator can drive rendered anchors and the table of contents.
//
// A HeadingIDs holds per-document state: create one per document.
type HeadingIDs struct {
	seen map[string]int
}

var _ parser.IDs = (*HeadingIDs)(nil)

// NewHeadingIDs returns an empty generator.
func NewHeadingIDs() *HeadingIDs {
	return &HeadingIDs{seen: make(map[string]int)}
}

// Generate implements parser.IDs.
func (h *HeadingIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	return []byte(h.Next(Unescape(string(value))))
}

// Put implements parser.IDs; explicitly assigned ids are reserved.
func (h *HeadingIDs) Put(value []byte) {
	if _, ok := h.seen[string(value)]; !ok {
		h.seen[string(value)] = 0
	}
}

// Next returns a unique id for already unescaped heading text.
func (h *HeadingIDs) Next(text string) string {
	base := Slugify(text)
	if base == "" {
		base = "heading"
	}
	id := base
	for {
		if _, taken := h.seen[id]; !taken {
			break
		}
		h.seen[base]++
		id = base + "-" + strconv.Itoa(h.seen[base])
	}
	h.seen[id] = 0
	return id
}

// Slugify lower-cases text, keeps letters, digits, marks, hyphens and
// underscores, turns each space into a hyphen and drops everything else.
func Slugify(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || unicode.Is(unicode.Nl, r):
			b.WriteRune(r)
		}
	}
	return b.String()
}
