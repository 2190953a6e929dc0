package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/docsite/internal/toc"
)

// headingAnchors assigns heading ids once the document is parsed. ATX
// level-2 and level-3 headings draw from the id generator first, in
// document order, so their anchors equal the ids toc.Extract reports.
// Every other heading is numbered afterwards from the same generator.
type headingAnchors struct{}

func (headingAnchors) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	var listed, rest []*ast.Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if inTOC(h, source) {
			listed = append(listed, h)
		} else {
			rest = append(rest, h)
		}
		return ast.WalkSkipChildren, nil
	})

	ids := pc.IDs()
	for _, h := range append(listed, rest...) {
		if _, ok := h.AttributeString("id"); ok {
			continue
		}
		h.SetAttributeString("id", ids.Generate(headingText(h, source), ast.KindHeading))
	}
}

func headingText(h *ast.Heading, source []byte) []byte {
	var b bytes.Buffer
	lines := h.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return bytes.TrimSpace(b.Bytes())
}

// inTOC mirrors toc.Extract: a level-2 or level-3 ATX heading at the start
// of its line with non-empty text.
func inTOC(h *ast.Heading, source []byte) bool {
	if (h.Level != 2 && h.Level != 3) || h.Lines().Len() == 0 {
		return false
	}
	if strings.TrimSpace(toc.Unescape(string(headingText(h, source)))) == "" {
		return false
	}
	start := h.Lines().At(0).Start
	lineStart := bytes.LastIndexByte(source[:start], '\n') + 1
	return bytes.HasPrefix(bytes.TrimLeft(source[lineStart:start], " "), []byte("#"))
}
