package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// NormalizeMarkdown strips markdown structure from content and returns the
// plain prose, so headings, emphasis markers, and link syntax do not leak
// into embeddings. Code blocks are kept verbatim. If parsing fails the
// original content is returned unchanged.
func NormalizeMarkdown(content []byte) string {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(content))

	var sb strings.Builder
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			switch n.(type) {
			case *ast.Paragraph, *ast.Heading, *ast.ListItem:
				sb.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(content))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteString("\n")
			}
		case *ast.FencedCodeBlock:
			writeCodeLines(&sb, node, content)
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			writeCodeLines(&sb, node, content)
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			sb.Write(node.URL(content))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return string(content)
	}

	return strings.TrimSpace(sb.String())
}

func writeCodeLines(sb *strings.Builder, node ast.Node, content []byte) {
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(content))
	}
	sb.WriteString("\n")
}
