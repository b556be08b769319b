package skills

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is a markdown heading found in a skill body
type Heading struct {
	Level int
	Text  string
}

// Outline returns the headings of the skill body in document order.
// The header block is excluded so its delimiters are not read as markdown.
func Outline(skill *Skill) ([]Heading, error) {
	_, body := ParseFrontmatter(skill.Content)
	source := []byte(body)

	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var headings []Heading
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		var buf bytes.Buffer
		collectText(h, source, &buf)
		headings = append(headings, Heading{
			Level: h.Level,
			Text:  strings.TrimSpace(buf.String()),
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}

	return headings, nil
}

func collectText(n ast.Node, source []byte, buf *bytes.Buffer) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			collectText(c, source, buf)
		}
	}
}
