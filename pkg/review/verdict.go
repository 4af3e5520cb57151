package review

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Verdict is the structured review block the reviewer is asked to return.
// Revision decisions never depend on it; see NeedsRevision.
type Verdict struct {
	EditorNotes []string `yaml:"editor_notes"`
	Grade       int      `yaml:"grade"`
	Edit        bool     `yaml:"edit"`
}

// ExtractYAMLBlocks returns the contents of the fenced yaml code blocks in markdownText.
func ExtractYAMLBlocks(markdownText string) ([]string, error) {
	var results []string
	source := []byte(markdownText)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		cb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lang := strings.ToLower(string(cb.Language(source)))
		if (lang == "yaml" || lang == "yml") && cb.Lines().Len() > 0 {
			start := cb.Lines().At(0).Start
			stop := cb.Lines().At(cb.Lines().Len() - 1).Stop
			results = append(results, string(source[start:stop]))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ParseVerdict decodes the first yaml block of a review. A review without a fenced
// block is decoded as a whole.
func ParseVerdict(review string) (*Verdict, error) {
	blocks, err := ExtractYAMLBlocks(review)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse review markdown")
	}
	body := review
	if len(blocks) > 0 {
		body = blocks[0]
	}

	ret := &Verdict{}
	if err := yaml.Unmarshal([]byte(body), ret); err != nil {
		return nil, errors.Wrap(err, "review is not a yaml verdict")
	}
	return ret, nil
}
