// Package syntax gates Fixer output on source validity. A proposed fix that
// does not parse is discarded before it can reach disk, so the pipeline can
// never replace a working file with something unparseable.
package syntax

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ErrInvalid indicates the candidate source failed to parse.
var ErrInvalid = errors.New("syntax invalid")

// PythonValidator validates Python source using a Tree-sitter parser.
type PythonValidator struct {
	parser *sitter.Parser
}

// NewPythonValidator constructs a validator with the Python grammar loaded.
func NewPythonValidator() *PythonValidator {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &PythonValidator{parser: parser}
}

// Validate parses the candidate source and returns ErrInvalid (wrapped with
// location detail) if the tree contains error or missing nodes. Empty input
// is rejected: an empty fix would erase the file.
func (v *PythonValidator) Validate(ctx context.Context, source []byte) error {
	if len(strings.TrimSpace(string(source))) == 0 {
		return fmt.Errorf("%w: empty source", ErrInvalid)
	}

	tree, err := v.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	defer tree.Close()

	if node := firstErrorNode(tree.RootNode()); node != nil {
		point := node.StartPoint()
		return fmt.Errorf("%w: parse error at line %d, column %d",
			ErrInvalid, point.Row+1, point.Column+1)
	}
	return nil
}

// firstErrorNode walks the tree and returns the first ERROR or MISSING
// node, or nil for a clean parse.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
