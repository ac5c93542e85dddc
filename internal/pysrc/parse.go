// Package pysrc extracts library documentation from Python source files.
// It parses the source with tree-sitter and walks the syntax tree for
// docstrings, ROBOT_LIBRARY_* attributes and keyword signatures, without
// importing or executing the library.
package pysrc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/doctools/libdoc/internal/library"
)

// Parse reads one Python source file and builds its documentation model.
func Parse(ctx context.Context, path string) (*library.Doc, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseSource(ctx, src, path)
}

// ParseSource builds the documentation model for Python source held in
// memory. The path only names the library and is recorded as its source.
func ParseSource(ctx context.Context, src []byte, path string) (*library.Doc, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	defer tree.Close()

	doc := library.New(strings.TrimSuffix(filepath.Base(path), ".py"))
	doc.Source = path
	doc.Lineno = 1

	ext := extractor{src: src, source: path}
	ext.module(tree.RootNode(), doc)
	return doc, nil
}

type extractor struct {
	src    []byte
	source string
}

// module documents either the class named after the file, when one
// exists, or the module-level functions.
func (e *extractor) module(root *sitter.Node, doc *library.Doc) {
	doc.Doc = e.docstring(root)
	attrs := e.attributes(root)

	var funcs []*library.Keyword
	var class *sitter.Node
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := unwrapDecorated(root.NamedChild(i))
		switch node.Type() {
		case "function_definition":
			if kw := e.keyword(node, false); kw != nil {
				funcs = append(funcs, kw)
			}
		case "class_definition":
			if class == nil && e.content(node.ChildByFieldName("name")) == doc.Name {
				class = node
			}
		}
	}

	if class != nil {
		e.class(class, doc, attrs)
		return
	}
	applyAttributes(doc, attrs)
	doc.SetKeywords(funcs)
}

func (e *extractor) class(node *sitter.Node, doc *library.Doc, attrs map[string]string) {
	body := node.ChildByFieldName("body")
	doc.Lineno = int(node.StartPoint().Row) + 1
	if s := e.docstring(body); s != "" {
		doc.Doc = s
	}
	for name, value := range e.attributes(body) {
		attrs[name] = value
	}
	applyAttributes(doc, attrs)

	var inits, kws []*library.Keyword
	for i := 0; body != nil && i < int(body.NamedChildCount()); i++ {
		child := unwrapDecorated(body.NamedChild(i))
		if child.Type() != "function_definition" {
			continue
		}
		if e.content(child.ChildByFieldName("name")) == "__init__" {
			if kw := e.keyword(child, true); kw != nil && len(kw.Args) > 0 {
				kw.Name = doc.Name
				inits = append(inits, kw)
			}
			continue
		}
		if kw := e.keyword(child, true); kw != nil {
			kws = append(kws, kw)
		}
	}
	doc.SetInits(inits)
	doc.SetKeywords(kws)
}

// attributes collects string assignments directly inside a block, such as
// __version__ and the ROBOT_LIBRARY_* attributes.
func (e *extractor) attributes(block *sitter.Node) map[string]string {
	attrs := map[string]string{}
	for i := 0; block != nil && i < int(block.NamedChildCount()); i++ {
		node := block.NamedChild(i)
		if node.Type() != "expression_statement" {
			continue
		}
		expr := node.NamedChild(0)
		if expr == nil || expr.Type() != "assignment" {
			continue
		}
		left := expr.ChildByFieldName("left")
		right := expr.ChildByFieldName("right")
		if left == nil || right == nil || left.Type() != "identifier" || right.Type() != "string" {
			continue
		}
		attrs[e.content(left)] = stringLiteralValue(e.content(right))
	}
	return attrs
}

func applyAttributes(doc *library.Doc, attrs map[string]string) {
	if v, ok := attrs["ROBOT_LIBRARY_VERSION"]; ok {
		doc.Version = v
	} else if v, ok := attrs["__version__"]; ok {
		doc.Version = v
	}
	if v, ok := attrs["ROBOT_LIBRARY_SCOPE"]; ok {
		doc.Scope = normalizeScope(v)
	}
	if v := strings.ToUpper(strings.TrimSpace(attrs["ROBOT_LIBRARY_DOC_FORMAT"])); v != "" {
		doc.DocFormat = v
	}
}

// keyword documents one public function or method. Underscore-prefixed
// names are private and yield nil.
func (e *extractor) keyword(node *sitter.Node, method bool) *library.Keyword {
	name := e.content(node.ChildByFieldName("name"))
	if strings.HasPrefix(name, "_") && name != "__init__" {
		return nil
	}
	doc, tags := splitTags(e.docstring(node.ChildByFieldName("body")))
	return &library.Keyword{
		Name:   printableName(name),
		Args:   e.arguments(node.ChildByFieldName("parameters"), method),
		Doc:    doc,
		Tags:   tags,
		Source: e.source,
		Lineno: int(node.StartPoint().Row) + 1,
	}
}

func (e *extractor) arguments(params *sitter.Node, method bool) []library.Arg {
	if params == nil {
		return nil
	}
	var args []library.Arg
	kind := library.KindPositionalOrNamed
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		var arg library.Arg
		switch p.Type() {
		case "identifier":
			arg = library.Arg{Name: e.content(p), Kind: kind}
		case "typed_parameter":
			arg = library.Arg{
				Name: e.content(p.NamedChild(0)),
				Type: e.content(p.ChildByFieldName("type")),
				Kind: kind,
			}
		case "default_parameter":
			arg = library.Arg{
				Name:       e.content(p.ChildByFieldName("name")),
				Default:    e.defaultRepr(p.ChildByFieldName("value")),
				HasDefault: true,
				Kind:       kind,
			}
		case "typed_default_parameter":
			arg = library.Arg{
				Name:       e.content(p.ChildByFieldName("name")),
				Type:       e.content(p.ChildByFieldName("type")),
				Default:    e.defaultRepr(p.ChildByFieldName("value")),
				HasDefault: true,
				Kind:       kind,
			}
		case "list_splat_pattern":
			arg = library.Arg{Name: e.content(p.NamedChild(0)), Kind: library.KindVarPositional}
			kind = library.KindNamedOnly
		case "dictionary_splat_pattern":
			arg = library.Arg{Name: e.content(p.NamedChild(0)), Kind: library.KindVarNamed}
		case "keyword_separator":
			kind = library.KindNamedOnly
			continue
		default:
			continue
		}
		if method && i == 0 && (arg.Name == "self" || arg.Name == "cls") {
			continue
		}
		args = append(args, arg)
	}
	return args
}

// defaultRepr renders a default value as it should appear in a signature.
// String literals lose their quotes, everything else keeps its source
// text.
func (e *extractor) defaultRepr(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	if node.Type() == "string" {
		return stringLiteralValue(e.content(node))
	}
	return e.content(node)
}

// docstring returns the cleaned docstring of a module, class or function
// body, or "" when the first statement is not a string literal.
func (e *extractor) docstring(block *sitter.Node) string {
	if block == nil || block.NamedChildCount() == 0 {
		return ""
	}
	first := block.NamedChild(0)
	if first.Type() != "expression_statement" {
		return ""
	}
	str := first.NamedChild(0)
	if str == nil || str.Type() != "string" {
		return ""
	}
	return cleanDocstring(stringLiteralValue(e.content(str)))
}

func unwrapDecorated(node *sitter.Node) *sitter.Node {
	if node.Type() == "decorated_definition" {
		if def := node.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return node
}

func (e *extractor) content(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return node.Content(e.src)
}
