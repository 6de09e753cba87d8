// Package preprocessor expands INCLUDE nodes into the bodies of the
// files they name, splicing the included declarations in place.
//
// Grounded on original_source/src/preprocessor.py: the lookup order
// (the base directory given to New first -- the oxyc CLI passes the
// current working directory -- then the compiler-bundled includes
// directory) and the once-per-file memoization are both carried over.
// Unlike the original, memoization keys on the resolved absolute path
// rather than the raw filename string -- spec.md flags the original's
// string-identity memoization as ambiguous when the same file is
// reachable under two different relative spellings, and an absolute-path
// key resolves that ambiguity without changing behavior for the common
// case of one spelling per file.
package preprocessor

import (
	"embed"
	"os"
	"path/filepath"

	"github.com/capfund/oxylang/internal/ast"
	"github.com/capfund/oxylang/internal/ierrors"
	"github.com/capfund/oxylang/internal/parser"
)

//go:embed includes/*.oxy
var bundledIncludes embed.FS

// Preprocessor expands INCLUDE nodes, reading user includes relative to
// baseDir and falling back to the bundled includes directory.
type Preprocessor struct {
	baseDir  string
	included map[string]bool
}

// New creates a Preprocessor that resolves relative includes against
// baseDir (the oxyc CLI passes the current working directory).
func New(baseDir string) *Preprocessor {
	return &Preprocessor{baseDir: baseDir, included: make(map[string]bool)}
}

// Process parses src (the root file's already-read contents) and expands
// every INCLUDE node it or its transitive includes contain, in place.
func (p *Preprocessor) Process(src string) (*ast.Node, error) {
	root, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	return p.expand(root)
}

// ProcessFile reads path, which -- like every include target -- must
// carry a .oxy suffix, and processes its contents.
func (p *Preprocessor) ProcessFile(path string) (*ast.Node, error) {
	if filepath.Ext(path) != ".oxy" {
		return nil, ierrors.New(ierrors.StagePreproc, "source file %q must have a .oxy suffix", path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, ierrors.New(ierrors.StagePreproc, "reading %q: %s", path, err)
	}
	return p.Process(string(src))
}

func (p *Preprocessor) expand(node *ast.Node) (*ast.Node, error) {
	var out []*ast.Node
	for _, child := range node.Children {
		if child.Kind != ast.INCLUDE {
			out = append(out, child)
			continue
		}

		name := child.StringValue()
		if filepath.Ext(name) != ".oxy" {
			return nil, ierrors.New(ierrors.StagePreproc, "include target %q must have a .oxy suffix", name)
		}

		included, err := p.load(name)
		if err != nil {
			return nil, err
		}
		if included != nil {
			out = append(out, included.Children...)
		}
	}
	node.Children = out
	return node, nil
}

func (p *Preprocessor) load(name string) (*ast.Node, error) {
	src, resolved, err := p.read(name)
	if err != nil {
		return nil, err
	}

	if p.included[resolved] {
		return nil, nil
	}
	p.included[resolved] = true

	included, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	return p.expand(included)
}

func (p *Preprocessor) read(name string) (src string, resolved string, err error) {
	local := filepath.Join(p.baseDir, name)
	if data, readErr := os.ReadFile(local); readErr == nil {
		abs, _ := filepath.Abs(local)
		return string(data), abs, nil
	}

	data, readErr := bundledIncludes.ReadFile(filepath.Join("includes", name))
	if readErr != nil {
		return "", "", ierrors.New(ierrors.StagePreproc, "cannot find include %q", name)
	}
	return string(data), "bundled:" + name, nil
}
