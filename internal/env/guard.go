package env

import (
	"errors"
	"fmt"
	"text/template/parse"
)

var (
	ErrUnsafeTemplate = errors.New("env: template uses a forbidden construct")
	ErrTemplateDepth  = errors.New("env: template nesting exceeds the allowed depth")
)

// Guard restricts templates to what fixtures need: {{.env.name}} lookups,
// optionally piped through a small set of text/template builtins.
type Guard struct {
	MaxDepth int
	// AllowedFunctions must be a subset of the text/template builtins.
	AllowedFunctions map[string]bool
}

// NewGuard returns a guard with the default limits.
func NewGuard() *Guard {
	return &Guard{
		MaxDepth: 5,
		AllowedFunctions: map[string]bool{
			"print":    true,
			"printf":   true,
			"println":  true,
			"len":      true,
			"index":    true,
			"eq":       true,
			"ne":       true,
			"lt":       true,
			"le":       true,
			"gt":       true,
			"ge":       true,
			"and":      true,
			"or":       true,
			"not":      true,
			"urlquery": true,
			"js":       true,
		},
	}
}

var defaultGuard = NewGuard()

// Check parses s and walks the tree. Unknown functions, nested template
// definitions and field access outside .env are rejected.
func (g *Guard) Check(s string) error {
	funcs := make(map[string]any, len(g.AllowedFunctions))
	for name, ok := range g.AllowedFunctions {
		if ok {
			funcs[name] = true
		}
	}
	trees, err := parse.Parse("guard", s, "{{", "}}", funcs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeTemplate, err)
	}
	if len(trees) > 1 {
		return fmt.Errorf("%w: template definitions are not allowed", ErrUnsafeTemplate)
	}
	tree, ok := trees["guard"]
	if !ok || tree.Root == nil {
		return nil
	}
	return g.checkList(tree.Root, 0)
}

func (g *Guard) checkList(l *parse.ListNode, depth int) error {
	if l == nil {
		return nil
	}
	if depth > g.MaxDepth {
		return ErrTemplateDepth
	}
	for _, n := range l.Nodes {
		if err := g.checkNode(n, depth); err != nil {
			return err
		}
	}
	return nil
}

func (g *Guard) checkNode(n parse.Node, depth int) error {
	switch n := n.(type) {
	case *parse.TextNode, *parse.CommentNode:
		return nil
	case *parse.ActionNode:
		return g.checkPipe(n.Pipe, depth)
	case *parse.IfNode:
		return g.checkBranch(&n.BranchNode, depth)
	case *parse.RangeNode:
		return g.checkBranch(&n.BranchNode, depth)
	case *parse.WithNode:
		return g.checkBranch(&n.BranchNode, depth)
	case *parse.TemplateNode:
		return fmt.Errorf("%w: template inclusion %q", ErrUnsafeTemplate, n.Name)
	default:
		return fmt.Errorf("%w: %s", ErrUnsafeTemplate, n.String())
	}
}

func (g *Guard) checkBranch(b *parse.BranchNode, depth int) error {
	if err := g.checkPipe(b.Pipe, depth); err != nil {
		return err
	}
	if err := g.checkList(b.List, depth+1); err != nil {
		return err
	}
	return g.checkList(b.ElseList, depth+1)
}

func (g *Guard) checkPipe(p *parse.PipeNode, depth int) error {
	if p == nil {
		return nil
	}
	if len(p.Decl) > 0 {
		return fmt.Errorf("%w: variable declarations", ErrUnsafeTemplate)
	}
	for _, cmd := range p.Cmds {
		for _, arg := range cmd.Args {
			if err := g.checkArg(arg, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Guard) checkArg(arg parse.Node, depth int) error {
	switch a := arg.(type) {
	case *parse.FieldNode:
		if len(a.Ident) != 2 || a.Ident[0] != "env" {
			return fmt.Errorf("%w: field %s, only .env.<name> is available", ErrUnsafeTemplate, a.String())
		}
		return nil
	case *parse.IdentifierNode:
		if !g.AllowedFunctions[a.Ident] {
			return fmt.Errorf("%w: function %q", ErrUnsafeTemplate, a.Ident)
		}
		return nil
	case *parse.PipeNode:
		return g.checkPipe(a, depth+1)
	case *parse.StringNode, *parse.NumberNode, *parse.BoolNode, *parse.NilNode:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsafeTemplate, arg.String())
	}
}
