package pjax

import (
	"html/template"
	"text/template/parse"
)

// Node is one template invocation in a page's block outline.
type Node struct {
	Name  string
	Depth int
	Nodes []*Node
}

// Blocks returns the outline of {{block}} and {{template}} invocations
// reachable from t's root tree, nested by invocation site.
func Blocks(t *template.Template) *Node {
	root := &Node{Name: t.Name()}
	appendBlockNodes(t, t, root, map[string]bool{t.Name(): true})
	return root
}

func appendBlockNodes(root, t *template.Template, parent *Node, visited map[string]bool) {
	if t == nil || t.Tree == nil || t.Tree.Root == nil {
		return
	}

	walkTree(t.Tree.Root, func(n *parse.TemplateNode) {
		child := &Node{Name: n.Name, Depth: parent.Depth + 1}
		parent.Nodes = append(parent.Nodes, child)

		if visited[n.Name] {
			return
		}
		visited[n.Name] = true

		appendBlockNodes(root, root.Lookup(n.Name), child, visited)
	})
}

// referencedBlocks returns the names of every template reachable from t's
// root tree. A defined block that never shows up here would not be rendered
// by a full-page render of t.
func referencedBlocks(t *template.Template) map[string]bool {
	seen := make(map[string]bool)

	var visit func(tt *template.Template)
	visit = func(tt *template.Template) {
		if tt == nil || tt.Tree == nil || tt.Tree.Root == nil {
			return
		}

		walkTree(tt.Tree.Root, func(n *parse.TemplateNode) {
			if seen[n.Name] {
				return
			}
			seen[n.Name] = true
			visit(t.Lookup(n.Name))
		})
	}

	visit(t)
	return seen
}

// walkTree walks a parse tree depth-first, visiting every template
// invocation. {{block "x" .}} parses to a definition plus an invocation, so
// blocks and explicit {{template}} calls come out the same way.
func walkTree(node parse.Node, visit func(*parse.TemplateNode)) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			walkTree(c, visit)
		}
	case *parse.TemplateNode:
		visit(n)
	case *parse.IfNode:
		walkBranch(&n.BranchNode, visit)
	case *parse.RangeNode:
		walkBranch(&n.BranchNode, visit)
	case *parse.WithNode:
		walkBranch(&n.BranchNode, visit)
	}
}

func walkBranch(n *parse.BranchNode, visit func(*parse.TemplateNode)) {
	if n.List != nil {
		walkTree(n.List, visit)
	}
	if n.ElseList != nil {
		walkTree(n.ElseList, visit)
	}
}
