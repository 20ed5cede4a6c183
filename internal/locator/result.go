package locator

import "golang.org/x/net/html"

// Result is the envelope every engine returns. A nil Err is a successful match,
// possibly with zero nodes.
type Result struct {
	Nodes []*html.Node
	Err   error
}

// Ok builds a successful result. Duplicates are removed keeping the first occurrence.
func Ok(nodes []*html.Node) Result {
	return Result{Nodes: dedup(nodes)}
}

// Fail builds a failed result.
func Fail(err error) Result {
	return Result{Err: err}
}

func (r Result) OK() bool {
	return r.Err == nil
}

func dedup(nodes []*html.Node) []*html.Node {
	out := make([]*html.Node, 0, len(nodes))
	seen := make(map[*html.Node]struct{}, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// nodeSet accumulates nodes in discovery order without duplicates.
type nodeSet struct {
	nodes []*html.Node
	seen  map[*html.Node]struct{}
}

func (ns *nodeSet) add(nodes ...*html.Node) {
	if ns.seen == nil {
		ns.seen = make(map[*html.Node]struct{})
	}
	for _, n := range nodes {
		if _, ok := ns.seen[n]; ok {
			continue
		}
		ns.seen[n] = struct{}{}
		ns.nodes = append(ns.nodes, n)
	}
}

func (ns *nodeSet) list() []*html.Node {
	if ns.nodes == nil {
		return []*html.Node{}
	}
	return ns.nodes
}

func contains(nodes []*html.Node, n *html.Node) bool {
	for _, c := range nodes {
		if c == n {
			return true
		}
	}
	return false
}
