package graph

import (
	"fmt"

	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/validation"
)

// Edge connects the producer of a queue to its consumer.
type Edge struct {
	From  string
	To    string
	Queue string
}

// Graph is a validated, immutable set of wired nodes.
type Graph struct {
	nodes  []Node
	byName map[string]Node
	edges  []Edge
	levels [][]string
}

// New validates the wiring of nodes and computes their levels. Every
// wiring problem is reported in a single INVALID_TOPOLOGY error.
func New(nodes ...Node) (*Graph, error) {
	v := validation.NewWithCode(errors.ErrCodeInvalidTopology)
	v.Check(len(nodes) > 0, "nodes", "at least one node is required")

	g := &Graph{byName: make(map[string]Node, len(nodes))}
	for i, n := range nodes {
		if n == nil {
			v.AddError(fmt.Sprintf("nodes[%d]", i), "is nil")
			continue
		}
		name := n.Name()
		if name == "" {
			v.AddError(fmt.Sprintf("nodes[%d]", i), "name is required")
			continue
		}
		if _, dup := g.byName[name]; dup {
			v.AddError("node "+name, "is registered twice")
			continue
		}
		g.byName[name] = n
		g.nodes = append(g.nodes, n)
	}

	g.edges = deriveEdges(g.nodes, v)
	if v.HasErrors() {
		return nil, v.Err()
	}

	names := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		names[i] = n.Name()
	}
	levels, err := BuildLevels(names, g.edges)
	if err != nil {
		return nil, err
	}
	g.levels = levels
	return g, nil
}

// deriveEdges links every producer of a queue to the queue's single consumer.
func deriveEdges(nodes []Node, v *validation.Validator) []Edge {
	producers := make(map[string][]string)
	consumers := make(map[string][]string)
	var queueOrder []string

	seen := make(map[string]bool)
	track := func(id string) {
		if !seen[id] {
			seen[id] = true
			queueOrder = append(queueOrder, id)
		}
	}

	for _, n := range nodes {
		inputs, outputs, ok := EndpointsOf(n)
		if !ok {
			continue
		}
		for _, id := range inputs {
			track(id)
			consumers[id] = append(consumers[id], n.Name())
		}
		for _, id := range outputs {
			track(id)
			producers[id] = append(producers[id], n.Name())
		}
	}

	var edges []Edge
	for _, id := range queueOrder {
		cs := consumers[id]
		if len(cs) > 1 {
			v.AddError("queue "+id, fmt.Sprintf("has %d consumers %v, at most one is allowed", len(cs), cs))
			continue
		}
		if len(cs) == 0 {
			continue
		}
		for _, p := range producers[id] {
			edges = append(edges, Edge{From: p, To: cs[0], Queue: id})
		}
	}
	return edges
}

// BuildLevels uses Kahn's algorithm to group nodes by dependency level.
// Within a level, nodes keep the order of names. A cycle is an error: a
// node waiting on its own downstream sentinel would never shut down.
func BuildLevels(names []string, edges []Edge) ([][]string, error) {
	inDegree := make(map[string]int, len(names))
	dependents := make(map[string][]string)
	for _, name := range names {
		inDegree[name] = 0
	}

	for _, e := range edges {
		if _, ok := inDegree[e.From]; !ok {
			return nil, errors.InvalidTopology(fmt.Sprintf("edge references unknown node %q", e.From))
		}
		if _, ok := inDegree[e.To]; !ok {
			return nil, errors.InvalidTopology(fmt.Sprintf("edge references unknown node %q", e.To))
		}
		inDegree[e.To]++
		dependents[e.From] = append(dependents[e.From], e.To)
	}

	var current []string
	for _, name := range names {
		if inDegree[name] == 0 {
			current = append(current, name)
		}
	}

	var levels [][]string
	visited := 0
	for len(current) > 0 {
		levels = append(levels, current)
		visited += len(current)

		ready := make(map[string]bool)
		for _, name := range current {
			for _, dep := range dependents[name] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					ready[dep] = true
				}
			}
		}

		var next []string
		for _, name := range names {
			if ready[name] {
				next = append(next, name)
			}
		}
		current = next
	}

	if visited != len(names) {
		return nil, errors.InvalidTopology(
			fmt.Sprintf("cycle detected, processed %d of %d nodes", visited, len(names)),
		)
	}
	return levels, nil
}

// Nodes returns the nodes in registration order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Node returns the node registered under name.
func (g *Graph) Node(name string) (Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Edges returns the producer-to-consumer edges derived from queue wiring.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Levels returns node names grouped so that every producer sits in an
// earlier level than its consumers.
func (g *Graph) Levels() [][]string {
	out := make([][]string, len(g.levels))
	for i, level := range g.levels {
		out[i] = append([]string(nil), level...)
	}
	return out
}

// Ordered returns the nodes flattened in level order.
func (g *Graph) Ordered() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, level := range g.levels {
		for _, name := range level {
			out = append(out, g.byName[name])
		}
	}
	return out
}
