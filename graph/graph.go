// Package graph provides the directed dependency graph used for task
// scheduling, along with cycle detection and topological sorting.
//
// An edge (from, to) records that "from depends on to", i.e. the node
// named to must complete before the node named from may start.
package graph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNodeNotFound indicates an edge referenced a node id that has not
// been added to the graph.
var ErrNodeNotFound = errors.New("node not found")

// Node is a single entry in a Graph. It carries the caller's payload and
// the two adjacency sets: the ids this node depends on and the ids that
// depend on it. The two sets are kept consistent on every edge insertion.
type Node[T any] struct {
	id         string
	data       T
	deps       map[string]struct{}
	dependents map[string]struct{}
}

// ID returns the node's unique id within its graph.
func (n *Node[T]) ID() string { return n.id }

// Data returns the payload supplied when the node was added.
func (n *Node[T]) Data() T { return n.data }

// Dependencies returns a sorted copy of the ids this node depends on.
func (n *Node[T]) Dependencies() []string { return sortedKeys(n.deps) }

// Dependents returns a sorted copy of the ids that depend on this node.
func (n *Node[T]) Dependents() []string { return sortedKeys(n.dependents) }

type edge struct{ from, to string }

// Graph is a mutable directed graph keyed by node id. It is intended for
// single-threaded use: one graph per resolution call.
type Graph[T any] struct {
	nodes map[string]*Node[T]
	edges map[edge]struct{}
}

// New creates an empty graph.
func New[T any]() *Graph[T] {
	return &Graph[T]{
		nodes: make(map[string]*Node[T]),
		edges: make(map[edge]struct{}),
	}
}

// AddNode adds a node with the given id and payload. Adding an id that
// already exists is a no-op that returns the existing node unchanged.
func (g *Graph[T]) AddNode(id string, data T) *Node[T] {
	if node, ok := g.nodes[id]; ok {
		return node
	}
	node := &Node[T]{
		id:         id,
		data:       data,
		deps:       make(map[string]struct{}),
		dependents: make(map[string]struct{}),
	}
	g.nodes[id] = node
	return node
}

// AddEdge records that from depends on to. Both nodes must already exist.
// Adding the same edge twice is a no-op.
func (g *Graph[T]) AddEdge(from, to string) error {
	fromNode, ok := g.nodes[from]
	if !ok {
		return fmt.Errorf("add edge %s -> %s: %w: %s", from, to, ErrNodeNotFound, from)
	}
	toNode, ok := g.nodes[to]
	if !ok {
		return fmt.Errorf("add edge %s -> %s: %w: %s", from, to, ErrNodeNotFound, to)
	}
	fromNode.deps[to] = struct{}{}
	toNode.dependents[from] = struct{}{}
	g.edges[edge{from: from, to: to}] = struct{}{}
	return nil
}

// Get returns the node with the given id.
func (g *Graph[T]) Get(id string) (*Node[T], bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// HasNode reports whether a node with the given id exists.
func (g *Graph[T]) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether the dependency edge from -> to exists.
func (g *Graph[T]) HasEdge(from, to string) bool {
	_, ok := g.edges[edge{from: from, to: to}]
	return ok
}

// Dependencies returns a sorted copy of the ids the given node depends
// on, or nil if the node does not exist.
func (g *Graph[T]) Dependencies(id string) []string {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return node.Dependencies()
}

// Dependents returns a sorted copy of the ids that depend on the given
// node, or nil if the node does not exist.
func (g *Graph[T]) Dependents(id string) []string {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return node.Dependents()
}

// Nodes returns a snapshot copy of the id -> node mapping.
func (g *Graph[T]) Nodes() map[string]*Node[T] {
	nodes := make(map[string]*Node[T], len(g.nodes))
	for id, node := range g.nodes {
		nodes[id] = node
	}
	return nodes
}

// IDs returns the ids of all nodes in sorted order.
func (g *Graph[T]) IDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Roots returns the ids of all nodes with no dependencies, sorted.
func (g *Graph[T]) Roots() []string {
	var roots []string
	for id, node := range g.nodes {
		if len(node.deps) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns the ids of all nodes with no dependents, sorted.
func (g *Graph[T]) Leaves() []string {
	var leaves []string
	for id, node := range g.nodes {
		if len(node.dependents) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph[T]) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct edges in the graph.
func (g *Graph[T]) EdgeCount() int { return len(g.edges) }

// Clear resets the graph to empty.
func (g *Graph[T]) Clear() {
	g.nodes = make(map[string]*Node[T])
	g.edges = make(map[edge]struct{})
}

// SnapshotNode is one node in an exported graph snapshot.
type SnapshotNode[T any] struct {
	ID   string `json:"id"`
	Data T      `json:"data"`
}

// SnapshotEdge is one dependency edge in an exported graph snapshot.
type SnapshotEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Snapshot is a plain serializable representation of a graph.
type Snapshot[T any] struct {
	Nodes []SnapshotNode[T] `json:"nodes"`
	Edges []SnapshotEdge    `json:"edges"`
}

// Export returns a snapshot of the graph with nodes and edges in sorted
// order. Importing the snapshot into an empty graph reproduces all
// dependency and dependent relationships.
func (g *Graph[T]) Export() Snapshot[T] {
	snapshot := Snapshot[T]{
		Nodes: make([]SnapshotNode[T], 0, len(g.nodes)),
		Edges: make([]SnapshotEdge, 0, len(g.edges)),
	}
	for _, id := range g.IDs() {
		snapshot.Nodes = append(snapshot.Nodes, SnapshotNode[T]{ID: id, Data: g.nodes[id].data})
	}
	for e := range g.edges {
		snapshot.Edges = append(snapshot.Edges, SnapshotEdge{From: e.from, To: e.to})
	}
	sort.Slice(snapshot.Edges, func(i, j int) bool {
		if snapshot.Edges[i].From != snapshot.Edges[j].From {
			return snapshot.Edges[i].From < snapshot.Edges[j].From
		}
		return snapshot.Edges[i].To < snapshot.Edges[j].To
	})
	return snapshot
}

// Import clears the graph and then loads the given snapshot.
func (g *Graph[T]) Import(snapshot Snapshot[T]) error {
	g.Clear()
	for _, node := range snapshot.Nodes {
		g.AddNode(node.ID, node.Data)
	}
	for _, e := range snapshot.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
