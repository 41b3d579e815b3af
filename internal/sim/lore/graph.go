// Package lore writes briefings by walking a phrase graph. Condition nodes
// gate which phrases a path may pass through; compiling the graph records,
// for every node, each exact set of conditions some path from it to the end
// crosses, so generation never wanders into a dead end.
package lore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zyedidia/generic/mapset"

	"github.com/charredUtensil/hognose-sub000/internal/sim/dice"
	"github.com/charredUtensil/hognose-sub000/internal/sim/fault"
)

type nodeKind int

const (
	phraseNode nodeKind = iota
	conditionNode
	startNode
	endNode
)

type node struct {
	id    int
	kind  nodeKind
	texts []string
	state string
	next  []int
}

// maxStates bounds how many distinct conditions one graph may hold.
const maxStates = 64

// maxReach bounds the number of state sets any one node may carry.
const maxReach = 1 << 16

// Graph is built with the Builder methods and must be compiled before
// Generate. A compiled graph is read-only and safe to share.
type Graph struct {
	name   string
	nodes  []*node
	bits   map[string]uint64
	reach  []mapset.Set[uint64]
	sealed bool
}

func NewGraph(name string) *Graph {
	g := &Graph{name: name, bits: map[string]uint64{}}
	g.add(&node{kind: startNode})
	g.add(&node{kind: endNode})
	return g
}

func (g *Graph) add(n *node) int {
	n.id = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return n.id
}

// Builder is a fragment of the graph with its entry and exit nodes.
type Builder struct {
	g     *Graph
	heads []int
	tails []int
}

func (g *Graph) Start() Builder { return Builder{g: g, heads: []int{0}, tails: []int{0}} }
func (g *Graph) End() Builder   { return Builder{g: g, heads: []int{1}, tails: []int{1}} }

// Phrase is one node that emits one of texts, chosen uniformly. An empty
// text emits nothing.
func (g *Graph) Phrase(texts ...string) Builder {
	id := g.add(&node{kind: phraseNode, texts: texts})
	return Builder{g: g, heads: []int{id}, tails: []int{id}}
}

// Cond is a node a path may only cross when state holds.
func (g *Graph) Cond(state string) Builder {
	if _, ok := g.bits[state]; !ok {
		if len(g.bits) >= maxStates {
			panic(fmt.Sprintf("lore: %s: too many states", g.name))
		}
		g.bits[state] = 1 << uint(len(g.bits))
	}
	id := g.add(&node{kind: conditionNode, state: state})
	return Builder{g: g, heads: []int{id}, tails: []int{id}}
}

// Then links every tail of b to every head of each of next. Several
// arguments are alternatives.
func (b Builder) Then(next ...Builder) Builder {
	out := Builder{g: b.g, heads: b.heads}
	for _, n := range next {
		for _, t := range b.tails {
			for _, h := range n.heads {
				b.g.link(t, h)
			}
		}
		out.tails = append(out.tails, n.tails...)
	}
	return out
}

// Tag appends a condition on state.
func (b Builder) Tag(state string) Builder { return b.Then(b.g.Cond(state)) }

// Or merges two fragments into alternatives.
func (b Builder) Or(other Builder) Builder {
	return Builder{
		g:     b.g,
		heads: append(append([]int(nil), b.heads...), other.heads...),
		tails: append(append([]int(nil), b.tails...), other.tails...),
	}
}

// Any is the alternation of every fragment given.
func Any(first Builder, rest ...Builder) Builder {
	for _, r := range rest {
		first = first.Or(r)
	}
	return first
}

func (g *Graph) link(from, to int) {
	n := g.nodes[from]
	for _, x := range n.next {
		if x == to {
			return
		}
	}
	n.next = append(n.next, to)
}

func (g *Graph) mask(states []string) uint64 {
	var m uint64
	for _, s := range states {
		m |= g.bits[s]
	}
	return m
}

// States lists every condition in the graph.
func (g *Graph) States() []string {
	out := make([]string, 0, len(g.bits))
	for s := range g.bits {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Compile computes each node's reachable state sets. It fails if the graph
// has a cycle or a node whose reach grows past the budget.
func (g *Graph) Compile() error {
	order, err := g.topo()
	if err != nil {
		return err
	}
	g.reach = make([]mapset.Set[uint64], len(g.nodes))
	for i := len(order) - 1; i >= 0; i-- {
		n := g.nodes[order[i]]
		r := mapset.New[uint64]()
		if n.kind == endNode {
			r.Put(0)
		}
		var own uint64
		if n.kind == conditionNode {
			own = g.bits[n.state]
		}
		for _, x := range n.next {
			g.reach[x].Each(func(m uint64) { r.Put(m | own) })
		}
		if r.Size() > maxReach {
			return fault.NotHalting(g.name+" compile", maxReach)
		}
		g.reach[n.id] = r
	}
	g.sealed = true
	return nil
}

func (g *Graph) topo() ([]int, error) {
	const (
		unseen = iota
		active
		done
	)
	mark := make([]int, len(g.nodes))
	var order []int
	var visit func(int) error
	visit = func(i int) error {
		switch mark[i] {
		case active:
			return fmt.Errorf("lore: %s: cycle through node %d", g.name, i)
		case done:
			return nil
		}
		mark[i] = active
		for _, x := range g.nodes[i].next {
			if err := visit(x); err != nil {
				return err
			}
		}
		mark[i] = done
		order = append(order, i)
		return nil
	}
	for i := range g.nodes {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	// order is post-order; reverse into a topological order.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}

// Covers reports whether some path from start to end crosses exactly the
// given states among those the graph knows.
func (g *Graph) Covers(states ...string) bool {
	return g.sealed && g.reach[0].Has(g.mask(states))
}

// Generate walks from start to end, crossing exactly the conditions in
// states that this graph knows about. Placeholders of the form {name} are
// replaced from vars.
func (g *Graph) Generate(rng *dice.Rng, states []string, vars map[string]string) (string, error) {
	if !g.sealed {
		return "", fmt.Errorf("lore: %s: not compiled", g.name)
	}
	remaining := g.mask(states)
	r := replacer(vars)
	var sb strings.Builder
	cur := 0
	for g.nodes[cur].kind != endNode {
		var options []int
		for _, x := range g.nodes[cur].next {
			if g.reach[x].Has(remaining) {
				options = append(options, x)
			}
		}
		if len(options) == 0 {
			return "", fmt.Errorf("%w: %s at node %d", fault.ErrNoContinuation, g.name, cur)
		}
		cur = dice.Choice(rng, options)
		n := g.nodes[cur]
		switch n.kind {
		case conditionNode:
			remaining &^= g.bits[n.state]
		case phraseNode:
			emit(&sb, r.Replace(dice.Choice(rng, n.texts)))
		}
	}
	return sb.String(), nil
}

func emit(sb *strings.Builder, text string) {
	if text == "" {
		return
	}
	prev := sb.String()
	if prev == "" || strings.ContainsRune(".!?", rune(prev[len(prev)-1])) {
		text = strings.ToUpper(text[:1]) + text[1:]
	}
	if prev != "" && !strings.ContainsRune(".,!?;:", rune(text[0])) {
		sb.WriteByte(' ')
	}
	sb.WriteString(text)
}

func replacer(vars map[string]string) *strings.Replacer {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	return strings.NewReplacer(pairs...)
}
