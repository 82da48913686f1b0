package lint

import (
	"context"
	"sort"
	"strings"

	"github.com/latticehq/lattice/internal/index"
)

// DependencyGraph is the BlockedBy edge set over every indexed document,
// used by CircularBlockingRule (E006) to detect cyclic dependencies.
type DependencyGraph struct {
	edges map[string][]string // id -> ids it is blocked by
	ids   []string
}

// BuildDependencyGraph loads every BlockedBy link in the index into an
// adjacency list keyed by source document ID.
func BuildDependencyGraph(ctx context.Context, q index.Queryer) (*DependencyGraph, error) {
	rows, err := q.QueryContext(ctx, "SELECT source_id, target_id FROM links WHERE link_type = ?", string(index.LinkBlockedBy))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	g := &DependencyGraph{edges: map[string][]string{}}
	seen := map[string]bool{}
	for rows.Next() {
		var source, target string
		if err := rows.Scan(&source, &target); err != nil {
			return nil, err
		}
		g.edges[source] = append(g.edges[source], target)
		if !seen[source] {
			seen[source] = true
			g.ids = append(g.ids, source)
		}
		if !seen[target] {
			seen[target] = true
			g.ids = append(g.ids, target)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(g.ids)
	return g, nil
}

// CycleResult reports whether a cycle exists and, if so, the documents
// involved in lexicographic order.
type CycleResult struct {
	HasCycle    bool
	InvolvedIDs []string
	CyclePath   string
}

const (
	stateUnvisited = 0
	stateVisiting  = 1
	stateDone      = 2
)

// DetectCycle runs an iterative DFS over the blocked-by graph. Starting
// nodes are visited in lexicographic order so that, when multiple cycles
// exist, the one discovered is deterministic across runs.
func (g *DependencyGraph) DetectCycle() CycleResult {
	state := map[string]int{}
	parent := map[string]string{}

	for _, start := range g.ids {
		if state[start] != stateUnvisited {
			continue
		}
		if cyclePath := g.dfs(start, state, parent); cyclePath != nil {
			involved := append([]string{}, cyclePath...)
			sort.Strings(involved)
			// Rotate the path so it starts (and ends) at the smallest ID.
			for cyclePath[0] != involved[0] {
				cyclePath = append(cyclePath[1:], cyclePath[0])
			}
			return CycleResult{
				HasCycle:    true,
				InvolvedIDs: involved,
				CyclePath:   strings.Join(append(append([]string{}, cyclePath...), cyclePath[0]), " -> "),
			}
		}
	}
	return CycleResult{}
}

// dfs walks from start, returning the cycle (as an ordered slice of IDs,
// cycle-start first) if one is found reachable from start.
func (g *DependencyGraph) dfs(start string, state map[string]int, parent map[string]string) []string {
	type frame struct {
		node     string
		childIdx int
	}
	stack := []frame{{node: start}}
	state[start] = stateVisiting

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		neighbors := g.edges[top.node]

		if top.childIdx >= len(neighbors) {
			state[top.node] = stateDone
			stack = stack[:len(stack)-1]
			continue
		}

		next := neighbors[top.childIdx]
		top.childIdx++

		switch state[next] {
		case stateUnvisited:
			state[next] = stateVisiting
			parent[next] = top.node
			stack = append(stack, frame{node: next})
		case stateVisiting:
			return reconstructCycle(next, top.node, parent)
		}
	}
	return nil
}

// reconstructCycle walks parent pointers from cycleEnd back to cycleStart
// to rebuild the cycle path in traversal order, cycleStart first.
func reconstructCycle(cycleStart, cycleEnd string, parent map[string]string) []string {
	path := []string{cycleEnd}
	for node := cycleEnd; node != cycleStart; {
		p, ok := parent[node]
		if !ok {
			break
		}
		path = append(path, p)
		node = p
	}
	// reverse so cycleStart is first
	for i, j := 0, len(path)-1; i < j; i, j = j, i {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
