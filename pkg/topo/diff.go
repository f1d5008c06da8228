package topo

// DelayEpsilonMs is the clamp below which a retimed kept link is not reprogrammed.
// Sub-10µs jitter between ticks produces no observable emulation difference but a
// large rate of netem reprograms at scale.
const DelayEpsilonMs = 0.01

// Engine holds the Topology Controller's single-writer state across ticks: the
// idx/delay remembered for every link that has ever existed, and the next idx to
// hand out. It is not safe for concurrent use — the pacemaker loop is the only
// writer, matching the concurrency model of the rest of the system.
type Engine struct {
	idxOf   map[Edge]LinkState
	nextIdx int
}

// NewEngine creates an empty diff engine.
func NewEngine() *Engine {
	return &Engine{idxOf: make(map[Edge]LinkState)}
}

// Diff computes the change-set for curr relative to prev, using pos to resolve a
// node's position for the great-circle delay calculation. It mutates the engine's
// internal idx/delay bookkeeping to reflect the new state.
func (e *Engine) Diff(prev, curr []Edge, pos func(name string) Position) ChangeSet {
	prevSet := edgeSet(prev)
	currSet := edgeSet(curr)

	var cs ChangeSet

	for edge := range prevSet {
		if !currSet[edge] {
			cs.Del = append(cs.Del, edge)
			// idxOf is deliberately kept, not deleted: a re-added edge within
			// the same run must reuse its idx rather than get a fresh one.
		}
	}

	for edge := range currSet {
		delayMs := PropagationDelayMs(pos(edge.A), pos(edge.B))

		if prevSet[edge] {
			state, known := e.idxOf[edge]
			if !known {
				// Edge survived a tick boundary but the engine never saw it added —
				// should not happen if Diff is always called with the engine's own
				// prior curr as the next prev, but treat it as a fresh add.
				cs.Add = append(cs.Add, e.addEntry(edge, delayMs))
				continue
			}
			if absDiff(delayMs, state.LastDelayMs) > DelayEpsilonMs {
				cs.Update = append(cs.Update, UpdateEntry{A: edge.A, B: edge.B, DelayMs: delayMs})
				e.idxOf[edge] = LinkState{Idx: state.Idx, LastDelayMs: delayMs}
			}
			continue
		}

		cs.Add = append(cs.Add, e.addEntry(edge, delayMs))
	}

	return cs
}

func (e *Engine) addEntry(edge Edge, delayMs float64) AddEntry {
	state, known := e.idxOf[edge]
	idx := state.Idx
	if !known {
		e.nextIdx++
		idx = e.nextIdx
	}
	e.idxOf[edge] = LinkState{Idx: idx, LastDelayMs: delayMs}
	return AddEntry{A: edge.A, B: edge.B, DelayMs: delayMs, Idx: idx}
}

func edgeSet(edges []Edge) map[Edge]bool {
	m := make(map[Edge]bool, len(edges))
	for _, e := range edges {
		m[e] = true
	}
	return m
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
