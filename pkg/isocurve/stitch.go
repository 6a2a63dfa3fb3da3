package isocurve

import "github.com/menta2k/image-probe/pkg/types"

// stitch joins segments that share an endpoint into polylines. Open chains
// are walked first, starting from endpoints of odd degree; whatever is left
// forms closed loops. Segment order decides the output order, so equal
// inputs always give equal outputs.
func stitch(segs []segment) []types.Polyline {
	if len(segs) == 0 {
		return nil
	}

	adj := make(map[key][]int, 2*len(segs))
	for i, s := range segs {
		adj[s.ka] = append(adj[s.ka], i)
		adj[s.kb] = append(adj[s.kb], i)
	}

	w := walker{segs: segs, adj: adj, used: make([]bool, len(segs))}

	var lines []types.Polyline
	for i, s := range segs {
		if w.used[i] {
			continue
		}
		switch {
		case len(adj[s.ka])%2 == 1:
			lines = append(lines, w.walk(s.ka, s.a))
		case len(adj[s.kb])%2 == 1:
			lines = append(lines, w.walk(s.kb, s.b))
		}
	}

	for i, s := range segs {
		if !w.used[i] {
			lines = append(lines, w.walk(s.ka, s.a))
		}
	}

	return lines
}

type walker struct {
	segs []segment
	adj  map[key][]int
	used []bool
}

// walk follows unused segments from start until it reaches a dead end or
// returns to start.
func (w *walker) walk(start key, p types.Point) types.Polyline {
	line := types.Polyline{Points: []types.Point{p}}
	cur := start

	for {
		next := -1
		for _, i := range w.adj[cur] {
			if !w.used[i] {
				next = i
				break
			}
		}
		if next < 0 {
			return line
		}
		w.used[next] = true

		s := w.segs[next]
		k, q := s.kb, s.b
		if s.kb == cur {
			k, q = s.ka, s.a
		}
		if k == start {
			line.Closed = true
			return line
		}
		line.Points = append(line.Points, q)
		cur = k
	}
}
