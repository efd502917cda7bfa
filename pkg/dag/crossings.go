package dag

import "slices"

// CountCrossings returns the total number of segment crossings for the
// current Pos assignment, summed over every pair of adjacent ranks.
//
// Two segments (u1,v1) and (u2,v2) between the same pair of ranks cross if
// and only if pos(u1) < pos(u2) and pos(v1) > pos(v2). Segments sharing an
// endpoint never cross. Runs in O(S log S) for S segments.
func CountCrossings(g *Graph) int {
	byRank := make([][][2]int, max(g.MaxRank(), 0))
	for _, s := range g.segments {
		r := g.nodes[s.Upper].Rank
		byRank[r] = append(byRank[r], [2]int{g.nodes[s.Upper].Pos, g.nodes[s.Lower].Pos})
	}
	total := 0
	for _, pairs := range byRank {
		total += countPairCrossings(pairs)
	}
	return total
}

// CountLayerCrossings counts crossings between two ordered ranks given the
// segments connecting them. upper and lower hold node indices left to
// right; segments not connecting the two ranks are ignored.
func CountLayerCrossings(g *Graph, upper, lower []int) int {
	upperPos := PosMap(upper)
	lowerPos := PosMap(lower)
	var pairs [][2]int
	for _, u := range upper {
		for _, l := range g.Lower(u) {
			if lp, ok := lowerPos[l]; ok {
				pairs = append(pairs, [2]int{upperPos[u], lp})
			}
		}
	}
	return countPairCrossings(pairs)
}

// countPairCrossings sorts (upper, lower) position pairs by upper then
// lower, and counts inversions in the resulting lower sequence.
func countPairCrossings(pairs [][2]int) int {
	if len(pairs) < 2 {
		return 0
	}
	slices.SortFunc(pairs, func(a, b [2]int) int {
		if a[0] != b[0] {
			return a[0] - b[0]
		}
		return a[1] - b[1]
	})
	seq := make([]int, len(pairs))
	for i, p := range pairs {
		seq[i] = p[1]
	}
	return CountInversions(seq)
}

// CountInversions returns the number of index pairs i < j with
// seq[i] > seq[j], using merge sort in O(n log n). seq is not modified.
func CountInversions(seq []int) int {
	if len(seq) < 2 {
		return 0
	}
	work := slices.Clone(seq)
	buf := make([]int, len(seq))
	return mergeCount(work, buf)
}

func mergeCount(a, buf []int) int {
	n := len(a)
	if n < 2 {
		return 0
	}
	mid := n / 2
	count := mergeCount(a[:mid], buf[:mid]) + mergeCount(a[mid:], buf[mid:])

	i, j, k := 0, mid, 0
	for i < mid && j < n {
		if a[i] <= a[j] {
			buf[k] = a[i]
			i++
		} else {
			// every remaining element of the left half exceeds a[j]
			buf[k] = a[j]
			count += mid - i
			j++
		}
		k++
	}
	k += copy(buf[k:], a[i:mid])
	copy(buf[k:], a[j:])
	copy(a, buf[:n])
	return count
}

// PosMap returns a map from node index to its position in order.
func PosMap(order []int) map[int]int {
	m := make(map[int]int, len(order))
	for i, v := range order {
		m[v] = i
	}
	return m
}
