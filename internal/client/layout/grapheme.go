package layout

import "github.com/rivo/uniseg"

// textCluster is one grapheme cluster from a buffer line: the rune drawn
// in its cell, the cell's display width (East-Asian-width and combining
// marks accounted for), and the cluster's byte length so callers can
// advance a byte-column cursor by the right amount (spec §3
// BufferPosition.column_byte_index is a byte offset, not a rune count).
type textCluster struct {
	r       rune
	width   int
	byteLen int
}

// clusterize splits line into grapheme clusters using uniseg, so a base
// letter plus combining accents (or a flag/ZWJ emoji sequence) occupies
// one cell instead of one cell per rune.
func clusterize(line string) []textCluster {
	out := make([]textCluster, 0, len(line))
	state := -1
	remaining := line
	for len(remaining) > 0 {
		var cl string
		var width int
		cl, remaining, width, state = uniseg.FirstGraphemeClusterInString(remaining, state)
		if cl == "" {
			break
		}
		r := []rune(cl)[0]
		out = append(out, textCluster{r: r, width: width, byteLen: len(cl)})
	}
	return out
}
