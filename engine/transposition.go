package engine

import (
	"unsafe"

	"github.com/dylhunn/dragontoothmg"
)

// Bound types for stored scores.
const (
	AlphaFlag int8 = iota // score is an upper bound (failed low)
	BetaFlag              // score is a lower bound (failed high)
	ExactFlag             // score is exact
)

const (
	DefaultTTSizeMB = 64
	clusterSize     = 4

	// Returned when a probe cannot be used for a cutoff.
	UnusableScore int32 = -MaxScore - 1
)

// TTEntry is a single transposition table slot. The full 64-bit hash is kept
// so index collisions are rejected on probe.
type TTEntry struct {
	Hash  uint64
	Score int32
	Move  dragontoothmg.Move
	Depth int8
	Flag  int8
	Gen   uint8
}

// TransTable is a cluster-indexed transposition table. Each engine owns its
// own instance, so separate games never share entries.
type TransTable struct {
	entries      []TTEntry
	clusterCount uint64
	gen          uint8
}

// NewTransTable allocates a table of roughly sizeMB megabytes, rounded down
// to whole clusters.
func NewTransTable(sizeMB int) *TransTable {
	if sizeMB <= 0 {
		sizeMB = DefaultTTSizeMB
	}
	entrySize := uint64(unsafe.Sizeof(TTEntry{}))
	clusterCount := uint64(sizeMB) * 1024 * 1024 / (entrySize * clusterSize)
	if clusterCount == 0 {
		clusterCount = 1
	}
	return &TransTable{
		entries:      make([]TTEntry, clusterCount*clusterSize),
		clusterCount: clusterCount,
	}
}

// Clear drops every stored entry.
func (tt *TransTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	tt.gen = 0
}

// NextGeneration marks the start of a new search. Entries from older
// generations become preferred replacement victims.
func (tt *TransTable) NextGeneration() {
	tt.gen++
}

// ProbeEntry finds the entry for hash, if one survives. The returned pointer
// aliases the table; callers must copy what they keep.
func (tt *TransTable) ProbeEntry(hash uint64) (*TTEntry, bool) {
	if tt == nil || tt.clusterCount == 0 {
		return nil, false
	}
	base := int(hash % tt.clusterCount * clusterSize)
	for i := 0; i < clusterSize; i++ {
		entry := &tt.entries[base+i]
		if entry.Hash == hash {
			return entry, true
		}
	}
	return nil, false
}

// UseEntry decides whether a probed entry can cut off the current node.
// Mate scores were stored relative to the root, so they are re-anchored to
// the probing ply before the bound check.
func (tt *TransTable) UseEntry(entry *TTEntry, hash uint64, depth int8, alpha, beta int32, ply int8) (usable bool, score int32) {
	score = UnusableScore
	if entry == nil || entry.Hash != hash {
		return false, score
	}
	if entry.Depth < depth {
		return false, score
	}

	norm := entry.Score
	if norm > Checkmate {
		norm -= int32(ply)
	} else if norm < -Checkmate {
		norm += int32(ply)
	}

	switch entry.Flag {
	case ExactFlag:
		return true, norm
	case AlphaFlag:
		if norm <= alpha {
			return true, norm
		}
	case BetaFlag:
		if norm >= beta {
			return true, norm
		}
	}
	return false, UnusableScore
}

// StoreEntry writes a search result into the table. Replacement within a
// cluster prefers, in order: the slot already holding this position, an
// empty slot, the shallowest slot from an older generation, and finally the
// shallowest slot overall.
func (tt *TransTable) StoreEntry(hash uint64, depth int8, ply int8, move dragontoothmg.Move, score int32, flag int8) {
	if tt == nil || tt.clusterCount == 0 {
		return
	}
	base := int(hash % tt.clusterCount * clusterSize)

	// Mate scores are stored relative to the root so a hit at a different
	// ply still reports the right distance.
	if score > Checkmate {
		score += int32(ply)
	} else if score < -Checkmate {
		score -= int32(ply)
	}

	targetIdx := -1
	for i := 0; i < clusterSize; i++ {
		if tt.entries[base+i].Hash == hash {
			targetIdx = base + i
			break
		}
	}
	if targetIdx == -1 {
		for i := 0; i < clusterSize; i++ {
			if tt.entries[base+i].Hash == 0 {
				targetIdx = base + i
				break
			}
		}
	}
	if targetIdx == -1 {
		for i := 0; i < clusterSize; i++ {
			idx := base + i
			if tt.entries[idx].Gen == tt.gen {
				continue
			}
			if targetIdx == -1 || tt.entries[idx].Depth < tt.entries[targetIdx].Depth {
				targetIdx = idx
			}
		}
	}
	if targetIdx == -1 {
		targetIdx = base
		for i := 1; i < clusterSize; i++ {
			if tt.entries[base+i].Depth < tt.entries[targetIdx].Depth {
				targetIdx = base + i
			}
		}
	}

	entry := &tt.entries[targetIdx]

	// Keep a same-position entry from a deeper search unless we bring an
	// exact bound it lacks.
	if entry.Hash == hash && entry.Gen == tt.gen && entry.Depth > depth && flag != ExactFlag {
		return
	}

	entry.Hash = hash
	entry.Depth = depth
	entry.Move = move
	entry.Score = score
	entry.Flag = flag
	entry.Gen = tt.gen
}
