package engine

import (
	"math/bits"
	"sync/atomic"

	. "github.com/corvidchess/corvid/pkg/chess"
)

const (
	boundLower = 1 << iota
	boundUpper
)

const boundExact = boundLower | boundUpper

// clusterSize entries share a probe: a cache-line-sized bucket the
// probe scans linearly instead of chasing one bucket per key the way
// a plain hash map would.
const clusterSize = 3

const (
	generationDelta = 8
	generationCycle = 255 + generationDelta
	generationMask  = 0xf8
)

// ttEntry is a transposition table slot. Two atomically-accessed
// words rather than one struct: key+move in wordA, depth/genBound/
// value/eval in wordB. Each word is torn-free (Go gives no such
// guarantee for a plain 16-byte struct write racing a read), but a
// reader can still observe wordA from one writer and wordB from
// another - that inconsistency is exactly what the key re-check on
// probe and the legality check before playing a TT move are there to
// catch, so no lock guards the pair.
type ttEntry struct {
	wordA uint64 // key32<<32 | uint32(move)
	wordB uint64 // value16<<48 | eval16<<32 | depth8<<24 | genBound8<<16
}

func packWordA(key32 uint32, move Move) uint64 {
	return uint64(key32)<<32 | uint64(uint32(move))
}

func packWordB(value, eval int16, depth int8, genBound uint8) uint64 {
	return uint64(uint16(value))<<48 | uint64(uint16(eval))<<32 |
		uint64(uint8(depth))<<24 | uint64(genBound)<<16
}

func (e *ttEntry) load() (key32 uint32, move Move, value, eval int16, depth int8, genBound uint8) {
	var a = atomic.LoadUint64(&e.wordA)
	var b = atomic.LoadUint64(&e.wordB)
	key32 = uint32(a >> 32)
	move = Move(int32(uint32(a)))
	value = int16(b >> 48)
	eval = int16(b >> 32)
	depth = int8(b >> 24)
	genBound = uint8(b >> 16)
	return
}

func (e *ttEntry) store(key32 uint32, move Move, value, eval int16, depth int8, genBound uint8) {
	atomic.StoreUint64(&e.wordA, packWordA(key32, move))
	atomic.StoreUint64(&e.wordB, packWordB(value, eval, depth, genBound))
}

func bound(genBound uint8) int  { return int(genBound) & 0x3 }
func pvFlag(genBound uint8) bool { return genBound&0x4 != 0 }
func generationOf(genBound uint8) uint8 { return genBound & generationMask }

// relativeAge is how many generations stale an entry is relative to
// currentGen, wrapping through the fixed generationCycle so an entry
// from just before a wraparound isn't mistaken for one far in the
// future.
func relativeAge(entryGenBound, currentGen uint8) int {
	return int(uint8(generationCycle+int(currentGen)-int(generationOf(entryGenBound)))) & generationMask
}

type cluster [clusterSize]ttEntry

// transTable is the shared, cluster-addressed transposition table:
// clusterCount clusters, indexed by the high 64 bits of key*clusterCount
// (fixed-point multiplicative hashing - no power-of-two size
// requirement, so Hash in megabytes maps directly to cluster count
// instead of being rounded up to the next power of two), each holding
// clusterSize independently-addressable entries so a handful of keys
// colliding on the top bits doesn't immediately evict one another.
type transTable struct {
	megabytes    int
	clusters     []cluster
	clusterCount uint64
	generation   uint8
}

func newTransTable(megabytes int) *transTable {
	var bytes = 1024 * 1024 * megabytes
	var clusterCount = uint64(bytes / int(clusterSize*16))
	if clusterCount == 0 {
		clusterCount = 1
	}
	return &transTable{
		megabytes:    megabytes,
		clusters:     make([]cluster, clusterCount),
		clusterCount: clusterCount,
	}
}

func (tt *transTable) Size() int { return tt.megabytes }

// IncDate ages the table by one generation step; only the top 5 bits
// of genBound move, so the pv/bound bits an entry already carries
// survive the increment untouched.
func (tt *transTable) IncDate() {
	tt.generation += generationDelta
}

func (tt *transTable) Clear() {
	tt.generation = 0
	for i := range tt.clusters {
		tt.clusters[i] = cluster{}
	}
}

func (tt *transTable) clusterIndex(key uint64) uint64 {
	var hi, _ = bits.Mul64(key, tt.clusterCount)
	return hi
}

func (tt *transTable) Prefetch(key uint64) {
	_ = &tt.clusters[tt.clusterIndex(key)]
}

// Hashfull samples the first 1000 entries and reports how many carry
// the current search generation, permille, matching the UCI
// "info hashfull" convention.
func (tt *transTable) Hashfull() int {
	var sampleSize = 1000
	var total = len(tt.clusters) * clusterSize
	if sampleSize > total {
		sampleSize = total
	}
	var used int
	for i := 0; i < sampleSize; i++ {
		var entry = &tt.clusters[i/clusterSize][i%clusterSize]
		var _, move, _, _, _, genBound = entry.load()
		if move != MoveEmpty && generationOf(genBound) == tt.generation {
			used++
		}
	}
	if sampleSize == 0 {
		return 0
	}
	return used * 1000 / sampleSize
}

// probe scans the cluster for key's high 32 bits, returning the
// matching entry's slot on a hit or the least valuable slot (the
// replacement victim, spec's depth8 minus aging term) when it's a
// miss.
func (tt *transTable) probe(key uint64) (slot *ttEntry, key32 uint32, hit bool) {
	var cl = &tt.clusters[tt.clusterIndex(key)]
	key32 = uint32(key >> 32)
	var worst *ttEntry
	var worstValue = 1 << 30
	for i := range cl {
		var entry = &cl[i]
		var entKey, move, _, _, depth, genBound = entry.load()
		if move == MoveEmpty && entKey == 0 {
			return entry, key32, false
		}
		if entKey == key32 {
			return entry, key32, true
		}
		var value = int(depth) - relativeAge(genBound, tt.generation)
		if value < worstValue {
			worstValue = value
			worst = entry
		}
	}
	return worst, key32, false
}

func (tt *transTable) Read(key uint64) (depth, score, bnd int, move Move, ok bool) {
	var slot, _, hit = tt.probe(key)
	if !hit {
		return
	}
	var _, foundMove, value, _, foundDepth, genBound = slot.load()
	return int(foundDepth), int(value), bound(genBound), foundMove, true
}

// Update saves a search result, keeping the existing move when the
// incoming one is empty and the key still matches. An entry for the
// same key is only overwritten when the new result is exact or at most
// 3 plies shallower than the stored one; an entry for a different key
// is always replaced - the replacement rule real TTs use to avoid a
// shallow re-probe evicting a deep result for no gain.
func (tt *transTable) Update(key uint64, depth, score, bnd int, move Move) {
	tt.UpdateWithEval(key, depth, score, bnd, move, valueNone, false)
}

func (tt *transTable) UpdateWithEval(key uint64, depth, score, bnd int, move Move, eval int, pv bool) {
	var slot, key32, hit = tt.probe(key)
	if slot == nil {
		return
	}
	var _, oldMove, _, oldEval, oldDepth, oldGenBound = slot.load()
	if move == MoveEmpty && hit {
		move = oldMove
	}
	if eval == valueNone && hit {
		eval = int(oldEval)
	}
	if hit && bnd != boundExact && depth <= int(oldDepth)-4 {
		return
	}
	var pvBit uint8
	if pv || (hit && pvFlag(oldGenBound)) {
		pvBit = 0x4
	}
	var genBound = tt.generation | pvBit | uint8(bnd)
	slot.store(key32, move, int16(score), int16(eval), int8(depth), genBound)
}

func (tt *transTable) ReadWithEval(key uint64) (depth, score, bnd int, move Move, eval int, pv, ok bool) {
	var slot, _, hit = tt.probe(key)
	if !hit {
		eval = valueNone
		return
	}
	var _, foundMove, value, foundEval, foundDepth, genBound = slot.load()
	return int(foundDepth), int(value), bound(genBound), foundMove, int(foundEval), pvFlag(genBound), true
}
