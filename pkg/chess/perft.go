package chess

// Perft counts the leaf nodes of the legal move tree rooted at p to
// the given depth - the standard move generator correctness check
// (spec §8).
func Perft(p *Position, depth int) int64 {
	var buffer [MaxMoves]OrderedMove
	var child Position
	var result int64
	for _, om := range p.GenerateMoves(buffer[:]) {
		if p.MakeMove(om.Move, &child) {
			if depth > 1 {
				result += Perft(&child, depth-1)
			} else {
				result++
			}
		}
	}
	return result
}
