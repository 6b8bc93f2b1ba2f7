package board

// Polyglot-style Zobrist keys, generated from a fixed seed separate from the
// internal key tables. The internal keys may be regenerated or reordered
// between releases; this key is the stable identity used by external storage
// and interchange, so its derivation must never change.
var (
	polyglotPieces     [12][64]uint64 // black P N B R Q K, then white
	polyglotCastling   [4]uint64      // KQkq
	polyglotEnPassant  [8]uint64      // file
	polyglotSideToMove uint64
)

func init() {
	initPolyglotKeys()
}

// PolyglotHash computes the position's stable external hash key. Unlike
// Key(), its value is a fixed function of the position and safe to persist.
func (p *Position) PolyglotHash() uint64 {
	var hash uint64

	// Piece kind ordering: black pawn..king are 0..5, white pawn..king 6..11.
	for c := White; c <= Black; c++ {
		kind := 6 - 6*int(c)
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces(c, pt)
			for bb != 0 {
				hash ^= polyglotPieces[kind+int(pt)][bb.PopLSB()]
			}
		}
	}

	rights := p.CastlingRights()
	order := [4]CastlingRights{WhiteKingSideCastle, WhiteQueenSideCastle, BlackKingSideCastle, BlackQueenSideCastle}
	for i, cr := range order {
		if rights&cr != 0 {
			hash ^= polyglotCastling[i]
		}
	}

	// The en passant square is only ever set when a capturing pawn is in
	// place, which is exactly Polyglot's condition for hashing the file.
	if ep := p.EpSquare(); ep != NoSquare {
		hash ^= polyglotEnPassant[ep.File()]
	}

	if p.sideToMove == White {
		hash ^= polyglotSideToMove
	}

	return hash
}

func initPolyglotKeys() {
	var s uint64 = 0x37b4a4b3f0d1c0d0

	rng := func() uint64 {
		s ^= s >> 12
		s ^= s << 25
		s ^= s >> 27
		return s * 0x2545F4914F6CDD1D
	}

	for piece := 0; piece < 12; piece++ {
		for sq := 0; sq < 64; sq++ {
			polyglotPieces[piece][sq] = rng()
		}
	}
	for i := range polyglotCastling {
		polyglotCastling[i] = rng()
	}
	for i := range polyglotEnPassant {
		polyglotEnPassant[i] = rng()
	}
	polyglotSideToMove = rng()
}
