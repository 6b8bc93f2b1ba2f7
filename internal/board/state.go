package board

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	WhiteCastling        CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle
	BlackCastling        CastlingRights = BlackKingSideCastle | BlackQueenSideCastle
	AllCastling          CastlingRights = WhiteCastling | BlackCastling
)

// castleRight returns the single right for a color and side.
func castleRight(c Color, kingSide bool) CastlingRights {
	if c == White {
		if kingSide {
			return WhiteKingSideCastle
		}
		return WhiteQueenSideCastle
	}
	if kingSide {
		return BlackKingSideCastle
	}
	return BlackQueenSideCastle
}

// colorCastling returns both rights of one color.
func colorCastling(c Color) CastlingRights {
	if c == White {
		return WhiteCastling
	}
	return BlackCastling
}

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// DirtyPiece records the board deltas of one applied move so an external
// evaluator can refresh its internal state incrementally instead of
// recomputing from scratch. At most three pieces change per move (mover,
// captured piece, castling rook / promotion swap).
type DirtyPiece struct {
	Count int // number of changed pieces (0 for a null move)
	Piece [3]Piece
	From  [3]Square // NoSquare when the piece appeared (promotion)
	To    [3]Square // NoSquare when the piece left the board (capture)
}

func (dp *DirtyPiece) add(pc Piece, from, to Square) {
	dp.Piece[dp.Count] = pc
	dp.From[dp.Count] = from
	dp.To[dp.Count] = to
	dp.Count++
}

// EvalUpdater is an optional hook notified of every applied and retracted
// move. The position core never interprets evaluation scores; it only feeds
// the change lists forward. Push and Pop calls are strictly LIFO, mirroring
// DoMove/UndoMove (null moves push an empty change list).
type EvalUpdater interface {
	Push(*DirtyPiece)
	Pop()
}

// StateInfo stores everything needed to restore a Position to its previous
// state when a move is retracted, plus the check geometry of the position it
// belongs to. One StateInfo is pushed per applied move (null moves included)
// onto the position's state stack; the previous snapshot is simply the one
// below it.
type StateInfo struct {
	// Copied from the previous snapshot on every DoMove, then adjusted.
	PawnKey         uint64
	MaterialKey     uint64
	NonPawnMaterial [2]int
	CastlingRights  CastlingRights
	Rule50          int
	PliesFromNull   int
	EnPassant       Square

	// Freshly computed for the new position, never copied.
	Key             uint64
	Checkers        Bitboard
	Captured        Piece
	BlockersForKing [2]Bitboard
	Pinners         [2]Bitboard
	CheckSquares    [6]Bitboard
	Repetition      int
	Dirty           DirtyPiece
}
