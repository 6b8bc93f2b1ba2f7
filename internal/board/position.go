package board

import "fmt"

// DebugChecks enables expensive internal precondition checks. A violated
// precondition is a caller bug, not a runtime condition: with DebugChecks
// set the package panics at the violation point, otherwise behavior is
// undefined.
var DebugChecks = false

// Position represents a complete chess position. The board array, the
// per-type and per-color bitboards and the piece lists are redundant views
// of the same placement and are kept consistent by routing every mutation
// through putPiece, removePiece and movePiece.
//
// A Position is owned by a single search worker. No internal locking exists
// or is needed; sharing one instance across goroutines is a caller error.
type Position struct {
	board      [64]Piece
	byType     [6]Bitboard
	byColor    [2]Bitboard
	occupied   Bitboard
	pieceCount [12]int
	pieceList  [12][16]Square
	index      [64]uint8

	castlingRightsMask [64]CastlingRights
	castlingRookSquare [16]Square
	castlingPath       [16]Bitboard

	gamePly    int
	sideToMove Color
	psq        int
	chess960   bool
	thread     any
	eval       EvalUpdater

	// states is the snapshot stack: states[len-1] describes the current
	// position, states[len-2] the one before the last un-retracted move.
	// It grows by one on every DoMove/DoNullMove and shrinks on undo.
	states []StateInfo
}

// st returns the top of the snapshot stack.
func (p *Position) st() *StateInfo {
	return &p.states[len(p.states)-1]
}

// prev returns the snapshot below the top. Only valid after at least one
// DoMove since the last Set.
func (p *Position) prev() *StateInfo {
	return &p.states[len(p.states)-2]
}

// clear resets the position to an empty board with a fresh state stack.
// The stack keeps its capacity so a reused Position does not reallocate.
func (p *Position) clear() {
	states := p.states[:0]
	if states == nil {
		states = make([]StateInfo, 0, 64)
	}
	*p = Position{states: states}
	for sq := A1; sq <= H8; sq++ {
		p.board[sq] = NoPiece
	}
	for pc := 0; pc < 12; pc++ {
		for i := range p.pieceList[pc] {
			p.pieceList[pc][i] = NoSquare
		}
	}
	for cr := range p.castlingRookSquare {
		p.castlingRookSquare[cr] = NoSquare
	}
}

// Reserve grows the snapshot stack capacity so that at least n further moves
// can be applied without reallocation. Search workers call this once per
// search line.
func (p *Position) Reserve(n int) {
	if need := len(p.states) + n; cap(p.states) < need {
		states := make([]StateInfo, len(p.states), need)
		copy(states, p.states)
		p.states = states
	}
}

// SideToMove returns the color to move.
func (p *Position) SideToMove() Color {
	return p.sideToMove
}

// GamePly returns the number of half-moves played since the initial Set.
func (p *Position) GamePly() int {
	return p.gamePly
}

// IsChess960 reports whether the position uses chess960 castling rules.
func (p *Position) IsChess960() bool {
	return p.chess960
}

// ThisThread returns the opaque handle of the search worker that owns this
// position. The position never dereferences it; collaborators use it to find
// per-thread caches. Lookup only, never used to mutate position state.
func (p *Position) ThisThread() any {
	return p.thread
}

// Key returns the full position hash key.
func (p *Position) Key() uint64 {
	return p.st().Key
}

// PawnKey returns the pawn-structure hash key.
func (p *Position) PawnKey() uint64 {
	return p.st().PawnKey
}

// MaterialKey returns the material-configuration hash key.
func (p *Position) MaterialKey() uint64 {
	return p.st().MaterialKey
}

// Checkers returns the pieces currently giving check.
func (p *Position) Checkers() Bitboard {
	return p.st().Checkers
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	return p.st().Checkers != 0
}

// EpSquare returns the en passant target square, or NoSquare.
func (p *Position) EpSquare() Square {
	return p.st().EnPassant
}

// Rule50Count returns the half-move counter for the fifty-move rule.
func (p *Position) Rule50Count() int {
	return p.st().Rule50
}

// CapturedPiece returns the piece captured by the last applied move, or
// NoPiece.
func (p *Position) CapturedPiece() Piece {
	return p.st().Captured
}

// LastDirty returns the change list of the last applied move.
func (p *Position) LastDirty() *DirtyPiece {
	return &p.st().Dirty
}

// CastlingRights returns the current castling rights bitset.
func (p *Position) CastlingRights() CastlingRights {
	return p.st().CastlingRights
}

// CanCastle returns true if any of the given rights is still available.
func (p *Position) CanCastle(cr CastlingRights) bool {
	return p.st().CastlingRights&cr != 0
}

// CastlingImpeded returns true if any square between king and rook
// destination squares is occupied, blocking the castling move.
func (p *Position) CastlingImpeded(cr CastlingRights) bool {
	return p.occupied&p.castlingPath[cr] != 0
}

// CastlingRookSquare returns the origin square of the rook for the given
// right, or NoSquare if the right was never established.
func (p *Position) CastlingRookSquare(cr CastlingRights) Square {
	return p.castlingRookSquare[cr]
}

// BlockersForKing returns the pieces of either color that shield c's king
// from a sliding attacker; a blocker may not leave its ray without exposing
// the king.
func (p *Position) BlockersForKing(c Color) Bitboard {
	return p.st().BlockersForKing[c]
}

// Pinners returns the sliding pieces of c that pin an enemy piece to the
// enemy king.
func (p *Position) Pinners(c Color) Bitboard {
	return p.st().Pinners[c]
}

// CheckSquares returns the squares from which a piece of the given type
// would check the enemy king.
func (p *Position) CheckSquares(pt PieceType) Bitboard {
	return p.st().CheckSquares[pt]
}

// AllPieces returns the occupancy of both colors.
func (p *Position) AllPieces() Bitboard {
	return p.occupied
}

// ByColor returns all pieces of one color.
func (p *Position) ByColor(c Color) Bitboard {
	return p.byColor[c]
}

// ByType returns all pieces of one type, both colors.
func (p *Position) ByType(pt PieceType) Bitboard {
	return p.byType[pt]
}

// Pieces returns the pieces of one color and type.
func (p *Position) Pieces(c Color, pt PieceType) Bitboard {
	return p.byColor[c] & p.byType[pt]
}

// diagonalSliders returns c's bishops and queens.
func (p *Position) diagonalSliders(c Color) Bitboard {
	return p.byColor[c] & (p.byType[Bishop] | p.byType[Queen])
}

// orthogonalSliders returns c's rooks and queens.
func (p *Position) orthogonalSliders(c Color) Bitboard {
	return p.byColor[c] & (p.byType[Rook] | p.byType[Queen])
}

// PieceOn returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceOn(sq Square) Piece {
	return p.board[sq]
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.board[sq] == NoPiece
}

// MovedPiece returns the piece sitting on the move's origin square.
func (p *Position) MovedPiece(m Move) Piece {
	return p.board[m.From()]
}

// Count returns the number of pieces of one color and type.
func (p *Position) Count(c Color, pt PieceType) int {
	return p.pieceCount[NewPiece(pt, c)]
}

// SquaresOf returns the occupied squares of one color and type, in piece
// list order. The returned slice aliases internal storage and is only valid
// until the next mutation.
func (p *Position) SquaresOf(c Color, pt PieceType) []Square {
	pc := NewPiece(pt, c)
	return p.pieceList[pc][:p.pieceCount[pc]]
}

// SquareOf returns the square of the single piece of one color and type.
// Meant for kings and other singleton pieces.
func (p *Position) SquareOf(c Color, pt PieceType) Square {
	if DebugChecks && p.pieceCount[NewPiece(pt, c)] != 1 {
		panic(fmt.Sprintf("SquareOf(%v, %v): count %d", c, pt, p.pieceCount[NewPiece(pt, c)]))
	}
	return p.pieceList[NewPiece(pt, c)][0]
}

// KingSquare returns the king square of the given color.
func (p *Position) KingSquare(c Color) Square {
	return p.pieceList[NewPiece(King, c)][0]
}

// PSQScore returns the running material-plus-positional score, white
// positive. It always equals the sum of per-piece-square contributions.
func (p *Position) PSQScore() int {
	return p.psq
}

// NonPawnMaterial returns the summed non-pawn material value of one color.
func (p *Position) NonPawnMaterial(c Color) int {
	return p.st().NonPawnMaterial[c]
}

// HasNonPawnMaterial returns true if the side to move has pieces other than
// pawns and king. Used by null-move pruning callers to avoid zugzwang traps.
func (p *Position) HasNonPawnMaterial() bool {
	return p.st().NonPawnMaterial[p.sideToMove] != 0
}

// IsCapture returns true if the move captures a piece. Castling is encoded
// as "king captures own rook" and does not count.
func (p *Position) IsCapture(m Move) bool {
	if m.IsEnPassant() {
		return true
	}
	return !m.IsCastling() && p.board[m.To()] != NoPiece
}

// IsCaptureOrPromotion returns true for captures and promotions.
func (p *Position) IsCaptureOrPromotion(m Move) bool {
	if !m.IsNormal() {
		return !m.IsCastling()
	}
	return p.board[m.To()] != NoPiece
}

// putPiece places a piece on an empty square, updating every redundant view.
func (p *Position) putPiece(pc Piece, sq Square) {
	if DebugChecks && p.board[sq] != NoPiece {
		panic(fmt.Sprintf("putPiece: %v occupied by %v", sq, p.board[sq]))
	}
	b := SquareBB(sq)
	p.board[sq] = pc
	p.byType[pc.Type()] |= b
	p.byColor[pc.Color()] |= b
	p.occupied |= b
	p.index[sq] = uint8(p.pieceCount[pc])
	p.pieceList[pc][p.index[sq]] = sq
	p.pieceCount[pc]++
	p.psq += psqt[pc][sq]
}

// removePiece removes the piece from an occupied square.
//
// WARNING: this is not the inverse of putPiece. The vacated piece list slot
// is filled by swapping in the last entry, so a piece removed and later
// replaced may land in a different slot. UndoMove never replays inverse
// low-level operations; it reconstructs from the snapshot stack instead.
func (p *Position) removePiece(sq Square) Piece {
	pc := p.board[sq]
	if DebugChecks && pc == NoPiece {
		panic(fmt.Sprintf("removePiece: %v is empty", sq))
	}
	b := SquareBB(sq)
	p.byType[pc.Type()] ^= b
	p.byColor[pc.Color()] ^= b
	p.occupied ^= b
	p.board[sq] = NoPiece

	p.pieceCount[pc]--
	last := p.pieceList[pc][p.pieceCount[pc]]
	p.index[last] = p.index[sq]
	p.pieceList[pc][p.index[last]] = last
	p.pieceList[pc][p.pieceCount[pc]] = NoSquare

	p.psq -= psqt[pc][sq]
	return pc
}

// movePiece relocates a piece between two squares without capture handling.
// index[from] is left stale; it is only read through occupied squares.
func (p *Position) movePiece(from, to Square) {
	pc := p.board[from]
	if DebugChecks && (pc == NoPiece || p.board[to] != NoPiece) {
		panic(fmt.Sprintf("movePiece: %v -> %v (%v, %v)", from, to, pc, p.board[to]))
	}
	fromTo := SquareBB(from) | SquareBB(to)
	p.byType[pc.Type()] ^= fromTo
	p.byColor[pc.Color()] ^= fromTo
	p.occupied ^= fromTo
	p.board[from] = NoPiece
	p.board[to] = pc
	p.index[to] = p.index[from]
	p.pieceList[pc][p.index[to]] = to
	p.psq += psqt[pc][to] - psqt[pc][from]
}

// AttackersTo returns all pieces of both colors attacking a square under the
// given occupancy. Occupancy is a parameter rather than the current board so
// exchange evaluation can probe hypothetical occupancies.
func (p *Position) AttackersTo(sq Square, occupied Bitboard) Bitboard {
	return (pawnAttacks[Black][sq] & p.Pieces(White, Pawn)) |
		(pawnAttacks[White][sq] & p.Pieces(Black, Pawn)) |
		(knightAttacks[sq] & p.byType[Knight]) |
		(kingAttacks[sq] & p.byType[King]) |
		(BishopAttacks(sq, occupied) & (p.byType[Bishop] | p.byType[Queen])) |
		(RookAttacks(sq, occupied) & (p.byType[Rook] | p.byType[Queen]))
}

// attackersByColor returns the attackers of one color under the given
// occupancy.
func (p *Position) attackersByColor(sq Square, c Color, occupied Bitboard) Bitboard {
	return p.AttackersTo(sq, occupied) & p.byColor[c]
}

// IsSquareAttacked returns true if the square is attacked by the given color
// under the current occupancy.
func (p *Position) IsSquareAttacked(sq Square, byColor Color) bool {
	return p.attackersByColor(sq, byColor, p.occupied) != 0
}

// SliderBlockers computes, for the sliding pieces in sliders, the pieces of
// either color that are the single interposer between a slider and the given
// square. Sliders whose interposer belongs to the piece on sq's own side are
// additionally reported as pinners.
func (p *Position) SliderBlockers(sliders Bitboard, sq Square) (blockers, pinners Bitboard) {
	snipers := ((RookAttacks(sq, 0) & (p.byType[Rook] | p.byType[Queen])) |
		(BishopAttacks(sq, 0) & (p.byType[Bishop] | p.byType[Queen]))) & sliders
	occupancy := p.occupied ^ snipers

	side := p.board[sq].Color()

	for snipers != 0 {
		sniper := snipers.PopLSB()
		b := Between(sniper, sq) & occupancy
		if b != 0 && !b.MoreThanOne() {
			blockers |= b
			if b&p.byColor[side] != 0 {
				pinners |= SquareBB(sniper)
			}
		}
	}
	return blockers, pinners
}

// setCheckInfo refreshes the check geometry in the given snapshot: pins and
// blockers for both kings, plus the squares from which each piece type would
// check the enemy king. Called after every move since all of it depends on
// the new occupancy.
func (p *Position) setCheckInfo(st *StateInfo) {
	st.BlockersForKing[White], st.Pinners[Black] = p.SliderBlockers(p.byColor[Black], p.KingSquare(White))
	st.BlockersForKing[Black], st.Pinners[White] = p.SliderBlockers(p.byColor[White], p.KingSquare(Black))

	ksq := p.KingSquare(p.sideToMove.Other())
	st.CheckSquares[Pawn] = pawnAttacks[p.sideToMove.Other()][ksq]
	st.CheckSquares[Knight] = knightAttacks[ksq]
	st.CheckSquares[Bishop] = BishopAttacks(ksq, p.occupied)
	st.CheckSquares[Rook] = RookAttacks(ksq, p.occupied)
	st.CheckSquares[Queen] = st.CheckSquares[Bishop] | st.CheckSquares[Rook]
	st.CheckSquares[King] = Empty
}

// setCastlingRight registers one castling right during position setup.
func (p *Position) setCastlingRight(c Color, rookFrom Square) {
	kingFrom := p.KingSquare(c)
	kingSide := rookFrom > kingFrom
	cr := castleRight(c, kingSide)

	p.st().CastlingRights |= cr
	p.castlingRightsMask[kingFrom] |= cr
	p.castlingRightsMask[rookFrom] |= cr
	p.castlingRookSquare[cr] = rookFrom

	var kingTo, rookTo Square
	if kingSide {
		kingTo = RelativeSquare(c, G1)
		rookTo = RelativeSquare(c, F1)
	} else {
		kingTo = RelativeSquare(c, C1)
		rookTo = RelativeSquare(c, D1)
	}

	p.castlingPath[cr] = (Between(rookFrom, rookTo) | Between(kingFrom, kingTo) |
		SquareBB(rookTo) | SquareBB(kingTo)) &^ (SquareBB(kingFrom) | SquareBB(rookFrom))
}

// setState populates a snapshot from scratch: full position key, pawn and
// material keys, non-pawn material and check geometry. Only used at
// initialization and import; the move-apply path maintains all of it
// incrementally.
func (p *Position) setState(st *StateInfo) {
	st.Key = 0
	st.PawnKey = 0
	st.MaterialKey = 0
	st.NonPawnMaterial[White] = 0
	st.NonPawnMaterial[Black] = 0

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			pc := NewPiece(pt, c)
			for i := 0; i < p.pieceCount[pc]; i++ {
				sq := p.pieceList[pc][i]
				st.Key ^= zobristPiece[c][pt][sq]
				if pt == Pawn {
					st.PawnKey ^= zobristPiece[c][Pawn][sq]
				} else if pt != King {
					st.NonPawnMaterial[c] += PieceValue[pt]
				}
				st.MaterialKey ^= zobristPiece[c][pt][i]
			}
		}
	}

	if p.sideToMove == Black {
		st.Key ^= zobristSideToMove
	}
	st.Key ^= zobristCastling[st.CastlingRights]
	if st.EnPassant != NoSquare {
		st.Key ^= zobristEnPassant[st.EnPassant.File()]
	}

	st.Checkers = p.attackersByColor(p.KingSquare(p.sideToMove), p.sideToMove.Other(), p.occupied)
	p.setCheckInfo(st)
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	s := "\n"
	for rank := 7; rank >= 0; rank-- {
		s += fmt.Sprintf("%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.board[NewSquare(file, rank)]
			if piece == NoPiece {
				s += ". "
			} else {
				s += piece.String() + " "
			}
		}
		s += "\n"
	}
	s += "\n   a b c d e f g h\n\n"
	s += fmt.Sprintf("Side to move: %s\n", p.sideToMove)
	s += fmt.Sprintf("Castling: %s\n", p.CastlingRights())
	s += fmt.Sprintf("En passant: %s\n", p.EpSquare())
	s += fmt.Sprintf("Rule50: %d\n", p.Rule50Count())
	s += fmt.Sprintf("Key: %016x\n", p.Key())
	return s
}

// Validate exhaustively cross-checks the redundant board views against each
// other: bitboards against the board array, piece lists against both, and
// the running score and keys against from-scratch recomputation. Intended
// for tests and debug builds; it is far too slow for the search path.
func (p *Position) Validate() error {
	if p.byColor[White]&p.byColor[Black] != 0 {
		return fmt.Errorf("color bitboards overlap")
	}
	if p.byColor[White]|p.byColor[Black] != p.occupied {
		return fmt.Errorf("occupied does not match color bitboards")
	}

	var byTypeUnion Bitboard
	for pt := Pawn; pt <= King; pt++ {
		for pt2 := pt + 1; pt2 <= King; pt2++ {
			if p.byType[pt]&p.byType[pt2] != 0 {
				return fmt.Errorf("type bitboards %v and %v overlap", pt, pt2)
			}
		}
		byTypeUnion |= p.byType[pt]
	}
	if byTypeUnion != p.occupied {
		return fmt.Errorf("occupied does not match type bitboards")
	}

	for sq := A1; sq <= H8; sq++ {
		pc := p.board[sq]
		if pc == NoPiece {
			if p.occupied.IsSet(sq) {
				return fmt.Errorf("square %v empty in board[] but set in occupied", sq)
			}
			continue
		}
		if p.Pieces(pc.Color(), pc.Type())&SquareBB(sq) == 0 {
			return fmt.Errorf("square %v holds %v but bitboards disagree", sq, pc)
		}
		if idx := p.index[sq]; int(idx) >= p.pieceCount[pc] || p.pieceList[pc][idx] != sq {
			return fmt.Errorf("piece list inverse index broken for %v on %v", pc, sq)
		}
	}

	psq := 0
	for pc := WhitePawn; pc <= BlackKing; pc++ {
		if p.pieceCount[pc] != p.Pieces(pc.Color(), pc.Type()).PopCount() {
			return fmt.Errorf("piece count for %v does not match bitboard", pc)
		}
		for i := 0; i < p.pieceCount[pc]; i++ {
			sq := p.pieceList[pc][i]
			if !sq.IsValid() || p.board[sq] != pc {
				return fmt.Errorf("piece list slot %d of %v does not point back", i, pc)
			}
			psq += psqt[pc][sq]
		}
		if p.pieceCount[pc] < len(p.pieceList[pc]) && p.pieceList[pc][p.pieceCount[pc]] != NoSquare {
			return fmt.Errorf("piece list of %v missing sentinel", pc)
		}
	}
	if psq != p.psq {
		return fmt.Errorf("running score %d, recomputed %d", p.psq, psq)
	}

	var fresh StateInfo
	fresh.CastlingRights = p.st().CastlingRights
	fresh.EnPassant = p.st().EnPassant
	p.setState(&fresh)
	if fresh.Key != p.st().Key {
		return fmt.Errorf("position key %x, recomputed %x", p.st().Key, fresh.Key)
	}
	if fresh.PawnKey != p.st().PawnKey {
		return fmt.Errorf("pawn key %x, recomputed %x", p.st().PawnKey, fresh.PawnKey)
	}
	if fresh.MaterialKey != p.st().MaterialKey {
		return fmt.Errorf("material key %x, recomputed %x", p.st().MaterialKey, fresh.MaterialKey)
	}
	if fresh.NonPawnMaterial != p.st().NonPawnMaterial {
		return fmt.Errorf("non-pawn material %v, recomputed %v", p.st().NonPawnMaterial, fresh.NonPawnMaterial)
	}
	return nil
}
