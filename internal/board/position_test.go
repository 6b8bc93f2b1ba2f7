package board

import "testing"

func mustPosition(t *testing.T, fen string) *Position {
	t.Helper()
	pos, err := NewPositionFromFEN(fen)
	if err != nil {
		t.Fatalf("Failed to parse FEN %q: %v", fen, err)
	}
	return pos
}

func mustMove(t *testing.T, pos *Position, s string) Move {
	t.Helper()
	m, err := ParseMove(s, pos)
	if err != nil {
		t.Fatalf("Failed to parse move %q: %v", s, err)
	}
	if !pos.PseudoLegal(m) || !pos.Legal(m) {
		t.Fatalf("Move %q is not legal in %s", s, pos.FEN())
	}
	return m
}

func doMove(t *testing.T, pos *Position, s string) Move {
	t.Helper()
	m := mustMove(t, pos, s)
	pos.DoMove(m, pos.GivesCheck(m))
	return m
}

func TestStartingPosition(t *testing.T) {
	pos := NewPosition()

	if pos.SideToMove() != White {
		t.Errorf("side to move = %v, want White", pos.SideToMove())
	}
	if pos.KingSquare(White) != E1 || pos.KingSquare(Black) != E8 {
		t.Errorf("kings on %v and %v, want e1 and e8", pos.KingSquare(White), pos.KingSquare(Black))
	}
	if pos.Count(White, Pawn) != 8 || pos.Count(Black, Pawn) != 8 {
		t.Error("expected 8 pawns per side")
	}
	if pos.CastlingRights() != AllCastling {
		t.Errorf("castling rights = %v, want KQkq", pos.CastlingRights())
	}
	if pos.NonPawnMaterial(White) != pos.NonPawnMaterial(Black) {
		t.Error("non-pawn material should be symmetric")
	}
	if pos.PSQScore() != 0 {
		t.Errorf("start position score = %d, want 0", pos.PSQScore())
	}
	if err := pos.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDoUndoRestoresPosition(t *testing.T) {
	pos := NewPosition()
	fen := pos.FEN()
	key := pos.Key()
	pawnKey := pos.PawnKey()
	materialKey := pos.MaterialKey()
	score := pos.PSQScore()

	// A line touching every move kind: double push, capture, castling,
	// en passant and promotion (via a longer tail).
	line := []string{"e2e4", "d7d5", "e4d5", "g8f6", "g1f3", "f6d5", "f1c4", "e7e6", "e1g1", "f8e7"}

	var moves []Move
	for _, s := range line {
		moves = append(moves, doMove(t, pos, s))
	}
	if err := pos.Validate(); err != nil {
		t.Fatalf("Validate after line: %v", err)
	}

	for i := len(moves) - 1; i >= 0; i-- {
		pos.UndoMove(moves[i])
	}

	if got := pos.FEN(); got != fen {
		t.Errorf("FEN after undo = %q, want %q", got, fen)
	}
	if pos.Key() != key || pos.PawnKey() != pawnKey || pos.MaterialKey() != materialKey {
		t.Error("hash keys not restored after undo")
	}
	if pos.PSQScore() != score {
		t.Errorf("score after undo = %d, want %d", pos.PSQScore(), score)
	}
	if err := pos.Validate(); err != nil {
		t.Errorf("Validate after undo: %v", err)
	}
}

func TestEnPassantOnlyWhenCapturable(t *testing.T) {
	// No black pawn can reach e3, so the double push records no ep square.
	pos := NewPosition()
	doMove(t, pos, "e2e4")
	if pos.EpSquare() != NoSquare {
		t.Errorf("ep square = %v, want none", pos.EpSquare())
	}

	// With a black pawn on d4 the same push is capturable.
	pos = mustPosition(t, "rnbqkbnr/ppp1pppp/8/8/3p4/8/PPPPPPPP/RNBQKBNR w KQkq - 0 3")
	doMove(t, pos, "e2e4")
	if pos.EpSquare() != E3 {
		t.Errorf("ep square = %v, want e3", pos.EpSquare())
	}

	// The ep square must vanish after the reply.
	doMove(t, pos, "g8f6")
	if pos.EpSquare() != NoSquare {
		t.Errorf("ep square after reply = %v, want none", pos.EpSquare())
	}
}

func TestEnPassantCapture(t *testing.T) {
	pos := mustPosition(t, "rnbqkbnr/ppp1pppp/8/8/3p4/8/PPPPPPPP/RNBQKBNR w KQkq - 0 3")
	doMove(t, pos, "e2e4")

	m := mustMove(t, pos, "d4e3")
	if !m.IsEnPassant() {
		t.Fatal("d4e3 should parse as en passant")
	}
	pos.DoMove(m, pos.GivesCheck(m))

	if pos.PieceOn(E4) != NoPiece {
		t.Error("captured pawn still on e4")
	}
	if pos.PieceOn(E3) != BlackPawn {
		t.Error("capturing pawn not on e3")
	}
	if pos.CapturedPiece() != WhitePawn {
		t.Errorf("captured piece = %v, want white pawn", pos.CapturedPiece())
	}
	if err := pos.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	pos.UndoMove(m)
	if pos.PieceOn(E4) != WhitePawn || pos.PieceOn(D4) != BlackPawn {
		t.Error("en passant undo did not restore both pawns")
	}
}

func TestCastlingRightsRevocation(t *testing.T) {
	pos := mustPosition(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")

	// Moving the h1 rook drops only white's kingside right.
	m := doMove(t, pos, "h1g1")
	if pos.CastlingRights() != WhiteQueenSideCastle|BlackCastling {
		t.Errorf("rights = %v, want Qkq", pos.CastlingRights())
	}
	pos.UndoMove(m)
	if pos.CastlingRights() != AllCastling {
		t.Errorf("rights after undo = %v, want KQkq", pos.CastlingRights())
	}

	// Moving the king drops both.
	m = doMove(t, pos, "e1d1")
	if pos.CastlingRights() != BlackCastling {
		t.Errorf("rights = %v, want kq", pos.CastlingRights())
	}
	pos.UndoMove(m)

	// Capturing a8 drops black's queenside right.
	doMove(t, pos, "a1a8")
	if pos.CastlingRights() != WhiteKingSideCastle|BlackKingSideCastle {
		t.Errorf("rights = %v, want Kk", pos.CastlingRights())
	}
}

func TestCastlingExecution(t *testing.T) {
	pos := mustPosition(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")

	m := mustMove(t, pos, "e1g1")
	if !m.IsCastling() || m.To() != H1 {
		t.Fatalf("e1g1 should encode as king takes h1 rook, got %v to %v", m, m.To())
	}
	pos.DoMove(m, pos.GivesCheck(m))

	if pos.PieceOn(G1) != WhiteKing || pos.PieceOn(F1) != WhiteRook {
		t.Error("kingside castling did not place king on g1 and rook on f1")
	}
	if pos.CanCastle(WhiteCastling) {
		t.Error("white retains castling rights after castling")
	}
	if err := pos.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	pos.UndoMove(m)
	if pos.PieceOn(E1) != WhiteKing || pos.PieceOn(H1) != WhiteRook {
		t.Error("castling undo did not restore king and rook")
	}

	m = mustMove(t, pos, "e1c1")
	pos.DoMove(m, pos.GivesCheck(m))
	if pos.PieceOn(C1) != WhiteKing || pos.PieceOn(D1) != WhiteRook {
		t.Error("queenside castling did not place king on c1 and rook on d1")
	}
}

func TestCastlingKeyMatchesRecomputation(t *testing.T) {
	// The incremental key must include both the king and the rook deltas;
	// a fresh parse of the resulting FEN recomputes the key from scratch.
	for _, mv := range []string{"e1g1", "e1c1"} {
		pos := mustPosition(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
		m := mustMove(t, pos, mv)
		pos.DoMove(m, pos.GivesCheck(m))

		fresh := mustPosition(t, pos.FEN())
		if pos.Key() != fresh.Key() {
			t.Errorf("after %s: incremental key %016x, recomputed %016x", mv, pos.Key(), fresh.Key())
		}
		if err := pos.Validate(); err != nil {
			t.Errorf("after %s: %v", mv, err)
		}
	}
}

func TestCastlingBlockedThroughCheck(t *testing.T) {
	// The black rook on f8 covers f1; kingside castling is illegal,
	// queenside is fine.
	pos := mustPosition(t, "5rk1/8/8/8/8/8/8/R3K2R w KQ - 0 1")

	kingside := NewCastling(E1, H1)
	queenside := NewCastling(E1, A1)
	if pos.Legal(kingside) {
		t.Error("castling through an attacked square should be illegal")
	}
	if !pos.Legal(queenside) {
		t.Error("queenside castling should be legal")
	}
}

func TestPromotion(t *testing.T) {
	pos := mustPosition(t, "8/P6k/8/8/8/8/8/K7 w - - 0 1")

	m := mustMove(t, pos, "a7a8q")
	pos.DoMove(m, pos.GivesCheck(m))

	if pos.PieceOn(A8) != WhiteQueen {
		t.Errorf("piece on a8 = %v, want white queen", pos.PieceOn(A8))
	}
	if pos.Count(White, Pawn) != 0 || pos.Count(White, Queen) != 1 {
		t.Error("piece counts not updated by promotion")
	}
	if pos.NonPawnMaterial(White) != PieceValue[Queen] {
		t.Errorf("non-pawn material = %d, want %d", pos.NonPawnMaterial(White), PieceValue[Queen])
	}
	if err := pos.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	pos.UndoMove(m)
	if pos.PieceOn(A7) != WhitePawn || pos.Count(White, Queen) != 0 {
		t.Error("promotion undo did not restore the pawn")
	}
}

func TestAttackersTo(t *testing.T) {
	pos := mustPosition(t, "3r2k1/8/8/8/3R4/8/8/3K4 w - - 0 1")

	attackers := pos.AttackersTo(D4, pos.AllPieces())
	if !attackers.IsSet(D8) {
		t.Error("d8 rook should attack d4")
	}
	if attackers.IsSet(D1) {
		t.Error("d1 king is not adjacent to d4")
	}

	// With the d4 rook lifted, d8 and d1 see each other's squares.
	attackers = pos.AttackersTo(D2, pos.AllPieces()&^SquareBB(D4))
	if !attackers.IsSet(D8) || !attackers.IsSet(D1) {
		t.Errorf("attackers to d2 without d4 rook = %v, want d8 and d1", attackers)
	}
}

func TestSliderBlockers(t *testing.T) {
	// The d4 rook is the lone interposer between the d8 rook and the d1
	// king, so it is pinned.
	pos := mustPosition(t, "3r2k1/8/8/8/3R4/8/8/3K4 w - - 0 1")

	if !pos.BlockersForKing(White).IsSet(D4) {
		t.Error("d4 rook should be a blocker for the white king")
	}
	if !pos.Pinners(Black).IsSet(D8) {
		t.Error("d8 rook should be a pinner")
	}

	// The pinned rook may slide along the pin ray but not leave it.
	if !pos.Legal(NewMove(D4, D6)) {
		t.Error("moving along the pin ray should be legal")
	}
	if pos.Legal(NewMove(D4, E4)) {
		t.Error("leaving the pin ray should be illegal")
	}
}

func TestCheckersAndEvasions(t *testing.T) {
	pos := mustPosition(t, "4k3/8/8/8/4r3/8/8/4K3 w - - 0 1")

	if !pos.InCheck() {
		t.Fatal("white should be in check from the e4 rook")
	}
	if !pos.Checkers().IsSet(E4) {
		t.Errorf("checkers = %v, want e4", pos.Checkers())
	}

	// The king must leave the e-file; stepping to e2 stays in the rook's
	// line even though e2 looks shielded by the king itself.
	if pos.Legal(NewMove(E1, E2)) {
		t.Error("e1e2 keeps the king on the checking file")
	}
	if got := pos.GenerateLegalMoves().Len(); got != 4 {
		t.Errorf("legal moves = %d, want 4 (d1, d2, f1, f2)", got)
	}
}

func TestGivesCheck(t *testing.T) {
	tests := []struct {
		fen   string
		move  string
		check bool
	}{
		{StartFEN, "e2e4", false},
		// Direct rook check.
		{"4k3/8/8/8/8/8/8/R3K3 w - - 0 1", "a1a8", true},
		// Discovered check: the knight steps off the rook's e-file ray.
		{"4k3/8/8/8/4N3/8/8/4RK2 w - - 0 1", "e4d6", true},
		// Promotion: the new queen's attacks decide.
		{"8/P7/4k3/8/8/8/8/4K3 w - - 0 1", "a7a8q", false},
		{"k7/4P3/8/8/8/8/8/4K3 w - - 0 1", "e7e8q", true},
	}

	for _, tc := range tests {
		pos := mustPosition(t, tc.fen)
		m := mustMove(t, pos, tc.move)
		if got := pos.GivesCheck(m); got != tc.check {
			t.Errorf("%s in %q: GivesCheck = %v, want %v", tc.move, tc.fen, got, tc.check)
		}

		// GivesCheck must agree with the actual post-move check state.
		pos.DoMove(m, pos.GivesCheck(m))
		if pos.InCheck() != tc.check {
			t.Errorf("%s in %q: InCheck after move = %v, want %v", tc.move, tc.fen, pos.InCheck(), tc.check)
		}
	}
}

func TestPseudoLegalRejectsGarbage(t *testing.T) {
	pos := NewPosition()

	bad := []Move{
		NewMove(E4, E5),  // empty origin
		NewMove(E7, E5),  // enemy piece
		NewMove(E2, E5),  // pawn triple push
		NewMove(G1, G3),  // knight moving like a rook
		NewMove(E2, D3),  // pawn capture into empty square
		NewMove(A1, A2),  // rook onto own pawn
		NewMove(E2, E2),  // null-ish
	}
	for _, m := range bad {
		if pos.PseudoLegal(m) {
			t.Errorf("PseudoLegal accepted %v", m)
		}
	}

	good := []Move{NewMove(E2, E4), NewMove(G1, F3), NewMove(B1, C3)}
	for _, m := range good {
		if !pos.PseudoLegal(m) {
			t.Errorf("PseudoLegal rejected %v", m)
		}
	}
}

func TestCheckmateAndStalemate(t *testing.T) {
	mate := mustPosition(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if !mate.IsCheckmate() {
		t.Error("back rank position should be checkmate")
	}

	escape := mustPosition(t, "6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	if escape.IsCheckmate() {
		t.Error("king can capture the rook, not checkmate")
	}

	stale := mustPosition(t, "k7/8/1Q6/8/8/8/8/K7 b - - 0 1")
	if !stale.IsStalemate() {
		t.Error("cornered king with no moves should be stalemate")
	}
}

func TestSetEvalUpdater(t *testing.T) {
	pos := NewPosition()

	var pushes, pops int
	var lastCount int
	pos.SetEvalUpdater(&recordingUpdater{
		onPush: func(dp *DirtyPiece) { pushes++; lastCount = dp.Count },
		onPop:  func() { pops++ },
	})

	m := doMove(t, pos, "e2e4")
	if pushes != 1 || lastCount != 1 {
		t.Errorf("pushes = %d, dirty count = %d; want 1 and 1", pushes, lastCount)
	}

	pos.DoNullMove()
	if pushes != 2 || lastCount != 0 {
		t.Errorf("null move should push an empty change list, got count %d", lastCount)
	}
	pos.UndoNullMove()
	pos.UndoMove(m)
	if pops != 2 {
		t.Errorf("pops = %d, want 2", pops)
	}
}

type recordingUpdater struct {
	onPush func(*DirtyPiece)
	onPop  func()
}

func (r *recordingUpdater) Push(dp *DirtyPiece) { r.onPush(dp) }
func (r *recordingUpdater) Pop()                { r.onPop() }

func TestDirtyPieceContents(t *testing.T) {
	pos := mustPosition(t, "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2")
	doMove(t, pos, "e4d5")

	dp := pos.LastDirty()
	if dp.Count != 2 {
		t.Fatalf("dirty count = %d, want 2 for a capture", dp.Count)
	}
	// Captured piece leaves the board, mover relocates.
	if dp.Piece[0] != BlackPawn || dp.To[0] != NoSquare {
		t.Errorf("first entry should be the captured pawn leaving, got %v to %v", dp.Piece[0], dp.To[0])
	}
	if dp.Piece[1] != WhitePawn || dp.From[1] != E4 || dp.To[1] != D5 {
		t.Errorf("second entry should be the mover e4d5, got %v %v-%v", dp.Piece[1], dp.From[1], dp.To[1])
	}
}

func TestCapturingPromotionDirty(t *testing.T) {
	pos := mustPosition(t, "1n2k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	m := mustMove(t, pos, "a7b8q")
	pos.DoMove(m, pos.GivesCheck(m))

	dp := pos.LastDirty()
	if dp.Count != 3 {
		t.Fatalf("dirty count = %d, want 3 for a capturing promotion", dp.Count)
	}
	pos.UndoMove(m)
	if err := pos.Validate(); err != nil {
		t.Errorf("Validate after undo: %v", err)
	}
}
