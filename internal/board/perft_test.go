package board

import "testing"

// Perft node counts are the standard cross-check for move generation and
// move execution: any bug in castling, en passant, pins or promotions shows
// up as a wrong count in at least one of these positions.

func runPerft(t *testing.T, fen string, expected []uint64) {
	t.Helper()
	pos, err := NewPositionFromFEN(fen)
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	for depth, want := range expected {
		got := pos.Perft(depth + 1)
		if got != want {
			t.Errorf("perft(%d) = %d, want %d", depth+1, got, want)
		}
	}

	if err := pos.Validate(); err != nil {
		t.Errorf("position corrupted after perft: %v", err)
	}
}

func TestPerftStartingPosition(t *testing.T) {
	runPerft(t, StartFEN, []uint64{20, 400, 8902, 197281})
}

// The Kiwipete position exercises castling through attacked squares,
// discovered checks and promotions all at once.
func TestPerftKiwipete(t *testing.T) {
	runPerft(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		[]uint64{48, 2039, 97862})
}

// En passant edge cases, including captures that expose the king.
func TestPerftPosition3(t *testing.T) {
	runPerft(t, "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		[]uint64{14, 191, 2812, 43238})
}

// Promotions and underpromotions giving check.
func TestPerftPosition4(t *testing.T) {
	runPerft(t, "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		[]uint64{6, 264, 9467})
}

// A tactical middlegame with pinned pieces and a castling-rights trap.
func TestPerftPosition5(t *testing.T) {
	runPerft(t, "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		[]uint64{44, 1486, 62379})
}

// A horizontally pinned en passant capture must not be generated: taking on
// d3 would expose the a4 king to the h4 rook.
func TestPerftEnPassantPin(t *testing.T) {
	pos, err := NewPositionFromFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if moves.Get(i).IsEnPassant() {
			t.Errorf("En passant move %v should be illegal (horizontal pin)", moves.Get(i))
		}
	}

	runPerft(t, "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1", []uint64{6, 94})
}

func TestPerftDivideSumsToTotal(t *testing.T) {
	pos := NewPosition()
	divide := pos.PerftDivide(3)

	var sum uint64
	for _, nodes := range divide {
		sum += nodes
	}
	if want := pos.Perft(3); sum != want {
		t.Errorf("divide sum = %d, want %d", sum, want)
	}
	if len(divide) != 20 {
		t.Errorf("root move count = %d, want 20", len(divide))
	}
}

func BenchmarkPerft(b *testing.B) {
	pos := NewPosition()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pos.Perft(4)
	}
}
