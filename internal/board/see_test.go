package board

import "testing"

func TestSeeGE(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		move      string
		threshold int
		want      bool
	}{
		{
			"rook takes undefended pawn",
			"1k1r4/1pp4p/p7/4p3/8/P5P1/1PP4P/2K1R3 w - - 0 1",
			"e1e5", 0, true,
		},
		{
			"same capture against a higher bar",
			"1k1r4/1pp4p/p7/4p3/8/P5P1/1PP4P/2K1R3 w - - 0 1",
			"e1e5", PieceValue[Pawn] + 1, false,
		},
		{
			"knight takes pawn, recaptured by knight",
			"1k1r3q/1ppn3p/p4b2/4p3/8/P2N2P1/1PP1R1BP/2K1Q3 w - - 0 1",
			"d3e5", 0, false,
		},
		{
			"queen grabs a pawn-defended pawn",
			"4k3/8/1p6/2p5/8/Q7/8/4K3 w - - 0 1",
			"a3c5", 0, false,
		},
		{
			"equal rook trade",
			"4k3/4r3/8/8/8/8/4R3/4K3 w - - 0 1",
			"e2e7", 0, true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustPosition(t, tc.fen)
			m := mustMove(t, pos, tc.move)
			if got := pos.SeeGE(m, tc.threshold); got != tc.want {
				t.Errorf("SeeGE(%s, %d) = %v, want %v", tc.move, tc.threshold, got, tc.want)
			}
		})
	}
}

func TestSeeExactValues(t *testing.T) {
	tests := []struct {
		fen  string
		move string
		want int
	}{
		// Clean pawn win.
		{"1k1r4/1pp4p/p7/4p3/8/P5P1/1PP4P/2K1R3 w - - 0 1", "e1e5", PieceValue[Pawn]},
		// Knight takes a pawn and is recaptured by the d7 knight.
		{"1k1r3q/1ppn3p/p4b2/4p3/8/P2N2P1/1PP1R1BP/2K1Q3 w - - 0 1", "d3e5",
			PieceValue[Pawn] - PieceValue[Knight]},
		// Even rook trade.
		{"4k3/4r3/8/8/8/8/4R3/4K3 w - - 0 1", "e2e7", 0},
	}

	for _, tc := range tests {
		pos := mustPosition(t, tc.fen)
		m := mustMove(t, pos, tc.move)
		if got := pos.See(m); got != tc.want {
			t.Errorf("See(%s in %q) = %d, want %d", tc.move, tc.fen, got, tc.want)
		}
	}
}

func TestSeePinnedDefenderSitsOut(t *testing.T) {
	// The e5 pawn's only defender is the d7 knight, but the knight is
	// pinned to the d8 king by the d1 rook. It may not recapture, so taking
	// the pawn wins it outright.
	pos := mustPosition(t, "3k4/3n4/8/4p3/8/8/8/3RRK2 w - - 0 1")
	m := mustMove(t, pos, "e1e5")

	if !pos.SeeGE(m, PieceValue[Pawn]) {
		t.Error("pinned knight should not count as a defender")
	}
	if got := pos.See(m); got != PieceValue[Pawn] {
		t.Errorf("See = %d, want %d", got, PieceValue[Pawn])
	}
}

func TestSeeKingCannotRecaptureIntoAttack(t *testing.T) {
	// The e7 king is e6's only defender, but recapturing would step into
	// the e1 rook's line, so the rook keeps the pawn.
	pos := mustPosition(t, "8/4k3/4p3/8/8/8/4R3/4RK2 w - - 0 1")
	m := mustMove(t, pos, "e2e6")
	if !pos.SeeGE(m, PieceValue[Pawn]) {
		t.Error("king may not recapture while e1 still covers e6")
	}
	if got := pos.See(m); got != PieceValue[Pawn] {
		t.Errorf("See = %d, want %d", got, PieceValue[Pawn])
	}

	// Without the backup rook the king recaptures freely and the exchange
	// loses the rook for a pawn.
	pos = mustPosition(t, "8/4k3/4p3/8/8/8/4R3/5K2 w - - 0 1")
	m = mustMove(t, pos, "e2e6")
	if pos.SeeGE(m, 0) {
		t.Error("undefended rook grab should fail the exchange")
	}
	if got := pos.See(m); got != PieceValue[Pawn]-PieceValue[Rook] {
		t.Errorf("See = %d, want %d", got, PieceValue[Pawn]-PieceValue[Rook])
	}
}

func TestSeeNonNormalMovesAreNeutral(t *testing.T) {
	pos := mustPosition(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	castle := NewCastling(E1, H1)
	if !pos.SeeGE(castle, 0) {
		t.Error("castling should pass a zero threshold")
	}
	if pos.SeeGE(castle, 1) {
		t.Error("castling should fail a positive threshold")
	}
}
