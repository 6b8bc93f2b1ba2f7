package board

import "testing"

func TestPackRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 3",
		"4k3/8/8/8/8/8/8/4K2R w K - 42 60",
		"8/8/8/8/8/2k5/1q6/K7 w - - 0 1",
	}

	for _, fen := range fens {
		src := mustPosition(t, fen)
		packed := src.Pack()

		var dst Position
		if err := dst.SetFromPacked(&packed, src.GamePly()); err != nil {
			t.Errorf("SetFromPacked(%q): %v", fen, err)
			continue
		}

		if dst.FEN() != fen {
			t.Errorf("round trip of %q produced %q", fen, dst.FEN())
		}
		if dst.Key() != src.Key() {
			t.Errorf("keys differ after round trip of %q", fen)
		}
		if dst.PolyglotHash() != src.PolyglotHash() {
			t.Errorf("polyglot hashes differ after round trip of %q", fen)
		}
		if err := dst.Validate(); err != nil {
			t.Errorf("Validate after unpack of %q: %v", fen, err)
		}
	}
}

func TestPackIsCanonical(t *testing.T) {
	// Two paths to the same position must produce identical records.
	a := NewPosition()
	for _, s := range []string{"g1f3", "g8f6", "b1c3", "b8c6"} {
		doMove(t, a, s)
	}
	b := NewPosition()
	for _, s := range []string{"b1c3", "b8c6", "g1f3", "g8f6"} {
		doMove(t, b, s)
	}

	pa, pb := a.Pack(), b.Pack()
	if pa != pb {
		t.Error("transposed move orders packed differently")
	}
}

func TestUnpackRejectsCorruptRecords(t *testing.T) {
	var zero PackedPosition // kings both on a1

	var pos Position
	if err := pos.SetFromPacked(&zero, 0); err == nil {
		t.Error("accepted record with both kings on the same square")
	}

	// Flip random bits in a valid record; decoding must either succeed with
	// a valid position or fail cleanly, never corrupt the receiver silently.
	src := NewPosition()
	packed := src.Pack()
	for bit := 0; bit < 256; bit += 7 {
		mut := packed
		mut[bit>>3] ^= 1 << (7 - bit&7)

		var p Position
		if err := p.SetFromPacked(&mut, 0); err == nil {
			if verr := p.Validate(); verr != nil {
				t.Errorf("bit %d: decoded position fails validation: %v", bit, verr)
			}
		}
	}
}

func TestUnpackRejectsImpossibleCheck(t *testing.T) {
	// White to move while the black king is already in check.
	src := mustPosition(t, "4k3/4R3/8/8/8/8/8/4K3 b - - 0 1")
	packed := src.Pack()

	// Rewrite the side-to-move bit (bit 0) to White.
	packed[0] &^= 0x80

	var pos Position
	if err := pos.SetFromPacked(&packed, 0); err == nil {
		t.Error("accepted a position where the side not to move is in check")
	}
}

func TestPackRule50Saturation(t *testing.T) {
	pos := mustPosition(t, "4k3/8/8/8/8/8/8/4K2R w K - 99 80")
	packed := pos.Pack()

	var dst Position
	if err := dst.SetFromPacked(&packed, pos.GamePly()); err != nil {
		t.Fatalf("SetFromPacked: %v", err)
	}
	if dst.Rule50Count() != 99 {
		t.Errorf("rule50 = %d, want 99", dst.Rule50Count())
	}
}
