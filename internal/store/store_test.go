package store

import (
	"errors"
	"os"
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := openTestStore(t)

	pos, err := board.NewPositionFromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}

	hash, err := s.Save(pos)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if hash != pos.PolyglotHash() {
		t.Errorf("returned hash %016x, want %016x", hash, pos.PolyglotHash())
	}

	loaded, err := s.Load(hash)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.FEN() != pos.FEN() {
		t.Errorf("loaded FEN %q, want %q", loaded.FEN(), pos.FEN())
	}
	if loaded.Key() != pos.Key() {
		t.Error("loaded position has a different key")
	}
}

func TestLoadMissing(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Load(0xDEADBEEF); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load of missing key: err = %v, want ErrNotFound", err)
	}

	ok, err := s.Has(0xDEADBEEF)
	if err != nil || ok {
		t.Errorf("Has(missing) = %v, %v; want false, nil", ok, err)
	}
}

func TestTranspositionsCollapse(t *testing.T) {
	s := openTestStore(t)

	// Two move orders reaching the same position must share one record.
	a := board.NewPosition()
	b := board.NewPosition()
	for _, line := range [][2]string{{"g1f3", "b1c3"}, {"g8f6", "b8c6"}, {"b1c3", "g1f3"}, {"b8c6", "g8f6"}} {
		ma, err := board.ParseMove(line[0], a)
		if err != nil {
			t.Fatal(err)
		}
		a.DoMove(ma, a.GivesCheck(ma))
		mb, err := board.ParseMove(line[1], b)
		if err != nil {
			t.Fatal(err)
		}
		b.DoMove(mb, b.GivesCheck(mb))
	}

	ha, err := s.Save(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := s.Save(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Errorf("transposed positions saved under different keys: %016x, %016x", ha, hb)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}
}

func TestDeleteAndForEach(t *testing.T) {
	s := openTestStore(t)

	fens := []string{
		board.StartFEN,
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K2R w K - 0 1",
	}
	var hashes []uint64
	for _, fen := range fens {
		pos, err := board.NewPositionFromFEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		h, err := s.Save(pos)
		if err != nil {
			t.Fatal(err)
		}
		hashes = append(hashes, h)
	}

	seen := make(map[uint64]bool)
	err := s.ForEach(func(hash uint64, pos *board.Position) error {
		seen[hash] = true
		if pos.PolyglotHash() != hash {
			t.Errorf("ForEach position hash mismatch for %016x", hash)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if len(seen) != len(fens) {
		t.Errorf("ForEach visited %d records, want %d", len(seen), len(fens))
	}

	if err := s.Delete(hashes[0]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if count, _ := s.Count(); count != len(fens)-1 {
		t.Errorf("Count after delete = %d, want %d", count, len(fens)-1)
	}

	// Deleting twice is a no-op.
	if err := s.Delete(hashes[0]); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir, err := os.MkdirTemp("", "chesscore-store-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(dir)

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	pos := board.NewPosition()
	hash, err := s.Save(pos)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	loaded, err := s.Load(hash)
	if err != nil {
		t.Fatalf("Load after reopen: %v", err)
	}
	if loaded.FEN() != board.StartFEN {
		t.Errorf("loaded FEN %q, want start position", loaded.FEN())
	}
}
