package board

import "fmt"

// PackedPosition is a fixed 32-byte encoding of a position, suitable as a
// storage or network record. The encoding is a bitstream: side to move, the
// two king squares, then one variable-width field per remaining square
// (1 bit for empty, 5 bits for a piece), then castling rights, en passant
// and the fifty-move counter. The worst legal position needs 213 bits, so
// 32 bytes always suffice; unused trailing bits are zero, making the
// encoding canonical and byte-comparable.
//
// Castling rights are stored as the four standard flags, so chess960
// positions do not round-trip; Pack panics on them under DebugChecks and
// silently drops the rights otherwise.
type PackedPosition [32]byte

type bitWriter struct {
	buf *PackedPosition
	pos int
}

func (w *bitWriter) write(v uint32, bits int) {
	for i := bits - 1; i >= 0; i-- {
		if v&(1<<i) != 0 {
			w.buf[w.pos>>3] |= 1 << (7 - w.pos&7)
		}
		w.pos++
	}
}

type bitReader struct {
	buf *PackedPosition
	pos int
}

func (r *bitReader) read(bits int) uint32 {
	var v uint32
	for i := 0; i < bits; i++ {
		v <<= 1
		if r.buf[r.pos>>3]&(1<<(7-r.pos&7)) != 0 {
			v |= 1
		}
		r.pos++
	}
	return v
}

// Pack encodes the position. The game ply is not part of the record; it is
// reconstruction context the caller keeps alongside, like a database key.
func (p *Position) Pack() PackedPosition {
	if DebugChecks && p.chess960 {
		panic("Pack: chess960 positions are not packable")
	}

	var out PackedPosition
	w := bitWriter{buf: &out}

	w.write(uint32(p.sideToMove), 1)
	wk := p.KingSquare(White)
	bk := p.KingSquare(Black)
	w.write(uint32(wk), 6)
	w.write(uint32(bk), 6)

	for sq := A1; sq <= H8; sq++ {
		if sq == wk || sq == bk {
			continue
		}
		pc := p.board[sq]
		if pc == NoPiece {
			w.write(0, 1)
			continue
		}
		w.write(1, 1)
		w.write(uint32(pc.Type()), 3)
		w.write(uint32(pc.Color()), 1)
	}

	w.write(uint32(p.CastlingRights()&AllCastling), 4)

	if ep := p.EpSquare(); ep != NoSquare {
		w.write(1, 1)
		w.write(uint32(ep), 6)
	} else {
		w.write(0, 1)
	}

	rule50 := p.Rule50Count()
	if rule50 > 127 {
		rule50 = 127
	}
	w.write(uint32(rule50), 7)

	return out
}

// SetFromPacked initializes the position from a packed record. gamePly
// restores the move counter that the record does not carry; pass 0 when
// unknown. The decoded position is fully validated, so corrupt or
// adversarial records fail with an error instead of producing a broken
// board.
func (p *Position) SetFromPacked(data *PackedPosition, gamePly int) error {
	r := bitReader{buf: data}

	p.clear()
	p.states = append(p.states, StateInfo{EnPassant: NoSquare})

	p.sideToMove = Color(r.read(1))
	wk := Square(r.read(6))
	bk := Square(r.read(6))
	if wk == bk {
		p.clear()
		return fmt.Errorf("packed position: kings on the same square %v", wk)
	}
	p.putPiece(WhiteKing, wk)
	p.putPiece(BlackKing, bk)

	for sq := A1; sq <= H8; sq++ {
		if sq == wk || sq == bk {
			continue
		}
		if r.read(1) == 0 {
			continue
		}
		pt := PieceType(r.read(3))
		c := Color(r.read(1))
		if pt > Queen {
			p.clear()
			return fmt.Errorf("packed position: invalid piece type %d on %v", pt, sq)
		}
		if pt == Pawn && (sq.Rank() == 0 || sq.Rank() == 7) {
			p.clear()
			return fmt.Errorf("packed position: pawn on back rank %v", sq)
		}
		pc := NewPiece(pt, c)
		// A corrupt stream can decode into arbitrarily many copies of one
		// piece; stop before the piece list overflows.
		if p.pieceCount[pc] >= len(p.pieceList[pc]) {
			p.clear()
			return fmt.Errorf("packed position: too many %v pieces", pc)
		}
		p.putPiece(pc, sq)
	}

	rights := CastlingRights(r.read(4))
	for _, cr := range [4]CastlingRights{WhiteKingSideCastle, WhiteQueenSideCastle, BlackKingSideCastle, BlackQueenSideCastle} {
		if rights&cr == 0 {
			continue
		}
		side := White
		if cr&BlackCastling != 0 {
			side = Black
		}
		rookSq := RelativeSquare(side, A1)
		if cr&(WhiteKingSideCastle|BlackKingSideCastle) != 0 {
			rookSq = RelativeSquare(side, H1)
		}
		if p.board[rookSq] != NewPiece(Rook, side) || p.KingSquare(side) != RelativeSquare(side, E1) {
			p.clear()
			return fmt.Errorf("packed position: castling right %v without king and rook in place", cr)
		}
		p.setCastlingRight(side, rookSq)
	}

	if r.read(1) == 1 {
		ep := Square(r.read(6))
		us, them := p.sideToMove, p.sideToMove.Other()
		if ep.RelativeRank(us) != 5 ||
			pawnAttacks[them][ep]&p.Pieces(us, Pawn) == 0 ||
			!p.Pieces(them, Pawn).IsSet(ep+PawnPush(them)) ||
			p.occupied.IsSet(ep) || p.occupied.IsSet(ep+PawnPush(us)) {
			p.clear()
			return fmt.Errorf("packed position: unusable en passant square %v", ep)
		}
		p.st().EnPassant = ep
	}

	p.st().Rule50 = int(r.read(7))
	p.gamePly = gamePly

	p.setState(p.st())

	// The side not to move being in check means the record does not encode
	// a reachable position.
	if p.attackersByColor(p.KingSquare(p.sideToMove.Other()), p.sideToMove, p.occupied) != 0 {
		err := fmt.Errorf("packed position: side not to move is in check")
		p.clear()
		return err
	}
	return nil
}
