package board

// SeeGE tests whether the static exchange evaluation of a move meets the
// given threshold, without computing the exact exchange value. The swap is
// played out on a scratch occupancy: each side answers with its least
// valuable attacker, sliders revealed behind a departing attacker join in,
// and attackers pinned by a still-present pinner sit out. A king may only
// recapture if the opponent has no attacker left to answer.
//
// Castling, promotions and en passant are scored as an even exchange; they
// are rare enough in capture search that modeling them is not worth the
// branches.
func (p *Position) SeeGE(m Move, threshold int) bool {
	if !m.IsNormal() {
		return 0 >= threshold
	}

	from := m.From()
	to := m.To()

	swap := p.board[to].Value() - threshold
	if swap < 0 {
		return false
	}
	swap = p.board[from].Value() - swap
	if swap <= 0 {
		return true
	}

	occupied := p.occupied ^ SquareBB(from) ^ SquareBB(to)
	stm := p.board[from].Color()
	attackers := p.AttackersTo(to, occupied)
	res := 1

	for {
		stm = stm.Other()
		attackers &= occupied

		stmAttackers := attackers & p.byColor[stm]
		if stmAttackers == 0 {
			break
		}
		// An attacker pinned to its own king may not join the exchange
		// while any enemy pinner is still on the board.
		if p.Pinners(stm.Other())&occupied != 0 {
			stmAttackers &^= p.BlockersForKing(stm)
			if stmAttackers == 0 {
				break
			}
		}

		res ^= 1

		if bb := stmAttackers & p.byType[Pawn]; bb != 0 {
			swap = PieceValue[Pawn] - swap
			if swap < res {
				break
			}
			occupied ^= bb.LSBBB()
			attackers |= BishopAttacks(to, occupied) & (p.byType[Bishop] | p.byType[Queen])
		} else if bb := stmAttackers & p.byType[Knight]; bb != 0 {
			swap = PieceValue[Knight] - swap
			if swap < res {
				break
			}
			occupied ^= bb.LSBBB()
		} else if bb := stmAttackers & p.byType[Bishop]; bb != 0 {
			swap = PieceValue[Bishop] - swap
			if swap < res {
				break
			}
			occupied ^= bb.LSBBB()
			attackers |= BishopAttacks(to, occupied) & (p.byType[Bishop] | p.byType[Queen])
		} else if bb := stmAttackers & p.byType[Rook]; bb != 0 {
			swap = PieceValue[Rook] - swap
			if swap < res {
				break
			}
			occupied ^= bb.LSBBB()
			attackers |= RookAttacks(to, occupied) & (p.byType[Rook] | p.byType[Queen])
		} else if bb := stmAttackers & p.byType[Queen]; bb != 0 {
			swap = PieceValue[Queen] - swap
			if swap < res {
				break
			}
			occupied ^= bb.LSBBB()
			attackers |= (BishopAttacks(to, occupied) & (p.byType[Bishop] | p.byType[Queen])) |
				(RookAttacks(to, occupied) & (p.byType[Rook] | p.byType[Queen]))
		} else {
			// Only the king is left. It can capture unless doing so walks
			// into a remaining enemy attacker, which flips the result back.
			if attackers&^p.byColor[stm] != 0 {
				return res^1 != 0
			}
			return res != 0
		}
	}

	return res != 0
}

// See returns the exact static exchange value of a move by binary searching
// SeeGE over the value range. Slower than SeeGE and only used where the
// exact value matters, such as ordering losing captures.
func (p *Position) See(m Move) int {
	lo, hi := -PieceValue[Queen], PieceValue[Queen]
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if p.SeeGE(m, mid) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
