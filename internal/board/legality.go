package board

// Legal decides full legality of a pseudo-legal move without applying it.
// It answers from the precomputed pin geometry plus targeted attack probes,
// so the caller never pays for a speculative DoMove/UndoMove pair.
func (p *Position) Legal(m Move) bool {
	us := p.sideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	ksq := p.KingSquare(us)

	if m.IsEnPassant() {
		// Both the moving pawn and the captured pawn leave their squares,
		// which can expose the king along a rank the pin tables do not see.
		// Probe with the post-capture occupancy.
		capSq := to - PawnPush(us)
		occupied := (p.occupied ^ SquareBB(from) ^ SquareBB(capSq)) | SquareBB(to)
		return p.AttackersTo(ksq, occupied)&p.byColor[them]&^SquareBB(capSq) == 0
	}

	if m.IsCastling() {
		if p.InCheck() {
			return false
		}
		rookFrom := to
		kingTo := RelativeSquare(us, C1)
		if rookFrom > from {
			kingTo = RelativeSquare(us, G1)
		}
		// Every square the king crosses, destination included, must be safe.
		// Walk from the destination back toward the origin so a chess960
		// king already standing on its destination crosses nothing.
		step := Square(1)
		if kingTo > from {
			step = -1
		}
		for sq := kingTo; sq != from; sq += step {
			if p.attackersByColor(sq, them, p.occupied) != 0 {
				return false
			}
		}
		// In chess960 the vacated rook square can open a rook or queen ray
		// onto the king's destination.
		return !p.chess960 ||
			RookAttacks(kingTo, p.occupied^SquareBB(rookFrom))&p.orthogonalSliders(them) == 0
	}

	if from == ksq {
		return p.AttackersTo(to, p.occupied&^SquareBB(from))&p.byColor[them] == 0
	}

	if checkers := p.Checkers(); checkers != 0 {
		// Non-king move under check: only valid against a single checker,
		// by capturing it or interposing on its ray.
		if checkers.MoreThanOne() {
			return false
		}
		checker := checkers.LSB()
		if (Between(checker, ksq)|checkers)&SquareBB(to) == 0 {
			return false
		}
	}

	// A pinned piece may only slide along the pin ray.
	return p.BlockersForKing(us)&SquareBB(from) == 0 || Aligned(from, to, ksq)
}

// PseudoLegal tests whether a move is well-formed in this position: the
// right piece on the origin, a reachable target, evasion constraints obeyed
// when in check. It does not test pins; pair with Legal. The main consumer
// is transposition table move validation, where the move may come from a
// colliding entry and mean anything.
func (p *Position) PseudoLegal(m Move) bool {
	us := p.sideToMove
	from := m.From()
	to := m.To()
	pc := p.board[from]

	// Castling, promotion and en passant carry extra encoded state that is
	// cheaper to validate against the generator than to re-derive.
	if !m.IsNormal() {
		return p.GeneratePseudoLegalMoves().Contains(m)
	}

	if pc == NoPiece || pc.Color() != us {
		return false
	}
	if p.byColor[us].IsSet(to) {
		return false
	}

	if pc.Type() == Pawn {
		// A normal-flagged pawn move can never land on a promotion rank.
		if PromotionRanks.IsSet(to) {
			return false
		}
		push := PawnPush(us)
		switch {
		case pawnAttacks[us][from].IsSet(to):
			if !p.byColor[us.Other()].IsSet(to) {
				return false
			}
		case from+push == to:
			if p.board[to] != NoPiece {
				return false
			}
		case from+2*push == to && from.RelativeRank(us) == 1:
			if p.board[from+push] != NoPiece || p.board[to] != NoPiece {
				return false
			}
		default:
			return false
		}
	} else if !AttacksBB(pc.Type(), from, p.occupied).IsSet(to) {
		return false
	}

	if checkers := p.Checkers(); checkers != 0 {
		if pc.Type() != King {
			if checkers.MoreThanOne() {
				return false
			}
			checker := checkers.LSB()
			if (Between(checker, p.KingSquare(us))|checkers)&SquareBB(to) == 0 {
				return false
			}
		} else if p.AttackersTo(to, p.occupied&^SquareBB(from))&p.byColor[us.Other()] != 0 {
			return false
		}
	}
	return true
}

// GivesCheck tests whether a move checks the enemy king, again without
// applying it. Direct checks come straight from the precomputed check
// squares; discovered checks from the blocker sets.
func (p *Position) GivesCheck(m Move) bool {
	us := p.sideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	ksq := p.KingSquare(them)

	if p.CheckSquares(p.board[from].Type()).IsSet(to) {
		return true
	}

	// Discovered check: the mover shields the enemy king and steps off the
	// shared ray.
	if p.BlockersForKing(them).IsSet(from) && !Aligned(from, to, ksq) {
		return true
	}

	switch m.Flag() {
	case FlagNormal:
		return false

	case FlagPromotion:
		return AttacksBB(m.Promotion(), to, p.occupied^SquareBB(from)).IsSet(ksq)

	case FlagEnPassant:
		// The captured pawn's square opens up too; both removals can reveal
		// a slider.
		capSq := NewSquare(to.File(), from.Rank())
		occupied := (p.occupied ^ SquareBB(from) ^ SquareBB(capSq)) | SquareBB(to)
		return (RookAttacks(ksq, occupied)&p.orthogonalSliders(us))|
			(BishopAttacks(ksq, occupied)&p.diagonalSliders(us)) != 0

	default: // FlagCastling
		rookTo := RelativeSquare(us, D1)
		kingTo := RelativeSquare(us, C1)
		if to > from {
			rookTo = RelativeSquare(us, F1)
			kingTo = RelativeSquare(us, G1)
		}
		occupied := (p.occupied ^ SquareBB(from) ^ SquareBB(to)) | SquareBB(rookTo) | SquareBB(kingTo)
		return RookAttacks(rookTo, occupied).IsSet(ksq)
	}
}

// HasLegalMoves returns true if the side to move has at least one legal
// move.
func (p *Position) HasLegalMoves() bool {
	ml := p.GeneratePseudoLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		if p.Legal(ml.Get(i)) {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the side to move is checkmated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the side to move is stalemated.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}
