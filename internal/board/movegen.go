package board

// GenerateLegalMoves generates all legal moves for the side to move.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := p.GeneratePseudoLegalMoves()
	legal := 0
	for i := 0; i < ml.count; i++ {
		if p.Legal(ml.moves[i]) {
			ml.moves[legal] = ml.moves[i]
			legal++
		}
	}
	ml.count = legal
	return ml
}

// GeneratePseudoLegalMoves generates all pseudo-legal moves. Pseudo-legal
// moves obey piece movement and occupancy but may leave the own king in
// check; filter with Legal.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	us := p.sideToMove
	p.generatePawnMoves(ml, us, false)
	p.generatePieceMoves(ml, us, ^p.byColor[us])
	p.generateCastlingMoves(ml, us)
	return ml
}

// GenerateCaptures generates pseudo-legal captures and queen promotions,
// the moves quiescence search explores.
func (p *Position) GenerateCaptures() *MoveList {
	ml := NewMoveList()
	us := p.sideToMove
	p.generatePawnMoves(ml, us, true)
	p.generatePieceMoves(ml, us, p.byColor[us.Other()])
	return ml
}

// generatePieceMoves emits knight through king moves into squares allowed
// by targets.
func (p *Position) generatePieceMoves(ml *MoveList, us Color, targets Bitboard) {
	occupied := p.occupied

	for pt := Knight; pt <= Queen; pt++ {
		pieces := p.Pieces(us, pt)
		for pieces != 0 {
			from := pieces.PopLSB()
			attacks := AttacksBB(pt, from, occupied) & targets
			for attacks != 0 {
				ml.Add(NewMove(from, attacks.PopLSB()))
			}
		}
	}

	from := p.KingSquare(us)
	attacks := kingAttacks[from] & targets
	for attacks != 0 {
		ml.Add(NewMove(from, attacks.PopLSB()))
	}
}

// generatePawnMoves emits pawn moves setwise: the whole pawn set is shifted
// once per direction and origins are recovered by subtracting the shift
// delta. capturesOnly restricts output to captures, en passant and queen
// promotions.
func (p *Position) generatePawnMoves(ml *MoveList, us Color, capturesOnly bool) {
	pawns := p.Pieces(us, Pawn)
	enemies := p.byColor[us.Other()]
	empty := ^p.occupied
	push := PawnPush(us)

	var push1, push2, attackL, attackR Bitboard
	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
	}

	// After the color split, attackL is always the push-and-west shift and
	// attackR the push-and-east shift, so origin recovery is uniform.
	deltaL := push - 1
	deltaR := push + 1

	if !capturesOnly {
		for b := push1 &^ PromotionRanks; b != 0; {
			to := b.PopLSB()
			ml.Add(NewMove(to-push, to))
		}
		for b := push2; b != 0; {
			to := b.PopLSB()
			ml.Add(NewMove(to-2*push, to))
		}
	}

	for b := attackL &^ PromotionRanks; b != 0; {
		to := b.PopLSB()
		ml.Add(NewMove(to-deltaL, to))
	}
	for b := attackR &^ PromotionRanks; b != 0; {
		to := b.PopLSB()
		ml.Add(NewMove(to-deltaR, to))
	}

	for b := push1 & PromotionRanks; b != 0; {
		to := b.PopLSB()
		addPromotions(ml, to-push, to, capturesOnly)
	}
	for b := attackL & PromotionRanks; b != 0; {
		to := b.PopLSB()
		addPromotions(ml, to-deltaL, to, capturesOnly)
	}
	for b := attackR & PromotionRanks; b != 0; {
		to := b.PopLSB()
		addPromotions(ml, to-deltaR, to, capturesOnly)
	}

	if ep := p.EpSquare(); ep != NoSquare {
		attackers := pawnAttacks[us.Other()][ep] & pawns
		for attackers != 0 {
			ml.Add(NewEnPassant(attackers.PopLSB(), ep))
		}
	}
}

func addPromotions(ml *MoveList, from, to Square, queenOnly bool) {
	ml.Add(NewPromotion(from, to, Queen))
	if queenOnly {
		return
	}
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

// generateCastlingMoves emits the available castling moves as king takes
// own rook. Path emptiness is checked here; king safety is deferred to
// Legal like every other pseudo-legal move.
func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	for _, kingSide := range [2]bool{true, false} {
		cr := castleRight(us, kingSide)
		if !p.CanCastle(cr) || p.CastlingImpeded(cr) {
			continue
		}
		ml.Add(NewCastling(p.KingSquare(us), p.castlingRookSquare[cr]))
	}
}

// Perft counts the leaf nodes of the legal move tree to the given depth.
// The standard cross-check for move generation and move application.
func (p *Position) Perft(depth int) uint64 {
	if depth == 0 {
		return 1
	}
	ml := p.GenerateLegalMoves()
	if depth == 1 {
		return uint64(ml.Len())
	}
	var nodes uint64
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		p.DoMove(m, p.GivesCheck(m))
		nodes += p.Perft(depth - 1)
		p.UndoMove(m)
	}
	return nodes
}

// PerftDivide returns the perft node count behind each root move, keyed by
// the move string. Used to localize generator bugs against a known-good
// engine.
func (p *Position) PerftDivide(depth int) map[string]uint64 {
	out := make(map[string]uint64)
	ml := p.GenerateLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		p.DoMove(m, p.GivesCheck(m))
		out[m.String()] = p.Perft(depth - 1)
		p.UndoMove(m)
	}
	return out
}
