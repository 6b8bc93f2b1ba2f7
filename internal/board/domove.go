package board

import "fmt"

// SetEvalUpdater attaches an incremental evaluator that is notified with the
// change list of every applied move. Pass nil to detach. The evaluator sees
// Push exactly once per DoMove/DoNullMove and Pop once per undo, in strict
// stack order.
func (p *Position) SetEvalUpdater(ev EvalUpdater) {
	p.eval = ev
}

// DoMove applies a move to the position and pushes a new snapshot. The move
// must be pseudo-legal and legal; feeding an illegal move corrupts the
// position. givesCheck must be the value of p.GivesCheck(m), passed in
// because move loops usually have it already.
func (p *Position) DoMove(m Move, givesCheck bool) {
	if DebugChecks {
		if !p.PseudoLegal(m) || !p.Legal(m) {
			panic(fmt.Sprintf("DoMove: illegal move %v in\n%v", m, p))
		}
		if givesCheck != p.GivesCheck(m) {
			panic(fmt.Sprintf("DoMove: givesCheck mismatch for %v", m))
		}
	}

	// Seed the new snapshot from the current top before appending: the
	// carried fields continue, the computed fields are rebuilt below.
	var st StateInfo
	top := p.st()
	st.PawnKey = top.PawnKey
	st.MaterialKey = top.MaterialKey
	st.NonPawnMaterial = top.NonPawnMaterial
	st.CastlingRights = top.CastlingRights
	st.Rule50 = top.Rule50 + 1
	st.PliesFromNull = top.PliesFromNull + 1
	st.EnPassant = top.EnPassant

	key := top.Key ^ zobristSideToMove

	us := p.sideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	pc := p.board[from]

	var captured Piece
	if m.IsEnPassant() {
		captured = NewPiece(Pawn, them)
	} else {
		captured = p.board[to]
	}

	st.Dirty = DirtyPiece{}

	if m.IsCastling() {
		// Encoded as king takes own rook; "captured" is our rook here.
		kingTo, rookTo := p.doCastling(us, from, to, true, &st.Dirty)
		key ^= zobristPiece[us][King][from] ^ zobristPiece[us][King][kingTo]
		key ^= zobristPiece[us][Rook][to] ^ zobristPiece[us][Rook][rookTo]
		captured = NoPiece
		to = kingTo
	}

	if captured != NoPiece {
		capSq := to
		if captured.Type() == Pawn {
			if m.IsEnPassant() {
				capSq = to - PawnPush(us)
			}
			st.PawnKey ^= zobristPiece[them][Pawn][capSq]
		} else {
			st.NonPawnMaterial[them] -= PieceValue[captured.Type()]
		}
		p.removePiece(capSq)
		st.Dirty.add(captured, capSq, NoSquare)
		key ^= zobristPiece[them][captured.Type()][capSq]
		st.MaterialKey ^= zobristPiece[them][captured.Type()][p.pieceCount[captured]]
		st.Rule50 = 0
	}

	// Clear a stale en passant square from the key before rights handling.
	if st.EnPassant != NoSquare {
		key ^= zobristEnPassant[st.EnPassant.File()]
		st.EnPassant = NoSquare
	}

	if st.CastlingRights != 0 {
		if touched := p.castlingRightsMask[from] | p.castlingRightsMask[to]; st.CastlingRights&touched != 0 {
			key ^= zobristCastling[st.CastlingRights]
			st.CastlingRights &^= touched
			key ^= zobristCastling[st.CastlingRights]
		}
	}

	moverIdx := -1
	if !m.IsCastling() {
		p.movePiece(from, to)
		moverIdx = st.Dirty.Count
		st.Dirty.add(pc, from, to)
		key ^= zobristPiece[us][pc.Type()][from] ^ zobristPiece[us][pc.Type()][to]
	}

	if pc.Type() == Pawn {
		if to^from == 16 {
			// Double push. The en passant square is only recorded when an
			// enemy pawn could pseudo-legally capture there; this keeps the
			// position key free of unusable ep state.
			mid := from + PawnPush(us)
			if pawnAttacks[us][mid]&p.Pieces(them, Pawn) != 0 {
				st.EnPassant = mid
				key ^= zobristEnPassant[mid.File()]
			}
		} else if m.IsPromotion() {
			promo := NewPiece(m.Promotion(), us)
			p.removePiece(to)
			p.putPiece(promo, to)
			// The mover entry becomes "pawn left the board"; the promoted
			// piece appears as a separate entry. Keeps the list at three
			// entries even for a capturing promotion.
			st.Dirty.To[moverIdx] = NoSquare
			st.Dirty.add(promo, NoSquare, to)

			key ^= zobristPiece[us][Pawn][to] ^ zobristPiece[us][promo.Type()][to]
			st.PawnKey ^= zobristPiece[us][Pawn][to]
			st.MaterialKey ^= zobristPiece[us][promo.Type()][p.pieceCount[promo]-1] ^
				zobristPiece[us][Pawn][p.pieceCount[NewPiece(Pawn, us)]]
			st.NonPawnMaterial[us] += PieceValue[promo.Type()]
		}

		st.PawnKey ^= zobristPiece[us][Pawn][from] ^ zobristPiece[us][Pawn][to]
		st.Rule50 = 0
	}

	st.Key = key
	st.Captured = captured

	if givesCheck {
		st.Checkers = p.attackersByColor(p.KingSquare(them), us, p.occupied)
	} else {
		st.Checkers = Empty
	}

	p.sideToMove = them
	p.gamePly++
	p.states = append(p.states, st)
	p.setCheckInfo(p.st())
	p.updateRepetition()

	if p.eval != nil {
		p.eval.Push(&p.st().Dirty)
	}
}

// UndoMove retracts the last applied move. The position is restored exactly,
// except that piece list slot order may differ after capture undo; no
// observable state depends on slot order.
func (p *Position) UndoMove(m Move) {
	us := p.sideToMove.Other()
	p.sideToMove = us
	from := m.From()
	to := m.To()

	if m.IsPromotion() {
		p.removePiece(to)
		p.putPiece(NewPiece(Pawn, us), to)
	}

	if m.IsCastling() {
		p.doCastling(us, from, to, false, nil)
	} else {
		p.movePiece(to, from)
		if captured := p.st().Captured; captured != NoPiece {
			capSq := to
			if m.IsEnPassant() {
				capSq = to - PawnPush(us)
			}
			p.putPiece(captured, capSq)
		}
	}

	p.states = p.states[:len(p.states)-1]
	p.gamePly--

	if p.eval != nil {
		p.eval.Pop()
	}
}

// doCastling moves king and rook for a castling move in either direction.
// from is the king origin, rookFrom the rook origin (the move's "to"
// square). Both pieces are lifted before either lands, the only order that
// is safe when the squares overlap in chess960.
func (p *Position) doCastling(us Color, from, rookFrom Square, apply bool, dp *DirtyPiece) (kingTo, rookTo Square) {
	kingSide := rookFrom > from
	if kingSide {
		kingTo = RelativeSquare(us, G1)
		rookTo = RelativeSquare(us, F1)
	} else {
		kingTo = RelativeSquare(us, C1)
		rookTo = RelativeSquare(us, D1)
	}

	if !apply {
		from, kingTo = kingTo, from
		rookFrom, rookTo = rookTo, rookFrom
	}

	king := NewPiece(King, us)
	rook := NewPiece(Rook, us)
	p.removePiece(from)
	p.removePiece(rookFrom)
	p.putPiece(king, kingTo)
	p.putPiece(rook, rookTo)

	if dp != nil {
		dp.add(king, from, kingTo)
		dp.add(rook, rookFrom, rookTo)
	}
	return kingTo, rookTo
}

// DoNullMove passes the turn without moving a piece. Only the side to move,
// the en passant state and the bookkeeping counters change. Must not be
// called while in check.
func (p *Position) DoNullMove() {
	if DebugChecks && p.InCheck() {
		panic("DoNullMove: side to move is in check")
	}

	st := *p.st()
	st.Key ^= zobristSideToMove
	if st.EnPassant != NoSquare {
		st.Key ^= zobristEnPassant[st.EnPassant.File()]
		st.EnPassant = NoSquare
	}
	st.Rule50++
	st.PliesFromNull = 0
	st.Repetition = 0
	st.Captured = NoPiece
	st.Dirty = DirtyPiece{}

	p.sideToMove = p.sideToMove.Other()
	p.states = append(p.states, st)
	p.setCheckInfo(p.st())

	if p.eval != nil {
		p.eval.Push(&p.st().Dirty)
	}
}

// UndoNullMove retracts a null move.
func (p *Position) UndoNullMove() {
	p.states = p.states[:len(p.states)-1]
	p.sideToMove = p.sideToMove.Other()

	if p.eval != nil {
		p.eval.Pop()
	}
}

// KeyAfter returns the position key the given move would lead to, without
// applying it. Castling, promotion and en passant fall back on the side and
// piece terms only; callers use this for hash prefetching, where a rough key
// for the rare move kinds is acceptable.
func (p *Position) KeyAfter(m Move) uint64 {
	from := m.From()
	to := m.To()
	pc := p.board[from]
	captured := p.board[to]

	key := p.st().Key ^ zobristSideToMove
	if captured != NoPiece {
		key ^= zobristPiece[captured.Color()][captured.Type()][to]
	}
	return key ^ zobristPiece[pc.Color()][pc.Type()][from] ^ zobristPiece[pc.Color()][pc.Type()][to]
}

// updateRepetition computes the repetition distance of the new top snapshot:
// 0 if the position never occurred before, the distance in plies to the
// previous occurrence if it occurred once, negated if it had already
// repeated at that point.
func (p *Position) updateRepetition() {
	st := p.st()
	st.Repetition = 0

	end := st.Rule50
	if st.PliesFromNull < end {
		end = st.PliesFromNull
	}
	if end < 4 {
		return
	}

	idx := len(p.states) - 1 - 2
	for i := 4; i <= end; i += 2 {
		idx -= 2
		if p.states[idx].Key == st.Key {
			if p.states[idx].Repetition != 0 {
				st.Repetition = -i
			} else {
				st.Repetition = i
			}
			return
		}
	}
}

// IsDraw returns true if the position is drawn by the fifty-move rule or by
// repetition. ply is the distance from the search root; a repetition is a
// draw when its earlier occurrence lies inside the current search line, or
// unconditionally when the position has occurred twice before.
func (p *Position) IsDraw(ply int) bool {
	st := p.st()
	if st.Rule50 > 99 && (st.Checkers == 0 || p.HasLegalMoves()) {
		return true
	}
	return st.Repetition != 0 && st.Repetition < ply
}

// HasRepeated returns true if the current position or one of its ancestors
// on the state stack has occurred before.
func (p *Position) HasRepeated() bool {
	idx := len(p.states) - 1
	end := p.st().Rule50
	if p.st().PliesFromNull < end {
		end = p.st().PliesFromNull
	}
	for ; end >= 4; end-- {
		if p.states[idx].Repetition != 0 {
			return true
		}
		idx--
	}
	return false
}
