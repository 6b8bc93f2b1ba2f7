package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// NewPosition returns a position set up with the standard starting
// placement.
func NewPosition() *Position {
	p := &Position{}
	if err := p.Set(StartFEN, false, nil); err != nil {
		panic(err) // StartFEN is a constant, failure is a programming error
	}
	return p
}

// NewPositionFromFEN parses a FEN string into a fresh position.
func NewPositionFromFEN(fen string) (*Position, error) {
	p := &Position{}
	if err := p.Set(fen, false, nil); err != nil {
		return nil, err
	}
	return p, nil
}

// Set initializes the position from a FEN string, replacing any previous
// content. chess960 enables free-placement castling rules; the castling
// field then also accepts Shredder-FEN file letters (A-H/a-h). thread is the
// opaque owner handle returned by ThisThread.
//
// On error the position is left cleared, not half-parsed.
func (p *Position) Set(fen string, chess960 bool, thread any) error {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return fmt.Errorf("invalid FEN %q: need at least 4 fields, got %d", fen, len(parts))
	}

	p.clear()
	p.chess960 = chess960
	p.thread = thread
	p.states = append(p.states, StateInfo{EnPassant: NoSquare})

	if err := p.parsePlacement(parts[0]); err != nil {
		p.clear()
		return err
	}

	switch parts[1] {
	case "w":
		p.sideToMove = White
	case "b":
		p.sideToMove = Black
	default:
		p.clear()
		return fmt.Errorf("invalid side to move: %s", parts[1])
	}

	if p.pieceCount[WhiteKing] != 1 || p.pieceCount[BlackKing] != 1 {
		p.clear()
		return fmt.Errorf("invalid FEN %q: each side needs exactly one king", fen)
	}

	if err := p.parseCastling(parts[2]); err != nil {
		p.clear()
		return err
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			p.clear()
			return fmt.Errorf("invalid en passant square: %s", parts[3])
		}
		// The square is only kept when the capture is actually pseudo-legal:
		// right rank, a capturing pawn in place, the pushed pawn present and
		// the push path empty. An unusable ep square would pollute the
		// position key.
		us, them := p.sideToMove, p.sideToMove.Other()
		if sq.RelativeRank(us) == 5 &&
			pawnAttacks[them][sq]&p.Pieces(us, Pawn) != 0 &&
			p.Pieces(them, Pawn).IsSet(sq+PawnPush(them)) &&
			!p.occupied.IsSet(sq) && !p.occupied.IsSet(sq+PawnPush(us)) {
			p.st().EnPassant = sq
		}
	}

	rule50 := 0
	fullMove := 1
	if len(parts) > 4 {
		v, err := strconv.Atoi(parts[4])
		if err != nil || v < 0 {
			p.clear()
			return fmt.Errorf("invalid half-move clock: %s", parts[4])
		}
		rule50 = v
	}
	if len(parts) > 5 {
		v, err := strconv.Atoi(parts[5])
		if err != nil || v < 1 {
			p.clear()
			return fmt.Errorf("invalid full-move number: %s", parts[5])
		}
		fullMove = v
	}

	p.st().Rule50 = rule50
	p.gamePly = 2 * (fullMove - 1)
	if p.sideToMove == Black {
		p.gamePly++
	}

	p.setState(p.st())
	return nil
}

func (p *Position) parsePlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("invalid piece placement: need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN lists rank 8 first
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("too many squares in rank %d", rank+1)
			}
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			piece := PieceFromChar(byte(c))
			if piece == NoPiece {
				return fmt.Errorf("invalid piece character: %c", c)
			}
			p.putPiece(piece, NewSquare(file, rank))
			file++
		}
		if file != 8 {
			return fmt.Errorf("invalid number of squares in rank %d: got %d", rank+1, file)
		}
	}
	return nil
}

// parseCastling accepts classic KQkq letters, which locate the outermost
// rook on the king's side, and Shredder-FEN file letters naming the rook
// file directly. Both work for any placement, so chess960 positions load
// with either convention.
func (p *Position) parseCastling(castling string) error {
	if castling == "-" {
		return nil
	}

	for _, c := range castling {
		side := White
		if c >= 'a' && c <= 'z' {
			side = Black
			c -= 'a' - 'A'
		}
		rook := NewPiece(Rook, side)

		var rookSq Square
		switch {
		case c == 'K':
			for rookSq = RelativeSquare(side, H1); p.board[rookSq] != rook; rookSq-- {
				if rookSq.File() == 0 {
					return fmt.Errorf("castling right %c: no rook found", c)
				}
			}
		case c == 'Q':
			for rookSq = RelativeSquare(side, A1); p.board[rookSq] != rook; rookSq++ {
				if rookSq.File() == 7 {
					return fmt.Errorf("castling right %c: no rook found", c)
				}
			}
		case c >= 'A' && c <= 'H':
			rookSq = NewSquare(int(c-'A'), RelativeSquare(side, A1).Rank())
			if p.board[rookSq] != rook {
				return fmt.Errorf("castling right %c: no rook on %v", c, rookSq)
			}
		default:
			return fmt.Errorf("invalid castling character: %c", c)
		}
		p.setCastlingRight(side, rookSq)
	}
	return nil
}

// FullMoveNumber returns the FEN full-move counter.
func (p *Position) FullMoveNumber() int {
	return p.gamePly/2 + 1
}

// FEN returns the FEN representation of the position. For chess960
// positions castling rights are written as Shredder-FEN file letters.
func (p *Position) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.board[NewSquare(file, rank)]
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.sideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	if rights := p.CastlingRights(); rights == NoCastling {
		sb.WriteByte('-')
	} else {
		order := [4]CastlingRights{WhiteKingSideCastle, WhiteQueenSideCastle, BlackKingSideCastle, BlackQueenSideCastle}
		letters := [4]byte{'K', 'Q', 'k', 'q'}
		for i, cr := range order {
			if rights&cr == 0 {
				continue
			}
			if p.chess960 {
				letter := byte('A' + p.castlingRookSquare[cr].File())
				if i >= 2 {
					letter += 'a' - 'A'
				}
				sb.WriteByte(letter)
			} else {
				sb.WriteByte(letters[i])
			}
		}
	}

	sb.WriteByte(' ')
	sb.WriteString(p.EpSquare().String())

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.Rule50Count()))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber()))

	return sb.String()
}
