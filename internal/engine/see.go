package engine

import (
	"dysprosium/internal/board"
	"dysprosium/internal/game"
)

// pieceValue is the material value table SEE and move-ordering's MVV-LVA
// term both index by board.PieceType.
var pieceValue = [6]int{100, 320, 330, 500, 900, 20000}

// maxSwapDepth bounds the capture-exchange sequence SEE simulates; a single
// square cannot have more attackers than this in a legal position.
const maxSwapDepth = 32

// SEE estimates the material result, in centipawns from the mover's
// perspective, of resolving the full capture sequence on m's target
// square: build the attacker/defender set for the square, then repeatedly
// swap in the least valuable attacker of the side to move, maintaining a
// gain stack that is resolved backward to the first capture. The last
// capture pushed always enters that resolution, even when the other side
// has no attacker left to recapture, so an undefended capture scores the
// victim's value minus the capturer's.
//
// Slider attacks are recomputed against the thinned occupancy at every
// step, so a rook, bishop or queen uncovered behind a piece that has
// already captured joins the sequence.
func SEE(g *game.Game, m board.Move) int {
	pos := g.Pos
	from := m.From()
	to := m.To()

	attacker := pos.PieceAt(from)
	if attacker == board.NoPiece {
		return 0
	}

	var gained int
	if m.IsEnPassant() {
		gained = pieceValue[board.Pawn]
	} else {
		victim := pos.PieceAt(to)
		if victim == board.NoPiece {
			return 0
		}
		gained = pieceValue[victim.Type()]
	}
	if m.IsPromotion() {
		gained += pieceValue[m.Promotion()] - pieceValue[board.Pawn]
	}

	return seeSwap(pos, to, from, attacker, gained)
}

func seeSwap(pos *board.Position, target, excludeFrom board.Square, firstAttacker board.Piece, initialGain int) int {
	var gain [maxSwapDepth]int
	d := 0
	gain[d] = initialGain

	occupied := pos.AllOccupied &^ board.SquareBB(excludeFrom)
	attackerValue := pieceValue[firstAttacker.Type()]
	side := firstAttacker.Color().Other()

	for d < maxSwapDepth-1 {
		d++
		gain[d] = attackerValue - gain[d-1]
		if max(-gain[d-1], gain[d]) < 0 {
			break
		}

		sq, piece := leastValuableAttacker(pos, target, side, occupied)
		if sq == board.NoSquare {
			break
		}
		occupied &^= board.SquareBB(sq)
		attackerValue = pieceValue[piece.Type()]
		side = side.Other()
	}

	for ; d > 0; d-- {
		gain[d-1] = -max(-gain[d-1], gain[d])
	}
	return gain[0]
}

// leastValuableAttacker finds the cheapest piece of side attacking target
// given the (possibly already-thinned) occupied bitboard.
func leastValuableAttacker(pos *board.Position, target board.Square, side board.Color, occupied board.Bitboard) (board.Square, board.Piece) {
	if attackers := pos.Pieces[side][board.Pawn] & board.PawnAttacks(target, side.Other()) & occupied; attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.Pawn, side)
	}
	if attackers := pos.Pieces[side][board.Knight] & board.KnightAttacks(target) & occupied; attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.Knight, side)
	}

	bishopAttacks := board.BishopAttacks(target, occupied)
	if attackers := pos.Pieces[side][board.Bishop] & bishopAttacks & occupied; attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.Bishop, side)
	}

	rookAttacks := board.RookAttacks(target, occupied)
	if attackers := pos.Pieces[side][board.Rook] & rookAttacks & occupied; attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.Rook, side)
	}
	if attackers := pos.Pieces[side][board.Queen] & (bishopAttacks | rookAttacks) & occupied; attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.Queen, side)
	}
	if attackers := pos.Pieces[side][board.King] & board.KingAttacks(target) & occupied; attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.King, side)
	}

	return board.NoSquare, board.NoPiece
}
