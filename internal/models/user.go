package models

import "github.com/google/uuid"

// User is the cross-match identity resolved at connect time from the
// session token, enriched with profile data from the store.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Profile is the persisted cross-match state read at match join. The
// engine treats it as read-only input; stat writes go through the store.
type Profile struct {
	UserID      uuid.UUID `json:"userId"`
	Currency    int       `json:"currency"`
	OwnedPieces []string  `json:"ownedPieces"`
	GamesPlayed int       `json:"gamesPlayed"`
	GamesWon    int       `json:"gamesWon"`
}

// OwnsPiece reports whether the profile includes a cosmetic piece. The
// default piece is always available.
func (p *Profile) OwnsPiece(pieceID string) bool {
	if pieceID == "" || pieceID == DefaultPieceID {
		return true
	}
	for _, id := range p.OwnedPieces {
		if id == pieceID {
			return true
		}
	}
	return false
}

// DefaultPieceID is the piece every player owns implicitly.
const DefaultPieceID = "classic_hat"
