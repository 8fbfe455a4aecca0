package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileOwnsPiece(t *testing.T) {
	p := &Profile{OwnedPieces: []string{"top_hat", "race_car"}}
	assert.True(t, p.OwnsPiece(DefaultPieceID))
	assert.True(t, p.OwnsPiece(""), "an unset piece falls back to the default")
	assert.True(t, p.OwnsPiece("race_car"))
	assert.False(t, p.OwnsPiece("battleship"))
}

func TestEmptyProfileOwnsOnlyDefault(t *testing.T) {
	p := &Profile{}
	assert.True(t, p.OwnsPiece(DefaultPieceID))
	assert.False(t, p.OwnsPiece("race_car"))
}
