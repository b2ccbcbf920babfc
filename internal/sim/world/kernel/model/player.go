package model

import (
	"github.com/google/uuid"

	"realcoins/internal/sim/world/logic/ids"
)

type PlayerID = uuid.UUID

type GameMode string

const (
	Survival GameMode = "SURVIVAL"
	Creative GameMode = "CREATIVE"
)

type Player struct {
	ID        PlayerID
	Name      string
	Online    bool
	Op        bool
	GameMode  GameMode
	Inventory *Inventory
}

func ParsePlayerID(s string) (PlayerID, error) { return uuid.Parse(s) }

func PlayerRef(id PlayerID) string { return ids.PlayerRef(id.String()) }

// SamePlayer treats two nil players as equal and a nil and a non-nil one as different.
func SamePlayer(a, b *PlayerID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
