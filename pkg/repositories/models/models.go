package models

import "time"

// Match is one run of a session between a fixed set of players.
type Match struct {
	ID          string     `json:"id"`
	LocalHandle int        `json:"localHandle"`
	NumPlayers  int        `json:"numPlayers"`
	Players     string     `json:"players"`
	StartedAt   time.Time  `json:"startedAt"`
	EndedAt     *time.Time `json:"endedAt,omitempty"`
	LastFrame   int32      `json:"lastFrame"`
}

// DesyncReport records a checksum disagreement with a remote player.
type DesyncReport struct {
	ID             string    `json:"id"`
	MatchID        string    `json:"matchId"`
	Frame          int32     `json:"frame"`
	Handle         int       `json:"handle"`
	LocalChecksum  uint64    `json:"localChecksum"`
	RemoteChecksum uint64    `json:"remoteChecksum"`
	CreatedAt      time.Time `json:"createdAt"`
}
