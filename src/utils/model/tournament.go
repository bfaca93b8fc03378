package model

import (
	"database/sql"
	"time"
)

const (
	TableTournaments     = "tournaments"
	TableGameLeaderboard = "game_leaderboard"
)

type Tournament struct {
	ID         int64 `gorm:"primaryKey"`
	Name       string
	RewardLink sql.NullString

	CreatedAt time.Time
}

type GameLeaderboardEntry struct {
	ID             int64 `gorm:"primaryKey"`
	TournamentId   int64
	TelegramUserId int64
	Score          int64

	// Reward row was created for this participant
	RewardCreated bool

	// Flips false -> true exactly once, on confirmed delivery
	NotificationReceived bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Row shape produced by joining the leaderboard with tournaments
// when selecting recipients that still need their reward message.
type RewardNotification struct {
	TelegramUserId int64
	TournamentId   int64
	TournamentName string
	RewardLink     string
}
