package config

import "time"

// UI and display constants
const (
	// Colors
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00E676
	InfoColor    = 0x00B8FF
	WarningColor = 0xFFAA00
	GoldColor    = 0xFFD700
	ReviewColor  = 0x3494DB
	HistoryColor = 0x5B9BFF
	BoardColor   = 0x00B8FF
	QueueColor   = 0xFF4500

	// Board & paging
	BoardCap        = 10
	HistoryPageSize = 10
	ReviewQueueCap  = 25
	LeaderboardSize = 10

	// Dashboard progress bar width
	StatsBarLength = 10
)

// Timings
const (
	DefaultQueryTimeout   = 5 * time.Second
	ReviewRefreshInterval = 30 * time.Second
)
