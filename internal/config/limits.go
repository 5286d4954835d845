package config

import "time"

const (
	// Chat
	DefaultMaxMessageLength = 500
	DefaultChatHistoryLimit = 100
	HostDisplayName         = "Diane"
	AnonymousVisitorName    = "Anonymous"

	// Dashboard
	DashboardGuestbookLimit = 20
	DashboardVisitLimit     = 10

	// Socket
	DefaultPingTimeout  = 60 * time.Second
	DefaultPingInterval = 25 * time.Second
	DefaultSendBuffer   = 256
	DefaultMaxFrameSize = 4096
	WriteWait           = 10 * time.Second

	// Session
	DefaultSessionLifetime = 7 * 24 * time.Hour
	SessionCookieName      = "ww_session"

	// Puzzles
	WordSearchMinSize     = 8
	WordSearchMaxSize     = 20
	WordSearchDefaultSize = 12
	TriviaMaxAmount       = 50
)

// SudokuCellsToRemove maps a difficulty to the number of cells blanked out.
var SudokuCellsToRemove = map[string]int{
	"easy":   30,
	"medium": 40,
	"hard":   50,
}

// SudokuDefaultCellsToRemove is used for unknown difficulties.
const SudokuDefaultCellsToRemove = 40
