package drawbot

import (
	"time"

	"github.com/okian/circularity/internal/strokegen"
)

// Config holds configuration for a drawbot run
type Config struct {
	BaseURL      string        // Base URL of the service
	Players      int           // Number of simulated players
	Attempts     int           // Strokes drawn per player
	TopN         int           // Number of top entries to fetch
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	EventsRatio  float64       // Share of players drawing with pointer events instead of whole strokes
	Seed         int64         // Seed for stroke generation; 0 picks one from the clock
	Canvas       Canvas        // Canvas every session is created with
	Cleanup      bool          // Delete sessions once verified
	OutputFile   string        // Output file for player results, empty to skip
	LogFile      string        // Log file for run output
	Verbose      bool          // Enable verbose logging
	HealthWait   time.Duration // How long to wait for the service to become healthy
	ResubmitLast bool          // Resubmit every player's last stroke id to exercise idempotency
}

// Canvas is the drawing surface size.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Skill describes how well a simulated player draws.
type Skill string

// Player skills from best to worst.
const (
	SkillElite   Skill = "elite"
	SkillGood    Skill = "good"
	SkillAverage Skill = "average"
	SkillPoor    Skill = "poor"
	SkillMiss    Skill = "miss"
)

// Player is one simulated participant.
type Player struct {
	Name       string  `json:"name"`
	Difficulty string  `json:"difficulty"`
	Skill      Skill   `json:"skill"`
	UseEvents  bool    `json:"use_events"`
	Seed       int64   `json:"seed"`
	SessionID  string  `json:"session_id,omitempty"`
	Best       float64 `json:"best"`
	Scored     int     `json:"scored"`
	Missed     int     `json:"missed"`
	Duplicates int     `json:"duplicates"`
	Failed     int     `json:"failed"`
}

// Session is the subset of the session snapshot the drawbot reads.
type Session struct {
	ID     string          `json:"id"`
	State  string          `json:"state"`
	Center strokegen.Point `json:"center"`
	Best   float64         `json:"best"`
}

// Verdict is a scored attempt as returned by the service.
type Verdict struct {
	Outcome   string  `json:"outcome"`
	Accuracy  float64 `json:"accuracy"`
	TimeBonus float64 `json:"time_bonus"`
	Final     float64 `json:"final_score"`
	HighScore bool    `json:"high_score"`
	Best      float64 `json:"best"`
	Message   string  `json:"message,omitempty"`
	Status    string  `json:"status,omitempty"`
}

// Entry represents a leaderboard entry
type Entry struct {
	Rank      int     `json:"rank"`
	SessionID string  `json:"session_id"`
	Score     float64 `json:"score"`
}

// Stats holds run statistics
type Stats struct {
	PlayersGenerated   int
	SessionsCreated    int
	StrokesSubmitted   int
	StrokesScored      int
	StrokesMissed      int
	StrokesDuplicate   int
	PlayersFailed      int
	RankingsRetrieved  int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
