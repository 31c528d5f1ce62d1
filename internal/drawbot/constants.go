package drawbot

import "time"

// HTTP status code constants.
const (
	StatusOK        = 200
	StatusCreated   = 201
	StatusAccepted  = 202
	StatusNoContent = 204
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	HealthCheckInterval  = 250 * time.Millisecond
	defaultTopN          = 10
	PercentageMultiplier = 100
)

// Outcomes reported by the service.
const (
	outcomeScored      = "scored"
	outcomeNotEnclosed = "not_enclosed"
	statusDuplicate    = "duplicate"
)
