package constants

import "time"

const (
	MinPlacement              = 1
	MaxPlacement              = 16
	KillPointsPerKill         = 1
	DefaultQualificationLimit = 8
)

const (
	WebhookTimeout  = 5 * time.Second
	DatabaseTimeout = 5 * time.Second
	ExportTimeout   = 30 * time.Second
	SinkTimeout     = 10 * time.Second
)

const (
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	DefaultSubscriberBuffer = 32
	EventQueueCapacity      = 64
	WebhookMaxConcurrency   = 8
	EventLogDefaultLimit    = 100
	EventLogMaxLimit        = 1000
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	UndoWarning = "Team statistics were not reverted. Consider resetting tournament for accurate data."
)
