package types

type RunMode string

const (
	// ModeLocal is the mode for running everything locally
	ModeLocal RunMode = "local"
	// ModeServer is the mode for running the service in a deployment
	ModeServer RunMode = "server"
	// ModeScheduler is the mode for running the periodic sweep driver
	ModeScheduler RunMode = "scheduler"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
