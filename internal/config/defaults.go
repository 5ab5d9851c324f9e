// Package config handles taskwatch configuration.
package config

const (
	// DefaultTasksFile is the default pending-tasks file name.
	DefaultTasksFile = "tasks.json"
	// DefaultHistoryFile is the default completed-tasks file name.
	DefaultHistoryFile = "completed.json"
	// DefaultLogFile is the default daemon log file name.
	DefaultLogFile = "taskwatch.log"
	// DefaultCheckFrequencySeconds is the default scan period.
	DefaultCheckFrequencySeconds = 20
	// DefaultDueSoonThresholdSeconds is the default due-soon window upper bound.
	DefaultDueSoonThresholdSeconds = 60
	// DefaultCommandTimeoutSeconds is the default embedded-command timeout.
	DefaultCommandTimeoutSeconds = 30

	// ConfigFileName is the name of the config file within the taskwatch directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 1
)
