package config

const (
	// DefaultDatabasePath is the default path for the run log database
	DefaultDatabasePath = "./csv-to-course.db"

	// DefaultStagingRoot is where generated backup trees are staged before
	// the restore engine consumes them
	DefaultStagingRoot = "./staging"
)
