package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Staging
		Database
		Course
		Site
		Cleanup
	}

	Staging struct {
		Root           string
		DefaultDueTime string // HH:MM appended to date-only due dates
	}
	Database struct {
		Path string
	}
	Course struct {
		Format       string // course layout the restore engine applies
		CategoryName string
	}
	Site struct {
		WWWRoot string // original_wwwroot stamped into the manifest
		Hash    string // original site identifier hash
	}
	Cleanup struct {
		Enabled   bool
		Schedule  string        // Cron format: "0 * * * *" = hourly
		Retention time.Duration // staging trees older than this get pruned
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("staging_root", DefaultStagingRoot)
	v.SetDefault("default_due_time", "23:59")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("course_format", "topics")
	v.SetDefault("course_category", "Miscellaneous")
	v.SetDefault("site_wwwroot", "https://localhost")
	v.SetDefault("site_hash", "csvtocourse")
	v.SetDefault("cleanup_enabled", false)
	v.SetDefault("cleanup_schedule", "0 * * * *") // Hourly at :00
	v.SetDefault("cleanup_retention", "24h")

	return &Config{
		Staging: Staging{
			Root:           v.GetString("STAGING_ROOT"),
			DefaultDueTime: v.GetString("DEFAULT_DUE_TIME"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Course: Course{
			Format:       v.GetString("COURSE_FORMAT"),
			CategoryName: v.GetString("COURSE_CATEGORY"),
		},
		Site: Site{
			WWWRoot: v.GetString("SITE_WWWROOT"),
			Hash:    v.GetString("SITE_HASH"),
		},
		Cleanup: Cleanup{
			Enabled:   v.GetBool("CLEANUP_ENABLED"),
			Schedule:  v.GetString("CLEANUP_SCHEDULE"),
			Retention: v.GetDuration("CLEANUP_RETENTION"),
		},
	}
}
