package cli

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lastent/csv-to-course/internal/config"
	"github.com/Lastent/csv-to-course/internal/database"
	"github.com/Lastent/csv-to-course/internal/runlog"
	"github.com/Lastent/csv-to-course/internal/scheduler"
)

// JanitorCommand runs the cron-driven staging cleanup in the foreground
// until interrupted.
type JanitorCommand struct {
	StagingRoot  string
	DatabasePath string
	Schedule     string
	Retention    time.Duration

	cfg *config.Config
}

func NewJanitorCommand(cfg *config.Config) *JanitorCommand {
	return &JanitorCommand{cfg: cfg}
}

func (cmd *JanitorCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("janitor", flag.ExitOnError)

	fs.StringVar(&cmd.StagingRoot, "staging", cmd.cfg.Staging.Root, "Staging root directory to watch")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the run log database")
	fs.StringVar(&cmd.Schedule, "schedule", cmd.cfg.Cleanup.Schedule, "Cron schedule for cleanup sweeps")
	fs.DurationVar(&cmd.Retention, "retention", cmd.cfg.Cleanup.Retention, "Remove staging trees older than this duration")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s janitor [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Run the staging cleanup scheduler in the foreground.\n")
		fmt.Fprintf(os.Stderr, "Prunes stale staging trees and old run records on the given schedule.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *JanitorCommand) Run() error {
	var runs *runlog.Repository
	if db, err := database.NewDatabase(cmd.DatabasePath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: run log unavailable, pruning staging only: %v\n", err)
	} else {
		defer db.Close()
		runs = runlog.NewRepository(db.DB)
	}

	cleanup := config.Cleanup{
		Enabled:   true,
		Schedule:  cmd.Schedule,
		Retention: cmd.Retention,
	}

	janitor := scheduler.NewStagingCleanupScheduler(cleanup, cmd.StagingRoot, runs)
	if err := janitor.Start(); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	janitor.Stop()
	return nil
}
