package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/Lastent/csv-to-course/internal/config"
	"github.com/Lastent/csv-to-course/internal/database"
	"github.com/Lastent/csv-to-course/internal/entities"
	"github.com/Lastent/csv-to-course/internal/runlog"
)

// RunsCommand lists recent generation runs from the run log.
type RunsCommand struct {
	DatabasePath string
	Limit        int

	cfg *config.Config
}

func NewRunsCommand(cfg *config.Config) *RunsCommand {
	return &RunsCommand{cfg: cfg}
}

func (cmd *RunsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the run log database")
	fs.IntVar(&cmd.Limit, "limit", 20, "Maximum number of runs to list")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s runs [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List recent backup generation runs, newest first.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *RunsCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := runlog.NewRepository(db.DB).RecentRuns(cmd.Limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No generation runs recorded yet")
		return nil
	}

	for _, run := range runs {
		status := "ok"
		if run.Status == entities.RunStatusFailed {
			status = "FAILED"
		}
		fmt.Printf("%s  %-6s  %-12s  sections=%d activities=%d skipped=%d  %s\n",
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			status,
			run.CourseShort,
			run.SectionCount,
			run.ActivityCount,
			run.SkippedRows,
			run.StagingPath,
		)
		if run.ErrorMsg != "" {
			fmt.Printf("    error: %s\n", run.ErrorMsg)
		}
	}

	return nil
}
