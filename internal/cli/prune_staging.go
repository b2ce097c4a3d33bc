package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Lastent/csv-to-course/internal/config"
	"github.com/Lastent/csv-to-course/internal/scheduler"
)

// PruneStagingCommand removes stale staging trees left behind by callers
// that never cleaned up after the restore engine.
type PruneStagingCommand struct {
	StagingRoot string
	OlderThan   time.Duration
	DryRun      bool

	cfg *config.Config
}

func NewPruneStagingCommand(cfg *config.Config) *PruneStagingCommand {
	return &PruneStagingCommand{cfg: cfg}
}

func (cmd *PruneStagingCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("prune-staging", flag.ExitOnError)

	fs.StringVar(&cmd.StagingRoot, "staging", cmd.cfg.Staging.Root, "Staging root directory to prune")
	fs.DurationVar(&cmd.OlderThan, "older-than", cmd.cfg.Cleanup.Retention, "Remove staging trees older than this duration")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be removed without deleting")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s prune-staging [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete staging directories older than the retention window.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *PruneStagingCommand) Run() error {
	pruned, err := scheduler.PruneStaging(cmd.StagingRoot, cmd.OlderThan, cmd.DryRun)
	if err != nil {
		return err
	}

	verb := "Removed"
	if cmd.DryRun {
		verb = "Would remove"
	}
	fmt.Printf("%s %d staging director(ies) under %s\n", verb, len(pruned), cmd.StagingRoot)

	return nil
}
