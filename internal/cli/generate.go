package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Lastent/csv-to-course/internal/backup"
	"github.com/Lastent/csv-to-course/internal/config"
	"github.com/Lastent/csv-to-course/internal/database"
	"github.com/Lastent/csv-to-course/internal/parsers"
	"github.com/Lastent/csv-to-course/internal/runlog"
)

// GenerateCommand converts a course CSV into a backup staging tree.
type GenerateCommand struct {
	CSVPath      string
	FullName     string
	ShortName    string
	StagingRoot  string
	DatabasePath string
	DryRun       bool
	Verbose      bool

	cfg *config.Config
}

func NewGenerateCommand(cfg *config.Config) *GenerateCommand {
	return &GenerateCommand{cfg: cfg}
}

func (cmd *GenerateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)

	fs.StringVar(&cmd.CSVPath, "file", "", "Path to the course CSV file (required)")
	fs.StringVar(&cmd.FullName, "fullname", "", "Course full name (required)")
	fs.StringVar(&cmd.ShortName, "shortname", "", "Course short name (required)")
	fs.StringVar(&cmd.StagingRoot, "staging", cmd.cfg.Staging.Root, "Directory to create the staging tree under")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the run log database")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Parse and validate the CSV without writing anything")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s generate -file <csv> -fullname <name> -shortname <name> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate a course backup directory tree from a CSV course description.\n\n")
		fmt.Fprintf(os.Stderr, "The CSV needs a header row with at least: section_id, section_name,\n")
		fmt.Fprintf(os.Stderr, "activity_type, activity_name. Optional columns: content_text,\n")
		fmt.Fprintf(os.Stderr, "source_url_path, date_start, date_end, date_cutoff.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s generate -file course.csv -fullname \"Intro to Go\" -shortname GO101\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s generate -file course.csv -fullname \"Intro to Go\" -shortname GO101 -dry-run\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.CSVPath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	if cmd.FullName == "" {
		return fmt.Errorf("required flag -fullname not provided")
	}
	if cmd.ShortName == "" {
		return fmt.Errorf("required flag -shortname not provided")
	}

	return nil
}

func (cmd *GenerateCommand) Run() error {
	file, err := os.Open(cmd.CSVPath)
	if err != nil {
		return fmt.Errorf("failed to open course CSV: %w", err)
	}
	defer file.Close()

	rows, err := parsers.ParseCourseCSV(file)
	if err != nil {
		return err
	}

	if cmd.Verbose {
		fmt.Printf("Parsed %d rows from %s\n", len(rows), cmd.CSVPath)
	}

	if cmd.DryRun {
		fmt.Printf("DRY RUN: %d rows look usable, nothing written\n", len(rows))
		return nil
	}

	generator := backup.New(cmd.StagingRoot,
		backup.WithDefaultDueTime(cmd.cfg.Staging.DefaultDueTime),
		backup.WithSiteIdentity(cmd.cfg.Site.WWWRoot, cmd.cfg.Site.Hash),
		backup.WithCourseLayout(cmd.cfg.Course.Format, cmd.cfg.Course.CategoryName),
	)

	started := time.Now()
	result, genErr := generator.Generate(rows, cmd.FullName, cmd.ShortName)
	took := time.Since(started)

	// Run log failures are reported but never mask the generation outcome.
	if db, dbErr := database.NewDatabase(cmd.DatabasePath); dbErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: run log unavailable: %v\n", dbErr)
	} else {
		defer db.Close()
		repo := runlog.NewRepository(db.DB)
		var logErr error
		if genErr != nil {
			logErr = repo.RecordFailure(cmd.FullName, cmd.ShortName, genErr, took)
		} else {
			logErr = repo.RecordSuccess(result, cmd.FullName, cmd.ShortName, took)
		}
		if logErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record run: %v\n", logErr)
		}
	}

	if genErr != nil {
		return genErr
	}

	fmt.Printf("Generated backup for %q (%s)\n", cmd.FullName, cmd.ShortName)
	fmt.Printf("  Sections:   %d\n", result.Sections)
	fmt.Printf("  Activities: %d\n", result.Activities)
	if result.Skipped > 0 {
		fmt.Printf("  Skipped:    %d rows\n", result.Skipped)
	}
	if cmd.Verbose {
		for _, w := range result.Warnings {
			fmt.Printf("  Warning: %s\n", w)
		}
	}
	fmt.Printf("Staging location: %s\n", result.StagingPath)

	return nil
}
