// Package backup generates a course backup directory tree from parsed
// course CSV rows. One Generator value serves one invocation's worth of
// state at a time; counters and the captured timestamp live on the
// per-invocation generation context, so concurrent runs never interleave.
package backup

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Lastent/csv-to-course/internal/dates"
	"github.com/Lastent/csv-to-course/internal/entities"
	"github.com/Lastent/csv-to-course/internal/parsers"
	"github.com/Lastent/csv-to-course/internal/utils"
)

// Generator produces backup trees. The zero value is not usable; use New.
type Generator struct {
	stagingRoot    string
	now            func() time.Time
	defaultDueTime string
	wwwRoot        string
	siteHash       string
	courseFormat   string
	categoryName   string
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the wall-clock source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithDefaultDueTime sets the time-of-day appended to date-only values.
func WithDefaultDueTime(hhmm string) Option {
	return func(g *Generator) { g.defaultDueTime = hhmm }
}

// WithSiteIdentity sets the wwwroot and site hash stamped into the manifest.
func WithSiteIdentity(wwwRoot, siteHash string) Option {
	return func(g *Generator) {
		g.wwwRoot = wwwRoot
		g.siteHash = siteHash
	}
}

// WithCourseLayout sets the course format and category name.
func WithCourseLayout(format, categoryName string) Option {
	return func(g *Generator) {
		g.courseFormat = format
		g.categoryName = categoryName
	}
}

// New creates a Generator that writes staging trees under stagingRoot.
func New(stagingRoot string, opts ...Option) *Generator {
	g := &Generator{
		stagingRoot:    stagingRoot,
		now:            time.Now,
		defaultDueTime: "23:59",
		wwwRoot:        "https://localhost",
		siteHash:       "csvtocourse",
		courseFormat:   "topics",
		categoryName:   "Miscellaneous",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result summarizes one generation run.
type Result struct {
	StagingPath string
	BackupID    string
	Sections    int
	Activities  int
	Skipped     int
	Warnings    []string
}

// generation is the per-invocation context: counters, the single captured
// timestamp, and the accumulators the document passes fill in.
type generation struct {
	ids      *idAllocator
	now      int64
	nowStr   string
	warnings []string
	skipped  int

	sections     []*section
	sectionByNum map[int]*section
	activities   []manifestActivity
	docs         []document
}

func (gen *generation) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	gen.warnings = append(gen.warnings, msg)
	log.Printf("[generate] warning: %s", msg)
}

// Generate converts rows into a complete backup tree and writes it to a
// freshly created staging directory. It returns the run summary including
// the staging path for the external restore engine to consume; deleting the
// tree afterwards is the caller's job.
func (g *Generator) Generate(rows []parsers.Row, fullName, shortName string) (*Result, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no usable rows", parsers.ErrInvalidFormat)
	}

	nowTime := g.now()
	gen := &generation{
		ids:          newIDAllocator(),
		now:          nowTime.Unix(),
		nowStr:       strconv.FormatInt(nowTime.Unix(), 10),
		sectionByNum: make(map[int]*section),
	}

	courseContextID := gen.ids.NextContext()

	g.collectSections(gen, rows)
	g.buildActivities(gen, rows)

	// Every row may have been dropped by the passes (bad section ids); that
	// is a format failure, not an empty-but-valid course.
	if len(gen.sections) == 0 {
		return nil, fmt.Errorf("%w: no usable rows", parsers.ErrInvalidFormat)
	}

	for _, s := range gen.sections {
		gen.docs = append(gen.docs, buildSection(s, gen.nowStr)...)
	}

	course := courseInput{
		FullName:     fullName,
		ShortName:    shortName,
		ContextID:    courseContextID,
		Format:       g.courseFormat,
		CategoryName: g.categoryName,
	}
	gen.docs = append(gen.docs, buildCourseDocs(course, gen.nowStr)...)

	backupID := uuid.New().String()
	gen.docs = append(gen.docs, buildRootDocs(manifestInput{
		Course:          course,
		BackupID:        backupID,
		WWWRoot:         g.wwwRoot,
		SiteHash:        g.siteHash,
		Activities:      gen.activities,
		Sections:        gen.sections,
		CourseGradeItem: gen.ids.NextGradeItem(),
	}, gen.nowStr)...)

	stagingPath, err := g.writeStaging(gen, shortName, nowTime)
	if err != nil {
		return nil, err
	}

	log.Printf("[generate] wrote %d documents for %d sections and %d activities to %s",
		len(gen.docs), len(gen.sections), len(gen.activities), stagingPath)

	return &Result{
		StagingPath: stagingPath,
		BackupID:    backupID,
		Sections:    len(gen.sections),
		Activities:  len(gen.activities),
		Skipped:     gen.skipped,
		Warnings:    gen.warnings,
	}, nil
}

// collectSections walks all rows once and registers each distinct section
// number in first-seen order. The first row naming a section number also
// names the section; later rows never rename it.
func (g *Generator) collectSections(gen *generation, rows []parsers.Row) {
	for i, row := range rows {
		number, err := strconv.Atoi(row.SectionID)
		if err != nil {
			gen.skipped++
			gen.warnf("row %d: invalid section_id %q, row skipped", i+2, row.SectionID)
			continue
		}
		if _, seen := gen.sectionByNum[number]; seen {
			continue
		}
		s := &section{
			id:     gen.ids.NextSection(),
			number: number,
			name:   row.SectionName,
		}
		gen.sectionByNum[number] = s
		gen.sections = append(gen.sections, s)
	}
}

// buildActivities walks the rows a second time and emits one activity
// document set per recognized activity row, in row order. Rows with a blank
// type declare a section only; rows with an unrecognized type are skipped
// with a warning. Neither aborts the batch.
func (g *Generator) buildActivities(gen *generation, rows []parsers.Row) {
	for i, row := range rows {
		line := i + 2 // header is line 1

		number, err := strconv.Atoi(row.SectionID)
		if err != nil {
			continue // already warned in the section pass
		}
		s := gen.sectionByNum[number]

		if row.ActivityType == "" {
			continue // section declaration only
		}

		activityType, ok := entities.ParseActivityType(row.ActivityType)
		if !ok {
			gen.skipped++
			gen.warnf("row %d: unrecognized activity type %q, row skipped", line, row.ActivityType)
			continue
		}

		start := g.normalizeDate(gen, line, "date_start", row.DateStart)
		end := g.normalizeDate(gen, line, "date_end", row.DateEnd)
		cutoff := g.normalizeDate(gen, line, "date_cutoff", row.DateCutoff)

		in := activityInput{
			Type:          activityType,
			Name:          row.ActivityName,
			Intro:         row.ContentText,
			Source:        row.SourceURLPath,
			Start:         start,
			End:           end,
			Cutoff:        cutoff,
			ModuleID:      gen.ids.NextModule(),
			ActivityID:    gen.ids.NextActivity(),
			ContextID:     gen.ids.NextContext(),
			SectionID:     s.id,
			SectionNumber: s.number,
		}
		if activityType.Gradable() {
			in.Resolved = dates.Resolve(start, end, cutoff, gen.now)
		}

		built := buildActivity(in, gen.ids, gen.nowStr)
		gen.docs = append(gen.docs, built.docs...)
		s.sequence = append(s.sequence, in.ModuleID)
		gen.activities = append(gen.activities, manifestActivity{
			moduleID:  in.ModuleID,
			sectionID: s.id,
			modName:   activityType,
			title:     row.ActivityName,
			directory: built.directory,
		})
	}
}

func (g *Generator) normalizeDate(gen *generation, line int, column, raw string) string {
	value, ok := dates.Normalize(raw, g.defaultDueTime)
	if !ok {
		gen.warnf("row %d: could not parse %s %q, treated as unset", line, column, raw)
	}
	return value
}

// writeStaging creates the uniquely named staging directory and serializes
// every document into it. Nothing is written before this point, so
// format-level failures leave no trace on disk.
func (g *Generator) writeStaging(gen *generation, shortName string, now time.Time) (string, error) {
	if err := os.MkdirAll(g.stagingRoot, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging root %s: %w", g.stagingRoot, err)
	}

	// Timestamp plus random suffix: collision-resistant across concurrent
	// invocations, unlike the process-local counters.
	name := fmt.Sprintf("%s_%d_%s", utils.SanitizeDirName(shortName), now.Unix(), uuid.New().String())
	stagingPath := filepath.Join(g.stagingRoot, name)
	if err := os.Mkdir(stagingPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging directory %s: %w", stagingPath, err)
	}

	for _, doc := range gen.docs {
		data, err := doc.root.render()
		if err != nil {
			return "", err
		}
		target := filepath.Join(stagingPath, filepath.FromSlash(doc.path))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return "", fmt.Errorf("failed to create directory for %s: %w", doc.path, err)
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", doc.path, err)
		}
	}

	return stagingPath, nil
}
