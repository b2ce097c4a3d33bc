package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lastent/csv-to-course/internal/dates"
	"github.com/Lastent/csv-to-course/internal/parsers"
)

var testClock = func() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
}

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	return New(t.TempDir(), WithClock(testClock))
}

func readDoc(t *testing.T, stagingPath, relative string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(stagingPath, filepath.FromSlash(relative)))
	require.NoError(t, err, "expected document %s to exist", relative)
	return string(data)
}

func TestGenerate(t *testing.T) {
	t.Run("label and forum in one section", func(t *testing.T) {
		rows := []parsers.Row{
			{SectionID: "0", SectionName: "General", ActivityType: "label", ActivityName: "Welcome", ContentText: "<p>Hi</p>"},
			{SectionID: "0", SectionName: "General", ActivityType: "forum", ActivityName: "Discuss"},
		}

		g := newTestGenerator(t)
		result, err := g.Generate(rows, "Intro to Go", "GO101")
		require.NoError(t, err)

		assert.Equal(t, 1, result.Sections)
		assert.Equal(t, 2, result.Activities)
		assert.Empty(t, result.Warnings)

		sectionDoc := readDoc(t, result.StagingPath, "sections/section_100/section.xml")
		assert.Contains(t, sectionDoc, "<number>0</number>")
		assert.Contains(t, sectionDoc, "<name>General</name>")
		assert.Contains(t, sectionDoc, "<sequence>1,2</sequence>")

		labelDoc := readDoc(t, result.StagingPath, "activities/label_1/label.xml")
		assert.Contains(t, labelDoc, `modulename="label"`)
		assert.Contains(t, labelDoc, "<name>Welcome</name>")
		assert.Contains(t, labelDoc, "<intro>&lt;p&gt;Hi&lt;/p&gt;</intro>")

		forumDoc := readDoc(t, result.StagingPath, "activities/forum_2/forum.xml")
		assert.Contains(t, forumDoc, "<name>Discuss</name>")
		assert.Contains(t, forumDoc, "<type>general</type>")

		manifest := readDoc(t, result.StagingPath, "moodle_backup.xml")
		assert.Contains(t, manifest, "<directory>activities/label_1</directory>")
		assert.Contains(t, manifest, "<directory>activities/forum_2</directory>")
		assert.Contains(t, manifest, "<directory>sections/section_100</directory>")
		assert.Equal(t, 2, strings.Count(manifest, "<modulename>"), "manifest must list exactly the two activities")
		assert.Equal(t, 1, strings.Count(manifest, "<directory>sections/"), "manifest must list exactly one section")
	})

	t.Run("module wrapper agrees with section and type", func(t *testing.T) {
		rows := []parsers.Row{
			{SectionID: "0", SectionName: "General", ActivityType: "label", ActivityName: "Welcome"},
			{SectionID: "3", SectionName: "Week 3", ActivityType: "page", ActivityName: "Notes", ContentText: "body"},
		}

		g := newTestGenerator(t)
		result, err := g.Generate(rows, "Course", "C1")
		require.NoError(t, err)

		moduleDoc := readDoc(t, result.StagingPath, "activities/page_2/module.xml")
		assert.Contains(t, moduleDoc, "<modulename>page</modulename>")
		assert.Contains(t, moduleDoc, "<sectionid>101</sectionid>")
		assert.Contains(t, moduleDoc, "<sectionnumber>3</sectionnumber>")
		assert.Contains(t, moduleDoc, "<showdescription>0</showdescription>")

		labelModule := readDoc(t, result.StagingPath, "activities/label_1/module.xml")
		assert.Contains(t, labelModule, "<showdescription>1</showdescription>", "labels render their text inline")

		pageDoc := readDoc(t, result.StagingPath, "activities/page_2/page.xml")
		assert.Contains(t, pageDoc, "<content>body</content>")
	})

	t.Run("assign cutoff falls back to end date", func(t *testing.T) {
		rows := []parsers.Row{
			{SectionID: "0", SectionName: "General", ActivityType: "assign", ActivityName: "HW",
				DateStart: "2026-03-02", DateEnd: "2026-03-08 23:59", DateCutoff: ""},
		}

		g := newTestGenerator(t)
		result, err := g.Generate(rows, "Course", "C1")
		require.NoError(t, err)

		end, ok := dates.Normalize("2026-03-08 23:59", "23:59")
		require.True(t, ok)
		start, ok := dates.Normalize("2026-03-02", "23:59")
		require.True(t, ok)

		assignDoc := readDoc(t, result.StagingPath, "activities/assign_1/assign.xml")
		assert.Contains(t, assignDoc, fmt.Sprintf("<duedate>%s</duedate>", end))
		assert.Contains(t, assignDoc, fmt.Sprintf("<cutoffdate>%s</cutoffdate>", end), "cutoff must resolve to the end date, not stay unset")
		assert.Contains(t, assignDoc, fmt.Sprintf("<allowsubmissionsfromdate>%s</allowsubmissionsfromdate>", start))
		assert.NotContains(t, assignDoc, "<cutoffdate>0</cutoffdate>")
	})

	t.Run("gradable activities carry grade item and cross reference", func(t *testing.T) {
		rows := []parsers.Row{
			{SectionID: "0", SectionName: "General", ActivityType: "assign", ActivityName: "HW"},
			{SectionID: "0", SectionName: "General", ActivityType: "label", ActivityName: "Note"},
		}

		g := newTestGenerator(t)
		result, err := g.Generate(rows, "Course", "C1")
		require.NoError(t, err)

		grades := readDoc(t, result.StagingPath, "activities/assign_1/grades.xml")
		assert.Contains(t, grades, `<grade_item id="2000">`)
		assert.Contains(t, grades, "<itemmodule>assign</itemmodule>")
		assert.Contains(t, grades, "<iteminstance>1000</iteminstance>")

		inforef := readDoc(t, result.StagingPath, "activities/assign_1/inforef.xml")
		assert.Contains(t, inforef, "<id>2000</id>")

		readDoc(t, result.StagingPath, "activities/assign_1/grading.xml")

		labelGrades := readDoc(t, result.StagingPath, "activities/label_2/grades.xml")
		assert.Contains(t, labelGrades, "<grade_items></grade_items>")
		assert.NotContains(t, labelGrades, "grade_item id")

		labelInforef := readDoc(t, result.StagingPath, "activities/label_2/inforef.xml")
		assert.NotContains(t, labelInforef, "grade_itemref")

		_, err = os.Stat(filepath.Join(result.StagingPath, "activities/label_2/grading.xml"))
		assert.True(t, os.IsNotExist(err), "non-gradable activities have no grading.xml")
	})

	t.Run("unrecognized type is skipped without aborting", func(t *testing.T) {
		rows := []parsers.Row{
			{SectionID: "0", SectionName: "General", ActivityType: "survey", ActivityName: "X"},
			{SectionID: "0", SectionName: "General", ActivityType: "url", ActivityName: "Site", SourceURLPath: "https://example.com"},
		}

		g := newTestGenerator(t)
		result, err := g.Generate(rows, "Course", "C1")
		require.NoError(t, err)

		assert.Equal(t, 1, result.Activities)
		assert.Equal(t, 1, result.Skipped)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "survey")

		// The URL activity still takes the first module id.
		urlDoc := readDoc(t, result.StagingPath, "activities/url_1/url.xml")
		assert.Contains(t, urlDoc, "<externalurl>https://example.com</externalurl>")

		sectionDoc := readDoc(t, result.StagingPath, "sections/section_100/section.xml")
		assert.Contains(t, sectionDoc, "<sequence>1</sequence>")
	})

	t.Run("blank type declares a section without warning", func(t *testing.T) {
		rows := []parsers.Row{
			{SectionID: "1", SectionName: "Week 1"},
			{SectionID: "1", SectionName: "Renamed later", ActivityType: "label", ActivityName: "Note"},
		}

		g := newTestGenerator(t)
		result, err := g.Generate(rows, "Course", "C1")
		require.NoError(t, err)

		assert.Empty(t, result.Warnings)
		assert.Equal(t, 1, result.Sections)

		sectionDoc := readDoc(t, result.StagingPath, "sections/section_100/section.xml")
		assert.Contains(t, sectionDoc, "<name>Week 1</name>", "first row naming a section wins")
	})

	t.Run("one section document per distinct section number", func(t *testing.T) {
		rows := []parsers.Row{
			{SectionID: "2", SectionName: "B", ActivityType: "label", ActivityName: "b1"},
			{SectionID: "0", SectionName: "General", ActivityType: "label", ActivityName: "g1"},
			{SectionID: "2", SectionName: "B again", ActivityType: "label", ActivityName: "b2"},
			{SectionID: "0", SectionName: "General", ActivityType: "label", ActivityName: "g2"},
		}

		g := newTestGenerator(t)
		result, err := g.Generate(rows, "Course", "C1")
		require.NoError(t, err)

		assert.Equal(t, 2, result.Sections)

		entries, err := os.ReadDir(filepath.Join(result.StagingPath, "sections"))
		require.NoError(t, err)
		assert.Len(t, entries, 2)

		// First-seen order: section 2 got the first section id.
		first := readDoc(t, result.StagingPath, "sections/section_100/section.xml")
		assert.Contains(t, first, "<number>2</number>")
		assert.Contains(t, first, "<name>B</name>")
		assert.Contains(t, first, "<sequence>1,3</sequence>")

		second := readDoc(t, result.StagingPath, "sections/section_101/section.xml")
		assert.Contains(t, second, "<number>0</number>")
		assert.Contains(t, second, "<sequence>2,4</sequence>")
	})

	t.Run("manifest settings list every section and activity once", func(t *testing.T) {
		rows := []parsers.Row{
			{SectionID: "0", SectionName: "General", ActivityType: "label", ActivityName: "Welcome"},
			{SectionID: "1", SectionName: "Week 1", ActivityType: "quiz", ActivityName: "Quiz 1"},
		}

		g := newTestGenerator(t)
		result, err := g.Generate(rows, "Course", "C1")
		require.NoError(t, err)

		manifest := readDoc(t, result.StagingPath, "moodle_backup.xml")
		for _, name := range []string{
			"section_100_included", "section_100_userinfo",
			"section_101_included", "section_101_userinfo",
			"label_1_included", "label_1_userinfo",
			"quiz_2_included", "quiz_2_userinfo",
		} {
			assert.Equal(t, 1, strings.Count(manifest, "<name>"+name+"</name>"), "setting %s must appear exactly once", name)
		}
		assert.Contains(t, manifest, "<name>users</name>")
	})

	t.Run("course and root placeholders exist", func(t *testing.T) {
		rows := []parsers.Row{
			{SectionID: "0", SectionName: "General", ActivityType: "label", ActivityName: "Welcome"},
		}

		g := newTestGenerator(t)
		result, err := g.Generate(rows, "Intro to Go", "GO101")
		require.NoError(t, err)

		courseDoc := readDoc(t, result.StagingPath, "course/course.xml")
		assert.Contains(t, courseDoc, "<fullname>Intro to Go</fullname>")
		assert.Contains(t, courseDoc, "<shortname>GO101</shortname>")
		assert.Contains(t, courseDoc, "<format>topics</format>")

		enrolments := readDoc(t, result.StagingPath, "course/enrolments.xml")
		assert.Contains(t, enrolments, "<enrol>manual</enrol>")
		assert.Contains(t, enrolments, "<enrol>guest</enrol>")
		assert.Contains(t, enrolments, "<enrol>self</enrol>")

		for _, relative := range []string{
			"files.xml", "completion.xml", "gradebook.xml", "grade_history.xml",
			"scales.xml", "outcomes.xml", "questions.xml", "groups.xml", "roles.xml",
			"course/roles.xml", "course/inforef.xml", "course/completiondefaults.xml",
		} {
			doc := readDoc(t, result.StagingPath, relative)
			assert.True(t, strings.HasPrefix(doc, "<?xml"), "%s must carry the XML header", relative)
		}

		rolesDoc := readDoc(t, result.StagingPath, "roles.xml")
		assert.Contains(t, rolesDoc, "<shortname>student</shortname>")
	})

	t.Run("unparseable date is unset with one warning", func(t *testing.T) {
		rows := []parsers.Row{
			{SectionID: "0", SectionName: "General", ActivityType: "assign", ActivityName: "HW",
				DateStart: "next tuesday-ish"},
		}

		g := newTestGenerator(t)
		result, err := g.Generate(rows, "Course", "C1")
		require.NoError(t, err, "a bad date must not abort generation")

		assert.Equal(t, 1, result.Activities)
		assert.Equal(t, 0, result.Skipped)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "date_start")
		assert.Contains(t, result.Warnings[0], "next tuesday-ish")

		assignDoc := readDoc(t, result.StagingPath, "activities/assign_1/assign.xml")
		assert.Contains(t, assignDoc, "<allowsubmissionsfromdate>0</allowsubmissionsfromdate>")
	})

	t.Run("no rows is invalid format before any write", func(t *testing.T) {
		staging := t.TempDir()
		g := New(staging, WithClock(testClock))

		_, err := g.Generate(nil, "Course", "C1")
		require.Error(t, err)
		assert.ErrorIs(t, err, parsers.ErrInvalidFormat)

		entries, err := os.ReadDir(staging)
		require.NoError(t, err)
		assert.Empty(t, entries, "nothing may be staged on format errors")
	})

	t.Run("all rows unusable is invalid format before any write", func(t *testing.T) {
		rows := []parsers.Row{
			{SectionID: "abc", SectionName: "General", ActivityType: "label", ActivityName: "Welcome"},
			{SectionID: "", SectionName: "Week 1", ActivityType: "label", ActivityName: "Note"},
		}

		staging := t.TempDir()
		g := New(staging, WithClock(testClock))

		_, err := g.Generate(rows, "Course", "C1")
		require.Error(t, err)
		assert.ErrorIs(t, err, parsers.ErrInvalidFormat)

		entries, err := os.ReadDir(staging)
		require.NoError(t, err)
		assert.Empty(t, entries, "nothing may be staged when every row is dropped")
	})

	t.Run("staging names differ between runs", func(t *testing.T) {
		rows := []parsers.Row{
			{SectionID: "0", SectionName: "General", ActivityType: "label", ActivityName: "Welcome"},
		}

		staging := t.TempDir()
		g := New(staging, WithClock(testClock))

		first, err := g.Generate(rows, "Course", "C1")
		require.NoError(t, err)
		second, err := g.Generate(rows, "Course", "C1")
		require.NoError(t, err)

		assert.NotEqual(t, first.StagingPath, second.StagingPath)
		assert.Contains(t, filepath.Base(first.StagingPath), "C1_")
	})
}
