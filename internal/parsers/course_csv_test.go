package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCourseCSV(t *testing.T) {
	t.Run("parses rows in order", func(t *testing.T) {
		input := "section_id,section_name,activity_type,activity_name,content_text\n" +
			"0,General,label,Welcome,<p>Hi</p>\n" +
			"1,Week 1,assign,Homework,\n"

		rows, err := ParseCourseCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, "0", rows[0].SectionID)
		assert.Equal(t, "General", rows[0].SectionName)
		assert.Equal(t, "label", rows[0].ActivityType)
		assert.Equal(t, "Welcome", rows[0].ActivityName)
		assert.Equal(t, "<p>Hi</p>", rows[0].ContentText)

		assert.Equal(t, "1", rows[1].SectionID)
		assert.Equal(t, "assign", rows[1].ActivityType)
	})

	t.Run("strips BOM from first header field", func(t *testing.T) {
		input := "\uFEFFsection_id,section_name,activity_type,activity_name\n0,General,,\n"

		rows, err := ParseCourseCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "0", rows[0].SectionID)
	})

	t.Run("trims header whitespace", func(t *testing.T) {
		input := " section_id , section_name ,activity_type, activity_name\n0,General,,\n"

		_, err := ParseCourseCSV(strings.NewReader(input))
		assert.NoError(t, err)
	})

	t.Run("short rows are right padded", func(t *testing.T) {
		input := "section_id,section_name,activity_type,activity_name,content_text,source_url_path\n" +
			"0,General,url,Site\n"

		rows, err := ParseCourseCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Site", rows[0].ActivityName)
		assert.Equal(t, "", rows[0].ContentText)
		assert.Equal(t, "", rows[0].SourceURLPath)
	})

	t.Run("extra columns are ignored", func(t *testing.T) {
		input := "section_id,section_name,activity_type,activity_name,mystery\n" +
			"0,General,label,Welcome,whatever\n" +
			"0,General,label,Second,ignored,and-then-some\n"

		rows, err := ParseCourseCSV(strings.NewReader(input))
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("missing required header fails fast", func(t *testing.T) {
		input := "section_id,section_name,activity_type\n0,General,label\n"

		_, err := ParseCourseCSV(strings.NewReader(input))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidFormat)
		assert.Contains(t, err.Error(), "activity_name")
	})

	t.Run("empty file fails", func(t *testing.T) {
		_, err := ParseCourseCSV(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("header only yields zero rows without error", func(t *testing.T) {
		input := "section_id,section_name,activity_type,activity_name\n"

		rows, err := ParseCourseCSV(strings.NewReader(input))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}
