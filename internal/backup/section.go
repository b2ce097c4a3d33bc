package backup

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// section is one distinct section accumulated from the input rows. The
// sequence lists module ids in the order their rows appeared.
type section struct {
	id       int
	number   int
	name     string
	sequence []int
}

func (s *section) directory() string {
	return path.Join("sections", fmt.Sprintf("section_%d", s.id))
}

func (s *section) sequenceList() string {
	parts := make([]string, 0, len(s.sequence))
	for _, moduleID := range s.sequence {
		parts = append(parts, strconv.Itoa(moduleID))
	}
	return strings.Join(parts, ",")
}

// buildSection emits the section descriptor and its inforef placeholder.
func buildSection(s *section, now string) []document {
	descriptor := node("section").
		attrInt("id", s.id).
		add(
			leafInt("number", s.number),
			leaf("name", s.name),
			leaf("summary", ""),
			leaf("summaryformat", "1"),
			leaf("sequence", s.sequenceList()),
			leaf("visible", "1"),
			nullLeaf("availabilityjson"),
			leaf("timemodified", now),
		)

	return []document{
		{path: path.Join(s.directory(), "section.xml"), root: descriptor},
		{path: path.Join(s.directory(), "inforef.xml"), root: node("inforef")},
	}
}
