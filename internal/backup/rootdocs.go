package backup

import (
	"fmt"

	"github.com/Lastent/csv-to-course/internal/entities"
)

// Versions advertised in the root manifest. They identify the schema
// generation the emitted documents target.
const (
	platformVersion = "2023100900"
	platformRelease = "4.3"
	backupVersion   = "2023100900"
	backupRelease   = "4.3"
)

// manifestActivity is the per-activity summary collected during the row
// pass, used only to populate the root manifest.
type manifestActivity struct {
	moduleID  int
	sectionID int
	modName   entities.ActivityType
	title     string
	directory string
}

// manifestInput collects everything the root-level document set needs.
type manifestInput struct {
	Course          courseInput
	BackupID        string
	WWWRoot         string
	SiteHash        string
	Activities      []manifestActivity
	Sections        []*section
	CourseGradeItem int
}

// buildRootDocs emits the root manifest plus the fixed placeholder
// documents the schema requires at the top of the tree.
func buildRootDocs(in manifestInput, now string) []document {
	return []document{
		{path: "moodle_backup.xml", root: buildManifest(in, now)},
		{path: "files.xml", root: node("files")},
		{path: "completion.xml", root: node("course_completion")},
		{path: "gradebook.xml", root: buildGradebook(in, now)},
		{path: "grade_history.xml", root: node("grade_history", node("grade_grades"))},
		{path: "scales.xml", root: node("scales_definition")},
		{path: "outcomes.xml", root: node("outcomes_definition")},
		{path: "questions.xml", root: node("question_categories")},
		{path: "groups.xml", root: node("groups")},
		{path: "roles.xml", root: buildRolesDefinition()},
	}
}

func buildManifest(in manifestInput, now string) *el {
	activities := node("activities")
	for _, a := range in.Activities {
		activities.add(node("activity").add(
			leafInt("moduleid", a.moduleID),
			leafInt("sectionid", a.sectionID),
			leaf("modulename", string(a.modName)),
			leaf("title", a.title),
			leaf("directory", a.directory),
		))
	}

	sections := node("sections")
	for _, s := range in.Sections {
		sections.add(node("section").add(
			leafInt("sectionid", s.id),
			leaf("title", s.name),
			leaf("directory", s.directory()),
		))
	}

	course := node("course").add(
		leaf("courseid", "1"),
		leaf("title", in.Course.ShortName),
		leaf("directory", "course"),
	)

	information := node("information").add(
		leaf("name", "backup.mbz"),
		leaf("moodle_version", platformVersion),
		leaf("moodle_release", platformRelease),
		leaf("backup_version", backupVersion),
		leaf("backup_release", backupRelease),
		leaf("backup_date", now),
		leaf("mnet_remoteusers", "0"),
		leaf("include_files", "0"),
		leaf("include_file_references_to_external_content", "0"),
		leaf("original_wwwroot", in.WWWRoot),
		leaf("original_site_identifier_hash", in.SiteHash),
		leaf("original_course_id", "1"),
		leaf("original_course_format", in.Course.Format),
		leaf("original_course_fullname", in.Course.FullName),
		leaf("original_course_shortname", in.Course.ShortName),
		leaf("original_course_startdate", now),
		leafInt("original_course_contextid", in.Course.ContextID),
		node("details", node("detail").attr("backup_id", in.BackupID).add(
			leaf("type", "course"),
			leaf("format", "moodle2"),
			leaf("interactive", "1"),
			leaf("mode", "10"),
			leaf("execution", "1"),
			leaf("executiontime", "0"),
		)),
		node("contents", activities, sections, course),
		buildManifestSettings(in),
	)

	return node("moodle_backup", information)
}

// Root-level restore switches: include the course structure, exclude every
// kind of user data. Order is fixed by the schema.
var rootSettings = []field{
	{"filename", "backup.mbz"},
	{"imscc11", "0"},
	{"users", "0"},
	{"anonymize", "0"},
	{"role_assignments", "0"},
	{"activities", "1"},
	{"blocks", "0"},
	{"files", "0"},
	{"filters", "0"},
	{"comments", "0"},
	{"badges", "0"},
	{"calendarevents", "0"},
	{"userscompletion", "0"},
	{"logs", "0"},
	{"grade_histories", "0"},
	{"questionbank", "0"},
	{"groups", "0"},
	{"competencies", "0"},
	{"customfield", "0"},
	{"contentbankcontent", "0"},
	{"legacyfiles", "0"},
}

// buildManifestSettings emits the flat settings list: the fixed root
// switches, then one included/userinfo pair per section and per activity.
// Every section and activity appears exactly once, keyed by its
// "<name>_<id>" directory identity.
func buildManifestSettings(in manifestInput) *el {
	settings := node("settings")

	for _, s := range rootSettings {
		settings.add(node("setting").add(
			leaf("level", "root"),
			leaf("name", s.name),
			leaf("value", s.value),
		))
	}

	for _, s := range in.Sections {
		key := fmt.Sprintf("section_%d", s.id)
		settings.add(sectionSetting(key, key+"_included", "1"))
		settings.add(sectionSetting(key, key+"_userinfo", "0"))
	}

	for _, a := range in.Activities {
		key := fmt.Sprintf("%s_%d", a.modName, a.moduleID)
		settings.add(activitySetting(key, key+"_included", "1"))
		settings.add(activitySetting(key, key+"_userinfo", "0"))
	}

	return settings
}

func sectionSetting(section, name, value string) *el {
	return node("setting").add(
		leaf("level", "section"),
		leaf("section", section),
		leaf("name", name),
		leaf("value", value),
	)
}

func activitySetting(activity, name, value string) *el {
	return node("setting").add(
		leaf("level", "activity"),
		leaf("activity", activity),
		leaf("name", name),
		leaf("value", value),
	)
}

// buildGradebook emits the course gradebook skeleton: one grade category
// and the course grade item every activity grade item aggregates into.
func buildGradebook(in manifestInput, now string) *el {
	category := node("grade_category").
		attr("id", "1").
		add(
			nullLeaf("parent"),
			leaf("depth", "1"),
			leaf("path", "/1/"),
			nullLeaf("fullname"),
			leaf("aggregation", "13"),
			leaf("keephigh", "0"),
			leaf("droplow", "0"),
			leaf("aggregateonlygraded", "1"),
			leaf("aggregateoutcomes", "0"),
			leaf("timecreated", now),
			leaf("timemodified", now),
			leaf("hidden", "0"),
		)

	courseItem := node("grade_item").
		attrInt("id", in.CourseGradeItem).
		add(
			nullLeaf("categoryid"),
			nullLeaf("itemname"),
			leaf("itemtype", "course"),
			nullLeaf("itemmodule"),
			leaf("iteminstance", "1"),
			nullLeaf("itemnumber"),
			nullLeaf("iteminfo"),
			nullLeaf("idnumber"),
			nullLeaf("calculation"),
			leaf("gradetype", "1"),
			leaf("grademax", "100.00000"),
			leaf("grademin", "0.00000"),
			nullLeaf("scaleid"),
			nullLeaf("outcomeid"),
			leaf("gradepass", "0.00000"),
			leaf("multfactor", "1.00000"),
			leaf("plusfactor", "0.00000"),
			leaf("aggregationcoef", "0.00000"),
			leaf("aggregationcoef2", "0.00000"),
			leaf("sortorder", "1"),
			nullLeaf("display"),
			nullLeaf("decimals"),
			leaf("hidden", "0"),
			leaf("locked", "0"),
			leaf("locktime", "0"),
			leaf("needsupdate", "0"),
			leaf("weightoverride", "0"),
			leaf("timecreated", now),
			leaf("timemodified", now),
			node("grade_grades"),
		)

	return node("gradebook",
		node("attributes"),
		node("grade_categories", category),
		node("grade_items", courseItem),
		node("grade_letters"),
		node("grade_settings"),
	)
}

func buildRolesDefinition() *el {
	return node("roles_definition",
		node("role").attrInt("id", studentRoleID).add(
			leaf("name", ""),
			leaf("shortname", "student"),
			nullLeaf("nameincourse"),
			leaf("description", ""),
			leafInt("sortorder", studentRoleID),
			leaf("archetype", "student"),
		))
}
