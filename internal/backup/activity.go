package backup

import (
	"fmt"
	"path"

	"github.com/Lastent/csv-to-course/internal/dates"
	"github.com/Lastent/csv-to-course/internal/entities"
)

// moduleVersion is the schema version stamped on every module wrapper.
const moduleVersion = "2023100900"

// activityInput carries everything an activity builder needs. Dates are
// already normalized; Resolved holds the fallback chain result and is only
// populated for the gradable types.
type activityInput struct {
	Type          entities.ActivityType
	Name          string
	Intro         string
	Source        string
	Start         string
	End           string
	Cutoff        string
	Resolved      dates.Resolved
	ActivityID    int
	ModuleID      int
	ContextID     int
	SectionID     int
	SectionNumber int
}

// gradeRef marks an activity as gradable and carries its grade item id.
// A nil *gradeRef means not gradable; document emission switches on the
// variant, never on the type name.
type gradeRef struct {
	itemID int
}

// builtActivity is the full per-activity document set plus the grade
// linkage variant and the manifest summary data the generator accumulates.
type builtActivity struct {
	docs      []document
	grade     *gradeRef
	directory string
}

// Fixed per-type field tables. Every field the target schema requires is
// listed with its schema default; row-sourced values are overlaid at build
// time. Omission is not equivalent to default under the schema, so tables
// are exhaustive.
var activityFieldTables = map[entities.ActivityType][]field{
	entities.ActivityLabel: {
		{"name", ""},
		{"intro", ""},
		{"introformat", "1"},
		{"timemodified", "0"},
	},
	entities.ActivityURL: {
		{"name", ""},
		{"intro", ""},
		{"introformat", "1"},
		{"externalurl", ""},
		{"display", "0"},
		{"displayoptions", "a:1:{s:10:\"printintro\";i:1;}"},
		{"parameters", "a:0:{}"},
		{"timemodified", "0"},
	},
	entities.ActivityResource: {
		{"name", ""},
		{"intro", ""},
		{"introformat", "1"},
		{"tobemigrated", "0"},
		{"legacyfiles", "0"},
		{"legacyfileslast", NullSentinel},
		{"display", "0"},
		{"displayoptions", "a:1:{s:10:\"printintro\";i:1;}"},
		{"filterfiles", "0"},
		{"revision", "1"},
		{"timemodified", "0"},
	},
	entities.ActivityPage: {
		{"name", ""},
		{"intro", ""},
		{"introformat", "1"},
		{"content", ""},
		{"contentformat", "1"},
		{"legacyfiles", "0"},
		{"legacyfileslast", NullSentinel},
		{"display", "5"},
		{"displayoptions", "a:3:{s:12:\"printheading\";s:1:\"1\";s:10:\"printintro\";s:1:\"0\";s:17:\"printlastmodified\";s:1:\"1\";}"},
		{"revision", "1"},
		{"timemodified", "0"},
	},
	entities.ActivityForum: {
		{"type", "general"},
		{"name", ""},
		{"intro", ""},
		{"introformat", "1"},
		{"duedate", "0"},
		{"cutoffdate", "0"},
		{"assessed", "0"},
		{"assesstimestart", "0"},
		{"assesstimefinish", "0"},
		{"scale", "100"},
		{"maxbytes", "0"},
		{"maxattachments", "9"},
		{"forcesubscribe", "0"},
		{"trackingtype", "1"},
		{"rsstype", "0"},
		{"rssarticles", "0"},
		{"timemodified", "0"},
		{"warnafter", "0"},
		{"blockafter", "0"},
		{"blockperiod", "0"},
		{"completiondiscussions", "0"},
		{"completionreplies", "0"},
		{"completionposts", "0"},
		{"displaywordcount", "0"},
		{"lockdiscussionafter", "0"},
	},
	entities.ActivityAssign: {
		{"name", ""},
		{"intro", ""},
		{"introformat", "1"},
		{"alwaysshowdescription", "1"},
		{"submissiondrafts", "0"},
		{"sendnotifications", "0"},
		{"sendlatenotifications", "0"},
		{"sendstudentnotifications", "1"},
		{"duedate", "0"},
		{"cutoffdate", "0"},
		{"gradingduedate", "0"},
		{"allowsubmissionsfromdate", "0"},
		{"grade", "100"},
		{"timemodified", "0"},
		{"completionsubmit", "0"},
		{"requiresubmissionstatement", "0"},
		{"teamsubmission", "0"},
		{"requireallteammemberssubmit", "0"},
		{"teamsubmissiongroupingid", "0"},
		{"blindmarking", "0"},
		{"hidegrader", "0"},
		{"revealidentities", "0"},
		{"attemptreopenmethod", "none"},
		{"maxattempts", "-1"},
		{"markingworkflow", "0"},
		{"markingallocation", "0"},
		{"preventsubmissionnotingroup", "0"},
	},
	entities.ActivityQuiz: {
		{"name", ""},
		{"intro", ""},
		{"introformat", "1"},
		{"timeopen", "0"},
		{"timeclose", "0"},
		{"timelimit", "0"},
		{"overduehandling", "autosubmit"},
		{"graceperiod", "0"},
		{"preferredbehaviour", "deferredfeedback"},
		{"canredoquestions", "0"},
		{"attempts_number", "0"},
		{"attemptonlast", "0"},
		{"grademethod", "1"},
		{"decimalpoints", "2"},
		{"questiondecimalpoints", "-1"},
		{"reviewattempt", "69888"},
		{"reviewcorrectness", "4352"},
		{"reviewmarks", "4352"},
		{"reviewspecificfeedback", "4352"},
		{"reviewgeneralfeedback", "4352"},
		{"reviewrightanswer", "4352"},
		{"reviewoverallfeedback", "4352"},
		{"questionsperpage", "1"},
		{"navmethod", "free"},
		{"shuffleanswers", "1"},
		{"sumgrades", "0.00000"},
		{"grade", "100.00000"},
		{"timecreated", "0"},
		{"timemodified", "0"},
		{"password", ""},
		{"subnet", ""},
		{"browsersecurity", "-"},
		{"delay1", "0"},
		{"delay2", "0"},
		{"showuserpicture", "0"},
		{"showblocks", "0"},
		{"completionattemptsexhausted", "0"},
		{"completionminattempts", "0"},
		{"allowofflineattempts", "0"},
	},
	entities.ActivityFeedback: {
		{"name", ""},
		{"intro", ""},
		{"introformat", "1"},
		{"anonymous", "1"},
		{"email_notification", "0"},
		{"multiple_submit", "0"},
		{"autonumbering", "1"},
		{"site_after_submit", ""},
		{"page_after_submit", ""},
		{"page_after_submitformat", "1"},
		{"publish_stats", "0"},
		{"timeopen", "0"},
		{"timeclose", "0"},
		{"timemodified", "0"},
		{"completionsubmit", "0"},
	},
}

// rowValues maps the row-sourced inputs onto the type's table fields.
func rowValues(in activityInput, now string) map[string]string {
	values := map[string]string{
		"name":         in.Name,
		"intro":        in.Intro,
		"timemodified": now,
	}

	switch in.Type {
	case entities.ActivityURL:
		values["externalurl"] = in.Source
	case entities.ActivityPage:
		values["content"] = in.Intro
	case entities.ActivityForum:
		values["duedate"] = in.End
		values["cutoffdate"] = in.Cutoff
	case entities.ActivityAssign:
		values["allowsubmissionsfromdate"] = in.Resolved.Start
		values["duedate"] = in.Resolved.Due
		values["gradingduedate"] = in.Resolved.GradingDue
		values["cutoffdate"] = in.Resolved.Cutoff
	case entities.ActivityQuiz:
		values["timeopen"] = in.Resolved.Start
		values["timeclose"] = in.Resolved.Due
		values["timecreated"] = now
	case entities.ActivityFeedback:
		values["timeopen"] = in.Start
		values["timeclose"] = in.End
	}

	return values
}

// buildActivity assembles the complete document set for one activity row:
// the activity body, the module wrapper, the grade records, the
// cross-reference and roles placeholders, and grading.xml when gradable.
func buildActivity(in activityInput, ids *idAllocator, now string) builtActivity {
	dir := path.Join("activities", fmt.Sprintf("%s_%d", in.Type, in.ModuleID))

	var grade *gradeRef
	if in.Type.Gradable() {
		grade = &gradeRef{itemID: ids.NextGradeItem()}
	}

	body := node(string(in.Type)).
		attrInt("id", in.ActivityID).
		add(fieldsToEls(overlay(activityFieldTables[in.Type], rowValues(in, now)))...)
	addTrailingContainers(body, in, ids)

	activity := node("activity", body).
		attrInt("id", in.ActivityID).
		attrInt("moduleid", in.ModuleID).
		attr("modulename", string(in.Type)).
		attrInt("contextid", in.ContextID)

	docs := []document{
		{path: path.Join(dir, string(in.Type)+".xml"), root: activity},
		{path: path.Join(dir, "module.xml"), root: buildModule(in, now)},
		{path: path.Join(dir, "grades.xml"), root: buildActivityGrades(in, grade, now)},
		{path: path.Join(dir, "grade_history.xml"), root: node("grade_history", node("grade_grades"))},
		{path: path.Join(dir, "inforef.xml"), root: buildActivityInforef(grade)},
		{path: path.Join(dir, "roles.xml"), root: node("roles", node("role_overrides"), node("role_assignments"))},
	}
	if grade != nil {
		docs = append(docs, document{path: path.Join(dir, "grading.xml"), root: buildGradingAreas(in.Type)})
	}

	return builtActivity{docs: docs, grade: grade, directory: dir}
}

// addTrailingContainers appends the structurally required child containers
// that follow the scalar field list in each activity body.
func addTrailingContainers(body *el, in activityInput, ids *idAllocator) {
	switch in.Type {
	case entities.ActivityAssign:
		body.add(
			buildAssignPluginConfigs(ids),
			node("userflags"),
			node("submissions"),
			node("grades"),
			node("overrides"),
		)
	case entities.ActivityQuiz:
		body.add(
			node("question_instances"),
			node("sections", node("section").add(
				leaf("firstslot", "1"),
				leaf("heading", ""),
				leaf("shufflequestions", "0"),
			)),
			node("feedbacks"),
			node("overrides"),
			node("grades"),
			node("attempts"),
		)
	case entities.ActivityForum:
		body.add(
			node("discussions"),
			node("subscriptions"),
			node("digests"),
			node("readposts"),
			node("trackedprefs"),
			node("poststags"),
		)
	case entities.ActivityFeedback:
		body.add(node("items"), node("completeds"))
	}
}

// assignment submission/feedback plugin settings; each row draws an id from
// the plugin-config counter.
var assignPluginDefaults = []struct {
	plugin  string
	subtype string
	name    string
	value   string
}{
	{"onlinetext", "assignsubmission", "enabled", "1"},
	{"file", "assignsubmission", "enabled", "1"},
	{"file", "assignsubmission", "maxfilesubmissions", "20"},
	{"file", "assignsubmission", "maxsubmissionsizebytes", "0"},
	{"comments", "assignfeedback", "enabled", "1"},
}

func buildAssignPluginConfigs(ids *idAllocator) *el {
	configs := node("plugin_configs")
	for _, p := range assignPluginDefaults {
		configs.add(node("plugin_config").
			attrInt("id", ids.NextPluginConfig()).
			add(
				leaf("plugin", p.plugin),
				leaf("subtype", p.subtype),
				leaf("name", p.name),
				leaf("value", p.value),
			))
	}
	return configs
}

// buildModule builds the course-module wrapper shared by all activity
// types. The only type-specific knob is whether the course page shows the
// description inline.
func buildModule(in activityInput, now string) *el {
	showDescription := "0"
	if in.Type.ShowsDescription() {
		showDescription = "1"
	}

	return node("module").
		attrInt("id", in.ModuleID).
		attr("version", moduleVersion).
		add(
			leaf("modulename", string(in.Type)),
			leafInt("sectionid", in.SectionID),
			leafInt("sectionnumber", in.SectionNumber),
			leaf("idnumber", ""),
			leaf("added", now),
			leaf("score", "0"),
			leaf("indent", "0"),
			leaf("visible", "1"),
			leaf("visibleoncoursepage", "1"),
			leaf("visibleold", "1"),
			leaf("groupmode", "0"),
			leaf("groupingid", "0"),
			leaf("completion", "0"),
			nullLeaf("completiongradeitemnumber"),
			leaf("completionview", "0"),
			leaf("completionexpected", "0"),
			nullLeaf("availability"),
			leaf("showdescription", showDescription),
			node("tags"),
		)
}

// buildActivityGrades emits the per-activity gradebook record. Gradable
// activities carry one grade item; everything else gets the structurally
// empty variant the schema still requires.
func buildActivityGrades(in activityInput, grade *gradeRef, now string) *el {
	items := node("grade_items")
	if grade != nil {
		items.add(node("grade_item").
			attrInt("id", grade.itemID).
			add(
				leaf("categoryid", "1"),
				leaf("itemname", in.Name),
				leaf("itemtype", "mod"),
				leaf("itemmodule", string(in.Type)),
				leafInt("iteminstance", in.ActivityID),
				leaf("itemnumber", "0"),
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
				leafInt("sortorder", in.ModuleID),
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
			))
	}
	return node("activity_gradebook", items, node("grade_letters"))
}

// buildActivityInforef cross-references the grade item for gradable
// activities; the non-gradable variant is an empty inforef.
func buildActivityInforef(grade *gradeRef) *el {
	inforef := node("inforef")
	if grade != nil {
		inforef.add(node("grade_itemref", node("grade_item", leafInt("id", grade.itemID))))
	}
	return inforef
}

// buildGradingAreas emits the advanced-grading document every gradable
// activity carries. Only assignments define a grading area; for quizzes
// the document is present but empty.
func buildGradingAreas(activityType entities.ActivityType) *el {
	areas := node("areas")
	if activityType == entities.ActivityAssign {
		areas.add(node("area").add(
			leaf("name", "submissions"),
			nullLeaf("activemethod"),
			node("definitions"),
		))
	}
	return areas
}
