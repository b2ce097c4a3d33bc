package backup

// studentRoleID is the reserved role id the restore engine maps enrolments
// onto. It lives below every counter base on purpose.
const studentRoleID = 5

// courseInput is the course-level data shared by the course document set.
type courseInput struct {
	FullName     string
	ShortName    string
	ContextID    int
	Format       string
	CategoryName string
}

// buildCourseDocs emits the fixed course-level document set: the course
// descriptor, the enrolment methods, and the role/reference/completion
// placeholders the schema requires.
func buildCourseDocs(course courseInput, now string) []document {
	return []document{
		{path: "course/course.xml", root: buildCourse(course, now)},
		{path: "course/enrolments.xml", root: buildEnrolments(now)},
		{path: "course/roles.xml", root: node("roles", node("role_overrides"), node("role_assignments"))},
		{path: "course/inforef.xml", root: node("inforef", node("roleref", node("role", leafInt("id", studentRoleID))))},
		{path: "course/completiondefaults.xml", root: node("course_completion_defaults")},
	}
}

func buildCourse(course courseInput, now string) *el {
	return node("course").
		attr("id", "1").
		attrInt("contextid", course.ContextID).
		add(
			leaf("shortname", course.ShortName),
			leaf("fullname", course.FullName),
			leaf("idnumber", ""),
			leaf("summary", ""),
			leaf("summaryformat", "1"),
			leaf("format", course.Format),
			leaf("showgrades", "1"),
			leaf("newsitems", "5"),
			leaf("startdate", now),
			leaf("enddate", "0"),
			leaf("marker", "0"),
			leaf("maxbytes", "0"),
			leaf("legacyfiles", "0"),
			leaf("showreports", "0"),
			leaf("visible", "1"),
			leaf("groupmode", "0"),
			leaf("groupmodeforce", "0"),
			leaf("defaultgroupingid", "0"),
			leaf("lang", ""),
			leaf("theme", ""),
			leaf("timecreated", now),
			leaf("timemodified", now),
			leaf("requested", "0"),
			leaf("showactivitydates", "1"),
			leaf("showcompletionconditions", "1"),
			leaf("enablecompletion", "1"),
			node("category").attr("id", "1").add(
				leaf("name", course.CategoryName),
				nullLeaf("description"),
			),
			node("tags"),
		)
}

// enrolment methods are pre-defined: manual enabled, guest and self-enrol
// present but disabled. Status 0 means enabled under the target schema.
var enrolMethods = []struct {
	id     int
	method string
	status string
}{
	{1, "manual", "0"},
	{2, "guest", "1"},
	{3, "self", "1"},
}

func buildEnrolments(now string) *el {
	enrols := node("enrols")
	for _, m := range enrolMethods {
		enrols.add(node("enrol").
			attrInt("id", m.id).
			add(
				leaf("enrol", m.method),
				leaf("status", m.status),
				nullLeaf("name"),
				leaf("enrolperiod", "0"),
				leaf("enrolstartdate", "0"),
				leaf("enrolenddate", "0"),
				leaf("expirynotify", "0"),
				leaf("expirythreshold", "86400"),
				leaf("notifyall", "0"),
				nullLeaf("password"),
				nullLeaf("cost"),
				nullLeaf("currency"),
				leafInt("roleid", studentRoleID),
				nullLeaf("customint1"),
				nullLeaf("customint2"),
				nullLeaf("customint3"),
				nullLeaf("customint4"),
				nullLeaf("customint5"),
				nullLeaf("customint6"),
				nullLeaf("customint7"),
				nullLeaf("customint8"),
				nullLeaf("customchar1"),
				nullLeaf("customchar2"),
				nullLeaf("customchar3"),
				nullLeaf("customtext1"),
				nullLeaf("customtext2"),
				nullLeaf("customtext3"),
				nullLeaf("customtext4"),
				leaf("timecreated", now),
				leaf("timemodified", now),
				node("user_enrolments"),
			))
	}
	return node("enrolments", enrols)
}
