package backup

// Counter base values. Module ids are row-ordinal (they name the activity
// directories); every other namespace starts high enough that generated ids
// can never collide with the reserved low ids (role 5, grade category 1, ...)
// that the restore engine treats specially.
const (
	moduleIDBase       = 1
	sectionIDBase      = 100
	activityIDBase     = 1000
	gradeItemIDBase    = 2000
	pluginConfigIDBase = 5000
	contextIDBase      = 100000
)

// idAllocator hands out monotonically increasing ids, one independent
// counter per entity namespace. It is owned by a single generation run and
// is never shared between runs; concurrent generations each carry their own.
type idAllocator struct {
	section      int
	activity     int
	gradeItem    int
	pluginConfig int
	module       int
	context      int
}

func newIDAllocator() *idAllocator {
	return &idAllocator{
		section:      sectionIDBase,
		activity:     activityIDBase,
		gradeItem:    gradeItemIDBase,
		pluginConfig: pluginConfigIDBase,
		module:       moduleIDBase,
		context:      contextIDBase,
	}
}

// Each Next* returns the current counter value and advances it. Returned
// ids are consumed immediately by the caller; there is no release or reuse.

func (a *idAllocator) NextSection() int {
	id := a.section
	a.section++
	return id
}

func (a *idAllocator) NextActivity() int {
	id := a.activity
	a.activity++
	return id
}

func (a *idAllocator) NextGradeItem() int {
	id := a.gradeItem
	a.gradeItem++
	return id
}

func (a *idAllocator) NextPluginConfig() int {
	id := a.pluginConfig
	a.pluginConfig++
	return id
}

func (a *idAllocator) NextModule() int {
	id := a.module
	a.module++
	return id
}

func (a *idAllocator) NextContext() int {
	id := a.context
	a.context++
	return id
}
