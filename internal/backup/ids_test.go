package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDAllocator(t *testing.T) {
	t.Run("counters are independent and monotonic", func(t *testing.T) {
		ids := newIDAllocator()

		assert.Equal(t, 1, ids.NextModule())
		assert.Equal(t, 2, ids.NextModule())
		assert.Equal(t, 100, ids.NextSection())
		assert.Equal(t, 1000, ids.NextActivity())
		assert.Equal(t, 3, ids.NextModule(), "other namespaces must not advance the module counter")
		assert.Equal(t, 2000, ids.NextGradeItem())
		assert.Equal(t, 5000, ids.NextPluginConfig())
		assert.Equal(t, 100000, ids.NextContext())
		assert.Equal(t, 100001, ids.NextContext())
	})

	t.Run("allocators are invocation scoped", func(t *testing.T) {
		first := newIDAllocator()
		first.NextModule()
		first.NextModule()

		second := newIDAllocator()
		assert.Equal(t, 1, second.NextModule(), "a fresh run starts over")
	})
}
