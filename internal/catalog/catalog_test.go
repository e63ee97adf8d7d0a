package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodsCoverEveryCategory(t *testing.T) {
	methods := Methods()
	grouped := MethodsByCategory()

	require.Len(t, grouped, 5)
	total := 0
	for _, category := range Categories() {
		group, ok := grouped[category]
		require.True(t, ok, "missing category %s", category)
		total += len(group)
		for name, desc := range group {
			assert.Equal(t, methods[name], desc)
		}
	}
	assert.Equal(t, len(methods), total)
	assert.Len(t, methods, 27)
}

func TestDescribe(t *testing.T) {
	desc, ok := Describe("shahkar")
	assert.True(t, ok)
	assert.Equal(t, "Shahkar verification service", desc)

	_, ok = Describe("not_a_method")
	assert.False(t, ok)
}

func TestMethodsReturnsCopy(t *testing.T) {
	m := Methods()
	m["shahkar"] = "changed"
	desc, _ := Describe("shahkar")
	assert.Equal(t, "Shahkar verification service", desc)
	assert.Equal(t, "Shahkar verification service", Methods()["shahkar"])
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	require.Len(t, names, 27)
	assert.IsIncreasing(t, names)
}
