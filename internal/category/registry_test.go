package category

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/core"
)

func TestNewSeedsDefaults(t *testing.T) {
	r := New()
	assert.Equal(t, core.DefaultCategories(), r.List())
	assert.Equal(t, "hsl(10, 80%, 60%)", r.ColorOf("Food"))
}

func TestAddDeduplicatesCaseInsensitively(t *testing.T) {
	r := NewEmpty()
	food, added := r.Add("Food")
	require.True(t, added)

	again, added := r.Add("food")
	assert.False(t, added)
	assert.Equal(t, food, again)
	assert.Equal(t, []core.Category{food}, r.List())
}

func TestAddOnDefaultsIsNoopForExistingName(t *testing.T) {
	r := New()
	c, added := r.Add("FOOD")
	assert.False(t, added)
	assert.Equal(t, "Food", c.Name)
	assert.Equal(t, 7, r.Len())
}

func TestAddCyclesPalette(t *testing.T) {
	palette := core.Palette()
	r := NewEmpty()
	var seventh core.Category
	for i := 0; i < 7; i++ {
		seventh, _ = r.Add(fmt.Sprintf("cat-%d", i))
	}
	assert.Equal(t, palette[6%len(palette)], seventh.Color)
	assert.Equal(t, palette[0], r.List()[0].Color)
}

func TestAddOnSeededRegistryUsesCount(t *testing.T) {
	palette := core.Palette()
	r := New()
	c, added := r.Add("Pets")
	require.True(t, added)
	assert.Equal(t, palette[7%len(palette)], c.Color)
}

func TestWithPalette(t *testing.T) {
	r := NewEmpty(WithPalette([]string{"red", "blue"}))
	a, _ := r.Add("a")
	b, _ := r.Add("b")
	c, _ := r.Add("c")
	assert.Equal(t, []string{"red", "blue", "red"}, []string{a.Color, b.Color, c.Color})
}

func TestColorOfIsCaseSensitive(t *testing.T) {
	r := New()
	assert.Equal(t, "hsl(10, 80%, 60%)", r.ColorOf("Food"))
	assert.Equal(t, core.FallbackColor, r.ColorOf("food"))
	assert.Equal(t, core.FallbackColor, r.ColorOf("Unknown"))
}

func TestReplaceAllAndReset(t *testing.T) {
	r := New()
	custom := []core.Category{{Name: "Rent", Color: "hsl(1, 2%, 3%)"}}
	r.ReplaceAll(custom)
	assert.Equal(t, custom, r.List())
	assert.Equal(t, "hsl(1, 2%, 3%)", r.ColorOf("Rent"))

	r.Reset()
	assert.Equal(t, core.DefaultCategories(), r.List())
}

func TestReplaceAllKeepsNamesUniqueIgnoringCase(t *testing.T) {
	r := NewEmpty(WithPalette([]string{"red", "blue"}))
	r.ReplaceAll([]core.Category{
		{Name: "Food", Color: "hsl(1, 1%, 1%)"},
		{Name: "food", Color: ""},
		{Name: "  Pad  "},
		{Name: "   ", Color: "green"},
		{Name: "FOOD", Color: "black"},
	})

	assert.Equal(t, []core.Category{
		{Name: "Food", Color: "hsl(1, 1%, 1%)"},
		{Name: "Pad", Color: "blue"},
	}, r.List())

	_, added := r.Add("pad")
	assert.False(t, added)
}
