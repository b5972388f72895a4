package slot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogPartitionsMorningAndAfternoon(t *testing.T) {
	day := NewCatalog(nil).Slots()

	assert.NotEmpty(t, day.Morning)
	assert.NotEmpty(t, day.Afternoon)
	for _, s := range day.Morning {
		assert.True(t, strings.HasSuffix(s.Label, "AM"), "morning slot %q", s.Label)
	}
	for _, s := range day.Afternoon {
		assert.True(t, strings.HasSuffix(s.Label, "PM"), "afternoon slot %q", s.Label)
	}
}

func TestCatalogMarksUnavailableSlots(t *testing.T) {
	c := NewCatalog([]string{"02:30 PM"})

	assert.True(t, c.IsAvailable("09:30 AM"))
	assert.False(t, c.IsAvailable("02:30 PM"))

	for _, s := range c.Slots().Afternoon {
		if s.Label == "02:30 PM" {
			assert.False(t, s.Available)
		}
	}
}

func TestCatalogRejectsUnknownLabels(t *testing.T) {
	c := NewCatalog(nil)
	assert.False(t, c.IsAvailable("07:00 AM"))
	assert.False(t, c.IsAvailable(""))
}
