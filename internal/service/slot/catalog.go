package slot

import "strings"

// Slot is a fixed, named time-of-day offering. Availability is a presentation
// of static capacity; the catalog does not reserve slots across users.
type Slot struct {
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

// Day groups the day's candidate slots into morning and afternoon.
type Day struct {
	Morning   []Slot `json:"morning"`
	Afternoon []Slot `json:"afternoon"`
}

// Catalog exposes the candidate consultation slots for the current day.
type Catalog interface {
	Slots() Day
	IsAvailable(label string) bool
}

var slotLabels = []string{
	"09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM", "11:00 AM", "11:30 AM",
	"02:00 PM", "02:30 PM", "03:00 PM", "03:30 PM", "04:00 PM", "04:30 PM",
}

type fixedCatalog struct {
	slots       []Slot
	unavailable map[string]struct{}
}

// NewCatalog builds the fixed daily catalog. Labels listed in unavailable are
// surfaced with Available=false and rejected by IsAvailable.
func NewCatalog(unavailable []string) Catalog {
	blocked := make(map[string]struct{}, len(unavailable))
	for _, label := range unavailable {
		blocked[strings.TrimSpace(label)] = struct{}{}
	}

	slots := make([]Slot, 0, len(slotLabels))
	for _, label := range slotLabels {
		_, off := blocked[label]
		slots = append(slots, Slot{Label: label, Available: !off})
	}

	return &fixedCatalog{slots: slots, unavailable: blocked}
}

func (c *fixedCatalog) Slots() Day {
	var day Day
	for _, s := range c.slots {
		if strings.HasSuffix(s.Label, "AM") {
			day.Morning = append(day.Morning, s)
		} else {
			day.Afternoon = append(day.Afternoon, s)
		}
	}
	return day
}

func (c *fixedCatalog) IsAvailable(label string) bool {
	for _, s := range c.slots {
		if s.Label == label {
			return s.Available
		}
	}
	return false
}
