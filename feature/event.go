package feature

import "fmt"

// Event feature representing a holiday or any other span of time with its own level shift.
// The data is a mask of 1 inside the event and 0 outside.
type Event struct {
	Name string `json:"name"`
}

// NewEvent creates a new event instance given a name
func NewEvent(name string) *Event {
	return &Event{name}
}

// String returns the string representation of the event feature
func (e Event) String() string {
	return fmt.Sprintf("event_%s", e.Name)
}

// Get returns the value of an arbitrary label and whether the label exists
func (e Event) Get(label string) (string, bool) {
	return getName(e.Name, label)
}

// Type returns the type of this feature
func (e Event) Type() FeatureType {
	return FeatureTypeEvent
}

// Decode converts the feature into a map of label values
func (e Event) Decode() map[string]string {
	return map[string]string{"name": e.Name}
}
