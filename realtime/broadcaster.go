// Package realtime pushes state changes to connected TV displays and admin
// dashboards. Delivery is best effort: no acknowledgement, no retry, ordered
// only by send order per connection.
package realtime

// Event names viewers subscribe to.
const (
	EventStudentsUpdated    = "students_updated"
	EventStudentAssigned    = "student_assigned"
	EventStudentUnassigned  = "student_unassigned"
	EventTeamsUpdated       = "teams_updated"
	EventTV1SettingsUpdated = "tv1_settings_updated"
	EventTV2SettingsUpdated = "tv2_settings_updated"
	EventSectionCompleted   = "section_completed"
)

// Broadcaster pushes payload to every currently connected viewer.
// Implementations must not block the caller on slow viewers.
type Broadcaster interface {
	Emit(event string, payload any)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Emit(string, any) {}

// Message is the frame written to viewers.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}
