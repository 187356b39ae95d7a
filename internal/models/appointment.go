package models

import "time"

// Appointment statuses. Unknown values are preserved as-is and rendered with
// the default style.
const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
	StatusDone      = "done"
)

// Appointment tabs.
const (
	TabUpcoming = "upcoming"
	TabPast     = "past"
)

const appointmentLayout = "2006-01-02T15:04"

// Appointment is one scheduled consultation.
type Appointment struct {
	ID         string `firestore:"-"`
	OwnerID    string `firestore:"ownerId"`
	DoctorName string `firestore:"doctorName"`
	Specialty  string `firestore:"specialty"`
	Date       string `firestore:"date"` // YYYY-MM-DD
	Time       string `firestore:"time"` // HH:MM
	Location   string `firestore:"location"`
	Status     string `firestore:"status"`
	Notes      string `firestore:"notes,omitempty"`
}

func (a *Appointment) RecordID() string      { return a.ID }
func (a *Appointment) SetRecordID(id string) { a.ID = id }
func (a *Appointment) Owner() string         { return a.OwnerID }
func (a *Appointment) SetOwner(uid string)   { a.OwnerID = uid }
func (a *Appointment) RecordKind() Kind      { return KindAppointment }

func (a *Appointment) MissingFields() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"doctorName", a.DoctorName},
		{"specialty", a.Specialty},
		{"date", a.Date},
		{"time", a.Time},
		{"location", a.Location},
		{"status", a.Status},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func (a *Appointment) SearchText() []string {
	return []string{a.DoctorName, a.Specialty, a.Location}
}

// StartsAt combines the date and time fields into a single instant.
func (a *Appointment) StartsAt() (time.Time, error) {
	return time.Parse(appointmentLayout, a.Date+"T"+a.Time)
}

// MatchesTab partitions appointments into upcoming and past relative to now.
// Records whose date or time cannot be parsed match any tab, so they never
// silently disappear from the screen.
func (a *Appointment) MatchesTab(tab string, now time.Time) bool {
	if tab == "" {
		return true
	}
	starts, err := a.StartsAt()
	if err != nil {
		return true
	}
	switch tab {
	case TabUpcoming:
		return !starts.Before(now)
	case TabPast:
		return starts.Before(now)
	default:
		return false
	}
}

// StatusStyle maps a status to its badge style. Unknown statuses fall back
// to the default style instead of failing.
type StatusStyle struct {
	Background string
	Text       string
}

var statusStyles = map[string]StatusStyle{
	StatusConfirmed: {Background: "#d1fae5", Text: "#059669"},
	StatusPending:   {Background: "#fef9c3", Text: "#b45309"},
	StatusDone:      {Background: "#e5e7eb", Text: "#374151"},
}

var defaultStatusStyle = StatusStyle{Background: "#e5e7eb", Text: "#374151"}

func (a *Appointment) StatusStyle() StatusStyle {
	if s, ok := statusStyles[a.Status]; ok {
		return s
	}
	return defaultStatusStyle
}
