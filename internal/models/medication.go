package models

import "time"

// Medication is one entry in the user's current medication list.
type Medication struct {
	ID           string `firestore:"-"`
	OwnerID      string `firestore:"ownerId"`
	Name         string `firestore:"name"`
	Dosage       string `firestore:"dosage"`
	Frequency    string `firestore:"frequency"`
	PrescribedBy string `firestore:"prescribedBy,omitempty"`
}

func (m *Medication) RecordID() string      { return m.ID }
func (m *Medication) SetRecordID(id string) { m.ID = id }
func (m *Medication) Owner() string         { return m.OwnerID }
func (m *Medication) SetOwner(uid string)   { m.OwnerID = uid }
func (m *Medication) RecordKind() Kind      { return KindMedication }

func (m *Medication) MissingFields() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", m.Name},
		{"dosage", m.Dosage},
		{"frequency", m.Frequency},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func (m *Medication) SearchText() []string {
	return []string{m.Name, m.Dosage, m.Frequency, m.PrescribedBy}
}

// The medications screen has no tabs.
func (m *Medication) MatchesTab(tab string, _ time.Time) bool { return tab == "" }
