package models

import "time"

// Doctor is one entry in the user's personal address book of physicians.
type Doctor struct {
	ID        string `firestore:"-"`
	OwnerID   string `firestore:"ownerId"`
	Name      string `firestore:"name"`
	Specialty string `firestore:"specialty"`
	Hospital  string `firestore:"hospital"`
	Phone     string `firestore:"phone,omitempty"`
}

func (d *Doctor) RecordID() string      { return d.ID }
func (d *Doctor) SetRecordID(id string) { d.ID = id }
func (d *Doctor) Owner() string         { return d.OwnerID }
func (d *Doctor) SetOwner(uid string)   { d.OwnerID = uid }
func (d *Doctor) RecordKind() Kind      { return KindDoctor }

func (d *Doctor) MissingFields() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", d.Name},
		{"specialty", d.Specialty},
		{"hospital", d.Hospital},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func (d *Doctor) SearchText() []string {
	return []string{d.Name, d.Specialty, d.Hospital}
}

// The doctors screen has no tabs.
func (d *Doctor) MatchesTab(tab string, _ time.Time) bool { return tab == "" }
