package models

import "time"

// Document categories, which double as the document screen's tabs.
const (
	CategoryExams         = "exams"
	CategoryPrescriptions = "prescriptions"
	CategoryCertificates  = "certificates"
)

// Document is the metadata record for one uploaded file. The binary content
// lives in the blob store at BlobPath; BlobURL is its public address. The
// pair is created and destroyed together with this record by the upload
// transaction.
type Document struct {
	ID            string `firestore:"-"`
	OwnerID       string `firestore:"ownerId"`
	Name          string `firestore:"name"`
	Category      string `firestore:"category"`
	FileType      string `firestore:"fileType"`
	SizeLabel     string `firestore:"sizeLabel"`
	BlobURL       string `firestore:"blobUrl"`
	BlobPath      string `firestore:"blobPath"`
	PhysicianName string `firestore:"physicianName,omitempty"`
	Date          string `firestore:"date,omitempty"`
	PageCount     int    `firestore:"pageCount,omitempty"`
}

func (d *Document) RecordID() string      { return d.ID }
func (d *Document) SetRecordID(id string) { d.ID = id }
func (d *Document) Owner() string         { return d.OwnerID }
func (d *Document) SetOwner(uid string)   { d.OwnerID = uid }
func (d *Document) RecordKind() Kind      { return KindDocument }

func (d *Document) MissingFields() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", d.Name},
		{"category", d.Category},
		{"fileType", d.FileType},
		{"sizeLabel", d.SizeLabel},
		{"blobUrl", d.BlobURL},
		{"blobPath", d.BlobPath},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func (d *Document) SearchText() []string {
	return []string{d.Name, d.PhysicianName}
}

// MatchesTab selects documents by category.
func (d *Document) MatchesTab(tab string, _ time.Time) bool {
	return tab == "" || d.Category == tab
}

// Categories lists the document tabs in display order.
func Categories() []string {
	return []string{CategoryExams, CategoryPrescriptions, CategoryCertificates}
}
