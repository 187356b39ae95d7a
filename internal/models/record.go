package models

import (
	"fmt"
	"time"
)

// Kind identifies one of the four remote collections. The value doubles as
// the collection name in the record store.
type Kind string

const (
	KindAppointment Kind = "appointments"
	KindDoctor      Kind = "doctors"
	KindDocument    Kind = "documents"
	KindMedication  Kind = "medications"
)

// OwnerField is the field every record carries and every subscription
// filters on.
const OwnerField = "ownerId"

// Record is the common surface of the four record kinds. The subscription,
// projection and mutation layers are written once against this interface and
// parameterized per kind.
type Record interface {
	RecordID() string
	SetRecordID(id string)
	Owner() string
	SetOwner(uid string)
	RecordKind() Kind

	// MissingFields reports which required fields are empty, using their
	// wire names. An empty result means the draft is valid.
	MissingFields() []string

	// SearchText returns the values searched by the case-insensitive
	// substring filter of the kind's screen.
	SearchText() []string

	// MatchesTab reports whether the record belongs to the given tab
	// partition at the given instant. The empty tab matches everything.
	MatchesTab(tab string, now time.Time) bool
}

// OrderField is one component of a kind's natural order.
type OrderField struct {
	Field string
	Desc  bool
}

// NaturalOrder returns the order-by clause every subscription for the kind
// uses. Ties in the appointment date are broken by the time field.
func NaturalOrder(kind Kind) []OrderField {
	switch kind {
	case KindAppointment:
		return []OrderField{{Field: "date"}, {Field: "time"}}
	default:
		return []OrderField{{Field: "name"}}
	}
}

// New returns an empty record of the given kind, ready to be decoded into.
func New(kind Kind) (Record, error) {
	switch kind {
	case KindAppointment:
		return &Appointment{}, nil
	case KindDoctor:
		return &Doctor{}, nil
	case KindDocument:
		return &Document{}, nil
	case KindMedication:
		return &Medication{}, nil
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
}

// Kinds lists every record kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindAppointment, KindDoctor, KindDocument, KindMedication}
}
