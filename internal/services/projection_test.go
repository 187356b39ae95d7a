package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicare-app/recordsync/internal/models"
	"github.com/medicare-app/recordsync/internal/store"
)

func appointmentSnapshot() store.Snapshot {
	return store.Snapshot{
		&models.Appointment{
			ID: "a1", OwnerID: "u1", DoctorName: "Dr. Silva", Specialty: "Cardio",
			Date: "2025-03-10", Time: "09:00", Location: "Clinic A", Status: models.StatusConfirmed,
		},
		&models.Appointment{
			ID: "a2", OwnerID: "u1", DoctorName: "Dr. Souza", Specialty: "Dermato",
			Date: "2025-03-12", Time: "14:30", Location: "Clinic B", Status: models.StatusPending,
		},
		&models.Appointment{
			ID: "a3", OwnerID: "u1", DoctorName: "Dr. Lima", Specialty: "Ortho",
			Date: "2025-02-01", Time: "10:00", Location: "Hospital C", Status: models.StatusDone,
		},
	}
}

func ids(recs []models.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.RecordID())
	}
	return out
}

func TestProjection_TabPartition(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewProjection(func() time.Time { return now })
	p.Apply(appointmentSnapshot())

	// The empty search returns exactly the tab's subset, in delivered order.
	assert.Equal(t, []string{"a1", "a2"}, ids(p.Filtered(models.TabUpcoming, "")))
	assert.Equal(t, []string{"a3"}, ids(p.Filtered(models.TabPast, "")))
}

func TestProjection_TabFollowsClock(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	p := NewProjection(func() time.Time { return now })
	p.Apply(appointmentSnapshot())

	assert.Contains(t, ids(p.Filtered(models.TabUpcoming, "")), "a1")

	// Once the clock passes the appointment instant it moves to the past
	// tab without a new snapshot.
	now = time.Date(2025, 3, 10, 9, 0, 1, 0, time.UTC)
	assert.NotContains(t, ids(p.Filtered(models.TabUpcoming, "")), "a1")
	assert.Contains(t, ids(p.Filtered(models.TabPast, "")), "a1")
}

func TestProjection_SearchIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	p := NewProjection(func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) })
	p.Apply(appointmentSnapshot())

	for _, needle := range []string{"cardio", "CARDIO", "Cardio"} {
		got := p.Filtered(models.TabUpcoming, needle)
		require.Len(t, got, 1, "search %q", needle)
		assert.Equal(t, "a1", got[0].RecordID())
	}
}

func TestProjection_SearchOnlyNarrows(t *testing.T) {
	t.Parallel()

	p := NewProjection(func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) })
	p.Apply(appointmentSnapshot())

	all := ids(p.Filtered(models.TabUpcoming, ""))
	for _, needle := range []string{"dr", "clinic", "souza", "nothing-matches-this"} {
		narrowed := p.Filtered(models.TabUpcoming, needle)
		for _, rec := range narrowed {
			assert.Contains(t, all, rec.RecordID(), "search %q returned a record outside the tab", needle)
		}
		assert.LessOrEqual(t, len(narrowed), len(all))
	}
}

func TestProjection_DocumentCategoryTabs(t *testing.T) {
	t.Parallel()

	p := NewProjection(nil)
	p.Apply(store.Snapshot{
		&models.Document{ID: "d1", Name: "blood-panel", Category: models.CategoryExams, PhysicianName: "Dr. Silva"},
		&models.Document{ID: "d2", Name: "losartan-refill", Category: models.CategoryPrescriptions},
		&models.Document{ID: "d3", Name: "work-leave", Category: models.CategoryCertificates},
	})

	assert.Equal(t, []string{"d1"}, ids(p.Filtered(models.CategoryExams, "")))
	assert.Equal(t, []string{"d2"}, ids(p.Filtered(models.CategoryPrescriptions, "")))

	// Documents search covers the name and the physician, not the category.
	assert.Equal(t, []string{"d1"}, ids(p.Filtered(models.CategoryExams, "silva")))
	assert.Empty(t, ids(p.Filtered(models.CategoryPrescriptions, "prescriptions")))
}

func TestProjection_ApplyReplacesWholesale(t *testing.T) {
	t.Parallel()

	p := NewProjection(nil)
	p.Apply(appointmentSnapshot())
	require.Len(t, p.Snapshot(), 3)

	p.Apply(store.Snapshot{})
	assert.Empty(t, p.Snapshot())
	assert.Empty(t, p.Filtered("", ""))
}
