package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicare-app/recordsync/internal/models"
)

func recv(t *testing.T, sub Subscription) Snapshot {
	t.Helper()
	select {
	case snap, open := <-sub.Updates():
		require.True(t, open, "subscription closed unexpectedly")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestMemoryStore_OwnerFilterAndOrder(t *testing.T) {
	m := NewMemoryStore()
	m.Seed(&models.Doctor{ID: "d1", OwnerID: "u1", Name: "Zilda", Specialty: "Cardio", Hospital: "A"})
	m.Seed(&models.Doctor{ID: "d2", OwnerID: "u1", Name: "Alice", Specialty: "Dermato", Hospital: "B"})
	m.Seed(&models.Doctor{ID: "d3", OwnerID: "u2", Name: "Bruno", Specialty: "Ortho", Hospital: "C"})

	sub, err := m.Subscribe(context.Background(), OwnerQuery(models.KindDoctor, "u1"))
	require.NoError(t, err)
	defer sub.Detach()

	snap := recv(t, sub)
	require.Len(t, snap, 2)
	assert.Equal(t, "d2", snap[0].RecordID(), "name ascending")
	assert.Equal(t, "d1", snap[1].RecordID())
	for _, rec := range snap {
		assert.Equal(t, "u1", rec.Owner())
	}
}

func TestMemoryStore_AppointmentOrderBreaksTiesByTime(t *testing.T) {
	m := NewMemoryStore()
	seed := func(id, date, hour string) {
		m.Seed(&models.Appointment{
			ID: id, OwnerID: "u1", DoctorName: "Dr. Silva", Specialty: "Cardio",
			Date: date, Time: hour, Location: "Clinic A", Status: models.StatusConfirmed,
		})
	}
	seed("late", "2025-03-10", "14:00")
	seed("early", "2025-03-10", "08:00")
	seed("previous-day", "2025-03-09", "23:00")

	sub, err := m.Subscribe(context.Background(), OwnerQuery(models.KindAppointment, "u1"))
	require.NoError(t, err)
	defer sub.Detach()

	snap := recv(t, sub)
	require.Len(t, snap, 3)
	assert.Equal(t, "previous-day", snap[0].RecordID())
	assert.Equal(t, "early", snap[1].RecordID())
	assert.Equal(t, "late", snap[2].RecordID())
}

func TestMemoryStore_SecondaryFilters(t *testing.T) {
	m := NewMemoryStore()
	seed := func(id, date, status string) {
		m.Seed(&models.Appointment{
			ID: id, OwnerID: "u1", DoctorName: "Dr. Silva", Specialty: "Cardio",
			Date: date, Time: "09:00", Location: "Clinic A", Status: status,
		})
	}
	seed("old", "2025-01-01", models.StatusConfirmed)
	seed("pending", "2025-06-01", models.StatusPending)
	seed("upcoming", "2025-06-02", models.StatusConfirmed)

	sub, err := m.Subscribe(context.Background(), UpcomingConfirmedQuery("u1", "2025-03-09"))
	require.NoError(t, err)
	defer sub.Detach()

	snap := recv(t, sub)
	require.Len(t, snap, 1)
	assert.Equal(t, "upcoming", snap[0].RecordID())
}

func TestMemoryStore_MutationsPushNewSnapshots(t *testing.T) {
	m := NewMemoryStore()
	sub, err := m.Subscribe(context.Background(), OwnerQuery(models.KindMedication, "u1"))
	require.NoError(t, err)
	defer sub.Detach()
	assert.Empty(t, recv(t, sub))

	med := &models.Medication{OwnerID: "u1", Name: "Losartana", Dosage: "50mg", Frequency: "1x/day"}
	id, err := m.Insert(context.Background(), med)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	snap := recv(t, sub)
	require.Len(t, snap, 1)

	edited := &models.Medication{OwnerID: "u1", Name: "Losartana", Dosage: "100mg", Frequency: "1x/day"}
	require.NoError(t, m.Replace(context.Background(), models.KindMedication, id, edited))
	snap = recv(t, sub)
	require.Len(t, snap, 1)
	assert.Equal(t, "100mg", snap[0].(*models.Medication).Dosage)

	require.NoError(t, m.Remove(context.Background(), models.KindMedication, id))
	assert.Empty(t, recv(t, sub))
}

func TestMemoryStore_ReplaceAndRemoveMissing(t *testing.T) {
	m := NewMemoryStore()

	err := m.Replace(context.Background(), models.KindDoctor, "ghost", &models.Doctor{Name: "X", Specialty: "Y", Hospital: "Z"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = m.Remove(context.Background(), models.KindDoctor, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DetachStopsDelivery(t *testing.T) {
	m := NewMemoryStore()
	sub, err := m.Subscribe(context.Background(), OwnerQuery(models.KindDoctor, "u1"))
	require.NoError(t, err)
	recv(t, sub)

	sub.Detach()
	sub.Detach() // idempotent

	_, open := <-sub.Updates()
	assert.False(t, open, "channel must be closed after detach")
	assert.NoError(t, sub.Err())

	// Mutations after detach must not panic on the closed channel.
	m.Seed(&models.Doctor{OwnerID: "u1", Name: "A", Specialty: "B", Hospital: "C"})
}

func TestMemoryStore_SnapshotsAreIsolatedCopies(t *testing.T) {
	m := NewMemoryStore()
	m.Seed(&models.Doctor{ID: "d1", OwnerID: "u1", Name: "Alice", Specialty: "Cardio", Hospital: "A"})

	sub, err := m.Subscribe(context.Background(), OwnerQuery(models.KindDoctor, "u1"))
	require.NoError(t, err)
	defer sub.Detach()

	snap := recv(t, sub)
	snap[0].(*models.Doctor).Name = "mutated"

	sub2, err := m.Subscribe(context.Background(), OwnerQuery(models.KindDoctor, "u1"))
	require.NoError(t, err)
	defer sub2.Detach()
	assert.Equal(t, "Alice", recv(t, sub2)[0].(*models.Doctor).Name)
}

func TestBlobPathHelpers(t *testing.T) {
	b := NewMemoryBlobStore()
	assert.Equal(t, "memory://documents/u1/x.png", b.PublicURL("documents/u1/x.png"))

	err := b.Remove(context.Background(), "documents/u1/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
