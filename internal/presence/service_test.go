package presence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presence/internal/clock"
	"presence/internal/employee"
)

func newService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	repo := &memRepo{}
	dir := memDirectory{janeID: {ID: janeID, LastName: "Doe", FirstName: "Jane", RegistrationNumber: "A100", Active: true}}
	now := time.Date(2026, 10, 15, 10, 30, 0, 0, time.Local)
	return NewService(repo, dir, clock.Fixed(now)), repo
}

func ptr(s string) *string { return &s }

func TestServiceCreateDefaults(t *testing.T) {
	svc, _ := newService(t)
	evt, err := svc.Create(context.Background(), Event{
		EmployeeID: ptr(janeID), Name: "Doe Jane", RegistrationNumber: "A100", Action: "ARRIVAL",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, "2026-10-15", evt.Date)
	assert.Equal(t, "10:30:00", evt.Time)
	assert.Equal(t, StatusSuccess, evt.Status)
	assert.Equal(t, OriginManual, evt.OriginMethod)
	assert.True(t, evt.Active)
}

func TestServiceCreateWithoutEmployee(t *testing.T) {
	svc, _ := newService(t)
	evt, err := svc.Create(context.Background(), Event{
		EmployeeID: ptr(""), Name: "Visitor", RegistrationNumber: "V1", Action: "VISIT", Time: "09:05",
	})
	require.NoError(t, err)
	assert.Nil(t, evt.EmployeeID)
	assert.Equal(t, "09:05:00", evt.Time)
}

func TestServiceCreateRejects(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	base := Event{Name: "Doe Jane", RegistrationNumber: "A100", Action: "ARRIVAL"}

	bad := base
	bad.Name = " "
	_, err := svc.Create(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalid)

	bad = base
	bad.Date = "15/10/2026"
	_, err = svc.Create(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalid)

	bad = base
	bad.Time = "25:00"
	_, err = svc.Create(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalid)

	bad = base
	bad.Status = "maybe"
	_, err = svc.Create(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalid)

	bad = base
	bad.EmployeeID = ptr("2b1f2f64-8f59-4a8e-9d49-111111111111")
	_, err = svc.Create(ctx, bad)
	assert.ErrorIs(t, err, employee.ErrNotFound)
}

func TestServiceListAndStats(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	seed := []Event{
		{EmployeeID: ptr(janeID), Name: "Doe Jane", RegistrationNumber: "A100", Action: "ARRIVAL", Date: "2026-10-15"},
		{Name: "Roe Rick", RegistrationNumber: "B200", Action: "ARRIVAL", Date: "2026-10-14", Status: StatusFailed},
		{Name: "Poe Ann", RegistrationNumber: "C300", Action: "ARRIVAL", Date: "2026-10-15"},
	}
	var ids []string
	for _, e := range seed {
		created, err := svc.Create(ctx, e)
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	today, err := svc.List(ctx, Filter{Date: "2026-10-15"})
	require.NoError(t, err)
	assert.Len(t, today, 2)

	byName, err := svc.List(ctx, Filter{Query: " rick "})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "B200", byName[0].RegistrationNumber)

	byEmployee, err := svc.List(ctx, Filter{EmployeeID: janeID})
	require.NoError(t, err)
	assert.Len(t, byEmployee, 1)

	_, err = svc.List(ctx, Filter{Date: "yesterday"})
	assert.ErrorIs(t, err, ErrInvalid)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Today: 2, Success: 2, Failed: 1}, stats)

	again, err := svc.List(ctx, Filter{Date: "2026-10-15"})
	require.NoError(t, err)
	assert.Equal(t, today, again)
	assert.Len(t, repo.snapshot(), 3)

	require.NoError(t, svc.Delete(ctx, ids[0]))
	n, err := svc.DeleteMany(ctx, []string{ids[1], "missing"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Today: 1, Success: 1}, stats)
	assert.Len(t, repo.snapshot(), 3)

	assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)
}

func TestServiceUpdate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, Event{EmployeeID: ptr(janeID), Name: "Doe Jane", RegistrationNumber: "A100", Action: "ARRIVAL"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, Event{
		Name: "Doe Jane", RegistrationNumber: "A100", Action: "ARRIVAL", Time: "08:45", Note: "badge reader down",
	})
	require.NoError(t, err)
	assert.Equal(t, "08:45:00", updated.Time)
	assert.Equal(t, "badge reader down", updated.Note)
	require.NotNil(t, updated.EmployeeID)
	assert.Equal(t, janeID, *updated.EmployeeID)
	assert.True(t, updated.Active)

	_, err = svc.Update(ctx, "missing", Event{Name: "x", RegistrationNumber: "y", Action: "z"})
	assert.ErrorIs(t, err, ErrNotFound)
}
