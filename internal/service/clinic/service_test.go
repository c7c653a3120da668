package clinic

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/shadowing-api/internal/model"
	"github.com/jwalitptl/shadowing-api/pkg/clock"
	"github.com/jwalitptl/shadowing-api/pkg/errors"
)

type fakeRepo struct {
	clinics map[string]*model.Clinic
	order   []string
	failErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{clinics: make(map[string]*model.Clinic)}
}

func (r *fakeRepo) Create(_ context.Context, c *model.Clinic) error {
	if r.failErr != nil {
		return r.failErr
	}
	cp := *c
	r.clinics[c.ID] = &cp
	r.order = append(r.order, c.ID)
	return nil
}

func (r *fakeRepo) Update(_ context.Context, c *model.Clinic) error {
	if _, ok := r.clinics[c.ID]; !ok {
		return errors.NotFound("clinic")
	}
	cp := *c
	r.clinics[c.ID] = &cp
	return nil
}

func (r *fakeRepo) List(context.Context) ([]*model.Clinic, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	out := make([]*model.Clinic, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.clinics[id])
	}
	return out, nil
}

func (r *fakeRepo) Count(context.Context) (int, error) { return len(r.clinics), nil }

var fixedNow = clock.Fixed(time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC))

func validClinic() *model.Clinic {
	return &model.Clinic{Name: "Hilltop Oral Health Center", Address: "1202 S L St", Lat: 47.2492, Lng: -122.4532}
}

func TestCreateClinic(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fixedNow)

	c := validClinic()
	require.NoError(t, svc.CreateClinic(context.Background(), c))

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "2026-03-14", c.LastVerifiedAt)
	assert.Equal(t, model.StatusMixed, c.ShadowingStatus)
	assert.Equal(t, c, repo.clinics[c.ID])
}

func TestCreateClinicAssignsDistinctIDs(t *testing.T) {
	svc := NewService(newFakeRepo(), fixedNow)
	a, b := validClinic(), validClinic()
	require.NoError(t, svc.CreateClinic(context.Background(), a))
	require.NoError(t, svc.CreateClinic(context.Background(), b))
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCreateClinicValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *model.Clinic)
	}{
		{"missing name", func(c *model.Clinic) { c.Name = "" }},
		{"blank address", func(c *model.Clinic) { c.Address = "   " }},
		{"nan latitude", func(c *model.Clinic) { c.Lat = math.NaN() }},
		{"infinite longitude", func(c *model.Clinic) { c.Lng = math.Inf(-1) }},
		{"unknown status", func(c *model.Clinic) { c.ShadowingStatus = "closed" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			svc := NewService(repo, fixedNow)

			c := validClinic()
			tt.mutate(c)

			err := svc.CreateClinic(context.Background(), c)
			assert.True(t, errors.IsValidation(err), "got %v", err)
			assert.Empty(t, repo.clinics)
		})
	}
}

// Coordinates are only checked for being numbers, not for plausible ranges.
func TestCreateClinicAcceptsAnyFiniteCoordinates(t *testing.T) {
	repo := newFakeRepo()
	c := validClinic()
	c.Lat, c.Lng = 91, -200

	require.NoError(t, NewService(repo, fixedNow).CreateClinic(context.Background(), c))
	assert.Equal(t, 91.0, repo.clinics[c.ID].Lat)
	assert.Equal(t, -200.0, repo.clinics[c.ID].Lng)
}

func TestCreateClinicStorageFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failErr = fmt.Errorf("database is locked")

	err := NewService(repo, fixedNow).CreateClinic(context.Background(), validClinic())

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrInternal, appErr.Code)
}

func TestUpdateClinic(t *testing.T) {
	repo := newFakeRepo()
	created := NewService(repo, clock.Fixed(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	c := validClinic()
	require.NoError(t, created.CreateClinic(context.Background(), c))

	svc := NewService(repo, fixedNow)
	update := &model.Clinic{ID: c.ID, Name: "Renamed", Address: "2 Main", Lat: 1, Lng: 2, ShadowingStatus: model.StatusPending}
	require.NoError(t, svc.UpdateClinic(context.Background(), update))

	stored := repo.clinics[c.ID]
	assert.Equal(t, "Renamed", stored.Name)
	assert.Equal(t, "2026-03-14", stored.LastVerifiedAt)
	assert.Equal(t, model.StatusPending, stored.ShadowingStatus)
}

func TestUpdateClinicNotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), fixedNow)
	c := validClinic()
	c.ID = "missing"

	err := svc.UpdateClinic(context.Background(), c)
	assert.True(t, errors.IsNotFound(err))
}

func TestListClinicsAppliesFilter(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fixedNow)
	for _, c := range []*model.Clinic{
		{Name: "A", Address: "a", Lat: 47.2478, Lng: -122.4362, ShadowingStatus: model.StatusAvailable, Zip: "98405"},
		{Name: "B", Address: "b", Lat: 47.2729, Lng: -122.4714, ShadowingStatus: model.StatusMixed, Zip: "98407"},
	} {
		require.NoError(t, svc.CreateClinic(context.Background(), c))
	}

	all, err := svc.ListClinics(context.Background(), model.ClinicFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	available, err := svc.ListClinics(context.Background(), model.ClinicFilter{Status: model.StatusAvailable})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "A", available[0].Name)
}
