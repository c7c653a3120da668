package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/shadowing-api/internal/model"
	"github.com/jwalitptl/shadowing-api/pkg/errors"
)

func seedExperiences(t *testing.T, repo interface {
	Create(ctx context.Context, e *model.Experience) error
}, experiences ...*model.Experience) {
	t.Helper()
	for _, e := range experiences {
		require.NoError(t, repo.Create(context.Background(), e))
	}
}

func ids(experiences []*model.Experience) []string {
	out := make([]string, 0, len(experiences))
	for _, e := range experiences {
		out = append(out, e.ID)
	}
	return out
}

func f(v float64) *float64 { return &v }

func TestExperienceRepository_CreateRoundTrip(t *testing.T) {
	repo := NewExperienceRepository(newTestDB(t), nil)
	ctx := context.Background()

	in := &model.Experience{
		ID:                  "e-1",
		ExperienceType:      model.TypeShadowingInPerson,
		OrganizationName:    "Tacoma Smiles Dental",
		Address:             "1107 MLK Jr Way",
		City:                "Tacoma",
		StateProvince:       "Washington",
		Country:             "United States",
		Zip:                 "98405",
		SupervisorFirstName: "Janet",
		SupervisorLastName:  "Nguyen",
		SupervisorTitle:     "DDS",
		SupervisorPhone:     "(253) 555-0131",
		SupervisorEmail:     "janet@example.com",
		Hours:               40,
		DateStart:           "2025-01-06",
		AvgWeeklyHours:      f(4),
		NumberOfWeeks:       f(10),
		CurrentExperience:   true,
		Status:              model.ProgressInProgress,
		Title:               "Shadowing assistant",
		TypeVolunteer:       true,
		TypeAcademicCredit:  true,
		Description:         "Observed restorative procedures.",
		CreatedAt:           "2025-01-07 10:00:00",
	}
	require.NoError(t, repo.Create(ctx, in))

	out, err := repo.List(ctx, model.ExperienceFilter{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in, out[0])
}

// The store keeps whatever hours it receives even when the weekly inputs
// would derive a different total.
func TestExperienceRepository_DoesNotRecomputeHours(t *testing.T) {
	repo := NewExperienceRepository(newTestDB(t), nil)
	seedExperiences(t, repo, &model.Experience{
		ID: "e-1", ExperienceType: model.TypeVolunteer, OrganizationName: "Food Bank",
		Hours: 7, AvgWeeklyHours: f(4), NumberOfWeeks: f(10),
	})

	out, err := repo.List(context.Background(), model.ExperienceFilter{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 7.0, out[0].Hours)
}

func TestExperienceRepository_ListOrder(t *testing.T) {
	repo := NewExperienceRepository(newTestDB(t), nil)
	seedExperiences(t, repo,
		&model.Experience{ID: "undated", ExperienceType: model.TypeOther, OrganizationName: "A", CreatedAt: "2025-07-01 00:00:00"},
		&model.Experience{ID: "jan", ExperienceType: model.TypeOther, OrganizationName: "B", DateStart: "2025-01-01", CreatedAt: "2025-01-02 00:00:00"},
		&model.Experience{ID: "jun-old", ExperienceType: model.TypeOther, OrganizationName: "C", DateStart: "2025-06-01", CreatedAt: "2025-06-01 08:00:00"},
		&model.Experience{ID: "jun-new", ExperienceType: model.TypeOther, OrganizationName: "D", DateStart: "2025-06-01", CreatedAt: "2025-06-02 08:00:00"},
	)

	out, err := repo.List(context.Background(), model.ExperienceFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"jun-new", "jun-old", "jan", "undated"}, ids(out))
}

func TestExperienceRepository_ListFilters(t *testing.T) {
	repo := NewExperienceRepository(newTestDB(t), nil)
	seedExperiences(t, repo,
		&model.Experience{ID: "janet", ExperienceType: model.TypeShadowingInPerson, OrganizationName: "Foss Dental Group",
			SupervisorFirstName: "Janet", SupervisorLastName: "Lee", SupervisorPhone: "253-555-0198", SupervisorEmail: "janet@foss.example", DateStart: "2025-03-01"},
		&model.Experience{ID: "janacek", ExperienceType: model.TypeVolunteer, OrganizationName: "Food Bank",
			SupervisorFirstName: "Tom", SupervisorLastName: "Janacek", SupervisorPhone: "206-555-0100", SupervisorEmail: "tom@foodbank.example", DateStart: "2025-02-01"},
		&model.Experience{ID: "virtual", ExperienceType: model.TypeShadowingVirtual, OrganizationName: "Volunteer Dental Network",
			SupervisorFirstName: "Ana", SupervisorLastName: "Ruiz", SupervisorPhone: "253-555-0111", SupervisorEmail: "ana@vdn.example", DateStart: "2025-01-01"},
	)

	tests := []struct {
		name   string
		filter model.ExperienceFilter
		want   []string
	}{
		{"no filter", model.ExperienceFilter{}, []string{"janet", "janacek", "virtual"}},
		{"type exact, no substring leakage", model.ExperienceFilter{Type: model.TypeVolunteer}, []string{"janacek"}},
		{"unknown type", model.ExperienceFilter{Type: "vol"}, []string{}},
		{"supervisor first or last name", model.ExperienceFilter{Supervisor: "Jan"}, []string{"janet", "janacek"}},
		{"clinic substring", model.ExperienceFilter{Clinic: "Dental"}, []string{"janet", "virtual"}},
		{"clinic ascii case-insensitive on sqlite", model.ExperienceFilter{Clinic: "food"}, []string{"janacek"}},
		{"phone substring", model.ExperienceFilter{Phone: "253-555"}, []string{"janet", "virtual"}},
		{"email substring", model.ExperienceFilter{Email: "foodbank"}, []string{"janacek"}},
		{"combined", model.ExperienceFilter{Phone: "253", Type: model.TypeShadowingVirtual}, []string{"virtual"}},
		{"wildcard characters are data", model.ExperienceFilter{Clinic: "'; DROP TABLE experiences; --"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := repo.List(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(out))
		})
	}
}

func TestExperienceRepository_UpdateReplacesAllFields(t *testing.T) {
	repo := NewExperienceRepository(newTestDB(t), nil)
	ctx := context.Background()
	seedExperiences(t, repo, &model.Experience{
		ID: "e-1", ExperienceType: model.TypeVolunteer, OrganizationName: "Food Bank", City: "Tacoma",
		Hours: 3, AvgWeeklyHours: f(1), TypeVolunteer: true, CreatedAt: "2025-01-01 00:00:00",
	})

	replacement := &model.Experience{
		ID: "e-1", ExperienceType: model.TypeResearch, OrganizationName: "UW Lab", Hours: 12,
		CreatedAt: "ignored",
	}
	require.NoError(t, repo.Update(ctx, replacement))

	out, err := repo.List(ctx, model.ExperienceFilter{})
	require.NoError(t, err)
	require.Len(t, out, 1)

	got := out[0]
	assert.Equal(t, "UW Lab", got.OrganizationName)
	assert.Equal(t, model.TypeResearch, got.ExperienceType)
	assert.Equal(t, "", got.City)
	assert.Nil(t, got.AvgWeeklyHours)
	assert.False(t, got.TypeVolunteer)
	assert.Equal(t, 12.0, got.Hours)
	assert.Equal(t, "2025-01-01 00:00:00", got.CreatedAt)
}

func TestExperienceRepository_UpdateMissing(t *testing.T) {
	repo := NewExperienceRepository(newTestDB(t), nil)
	err := repo.Update(context.Background(), &model.Experience{ID: "missing", ExperienceType: model.TypeOther, OrganizationName: "x"})
	assert.True(t, errors.IsNotFound(err))
}

func TestExperienceRepository_DeleteIsIdempotent(t *testing.T) {
	repo := NewExperienceRepository(newTestDB(t), nil)
	ctx := context.Background()
	seedExperiences(t, repo,
		&model.Experience{ID: "keep", ExperienceType: model.TypeOther, OrganizationName: "A"},
		&model.Experience{ID: "drop", ExperienceType: model.TypeOther, OrganizationName: "B"},
	)

	require.NoError(t, repo.Delete(ctx, "drop"))
	require.NoError(t, repo.Delete(ctx, "drop"))
	require.NoError(t, repo.Delete(ctx, "never-existed"))

	out, err := repo.List(ctx, model.ExperienceFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, ids(out))
}
