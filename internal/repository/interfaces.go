package repository

import (
	"context"

	"github.com/jwalitptl/shadowing-api/internal/model"
)

// All repository interfaces in one file
type (
	// ClinicRepository persists clinics. Clinics are never deleted.
	ClinicRepository interface {
		Create(ctx context.Context, clinic *model.Clinic) error
		Update(ctx context.Context, clinic *model.Clinic) error
		List(ctx context.Context) ([]*model.Clinic, error)
		Count(ctx context.Context) (int, error)
	}

	// ExperienceRepository persists logged experiences.
	ExperienceRepository interface {
		Create(ctx context.Context, experience *model.Experience) error
		Update(ctx context.Context, experience *model.Experience) error
		Delete(ctx context.Context, id string) error
		List(ctx context.Context, filter model.ExperienceFilter) ([]*model.Experience, error)
	}
)
