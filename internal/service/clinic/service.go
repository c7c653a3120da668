package clinic

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/shadowing-api/internal/model"
	"github.com/jwalitptl/shadowing-api/internal/repository"
	"github.com/jwalitptl/shadowing-api/pkg/clock"
	"github.com/jwalitptl/shadowing-api/pkg/errors"
)

type ClinicServicer interface {
	CreateClinic(ctx context.Context, clinic *model.Clinic) error
	UpdateClinic(ctx context.Context, clinic *model.Clinic) error
	ListClinics(ctx context.Context, filter model.ClinicFilter) ([]*model.Clinic, error)
}

type Service struct {
	repo  repository.ClinicRepository
	clock clock.Clock
}

func NewService(repo repository.ClinicRepository, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.Real()
	}
	return &Service{
		repo:  repo,
		clock: clk,
	}
}

// CreateClinic validates clinic, assigns a new id and stamps it verified today.
func (s *Service) CreateClinic(ctx context.Context, clinic *model.Clinic) error {
	if err := normalizeClinic(clinic); err != nil {
		return err
	}

	clinic.ID = uuid.New().String()
	clinic.LastVerifiedAt = clock.Today(s.clock)

	if err := s.repo.Create(ctx, clinic); err != nil {
		return errors.Internal(err)
	}
	return nil
}

// UpdateClinic replaces every mutable field of clinic.ID and re-stamps it
// verified today. An unknown id is reported as not found.
func (s *Service) UpdateClinic(ctx context.Context, clinic *model.Clinic) error {
	if strings.TrimSpace(clinic.ID) == "" {
		return errors.Validation("id is required")
	}
	if err := normalizeClinic(clinic); err != nil {
		return err
	}

	clinic.LastVerifiedAt = clock.Today(s.clock)

	if err := s.repo.Update(ctx, clinic); err != nil {
		if errors.IsNotFound(err) {
			return err
		}
		return errors.Internal(err)
	}
	return nil
}

// ListClinics returns clinics ordered by name that satisfy filter.
func (s *Service) ListClinics(ctx context.Context, filter model.ClinicFilter) ([]*model.Clinic, error) {
	clinics, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("failed to list clinics: %w", err))
	}
	return filter.Apply(clinics), nil
}

func normalizeClinic(clinic *model.Clinic) error {
	if strings.TrimSpace(clinic.Name) == "" {
		return errors.Validation("name is required")
	}
	if strings.TrimSpace(clinic.Address) == "" {
		return errors.Validation("address is required")
	}
	if !clinic.Point().Valid() {
		return errors.Validation("lat and lng must be numbers")
	}

	if clinic.ShadowingStatus == "" {
		clinic.ShadowingStatus = model.StatusMixed
	}
	if !model.IsShadowingStatus(clinic.ShadowingStatus) {
		return errors.Validationf("shadowingStatus must be one of %s", strings.Join(model.ShadowingStatuses, ", "))
	}
	return nil
}
