package experience

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/shadowing-api/internal/model"
	"github.com/jwalitptl/shadowing-api/internal/repository"
	"github.com/jwalitptl/shadowing-api/pkg/clock"
	"github.com/jwalitptl/shadowing-api/pkg/errors"
)

type ExperienceServicer interface {
	CreateExperience(ctx context.Context, experience *model.Experience) error
	UpdateExperience(ctx context.Context, experience *model.Experience) error
	DeleteExperience(ctx context.Context, id string) error
	ListExperiences(ctx context.Context, filter model.ExperienceFilter) ([]*model.Experience, error)
	Summary(ctx context.Context, filter model.ExperienceFilter) (*model.HoursSummary, error)
}

type Service struct {
	repo  repository.ExperienceRepository
	clock clock.Clock
}

func NewService(repo repository.ExperienceRepository, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.Real()
	}
	return &Service{
		repo:  repo,
		clock: clk,
	}
}

// CreateExperience validates experience, assigns a new id and stamps createdAt.
// Hours is stored as given.
func (s *Service) CreateExperience(ctx context.Context, experience *model.Experience) error {
	if err := normalizeExperience(experience); err != nil {
		return err
	}

	experience.ID = uuid.New().String()
	experience.CreatedAt = clock.Timestamp(s.clock)

	if err := s.repo.Create(ctx, experience); err != nil {
		return errors.Internal(err)
	}
	return nil
}

// UpdateExperience replaces every mutable field. createdAt is never touched.
func (s *Service) UpdateExperience(ctx context.Context, experience *model.Experience) error {
	if strings.TrimSpace(experience.ID) == "" {
		return errors.Validation("id is required")
	}
	if err := normalizeExperience(experience); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, experience); err != nil {
		if errors.IsNotFound(err) {
			return err
		}
		return errors.Internal(err)
	}
	return nil
}

// DeleteExperience removes id. Deleting an unknown id succeeds.
func (s *Service) DeleteExperience(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.Validation("id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Internal(err)
	}
	return nil
}

func (s *Service) ListExperiences(ctx context.Context, filter model.ExperienceFilter) ([]*model.Experience, error) {
	experiences, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("failed to list experiences: %w", err))
	}
	return experiences, nil
}

// Summary totals hours over the experiences matching filter.
func (s *Service) Summary(ctx context.Context, filter model.ExperienceFilter) (*model.HoursSummary, error) {
	experiences, err := s.ListExperiences(ctx, filter)
	if err != nil {
		return nil, err
	}
	return model.Summarize(experiences), nil
}

func normalizeExperience(e *model.Experience) error {
	if strings.TrimSpace(e.OrganizationName) == "" {
		return errors.Validation("organizationName is required")
	}
	if !nonNegative(e.Hours) {
		return errors.Validation("hours must be a non-negative number")
	}
	if e.AvgWeeklyHours != nil && !nonNegative(*e.AvgWeeklyHours) {
		return errors.Validation("avgWeeklyHours must be a non-negative number")
	}
	if e.NumberOfWeeks != nil && !nonNegative(*e.NumberOfWeeks) {
		return errors.Validation("numberOfWeeks must be a non-negative number")
	}

	if e.ExperienceType == "" {
		e.ExperienceType = model.TypeShadowingInPerson
	}
	if !model.IsExperienceType(e.ExperienceType) {
		return errors.Validationf("experienceType must be one of %s", strings.Join(model.ExperienceTypes, ", "))
	}
	return nil
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
