package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/shadowing-api/internal/model"
	"github.com/jwalitptl/shadowing-api/internal/repository"
	"github.com/jwalitptl/shadowing-api/pkg/errors"
	"github.com/jwalitptl/shadowing-api/pkg/metrics"
)

type clinicRepository struct {
	BaseRepository
}

func NewClinicRepository(db *sqlx.DB, m *metrics.Metrics) repository.ClinicRepository {
	return &clinicRepository{NewBaseRepository(db, m)}
}

const clinicColumns = `
	id, name, address,
	COALESCE(phone, '') AS phone,
	lat, lng,
	COALESCE(zip, '') AS zip,
	COALESCE(shadowing_status, 'mixed') AS shadowing_status,
	COALESCE(notes, '') AS notes,
	COALESCE(last_verified_at, '') AS last_verified_at`

// Create inserts clinic as given; ID and LastVerifiedAt are set by the caller.
func (r *clinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	query := `
		INSERT INTO clinics (
			id, name, address, phone, lat, lng, zip, shadowing_status, notes, last_verified_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
	`
	return r.observe("create_clinic", func() error {
		_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
			clinic.ID,
			clinic.Name,
			clinic.Address,
			clinic.Phone,
			clinic.Lat,
			clinic.Lng,
			clinic.Zip,
			clinic.ShadowingStatus,
			clinic.Notes,
			clinic.LastVerifiedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create clinic: %w", err)
		}
		return nil
	})
}

// Update replaces every mutable field of the clinic with the given id.
func (r *clinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	query := `
		UPDATE clinics
		SET name = ?, address = ?, phone = ?, lat = ?, lng = ?, zip = ?,
			shadowing_status = ?, notes = ?, last_verified_at = ?
		WHERE id = ?
	`
	return r.observe("update_clinic", func() error {
		result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
			clinic.Name,
			clinic.Address,
			clinic.Phone,
			clinic.Lat,
			clinic.Lng,
			clinic.Zip,
			clinic.ShadowingStatus,
			clinic.Notes,
			clinic.LastVerifiedAt,
			clinic.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update clinic: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return errors.NotFound("clinic")
		}
		return nil
	})
}

func (r *clinicRepository) List(ctx context.Context) ([]*model.Clinic, error) {
	query := `SELECT ` + clinicColumns + ` FROM clinics ORDER BY name ASC`

	clinics := make([]*model.Clinic, 0)
	err := r.observe("list_clinics", func() error {
		if err := r.db.SelectContext(ctx, &clinics, query); err != nil {
			return fmt.Errorf("failed to list clinics: %w", err)
		}
		return nil
	})
	return clinics, err
}

func (r *clinicRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.observe("count_clinics", func() error {
		if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM clinics`); err != nil {
			return fmt.Errorf("failed to count clinics: %w", err)
		}
		return nil
	})
	return count, err
}
