package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/shadowing-api/internal/model"
	"github.com/jwalitptl/shadowing-api/internal/repository"
	"github.com/jwalitptl/shadowing-api/pkg/errors"
	"github.com/jwalitptl/shadowing-api/pkg/metrics"
)

type experienceRepository struct {
	BaseRepository
}

func NewExperienceRepository(db *sqlx.DB, m *metrics.Metrics) repository.ExperienceRepository {
	return &experienceRepository{NewBaseRepository(db, m)}
}

const experienceColumns = `
	id, experience_type, organization_name,
	COALESCE(address, '') AS address,
	COALESCE(address2, '') AS address2,
	COALESCE(city, '') AS city,
	COALESCE(state_province, '') AS state_province,
	COALESCE(country, '') AS country,
	COALESCE(zip, '') AS zip,
	COALESCE(supervisor_first_name, '') AS supervisor_first_name,
	COALESCE(supervisor_last_name, '') AS supervisor_last_name,
	COALESCE(supervisor_title, '') AS supervisor_title,
	COALESCE(supervisor_phone, '') AS supervisor_phone,
	COALESCE(supervisor_email, '') AS supervisor_email,
	hours,
	COALESCE(date_start, '') AS date_start,
	COALESCE(date_end, '') AS date_end,
	COALESCE(notes, '') AS notes,
	COALESCE(description, '') AS description,
	avg_weekly_hours,
	number_of_weeks,
	COALESCE(current_experience, 0) AS current_experience,
	COALESCE(status, '') AS status,
	COALESCE(title, '') AS title,
	COALESCE(type_compensated, 0) AS type_compensated,
	COALESCE(type_academic_credit, 0) AS type_academic_credit,
	COALESCE(type_volunteer, 0) AS type_volunteer,
	COALESCE(created_at, '') AS created_at`

// Create inserts experience as given; ID and CreatedAt are set by the caller.
func (r *experienceRepository) Create(ctx context.Context, e *model.Experience) error {
	query := `
		INSERT INTO experiences (
			id, experience_type, organization_name, address, address2, city, state_province, country, zip,
			supervisor_first_name, supervisor_last_name, supervisor_title, supervisor_phone, supervisor_email,
			hours, date_start, date_end, notes, description, avg_weekly_hours, number_of_weeks,
			current_experience, status, title, type_compensated, type_academic_credit, type_volunteer,
			created_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?,
			?
		)
	`
	args := append([]interface{}{e.ID}, mutableExperienceArgs(e)...)
	args = append(args, e.CreatedAt)

	return r.observe("create_experience", func() error {
		if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
			return fmt.Errorf("failed to create experience: %w", err)
		}
		return nil
	})
}

// Update replaces every mutable field; id and created_at are kept.
func (r *experienceRepository) Update(ctx context.Context, e *model.Experience) error {
	query := `
		UPDATE experiences SET
			experience_type = ?, organization_name = ?, address = ?, address2 = ?, city = ?,
			state_province = ?, country = ?, zip = ?,
			supervisor_first_name = ?, supervisor_last_name = ?, supervisor_title = ?,
			supervisor_phone = ?, supervisor_email = ?,
			hours = ?, date_start = ?, date_end = ?, notes = ?, description = ?,
			avg_weekly_hours = ?, number_of_weeks = ?,
			current_experience = ?, status = ?, title = ?,
			type_compensated = ?, type_academic_credit = ?, type_volunteer = ?
		WHERE id = ?
	`
	args := append(mutableExperienceArgs(e), e.ID)

	return r.observe("update_experience", func() error {
		result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
		if err != nil {
			return fmt.Errorf("failed to update experience: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return errors.NotFound("experience")
		}
		return nil
	})
}

// Delete removes the experience. Deleting an absent id is not an error.
func (r *experienceRepository) Delete(ctx context.Context, id string) error {
	return r.observe("delete_experience", func() error {
		if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM experiences WHERE id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete experience: %w", err)
		}
		return nil
	})
}

// List returns experiences matching filter, newest start date first. Rows
// without a start date sort after every dated row.
func (r *experienceRepository) List(ctx context.Context, filter model.ExperienceFilter) ([]*model.Experience, error) {
	where, args := buildExperienceWhere(filter)
	query := `SELECT ` + experienceColumns + ` FROM experiences` + where +
		` ORDER BY COALESCE(date_start, '') DESC, COALESCE(created_at, '') DESC`

	experiences := make([]*model.Experience, 0)
	err := r.observe("list_experiences", func() error {
		if err := r.db.SelectContext(ctx, &experiences, r.db.Rebind(query), args...); err != nil {
			return fmt.Errorf("failed to list experiences: %w", err)
		}
		return nil
	})
	return experiences, err
}

// buildExperienceWhere turns filter into a WHERE clause with bound
// arguments. Substring criteria use LIKE, so case sensitivity follows the
// engine: case-insensitive for ASCII on SQLite, case-sensitive on PostgreSQL.
func buildExperienceWhere(filter model.ExperienceFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)

	if filter.Clinic != "" {
		conds = append(conds, "organization_name LIKE ?")
		args = append(args, contains(filter.Clinic))
	}
	if filter.Supervisor != "" {
		conds = append(conds, "(supervisor_first_name LIKE ? OR supervisor_last_name LIKE ?)")
		args = append(args, contains(filter.Supervisor), contains(filter.Supervisor))
	}
	if filter.Phone != "" {
		conds = append(conds, "supervisor_phone LIKE ?")
		args = append(args, contains(filter.Phone))
	}
	if filter.Email != "" {
		conds = append(conds, "supervisor_email LIKE ?")
		args = append(args, contains(filter.Email))
	}
	if filter.Type != "" {
		conds = append(conds, "experience_type = ?")
		args = append(args, filter.Type)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func contains(s string) string {
	return "%" + s + "%"
}

// mutableExperienceArgs lists the replaceable columns in statement order.
// Booleans go in as 0/1 because the columns are INTEGER on every engine.
func mutableExperienceArgs(e *model.Experience) []interface{} {
	return []interface{}{
		e.ExperienceType,
		e.OrganizationName,
		e.Address,
		e.Address2,
		e.City,
		e.StateProvince,
		e.Country,
		e.Zip,
		e.SupervisorFirstName,
		e.SupervisorLastName,
		e.SupervisorTitle,
		e.SupervisorPhone,
		e.SupervisorEmail,
		e.Hours,
		e.DateStart,
		e.DateEnd,
		e.Notes,
		e.Description,
		e.AvgWeeklyHours,
		e.NumberOfWeeks,
		boolToInt(e.CurrentExperience),
		e.Status,
		e.Title,
		boolToInt(e.TypeCompensated),
		boolToInt(e.TypeAcademicCredit),
		boolToInt(e.TypeVolunteer),
	}
}
