package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mediseen/teleconsult-api/internal/model"
	apperrors "github.com/mediseen/teleconsult-api/pkg/errors"
)

func (r *doctorRepository) GetProfile(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	query := `
		SELECT id, name, specialization, avatar_url, rating, review_count,
			   hospital_id, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`
	var profile model.DoctorProfile
	err := r.db.GetContext(ctx, &profile, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("doctor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor profile: %w", err)
	}
	return &profile, nil
}

func (r *doctorRepository) GetFeeSchedule(ctx context.Context, doctorID uuid.UUID) (*model.FeeSchedule, error) {
	query := `
		SELECT doctor_id, consultation_fee, experience_years, languages
		FROM fee_schedules
		WHERE doctor_id = $1
	`
	var fee model.FeeSchedule
	err := r.db.GetContext(ctx, &fee, query, doctorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("fee schedule", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fee schedule: %w", err)
	}
	return &fee, nil
}

func (r *doctorRepository) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.DoctorProfile, error) {
	query := `
		SELECT id, name, specialization, avatar_url, rating, review_count,
			   hospital_id, created_at, updated_at
		FROM doctors
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Specialization != "" {
			query += fmt.Sprintf(" AND specialization = $%d", argCount)
			args = append(args, filters.Specialization)
			argCount++
		}
		if filters.HospitalID != uuid.Nil {
			query += fmt.Sprintf(" AND hospital_id = $%d", argCount)
			args = append(args, filters.HospitalID)
			argCount++
		}
		if filters.MinRating > 0 {
			query += fmt.Sprintf(" AND rating >= $%d", argCount)
			args = append(args, filters.MinRating)
			argCount++
		}
	}

	query += " ORDER BY rating DESC, review_count DESC"

	var doctors []*model.DoctorProfile
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}
