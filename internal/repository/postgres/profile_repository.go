package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gdugdh24/tapcard-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (
			id, full_name, phone, email, description, location, social_links
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, last_seen
	`
	err := r.db.QueryRowContext(
		ctx, query,
		profile.ID, profile.FullName, profile.Phone, profile.Email,
		profile.Description, profile.Location, profile.SocialLinks,
	).Scan(&profile.CreatedAt, &profile.LastSeen)
	if isUniqueViolation(err) {
		return domain.ErrProfileAlreadyExists
	}
	return err
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	var profile domain.Profile
	query := `
		SELECT id, created_at, last_seen, full_name, phone, email,
		       description, location, social_links
		FROM profiles WHERE id = $1
	`
	err := r.db.GetContext(ctx, &profile, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	query := `
		UPDATE profiles
		SET full_name = $1, phone = $2, email = $3, description = $4,
		    location = $5, social_links = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $7
		RETURNING last_seen
	`
	err := r.db.QueryRowContext(
		ctx, query,
		profile.FullName, profile.Phone, profile.Email, profile.Description,
		profile.Location, profile.SocialLinks, profile.ID,
	).Scan(&profile.LastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProfileNotFound
	}
	return err
}

func (r *profileRepository) TouchLastSeen(ctx context.Context, id string) error {
	query := `UPDATE profiles SET last_seen = CURRENT_TIMESTAMP WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
