package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gdugdh24/tapcard-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const connectionColumns = `
	id, user_id, connected_user_id, connected_user_name, connected_user_phone,
	connected_user_email, connected_user_description, connected_user_location,
	connected_user_social_links, timestamp, created_at, connection_method,
	event_name, event_location, latitude, longitude, notes
`

type connectionRepository struct {
	db *sqlx.DB
}

func NewConnectionRepository(db *sqlx.DB) repository.ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(ctx context.Context, conn *domain.Connection) (string, error) {
	conn.ID = uuid.NewString()

	query := `
		INSERT INTO connections (
			id, user_id, connected_user_id, connected_user_name, connected_user_phone,
			connected_user_email, connected_user_description, connected_user_location,
			connected_user_social_links, timestamp, connection_method,
			event_name, event_location, latitude, longitude, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		conn.ID, conn.UserID, conn.ConnectedUserID, conn.ConnectedUserName, conn.ConnectedUserPhone,
		conn.ConnectedUserEmail, conn.ConnectedUserDescription, conn.ConnectedUserLocation,
		conn.ConnectedUserSocialLinks, conn.Timestamp, conn.ConnectionMethod,
		conn.EventName, conn.EventLocation, conn.Latitude, conn.Longitude, conn.Notes,
	).Scan(&conn.CreatedAt)
	if err != nil {
		conn.ID = ""
		return "", err
	}
	return conn.ID, nil
}

func (r *connectionRepository) GetByID(ctx context.Context, id string) (*domain.Connection, error) {
	var conn domain.Connection
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = $1`
	err := r.db.GetContext(ctx, &conn, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) GetByUsers(ctx context.Context, userID, connectedUserID string) (*domain.Connection, error) {
	var conn domain.Connection
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE user_id = $1 AND connected_user_id = $2 LIMIT 1`
	err := r.db.GetContext(ctx, &conn, query, userID, connectedUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Connection, error) {
	var conns []*domain.Connection
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE user_id = $1`
	err := r.db.SelectContext(ctx, &conns, query, userID)
	return conns, err
}

func (r *connectionRepository) UpdateNotes(ctx context.Context, id, notes string) error {
	query := `UPDATE connections SET notes = $1 WHERE id = $2`
	return r.execOne(ctx, query, notes, id)
}

func (r *connectionRepository) UpdateEvent(ctx context.Context, id, name, location string) error {
	query := `UPDATE connections SET event_name = $1, event_location = $2 WHERE id = $3`
	return r.execOne(ctx, query, name, location, id)
}

func (r *connectionRepository) UpdateProfileSnapshot(ctx context.Context, id string, s domain.ProfileSnapshot) error {
	query := `
		UPDATE connections
		SET connected_user_name = $1, connected_user_phone = $2, connected_user_email = $3,
		    connected_user_description = $4, connected_user_location = $5,
		    connected_user_social_links = $6
		WHERE id = $7
	`
	return r.execOne(ctx, query, s.Name, s.Phone, s.Email, s.Description, s.Location, s.SocialLinks, id)
}

func (r *connectionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM connections WHERE id = $1`
	return r.execOne(ctx, query, id)
}

func (r *connectionRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if isMalformedID(err) {
		return domain.ErrConnectionNotFound
	}
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrConnectionNotFound
	}
	return nil
}
