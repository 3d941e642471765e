package repository

import (
	"context"

	"aurora-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ExperienceRepository handles database operations for experience posts
type ExperienceRepository struct {
	db *pgxpool.Pool
}

// NewExperienceRepository creates a new experience repository
func NewExperienceRepository(db *pgxpool.Pool) *ExperienceRepository {
	return &ExperienceRepository{db: db}
}

// Create inserts a new experience post
func (r *ExperienceRepository) Create(ctx context.Context, exp *models.Experience) error {
	query := `
		INSERT INTO experiences (
			experience, tagged_email, message_to_recipient,
			user_id, user_name, user_email, user_photo
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		exp.Experience,
		exp.TaggedEmail,
		exp.MessageToRecipient,
		exp.UserID,
		exp.UserName,
		exp.UserEmail,
		exp.UserPhoto,
	).Scan(&exp.ID, &exp.CreatedAt)
}

// ListLatest retrieves the most recent experiences, newest first
func (r *ExperienceRepository) ListLatest(ctx context.Context, limit int) ([]*models.Experience, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, experience, tagged_email, message_to_recipient,
			user_id, user_name, user_email, user_photo, created_at
		FROM experiences
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	experiences := []*models.Experience{}
	for rows.Next() {
		exp := &models.Experience{}
		err := rows.Scan(
			&exp.ID,
			&exp.Experience,
			&exp.TaggedEmail,
			&exp.MessageToRecipient,
			&exp.UserID,
			&exp.UserName,
			&exp.UserEmail,
			&exp.UserPhoto,
			&exp.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		experiences = append(experiences, exp)
	}

	return experiences, rows.Err()
}
