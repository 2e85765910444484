package postgres

import (
	"context"

	"github.com/aussiebroadwan/docchat/internal/docchat/domain"
)

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) get(ctx context.Context, where string, arg string) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, profile_image, created_at
		 FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.ProfileImage, &u.CreatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.get(ctx, `id = $1`, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.get(ctx, `lower(email) = lower($1)`, email)
}

func (r *usersRepo) GetProfileByID(ctx context.Context, id string) (domain.Profile, error) {
	var p domain.Profile
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, profile_image, created_at FROM users WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Email, &p.ProfileImage, &p.CreatedAt)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	return p, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, profile_image, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.ProfileImage, u.CreatedAt.UTC(),
	)
	return mapUniqueViolation(err)
}
