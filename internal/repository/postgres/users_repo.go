package postgres

import (
	"context"

	"github.com/davquintana/contactbook-backend/internal/models"
	"github.com/davquintana/contactbook-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type usersRepo struct{ pool *pgxpool.Pool }

func NewUsers(pool *pgxpool.Pool) repository.Users {
	return &usersRepo{pool: pool}
}

const userCols = `id, usuario, correo, password_hash, role, created_at, updated_at`

func (r *usersRepo) Create(ctx context.Context, handle, email, hash, role string) (models.User, error) {
	id := uuid.NewString()
	var u models.User
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users(id, usuario, correo, password_hash, role) VALUES($1,$2,$3,$4,$5)
		 RETURNING `+userCols,
		id, handle, email, hash, role,
	).Scan(&u.ID, &u.Handle, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Handle, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) GetByHandleOrEmail(ctx context.Context, handleOrEmail string) (models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE usuario=$1 OR correo=$1`, handleOrEmail,
	).Scan(&u.ID, &u.Handle, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, id, handle, email string) (models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET usuario=$2, correo=$3, updated_at=now() WHERE id=$1
		 RETURNING `+userCols,
		id, handle, email,
	).Scan(&u.ID, &u.Handle, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) Exists(ctx context.Context, handle, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE usuario=$1 OR correo=$2)`, handle, email,
	).Scan(&exists)
	return exists, mapErr(err)
}
