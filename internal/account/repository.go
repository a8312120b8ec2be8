package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate indicates the username or email is already taken.
	ErrDuplicate = errors.New("user already exists")
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	// FindByIdentifier resolves a user by username or email. At least one
	// must be non-empty; when both are given either match wins.
	FindByIdentifier(ctx context.Context, username, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)

	// SetRefreshToken unconditionally overwrites the stored refresh token.
	// Login uses this: the previous value, whatever it was, is invalidated.
	SetRefreshToken(ctx context.Context, id, token string) error
	// RotateRefreshToken replaces the stored refresh token only if the
	// current value equals expected. Returns false when the precondition
	// fails, which callers treat the same as a stale-token replay. The
	// compare-and-swap is a single statement so two concurrent rotations
	// of the same token cannot both win.
	RotateRefreshToken(ctx context.Context, id, expected, next string) (bool, error)
	// ClearRefreshToken removes the stored refresh token. Idempotent.
	ClearRefreshToken(ctx context.Context, id string) error

	UpdatePasswordHash(ctx context.Context, id string, hash []byte) error
	UpdateProfile(ctx context.Context, id, fullName, email string) (User, error)
	UpdateAvatar(ctx context.Context, id, url string) (User, error)
	UpdateCover(ctx context.Context, id, url string) (User, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, email, full_name, avatar_url, cover_url, password_hash, refresh_token, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var (
		id           uuid.UUID
		refreshToken *string
		createdAt    time.Time
		updatedAt    time.Time
		user         User
	)
	err := row.Scan(&id, &user.Username, &user.Email, &user.FullName, &user.AvatarURL,
		&user.CoverURL, &user.PasswordHash, &refreshToken, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.ID = id.String()
	if refreshToken != nil {
		user.RefreshToken = *refreshToken
	}
	user.CreatedAt = createdAt.UTC()
	user.UpdatedAt = updatedAt.UTC()
	return user, nil
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, username, email, full_name, avatar_url, cover_url, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		userID, user.Username, user.Email, user.FullName, user.AvatarURL, user.CoverURL, user.PasswordHash, user.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// FindByIdentifier fetches a user matching the given username or email.
func (r *PostgresRepository) FindByIdentifier(ctx context.Context, username, email string) (User, error) {
	if username == "" && email == "" {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users
        WHERE (username = $1 AND $1 <> '') OR (email = $2 AND $2 <> '')`, username, email)
	return scanUser(row)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// SetRefreshToken overwrites the stored refresh token unconditionally.
func (r *PostgresRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET refresh_token = $1, updated_at = now() WHERE id = $2`, token, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RotateRefreshToken performs the conditional overwrite in one statement.
func (r *PostgresRepository) RotateRefreshToken(ctx context.Context, id, expected, next string) (bool, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return false, ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET refresh_token = $1, updated_at = now()
        WHERE id = $2 AND refresh_token = $3`, next, userID, expected)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// ClearRefreshToken nulls out the stored refresh token.
func (r *PostgresRepository) ClearRefreshToken(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.db.Exec(ctx, `UPDATE users SET refresh_token = NULL, updated_at = now() WHERE id = $1`, userID)
	return err
}

// UpdatePasswordHash overwrites the stored password hash.
func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id string, hash []byte) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile updates the mutable profile fields and returns the fresh row.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id, fullName, email string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `UPDATE users SET full_name = $1, email = $2, updated_at = now()
        WHERE id = $3 RETURNING `+userColumns, fullName, email, userID)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return User{}, ErrDuplicate
		}
		return User{}, err
	}
	return user, nil
}

// UpdateAvatar stores a new avatar URL.
func (r *PostgresRepository) UpdateAvatar(ctx context.Context, id, url string) (User, error) {
	return r.updateMediaURL(ctx, id, "avatar_url", url)
}

// UpdateCover stores a new cover image URL.
func (r *PostgresRepository) UpdateCover(ctx context.Context, id, url string) (User, error) {
	return r.updateMediaURL(ctx, id, "cover_url", url)
}

func (r *PostgresRepository) updateMediaURL(ctx context.Context, id, column, url string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `UPDATE users SET `+column+` = $1, updated_at = now()
        WHERE id = $2 RETURNING `+userColumns, url, userID)
	return scanUser(row)
}
