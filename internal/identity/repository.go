package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clemsytoff/tradesarace/internal/apperror"
	"github.com/clemsytoff/tradesarace/internal/wallet"
)

const uniqueViolation = "23505"

// Repository persists users together with their wallet and positions blobs.
// Missing rows are reported as apperror.ErrNotFound and duplicate emails as
// apperror.ErrDuplicate.
type Repository interface {
	Create(ctx context.Context, user NewUser) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	LoadState(ctx context.Context, id int64) (wallet.State, error)
	SaveState(ctx context.Context, id int64, state wallet.State) error
	ListStandings(ctx context.Context) ([]Standing, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user with the default wallet and no positions.
func (r *PostgresRepository) Create(ctx context.Context, user NewUser) (User, error) {
	walletJSON, positionsJSON, err := wallet.State{Wallet: wallet.Default()}.Encode()
	if err != nil {
		return User{}, err
	}

	created := User{Name: user.Name, Email: user.Email, PasswordHash: user.PasswordHash}
	err = r.db.QueryRow(ctx, `INSERT INTO users (name, email, password_hash, wallet_json, positions_json)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`,
		user.Name, user.Email, string(user.PasswordHash), string(walletJSON), string(positionsJSON),
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, fmt.Errorf("insert user %s: %w", user.Email, apperror.ErrDuplicate)
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	created.CreatedAt = created.CreatedAt.UTC()
	return created, nil
}

// FindByEmail fetches a user by normalized email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID fetches a user by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (User, error) {
	var (
		user User
		hash string
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &hash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperror.ErrNotFound
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	user.PasswordHash = []byte(hash)
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

// LoadState reads and decodes the wallet and positions blobs.
func (r *PostgresRepository) LoadState(ctx context.Context, id int64) (wallet.State, error) {
	var walletJSON, positionsJSON *string
	err := r.db.QueryRow(ctx, `SELECT wallet_json, positions_json FROM users WHERE id = $1`, id).
		Scan(&walletJSON, &positionsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return wallet.State{}, apperror.ErrNotFound
		}
		return wallet.State{}, fmt.Errorf("load state: %w", err)
	}
	return wallet.DecodeState(blob(walletJSON), blob(positionsJSON)), nil
}

// SaveState replaces both blobs in a single statement.
func (r *PostgresRepository) SaveState(ctx context.Context, id int64, state wallet.State) error {
	walletJSON, positionsJSON, err := state.Encode()
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET wallet_json = $1, positions_json = $2 WHERE id = $3`,
		string(walletJSON), string(positionsJSON), id)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

// ListStandings returns every user's USD balance in id order.
func (r *PostgresRepository) ListStandings(ctx context.Context) ([]Standing, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, wallet_json FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list standings: %w", err)
	}
	defer rows.Close()

	var standings []Standing
	for rows.Next() {
		var (
			s          Standing
			walletJSON *string
		)
		if err := rows.Scan(&s.ID, &s.Name, &walletJSON); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		s.USDBalance = wallet.BalanceOf(blob(walletJSON))
		standings = append(standings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list standings: %w", err)
	}
	return standings, nil
}

func blob(s *string) []byte {
	if s == nil {
		return nil
	}
	return []byte(*s)
}
