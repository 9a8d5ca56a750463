package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/crisisapi/pkg/models"
)

const credentialColumns = `id, key_value, email, password, is_active, email_verified, verification_token,
	usage_count, last_used_at, last_connection, created_at`

const crisisColumns = `id, name, type, category, origin, start_date, end_date, duration_in_months,
	geographical_extension, causes, consequences, resolutions, "references"`

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Credentials ---

func (s *PostgresStore) FindActiveByKey(ctx context.Context, keyValue string) (*models.Credential, error) {
	return s.findCredential(ctx, "find active key",
		`SELECT `+credentialColumns+` FROM api_keys WHERE key_value = $1 AND is_active`, keyValue)
}

func (s *PostgresStore) FindByKey(ctx context.Context, keyValue string) (*models.Credential, error) {
	return s.findCredential(ctx, "find key",
		`SELECT `+credentialColumns+` FROM api_keys WHERE key_value = $1`, keyValue)
}

func (s *PostgresStore) FindByEmailHash(ctx context.Context, emailHash string) (*models.Credential, error) {
	return s.findCredential(ctx, "find by email",
		`SELECT `+credentialColumns+` FROM api_keys WHERE email = $1`, emailHash)
}

func (s *PostgresStore) FindLoginable(ctx context.Context, emailHash string) (*models.Credential, error) {
	return s.findCredential(ctx, "find loginable",
		`SELECT `+credentialColumns+` FROM api_keys WHERE email = $1 AND email_verified AND is_active`, emailHash)
}

func (s *PostgresStore) ListCredentials(ctx context.Context, activeOnly bool) ([]*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM api_keys WHERE key_value IS NOT NULL`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []*models.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

func (s *PostgresStore) CreateCredential(ctx context.Context, c *models.Credential) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, key_value, email, password, is_active, email_verified, verification_token, usage_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.KeyValue, c.Email, c.Password, c.IsActive, c.EmailVerified, c.VerificationToken, c.UsageCount, c.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteCredential(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) VerifyCredential(ctx context.Context, token string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET email_verified = TRUE, is_active = TRUE, verification_token = NULL
		 WHERE verification_token = $1`, token)
	if err != nil {
		return fmt.Errorf("verify credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) IssueKey(ctx context.Context, emailHash, keyValue string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET key_value = $2, is_active = TRUE
		 WHERE email = $1 AND (key_value IS NULL OR key_value = '')`, emailHash, keyValue)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("issue key: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing updated: either the account is unknown or it already holds a key.
	if _, err := s.FindByEmailHash(ctx, emailHash); err != nil {
		return err
	}
	return ErrDuplicateKey
}

func (s *PostgresStore) RecordKeyUsage(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET usage_count = usage_count + 1, last_used_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("record key usage: %w", err)
	}
	return nil
}

func (s *PostgresStore) TouchLastConnection(ctx context.Context, emailHash string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_connection = NOW() WHERE email = $1`, emailHash)
	if err != nil {
		return fmt.Errorf("touch last connection: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeactivateKey(ctx context.Context, keyValue string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET is_active = FALSE WHERE key_value = $1`, keyValue)
	if err != nil {
		return fmt.Errorf("deactivate key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) findCredential(ctx context.Context, op, query string, args ...any) (*models.Credential, error) {
	c, err := scanCredential(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func scanCredential(row pgx.Row) (*models.Credential, error) {
	var c models.Credential
	err := row.Scan(&c.ID, &c.KeyValue, &c.Email, &c.Password, &c.IsActive, &c.EmailVerified,
		&c.VerificationToken, &c.UsageCount, &c.LastUsedAt, &c.LastConnection, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// --- Crises ---

func (s *PostgresStore) ListCrises(ctx context.Context, filter CrisisFilter) ([]*models.Crisis, int, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(type) = LOWER($%d)", argIdx))
		args = append(args, filter.Type)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM crises"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count crises: %w", err)
	}

	filter = filter.Normalize()
	limit := filter.Limit
	offset := (filter.Page - 1) * limit

	dataQuery := fmt.Sprintf(`SELECT %s FROM crises%s ORDER BY start_date, id LIMIT $%d OFFSET $%d`,
		crisisColumns, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list crises: %w", err)
	}
	defer rows.Close()

	var crises []*models.Crisis
	for rows.Next() {
		c, err := scanCrisis(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan crisis: %w", err)
		}
		crises = append(crises, c)
	}
	return crises, total, rows.Err()
}

func (s *PostgresStore) GetCrisis(ctx context.Context, id string) (*models.Crisis, error) {
	c, err := scanCrisis(s.pool.QueryRow(ctx, `SELECT `+crisisColumns+` FROM crises WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get crisis: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) CountCrises(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM crises`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count crises: %w", err)
	}
	return n, nil
}

func scanCrisis(row pgx.Row) (*models.Crisis, error) {
	var c models.Crisis
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Category, &c.Origin, &c.StartDate, &c.EndDate,
		&c.DurationInMonths, &c.GeographicalExtension, &c.Causes, &c.Consequences, &c.Resolutions, &c.References)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
