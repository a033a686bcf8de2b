// Package repository provides the PostgreSQL-backed account store.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/k9mail/accountauth/internal/models"
)

// PostgresAccountStore implements the account store operations on a
// PostgreSQL database. Passwords and tokens are stored as nullable
// columns so an explicitly unset password survives the round trip.
type PostgresAccountStore struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAccountStore creates a new PostgresAccountStore with the
// given database connection.
func NewPostgresAccountStore(db *sql.DB) *PostgresAccountStore {
	return &PostgresAccountStore{DB: db}
}

// AddAccountExplicitly inserts the account with its password and
// userdata. The insert is idempotent: an existing (name, type) row is
// left untouched, including its userdata.
func (s *PostgresAccountStore) AddAccountExplicitly(ctx context.Context, account models.Account, password *string, userdata models.UserData) error {
	res, err := s.DB.ExecContext(
		ctx,
		`INSERT INTO accounts (name, type, password) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		account.Name, account.Type, nullable(password),
	)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil
	}
	for key, value := range userdata {
		if _, err := s.DB.ExecContext(
			ctx,
			`INSERT INTO account_userdata (account_name, account_type, key, value)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (account_name, account_type, key) DO UPDATE SET value = EXCLUDED.value`,
			account.Name, account.Type, key, value,
		); err != nil {
			return err
		}
	}
	return nil
}

// SetPassword stores the account's password slot; nil unsets it.
func (s *PostgresAccountStore) SetPassword(ctx context.Context, account models.Account, password *string) error {
	_, err := s.DB.ExecContext(
		ctx,
		`UPDATE accounts SET password = $3 WHERE name = $1 AND type = $2`,
		account.Name, account.Type, nullable(password),
	)
	return err
}

// GetPassword returns the account's password slot. It returns nil both
// for an unset password and for an unknown account.
func (s *PostgresAccountStore) GetPassword(ctx context.Context, account models.Account) (*string, error) {
	var password sql.NullString
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT password FROM accounts WHERE name = $1 AND type = $2`,
		account.Name, account.Type,
	).Scan(&password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !password.Valid {
		return nil, nil
	}
	return &password.String, nil
}

// SetAuthToken stores an auth token for the account, replacing any
// previous token of the same type.
func (s *PostgresAccountStore) SetAuthToken(ctx context.Context, account models.Account, tokenType string, token *string) error {
	_, err := s.DB.ExecContext(
		ctx,
		`INSERT INTO auth_tokens (account_name, account_type, token_type, token)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (account_name, account_type, token_type) DO UPDATE SET token = EXCLUDED.token`,
		account.Name, account.Type, tokenType, nullable(token),
	)
	return err
}

// GetAuthToken returns the cached token for (account, tokenType), nil
// when absent or stored as null.
func (s *PostgresAccountStore) GetAuthToken(ctx context.Context, account models.Account, tokenType string) (*string, error) {
	var token sql.NullString
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT token FROM auth_tokens WHERE account_name = $1 AND account_type = $2 AND token_type = $3`,
		account.Name, account.Type, tokenType,
	).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, nil
	}
	return &token.String, nil
}

// GetUserData returns a userdata value, "" when the key is absent.
func (s *PostgresAccountStore) GetUserData(ctx context.Context, account models.Account, key string) (string, error) {
	var value string
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT value FROM account_userdata WHERE account_name = $1 AND account_type = $2 AND key = $3`,
		account.Name, account.Type, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// ListAccountsByType returns all accounts of the given type ordered by
// name.
func (s *PostgresAccountStore) ListAccountsByType(ctx context.Context, accountType string) ([]models.Account, error) {
	rows, err := s.DB.QueryContext(
		ctx,
		`SELECT name FROM accounts WHERE type = $1 ORDER BY name`,
		accountType,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		accounts = append(accounts, models.Account{Name: name, Type: accountType})
	}
	return accounts, rows.Err()
}

// RemoveAccount deletes the account; userdata and tokens follow via
// cascade.
func (s *PostgresAccountStore) RemoveAccount(ctx context.Context, account models.Account) error {
	_, err := s.DB.ExecContext(
		ctx,
		`DELETE FROM accounts WHERE name = $1 AND type = $2`,
		account.Name, account.Type,
	)
	return err
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
