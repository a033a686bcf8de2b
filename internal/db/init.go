package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    password TEXT,
    PRIMARY KEY (name, type)
);

CREATE TABLE IF NOT EXISTS account_userdata (
    account_name TEXT NOT NULL,
    account_type TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (account_name, account_type, key),
    FOREIGN KEY (account_name, account_type) REFERENCES accounts(name, type) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS auth_tokens (
    account_name TEXT NOT NULL,
    account_type TEXT NOT NULL,
    token_type TEXT NOT NULL,
    token TEXT,
    PRIMARY KEY (account_name, account_type, token_type),
    FOREIGN KEY (account_name, account_type) REFERENCES accounts(name, type) ON DELETE CASCADE
);
`

func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
