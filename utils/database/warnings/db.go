package warnings

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init initializes the database and ensures the warnings table is created.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	warningsSchema := `CREATE TABLE IF NOT EXISTS warnings (
	          warning_id INTEGER PRIMARY KEY AUTOINCREMENT,
	          guild_id TEXT NOT NULL,
	          user_id TEXT NOT NULL,
	          user_username TEXT NOT NULL,
	          mod_id TEXT NOT NULL,
	          reason TEXT NOT NULL,
	          weight REAL NOT NULL DEFAULT 1,
	          timestamp INTEGER NOT NULL
	      );`
	if _, err := db.Exec(warningsSchema); err != nil {
		return nil, fmt.Errorf("failed to create warnings table: %w", err)
	}

	indexSchema := `CREATE INDEX IF NOT EXISTS idx_warnings_guild_user
	          ON warnings (guild_id, user_id, timestamp);`
	if _, err := db.Exec(indexSchema); err != nil {
		return nil, fmt.Errorf("failed to create warnings index: %w", err)
	}

	return db, nil
}
