package enforcements

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// InitSchema ensures the enforcement audit tables exist. It shares the
// database handle opened by the warnings package.
func InitSchema(db *sqlx.DB) error {
	auditSchema := `CREATE TABLE IF NOT EXISTS enforcement_audit (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          record_id TEXT NOT NULL,
	          warning_id TEXT NOT NULL,
	          guild_id TEXT NOT NULL,
	          user_id TEXT NOT NULL,
	          action_type TEXT NOT NULL,
	          state TEXT NOT NULL,
	          created_at INTEGER NOT NULL,
	          executed_at INTEGER NOT NULL DEFAULT 0,
	          reversed_at INTEGER NOT NULL DEFAULT 0
	      );`
	if _, err := db.Exec(auditSchema); err != nil {
		return fmt.Errorf("failed to create enforcement_audit table: %w", err)
	}

	statsSchema := `CREATE TABLE IF NOT EXISTS stats_messages (
	          channel_id TEXT PRIMARY KEY,
	          message_id TEXT NOT NULL
	      );`
	if _, err := db.Exec(statsSchema); err != nil {
		return fmt.Errorf("failed to create stats_messages table: %w", err)
	}

	return nil
}
