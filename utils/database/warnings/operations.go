package warnings

import (
	"fmt"
	"strconv"
	"time"

	"discord-warden/enforcement"
	"discord-warden/model"

	"github.com/jmoiron/sqlx"
)

// AddWarning adds a new warning record to the database and returns the new
// record's ID.
func AddWarning(db *sqlx.DB, record model.Warning) (int64, error) {
	query := `INSERT INTO warnings (guild_id, user_id, user_username, mod_id, reason, weight, timestamp)
			  VALUES (:guild_id, :user_id, :user_username, :mod_id, :reason, :weight, :timestamp)`

	result, err := db.NamedExec(query, record)
	if err != nil {
		return 0, fmt.Errorf("failed to insert warning record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return id, nil
}

// GetWarningsByUser retrieves warning records for a specific user in a
// guild, optionally filtered by a start time.
func GetWarningsByUser(db *sqlx.DB, guildID, userID string, since *time.Time) ([]model.Warning, error) {
	var records []model.Warning
	query := "SELECT * FROM warnings WHERE guild_id = ? AND user_id = ?"
	args := []interface{}{guildID, userID}

	if since != nil {
		query += " AND timestamp >= ?"
		args = append(args, since.Unix())
	}
	query += " ORDER BY timestamp ASC"

	err := db.Select(&records, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get warnings for user %s in guild %s: %w", userID, guildID, err)
	}
	return records, nil
}

// GetWarningByID retrieves a single warning record by its primary key.
func GetWarningByID(db *sqlx.DB, id int64) (*model.Warning, error) {
	var record model.Warning
	query := "SELECT * FROM warnings WHERE warning_id = ?"
	err := db.Get(&record, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get warning by id %d: %w", id, err)
	}
	return &record, nil
}

// GetModWarningStats retrieves the warning count for each moderator within
// a given time range.
func GetModWarningStats(db *sqlx.DB, guildID string, since time.Time) (map[string]int, error) {
	query := `SELECT mod_id, COUNT(*) as count FROM warnings WHERE guild_id = ? AND timestamp >= ? GROUP BY mod_id ORDER BY count DESC`
	rows, err := db.Query(query, guildID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get mod warning stats for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var modID string
		var count int
		if err := rows.Scan(&modID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan mod warning stats row: %w", err)
		}
		stats[modID] = count
	}
	return stats, nil
}

// GetTotalWarningCount retrieves the total number of warnings within a
// given time range.
func GetTotalWarningCount(db *sqlx.DB, guildID string, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM warnings WHERE guild_id = ? AND timestamp >= ?`
	err := db.Get(&count, query, guildID, since.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to get total warning count for guild %s: %w", guildID, err)
	}
	return count, nil
}

// ToHistory converts warning rows into the score input entries.
func ToHistory(records []model.Warning) []enforcement.WarningEntry {
	history := make([]enforcement.WarningEntry, 0, len(records))
	for _, r := range records {
		history = append(history, enforcement.WarningEntry{
			IssuerID:  r.ModID,
			Timestamp: time.Unix(r.Timestamp, 0),
			Weight:    r.Weight,
		})
	}
	return history
}

// WarningRef formats a warning row ID as the reference stored on
// enforcement records.
func WarningRef(id int64) string {
	return strconv.FormatInt(id, 10)
}
