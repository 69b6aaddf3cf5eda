package enforcements

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"discord-warden/model"

	"github.com/jmoiron/sqlx"
)

// AddAuditRecord inserts a finalized enforcement into the audit table.
func AddAuditRecord(db *sqlx.DB, record model.EnforcementAudit) (int64, error) {
	query := `INSERT INTO enforcement_audit (record_id, warning_id, guild_id, user_id, action_type, state, created_at, executed_at, reversed_at)
			  VALUES (:record_id, :warning_id, :guild_id, :user_id, :action_type, :state, :created_at, :executed_at, :reversed_at)`

	result, err := db.NamedExec(query, record)
	if err != nil {
		return 0, fmt.Errorf("failed to insert enforcement audit record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return id, nil
}

// GetAuditRecordsByUser retrieves audit rows for a specific user in a guild.
func GetAuditRecordsByUser(db *sqlx.DB, guildID, userID string) ([]model.EnforcementAudit, error) {
	var records []model.EnforcementAudit
	query := "SELECT * FROM enforcement_audit WHERE guild_id = ? AND user_id = ? ORDER BY created_at DESC"
	err := db.Select(&records, query, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit records for user %s in guild %s: %w", userID, guildID, err)
	}
	return records, nil
}

// GetActionStats retrieves the enforcement count per action type within a
// given time range.
func GetActionStats(db *sqlx.DB, guildID string, since time.Time) (map[string]int, error) {
	query := `SELECT action_type, COUNT(*) as count FROM enforcement_audit WHERE guild_id = ? AND created_at >= ? GROUP BY action_type ORDER BY count DESC`
	rows, err := db.Query(query, guildID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get action stats for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var actionType string
		var count int
		if err := rows.Scan(&actionType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan action stats row: %w", err)
		}
		stats[actionType] = count
	}
	return stats, nil
}

// GetTotalEnforcementCount retrieves the total number of finalized
// enforcements within a given time range.
func GetTotalEnforcementCount(db *sqlx.DB, guildID string, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM enforcement_audit WHERE guild_id = ? AND created_at >= ?`
	err := db.Get(&count, query, guildID, since.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to get total enforcement count for guild %s: %w", guildID, err)
	}
	return count, nil
}

// GetStatsMessageID returns the stored stats message ID for a channel, or
// empty when none has been sent yet.
func GetStatsMessageID(db *sqlx.DB, channelID string) (string, error) {
	var messageID string
	err := db.Get(&messageID, "SELECT message_id FROM stats_messages WHERE channel_id = ?", channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get stats message ID for channel %s: %w", channelID, err)
	}
	return messageID, nil
}

// SetStatsMessageID stores the stats message ID for a channel.
func SetStatsMessageID(db *sqlx.DB, channelID, messageID string) error {
	query := `INSERT INTO stats_messages (channel_id, message_id) VALUES (?, ?)
			  ON CONFLICT(channel_id) DO UPDATE SET message_id = excluded.message_id`
	if _, err := db.Exec(query, channelID, messageID); err != nil {
		return fmt.Errorf("failed to set stats message ID for channel %s: %w", channelID, err)
	}
	return nil
}
