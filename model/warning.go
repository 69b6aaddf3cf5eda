package model

// Warning is one row in the warnings table.
type Warning struct {
	WarningID    int64   `db:"warning_id"`
	GuildID      string  `db:"guild_id"`
	UserID       string  `db:"user_id"`
	UserUsername string  `db:"user_username"`
	ModID        string  `db:"mod_id"`
	Reason       string  `db:"reason"`
	Weight       float64 `db:"weight"`
	Timestamp    int64   `db:"timestamp"`
}

// EnforcementAudit is one row in the enforcement_audit table, written when
// an enforcement record reaches a terminal state.
type EnforcementAudit struct {
	ID         int64  `db:"id"`
	RecordID   string `db:"record_id"`
	WarningID  string `db:"warning_id"`
	GuildID    string `db:"guild_id"`
	UserID     string `db:"user_id"`
	ActionType string `db:"action_type"`
	State      string `db:"state"`
	CreatedAt  int64  `db:"created_at"`
	ExecutedAt int64  `db:"executed_at"`
	ReversedAt int64  `db:"reversed_at"`
}
