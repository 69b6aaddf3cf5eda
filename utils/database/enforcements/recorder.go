package enforcements

import (
	"log"

	"discord-warden/enforcement"
	"discord-warden/model"

	"github.com/jmoiron/sqlx"
)

// Recorder persists terminal enforcement records into the audit table.
// It implements enforcement.AuditSink; insert failures are logged and
// dropped, the in-memory store stays authoritative.
type Recorder struct {
	db *sqlx.DB
}

func NewRecorder(db *sqlx.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) RecordFinalized(rec enforcement.Record) {
	audit := model.EnforcementAudit{
		RecordID:   rec.ID,
		WarningID:  rec.WarningID,
		GuildID:    rec.Target.GuildID,
		UserID:     rec.Target.UserID,
		ActionType: rec.Action.Kind.String(),
		State:      rec.State.String(),
		CreatedAt:  rec.CreatedAt.Unix(),
	}
	if !rec.ExecutedAt.IsZero() {
		audit.ExecutedAt = rec.ExecutedAt.Unix()
	}
	if !rec.ReversedAt.IsZero() {
		audit.ReversedAt = rec.ReversedAt.Unix()
	}

	if _, err := AddAuditRecord(r.db, audit); err != nil {
		log.Printf("Failed to persist enforcement audit for record %s: %v", rec.ID, err)
	}
}
