package enforcements

import (
	"testing"
	"time"

	"discord-warden/enforcement"
	"discord-warden/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, InitSchema(db))
	return db
}

func TestAddAndGetAuditRecords(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	_, err := AddAuditRecord(db, model.EnforcementAudit{
		RecordID:   "rec-1",
		WarningID:  "42",
		GuildID:    "g1",
		UserID:     "u1",
		ActionType: "voice-mute",
		State:      "reversed",
		CreatedAt:  now.Unix(),
		ExecutedAt: now.Unix(),
		ReversedAt: now.Add(300 * time.Second).Unix(),
	})
	require.NoError(t, err)

	records, err := GetAuditRecordsByUser(db, "g1", "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "rec-1", records[0].RecordID)
	assert.Equal(t, "reversed", records[0].State)

	records, err = GetAuditRecordsByUser(db, "g1", "other")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestActionStatsAndCounts(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	for i, action := range []string{"mute", "mute", "voice-deafen"} {
		_, err := AddAuditRecord(db, model.EnforcementAudit{
			RecordID:   "rec",
			WarningID:  "1",
			GuildID:    "g1",
			UserID:     "u1",
			ActionType: action,
			State:      "completed",
			CreatedAt:  now.Add(-time.Duration(i) * time.Minute).Unix(),
		})
		require.NoError(t, err)
	}

	stats, err := GetActionStats(db, "g1", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, stats["mute"])
	assert.Equal(t, 1, stats["voice-deafen"])

	total, err := GetTotalEnforcementCount(db, "g1", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	// Window excludes older rows.
	total, err = GetTotalEnforcementCount(db, "g1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestStatsMessageIDRoundTrip(t *testing.T) {
	db := testDB(t)

	id, err := GetStatsMessageID(db, "chan-1")
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, SetStatsMessageID(db, "chan-1", "msg-1"))
	require.NoError(t, SetStatsMessageID(db, "chan-1", "msg-2"))

	id, err = GetStatsMessageID(db, "chan-1")
	require.NoError(t, err)
	assert.Equal(t, "msg-2", id)
}

func TestRecorderPersistsTerminalRecords(t *testing.T) {
	db := testDB(t)
	recorder := NewRecorder(db)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := enforcement.NewRecord("7", enforcement.Target{UserID: "u1", GuildID: "g1"}, enforcement.NewVoiceMute(300*time.Second, ""), now)

	recorder.RecordFinalized(*rec)

	records, err := GetAuditRecordsByUser(db, "g1", "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].RecordID)
	assert.Equal(t, "7", records[0].WarningID)
	assert.Equal(t, "voice-mute", records[0].ActionType)
	assert.Equal(t, now.Unix(), records[0].CreatedAt)
	assert.Zero(t, records[0].ExecutedAt)
}
