package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strozynskiw/transponster/internal/engine"
	"github.com/strozynskiw/transponster/internal/ledger"
	"github.com/strozynskiw/transponster/internal/money"
)

func openTestJournal(t *testing.T, runID string) *Journal {
	t.Helper()

	j, err := Open(filepath.Join(t.TempDir(), "journal.db"), runID)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, j.Close())
	})
	return j
}

func TestRecordOutcomes(t *testing.T) {
	j := openTestJournal(t, "run-001")
	ctx := context.Background()

	amt := money.Amount(15000)
	ok := engine.Record{Op: engine.OpDeposit, Client: 1, Tx: 1, Amount: &amt}
	require.NoError(t, j.Record(ctx, ok, nil))

	rejected := engine.Record{Op: engine.OpDispute, Client: 1, Tx: 99}
	require.NoError(t, j.Record(ctx, rejected, &engine.ProcessingError{
		Code:   engine.CodeMissingTransaction,
		Client: 1,
		Tx:     99,
	}))

	rows, err := j.db.Query(`SELECT seq, op, amount, outcome, error_code FROM records WHERE run_id = ? ORDER BY seq`, "run-001")
	require.NoError(t, err)
	defer rows.Close()

	type row struct {
		seq       int64
		op        string
		amount    *string
		outcome   string
		errorCode *string
	}
	var got []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.seq, &r.op, &r.amount, &r.outcome, &r.errorCode))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].seq)
	assert.Equal(t, "deposit", got[0].op)
	require.NotNil(t, got[0].amount)
	assert.Equal(t, "1.5000", *got[0].amount)
	assert.Equal(t, "ok", got[0].outcome)
	assert.Nil(t, got[0].errorCode)

	assert.Equal(t, int64(2), got[1].seq)
	assert.Equal(t, "dispute", got[1].op)
	assert.Nil(t, got[1].amount)
	assert.Equal(t, "rejected", got[1].outcome)
	require.NotNil(t, got[1].errorCode)
	assert.Equal(t, "MISSING_TRANSACTION", *got[1].errorCode)
}

func TestObserverJournalsFullRun(t *testing.T) {
	j := openTestJournal(t, "run-002")

	amt := money.Amount(100000)
	big := money.Amount(500000)

	e := engine.New(ledger.NewStore())
	observe := j.Observer()

	records := []engine.Record{
		{Op: engine.OpDeposit, Client: 1, Tx: 1, Amount: &amt},
		{Op: engine.OpWithdrawal, Client: 1, Tx: 2, Amount: &big}, // rejected
		{Op: engine.OpDispute, Client: 1, Tx: 1},
	}
	for _, rec := range records {
		observe(rec, e.Apply(rec))
	}

	var total, rejected int
	require.NoError(t, j.db.QueryRow(`SELECT COUNT(*) FROM records WHERE run_id = ?`, "run-002").Scan(&total))
	require.NoError(t, j.db.QueryRow(`SELECT COUNT(*) FROM records WHERE run_id = ? AND outcome = 'rejected'`, "run-002").Scan(&rejected))

	assert.Equal(t, 3, total)
	assert.Equal(t, 1, rejected)
}

func TestSeparateRunsShareOneDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	first, err := Open(path, "run-a")
	require.NoError(t, err)
	require.NoError(t, first.Record(ctx, engine.Record{Op: engine.OpDispute, Client: 1, Tx: 1}, nil))
	require.NoError(t, first.Close())

	second, err := Open(path, "run-b")
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.Record(ctx, engine.Record{Op: engine.OpDispute, Client: 1, Tx: 1}, nil))

	// Same seq in different runs must not collide.
	var runs int
	require.NoError(t, second.db.QueryRow(`SELECT COUNT(DISTINCT run_id) FROM records`).Scan(&runs))
	assert.Equal(t, 2, runs)
}
