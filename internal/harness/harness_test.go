package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	s := &Scenario{
		Name:        "inline",
		Description: "Inline scenario.",
		Records: []RecordStep{
			{Op: "deposit", Client: 1, Tx: 1, Amount: "10"},
			{Op: "withdrawal", Client: 1, Tx: 2, Amount: "4"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	require.Len(t, result.Summaries, 1)
	assert.Equal(t, "6.0000", result.Summaries[0].Available.String())
	assert.Empty(t, result.Errors)
}

func TestRunCollectsRejections(t *testing.T) {
	s := &Scenario{
		Name:        "rejections",
		Description: "Rejections are collected, not fatal.",
		Records: []RecordStep{
			{Op: "withdrawal", Client: 1, Tx: 1, Amount: "1"},
			{Op: "dispute", Client: 1, Tx: 9},
			{Op: "deposit", Client: 1, Tx: 2, Amount: "1"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"INSUFFICIENT_FUNDS", "MISSING_TRANSACTION"}, result.ErrorCodes())
	require.Len(t, result.Summaries, 1)
	assert.Equal(t, "1.0000", result.Summaries[0].Available.String())
}

func TestRunRejectsBadAuthoring(t *testing.T) {
	s := &Scenario{
		Name:        "bad-op",
		Description: "Unknown ops are authoring errors.",
		Records:     []RecordStep{{Op: "transfer", Client: 1, Tx: 1}},
	}
	_, err := Run(s)
	assert.Error(t, err)

	s = &Scenario{
		Name:        "bad-amount",
		Description: "Unparseable amounts are authoring errors.",
		Records:     []RecordStep{{Op: "deposit", Client: 1, Tx: 1, Amount: "ten"}},
	}
	_, err = Run(s)
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	s := &Scenario{
		Name:        "check",
		Description: "Check compares expectations.",
		Records: []RecordStep{
			{Op: "deposit", Client: 1, Tx: 1, Amount: "2"},
		},
		Expect: []AccountExpectation{
			{Client: 1, Available: "2.0000", Held: "0.0000", Total: "2.0000", Locked: false},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	require.NoError(t, s.Check(result))

	// A wrong expectation is reported.
	s.Expect[0].Available = "3.0000"
	assert.Error(t, s.Check(result))

	// An unexpected rejection is reported.
	s.Expect[0].Available = "2.0000"
	s.Records = append(s.Records, RecordStep{Op: "dispute", Client: 1, Tx: 9})
	result, err = Run(s)
	require.NoError(t, err)
	assert.Error(t, s.Check(result))

	s.Errors = []string{"MISSING_TRANSACTION"}
	require.NoError(t, s.Check(result))
}
