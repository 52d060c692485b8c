package doctor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStatus_String(t *testing.T) {
	tests := []struct {
		status   CheckStatus
		expected string
	}{
		{StatusPass, "pass"},
		{StatusWarn, "warn"},
		{StatusFail, "fail"},
		{CheckStatus(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.status.String())
		})
	}
}

func TestCheckStatus_MarshalText(t *testing.T) {
	text, err := StatusWarn.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "warn", string(text))

	var back CheckStatus
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, StatusWarn, back)
	assert.Error(t, back.UnmarshalText([]byte("meh")))
}

// mockCheck is a test implementation of Check.
type mockCheck struct {
	name     string
	category string
	status   CheckStatus
	delay    time.Duration
	calls    int
}

func (m *mockCheck) Name() string     { return m.name }
func (m *mockCheck) Category() string { return m.category }
func (m *mockCheck) Run(ctx context.Context) CheckResult {
	m.calls++
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return result(m, m.status, m.name+" ran", "")
}

func TestRunAll(t *testing.T) {
	checks := []Check{
		&mockCheck{name: "check1", category: "TEST", status: StatusPass},
		&mockCheck{name: "check2", category: "TEST", status: StatusFail},
	}

	results := RunAll(context.Background(), checks)

	require.Len(t, results, 2)
	assert.Equal(t, "check1", results[0].Name)
	assert.Equal(t, "TEST", results[0].Category)
	assert.Equal(t, StatusPass, results[0].Status)
	assert.Equal(t, "check1 ran", results[0].Message)
	assert.Equal(t, StatusFail, results[1].Status)
}

func TestRunAllParallel_KeepsOrder(t *testing.T) {
	slow := &mockCheck{name: "slow", category: "A", status: StatusPass, delay: 20 * time.Millisecond}
	fast := &mockCheck{name: "fast", category: "B", status: StatusWarn}

	results := RunAllParallel(context.Background(), []Check{slow, fast})

	require.Len(t, results, 2)
	assert.Equal(t, "slow", results[0].Name)
	assert.Equal(t, "fast", results[1].Name)
	assert.Equal(t, 1, slow.calls)
	assert.Equal(t, 1, fast.calls)
}

func TestGroupByCategory(t *testing.T) {
	results := []CheckResult{
		{Name: "a", Category: "CONFIG"},
		{Name: "b", Category: "SSH"},
		{Name: "c", Category: "CONFIG"},
	}

	order, grouped := GroupByCategory(results)

	assert.Equal(t, []string{"CONFIG", "SSH"}, order)
	assert.Len(t, grouped["CONFIG"], 2)
	assert.Len(t, grouped["SSH"], 1)
	assert.Equal(t, "c", grouped["CONFIG"][1].Name)
}

func TestCountByStatus(t *testing.T) {
	counts := CountByStatus([]CheckResult{
		{Status: StatusPass},
		{Status: StatusPass},
		{Status: StatusWarn},
	})

	assert.Equal(t, 2, counts[StatusPass])
	assert.Equal(t, 1, counts[StatusWarn])
	assert.Equal(t, 0, counts[StatusFail])
}

func TestHasFailuresAndIssues(t *testing.T) {
	pass := []CheckResult{{Status: StatusPass}}
	warn := []CheckResult{{Status: StatusPass}, {Status: StatusWarn}}
	fail := []CheckResult{{Status: StatusFail}}

	assert.False(t, HasFailures(pass))
	assert.False(t, HasIssues(pass))
	assert.False(t, HasFailures(warn))
	assert.True(t, HasIssues(warn))
	assert.True(t, HasFailures(fail))
	assert.True(t, HasIssues(fail))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Everything looks good", Summary([]CheckResult{{Status: StatusPass}}))
	assert.Equal(t, "1 issue found", Summary([]CheckResult{{Status: StatusWarn}}))
	assert.Equal(t, "2 issues found", Summary([]CheckResult{{Status: StatusWarn}, {Status: StatusFail}}))
}
