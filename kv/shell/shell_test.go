package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestkv/nestkv/kv/store"
)

func newDispatcher() *Dispatcher {
	return NewDispatcher(store.NewStore())
}

// run executes lines in order and returns the non-empty replies.
func run(t *testing.T, d *Dispatcher, lines ...string) []string {
	var replies []string
	for _, line := range lines {
		reply, done := d.Exec(line)
		require.False(t, done, "unexpected END while executing %q", line)
		if reply != "" {
			replies = append(replies, reply)
		}
	}
	return replies
}

func TestSetGetUnset(t *testing.T) {
	d := newDispatcher()
	replies := run(t, d,
		"SET a 10",
		"GET a",
		"UNSET a",
		"GET a",
	)
	assert.Equal(t, []string{"10", Null}, replies)
}

func TestTransactionScenario(t *testing.T) {
	d := newDispatcher()
	replies := run(t, d,
		"SET a 10",
		"GET a",
		"BEGIN",
		"SET a 20",
		"GET a",
		"ROLLBACK",
		"GET a",
	)
	assert.Equal(t, []string{"10", "20", "10"}, replies)
}

func TestFindAndCounts(t *testing.T) {
	d := newDispatcher()
	replies := run(t, d,
		"SET x 1",
		"SET y 1",
		"FIND 1",
		"COUNTS 1",
		"FIND 2",
		"COUNTS 2",
	)
	// FIND with no match replies nothing; COUNTS still reports zero.
	assert.Equal(t, []string{"x y", "2", "0"}, replies)
}

func TestNestedCommitScenario(t *testing.T) {
	d := newDispatcher()
	replies := run(t, d,
		"SET b 5",
		"BEGIN",
		"BEGIN",
		"UNSET b",
		"COMMIT",
		"COMMIT",
		"GET b",
	)
	assert.Equal(t, []string{Null}, replies)
}

func TestEnd(t *testing.T) {
	d := newDispatcher()
	reply, done := d.Exec("END")
	assert.True(t, done)
	assert.Empty(t, reply)
}

func TestBlankLineIgnored(t *testing.T) {
	d := newDispatcher()
	reply, done := d.Exec("   ")
	assert.False(t, done)
	assert.Empty(t, reply)
}

func TestUnknownCommand(t *testing.T) {
	d := newDispatcher()
	reply, done := d.Exec("FROB a")
	assert.False(t, done)
	assert.Equal(t, `unknown command "FROB"`, reply)
}

func TestUsageReplies(t *testing.T) {
	d := newDispatcher()
	for line, want := range map[string]string{
		"SET a":      "usage: SET key value",
		"SET a b c":  "usage: SET key value",
		"GET":        "usage: GET key",
		"UNSET":      "usage: UNSET key",
		"FIND":       "usage: FIND value",
		"COUNTS a b": "usage: COUNTS value",
	} {
		reply, done := d.Exec(line)
		assert.False(t, done)
		assert.Equal(t, want, reply, "line %q", line)
	}
}

func TestCommitWithoutTransactionIsSilent(t *testing.T) {
	d := newDispatcher()
	replies := run(t, d, "COMMIT", "ROLLBACK", "GET a")
	assert.Equal(t, []string{Null}, replies)
}

func TestMergeFailureSurfacesAsReply(t *testing.T) {
	s := store.NewStore(store.WithMergeCheck(func(key string, rec store.Record) error {
		return assert.AnError
	}))
	d := NewDispatcher(s)
	run(t, d, "BEGIN", "SET a 1")

	reply, done := d.Exec("COMMIT")
	assert.False(t, done)
	assert.Contains(t, reply, "transaction merge failure")

	// The frame was rolled back with it.
	replies := run(t, d, "GET a")
	assert.Equal(t, []string{Null}, replies)
}
