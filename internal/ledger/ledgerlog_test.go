package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfUTCDay(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"midday",
			time.Date(2026, time.March, 14, 12, 30, 45, 0, time.UTC),
			time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			"one minute past midnight",
			time.Date(2026, time.March, 14, 0, 1, 0, 0, time.UTC),
			time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			"one minute to midnight stays on its own day",
			time.Date(2026, time.March, 13, 23, 59, 0, 0, time.UTC),
			time.Date(2026, time.March, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			"non-UTC zone is normalised first",
			time.Date(2026, time.March, 14, 1, 0, 0, 0, time.FixedZone("IST", 5*3600+1800)),
			time.Date(2026, time.March, 13, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.want.Equal(startOfUTCDay(tc.in)))
		})
	}
}

func TestUnderDailyLimit(t *testing.T) {
	db := newFakeDB()
	conn := &fakeConn{db: db}
	var log LedgerLog
	ctx := context.Background()

	account := db.addAccount(0)
	opID := db.types["deposit"]

	under, err := log.UnderDailyLimit(ctx, conn, opID, account, db.now)
	require.NoError(t, err)
	assert.True(t, under)

	for i := 0; i < 2; i++ {
		db.addEntry(Deposit, account, 1000, db.now.Add(-time.Minute))
	}
	under, err = log.UnderDailyLimit(ctx, conn, opID, account, db.now)
	require.NoError(t, err)
	assert.True(t, under, "two entries leave room for a third")

	db.addEntry(Deposit, account, 1000, db.now.Add(-time.Minute))
	under, err = log.UnderDailyLimit(ctx, conn, opID, account, db.now)
	require.NoError(t, err)
	assert.False(t, under, "three entries exhaust the day")

	// Other accounts and other operation types are unaffected.
	other := db.addAccount(0)
	under, err = log.UnderDailyLimit(ctx, conn, opID, other, db.now)
	require.NoError(t, err)
	assert.True(t, under)

	under, err = log.UnderDailyLimit(ctx, conn, db.types["withdraw"], account, db.now)
	require.NoError(t, err)
	assert.True(t, under)
}

func TestAppendRecordsEntry(t *testing.T) {
	db := newFakeDB()
	conn := &fakeConn{db: db}
	var log LedgerLog

	account := db.addAccount(0)
	err := log.Append(context.Background(), conn, db.types["withdraw"], account, 1500)
	require.NoError(t, err)

	require.Len(t, db.entries, 1)
	assert.Equal(t, db.types["withdraw"], db.entries[0].op)
	assert.Equal(t, account, db.entries[0].account)
	assert.Equal(t, int64(1500), db.entries[0].amount)
}
