package psql

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/ats/abci"
	"github.com/tendermint/ats/types"
)

var blockTime = time.Date(2022, 5, 1, 12, 0, 0, 0, time.UTC)

func newMockSink(t *testing.T) (*EventSink, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEventSinkFromDB(db, "test-chain"), mock
}

func record(index uint32, action string) abci.TxRecord {
	res := types.NewResponse().AddAttribute("action", action)
	res.AddTransfer(types.NewTransfer(false, types.NewCoin(100, "base_1"), "bidder", "", ""))
	return abci.TxRecord{
		Height:   7,
		Index:    index,
		Sender:   "exec_1",
		Action:   action,
		Response: res,
		Time:     blockTime,
	}
}

func TestIndexBlock(t *testing.T) {
	sink, mock := newMockSink(t)

	attrs := `[{"key":"action","value":"execute"}]`
	transfers := `[{"kind":"bank_send","to":"bidder","amount":{"denom":"base_1","amount":"100"}}]`
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO ats_events (height,tx_index,chain_id,action,sender,attributes,transfers,created_at) " +
			"VALUES ($1,$2,$3,$4,$5,$6,$7,$8),($9,$10,$11,$12,$13,$14,$15,$16) " +
			"ON CONFLICT (height, tx_index) DO NOTHING",
	)).
		WithArgs(
			int64(7), uint32(0), "test-chain", "execute", "exec_1", attrs, transfers, blockTime,
			int64(7), uint32(2), "test-chain", "execute", "exec_1", attrs, transfers, blockTime,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, sink.IndexBlock(7, []abci.TxRecord{record(0, "execute"), record(2, "execute")}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIndexBlockEmpty(t *testing.T) {
	sink, mock := newMockSink(t)
	require.NoError(t, sink.IndexBlock(7, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIndexBlockError(t *testing.T) {
	sink, mock := newMockSink(t)
	dbErr := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO ats_events").WillReturnError(dbErr)

	err := sink.IndexBlock(7, []abci.TxRecord{record(0, "create_ask")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dbErr))
	assert.Contains(t, err.Error(), "index block 7")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrations(t *testing.T) {
	migrations := Migrations()
	require.Len(t, migrations, 1)
	assert.Contains(t, migrations[0].Script, "CREATE TABLE IF NOT EXISTS ats_events")
	assert.Contains(t, migrations[0].Script, "UNIQUE (height, tx_index)")
}
