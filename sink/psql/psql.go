// Package psql implements an event sink backed by a PostgreSQL database.
package psql

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/adlio/schema"
	_ "github.com/lib/pq" // register the postgres driver

	"github.com/tendermint/ats/abci"
	"github.com/tendermint/ats/types"
)

const (
	TableEvents = "ats_events"
	DriverName  = "postgres"
)

const schemaScript = `
CREATE TABLE IF NOT EXISTS ats_events (
  rowid      BIGSERIAL PRIMARY KEY,
  height     BIGINT NOT NULL,
  tx_index   INTEGER NOT NULL,
  chain_id   VARCHAR NOT NULL,
  action     VARCHAR NOT NULL,
  sender     VARCHAR NOT NULL,
  attributes JSONB NOT NULL,
  transfers  JSONB NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  UNIQUE (height, tx_index)
);
CREATE INDEX IF NOT EXISTS idx_ats_events_action ON ats_events(action);
`

// Migrations returns the schema migrations for the sink's tables.
func Migrations() []*schema.Migration {
	return []*schema.Migration{{ID: "2022-05-01 ats_events", Script: schemaScript}}
}

var _ abci.EventSink = (*EventSink)(nil)

// EventSink writes each committed transition to the ats_events table.
// Transitions written to the sink are attributed to chainID.
type EventSink struct {
	store   *sql.DB
	chainID string
}

// NewEventSink constructs an event sink associated with the PostgreSQL
// database specified by connStr.
func NewEventSink(connStr, chainID string) (*EventSink, error) {
	db, err := sql.Open(DriverName, connStr)
	if err != nil {
		return nil, err
	}
	return NewEventSinkFromDB(db, chainID), nil
}

// NewEventSinkFromDB wraps an open database handle.
func NewEventSinkFromDB(db *sql.DB, chainID string) *EventSink {
	return &EventSink{store: db, chainID: chainID}
}

// DB returns the underlying Postgres connection used by the sink.
func (es *EventSink) DB() *sql.DB { return es.store }

// Migrate installs or upgrades the sink's schema.
func (es *EventSink) Migrate() error {
	return schema.NewMigrator().Apply(es.store, Migrations())
}

// IndexBlock writes the records of one block in a single statement. Records
// already present for a (height, tx_index) pair are left untouched.
func (es *EventSink) IndexBlock(height int64, records []abci.TxRecord) error {
	if len(records) == 0 {
		return nil
	}

	stmt := sq.
		Insert(TableEvents).
		Columns("height", "tx_index", "chain_id", "action", "sender", "attributes", "transfers", "created_at").
		PlaceholderFormat(sq.Dollar).
		Suffix("ON CONFLICT (height, tx_index)").
		Suffix("DO NOTHING")

	for _, rec := range records {
		attrs, err := types.MarshalJSON(rec.Response.Attributes)
		if err != nil {
			return fmt.Errorf("encode attributes of tx %d/%d: %w", height, rec.Index, err)
		}
		transfers, err := types.MarshalJSON(rec.Response.Transfers)
		if err != nil {
			return fmt.Errorf("encode transfers of tx %d/%d: %w", height, rec.Index, err)
		}
		stmt = stmt.Values(height, rec.Index, es.chainID, rec.Action, rec.Sender, string(attrs), string(transfers), rec.Time)
	}

	if _, err := stmt.RunWith(es.store).Exec(); err != nil {
		return fmt.Errorf("index block %d: %w", height, err)
	}
	return nil
}

// Stop closes the underlying database connection.
func (es *EventSink) Stop() error { return es.store.Close() }
