// Package testutil provides a stub database/sql driver for postgres store tests.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"
)

var stubSeq uint64

// StubConn records statements and keeps inserted rows per table.
type StubConn struct {
	Execs      []string
	Queries    []string
	Tables     map[string][]map[string]any
	FailPing   bool
	FailExec   bool
	FailBegin  bool
	FailCommit bool
	FailQuery  bool
	// FailKeys makes inserts for the listed primary-key values fail.
	FailKeys  map[string]bool
	RowsErr   error
	Rollbacks int

	active *stubTx
}

// NewStubDB registers a sql.DB backed by an in-memory stub connection.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{Tables: make(map[string][]map[string]any)}
	name := fmt.Sprintf("stubpg%d_%d", time.Now().UnixNano(), atomic.AddUint64(&stubSeq, 1))
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	db.SetMaxOpenConns(1)
	return db, conn
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) {
	return d.conn, nil
}

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// Ping implements driver.Pinger.
func (c *StubConn) Ping(_ context.Context) error {
	if c.FailPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

// BeginTx implements driver.ConnBeginTx.
func (c *StubConn) BeginTx(_ context.Context, _ driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, fmt.Errorf("begin fail")
	}
	c.active = &stubTx{conn: c}
	return c.active, nil
}

// ExecContext implements driver.ExecerContext. Inserts are applied directly;
// inserts issued inside a transaction are staged by stubTx until commit.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, fmt.Errorf("exec fail")
	}
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT INTO") {
		return driver.RowsAffected(0), nil
	}
	table, row, err := insertRow(query, args)
	if err != nil {
		return nil, err
	}
	primary := firstKey(query)
	if c.FailKeys != nil && c.FailKeys[fmt.Sprint(row[primary])] {
		return nil, fmt.Errorf("exec fail for %v", row[primary])
	}
	if c.active != nil {
		c.active.stage(table, row, primary)
		return driver.RowsAffected(1), nil
	}
	c.upsert(table, row, primary)
	return driver.RowsAffected(1), nil
}

// QueryContext implements driver.QueryerContext. A single "WHERE col = $1"
// predicate is honoured.
func (c *StubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.Queries = append(c.Queries, query)
	if c.FailQuery {
		return nil, fmt.Errorf("query fail")
	}
	table, cols, whereCol, err := parseSelect(query)
	if err != nil {
		return nil, err
	}
	values := make([][]driver.Value, 0, len(c.Tables[table]))
	for _, row := range c.Tables[table] {
		if whereCol != "" && len(args) > 0 && row[whereCol] != args[0].Value {
			continue
		}
		vals := make([]driver.Value, len(cols))
		for i, col := range cols {
			vals[i] = row[col]
		}
		values = append(values, vals)
	}
	return &stubRows{cols: cols, rows: values, err: c.RowsErr}, nil
}

func (c *StubConn) upsert(table string, row map[string]any, primary string) {
	var filtered []map[string]any
	for _, existing := range c.Tables[table] {
		if existing[primary] == row[primary] {
			continue
		}
		filtered = append(filtered, existing)
	}
	c.Tables[table] = append(filtered, row)
}

type stagedRow struct {
	table   string
	primary string
	row     map[string]any
}

type stubTx struct {
	conn *StubConn
	rows []stagedRow
}

func (t *stubTx) stage(table string, row map[string]any, primary string) {
	t.rows = append(t.rows, stagedRow{table: table, primary: primary, row: row})
}

func (t *stubTx) Commit() error {
	t.conn.active = nil
	if t.conn.FailCommit {
		return fmt.Errorf("commit fail")
	}
	for _, r := range t.rows {
		t.conn.upsert(r.table, r.row, r.primary)
	}
	return nil
}

func (t *stubTx) Rollback() error {
	t.conn.active = nil
	t.conn.Rollbacks++
	t.rows = nil
	return nil
}

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
	err  error
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		if r.err != nil {
			return r.err
		}
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}

func insertRow(query string, args []driver.NamedValue) (string, map[string]any, error) {
	table, cols, err := parseInsert(query)
	if err != nil {
		return "", nil, err
	}
	if len(cols) != len(args) {
		return "", nil, fmt.Errorf("column/arg mismatch for %s", table)
	}
	row := make(map[string]any, len(cols))
	for i, col := range cols {
		row[col] = args[i].Value
	}
	return table, row, nil
}

func firstKey(query string) string {
	_, cols, err := parseInsert(query)
	if err != nil || len(cols) == 0 {
		return ""
	}
	return cols[0]
}

func parseInsert(query string) (string, []string, error) {
	up := strings.ToUpper(query)
	intoIdx := strings.Index(up, "INTO ")
	if intoIdx == -1 {
		return "", nil, fmt.Errorf("cannot parse insert: %s", query)
	}
	rest := strings.TrimSpace(query[intoIdx+len("INTO "):])
	open := strings.Index(rest, "(")
	closeIdx := strings.Index(rest, ")")
	if open == -1 || closeIdx == -1 || closeIdx <= open {
		return "", nil, fmt.Errorf("cannot parse insert: %s", query)
	}
	table := strings.ToLower(strings.TrimSpace(rest[:open]))
	return table, splitColumns(rest[open+1 : closeIdx]), nil
}

func parseSelect(query string) (table string, cols []string, whereCol string, err error) {
	lower := strings.ToLower(query)
	if !strings.HasPrefix(lower, "select ") {
		return "", nil, "", fmt.Errorf("cannot parse select: %s", query)
	}
	fromIdx := strings.Index(lower, " from ")
	if fromIdx == -1 {
		return "", nil, "", fmt.Errorf("cannot parse select: %s", query)
	}
	cols = splitColumns(query[len("select "):fromIdx])
	rest := strings.Fields(query[fromIdx+len(" from "):])
	if len(rest) == 0 {
		return "", nil, "", fmt.Errorf("cannot parse select: %s", query)
	}
	table = strings.ToLower(rest[0])
	if len(rest) >= 3 && strings.EqualFold(rest[1], "where") {
		whereCol = strings.ToLower(strings.TrimSuffix(rest[2], "="))
	}
	return table, cols, whereCol, nil
}

func splitColumns(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.ToLower(strings.TrimSpace(part)))
	}
	return out
}
