// Package tagdb persists the economy's tag objects in SQLite.
//
// All rows are loaded into memory at open. Reads are served from memory;
// writes update memory at once and reach the database through a single
// writer goroutine that batches them into transactions.
package tagdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"realcoins/internal/sim/world/kernel/tags"
)

type DB struct {
	db  *sql.DB
	mem *tags.Memory
	log *zap.Logger

	ch   chan op
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	written atomic.Uint64
	failed  atomic.Uint64
}

type opKind int

const (
	opSet opKind = iota + 1
	opDelete
	opBarrier
)

type op struct {
	kind  opKind
	ref   string
	key   string
	value string
	done  chan struct{}
}

// Open opens (or creates) the database at path and loads every tag object.
func Open(path string, log *zap.Logger) (*DB, error) {
	if path == "" {
		return nil, errors.New("tagdb: empty db path")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	mem, n, err := load(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("tag database opened", zap.String("path", path), zap.Int("rows", n))

	d := &DB{
		db:  db,
		mem: mem,
		log: log,
		ch:  make(chan op, 65536),
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.loop()
	}()
	return d, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tags (
			ref TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (ref, key)
		);`,
		`INSERT OR IGNORE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func load(db *sql.DB) (*tags.Memory, int, error) {
	rows, err := db.Query(`SELECT ref, key, value FROM tags ORDER BY ref, key`)
	if err != nil {
		return nil, 0, fmt.Errorf("tagdb: load: %w", err)
	}
	defer rows.Close()

	byRef := map[string]map[string]string{}
	n := 0
	for rows.Next() {
		var ref, key, value string
		if err := rows.Scan(&ref, &key, &value); err != nil {
			return nil, 0, fmt.Errorf("tagdb: scan: %w", err)
		}
		kv := byRef[ref]
		if kv == nil {
			kv = map[string]string{}
			byRef[ref] = kv
		}
		kv[key] = value
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	mem := tags.NewMemory()
	for ref, kv := range byRef {
		mem.Load(ref, kv)
	}
	return mem, n, nil
}

// Object returns the tag object for ref. Changes are written through to the
// database.
func (d *DB) Object(ref string) tags.Object {
	return object{d: d, ref: ref, Object: d.mem.Object(ref)}
}

// Memory exposes the in-memory view, e.g. for snapshots.
func (d *DB) Memory() *tags.Memory { return d.mem }

// Flush blocks until every write issued before the call is committed.
func (d *DB) Flush(ctx context.Context) error {
	if d.closed.Load() {
		return nil
	}
	done := make(chan struct{})
	select {
	case d.ch <- op{kind: opBarrier, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats reports how many writes were committed and how many failed.
func (d *DB) Stats() (written, failed uint64) {
	return d.written.Load(), d.failed.Load()
}

func (d *DB) Close() error {
	var err error
	d.once.Do(func() {
		d.closed.Store(true)
		close(d.ch)
		d.wg.Wait()
		err = d.db.Close()
	})
	return err
}

func (d *DB) enqueue(o op) {
	if d.closed.Load() {
		d.log.Warn("tag write after close", zap.String("ref", o.ref), zap.String("key", o.key))
		return
	}
	// Tag writes are the source of truth, so a full queue applies
	// backpressure rather than dropping.
	d.ch <- o
}

type object struct {
	tags.Object
	d   *DB
	ref string
}

func (o object) Set(key, value string) {
	o.Object.Set(key, value)
	o.d.enqueue(op{kind: opSet, ref: o.ref, key: key, value: value})
}

func (o object) Delete(key string) {
	if !o.Object.Has(key) {
		return
	}
	o.Object.Delete(key)
	o.d.enqueue(op{kind: opDelete, ref: o.ref, key: key})
}

func (d *DB) loop() {
	ctx := context.Background()
	upsert, _ := d.db.Prepare(`INSERT OR REPLACE INTO tags(ref,key,value) VALUES(?,?,?)`)
	remove, _ := d.db.Prepare(`DELETE FROM tags WHERE ref=? AND key=?`)
	defer func() {
		if upsert != nil {
			_ = upsert.Close()
		}
		if remove != nil {
			_ = remove.Close()
		}
	}()

	var (
		tx      *sql.Tx
		pending int
	)
	begin := func() {
		if tx != nil {
			return
		}
		txx, err := d.db.BeginTx(ctx, nil)
		if err != nil {
			d.log.Error("tagdb: begin", zap.Error(err))
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		pending = 0
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			d.failed.Add(uint64(pending))
			d.log.Error("tagdb: commit", zap.Error(err), zap.Int("writes", pending))
		} else {
			d.written.Add(uint64(pending))
		}
		tx = nil
		pending = 0
	}

	for o := range d.ch {
		if o.kind == opBarrier {
			commit()
			close(o.done)
			continue
		}
		begin()
		if tx == nil {
			d.failed.Add(1)
			continue
		}
		var err error
		switch o.kind {
		case opSet:
			_, err = tx.Stmt(upsert).Exec(o.ref, o.key, o.value)
		case opDelete:
			_, err = tx.Stmt(remove).Exec(o.ref, o.key)
		}
		if err != nil {
			d.failed.Add(1)
			d.log.Error("tagdb: write", zap.String("ref", o.ref), zap.String("key", o.key), zap.Error(err))
			continue
		}
		pending++
		// Commit once the queue is drained so a burst lands in one transaction.
		if len(d.ch) == 0 || pending >= 2000 {
			commit()
		}
	}
	commit()
}
