package ledger

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"lukechampine.com/blake3"
)

// Entry records one cleaned transcript
type Entry struct {
	Hash      string
	Source    string
	Output    string
	Segments  int
	CleanedAt time.Time
}

// Ledger remembers which raw transcripts have already been cleaned, keyed by content hash
type Ledger struct {
	db *sql.DB
}

// Hash returns the hex BLAKE3-256 digest of raw transcript bytes
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Open opens or creates the SQLite ledger at path
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}

	_, err = db.Exec(`
	PRAGMA busy_timeout = 10000;
	PRAGMA journal_mode = WAL;
	PRAGMA synchronous  = NORMAL;

	create table if not exists cleaned_transcripts (
		blake3_hash text primary key not null,
		source      text not null,
		output      text not null,
		segments    integer not null,
		cleaned_at  text not null
	);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing ledger schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Lookup returns the entry for hash. found is false when the hash was never recorded.
func (l *Ledger) Lookup(ctx context.Context, hash string) (entry Entry, found bool, err error) {
	var cleanedAt string

	err = l.db.
		QueryRowContext(
			ctx,
			"select blake3_hash, source, output, segments, cleaned_at from cleaned_transcripts where blake3_hash = $1",
			hash,
		).
		Scan(&entry.Hash, &entry.Source, &entry.Output, &entry.Segments, &cleanedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup ledger entry: %w", err)
	}

	entry.CleanedAt, err = time.Parse(time.RFC3339, cleanedAt)
	if err != nil {
		return Entry{}, false, fmt.Errorf("parsing cleaned_at %q: %w", cleanedAt, err)
	}

	return entry, true, nil
}

// Record inserts or replaces the entry for entry.Hash
func (l *Ledger) Record(ctx context.Context, entry Entry) error {
	if entry.CleanedAt.IsZero() {
		entry.CleanedAt = time.Now()
	}

	_, err := l.db.ExecContext(ctx, `
		insert into cleaned_transcripts (blake3_hash, source, output, segments, cleaned_at)
		values ($1, $2, $3, $4, $5)
		on conflict (blake3_hash) do update set
			source = excluded.source,
			output = excluded.output,
			segments = excluded.segments,
			cleaned_at = excluded.cleaned_at
	`, entry.Hash, entry.Source, entry.Output, entry.Segments, entry.CleanedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording ledger entry: %w", err)
	}

	return nil
}

// Count returns the number of recorded transcripts
func (l *Ledger) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, "select count(*) from cleaned_transcripts").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting ledger entries: %w", err)
	}
	return n, nil
}

// Close closes the underlying database
func (l *Ledger) Close() error {
	return l.db.Close()
}
