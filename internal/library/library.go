// Package library maintains a SQLite index of the books directory so
// lookups by title do not reopen every archive.
package library

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/typepub/internal/epub"
	"github.com/verte-zerg/typepub/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrBookNotFound indicates no indexed book matched the query.
var ErrBookNotFound = errors.New("library: book not found")

// Index wraps SQLite access for the book metadata cache.
type Index struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Index, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	idx := &Index{db: db}
	if err := idx.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return idx, nil
}

// Close closes the underlying database.
func (idx *Index) Close() error {
	return idx.db.Close()
}

func (idx *Index) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
			path TEXT PRIMARY KEY,
			mod_time TEXT NOT NULL,
			size INTEGER NOT NULL,
			title TEXT NOT NULL,
			author TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_books_title ON books(title);`,
	}
	for _, stmt := range stmts {
		if _, err := idx.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Scan walks dir for .epub files and refreshes the index. Metadata is
// re-read only for files whose size or mtime changed; rows for files
// that no longer exist are removed. Returns the number of books now
// indexed under dir.
func (idx *Index) Scan(ctx context.Context, dir string) (int, error) {
	seen := map[string]bool{}
	count := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".epub") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		seen[path] = true
		count++
		return idx.refresh(ctx, path, info)
	})
	if err != nil {
		return 0, err
	}

	if err := idx.prune(ctx, dir, seen); err != nil {
		return 0, err
	}
	return count, nil
}

// refresh upserts one book row, reading the archive only when the
// cached size or mtime no longer matches.
func (idx *Index) refresh(ctx context.Context, path string, info fs.FileInfo) error {
	modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

	var cachedMod string
	var cachedSize int64
	err := idx.db.QueryRowContext(ctx,
		`SELECT mod_time, size FROM books WHERE path = ?`, path).
		Scan(&cachedMod, &cachedSize)
	if err == nil && cachedMod == modTime && cachedSize == info.Size() {
		return nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	title, author := readBookMetadata(path)
	_, err = idx.db.ExecContext(ctx,
		`INSERT INTO books (path, mod_time, size, title, author)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			mod_time = excluded.mod_time,
			size = excluded.size,
			title = excluded.title,
			author = excluded.author`,
		path, modTime, info.Size(), title, author)
	return err
}

// readBookMetadata opens the archive for its title and author. An
// unreadable book still gets a row, keyed by file name, so listings
// show it instead of silently hiding it.
func readBookMetadata(path string) (title, author string) {
	b, err := epub.Open(path)
	if err != nil {
		return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), ""
	}
	defer b.Close()
	m := b.Metadata()
	title = m.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return title, m.Author
}

// prune removes rows under dir whose files were not seen this scan.
func (idx *Index) prune(ctx context.Context, dir string, seen map[string]bool) error {
	rows, err := idx.db.QueryContext(ctx,
		`SELECT path FROM books WHERE path LIKE ? ESCAPE '\'`,
		likeEscape(dir)+"%")
	if err != nil {
		return err
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			if cerr := rows.Close(); cerr != nil {
				_ = cerr
			}
			return err
		}
		if !seen[path] {
			stale = append(stale, path)
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, path := range stale {
		if _, err := idx.db.ExecContext(ctx, `DELETE FROM books WHERE path = ?`, path); err != nil {
			return err
		}
	}
	return nil
}

// List returns all indexed books ordered by title.
func (idx *Index) List(ctx context.Context) ([]model.BookInfo, error) {
	return idx.query(ctx,
		`SELECT path, mod_time, size, title, author FROM books
		 ORDER BY title COLLATE NOCASE ASC, path ASC`)
}

// Search returns books whose title or author contains the query,
// case-insensitively, with title matches ranked first.
func (idx *Index) Search(ctx context.Context, q string) ([]model.BookInfo, error) {
	pattern := "%" + likeEscape(q) + "%"
	return idx.query(ctx,
		`SELECT path, mod_time, size, title, author FROM books
		 WHERE title LIKE ? ESCAPE '\' OR author LIKE ? ESCAPE '\'
		 ORDER BY CASE WHEN title LIKE ? ESCAPE '\' THEN 0 ELSE 1 END,
			title COLLATE NOCASE ASC, path ASC`,
		pattern, pattern, pattern)
}

// Find returns the best match for the query, or ErrBookNotFound.
func (idx *Index) Find(ctx context.Context, q string) (model.BookInfo, error) {
	books, err := idx.Search(ctx, q)
	if err != nil {
		return model.BookInfo{}, err
	}
	if len(books) == 0 {
		return model.BookInfo{}, ErrBookNotFound
	}
	return books[0], nil
}

func (idx *Index) query(ctx context.Context, query string, args ...any) ([]model.BookInfo, error) {
	rows, err := idx.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var books []model.BookInfo
	for rows.Next() {
		var b model.BookInfo
		var modTime string
		if err := rows.Scan(&b.Path, &modTime, &b.Size, &b.Title, &b.Author); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, modTime)
		if err != nil {
			return nil, err
		}
		b.ModTime = parsed
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// likeEscape escapes LIKE wildcards so user input matches literally.
func likeEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
