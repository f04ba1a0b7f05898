// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	BooksDir string
	Width    int
	Book     string
	BookPath string
	Chapter  int
}

// BookInfo describes one indexed EPUB file.
type BookInfo struct {
	Path    string
	Title   string
	Author  string
	Size    int64
	ModTime time.Time
}
