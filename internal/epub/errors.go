package epub

import "errors"

// Sentinel errors returned by the epub package.
var (
	// ErrInvalidEPub indicates the file is not a valid ePub archive
	// (missing container.xml and no .opf file found).
	ErrInvalidEPub = errors.New("epub: invalid ePub file")

	// ErrFileNotFound indicates the requested file does not exist
	// in the ePub archive.
	ErrFileNotFound = errors.New("epub: file not found in archive")

	// ErrNoChapter indicates the requested chapter index is out of range.
	ErrNoChapter = errors.New("epub: no such chapter")
)
