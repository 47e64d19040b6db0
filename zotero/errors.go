package zotero

import "errors"

var (
	// ErrDatabaseNotFound reports a library directory without a
	// zotero.sqlite file.
	ErrDatabaseNotFound = errors.New("zotero database not found")

	// ErrDatabaseUnreadable reports a library database that could not be
	// copied, opened, or queried.
	ErrDatabaseUnreadable = errors.New("zotero database unreadable")
)
