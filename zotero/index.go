package zotero

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const (
	mainDatabase = "zotero.sqlite"
	bbtDatabase  = "better-bibtex.sqlite"
)

// BuildIndex reads the Zotero library under dir and returns every PDF
// attachment keyed by filename. The main database is required; the Better
// BibTeX database is used for citation keys when present. Both are queried
// through temporary snapshots so a running Zotero never blocks the read.
func BuildIndex(dir string) (Index, error) {
	mainPath := filepath.Join(dir, mainDatabase)
	if _, err := os.Stat(mainPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, mainPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabaseUnreadable, err)
	}

	main, err := openSnapshot(mainPath, "zotero")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseUnreadable, err)
	}
	defer main.Close()

	var bbtDB *sql.DB
	if bbtPath := filepath.Join(dir, bbtDatabase); fileExists(bbtPath) {
		bbt, err := openSnapshot(bbtPath, "better-bibtex")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseUnreadable, err)
		}
		defer bbt.Close()
		bbtDB = bbt.db
	}

	ix, err := buildFromDatabases(main.db, bbtDB)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseUnreadable, err)
	}
	return ix, nil
}

// attachment is one row of the attachment join: the attachment item itself
// plus its parent record when it has one.
type attachment struct {
	itemID    int64
	key       string
	path      string
	parentID  sql.NullInt64
	parentKey sql.NullString
}

func buildFromDatabases(main, bbt *sql.DB) (Index, error) {
	const query = `
		SELECT items.itemID, items.key, itemAttachments.path, itemAttachments.parentItemID, parent.key
		FROM items
		JOIN itemAttachments ON items.itemID = itemAttachments.itemID
		LEFT JOIN items AS parent ON itemAttachments.parentItemID = parent.itemID
		WHERE itemAttachments.path IS NOT NULL`
	rows, err := main.Query(query)
	if err != nil {
		return nil, err
	}
	var attachments []attachment
	for rows.Next() {
		var att attachment
		if err := rows.Scan(&att.itemID, &att.key, &att.path, &att.parentID, &att.parentKey); err != nil {
			rows.Close()
			return nil, err
		}
		attachments = append(attachments, att)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ix := make(Index, len(attachments))
	for _, att := range attachments {
		// Bibliographic fields live on the parent record when the
		// attachment has one; standalone attachments are their own record.
		srcID, srcKey := att.itemID, att.key
		if att.parentID.Valid && att.parentKey.Valid {
			srcID, srcKey = att.parentID.Int64, att.parentKey.String
		}

		meta := Metadata{
			CiteKey:          srcKey,
			Link:             "zotero://select/library/items/" + srcKey,
			PDFAttachmentKey: att.key,
		}
		if title, ok, err := itemField(main, srcID, "title"); err != nil {
			return nil, err
		} else if ok {
			meta.Title = title
		}
		if date, ok, err := itemField(main, srcID, "date"); err != nil {
			return nil, err
		} else if ok {
			meta.Year = parseYear(date)
		}
		if authors, ok, err := itemCreators(main, srcID); err != nil {
			return nil, err
		} else if ok {
			meta.Authors = authors
		}
		if bbt != nil {
			if key, ok, err := citationKey(bbt, srcKey); err != nil {
				return nil, err
			} else if ok {
				meta.CiteKey = key
			}
		}

		ix[attachmentFileName(att.path)] = meta
	}
	return ix, nil
}

// attachmentFileName derives the bare filename from a stored attachment
// path, which is either "storage:name.pdf" for managed attachments or a
// plain filesystem path for linked ones.
func attachmentFileName(path string) string {
	if i := strings.LastIndex(path, ":"); i >= 0 {
		return path[i+1:]
	}
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// snapshot is a temporary copy of a SQLite database. Zotero keeps its live
// databases locked while running, so reads always go through a copy that
// Close removes again.
type snapshot struct {
	db   *sql.DB
	path string
}

func openSnapshot(src, label string) (*snapshot, error) {
	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("%s_temp_%d.sqlite", label, os.Getpid()))
	if err := copyFile(src, tmp); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", tmp)
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}
	return &snapshot{db: db, path: tmp}, nil
}

// Close releases the database handle and removes the copy. Safe to call on
// a nil snapshot.
func (s *snapshot) Close() {
	if s == nil {
		return
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	_ = os.Remove(s.path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
