package zotero

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
)

// itemField returns the named data field of an item. A record without the
// field is a normal state, reported as found=false with a nil error.
func itemField(db *sql.DB, itemID int64, field string) (string, bool, error) {
	const query = `
		SELECT itemDataValues.value
		FROM itemData
		JOIN fields ON itemData.fieldID = fields.fieldID
		JOIN itemDataValues ON itemData.valueID = itemDataValues.valueID
		WHERE itemData.itemID = ? AND fields.fieldName = ?`
	var value string
	err := db.QueryRow(query, itemID, field).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// itemCreators returns the item's creators in display order as a single
// "First Last, First Last" string. An item without creators is reported as
// found=false with a nil error.
func itemCreators(db *sql.DB, itemID int64) (string, bool, error) {
	const query = `
		SELECT creators.firstName, creators.lastName
		FROM itemCreators
		JOIN creators ON itemCreators.creatorID = creators.creatorID
		WHERE itemCreators.itemID = ?
		ORDER BY itemCreators.orderIndex`
	rows, err := db.Query(query, itemID)
	if err != nil {
		return "", false, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var first, last sql.NullString
		if err := rows.Scan(&first, &last); err != nil {
			return "", false, err
		}
		switch {
		case first.Valid && last.Valid:
			names = append(names, first.String+" "+last.String)
		case last.Valid:
			names = append(names, last.String)
		case first.Valid:
			names = append(names, first.String)
		}
	}
	if err := rows.Err(); err != nil {
		return "", false, err
	}
	if len(names) == 0 {
		return "", false, nil
	}
	return strings.Join(names, ", "), true, nil
}

// citationKey returns the Better BibTeX citation key for an item key. Items
// Better BibTeX has not pinned are reported as found=false with a nil
// error.
func citationKey(db *sql.DB, itemKey string) (string, bool, error) {
	var key string
	err := db.QueryRow(`SELECT citationKey FROM citationkey WHERE itemKey = ?`, itemKey).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return key, true, nil
}

// parseYear pulls a four-digit year out of a free-form date string. Zotero
// date fields range from ISO dates to "May 2021" to "c. 1999"; the first
// run of digits that is exactly four long and in [1000, 9999] wins.
func parseYear(date string) string {
	parts := strings.FieldsFunc(date, func(r rune) bool {
		return r < '0' || r > '9'
	})
	for _, part := range parts {
		if len(part) != 4 {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil && n >= 1000 && n <= 9999 {
			return part
		}
	}
	return ""
}
