// Package photos reads the Photos.sqlite catalog of an iOS backup and
// builds the album and asset portions of the domain model.
package photos

import (
	"errors"
	"fmt"
	"strings"

	"github.com/photoxport/photoxport/internal/sqlitedb"
)

// ErrUnsupportedSchema indicates the Photos.sqlite layout does not match
// any known iOS release
var ErrUnsupportedSchema = errors.New("unsupported Photos.sqlite schema")

// JoinSchema identifies the iOS-version-dependent album-to-asset join
// table and its columns. The table is named Z_<n>ASSETS (e.g. Z_26ASSETS,
// Z_33ASSETS) and both the number and the column prefixes change across
// releases.
type JoinSchema struct {
	Table   string
	AlbumFK string
	AssetFK string
	SortCol string
}

// DiscoverJoinSchema inspects sqlite_master and the join table's columns
// to work out the names used by this backup's iOS version.
func DiscoverJoinSchema(db *sqlitedb.DB) (JoinSchema, error) {
	table, err := findJoinTable(db)
	if err != nil {
		return JoinSchema{}, err
	}
	return findJoinColumns(db, table)
}

func findJoinTable(db *sqlitedb.DB) (string, error) {
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table'")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", fmt.Errorf("failed to scan table name: %w", err)
		}
		if strings.HasPrefix(name, "Z_") && strings.Contains(name, "ASSET") && name != "ZASSET" {
			return name, nil
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating tables: %w", err)
	}

	return "", fmt.Errorf("%w: could not find album-to-asset join table; the backup may be from an unsupported iOS version", ErrUnsupportedSchema)
}

func findJoinColumns(db *sqlitedb.DB, table string) (JoinSchema, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return JoinSchema{}, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid            int
			name, dataType string
			notNull, pk    int
			defaultValue   any
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return JoinSchema{}, fmt.Errorf("failed to scan column info: %w", err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return JoinSchema{}, fmt.Errorf("error iterating columns: %w", err)
	}

	schema := JoinSchema{Table: table}
	for _, c := range cols {
		switch {
		case strings.HasSuffix(c, "ALBUMS") && schema.AlbumFK == "":
			schema.AlbumFK = c
		case strings.HasSuffix(c, "ASSETS") && !strings.HasPrefix(c, "Z_FOK") && schema.AssetFK == "":
			schema.AssetFK = c
		case strings.HasPrefix(c, "Z_FOK") && schema.SortCol == "":
			schema.SortCol = c
		}
	}

	if schema.AlbumFK == "" || schema.AssetFK == "" || schema.SortCol == "" {
		return JoinSchema{}, fmt.Errorf("%w: could not identify expected columns in %s (found: %s)",
			ErrUnsupportedSchema, table, strings.Join(cols, ", "))
	}
	return schema, nil
}
