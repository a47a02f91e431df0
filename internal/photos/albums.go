package photos

import (
	"database/sql"
	"fmt"

	"github.com/photoxport/photoxport/internal/sqlitedb"
	"github.com/photoxport/photoxport/internal/types"
)

// albumRow mirrors the ZGENERICALBUM columns the model needs
type albumRow struct {
	uuid                sql.NullString
	title               sql.NullString
	customSortKey       sql.NullInt64
	customSortAscending sql.NullInt64
	cachedCount         sql.NullInt64
}

// ReadAlbums returns all user-created albums from ZGENERICALBUM,
// ordered by title. ZKIND = 2 denotes user albums.
func ReadAlbums(db *sqlitedb.DB) ([]types.Album, error) {
	exists, err := hasTable(db, "ZGENERICALBUM")
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	rows, err := db.Query(`
		SELECT
			ZUUID,
			ZTITLE,
			ZCUSTOMSORTKEY,
			ZCUSTOMSORTASCENDING,
			ZCACHEDCOUNT
		FROM ZGENERICALBUM
		WHERE ZKIND = 2
		ORDER BY ZTITLE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var albums []types.Album
	for rows.Next() {
		var r albumRow
		if err := rows.Scan(&r.uuid, &r.title, &r.customSortKey, &r.customSortAscending, &r.cachedCount); err != nil {
			return nil, fmt.Errorf("failed to scan album row: %w", err)
		}
		albums = append(albums, types.Album{
			AlbumUUID:  r.uuid.String,
			Title:      r.title.String,
			Type:       types.AlbumTypeUser,
			SortOrder:  sortOrderFromRow(r),
			AssetCount: int(r.cachedCount.Int64),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating album rows: %w", err)
	}

	return albums, nil
}

// sortOrderFromRow derives the album sort order: a custom sort key means
// the user arranged it manually, a bare sort direction means date order.
func sortOrderFromRow(r albumRow) types.SortOrder {
	if r.customSortKey.Valid && r.customSortKey.Int64 != 0 {
		return types.SortOrderManual
	}
	if r.customSortAscending.Valid {
		return types.SortOrderDate
	}
	return types.SortOrderNone
}
