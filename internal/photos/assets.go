package photos

import (
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/photoxport/photoxport/internal/logger"
	"github.com/photoxport/photoxport/internal/sqlitedb"
	"github.com/photoxport/photoxport/internal/types"
)

// appleEpochOffset is the number of seconds between the Unix epoch
// (1970-01-01) and the Apple epoch (2001-01-01) used by iOS timestamps.
const appleEpochOffset = 978307200

// FileResolver maps logical backup-relative paths to the hashed payload
// files on disk. The backup package's ManifestDB satisfies it.
type FileResolver interface {
	ResolveFileID(relativePath string) (string, error)
	HashedPath(fileID string) string
}

// missingFiler is implemented by resolver errors that mean the path has
// no Manifest.db entry, as opposed to a query failure.
type missingFiler interface {
	MissingFile() bool
}

func isMissingFile(err error) bool {
	var m missingFiler
	return errors.As(err, &m) && m.MissingFile()
}

// mediaTypeFromKind maps ZKIND values to media types
func mediaTypeFromKind(kind sql.NullInt64) types.MediaType {
	if kind.Valid && kind.Int64 == 1 {
		return types.MediaTypeVideo
	}
	return types.MediaTypePhoto
}

// subtypeFromKind maps ZKINDSUBTYPE values to asset subtypes
func subtypeFromKind(kindSubtype sql.NullInt64) types.Subtype {
	if !kindSubtype.Valid {
		return types.SubtypeStandard
	}
	switch kindSubtype.Int64 {
	case 2:
		return types.SubtypeLivePhotoStill
	case 4:
		return types.SubtypeLivePhotoVideo
	case 8:
		return types.SubtypeScreenshot
	case 16:
		return types.SubtypePortrait
	case 32:
		return types.SubtypePanorama
	case 64:
		return types.SubtypeSloMo
	case 128:
		return types.SubtypeTimeLapse
	case 768:
		return types.SubtypeBurstFrame
	default:
		return types.SubtypeStandard
	}
}

// appleEpochToISO converts an Apple epoch timestamp to an ISO-8601 UTC
// string. Null timestamps become the empty string.
func appleEpochToISO(appleTime sql.NullFloat64) string {
	if !appleTime.Valid {
		return ""
	}
	unix := int64(appleTime.Float64) + appleEpochOffset
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

// assetRow mirrors the ZASSET / ZADDITIONALASSETATTRIBUTES columns the
// model needs
type assetRow struct {
	pk                int64
	uuid              sql.NullString
	filename          sql.NullString
	directory         sql.NullString
	utiType           sql.NullString
	dateCreated       sql.NullFloat64
	modificationDate  sql.NullFloat64
	kind              sql.NullInt64
	kindSubtype       sql.NullInt64
	favorite          sql.NullInt64
	hidden            sql.NullInt64
	trashedState      sql.NullInt64
	avalancheUUID     sql.NullString
	avalanchePickType sql.NullInt64
	mediaGroupUUID    sql.NullString
	originalFilename  sql.NullString
}

// ReadAssets returns all resolvable assets from the Photos catalog along
// with the count of rows skipped because Manifest.db has no entry for
// them. A device may reference assets purged from the backup; those rows
// are dropped silently.
func ReadAssets(db *sqlitedb.DB, resolver FileResolver, log *logger.Logger) ([]types.Asset, int, error) {
	exists, err := hasTable(db, "ZASSET")
	if err != nil {
		return nil, 0, err
	}
	if !exists {
		return nil, 0, nil
	}

	schema, err := DiscoverJoinSchema(db)
	if err != nil {
		return nil, 0, err
	}

	memberships, err := readMembershipLookup(db, schema)
	if err != nil {
		return nil, 0, err
	}

	rows, err := db.Query(`
		SELECT
			ZASSET.Z_PK,
			ZASSET.ZUUID,
			ZASSET.ZFILENAME,
			ZASSET.ZDIRECTORY,
			ZASSET.ZUNIFORMTYPEIDENTIFIER,
			ZASSET.ZDATECREATED,
			ZASSET.ZMODIFICATIONDATE,
			ZASSET.ZKIND,
			ZASSET.ZKINDSUBTYPE,
			ZASSET.ZFAVORITE,
			ZASSET.ZHIDDEN,
			ZASSET.ZTRASHEDSTATE,
			ZASSET.ZAVALANCHEUUID,
			ZASSET.ZAVALANCHEPICKTYPE,
			ZASSET.ZMEDIAGROUPUUID,
			ZADDITIONALASSETATTRIBUTES.ZORIGINALFILENAME
		FROM ZASSET
		LEFT JOIN ZADDITIONALASSETATTRIBUTES
			ON ZADDITIONALASSETATTRIBUTES.ZASSET = ZASSET.Z_PK
	`)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var assets []types.Asset
	skipped := 0

	for rows.Next() {
		var r assetRow
		if err := rows.Scan(
			&r.pk,
			&r.uuid,
			&r.filename,
			&r.directory,
			&r.utiType,
			&r.dateCreated,
			&r.modificationDate,
			&r.kind,
			&r.kindSubtype,
			&r.favorite,
			&r.hidden,
			&r.trashedState,
			&r.avalancheUUID,
			&r.avalanchePickType,
			&r.mediaGroupUUID,
			&r.originalFilename,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan asset row: %w", err)
		}

		asset, ok, err := buildAsset(r, memberships, resolver, log)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			skipped++
			continue
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating asset rows: %w", err)
	}

	return assets, skipped, nil
}

func buildAsset(r assetRow, memberships map[int64][]string, resolver FileResolver, log *logger.Logger) (types.Asset, bool, error) {
	originalFilename := r.originalFilename.String
	if originalFilename == "" {
		originalFilename = r.filename.String
	}

	relativePath := "Media/" + r.directory.String + "/" + originalFilename
	fileID, err := resolver.ResolveFileID(relativePath)
	if err != nil {
		if isMissingFile(err) {
			log.Debugf("skipping asset not present in Manifest.db: %s", relativePath)
			return types.Asset{}, false, nil
		}
		return types.Asset{}, false, err
	}

	fileExtension := ""
	if ext := path.Ext(originalFilename); ext != "" {
		fileExtension = strings.ToUpper(strings.TrimPrefix(ext, "."))
	}

	flags := types.Flags{
		IsFavorite:        r.favorite.Valid && r.favorite.Int64 != 0,
		IsHidden:          r.hidden.Valid && r.hidden.Int64 != 0,
		IsRecentlyDeleted: r.trashedState.Valid && r.trashedState.Int64 != 0,
		// IsSelfie has no ZASSET column and stays false; nothing sets it
	}

	var livePhotoGroup *string
	if r.mediaGroupUUID.Valid && r.mediaGroupUUID.String != "" {
		v := r.mediaGroupUUID.String
		livePhotoGroup = &v
	}
	var burstUUID *string
	if r.avalancheUUID.Valid && r.avalancheUUID.String != "" {
		v := r.avalancheUUID.String
		burstUUID = &v
	}

	return types.Asset{
		AssetUUID:            r.uuid.String,
		LocalIdentifier:      r.uuid.String,
		OriginalFilename:     originalFilename,
		FileExtension:        fileExtension,
		UTIType:              r.utiType.String,
		CreationDate:         appleEpochToISO(r.dateCreated),
		ModificationDate:     appleEpochToISO(r.modificationDate),
		TimezoneOffset:       "",
		BackupRelativePath:   resolver.HashedPath(fileID),
		BackupHashedFilename: fileID,
		MediaType:            mediaTypeFromKind(r.kind),
		Subtype:              subtypeFromKind(r.kindSubtype),
		LivePhotoGroupUUID:   livePhotoGroup,
		BurstUUID:            burstUUID,
		IsPrimaryBurstFrame:  r.avalanchePickType.Valid && r.avalanchePickType.Int64 == 2,
		Flags:                flags,
		Relationships: types.Relationships{
			UserAlbums:   memberships[r.pk],
			SmartFolders: flags.SmartFolders(),
		},
	}, true, nil
}

// readMembershipLookup builds the asset-pk-to-album-uuids map in a single
// query over the discovered join table, filtered to user albums.
func readMembershipLookup(db *sqlitedb.DB, schema JoinSchema) (map[int64][]string, error) {
	query := fmt.Sprintf(`
		SELECT
			%s.%s AS asset_pk,
			ZGENERICALBUM.ZUUID AS album_uuid
		FROM %s
		JOIN ZGENERICALBUM
			ON ZGENERICALBUM.Z_PK = %s.%s
		WHERE ZGENERICALBUM.ZKIND = 2
	`, schema.Table, schema.AssetFK, schema.Table, schema.Table, schema.AlbumFK)

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lookup := make(map[int64][]string)
	for rows.Next() {
		var assetPK int64
		var albumUUID string
		if err := rows.Scan(&assetPK, &albumUUID); err != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", err)
		}
		lookup[assetPK] = append(lookup[assetPK], albumUUID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership rows: %w", err)
	}

	return lookup, nil
}

func hasTable(db *sqlitedb.DB, name string) (bool, error) {
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check for %s table: %w", name, err)
	}
	return count > 0, nil
}
