package photos

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photoxport/photoxport/internal/logger"
	"github.com/photoxport/photoxport/internal/types"
)

const assetDDL = `CREATE TABLE ZASSET (
	Z_PK INTEGER PRIMARY KEY,
	ZUUID TEXT,
	ZFILENAME TEXT,
	ZDIRECTORY TEXT,
	ZUNIFORMTYPEIDENTIFIER TEXT,
	ZDATECREATED REAL,
	ZMODIFICATIONDATE REAL,
	ZKIND INTEGER,
	ZKINDSUBTYPE INTEGER,
	ZFAVORITE INTEGER,
	ZHIDDEN INTEGER,
	ZTRASHEDSTATE INTEGER,
	ZAVALANCHEUUID TEXT,
	ZAVALANCHEPICKTYPE INTEGER,
	ZMEDIAGROUPUUID TEXT
)`

const attributesDDL = `CREATE TABLE ZADDITIONALASSETATTRIBUTES (
	Z_PK INTEGER PRIMARY KEY,
	ZASSET INTEGER,
	ZORIGINALFILENAME TEXT
)`

const joinDDL = `CREATE TABLE Z_33ASSETS (
	Z_33ALBUMS INTEGER,
	Z_3ASSETS INTEGER,
	Z_FOK_3ASSETS INTEGER
)`

// fakeResolver satisfies FileResolver with a fixed path-to-fileID map
type fakeResolver struct {
	root  string
	known map[string]string
}

type missError struct{ path string }

func (e *missError) Error() string     { return fmt.Sprintf("no entry for %s", e.path) }
func (e *missError) MissingFile() bool { return true }

func (f *fakeResolver) ResolveFileID(relativePath string) (string, error) {
	if id, ok := f.known[relativePath]; ok {
		return id, nil
	}
	return "", &missError{path: relativePath}
}

func (f *fakeResolver) HashedPath(fileID string) string {
	return filepath.Join(f.root, fileID[:2], fileID)
}

func TestSubtypeFromKind(t *testing.T) {
	tests := []struct {
		value    int64
		expected types.Subtype
	}{
		{2, types.SubtypeLivePhotoStill},
		{4, types.SubtypeLivePhotoVideo},
		{8, types.SubtypeScreenshot},
		{16, types.SubtypePortrait},
		{32, types.SubtypePanorama},
		{64, types.SubtypeSloMo},
		{128, types.SubtypeTimeLapse},
		{768, types.SubtypeBurstFrame},
		{999, types.SubtypeStandard},
		{0, types.SubtypeStandard},
	}

	for _, tt := range tests {
		got := subtypeFromKind(sql.NullInt64{Int64: tt.value, Valid: true})
		assert.Equal(t, tt.expected, got, "subtype for %d", tt.value)
	}

	assert.Equal(t, types.SubtypeStandard, subtypeFromKind(sql.NullInt64{}))
}

func TestAppleEpochToISO(t *testing.T) {
	assert.Equal(t, "", appleEpochToISO(sql.NullFloat64{}))
	assert.Equal(t, "1970-01-01T00:00:00Z",
		appleEpochToISO(sql.NullFloat64{Float64: -978307200, Valid: true}))
	assert.Equal(t, "2026-01-13T12:26:40Z",
		appleEpochToISO(sql.NullFloat64{Float64: 790000000, Valid: true}))
}

func TestReadAssets(t *testing.T) {
	db := newCatalog(t,
		assetDDL,
		attributesDDL,
		albumDDL,
		joinDDL,
		`INSERT INTO ZGENERICALBUM (Z_PK, ZUUID, ZTITLE, ZKIND) VALUES
			(10, 'album-one', 'One', 2),
			(11, 'album-smart', 'Not User', 1)`,
		`INSERT INTO ZASSET (Z_PK, ZUUID, ZFILENAME, ZDIRECTORY, ZUNIFORMTYPEIDENTIFIER, ZDATECREATED, ZMODIFICATIONDATE, ZKIND, ZKINDSUBTYPE, ZFAVORITE, ZHIDDEN, ZTRASHEDSTATE, ZAVALANCHEUUID, ZAVALANCHEPICKTYPE, ZMEDIAGROUPUUID) VALUES
			(1, 'asset-still', 'IMG_0001.HEIC', 'DCIM/100APPLE', 'public.heic', 790000000, 790000000, 0, NULL, 1, 0, 0, NULL, NULL, NULL),
			(2, 'asset-video', 'IMG_0002.MOV',  'DCIM/100APPLE', 'com.apple.quicktime-movie', 790000100, 790000100, 1, 4, 0, 1, 0, NULL, NULL, 'group-77'),
			(3, 'asset-gone',  'IMG_0003.JPG',  'DCIM/100APPLE', 'public.jpeg', 790000200, 790000200, 0, NULL, 0, 0, 1, NULL, NULL, NULL),
			(4, 'asset-burst', 'IMG_0004.JPG',  'DCIM/100APPLE', 'public.jpeg', 790000300, 790000300, 0, 768, 0, 0, 0, 'burst-1', 2, NULL)`,
		`INSERT INTO ZADDITIONALASSETATTRIBUTES (Z_PK, ZASSET, ZORIGINALFILENAME) VALUES
			(1, 1, 'IMG_0001.HEIC'),
			(2, 2, 'OriginalClip.mov')`,
		`INSERT INTO Z_33ASSETS (Z_33ALBUMS, Z_3ASSETS, Z_FOK_3ASSETS) VALUES
			(10, 1, 0),
			(11, 2, 0)`,
	)

	resolver := &fakeResolver{
		root: "/backup",
		known: map[string]string{
			"Media/DCIM/100APPLE/IMG_0001.HEIC":   "aa00000000000000000000000000000000000000",
			"Media/DCIM/100APPLE/OriginalClip.mov": "bb00000000000000000000000000000000000000",
			"Media/DCIM/100APPLE/IMG_0004.JPG":    "cc00000000000000000000000000000000000000",
		},
	}

	assets, skipped, err := ReadAssets(db, resolver, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, 1, skipped, "the unresolvable row is skipped, not fatal")
	require.Len(t, assets, 3)

	still := assets[0]
	assert.Equal(t, "asset-still", still.AssetUUID)
	assert.Equal(t, "IMG_0001.HEIC", still.OriginalFilename)
	assert.Equal(t, "HEIC", still.FileExtension)
	assert.Equal(t, "public.heic", still.UTIType)
	assert.Equal(t, "2026-01-13T12:26:40Z", still.CreationDate)
	assert.Equal(t, types.MediaTypePhoto, still.MediaType)
	assert.Equal(t, types.SubtypeStandard, still.Subtype)
	assert.Equal(t, filepath.Join("/backup", "aa", "aa00000000000000000000000000000000000000"), still.BackupRelativePath)
	assert.Equal(t, "aa00000000000000000000000000000000000000", still.BackupHashedFilename)
	assert.True(t, still.Flags.IsFavorite)
	assert.Equal(t, []types.SmartFolder{types.SmartFolderFavorites}, still.Relationships.SmartFolders)
	assert.Equal(t, []string{"album-one"}, still.Relationships.UserAlbums)
	assert.Nil(t, still.BurstUUID)

	video := assets[1]
	assert.Equal(t, "OriginalClip.mov", video.OriginalFilename, "original filename wins over ZFILENAME")
	assert.Equal(t, "MOV", video.FileExtension)
	assert.Equal(t, types.MediaTypeVideo, video.MediaType)
	assert.Equal(t, types.SubtypeLivePhotoVideo, video.Subtype)
	require.NotNil(t, video.LivePhotoGroupUUID)
	assert.Equal(t, "group-77", *video.LivePhotoGroupUUID)
	assert.True(t, video.Flags.IsHidden)
	assert.Equal(t, []types.SmartFolder{types.SmartFolderHidden}, video.Relationships.SmartFolders)
	assert.Empty(t, video.Relationships.UserAlbums, "membership in non-user albums is ignored")

	burst := assets[2]
	assert.Equal(t, types.SubtypeBurstFrame, burst.Subtype)
	require.NotNil(t, burst.BurstUUID)
	assert.Equal(t, "burst-1", *burst.BurstUUID)
	assert.True(t, burst.IsPrimaryBurstFrame)
}

func TestReadAssetsEmptyCatalog(t *testing.T) {
	db := newCatalog(t)

	assets, skipped, err := ReadAssets(db, &fakeResolver{root: "/backup"}, logger.Discard())
	require.NoError(t, err)
	assert.Empty(t, assets)
	assert.Zero(t, skipped)
}

func TestReadAssetsFallsBackToFilename(t *testing.T) {
	db := newCatalog(t,
		assetDDL,
		attributesDDL,
		albumDDL,
		joinDDL,
		`INSERT INTO ZASSET (Z_PK, ZUUID, ZFILENAME, ZDIRECTORY, ZKIND) VALUES
			(1, 'asset-bare', 'IMG_0009.png', 'DCIM/101APPLE', 0)`,
	)

	resolver := &fakeResolver{
		root: "/backup",
		known: map[string]string{
			"Media/DCIM/101APPLE/IMG_0009.png": "dd00000000000000000000000000000000000000",
		},
	}

	assets, skipped, err := ReadAssets(db, resolver, logger.Discard())
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, assets, 1)
	assert.Equal(t, "IMG_0009.png", assets[0].OriginalFilename)
	assert.Equal(t, "PNG", assets[0].FileExtension)
	assert.Equal(t, "", assets[0].CreationDate, "null timestamps serialise empty")
}
