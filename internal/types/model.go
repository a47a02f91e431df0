package types

// MediaType distinguishes photos from videos
type MediaType string

const (
	MediaTypePhoto MediaType = "photo"
	MediaTypeVideo MediaType = "video"
)

// Subtype is the refined asset classification derived from ZKINDSUBTYPE
type Subtype string

const (
	SubtypeStandard       Subtype = "standard"
	SubtypeLivePhotoStill Subtype = "live_photo_still"
	SubtypeLivePhotoVideo Subtype = "live_photo_video"
	SubtypeBurstFrame     Subtype = "burst_frame"
	SubtypePanorama       Subtype = "panorama"
	SubtypeScreenshot     Subtype = "screenshot"
	SubtypePortrait       Subtype = "portrait"
	SubtypeSloMo          Subtype = "slo_mo"
	SubtypeTimeLapse      Subtype = "time_lapse"
)

// SmartFolder names a virtual collection derived from asset flags
type SmartFolder string

const (
	SmartFolderFavorites       SmartFolder = "favorites"
	SmartFolderHidden          SmartFolder = "hidden"
	SmartFolderSelfies         SmartFolder = "selfies"
	SmartFolderRecentlyDeleted SmartFolder = "recently_deleted"
)

// AlbumType distinguishes user-created albums from burst albums
type AlbumType string

const (
	AlbumTypeUser  AlbumType = "user"
	AlbumTypeBurst AlbumType = "burst"
)

// SortOrder is the album's configured ordering
type SortOrder string

const (
	SortOrderManual SortOrder = "manual"
	SortOrderDate   SortOrder = "date"
	SortOrderNone   SortOrder = "none"
)

// SourceDevice keeps the device information in the BackupModel
type SourceDevice struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	IOSVersion string `json:"ios_version"`
}

// BackupMetadata keeps metadata of the backup itself
type BackupMetadata struct {
	BackupUUID   string       `json:"backup_uuid"`
	BackupDate   string       `json:"backup_date"`
	IsEncrypted  bool         `json:"is_encrypted"`
	SourceDevice SourceDevice `json:"source_device"`
}

// Flags keeps the per-asset markers that determine smart folder membership
type Flags struct {
	IsFavorite        bool `json:"is_favorite"`
	IsHidden          bool `json:"is_hidden"`
	IsRecentlyDeleted bool `json:"is_recently_deleted"`
	IsSelfie          bool `json:"is_selfie"`
}

// SmartFolders derives the smart folder memberships from the flags
func (f Flags) SmartFolders() []SmartFolder {
	var folders []SmartFolder
	if f.IsFavorite {
		folders = append(folders, SmartFolderFavorites)
	}
	if f.IsHidden {
		folders = append(folders, SmartFolderHidden)
	}
	if f.IsRecentlyDeleted {
		folders = append(folders, SmartFolderRecentlyDeleted)
	}
	if f.IsSelfie {
		folders = append(folders, SmartFolderSelfies)
	}
	return folders
}

// Relationships tracks an asset's album and smart folder memberships
type Relationships struct {
	UserAlbums   []string      `json:"user_albums"`
	BurstAlbum   *string       `json:"burst_album,omitempty"`
	SmartFolders []SmartFolder `json:"smart_folders"`
}

// Asset represents a single photo or video from the backup
type Asset struct {
	AssetUUID       string `json:"asset_uuid"`
	LocalIdentifier string `json:"local_identifier"`

	OriginalFilename string `json:"original_filename"`
	FileExtension    string `json:"file_extension"`
	UTIType          string `json:"uti_type"`

	CreationDate     string `json:"creation_date"`
	ModificationDate string `json:"modification_date"`
	TimezoneOffset   string `json:"timezone_offset"`

	BackupRelativePath   string `json:"backup_relative_path"`
	BackupHashedFilename string `json:"backup_hashed_filename"`

	MediaType MediaType `json:"media_type"`
	Subtype   Subtype   `json:"subtype"`

	LivePhotoGroupUUID  *string `json:"live_photo_group_uuid,omitempty"`
	BurstUUID           *string `json:"burst_uuid,omitempty"`
	IsPrimaryBurstFrame bool    `json:"is_primary_burst_frame"`

	Flags         Flags         `json:"flags"`
	Relationships Relationships `json:"relationships"`
}

// Album represents a Photos-application album
type Album struct {
	AlbumUUID  string    `json:"album_uuid"`
	Title      string    `json:"title"`
	Type       AlbumType `json:"type"`
	SortOrder  SortOrder `json:"sort_order"`
	AssetCount int       `json:"asset_count"`
}

// BackupModel is the consolidated in-memory view of the backup's
// Photos-application contents. It is built once per backup load and
// never mutated afterwards.
type BackupModel struct {
	BackupMetadata BackupMetadata `json:"backup_metadata"`
	Assets         []Asset        `json:"assets"`
	Albums         []Album        `json:"albums"`
}

// BackupModelResult reports the outcome of a model build. No error
// escapes the builder; failures land here as a message.
type BackupModelResult struct {
	Success     bool         `json:"success"`
	BackupModel *BackupModel `json:"backup_model,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// CollectionRef is the runtime identity of a destination folder.
// Smart folder collections carry the "nua_" title prefix.
type CollectionRef struct {
	Title string `json:"title"`
	IsNUA bool   `json:"is_nua"`
}

// AssetToConvert describes an asset needing conversion together with
// the extension-to-extension rules to apply, e.g. {"HEIC": "PNG"}.
type AssetToConvert struct {
	Asset      Asset             `json:"asset"`
	ConvertMap map[string]string `json:"convert_map"`
}

// ConvertedAsset describes the outcome of a conversion attempt. On
// success the inner asset is identical to the input except that
// BackupRelativePath points at the converted temp file.
type ConvertedAsset struct {
	Success        bool   `json:"success"`
	ConvertedAsset *Asset `json:"converted_asset,omitempty"`
	Error          string `json:"error,omitempty"`
}
