// Package plist reads the Apple property lists found at the root of an
// iOS device backup. Both binary and XML encodings are handled.
package plist

import (
	"errors"
	"fmt"
	"os"
	"time"

	plistlib "howett.net/plist"
)

// ErrMalformed indicates the file could not be parsed as a property list
var ErrMalformed = errors.New("malformed property list")

// ErrKeyMissing indicates a required key is absent from the property list
var ErrKeyMissing = errors.New("required plist key missing")

// Info holds the fields the model builder needs from Info.plist
type Info struct {
	DeviceName     string    `plist:"Device Name"`
	ProductType    string    `plist:"Product Type"`
	ProductVersion string    `plist:"Product Version"`
	GUID           string    `plist:"GUID"`
	LastBackupDate time.Time `plist:"Last Backup Date"`
}

// BackupDateISO returns the last backup date serialised as ISO-8601
func (i Info) BackupDateISO() string {
	return i.LastBackupDate.UTC().Format("2006-01-02T15:04:05")
}

// Manifest holds the fields the model builder needs from Manifest.plist
type Manifest struct {
	IsEncrypted bool
}

// ReadInfo parses Info.plist at the given path
func ReadInfo(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var info Info
	if _, err := plistlib.Unmarshal(data, &info); err != nil {
		return Info{}, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	required := map[string]bool{
		"Device Name":      info.DeviceName != "",
		"Product Type":     info.ProductType != "",
		"Product Version":  info.ProductVersion != "",
		"GUID":             info.GUID != "",
		"Last Backup Date": !info.LastBackupDate.IsZero(),
	}
	for key, present := range required {
		if !present {
			return Info{}, fmt.Errorf("%w: %q in %s", ErrKeyMissing, key, path)
		}
	}

	return info, nil
}

// ReadManifest parses Manifest.plist at the given path. The IsEncrypted
// key is required; decoding goes through a generic dict so that a missing
// key can be told apart from an explicit false.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw map[string]interface{}
	if _, err := plistlib.Unmarshal(data, &raw); err != nil {
		return Manifest{}, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	value, ok := raw["IsEncrypted"]
	if !ok {
		return Manifest{}, fmt.Errorf("%w: %q in %s", ErrKeyMissing, "IsEncrypted", path)
	}
	encrypted, ok := value.(bool)
	if !ok {
		return Manifest{}, fmt.Errorf("%w: IsEncrypted is not a boolean in %s", ErrMalformed, path)
	}

	return Manifest{IsEncrypted: encrypted}, nil
}
