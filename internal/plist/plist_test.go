package plist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	plistlib "howett.net/plist"
)

func writePlist(t *testing.T, name string, value any, format int) string {
	t.Helper()
	data, err := plistlib.Marshal(value, format)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func infoFixture() map[string]any {
	return map[string]any{
		"Device Name":      "Test iPhone",
		"Product Type":     "iPhone15,2",
		"Product Version":  "17.3.1",
		"GUID":             "D7A5EB27206B918EB006E38E4B84C87F",
		"Last Backup Date": time.Date(2026, 1, 21, 11, 38, 37, 0, time.UTC),
	}
}

func TestReadInfo(t *testing.T) {
	for _, format := range []int{plistlib.XMLFormat, plistlib.BinaryFormat} {
		path := writePlist(t, "Info.plist", infoFixture(), format)

		info, err := ReadInfo(path)
		require.NoError(t, err)
		assert.Equal(t, "Test iPhone", info.DeviceName)
		assert.Equal(t, "iPhone15,2", info.ProductType)
		assert.Equal(t, "17.3.1", info.ProductVersion)
		assert.Equal(t, "D7A5EB27206B918EB006E38E4B84C87F", info.GUID)
		assert.Equal(t, "2026-01-21T11:38:37", info.BackupDateISO())
	}
}

func TestReadInfoMissingKey(t *testing.T) {
	fixture := infoFixture()
	delete(fixture, "GUID")
	path := writePlist(t, "Info.plist", fixture, plistlib.XMLFormat)

	_, err := ReadInfo(path)
	assert.ErrorIs(t, err, ErrKeyMissing)
	assert.Contains(t, err.Error(), "GUID")
}

func TestReadInfoMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Info.plist")
	require.NoError(t, os.WriteFile(path, []byte("not a plist at all"), 0644))

	_, err := ReadInfo(path)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestReadInfoMissingFile(t *testing.T) {
	_, err := ReadInfo(filepath.Join(t.TempDir(), "Info.plist"))
	assert.Error(t, err)
}

func TestReadManifest(t *testing.T) {
	tests := []struct {
		name      string
		encrypted bool
	}{
		{"unencrypted", false},
		{"encrypted", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePlist(t, "Manifest.plist", map[string]any{
				"IsEncrypted": tt.encrypted,
				"Version":     "10.0",
			}, plistlib.BinaryFormat)

			manifest, err := ReadManifest(path)
			require.NoError(t, err)
			assert.Equal(t, tt.encrypted, manifest.IsEncrypted)
		})
	}
}

func TestReadManifestMissingKey(t *testing.T) {
	path := writePlist(t, "Manifest.plist", map[string]any{
		"Version": "10.0",
	}, plistlib.XMLFormat)

	_, err := ReadManifest(path)
	assert.ErrorIs(t, err, ErrKeyMissing)
	assert.Contains(t, err.Error(), "IsEncrypted")
}
