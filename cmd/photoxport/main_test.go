package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photoxport/photoxport/internal/types"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "photoxport", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.True(t, cmd.HasSubCommands())
}

func TestSubcommandsRegistered(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "info")
	assert.Contains(t, names, "albums")
	assert.Contains(t, names, "extract")
}

func TestFormatDeviceMetadata(t *testing.T) {
	model := &types.BackupModel{
		BackupMetadata: types.BackupMetadata{
			BackupUUID:  "D7A5EB27206B918EB006E38E4B84C87F",
			BackupDate:  "2026-01-21T11:38:37",
			IsEncrypted: false,
			SourceDevice: types.SourceDevice{
				Name:       "Test iPhone",
				Model:      "iPhone15,2",
				IOSVersion: "17.3.1",
			},
		},
	}

	out := formatDeviceMetadata(model)
	assert.Contains(t, out, "Device Name: ............ Test iPhone")
	assert.Contains(t, out, "Device Model: ........... iPhone 15")
	assert.Contains(t, out, "Device Submodel: ........ 2")
	assert.Contains(t, out, "iOS Version: ............ 17.3.1")
	assert.Contains(t, out, "Backup Date: ............ 2026-01-21 at (24H Time): 11:38:37")
}

func TestBuildConvertMap(t *testing.T) {
	rules, err := buildConvertMap(nil, []string{"heic=png", "MOV=MP4"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"HEIC": "PNG", "MOV": "MP4"}, rules)
}

func TestBuildConvertMapInvalidRule(t *testing.T) {
	_, err := buildConvertMap(nil, []string{"heic-png"})
	assert.Error(t, err)
}

func TestBuildConvertMapEmpty(t *testing.T) {
	rules, err := buildConvertMap(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, rules)
}

func TestBuildPolicyExcludes(t *testing.T) {
	model := &types.BackupModel{
		Albums: []types.Album{{AlbumUUID: "a1", Title: "One", Type: types.AlbumTypeUser}},
	}

	pol, err := buildPolicy(model, nil, []string{"One"}, nil)
	require.NoError(t, err)
	assert.True(t, pol.IsBlacklist())
	assert.False(t, pol.IsAlbumAllowed("One"))
	assert.True(t, pol.IsAlbumAllowed("Two"))
}

func TestBuildPolicyIncludeOnly(t *testing.T) {
	model := &types.BackupModel{
		Albums: []types.Album{
			{AlbumUUID: "a1", Title: "One", Type: types.AlbumTypeUser},
			{AlbumUUID: "a2", Title: "Two", Type: types.AlbumTypeUser},
		},
	}

	pol, err := buildPolicy(model, nil, nil, []string{"One"})
	require.NoError(t, err)
	assert.False(t, pol.IsBlacklist())
	assert.True(t, pol.IsAlbumAllowed("One"))
	assert.False(t, pol.IsAlbumAllowed("Two"))
}
