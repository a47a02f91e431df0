// Package report writes a JSON record of an extraction run for auditing.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/photoxport/photoxport/internal/extract"
	"github.com/photoxport/photoxport/internal/types"
	"github.com/photoxport/photoxport/internal/version"
)

// Run is the complete record of one extraction run
type Run struct {
	RunID       string     `json:"run_id"`
	CLIVersion  string     `json:"cli_version"`
	GeneratedAt time.Time  `json:"generated_at"`
	System      SystemInfo `json:"system"`
	Device      DeviceInfo `json:"device"`
	Invocation  Invocation `json:"invocation"`
	Counts      Counts     `json:"counts"`

	Summary *extract.Summary `json:"summary,omitempty"`
}

// SystemInfo captures the host the run executed on
type SystemInfo struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
}

// DeviceInfo captures the source device and backup
type DeviceInfo struct {
	DeviceName  string `json:"device_name"`
	DeviceModel string `json:"device_model"`
	IOSVersion  string `json:"ios_version"`
	BackupUUID  string `json:"backup_uuid"`
	BackupDate  string `json:"backup_date"`
}

// Invocation captures the options the run was started with
type Invocation struct {
	BackupPath  string            `json:"backup_path"`
	OutputRoot  string            `json:"output_root"`
	UseSymlinks bool              `json:"use_symlinks"`
	ConvertMap  map[string]string `json:"convert_map,omitempty"`
	PolicyMode  string            `json:"policy_mode"`
	PolicyList  string            `json:"policy_list"`
}

// Counts captures what the model contained
type Counts struct {
	Assets int `json:"assets"`
	Albums int `json:"albums"`
}

// NewRun builds the run record for a model and invocation
func NewRun(model *types.BackupModel, backupPath string, inv Invocation) *Run {
	inv.BackupPath = backupPath
	return &Run{
		RunID:       uuid.NewString(),
		CLIVersion:  version.String(),
		GeneratedAt: time.Now().UTC(),
		System: SystemInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
		Device: DeviceInfo{
			DeviceName:  model.BackupMetadata.SourceDevice.Name,
			DeviceModel: model.BackupMetadata.SourceDevice.Model,
			IOSVersion:  model.BackupMetadata.SourceDevice.IOSVersion,
			BackupUUID:  model.BackupMetadata.BackupUUID,
			BackupDate:  model.BackupMetadata.BackupDate,
		},
		Invocation: inv,
		Counts: Counts{
			Assets: len(model.Assets),
			Albums: len(model.Albums),
		},
	}
}

// Save writes the run record as indented JSON
func (r *Run) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Load reads a previously saved run record
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file %s: %w", path, err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &run, nil
}
