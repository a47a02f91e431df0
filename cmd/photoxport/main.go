package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/photoxport/photoxport/internal/backup"
	"github.com/photoxport/photoxport/internal/config"
	"github.com/photoxport/photoxport/internal/convert"
	"github.com/photoxport/photoxport/internal/extract"
	"github.com/photoxport/photoxport/internal/logger"
	"github.com/photoxport/photoxport/internal/policy"
	"github.com/photoxport/photoxport/internal/report"
	"github.com/photoxport/photoxport/internal/types"
	"github.com/photoxport/photoxport/internal/utils"
	"github.com/photoxport/photoxport/internal/version"
)

// smartFolderNames are the virtual collections selectable alongside user
// albums when building a whitelist
var smartFolderNames = []string{"Favorites", "Hidden", "Selfies", "Recently Deleted"}

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photoxport",
		Short: "Export the Photos library of an unencrypted iOS device backup",
		Long: `photoxport reads an unencrypted iOS device backup folder, reconstructs
the Photos-application library from its hashed file store, and writes the
albums and smart folders (Favorites, Hidden, Selfies, Recently Deleted)
as a folder hierarchy at a destination of your choosing.

Assets that belong to several collections can be stored once and linked
into each collection with symbolic links, and proprietary media formats
(HEIC/HEIF, MOV) can be transcoded on the way out.`,
		Version:      version.String(),
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(NewInfoCommand())
	cmd.AddCommand(NewAlbumsCommand())
	cmd.AddCommand(NewExtractCommand())

	return cmd
}

func newLogger(cmd *cobra.Command) *logger.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
	}
	return logger.New(logger.Config{Level: logger.LogLevel(utils.NormalizeString(level))})
}

func loadModel(backupPath string, log *logger.Logger) (*types.BackupModel, error) {
	result := backup.BuildModel(backupPath, log)
	if !result.Success {
		return nil, fmt.Errorf("error loading backup: %s", result.Error)
	}
	return result.BackupModel, nil
}

// NewInfoCommand creates the info command
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <backup-path>",
		Short: "Show device and backup metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)
			model, err := loadModel(args[0], log)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatDeviceMetadata(model))
			return nil
		},
	}
}

// formatDeviceMetadata renders the device summary shown by the info
// command. The raw model string "iPhone15,2" splits into model and
// submodel halves.
func formatDeviceMetadata(model *types.BackupModel) string {
	device := model.BackupMetadata.SourceDevice

	rawModel, subModel := device.Model, ""
	if i := strings.Index(device.Model, ","); i >= 0 {
		rawModel, subModel = device.Model[:i], device.Model[i+1:]
	}
	formattedModel := strings.ReplaceAll(rawModel, "e", "e ")

	backupDate := strings.ReplaceAll(model.BackupMetadata.BackupDate, "T", " at (24H Time): ")

	return fmt.Sprintf(
		"Device:\n"+
			"- Device Name: ............ %s\n"+
			"- Device Model: ........... %s\n"+
			"- Device Submodel: ........ %s\n"+
			"- iOS Version: ............ %s\n"+
			"Backup:\n"+
			"- Backup Encryption Status: %v\n"+
			"- Backup UUID/GUID: ....... %s\n"+
			"- Backup Date: ............ %s\n",
		device.Name,
		formattedModel,
		subModel,
		device.IOSVersion,
		model.BackupMetadata.IsEncrypted,
		model.BackupMetadata.BackupUUID,
		backupDate,
	)
}

// NewAlbumsCommand creates the albums command
func NewAlbumsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "albums <backup-path>",
		Short: "List the user albums in the backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)
			model, err := loadModel(args[0], log)
			if err != nil {
				return err
			}
			if len(model.Albums) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No user albums in this backup.")
				return nil
			}
			for _, album := range model.Albums {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d assets)\n", album.Title, album.AssetCount)
			}
			return nil
		},
	}
}

// NewExtractCommand creates the extract command
func NewExtractCommand() *cobra.Command {
	var (
		symlinks     bool
		convertRules []string
		excludes     []string
		includesOnly []string
		configPath   string
		reportPath   string
	)

	cmd := &cobra.Command{
		Use:   "extract <backup-path> <output-root>",
		Short: "Extract the backup's photo collections into a folder hierarchy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)
			backupPath, outputRoot := args[0], args[1]

			var settings *config.Settings
			if configPath != "" {
				var err error
				if settings, err = config.Load(configPath); err != nil {
					return err
				}
				if settings.LogLevel != "" && !cmd.Flags().Changed("log-level") {
					log = logger.New(logger.Config{Level: logger.LogLevel(utils.NormalizeString(settings.LogLevel))})
				}
			}

			model, err := loadModel(backupPath, log)
			if err != nil {
				return err
			}

			pol, err := buildPolicy(model, settings, excludes, includesOnly)
			if err != nil {
				return err
			}

			convertMap, err := buildConvertMap(settings, convertRules)
			if err != nil {
				return err
			}

			userSetSymlinks := symlinks
			if settings != nil && settings.Symlinks {
				userSetSymlinks = true
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			progress := extract.NewProgress(func(percent int) {
				log.Infof("extraction progress: %d%%", percent)
			})

			opts := extract.Options{
				OutputRoot:         outputRoot,
				OSSupportsSymlinks: extract.SymlinksSupported(),
				UserSetSymlinks:    userSetSymlinks,
				ConvertMap:         convertMap,
				Progress:           progress,
			}

			engine := extract.NewEngine(convert.NewEngine(log), log)
			summary, err := engine.Run(ctx, model, pol, opts)
			if err != nil {
				return fmt.Errorf("extraction failed: %w", err)
			}

			green := color.New(color.FgGreen)
			green.Fprintf(cmd.OutOrStdout(), "Extraction complete: %d assets, %d burst groups\n",
				summary.AssetUnits, summary.BurstUnits)
			fmt.Fprintf(cmd.OutOrStdout(), "  files placed: %d, folders placed: %d, symlinks: %d\n",
				summary.FilesPlaced, summary.FoldersPlaced, summary.SymlinksPlaced)
			if summary.Converted > 0 || summary.ConversionFailures > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "  converted: %d, conversion failures: %d\n",
					summary.Converted, summary.ConversionFailures)
			}

			if reportPath != "" {
				mode, list := pol.State()
				run := report.NewRun(model, backupPath, report.Invocation{
					OutputRoot:  outputRoot,
					UseSymlinks: opts.OSSupportsSymlinks && opts.UserSetSymlinks,
					ConvertMap:  convertMap,
					PolicyMode:  mode,
					PolicyList:  list,
				})
				run.Summary = summary
				if err := run.Save(reportPath); err != nil {
					return err
				}
				log.Infof("extraction report written to %s", reportPath)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&symlinks, "symlinks", false, "store shared assets once and link them into each collection")
	cmd.Flags().StringArrayVar(&convertRules, "convert", nil, "conversion rule FROM=TO (e.g. HEIC=PNG, MOV=MP4); repeatable")
	cmd.Flags().StringArrayVar(&excludes, "exclude", nil, "album or smart folder to skip; repeatable")
	cmd.Flags().StringArrayVar(&includesOnly, "include-only", nil, "restrict extraction to these albums/smart folders; repeatable")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a photoxport settings file")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a JSON report of the run to this path")
	cmd.MarkFlagsMutuallyExclusive("exclude", "include-only")

	return cmd
}

// buildPolicy assembles the blacklist/whitelist policy from the settings
// file and flags
func buildPolicy(model *types.BackupModel, settings *config.Settings, excludes, includesOnly []string) (*policy.Policy, error) {
	pol := policy.New()

	whitelist := len(includesOnly) > 0
	selections := includesOnly
	if settings != nil && len(selections) == 0 && len(excludes) == 0 {
		whitelist = settings.Whitelist
		selections = settings.Albums
		if !whitelist {
			excludes = settings.Albums
		}
	}

	if whitelist {
		var all []string
		for _, album := range model.Albums {
			all = append(all, album.Title)
		}
		all = append(all, smartFolderNames...)

		if msg := pol.ToggleMode(all); strings.HasPrefix(msg, "[!]") {
			return nil, fmt.Errorf("%s", strings.TrimPrefix(msg, "[!] Error: "))
		}
		for _, name := range selections {
			if ok, msg := pol.ToggleAlbum(name); !ok {
				return nil, fmt.Errorf("%s", msg)
			}
		}
		return pol, nil
	}

	for _, name := range excludes {
		if ok, msg := pol.ToggleAlbum(name); !ok {
			return nil, fmt.Errorf("%s", msg)
		}
	}
	return pol, nil
}

// buildConvertMap merges conversion rules from the settings file and the
// repeatable --convert flags
func buildConvertMap(settings *config.Settings, rules []string) (map[string]string, error) {
	merged := make(map[string]string)
	if settings != nil {
		for from, to := range settings.ConvertMap() {
			merged[from] = to
		}
	}

	for _, rule := range rules {
		from, to, ok := strings.Cut(rule, "=")
		if !ok {
			return nil, fmt.Errorf("invalid conversion rule %q (expected FROM=TO, e.g. HEIC=PNG)", rule)
		}
		merged[utils.NormalizeExtension(from)] = utils.NormalizeExtension(to)
	}

	if len(merged) == 0 {
		return nil, nil
	}
	return merged, nil
}
