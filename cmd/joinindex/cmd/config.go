package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/joinindex/configs"
	"github.com/Aman-CERP/joinindex/internal/config"
	"github.com/Aman-CERP/joinindex/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage the joinindex configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/joinindex/config.yaml)
  3. Project config (.joinindex.yaml)
  4. Environment variables (JOININDEX_*)`,
		Example: `  # Create user config from template
  joinindex config init

  # Show effective configuration (merged from all sources)
  joinindex config show

  # Print user config file path
  joinindex config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigRestoreCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force, project bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file from the template",
		Long: `Create the user configuration file, or with --project a .joinindex.yaml
in the project directory, from the commented template.

With --force an existing user config is backed up before it is replaced;
see 'joinindex config restore'.`,
		Example: `  joinindex config init
  joinindex config init --project
  joinindex config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force, project)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&project, "project", false, "Create .joinindex.yaml in the project directory")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long: `Show the configuration after merging all sources, or a single source
with --source (defaults, user, project).`,
		Example: `  joinindex config show
  joinindex config show --json
  joinindex config show --source user`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, project, defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func newConfigRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore [backup]",
		Short: "Restore the user config from a backup",
		Long:  `Restore the user config from the given backup file, or from the newest backup.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())
			backup := ""
			if len(args) == 1 {
				backup = args[0]
			} else {
				backups, err := config.ListUserConfigBackups()
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					return fmt.Errorf("no backups of %s found", config.GetUserConfigPath())
				}
				backup = backups[0]
			}
			if err := config.RestoreUserConfig(backup); err != nil {
				return err
			}
			out.Successf("Restored %s", config.GetUserConfigPath())
			out.Status("", "from "+backup)
			return nil
		},
	}
}

func runConfigInit(cmd *cobra.Command, force, project bool) error {
	out := output.New(cmd.OutOrStdout())

	path := config.GetUserConfigPath()
	if project {
		root, err := config.FindProjectRoot(projectDir)
		if err != nil {
			return err
		}
		path = filepath.Join(root, config.ProjectConfigName)
	}

	if _, err := os.Stat(path); err == nil {
		if !force {
			out.Warningf("Configuration already exists: %s", path)
			out.Status("", "Use --force to replace it")
			return nil
		}
		if !project {
			backup, err := config.BackupUserConfig()
			if err != nil {
				return fmt.Errorf("failed to backup config: %w", err)
			}
			out.Statusf("", "Backup: %s", backup)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configs.ConfigTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Successf("Created %s", path)
	out.Status("", "Edit it, then run 'joinindex config show' to verify")
	return nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool, source string) error {
	out := cmd.OutOrStdout()

	var cfg any
	switch source {
	case "merged":
		merged, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = merged
	case "defaults":
		cfg = config.NewConfig()
	case "user", "project":
		path := config.GetUserConfigPath()
		if source == "project" {
			root, err := config.FindProjectRoot(projectDir)
			if err != nil {
				return err
			}
			path = config.ProjectConfigPath(root)
		}
		if path == "" || !fileExists(path) {
			output.New(out).Warningf("No %s configuration file", source)
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		cfg = raw
	default:
		return fmt.Errorf("unknown source %q (want merged, user, project or defaults)", source)
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
