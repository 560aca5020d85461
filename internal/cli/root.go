package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tacticalyash/IDEStudio/internal/filesystem"
	"github.com/tacticalyash/IDEStudio/internal/process"
)

// NewRootCommand creates the root command
func NewRootCommand(fs filesystem.FileSystem, launcher process.Launcher) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "idestudio",
		Short: "Create and build C/C++ projects",
		Long: `A project workspace for C and C++.

Projects keep their files in Sources, Headers and Others, generate a CMake
build descriptor whenever the file set changes, and are saved as a .pro file.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String(logLevelFlag, "", "Log level: debug, info, warn, error (default from configuration)")
	rootCmd.PersistentFlags().String(logFormatFlag, "", "Log format: json or text (default from configuration)")

	// Add subcommands
	rootCmd.AddCommand(NewNewCommand(fs, launcher))
	rootCmd.AddCommand(NewTemplatesCommand(fs))
	rootCmd.AddCommand(NewConfigCommand(fs))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	fs := filesystem.NewOSFileSystem()
	launcher := process.NewOSLauncher()

	rootCmd := NewRootCommand(fs, launcher)

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}
