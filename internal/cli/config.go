package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tacticalyash/IDEStudio/internal/filesystem"
)

// ConfigCommand handles the config command
type ConfigCommand struct {
	fs     filesystem.FileSystem
	getenv func(string) string

	stdoutWriter io.Writer
}

// NewConfigCommand creates a new config command
func NewConfigCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &ConfigCommand{fs: fs}

	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Long: `Print the configuration after merging the defaults, idestudio.toml,
.env and IDESTUDIO_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: cmd.Run,
	}
}

// Run executes the config command
func (c *ConfigCommand) Run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(c.fs, c.getenv)
	if err != nil {
		return err
	}

	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	_, err = stdout(cmd, c.stdoutWriter).Write(data)
	return err
}
