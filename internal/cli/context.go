package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tacticalyash/IDEStudio/internal/config"
	"github.com/tacticalyash/IDEStudio/internal/filesystem"
	"github.com/tacticalyash/IDEStudio/internal/logging"
	"github.com/tacticalyash/IDEStudio/internal/workspace"
)

const (
	logLevelFlag  = "log-level"
	logFormatFlag = "log-format"
)

// loadConfig reads the configuration that applies to the current directory.
// A relative templates directory is resolved against the directory holding
// idestudio.toml, or the current directory when there is none.
func loadConfig(fs filesystem.FileSystem, getenv func(string) string) (config.Config, error) {
	cwd, err := fs.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get working directory: %w", err)
	}

	dir := workspace.ConfigDir(fs, cwd)
	loader := config.NewLoader(fs)
	if getenv != nil {
		loader = loader.WithEnv(getenv)
	}

	cfg, err := loader.Load(dir)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	if !filepath.IsAbs(cfg.Project.Templates) {
		cfg.Project.Templates = filepath.Join(dir, cfg.Project.Templates)
	}
	return cfg, nil
}

// absPath resolves p against the working directory of fs.
func absPath(fs filesystem.FileSystem, p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	cwd, err := fs.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(cwd, p), nil
}

// loggerFromCmd builds the logger for a command. The --log-level and
// --log-format flags override the configuration.
func loggerFromCmd(cmd *cobra.Command, cfg config.Config, w io.Writer) *slog.Logger {
	level := cfg.Log.Level
	format := cfg.Log.Format
	if v := flagValue(cmd, logLevelFlag); v != "" {
		level = v
	}
	if v := flagValue(cmd, logFormatFlag); v != "" {
		format = v
	}

	return logging.NewLogger(logging.Options{
		Level:     level,
		Format:    format,
		Writer:    w,
		Component: "cli",
	})
}

func flagValue(cmd *cobra.Command, name string) string {
	if cmd == nil {
		return ""
	}
	flag := cmd.Flag(name)
	if flag == nil {
		return ""
	}
	return flag.Value.String()
}

func stdout(cmd *cobra.Command, override io.Writer) io.Writer {
	if override != nil {
		return override
	}
	if cmd != nil {
		return cmd.OutOrStdout()
	}
	return os.Stdout
}

func stderr(cmd *cobra.Command, override io.Writer) io.Writer {
	if override != nil {
		return override
	}
	if cmd != nil {
		return cmd.ErrOrStderr()
	}
	return os.Stderr
}

// stdinIsTerminal reports whether forms can be shown.
func stdinIsTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
