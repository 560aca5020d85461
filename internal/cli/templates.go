package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tacticalyash/IDEStudio/internal/filesystem"
	"github.com/tacticalyash/IDEStudio/internal/templates"
	"github.com/tacticalyash/IDEStudio/internal/tui"
)

// TemplatesCommand handles the templates command
type TemplatesCommand struct {
	fs     filesystem.FileSystem
	getenv func(string) string
	dir    string

	stdoutWriter io.Writer
}

// NewTemplatesCommand creates a new templates command
func NewTemplatesCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &TemplatesCommand{fs: fs}

	cobraCmd := &cobra.Command{
		Use:   "templates",
		Short: "List the file templates",
		Long: `List the <name>.txt template files used to pre-fill new files, with the
description from their front matter.`,
		Args: cobra.NoArgs,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.dir, "dir", "", "Templates directory (default from configuration)")

	return cobraCmd
}

// Run executes the templates command
func (c *TemplatesCommand) Run(cmd *cobra.Command, args []string) error {
	out := stdout(cmd, c.stdoutWriter)

	dir := c.dir
	if dir == "" {
		cfg, err := loadConfig(c.fs, c.getenv)
		if err != nil {
			return err
		}
		dir = cfg.Project.Templates
	} else {
		abs, err := absPath(c.fs, dir)
		if err != nil {
			return err
		}
		dir = abs
	}

	list, err := templates.NewLoader(c.fs, dir).List()
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	if len(list) == 0 {
		_, _ = fmt.Fprintf(out, "No templates found in %s\n", dir)
		return nil
	}

	_, _ = fmt.Fprintln(out, tui.HeaderStyle.Render("Templates in "+dir))
	for _, t := range list {
		line := "  " + t.Name
		if t.Meta.Description != "" {
			line += "  " + tui.DescStyle.Render(t.Meta.Description)
		}
		if !t.SubstitutesGuard() {
			line += "  " + tui.SubtleStyle.Render("(no guard)")
		}
		_, _ = fmt.Fprintln(out, line)
	}

	return nil
}
