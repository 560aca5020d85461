package project

import (
	"errors"
	"fmt"

	"github.com/tacticalyash/IDEStudio/internal/filesystem"
	"github.com/tacticalyash/IDEStudio/internal/kmx"
	"github.com/tacticalyash/IDEStudio/internal/models"
)

// ErrPersistenceIO is returned when the project file cannot be written.
var ErrPersistenceIO = errors.New("failed to save project file")

// ToTag projects the tree into a kmx tag tree:
// a "project" container with name, language and type properties holding
// "source", "header" and "other" containers of "file" leaves.
func ToTag(t *Tree) (*kmx.Tag, error) {
	details := t.Details()
	files := t.Files()

	root := kmx.NewTag("project")
	root.SetProperty("name", details.Name)
	root.SetProperty("language", details.Language.String())
	root.SetProperty("type", details.Kind.String())

	for _, c := range models.Categories() {
		container := kmx.NewTag(c.TagName())
		for _, name := range files.Of(c) {
			leaf := kmx.NewLeaf("file")
			leaf.SetProperty("name", name)
			if err := container.AddChild(leaf); err != nil {
				return nil, err
			}
		}
		if err := root.AddChild(container); err != nil {
			return nil, err
		}
	}

	return root, nil
}

// Marshal returns the persisted text of the tree.
func Marshal(t *Tree, indent int) ([]byte, error) {
	root, err := ToTag(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceIO, err)
	}
	data, err := kmx.Marshal(root, indent)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceIO, err)
	}
	return data, nil
}

// Save writes the tree to <path>/<name>.pro.
func Save(fs filesystem.FileSystem, t *Tree, indent int) (string, error) {
	path := t.Details().ProjectFilePath()

	data, err := Marshal(t, indent)
	if err != nil {
		return path, err
	}

	if err := filesystem.WriteFileAtomic(fs, path, data, 0644); err != nil {
		return path, fmt.Errorf("%w %s: %w", ErrPersistenceIO, path, err)
	}
	return path, nil
}
