package project

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tacticalyash/IDEStudio/internal/filesystem"
	"github.com/tacticalyash/IDEStudio/internal/logging"
	"github.com/tacticalyash/IDEStudio/internal/models"
	"github.com/tacticalyash/IDEStudio/internal/templates"
)

var (
	// ErrFileAlreadyExists is returned when a category already holds a file
	// with the same name. The tree is left unchanged.
	ErrFileAlreadyExists = errors.New("file already exists")

	// ErrFileWriteFailed is returned when the new file could not be written.
	// No node is added.
	ErrFileWriteFailed = templates.ErrWriteFailed

	// ErrTemplateLoadFailed is reported on a successful AddFile when the
	// file was created empty because its template could not be loaded.
	ErrTemplateLoadFailed = templates.ErrLoadFailed

	// ErrFileNotFound is returned for file names the tree does not track.
	ErrFileNotFound = errors.New("file not found in project")

	// ErrInvalidFileName is returned for empty names, names containing a
	// path separator, and names the project file cannot store.
	ErrInvalidFileName = errors.New("invalid file name")
)

// FileCreator materializes a new file in the project directory and returns
// the content written. Errors wrapping ErrTemplateLoadFailed mean the file
// exists with empty content; any other error means no file was created.
type FileCreator interface {
	Create(fileName string, hint models.TemplateHint, prefix string) (string, error)
}

// Listener is notified after every successful AddFile.
type Listener interface {
	TreeChanged()
}

// Created describes a file added to the tree.
type Created struct {
	Category models.Category
	Name     string
	Index    int
	Path     string
	Content  string

	// TemplateErr is set when the file was created empty because its
	// template could not be loaded.
	TemplateErr error
}

// Location is the position of a file node within its category.
type Location struct {
	Category models.Category
	Index    int
}

// Files is a snapshot of the three category lists in stored order.
type Files struct {
	Sources []string
	Headers []string
	Others  []string
}

// Of returns the list for a category.
func (f Files) Of(c models.Category) []string {
	switch c {
	case models.CategorySources:
		return f.Sources
	case models.CategoryHeaders:
		return f.Headers
	default:
		return f.Others
	}
}

// Len returns the total number of files
func (f Files) Len() int {
	return len(f.Sources) + len(f.Headers) + len(f.Others)
}

// Tree is the live model of a project's files: a root node owning the
// Sources, Headers and Others categories, each holding its files sorted by
// name without duplicates.
type Tree struct {
	mu         sync.RWMutex
	details    models.ProjectDetails
	fs         filesystem.FileSystem
	creator    FileCreator
	root       *Item
	categories [3]*Item
	listeners  []Listener
	logger     *slog.Logger
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithLogger sets the logger used for file events.
func WithLogger(lg *slog.Logger) TreeOption {
	return func(t *Tree) {
		t.logger = lg
	}
}

// WithListener registers a listener at construction time.
func WithListener(l Listener) TreeOption {
	return func(t *Tree) {
		t.listeners = append(t.listeners, l)
	}
}

// NewTree creates a project tree with its three empty categories.
func NewTree(details models.ProjectDetails, fs filesystem.FileSystem, creator FileCreator, options ...TreeOption) *Tree {
	t := &Tree{
		details: details,
		fs:      fs,
		creator: creator,
	}

	t.root = newItem(details.Name, models.ItemProjectRoot, nil)
	for _, c := range models.Categories() {
		node := newItem(c.String(), c.ItemKind(), t.root)
		t.root.children = append(t.root.children, node)
		t.categories[c] = node
	}

	for _, option := range options {
		option(t)
	}
	t.logger = logging.OrDiscard(t.logger)

	return t
}

// Details returns the project details
func (t *Tree) Details() models.ProjectDetails {
	return t.details
}

// Subscribe registers a listener notified after every successful AddFile.
func (t *Tree) Subscribe(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

// Root returns the project root node. Nodes must not be read while another
// goroutine adds files; use Files or ChildrenOf for concurrent access.
func (t *Tree) Root() *Item {
	return t.root
}

// AddFile creates name on disk and inserts it into category c at its sorted
// position.
//
// The hint is reduced to one the category accepts; prefixed header hints
// default the prefix to the project name. A duplicate name returns
// ErrFileAlreadyExists and a failed write returns an error wrapping
// ErrFileWriteFailed; neither changes the tree. A template that cannot be
// loaded still adds the file, reporting the problem in Created.TemplateErr.
func (t *Tree) AddFile(c models.Category, name string, hint models.TemplateHint, prefix string) (*Created, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("invalid category: %d", int(c))
	}
	if !models.ValidFileName(name) {
		return nil, fmt.Errorf("%q: %w", name, ErrInvalidFileName)
	}

	hint = c.NormalizeHint(hint)
	if hint.Prefixed() && prefix == "" {
		prefix = t.details.Name
	}

	created, err := t.insert(c, name, hint, prefix)
	if err != nil {
		t.logger.Warn("file rejected", "category", c.String(), "file", name, "error", err)
		return nil, err
	}

	if created.TemplateErr != nil {
		t.logger.Warn("file created without template", "category", c.String(), "file", name, "error", created.TemplateErr)
	} else {
		t.logger.Info("file created", "category", c.String(), "file", name, "index", created.Index)
	}

	t.notify()
	return created, nil
}

func (t *Tree) insert(c models.Category, name string, hint models.TemplateHint, prefix string) (*Created, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	category := t.categories[c]
	index := sort.Search(len(category.children), func(i int) bool {
		return category.children[i].label >= name
	})
	if index < len(category.children) && category.children[index].label == name {
		return nil, fmt.Errorf("%s in %s: %w", name, c.String(), ErrFileAlreadyExists)
	}

	content, err := t.creator.Create(name, hint, prefix)
	var templateErr error
	if err != nil {
		if !errors.Is(err, ErrTemplateLoadFailed) {
			if !errors.Is(err, ErrFileWriteFailed) {
				err = fmt.Errorf("%w: %w", ErrFileWriteFailed, err)
			}
			return nil, err
		}
		templateErr = err
		content = ""
	}

	category.insertAt(index, newItem(name, c.FileKind(), category))

	return &Created{
		Category:    c,
		Name:        name,
		Index:       index,
		Path:        t.filePath(name),
		Content:     content,
		TemplateErr: templateErr,
	}, nil
}

func (t *Tree) notify() {
	t.mu.RLock()
	listeners := append([]Listener(nil), t.listeners...)
	t.mu.RUnlock()

	for _, l := range listeners {
		l.TreeChanged()
	}
}

// ChildrenOf returns the file names of a category in stored order.
func (t *Tree) ChildrenOf(c models.Category) []string {
	if !c.IsValid() {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.categories[c].labels()
}

// Files returns a consistent snapshot of all three categories.
func (t *Tree) Files() Files {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return Files{
		Sources: t.categories[models.CategorySources].labels(),
		Headers: t.categories[models.CategoryHeaders].labels(),
		Others:  t.categories[models.CategoryOthers].labels(),
	}
}

// IndexForFile finds a file by name, searching Sources, Headers and Others
// in that order.
func (t *Tree) IndexForFile(name string) (Location, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, c := range models.Categories() {
		for i, item := range t.categories[c].children {
			if item.label == name {
				return Location{Category: c, Index: i}, true
			}
		}
	}
	return Location{}, false
}

// FilePath returns <project path>/<name> for a tracked file.
func (t *Tree) FilePath(name string) (string, bool) {
	if _, ok := t.IndexForFile(name); !ok {
		return "", false
	}
	return t.filePath(name), true
}

func (t *Tree) filePath(name string) string {
	return filepath.Join(t.details.Path, name)
}

// FileContents reads a tracked file from disk.
func (t *Tree) FileContents(name string) (string, error) {
	path, ok := t.FilePath(name)
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrFileNotFound)
	}

	data, err := t.fs.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
