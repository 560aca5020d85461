package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
	"github.com/tacticalyash/IDEStudio/internal/filesystem"
	"github.com/tacticalyash/IDEStudio/internal/models"
	"github.com/tacticalyash/IDEStudio/internal/process"
	"github.com/tacticalyash/IDEStudio/internal/project"
	"github.com/tacticalyash/IDEStudio/internal/tui/create"
	"github.com/tacticalyash/IDEStudio/internal/workspace"
)

const testWorkspaceRoot = "/test-workspace"

func noEnv(string) string { return "" }

func buildFS(t *testing.T, setup func(*workspace.WorkspaceBuilder)) *filesystem.MockFileSystem {
	t.Helper()

	wb := workspace.NewWorkspaceBuilder(testWorkspaceRoot)
	if setup != nil {
		setup(wb)
	}
	return wb.Build()
}

func withDefaultTemplates(wb *workspace.WorkspaceBuilder) {
	wb.AddDefaultTemplates()
}

// succeeding finishes every process with exit code 0 and no output.
func succeeding() *process.MockLauncher {
	launcher := process.NewMockLauncher()
	launcher.AutoFinish = func(process.Command) ([]string, int) { return nil, 0 }
	return launcher
}

func newTestCommand(fs filesystem.FileSystem, launcher process.Launcher, out *bytes.Buffer) *NewCommand {
	return &NewCommand{
		fs:           fs,
		launcher:     launcher,
		getenv:       noEnv,
		interactive:  func() bool { return false },
		kind:         "console",
		stdoutWriter: out,
		stderrWriter: &bytes.Buffer{},
	}
}

func TestNew_CreatesProject(t *testing.T) {
	fs := buildFS(t, withDefaultTemplates)
	launcher := succeeding()

	var buf bytes.Buffer
	cmd := newTestCommand(fs, launcher, &buf)
	cmd.name = "demo"
	cmd.path = "demo"
	cmd.addMain = true
	cmd.sources = []string{"util.cpp"}
	cmd.headers = []string{"util.h"}
	cmd.others = []string{"notes.txt"}

	require.NoError(t, cmd.Run(nil, nil))

	require.Equal(t, "int main() { return 0; }\n", fs.Content("/test-workspace/demo/main.cpp"))
	require.Equal(t, "#ifndef UTIL_H\n#define UTIL_H\n#endif\n", fs.Content("/test-workspace/demo/util.h"))
	require.True(t, fs.Exists("/test-workspace/demo/notes.txt"))

	descriptor := fs.Content("/test-workspace/demo/CMakeLists.txt")
	require.Contains(t, descriptor, "\tmain.cpp\n\tutil.cpp\n")
	require.Contains(t, descriptor, "\tutil.h\n")
	require.Contains(t, descriptor, "\tnotes.txt\n")

	for _, c := range launcher.Commands() {
		require.Equal(t, "cmake", c.Program)
	}

	out := buf.String()
	require.Contains(t, out, "✓ configuring finished")
	require.Contains(t, out, "Project Created")
	require.Contains(t, out, "Saved /test-workspace/demo/demo.pro\n")
	require.Contains(t, out, "  Sources: main.cpp, util.cpp\n")

	snaps.MatchSnapshot(t, fs.Content("/test-workspace/demo/demo.pro"))
}

func TestNew_InfersCategories(t *testing.T) {
	fs := buildFS(t, withDefaultTemplates)

	var buf bytes.Buffer
	cmd := newTestCommand(fs, succeeding(), &buf)
	cmd.name = "lib"
	cmd.path = "/elsewhere/lib"
	cmd.lang = "C"
	cmd.kind = "static"
	cmd.files = []string{"b.c", "a.h", "README.md", "Makefile"}

	require.NoError(t, cmd.Run(nil, nil))

	require.Equal(t, `<project
  language = "C"
  name = "lib"
  type = "static library">
  <source>
    <file
      name = "b.c"/>
  </source>
  <header>
    <file
      name = "a.h"/>
  </header>
  <other>
    <file
      name = "Makefile"/>
    <file
      name = "README.md"/>
  </other>
</project>
`, fs.Content("/elsewhere/lib/lib.pro"))
	require.Equal(t, "#ifndef A_H\n#define A_H\n#endif\n", fs.Content("/elsewhere/lib/a.h"))
}

func TestNew_Build(t *testing.T) {
	fs := buildFS(t, withDefaultTemplates)
	launcher := process.NewMockLauncher()
	launcher.AutoFinish = func(cmd process.Command) ([]string, int) {
		if cmd.Program == "make" {
			return []string{"[100%] Built target demo"}, 0
		}
		return nil, 0
	}

	var buf bytes.Buffer
	cmd := newTestCommand(fs, launcher, &buf)
	cmd.name = "demo"
	cmd.path = "demo"
	cmd.addMain = true
	cmd.build = true

	require.NoError(t, cmd.Run(nil, nil))

	commands := launcher.Commands()
	require.Equal(t, process.Command{Program: "make", Dir: "/test-workspace/demo/build"}, commands[len(commands)-1])
	require.Contains(t, buf.String(), "[building] [100%] Built target demo\n")
	require.Contains(t, buf.String(), "✓ building finished")
}

func TestNew_BuildFailure(t *testing.T) {
	fs := buildFS(t, withDefaultTemplates)
	launcher := process.NewMockLauncher()
	launcher.AutoFinish = func(cmd process.Command) ([]string, int) {
		if cmd.Program == "make" {
			return []string{"main.cpp:1: error"}, 2
		}
		return nil, 0
	}

	var buf bytes.Buffer
	cmd := newTestCommand(fs, launcher, &buf)
	cmd.name = "demo"
	cmd.path = "demo"
	cmd.addMain = true
	cmd.build = true

	err := cmd.Run(nil, nil)
	require.Error(t, err)
	require.Equal(t, "building failed: process exited with code 2", err.Error())
	require.Contains(t, buf.String(), "✗ building failed")
	require.True(t, fs.Exists("/test-workspace/demo/demo.pro"))
}

func TestNew_Rebuild(t *testing.T) {
	fs := buildFS(t, withDefaultTemplates)
	launcher := succeeding()

	var buf bytes.Buffer
	cmd := newTestCommand(fs, launcher, &buf)
	cmd.name = "demo"
	cmd.path = "demo"
	cmd.sources = []string{"a.cpp"}
	cmd.rebuild = true

	require.NoError(t, cmd.Run(nil, nil))

	commands := launcher.Commands()
	require.GreaterOrEqual(t, len(commands), 3)
	require.Equal(t, []process.Command{
		{Program: "make", Args: []string{"clean"}, Dir: "/test-workspace/demo/build"},
		{Program: "make", Dir: "/test-workspace/demo/build"},
	}, commands[len(commands)-2:])
	require.Contains(t, buf.String(), "✓ cleaning finished")
	require.Contains(t, buf.String(), "✓ building finished")
}

func TestNew_CleanSpawnFailure(t *testing.T) {
	fs := buildFS(t, withDefaultTemplates)
	launcher := process.NewMockLauncher()
	launcher.LaunchError = errors.New("executable file not found")

	var buf bytes.Buffer
	cmd := newTestCommand(fs, launcher, &buf)
	cmd.name = "demo"
	cmd.path = "demo"
	cmd.clean = true

	err := cmd.Run(nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to spawn process")
	require.Contains(t, buf.String(), "✗ cleaning failed")
	require.True(t, fs.Exists("/test-workspace/demo/demo.pro"))
}

func TestNew_DuplicateFile(t *testing.T) {
	fs := buildFS(t, withDefaultTemplates)

	cmd := newTestCommand(fs, process.NewMockLauncher(), &bytes.Buffer{})
	cmd.name = "demo"
	cmd.path = "demo"
	cmd.sources = []string{"a.cpp"}
	cmd.files = []string{"a.cpp"}

	err := cmd.Run(nil, nil)
	require.ErrorIs(t, err, project.ErrFileAlreadyExists)
	require.Contains(t, fs.Content("/test-workspace/demo/demo.pro"), `name = "a.cpp"`)
}

func TestNew_MissingTemplate(t *testing.T) {
	fs := buildFS(t, nil)

	var buf bytes.Buffer
	cmd := newTestCommand(fs, succeeding(), &buf)
	cmd.name = "demo"
	cmd.path = "demo"
	cmd.addMain = true

	require.NoError(t, cmd.Run(nil, nil))
	require.True(t, fs.Exists("/test-workspace/demo/main.cpp"))
	require.Empty(t, fs.Content("/test-workspace/demo/main.cpp"))
	require.Contains(t, buf.String(), "warning: main.cpp: template load failed")
}

func TestNew_SaveFailure(t *testing.T) {
	fs := buildFS(t, withDefaultTemplates)
	fs.FailWrites("/test-workspace/demo/demo.pro", errors.New("disk full"))

	var buf bytes.Buffer
	cmd := newTestCommand(fs, succeeding(), &buf)
	cmd.name = "demo"
	cmd.path = "demo"

	err := cmd.Run(nil, nil)
	require.ErrorIs(t, err, project.ErrPersistenceIO)
	require.Contains(t, err.Error(), "failed to save project")
	require.Contains(t, buf.String(), "Project not saved")
}

func TestNew_RequiresNameWithoutTerminal(t *testing.T) {
	fs := buildFS(t, nil)

	cmd := newTestCommand(fs, process.NewMockLauncher(), &bytes.Buffer{})
	cmd.path = "demo"

	err := cmd.Run(nil, nil)
	require.ErrorContains(t, err, "--name and --path are required")
	require.False(t, fs.Exists("/test-workspace/demo"))
}

func TestNew_InvalidFlags(t *testing.T) {
	fs := buildFS(t, nil)

	cmd := newTestCommand(fs, process.NewMockLauncher(), &bytes.Buffer{})
	cmd.name = "demo"
	cmd.path = "demo"
	cmd.kind = "plugin"
	require.ErrorContains(t, cmd.Run(nil, nil), "invalid project kind")

	cmd.kind = "console"
	cmd.lang = "rust"
	require.Error(t, cmd.Run(nil, nil))
	require.False(t, fs.Exists("/test-workspace/demo"))
}

func TestNew_Prompt(t *testing.T) {
	fs := buildFS(t, withDefaultTemplates)

	var got create.Result
	var gotParent string
	var buf bytes.Buffer
	cmd := newTestCommand(fs, succeeding(), &buf)
	cmd.interactive = func() bool { return true }
	cmd.prompt = func(defaults create.Result, parent string) (*create.Result, error) {
		got, gotParent = defaults, parent
		return &create.Result{
			Name:     "tool",
			Path:     "/test-workspace/tool",
			Language: models.LanguageC,
			Kind:     models.KindSharedLibrary,
			AddMain:  true,
		}, nil
	}

	require.NoError(t, cmd.Run(nil, nil))

	require.Equal(t, create.Result{Language: models.LanguageCPP, Kind: models.KindConsole}, got)
	require.Equal(t, testWorkspaceRoot, gotParent)
	require.Equal(t, "int main(void) { return 0; }\n", fs.Content("/test-workspace/tool/main.c"))
	require.Contains(t, fs.Content("/test-workspace/tool/tool.pro"), `type = "dynamic library"`)
	require.Contains(t, fs.Content("/test-workspace/tool/CMakeLists.txt"), "add_library( ${PROJECT_NAME} SHARED")
}

func TestNew_PromptAborted(t *testing.T) {
	fs := buildFS(t, nil)

	var buf bytes.Buffer
	cmd := newTestCommand(fs, process.NewMockLauncher(), &buf)
	cmd.interactive = func() bool { return true }
	cmd.prompt = func(create.Result, string) (*create.Result, error) { return nil, nil }

	require.NoError(t, cmd.Run(nil, nil))
	require.Equal(t, "Aborted.\n", buf.String())
}

func TestRequestedFiles(t *testing.T) {
	cmd := &NewCommand{
		sources: []string{"a.cpp"},
		headers: []string{"a.h"},
		others:  []string{"x.cpp"},
		files:   []string{"b.hxx", "c.cxx", "d.c"},
	}

	require.Equal(t, []requestedFile{
		{models.CategorySources, "a.cpp", models.HintNone},
		{models.CategoryHeaders, "a.h", models.HintHeader},
		{models.CategoryOthers, "x.cpp", models.HintNone},
		{models.CategoryHeaders, "b.hxx", models.HintHeader},
		{models.CategorySources, "c.cxx", models.HintNone},
		{models.CategoryOthers, "d.c", models.HintNone},
	}, cmd.requestedFiles(models.LanguageCPP))
}
