package workspace

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tacticalyash/IDEStudio/internal/build"
	"github.com/tacticalyash/IDEStudio/internal/config"
	"github.com/tacticalyash/IDEStudio/internal/filesystem"
	"github.com/tacticalyash/IDEStudio/internal/logging"
	"github.com/tacticalyash/IDEStudio/internal/models"
	"github.com/tacticalyash/IDEStudio/internal/process"
	"github.com/tacticalyash/IDEStudio/internal/project"
)

func openTestWorkspace(t *testing.T, lang models.Language, options ...Option) (*Workspace, *filesystem.MockFileSystem, *process.MockLauncher) {
	t.Helper()

	wb := NewWorkspaceBuilder("/ws").AddDefaultTemplates()
	fs := wb.Build()
	launcher := process.NewMockLauncher()

	details, err := models.NewProjectDetails("demo", wb.ProjectPath("demo"), lang, models.KindConsole)
	require.NoError(t, err)

	options = append([]Option{WithConfig(wb.Config()), WithLauncher(launcher)}, options...)
	ws, err := Open(details, fs, options...)
	require.NoError(t, err)
	return ws, fs, launcher
}

func TestOpen_WritesDescriptorWithoutConfiguring(t *testing.T) {
	ws, fs, launcher := openTestWorkspace(t, models.LanguageCPP)

	require.True(t, fs.Exists("/ws/demo"))
	require.Equal(t, 1, fs.WriteCount("/ws/demo/CMakeLists.txt"))
	require.Contains(t, fs.Content("/ws/demo/CMakeLists.txt"), "project( demo LANGUAGES CXX)")
	require.Empty(t, launcher.Runs())
	require.Equal(t, build.Idle, ws.Orchestrator.State())
	require.Equal(t, "/ws/demo/demo.pro", ws.ProjectFilePath())
}

func TestOpen_InvalidDetails(t *testing.T) {
	fs := NewWorkspaceBuilder("/ws").Build()

	_, err := Open(models.ProjectDetails{Name: "", Path: "/ws/x", Language: models.LanguageC, Kind: models.KindConsole}, fs)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid project")
	require.False(t, fs.Exists("/ws/x"))
}

func TestOpen_DirectoryFailure(t *testing.T) {
	fs := NewWorkspaceBuilder("/ws").Build()
	fs.FailWrites("/ws/demo", errors.New("read-only"))

	details, err := models.NewProjectDetails("demo", "/ws/demo", models.LanguageC, models.KindConsole)
	require.NoError(t, err)

	_, err = Open(details, fs)
	require.ErrorContains(t, err, "failed to create project directory")
}

func TestAddMainFile(t *testing.T) {
	tests := []struct {
		lang    models.Language
		name    string
		content string
	}{
		{models.LanguageCPP, "main.cpp", "int main() { return 0; }\n"},
		{models.LanguageC, "main.c", "int main(void) { return 0; }\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, fs, launcher := openTestWorkspace(t, tt.lang)

			created, err := ws.AddMainFile()
			require.NoError(t, err)
			require.Equal(t, models.CategorySources, created.Category)
			require.Equal(t, tt.name, created.Name)
			require.Equal(t, tt.content, fs.Content("/ws/demo/"+tt.name))

			require.Equal(t, build.Configuring, ws.Orchestrator.State())
			require.Len(t, launcher.Runs(), 1)
			require.Equal(t, "cmake", launcher.Last().Command().Program)

			launcher.Last().Finish(0)
			require.NoError(t, ws.WaitIdle(context.Background()))
			require.Contains(t, fs.Content("/ws/demo/CMakeLists.txt"), "\t"+tt.name+"\n")
		})
	}
}

func TestWorkspace_Lifecycle(t *testing.T) {
	var results []build.Result
	listener := &resultListener{onFinish: func(r build.Result) { results = append(results, r) }}
	ws, fs, launcher := openTestWorkspace(t, models.LanguageCPP, WithListener(listener))

	_, err := ws.AddMainFile()
	require.NoError(t, err)
	launcher.Last().Finish(0)

	created, err := ws.AddFile(models.CategoryHeaders, "util.h", models.HintHeader, "")
	require.NoError(t, err)
	require.Equal(t, "#ifndef UTIL_H\n#define UTIL_H\n#endif\n", created.Content)
	launcher.Last().Finish(0)

	require.NoError(t, ws.Build())
	require.Equal(t, build.Building, ws.Orchestrator.State())
	require.ErrorIs(t, ws.Clean(), build.ErrProcessAlreadyRunning)
	launcher.Last().Emit(process.Stdout, "[100%] Built target demo")
	launcher.Last().Finish(0)

	require.NoError(t, ws.WaitIdle(context.Background()))
	require.Len(t, results, 3)
	require.Equal(t, build.Building, results[2].Phase)
	require.True(t, results[2].Success())
	require.Equal(t, []string{"[100%] Built target demo"}, listener.lines)

	require.NoError(t, ws.Close())
	require.Equal(t, `<project
  language = "C++"
  name = "demo"
  type = "console">
  <source>
    <file
      name = "main.cpp"/>
  </source>
  <header>
    <file
      name = "util.h"/>
  </header>
  <other>
  </other>
</project>
`, fs.Content("/ws/demo/demo.pro"))
}

func TestWorkspace_UntrackedFile(t *testing.T) {
	wb := NewWorkspaceBuilder("/ws").
		AddDefaultTemplates().
		AddProjectFile("demo", "notes.txt", "left over")
	fs := wb.Build()

	details, err := models.NewProjectDetails("demo", wb.ProjectPath("demo"), models.LanguageC, models.KindConsole)
	require.NoError(t, err)
	ws, err := Open(details, fs, WithConfig(wb.Config()), WithLauncher(process.NewMockLauncher()))
	require.NoError(t, err)

	_, err = ws.FileContents("notes.txt")
	require.ErrorIs(t, err, project.ErrFileNotFound)

	// Adding it to the tree replaces the stray content
	_, err = ws.AddFile(models.CategoryOthers, "notes.txt", models.HintNone, "")
	require.NoError(t, err)
	content, err := ws.FileContents("notes.txt")
	require.NoError(t, err)
	require.Empty(t, content)

	require.NoError(t, ws.Close())
	for _, p := range fs.Paths() {
		require.NotContains(t, p, ".tmp")
	}
}

func TestWorkspace_RebuildAndRegenerate(t *testing.T) {
	ws, _, launcher := openTestWorkspace(t, models.LanguageC)

	require.NoError(t, ws.Regenerate())
	launcher.Last().Finish(0)

	require.NoError(t, ws.Rebuild())
	require.Equal(t, build.Cleaning, ws.Orchestrator.State())
	launcher.Last().Finish(0)
	require.Equal(t, build.Building, ws.Orchestrator.State())
	launcher.Last().Finish(0)

	commands := launcher.Commands()
	require.Len(t, commands, 3)
	require.Equal(t, []string{"clean"}, commands[1].Args)
	require.Empty(t, commands[2].Args)
	require.Equal(t, build.Idle, ws.Orchestrator.State())
}

func TestWorkspace_Close(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		ws, fs, _ := openTestWorkspace(t, models.LanguageCPP)

		require.NoError(t, ws.Close())
		require.NoError(t, ws.Close())
		require.Equal(t, 1, fs.WriteCount("/ws/demo/demo.pro"))
	})

	t.Run("rejects operations afterwards", func(t *testing.T) {
		ws, _, launcher := openTestWorkspace(t, models.LanguageCPP)
		require.NoError(t, ws.Close())

		_, err := ws.AddMainFile()
		require.ErrorIs(t, err, ErrClosed)
		require.ErrorIs(t, ws.Build(), ErrClosed)
		require.ErrorIs(t, ws.Clean(), ErrClosed)
		require.ErrorIs(t, ws.Rebuild(), ErrClosed)
		require.ErrorIs(t, ws.Regenerate(), ErrClosed)
		require.Empty(t, launcher.Runs())
	})

	t.Run("write failure", func(t *testing.T) {
		var logs bytes.Buffer
		lg := logging.NewLogger(logging.Options{Writer: &logs})
		ws, fs, _ := openTestWorkspace(t, models.LanguageCPP, WithLogger(lg))
		fs.FailWrites("/ws/demo/demo.pro", errors.New("disk full"))

		err := ws.Close()
		require.ErrorIs(t, err, project.ErrPersistenceIO)
		require.Contains(t, logs.String(), `"msg":"project file not saved"`)
		require.False(t, fs.Exists("/ws/demo/demo.pro"))
	})

	t.Run("uses configured indent", func(t *testing.T) {
		wb := NewWorkspaceBuilder("/ws").AddDefaultTemplates()
		cfg := wb.Config()
		cfg.Project.Indent = 4
		fs := wb.Build()

		details, err := models.NewProjectDetails("lib", "/ws/lib", models.LanguageC, models.KindStaticLibrary)
		require.NoError(t, err)
		ws, err := Open(details, fs, WithConfig(cfg), WithLauncher(process.NewMockLauncher()))
		require.NoError(t, err)
		require.NoError(t, ws.Close())

		require.Contains(t, fs.Content("/ws/lib/lib.pro"), "\n    language = \"C\"\n")
	})
}

func TestWorkspace_ConfigFromFile(t *testing.T) {
	wb := NewWorkspaceBuilder("/ws").
		AddDefaultTemplates().
		AddConfig(".", "[toolchain]\nbuild = \"ninja\"\nbuild_dir = \"out\"\n")
	fs := wb.Build()
	fs.AddDir("/ws/nested/deeper")

	dir := ConfigDir(fs, "/ws/nested/deeper")
	require.Equal(t, "/ws", dir)

	cfg, err := config.NewLoader(fs).WithEnv(func(string) string { return "" }).Load(dir)
	require.NoError(t, err)
	cfg.Project.Templates = wb.TemplatesDir()

	launcher := process.NewMockLauncher()
	details, err := models.NewProjectDetails("demo", "/ws/demo", models.LanguageCPP, models.KindConsole)
	require.NoError(t, err)
	ws, err := Open(details, fs, WithConfig(cfg), WithLauncher(launcher))
	require.NoError(t, err)

	require.NoError(t, ws.Build())
	require.Equal(t, process.Command{Program: "ninja", Dir: "/ws/demo/out"}, launcher.Last().Command())
}

func TestConfigDir_NoConfig(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/a/b")

	require.Equal(t, "/a/b", ConfigDir(fs, "/a/b/"))
}

type resultListener struct {
	lines    []string
	onFinish func(build.Result)
}

func (l *resultListener) ProcessOutput(_ build.State, _ process.Stream, text string) {
	l.lines = append(l.lines, text)
}

func (l *resultListener) ProcessFinished(r build.Result) {
	l.onFinish(r)
}
