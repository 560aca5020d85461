package create

import (
	"errors"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
	"github.com/tacticalyash/IDEStudio/internal/build"
	"github.com/tacticalyash/IDEStudio/internal/models"
	"github.com/tacticalyash/IDEStudio/internal/process"
	"github.com/tacticalyash/IDEStudio/internal/project"
)

func TestValidateName(t *testing.T) {
	require.NoError(t, ValidateName("demo"))
	require.Error(t, ValidateName("  "))
	require.Error(t, ValidateName("a/b"))
	require.Error(t, ValidateName(`a\b`))
	require.Error(t, ValidateName(`say "hi"`))
}

func TestValidatePath(t *testing.T) {
	require.NoError(t, ValidatePath("/work/demo"))
	require.Error(t, ValidatePath(""))
}

func TestResult_Details(t *testing.T) {
	details, err := Result{Name: " demo ", Path: "/work/demo/", Language: models.LanguageC, Kind: models.KindSharedLibrary}.Details()
	require.NoError(t, err)
	require.Equal(t, models.ProjectDetails{Name: "demo", Path: "/work/demo", Language: models.LanguageC, Kind: models.KindSharedLibrary}, details)

	_, err = Result{Name: "demo", Path: "/work/demo"}.Details()
	require.Error(t, err)
}

func TestRenderSummary(t *testing.T) {
	details := models.ProjectDetails{Name: "demo", Path: "/work/demo", Language: models.LanguageCPP, Kind: models.KindConsole}
	files := project.Files{Sources: []string{"a.cpp", "main.cpp"}, Headers: []string{"a.h"}}

	t.Run("saved", func(t *testing.T) {
		out := RenderSummary(Summary{
			Details:     details,
			Files:       files,
			ProjectFile: "/work/demo/demo.pro",
			Warnings:    []string{"notes.txt: template load failed"},
		})

		require.Contains(t, out, "Project Created")
		require.Contains(t, out, "Saved /work/demo/demo.pro\n")
		require.Contains(t, out, "  Sources: a.cpp, main.cpp\n")
		require.NotContains(t, out, "Others")
		snaps.MatchSnapshot(t, out)
	})

	t.Run("not saved", func(t *testing.T) {
		out := RenderSummary(Summary{Details: details, SaveErr: errors.New("disk full")})

		require.Contains(t, out, "Project not saved")
		require.Contains(t, out, "disk full\n")
		require.NotContains(t, out, "Saved")
	})
}

func TestRenderProcess(t *testing.T) {
	require.Contains(t, RenderOutput(build.Building, process.Stdout, "[100%] Built target demo"), "[building] [100%] Built target demo")
	require.Contains(t, RenderResult(build.Result{Phase: build.Configuring}), "configuring finished")
	require.Contains(t, RenderResult(build.Result{Phase: build.Building, ExitCode: 2, ErrorMessage: "process exited with code 2"}), "building failed: process exited with code 2")
}
