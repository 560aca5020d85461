package build

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/tacticalyash/IDEStudio/internal/models"
	"github.com/tacticalyash/IDEStudio/internal/project"
)

// DescriptorFile is the build descriptor written to the project root.
const DescriptorFile = "CMakeLists.txt"

const cmakeTemplate = `cmake_minimum_required(VERSION 3.10)
project( {{ .Name }} LANGUAGES {{ .Language }})
add_compile_options(-Wall -Wextra -Wpedantic)
set(
	KM_SOURCES #source files{{ range .Sources }}
	{{ . }}{{ end }}
)
set(
	KM_HEADERS #header files{{ range .Headers }}
	{{ . }}{{ end }}
)
set(
	KM_OTHERS #other files{{ range .Others }}
	{{ . }}{{ end }}
)
{{ .Target }}
	${KM_SOURCES} #include source files
	${KM_HEADERS} #include header files
)
`

var descriptorTmpl = template.Must(template.New("descriptor").Parse(cmakeTemplate))

type descriptorData struct {
	Name     string
	Language string
	Target   string
	Sources  []string
	Headers  []string
	Others   []string
}

func targetLine(kind models.ProjectKind) string {
	switch kind {
	case models.KindStaticLibrary:
		return "add_library( ${PROJECT_NAME} STATIC #static library"
	case models.KindSharedLibrary:
		return "add_library( ${PROJECT_NAME} SHARED #shared library"
	default:
		return "add_executable( ${PROJECT_NAME} #binary"
	}
}

// GenerateDescriptor renders the CMake input for a project. The output only
// depends on its arguments; every file of every category is listed in
// stored order.
func GenerateDescriptor(details models.ProjectDetails, files project.Files) (string, error) {
	data := descriptorData{
		Name:     details.Name,
		Language: details.Language.CMakeName(),
		Target:   targetLine(details.Kind),
		Sources:  files.Sources,
		Headers:  files.Headers,
		Others:   files.Others,
	}

	var buf bytes.Buffer
	if err := descriptorTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render build descriptor: %w", err)
	}
	return buf.String(), nil
}
