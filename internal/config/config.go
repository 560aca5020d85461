package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/tacticalyash/IDEStudio/internal/build"
	"github.com/tacticalyash/IDEStudio/internal/filesystem"
	"github.com/tacticalyash/IDEStudio/internal/kmx"
	"github.com/tacticalyash/IDEStudio/internal/models"
)

const (
	// FileName is the optional TOML configuration file.
	FileName = "idestudio.toml"

	// EnvFileName is the optional dotenv file read next to it.
	EnvFileName = ".env"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "IDESTUDIO_"
)

type ToolchainConfig struct {
	Configure     string   `toml:"configure"`
	ConfigureArgs []string `toml:"configure_args,omitempty"`
	Build         string   `toml:"build"`
	BuildArgs     []string `toml:"build_args,omitempty"`
	CleanArgs     []string `toml:"clean_args"`
	BuildDir      string   `toml:"build_dir"`
}

type ProjectConfig struct {
	Indent    int    `toml:"indent"`
	Language  string `toml:"language"`
	Templates string `toml:"templates"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config holds toolchain, project and logging settings.
type Config struct {
	Toolchain ToolchainConfig `toml:"toolchain"`
	Project   ProjectConfig   `toml:"project"`
	Log       LogConfig       `toml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Normalize(Config{})
}

// Normalize trims values and replaces missing or invalid ones with defaults.
func Normalize(cfg Config) Config {
	tc := &cfg.Toolchain
	tc.Configure = firstNonEmpty(strings.TrimSpace(tc.Configure), "cmake")
	tc.Build = firstNonEmpty(strings.TrimSpace(tc.Build), "make")
	tc.BuildDir = firstNonEmpty(strings.TrimSpace(tc.BuildDir), "build")
	if len(tc.ConfigureArgs) == 0 {
		tc.ConfigureArgs = []string{"-S", ".", "-B", tc.BuildDir}
	}
	if len(tc.CleanArgs) == 0 {
		tc.CleanArgs = []string{"clean"}
	}

	if cfg.Project.Indent <= 0 {
		cfg.Project.Indent = kmx.DefaultIndent
	}
	lang, err := models.ParseLanguage(cfg.Project.Language)
	if err != nil {
		lang = models.LanguageCPP
	}
	cfg.Project.Language = lang.String()
	cfg.Project.Templates = firstNonEmpty(strings.TrimSpace(cfg.Project.Templates), "templates")

	cfg.Log.Level = firstNonEmpty(strings.ToLower(strings.TrimSpace(cfg.Log.Level)), "info")
	switch strings.ToLower(strings.TrimSpace(cfg.Log.Format)) {
	case "text":
		cfg.Log.Format = "text"
	default:
		cfg.Log.Format = "json"
	}

	return cfg
}

// BuildToolchain converts the toolchain section for the orchestrator.
func (c Config) BuildToolchain() build.Toolchain {
	return build.Toolchain{
		ConfigureProgram: c.Toolchain.Configure,
		ConfigureArgs:    append([]string(nil), c.Toolchain.ConfigureArgs...),
		BuildProgram:     c.Toolchain.Build,
		BuildArgs:        append([]string(nil), c.Toolchain.BuildArgs...),
		CleanArgs:        append([]string(nil), c.Toolchain.CleanArgs...),
		BuildDir:         c.Toolchain.BuildDir,
	}
}

// Language returns the default language for new projects
func (c Config) Language() models.Language {
	lang, err := models.ParseLanguage(c.Project.Language)
	if err != nil {
		return models.LanguageCPP
	}
	return lang
}

// Marshal encodes the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Loader reads configuration from a directory and the environment.
type Loader struct {
	fs     filesystem.FileSystem
	getenv func(string) string
}

// NewLoader creates a loader reading files through fs and variables from
// the process environment.
func NewLoader(fs filesystem.FileSystem) *Loader {
	return &Loader{fs: fs, getenv: os.Getenv}
}

// WithEnv replaces the environment lookup.
func (l *Loader) WithEnv(getenv func(string) string) *Loader {
	return &Loader{fs: l.fs, getenv: getenv}
}

// Load builds the configuration for dir. Precedence, lowest first: defaults,
// <dir>/idestudio.toml, <dir>/.env, IDESTUDIO_* environment variables.
func (l *Loader) Load(dir string) (Config, error) {
	cfg := Config{}

	tomlPath := filepath.Join(dir, FileName)
	if l.fs.Exists(tomlPath) {
		data, err := l.fs.ReadFile(tomlPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read %s: %w", tomlPath, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", tomlPath, err)
		}
	}

	dotenv := map[string]string{}
	envPath := filepath.Join(dir, EnvFileName)
	if l.fs.Exists(envPath) {
		data, err := l.fs.ReadFile(envPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read %s: %w", envPath, err)
		}
		dotenv, err = godotenv.Parse(bytes.NewReader(data))
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", envPath, err)
		}
	}

	lookup := func(key string) string {
		return firstNonEmpty(strings.TrimSpace(l.getenv(EnvPrefix+key)), strings.TrimSpace(dotenv[EnvPrefix+key]))
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	return Normalize(cfg), nil
}

func applyEnv(cfg *Config, lookup func(string) string) error {
	setString := func(dst *string, key string) {
		if v := lookup(key); v != "" {
			*dst = v
		}
	}
	setArgs := func(dst *[]string, key string) {
		if v := lookup(key); v != "" {
			*dst = strings.Fields(v)
		}
	}

	setString(&cfg.Toolchain.Configure, "CONFIGURE")
	setArgs(&cfg.Toolchain.ConfigureArgs, "CONFIGURE_ARGS")
	setString(&cfg.Toolchain.Build, "BUILD")
	setArgs(&cfg.Toolchain.BuildArgs, "BUILD_ARGS")
	setArgs(&cfg.Toolchain.CleanArgs, "CLEAN_ARGS")
	setString(&cfg.Toolchain.BuildDir, "BUILD_DIR")
	setString(&cfg.Project.Language, "LANGUAGE")
	setString(&cfg.Project.Templates, "TEMPLATES")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")

	if v := lookup("INDENT"); v != "" {
		indent, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sINDENT %q: %w", EnvPrefix, v, err)
		}
		cfg.Project.Indent = indent
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
