package config

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/studio/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "studio.json"

	// DefaultPort is the default studio server port.
	DefaultPort = 4100

	// DefaultHost is the default studio server host.
	DefaultHost = "localhost"

	// DefaultBuildServerURL is where the external build/session server listens.
	DefaultBuildServerURL = "http://localhost:3001"

	// DefaultEventsPath is the build server's WebSocket event stream path.
	DefaultEventsPath = "/events"

	// DefaultEntryFile is the application entry file inside a workspace.
	DefaultEntryFile = "App.js"

	// DefaultPreviewWidth and DefaultPreviewHeight size the phone frame.
	DefaultPreviewWidth  = 375
	DefaultPreviewHeight = 812

	// Wildcard accepts every component type on a drop zone.
	Wildcard = "*"
)

// Config represents the complete studio.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Server configures the studio HTTP API.
	Server ServerConfig `json:"server,omitempty"`

	// BuildServer configures the external build/session server.
	BuildServer BuildServerConfig `json:"buildServer,omitempty"`

	// Workspace configures the optional local workspace mirror.
	Workspace WorkspaceConfig `json:"workspace,omitempty"`

	// Loader configures the app loader fallback chain.
	Loader LoaderConfig `json:"loader,omitempty"`

	// Preview configures the phone-shaped preview surface.
	Preview PreviewConfig `json:"preview,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains studio HTTP server settings.
type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
}

// BuildServerConfig contains build server connection settings.
type BuildServerConfig struct {
	// URL is the base HTTP URL. Empty disables the build server and the
	// scanner falls back to the local workspace.
	URL string `json:"url,omitempty"`

	// EventsPath is the WebSocket path of the event stream.
	EventsPath string `json:"eventsPath,omitempty"`

	// Timeout is the per-request timeout (e.g., "10s").
	Timeout string `json:"timeout,omitempty"`

	// Disabled turns off every build server interaction.
	Disabled bool `json:"disabled,omitempty"`
}

// WorkspaceConfig contains local workspace settings.
type WorkspaceConfig struct {
	// Dir is a local directory mirroring the editable workspace.
	Dir string `json:"dir,omitempty"`

	// Watch enables the local file watcher.
	Watch bool `json:"watch,omitempty"`

	// Ignore contains extra patterns to skip while scanning or watching.
	Ignore []string `json:"ignore,omitempty"`

	// Debounce is the delay before a burst of changes triggers a reload.
	Debounce string `json:"debounce,omitempty"`
}

// LoaderConfig contains app loader settings.
type LoaderConfig struct {
	// EntryFile is the application entry file, relative to the workspace.
	EntryFile string `json:"entryFile,omitempty"`

	// PreviewURL is the iframe URL template for session bundles.
	// "{server}" and "{sessionId}" are substituted.
	PreviewURL string `json:"previewURL,omitempty"`

	// OriginalURL is the iframe URL of the unedited application bundle.
	OriginalURL string `json:"originalURL,omitempty"`

	// Original locates the unedited application package.
	Original OriginalConfig `json:"original,omitempty"`
}

// OriginalConfig selects where the original package is read from.
// Dir wins over S3 when both are set.
type OriginalConfig struct {
	Dir string   `json:"dir,omitempty"`
	S3  S3Config `json:"s3,omitempty"`
}

// S3Config locates an object prefix in S3.
type S3Config struct {
	Bucket string `json:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty"`
	Region string `json:"region,omitempty"`
}

// PreviewConfig contains preview surface settings.
type PreviewConfig struct {
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// Accepts lists the component types the phone drop zone accepts.
	Accepts []string `json:"accepts,omitempty"`

	// HotReload enables replaying renders on file change notifications.
	HotReload *bool `json:"hotReload,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	hotReload := true
	return &Config{
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		BuildServer: BuildServerConfig{
			URL:        DefaultBuildServerURL,
			EventsPath: DefaultEventsPath,
			Timeout:    "10s",
		},
		Workspace: WorkspaceConfig{
			Debounce: "100ms",
		},
		Loader: LoaderConfig{
			EntryFile:  DefaultEntryFile,
			PreviewURL: "{server}/preview/{sessionId}",
		},
		Preview: PreviewConfig{
			Width:     DefaultPreviewWidth,
			Height:    DefaultPreviewHeight,
			Accepts:   []string{Wildcard},
			HotReload: &hotReload,
		},
	}
}

// Load reads configuration from the specified directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E261").
				WithSource(filepath.Dir(path)).
				WithSuggestion("Create studio.json in the project root; {} is a valid file")
		}
		return nil, errors.New("E260").WithSource(path).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E260").
			WithSource(path).
			WithDetail("Failed to parse studio.json: " + err.Error()).
			WithSuggestion("Check that studio.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E260").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E260").WithSource(path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}

	if c.BuildServer.EventsPath == "" {
		c.BuildServer.EventsPath = DefaultEventsPath
	}
	if c.BuildServer.Timeout == "" {
		c.BuildServer.Timeout = "10s"
	}

	if c.Workspace.Debounce == "" {
		c.Workspace.Debounce = "100ms"
	}

	if c.Loader.EntryFile == "" {
		c.Loader.EntryFile = DefaultEntryFile
	}
	if c.Loader.PreviewURL == "" {
		c.Loader.PreviewURL = "{server}/preview/{sessionId}"
	}

	if c.Preview.Width == 0 {
		c.Preview.Width = DefaultPreviewWidth
	}
	if c.Preview.Height == 0 {
		c.Preview.Height = DefaultPreviewHeight
	}
	if len(c.Preview.Accepts) == 0 {
		c.Preview.Accepts = []string{Wildcard}
	}
	if c.Preview.HotReload == nil {
		hotReload := true
		c.Preview.HotReload = &hotReload
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E262").
			WithSource("server.port").
			WithDetail("Port must be between 0 and 65535")
	}
	if c.BuildServerEnabled() {
		u, err := url.Parse(c.BuildServer.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.New("E262").
				WithSource("buildServer.url").
				WithDetail("Build server URL must be an absolute http(s) URL")
		}
	}
	for field, value := range map[string]string{
		"buildServer.timeout": c.BuildServer.Timeout,
		"workspace.debounce":  c.Workspace.Debounce,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return errors.New("E262").WithSource(field).Wrap(err)
		}
	}
	if c.Preview.Width <= 0 || c.Preview.Height <= 0 {
		return errors.New("E262").
			WithSource("preview").
			WithDetail("Preview width and height must be positive")
	}
	if c.Workspace.Watch && c.Workspace.Dir == "" {
		return errors.New("E262").
			WithSource("workspace.watch").
			WithDetail("Watching requires workspace.dir")
	}
	return nil
}

// Address returns the listen address for the studio server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// BuildServerEnabled reports whether a build server should be contacted.
func (c *Config) BuildServerEnabled() bool {
	return !c.BuildServer.Disabled && c.BuildServer.URL != ""
}

// BuildServerTimeout returns the parsed request timeout.
func (c *Config) BuildServerTimeout() time.Duration {
	return parseDuration(c.BuildServer.Timeout, 10*time.Second)
}

// EventsURL returns the WebSocket URL of the build server event stream.
func (c *Config) EventsURL() string {
	base := strings.TrimSuffix(c.BuildServer.URL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	path := c.BuildServer.EventsPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// WorkspacePath returns the absolute path to the local workspace, or "".
func (c *Config) WorkspacePath() string {
	return c.resolve(c.Workspace.Dir)
}

// OriginalPath returns the absolute path to the original package directory, or "".
func (c *Config) OriginalPath() string {
	return c.resolve(c.Loader.Original.Dir)
}

// WorkspaceDebounce returns the parsed watcher debounce delay.
func (c *Config) WorkspaceDebounce() time.Duration {
	return parseDuration(c.Workspace.Debounce, 100*time.Millisecond)
}

// HotReloadEnabled reports whether hot reload is on.
func (c *Config) HotReloadEnabled() bool {
	return c.Preview.HotReload == nil || *c.Preview.HotReload
}

// SessionPreviewURL expands Loader.PreviewURL for a session.
func (c *Config) SessionPreviewURL(sessionID string) string {
	r := strings.NewReplacer(
		"{server}", strings.TrimSuffix(c.BuildServer.URL, "/"),
		"{sessionId}", url.PathEscape(sessionID),
	)
	return r.Replace(c.Loader.PreviewURL)
}

func (c *Config) resolve(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing studio.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E261").
				WithDetail("No studio.json found in " + startDir + " or any parent directory").
				WithSuggestion("Create studio.json in the project root")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
