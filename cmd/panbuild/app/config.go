package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/louib/panbuild"
	"github.com/louib/panbuild/pkg/constants"
	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/sources"
	"github.com/louib/panbuild/pkg/store"
)

// Config holds the application configuration loaded from the config file,
// .env files and PB_ environment variables.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// ConfigFile is the file that was read, if any.
	ConfigFile string

	// Logging
	LogLevel  string
	LogFormat string
	LogOutput string

	// OutDir is the default batch merge directory.
	OutDir string

	Store store.Config

	HTTPTimeout time.Duration
	UserAgent   string

	Sources        []sources.ID
	GitHubURL      string
	GitLabHosts    []string
	GitLabMinForks int
	HomebrewFeeds  []string
	DebianIndexes  []string
}

// LoadConfig loads configuration in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. PB_ environment variables
//  3. .env and .env.local
//  4. The config file (file, or .panbuild.yaml in the working directory
//     or $HOME)
//  5. Defaults
func LoadConfig(file string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".panbuild")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "cannot read config file", err)
		}
	}

	config := &Config{
		Verbose:    v.GetBool("verbose"),
		Quiet:      v.GetBool("quiet"),
		NoColor:    v.GetBool("no_color"),
		Format:     v.GetString("format"),
		ConfigFile: v.ConfigFileUsed(),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		LogOutput: v.GetString("log.output"),

		OutDir: v.GetString("out_dir"),

		Store: store.Config{
			Backend:    store.Backend(v.GetString("store.backend")),
			Dir:        v.GetString("projects_dir"),
			SQLitePath: v.GetString("store.sqlite_path"),
			CacheSize:  v.GetInt("store.cache_size"),
		},

		HTTPTimeout: v.GetDuration("http.timeout"),
		UserAgent:   v.GetString("http.user_agent"),

		GitHubURL:      v.GetString("sources.github.url"),
		GitLabHosts:    stringSlice(v, "sources.gitlab.instances"),
		GitLabMinForks: v.GetInt("sources.gitlab.min_forks"),
		HomebrewFeeds:  stringSlice(v, "sources.homebrew.feeds"),
		DebianIndexes:  stringSlice(v, "sources.debian.indexes"),
	}

	for _, s := range stringSlice(v, "sources.enabled") {
		id := sources.ID(strings.ToLower(s))
		if !id.IsValid() {
			return nil, errors.NewConfigError("config", "unknown source "+s+" in sources.enabled", nil)
		}
		config.Sources = append(config.Sources, id)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("projects_dir", constants.DefaultProjectsDir)
	v.SetDefault("store.backend", string(store.BackendFiles))
	v.SetDefault("store.sqlite_path", "panbuild.db")
	v.SetDefault("http.timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("http.user_agent", constants.UserAgent)
}

// stringSlice reads a list that may also be given as one comma separated
// string, as environment variables are.
func stringSlice(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// UpdateFromFlags applies parsed command flags over the loaded values.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// SourceConfig returns the registry settings for panbuild.DefaultSources.
func (c *Config) SourceConfig() *panbuild.SourceConfig {
	return &panbuild.SourceConfig{
		Enabled:         c.Sources,
		GitHubURL:       c.GitHubURL,
		GitLabInstances: c.GitLabHosts,
		GitLabMinForks:  c.GitLabMinForks,
		HomebrewFeeds:   c.HomebrewFeeds,
		DebianIndexes:   c.DebianIndexes,
		HTTPTimeout:     c.HTTPTimeout,
		UserAgent:       c.UserAgent,
	}
}

// loadEnvFiles loads .env, then .env.local. Variables already set in the
// environment win.
func loadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}
}
