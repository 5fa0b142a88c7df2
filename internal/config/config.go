// Package config loads the application configuration: YAML file overlaid
// with environment variables on top of the full default surface.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	App        AppConfig        `yaml:"app" json:"app" mapstructure:"app"`
	Sources    SourcesConfig    `yaml:"sources" json:"sources" mapstructure:"sources"`
	Filters    FiltersConfig    `yaml:"filters" json:"filters" mapstructure:"filters"`
	Enrichment EnrichmentConfig `yaml:"enrichment" json:"enrichment" mapstructure:"enrichment"`
	Server     ServerConfig     `yaml:"server" json:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" json:"log" mapstructure:"log"`
}

// AppConfig holds process-wide settings shared by every stage.
type AppConfig struct {
	DBPath           string  `yaml:"db_path" json:"db_path" mapstructure:"db_path"`
	ExportPath       string  `yaml:"export_path" json:"export_path" mapstructure:"export_path"`
	SaveToDB         bool    `yaml:"save_to_db" json:"save_to_db" mapstructure:"save_to_db"`
	ExportOnRun      bool    `yaml:"export_on_run" json:"export_on_run" mapstructure:"export_on_run"`
	UserAgent        string  `yaml:"user_agent" json:"user_agent" mapstructure:"user_agent"`
	RequestTimeoutS  float64 `yaml:"request_timeout_s" json:"request_timeout_s" mapstructure:"request_timeout_s"`
	RequestDelayS    float64 `yaml:"request_delay_s" json:"request_delay_s" mapstructure:"request_delay_s"`
	CacheDir         string  `yaml:"cache_dir" json:"cache_dir" mapstructure:"cache_dir"`
}

// RequestTimeout returns the per-request timeout as a duration.
func (a AppConfig) RequestTimeout() time.Duration {
	return time.Duration(a.RequestTimeoutS * float64(time.Second))
}

// RequestDelay returns the fixed inter-request delay as a duration.
func (a AppConfig) RequestDelay() time.Duration {
	return time.Duration(a.RequestDelayS * float64(time.Second))
}

// SourcesConfig groups the per-adapter configurations.
type SourcesConfig struct {
	Overpass    OverpassConfig    `yaml:"osm_overpass" json:"osm_overpass" mapstructure:"osm_overpass"`
	Places      PlacesConfig      `yaml:"google_places" json:"google_places" mapstructure:"google_places"`
	MapsBrowser MapsBrowserConfig `yaml:"google_maps_browser" json:"google_maps_browser" mapstructure:"google_maps_browser"`
	Directories DirectoriesConfig `yaml:"directories" json:"directories" mapstructure:"directories"`
	Websites    WebsitesConfig    `yaml:"websites" json:"websites" mapstructure:"websites"`
}

// OverpassConfig configures the open-geodata (OSM Overpass) adapter.
type OverpassConfig struct {
	Enabled          bool     `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	OverpassURL      string   `yaml:"overpass_url" json:"overpass_url" mapstructure:"overpass_url"`
	NominatimURL     string   `yaml:"nominatim_url" json:"nominatim_url" mapstructure:"nominatim_url"`
	TagFilters       []string `yaml:"tag_filters" json:"tag_filters" mapstructure:"tag_filters"`
	NameContains     []string `yaml:"name_contains" json:"name_contains" mapstructure:"name_contains"`
	Cities           []string `yaml:"cities" json:"cities" mapstructure:"cities"`
	BBoxes           []string `yaml:"bboxes" json:"bboxes" mapstructure:"bboxes"`
	MaxResults       int      `yaml:"max_results" json:"max_results" mapstructure:"max_results"`
	OverpassTimeoutS float64  `yaml:"overpass_timeout_s" json:"overpass_timeout_s" mapstructure:"overpass_timeout_s"`
	GeocodeDelayS    float64  `yaml:"geocode_delay_s" json:"geocode_delay_s" mapstructure:"geocode_delay_s"`
	Debug            bool     `yaml:"debug" json:"debug" mapstructure:"debug"`
}

// PlacesConfig configures the commercial places API adapter.
type PlacesConfig struct {
	Enabled      bool     `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	APIKey       string   `yaml:"api_key" json:"api_key" mapstructure:"api_key"`
	Query        string   `yaml:"query" json:"query" mapstructure:"query"`
	Cities       []string `yaml:"cities" json:"cities" mapstructure:"cities"`
	MaxResults   int      `yaml:"max_results" json:"max_results" mapstructure:"max_results"`
	FetchDetails bool     `yaml:"fetch_details" json:"fetch_details" mapstructure:"fetch_details"`
}

// MapsBrowserConfig configures the browser-driven map scraping adapter.
type MapsBrowserConfig struct {
	Enabled           bool     `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Query             string   `yaml:"query" json:"query" mapstructure:"query"`
	Cities            []string `yaml:"cities" json:"cities" mapstructure:"cities"`
	MaxResults        int      `yaml:"max_results" json:"max_results" mapstructure:"max_results"`
	Headless          bool     `yaml:"headless" json:"headless" mapstructure:"headless"`
	SlowMoMs          int      `yaml:"slow_mo_ms" json:"slow_mo_ms" mapstructure:"slow_mo_ms"`
	WaitAfterSearchMs int      `yaml:"wait_after_search_ms" json:"wait_after_search_ms" mapstructure:"wait_after_search_ms"`
	ResultClickDelayS float64  `yaml:"result_click_delay_s" json:"result_click_delay_s" mapstructure:"result_click_delay_s"`
}

// DirectoriesConfig configures the generic directory crawler adapter.
type DirectoriesConfig struct {
	Enabled             bool     `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	SeedURLs            []string `yaml:"seed_urls" json:"seed_urls" mapstructure:"seed_urls"`
	ListingLinkSelector string   `yaml:"listing_link_selector" json:"listing_link_selector" mapstructure:"listing_link_selector"`
	MaxBusinessPages    int      `yaml:"max_business_pages" json:"max_business_pages" mapstructure:"max_business_pages"`
}

// WebsitesConfig configures the generic website crawler adapter.
type WebsitesConfig struct {
	Enabled  bool     `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	SeedURLs []string `yaml:"seed_urls" json:"seed_urls" mapstructure:"seed_urls"`
}

// FiltersConfig configures the filter stage. RequireMissingWebsite is
// pointer-typed because key absence matters: the legacy boolean only applies
// when website_policy is not set.
type FiltersConfig struct {
	ExcludeStartups       bool     `yaml:"exclude_startups" json:"exclude_startups" mapstructure:"exclude_startups"`
	StartupKeywords       []string `yaml:"startup_keywords" json:"startup_keywords" mapstructure:"startup_keywords"`
	WebsitePolicy         string   `yaml:"website_policy" json:"website_policy" mapstructure:"website_policy"`
	RequireMissingWebsite *bool    `yaml:"require_missing_website,omitempty" json:"require_missing_website,omitempty" mapstructure:"require_missing_website"`
}

// EnrichmentConfig configures the website enrichment stage.
type EnrichmentConfig struct {
	FetchWebsiteForEmail bool     `yaml:"fetch_website_for_email" json:"fetch_website_for_email" mapstructure:"fetch_website_for_email"`
	MaxPagesPerSite      int      `yaml:"max_pages_per_site" json:"max_pages_per_site" mapstructure:"max_pages_per_site"`
	AllowedEmailDomains  []string `yaml:"allowed_email_domains" json:"allowed_email_domains" mapstructure:"allowed_email_domains"`
}

// ServerConfig configures the HTTP front-end.
type ServerConfig struct {
	Port int `yaml:"port" json:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" mapstructure:"level"`
	Format string `yaml:"format" json:"format" mapstructure:"format"`
}

// Load reads configuration from the given YAML file (optional) and the
// environment, on top of the built-in defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("LEADFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// The config file is optional: defaults plus environment are a complete
	// configuration on their own.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	// Env fallback for the places API key, matching the documented variable.
	if cfg.Sources.Places.APIKey == "" {
		cfg.Sources.Places.APIKey = os.Getenv("GOOGLE_PLACES_API_KEY")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.db_path", "data/leads.db")
	v.SetDefault("app.export_path", "data/leads.csv")
	v.SetDefault("app.save_to_db", true)
	v.SetDefault("app.export_on_run", false)
	v.SetDefault("app.user_agent", "LeadFinderBot/0.2 (contact: you@example.com)")
	v.SetDefault("app.request_timeout_s", 20)
	v.SetDefault("app.request_delay_s", 0.2)
	v.SetDefault("app.cache_dir", "data/cache")

	v.SetDefault("sources.osm_overpass.enabled", true)
	v.SetDefault("sources.osm_overpass.overpass_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("sources.osm_overpass.nominatim_url", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("sources.osm_overpass.tag_filters", []string{"craft=plumber"})
	v.SetDefault("sources.osm_overpass.name_contains", []string{})
	v.SetDefault("sources.osm_overpass.cities", []string{"Austin, TX"})
	v.SetDefault("sources.osm_overpass.bboxes", []string{})
	v.SetDefault("sources.osm_overpass.max_results", 200)
	v.SetDefault("sources.osm_overpass.overpass_timeout_s", 25)
	v.SetDefault("sources.osm_overpass.geocode_delay_s", 1.1)
	v.SetDefault("sources.osm_overpass.debug", false)

	v.SetDefault("sources.google_places.enabled", false)
	v.SetDefault("sources.google_places.api_key", "")
	v.SetDefault("sources.google_places.query", "plumber")
	v.SetDefault("sources.google_places.cities", []string{"Austin, TX"})
	v.SetDefault("sources.google_places.max_results", 60)
	v.SetDefault("sources.google_places.fetch_details", true)

	v.SetDefault("sources.google_maps_browser.enabled", false)
	v.SetDefault("sources.google_maps_browser.query", "real estate agent")
	v.SetDefault("sources.google_maps_browser.cities", []string{"Ahmedabad, Gujarat, India"})
	v.SetDefault("sources.google_maps_browser.max_results", 40)
	v.SetDefault("sources.google_maps_browser.headless", true)
	v.SetDefault("sources.google_maps_browser.slow_mo_ms", 0)
	v.SetDefault("sources.google_maps_browser.wait_after_search_ms", 2000)
	v.SetDefault("sources.google_maps_browser.result_click_delay_s", 0.8)

	v.SetDefault("sources.directories.enabled", false)
	v.SetDefault("sources.directories.seed_urls", []string{})
	v.SetDefault("sources.directories.listing_link_selector", "")
	v.SetDefault("sources.directories.max_business_pages", 50)

	v.SetDefault("sources.websites.enabled", false)
	v.SetDefault("sources.websites.seed_urls", []string{})

	v.SetDefault("filters.exclude_startups", true)
	v.SetDefault("filters.startup_keywords", []string{"startup", "saas", "venture", "accelerator", "incubator"})
	v.SetDefault("filters.website_policy", "exclude_missing")

	v.SetDefault("enrichment.fetch_website_for_email", true)
	v.SetDefault("enrichment.max_pages_per_site", 1)
	v.SetDefault("enrichment.allowed_email_domains", []string{})

	v.SetDefault("server.port", 8000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
