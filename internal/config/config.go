package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderCohere = "cohere"
)

type Config struct {
	BaseURL        string        `validate:"required,url"`
	PageNumbers    []int         `validate:"required,min=1,dive,gte=1"`
	LagDays        int           `validate:"gte=0"`
	OutputDir      string        `validate:"required"`
	ExportDir      string        `validate:"required"`
	FetchTimeout   time.Duration `validate:"gt=0"`
	FetchRate      float64       `validate:"gt=0"`
	Concurrency    int           `validate:"gte=1"`
	PublishOffset  time.Duration
	AllowedDomains []string

	AnnotatorProvider string `validate:"oneof=gemini cohere"`
	GeminiAPIKey      string
	GeminiModel       string
	CohereAPIKey      string
	CohereModel       string

	AWSRegion   string
	S3Bucket    string
	S3KeyPrefix string

	Snowflake Snowflake

	DiscordWebhookURL string
	ProjectID         string

	Schedule   string
	ScheduleTZ string
	Port       string `validate:"required,numeric"`
	LogLevel   string `validate:"oneof=debug info warn error"`
}

// Snowflake holds warehouse connection settings. The loader and exporter are
// disabled when Account is empty.
type Snowflake struct {
	User       string
	Password   string
	Account    string
	Database   string
	Schema     string
	Warehouse  string
	Stage      string
	FileFormat string
}

// Enabled reports whether enough credentials are present to connect.
func (s Snowflake) Enabled() bool {
	return s.User != "" && s.Password != "" && s.Account != ""
}

func Load() (*Config, error) {
	baseURL := strings.TrimRight(getenv("BASE_URL", "http://joebucsfan.com"), "/")
	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Hostname() == "" {
		return nil, fmt.Errorf("invalid BASE_URL %q", baseURL)
	}

	pages, err := parsePageNumbers(getenv("PAGE_NUMBERS", "1,2,3"))
	if err != nil {
		return nil, err
	}

	lagDays, err := getInt("LAG_DAYS", 2)
	if err != nil {
		return nil, err
	}
	if lagDays < 0 {
		return nil, fmt.Errorf("LAG_DAYS must be non-negative, got %d", lagDays)
	}

	fetchTimeout, err := getDuration("FETCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	publishOffset, err := getDuration("PUBLISH_OFFSET", 4*time.Hour)
	if err != nil {
		return nil, err
	}

	fetchRate := 2.0
	if v := os.Getenv("FETCH_RATE"); v != "" {
		fetchRate, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCH_RATE %q: %w", v, err)
		}
	}

	concurrency, err := getInt("SCRAPE_CONCURRENCY", 1)
	if err != nil {
		return nil, err
	}

	provider := strings.ToLower(getenv("ANNOTATOR_PROVIDER", ProviderGemini))
	geminiKey := os.Getenv("GEMINI_API_KEY")
	cohereKey := os.Getenv("COHERE_API_KEY")
	switch {
	case provider == ProviderGemini && geminiKey == "":
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required when ANNOTATOR_PROVIDER=gemini")
	case provider == ProviderCohere && cohereKey == "":
		return nil, fmt.Errorf("COHERE_API_KEY environment variable is required when ANNOTATOR_PROVIDER=cohere")
	}

	bucket := os.Getenv("AWS_BUCKET_NAME")
	if bucket == "" {
		slog.Warn("AWS_BUCKET_NAME not set, S3 upload will be skipped")
	}

	sf := Snowflake{
		User:       os.Getenv("SNOWFLAKE_USERNAME"),
		Password:   os.Getenv("SNOWFLAKE_PASSWORD"),
		Account:    os.Getenv("SNOWFLAKE_ACCOUNT_NAME"),
		Database:   getenv("SNOWFLAKE_DATABASE", "PIPELINE"),
		Schema:     getenv("SNOWFLAKE_SCHEMA", "JOEBUCS"),
		Warehouse:  os.Getenv("SNOWFLAKE_WAREHOUSE"),
		Stage:      getenv("SNOWFLAKE_STAGE", "s3_stage"),
		FileFormat: getenv("SNOWFLAKE_FILE_FORMAT", "pipe_csv_format"),
	}
	if !sf.Enabled() {
		slog.Warn("Snowflake credentials not set, warehouse load and export will be skipped")
	}

	discordWebhookURL := os.Getenv("DISCORD_WEBHOOK_URL")
	if discordWebhookURL == "" {
		slog.Warn("DISCORD_WEBHOOK_URL not set, Discord notifications will be skipped")
	}

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		slog.Info("GOOGLE_CLOUD_PROJECT not set, run ledger disabled")
	}

	host := parsedBase.Hostname()
	allowed := []string{host}
	if strings.HasPrefix(host, "www.") {
		allowed = append(allowed, strings.TrimPrefix(host, "www."))
	} else {
		allowed = append(allowed, "www."+host)
	}

	return &Config{
		BaseURL:           baseURL,
		PageNumbers:       pages,
		LagDays:           lagDays,
		OutputDir:         getenv("OUTPUT_DIR", "output/Extracts"),
		ExportDir:         getenv("EXPORT_DIR", "output/warehouse"),
		FetchTimeout:      fetchTimeout,
		FetchRate:         fetchRate,
		Concurrency:       concurrency,
		PublishOffset:     publishOffset,
		AllowedDomains:    allowed,
		AnnotatorProvider: provider,
		GeminiAPIKey:      geminiKey,
		GeminiModel:       getenv("GEMINI_MODEL", "gemini-2.0-flash"),
		CohereAPIKey:      cohereKey,
		CohereModel:       getenv("COHERE_MODEL", "command-r"),
		AWSRegion:         os.Getenv("AWS_REGION"),
		S3Bucket:          bucket,
		S3KeyPrefix:       strings.Trim(getenv("S3_KEY_PREFIX", "joebucs"), "/"),
		Snowflake:         sf,
		DiscordWebhookURL: discordWebhookURL,
		ProjectID:         projectID,
		Schedule:          getenv("SCHEDULE", "0 6 * * *"),
		ScheduleTZ:        getenv("SCHEDULE_TZ", "America/New_York"),
		Port:              getenv("PORT", "8080"),
		LogLevel:          strings.ToLower(getenv("LOG_LEVEL", "info")),
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return parsed, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func parsePageNumbers(s string) ([]int, error) {
	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid PAGE_NUMBERS entry %q: %w", part, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("PAGE_NUMBERS entries are 1-based, got %d", n)
		}
		pages = append(pages, n)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("PAGE_NUMBERS must list at least one page")
	}
	return pages, nil
}
