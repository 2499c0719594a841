package config

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig locates the content database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// FeedConfig describes one RSS/Atom feed to poll.
type FeedConfig struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// ChannelConfig describes one YouTube channel to poll.
type ChannelConfig struct {
	Name      string `mapstructure:"name"`
	ChannelID string `mapstructure:"channel_id"`
}

// ScrapeConfig describes one ad-hoc page to scrape as an article.
type ScrapeConfig struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// OpenAIConfig controls the enrichment provider.
type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"` // optional override
	MaxTokens int    `mapstructure:"max_tokens"`
}

// EmailConfig controls digest delivery.
type EmailConfig struct {
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"` // optional override
	From          string `mapstructure:"from"`
	To            string `mapstructure:"to"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// YouTubeConfig controls the YouTube Data API client.
type YouTubeConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"` // optional override
	MaxResults int    `mapstructure:"max_results"`
}

// ScheduleConfig holds one cron expression per pipeline job.
type ScheduleConfig struct {
	Feeds    string `mapstructure:"feeds"`
	Channels string `mapstructure:"channels"`
	Enrich   string `mapstructure:"enrich"`
	Assemble string `mapstructure:"assemble"`
	Deliver  string `mapstructure:"deliver"`
}

// DigestConfig tunes digest assembly windows.
type DigestConfig struct {
	WindowHours      int `mapstructure:"window_hours"`
	EventsWindowDays int `mapstructure:"events_window_days"`
	EnrichBatchLimit int `mapstructure:"enrich_batch_limit"`
}

// Config is the top-level configuration structure.
type Config struct {
	App        AppConfig       `mapstructure:"app"`
	Database   DatabaseConfig  `mapstructure:"database"`
	Feeds      []FeedConfig    `mapstructure:"feeds"`
	Channels   []ChannelConfig `mapstructure:"channels"`
	ScrapeURLs []ScrapeConfig  `mapstructure:"scrape_urls"`
	OpenAI     OpenAIConfig    `mapstructure:"openai"`
	Email      EmailConfig     `mapstructure:"email"`
	YouTube    YouTubeConfig   `mapstructure:"youtube"`
	Schedule   ScheduleConfig  `mapstructure:"schedule"`
	Digest     DigestConfig    `mapstructure:"digest"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/digest.db"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = 1500
	}
	if c.Email.SubjectPrefix == "" {
		c.Email.SubjectPrefix = "AI News Digest"
	}
	if c.YouTube.MaxResults == 0 {
		c.YouTube.MaxResults = 10
	}
	if c.Schedule.Feeds == "" {
		c.Schedule.Feeds = "0 */6 * * *"
	}
	if c.Schedule.Channels == "" {
		c.Schedule.Channels = "0 0 * * *"
	}
	if c.Schedule.Enrich == "" {
		c.Schedule.Enrich = "0 23 * * *"
	}
	if c.Schedule.Assemble == "" {
		c.Schedule.Assemble = "30 6 * * *"
	}
	if c.Schedule.Deliver == "" {
		c.Schedule.Deliver = "0 7 * * *"
	}
	if c.Digest.WindowHours == 0 {
		c.Digest.WindowHours = 24
	}
	if c.Digest.EventsWindowDays == 0 {
		c.Digest.EventsWindowDays = 90
	}
	if c.Digest.EnrichBatchLimit == 0 {
		c.Digest.EnrichBatchLimit = 50
	}
}
