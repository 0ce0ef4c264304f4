package config

import "time"

type Config struct {
	Env             string           `yaml:"env" env:"ENV" env-default:"local"`
	HttpServer      HttpServerConfig `yaml:"httpServer"`
	DBConfig        DBConfig         `yaml:"db"`
	FetcherConfig   FetcherConfig    `yaml:"fetcher"`
	SourcesConfig   SourcesConfig    `yaml:"sources"`
	GeocoderConfig  GeocoderConfig   `yaml:"geocoder"`
	PipelineConfig  PipelineConfig   `yaml:"pipeline"`
	BotConfig       BotConfig        `yaml:"bot"`
	AIConfig        AIConfig         `yaml:"AI"`
	DiscoveryConfig DiscoveryConfig  `yaml:"discovery"`
	configPath      string
}

type HttpServerConfig struct {
	Address string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost"`
	Port    string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
	Enabled bool          `yaml:"enabled" env:"HTTP_ENABLED" env-default:"true"`
}

// DBConfig описывает хранилище событий и реестр заведений.
// Driver: postgres (lib/pq), pgx, sqlite или mongo.
type DBConfig struct {
	Driver           string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host             string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port             string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	Name             string `yaml:"name" env:"DB_NAME" env-default:"postgres"`
	User             string `yaml:"user" env:"DB_USER" env-default:"user"`
	Password         string `yaml:"password" env:"DB_PASSWORD" env-default:"password"`
	DSN              string `yaml:"dsn" env:"DB_DSN" env-default:""` // для sqlite: путь к файлу или ":memory:"
	MongoURI         string `yaml:"mongoUri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	EventsCollection string `yaml:"eventsCollection" env-default:"events"`
	VenuesCollection string `yaml:"venuesCollection" env-default:"whatstheplace"`
}

type FetcherConfig struct {
	UserAgent        string        `yaml:"userAgent" env:"FETCHER_USER_AGENT" env-default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"`
	AcceptLanguage   string        `yaml:"acceptLanguage" env-default:"en-US,en;q=0.9"`
	Timeout          time.Duration `yaml:"timeout" env:"FETCHER_TIMEOUT" env-default:"10s"`
	CloudflareBypass bool          `yaml:"cloudflareBypass" env:"FETCHER_CLOUDFLARE_BYPASS" env-default:"false"`
}

// SourceConfig — настройки конкретной платформы.
type SourceConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

type QuicketConfig struct {
	APIKey  string        `yaml:"apiKey" env:"QUICKET_API_KEY"`
	BaseURL string        `yaml:"baseUrl" env:"QUICKET_BASE_URL" env-default:"https://api.quicket.co.za/api"`
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
}

type HowlerConfig struct {
	TicketBaseURL string        `yaml:"ticketBaseUrl" env:"HOWLER_TICKET_BASE_URL" env-default:"https://ag.howler.co.za"`
	Timeout       time.Duration `yaml:"timeout" env-default:"10s"`
}

type SourcesConfig struct {
	Webtickets  SourceConfig  `yaml:"webtickets"`
	Computicket SourceConfig  `yaml:"computicket"`
	Ticketpro   SourceConfig  `yaml:"ticketpro"`
	Quicket     QuicketConfig `yaml:"quicket"`
	Howler      HowlerConfig  `yaml:"howler"`
}

type GeocoderConfig struct {
	APIKey  string        `yaml:"apiKey" env:"PLACES_API_KEY"`
	BaseURL string        `yaml:"baseUrl" env:"PLACES_BASE_URL" env-default:"https://maps.googleapis.com/maps/api/place/findplacefromtext/json"`
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
}

type PipelineConfig struct {
	WorkersCount   int           `yaml:"workersCount" env:"PIPELINE_WORKERS_COUNT" env-default:"2"`
	JobBufferSize  int           `yaml:"jobBufferSize" env:"PIPELINE_BUFFER_SIZE" env-default:"10"`
	ManagerAccount string        `yaml:"managerAccount" env:"MANAGER_ACCOUNT" env-default:"testAddEventEndpoint"`
	// Сколько хранить завершённый пакет, который никто не забрал. 0 — до явного Forget.
	TaskRetention  time.Duration `yaml:"taskRetention" env:"PIPELINE_TASK_RETENTION" env-default:"10m"`
}

type BotConfig struct {
	Admins        []string `yaml:"admins" env:"TGBOT_ADMINS" env-separator:","`
	TgbotApiToken string   `yaml:"tgbot_apitoken" env:"TGBOT_APITOKEN"`
	UpdateTimeout int      `yaml:"updateTimeout" env-default:"30"` // в секундах
}

type AIConfig struct {
	Enabled    bool          `yaml:"enabled" env:"AI_ENABLED" env-default:"false"`
	Timeout    time.Duration `yaml:"timeout" env:"AI_TIMEOUT" env-default:"60s"`
	ModelName  string        `yaml:"modelName" env:"AI_MODEL_NAME" env-default:"openai/gpt-4o-mini"`
	AIApiToken string        `yaml:"aiapitoken" env:"AI_API_TOKEN"`
	RetryCount int           `yaml:"retryCount" env-default:"3"`
	RetryPause time.Duration `yaml:"retryPause" env-default:"5s"`
}

type SheetConfig struct {
	SpreadsheetID string `yaml:"spreadsheetId" env:"SPREADSHEET_ID_EVENTS"`
	SheetName     string `yaml:"sheetName" env:"SHEET_NAME"`
	APIKey        string `yaml:"apiKey" env:"SHEETS_API"`
	BaseURL       string `yaml:"baseUrl" env-default:"https://sheets.googleapis.com/v4/spreadsheets"`
}

type DiscoveryConfig struct {
	ListingURLs []string      `yaml:"listingUrls"`
	FeedURLs    []string      `yaml:"feedUrls"`
	Sheet       SheetConfig   `yaml:"sheet"`
	Timeout     time.Duration `yaml:"timeout" env-default:"30s"`
}
