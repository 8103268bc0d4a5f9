package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the configuration of the vocabulary engine
type Config struct {
	// Remote table storage: "sqlite3" or "postgres"
	DBType string
	// SQLite file used when DBType is sqlite3
	DBPath string
	// Connection string used when DBType is postgres
	DBDSN string

	// How long a loaded table is served from cache
	CacheTTL time.Duration
	// Hard timeout for every remote call
	RemoteTimeout time.Duration
	// Interval between retries of a failed save
	SyncRetryInterval time.Duration

	DefaultNotebook string
	MistakeNotebook string

	// Language translations are requested in
	TranslateTarget string
	OpenAIKey       string
	OpenAIModel     string
	PhoneticAPIURL  string
	// Concurrent lookups during a batch add
	LookupWorkers int

	// Path to the Google service account file; empty disables speech
	GoogleCredentials string
	VoiceEnglish      string
	VoiceChinese      string
	SpeechSpeed       float64
	// Time each carousel step stays on screen
	CarouselDwell time.Duration

	// Distractor pool for quizzes on small notebooks
	FallbackTranslations []string

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
}

// DefaultFallbackTranslations pads quiz options when a notebook has too few words
var DefaultFallbackTranslations = []string{
	"蘋果", "香蕉", "電腦", "大象", "書本", "朋友", "學校", "時間", "音樂", "天氣",
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DBType:               "sqlite3",
		DBPath:               "./data/wordbook.db",
		CacheTTL:             10 * time.Minute,
		RemoteTimeout:        10 * time.Second,
		SyncRetryInterval:    30 * time.Second,
		DefaultNotebook:      "Default",
		MistakeNotebook:      "Mistakes",
		TranslateTarget:      "zh-TW",
		OpenAIModel:          "gpt-3.5-turbo",
		LookupWorkers:        4,
		VoiceEnglish:         "en-US-Wavenet-D",
		VoiceChinese:         "cmn-TW-Wavenet-A",
		SpeechSpeed:          0.8,
		CarouselDwell:        3500 * time.Millisecond,
		FallbackTranslations: append([]string(nil), DefaultFallbackTranslations...),
		SupabaseBucket:       "uploads",
	}
}

// Load reads the given .env files (".env" when none are named) and applies
// environment variables over the defaults. Invalid values keep the default.
func Load(files ...string) *Config {
	if err := godotenv.Load(files...); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := DefaultConfig()

	setString(&cfg.DBType, "DB_TYPE")
	setString(&cfg.DBPath, "DB_PATH")
	setString(&cfg.DBDSN, "DB_DSN")
	setDuration(&cfg.CacheTTL, "CACHE_TTL")
	setDuration(&cfg.RemoteTimeout, "REMOTE_TIMEOUT")
	setDuration(&cfg.SyncRetryInterval, "SYNC_RETRY_INTERVAL")
	setString(&cfg.DefaultNotebook, "DEFAULT_NOTEBOOK")
	setString(&cfg.MistakeNotebook, "MISTAKE_NOTEBOOK")
	setString(&cfg.TranslateTarget, "TRANSLATE_TARGET")
	setString(&cfg.OpenAIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAIModel, "OPENAI_MODEL")
	setString(&cfg.PhoneticAPIURL, "PHONETIC_API_URL")
	setInt(&cfg.LookupWorkers, "LOOKUP_WORKERS")
	setString(&cfg.GoogleCredentials, "GOOGLE_CREDENTIALS_JSON")
	setString(&cfg.VoiceEnglish, "TTS_VOICE_EN")
	setString(&cfg.VoiceChinese, "TTS_VOICE_ZH")
	setFloat(&cfg.SpeechSpeed, "TTS_SPEED")
	setDuration(&cfg.CarouselDwell, "CAROUSEL_DWELL")
	setList(&cfg.FallbackTranslations, "FALLBACK_TRANSLATIONS")
	setString(&cfg.SupabaseURL, "SUPABASE_URL")
	setString(&cfg.SupabaseKey, "SUPABASE_KEY")
	setString(&cfg.SupabaseBucket, "SUPABASE_BUCKET")

	if cfg.DefaultNotebook == cfg.MistakeNotebook {
		def := DefaultConfig()
		if cfg.DefaultNotebook == def.MistakeNotebook {
			cfg.DefaultNotebook = def.DefaultNotebook
		} else {
			cfg.MistakeNotebook = def.MistakeNotebook
		}
		log.Printf("DEFAULT_NOTEBOOK and MISTAKE_NOTEBOOK must differ, using %q and %q", cfg.DefaultNotebook, cfg.MistakeNotebook)
	}

	return cfg
}

// Voices maps speech languages to the configured voice names
func (c *Config) Voices() map[string]string {
	return map[string]string{
		"en-US":           c.VoiceEnglish,
		c.TranslateTarget: c.VoiceChinese,
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Invalid %s=%q, using default %s", key, v, *dst)
		return
	}
	*dst = d
}

func setInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s=%q, using default %d", key, v, *dst)
		return
	}
	*dst = n
}

func setFloat(dst *float64, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0.25 || f > 4 {
		log.Printf("Invalid %s=%q, using default %.2f", key, v, *dst)
		return
	}
	*dst = f
}

func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}
