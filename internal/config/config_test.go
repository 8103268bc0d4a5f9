package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.CarouselDwell != 3500*time.Millisecond || cfg.SpeechSpeed != 0.8 {
		t.Fatalf("unexpected carousel defaults %+v", cfg)
	}
	if cfg.DefaultNotebook == cfg.MistakeNotebook {
		t.Fatal("default and mistake notebooks must differ")
	}
	cfg.FallbackTranslations[0] = "changed"
	if DefaultFallbackTranslations[0] == "changed" {
		t.Fatal("DefaultConfig must copy the fallback pool")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("LOOKUP_WORKERS", "8")
	t.Setenv("TTS_SPEED", "1.25")
	t.Setenv("FALLBACK_TRANSLATIONS", " 狗, 貓 ,,")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))
	if cfg.DBType != "postgres" || cfg.CacheTTL != time.Minute || cfg.LookupWorkers != 8 || cfg.SpeechSpeed != 1.25 {
		t.Fatalf("environment not applied: %+v", cfg)
	}
	if len(cfg.FallbackTranslations) != 2 || cfg.FallbackTranslations[1] != "貓" {
		t.Fatalf("unexpected fallback pool %v", cfg.FallbackTranslations)
	}
}

func TestLoadKeepsDefaultsOnInvalidValues(t *testing.T) {
	t.Setenv("CAROUSEL_DWELL", "soon")
	t.Setenv("LOOKUP_WORKERS", "-1")
	t.Setenv("TTS_SPEED", "fast")
	t.Setenv("DEFAULT_NOTEBOOK", "Mistakes")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))
	def := DefaultConfig()
	if cfg.CarouselDwell != def.CarouselDwell || cfg.LookupWorkers != def.LookupWorkers || cfg.SpeechSpeed != def.SpeechSpeed {
		t.Fatalf("invalid values must fall back: %+v", cfg)
	}
	if cfg.DefaultNotebook != "Default" || cfg.MistakeNotebook != "Mistakes" {
		t.Fatalf("notebooks collide: %q / %q", cfg.DefaultNotebook, cfg.MistakeNotebook)
	}
}

func TestLoadSeparatesCollidingNotebooks(t *testing.T) {
	tests := []struct {
		name        string
		def, miss   string
		wantDefault string
		wantMistake string
	}{
		{name: "default set to built-in mistake name", def: "Mistakes", wantDefault: "Default", wantMistake: "Mistakes"},
		{name: "mistake set to built-in default name", miss: "Default", wantDefault: "Default", wantMistake: "Mistakes"},
		{name: "both set to a custom name", def: "Words", miss: "Words", wantDefault: "Words", wantMistake: "Mistakes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DEFAULT_NOTEBOOK", tt.def)
			t.Setenv("MISTAKE_NOTEBOOK", tt.miss)

			cfg := Load(filepath.Join(t.TempDir(), "missing.env"))
			if cfg.DefaultNotebook != tt.wantDefault || cfg.MistakeNotebook != tt.wantMistake {
				t.Fatalf("got %q / %q, want %q / %q", cfg.DefaultNotebook, cfg.MistakeNotebook, tt.wantDefault, tt.wantMistake)
			}
		})
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("MISTAKE_NOTEBOOK=Review\nSUPABASE_BUCKET=audio\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("MISTAKE_NOTEBOOK")
		os.Unsetenv("SUPABASE_BUCKET")
	})

	cfg := Load(path)
	if cfg.MistakeNotebook != "Review" || cfg.SupabaseBucket != "audio" {
		t.Fatalf(".env not applied: %+v", cfg)
	}
}
