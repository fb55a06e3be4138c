package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Corpus.TextPath != "text.txt" {
		t.Errorf("TextPath = %q, want text.txt", cfg.Corpus.TextPath)
	}
	if cfg.Corpus.StopwordsPath != "stopWords.txt" {
		t.Errorf("StopwordsPath = %q, want stopWords.txt", cfg.Corpus.StopwordsPath)
	}
	if !cfg.Corpus.SkipBlankLines {
		t.Error("SkipBlankLines should default to true")
	}
	if cfg.Search.DefaultLimit != 100 || cfg.Search.MaxResults != 1000 {
		t.Errorf("unexpected search limits %+v", cfg.Search)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kwic.yaml")
	data := []byte(`
corpus:
  textPath: /data/livro.txt
search:
  defaultLimit: 5
  maxResults: 50
redis:
  enabled: true
  cacheTTL: 2m
logging:
  format: json
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Corpus.TextPath != "/data/livro.txt" {
		t.Errorf("TextPath = %q", cfg.Corpus.TextPath)
	}
	if cfg.Corpus.StopwordsPath != "stopWords.txt" {
		t.Errorf("StopwordsPath should keep default, got %q", cfg.Corpus.StopwordsPath)
	}
	if cfg.Search.DefaultLimit != 5 || cfg.Search.MaxResults != 50 {
		t.Errorf("unexpected search limits %+v", cfg.Search)
	}
	if !cfg.Redis.Enabled || cfg.Redis.CacheTTL != 2*time.Minute {
		t.Errorf("unexpected redis config %+v", cfg.Redis)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KWIC_CORPUS_STOPWORDS_PATH", "/etc/kwic/stop.txt")
	t.Setenv("KWIC_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("KWIC_EXPORT_ENABLED", "true")
	t.Setenv("KWIC_SERVER_PORT", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Corpus.StopwordsPath != "/etc/kwic/stop.txt" {
		t.Errorf("StopwordsPath = %q", cfg.Corpus.StopwordsPath)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("Brokers = %v", cfg.Kafka.Brokers)
	}
	if !cfg.Export.Enabled {
		t.Error("Export.Enabled should be true")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("invalid port override should be ignored, got %d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.Search.MaxResults = 1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when maxResults < defaultLimit")
	}

	cfg = defaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown logging format")
	}

	cfg = defaultConfig()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Topics.LineIngest = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for kafka without topic")
	}
}

func TestMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
