package config

import "testing"

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		LLM: LLMConfig{APIKey: "test-key"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing llm api key")
	}
}

func TestValidate_RowCapBounds(t *testing.T) {
	for _, cap := range []int{99, 301} {
		cfg := validConfig()
		cfg.Search.RefineRowCap = cap
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for row cap %d", cap)
		}
	}
	for _, cap := range []int{100, 300} {
		cfg := validConfig()
		cfg.Search.RefineRowCap = cap
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error for row cap %d: %v", cap, err)
		}
	}
}

func TestValidate_PageExceedsBatch(t *testing.T) {
	cfg := validConfig()
	cfg.Search.PageSize = 60
	cfg.Search.BatchSize = 50

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for page_size > batch_size")
	}
}

func TestValidate_TierThresholdOrder(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Tier2MinPool = 5
	cfg.Search.Tier3MinPool = 10

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for tier3_min_pool > tier2_min_pool")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 180 {
		t.Errorf("expected WriteTimeoutSec=180, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.LLM.RerankModel != cfg.LLM.CompileModel {
		t.Errorf("rerank model must default to compile model, got %q", cfg.LLM.RerankModel)
	}
	if cfg.Search.PageSize != 10 {
		t.Errorf("expected PageSize=10, got %d", cfg.Search.PageSize)
	}
	if cfg.Search.BatchSize != 50 {
		t.Errorf("expected BatchSize=50, got %d", cfg.Search.BatchSize)
	}
	if cfg.Search.RefineRowCap != 200 {
		t.Errorf("expected RefineRowCap=200, got %d", cfg.Search.RefineRowCap)
	}
	if cfg.Search.PollIntervalMs != 1500 {
		t.Errorf("expected PollIntervalMs=1500, got %d", cfg.Search.PollIntervalMs)
	}
	if cfg.Search.ExecutionBudgetSec != 90 {
		t.Errorf("expected ExecutionBudgetSec=90, got %d", cfg.Search.ExecutionBudgetSec)
	}
	if cfg.Search.ScoreSumFloor != 10 {
		t.Errorf("expected ScoreSumFloor=10, got %d", cfg.Search.ScoreSumFloor)
	}
	if cfg.Storage.KeyPrefix != "talentdex:" {
		t.Errorf("expected KeyPrefix='talentdex:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Search:   SearchConfig{PageSize: 5, BatchSize: 25, RefineRowCap: 150},
		Storage:  StorageConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Search.PageSize != 5 || cfg.Search.BatchSize != 25 || cfg.Search.RefineRowCap != 150 {
		t.Errorf("search overrides lost: %+v", cfg.Search)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TALENTDEX_TEST_ADDR", "db.internal:6379")

	got := string(expandEnvVars([]byte("addr: ${TALENTDEX_TEST_ADDR}\nkey: ${TALENTDEX_TEST_UNSET:-fallback}\n")))
	want := "addr: db.internal:6379\nkey: fallback\n"
	if got != want {
		t.Errorf("expandEnvVars:\n got %q\nwant %q", got, want)
	}
}
