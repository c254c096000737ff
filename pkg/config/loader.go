package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlConfig mirrors the on-disk osprey.yaml shape. Fields are plain
// structs/maps so yaml.v3 can unmarshal directly; Initialize translates
// this into the typed Config.
type yamlConfig struct {
	ProjectName string `yaml:"project_name"`
	RegistryPath string `yaml:"registry_path"`
	Models map[string]yamlModel `yaml:"models"`
	AgentControl yamlAgentControl `yaml:"agent_control"`
	Approval yamlApproval `yaml:"approval"`
	Development yamlDevelopment `yaml:"development"`
	Retention yamlRetention `yaml:"retention"`
	Masking MaskingConfig `yaml:"masking"`
	HTTP HTTPConfig `yaml:"http"`
	Database yamlDatabase `yaml:"database"`
	Checkpointer CheckpointerConfig `yaml:"checkpointer"`
	DataSource yamlDataSource `yaml:"data_source"`
	Queue yamlQueue `yaml:"queue"`
}

type yamlQueue struct {
	WorkerCount *int `yaml:"worker_count"`
	QueueDepth *int `yaml:"queue_depth"`
	TurnTimeout string `yaml:"turn_timeout"`
}

type yamlDataSource struct {
	RepoURL string `yaml:"repo_url"`
	GitHubToken string `yaml:"github_token"`
	CacheTTL string `yaml:"cache_ttl"`
	AllowedDomains []string `yaml:"allowed_domains"`
	DefaultContent string `yaml:"default_content"`
}

type yamlModel struct {
	Provider string `yaml:"provider"`
	Model string `yaml:"model"`
}

type yamlAgentControl struct {
	Limits yamlLimits `yaml:"limits"`
	Bypass BypassConfig `yaml:"bypass"`
}

type yamlLimits struct {
	MaxExecutionRetries *int `yaml:"max_execution_retries"`
	MaxReclassifications *int `yaml:"max_reclassifications"`
	MaxConcurrentClassifications *int `yaml:"max_concurrent_classifications"`
	MaxGenerationRetries *int `yaml:"max_generation_retries"`
	MaxSummaryChars *int `yaml:"max_summary_chars"`
}

type yamlApproval struct {
	GlobalMode ApprovalGlobalMode `yaml:"global_mode"`
	Capabilities map[string]yamlApprovalCap `yaml:"capabilities"`
	NotifyWebhookURL string `yaml:"notify_webhook_url"`
}

type yamlApprovalCap struct {
	Mode ApprovalGlobalMode `yaml:"mode"`
}

type yamlDevelopment struct {
	APICalls struct {
 Log bool `yaml:"log"`
 LogPath string `yaml:"log_path"`
	} `yaml:"api_calls"`
}

type yamlRetention struct {
	SessionRetentionDays *int `yaml:"session_retention_days"`
	CheckpointTTL string `yaml:"checkpoint_ttl"`
	CleanupInterval string `yaml:"cleanup_interval"`
}

type yamlDatabase struct {
	Host string `yaml:"host"`
	Port int `yaml:"port"`
	User string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode string `yaml:"sslmode"`
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
}

// Initialize loads, expands, and validates the project configuration
// rooted at configDir/osprey.yaml. This is the primary entry point,
// mirroring load sequence: load, expand ${VAR} references,
// parse, apply defaults, validate.
func Initialize(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing osprey configuration")

	raw, err := loadYAML(configDir, "osprey.yaml")
	if err != nil {
 return nil, NewLoadError("osprey.yaml", err)
	}

	cfg, err := resolve(raw)
	if err != nil {
 return nil, err
	}

	if err := Validate(cfg); err != nil {
 return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	log.Info("configuration initialized",
 "project", cfg.ProjectName,
 "registry_path", cfg.RegistryPath,
 "checkpointer_backend", cfg.Checkpointer.Backend)
	return cfg, nil
}

func loadYAML(configDir, filename string) (*yamlConfig, error) {
	path := filepath.Join(configDir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
 if os.IsNotExist(err) {
 return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
 }
 return nil, err
	}

	data = ExpandEnv(data)

	var cfg yamlConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
 return nil, fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}
	return &cfg, nil
}

func resolve(raw *yamlConfig) (*Config, error) {
	limits := DefaultLimits()
	if v := raw.AgentControl.Limits.MaxExecutionRetries; v != nil {
 limits.MaxExecutionRetries = *v
	}
	if v := raw.AgentControl.Limits.MaxReclassifications; v != nil {
 limits.MaxReclassifications = *v
	}
	if v := raw.AgentControl.Limits.MaxConcurrentClassifications; v != nil {
 limits.MaxConcurrentClassifications = *v
	}
	if v := raw.AgentControl.Limits.MaxGenerationRetries; v != nil {
 limits.MaxGenerationRetries = *v
	}
	if v := raw.AgentControl.Limits.MaxSummaryChars; v != nil {
 limits.MaxSummaryChars = *v
	}

	models := ModelsConfig{Roles: make(map[ModelRole]ModelSelection, len(raw.Models))}
	for role, sel := range raw.Models {
 models.Roles[ModelRole(role)] = ModelSelection{Provider: sel.Provider, Model: sel.Model}
	}

	approvalCaps := make(map[string]ApprovalGlobalMode, len(raw.Approval.Capabilities))
	for name, cap := range raw.Approval.Capabilities {
 approvalCaps[name] = cap.Mode
	}
	globalMode := raw.Approval.GlobalMode
	if globalMode == "" {
 globalMode = ApprovalModeDisabled
	}

	retention := DefaultRetention()
	if raw.Retention.CheckpointTTL != "" {
 d, err := time.ParseDuration(raw.Retention.CheckpointTTL)
 if err != nil {
 return nil, NewValidationError("retention", "checkpoint_ttl", err)
 }
 retention.CheckpointTTL = d
	}
	if raw.Retention.CleanupInterval != "" {
 d, err := time.ParseDuration(raw.Retention.CleanupInterval)
 if err != nil {
 return nil, NewValidationError("retention", "cleanup_interval", err)
 }
 retention.CleanupInterval = d
	}

	httpCfg := raw.HTTP
	if httpCfg.ListenAddr == "" {
 httpCfg = DefaultHTTP()
	}

	db := DefaultDatabase()
	if raw.Database.Host != "" {
 db.Host = raw.Database.Host
	}
	if raw.Database.Port != 0 {
 db.Port = raw.Database.Port
	}
	if raw.Database.User != "" {
 db.User = raw.Database.User
	}
	if raw.Database.Password != "" {
 db.Password = raw.Database.Password
	}
	if raw.Database.Database != "" {
 db.Database = raw.Database.Database
	}
	if raw.Database.SSLMode != "" {
 db.SSLMode = raw.Database.SSLMode
	}
	if raw.Database.MaxOpenConns != 0 {
 db.MaxOpenConns = raw.Database.MaxOpenConns
	}
	if raw.Database.MaxIdleConns != 0 {
 db.MaxIdleConns = raw.Database.MaxIdleConns
	}
	if raw.Database.ConnMaxLifetime != "" {
 d, err := time.ParseDuration(raw.Database.ConnMaxLifetime)
 if err != nil {
 return nil, NewValidationError("database", "conn_max_lifetime", err)
 }
 db.ConnMaxLifetime = d
	}

	checkpointer := raw.Checkpointer
	if checkpointer.Backend == "" {
 checkpointer.Backend = CheckpointerBackendMemory
	}

	dataSource := DataSourceConfig{
 RepoURL: raw.DataSource.RepoURL,
 GitHubToken: raw.DataSource.GitHubToken,
 AllowedDomains: raw.DataSource.AllowedDomains,
 DefaultContent: raw.DataSource.DefaultContent,
 CacheTTL: time.Minute,
	}
	if raw.DataSource.CacheTTL != "" {
 d, err := time.ParseDuration(raw.DataSource.CacheTTL)
 if err != nil {
 return nil, NewValidationError("data_source", "cache_ttl", err)
 }
 dataSource.CacheTTL = d
	}

	queue := DefaultQueue()
	if v := raw.Queue.WorkerCount; v != nil {
 queue.WorkerCount = *v
	}
	if v := raw.Queue.QueueDepth; v != nil {
 queue.QueueDepth = *v
	}
	if raw.Queue.TurnTimeout != "" {
 d, err := time.ParseDuration(raw.Queue.TurnTimeout)
 if err != nil {
 return nil, NewValidationError("queue", "turn_timeout", err)
 }
 queue.TurnTimeout = d
	}

	return &Config{
 ProjectName: raw.ProjectName,
 RegistryPath: raw.RegistryPath,
 Models: models,
 AgentControl: AgentControlConfig{Limits: limits, Bypass: raw.AgentControl.Bypass},
 Approval: ApprovalConfig{
 GlobalMode: globalMode,
 Capabilities: approvalCaps,
 NotifyWebhookURL: raw.Approval.NotifyWebhookURL,
 },
 Development: DevelopmentConfig{
 LogAPICalls: raw.Development.APICalls.Log,
 APICallsLogPath: raw.Development.APICalls.LogPath,
 },
 Retention: retention,
 Masking: raw.Masking,
 HTTP: httpCfg,
 Database: db,
 Checkpointer: checkpointer,
 DataSource: dataSource,
 Queue: queue,
	}, nil
}
