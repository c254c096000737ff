// Package config loads and validates the single project configuration
// file (osprey.yaml + a companion llm-providers.yaml). It does not hold
// the component registry itself (that is pkg/registry) — it only
// resolves the project-wide settings the registry loader and graph
// runtime need: the registry provider's location, model role
// assignments, retry/concurrency limits, bypass flags, approval policy,
// and ambient infrastructure (retention, masking, HTTP, database).
package config

import "time"

// Config is the fully resolved project configuration, ready for use.
type Config struct {
	ProjectName string
	RegistryPath string

	Models ModelsConfig
	AgentControl AgentControlConfig
	Approval ApprovalConfig
	Development DevelopmentConfig
	Retention RetentionConfig
	Masking MaskingConfig
	HTTP HTTPConfig
	Database DatabaseConfig
	Checkpointer CheckpointerConfig
	DataSource DataSourceConfig
	Queue QueueConfig
}

// ModelRole names one of the per-role model selections.
type ModelRole string

const (
	ModelRoleClassifier ModelRole = "classifier"
	ModelRoleOrchestrator ModelRole = "orchestrator"
	ModelRoleTaskExtraction ModelRole = "task_extraction"
	ModelRoleResponse ModelRole = "response"
	ModelRoleClarify ModelRole = "clarify"
	ModelRoleError ModelRole = "error"
	ModelRoleChannelFinder ModelRole = "channel_finder"
	ModelRoleCodeGenerator ModelRole = "code_generator"
)

// ModelSelection names a provider + model id for one role.
type ModelSelection struct {
	Provider string `yaml:"provider"`
	Model string `yaml:"model"`
}

// ModelsConfig holds the per-role model selections.
type ModelsConfig struct {
	Roles map[ModelRole]ModelSelection `yaml:"-"`
}

// RoleFor returns the model selection for a role, and whether one was
// configured.
func (m ModelsConfig) RoleFor(role ModelRole) (ModelSelection, bool) {
	sel, ok := m.Roles[role]
	return sel, ok
}

// LimitsConfig bounds retries, reclassification, and classification
// concurrency (agent_control.limits.*).
type LimitsConfig struct {
	MaxExecutionRetries int `yaml:"max_execution_retries"`
	MaxReclassifications int `yaml:"max_reclassifications"`
	MaxConcurrentClassifications int `yaml:"max_concurrent_classifications"`
	MaxGenerationRetries int `yaml:"max_generation_retries"`
	MaxSummaryChars int `yaml:"max_summary_chars"`
}

// BypassConfig toggles deterministic substitutes for LLM-backed
// preprocessing nodes (agent_control.bypass.*).
type BypassConfig struct {
	TaskExtraction bool `yaml:"task_extraction"`
	Classification bool `yaml:"classification"`
}

// AgentControlConfig groups the runtime limits and bypass flags.
type AgentControlConfig struct {
	Limits LimitsConfig `yaml:"limits"`
	Bypass BypassConfig `yaml:"bypass"`
}

// ApprovalGlobalMode is the top-level approval policy.
type ApprovalGlobalMode string

const (
	ApprovalModeDisabled ApprovalGlobalMode = "disabled"
	ApprovalModeSelective ApprovalGlobalMode = "selective"
	ApprovalModeAll ApprovalGlobalMode = "all_capabilities"
	ApprovalModeWritesOnly ApprovalGlobalMode = "writes_only"
)

// ApprovalConfig resolves approval policy, optionally overridden per
// capability.
type ApprovalConfig struct {
	GlobalMode ApprovalGlobalMode `yaml:"global_mode"`
	Capabilities map[string]ApprovalGlobalMode `yaml:"-"`
	NotifyWebhookURL string `yaml:"notify_webhook_url"`
}

// ModeFor resolves the effective approval mode for a capability,
// honoring a per-capability override.
func (a ApprovalConfig) ModeFor(capability string) ApprovalGlobalMode {
	if mode, ok := a.Capabilities[capability]; ok {
 return mode
	}
	if a.GlobalMode == "" {
 return ApprovalModeDisabled
	}
	return a.GlobalMode
}

// DevelopmentConfig controls LLM call transcript logging
// (development.api_calls.*).
type DevelopmentConfig struct {
	LogAPICalls bool `yaml:"log_api_calls"`
	APICallsLogPath string `yaml:"api_calls_log_path"`
}

// RetentionConfig bounds how long checkpoints and stream events are kept.
type RetentionConfig struct {
	CheckpointTTL time.Duration `yaml:"checkpoint_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// MaskingConfig toggles secret redaction in logs/prompts/ui artifacts.
type MaskingConfig struct {
	Enabled bool `yaml:"enabled"`
	PatternGroup string `yaml:"pattern_group"`
}

// HTTPConfig configures the gateway's HTTP server.
type HTTPConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// CheckpointerBackend selects which Checkpointer implementation the
// runtime constructs.
type CheckpointerBackend string

const (
	CheckpointerBackendMemory CheckpointerBackend = "memory"
	CheckpointerBackendPostgres CheckpointerBackend = "postgres"
)

// CheckpointerConfig selects and configures the checkpoint backend.
type CheckpointerConfig struct {
	Backend CheckpointerBackend `yaml:"backend"`
}

// DatabaseConfig configures the pgx connection used by the postgres
// checkpointer backend.
type DatabaseConfig struct {
	Host string `yaml:"host"`
	Port int `yaml:"port"`
	User string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode string `yaml:"sslmode"`

	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// QueueConfig bounds the in-process worker pool that dispatches turns to
// the graph runtime.
// Turns for the same thread are always serialized regardless of
// WorkerCount; WorkerCount only bounds how many distinct threads run
// concurrently.
type QueueConfig struct {
	WorkerCount int `yaml:"worker_count"`
	QueueDepth int `yaml:"queue_depth"`
	TurnTimeout time.Duration `yaml:"turn_timeout"`
}

// DataSourceConfig configures the built-in GitHub-backed DataSource
// (optional data-source-provider enrichment of task
// extraction): where to fetch from, how long to cache it, and which
// hosts are permitted.
type DataSourceConfig struct {
	RepoURL string `yaml:"repo_url"`
	GitHubToken string `yaml:"github_token"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	AllowedDomains []string `yaml:"allowed_domains"`
	DefaultContent string `yaml:"default_content"`
}
