package config

import "fmt"

// Validate performs cross-field validation on a resolved Config. It does
// not know about the component registry (pkg/registry validates
// cross-references against it separately); this pass only checks the
// project configuration is internally consistent.
func Validate(cfg *Config) error {
	if cfg.RegistryPath == "" {
		return NewValidationError("registry", "registry_path", ErrMissingRequiredField)
	}

	if cfg.AgentControl.Limits.MaxExecutionRetries < 0 {
		return NewValidationError("agent_control.limits", "max_execution_retries", ErrInvalidValue)
	}
	if cfg.AgentControl.Limits.MaxReclassifications < 0 {
		return NewValidationError("agent_control.limits", "max_reclassifications", ErrInvalidValue)
	}
	if cfg.AgentControl.Limits.MaxConcurrentClassifications < 1 {
		return NewValidationError("agent_control.limits", "max_concurrent_classifications", ErrInvalidValue)
	}

	switch cfg.Approval.GlobalMode {
	case ApprovalModeDisabled, ApprovalModeSelective, ApprovalModeAll, ApprovalModeWritesOnly:
	default:
		return NewValidationError("approval", "global_mode",
			fmt.Errorf("%w: %q", ErrInvalidValue, cfg.Approval.GlobalMode))
	}
	for name, mode := range cfg.Approval.Capabilities {
		switch mode {
		case ApprovalModeDisabled, ApprovalModeSelective, ApprovalModeAll, ApprovalModeWritesOnly:
		default:
			return NewValidationError("approval.capabilities."+name, "mode",
				fmt.Errorf("%w: %q", ErrInvalidValue, mode))
		}
	}

	switch cfg.Checkpointer.Backend {
	case CheckpointerBackendMemory:
	case CheckpointerBackendPostgres:
		if cfg.Database.Host == "" {
			return NewValidationError("database", "host", ErrMissingRequiredField)
		}
		if cfg.Database.Database == "" {
			return NewValidationError("database", "database", ErrMissingRequiredField)
		}
	default:
		return NewValidationError("checkpointer", "backend",
			fmt.Errorf("%w: %q", ErrInvalidValue, cfg.Checkpointer.Backend))
	}

	if cfg.Retention.CheckpointTTL <= 0 {
		return NewValidationError("retention", "checkpoint_ttl", ErrInvalidValue)
	}
	if cfg.Retention.CleanupInterval <= 0 {
		return NewValidationError("retention", "cleanup_interval", ErrInvalidValue)
	}

	if cfg.Queue.WorkerCount < 1 {
		return NewValidationError("queue", "worker_count", ErrInvalidValue)
	}
	if cfg.Queue.QueueDepth < 1 {
		return NewValidationError("queue", "queue_depth", ErrInvalidValue)
	}
	if cfg.Queue.TurnTimeout <= 0 {
		return NewValidationError("queue", "turn_timeout", ErrInvalidValue)
	}

	return nil
}
