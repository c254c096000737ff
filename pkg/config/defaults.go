package config

import "time"

// DefaultLimits returns the limits names as defaults.
func DefaultLimits() LimitsConfig {
	return LimitsConfig{
 MaxExecutionRetries: 3,
 MaxReclassifications: 2,
 MaxConcurrentClassifications: 5,
 MaxGenerationRetries: 3,
 MaxSummaryChars: 4000,
	}
}

// DefaultRetention returns the default checkpoint/event retention policy.
func DefaultRetention() RetentionConfig {
	return RetentionConfig{
 CheckpointTTL: 30 * 24 * time.Hour,
 CleanupInterval: 1 * time.Hour,
	}
}

// DefaultHTTP returns the default HTTP listen configuration.
func DefaultHTTP() HTTPConfig {
	return HTTPConfig{ListenAddr: ":8080"}
}

// DefaultDatabase returns the default pgx pool configuration.
func DefaultDatabase() DatabaseConfig {
	return DatabaseConfig{
 SSLMode: "disable",
 MaxOpenConns: 10,
 MaxIdleConns: 5,
 ConnMaxLifetime: 30 * time.Minute,
	}
}

// DefaultQueue returns the default turn-dispatch worker pool sizing.
func DefaultQueue() QueueConfig {
	return QueueConfig{
 WorkerCount: 4,
 QueueDepth: 64,
 TurnTimeout: 5 * time.Minute,
	}
}
