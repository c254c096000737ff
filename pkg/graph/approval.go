package graph

// ApprovalMode mirrors config.ApprovalGlobalMode's values without pkg/graph
// importing pkg/config (see LimitsView in router.go for the same reason).
type ApprovalMode string

const (
	ApprovalDisabled ApprovalMode = "disabled"
	ApprovalSelective ApprovalMode = "selective"
	ApprovalWritesOnly ApprovalMode = "writes_only"
	ApprovalAll ApprovalMode = "all_capabilities"
)

// OperationFeatures is the small set of code/operation features detected
// upstream — typically a code
// executor's static-analysis flags (pkg/codeexec.PythonExecutionRequest.
// StaticAnalysisFlags) folded into HasWrites/Sensitive by the capability.
type OperationFeatures struct {
	HasWrites bool
	Sensitive bool
}

// ApprovalPolicy maps a configured mode to a boolean decision for one
// capability invocation. ModeFor is
// supplied by the caller so this package doesn't depend on pkg/config;
// wire it to config.ApprovalConfig.ModeFor in cmd/osprey.
type ApprovalPolicy struct {
	ModeFor func(capabilityName string) ApprovalMode
}

// RequiresApproval reports whether capabilityName's invocation, given the
// detected features, must suspend for human approval before proceeding.
func (p ApprovalPolicy) RequiresApproval(capabilityName string, features OperationFeatures) bool {
	if p.ModeFor == nil {
 return false
	}
	switch p.ModeFor(capabilityName) {
	case ApprovalAll:
 return true
	case ApprovalWritesOnly:
 return features.HasWrites
	case ApprovalSelective:
 return features.HasWrites || features.Sensitive
	default: // ApprovalDisabled, ""
 return false
	}
}

// Notifier pushes an approval request to an external channel so a human
// can act on it — a UI, CLI prompt, or HTTP endpoint — backed here by
// pkg/slack.Service.
type Notifier interface {
	NotifyApprovalRequested(capabilityName, operationSummary string, safetyConcerns []string) error
}

// NoopNotifier discards notifications; the default when no webhook is
// configured (approval.notify_webhook_url is optional).
type NoopNotifier struct{}

func (NoopNotifier) NotifyApprovalRequested(string, string, []string) error { return nil }
