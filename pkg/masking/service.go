// Package masking redacts secrets from connector output and prompt/log
// text before it leaves the process, per `masking.enabled` /
// `masking.pattern_group` settings.
package masking

import (
	"log/slog"
	"regexp"

	"github.com/ospreyai/osprey/pkg/config"
)

// Masker is a code-based (structural) masking strategy, for content a
// single regex can't safely express — e.g. masking only the data fields
// of a Kubernetes Secret manifest without disturbing the rest of it.
type Masker interface {
	Name() string
	AppliesTo(data string) bool
	Mask(data string) string
}

// Service applies a configured pattern group's regex patterns and code
// maskers to text. Created once at startup; thread-safe and stateless
// aside from its compiled patterns.
type Service struct {
	enabled bool
	patterns []*CompiledPattern
	codeMaskers []Masker
}

// New compiles the pattern group cfg.PatternGroup names. An unknown group
// name or a disabled config yields a Service whose Mask is the identity
// function — masking is an advisory safety net, not a hard gate, so a
// misconfigured group degrades to "mask nothing" rather than failing
// startup.
func New(cfg config.MaskingConfig) *Service {
	s := &Service{enabled: cfg.Enabled}
	if !cfg.Enabled {
 return s
	}

	names, ok := builtinPatternGroups[cfg.PatternGroup]
	if !ok {
 slog.Warn("masking: unknown pattern group, masking disabled", "group", cfg.PatternGroup)
 s.enabled = false
 return s
	}

	for _, name := range names {
 if builtinCodeMaskers[name] {
 if name == "kubernetes_secret" {
 s.codeMaskers = append(s.codeMaskers, &KubernetesSecretMasker{})
 }
 continue
 }
 p, ok := builtinPatterns[name]
 if !ok {
 continue
 }
 compiled, err := regexp.Compile(p.Pattern)
 if err != nil {
 slog.Error("masking: failed to compile pattern, skipping", "pattern", name, "error", err)
 continue
 }
 s.patterns = append(s.patterns, &CompiledPattern{
 Name: name, Regex: compiled, Replacement: p.Replacement, Description: p.Description,
 })
	}

	slog.Info("masking service initialized",
 "group", cfg.PatternGroup, "regex_patterns", len(s.patterns), "code_maskers", len(s.codeMaskers))
	return s
}

// Mask applies every compiled pattern/masker in the configured group to
// content, returning the redacted text. A nil Service (or one built from
// a disabled config) returns content unchanged.
func (s *Service) Mask(content string) string {
	if s == nil || !s.enabled || content == "" {
 return content
	}

	masked := content
	for _, m := range s.codeMaskers {
 if m.AppliesTo(masked) {
 masked = m.Mask(masked)
 }
	}
	for _, p := range s.patterns {
 masked = p.Regex.ReplaceAllString(masked, p.Replacement)
	}
	return masked
}
