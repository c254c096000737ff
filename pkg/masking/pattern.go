package masking

import (
	"regexp"
)

// CompiledPattern holds a pre-compiled regex pattern with its replacement.
type CompiledPattern struct {
	Name string
	Regex *regexp.Regexp
	Replacement string
	Description string
}

// maskingPattern is the uncompiled form of a built-in regex pattern.
type maskingPattern struct {
	Pattern string
	Replacement string
	Description string
}

// builtinPatterns are the regex-based secret patterns Osprey recognizes
// out of the box, since leaked API keys, tokens, and certificates look
// the same regardless of domain.
var builtinPatterns = map[string]maskingPattern{
	"api_key": {
 Pattern: `(?i)(?:api[_-]?key|apikey|key)["\']?\s*[:=]\s*["\']?([A-Za-z0-9_\-]{20,})["\']?`,
 Replacement: `"api_key": "[MASKED_API_KEY]"`,
 Description: "API keys",
	},
	"password": {
 Pattern: `(?i)(?:password|pwd|pass)["\']?\s*[:=]\s*["\']?([^"\'\s\n]{6,})["\']?`,
 Replacement: `"password": "[MASKED_PASSWORD]"`,
 Description: "Passwords",
	},
	"certificate": {
 Pattern: `(?s)-----BEGIN [A-Z ]+-----.*?-----END [A-Z ]+-----`,
 Replacement: `[MASKED_CERTIFICATE]`,
 Description: "SSL/TLS certificates",
	},
	"token": {
 Pattern: `(?i)(?:token|bearer|jwt)["\']?\s*[:=]\s*["\']?([A-Za-z0-9_\-\.]{20,})["\']?`,
 Replacement: `"token": "[MASKED_TOKEN]"`,
 Description: "Access tokens",
	},
	"email": {
 Pattern: `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9]+(?:[.-][A-Za-z0-9]+)*\.[A-Za-z]{2,63}\b`,
 Replacement: `[MASKED_EMAIL]`,
 Description: "Email addresses",
	},
	"ssh_key": {
 Pattern: `ssh-(?:rsa|dss|ed25519|ecdsa)\s+[A-Za-z0-9+/=]+`,
 Replacement: `[MASKED_SSH_KEY]`,
 Description: "SSH public keys",
	},
	"private_key": {
 Pattern: `(?i)(?:private[_-]?key)["\']?\s*[:=]\s*["\']?([A-Za-z0-9_\-\.]{20,})["\']?`,
 Replacement: `"private_key": "[MASKED_PRIVATE_KEY]"`,
 Description: "Private keys",
	},
	"secret_key": {
 Pattern: `(?i)(?:secret[_-]?key)["\']?\s*[:=]\s*["\']?([A-Za-z0-9_\-\.]{20,})["\']?`,
 Replacement: `"secret_key": "[MASKED_SECRET_KEY]"`,
 Description: "Secret keys",
	},
	"aws_access_key": {
 Pattern: `(?i)(?:aws[_-]?access[_-]?key[_-]?id)["\']?\s*[:=]\s*["\']?(AKIA[A-Z0-9]{16})["\']?`,
 Replacement: `"aws_access_key_id": "[MASKED_AWS_KEY]"`,
 Description: "AWS access keys",
	},
	"aws_secret_key": {
 Pattern: `(?i)(?:aws[_-]?secret[_-]?access[_-]?key)["\']?\s*[:=]\s*["\']?([A-Za-z0-9/+=]{40})["\']?`,
 Replacement: `"aws_secret_access_key": "[MASKED_AWS_SECRET]"`,
 Description: "AWS secret keys",
	},
	"slack_token": {
 Pattern: `(?i)xox[baprs]-[A-Za-z0-9-]{10,72}`,
 Replacement: `[MASKED_SLACK_TOKEN]`,
 Description: "Slack tokens",
	},
}

// builtinCodeMaskers names the code-based (structural) maskers a group may
// reference alongside regex patterns.
var builtinCodeMaskers = map[string]bool{
	"kubernetes_secret": true,
}

// builtinPatternGroups are the predefined pattern bundles
// `masking.pattern_group` in config selects between. Facility
// control stacks frequently run on Kubernetes, so archived pod logs or
// connector dumps can carry Secret manifests alongside plain API keys —
// the "kubernetes" group covers both.
var builtinPatternGroups = map[string][]string{
	"basic": {"api_key", "password"},
	"secrets": {"api_key", "password", "token", "private_key", "secret_key"},
	"security": {"api_key", "password", "token", "certificate", "email", "ssh_key"},
	"kubernetes": {"kubernetes_secret", "api_key", "password"},
	"cloud": {"aws_access_key", "aws_secret_key", "api_key", "token"},
	"all": {
 "api_key", "password", "certificate", "email", "token", "ssh_key",
 "private_key", "secret_key", "aws_access_key", "aws_secret_key",
 "slack_token", "kubernetes_secret",
	},
}
