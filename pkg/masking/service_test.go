package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ospreyai/osprey/pkg/config"
)

func TestMask_RedactsConfiguredPatterns(t *testing.T) {
	svc := New(config.MaskingConfig{Enabled: true, PatternGroup: "basic"})
	input := `api_key: "sk-abcdefghijklmnopqrstuvwx"`
	got := svc.Mask(input)
	assert.Contains(t, got, "[MASKED_API_KEY]")
	assert.NotContains(t, got, "sk-abcdefghijklmnopqrstuvwx")
}

func TestMask_NilServiceIsIdentity(t *testing.T) {
	var svc *Service
	assert.Equal(t, "still here", svc.Mask("still here"))
}

func TestMask_EmptyContentShortCircuits(t *testing.T) {
	svc := New(config.MaskingConfig{Enabled: true, PatternGroup: "all"})
	assert.Equal(t, "", svc.Mask(""))
}

func TestMask_KubernetesSecretAppliesCodeMaskerBeforeRegex(t *testing.T) {
	svc := New(config.MaskingConfig{Enabled: true, PatternGroup: "kubernetes"})
	input := "apiVersion: v1\nkind: Secret\nmetadata:\n  name: creds\ndata:\n  token: c2VjcmV0\n"
	got := svc.Mask(input)
	assert.Contains(t, got, MaskedSecretValue)
	assert.NotContains(t, got, "c2VjcmV0")
}
