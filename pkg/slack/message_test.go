package slack

import (
	"strings"
	"testing"

	goslack "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildApprovalMessage_WithSafetyConcerns(t *testing.T) {
	blocks := BuildApprovalMessage("channel_write", "set BEAM:CURRENT to 5.0", []string{"direct hardware write"})

	require.Len(t, blocks, 2)

	header, ok := blocks[0].(*goslack.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, header.Text.Text, ":warning:")
	assert.Contains(t, header.Text.Text, "channel_write")
	assert.Contains(t, header.Text.Text, "set BEAM:CURRENT to 5.0")

	concerns, ok := blocks[1].(*goslack.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, concerns.Text.Text, "direct hardware write")
}

func TestBuildApprovalMessage_NoSafetyConcerns(t *testing.T) {
	blocks := BuildApprovalMessage("channel_write", "set BEAM:CURRENT to 5.0", nil)
	require.Len(t, blocks, 1)
}

func TestTruncateForSlack(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", truncateForSlack("hello"))
	})

	t.Run("exact limit unchanged", func(t *testing.T) {
		text := strings.Repeat("a", maxBlockTextLength)
		assert.Equal(t, text, truncateForSlack(text))
	})

	t.Run("over limit truncated", func(t *testing.T) {
		text := strings.Repeat("a", maxBlockTextLength+100)
		result := truncateForSlack(text)
		assert.True(t, len(result) < len(text))
		assert.Contains(t, result, "truncated")
	})
}
