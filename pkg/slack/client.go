// Package slack posts approval-request notifications to a Slack channel,
// implementing the pkg/graph.Notifier seam: it notifies an external
// channel when a capability's invocation requires human approval.
package slack

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goslack "github.com/slack-go/slack"
)

// Client is a thin wrapper around the slack-go SDK.
type Client struct {
	api *goslack.Client
	channelID string
	logger *slog.Logger
}

// NewClient creates a new Slack API client.
func NewClient(token, channelID string) *Client {
	return &Client{
 api: goslack.New(token),
 channelID: channelID,
 logger: slog.Default().With("component", "slack-client"),
	}
}

// NewClientWithAPIURL creates a Slack API client that targets a custom API URL.
// Useful for testing with a mock server.
func NewClientWithAPIURL(token, channelID, apiURL string) *Client {
	return &Client{
 api: goslack.New(token, goslack.OptionAPIURL(apiURL)),
 channelID: channelID,
 logger: slog.Default().With("component", "slack-client"),
	}
}

// PostMessage sends a message to the configured channel.
func (c *Client) PostMessage(ctx context.Context, blocks []goslack.Block, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, _, err := c.api.PostMessageContext(ctx, c.channelID, goslack.MsgOptionBlocks(blocks...))
	if err != nil {
 return fmt.Errorf("chat.postMessage failed: %w", err)
	}
	return nil
}
