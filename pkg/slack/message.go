package slack

import (
	"fmt"
	"strings"

	goslack "github.com/slack-go/slack"
)

const maxBlockTextLength = 2900

// BuildApprovalMessage creates Block Kit blocks for an approval-request
// notification. The rendered message names the capability, the operation
// it wants to perform, and any safety concerns the capability flagged —
// there is no Approve/Deny button here, since Slack block actions would
// need an interactivity endpoint this package doesn't run; approval
// itself happens through the gateway's resume call, and this message is
// informational only.
func BuildApprovalMessage(capabilityName, operationSummary string, safetyConcerns []string) []goslack.Block {
	headerText := fmt.Sprintf(":warning: *Approval requested — %s*\n%s", capabilityName, truncateForSlack(operationSummary))

	blocks := []goslack.Block{
 goslack.NewSectionBlock(goslack.NewTextBlockObject(goslack.MarkdownType, headerText, false, false),
 nil, nil,),
	}

	if len(safetyConcerns) > 0 {
 concernsText := fmt.Sprintf("*Safety concerns:*\n- %s", strings.Join(safetyConcerns, "\n- "))
 blocks = append(blocks, goslack.NewSectionBlock(goslack.NewTextBlockObject(goslack.MarkdownType, truncateForSlack(concernsText), false, false),
 nil, nil,))
	}

	return blocks
}

func truncateForSlack(text string) string {
	if len(text) <= maxBlockTextLength {
 return text
	}
	return text[:maxBlockTextLength] + "\n\n_... (truncated)_"
}
