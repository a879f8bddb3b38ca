package eval

import (
	"strings"

	"cs-agent-be/internal/constant"
)

// Keyword groups for inferring which tools a turn should have used. These are
// deliberately coarse: reliability scoring tolerates noise because it
// aggregates over many turns.
var (
	searchIntentKeywords = []string{
		"how do i", "how to", "how can", "error", "not working", "doesn't work",
		"does not work", "issue", "problem", "configure", "configuration",
		"setup", "set up", "install", "why is", "what is", "broken", "failed",
		"failing", "offline", "troubleshoot",
	}
	ticketIntentKeywords = []string{
		"create the ticket", "create a ticket", "file a ticket", "yes, create",
		"go ahead", "please proceed", "i confirm", "confirmed",
	}
	closingKeywords = []string{
		"thank you", "thanks", "that's all", "that is all", "resolved",
		"it works now", "goodbye", "bye", "reach out again",
	}
)

// ExpectedToolCalls infers the tools a well-behaved agent would invoke for
// the given exchange. Search and ticket intent live in the user message;
// closing phrasing counts from either side, because the assistant often
// closes a conversation the user never formally ended ("feel free to reach
// out again"). Returns the empty slice when neither text carries a
// recognizable intent.
func ExpectedToolCalls(userMessage, assistantReply string) []string {
	msg := strings.ToLower(userMessage)
	reply := strings.ToLower(assistantReply)

	var expected []string
	if containsAny(msg, searchIntentKeywords) {
		expected = append(expected, constant.ToolSearchDocumentation)
	}
	if containsAny(msg, ticketIntentKeywords) {
		expected = append(expected, constant.ToolCreateSupportTicket)
	}
	if containsAny(msg, closingKeywords) || containsAny(reply, closingKeywords) {
		expected = append(expected, constant.ToolSaveSummary)
	}
	return expected
}

// CompareToolCalls scores actual tool usage against the expected set. The
// score is the fraction of expected tools that actually ran; missing lists
// the shortfall. Extra tools never lower the score.
func CompareToolCalls(expected, actual []string) (score float64, missing []string) {
	if len(expected) == 0 {
		return 1.0, nil
	}

	actualSet := make(map[string]bool, len(actual))
	for _, name := range actual {
		actualSet[name] = true
	}

	hits := 0
	for _, name := range expected {
		if actualSet[name] {
			hits++
		} else {
			missing = append(missing, name)
		}
	}

	return float64(hits) / float64(len(expected)), missing
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
