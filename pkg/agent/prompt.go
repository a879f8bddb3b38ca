package agent

import (
	"os"
	"strings"

	"cs-agent-be/internal/constant"
	"cs-agent-be/internal/pkg/logger"
)

// PromptBuilder renders the system prompt for a turn. The operator-supplied
// template is loaded once at startup; losing the file degrades to a minimal
// fallback instead of refusing traffic.
type PromptBuilder struct {
	template string
	log      logger.ILogger
}

func NewPromptBuilder(promptFilePath string, log logger.ILogger) *PromptBuilder {
	template := constant.FallbackInstructionsV1

	if promptFilePath != "" {
		data, err := os.ReadFile(promptFilePath)
		if err != nil {
			log.Warn("agent", "prompt file unreadable, using fallback instructions", map[string]interface{}{
				"path":  promptFilePath,
				"error": err.Error(),
			})
		} else {
			template = string(data)
		}
	} else {
		log.Warn("agent", "no prompt file configured, using fallback instructions", nil)
	}

	return &PromptBuilder{
		template: template,
		log:      log,
	}
}

// Build substitutes the turn's identity and scope into the template and
// appends the core behavior block. Unknown placeholders are left untouched.
func (b *PromptBuilder) Build(turn TurnContext) string {
	replacer := strings.NewReplacer(
		"{{userName}}", turn.UserName,
		"{{userEmail}}", turn.UserEmail,
		"{{userRole}}", turn.UserRole,
		"{{perm}}", turn.Scope.Level,
		"{{superperm}}", turn.Scope.SuperLevel,
		"{{allperm}}", boolToFlag(turn.Scope.AllAccess),
	)

	rendered := replacer.Replace(b.template)

	return rendered + "\n\n" + constant.CoreInstructionsV1
}

func boolToFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
