package constant

// Message sender types as stored in the message log and synced to the
// backend.
const (
	SenderTypeUser      = "user"
	SenderTypeAssistant = "assistant"
)

// Tool names exposed to the model. The eval heuristics compare expected
// against actual sets of these names.
const (
	ToolSearchDocumentation = "search_documentation"
	ToolCreateSupportTicket = "create_support_ticket"
	ToolSaveSummary         = "save_conversation_summary"
	ToolValidateWithTruth   = "validate_answer_with_ground_truth"
)

// Knowledge collections. Retrieval serves the primary collection; accuracy
// scoring reads the ground-truth collection.
const (
	CollectionPrimary     = "primary"
	CollectionGroundTruth = "ground_truth"
)

// NothingFoundMessage is returned by the search tool when the filtered
// similarity search yields no chunks. A thin result is a degraded answer,
// never a request failure.
const NothingFoundMessage = "No specific documentation found for your request at your permission level."

// DefaultTenantID is applied when the caller omits tenantId.
const DefaultTenantID = "Thanos"

// CoreInstructionsV1 is the always-on behavior block prepended to the
// operator-supplied prompt file.
const CoreInstructionsV1 = `--- AGENT CORE BEHAVIOR ---
1. You are a STATEFUL agent. Refer to Chat History for context.
2. If the user query is technical, SEARCH DOCUMENTS immediately.
3. TICKET LOGIC: When details are confirmed, YOU MUST CALL 'create_support_ticket' immediately.
4. NEVER say 'ticket details confirmed' without calling the tool first.
5. COMPLETION LOGIC: When the user says thank you or the issue is resolved, CALL 'save_conversation_summary' immediately without asking the user for any details.
6. NEVER ask the user: 'What was the topic?' or 'Can you provide a summary?'. You are responsible for this.
7. TotalToken: Include this at the end of every response.`

// FallbackInstructionsV1 is used when the prompt file cannot be read.
const FallbackInstructionsV1 = "You are a helpful customer support agent."

// SummaryDerivationPromptV1 asks the model to produce structured summary
// fields from a conversation transcript. The response must be bare JSON.
const SummaryDerivationPromptV1 = `Analyze the following customer support conversation and produce a summary.
Respond with ONLY this JSON format, no other text:
{"summary": "...", "topic": "...", "main_issue": "..."}

Conversation:
`

// AccuracyJudgePromptV1 scores an answer against reference material.
const AccuracyJudgePromptV1 = `You are grading a customer support answer against reference documentation.
Score factual accuracy from 0 to 10 (10 = fully grounded, 0 = contradicts the reference).
Respond with ONLY this JSON format, no other text:
{"score": 0, "reasoning": "..."}

Question:
%s

Answer:
%s

Reference documentation:
%s`

// SessionJudgePromptV1 scores a whole conversation retrospective.
const SessionJudgePromptV1 = `You are reviewing a full customer support conversation for quality.
Score overall quality from 0 to 10 considering helpfulness, tone and resolution.
Respond with ONLY this JSON format, no other text:
{"score": 0, "reasoning": "..."}

Conversation:
%s`
