package react

import "strings"

const formatInstructions = `Work step by step. On every turn respond in exactly one of two forms.

To use a tool:

Thought: why this tool and input
Action: <tool_name>
Action Input: {"param": "value"}

After each action you receive an Observation with the result. To finish:

Thought: the task is complete
Final Answer: <your complete answer>

Rules:
- Name exactly one tool per Action, from the catalog below.
- Action Input must be a single JSON object matching the tool's parameters.
- Never invent tool output; wait for the Observation.
- If an action fails, read the error and try a different approach.`

// BuildSystemPrompt assembles the system message for one execution:
// the agent's own prompt, the loop format contract, and the live tool
// catalog rendered by the registry.
func BuildSystemPrompt(agentPrompt, toolDocs, additionalContext string) string {
	var sb strings.Builder
	if agentPrompt != "" {
		sb.WriteString(agentPrompt)
		sb.WriteString("\n\n")
	}
	sb.WriteString(formatInstructions)
	if toolDocs != "" {
		sb.WriteString("\n\n")
		sb.WriteString(toolDocs)
	}
	if additionalContext != "" {
		sb.WriteString("\n\n## Context\n\n")
		sb.WriteString(additionalContext)
	}
	return sb.String()
}
