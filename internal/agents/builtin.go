package agents

// Builtin returns the statically coded agents registered at startup.
// They always win ID conflicts with file-loaded definitions.
func Builtin() []*Definition {
	return []*Definition{
		{
			ID:          "coder",
			Name:        "Coder",
			Description: "General-purpose coding agent for implementing and fixing code",
			SystemPrompt: "You are a careful software engineer. Read code before changing it, " +
				"make the smallest change that solves the task, and verify your work with the available tools.",
			Capabilities: []string{"code", "refactor", "debug"},
			Priority:     prio(10),
		},
		{
			ID:          "reviewer",
			Name:        "Reviewer",
			Description: "Reads code and reports problems without modifying anything",
			SystemPrompt: "You are a code reviewer. Inspect the relevant files, look for bugs, " +
				"unclear naming, and missing error handling, and report findings as a concise list. Never modify files.",
			Capabilities: []string{"review", "analyze"},
			Priority:     prio(20),
		},
		{
			ID:          "researcher",
			Name:        "Researcher",
			Description: "Explores a codebase and summarizes structure and behavior",
			SystemPrompt: "You explore codebases. Use directory listings and file reads to map out " +
				"how the code is organized, then summarize what you found for the caller.",
			Capabilities: []string{"analyze", "summarize"},
			Priority:     prio(30),
		},
	}
}

func prio(v int) *int { return &v }
