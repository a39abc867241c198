package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/aura-code/aura/internal/confirm"
)

// terminalPrompter bridges the approval manager to an interactive
// terminal: it prints the pending request and feeds the typed answer
// back through Respond.
type terminalPrompter struct {
	mgr *confirm.Manager
}

func (p *terminalPrompter) ApprovalRequested(id string, req confirm.Request) {
	fmt.Println()
	color.Yellow("⚠ Tool requires confirmation")
	fmt.Printf("  Tool: %s\n  Args: %s\n", req.Tool, req.ArgsSummary)
	fmt.Print("  Approve? [y/N]: ")

	go func() {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		approved := false
		if err == nil {
			answer := strings.ToLower(strings.TrimSpace(line))
			approved = answer == "y" || answer == "yes"
		}
		_ = p.mgr.Respond(id, approved)
	}()
}

func (p *terminalPrompter) ApprovalResolved(id string, approved bool) {
	if approved {
		color.Green("  ✓ approved")
	} else {
		color.Red("  ✗ denied")
	}
}
