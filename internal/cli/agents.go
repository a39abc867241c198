package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aura-code/aura/internal/agents"
	"github.com/aura-code/aura/internal/config"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Inspect the agent catalog",
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadAgentRegistry()
		if err != nil {
			return err
		}
		printHeader("🧭 Aura Agents")
		for _, def := range reg.All() {
			source := "static"
			if def.Source != "static" {
				source = "file"
			}
			fmt.Printf("%-14s p%-3d [%s] %s\n", def.ID, def.EffectivePriority(), source, def.Description)
			if len(def.Capabilities) > 0 {
				color.HiBlack("               caps: %s", strings.Join(def.Capabilities, ", "))
			}
		}
		return nil
	},
}

var agentsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one agent definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadAgentRegistry()
		if err != nil {
			return err
		}
		def, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		printHeader("🧭 Agent: " + def.ID)
		fmt.Printf("Name:         %s\n", def.Name)
		fmt.Printf("Description:  %s\n", def.Description)
		fmt.Printf("Priority:     %d\n", def.EffectivePriority())
		fmt.Printf("Temperature:  %.2f\n", def.EffectiveTemperature())
		if def.Model != "" {
			fmt.Printf("Model:        %s\n", def.Model)
		}
		if len(def.Capabilities) > 0 {
			fmt.Printf("Capabilities: %s\n", strings.Join(def.Capabilities, ", "))
		}
		fmt.Printf("Source:       %s\n", def.Source)
		fmt.Println("\nSystem prompt:")
		fmt.Println(def.SystemPrompt)
		return nil
	},
}

var agentsSelectCmd = &cobra.Command{
	Use:   "select <capability>",
	Short: "Show which agent would be selected for a capability",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadAgentRegistry()
		if err != nil {
			return err
		}
		matches := reg.ByCapability(args[0])
		if len(matches) == 0 {
			return fmt.Errorf("no agent advertises capability %q", args[0])
		}
		printHeader("🧭 Capability: " + args[0])
		for i, def := range matches {
			marker := " "
			if i == 0 {
				marker = color.GreenString("→")
			}
			fmt.Printf("%s %-14s p%d\n", marker, def.ID, def.EffectivePriority())
		}
		return nil
	},
}

func loadAgentRegistry() (*agents.Registry, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	reg := agents.NewRegistry(cfg.Paths.AgentsDir)
	for _, def := range agents.Builtin() {
		if err := reg.Register(def); err != nil {
			return nil, err
		}
	}
	if _, err := reg.Reload(); err != nil {
		return nil, err
	}
	return reg, nil
}

func init() {
	agentsCmd.AddCommand(agentsListCmd)
	agentsCmd.AddCommand(agentsShowCmd)
	agentsCmd.AddCommand(agentsSelectCmd)
}
