package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aura-code/aura/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ Aura Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 Aura Status")
		fmt.Printf("Version: %s\n", version)

		path, err := config.ConfigPath()
		if err == nil {
			if _, statErr := os.Stat(path); statErr == nil {
				fmt.Println("Config:    ✓ Found (" + path + ")")
			} else {
				fmt.Println("Config:    ✗ Not found (defaults apply)")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Config load failed: %v\n", err)
			return
		}
		fmt.Printf("Ollama:    %s (model %s)\n", cfg.Ollama.BaseURL, cfg.Ollama.Model)
		fmt.Printf("Agents:    %s\n", cfg.Paths.AgentsDir)
		fmt.Printf("Guardians: %s\n", cfg.Paths.GuardiansDir)
		if _, err := os.Stat(cfg.Paths.StorePath); err == nil {
			fmt.Println("Store:     ✓ Found (" + cfg.Paths.StorePath + ")")
		} else {
			fmt.Println("Store:     ✗ Not yet created")
		}
	},
}
