package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aura-code/aura/internal/config"
	"github.com/aura-code/aura/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent executions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		db, err := store.Open(cfg.Paths.StorePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer db.Close()

		recs, err := db.RecentExecutions(historyLimit)
		if err != nil {
			return err
		}

		printHeader("📜 Aura History")
		if len(recs) == 0 {
			fmt.Println("No executions recorded yet.")
			return nil
		}
		for _, rec := range recs {
			status := rec.Status
			switch status {
			case "success":
				status = color.GreenString(status)
			case "step_limit_exceeded":
				status = color.YellowString(status)
			default:
				status = color.RedString(status)
			}
			task := rec.Task
			if len(task) > 60 {
				task = task[:60] + "..."
			}
			fmt.Printf("%s  %-10s %-22s steps=%-3d tokens=%-6d %s\n",
				rec.CreatedAt.Format("2006-01-02 15:04"), rec.AgentID, status,
				rec.StepsUsed, rec.TokensUsed, task)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of executions to show")
}
