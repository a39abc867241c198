package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aura-code/aura/internal/config"
	"github.com/aura-code/aura/internal/guardian"
	"github.com/aura-code/aura/internal/notify"
	"github.com/aura-code/aura/internal/store"
)

var guardiansCmd = &cobra.Command{
	Use:   "guardians",
	Short: "Inspect and run guardians",
}

var guardiansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List guardian definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, _, err := loadGuardians()
		if err != nil {
			return err
		}
		printHeader("🛡️ Aura Guardians")
		for _, def := range reg.All() {
			state := color.GreenString("enabled")
			if !def.IsEnabled() {
				state = color.HiBlackString("disabled")
			}
			fmt.Printf("%-20s %s  rules=%d  %s\n", def.ID, state, len(def.Rules), def.Description)
		}
		return nil
	},
}

var guardiansCheckCmd = &cobra.Command{
	Use:   "check [id]",
	Short: "Run one guardian, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, cfg, err := loadGuardians()
		if err != nil {
			return err
		}

		var items guardian.ItemCreator
		db, dbErr := store.Open(cfg.Paths.StorePath)
		if dbErr == nil {
			defer db.Close()
			items = db
		}
		var notifier guardian.Notifier
		if cfg.Slack.Enabled && cfg.Slack.BotToken != "" {
			notifier = notify.NewSlackNotifier(cfg.Slack.BotToken, cfg.Slack.Channel)
		}

		exec := guardian.NewExecutor(cfg.Paths.Workspace, items, notifier)
		runner := guardian.NewRunner(reg, exec)

		printHeader("🛡️ Guardian Check")
		var results []guardian.CheckResult
		if len(args) == 1 {
			res, ok := runner.RunOne(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("unknown guardian %q", args[0])
			}
			results = append(results, res)
		} else {
			results = runner.RunAll(cmd.Context())
		}

		for _, res := range results {
			printCheckResult(res)
		}
		return nil
	},
}

var guardiansWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run guardians on their schedules until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, cfg, err := loadGuardians()
		if err != nil {
			return err
		}

		var items guardian.ItemCreator
		db, dbErr := store.Open(cfg.Paths.StorePath)
		if dbErr == nil {
			defer db.Close()
			items = db
		}
		var notifier guardian.Notifier
		if cfg.Slack.Enabled && cfg.Slack.BotToken != "" {
			notifier = notify.NewSlackNotifier(cfg.Slack.BotToken, cfg.Slack.Channel)
		}

		exec := guardian.NewExecutor(cfg.Paths.Workspace, items, notifier)
		runner := guardian.NewRunner(reg, exec)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Guardian.HotReload {
			go reg.Watch(ctx)
		}

		printHeader("🛡️ Guardian Watch")
		fmt.Printf("Watching %d guardians. Ctrl-C to stop.\n", len(reg.Enabled()))
		err = runner.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	},
}

func loadGuardians() (*guardian.Registry, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	reg := guardian.NewRegistry(cfg.Paths.GuardiansDir)
	if err := reg.Reload(); err != nil {
		return nil, nil, err
	}
	return reg, cfg, nil
}

func printCheckResult(res guardian.CheckResult) {
	switch res.Outcome {
	case guardian.OutcomeClean:
		color.Green("✓ %-20s clean (%s)", res.GuardianID, res.Duration.Round(time.Millisecond))
	case guardian.OutcomeSkipped:
		color.HiBlack("- %-20s skipped", res.GuardianID)
	case guardian.OutcomeFailed:
		color.Red("✗ %-20s failed: %v", res.GuardianID, res.Err)
	default:
		color.Yellow("⚠ %-20s %d violations", res.GuardianID, len(res.Violations))
		for _, v := range res.Violations {
			fmt.Printf("    [%s] %s\n", v.Rule, v.Detail)
		}
	}
}

func init() {
	guardiansCmd.AddCommand(guardiansListCmd)
	guardiansCmd.AddCommand(guardiansCheckCmd)
	guardiansCmd.AddCommand(guardiansWatchCmd)
}
