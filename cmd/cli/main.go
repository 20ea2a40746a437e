package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/felixbrandt/saalplan/internal/config"
	"github.com/felixbrandt/saalplan/pkg/core/model"
	"github.com/felixbrandt/saalplan/pkg/core/services"
	"github.com/felixbrandt/saalplan/pkg/store"
	"github.com/felixbrandt/saalplan/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg    *config.Config
	store  *store.FileStore
	logger *zap.Logger
	ctx    context.Context
}

var (
	env        string
	dataDir    string
	configPath string
	app        *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "saalplan",
		Short: "Saalplan CLI - OR staffing for the day",
		Long:  `A CLI tool for assigning operating-room staff to rooms, validating the result, and suggesting replacements for rule violations.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "dev", "Environment (dev, prod)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "data", "Data directory with staff, room, roster, and pairing snapshots")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to saalplan_config.yaml (defaults to search)")

	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(weekCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(suggestCmd())
	rootCmd.AddCommand(listStaffCmd())
	rootCmd.AddCommand(acceptCmd())
	rootCmd.AddCommand(interactiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, and the snapshot store
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Debug("Loading configuration")
	if configPath != "" {
		app.cfg, err = config.LoadFromPath(configPath)
	} else {
		app.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.store = store.NewFileStore(dataDir)
	app.logger.Debug("Store initialized", zap.String("data_dir", dataDir))

	return nil
}

// Command definitions

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <date>",
		Short: "Plan room staffing for a date (day.month.year)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			skipOptimizer, _ := cmd.Flags().GetBool("no-optimizer")

			result, err := services.PlanDay(app.ctx, app.store, app.cfg, app.logger, args[0], services.PlanDayOptions{
				DryRun:        dryRun,
				SkipOptimizer: skipOptimizer,
			})
			if err != nil {
				return err
			}

			printPlanResult(result)
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Plan without saving the assignment set")
	cmd.Flags().Bool("no-optimizer", false, "Skip the secondary optimizer pass")
	return cmd
}

func weekCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week <date>",
		Short: "Plan the whole week containing the date, Monday first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			results, err := services.PlanWeek(app.ctx, app.store, app.cfg, app.logger, args[0], services.PlanDayOptions{
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}

			for _, result := range results {
				printPlanResult(result)
			}
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Plan without saving the assignment sets")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <date>",
		Short: "Validate the stored assignment set for a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ValidateDay(app.ctx, app.store, app.cfg, app.logger, args[0])
			if err != nil {
				return err
			}

			if len(result.Issues) == 0 {
				fmt.Printf("\n%s: no issues found\n", result.Date)
				return nil
			}

			fmt.Printf("\n%s: %d issue(s)\n\n", result.Date, len(result.Issues))
			printIssues(result.Issues)
			return nil
		},
	}
}

func suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <date> <issue#>",
		Short: "Suggest replacement candidates for a validation issue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			issueIndex, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("issue# must be a number: %w", err)
			}

			result, err := services.SuggestForIssue(app.ctx, app.store, app.cfg, app.logger, args[0], issueIndex)
			if err != nil {
				return err
			}

			fmt.Printf("\nIssue: [%s] %s\n\n", result.Issue.Category, result.Issue.Message)

			if len(result.Candidates) == 0 {
				fmt.Println("No replacement candidates available.")
				return nil
			}

			for i, candidate := range result.Candidates {
				fmt.Printf("%d. %s (score %.1f)\n", i+1, candidate.Staff.Name, candidate.Score)
				for _, reason := range candidate.Reasons {
					fmt.Printf("   - %s\n", reason)
				}
			}
			fmt.Println()
			return nil
		},
	}
}

func listStaffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-staff",
		Short: "List all staff from the staff directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			staff, err := app.store.StaffDirectory(app.ctx)
			if err != nil {
				return fmt.Errorf("failed to list staff: %w", err)
			}

			fmt.Printf("\nFound %d staff members:\n\n", len(staff))
			for _, member := range staff {
				flags := staffFlags(member)
				fmt.Printf("- %s (%s)%s\n", member.Name, member.ID, flags)
			}

			return nil
		},
	}
}

func acceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <staff_id> <room_id>",
		Short: "Record an accepted assignment as a room preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.RecordPreference(app.ctx, app.store, app.logger, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Recorded %s as a preferred room for %s\n", args[1], args[0])
			return nil
		},
	}
}

func interactiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (snapshots reload on file change)",
		Long: `Start an interactive session where you can run multiple commands against
the same loaded snapshots. Changes to the data directory are picked up
automatically. Type 'help' for commands, 'exit' or 'quit' to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("\nStarting interactive session...")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			// Reload snapshots whenever the data directory changes
			watcher, err := watchDataDir()
			if err != nil {
				app.logger.Warn("Data directory watch unavailable", zap.Error(err))
			} else {
				defer watcher.Close()
			}

			// Get all sibling commands (excluding interactive itself)
			rootCmd := cmd.Parent()
			commands := make(map[string]*cobra.Command)
			for _, subCmd := range rootCmd.Commands() {
				if subCmd.Name() != "interactive" && subCmd.Name() != "completion" && subCmd.Name() != "help" {
					commands[subCmd.Name()] = subCmd
				}
			}

			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")

				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				parts := strings.Fields(line)
				cmdName := parts[0]
				cmdArgs := parts[1:]

				if cmdName == "exit" || cmdName == "quit" {
					return nil
				}

				if cmdName == "help" {
					printInteractiveHelp(commands)
					continue
				}

				targetCmd, exists := commands[cmdName]
				if !exists {
					fmt.Printf("Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
					continue
				}

				// Reset command flags and args
				targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
					flag.Changed = false
					flag.Value.Set(flag.DefValue)
				})

				// Execute the command's RunE directly, bypassing the full
				// Execute() flow so initApp() does not run again
				if err := targetCmd.ParseFlags(cmdArgs); err != nil {
					fmt.Printf("Error parsing flags: %v\n\n", err)
					continue
				}

				cmdArgs = targetCmd.Flags().Args()

				if err := targetCmd.Args(targetCmd, cmdArgs); err != nil {
					fmt.Printf("Error: %v\n\n", err)
					continue
				}

				if targetCmd.RunE != nil {
					if err := targetCmd.RunE(targetCmd, cmdArgs); err != nil {
						fmt.Printf("Error: %v\n\n", err)
					}
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}

			return nil
		},
	}
}

// watchDataDir invalidates the store's cached snapshots whenever a file in
// the data directory is written, created, or removed.
func watchDataDir() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(app.store.Dir()); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", app.store.Dir(), err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					app.logger.Debug("Data directory changed, reloading snapshots", zap.String("file", event.Name))
					app.store.Invalidate()
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return watcher, nil
}

func printPlanResult(result *services.PlanDayResult) {
	fmt.Printf("\nPlan for %s (run %s)\n\n", result.Date, result.RunID)

	if len(result.Assignments) == 0 {
		fmt.Println("No rooms staffed.")
	}
	for _, assignment := range result.Assignments {
		fmt.Printf("  %s:\n", assignment.RoomID)
		for i, staffID := range assignment.StaffIDs {
			role := "support"
			if i == 0 {
				role = "lead"
			}
			fmt.Printf("    %d. %s (%s)\n", i+1, staffID, role)
		}
	}

	if len(result.Alerts) > 0 {
		fmt.Printf("\nAlerts:\n")
		for _, alert := range result.Alerts {
			fmt.Printf("  ! %s\n", alert)
		}
	}

	if len(result.Issues) > 0 {
		fmt.Printf("\nIssues:\n")
		printIssues(result.Issues)
	}
	fmt.Println()
}

func printIssues(issues []model.Issue) {
	for i, issue := range issues {
		fmt.Printf("  %2d. [%s/%s] %s\n", i, issue.Severity, issue.Category, issue.Message)
	}
}

func staffFlags(member model.Staff) string {
	var flags []string
	if member.LeadCapable {
		flags = append(flags, "lead")
	}
	if member.ManagementOnly {
		flags = append(flags, "management")
	}
	if member.Sick {
		flags = append(flags, "sick")
	}
	if len(flags) == 0 {
		return ""
	}
	return " [" + strings.Join(flags, ", ") + "]"
}

func printInteractiveHelp(commands map[string]*cobra.Command) {
	fmt.Println("\nAvailable commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := commands[name]
		fmt.Printf("  %-30s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Println("\n  help                           Show this help message")
	fmt.Println("  exit, quit                     Exit the interactive session")
}
