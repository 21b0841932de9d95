package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillquest/internal/store"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the local journal of sessions and API requests",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent quest session events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		sessionID, _ := cmd.Flags().GetString("session")

		s, err := openJournal(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QuerySessionEvents(commandContext(cmd), store.QueryOpts{
			Limit:     limit,
			SessionID: sessionID,
		})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No session events found.")
			return nil
		}

		// Header.
		fmt.Printf("%-5s  %-19s  %-8s  %-6s  %-15s  %-7s  %-6s  %s\n",
			"ID", "Timestamp", "Session", "Task", "Action", "Score", "Earned", "Error")
		rule(100)

		for _, e := range events {
			score := ""
			if e.QuestionCount > 0 {
				score = fmt.Sprintf("%d/%d", e.CorrectCount, e.QuestionCount)
			}
			action := fmt.Sprintf("%-15s", e.Action)
			switch e.Action {
			case store.SessionActionFinalizeFailed:
				action = red(action)
			case store.SessionActionEnd:
				action = green(action)
			case store.SessionActionAbandon:
				action = gray(action)
			}
			fmt.Printf("%-5d  %-19s  %-8s  %-6d  %s  %-7s  %-6d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.SessionID, 8),
				e.TaskID,
				action,
				score,
				e.Earned,
				e.ErrorMessage,
			)
		}
		return nil
	},
}

var eventsRequestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List recent API requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		failed, _ := cmd.Flags().GetBool("failed")

		s, err := openJournal(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryRequestEvents(commandContext(cmd), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No API requests recorded.")
			return nil
		}

		// Header.
		fmt.Printf("%-5s  %-19s  %-6s  %-32s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Method", "Path", "Status", "Ms", "OK")
		rule(96)

		for _, e := range events {
			if failed && e.Success {
				continue
			}
			status := "-"
			if e.Status != 0 {
				status = fmt.Sprintf("%d", e.Status)
			}
			ok := okMark(e.Success)
			if !e.Success && e.ErrorMessage != "" {
				ok += " " + e.ErrorMessage
			}
			fmt.Printf("%-5d  %-19s  %-6s  %-32s  %-6s  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Method,
				truncate(e.Path, 32),
				status,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

// openJournal opens only the local store; journal commands work offline.
func openJournal(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func init() {
	eventsListCmd.Flags().Int("limit", 50, "Maximum number of events to show")
	eventsListCmd.Flags().String("session", "", "Only show events of this session ID")
	eventsRequestsCmd.Flags().Int("limit", 50, "Maximum number of requests to show")
	eventsRequestsCmd.Flags().Bool("failed", false, "Only show failed requests")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsRequestsCmd)
}
