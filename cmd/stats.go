package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show quest statistics from the local journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openJournal(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		st, err := s.EventRepo().SessionStats(commandContext(cmd))
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}

		if st.Started == 0 && st.Abandoned == 0 {
			fmt.Println("No quests played yet.")
			return nil
		}

		fmt.Println("Quest Sessions")
		rule(40)
		fmt.Printf("%-24s  %8d\n", "Started", st.Started)
		fmt.Printf("%-24s  %8d\n", "Completed", st.Completed)
		fmt.Printf("%-24s  %8d\n", "Abandoned", st.Abandoned)
		failures := fmt.Sprintf("%8d", st.FinalizeFailures)
		if st.FinalizeFailures > 0 {
			failures = red(failures)
		}
		fmt.Printf("%-24s  %s\n", "Unsaved results", failures)
		rule(40)
		fmt.Printf("%-24s  %8d\n", "Questions answered", st.TotalQuestions)
		fmt.Printf("%-24s  %8d\n", "Correct answers", st.TotalCorrect)
		fmt.Printf("%-24s  %7d%%\n", "Accuracy", st.Accuracy())
		fmt.Printf("%-24s  %8d\n", "Coins earned", st.TotalEarned)
		return nil
	},
}
