package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillquest/internal/api"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the top players",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireUser(); err != nil {
			return err
		}

		board, err := e.client.Leaderboard(commandContext(cmd))
		if err != nil {
			return err
		}
		if len(board.TopUsers) == 0 {
			fmt.Println("Nobody on the board yet.")
			return nil
		}

		me := 0
		if board.CurrentUser != nil {
			me = board.CurrentUser.UserID
		}

		fmt.Printf("%4s  %-24s  %8s  %6s  %6s\n", "Rank", "Player", "Coins", "Quests", "Streak")
		rule(56)
		listed := false
		for _, u := range board.TopUsers {
			if u.UserID == me {
				listed = true
			}
			printLeaderboardRow(u, u.UserID == me)
		}
		if board.CurrentUser != nil && !listed {
			fmt.Println(gray("   ⋮"))
			printLeaderboardRow(*board.CurrentUser, true)
		}
		return nil
	},
}

func printLeaderboardRow(u api.LeaderboardEntry, me bool) {
	line := fmt.Sprintf("%4d  %-24s  %8d  %6d  %6d",
		u.Rank, truncate(u.Username, 24), u.Balance, u.CompletedTasksCount, u.CurrentStreak)
	if me {
		line = cyan(line)
	}
	fmt.Println(line)
}
