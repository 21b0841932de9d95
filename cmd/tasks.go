package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillquest/internal/api"
	"github.com/abhisek/skillquest/internal/game"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List quests on the map in the configured language",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireUser(); err != nil {
			return err
		}

		g := game.NewService(e.client)
		if err := g.RefreshTasks(commandContext(cmd)); err != nil {
			return err
		}

		tasks := g.VisibleTasks(e.cfg.Language)
		if all {
			tasks = g.Tasks()
		}
		if len(tasks) == 0 {
			fmt.Println("No quests published yet.")
			return nil
		}

		fmt.Printf("%-2s  %-5s  %-4s  %-36s  %-12s  %6s\n",
			"", "ID", "Pos", "Title", "Type", "Reward")
		rule(76)

		var done int
		for _, t := range tasks {
			if t.Status == api.StatusCompleted {
				done++
			}
			fmt.Printf("%s   %-5d  %-4d  %-36s  %-12s  %6d\n",
				statusGlyph(t.Status), t.ID, t.Position, truncate(t.Title, 36), t.Type, t.Reward)
		}

		rule(76)
		fmt.Printf("%d/%d complete\n", done, len(tasks))
		return nil
	},
}

func init() {
	tasksCmd.Flags().Bool("all", false, "Show tasks in every language")
}
