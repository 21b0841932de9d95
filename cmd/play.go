package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillquest/internal/api"
	"github.com/abhisek/skillquest/internal/game"
	"github.com/abhisek/skillquest/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play [task-id]",
	Short: "Play in the full-screen UI, or one quest in plain text",
	Long: `Without arguments, start the full-screen game.

With a task ID, play that quest line by line on stdin/stdout. The quest is
journaled and completed exactly as it would be from the full-screen UI.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runApp(cmd)
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID %q: %w", args[0], err)
		}
		return runQuest(cmd, id)
	},
}

func runQuest(cmd *cobra.Command, taskID int) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	if err := e.requireUser(); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	g := game.NewService(e.client)
	if err := g.Refresh(ctx); err != nil {
		return err
	}
	task, ok := g.Task(taskID)
	if !ok {
		return fmt.Errorf("task %d: %w", taskID, api.ErrNotFound)
	}
	if task.Status == api.StatusLocked {
		return fmt.Errorf("task %d: %w", taskID, api.ErrLocked)
	}

	ctrl := session.New(session.Config{
		TaskID:    taskID,
		Fetcher:   g,
		Finalizer: g,
		EventRepo: e.store.EventRepo(),
		Metrics:   e.metrics,
	})
	defer ctrl.Close()

	if err := ctrl.Load(ctx); err != nil {
		return err
	}

	fmt.Printf("%s  %s\n\n", bold(task.Title), coins(task.Reward))
	scanner := bufio.NewScanner(os.Stdin)

	for {
		st := ctrl.State()
		if st.Phase != session.PhaseIdle {
			break
		}
		q := st.Current()

		// Display question.
		fmt.Printf("── Question %d/%d ──\n", st.Index+1, len(st.Questions))
		fmt.Println(q.Text)
		for j, opt := range q.Options {
			fmt.Printf("  %d) %s\n", j+1, opt)
		}
		if q.Kind == session.KindChoice && len(q.Options) == 0 {
			return fmt.Errorf("question %d has no options to choose from", st.Index+1)
		}

		// Read answer until the controller accepts one.
		accepted := false
		for !accepted {
			fmt.Print("\nYour answer: ")
			if !scanner.Scan() {
				fmt.Println("\n(input closed)")
				return nil
			}
			answer := strings.TrimSpace(scanner.Text())
			if q.Kind == session.KindText {
				accepted = ctrl.SubmitText(answer)
				continue
			}
			n, err := strconv.Atoi(answer)
			if err == nil {
				accepted = ctrl.SubmitChoice(n - 1)
			}
			if !accepted {
				fmt.Printf("Enter a number from 1 to %d.\n", len(q.Options))
			}
		}

		st = ctrl.State()
		switch {
		case q.Kind == session.KindText:
			fmt.Println(green("✓ Answer recorded!"))
		case st.Status == session.StatusCorrect:
			fmt.Println(green("✓ Correct!"))
		default:
			fmt.Printf("%s Answer: %s\n", red("✗ Not quite."), q.CorrectAnswer)
		}
		fmt.Println()

		ctrl.Advance(ctx)
	}

	sum := ctrl.State().Summary
	if sum == nil {
		return nil
	}

	// Summary.
	fmt.Printf("── Summary: %d/%d correct (%d%%) ──\n", sum.Correct, sum.Total, sum.Accuracy)
	switch {
	case sum.FinalizeErr != nil:
		fmt.Printf("%s %s\n", yellow("⚠ Your result could not be saved:"), api.Message(sum.FinalizeErr))
	case sum.Earned > 0:
		fmt.Printf("+%s  balance %d\n", coins(sum.Earned), sum.NewBalance)
	default:
		fmt.Println("Quest recorded.")
	}
	return nil
}
