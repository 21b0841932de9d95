package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/skillquest/internal/api"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Operator commands (uses the separate admin login)",
}

var adminLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in as an operator",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("SKILLQUEST_ADMIN_PASSWORD")
		}
		if username == "" || password == "" {
			return errors.New("admin login needs --username and --password (or SKILLQUEST_ADMIN_PASSWORD)")
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.adminAPI.Login(commandContext(cmd), username, password); err != nil {
			return fmt.Errorf("admin login: %w", err)
		}
		fmt.Println(green("✓"), "Admin logged in.")
		return nil
	},
}

var adminLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored admin token",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.admin.Clear(commandContext(cmd)); err != nil {
			return err
		}
		fmt.Println("Admin logged out.")
		return nil
	},
}

var adminMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show the admin dashboard summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openAdmin(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		m, err := e.adminAPI.Metrics(commandContext(cmd))
		if err != nil {
			return err
		}
		fmt.Printf("Users:              %d\n", m.TotalUsers)
		fmt.Printf("Active today:       %d\n", m.ActiveUsersToday)
		fmt.Printf("Tasks:              %d\n", m.TotalTasks)
		fmt.Printf("Completed tasks:    %d\n", m.TotalCompletedTasks)
		fmt.Printf("Avg tasks per user: %.2f\n", m.AvgTasksPerUser)
		fmt.Printf("Purchases:          %d\n", m.TotalPurchases)
		fmt.Printf("Coins spent:        %d\n", m.TotalRevenue)
		return nil
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List registered users",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openAdmin(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		users, err := e.adminAPI.Users(commandContext(cmd))
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No users.")
			return nil
		}

		fmt.Printf("%-5s  %-20s  %-24s  %-16s  %7s  %6s  %-6s\n",
			"ID", "Username", "Name", "Phone", "Coins", "Quests", "Role")
		rule(98)
		for _, u := range users {
			name := strings.TrimSpace(u.FirstName + " " + u.LastName)
			fmt.Printf("%-5d  %-20s  %-24s  %-16s  %7d  %6d  %-6s\n",
				u.ID, truncate(u.Username, 20), truncate(name, 24), u.PhoneNumber,
				u.Balance, u.CompletedTasksCount, u.Role)
		}
		return nil
	},
}

var adminTasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage tasks",
}

var adminTasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every task with its answer key",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openAdmin(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		tasks, err := e.adminAPI.Tasks(commandContext(cmd))
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks.")
			return nil
		}

		fmt.Printf("%-5s  %-4s  %-4s  %-32s  %-12s  %6s  %s\n",
			"ID", "Pos", "Lang", "Title", "Type", "Reward", "Answer")
		rule(90)
		for _, t := range tasks {
			fmt.Printf("%-5d  %-4d  %-4s  %-32s  %-12s  %6d  %s\n",
				t.ID, t.Position, t.Language, truncate(t.Title, 32), t.Type, t.Reward,
				truncate(t.CorrectAnswer, 16))
		}
		return nil
	},
}

var adminTasksCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a task",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := taskInputFromFlags(cmd)

		e, err := openAdmin(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		t, err := e.adminAPI.CreateTask(commandContext(cmd), in)
		if err != nil {
			return err
		}
		fmt.Printf("%s Created task %d %q\n", green("✓"), t.ID, t.Title)
		return nil
	},
}

var adminTasksUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update the given fields of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID %q: %w", args[0], err)
		}
		in := taskInputFromFlags(cmd)

		e, err := openAdmin(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		t, err := e.adminAPI.UpdateTask(commandContext(cmd), id, in)
		if err != nil {
			return err
		}
		fmt.Printf("%s Updated task %d %q\n", green("✓"), t.ID, t.Title)
		return nil
	},
}

var adminTasksDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID %q: %w", args[0], err)
		}

		e, err := openAdmin(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.adminAPI.DeleteTask(commandContext(cmd), id); err != nil {
			return err
		}
		fmt.Printf("%s Deleted task %d\n", green("✓"), id)
		return nil
	},
}

// taskFile is the layout of a bulk import file.
type taskFile struct {
	Tasks []api.TaskInput `yaml:"tasks"`
}

var adminTasksImportCmd = &cobra.Command{
	Use:   "import <tasks.yaml>",
	Short: "Create every task listed in a YAML file",
	Long: `Create tasks in bulk from a YAML file of the form:

  tasks:
    - title: Go basics
      type: quiz
      question: What does defer do?
      options: [...]
      correct_answer: ...
      reward: 50
      position: 1
      language: en

All tasks are validated before any is created.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}
		var f taskFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("parse import file: %w", err)
		}
		if len(f.Tasks) == 0 {
			return fmt.Errorf("%s: no tasks found", args[0])
		}
		for i, in := range f.Tasks {
			if err := in.ValidateCreate(); err != nil {
				return fmt.Errorf("task %d (%q): %w", i+1, in.Title, err)
			}
		}

		e, err := openAdmin(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := commandContext(cmd)
		var created int
		for _, in := range f.Tasks {
			t, err := e.adminAPI.CreateTask(ctx, in)
			if err != nil {
				fmt.Printf("%s %-32s  %s\n", red("✗"), truncate(in.Title, 32), api.Message(err))
				continue
			}
			created++
			fmt.Printf("%s %-32s  id %d\n", green("✓"), truncate(t.Title, 32), t.ID)
		}

		rule(56)
		fmt.Printf("Imported %d/%d tasks\n", created, len(f.Tasks))
		if created < len(f.Tasks) {
			return fmt.Errorf("%d tasks failed to import", len(f.Tasks)-created)
		}
		return nil
	},
}

var adminRedeemCmd = &cobra.Command{
	Use:   "redeem <purchase-id>",
	Short: "Mark a purchase as handed over",
	Long:  "Mark a purchase as handed over. Accepts a bare purchase ID or a full purchase:<id>:<email>:<item> code.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if parts := strings.Split(id, ":"); len(parts) == 4 && parts[0] == "purchase" {
			id = parts[1]
		}

		e, err := openAdmin(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.adminAPI.Redeem(commandContext(cmd), id)
		if errors.Is(err, api.ErrAlreadyRedeemed) {
			return fmt.Errorf("purchase %s was already redeemed", id)
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s Redeemed %s for %s\n", green("✓"), bold(res.Item), res.User)
		return nil
	},
}

// openAdmin opens the environment and requires an admin token.
func openAdmin(cmd *cobra.Command) (*env, error) {
	e, err := openEnv(cmd)
	if err != nil {
		return nil, err
	}
	if err := e.requireAdmin(); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func taskInputFromFlags(cmd *cobra.Command) api.TaskInput {
	f := cmd.Flags()
	var in api.TaskInput
	in.Title, _ = f.GetString("title")
	in.Description, _ = f.GetString("description")
	in.Type, _ = f.GetString("type")
	in.Question, _ = f.GetString("question")
	in.Options, _ = f.GetStringArray("option")
	in.CorrectAnswer, _ = f.GetString("answer")
	in.Reward, _ = f.GetInt("reward")
	in.Position, _ = f.GetInt("position")
	in.Language, _ = f.GetString("language")
	return in
}

func addTaskFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("title", "", "Task title")
	f.String("description", "", "Task description")
	f.String("type", "", "Task type: quiz, subscription or survey")
	f.String("question", "", "Question text")
	f.StringArray("option", nil, "Answer option (repeat for each option)")
	f.String("answer", "", "Correct answer (must match one option)")
	f.Int("reward", 0, "Coins awarded on completion")
	f.Int("position", 0, "Position on the map")
	f.String("language", "", "Task language (en or ru); empty shows it everywhere")
}

func init() {
	adminLoginCmd.Flags().String("username", "", "Admin username")
	adminLoginCmd.Flags().String("password", "", "Admin password (or SKILLQUEST_ADMIN_PASSWORD)")

	addTaskFlags(adminTasksCreateCmd)
	addTaskFlags(adminTasksUpdateCmd)

	adminTasksCmd.AddCommand(adminTasksListCmd)
	adminTasksCmd.AddCommand(adminTasksCreateCmd)
	adminTasksCmd.AddCommand(adminTasksUpdateCmd)
	adminTasksCmd.AddCommand(adminTasksDeleteCmd)
	adminTasksCmd.AddCommand(adminTasksImportCmd)

	adminCmd.AddCommand(adminLoginCmd)
	adminCmd.AddCommand(adminLogoutCmd)
	adminCmd.AddCommand(adminMetricsCmd)
	adminCmd.AddCommand(adminUsersCmd)
	adminCmd.AddCommand(adminTasksCmd)
	adminCmd.AddCommand(adminRedeemCmd)
}
