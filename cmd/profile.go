package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillquest/internal/api"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show and edit the player profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return profileShowCmd.RunE(cmd, args)
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the player profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireUser(); err != nil {
			return err
		}

		u, err := e.client.Me(commandContext(cmd))
		if err != nil {
			return err
		}

		fmt.Printf("Name:      %s\n", bold(u.DisplayName()))
		if u.Username != "" {
			fmt.Printf("Username:  @%s\n", u.Username)
		}
		fmt.Printf("Balance:   %s\n", coins(u.Balance))
		fmt.Printf("Streak:    %d days\n", u.CurrentStreak)
		fmt.Printf("Quests:    %d completed\n", u.CompletedTasksCount)
		if u.Role != "" {
			fmt.Printf("Role:      %s\n", u.Role)
		}
		if u.PhotoURL != "" {
			fmt.Printf("Avatar:    %s\n", u.PhotoURL)
		}
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update resume link and tech stack",
	RunE: func(cmd *cobra.Command, args []string) error {
		resume, _ := cmd.Flags().GetString("resume")
		stack, _ := cmd.Flags().GetStringSlice("stack")
		if resume == "" && len(stack) == 0 {
			return fmt.Errorf("nothing to update: pass --resume and/or --stack")
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireUser(); err != nil {
			return err
		}

		var cleaned []string
		for _, s := range stack {
			if s = strings.TrimSpace(s); s != "" {
				cleaned = append(cleaned, s)
			}
		}
		if err := e.client.UpdateProfile(commandContext(cmd), api.ProfileUpdate{ResumeLink: resume, Stack: cleaned}); err != nil {
			return err
		}
		fmt.Println(green("✓"), "Profile updated.")
		return nil
	},
}

var profileAvatarCmd = &cobra.Command{
	Use:   "avatar <image-file>",
	Short: "Upload a profile picture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open avatar: %w", err)
		}
		defer f.Close()

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireUser(); err != nil {
			return err
		}

		url, err := e.client.UploadAvatar(commandContext(cmd), filepath.Base(args[0]), f)
		if err != nil {
			return err
		}
		fmt.Println(green("✓"), "Avatar uploaded:", url)
		return nil
	},
}

var profileInventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "List purchased items",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireUser(); err != nil {
			return err
		}

		items, err := e.client.Inventory(commandContext(cmd))
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No purchases yet.")
			return nil
		}

		fmt.Printf("%-28s  %-38s  %-9s  %s\n", "Item", "Purchase", "Status", "Bought")
		rule(96)
		for _, it := range items {
			status := yellow(fmt.Sprintf("%-9s", it.Status))
			if it.Status == "redeemed" {
				status = gray(fmt.Sprintf("%-9s", it.Status))
			}
			fmt.Printf("%-28s  %-38s  %s  %s\n",
				truncate(it.ItemName, 28), it.PurchaseID, status, it.PurchasedAt)
		}
		return nil
	},
}

var profileMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show the player's server-side statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireUser(); err != nil {
			return err
		}

		m, err := e.client.UserMetrics(commandContext(cmd))
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		}

		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%-28s  %v\n", k, m[k])
		}
		return nil
	},
}

func init() {
	profileUpdateCmd.Flags().String("resume", "", "Link to your resume")
	profileUpdateCmd.Flags().StringSlice("stack", nil, "Technologies you work with (comma separated)")
	profileMetricsCmd.Flags().Bool("json", false, "Print raw JSON")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	profileCmd.AddCommand(profileAvatarCmd)
	profileCmd.AddCommand(profileInventoryCmd)
	profileCmd.AddCommand(profileMetricsCmd)
}
