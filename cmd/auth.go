package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillquest/internal/api"
	"github.com/abhisek/skillquest/internal/credentials"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with a phone number or a Telegram login payload",
	Long: `Sign in and store the issued token for later commands.

Phone login needs --first-name, --last-name and --phone. Telegram login
takes the fields produced by the Telegram login widget (--tg-hash,
--tg-user-id, --tg-auth-date and friends).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := commandContext(cmd)
		flags := cmd.Flags()

		if hash, _ := flags.GetString("tg-hash"); hash != "" {
			t := api.TelegramLogin{Hash: hash}
			t.UserID, _ = flags.GetInt64("tg-user-id")
			t.Username, _ = flags.GetString("tg-username")
			t.FirstName, _ = flags.GetString("first-name")
			t.LastName, _ = flags.GetString("last-name")
			t.PhotoURL, _ = flags.GetString("tg-photo-url")
			t.AuthDate, _ = flags.GetInt64("tg-auth-date")
			if t.UserID == 0 || t.AuthDate == 0 {
				return errors.New("telegram login needs --tg-user-id and --tg-auth-date")
			}
			if err := e.client.LoginTelegram(ctx, t); err != nil {
				return fmt.Errorf("login: %w", err)
			}
		} else {
			var p api.PhoneLogin
			p.FirstName, _ = flags.GetString("first-name")
			p.LastName, _ = flags.GetString("last-name")
			p.PhoneNumber, _ = flags.GetString("phone")
			if err := e.client.LoginPhone(ctx, p); err != nil {
				return fmt.Errorf("login: %w", err)
			}
		}

		u, err := e.client.Me(ctx)
		if err != nil {
			fmt.Println(green("✓"), "Logged in.")
			return nil
		}
		fmt.Printf("%s Logged in as %s  %s\n", green("✓"), bold(u.DisplayName()), coins(u.Balance))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored player token",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if !e.user.LoggedIn() {
			fmt.Println("Not logged in.")
			return nil
		}
		if err := e.user.Clear(commandContext(cmd)); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in player and token details",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		claims, err := e.user.Claims()
		if errors.Is(err, credentials.ErrNoToken) {
			fmt.Println("Not logged in.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode token: %w", err)
		}

		fmt.Printf("User ID:   %d\n", claims.UserID)
		if claims.Username != "" {
			fmt.Printf("Username:  %s\n", claims.Username)
		}
		if claims.Role != "" {
			fmt.Printf("Role:      %s\n", claims.Role)
		}
		if claims.ExpiresAt != nil {
			fmt.Printf("Expires:   %s\n", claims.ExpiresAt.Local().Format(time.DateTime))
		}
		fmt.Printf("API:       %s\n", e.client.BaseURL())
		return nil
	},
}

func init() {
	f := loginCmd.Flags()
	f.String("first-name", "", "First name")
	f.String("last-name", "", "Last name")
	f.String("phone", "", "Phone number (10 to 15 digits, punctuation allowed)")
	f.String("tg-hash", "", "Telegram login hash (switches to Telegram login)")
	f.Int64("tg-user-id", 0, "Telegram user ID")
	f.String("tg-username", "", "Telegram username")
	f.String("tg-photo-url", "", "Telegram photo URL")
	f.Int64("tg-auth-date", 0, "Telegram auth_date (unix seconds)")
}
