package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillquest/internal/api"
	"github.com/abhisek/skillquest/internal/game"
)

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Browse and buy shop items",
}

var shopListCmd = &cobra.Command{
	Use:   "list",
	Short: "List shop items",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := commandContext(cmd)
		items, err := e.client.ShopItems(ctx)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("The shop is empty.")
			return nil
		}

		// Balance is only known when logged in.
		balance := -1
		if e.user.LoggedIn() {
			if u, err := e.client.Me(ctx); err == nil {
				balance = u.Balance
			}
		}

		fmt.Printf("%-5s  %-32s  %7s  %5s\n", "ID", "Item", "Price", "Stock")
		rule(56)
		for _, it := range items {
			line := fmt.Sprintf("%-5d  %-32s  %7d  %5d", it.ID, truncate(it.Name, 32), it.Price, it.Stock)
			switch {
			case it.Stock <= 0:
				line = gray(line + "  sold out")
			case balance >= 0 && it.Price > balance:
				line = gray(line)
			}
			fmt.Println(line)
		}
		if balance >= 0 {
			rule(56)
			fmt.Printf("Balance: %s\n", coins(balance))
		}
		return nil
	},
}

var shopBuyCmd = &cobra.Command{
	Use:   "buy <item-id>",
	Short: "Buy an item; the redemption code is sent to --email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid item ID %q: %w", args[0], err)
		}
		email, _ := cmd.Flags().GetString("email")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireUser(); err != nil {
			return err
		}

		g := game.NewService(e.client)
		p, err := g.Buy(commandContext(cmd), itemID, email)
		switch {
		case errors.Is(err, api.ErrInsufficientBalance):
			return fmt.Errorf("not enough coins for item %d", itemID)
		case errors.Is(err, api.ErrOutOfStock):
			return fmt.Errorf("item %d is sold out", itemID)
		case err != nil:
			return err
		}

		fmt.Println(green("✓"), "Purchase complete.")
		fmt.Printf("Purchase:  %s\n", p.PurchaseID)
		fmt.Printf("Code:      %s\n", bold(p.RedemptionCode()))
		fmt.Printf("Balance:   %s\n", coins(g.Balance()))
		return nil
	},
}

func init() {
	shopBuyCmd.Flags().String("email", "", "Email address for the receipt (required)")
	_ = shopBuyCmd.MarkFlagRequired("email")

	shopCmd.AddCommand(shopListCmd)
	shopCmd.AddCommand(shopBuyCmd)
}
