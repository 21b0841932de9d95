package api

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
)

const shopItemsPath = "/api/shop/items"

// ShopItems returns the public catalog. Served from the cache when enabled.
func (c *Client) ShopItems(ctx context.Context) ([]ShopItem, error) {
	var items []ShopItem
	if err := c.getCached(ctx, shopItemsPath, shopItemsPath, &items); err != nil {
		return nil, err
	}
	return items, nil
}

type buyRequest struct {
	ItemID int    `json:"item_id"`
	Email  string `json:"email"`
}

// Buy purchases one item. The email receives the redemption details.
func (c *Client) Buy(ctx context.Context, itemID int, email string) (*Purchase, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Reason: "required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &ValidationError{Field: "email", Reason: "not a valid address"}
	}

	var p Purchase
	if err := c.do(ctx, http.MethodPost, "/api/shop/buy", buyRequest{ItemID: itemID, Email: email}, &p); err != nil {
		return nil, err
	}
	p.ItemID = itemID
	p.Email = email

	// Stock changed.
	c.InvalidateCache()
	return &p, nil
}
