package api

import (
	"fmt"
	"strings"
)

// User is the authenticated player's profile.
type User struct {
	ID                  int    `json:"id"`
	Username            string `json:"username"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	PhotoURL            string `json:"photo_url"`
	Balance             int    `json:"balance"`
	CurrentStreak       int    `json:"current_streak"`
	CompletedTasksCount int    `json:"completed_tasks_count"`
	Role                string `json:"role"`
}

// DisplayName returns the best available name for the user.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return fmt.Sprintf("player #%d", u.ID)
}

// TaskStatus is a task's unlock state for the current user.
type TaskStatus string

const (
	StatusLocked    TaskStatus = "locked"
	StatusAvailable TaskStatus = "available"
	StatusCompleted TaskStatus = "completed"
)

// Task is one entry of the task list (a node on the skill map).
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"` // quiz, subscription or survey
	Status      TaskStatus `json:"status"`
	Position    int        `json:"position"`
	Reward      int        `json:"reward"`
	Language    string     `json:"language,omitempty"`
}

// Question is one question as delivered by the server.
type Question struct {
	Type          string   `json:"type,omitempty"` // choice (default) or text
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
}

// TaskDetail is the full content of a task. Older tasks carry a single
// question in the flat Question/Options/CorrectAnswer fields and leave
// Questions empty.
type TaskDetail struct {
	ID            int        `json:"id"`
	Type          string     `json:"type"`
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correct_answer,omitempty"`
	Questions     []Question `json:"questions,omitempty"`
}

// SubmitRequest is the body of a task submission.
type SubmitRequest struct {
	Answer      *string `json:"answer,omitempty"`
	AnswerIndex *int    `json:"answer_index,omitempty"`
}

// SubmitResult is the server's verdict on a submission.
type SubmitResult struct {
	Success       bool   `json:"success"`
	Earned        int    `json:"earned"`
	NewBalance    int    `json:"new_balance"`
	CorrectAnswer string `json:"correct_answer"`
}

// ShopItem is a purchasable reward.
type ShopItem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int    `json:"price"`
	Image       string `json:"image"`
	Stock       int    `json:"stock"`
}

// Purchase is the result of buying an item.
type Purchase struct {
	PurchaseID string `json:"purchase_id"`
	ItemID     int    `json:"-"`
	Email      string `json:"-"`
}

// RedemptionCode returns the code an operator scans or types to hand over
// the item.
func (p Purchase) RedemptionCode() string {
	return fmt.Sprintf("purchase:%s:%s:%d", p.PurchaseID, p.Email, p.ItemID)
}

// InventoryItem is an item the user has bought.
type InventoryItem struct {
	ID          int    `json:"id"`
	ItemID      int    `json:"item_id"`
	ItemName    string `json:"item_name"`
	PurchaseID  string `json:"purchase_id"`
	Status      string `json:"status"` // pending or redeemed
	PurchasedAt string `json:"purchased_at"`
}

// LeaderboardEntry is one ranked player.
type LeaderboardEntry struct {
	Rank                int    `json:"rank"`
	UserID              int    `json:"user_id"`
	Username            string `json:"username"`
	Balance             int    `json:"balance"`
	CompletedTasksCount int    `json:"completed_tasks_count"`
	CurrentStreak       int    `json:"current_streak"`
}

// Leaderboard is the top of the ranking plus the caller's own row.
type Leaderboard struct {
	TopUsers    []LeaderboardEntry `json:"top_users"`
	CurrentUser *LeaderboardEntry  `json:"current_user,omitempty"`
}

// ProfileUpdate is the editable part of the profile.
type ProfileUpdate struct {
	ResumeLink string   `json:"resume_link,omitempty"`
	Stack      []string `json:"stack,omitempty"`
}

// PhoneLogin is the phone-number login form.
type PhoneLogin struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

// TelegramLogin is the payload produced by the Telegram login widget.
type TelegramLogin struct {
	Hash      string `json:"hash"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	AuthDate  int64  `json:"auth_date"`
}

type authResponse struct {
	Token string `json:"token"`
}

// AdminMetrics is the admin dashboard summary.
type AdminMetrics struct {
	TotalUsers          int64   `json:"total_users"`
	TotalTasks          int64   `json:"total_tasks"`
	TotalCompletedTasks int64   `json:"total_completed_tasks"`
	TotalPurchases      int64   `json:"total_purchases"`
	TotalRevenue        int     `json:"total_revenue"`
	ActiveUsersToday    int64   `json:"active_users_today"`
	AvgTasksPerUser     float64 `json:"avg_tasks_per_user"`
}

// AdminUser is a user row as seen by operators.
type AdminUser struct {
	ID                  int    `json:"id"`
	Username            string `json:"username"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	PhoneNumber         string `json:"phone_number"`
	Balance             int    `json:"balance"`
	CurrentStreak       int    `json:"current_streak"`
	CompletedTasksCount int    `json:"completed_tasks_count"`
	Role                string `json:"role"`
	CreatedAt           string `json:"created_at"`
}

// AdminTask is the full editable task record.
type AdminTask struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Reward        int      `json:"reward"`
	Position      int      `json:"position"`
	Language      string   `json:"language"`
}

// TaskInput creates or updates a task. The yaml tags let operators keep
// task sets in files for bulk import.
type TaskInput struct {
	Title         string   `json:"title,omitempty" yaml:"title"`
	Description   string   `json:"description,omitempty" yaml:"description"`
	Type          string   `json:"type,omitempty" yaml:"type"`
	Question      string   `json:"question,omitempty" yaml:"question"`
	Options       []string `json:"options,omitempty" yaml:"options"`
	CorrectAnswer string   `json:"correct_answer,omitempty" yaml:"correct_answer"`
	Reward        int      `json:"reward,omitempty" yaml:"reward"`
	Position      int      `json:"position,omitempty" yaml:"position"`
	Language      string   `json:"language,omitempty" yaml:"language"`
}

// RedeemResult confirms a redeemed purchase.
type RedeemResult struct {
	Success bool   `json:"success"`
	Item    string `json:"item"`
	User    string `json:"user"`
}
