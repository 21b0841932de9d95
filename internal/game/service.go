// Package game holds the player's view of the game between screens: the
// profile with its balance and the task map.
package game

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/skillquest/internal/api"
)

// Backend is the subset of the API client the game needs.
type Backend interface {
	Me(ctx context.Context) (*api.User, error)
	ListTasks(ctx context.Context) ([]api.Task, error)
	TaskDetail(ctx context.Context, id int) (*api.TaskDetail, error)
	SubmitTask(ctx context.Context, id int, req api.SubmitRequest) (*api.SubmitResult, error)
	ShopItems(ctx context.Context) ([]api.ShopItem, error)
	Buy(ctx context.Context, itemID int, email string) (*api.Purchase, error)
	Inventory(ctx context.Context) ([]api.InventoryItem, error)
	Leaderboard(ctx context.Context) (*api.Leaderboard, error)
}

// Service caches the user and task list and keeps them current after
// completions and purchases.
type Service struct {
	backend Backend

	mu    sync.RWMutex
	user  *api.User
	tasks []api.Task
	// staleErr is the last failed background refresh, cleared by the next
	// successful one.
	staleErr error
}

// NewService creates a Service over backend.
func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// Refresh fetches the user and the task list in parallel.
func (s *Service) Refresh(ctx context.Context) error {
	var (
		user  *api.User
		tasks []api.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.backend.Me(gctx)
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}
		user = u
		return nil
	})
	g.Go(func() error {
		t, err := s.backend.ListTasks(gctx)
		if err != nil {
			return fmt.Errorf("fetch tasks: %w", err)
		}
		tasks = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = user
	s.tasks = tasks
	s.staleErr = nil
	s.mu.Unlock()
	return nil
}

// RefreshUser re-fetches the profile.
func (s *Service) RefreshUser(ctx context.Context) error {
	u, err := s.backend.Me(ctx)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	return nil
}

// RefreshTasks re-fetches the task list.
func (s *Service) RefreshTasks(ctx context.Context) error {
	tasks, err := s.backend.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("fetch tasks: %w", err)
	}
	s.mu.Lock()
	s.tasks = tasks
	s.staleErr = nil
	s.mu.Unlock()
	return nil
}

// TaskDetail fetches one task's questions.
func (s *Service) TaskDetail(ctx context.Context, id int) (*api.TaskDetail, error) {
	return s.backend.TaskDetail(ctx, id)
}

// Finalize submits a finished task with the selected option index. On
// success the balance is taken from the response and the task list is
// re-fetched so unlocks show up. A failed re-fetch does not fail the
// submission; it is reported by Stale.
func (s *Service) Finalize(ctx context.Context, taskID, answerIndex int) (*api.SubmitResult, error) {
	res, err := s.backend.SubmitTask(ctx, taskID, api.SubmitRequest{AnswerIndex: &answerIndex})
	if err != nil {
		return nil, fmt.Errorf("submit task %d: %w", taskID, err)
	}

	s.mu.Lock()
	if s.user != nil {
		u := *s.user
		u.Balance = res.NewBalance
		s.user = &u
	}
	s.mu.Unlock()

	if err := s.RefreshTasks(ctx); err != nil {
		s.markStale(err)
	}
	return res, nil
}

// Buy purchases an item and re-fetches the profile for the new balance.
func (s *Service) Buy(ctx context.Context, itemID int, email string) (*api.Purchase, error) {
	p, err := s.backend.Buy(ctx, itemID, email)
	if err != nil {
		return nil, err
	}
	if err := s.RefreshUser(ctx); err != nil {
		s.markStale(err)
	}
	return p, nil
}

// ShopItems returns the catalog.
func (s *Service) ShopItems(ctx context.Context) ([]api.ShopItem, error) {
	return s.backend.ShopItems(ctx)
}

// Inventory returns the player's purchases.
func (s *Service) Inventory(ctx context.Context) ([]api.InventoryItem, error) {
	return s.backend.Inventory(ctx)
}

// Leaderboard returns the ranking.
func (s *Service) Leaderboard(ctx context.Context) (*api.Leaderboard, error) {
	return s.backend.Leaderboard(ctx)
}

// User returns a copy of the cached profile, or nil before the first
// refresh.
func (s *Service) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Balance returns the cached balance.
func (s *Service) Balance() int {
	if u := s.User(); u != nil {
		return u.Balance
	}
	return 0
}

// Streak returns the cached day streak.
func (s *Service) Streak() int {
	if u := s.User(); u != nil {
		return u.CurrentStreak
	}
	return 0
}

// Tasks returns a copy of the cached task list in server order.
func (s *Service) Tasks() []api.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]api.Task(nil), s.tasks...)
}

// Task looks up a cached task by id.
func (s *Service) Task(id int) (api.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return api.Task{}, false
}

// VisibleTasks returns the tasks shown for lang ordered by map position.
// Tasks in lang, with no language, or in English are shown.
func (s *Service) VisibleTasks(lang string) []api.Task {
	var out []api.Task
	for _, t := range s.Tasks() {
		if t.Language == lang || t.Language == "" || t.Language == "en" {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out
}

// Stale returns the last failed background refresh, or nil.
func (s *Service) Stale() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.staleErr
}

// Reset forgets the cached state (logout).
func (s *Service) Reset() {
	s.mu.Lock()
	s.user = nil
	s.tasks = nil
	s.staleErr = nil
	s.mu.Unlock()
}

func (s *Service) markStale(err error) {
	s.mu.Lock()
	s.staleErr = err
	s.mu.Unlock()
}
