package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillquest/internal/credentials"
	"github.com/abhisek/skillquest/internal/store"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) (*Client, *credentials.Store) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	creds := credentials.New(nil, store.SlotUser)
	return New(srv.URL, creds, opts...), creds
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListTasksSendsBearerToken(t *testing.T) {
	var gotAuth string
	c, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/tasks", r.URL.Path)
		writeJSON(w, http.StatusOK, []Task{
			{ID: 1, Title: "Intro", Status: StatusCompleted, Position: 1, Reward: 10},
			{ID: 2, Title: "Next", Status: StatusAvailable, Position: 2, Reward: 20},
		})
	})
	require.NoError(t, creds.Set(context.Background(), "tok-1"))

	tasks, err := c.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	require.Len(t, tasks, 2)
	assert.Equal(t, StatusAvailable, tasks[1].Status)
}

func TestAnonymousRequestHasNoAuthorization(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []ShopItem{})
	})

	_, err := c.ShopItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestUnauthorizedInvalidatesToken(t *testing.T) {
	c, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Invalid token"})
	})
	require.NoError(t, creds.Set(context.Background(), "stale"))

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, creds.LoggedIn())

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.Equal(t, "Invalid token", se.Message)
}

func TestStatusErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		msg    string
		want   error
	}{
		{"locked", http.StatusForbidden, "Task is locked", ErrLocked},
		{"forbidden", http.StatusForbidden, "Admin access required", ErrForbidden},
		{"not found", http.StatusNotFound, "Task not found", ErrNotFound},
		{"balance", http.StatusBadRequest, "Insufficient balance", ErrInsufficientBalance},
		{"stock", http.StatusBadRequest, "Item out of stock", ErrOutOfStock},
		{"redeemed", http.StatusBadRequest, "Purchase already redeemed", ErrAlreadyRedeemed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, errorBody{Error: tt.msg})
			})
			_, err := c.TaskDetail(context.Background(), 3)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.msg, Message(err))
		})
	}
}

func TestServerErrorWithoutBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.ListTasks(context.Background())

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Nil(t, se.Unwrap())
	assert.Contains(t, err.Error(), "502 Bad Gateway")
}

func TestTaskDetailLegacyShape(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks/7", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":7,"type":"quiz","question":"2+2?","options":["3","4"],"correct_answer":"4"}`)
	})

	d, err := c.TaskDetail(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, d.ID)
	assert.Equal(t, "2+2?", d.Question)
	assert.Equal(t, []string{"3", "4"}, d.Options)
	assert.Empty(t, d.Questions)
}

func TestTaskDetailQuestionsWithNullOptions(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":8,"type":"survey","question":"","options":null,
			"questions":[{"type":"text","text":"Why?","options":null},{"text":"Pick","options":["a","b"]}]}`)
	})

	d, err := c.TaskDetail(context.Background(), 8)
	require.NoError(t, err)
	require.Len(t, d.Questions, 2)
	assert.Equal(t, "text", d.Questions[0].Type)
	assert.Equal(t, []string{"a", "b"}, d.Questions[1].Options)
}

func TestTaskDetailRejectsInvalidPayload(t *testing.T) {
	bodies := map[string]string{
		"not json":         `<html>`,
		"missing id":       `{"question":"q"}`,
		"string id":        `{"id":"7"}`,
		"bad option type":  `{"id":7,"options":[1,2]}`,
		"bad kind":         `{"id":7,"questions":[{"type":"essay","text":"q"}]}`,
		"question no text": `{"id":7,"questions":[{"options":["a"]}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			})
			_, err := c.TaskDetail(context.Background(), 7)
			var ip *ErrInvalidPayload
			require.True(t, errors.As(err, &ip), "got %v", err)
			assert.Equal(t, "/api/tasks/7", ip.Path)
		})
	}
}

func TestSubmitTaskSendsAnswerIndexZero(t *testing.T) {
	var body map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tasks/4/submit", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, SubmitResult{Success: true, Earned: 15, NewBalance: 115})
	})

	idx := 0
	res, err := c.SubmitTask(context.Background(), 4, SubmitRequest{AnswerIndex: &idx})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"answer_index": float64(0)}, body)
	assert.True(t, res.Success)
	assert.Equal(t, 115, res.NewBalance)
}

func TestTransportTimeout(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeJSON(w, http.StatusOK, []Task{})
	}, WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))

	_, err := c.ListTasks(context.Background())
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestLoginPhone(t *testing.T) {
	var got PhoneLogin
	c, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/phone", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, authResponse{Token: "fresh"})
	})

	err := c.LoginPhone(context.Background(), PhoneLogin{
		FirstName:   " Ada ",
		LastName:    "Lovelace",
		PhoneNumber: "+7 (912) 345-67-89",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "fresh", creds.Token())
}

func TestLoginPhoneEmptyToken(t *testing.T) {
	c, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, authResponse{})
	})
	err := c.LoginPhone(context.Background(), PhoneLogin{FirstName: "a", LastName: "b", PhoneNumber: "1234567890"})
	var ip *ErrInvalidPayload
	assert.True(t, errors.As(err, &ip))
	assert.False(t, creds.LoggedIn())
}

func TestPhoneLoginValidate(t *testing.T) {
	tests := []struct {
		name  string
		in    PhoneLogin
		field string
	}{
		{"ok", PhoneLogin{"A", "B", "1234567890"}, ""},
		{"ok formatted", PhoneLogin{"A", "B", "+1 (234) 567-8901"}, ""},
		{"no first", PhoneLogin{"", "B", "1234567890"}, "first_name"},
		{"blank last", PhoneLogin{"A", "  ", "1234567890"}, "last_name"},
		{"no phone", PhoneLogin{"A", "B", ""}, "phone_number"},
		{"short", PhoneLogin{"A", "B", "12345"}, "phone_number"},
		{"long", PhoneLogin{"A", "B", "1234567890123456"}, "phone_number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestLoginTelegram(t *testing.T) {
	c, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/telegram", r.URL.Path)
		writeJSON(w, http.StatusOK, authResponse{Token: "tg"})
	})

	err := c.LoginTelegram(context.Background(), TelegramLogin{UserID: 1})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))

	require.NoError(t, c.LoginTelegram(context.Background(), TelegramLogin{Hash: "h", UserID: 1, AuthDate: 1}))
	assert.Equal(t, "tg", creds.Token())
}

func TestShopItemsCachedUntilPurchase(t *testing.T) {
	var listCalls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case shopItemsPath:
			listCalls.Add(1)
			writeJSON(w, http.StatusOK, []ShopItem{{ID: 1, Name: "Sticker", Price: 50, Stock: 3}})
		case "/api/shop/buy":
			var req buyRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, buyRequest{ItemID: 1, Email: "ada@example.com"}, req)
			writeJSON(w, http.StatusOK, map[string]string{"purchase_id": "p-1"})
		}
	}, WithCache(time.Minute))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		items, err := c.ShopItems(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
	}
	assert.Equal(t, int32(1), listCalls.Load())

	p, err := c.Buy(ctx, 1, " ada@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "purchase:p-1:ada@example.com:1", p.RedemptionCode())

	_, err = c.ShopItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), listCalls.Load())
}

func TestBuyRequiresEmail(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request %s", r.URL.Path)
	})
	for _, email := range []string{"", "   ", "not-an-email"} {
		_, err := c.Buy(context.Background(), 1, email)
		var ve *ValidationError
		require.True(t, errors.As(err, &ve), "email %q", email)
		assert.Equal(t, "email", ve.Field)
	}
}

func TestLeaderboardCacheKeyedByToken(t *testing.T) {
	var calls atomic.Int32
	c, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		lb := Leaderboard{TopUsers: []LeaderboardEntry{{Rank: 1, Username: "top", Balance: 900}}}
		if r.Header.Get("Authorization") != "" {
			lb.CurrentUser = &LeaderboardEntry{Rank: 12, Username: "me"}
		}
		writeJSON(w, http.StatusOK, lb)
	}, WithCache(time.Minute))
	ctx := context.Background()

	lb, err := c.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Nil(t, lb.CurrentUser)

	require.NoError(t, creds.Set(ctx, "tok"))
	lb, err = c.Leaderboard(ctx)
	require.NoError(t, err)
	require.NotNil(t, lb.CurrentUser)
	assert.Equal(t, 12, lb.CurrentUser.Rank)

	_, err = c.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestUploadAvatarMultipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		f, hdr, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "me.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(data))
		writeJSON(w, http.StatusOK, map[string]string{"photo_url": "/uploads/me.png"})
	})

	url, err := c.UploadAvatar(context.Background(), "/tmp/pics/me.png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/me.png", url)
}

func TestUpdateProfileAndInventory(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/api/user/me":
			var p ProfileUpdate
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			assert.Equal(t, []string{"go", "sql"}, p.Stack)
			writeJSON(w, http.StatusOK, map[string]string{"message": "User updated successfully"})
		case r.URL.Path == "/api/user/inventory":
			writeJSON(w, http.StatusOK, []InventoryItem{{ID: 1, ItemName: "Mug", Status: "pending"}})
		case r.URL.Path == "/api/user/metrics":
			writeJSON(w, http.StatusOK, map[string]any{"tasks_completed": 3})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	require.NoError(t, c.UpdateProfile(ctx, ProfileUpdate{Stack: []string{"go", "sql"}}))

	inv, err := c.Inventory(ctx)
	require.NoError(t, err)
	require.Len(t, inv, 1)
	assert.Equal(t, "Mug", inv[0].ItemName)

	m, err := c.UserMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(3), m["tasks_completed"])
}

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", User{FirstName: "Ada", LastName: "Lovelace", Username: "ada"}.DisplayName())
	assert.Equal(t, "ada", User{Username: "ada"}.DisplayName())
	assert.Equal(t, "player #4", User{ID: 4}.DisplayName())
}
