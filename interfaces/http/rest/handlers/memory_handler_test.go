package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memorylane-backend/application/commands"
	"memorylane-backend/application/commands/bus"
	cmdhandlers "memorylane-backend/application/commands/handlers"
	"memorylane-backend/application/queries"
	querybus "memorylane-backend/application/queries/bus"
	queryhandlers "memorylane-backend/application/queries/handlers"
	"memorylane-backend/domain/events"
	storemem "memorylane-backend/infrastructure/persistence/memory"
	"memorylane-backend/pkg/auth"
	pkgerrors "memorylane-backend/pkg/errors"
	"memorylane-backend/pkg/utils"
)

// nopPublisher discards events; HTTP tests only care about responses
type nopPublisher struct{}

func (p nopPublisher) Publish(ctx context.Context, event events.DomainEvent) error { return nil }
func (p nopPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	return nil
}

type apiFixture struct {
	router *chi.Mux
	clock  *utils.ManualClock
	store  *storemem.LedgerStore
}

// newAPIFixture wires the full command/query path over the in-process store,
// with authentication replaced by a middleware that injects the identity from
// the X-Test-Identity header
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	store := storemem.NewLedgerStore()
	uow := storemem.NewUnitOfWork(store)
	clock := utils.NewManualClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	logger := zap.NewNop()
	publisher := nopPublisher{}

	commandBus := bus.NewCommandBus()
	createHandler := commands.NewCreateMemoryHandler(uow, publisher, clock, nil, logger)
	require.NoError(t, commandBus.Register(&commands.CreateMemoryCommand{},
		bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
			_, err := createHandler.Handle(ctx, cmd.(*commands.CreateMemoryCommand))
			return err
		})))
	retrieveHandler := cmdhandlers.NewRetrieveMemoryHandler(uow, publisher, clock, nil, logger)
	require.NoError(t, commandBus.Register(&commands.RetrieveMemoryCommand{},
		bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
			return retrieveHandler.Handle(ctx, cmd.(*commands.RetrieveMemoryCommand))
		})))
	likeHandler := cmdhandlers.NewLikeMemoryHandler(uow, publisher, clock, nil, logger)
	require.NoError(t, commandBus.Register(&commands.LikeMemoryCommand{},
		bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
			return likeHandler.Handle(ctx, cmd.(*commands.LikeMemoryCommand))
		})))

	statsHandler := queryhandlers.NewStatsHandler(store.MemoryRepository(),
		store.LocationRepository(), store.ReputationRepository(), logger)
	queryBus := querybus.NewQueryBus()
	require.NoError(t, queryBus.Register(queries.GetMemoriesByOwnerQuery{},
		querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return statsHandler.HandleMemoriesByOwner(ctx, q.(queries.GetMemoriesByOwnerQuery))
		})))

	errorHandler := pkgerrors.NewErrorHandler(logger, false)
	memoryHandler := NewMemoryHandler(commandBus, queryBus, errorHandler, logger)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity := r.Header.Get("X-Test-Identity"); identity != "" {
				ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{Identity: identity})
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	})
	router.Post("/memories", memoryHandler.CreateMemory)
	router.Get("/memories", memoryHandler.ListMemories)
	router.Get("/memories/{memoryID}", memoryHandler.GetMemory)
	router.Post("/memories/{memoryID}/likes", memoryHandler.LikeMemory)

	return &apiFixture{router: router, clock: clock, store: store}
}

func (f *apiFixture) do(t *testing.T, method, path, identity string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if identity != "" {
		req.Header.Set("X-Test-Identity", identity)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) createMemory(t *testing.T, owner string, isPublic bool) string {
	t.Helper()

	rec := f.do(t, "POST", "/memories", owner, map[string]interface{}{
		"encrypted_content": "opaque-payload",
		"latitude":          40712800,
		"longitude":         -74006000,
		"unlock_time":       f.clock.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"is_public":         isPublic,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			MemoryID string `json:"memory_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.MemoryID)
	return resp.Data.MemoryID
}

func TestMemoryHandler_CreateMemory(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("success", func(t *testing.T) {
		memoryID := f.createMemory(t, "alice", false)
		assert.Len(t, memoryID, 64)
	})

	t.Run("missing body fields", func(t *testing.T) {
		rec := f.do(t, "POST", "/memories", "alice", map[string]interface{}{
			"latitude": 1,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rec := f.do(t, "POST", "/memories", "", map[string]interface{}{
			"encrypted_content": "payload",
			"unlock_time":       f.clock.Now().Add(time.Hour).Format(time.RFC3339),
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("past unlock time maps to bad request", func(t *testing.T) {
		rec := f.do(t, "POST", "/memories", "alice", map[string]interface{}{
			"encrypted_content": "payload",
			"unlock_time":       f.clock.Now().Add(-time.Hour).Format(time.RFC3339),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_SCHEDULE")
	})
}

func TestMemoryHandler_GetMemory(t *testing.T) {
	f := newAPIFixture(t)
	memoryID := f.createMemory(t, "alice", false)

	t.Run("owner reads own memory", func(t *testing.T) {
		rec := f.do(t, "GET", "/memories/"+memoryID, "alice", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "opaque-payload")
	})

	t.Run("stranger gets forbidden before unlock", func(t *testing.T) {
		rec := f.do(t, "GET", "/memories/"+memoryID, "stranger", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "ACCESS_DENIED")
	})

	t.Run("unknown memory is not found", func(t *testing.T) {
		unknown := fmt.Sprintf("%064x", 0)
		rec := f.do(t, "GET", "/memories/"+unknown, "alice", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMemoryHandler_LikeMemory(t *testing.T) {
	f := newAPIFixture(t)
	publicID := f.createMemory(t, "alice", true)
	privateID := f.createMemory(t, "alice", false)

	t.Run("like a public memory", func(t *testing.T) {
		rec := f.do(t, "POST", "/memories/"+publicID+"/likes", "bob", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"total_likes":1`)
	})

	t.Run("self-like conflicts", func(t *testing.T) {
		rec := f.do(t, "POST", "/memories/"+publicID+"/likes", "alice", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("private memory conflicts", func(t *testing.T) {
		rec := f.do(t, "POST", "/memories/"+privateID+"/likes", "bob", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestMemoryHandler_ListMemories(t *testing.T) {
	f := newAPIFixture(t)
	f.createMemory(t, "alice", true)
	f.createMemory(t, "alice", false)
	f.createMemory(t, "bob", true)

	rec := f.do(t, "GET", "/memories?page=1&page_size=1", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Owner    string                       `json:"owner"`
			Memories []queries.OwnedMemorySummary `json:"memories"`
		} `json:"data"`
		Meta struct {
			Pagination struct {
				Total   int  `json:"total"`
				HasNext bool `json:"has_next"`
			} `json:"pagination"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "alice", resp.Data.Owner)
	assert.Len(t, resp.Data.Memories, 1)
	assert.Equal(t, 2, resp.Meta.Pagination.Total)
	assert.True(t, resp.Meta.Pagination.HasNext)
}
