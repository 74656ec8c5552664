package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"Articulate/core/auth"
	"Articulate/core/practice"
	"Articulate/core/recording"

	"golang.org/x/sync/errgroup"
)

// Counter counts the rows an owner holds in one table.
type Counter interface {
	Count(ctx context.Context, ownerID string) (int64, error)
}

// Counters 首页引导信息所需的三个计数
type Counters struct {
	Struggles  Counter
	Sets       Counter
	Recordings Counter
}

// APIHandler 处理所有API请求
type APIHandler struct {
	resolver   auth.Resolver
	practice   *practice.Service
	recordings *recording.Service
	counters   Counters
	health     func(ctx context.Context) error
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(
	resolver auth.Resolver,
	practiceSvc *practice.Service,
	recordingSvc *recording.Service,
	counters Counters,
	health func(ctx context.Context) error,
) *APIHandler {
	return &APIHandler{
		resolver:   resolver,
		practice:   practiceSvc,
		recordings: recordingSvc,
		counters:   counters,
		health:     health,
	}
}

// AllowlistCheckHandler 令牌已通过中间件校验，这里只回显身份
func (h *APIHandler) AllowlistCheckHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"allowed": true,
		"userId":  id.OwnerID,
		"email":   id.Email,
	})
}

type bootstrapCounts struct {
	Struggles  int64 `json:"struggles"`
	Sets       int64 `json:"sets"`
	Recordings int64 `json:"recordings"`
}

type bootstrapResponse struct {
	UserID string          `json:"userId"`
	Email  string          `json:"email"`
	Counts bootstrapCounts `json:"counts"`
}

// BootstrapHandler 并发获取三个计数
func (h *APIHandler) BootstrapHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	var counts bootstrapCounts
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		n, err := h.counters.Struggles.Count(ctx, id.OwnerID)
		if err != nil {
			return fmt.Errorf("count struggles: %w", err)
		}
		counts.Struggles = n
		return nil
	})
	g.Go(func() error {
		n, err := h.counters.Sets.Count(ctx, id.OwnerID)
		if err != nil {
			return fmt.Errorf("count practice sets: %w", err)
		}
		counts.Sets = n
		return nil
	})
	g.Go(func() error {
		n, err := h.counters.Recordings.Count(ctx, id.OwnerID)
		if err != nil {
			return fmt.Errorf("count recordings: %w", err)
		}
		counts.Recordings = n
		return nil
	})
	if err := g.Wait(); err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bootstrapResponse{UserID: id.OwnerID, Email: id.Email, Counts: counts})
}

// HealthHandler reports whether the database answers.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
