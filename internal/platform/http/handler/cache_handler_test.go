package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"symbol_backend/internal/platform/cache"
)

type fakeIntrospector struct {
	snap  cache.StatsSnapshot
	mem   cache.MemoryBreakdown
	reset bool
}

func (f *fakeIntrospector) Stats() cache.StatsSnapshot { return f.snap }

func (f *fakeIntrospector) ResetStats() { f.reset = true }

func (f *fakeIntrospector) MemoryEstimate() cache.MemoryBreakdown { return f.mem }

func setupOpsRouter(fi *fakeIntrospector) *gin.Engine {
	r := gin.New()
	h := NewOpsHandler(fi)
	r.GET("/admin/cache/stats", h.CacheStats)
	r.POST("/admin/cache/reset", h.CacheReset)
	return r
}

func TestOpsHandler_CacheStats(t *testing.T) {
	t.Parallel()

	fi := &fakeIntrospector{
		snap: cache.StatsSnapshot{Hits: 75, Misses: 25, HitRate: 75},
		mem:  cache.MemoryBreakdown{EntityEntries: 10, SearchEntries: 2, TotalBytes: 14592},
	}
	router := setupOpsRouter(fi)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/cache/stats", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response struct {
		Hits    uint64  `json:"hits"`
		Misses  uint64  `json:"misses"`
		HitRate float64 `json:"hit_rate"`
		Memory  struct {
			TotalBytes int64 `json:"total_bytes"`
		} `json:"memory"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response.Hits != 75 || response.Misses != 25 {
		t.Errorf("expected 75 hits / 25 misses, got %d / %d", response.Hits, response.Misses)
	}
	if response.HitRate != 75 {
		t.Errorf("expected hit rate 75, got %v", response.HitRate)
	}
	if response.Memory.TotalBytes != 14592 {
		t.Errorf("expected total bytes 14592, got %d", response.Memory.TotalBytes)
	}
}

func TestOpsHandler_CacheReset(t *testing.T) {
	t.Parallel()

	fi := &fakeIntrospector{}
	router := setupOpsRouter(fi)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/cache/reset", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !fi.reset {
		t.Error("expected ResetStats to be called")
	}
}
