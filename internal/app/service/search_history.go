package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/mrops-br/shopping-browser-api/internal/domain"
	"go.opentelemetry.io/otel/metric"
)

// MaxRecentSearches bounds the recent search list.
const MaxRecentSearches = 5

// SearchHistory keeps the most recent distinct search queries, newest first.
type SearchHistory struct {
	storage domain.BlobStore
	logger  *slog.Logger
	queries metric.Int64Counter

	mu       sync.RWMutex
	searches []string
	version  uint64

	persistMu    sync.Mutex
	savedVersion uint64
}

// NewSearchHistory creates the history and loads the persisted list once.
func NewSearchHistory(ctx context.Context, storage domain.BlobStore, meter metric.Meter, logger *slog.Logger) *SearchHistory {
	queries, _ := meter.Int64Counter(
		"search.queries.total",
		metric.WithDescription("Total number of recorded search queries"),
	)

	h := &SearchHistory{
		storage:  storage,
		logger:   logger,
		queries:  queries,
		searches: []string{},
	}
	h.load(ctx)
	return h
}

// RecentSearches returns up to MaxRecentSearches queries, newest first.
func (h *SearchHistory) RecentSearches() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.searches)
}

// AddSearchQuery moves query to the front of the list, dropping any older
// occurrence and the oldest entries beyond MaxRecentSearches. Empty queries
// are ignored.
func (h *SearchHistory) AddSearchQuery(ctx context.Context, query string) {
	if query == "" {
		return
	}

	h.mu.Lock()
	searches := slices.DeleteFunc(slices.Clone(h.searches), func(s string) bool {
		return s == query
	})
	searches = slices.Insert(searches, 0, query)
	if len(searches) > MaxRecentSearches {
		searches = searches[:MaxRecentSearches]
	}
	h.searches = searches
	h.version++
	version := h.version
	h.mu.Unlock()

	h.queries.Add(ctx, 1)
	h.logger.DebugContext(ctx, "Search query recorded", slog.String("query", query))
	h.save(ctx, searches, version)
}

// Clear forgets every recent search.
func (h *SearchHistory) Clear(ctx context.Context) {
	h.mu.Lock()
	h.searches = []string{}
	h.version++
	version := h.version
	h.mu.Unlock()

	h.logger.InfoContext(ctx, "Search history cleared")
	h.save(ctx, []string{}, version)
}

// save writes the list produced by edit number version, unless a newer
// list already reached storage. searches must not be modified afterwards.
func (h *SearchHistory) save(ctx context.Context, searches []string, version uint64) {
	h.persistMu.Lock()
	defer h.persistMu.Unlock()

	if version <= h.savedVersion {
		return
	}
	h.savedVersion = version

	data, err := json.Marshal(searches)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to encode recent searches",
			slog.String("error", err.Error()),
		)
		return
	}

	if err := h.storage.Set(ctx, domain.RecentSearchesStorageKey, data); err != nil {
		h.logger.ErrorContext(ctx, "Failed to save recent searches",
			slog.String("error", err.Error()),
		)
	}
}

func (h *SearchHistory) load(ctx context.Context) {
	data, found, err := h.storage.Get(ctx, domain.RecentSearchesStorageKey)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load recent searches, starting empty",
			slog.String("error", err.Error()),
		)
		return
	}
	if !found {
		return
	}

	var stored []string
	if err := json.Unmarshal(data, &stored); err != nil {
		h.logger.WarnContext(ctx, "Stored recent searches are unreadable, starting empty",
			slog.String("error", err.Error()),
		)
		return
	}

	for _, query := range stored {
		if query == "" || slices.Contains(h.searches, query) {
			continue
		}
		h.searches = append(h.searches, query)
		if len(h.searches) == MaxRecentSearches {
			break
		}
	}
}
