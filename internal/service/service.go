// пакет сервис реализует слой бизнес логики: кэш датасета и фасад аналитики

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Asus/TradeAnalytics/internal/entity"
	"github.com/Asus/TradeAnalytics/internal/normalize"
	"github.com/Asus/TradeAnalytics/internal/scoring"

	"github.com/google/uuid"
)

var ErrNoSource = errors.New("dataset source is not configured")

// Snapshot - нормализованные таблицы одной загрузки. Не изменяется после публикации,
// поэтому читатели получают срезы без копирования и не должны их менять.
type Snapshot struct {
	ID       uuid.UUID              `json:"id"`
	LoadedAt time.Time              `json:"loaded_at"`
	Orders   []entity.ScoredOrder   `json:"-"`
	Products []entity.ProductRecord `json:"-"`
}

// Store кэширует датасет: первая загрузка ленивая, дальше данные живут до Reload или Invalidate
type Store struct {
	source Source
	norm   *normalize.Normalizer

	mu   sync.RWMutex // защищает snap
	snap *Snapshot

	loadMu sync.Mutex // одна загрузка за раз
}

func NewStore(source Source, norm *normalize.Normalizer) *Store {
	if norm == nil {
		norm = normalize.NewNormalizer(nil)
	}
	return &Store{source: source, norm: norm}
}

func (s *Store) current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Snapshot returns the cached dataset, loading it on first use. Concurrent first
// callers share one load; a failed load caches nothing.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := s.current(); snap != nil {
		return snap, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	// пока ждали, загрузку мог сделать другой вызов
	if snap := s.current(); snap != nil {
		return snap, nil
	}
	return s.loadLocked(ctx)
}

// Reload loads the dataset again and swaps it in. On error the previous snapshot stays.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	return s.loadLocked(ctx)
}

// Invalidate drops the cached dataset; the next read loads it again.
func (s *Store) Invalidate() {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.mu.Lock()
	s.snap = nil
	s.mu.Unlock()
	slog.Info("dataset invalidated")
}

func (s *Store) Orders(ctx context.Context) ([]entity.ScoredOrder, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Orders, nil
}

func (s *Store) ProductRecords(ctx context.Context) ([]entity.ProductRecord, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Products, nil
}

// loadLocked вызывается только под loadMu
func (s *Store) loadLocked(ctx context.Context) (*Snapshot, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}
	started := time.Now()

	orderTable, err := s.source.LoadOrderTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("error occurred while loading orders: %w", err)
	}
	orders, err := s.norm.Orders(orderTable)
	if err != nil {
		return nil, fmt.Errorf("error occurred while normalizing orders: %w", err)
	}

	productTable, err := s.source.LoadProductTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("error occurred while loading order items: %w", err)
	}
	products, err := s.norm.ProductRecords(productTable)
	if err != nil {
		return nil, fmt.Errorf("error occurred while normalizing order items: %w", err)
	}

	snap := &Snapshot{
		ID:       uuid.New(),
		LoadedAt: time.Now().UTC(),
		Orders:   scoring.ScoreOrders(orders),
		Products: products,
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	slog.Info("dataset loaded",
		"snapshot_id", snap.ID,
		"orders", len(snap.Orders),
		"order_items", len(snap.Products),
		"took", time.Since(started))
	return snap, nil
}
