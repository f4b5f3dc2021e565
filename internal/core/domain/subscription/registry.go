// internal/core/domain/subscription/registry.go
package subscription

import (
	"fmt"
	"sort"
	"sync"

	"ethfi-report-bot/pkg/logger"
)

// Registry - множество получателей рассылки.
// Память синхронизируется с диском при старте (диск -> память)
// и после каждой мутации (память -> диск). Все мутации сериализованы мьютексом.
type Registry struct {
	mu    sync.Mutex
	store Store
	ids   map[int64]struct{}
}

// NewRegistry создает реестр и сразу загружает его из хранилища
func NewRegistry(store Store) *Registry {
	r := &Registry{store: store, ids: make(map[int64]struct{})}
	r.Load()
	return r
}

// Load перечитывает хранилище. Ошибка чтения или разбора дает пустой реестр.
func (r *Registry) Load() []int64 {
	ids, err := r.store.Load()
	if err != nil {
		logger.Warn("⚠️ [Subscribers] Хранилище повреждено, начинаем с пустого списка: %v", err)
		ids = nil
	}

	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	r.mu.Lock()
	r.ids = set
	r.mu.Unlock()

	logger.Info("📋 [Subscribers] Загружено подписчиков: %d", len(set))
	return r.Snapshot()
}

// Save сохраняет текущее множество
func (r *Registry) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Save(r.sortedLocked())
}

// Add добавляет получателя. added=false, если он уже был подписан.
// При ошибке записи изменение откатывается.
func (r *Registry) Add(id int64) (added bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ids[id]; ok {
		return false, nil
	}
	r.ids[id] = struct{}{}
	if err := r.store.Save(r.sortedLocked()); err != nil {
		delete(r.ids, id)
		return false, fmt.Errorf("save subscribers: %w", err)
	}
	return true, nil
}

// Remove удаляет получателя. removed=false означает "не подписан".
func (r *Registry) Remove(id int64) (removed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ids[id]; !ok {
		return false, nil
	}
	delete(r.ids, id)
	if err := r.store.Save(r.sortedLocked()); err != nil {
		r.ids[id] = struct{}{}
		return false, fmt.Errorf("save subscribers: %w", err)
	}
	return true, nil
}

// Contains проверяет подписку
func (r *Registry) Contains(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[id]
	return ok
}

// Count количество подписчиков
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

// Snapshot возвращает копию на момент вызова: мутации во время рассылки
// не влияют на уже начатую итерацию
func (r *Registry) Snapshot() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedLocked()
}

func (r *Registry) sortedLocked() []int64 {
	out := make([]int64, 0, len(r.ids))
	for id := range r.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
