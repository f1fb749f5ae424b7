package repo

import (
	"context"
	"sync"
	"time"

	"user-resource-service/internal/domain"
	"user-resource-service/pkg/utils"
)

// MemoryUserRepo 进程内实现，保持插入顺序；username 唯一性在写锁内校验
type MemoryUserRepo struct {
	mu    sync.RWMutex
	byID  map[string]*domain.User
	order []string
	now   func() time.Time
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byID: make(map[string]*domain.User),
		now:  time.Now,
	}
}

func (r *MemoryUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out, nil
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepo) FindOne(_ context.Context, f domain.UserFilter) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u := r.lookupUsername(f.Username); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryUserRepo) Create(_ context.Context, f domain.UserFields) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupUsername(f.Username) != nil {
		return nil, domain.ErrDuplicateUsername
	}
	now := r.now()
	u := &domain.User{
		ID:        utils.NewID(),
		Username:  f.Username,
		Password:  f.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.byID[u.ID] = u
	r.order = append(r.order, u.ID)
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepo) UpdateByID(_ context.Context, id string, f domain.UserFields) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	if other := r.lookupUsername(f.Username); other != nil && other.ID != id {
		return false, domain.ErrDuplicateUsername
	}
	u.Username = f.Username
	u.Password = f.Password
	u.UpdatedAt = r.now()
	return true, nil
}

func (r *MemoryUserRepo) DeleteByID(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// Len 当前记录数
func (r *MemoryUserRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *MemoryUserRepo) lookupUsername(name string) *domain.User {
	for _, u := range r.byID {
		if u.Username == name {
			return u
		}
	}
	return nil
}
