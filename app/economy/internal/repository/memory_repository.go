package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/pkg/idgen"
	"github.com/lk2023060901/coinbot/pkg/logger"
)

// memoryState 内存仓储的完整状态
type memoryState struct {
	accounts  map[uint64]*model.Account
	items     []*model.ShopItem
	rewards   []*model.GachaReward
	inventory map[uint64][]*model.InventoryEntry
	grants    map[uint64][]*model.RewardGrant
}

func newMemoryState() *memoryState {
	return &memoryState{
		accounts:  make(map[uint64]*model.Account),
		inventory: make(map[uint64][]*model.InventoryEntry),
		grants:    make(map[uint64][]*model.RewardGrant),
	}
}

// clone 深拷贝，事务在副本上修改，提交时整体替换
func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	for id, acc := range s.accounts {
		c.accounts[id] = acc.Clone()
	}
	for _, it := range s.items {
		cp := *it
		c.items = append(c.items, &cp)
	}
	for _, r := range s.rewards {
		cp := *r
		c.rewards = append(c.rewards, &cp)
	}
	for id, list := range s.inventory {
		c.inventory[id] = slices.Clone(list)
	}
	for id, list := range s.grants {
		c.grants[id] = slices.Clone(list)
	}
	return c
}

// memoryRepository 进程内仓储，用于单机部署与测试
type memoryRepository struct {
	mu       sync.RWMutex
	state    *memoryState
	itemSeq  *idgen.Sequence
	rewardID *idgen.Sequence
	now      func() time.Time
	logger   logger.Logger
}

// NewMemoryRepository 创建内存仓储
func NewMemoryRepository(l logger.Logger) EconomyRepository {
	return &memoryRepository{
		state:    newMemoryState(),
		itemSeq:  idgen.NewSequence(0),
		rewardID: idgen.NewSequence(0),
		now:      time.Now,
		logger:   l.Named("repository.memory"),
	}
}

func (r *memoryRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &memoryTx{repo: r, state: r.state.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.state = tx.state
	return nil
}

func (r *memoryRepository) ListItems(_ context.Context) ([]*model.ShopItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.ShopItem, 0, len(r.state.items))
	for _, it := range r.state.items {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memoryRepository) ListRewards(_ context.Context) ([]*model.GachaReward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRewards(r.state.rewards), nil
}

func (r *memoryRepository) ListInventory(_ context.Context, userID uint64) ([]*model.InventoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.state.inventory[userID]), nil
}

func (r *memoryRepository) ListRewardGrants(_ context.Context, userID uint64) ([]*model.RewardGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.state.grants[userID]), nil
}

func (r *memoryRepository) TopBalances(_ context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	r.mu.RLock()
	entries := make([]*model.LeaderboardEntry, 0, len(r.state.accounts))
	for _, acc := range r.state.accounts {
		if acc.Balance > 0 {
			entries = append(entries, &model.LeaderboardEntry{UserID: acc.UserID, Balance: acc.Balance})
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(entries, func(a, b *model.LeaderboardEntry) int {
		if a.Balance != b.Balance {
			if a.Balance > b.Balance {
				return -1
			}
			return 1
		}
		switch {
		case a.UserID < b.UserID:
			return -1
		case a.UserID > b.UserID:
			return 1
		}
		return 0
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func cloneRewards(src []*model.GachaReward) []*model.GachaReward {
	out := make([]*model.GachaReward, 0, len(src))
	for _, rw := range src {
		cp := *rw
		out = append(out, &cp)
	}
	return out
}

// memoryTx 在状态副本上执行的事务
type memoryTx struct {
	repo  *memoryRepository
	state *memoryState
}

func (t *memoryTx) LockAccount(_ context.Context, userID uint64, starting int64) (*model.Account, bool, error) {
	if acc, ok := t.state.accounts[userID]; ok {
		return acc.Clone(), false, nil
	}
	acc := model.NewAccount(userID, starting, t.repo.now())
	t.state.accounts[userID] = acc
	return acc.Clone(), true, nil
}

func (t *memoryTx) SaveAccount(_ context.Context, acc *model.Account) error {
	if acc.Balance < 0 {
		return model.InsufficientFunds(acc.Balance, 0)
	}
	cp := acc.Clone()
	cp.UpdatedAt = t.repo.now()
	t.state.accounts[acc.UserID] = cp
	return nil
}

func (t *memoryTx) findItem(itemID int64) int {
	return slices.IndexFunc(t.state.items, func(it *model.ShopItem) bool { return it.ID == itemID })
}

func (t *memoryTx) LockItem(_ context.Context, itemID int64) (*model.ShopItem, error) {
	i := t.findItem(itemID)
	if i < 0 {
		return nil, nil
	}
	cp := *t.state.items[i]
	return &cp, nil
}

func (t *memoryTx) UpdateItemStock(_ context.Context, itemID, stock int64) error {
	i := t.findItem(itemID)
	if i < 0 {
		return model.ItemNotFound(itemID)
	}
	t.state.items[i].Stock = stock
	return nil
}

func (t *memoryTx) InsertItem(_ context.Context, item *model.ShopItem) error {
	id, err := t.repo.itemSeq.NextID()
	if err != nil {
		return err
	}
	item.ID = id
	if item.CreatedAt.IsZero() {
		item.CreatedAt = t.repo.now()
	}
	cp := *item
	t.state.items = append(t.state.items, &cp)
	return nil
}

func (t *memoryTx) DeleteItem(_ context.Context, itemID int64) (bool, error) {
	i := t.findItem(itemID)
	if i < 0 {
		return false, nil
	}
	t.state.items = slices.Delete(t.state.items, i, i+1)
	return true, nil
}

func (t *memoryTx) ListRewards(_ context.Context) ([]*model.GachaReward, error) {
	return cloneRewards(t.state.rewards), nil
}

func (t *memoryTx) InsertReward(_ context.Context, reward *model.GachaReward) error {
	for _, rw := range t.state.rewards {
		if rw.RoleRef == reward.RoleRef {
			return model.DuplicateReward(reward.RoleRef)
		}
	}
	id, err := t.repo.rewardID.NextID()
	if err != nil {
		return err
	}
	reward.ID = id
	if reward.CreatedAt.IsZero() {
		reward.CreatedAt = t.repo.now()
	}
	cp := *reward
	t.state.rewards = append(t.state.rewards, &cp)
	return nil
}

func (t *memoryTx) DeleteReward(_ context.Context, rewardID int64) (bool, error) {
	i := slices.IndexFunc(t.state.rewards, func(rw *model.GachaReward) bool { return rw.ID == rewardID })
	if i < 0 {
		return false, nil
	}
	t.state.rewards = slices.Delete(t.state.rewards, i, i+1)
	return true, nil
}

func (t *memoryTx) AppendInventory(_ context.Context, entry *model.InventoryEntry) error {
	cp := *entry
	t.state.inventory[entry.UserID] = append(t.state.inventory[entry.UserID], &cp)
	return nil
}

func (t *memoryTx) AppendRewardGrant(_ context.Context, grant *model.RewardGrant) error {
	cp := *grant
	t.state.grants[grant.UserID] = append(t.state.grants[grant.UserID], &cp)
	return nil
}

func (t *memoryTx) HasRewardGrant(_ context.Context, userID uint64, roleRef string) (bool, error) {
	return slices.ContainsFunc(t.state.grants[userID], func(g *model.RewardGrant) bool {
		return g.RoleRef == roleRef
	}), nil
}
