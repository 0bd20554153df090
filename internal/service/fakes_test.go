package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/gkouam/soulbondai-sub004/internal/domain"
)

// Fakes en memoria para los contratos de persistencia y el contador atomico.

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
	failNext error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]domain.Profile{}}
}

func (f *fakeProfileRepo) Create(_ context.Context, p domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[p.UserID]; !ok {
		f.profiles[p.UserID] = p
	}
	return nil
}

func (f *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return domain.Profile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeProfileRepo) UpdateTrust(_ context.Context, userID string, trustLevel float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	p := f.profiles[userID]
	p.UserID = userID
	p.TrustLevel = trustLevel
	f.profiles[userID] = p
	return nil
}

func (f *fakeProfileRepo) UpdateArchetype(_ context.Context, userID string, archetype domain.Archetype) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.profiles[userID]
	p.UserID = userID
	p.Archetype = archetype
	f.profiles[userID] = p
	return nil
}

func (f *fakeProfileRepo) UpdateUsage(_ context.Context, userID string, usedToday int, resetDate time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.profiles[userID]
	p.UserID = userID
	p.MessagesUsedToday = usedToday
	p.MessageCount++
	p.LastMessageReset = resetDate
	f.profiles[userID] = p
	return nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []domain.ProgressionEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{}
}

func (f *fakeEventRepo) Append(_ context.Context, e domain.ProgressionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeEventRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.ProgressionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ProgressionEvent
	for _, e := range f.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeEventRepo) HasMilestone(_ context.Context, userID, milestoneID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.UserID == userID && e.Type == domain.EventMilestoneAchieved && e.MilestoneID == milestoneID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEventRepo) countMilestone(userID, milestoneID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.UserID == userID && e.Type == domain.EventMilestoneAchieved && e.MilestoneID == milestoneID {
			n++
		}
	}
	return n
}

type fakeMemoryRepo struct {
	mu       sync.Mutex
	memories map[string]domain.Memory
	// failFor hace fallar ListExpired para un usuario puntual.
	failFor map[string]error
}

func newFakeMemoryRepo() *fakeMemoryRepo {
	return &fakeMemoryRepo{
		memories: map[string]domain.Memory{},
		failFor:  map[string]error{},
	}
}

func (f *fakeMemoryRepo) Create(_ context.Context, m domain.Memory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memories[m.ID] = m
	return nil
}

func (f *fakeMemoryRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.Memory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Memory
	for _, m := range f.memories {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMemoryRepo) ListExpired(_ context.Context, userID string, now time.Time) ([]domain.Memory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[userID]; ok {
		return nil, err
	}
	var out []domain.Memory
	for _, m := range f.memories {
		if m.UserID == userID && m.ExpiresAt != nil && !m.ExpiresAt.After(now) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemoryRepo) ListUserIDs(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := map[string]struct{}{}
	for _, m := range f.memories {
		set[m.UserID] = struct{}{}
	}
	var ids []string
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeMemoryRepo) Search(_ context.Context, userID string, _ pgvector.Vector, k int) ([]domain.Memory, error) {
	return f.ListByUser(context.Background(), userID, k)
}

func (f *fakeMemoryRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.memories, id)
	return nil
}

func (f *fakeMemoryRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.memories)
}

type fakeSubscriptionRepo struct {
	mu    sync.Mutex
	tiers map[string]domain.SubscriptionTier
	err   error
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{tiers: map[string]domain.SubscriptionTier{}}
}

func (f *fakeSubscriptionRepo) GetTier(_ context.Context, userID string) (domain.SubscriptionTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	tier, ok := f.tiers[userID]
	if !ok {
		return domain.TierFree, nil
	}
	return domain.NormalizeTier(tier), nil
}

func (f *fakeSubscriptionRepo) Upsert(_ context.Context, sub domain.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tiers[sub.UserID] = sub.Tier
	return nil
}

func (f *fakeSubscriptionRepo) setTier(userID string, tier domain.SubscriptionTier) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tiers[userID] = tier
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []domain.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (f *fakeMessageRepo) Create(_ context.Context, m domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeMessageRepo) ListRecent(_ context.Context, userID string, limit int) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Message
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].UserID == userID {
			out = append(out, f.messages[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) CountByUser(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.messages {
		if m.UserID == userID {
			n++
		}
	}
	return n, nil
}

// fakeCounterStore emula el contador atomico compartido. Reset de todas las
// claves simula el vencimiento del TTL en el corte diario.
type fakeCounterStore struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{values: map[string]int64{}}
}

func (f *fakeCounterStore) IncrAndGet(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.values[key]++
	return f.values[key], nil
}

func (f *fakeCounterStore) IncrWithCeiling(_ context.Context, key string, limit int64, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.values[key]++
	if f.values[key] > limit {
		f.values[key]--
		return -1, nil
	}
	return f.values[key], nil
}

func (f *fakeCounterStore) DecrFloor(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if f.values[key] > 0 {
		f.values[key]--
	}
	return f.values[key], nil
}

func (f *fakeCounterStore) Get(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return f.values[key], nil
}

func (f *fakeCounterStore) Reset(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}

func (f *fakeCounterStore) TTLReset(_ context.Context, _ string, _ time.Time) error {
	return nil
}

// expireAll simula el TTL venciendo a medianoche UTC.
func (f *fakeCounterStore) expireAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = map[string]int64{}
}

var errStoreDown = errors.New("store down")
