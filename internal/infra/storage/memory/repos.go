package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vietddude/chatpulse/internal/core/domain"
)

// MessageRepo is an in-memory storage.MessageRepository.
type MessageRepo struct {
	mu   sync.RWMutex
	msgs map[string]*domain.Message
}

func NewMessageRepo() *MessageRepo {
	return &MessageRepo{msgs: make(map[string]*domain.Message)}
}

func (r *MessageRepo) Save(ctx context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := *msg
	r.msgs[msg.ID] = &m
	return nil
}

func (r *MessageRepo) SaveBatch(ctx context.Context, msgs []*domain.Message) error {
	for _, msg := range msgs {
		if err := r.Save(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *MessageRepo) GetRecent(ctx context.Context, chatID domain.ChatID, limit int) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Message
	for _, m := range r.msgs {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MessageRepo) CountByChat(ctx context.Context, chatID domain.ChatID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, m := range r.msgs {
		if m.ChatID == chatID {
			n++
		}
	}
	return n, nil
}

func (r *MessageRepo) DeleteOlderThan(ctx context.Context, threshold int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.msgs {
		if m.Timestamp < threshold {
			delete(r.msgs, id)
		}
	}
	return nil
}

// ProfanityStatRepo is an in-memory storage.ProfanityStatRepository.
type ProfanityStatRepo struct {
	mu     sync.RWMutex
	counts map[[3]string]int64
}

func NewProfanityStatRepo() *ProfanityStatRepo {
	return &ProfanityStatRepo{counts: make(map[[3]string]int64)}
}

func (r *ProfanityStatRepo) Record(ctx context.Context, stat *domain.ProfanityStat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := stat.Count
	if n <= 0 {
		n = 1
	}
	r.counts[[3]string{string(stat.ChatID), string(stat.UserID), stat.Word}] += n
	return nil
}

func (r *ProfanityStatRepo) TopWords(ctx context.Context, chatID domain.ChatID, limit int) ([]*domain.ProfanityStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.ProfanityStat
	for key, n := range r.counts {
		if key[0] != string(chatID) {
			continue
		}
		out = append(out, &domain.ProfanityStat{
			ChatID: chatID,
			UserID: domain.UserID(key[1]),
			Word:   key[2],
			Count:  n,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
