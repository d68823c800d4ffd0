// Package qna owns per-entity audience questions: a bounded persistent log
// (at most two stored questions per entity, oldest evicted first), transient
// form drafts, and the dual-key rate limit (per-submitter and per-device
// counters that only ever go up).
package qna

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"condeck/internal/model"
	"condeck/internal/store"

	"github.com/google/uuid"
)

const (
	// MaxStored is the cap on stored questions per entity.
	MaxStored = 2
	// DefaultSubmitter is recorded when no name is given.
	DefaultSubmitter = "Anonymous"
)

type Scope string

const (
	ScopeUser   Scope = "user"
	ScopeDevice Scope = "device"
)

// RateLimitedError reports which quota blocked a submission. The caller keeps
// the draft so nothing the user typed is lost.
type RateLimitedError struct {
	Entity string
	Scope  Scope
	Limit  int
	Count  int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: %s quota for %s reached (%d/%d)", e.Scope, e.Entity, e.Count, e.Limit)
}

// Message is the user-facing modal copy, naming the quota and its limit.
func (e *RateLimitedError) Message() string {
	if e.Scope == ScopeUser {
		return fmt.Sprintf("You have already submitted %d questions for %s. Please wait for the event to ask more questions.", e.Limit, e.Entity)
	}
	return fmt.Sprintf("This device has already submitted %d questions for %s. Please wait for the live event to ask additional questions.", e.Limit, e.Entity)
}

// Notifier receives fire-and-forget notifications after local state has been
// updated. Implementations must not block.
type Notifier interface {
	QuestionSubmitted(entity string, q model.StoredQuestion)
	QuestionDeleted(entity, questionID string)
}

type Options struct {
	UserLimit   int
	DeviceLimit int
	// MaxTextLen clips over-length question text defensively; the UI blocks
	// it first, the store just refuses to corrupt.
	MaxTextLen int
	Notifier   Notifier
	Now        func() time.Time
	NewID      func() string
}

type QA struct {
	kv *store.KV

	userLimit   int
	deviceLimit int
	maxTextLen  int
	notifier    Notifier
	now         func() time.Time
	newID       func() string
}

func New(kv *store.KV, opts Options) *QA {
	q := &QA{
		kv:          kv,
		userLimit:   opts.UserLimit,
		deviceLimit: opts.DeviceLimit,
		maxTextLen:  opts.MaxTextLen,
		notifier:    opts.Notifier,
		now:         opts.Now,
		newID:       opts.NewID,
	}
	if q.userLimit <= 0 {
		q.userLimit = 2
	}
	if q.deviceLimit <= 0 {
		q.deviceLimit = 3
	}
	if q.maxTextLen <= 0 {
		q.maxTextLen = 140
	}
	if q.now == nil {
		q.now = time.Now
	}
	if q.newID == nil {
		q.newID = uuid.NewString
	}
	return q
}

// List returns the stored questions for an entity in insertion order,
// re-reading persisted state on every call. Corrupt or unreadable state
// reads as empty rather than failing the interaction.
func (q *QA) List(ctx context.Context, entity string) []model.StoredQuestion {
	raw, ok, err := q.kv.Get(ctx, store.QuestionsKey(entity))
	if err != nil || !ok {
		return nil
	}
	var qs []model.StoredQuestion
	if err := json.Unmarshal([]byte(raw), &qs); err != nil {
		return nil
	}
	return qs
}

// Submit appends a question for entity after checking both quotas.
//
// Quotas are counter-based, not log-based: a submitter who has submitted
// twice stays blocked even after deleting a stored question. On success the
// local store is updated first (log truncated to the newest MaxStored, both
// counters incremented, draft cleared) and only then is the notifier fired,
// so local state is correct regardless of what the remote call does.
func (q *QA) Submit(ctx context.Context, entity, text, submitter, email string) (model.StoredQuestion, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.StoredQuestion{}, errors.New("empty question")
	}
	if runes := []rune(text); len(runes) > q.maxTextLen {
		text = string(runes[:q.maxTextLen])
	}
	submitter = strings.TrimSpace(submitter)
	if submitter == "" {
		submitter = DefaultSubmitter
	}

	if count := q.UserCount(ctx, entity, submitter); count >= q.userLimit {
		return model.StoredQuestion{}, &RateLimitedError{Entity: entity, Scope: ScopeUser, Limit: q.userLimit, Count: count}
	}
	if count := q.DeviceCount(ctx, entity); count >= q.deviceLimit {
		return model.StoredQuestion{}, &RateLimitedError{Entity: entity, Scope: ScopeDevice, Limit: q.deviceLimit, Count: count}
	}

	stored := model.StoredQuestion{
		ID:        q.newID(),
		Text:      text,
		Submitter: submitter,
		Email:     strings.TrimSpace(email),
		CreatedAt: q.now().UTC(),
	}

	qs := append(q.List(ctx, entity), stored)
	if len(qs) > MaxStored {
		qs = qs[len(qs)-MaxStored:]
	}
	q.writeQuestions(ctx, entity, qs)

	q.bump(ctx, store.SubmitCountKey(entity, submitter))
	q.bump(ctx, store.DeviceCountKey(entity))
	q.ClearDraft(ctx, entity)

	if q.notifier != nil {
		q.notifier.QuestionSubmitted(entity, stored)
	}
	return stored, nil
}

// Remove deletes a stored question and returns the remaining log.
// Counters are deliberately untouched: deleting a question does not refund
// submission quota.
func (q *QA) Remove(ctx context.Context, entity, questionID string) []model.StoredQuestion {
	qs := q.List(ctx, entity)
	kept := qs[:0]
	removed := false
	for _, sq := range qs {
		if sq.ID == questionID {
			removed = true
			continue
		}
		kept = append(kept, sq)
	}
	if !removed {
		return qs
	}
	q.writeQuestions(ctx, entity, kept)
	if q.notifier != nil {
		q.notifier.QuestionDeleted(entity, questionID)
	}
	return kept
}

func (q *QA) writeQuestions(ctx context.Context, entity string, qs []model.StoredQuestion) {
	b, err := json.Marshal(qs)
	if err != nil {
		return
	}
	// Best-effort: a StorageError means the write landed in the session
	// overlay, which is all the UI needs.
	var serr *store.StorageError
	if err := q.kv.Set(ctx, store.QuestionsKey(entity), string(b)); err != nil && !errors.As(err, &serr) {
		return
	}
}

func (q *QA) bump(ctx context.Context, key string) {
	n := q.readCount(ctx, key)
	_ = q.kv.Set(ctx, key, strconv.Itoa(n+1))
}

func (q *QA) readCount(ctx context.Context, key string) int {
	raw, ok, err := q.kv.Get(ctx, key)
	if err != nil || !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// UserCount is the number of submissions ever made for entity under the
// given submitter name on this device.
func (q *QA) UserCount(ctx context.Context, entity, submitter string) int {
	return q.readCount(ctx, store.SubmitCountKey(entity, submitter))
}

// DeviceCount is the number of submissions ever made for entity on this
// device, across all submitter names.
func (q *QA) DeviceCount(ctx context.Context, entity string) int {
	return q.readCount(ctx, store.DeviceCountKey(entity))
}

// SaveDraft overwrites the single draft slot for entity.
func (q *QA) SaveDraft(ctx context.Context, entity string, d model.Draft) {
	b, err := json.Marshal(d)
	if err != nil {
		return
	}
	_ = q.kv.Set(ctx, store.DraftKey(entity), string(b))
}

// Draft returns the saved draft for entity, or a zero Draft.
func (q *QA) Draft(ctx context.Context, entity string) model.Draft {
	raw, ok, err := q.kv.Get(ctx, store.DraftKey(entity))
	if err != nil || !ok {
		return model.Draft{}
	}
	var d model.Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return model.Draft{}
	}
	return d
}

func (q *QA) ClearDraft(ctx context.Context, entity string) {
	_ = q.kv.Delete(ctx, store.DraftKey(entity))
}

// Reset clears all Q&A state (stored questions, drafts and both counter
// kinds). This is the admin escape hatch, not part of the normal flow.
func (q *QA) Reset(ctx context.Context) (int, error) {
	cleared := 0
	for _, prefix := range store.QAPrefixes() {
		keys, err := q.kv.Keys(ctx, prefix)
		if err != nil {
			var serr *store.StorageError
			if !errors.As(err, &serr) {
				return cleared, err
			}
		}
		for _, k := range keys {
			if err := q.kv.Delete(ctx, k); err == nil {
				cleared++
			}
		}
	}
	return cleared, nil
}
