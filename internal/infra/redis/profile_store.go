// Package redis backs the profile document store, the secure quiz cache and
// the global leaderboard with Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"footy-quiz-service/internal/domain"
)

// defaultMaxRetries bounds how often a lost optimistic race is retried
// before the caller gets domain.ErrTransactionTimeout.
const defaultMaxRetries = 8

// ProfileStore keeps one JSON profile document per user and serializes
// mutations with WATCH/MULTI: the write commits only if the document is
// unchanged since the read. The leaderboard sorted set and the display-name
// hash are updated inside the same MULTI block, so they can never drift from
// the profile.
type ProfileStore struct {
	client     *redis.Client
	appID      string
	maxRetries int
}

func NewProfileStore(client *redis.Client, appID string) *ProfileStore {
	return &ProfileStore{
		client:     client,
		appID:      appID,
		maxRetries: defaultMaxRetries,
	}
}

func (s *ProfileStore) Update(ctx context.Context, userID string, fn func(p *domain.Profile) error) (domain.Profile, error) {
	key := s.profileKey(userID)
	var updated domain.Profile

	txn := func(tx *redis.Tx) error {
		profile, err := s.readProfile(ctx, tx, key, userID)
		if err != nil {
			return err
		}
		if err := fn(&profile); err != nil {
			return err
		}

		raw, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("marshal profile: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			pipe.ZAdd(ctx, s.leaderboardKey(), redis.Z{Score: float64(profile.Score), Member: userID})
			pipe.HSet(ctx, s.namesKey(), userID, profile.Name)
			return nil
		})
		if err != nil {
			return err
		}
		updated = profile
		return nil
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, txn, key)
		switch {
		case err == nil:
			return updated, nil
		case errors.Is(err, redis.TxFailedErr):
			continue // document changed under us, re-read and retry
		default:
			return domain.Profile{}, err
		}
	}
	return domain.Profile{}, domain.ErrTransactionTimeout
}

// Top implements app.LeaderboardReader from the sorted set maintained by
// Update. Ties are broken by Redis's lexicographic member order.
func (s *ProfileStore) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	members, err := s.client.ZRevRangeWithScores(ctx, s.leaderboardKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard range: %w", err)
	}
	if len(members) == 0 {
		return []domain.LeaderboardEntry{}, nil
	}

	userIDs := make([]string, len(members))
	for i, member := range members {
		userIDs[i] = member.Member.(string)
	}
	names, err := s.client.HMGet(ctx, s.namesKey(), userIDs...).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard names: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, len(members))
	for i, member := range members {
		name := "Player"
		if i < len(names) {
			if n, ok := names[i].(string); ok && n != "" {
				name = n
			}
		}
		entries[i] = domain.LeaderboardEntry{
			Rank:   i + 1,
			UserID: userIDs[i],
			Name:   name,
			Score:  int(member.Score),
		}
	}
	return entries, nil
}

func (s *ProfileStore) readProfile(ctx context.Context, tx *redis.Tx, key, userID string) (domain.Profile, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return domain.NewProfile(userID), nil
	case err != nil:
		return domain.Profile{}, err
	}

	var profile domain.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return domain.Profile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	if profile.CompletedQuizzes == nil {
		profile.CompletedQuizzes = make(map[string]time.Time)
	}
	if profile.Submissions == nil {
		profile.Submissions = make(map[string]domain.ScoreResult)
	}
	return profile, nil
}

func (s *ProfileStore) profileKey(userID string) string {
	return "app:" + s.appID + ":profile:" + userID
}

func (s *ProfileStore) leaderboardKey() string {
	return "app:" + s.appID + ":leaderboard"
}

func (s *ProfileStore) namesKey() string {
	return "app:" + s.appID + ":names"
}
