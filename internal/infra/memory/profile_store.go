package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"footy-quiz-service/internal/domain"
)

// ProfileStore is an in-memory implementation of app.ProfileRepository.
// A single mutex serializes updates, which gives the same exactly-once
// guarantee the Redis store gets from WATCH.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.Profile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]domain.Profile)}
}

func (s *ProfileStore) Update(_ context.Context, userID string, fn func(p *domain.Profile) error) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		profile = domain.NewProfile(userID)
	}
	working := cloneProfile(profile)
	if err := fn(&working); err != nil {
		return domain.Profile{}, err
	}
	s.profiles[userID] = working
	return cloneProfile(working), nil
}

// Top implements app.LeaderboardReader over the stored profiles.
func (s *ProfileStore) Top(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]domain.LeaderboardEntry, 0, len(s.profiles))
	for _, profile := range s.profiles {
		entries = append(entries, domain.LeaderboardEntry{
			UserID: profile.TelegramID,
			Name:   profile.Name,
			Score:  profile.Score,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func cloneProfile(p domain.Profile) domain.Profile {
	clone := p
	clone.CompletedQuizzes = make(map[string]time.Time, len(p.CompletedQuizzes))
	for quizID, at := range p.CompletedQuizzes {
		clone.CompletedQuizzes[quizID] = at
	}
	clone.Submissions = make(map[string]domain.ScoreResult, len(p.Submissions))
	for quizID, result := range p.Submissions {
		clone.Submissions[quizID] = result
	}
	return clone
}
