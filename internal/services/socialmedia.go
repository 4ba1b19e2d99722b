package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/relieflink/disaster-response-api/internal/config"
	"github.com/relieflink/disaster-response-api/internal/geo"
	"github.com/relieflink/disaster-response-api/internal/logger"
	"github.com/relieflink/disaster-response-api/pkg/social"
)

// Post priorities, highest first.
const (
	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

var (
	urgentKeywords = []string{"sos", "urgent", "emergency", "help", "trapped", "critical"}
	highKeywords   = []string{"need", "require", "assistance", "rescue"}

	priorityOrder = map[string]int{
		PriorityUrgent: 3,
		PriorityHigh:   2,
		PriorityMedium: 1,
	}
)

// ClassifyPriority derives a post's priority from its text. Urgent
// keywords win over high ones regardless of position; anything else is
// medium.
func ClassifyPriority(content string) string {
	lower := strings.ToLower(content)

	for _, keyword := range urgentKeywords {
		if strings.Contains(lower, keyword) {
			return PriorityUrgent
		}
	}
	for _, keyword := range highKeywords {
		if strings.Contains(lower, keyword) {
			return PriorityHigh
		}
	}
	return PriorityMedium
}

// PostProvider fetches raw posts from a social-media source.
type PostProvider interface {
	Search(ctx context.Context, keywords []string, location string) ([]social.Post, error)
}

// SocialMediaService fetches, prioritizes, and caches social-media signal
// for a disaster. The concrete provider is selected at construction: the
// Twitter client when a bearer token is configured, deterministic mock
// content otherwise. Provider failures degrade to mock content.
type SocialMediaService struct {
	cache    Cache
	provider PostProvider
	mock     *MockPostProvider
	cacheTTL time.Duration
}

func NewSocialMediaService(cfg *config.Config, cache Cache, clock clockwork.Clock) *SocialMediaService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	mock := &MockPostProvider{clock: clock}

	var provider PostProvider = mock
	if cfg.TwitterBearerToken != "" {
		provider = social.NewTwitterClient(cfg.TwitterBearerToken, cfg.GeocodeTimeout)
	}

	return &SocialMediaService{
		cache:    cache,
		provider: provider,
		mock:     mock,
		cacheTTL: cfg.SocialCacheTTL,
	}
}

// SearchPosts returns prioritized posts matching the keywords, most
// urgent and most recent first. Location defaults to "global" for the
// cache key when absent.
func (s *SocialMediaService) SearchPosts(ctx context.Context, keywords []string, location string) []social.Post {
	log := logger.GetLogger("social")

	locationKey := location
	if locationKey == "" {
		locationKey = "global"
	}
	cacheKey := geo.CacheKey("social_media", strings.Join(keywords, ","), locationKey)

	var cached []social.Post
	if cacheGet(ctx, s.cache, cacheKey, &cached) {
		return cached
	}

	posts, err := s.provider.Search(ctx, keywords, location)
	if err != nil {
		log.Warnf("social provider error, falling back to mock: %v", err)
		posts, _ = s.mock.Search(ctx, keywords, location)
	}

	// Priority is derived from current content on every fetch, never
	// taken from provider input.
	for i := range posts {
		posts[i].Priority = ClassifyPriority(posts[i].Content)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if priorityOrder[posts[i].Priority] != priorityOrder[posts[j].Priority] {
			return priorityOrder[posts[i].Priority] > priorityOrder[posts[j].Priority]
		}
		return posts[i].Timestamp.After(posts[j].Timestamp)
	})

	s.cache.Set(ctx, cacheKey, posts, s.cacheTTL)
	return posts
}

// MockPostProvider produces deterministic disaster-feed content, filtered
// by case-insensitive keyword substring match when keywords are given.
type MockPostProvider struct {
	clock clockwork.Clock
}

func NewMockPostProvider(clock clockwork.Clock) *MockPostProvider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MockPostProvider{clock: clock}
}

func (m *MockPostProvider) Search(_ context.Context, keywords []string, location string) ([]social.Post, error) {
	area := func(fallback string) string {
		if location != "" {
			return location
		}
		return fallback
	}
	now := m.clock.Now()

	posts := []social.Post{
		{
			ID:        "1",
			Content:   fmt.Sprintf("#floodrelief Need immediate food supplies in %s. Family of 4 trapped on second floor.", area("downtown area")),
			User:      "citizen_help",
			Timestamp: now.Add(-10 * time.Minute),
		},
		{
			ID:        "2",
			Content:   fmt.Sprintf("SOS: Medical emergency in %s. Need ambulance access! #emergency #disaster", area("affected area")),
			User:      "firstresponder",
			Timestamp: now.Add(-30 * time.Minute),
		},
		{
			ID:        "3",
			Content:   fmt.Sprintf("Red Cross shelter now open at %s. Safe space available for families. #shelter #safety", area("community center")),
			User:      "redcross_local",
			Timestamp: now.Add(-45 * time.Minute),
		},
		{
			ID:        "4",
			Content:   "Urgent: Running low on water supplies. Distribution point needs restocking. #water #supplies",
			User:      "relief_coord",
			Timestamp: now.Add(-time.Hour),
		},
		{
			ID:        "5",
			Content:   "Power restored to sectors 1-3. Still working on sector 4. Updates every hour. #infrastructure",
			User:      "power_company",
			Timestamp: now.Add(-90 * time.Minute),
		},
	}

	if len(keywords) == 0 {
		return posts, nil
	}

	matched := make([]social.Post, 0, len(posts))
	for _, post := range posts {
		lower := strings.ToLower(post.Content)
		for _, keyword := range keywords {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				matched = append(matched, post)
				break
			}
		}
	}
	return matched, nil
}
