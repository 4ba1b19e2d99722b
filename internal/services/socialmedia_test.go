package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/relieflink/disaster-response-api/internal/config"
	"github.com/relieflink/disaster-response-api/pkg/social"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPriority(t *testing.T) {
	cases := []struct {
		content string
		want    string
	}{
		{"SOS: trapped on the roof, need evacuation", PriorityUrgent},
		{"URGENT medical situation downtown", PriorityUrgent},
		{"We need food supplies at the shelter", PriorityHigh},
		{"Rescue teams requested at the bridge", PriorityHigh},
		{"Power restored to sectors 1-3", PriorityMedium},
		{"", PriorityMedium},
		// Urgent keywords win even when high ones appear first.
		{"need assistance, situation critical", PriorityUrgent},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyPriority(tc.content), "content: %q", tc.content)
	}
}

func TestMockPostProvider_FiltersByKeyword(t *testing.T) {
	provider := NewMockPostProvider(clockwork.NewFakeClock())

	posts, err := provider.Search(context.Background(), []string{"shelter"}, "")
	require.NoError(t, err)
	require.NotEmpty(t, posts)
	for _, post := range posts {
		assert.Contains(t, post.Content, "shelter")
	}
}

func TestMockPostProvider_NoKeywordsReturnsAll(t *testing.T) {
	provider := NewMockPostProvider(clockwork.NewFakeClock())

	posts, err := provider.Search(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Len(t, posts, 5)
}

func TestMockPostProvider_InterpolatesLocation(t *testing.T) {
	provider := NewMockPostProvider(clockwork.NewFakeClock())

	posts, err := provider.Search(context.Background(), []string{"sos"}, "Lower Manhattan")
	require.NoError(t, err)
	require.NotEmpty(t, posts)
	assert.Contains(t, posts[0].Content, "Lower Manhattan")
}

type failingPostProvider struct{}

func (failingPostProvider) Search(context.Context, []string, string) ([]social.Post, error) {
	return nil, errors.New("rate limited")
}

func newSocialService(provider PostProvider, clock clockwork.Clock) *SocialMediaService {
	return &SocialMediaService{
		cache:    NewMemoryCache(clock),
		provider: provider,
		mock:     NewMockPostProvider(clock),
		cacheTTL: 15 * time.Minute,
	}
}

func TestSearchPosts_SortsByPriorityThenRecency(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := newSocialService(NewMockPostProvider(clock), clock)

	posts := svc.SearchPosts(context.Background(), nil, "")
	require.NotEmpty(t, posts)

	for i := 1; i < len(posts); i++ {
		prev, cur := posts[i-1], posts[i]
		if priorityOrder[prev.Priority] == priorityOrder[cur.Priority] {
			assert.False(t, cur.Timestamp.After(prev.Timestamp),
				"within a priority, newer posts come first")
		} else {
			assert.Greater(t, priorityOrder[prev.Priority], priorityOrder[cur.Priority])
		}
	}
}

func TestSearchPosts_ClassifiesEveryPost(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := newSocialService(NewMockPostProvider(clock), clock)

	posts := svc.SearchPosts(context.Background(), nil, "")
	require.NotEmpty(t, posts)
	for _, post := range posts {
		assert.Contains(t, priorityOrder, post.Priority)
	}
}

func TestSearchPosts_ProviderFailureFallsBackToMock(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := newSocialService(failingPostProvider{}, clock)

	posts := svc.SearchPosts(context.Background(), nil, "")
	assert.Len(t, posts, 5, "mock content stands in when the provider fails")
}

func TestSearchPosts_CachesResults(t *testing.T) {
	clock := clockwork.NewFakeClock()
	counting := &countingProvider{inner: NewMockPostProvider(clock)}
	svc := newSocialService(counting, clock)

	first := svc.SearchPosts(context.Background(), []string{"flood"}, "NYC")
	second := svc.SearchPosts(context.Background(), []string{"flood"}, "NYC")

	assert.Equal(t, len(first), len(second))
	assert.Equal(t, 1, counting.calls, "second search must come from cache")
}

func TestSearchPosts_CacheKeyedByLocation(t *testing.T) {
	clock := clockwork.NewFakeClock()
	counting := &countingProvider{inner: NewMockPostProvider(clock)}
	svc := newSocialService(counting, clock)

	svc.SearchPosts(context.Background(), []string{"flood"}, "NYC")
	svc.SearchPosts(context.Background(), []string{"flood"}, "Chicago")

	assert.Equal(t, 2, counting.calls)
}

type countingProvider struct {
	inner PostProvider
	calls int
}

func (p *countingProvider) Search(ctx context.Context, keywords []string, location string) ([]social.Post, error) {
	p.calls++
	return p.inner.Search(ctx, keywords, location)
}

func TestNewSocialMediaService_DefaultsToMockProvider(t *testing.T) {
	cfg := &config.Config{SocialCacheTTL: 15 * time.Minute}
	svc := NewSocialMediaService(cfg, NewMemoryCache(nil), clockwork.NewFakeClock())

	_, isMock := svc.provider.(*MockPostProvider)
	assert.True(t, isMock)
}
