package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

var statsNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func newStatsFixture() (*fakeStore, *fakeStatsRepo, *statsService) {
	store := newFakeStore()
	repo := &fakeStatsRepo{fakeStore: store}
	svc := NewStatsService(repo, testTimeout).(*statsService)
	svc.now = func() time.Time { return statsNow }
	return store, repo, svc
}

func (s *fakeStore) addRegistration(eventID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs = append(s.regs, &domain.Registration{
		ID: s.nextID("reg"), EventID: eventID, UserID: userID, Status: domain.RegistrationRegistered,
	})
	s.events[eventID].RegisteredCount++
}

func TestStatsService_Dashboard(t *testing.T) {
	store, repo, svc := newStatsFixture()
	store.addEvent("org", 10, domain.StatusApproved, time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC))
	store.addEvent("org", 10, domain.StatusApproved, time.Date(2026, 5, 28, 0, 0, 0, 0, time.UTC))
	store.addEvent("org", 10, domain.StatusApproved, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	store.addEvent("org", 10, domain.StatusApproved, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	store.addEvent("org", 10, domain.StatusPending, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))

	got, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.CategoryCount{{Category: domain.CategoryTech, Count: 4}}, got.Categories)
	assert.Equal(t, []domain.MonthCount{{Month: "2026-05", Count: 2}, {Month: "2026-08", Count: 1}}, got.UpcomingByMonth)
	assert.Equal(t, statsNow, repo.lastFrom)
}

func TestStatsService_DashboardEmptyCatalog(t *testing.T) {
	_, _, svc := newStatsFixture()

	got, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got.Categories)
	assert.NotNil(t, got.UpcomingByMonth)
	assert.Empty(t, got.Categories)
}

func TestStatsService_DashboardRepoError(t *testing.T) {
	_, repo, svc := newStatsFixture()
	repo.err = sql.ErrConnDone

	_, err := svc.Dashboard(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrConnDone))
}

func TestStatsService_Leaderboard(t *testing.T) {
	store, _, svc := newStatsFixture()
	ada := store.addUser("Ada", domain.RoleCustomer)
	bob := store.addUser("Bob", domain.RoleCustomer)
	store.addUser("Cleo", domain.RoleCustomer)
	ev1 := store.addEvent("org", 10, domain.StatusApproved, eventDate)
	ev2 := store.addEvent("org", 10, domain.StatusApproved, eventDate)
	store.addRegistration(ev1, ada)
	store.addRegistration(ev2, ada)
	store.addRegistration(ev1, bob)
	store.reviews = append(store.reviews, &domain.Review{ID: "rev-1", EventID: ev1, UserID: bob, Rating: 5})

	got, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ada", got[0].Name)
	assert.Equal(t, 2*domain.PointsPerRegistration, got[0].Points)
	assert.Equal(t, "Bob", got[1].Name)
	assert.Equal(t, domain.PointsPerRegistration+domain.PointsPerReview, got[1].Points)
}

func TestStatsService_LeaderboardCapped(t *testing.T) {
	store, _, svc := newStatsFixture()
	ev := store.addEvent("org", 100, domain.StatusApproved, eventDate)
	for i := 0; i < leaderboardSize+3; i++ {
		store.addRegistration(ev, store.addUser(string(rune('A'+i))+"user", domain.RoleCustomer))
	}

	got, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, leaderboardSize)
}

func TestStatsService_Recommendations(t *testing.T) {
	store, _, svc := newStatsFixture()
	ada := store.addUser("Ada", domain.RoleCustomer)
	bob := store.addUser("Bob", domain.RoleCustomer)
	attended := store.addEvent("org", 10, domain.StatusApproved, eventDate)
	sameCategory := store.addEvent("org", 10, domain.StatusApproved, eventDate)
	popular := store.addEvent("org", 10, domain.StatusApproved, eventDate)
	store.addEvent("org", 10, domain.StatusApproved, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store.addEvent("org", 10, domain.StatusRejected, eventDate)
	store.mu.Lock()
	store.events[popular].Category = domain.CategorySports
	store.mu.Unlock()
	store.addRegistration(attended, ada)
	store.addRegistration(popular, bob)
	store.addRegistration(attended, bob)

	t.Run("preferred categories lead", func(t *testing.T) {
		got, err := svc.Recommendations(context.Background(), ada)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, sameCategory, got[0].ID)
		assert.Equal(t, popular, got[1].ID)
	})

	t.Run("anonymous ranks by seats taken", func(t *testing.T) {
		got, err := svc.Recommendations(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, attended, got[0].ID)
		assert.Equal(t, popular, got[1].ID)
	})

	t.Run("nothing left to suggest", func(t *testing.T) {
		_, _, empty := newStatsFixture()
		got, err := empty.Recommendations(context.Background(), ada)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}
