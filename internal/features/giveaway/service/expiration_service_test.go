package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-bot-backend/internal/features/giveaway/models"
)

func TestTickExpiresOverdueGiveaways(t *testing.T) {
	repo := testRepo(t)
	cfg := testConfig()
	svc := NewGiveawayService(repo, cfg, nil)
	exp := NewExpirationService(svc, repo, cfg)

	now := time.Now().Unix()
	overdue := &models.Giveaway{
		ID:           "overdue",
		Prize:        "Cup",
		WinnersCount: 1,
		EndTime:      now - 30, // past end time, as after a restart
		Entries:      []int64{10, 20},
	}
	open := &models.Giveaway{
		ID:           "open",
		Prize:        "Hat",
		WinnersCount: 1,
		EndTime:      now + 3600,
		Entries:      []int64{30},
	}
	require.NoError(t, repo.Save(context.Background(), overdue))
	require.NoError(t, repo.Save(context.Background(), open))

	exp.Tick(context.Background())

	got, err := repo.GetByID(context.Background(), "overdue")
	require.NoError(t, err)
	assert.True(t, got.Ended)
	require.Len(t, got.WinnerIDs, 1)
	assert.Contains(t, []int64{10, 20}, got.WinnerIDs[0])

	got, err = repo.GetByID(context.Background(), "open")
	require.NoError(t, err)
	assert.False(t, got.Ended)
}

func TestTickSkipsWhenDisabled(t *testing.T) {
	repo := testRepo(t)
	cfg := testConfig()
	cfg.Giveaway.Enabled = false
	svc := NewGiveawayService(repo, testConfig(), nil)
	exp := NewExpirationService(svc, repo, cfg)

	overdue := &models.Giveaway{
		ID:      "overdue",
		Prize:   "Cup",
		EndTime: time.Now().Unix() - 30,
		Entries: []int64{10},
	}
	require.NoError(t, repo.Save(context.Background(), overdue))

	exp.Tick(context.Background())

	got, err := repo.GetByID(context.Background(), "overdue")
	require.NoError(t, err)
	assert.False(t, got.Ended)
}

func TestTickIgnoresEndedGiveaways(t *testing.T) {
	repo := testRepo(t)
	cfg := testConfig()
	svc := NewGiveawayService(repo, cfg, nil)
	exp := NewExpirationService(svc, repo, cfg)

	ended := &models.Giveaway{
		ID:        "done",
		Prize:     "Cup",
		EndTime:   time.Now().Unix() - 300,
		EndedTime: time.Now().Unix() - 200,
		Ended:     true,
		Entries:   []int64{10, 20},
		WinnerIDs: []int64{10},
	}
	require.NoError(t, repo.Save(context.Background(), ended))

	exp.Tick(context.Background())

	got, err := repo.GetByID(context.Background(), "done")
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, got.WinnerIDs, "tick must not redraw ended giveaways")
}

func TestStartStop(t *testing.T) {
	repo := testRepo(t)
	cfg := testConfig()
	svc := NewGiveawayService(repo, cfg, nil)
	exp := NewExpirationService(svc, repo, cfg)

	exp.Start()
	done := make(chan struct{})
	go func() {
		exp.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expiration service did not stop")
	}
}

// Full lifecycle: create, two joiners, expiry tick, one winner drawn.
func TestEndToEndExpiry(t *testing.T) {
	repo := testRepo(t)
	cfg := testConfig()
	svc := NewGiveawayService(repo, cfg, &fakePresenter{})
	exp := NewExpirationService(svc, repo, cfg)

	in := createInput()
	in.Prize = "Cup"
	in.WinnersCount = 1
	in.Duration = "10s"
	g, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.ToggleEntry(context.Background(), g.ID, 100)
	require.NoError(t, err)
	_, err = svc.ToggleEntry(context.Background(), g.ID, 200)
	require.NoError(t, err)

	// Rewind the deadline instead of sleeping through it.
	stored, err := repo.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	stored.EndTime = time.Now().Unix() - 1
	require.NoError(t, repo.Save(context.Background(), stored))

	exp.Tick(context.Background())

	final, err := repo.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.True(t, final.Ended)
	require.Len(t, final.WinnerIDs, 1)
	assert.Contains(t, []int64{100, 200}, final.WinnerIDs[0])
}
