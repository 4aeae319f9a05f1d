package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paldeck_server/models"
)

func TestRecordSwipeLeftNeverChecksReciprocal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(t, "a")
	env.addProfile(t, "b")

	_, err := env.swipes.RecordSwipe(ctx, "b", "a", models.DirectionRight)
	require.NoError(t, err)

	res, err := env.swipes.RecordSwipe(ctx, "a", "b", models.DirectionLeft)
	require.NoError(t, err)
	assert.Nil(t, res.Match)
	assert.Equal(t, models.DirectionLeft, res.Swipe.Direction)
	assert.Zero(t, env.store.swipeReads("b", "a"))

	matches, err := env.matches.ListMatches(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRecordSwipeRightWithoutReciprocal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(t, "a")
	env.addProfile(t, "b")

	res, err := env.swipes.RecordSwipe(ctx, "a", "b", models.DirectionRight)
	require.NoError(t, err)
	assert.Nil(t, res.Match)
	assert.False(t, res.Created)
	assert.Equal(t, 1, env.store.swipeReads("b", "a"))
}

func TestRecordSwipeMutualRightCreatesMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(t, "a")
	env.addProfile(t, "b")

	_, err := env.swipes.RecordSwipe(ctx, "a", "b", models.DirectionRight)
	require.NoError(t, err)
	res, err := env.swipes.RecordSwipe(ctx, "b", "a", models.DirectionRight)
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	assert.True(t, res.Created)
	assert.Equal(t, models.MatchIDForPair("a", "b"), res.Match.ID)
	assert.Equal(t, models.StatusMatched, res.Match.Status)
	assert.True(t, res.Match.Has("a"))
	assert.True(t, res.Match.Has("b"))

	// a retry of the same decision is idempotent and returns the same match
	retry, err := env.swipes.RecordSwipe(ctx, "b", "a", models.DirectionRight)
	require.NoError(t, err)
	require.NotNil(t, retry.Match)
	assert.False(t, retry.Created)
	assert.Equal(t, res.Match.ID, retry.Match.ID)
	assert.Equal(t, res.Swipe.ID, retry.Swipe.ID)
}

func TestRecordSwipeRightThenLeftNoMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(t, "a")
	env.addProfile(t, "b")

	_, err := env.swipes.RecordSwipe(ctx, "a", "b", models.DirectionLeft)
	require.NoError(t, err)
	res, err := env.swipes.RecordSwipe(ctx, "b", "a", models.DirectionRight)
	require.NoError(t, err)
	assert.Nil(t, res.Match)
}

func TestRecordSwipeChangingDecisionRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(t, "a")
	env.addProfile(t, "b")

	_, err := env.swipes.RecordSwipe(ctx, "a", "b", models.DirectionLeft)
	require.NoError(t, err)
	_, err = env.swipes.RecordSwipe(ctx, "a", "b", models.DirectionRight)
	assert.ErrorIs(t, err, ErrAlreadySwiped)
}

func TestRecordSwipeValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(t, "a")

	_, err := env.swipes.RecordSwipe(ctx, "a", "b", "up")
	assert.True(t, IsValidation(err))
	_, err = env.swipes.RecordSwipe(ctx, "a", "a", models.DirectionRight)
	assert.True(t, IsValidation(err))
	_, err = env.swipes.RecordSwipe(ctx, "a", "missing", models.DirectionRight)
	assert.ErrorIs(t, err, ErrProfileNotFound)
	_, err = env.swipes.RecordSwipe(ctx, "ghost", "a", models.DirectionRight)
	assert.ErrorIs(t, err, ErrProfileIncomplete)
}

func TestConcurrentMutualRightSwipesCreateOneMatch(t *testing.T) {
	for i := 0; i < 50; i++ {
		env := newTestEnv(t)
		env.addProfile(t, "a")
		env.addProfile(t, "b")

		var wg sync.WaitGroup
		results := make([]*SwipeResult, 2)
		errs := make([]error, 2)
		pairs := [][2]string{{"a", "b"}, {"b", "a"}}
		for j, p := range pairs {
			wg.Add(1)
			go func(j int, swiper, swiped string) {
				defer wg.Done()
				results[j], errs[j] = env.swipes.RecordSwipe(context.Background(), swiper, swiped, models.DirectionRight)
			}(j, p[0], p[1])
		}
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		created := 0
		var ids []string
		for _, r := range results {
			if r.Match != nil {
				ids = append(ids, r.Match.ID)
			}
			if r.Created {
				created++
			}
		}
		require.NotEmpty(t, ids, "at least one side must observe the match")
		assert.Equal(t, 1, created)
		for _, id := range ids {
			assert.Equal(t, models.MatchIDForPair("a", "b"), id)
		}

		matches, err := env.matches.ListMatches(context.Background(), "a")
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	}
}

func TestRecordSwipeInFlightGuard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(t, "a")
	env.addProfile(t, "b")

	guard := env.swipes.Guard.(*MemorySwipeGuard)
	release, err := guard.Acquire(ctx, swipeGuardKey("a", "b"))
	require.NoError(t, err)

	_, err = env.swipes.RecordSwipe(ctx, "a", "b", models.DirectionRight)
	assert.ErrorIs(t, err, ErrSwipeInFlight)

	release()
	release()
	_, err = env.swipes.RecordSwipe(ctx, "a", "b", models.DirectionRight)
	assert.NoError(t, err)
}
