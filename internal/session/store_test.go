package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydroanalytics/hydroforecast-go/internal/apperrors"
	"github.com/hydroanalytics/hydroforecast-go/internal/models"
)

func testSeries(n, split int) models.CombinedSeries {
	points := make([]models.SeriesPoint, n)
	for i := range points {
		points[i] = models.SeriesPoint{
			Date:  models.NewDate(2023, time.January, 1+i),
			Level: decimal.NewFromInt(int64(10 + i)),
		}
	}
	return models.CombinedSeries{Points: points, SplitIndex: split}
}

func readyStore(t *testing.T) (*Store, uint64) {
	t.Helper()
	store := NewStore(nil)
	token := store.BeginLoading()
	require.NoError(t, store.SetSeries(token, testSeries(5, 3)))
	require.NoError(t, store.SetAnalysis(token, "levels look stable"))
	return store, token
}

func TestStore_StartsEmpty(t *testing.T) {
	store := NewStore(nil)
	snap := store.Snapshot()
	assert.Equal(t, models.StatusEmpty, snap.Status)
	assert.Nil(t, snap.Series)
	assert.Empty(t, snap.ChatHistory)
}

func TestStore_FullLifecycle(t *testing.T) {
	store := NewStore(nil)

	token := store.BeginLoading()
	assert.Equal(t, models.StatusLoading, store.Snapshot().Status)

	require.NoError(t, store.SetSeries(token, testSeries(5, 3)))
	assert.Equal(t, models.StatusLoading, store.Snapshot().Status)

	require.NoError(t, store.SetAnalysis(token, "analysis text"))
	snap := store.Snapshot()
	assert.Equal(t, models.StatusReady, snap.Status)
	assert.Equal(t, "analysis text", snap.AnalysisText)
	require.NotNil(t, snap.Series)
	assert.Equal(t, 5, snap.Series.Len())
}

func TestStore_SetSeriesRequiresLoading(t *testing.T) {
	store := NewStore(nil)
	token := store.BeginLoading()
	store.Reset()

	err := store.SetSeries(token, testSeries(2, 1))
	require.Error(t, err)
	assert.True(t, apperrors.IsState(err))
}

func TestStore_SetAnalysisRequiresSeries(t *testing.T) {
	store := NewStore(nil)
	token := store.BeginLoading()

	err := store.SetAnalysis(token, "text")
	require.Error(t, err)
	assert.True(t, apperrors.IsState(err))
}

func TestStore_StaleTokenRejected(t *testing.T) {
	store := NewStore(nil)
	first := store.BeginLoading()
	second := store.BeginLoading()

	err := store.SetSeries(first, testSeries(2, 1))
	require.Error(t, err)
	assert.True(t, apperrors.IsState(err))

	require.NoError(t, store.SetSeries(second, testSeries(3, 2)))
	snap := store.Snapshot()
	require.NotNil(t, snap.Series)
	assert.Equal(t, 3, snap.Series.Len())
}

func TestStore_MarkFailedClearsEverything(t *testing.T) {
	store, token := readyStore(t)
	require.NoError(t, store.AppendChat(models.SpeakerUser, "hello"))

	store.MarkFailed(token, "analysis failed")

	snap := store.Snapshot()
	assert.Equal(t, models.StatusFailed, snap.Status)
	assert.Nil(t, snap.Series)
	assert.Empty(t, snap.AnalysisText)
	assert.Empty(t, snap.ChatHistory)
	assert.Equal(t, "analysis failed", snap.FailureReason)
}

func TestStore_MarkFailedStaleTokenIsNoOp(t *testing.T) {
	store, token := readyStore(t)

	// A newer upload supersedes the session, then the old failure arrives.
	store.BeginLoading()
	store.MarkFailed(token, "stale failure")

	assert.Equal(t, models.StatusLoading, store.Snapshot().Status)
}

func TestStore_AppendChatRequiresReady(t *testing.T) {
	store := NewStore(nil)

	err := store.AppendChat(models.SpeakerUser, "anyone home?")
	require.Error(t, err)
	assert.True(t, apperrors.IsState(err))

	store.BeginLoading()
	err = store.AppendChat(models.SpeakerUser, "still loading?")
	require.Error(t, err)
	assert.True(t, apperrors.IsState(err))
}

func TestStore_AppendExchangeKeepsPairsIntact(t *testing.T) {
	store, _ := readyStore(t)

	const questions = 20
	var wg sync.WaitGroup
	for i := 0; i < questions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := fmt.Sprintf("question-%d", i)
			a := fmt.Sprintf("answer-%d", i)
			assert.NoError(t, store.AppendExchange(q, a))
		}(i)
	}
	wg.Wait()

	snap := store.Snapshot()
	require.Len(t, snap.ChatHistory, questions*2)
	for i := 0; i < len(snap.ChatHistory); i += 2 {
		user := snap.ChatHistory[i]
		assistant := snap.ChatHistory[i+1]
		assert.Equal(t, models.SpeakerUser, user.Speaker)
		assert.Equal(t, models.SpeakerAssistant, assistant.Speaker)
		// Each answer belongs to the question right before it.
		assert.Equal(t, "answer"+user.Text[len("question"):], assistant.Text)
	}
}

func TestStore_SnapshotIsDeepCopy(t *testing.T) {
	store, _ := readyStore(t)

	snap := store.Snapshot()
	snap.Series.Points[0].Level = decimal.NewFromInt(-999)
	snap.ChatHistory = append(snap.ChatHistory, models.ChatMessage{Speaker: models.SpeakerUser, Text: "mutated"})

	fresh := store.Snapshot()
	assert.True(t, fresh.Series.Points[0].Level.Equal(decimal.NewFromInt(10)))
	assert.Empty(t, fresh.ChatHistory)
}

func TestStore_ResetAlwaysSucceeds(t *testing.T) {
	store, _ := readyStore(t)
	store.Reset()

	snap := store.Snapshot()
	assert.Equal(t, models.StatusEmpty, snap.Status)
	assert.Nil(t, snap.Series)
}
