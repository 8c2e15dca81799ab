package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydroanalytics/hydroforecast-go/internal/apperrors"
	"github.com/hydroanalytics/hydroforecast-go/internal/forecastsvc"
	"github.com/hydroanalytics/hydroforecast-go/internal/models"
	"github.com/hydroanalytics/hydroforecast-go/internal/session"
)

func historicalSegment(startDay int, levels ...float64) models.TimeSeriesSegment {
	points := make(models.TimeSeriesSegment, len(levels))
	for i, level := range levels {
		points[i] = models.SeriesPoint{
			Date:  models.NewDate(2023, time.January, startDay+i),
			Level: decimal.NewFromFloat(level),
		}
	}
	return points
}

// fakeParser maps filenames to parsed segments.
type fakeParser struct {
	segments map[string]models.TimeSeriesSegment
	err      error
}

func (f *fakeParser) Parse(filename string, _ io.Reader) (models.TimeSeriesSegment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.segments[filename], nil
}

// fakeForecaster extends the historical segment by one day per horizon
// point, optionally blocking until released to simulate a slow service.
type fakeForecaster struct {
	mu          sync.Mutex
	calls       int
	err         error
	forecastSeg models.TimeSeriesSegment
	gate        chan struct{}
	gateOne     bool
}

func (f *fakeForecaster) Forecast(_ context.Context, historical models.TimeSeriesSegment, _ int) (*forecastsvc.ForecastResponse, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	gate := f.gate
	f.mu.Unlock()

	if gate != nil && (!f.gateOne || call == 1) {
		<-gate
	}
	if f.err != nil {
		return nil, f.err
	}

	forecast := f.forecastSeg
	if forecast == nil {
		last, _ := historical.Last()
		forecast = models.TimeSeriesSegment{
			{Date: last.Date.AddDays(1), Level: last.Level},
			{Date: last.Date.AddDays(2), Level: last.Level},
		}
	}
	return &forecastsvc.ForecastResponse{Historical: historical, Forecast: forecast}, nil
}

type fakeAssistant struct {
	mu           sync.Mutex
	analysis     string
	analyzeErr   error
	answer       string
	chatErr      error
	lastSummary  string
	chatDelay    time.Duration
	analyzeCalls int
}

func (f *fakeAssistant) Analyze(_ context.Context, _ models.CombinedSeries) (string, error) {
	f.mu.Lock()
	f.analyzeCalls++
	f.mu.Unlock()
	if f.analyzeErr != nil {
		return "", f.analyzeErr
	}
	return f.analysis, nil
}

func (f *fakeAssistant) Chat(_ context.Context, question, contextSummary string) (string, error) {
	f.mu.Lock()
	f.lastSummary = contextSummary
	f.mu.Unlock()
	if f.chatDelay > 0 {
		time.Sleep(f.chatDelay)
	}
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.answer + ": " + question, nil
}

func newTestPipeline(parser Parser, forecaster Forecaster, assistant Assistant) (*Pipeline, *session.Store) {
	store := session.NewStore(nil)
	pipeline := NewPipeline(store, parser, forecaster, assistant, nil, PipelineOptions{
		AnalysisTimeout: time.Second,
	})
	return pipeline, store
}

func defaultFixtures() (*fakeParser, *fakeForecaster, *fakeAssistant) {
	parser := &fakeParser{segments: map[string]models.TimeSeriesSegment{
		"levels.xlsx": historicalSegment(1, 10, 11, 12),
	}}
	forecaster := &fakeForecaster{}
	assistant := &fakeAssistant{analysis: "the aquifer looks stable", answer: "answer"}
	return parser, forecaster, assistant
}

func TestSubmitUpload_HappyPath(t *testing.T) {
	parser, forecaster, assistant := defaultFixtures()
	pipeline, store := newTestPipeline(parser, forecaster, assistant)

	snap, err := pipeline.SubmitUpload(context.Background(), "levels.xlsx", strings.NewReader("data"))
	require.NoError(t, err)

	// The series is available as soon as the upload call returns.
	require.NotNil(t, snap.Series)
	assert.Equal(t, 5, snap.Series.Len())
	assert.Equal(t, 3, snap.Series.SplitIndex)

	// The analysis arrives asynchronously and flips the session to Ready.
	require.Eventually(t, func() bool {
		return store.Snapshot().Status == models.StatusReady
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "the aquifer looks stable", store.Snapshot().AnalysisText)
}

func TestSubmitUpload_NoFile(t *testing.T) {
	parser, forecaster, assistant := defaultFixtures()
	pipeline, store := newTestPipeline(parser, forecaster, assistant)

	_, err := pipeline.SubmitUpload(context.Background(), "", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	// Validation failures leave the session untouched.
	assert.Equal(t, models.StatusEmpty, store.Snapshot().Status)
}

func TestSubmitUpload_ParserErrorLeavesSessionUntouched(t *testing.T) {
	parser := &fakeParser{err: apperrors.Validation("bad workbook")}
	pipeline, store := newTestPipeline(parser, &fakeForecaster{}, &fakeAssistant{})

	_, err := pipeline.SubmitUpload(context.Background(), "levels.xlsx", strings.NewReader("data"))
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, models.StatusEmpty, store.Snapshot().Status)
}

func TestSubmitUpload_ForecastFailureMarksFailed(t *testing.T) {
	parser, _, assistant := defaultFixtures()
	forecaster := &fakeForecaster{err: context.DeadlineExceeded}
	pipeline, store := newTestPipeline(parser, forecaster, assistant)

	_, err := pipeline.SubmitUpload(context.Background(), "levels.xlsx", strings.NewReader("data"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCollaborator(err))

	snap := store.Snapshot()
	assert.Equal(t, models.StatusFailed, snap.Status)
	assert.Nil(t, snap.Series)
	assert.NotEmpty(t, snap.FailureReason)
}

func TestSubmitUpload_OrderingFailureMarksFailed(t *testing.T) {
	parser, _, assistant := defaultFixtures()
	forecaster := &fakeForecaster{
		// Forecast starting before the historical segment ends.
		forecastSeg: historicalSegment(1, 99, 98),
	}
	pipeline, store := newTestPipeline(parser, forecaster, assistant)

	_, err := pipeline.SubmitUpload(context.Background(), "levels.xlsx", strings.NewReader("data"))
	require.Error(t, err)
	assert.True(t, apperrors.IsOrdering(err))
	assert.Equal(t, models.StatusFailed, store.Snapshot().Status)
}

func TestSubmitUpload_AnalysisFailureMarksFailed(t *testing.T) {
	parser, forecaster, _ := defaultFixtures()
	assistant := &fakeAssistant{analyzeErr: context.DeadlineExceeded}
	pipeline, store := newTestPipeline(parser, forecaster, assistant)

	_, err := pipeline.SubmitUpload(context.Background(), "levels.xlsx", strings.NewReader("data"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return store.Snapshot().Status == models.StatusFailed
	}, time.Second, 10*time.Millisecond)
	assert.Nil(t, store.Snapshot().Series)
}

func TestSubmitUpload_SecondUploadSupersedesFirst(t *testing.T) {
	parser := &fakeParser{segments: map[string]models.TimeSeriesSegment{
		"first.xlsx":  historicalSegment(1, 10, 11, 12),
		"second.xlsx": historicalSegment(1, 20, 21, 22, 23),
	}}
	gate := make(chan struct{})
	forecaster := &fakeForecaster{gate: gate, gateOne: true}
	assistant := &fakeAssistant{analysis: "ok"}
	pipeline, store := newTestPipeline(parser, forecaster, assistant)

	firstDone := make(chan error, 1)
	go func() {
		_, err := pipeline.SubmitUpload(context.Background(), "first.xlsx", strings.NewReader("a"))
		firstDone <- err
	}()

	// Wait for the first upload to be in flight at the forecaster.
	require.Eventually(t, func() bool {
		forecaster.mu.Lock()
		defer forecaster.mu.Unlock()
		return forecaster.calls == 1
	}, time.Second, 5*time.Millisecond)

	_, err := pipeline.SubmitUpload(context.Background(), "second.xlsx", strings.NewReader("b"))
	require.NoError(t, err)

	// Release the first upload; its late result must be dropped.
	close(gate)
	err = <-firstDone
	require.Error(t, err)
	assert.True(t, apperrors.IsState(err))

	snap := store.Snapshot()
	require.NotNil(t, snap.Series)
	assert.Equal(t, 4, snap.Series.SplitIndex)
	assert.True(t, snap.Series.Points[0].Level.Equal(decimal.NewFromInt(20)),
		"series must be the second upload's, got level %s", snap.Series.Points[0].Level)
}

func TestSubmitChatQuestion_BeforeReady(t *testing.T) {
	parser, forecaster, assistant := defaultFixtures()
	pipeline, _ := newTestPipeline(parser, forecaster, assistant)

	_, err := pipeline.SubmitChatQuestion(context.Background(), "what is the trend?")
	require.Error(t, err)
	assert.True(t, apperrors.IsState(err))
	assert.Contains(t, err.Error(), "no dataset loaded")
}

func TestSubmitChatQuestion_HappyPath(t *testing.T) {
	parser, forecaster, assistant := defaultFixtures()
	pipeline, store := newTestPipeline(parser, forecaster, assistant)

	_, err := pipeline.SubmitUpload(context.Background(), "levels.xlsx", strings.NewReader("data"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return store.Snapshot().Status == models.StatusReady
	}, time.Second, 10*time.Millisecond)

	answer, err := pipeline.SubmitChatQuestion(context.Background(), "is the level rising?")
	require.NoError(t, err)
	assert.Equal(t, "answer: is the level rising?", answer)

	// The assistant is grounded on the digest, never the raw points.
	assert.Contains(t, assistant.lastSummary, "3 historical")
	assert.Contains(t, assistant.lastSummary, "2 forecasted")

	history := store.Snapshot().ChatHistory
	require.Len(t, history, 2)
	assert.Equal(t, models.SpeakerUser, history[0].Speaker)
	assert.Equal(t, "is the level rising?", history[0].Text)
	assert.Equal(t, models.SpeakerAssistant, history[1].Speaker)
}

func TestSubmitChatQuestion_CollaboratorFailureKeepsTranscript(t *testing.T) {
	parser, forecaster, assistant := defaultFixtures()
	pipeline, store := newTestPipeline(parser, forecaster, assistant)

	_, err := pipeline.SubmitUpload(context.Background(), "levels.xlsx", strings.NewReader("data"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return store.Snapshot().Status == models.StatusReady
	}, time.Second, 10*time.Millisecond)

	assistant.chatErr = context.DeadlineExceeded
	_, err = pipeline.SubmitChatQuestion(context.Background(), "hello?")
	require.Error(t, err)
	assert.True(t, apperrors.IsCollaborator(err))

	snap := store.Snapshot()
	assert.Equal(t, models.StatusReady, snap.Status)
	assert.Empty(t, snap.ChatHistory)
}

func TestSubmitChatQuestion_ConcurrentQuestionsPairCleanly(t *testing.T) {
	parser, forecaster, assistant := defaultFixtures()
	assistant.chatDelay = 5 * time.Millisecond
	pipeline, store := newTestPipeline(parser, forecaster, assistant)

	_, err := pipeline.SubmitUpload(context.Background(), "levels.xlsx", strings.NewReader("data"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return store.Snapshot().Status == models.StatusReady
	}, time.Second, 10*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pipeline.SubmitChatQuestion(context.Background(), "question")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	history := store.Snapshot().ChatHistory
	require.Len(t, history, 4)
	for i := 0; i < len(history); i += 2 {
		assert.Equal(t, models.SpeakerUser, history[i].Speaker)
		assert.Equal(t, models.SpeakerAssistant, history[i+1].Speaker)
	}
}
