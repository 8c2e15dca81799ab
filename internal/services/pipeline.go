// Package services contains the pipeline controller and the chat
// context summarizer operating on the session store.
package services

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hydroanalytics/hydroforecast-go/internal/apperrors"
	"github.com/hydroanalytics/hydroforecast-go/internal/forecastsvc"
	"github.com/hydroanalytics/hydroforecast-go/internal/models"
	"github.com/hydroanalytics/hydroforecast-go/internal/series"
	"github.com/hydroanalytics/hydroforecast-go/internal/session"
)

// Parser turns an uploaded spreadsheet into a historical segment. The
// actual file format handling lives outside the pipeline core.
type Parser interface {
	Parse(filename string, r io.Reader) (models.TimeSeriesSegment, error)
}

// Forecaster is the external forecasting collaborator.
type Forecaster interface {
	Forecast(ctx context.Context, historical models.TimeSeriesSegment, horizon int) (*forecastsvc.ForecastResponse, error)
}

// Assistant is the external text-generation collaborator.
type Assistant interface {
	Analyze(ctx context.Context, series models.CombinedSeries) (string, error)
	Chat(ctx context.Context, question, contextSummary string) (string, error)
}

// Pipeline drives the session lifecycle: upload, forecast, analysis
// and chat. It is the only component with externally triggered side
// effects; every session mutation goes through the store's token
// checked transitions, so a superseded upload can never write into
// the current session.
type Pipeline struct {
	store           *session.Store
	parser          Parser
	forecaster      Forecaster
	assistant       Assistant
	logger          *logrus.Logger
	horizon         int
	analysisTimeout time.Duration
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	Horizon         int
	AnalysisTimeout time.Duration
}

// NewPipeline creates a pipeline controller.
func NewPipeline(store *session.Store, parser Parser, forecaster Forecaster, assistant Assistant, logger *logrus.Logger, opts PipelineOptions) *Pipeline {
	if logger == nil {
		logger = logrus.New()
	}
	if opts.Horizon <= 0 {
		opts.Horizon = 30
	}
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = 2 * time.Minute
	}
	return &Pipeline{
		store:           store,
		parser:          parser,
		forecaster:      forecaster,
		assistant:       assistant,
		logger:          logger,
		horizon:         opts.Horizon,
		analysisTimeout: opts.AnalysisTimeout,
	}
}

// SubmitUpload runs one upload lifecycle: parse, forecast, align and
// store the combined series, then dispatch the analysis asynchronously.
// A second upload while one is in flight supersedes it via the session
// token; the first upload's late results are dropped on arrival.
func (p *Pipeline) SubmitUpload(ctx context.Context, filename string, file io.Reader) (models.Session, error) {
	if file == nil || strings.TrimSpace(filename) == "" {
		return p.store.Snapshot(), apperrors.Validation("no file selected")
	}

	// Parsing failures surface immediately and leave the session untouched.
	historical, err := p.parser.Parse(filename, file)
	if err != nil {
		return p.store.Snapshot(), err
	}

	token := p.store.BeginLoading()
	log := p.logger.WithFields(logrus.Fields{
		"token":  token,
		"file":   filename,
		"points": len(historical),
	})
	log.Info("upload accepted, requesting forecast")

	resp, err := p.forecaster.Forecast(ctx, historical, p.horizon)
	if err != nil {
		wrapped := apperrors.Collaborator("forecast", err)
		p.store.MarkFailed(token, wrapped.Error())
		log.WithError(err).Error("forecast request failed")
		return p.store.Snapshot(), wrapped
	}

	combined, err := series.Align(resp.Historical, resp.Forecast)
	if err != nil {
		p.store.MarkFailed(token, err.Error())
		log.WithError(err).Error("segment alignment failed")
		return p.store.Snapshot(), err
	}

	if err := p.store.SetSeries(token, combined); err != nil {
		// A newer upload superseded this one while the forecast was in flight.
		log.WithError(err).Info("dropping superseded forecast result")
		return p.store.Snapshot(), err
	}

	go p.runAnalysis(token, combined)

	return p.store.Snapshot(), nil
}

// SubmitChatQuestion answers one user question about the loaded
// dataset and appends the question/answer pair to the transcript.
func (p *Pipeline) SubmitChatQuestion(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", apperrors.Validation("question must not be empty")
	}

	snap := p.store.Snapshot()
	if snap.Status != models.StatusReady {
		return "", apperrors.State("no dataset loaded")
	}

	summary, err := SummarizeSession(snap)
	if err != nil {
		return "", err
	}

	answer, err := p.assistant.Chat(ctx, question, summary)
	if err != nil {
		return "", apperrors.Collaborator("assistant", err)
	}

	if err := p.store.AppendExchange(question, answer); err != nil {
		return "", err
	}
	return answer, nil
}

// Snapshot returns a read-only view of the current session.
func (p *Pipeline) Snapshot() models.Session {
	return p.store.Snapshot()
}

// runAnalysis fetches the analysis for a freshly loaded series. It
// runs detached from the upload request; the session token decides
// whether its outcome still belongs to the current session.
func (p *Pipeline) runAnalysis(token uint64, combined models.CombinedSeries) {
	ctx, cancel := context.WithTimeout(context.Background(), p.analysisTimeout)
	defer cancel()

	log := p.logger.WithField("token", token)

	text, err := p.assistant.Analyze(ctx, combined)
	if err != nil {
		log.WithError(err).Error("analysis request failed")
		p.store.MarkFailed(token, apperrors.Collaborator("assistant", err).Error())
		return
	}

	if err := p.store.SetAnalysis(token, text); err != nil {
		log.WithError(err).Info("dropping superseded analysis result")
		return
	}
	log.Info("analysis stored, session ready")
}
