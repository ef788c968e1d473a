package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"tracking/internal/core/domain/model/eta"
	"tracking/internal/core/ports"
)

const (
	DefaultInitialTimeout = 10 * time.Second
	DefaultUpdateTimeout  = 5 * time.Second
)

// Stage names the path a prediction was requested from.
type Stage string

const (
	// StageInitial is the baseline estimate computed when a shipment is created.
	StageInitial Stage = "initial"
	// StageUpdate is the recomputation on every location update; it must fail fast.
	StageUpdate Stage = "update"
)

// ErrPredictorUnavailable is matched by every PredictorUnavailableError.
var ErrPredictorUnavailable = errors.New("eta predictor unavailable")

// PredictorUnavailableError describes why the oracle result could not be used.
// It never leaves ETAPredictor: it is logged and turned into a fallback estimate.
type PredictorUnavailableError struct {
	Stage Stage
	Cause error
}

func (e *PredictorUnavailableError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrPredictorUnavailable, e.Stage, e.Cause)
}

func (e *PredictorUnavailableError) Unwrap() []error {
	return []error{ErrPredictorUnavailable, e.Cause}
}

// PredictionRecorder receives the outcome of every prediction.
type PredictionRecorder interface {
	ObservePrediction(stage string, confidence string, elapsed time.Duration)
}

type PredictorConfig struct {
	InitialTimeout time.Duration
	UpdateTimeout  time.Duration
}

// ETAPredictor wraps the oracle with a per-stage deadline and the fallback formula.
// It talks to nothing but the oracle and is safe for concurrent use.
//
// Example:
//
//	predictor := services.NewETAPredictor(oracle, services.PredictorConfig{}, logger, nil)
//	estimate := predictor.Update(ctx, eta.NewRequest(12.4, eta.VehicleVan, "", "", now))
//	if estimate.Confidence.IsDegraded() {
//	    // the oracle did not answer in time
//	}
type ETAPredictor struct {
	oracle   ports.ETAOracle
	config   PredictorConfig
	recorder PredictionRecorder
	logger   *slog.Logger
}

// NewETAPredictor builds a predictor. A nil oracle means every request uses the fallback;
// zero timeouts take the defaults.
func NewETAPredictor(
	oracle ports.ETAOracle,
	config PredictorConfig,
	logger *slog.Logger,
	recorder PredictionRecorder,
) *ETAPredictor {
	if config.InitialTimeout <= 0 {
		config.InitialTimeout = DefaultInitialTimeout
	}
	if config.UpdateTimeout <= 0 {
		config.UpdateTimeout = DefaultUpdateTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ETAPredictor{
		oracle:   oracle,
		config:   config,
		recorder: recorder,
		logger:   logger.With("component", "ETAPredictor"),
	}
}

// Initial predicts the baseline estimate of a new shipment.
func (p *ETAPredictor) Initial(ctx context.Context, req eta.Request) eta.Estimate {
	return p.predict(ctx, req, StageInitial, p.config.InitialTimeout)
}

// Update recomputes the estimate after a location change.
func (p *ETAPredictor) Update(ctx context.Context, req eta.Request) eta.Estimate {
	return p.predict(ctx, req, StageUpdate, p.config.UpdateTimeout)
}

func (p *ETAPredictor) predict(ctx context.Context, req eta.Request, stage Stage, timeout time.Duration) eta.Estimate {
	started := time.Now()

	var estimate eta.Estimate
	switch {
	case math.IsNaN(req.DistanceKm) || math.IsInf(req.DistanceKm, 0):
		p.logger.WarnContext(ctx, "distance is not a number, using fallback",
			"stage", stage, "distance", req.DistanceKm)
		estimate = eta.Fallback(req.DistanceKm, req.Vehicle)
	case req.DistanceKm <= 0:
		// already at the destination
		estimate = eta.Estimate{Minutes: 0, Confidence: eta.ConfidenceHigh}
	default:
		var err error
		estimate, err = p.callOracle(ctx, req, stage, timeout)
		if err != nil {
			p.logger.WarnContext(ctx, "using fallback estimate",
				"stage", stage,
				"distance", req.DistanceKm,
				"vehicle", req.Vehicle,
				"error", err)
			estimate = eta.Fallback(req.DistanceKm, req.Vehicle)
		}
	}

	if p.recorder != nil {
		p.recorder.ObservePrediction(string(stage), estimate.Confidence.String(), time.Since(started))
	}

	return estimate
}

func (p *ETAPredictor) callOracle(
	ctx context.Context,
	req eta.Request,
	stage Stage,
	timeout time.Duration,
) (eta.Estimate, error) {
	if p.oracle == nil {
		return eta.Estimate{}, &PredictorUnavailableError{Stage: stage, Cause: errors.New("no oracle configured")}
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		estimate eta.Estimate
		err      error
	}
	done := make(chan result, 1)
	go func() {
		e, err := p.oracle.Predict(callCtx, req)
		done <- result{estimate: e, err: err}
	}()

	// The oracle is expected to honour callCtx; the select bounds the wait even when it does not.
	var res result
	select {
	case res = <-done:
	case <-callCtx.Done():
		return eta.Estimate{}, &PredictorUnavailableError{Stage: stage, Cause: callCtx.Err()}
	}

	if res.err != nil {
		return eta.Estimate{}, &PredictorUnavailableError{Stage: stage, Cause: res.err}
	}
	if err := validateOracleEstimate(res.estimate); err != nil {
		return eta.Estimate{}, &PredictorUnavailableError{Stage: stage, Cause: err}
	}

	return res.estimate, nil
}

func validateOracleEstimate(e eta.Estimate) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("malformed oracle response: %w", err)
	}
	if e.Confidence.IsDegraded() {
		return errors.New("malformed oracle response: oracle may not report fallback confidence")
	}
	return nil
}
