package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/swdee/go-posture"
	"github.com/swdee/go-posture/preprocess"
	"github.com/swdee/go-posture/rules"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gocv.io/x/gocv"
)

// ModePolicy decides what happens to a mode name that is not recognized
type ModePolicy int

const (
	// PolicyDefault evaluates unknown modes with the default mode
	PolicyDefault ModePolicy = iota
	// PolicyReject returns an error response for unknown modes
	PolicyReject
)

// String returns "default" or "reject"
func (p ModePolicy) String() string {
	if p == PolicyReject {
		return "reject"
	}

	return "default"
}

// ParseModePolicy returns the ModePolicy for "default" or "reject"
func ParseModePolicy(name string) (ModePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return PolicyDefault, nil
	case "reject":
		return PolicyReject, nil
	}

	return PolicyDefault, fmt.Errorf("unknown mode policy %q", name)
}

// Options are the Service settings
type Options struct {
	// DefaultMode is used when no mode is given, and for unknown modes under
	// PolicyDefault
	DefaultMode       posture.Mode
	UnknownModePolicy ModePolicy
}

// DefaultOptions evaluates as Squat when no or an unknown mode is given
func DefaultOptions() Options {
	return Options{
		DefaultMode:       posture.DefaultMode,
		UnknownModePolicy: PolicyDefault,
	}
}

// Service evaluates the posture in raw frames.  It holds only read-only
// configuration and a pool of extractor sessions so it is safe for
// concurrent use
type Service struct {
	normalizer *preprocess.Normalizer
	pool       *posture.Pool
	evaluator  *rules.Evaluator
	opts       Options
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewService returns a Service.  The pool remains owned by the caller
func NewService(n *preprocess.Normalizer, pool *posture.Pool, ev *rules.Evaluator,
	opts Options, logger zerolog.Logger) *Service {

	RegisterMetrics()

	return &Service{
		normalizer: n,
		pool:       pool,
		evaluator:  ev,
		opts:       opts,
		logger:     logger.With().Str("component", "posture_pipeline").Logger(),
		tracer:     otel.Tracer("github.com/swdee/go-posture/pipeline"),
	}
}

// Inspection is a Response together with the data it was derived from
type Inspection struct {
	Response Response
	// Mode is the mode the frame was evaluated under
	Mode posture.Mode
	// Landmarks are the extracted landmarks, nil when none were found or the
	// evaluation failed before extraction
	Landmarks *posture.LandmarkSet
}

// Process evaluates the posture in raw under the named mode.  Every failure
// is reported in the returned Response
func (s *Service) Process(ctx context.Context, raw []byte, mode string) Response {
	return s.Inspect(ctx, raw, mode).Response
}

// Inspect is Process but also returns the extracted landmarks
func (s *Service) Inspect(ctx context.Context, raw []byte, mode string) (ins Inspection) {

	_, span := s.tracer.Start(ctx, "posture.process")
	defer span.End()

	requestID := uuid.NewString()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			ins.Response = ErrorResponse(fmt.Errorf("%w: %v", posture.ErrInternal, r))
			s.logger.Error().Str("request_id", requestID).Interface("panic", r).
				Msg("posture evaluation panicked")
		}

		if !ins.Response.OK() {
			span.SetStatus(codes.Error, ins.Response.Message)
		}

		verdict := ins.Response.Posture

		if verdict == "" {
			verdict = ins.Response.Kind.String()
		}

		elapsed := time.Since(start)

		Evaluations().WithLabelValues(ins.Mode.String(), verdict).Inc()
		EvaluationLatency().Observe(elapsed.Seconds())

		span.SetAttributes(
			attribute.String("posture.mode", ins.Mode.String()),
			attribute.String("posture.verdict", verdict),
		)

		s.logger.Debug().
			Str("request_id", requestID).
			Str("mode", ins.Mode.String()).
			Str("status", ins.Response.Status).
			Str("verdict", verdict).
			Strs("corrections", ins.Response.Corrections).
			Dur("elapsed", elapsed).
			Msg("posture evaluated")
	}()

	m, err := s.resolveMode(mode)
	ins.Mode = m

	if err != nil {
		ins.Response = ErrorResponse(err)
		return ins
	}

	span.SetAttributes(attribute.Int("posture.frame_bytes", len(raw)))

	frame, err := s.normalizer.Normalize(raw)

	if err != nil {
		DecodeFailures().Inc()
		span.RecordError(err)
		ins.Response = ErrorResponse(err)
		return ins
	}

	defer frame.Close()

	set, err := s.extract(frame)

	if err != nil {
		span.RecordError(err)
		s.logger.Warn().Err(err).Str("request_id", requestID).Msg("keypoint extraction failed")
		ins.Response = ErrorResponse(err)
		return ins
	}

	ins.Landmarks = set
	ins.Response = FromResult(Assemble(set, m, s.evaluator.Evaluate))

	return ins
}

// resolveMode applies the default mode and unknown mode policy
func (s *Service) resolveMode(name string) (posture.Mode, error) {

	if strings.TrimSpace(name) == "" {
		return s.opts.DefaultMode, nil
	}

	m, err := posture.ParseMode(name)

	if err == nil {
		return m, nil
	}

	if s.opts.UnknownModePolicy == PolicyReject {
		return s.opts.DefaultMode, err
	}

	s.logger.Warn().Str("mode", name).Str("using", s.opts.DefaultMode.String()).
		Msg("unknown posture mode, using default")

	return s.opts.DefaultMode, nil
}

// extract borrows an extractor session for the duration of one extraction
func (s *Service) extract(frame gocv.Mat) (set *posture.LandmarkSet, err error) {

	ex, err := s.pool.Get()

	if err != nil {
		return nil, fmt.Errorf("%w: %v", posture.ErrExtractor, err)
	}

	defer s.pool.Return(ex)

	defer func() {
		if r := recover(); r != nil {
			set, err = nil, fmt.Errorf("%w: extractor panicked: %v", posture.ErrExtractor, r)
		}
	}()

	set, err = ex.Extract(frame)

	if err != nil {
		if !errors.Is(err, posture.ErrExtractor) {
			err = fmt.Errorf("%w: %v", posture.ErrExtractor, err)
		}

		return nil, err
	}

	return set, nil
}
