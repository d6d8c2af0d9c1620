// Package server exposes the posture pipeline over HTTP.
package server

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/swdee/go-posture/pipeline"
)

const (
	// FrameField is the multipart field carrying the encoded frame
	FrameField = "frame"
	// ExerciseField is the optional form field naming the posture mode
	ExerciseField = "exercise"
)

// Processor evaluates a raw frame, it is satisfied by *pipeline.Service
type Processor interface {
	Process(ctx context.Context, raw []byte, mode string) pipeline.Response
}

// Config customises the HTTP app
type Config struct {
	AppName       string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxFrameBytes int
	Logger        zerolog.Logger
}

// Handler serves posture correction requests
type Handler struct {
	proc   Processor
	logger zerolog.Logger
}

// NewHandler returns a Handler evaluating frames with proc
func NewHandler(proc Processor, logger zerolog.Logger) *Handler {
	return &Handler{
		proc:   proc,
		logger: logger.With().Str("component", "posture_http").Logger(),
	}
}

// New returns a fiber app with the posture, health and metrics routes
// registered
func New(proc Processor, cfg Config) *fiber.App {

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    cfg.MaxFrameBytes,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,OPTIONS",
	}))

	h := NewHandler(proc, cfg.Logger)

	app.Post("/posture-correction", h.PostureCorrection)
	app.Get("/healthz", Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app
}

// PostureCorrection evaluates the uploaded frame.  Evaluation failures are
// reported in the body with a 200 status, only a request without a frame is
// rejected
func (h *Handler) PostureCorrection(c *fiber.Ctx) error {

	fh, err := c.FormFile(FrameField)

	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(pipeline.Response{
			Status:  pipeline.StatusError,
			Message: "missing frame file",
		})
	}

	f, err := fh.Open()

	if err != nil {
		h.logger.Error().Err(err).Msg("could not open uploaded frame")
		return c.Status(fiber.StatusBadRequest).JSON(pipeline.Response{
			Status:  pipeline.StatusError,
			Message: "could not read frame file",
		})
	}

	defer f.Close()

	raw, err := io.ReadAll(f)

	if err != nil {
		h.logger.Error().Err(err).Msg("could not read uploaded frame")
		return c.Status(fiber.StatusBadRequest).JSON(pipeline.Response{
			Status:  pipeline.StatusError,
			Message: "could not read frame file",
		})
	}

	resp := h.proc.Process(c.UserContext(), raw, c.FormValue(ExerciseField))

	return c.JSON(resp)
}

// Health reports the service is up
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
