package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/swdee/go-posture"
	"github.com/swdee/go-posture/extractor"
	"github.com/swdee/go-posture/pipeline"
	"github.com/swdee/go-posture/preprocess"
	"github.com/swdee/go-posture/render"
	"github.com/swdee/go-posture/rules"
	"gocv.io/x/gocv"
)

func main() {
	// read in cli flags
	modelFile := flag.String("m", "../data/yolov8n-pose-rk3588.rknn", "RKNN compiled pose model file")
	imgFile := flag.String("i", "../data/squat.jpg", "Image file to evaluate the posture of")
	exercise := flag.String("e", "Squat", "Exercise to evaluate, one of Standing, Squat, Push-Up, Plank, Lunge")
	side := flag.String("side", "left", "Body side to measure angles on, left or right")
	strict := flag.Bool("strict", false, "Use the strict 0.7 detection thresholds")
	saveFile := flag.String("o", "../data/squat-out.jpg", "The output JPG file with the skeleton and corrections rendered")
	debug := flag.Bool("v", false, "Enable debug logging")

	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	if !*debug {
		logger = logger.Level(zerolog.InfoLevel)
	}

	raw, err := os.ReadFile(*imgFile)

	if err != nil {
		logger.Fatal().Err(err).Str("file", *imgFile).Msg("error reading image")
	}

	th := rules.DefaultThresholds()
	th.Side, err = rules.ParseSide(*side)

	if err != nil {
		logger.Fatal().Err(err).Msg("invalid side")
	}

	evaluator, err := rules.NewEvaluator(th)

	if err != nil {
		logger.Fatal().Err(err).Msg("error creating rule evaluator")
	}

	detection := posture.DefaultExtractorConfig()

	if *strict {
		detection = posture.StrictExtractorConfig()
	}

	pool, err := extractor.NewPool(1, *modelFile, detection)

	if err != nil {
		logger.Fatal().Err(err).Msg("error initializing RKNN runtime")
	}

	defer pool.Close()

	opts := pipeline.DefaultOptions()
	opts.UnknownModePolicy = pipeline.PolicyReject

	svc := pipeline.NewService(preprocess.NewDefaultNormalizer(), pool, evaluator, opts, logger)

	start := time.Now()
	ins := svc.Inspect(context.Background(), raw, *exercise)

	logger.Info().Dur("elapsed", time.Since(start)).Str("mode", ins.Mode.String()).
		Msg("posture evaluated")

	out, err := json.Marshal(ins.Response)

	if err != nil {
		logger.Fatal().Err(err).Msg("error encoding response")
	}

	os.Stdout.Write(append(out, '\n'))

	if *saveFile == "" {
		return
	}

	// draw on the frame at its original resolution
	img, err := preprocess.Decode(raw)

	if err != nil {
		logger.Fatal().Err(err).Msg("error decoding image for rendering")
	}

	defer img.Close()

	// hide joints the model is unsure of
	style := render.DefaultStyle()
	style.MinVisibility = detection.MinTrackingConfidence

	render.Skeleton(&img, ins.Landmarks, style)

	verdict := ins.Response.Posture
	tips := ins.Response.Corrections

	if !ins.Response.OK() {
		verdict = ins.Response.Message
		tips = nil
	}

	font := render.DefaultFont().ScaledTo(img.Cols(), preprocess.DefaultWidth)
	render.Verdict(&img, verdict, tips, font)

	if !gocv.IMWrite(*saveFile, img) {
		logger.Fatal().Str("file", *saveFile).Msg("error saving output image")
	}

	logger.Info().Str("file", *saveFile).Msg("saved annotated image")
}
