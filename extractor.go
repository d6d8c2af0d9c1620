package posture

import (
	"sync"

	"gocv.io/x/gocv"
)

// Extractor locates the keypoints of a single body in a frame.
type Extractor interface {
	// Extract takes an RGB frame and returns the landmarks of the detected
	// body.  A nil set with a nil error means no body was detected with
	// sufficient confidence
	Extract(frame gocv.Mat) (*LandmarkSet, error)

	// Close releases any resources held by the extractor
	Close() error
}

// ExtractorConfig holds the detection thresholds handed to an Extractor
type ExtractorConfig struct {
	// MinDetectionConfidence is the minimum score (0.0-1.0) for a body
	// detection to be reported
	MinDetectionConfidence float64 `validate:"gte=0,lte=1"`
	// MinTrackingConfidence is the minimum keypoint score (0.0-1.0) an
	// extractor should trust a joint position at
	MinTrackingConfidence float64 `validate:"gte=0,lte=1"`
}

// DefaultExtractorConfig returns the default thresholds of 0.5
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,
	}
}

// StrictExtractorConfig returns raised thresholds of 0.7 for stricter
// detection
func StrictExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		MinDetectionConfidence: 0.7,
		MinTrackingConfidence:  0.7,
	}
}

// FixedExtractor is an Extractor returning a preset LandmarkSet for every
// frame, regardless of content.  A nil Set reports no detection
type FixedExtractor struct {
	Set *LandmarkSet
	Err error

	mu    sync.Mutex
	calls int
}

// Extract returns the preset set and error
func (f *FixedExtractor) Extract(gocv.Mat) (*LandmarkSet, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	return f.Set, f.Err
}

// Calls returns the number of Extract calls made
func (f *FixedExtractor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Close is a no-op
func (f *FixedExtractor) Close() error {
	return nil
}
