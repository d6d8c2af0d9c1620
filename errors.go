package posture

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failures that can occur during an evaluation
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindDecode
	KindExtractionAbsent
	KindDegenerateAngle
	KindMissingJoint
	KindUnknownMode
	KindExtractor
	KindInternal
)

// String returns a readable description of the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindDecode:
		return "image decode failed"
	case KindExtractionAbsent:
		return "no body detected"
	case KindDegenerateAngle:
		return "degenerate angle"
	case KindMissingJoint:
		return "missing joint"
	case KindUnknownMode:
		return "unknown posture mode"
	case KindExtractor:
		return "keypoint extractor failed"
	case KindInternal:
		return "internal error"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

var (
	ErrDecode = errors.New("image decode failed")
	// ErrExtractionAbsent is not a failure, it signals that no body was found
	// in the frame
	ErrExtractionAbsent = errors.New("no posture detected")
	ErrDegenerateAngle  = errors.New("degenerate angle")
	ErrMissingJoint     = errors.New("missing joint")
	ErrUnknownMode      = errors.New("unknown posture mode")
	ErrExtractor        = errors.New("keypoint extractor failed")
	ErrInternal         = errors.New("internal error")
)

// DecodeError is returned when a raw frame buffer can not be decoded into an
// image
type DecodeError struct {
	// Reason describes what was wrong with the buffer
	Reason string
	// Err is the underlying decoder error, if any
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrDecode, e.Reason, e.Err)
	}

	return fmt.Sprintf("%s: %s", ErrDecode, e.Reason)
}

// Is matches ErrDecode
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MissingJointError is returned when a rule needs a joint the LandmarkSet
// does not contain
type MissingJointError struct {
	Joint Joint
}

func (e *MissingJointError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingJoint, e.Joint)
}

// Is matches ErrMissingJoint
func (e *MissingJointError) Is(target error) bool {
	return target == ErrMissingJoint
}

// KindOf classifies err, returning KindInternal for errors outside the
// taxonomy and KindNone for nil
func KindOf(err error) ErrorKind {

	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrDecode):
		return KindDecode
	case errors.Is(err, ErrExtractionAbsent):
		return KindExtractionAbsent
	case errors.Is(err, ErrDegenerateAngle):
		return KindDegenerateAngle
	case errors.Is(err, ErrMissingJoint):
		return KindMissingJoint
	case errors.Is(err, ErrUnknownMode):
		return KindUnknownMode
	case errors.Is(err, ErrExtractor):
		return KindExtractor
	default:
		return KindInternal
	}
}
