package posture

import "fmt"

// Verdict is the terminal outcome of one evaluation
type Verdict int

const (
	CorrectPosture Verdict = iota
	WrongPosture
	ExtractionFailed
	EvaluationError
)

// String returns the display name of the verdict
func (v Verdict) String() string {
	switch v {
	case CorrectPosture:
		return "Correct Posture"
	case WrongPosture:
		return "Wrong Posture"
	case ExtractionFailed:
		return "No Posture Detected"
	case EvaluationError:
		return "Error"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

const (
	// TipGreatJob is the single tip of a correct posture
	TipGreatJob = "Great job!"
	// TipNoPosture is the single tip when no body was detected
	TipNoPosture = "No posture detected. Ensure full body is visible and lighting is good."
	// MaxConfidence is the confidence of a posture with no corrections
	MaxConfidence = 100
	// TipPenalty is deducted from the confidence for each correction tip
	TipPenalty = 10
)

// Result is the outcome of one evaluation.  It is immutable, the fields are
// read through accessor methods
type Result struct {
	verdict       Verdict
	tips          []string
	confidence    int
	hasConfidence bool
	err           error
}

// Correct returns the result for a posture with no corrections
func Correct() Result {
	return Result{
		verdict:       CorrectPosture,
		tips:          []string{TipGreatJob},
		confidence:    MaxConfidence,
		hasConfidence: true,
	}
}

// Wrong returns the result for a posture with the given correction tips.  The
// confidence is reduced by TipPenalty for each tip and floored at 0.  With no
// tips Correct is returned
func Wrong(tips []string) Result {

	if len(tips) == 0 {
		return Correct()
	}

	confidence := MaxConfidence - TipPenalty*len(tips)

	if confidence < 0 {
		confidence = 0
	}

	return Result{
		verdict:       WrongPosture,
		tips:          append([]string(nil), tips...),
		confidence:    confidence,
		hasConfidence: true,
	}
}

// NotDetected returns the result for a frame where no body was found.  It
// carries no confidence
func NotDetected() Result {
	return Result{
		verdict: ExtractionFailed,
		tips:    []string{TipNoPosture},
		err:     ErrExtractionAbsent,
	}
}

// Failed returns the result for an evaluation that could not complete.  The
// error text is the single tip and the confidence is 0
func Failed(err error) Result {

	if err == nil {
		err = ErrInternal
	}

	return Result{
		verdict:       EvaluationError,
		tips:          []string{err.Error()},
		confidence:    0,
		hasConfidence: true,
		err:           err,
	}
}

// Verdict returns the outcome of the evaluation
func (r Result) Verdict() Verdict {
	return r.verdict
}

// Tips returns a copy of the correction tips
func (r Result) Tips() []string {
	return append([]string(nil), r.tips...)
}

// Confidence returns the confidence score in the range [0,100].  It is 0 when
// HasConfidence is false
func (r Result) Confidence() int {
	return r.confidence
}

// HasConfidence reports whether a confidence is defined, which is the case
// for every verdict except ExtractionFailed
func (r Result) HasConfidence() bool {
	return r.hasConfidence
}

// Err returns the error behind an ExtractionFailed or EvaluationError result
func (r Result) Err() error {
	return r.err
}

// Kind returns the ErrorKind of the result error
func (r Result) Kind() ErrorKind {
	return KindOf(r.err)
}
