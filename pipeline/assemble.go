// Package pipeline joins frame normalization, keypoint extraction and rule
// evaluation into a single call returning one structured outcome.
package pipeline

import "github.com/swdee/go-posture"

// EvaluateFunc evaluates a landmark set under a mode, rules.Evaluator's
// Evaluate method satisfies it
type EvaluateFunc func(set *posture.LandmarkSet, mode posture.Mode) posture.Result

// Assemble returns the ExtractionFailed result when no landmarks were
// extracted, otherwise it forwards the result of eval unchanged
func Assemble(set *posture.LandmarkSet, mode posture.Mode, eval EvaluateFunc) posture.Result {

	if set == nil || set.Len() == 0 {
		return posture.NotDetected()
	}

	return eval(set, mode)
}
