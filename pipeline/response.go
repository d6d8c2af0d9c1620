package pipeline

import "github.com/swdee/go-posture"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the record returned to transport callers.  Its JSON encoding
// is one of
//
//	{"status":"success","posture":"Wrong Posture","corrections":["Bend knees more."],"confidence":90}
//	{"status":"error","message":"..."}
type Response struct {
	Status      string   `json:"status"`
	Posture     string   `json:"posture,omitempty"`
	Corrections []string `json:"corrections,omitempty"`
	Confidence  *int     `json:"confidence,omitempty"`
	Message     string   `json:"message,omitempty"`
	// Kind classifies error responses for Go callers, it is not encoded
	Kind posture.ErrorKind `json:"-"`
}

// FromResult maps an evaluation result to a Response
func FromResult(r posture.Result) Response {

	switch r.Verdict() {
	case posture.CorrectPosture, posture.WrongPosture:
		confidence := r.Confidence()

		return Response{
			Status:      StatusSuccess,
			Posture:     r.Verdict().String(),
			Corrections: r.Tips(),
			Confidence:  &confidence,
		}

	case posture.ExtractionFailed:
		return Response{
			Status:  StatusError,
			Message: posture.TipNoPosture,
			Kind:    posture.KindExtractionAbsent,
		}
	}

	msg := posture.KindInternal.String()

	if tips := r.Tips(); len(tips) > 0 {
		msg = tips[0]
	}

	return Response{
		Status:  StatusError,
		Message: msg,
		Kind:    r.Kind(),
	}
}

// ErrorResponse returns the error Response for err
func ErrorResponse(err error) Response {
	return Response{
		Status:  StatusError,
		Message: err.Error(),
		Kind:    posture.KindOf(err),
	}
}

// OK reports whether the response carries a posture verdict
func (r Response) OK() bool {
	return r.Status == StatusSuccess
}
