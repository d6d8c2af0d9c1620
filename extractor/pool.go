package extractor

import (
	"github.com/swdee/go-posture"
	"github.com/swdee/go-rknnlite"
)

// cores are the NPU cores of the RK3588 that pool sessions are pinned to in
// turn
var cores = []rknnlite.CoreMask{rknnlite.NPUCore0, rknnlite.NPUCore1, rknnlite.NPUCore2}

// NewPool creates a pool of size RKNN sessions for modelFile spread across
// the NPU cores.  A pool of one lets the NPU pick an idle core
func NewPool(size int, modelFile string, cfg posture.ExtractorConfig) (*posture.Pool, error) {
	return posture.NewPool(size, func(i int) (posture.Extractor, error) {
		return NewRKNN(modelFile, coreFor(i, size), cfg)
	})
}

func coreFor(i, size int) rknnlite.CoreMask {
	if size == 1 {
		return rknnlite.NPUCoreAuto
	}

	return cores[i%len(cores)]
}
