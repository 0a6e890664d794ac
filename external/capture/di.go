package capture

import (
	"github.com/samber/do/v2"

	"github.com/pitchperfect/pitchperfect/internal/capture"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (capture.RecorderFactory, error) {
		return func(practiceSessionID string) capture.Recorder {
			return NewMemoryRecorder(practiceSessionID)
		}, nil
	})
}
