package session

import (
	"github.com/pitchperfect/pitchperfect/internal/capture"
	"github.com/pitchperfect/pitchperfect/internal/config"
	"github.com/pitchperfect/pitchperfect/internal/repository"
	"github.com/pitchperfect/pitchperfect/internal/voice"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		platform := do.MustInvoke[voice.Platform](i)
		newRecorder := do.MustInvoke[capture.RecorderFactory](i)
		post := do.MustInvoke[PostProcessor](i)
		return NewManager(cfg, repo, platform, newRecorder, post), nil
	})
}
