package voice

import (
	"github.com/samber/do/v2"

	"github.com/pitchperfect/pitchperfect/internal/config"
	"github.com/pitchperfect/pitchperfect/internal/voice"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (voice.Platform, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewPlatform(c.VoiceAPIKey, c.VoiceAPIBaseURL, c.VoiceWSBaseURL), nil
	})
	do.Provide(injector, func(i do.Injector) (voice.Admin, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewAdmin(c.VoiceAPIKey, c.VoiceAPIBaseURL), nil
	})
	do.Provide(injector, func(i do.Injector) (voice.AudioFetcher, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewAdmin(c.VoiceAPIKey, c.VoiceAPIBaseURL), nil
	})
}
