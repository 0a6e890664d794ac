package highlight

import (
	"github.com/samber/do/v2"

	"github.com/pitchperfect/pitchperfect/internal/audio"
	"github.com/pitchperfect/pitchperfect/internal/config"
	"github.com/pitchperfect/pitchperfect/internal/repository"
	"github.com/pitchperfect/pitchperfect/internal/scorer"
	"github.com/pitchperfect/pitchperfect/internal/session"
	"github.com/pitchperfect/pitchperfect/internal/transcriber"
	"github.com/pitchperfect/pitchperfect/internal/voice"
	"github.com/pitchperfect/pitchperfect/internal/webhook"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (session.PostProcessor, error) {
		return NewService(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[repository.Repository](i),
			do.MustInvoke[voice.AudioFetcher](i),
			do.MustInvoke[audio.Splicer](i),
			do.MustInvoke[transcriber.Transcriber](i),
			do.MustInvoke[scorer.Scorer](i),
			do.MustInvoke[webhook.Sender](i),
		), nil
	})
}
