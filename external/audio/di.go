package audio

import (
	"github.com/samber/do/v2"

	"github.com/pitchperfect/pitchperfect/internal/audio"
	"github.com/pitchperfect/pitchperfect/internal/config"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (audio.Splicer, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewFFmpegSplicer(c.FFmpegPath), nil
	})
}
