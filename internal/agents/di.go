package agents

import (
	"github.com/samber/do/v2"

	"github.com/pitchperfect/pitchperfect/internal/repository"
	"github.com/pitchperfect/pitchperfect/internal/voice"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		return NewService(
			do.MustInvoke[repository.Repository](i),
			do.MustInvoke[voice.Admin](i),
		), nil
	})
}
