package api

import (
	"net/http"

	"github.com/samber/do/v2"

	"github.com/pitchperfect/pitchperfect/internal/agents"
	"github.com/pitchperfect/pitchperfect/internal/repository"
	"github.com/pitchperfect/pitchperfect/internal/session"
	"github.com/pitchperfect/pitchperfect/internal/voice"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Handlers, error) {
		return NewHandlers(
			do.MustInvoke[repository.Repository](i),
			do.MustInvoke[*session.Manager](i),
			do.MustInvoke[*agents.Service](i),
			do.MustInvoke[voice.Platform](i),
		), nil
	})
	do.Provide(injector, func(i do.Injector) (http.Handler, error) {
		return NewRouter(do.MustInvoke[*Handlers](i)), nil
	})
}
