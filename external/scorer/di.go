package scorer

import (
	"github.com/samber/do/v2"

	"github.com/pitchperfect/pitchperfect/internal/config"
	"github.com/pitchperfect/pitchperfect/internal/scorer"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (scorer.Scorer, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewChatScorer(c.ScorerAPIKey, c.ScorerBaseURL, c.ScorerModel), nil
	})
}
