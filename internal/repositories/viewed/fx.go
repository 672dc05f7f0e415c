package viewed

import (
	"go.uber.org/fx"
)

var Module = fx.Provide(
	fx.Annotate(
		NewMemory,
		fx.As(new(Repository)),
	),
)
