package orderpayments

import (
	"github.com/smallbiznis/paylink/internal/orderpayments/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("orderpayments",
	fx.Provide(repository.New),
)
