package sales

import (
	"github.com/smallbiznis/retailsales/internal/sales/service"
	"go.uber.org/fx"
)

// Module provides the sales query service. The store it reads from is
// provided separately by repository.Module.
var Module = fx.Module("sales.service",
	fx.Provide(service.New),
)
