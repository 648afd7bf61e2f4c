package app

import (
	"github.com/lumagrid/lumagrid/internal/registry"
	"github.com/lumagrid/lumagrid/modules/marquee"
	"github.com/lumagrid/lumagrid/modules/solid"
	"github.com/lumagrid/lumagrid/modules/strobe"
)

// coreModules is the definitive list of renderer modules compiled into the
// lumagrid binary.
var coreModules = []registry.Module{
	solid.Module{},
	marquee.Module{},
	strobe.Module{},
}
