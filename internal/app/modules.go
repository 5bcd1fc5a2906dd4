package app

import (
	"github.com/specialistvlad/dispatchgo/internal/registry"
	"github.com/specialistvlad/dispatchgo/modules/echo"
	"github.com/specialistvlad/dispatchgo/modules/env_vars"
	"github.com/specialistvlad/dispatchgo/modules/print"
)

// coreModules is the definitive list of all receiver modules that are
// compiled into the dispatchgo binary.
var coreModules = []registry.Module{
	&echo.Module{},
	&env_vars.Module{},
	&print.Module{},
}
