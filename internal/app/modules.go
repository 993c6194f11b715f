package app

import (
	"github.com/specialistvlad/forgegrid/internal/canvas"
	"github.com/specialistvlad/forgegrid/internal/config"
	"github.com/specialistvlad/forgegrid/internal/hcl_adapter"
	"github.com/specialistvlad/forgegrid/internal/registry"
	logsink "github.com/specialistvlad/forgegrid/modules/log"
	"github.com/specialistvlad/forgegrid/modules/print"
	"github.com/specialistvlad/forgegrid/modules/socketio"
)

// coreModules is the definitive list of progress sink modules compiled into
// the forgegrid binary.
var coreModules = []registry.Module{
	&logsink.Module{},
	&print.Module{},
	&socketio.Module{},
}

// DefaultProgress is the sink list used when none is configured.
var DefaultProgress = []string{logsink.Name}

// newDispatcher registers every pipeline document format.
func newDispatcher() *config.Dispatcher {
	d := config.NewDispatcher()
	d.Register(hcl_adapter.NewLoader(), ".hcl")
	d.Register(canvas.JSONLoader{}, ".json")
	d.Register(canvas.YAMLLoader{}, ".yaml", ".yml")
	return d
}
