package txbuilder

import (
	"github.com/peerassets/pawallet/infrastructure/logger"
)

var log = logger.RegisterSubSystem("TXBD")
