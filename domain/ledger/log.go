package ledger

import (
	"github.com/peerassets/pawallet/infrastructure/logger"
)

var log = logger.RegisterSubSystem("LDGR")
