package sync

import (
	"github.com/peerassets/pawallet/infrastructure/logger"
	"github.com/peerassets/pawallet/util/panics"
)

var log = logger.RegisterSubSystem("SYNC")
var spawn = panics.GoroutineWrapperFunc(log)
