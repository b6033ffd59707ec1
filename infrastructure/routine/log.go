package routine

import (
	"github.com/peerassets/pawallet/infrastructure/logger"
	"github.com/peerassets/pawallet/util/panics"
)

var log = logger.RegisterSubSystem("RTNE")
var spawn = panics.GoroutineWrapperFunc(log)
