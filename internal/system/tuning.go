package system

import "go.uber.org/zap"

// warnMissing reports a Lua tuning function that is not defined; the system
// then runs with its neutral default.
func warnMissing(log *zap.Logger, name, fn string) {
	if log == nil {
		return
	}
	log.Warn("lua tuning function missing, using default",
		zap.String("system", name), zap.String("func", fn))
}
