package perf

// EnableForTest forces collection on, disables periodic logging and clears
// existing samples. It returns a function restoring the prior settings.
func EnableForTest() func() {
	prevEnabled := enabled.Load()
	prevInterval := logInterval.Load()
	enabled.Store(true)
	logInterval.Store(0)
	lastLog.Store(0)
	_, _ = Snapshot()
	return func() {
		enabled.Store(prevEnabled)
		logInterval.Store(prevInterval)
		_, _ = Snapshot()
	}
}
