package navigator

// State is the lifecycle of one Load call:
// idle -> loading -> {loaded | retrying -> loading | failed}.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateRetrying
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRetrying:
		return "retrying"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == StateLoaded || s == StateFailed
}
