package services

// SideEffect records a secondary operation that failed while the
// primary write went through. The engine favors partial success over
// atomicity, but failures travel back to the caller as values instead
// of disappearing into a log line.
type SideEffect struct {
	Op     string `json:"op"`
	Detail string `json:"detail"`
}

// Warnings renders side effects for the response envelope.
func Warnings(effects []SideEffect) []string {
	if len(effects) == 0 {
		return nil
	}
	out := make([]string, len(effects))
	for i, effect := range effects {
		out[i] = effect.Op + ": " + effect.Detail
	}
	return out
}
