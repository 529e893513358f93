package engine

// State is a step of the run state machine.
type State string

const (
	StateStarted         State = "Started"
	StateFetchingHistory State = "FetchingHistory"
	StateDeciding        State = "Deciding"
	StateTrading         State = "Trading"
	StateSkipping        State = "Skipping"
	StateLogging         State = "Logging"
	StateReporting       State = "Reporting"
	StateTerminal        State = "Terminal"
)

func trailStrings(trail []State) []string {
	out := make([]string, len(trail))
	for i, s := range trail {
		out[i] = string(s)
	}
	return out
}
