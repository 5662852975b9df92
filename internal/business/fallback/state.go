package fallback

import "fmt"

// State 编排状态
type State string

const (
	StateIdle              State = "IDLE"
	StateCheckingRemote    State = "CHECKING_REMOTE"
	StateRemoteOK          State = "REMOTE_OK"
	StateRemoteUnavailable State = "REMOTE_UNAVAILABLE"
	StateCallingRemote     State = "CALLING_REMOTE"
	StateRemoteResult      State = "REMOTE_RESULT"
	StateRemoteFailed      State = "REMOTE_FAILED"
	StateLocalFallback     State = "LOCAL_FALLBACK"
	StateDone              State = "DONE"
)

// transitions 合法状态迁移表
var transitions = map[State][]State{
	StateIdle:              {StateCheckingRemote},
	StateCheckingRemote:    {StateRemoteOK, StateRemoteUnavailable},
	StateRemoteOK:          {StateCallingRemote},
	StateRemoteUnavailable: {StateLocalFallback},
	StateCallingRemote:     {StateRemoteResult, StateRemoteFailed},
	StateRemoteResult:      {StateDone},
	StateRemoteFailed:      {StateLocalFallback},
	StateLocalFallback:     {StateDone},
}

// CanTransition 是否允许 from → to
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// machine 记录状态轨迹
type machine struct {
	current State
	trace   []State
}

func newMachine() *machine {
	return &machine{current: StateIdle, trace: []State{StateIdle}}
}

func (m *machine) to(next State) {
	if !CanTransition(m.current, next) {
		panic(fmt.Sprintf("fallback: illegal transition %s -> %s", m.current, next))
	}
	m.current = next
	m.trace = append(m.trace, next)
}
