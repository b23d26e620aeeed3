package sse

type Event struct {
	Name string
	Data any
}

// SessionEvent is the first event of every stream; its data is the session id.
const SessionEvent = "session"
