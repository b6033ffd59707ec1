package routine

// Stage is the lifecycle stage a routine execution is in, as derived from the
// last relevant message observed. It is a projection of the message stream,
// not a mutable field of the routine itself.
type Stage int

// Stage constants. StageNone is the zero value and means "no relevant message
// has been observed for this routine".
const (
	StageNone Stage = iota
	StageStarted
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageStarted:
		return "STARTED"
	case StageDone:
		return "DONE"
	case StageFailed:
		return "FAILED"
	default:
		return "NONE"
	}
}

// Message is one entry of a routine's message stream. The concrete types are
// Started, Done, Failed and Stop; consumers are expected to type-switch over
// them or go through Routine.Switch.
type Message interface {
	// RoutineName returns the name of the routine the message belongs to.
	RoutineName() string

	// MessageStage returns the lifecycle stage the message signals.
	// Control messages return StageNone.
	MessageStage() Stage

	// Type returns the tagged type string handed to hosts, e.g.
	// "SYNC_WALLET_STARTED".
	Type() string
}

// Started signals that an execution of the routine began. It carries the
// original trigger parameters.
type Started struct {
	Routine string
	Params  interface{}
}

// RoutineName implements Message.
func (m Started) RoutineName() string { return m.Routine }

// MessageStage implements Message.
func (m Started) MessageStage() Stage { return StageStarted }

// Type implements Message.
func (m Started) Type() string { return m.Routine + "_STARTED" }

// Done signals that an execution of the routine finished successfully. It
// carries the original trigger parameters and the worker's result.
type Done struct {
	Routine string
	Params  interface{}
	Result  interface{}
}

// RoutineName implements Message.
func (m Done) RoutineName() string { return m.Routine }

// MessageStage implements Message.
func (m Done) MessageStage() Stage { return StageDone }

// Type implements Message.
func (m Done) Type() string { return m.Routine + "_DONE" }

// Failed signals that an execution of the routine failed, or was cancelled.
// It carries the original trigger parameters and the error.
type Failed struct {
	Routine string
	Params  interface{}
	Err     error
}

// RoutineName implements Message.
func (m Failed) RoutineName() string { return m.Routine }

// MessageStage implements Message.
func (m Failed) MessageStage() Stage { return StageFailed }

// Type implements Message.
func (m Failed) Type() string { return m.Routine + "_FAILED" }

// Stop is a control message requesting that a polling routine halt its
// schedule and cancel any in-flight execution. It does not belong to any
// lifecycle stage.
type Stop struct {
	Routine string
}

// RoutineName implements Message.
func (m Stop) RoutineName() string { return m.Routine }

// MessageStage implements Message.
func (m Stop) MessageStage() Stage { return StageNone }

// Type implements Message.
func (m Stop) Type() string { return m.Routine + "_STOP" }
