package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhasePreUpdate  Phase = iota // 0: deliver last tick's events
	PhaseUpdate                  // 1: parallel component jobs
	PhasePostUpdate              // 2: serial follow-up on job results
	PhaseCleanup                 // 3: destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "phase?"
	}
}

// System is the interface every ECS system implements. An error returned
// from Update aborts the tick and reaches the runner's owner.
type System interface {
	Phase() Phase
	Update(dt time.Duration) error
}

// Initer is implemented by systems that need the pipeline before the first tick.
type Initer interface {
	Init(p *Pipeline) error
}

// Destroyer is implemented by systems that release resources at teardown.
type Destroyer interface {
	Destroy(p *Pipeline)
}

// Named systems report their name in errors and logs.
type Named interface {
	Name() string
}
