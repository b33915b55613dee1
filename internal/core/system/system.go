package system

import "time"

// Phase defines execution ordering within a single world tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain queued client packets
	PhasePreUpdate               // 1: deliver last tick's events
	PhaseUpdate                  // 2: simulation logic
	PhasePostUpdate              // 3: derived state, triggers
	PhaseOutput                  // 4: serialize dirty state into notifies
	PhasePersist                 // 5: snapshot hand-off
	PhaseCleanup                 // 6: destroy queued entities
)

// System is the interface every per-world system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
