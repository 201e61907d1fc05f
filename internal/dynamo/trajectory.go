package dynamo

// Trajectory is an ordered series of (time, state) samples produced by one
// integration. Callers treat it as read-only once returned.
type Trajectory struct {
	Times  []float64
	States []State
}

func (tr Trajectory) Len() int { return len(tr.Times) }

func (tr Trajectory) Empty() bool { return len(tr.Times) == 0 }

func (tr Trajectory) Start() float64 {
	if tr.Empty() {
		return 0
	}
	return tr.Times[0]
}

func (tr Trajectory) End() float64 {
	if tr.Empty() {
		return 0
	}
	return tr.Times[len(tr.Times)-1]
}

// Duration is the time spanned between the first and last sample.
func (tr Trajectory) Duration() float64 {
	return tr.End() - tr.Start()
}

// Last returns a copy of the final state, or nil for an empty trajectory.
func (tr Trajectory) Last() State {
	if tr.Empty() {
		return nil
	}
	return tr.States[len(tr.States)-1].Clone()
}

// Component extracts one state coordinate across all samples.
func (tr Trajectory) Component(i int) []float64 {
	out := make([]float64, len(tr.States))
	for k, s := range tr.States {
		if i < len(s) {
			out[k] = s[i]
		}
	}
	return out
}

// Extend appends next in place. When next starts at the time tr ends, its
// first sample is the boundary already present in tr and is dropped so the
// combined times stay strictly increasing. next is never modified.
func (tr *Trajectory) Extend(next Trajectory) {
	skip := 0
	if !tr.Empty() && !next.Empty() && next.Times[0] <= tr.End() {
		skip = 1
	}
	if next.Len() <= skip {
		return
	}
	tr.Times = append(tr.Times, next.Times[skip:]...)
	tr.States = append(tr.States, next.States[skip:]...)
}

// Monotonic reports whether sample times are strictly increasing.
func (tr Trajectory) Monotonic() bool {
	for i := 1; i < len(tr.Times); i++ {
		if tr.Times[i] <= tr.Times[i-1] {
			return false
		}
	}
	return true
}
