package sequencer

// Output drives the physical trigger lanes. Bit i of a mask is lane i.
//
// The clock calls both methods from its tick goroutine and ManualTrigger
// calls SetTriggers from the caller's goroutine, so implementations must
// tolerate concurrent calls without blocking.
type Output interface {
	// SetTriggers energizes the lanes whose bit is set, leaving others alone
	SetTriggers(mask uint16)
	// ClearAllTriggers de-energizes every lane
	ClearAllTriggers()
}

// Tee fans one trigger stream out to several outputs
func Tee(outs ...Output) Output {
	var live tee
	for _, o := range outs {
		if o != nil {
			live = append(live, o)
		}
	}
	if len(live) == 1 {
		return live[0]
	}
	return live
}

type tee []Output

func (t tee) SetTriggers(mask uint16) {
	for _, o := range t {
		o.SetTriggers(mask)
	}
}

func (t tee) ClearAllTriggers() {
	for _, o := range t {
		o.ClearAllTriggers()
	}
}

// Discard is an Output that drops everything
var Discard Output = discard{}

type discard struct{}

func (discard) SetTriggers(uint16) {}
func (discard) ClearAllTriggers()  {}
