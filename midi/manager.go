package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"trigseq/debug"
)

// PortEvent is emitted when a watched port appears or disappears
type PortEvent struct {
	Type PortEventType
	Dir  Direction
	Name string
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

// Direction tells input ports from output ports
type Direction int

const (
	Output Direction = iota
	Input
)

func (d Direction) String() string {
	if d == Input {
		return "in"
	}
	return "out"
}

// PortLister returns the current input and output port names. ok is false
// when the driver could not be queried.
type PortLister func() (ins, outs []string, ok bool)

// PortManager watches for MIDI ports by name and reports hot-plug changes.
// An empty pattern disables that direction.
type PortManager struct {
	outWant string
	inWant  string
	list    PortLister

	mu       sync.RWMutex
	current  [2]string // by Direction
	events   chan PortEvent
	pollRate time.Duration
}

// NewPortManager watches for ports whose names contain outName and inName
func NewPortManager(outName, inName string) *PortManager {
	return &PortManager{
		outWant:  strings.ToLower(outName),
		inWant:   strings.ToLower(inName),
		list:     SystemPorts,
		events:   make(chan PortEvent, 16),
		pollRate: time.Second,
	}
}

// SetLister replaces the port source
func (pm *PortManager) SetLister(list PortLister) {
	pm.list = list
}

// Events returns a channel of connect/disconnect events
func (pm *PortManager) Events() <-chan PortEvent {
	return pm.events
}

// Current returns the connected port name for a direction, or ""
func (pm *PortManager) Current(dir Direction) string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.current[dir]
}

// Run starts the polling loop (blocking - run in goroutine)
func (pm *PortManager) Run(ctx context.Context) {
	ticker := time.NewTicker(pm.pollRate)
	defer ticker.Stop()
	defer close(pm.events)

	// Initial scan
	pm.Scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pm.Scan(ctx)
		}
	}
}

// Scan compares the port list with the connected ports once and emits
// events for the differences. It gives up on delivery when ctx is done.
func (pm *PortManager) Scan(ctx context.Context) {
	ins, outs, ok := pm.list()
	if !ok {
		return
	}
	pm.update(ctx, Output, pm.outWant, outs)
	pm.update(ctx, Input, pm.inWant, ins)
}

func (pm *PortManager) emit(ctx context.Context, ev PortEvent) {
	select {
	case pm.events <- ev:
	case <-ctx.Done():
	}
}

func (pm *PortManager) update(ctx context.Context, dir Direction, want string, names []string) {
	if want == "" {
		return
	}

	pm.mu.RLock()
	cur := pm.current[dir]
	pm.mu.RUnlock()

	found := ""
	for _, name := range names {
		if name == cur {
			// still there
			return
		}
		if found == "" && strings.Contains(strings.ToLower(name), want) {
			found = name
		}
	}

	if cur != "" {
		pm.set(dir, "")
		debug.Log("midi", "port gone: %s %s", dir, cur)
		pm.emit(ctx, PortEvent{Type: PortDisconnected, Dir: dir, Name: cur})
	}
	if found != "" {
		pm.set(dir, found)
		debug.Log("midi", "port found: %s %s", dir, found)
		pm.emit(ctx, PortEvent{Type: PortConnected, Dir: dir, Name: found})
	}
}

func (pm *PortManager) set(dir Direction, name string) {
	pm.mu.Lock()
	pm.current[dir] = name
	pm.mu.Unlock()
}

// SystemPorts lists the driver's ports. ok is false when the driver does
// not answer within 3s (CoreMIDI can hang).
func SystemPorts() (ins, outs []string, ok bool) {
	type portsResult struct {
		ins, outs []string
	}

	ch := make(chan portsResult, 1)
	go func() {
		var r portsResult
		for _, p := range gomidi.GetInPorts() {
			r.ins = append(r.ins, p.String())
		}
		for _, p := range gomidi.GetOutPorts() {
			r.outs = append(r.outs, p.String())
		}
		ch <- r
	}()

	select {
	case r := <-ch:
		return r.ins, r.outs, true
	case <-time.After(3 * time.Second):
		// User needs to run: sudo killall coreaudiod midiserver
		debug.LogEvery(10, "midi", "port scan timed out")
		return nil, nil, false
	}
}
