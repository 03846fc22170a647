package midi

import "slices"

// DrumKit maps trigger lanes to drum notes. Lane i plays Notes[i], so the
// first four slots are the four trigger jacks.
type DrumKit struct {
	Name  string
	Notes [16]uint8
}

// SlotNames labels the kit slots in lane order
var SlotNames = [16]string{
	"Kick", "Snare", "Closed HH", "Open HH",
	"Low Tom", "Mid Tom", "High Tom", "Crash",
	"Ride", "Clap", "Rimshot", "Cowbell",
	"Clave", "Maracas", "Low Conga", "High Conga",
}

// Kits contains all available drum kit mappings
var Kits = map[string]DrumKit{
	"gm": {
		Name:  "General MIDI",
		Notes: [16]uint8{36, 38, 42, 46, 41, 43, 45, 49, 51, 39, 37, 56, 75, 70, 64, 63},
	},
	// RD-8 snare is 40, toms sit higher than GM
	"rd8": {
		Name:  "Behringer RD-8",
		Notes: [16]uint8{36, 40, 42, 46, 45, 48, 50, 49, 51, 39, 37, 56, 75, 70, 64, 63},
	},
	"tr8s": {
		Name:  "Roland TR-8S",
		Notes: [16]uint8{36, 38, 42, 46, 41, 43, 45, 49, 51, 39, 37, 56, 75, 70, 62, 63},
	},
	// ER-1 only answers on the first ten slots
	"er1": {
		Name:  "Korg ER-1",
		Notes: [16]uint8{36, 38, 42, 46, 40, 41, 43, 49, 45, 39, 37, 56, 75, 70, 64, 63},
	},
}

// DefaultKit is the default kit name
const DefaultKit = "gm"

// KitNames returns the available kit names, sorted
func KitNames() []string {
	names := make([]string, 0, len(Kits))
	for name := range Kits {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GetKit returns a kit by name, defaulting to GM if not found
func GetKit(name string) DrumKit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits[DefaultKit]
}

// Lane returns the lane a note triggers, or -1 if the kit has no slot for it
func (k DrumKit) Lane(note uint8) int {
	return slices.Index(k.Notes[:], note)
}
