package sequencer_test

import (
	"testing"

	"trigseq/sequencer"
)

type lamp struct {
	lit    uint16
	clears int
}

func (l *lamp) SetTriggers(mask uint16) { l.lit |= mask }
func (l *lamp) ClearAllTriggers()       { l.lit = 0; l.clears++ }

func TestTeeFansOut(t *testing.T) {
	a, b := &lamp{}, &lamp{}
	out := sequencer.Tee(a, nil, b)
	out.SetTriggers(0b0011)
	out.SetTriggers(0b1000)
	if a.lit != 0b1011 || b.lit != 0b1011 {
		t.Fatalf("lit a=%04b b=%04b", a.lit, b.lit)
	}
	out.ClearAllTriggers()
	if a.lit != 0 || b.clears != 1 {
		t.Fatalf("clear not fanned out")
	}
}

func TestTeeSingle(t *testing.T) {
	a := &lamp{}
	if out := sequencer.Tee(nil, a); out != sequencer.Output(a) {
		t.Fatalf("single output was wrapped")
	}
	out := sequencer.Tee()
	out.SetTriggers(0xffff)
	out.ClearAllTriggers()
}
