package signal

import (
	"testing"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

// fakeClock lets tests step time deterministically.
type fakeClock struct{ t time.Time }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }
func (c *fakeClock) now() time.Time          { return c.t }

func newTestDetector() (*Detector, *fakeClock) {
	d := NewDetector()
	clock := &fakeClock{t: time.Date(2026, 3, 8, 22, 0, 0, 0, time.UTC)}
	d.now = clock.now
	return d, clock
}

func TestThreePressesWithinWindowFireOnce(t *testing.T) {
	d, clock := newTestDetector()
	var fired []Trigger
	d.OnTrigger(func(tr Trigger) { fired = append(fired, tr) })

	d.ButtonPress()
	clock.advance(500 * time.Millisecond)
	d.ButtonPress()
	clock.advance(500 * time.Millisecond)
	d.ButtonPress()

	if len(fired) != 1 {
		t.Fatalf("expected exactly one trigger, got %d", len(fired))
	}
	if fired[0].Source != domain.TriggerButton {
		t.Fatalf("wrong source: %s", fired[0].Source)
	}
}

func TestSpacedPressesNeverFire(t *testing.T) {
	d, clock := newTestDetector()
	fired := 0
	d.OnTrigger(func(Trigger) { fired++ })

	for i := 0; i < 6; i++ {
		d.ButtonPress()
		clock.advance(2500 * time.Millisecond)
	}
	if fired != 0 {
		t.Fatalf("presses spaced beyond the window fired %d triggers", fired)
	}
}

func TestCounterResetsAfterFire(t *testing.T) {
	d, clock := newTestDetector()
	fired := 0
	d.OnTrigger(func(Trigger) { fired++ })

	for i := 0; i < 5; i++ {
		d.ButtonPress()
		clock.advance(100 * time.Millisecond)
	}
	// 5 rapid presses: fire at the 3rd, counter restarts, 2 left over.
	if fired != 1 {
		t.Fatalf("expected 1 trigger from 5 presses, got %d", fired)
	}
	d.ButtonPress()
	if fired != 2 {
		t.Fatalf("expected second trigger after 6th press, got %d", fired)
	}
}

func TestShakeFiresPromptNotTrigger(t *testing.T) {
	d, _ := newTestDetector()
	prompts, triggers := 0, 0
	d.OnShakePrompt(func(time.Time) { prompts++ })
	d.OnTrigger(func(Trigger) { triggers++ })

	d.Motion(15, 10, 8) // |15|+|10|+|8| = 33 > 30
	if prompts != 1 || triggers != 0 {
		t.Fatalf("shake should prompt only: prompts=%d triggers=%d", prompts, triggers)
	}
}

func TestShakeRefractoryPeriod(t *testing.T) {
	d, clock := newTestDetector()
	prompts := 0
	d.OnShakePrompt(func(time.Time) { prompts++ })

	d.Motion(20, 20, 20)
	clock.advance(1 * time.Second)
	d.Motion(20, 20, 20) // within 3s refractory, ignored
	clock.advance(3 * time.Second)
	d.Motion(20, 20, 20)

	if prompts != 2 {
		t.Fatalf("expected 2 prompts across the refractory window, got %d", prompts)
	}
}

func TestBelowThresholdIgnored(t *testing.T) {
	d, _ := newTestDetector()
	prompts := 0
	d.OnShakePrompt(func(time.Time) { prompts++ })
	d.Motion(9, 10, 10) // 29 < 30
	if prompts != 0 {
		t.Fatal("sub-threshold motion should not prompt")
	}
}

func TestManualTriggerBypassesDebounce(t *testing.T) {
	d, _ := newTestDetector()
	var got []Trigger
	d.OnTrigger(func(tr Trigger) { got = append(got, tr) })
	d.Trigger(domain.TriggerManual)
	d.Trigger(domain.TriggerManual)
	if len(got) != 2 {
		t.Fatalf("manual triggers are not debounced, got %d", len(got))
	}
}

func TestUnsubscribe(t *testing.T) {
	d, _ := newTestDetector()
	fired := 0
	off := d.OnTrigger(func(Trigger) { fired++ })
	off()
	d.Trigger(domain.TriggerManual)
	if fired != 0 {
		t.Fatal("unsubscribed handler still invoked")
	}
}
