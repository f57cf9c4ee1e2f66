package signal

import (
	"math"
	"sync"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

// Trigger is the single event meaning "user needs emergency help now".
type Trigger struct {
	Source domain.TriggerSource `json:"source"`
	At     time.Time            `json:"at"`
}

// Detector converts heterogeneous raw inputs (volume-button presses, motion
// samples, manual taps) into trigger events. It is a pure event source: it
// never checks whether a session is already active, that is the consumer's
// job, checked synchronously before any async work.
type Detector struct {
	mu sync.Mutex

	PressWindow     time.Duration
	PressTarget     int
	ShakeThreshold  float64
	ShakeRefractory time.Duration

	now func() time.Time

	pressCount int
	lastPress  time.Time
	lastShake  time.Time

	nextID      int
	triggerSubs map[int]func(Trigger)
	promptSubs  map[int]func(time.Time)
}

func NewDetector() *Detector {
	return &Detector{
		PressWindow:     2000 * time.Millisecond,
		PressTarget:     3,
		ShakeThreshold:  30,
		ShakeRefractory: 3000 * time.Millisecond,
		now:             time.Now,
		triggerSubs:     map[int]func(Trigger){},
		promptSubs:      map[int]func(time.Time){},
	}
}

// OnTrigger registers a trigger handler and returns its unregister func.
func (d *Detector) OnTrigger(fn func(Trigger)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.triggerSubs[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.triggerSubs, id)
	}
}

// OnShakePrompt registers a handler for the soft quick-menu prompt produced
// by the shake pattern. Shaking never triggers directly: normal handling of
// the phone would cause too many false positives.
func (d *Detector) OnShakePrompt(fn func(time.Time)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.promptSubs[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.promptSubs, id)
	}
}

// ButtonPress feeds one qualifying physical button press. Three presses with
// gaps under the window fire a trigger; a longer gap resets the counter.
func (d *Detector) ButtonPress() {
	d.mu.Lock()
	now := d.now()
	if now.Sub(d.lastPress) < d.PressWindow {
		d.pressCount++
	} else {
		d.pressCount = 1
	}
	d.lastPress = now
	fire := d.pressCount >= d.PressTarget
	if fire {
		d.pressCount = 0
	}
	d.mu.Unlock()

	if fire {
		d.fireTrigger(Trigger{Source: domain.TriggerButton, At: now})
	}
}

// Motion feeds one accelerometer sample. Magnitude above the threshold
// fires the quick-menu prompt, at most once per refractory period.
func (d *Detector) Motion(ax, ay, az float64) {
	magnitude := math.Abs(ax) + math.Abs(ay) + math.Abs(az)

	d.mu.Lock()
	now := d.now()
	fire := magnitude > d.ShakeThreshold && now.Sub(d.lastShake) > d.ShakeRefractory
	if fire {
		d.lastShake = now
	}
	d.mu.Unlock()

	if fire {
		d.firePrompt(now)
	}
}

// Trigger fires a manual trigger immediately, bypassing all debounce.
func (d *Detector) Trigger(source domain.TriggerSource) {
	d.fireTrigger(Trigger{Source: source, At: d.now()})
}

func (d *Detector) fireTrigger(t Trigger) {
	d.mu.Lock()
	subs := make([]func(Trigger), 0, len(d.triggerSubs))
	for _, fn := range d.triggerSubs {
		subs = append(subs, fn)
	}
	d.mu.Unlock()
	for _, fn := range subs {
		fn(t)
	}
}

func (d *Detector) firePrompt(at time.Time) {
	d.mu.Lock()
	subs := make([]func(time.Time), 0, len(d.promptSubs))
	for _, fn := range d.promptSubs {
		subs = append(subs, fn)
	}
	d.mu.Unlock()
	for _, fn := range subs {
		fn(at)
	}
}
