package effects

import (
	"fmt"
	"os/exec"
	stdruntime "runtime"
	"sync"
)

// DesktopEffects drives the sensory side of an emergency on a desktop host:
// siren through the system audio player, screen-sleep inhibition through a
// held helper process. Vibration has no desktop counterpart.
type DesktopEffects struct {
	mu sync.Mutex

	SirenFile string

	siren     *exec.Cmd
	inhibitor *exec.Cmd
}

func NewDesktopEffects(sirenFile string) *DesktopEffects {
	return &DesktopEffects{SirenFile: sirenFile}
}

// Vibrate is unsupported on desktop hardware.
func (e *DesktopEffects) Vibrate(patternMs []int) error {
	return fmt.Errorf("vibration unsupported on %s", stdruntime.GOOS)
}

// PlaySiren loops the siren sound until StopSiren.
func (e *DesktopEffects) PlaySiren() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.siren != nil {
		return nil
	}

	var cmd *exec.Cmd
	switch stdruntime.GOOS {
	case "linux":
		cmd = exec.Command("sh", "-c", fmt.Sprintf("while true; do paplay %q; done", e.SirenFile))
	case "darwin":
		cmd = exec.Command("sh", "-c", fmt.Sprintf("while true; do afplay %q; done", e.SirenFile))
	default:
		return fmt.Errorf("siren unsupported on %s", stdruntime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return err
	}
	e.siren = cmd
	return nil
}

func (e *DesktopEffects) StopSiren() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.siren != nil && e.siren.Process != nil {
		e.siren.Process.Kill()
	}
	e.siren = nil
}

// AcquireScreenLock keeps the display awake by holding an inhibitor process
// for the duration of the emergency.
func (e *DesktopEffects) AcquireScreenLock() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inhibitor != nil {
		return nil
	}

	var cmd *exec.Cmd
	switch stdruntime.GOOS {
	case "linux":
		cmd = exec.Command("systemd-inhibit", "--what=idle", "--why=emergency", "sleep", "infinity")
	case "darwin":
		cmd = exec.Command("caffeinate", "-d")
	default:
		return fmt.Errorf("screen wake lock unsupported on %s", stdruntime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return err
	}
	e.inhibitor = cmd
	return nil
}

func (e *DesktopEffects) ReleaseScreenLock() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inhibitor != nil && e.inhibitor.Process != nil {
		e.inhibitor.Process.Kill()
	}
	e.inhibitor = nil
}
