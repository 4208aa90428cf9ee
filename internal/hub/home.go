package hub

import "sync"

const (
	minTempF = 50
	maxTempF = 90
)

// HomeState is the simulated household device state shown alongside
// playback.
type HomeState struct {
	Lighting bool `json:"lighting"`
	Dimmer   int  `json:"dimmer"`
	TempF    int  `json:"temp_f"`
}

// Home owns the simulated lighting and temperature controls. All methods
// are safe for concurrent use.
type Home struct {
	mu    sync.Mutex
	state HomeState
}

// NewHome builds the simulated devices with lights off, the dimmer at 75%
// and the thermostat at 70°F.
func NewHome() *Home {
	return &Home{state: HomeState{Dimmer: 75, TempF: 70}}
}

// State returns a snapshot of the device state.
func (h *Home) State() HomeState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// ToggleLighting flips the lights and returns the new setting.
func (h *Home) ToggleLighting() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Lighting = !h.state.Lighting
	return h.state.Lighting
}

// SetDimmer sets the dimmer level, clamped to [0, 100], and returns the
// applied value.
func (h *Home) SetDimmer(v int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.setDimmerLocked(v)
}

// AdjustDimmer moves the dimmer by delta with the same clamping as
// [Home.SetDimmer].
func (h *Home) AdjustDimmer(delta int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.setDimmerLocked(h.state.Dimmer + delta)
}

func (h *Home) setDimmerLocked(v int) int {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	h.state.Dimmer = v
	return v
}

// IncreaseTemp raises the thermostat one degree, capped at 90°F.
func (h *Home) IncreaseTemp() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state.TempF < maxTempF {
		h.state.TempF++
	}
	return h.state.TempF
}

// DecreaseTemp lowers the thermostat one degree, floored at 50°F.
func (h *Home) DecreaseTemp() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state.TempF > minTempF {
		h.state.TempF--
	}
	return h.state.TempF
}
