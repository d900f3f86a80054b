// SPDX-License-Identifier: BSD-3-Clause

package rig

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ktsol/pirig/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeLED struct {
	value int
	err   error
}

func (f *fakeLED) Read() (int, error) { return f.value, f.err }

type fakePresser struct {
	shortCount int
	longCount  int
	shortErr   error
	longErr    error

	// onLongPress simulates a real PSU cutting power mid-press: tests use
	// it to drop the fake LED the moment a long press would have taken
	// effect, rather than mutating it out of band.
	onLongPress func()
}

func (f *fakePresser) ShortClick(ctx context.Context) error {
	f.shortCount++
	return f.shortErr
}

func (f *fakePresser) LongPress(ctx context.Context) error {
	f.longCount++
	if f.onLongPress != nil {
		f.onLongPress()
	}
	return f.longErr
}

type fakeClient struct {
	snap snapshot.Snapshot
	err  error
}

func (f *fakeClient) Fetch(ctx context.Context) (snapshot.Snapshot, error) { return f.snap, f.err }

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestController(led *fakeLED, press *fakePresser, client *fakeClient) *Controller {
	return New("rig1", "10.0.0.1:9100", led, press, client, DefaultConfig(), discardLogger(), base)
}

// setState forces a Controller into phase as of since, rebuilding its edge
// machine so the two stay consistent. Mutating c.phase directly would
// leave the stateless machine's own notion of "current state" pointing at
// whatever New left it in, corrupting edge validation on the next
// transition.
func setState(c *Controller, phase Phase, since time.Time) {
	c.phase = phase
	c.since = since
	c.sm = newMachine(phase)
}

// S1 — cold start, healthy rig.
func TestController_S1_ColdStartHealthyBoot(t *testing.T) {
	led := &fakeLED{value: 1}
	press := &fakePresser{}
	client := &fakeClient{err: assert.AnError}
	c := newTestController(led, press, client)
	require.Equal(t, PhaseOff, c.Phase())

	c.Tick(context.Background(), base)
	require.Equal(t, PhaseBoot, c.Phase())
	require.Equal(t, base, c.Since())

	later := base.Add(301 * time.Second)
	client.snap = snapshot.Snapshot{Hostname: "r1", Temp: []int{70}, Service: true}
	client.err = nil
	c.Tick(context.Background(), later)
	require.Equal(t, PhaseOn, c.Phase())
	require.Equal(t, "r1", c.Hostname())
}

// S2 — overheat.
func TestController_S2_Overheat(t *testing.T) {
	led := &fakeLED{value: 1}
	press := &fakePresser{}
	client := &fakeClient{snap: snapshot.Snapshot{Temp: []int{90}, Service: true}}
	c := newTestController(led, press, client)
	setState(c, PhaseOn, base)

	now := base.Add(5 * time.Second)
	c.Tick(context.Background(), now)

	assert.Equal(t, PhasePowOff, c.Phase())
	assert.Equal(t, now, c.Since())
	assert.Equal(t, 1, press.shortCount)
}

// S3 — stuck off.
func TestController_S3_StuckOff(t *testing.T) {
	led := &fakeLED{value: 1}
	press := &fakePresser{}
	client := &fakeClient{}
	c := newTestController(led, press, client)
	setState(c, PhasePowOff, base)

	t121 := base.Add(121 * time.Second)
	c.Tick(context.Background(), t121)
	require.Equal(t, PhasePowOffHard, c.Phase())
	require.Equal(t, t121, c.Since())

	t362 := base.Add(362 * time.Second)
	c.Tick(context.Background(), t362)
	require.Equal(t, PhaseBoot, c.Phase())
	require.Equal(t, t362, c.Since())
	assert.Equal(t, 1, press.longCount)
	assert.Equal(t, 1, press.shortCount)
}

// S3b — PowOffHard succeeds within budget: LED drops low right after the
// press, so the controller reports Off without waiting out the full
// recovery budget.
func TestController_PowOffHard_SucceedsWithinBudget(t *testing.T) {
	led := &fakeLED{value: 1}
	press := &fakePresser{}
	press.onLongPress = func() { led.value = 0 }
	client := &fakeClient{}
	c := newTestController(led, press, client)
	setState(c, PhasePowOffHard, base)

	now := base.Add(5 * time.Second)
	c.Tick(context.Background(), now)

	assert.Equal(t, PhaseOff, c.Phase())
	assert.Equal(t, now, c.Since())
	assert.Equal(t, 1, press.longCount)
}

// S4 — transient service flap: no click is issued because the snapshot
// resolves before ERR_RESOLVE_WAIT elapses.
func TestController_S4_TransientServiceFlap(t *testing.T) {
	led := &fakeLED{value: 1}
	press := &fakePresser{}
	client := &fakeClient{snap: snapshot.Snapshot{Temp: []int{60}, Service: false}}
	c := newTestController(led, press, client)
	setState(c, PhaseOn, base)

	c.Tick(context.Background(), base)
	require.Equal(t, PhaseOnErr, c.Phase())

	client.snap = snapshot.Snapshot{Temp: []int{60}, Service: true}
	c.Tick(context.Background(), base.Add(20*time.Second))

	assert.Equal(t, PhaseOn, c.Phase())
	assert.Equal(t, 0, press.shortCount)
}

// A reachable agent reporting service=false parks in OnErr indefinitely:
// only an unreachable agent (snapshot error) is worth a hard power-cycle,
// since the miner process stopping on its own is not a hardware fault.
func TestController_OnErr_ReachableButDegradedNeverEscalates(t *testing.T) {
	led := &fakeLED{value: 1}
	press := &fakePresser{}
	client := &fakeClient{snap: snapshot.Snapshot{Temp: []int{60}, Service: false}}
	c := newTestController(led, press, client)
	setState(c, PhaseOnErr, base)

	c.Tick(context.Background(), base.Add(time.Hour))

	assert.Equal(t, PhaseOnErr, c.Phase())
	assert.Equal(t, 0, press.shortCount)
}

// An unreachable agent (snapshot error) still escalates OnErr to PowOff
// once ERR_RESOLVE_WAIT has elapsed.
func TestController_OnErr_UnreachableAgentEscalatesAfterWait(t *testing.T) {
	led := &fakeLED{value: 1}
	press := &fakePresser{}
	client := &fakeClient{err: assert.AnError}
	c := newTestController(led, press, client)
	setState(c, PhaseOnErr, base)

	now := base.Add(31 * time.Second)
	c.Tick(context.Background(), now)

	assert.Equal(t, PhasePowOff, c.Phase())
	assert.Equal(t, 1, press.shortCount)
}

// Invariant 1: the edge-validating state machine rejects any transition
// not present in the documented table, leaving the phase untouched.
func TestController_Invariant1_RejectsIllegalEdge(t *testing.T) {
	led := &fakeLED{value: 1}
	c := newTestController(led, &fakePresser{}, &fakeClient{})
	setState(c, PhaseOn, base)

	c.transition(PhasePowOffHard, base.Add(time.Second))

	assert.Equal(t, PhaseOn, c.Phase())
	assert.Equal(t, base, c.Since())
}

// Invariant 3: hw_errors forces an immediate transition to PowOff from
// each of On, OnErr and Boot.
func TestController_Invariant3_HWErrorsForcesPowOff(t *testing.T) {
	cases := []struct {
		name  string
		phase Phase
	}{
		{"from On", PhaseOn},
		{"from OnErr", PhaseOnErr},
		{"from Boot", PhaseBoot},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			led := &fakeLED{value: 1}
			press := &fakePresser{}
			client := &fakeClient{snap: snapshot.Snapshot{Temp: []int{60}, Service: true, HWErrors: true}}
			c := newTestController(led, press, client)
			setState(c, tc.phase, base)

			c.Tick(context.Background(), base.Add(time.Second))

			assert.Equal(t, PhasePowOff, c.Phase())
			assert.Equal(t, 1, press.shortCount)
		})
	}
}

// Invariant 5: the placeholder URI is replaced by the learned hostname on
// the first successful snapshot and updated on any subsequent change.
func TestController_Invariant5_HostnameLearnedThenUpdated(t *testing.T) {
	led := &fakeLED{value: 1}
	press := &fakePresser{}
	client := &fakeClient{snap: snapshot.Snapshot{Hostname: "r1", Temp: []int{60}, Service: true}}
	c := newTestController(led, press, client)
	setState(c, PhaseOn, base)
	require.Equal(t, "10.0.0.1:9100", c.Hostname())

	c.Tick(context.Background(), base)
	assert.Equal(t, "r1", c.Hostname())

	client.snap = snapshot.Snapshot{Hostname: "r1-renamed", Temp: []int{60}, Service: true}
	c.Tick(context.Background(), base.Add(time.Second))
	assert.Equal(t, "r1-renamed", c.Hostname())
}

// A dead LED reconciles any non-Off phase straight to Off, regardless of
// agent health, and a re-energized LED reconciles Off straight to Boot.
func TestController_PreReconciliation_DeadAndRevivedLED(t *testing.T) {
	led := &fakeLED{value: 1}
	press := &fakePresser{}
	client := &fakeClient{snap: snapshot.Snapshot{Temp: []int{60}, Service: true}}
	c := newTestController(led, press, client)
	setState(c, PhaseOn, base)

	led.value = 0
	c.Tick(context.Background(), base.Add(time.Second))
	require.Equal(t, PhaseOff, c.Phase())

	led.value = 1
	c.Tick(context.Background(), base.Add(2*time.Second))
	assert.Equal(t, PhaseBoot, c.Phase())
}

// Suspended controllers keep polling (so vents still see temperatures) but
// perform no GPIO reconciliation or phase transition.
func TestController_Suspended_SkipsReconciliation(t *testing.T) {
	led := &fakeLED{value: 0}
	press := &fakePresser{}
	client := &fakeClient{snap: snapshot.Snapshot{Temp: []int{99}, Service: true}}
	c := newTestController(led, press, client)
	setState(c, PhaseOn, base)
	c.SetSuspended(true)

	result := c.Tick(context.Background(), base.Add(time.Second))

	assert.Equal(t, PhaseOn, c.Phase())
	assert.Equal(t, []int{99}, result.Temp)
	assert.Equal(t, 0, press.shortCount)
}

// A failed LED read holds the current phase rather than reconciling
// blindly, and still returns the polled snapshot upward.
func TestController_LEDReadFailure_HoldsPhase(t *testing.T) {
	led := &fakeLED{err: assert.AnError}
	press := &fakePresser{}
	client := &fakeClient{snap: snapshot.Snapshot{Temp: []int{60}, Service: true}}
	c := newTestController(led, press, client)
	setState(c, PhaseOn, base)

	c.Tick(context.Background(), base.Add(time.Second))

	assert.Equal(t, PhaseOn, c.Phase())
}
