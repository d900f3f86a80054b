// SPDX-License-Identifier: BSD-3-Clause

package rig

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ktsol/pirig/internal/snapshot"
	"github.com/qmuntal/stateless"
)

// LEDReader reads the power-LED sense line. *gpioline.Line (opened with
// gpioline.Input) satisfies this; tests substitute an in-memory fake.
type LEDReader interface {
	Read() (int, error)
}

// RigCheckResult is echoed upward from every Tick so the supervisor can
// feed this rig's GPU temperatures to vents and log the outcome, per
// spec.md §4.1's "optionally a RigCheckResult echoed upward" output.
type RigCheckResult struct {
	RigID    string
	Hostname string
	Temp     []int
	Phase    Phase
	Err      error
}

// Controller owns one rig's power-LED and switch GPIO lines and its
// power-cycle state machine. It exclusively owns both lines for its
// lifetime (spec.md §3 Ownership); no other controller may touch them.
type Controller struct {
	id  string
	uri string

	hostname string

	led   LEDReader
	press ButtonPresser
	agent Client

	cfg    Config
	logger *slog.Logger

	phase Phase
	since time.Time
	sm    *stateless.StateMachine

	suspended bool
}

// New constructs a Controller for the rig identified by uri (the agent's
// health-endpoint address, also used as the hostname placeholder until
// the first successful snapshot). The rig starts in Off(now-POWER_OFF),
// the documented safer choice that forces explicit LED reconciliation on
// the first tick rather than assuming the rig is already on.
func New(id, uri string, led LEDReader, press ButtonPresser, agent Client, cfg Config, logger *slog.Logger, now time.Time) *Controller {
	c := &Controller{
		id:       id,
		uri:      uri,
		hostname: uri,
		led:      led,
		press:    press,
		agent:    agent,
		cfg:      cfg,
		logger:   logger,
		phase:    PhaseOff,
		since:    now.Add(-cfg.PowerOff),
	}
	c.sm = newMachine(c.phase)
	return c
}

// newMachine builds a stateless.StateMachine mirroring allowedEdges. It
// is fired on every real phase change and rejects any destination not
// present in the edge table, enforcing invariant 1 at runtime.
func newMachine(initial Phase) *stateless.StateMachine {
	sm := stateless.NewStateMachine(initial)
	for from := range allowedEdges {
		from := from
		sm.Configure(from).PermitDynamic(triggerAdvance, func(_ context.Context, args ...any) (any, error) {
			next, _ := args[0].(Phase)
			if !allowedEdges[from][next] {
				return nil, fmt.Errorf("rig: illegal transition %s -> %s", from, next)
			}
			return next, nil
		})
	}
	return sm
}

// Phase returns the controller's current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Since returns the timestamp the current phase was entered.
func (c *Controller) Since() time.Time { return c.since }

// Hostname returns the learned hostname, or the placeholder URI if no
// snapshot has yet succeeded.
func (c *Controller) Hostname() string { return c.hostname }

// SetSuspended toggles maintenance mode: while suspended, Tick still
// polls the agent (so vents keep seeing GPU temperatures) but performs no
// GPIO reconciliation or state transition. There is no RPC/CLI surface
// for this; it exists for embedding programs and tests.
func (c *Controller) SetSuspended(suspended bool) { c.suspended = suspended }

// Tick evaluates one iteration of the power-cycle state machine.
func (c *Controller) Tick(ctx context.Context, now time.Time) RigCheckResult {
	snap, pollErr := c.agent.Fetch(ctx)

	result := RigCheckResult{RigID: c.id, Phase: c.phase}
	if pollErr != nil {
		result.Err = pollErr
	} else {
		c.hostname = snap.Hostname
		result.Temp = snap.Temp
	}
	result.Hostname = c.hostname

	if c.suspended {
		return result
	}

	ledHigh, ledOK := c.readLED()

	if ledOK {
		if c.phase == PhaseOff && ledHigh {
			c.transition(PhaseBoot, now)
			return result
		}
		if c.phase != PhaseOff && !ledHigh {
			c.transition(PhaseOff, now)
			return result
		}
	}

	switch c.phase {
	case PhaseOn:
		c.stepOn(ctx, now, pollErr, snap)
	case PhaseOnErr:
		c.stepOnErr(ctx, now, pollErr, snap)
	case PhaseBoot:
		c.stepBoot(ctx, now, pollErr, snap)
	case PhasePowOff:
		c.stepPowOff(now)
	case PhasePowOffHard:
		c.stepPowOffHard(ctx, now)
	case PhaseOff:
		c.stepOff(ctx, now)
	}

	return result
}

func (c *Controller) readLED() (high bool, ok bool) {
	v, err := c.led.Read()
	if err != nil {
		c.logger.Warn("rig LED read failed, holding state", "rig", c.id, "error", err)
		return false, false
	}
	return v == 1, true
}

func (c *Controller) stepOn(ctx context.Context, now time.Time, pollErr error, snap snapshot.Snapshot) {
	if pollErr != nil {
		c.transition(PhaseOnErr, now)
		return
	}
	switch classify(snap.Temp, snap.Service, snap.HWErrors, c.cfg.CriticalGPUTemp) {
	case healthHealthy:
		// stays On; timestamp does not apply to On.
	case healthDegraded:
		c.transition(PhaseOnErr, now)
	case healthCritical:
		c.clickOrLog(ctx, c.press.ShortClick)
		c.transition(PhasePowOff, now)
	}
}

func (c *Controller) stepOnErr(ctx context.Context, now time.Time, pollErr error, snap snapshot.Snapshot) {
	if pollErr == nil {
		switch classify(snap.Temp, snap.Service, snap.HWErrors, c.cfg.CriticalGPUTemp) {
		case healthHealthy:
			c.transition(PhaseOn, now)
			return
		case healthCritical:
			// Invariant: hw_errors (or overtemp) from On/OnErr/Boot must
			// go straight to PowOff, even mid-escalation.
			c.clickOrLog(ctx, c.press.ShortClick)
			c.transition(PhasePowOff, now)
			return
		case healthDegraded:
			// A reachable-but-degraded snapshot (service down, agent
			// otherwise healthy) parks in OnErr rather than escalating:
			// only an unreachable agent is worth a hard power-cycle.
			return
		}
	}

	if now.Sub(c.since) > c.cfg.ErrResolveWait {
		c.clickOrLog(ctx, c.press.ShortClick)
		c.transition(PhasePowOff, now)
	}
}

// stepBoot applies invariant 3 first: a successful snapshot already
// reporting hw_errors or an over-critical temperature escalates straight
// to PowOff even mid-boot, ahead of the table's literal BOOT_WAIT-only
// reading, since invariant 3 names Boot alongside On and OnErr.
func (c *Controller) stepBoot(ctx context.Context, now time.Time, pollErr error, snap snapshot.Snapshot) {
	if pollErr == nil && classify(snap.Temp, snap.Service, snap.HWErrors, c.cfg.CriticalGPUTemp) == healthCritical {
		c.clickOrLog(ctx, c.press.ShortClick)
		c.transition(PhasePowOff, now)
		return
	}

	if now.Sub(c.since) <= c.cfg.BootWait {
		return
	}
	if pollErr != nil {
		c.transition(PhaseOnErr, now)
		return
	}
	c.transition(PhaseOn, now)
}

func (c *Controller) stepPowOff(now time.Time) {
	if now.Sub(c.since) <= c.cfg.PowerOffWait {
		return
	}
	c.transition(PhasePowOffHard, now)
}

// stepPowOffHard performs one long-press attempt every tick it runs
// (including the tick it is entered on the following cycle), then reads
// the LED immediately afterward to decide whether the rig actually lost
// power. This folds the "LED went low within 250ms of press" check into
// a single post-press read rather than a separate polling loop, since the
// press itself already blocks for the full hold duration.
func (c *Controller) stepPowOffHard(ctx context.Context, now time.Time) {
	if err := c.press.LongPress(ctx); err != nil {
		c.logger.Warn("hard-off press failed, retrying next tick", "rig", c.id, "error", err)
		return
	}

	ledHigh, ok := c.readLED()
	if !ok {
		return
	}
	if !ledHigh {
		c.transition(PhaseOff, now)
		return
	}

	if now.Sub(c.since) > c.cfg.PowerOffHardMax {
		c.clickOrLog(ctx, c.press.ShortClick)
		c.transition(PhaseBoot, now)
	}
	// else: still high, within budget; the press above already counted
	// as this tick's retry.
}

func (c *Controller) stepOff(ctx context.Context, now time.Time) {
	if now.Sub(c.since) <= c.cfg.PowerOff {
		return
	}
	c.clickOrLog(ctx, c.press.ShortClick)
	c.transition(PhaseBoot, now)
}

func (c *Controller) clickOrLog(ctx context.Context, press func(context.Context) error) {
	if err := press(ctx); err != nil {
		c.logger.Warn("button press failed", "rig", c.id, "error", err)
	}
}

// transition fires the edge-validated state machine and updates the
// bookkept timestamp. It is a no-op if next equals the current phase, so
// the timestamp is replaced only on an actual state change, never on
// re-entry, matching the rig runtime-state invariant in spec.md §3.
func (c *Controller) transition(next Phase, now time.Time) {
	if next == c.phase {
		return
	}
	if err := c.sm.FireCtx(context.Background(), triggerAdvance, next); err != nil {
		c.logger.Error("illegal rig transition rejected", "rig", c.id, "from", c.phase, "to", next, "error", err)
		return
	}
	c.logger.Info("rig transition", "rig", c.id, "from", c.phase, "to", next)
	c.phase = next
	c.since = now
}
