// SPDX-License-Identifier: BSD-3-Clause

// Package rig implements the per-rig power-cycle state machine: the
// hardest subsystem in this system. Rig runtime state is the tagged
// union described for languages with sum types re-expressed, per the
// design notes, as a struct of {state_tag, entered_at} with a single
// dispatch function enforcing the transition table. A
// github.com/qmuntal/stateless machine mirrors the current phase and is
// fired on every real transition; it owns nothing but the live edge
// graph, and rejects (and logs) any transition the dispatch function
// computes that isn't one of the documented edges — a runtime guard rail
// for the "visits states only via defined edges" invariant, grounded on
// the upstream framework's FSM wrapper (pkg/state/state.go) and its
// concrete per-component machines (service/statemgr/host.go).
package rig

// Phase is one of the six tagged rig-state variants.
type Phase string

const (
	PhaseOn         Phase = "on"
	PhaseOnErr      Phase = "on_err"
	PhaseBoot       Phase = "boot"
	PhasePowOff     Phase = "pow_off"
	PhasePowOffHard Phase = "pow_off_hard"
	PhaseOff        Phase = "off"
)

// triggerAdvance is the single synthetic trigger fired for every real
// phase transition; the destination is supplied dynamically via Fire's
// args and validated against allowedEdges.
const triggerAdvance = "advance"

// allowedEdges is the transition table from the rig power-cycle state
// machine, plus the two pre-transition reconciliation edges (any-state ->
// Off on a dead LED, Off -> Boot on an externally-powered LED) and the
// Boot -> PowOff edge taken when a snapshot is critical mid-boot.
var allowedEdges = map[Phase]map[Phase]bool{
	PhaseOn:         {PhaseOn: true, PhaseOnErr: true, PhasePowOff: true, PhaseOff: true},
	PhaseOnErr:      {PhaseOn: true, PhaseOnErr: true, PhasePowOff: true, PhaseOff: true},
	PhaseBoot:       {PhaseBoot: true, PhaseOn: true, PhaseOnErr: true, PhasePowOff: true, PhaseOff: true},
	PhasePowOff:     {PhasePowOff: true, PhasePowOffHard: true, PhaseOff: true},
	PhasePowOffHard: {PhasePowOffHard: true, PhaseOff: true, PhaseBoot: true},
	PhaseOff:        {PhaseOff: true, PhaseBoot: true},
}

// healthState is the classification of a successful snapshot, computed
// once per tick before any phase-specific logic runs.
type healthState int

const (
	healthHealthy healthState = iota
	healthDegraded
	healthCritical
)

func classify(temps []int, service, hwErrors bool, criticalTemp int) healthState {
	if hwErrors {
		return healthCritical
	}
	for _, t := range temps {
		if t > criticalTemp {
			return healthCritical
		}
	}
	if !service {
		return healthDegraded
	}
	return healthHealthy
}
