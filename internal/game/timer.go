package game

import (
	"time"

	"github.com/boardwalk-games/boardwalk/engine"
)

const (
	// DefaultTurnDuration is the per-turn clock.
	DefaultTurnDuration = 60 * time.Second
	// DefaultExtensionDuration is added by the one-shot extension.
	DefaultExtensionDuration = 30 * time.Second
)

// The turn clock is epoch-guarded: every arm/stop bumps turnEpoch, and a
// fired AfterFunc that observes a stale epoch returns without touching
// state. That closes the race where a timer fires while the action that
// cancelled it is still holding the lock.

// armTurnTimer starts (or restarts) the turn clock with d on it and
// refreshes the countdown view in the state document. Assumes lock held.
func (r *Room) armTurnTimer(d time.Duration) {
	r.stopTurnTimer()
	r.turnEpoch++
	epoch := r.turnEpoch
	now := r.now()
	r.turnDeadline = now.Add(d)
	r.State.TurnStartTime = now
	r.State.TurnTimeLimit = d
	r.State.TurnTimerActive = true
	r.turnTimer = time.AfterFunc(d, func() { r.onTurnTimeout(epoch) })
}

// stopTurnTimer halts the turn clock without consuming the pause stack.
// Assumes lock held.
func (r *Room) stopTurnTimer() {
	r.turnEpoch++
	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
	r.State.TurnTimerActive = false
}

// pauseTurnTimer freezes the turn clock, pushing the unused remainder so
// the matching resume restores exactly what was left. Assumes lock held.
func (r *Room) pauseTurnTimer() {
	if !r.State.TurnTimerActive {
		return
	}
	remaining := r.turnDeadline.Sub(r.now())
	if remaining < 0 {
		remaining = 0
	}
	r.pausedRemaining = append(r.pausedRemaining, remaining)
	r.stopTurnTimer()
}

// resumeTurnTimer restarts the clock from the pause stack; with no pause
// on record the current player gets a fresh full turn. Assumes lock held.
func (r *Room) resumeTurnTimer() {
	d := r.TurnDuration
	if n := len(r.pausedRemaining); n > 0 {
		d = r.pausedRemaining[n-1]
		r.pausedRemaining = r.pausedRemaining[:n-1]
	}
	r.armTurnTimer(d)
}

// onTurnTimeout fires when the turn clock expires: the current player's
// turn is force-ended with any open prompts and pending trade discarded.
func (r *Room) onTurnTimeout(epoch int) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed || epoch != r.turnEpoch || r.State.Phase != engine.PhasePlaying {
		return
	}
	timedOut := ""
	if cp := r.State.CurrentPlayer(); cp != nil {
		timedOut = cp.SessionID
	}
	r.log.WithField("player", timedOut).Info("turn timed out")
	r.logAction(timedOut, "turn_timeout", nil)

	pre := r.capture()
	r.State.ForceEndTurn()
	r.fireEvent(GameEvent{
		Type:    EventTurnTimeout,
		Payload: map[string]interface{}{"sessionId": timedOut},
	})
	r.postMutation(pre)
}

// armBankruptcyTimer schedules the forced-bankruptcy deadline for the
// active debt negotiation. Assumes lock held.
func (r *Room) armBankruptcyTimer(deadline time.Time) {
	r.stopBankruptcyTimer()
	r.bankruptcyEpoch++
	epoch := r.bankruptcyEpoch
	d := deadline.Sub(r.now())
	if d < 0 {
		d = 0
	}
	r.bankruptcyTimer = time.AfterFunc(d, func() { r.onBankruptcyDeadline(epoch) })
}

// stopBankruptcyTimer cancels the pending deadline, if any. Assumes lock
// held.
func (r *Room) stopBankruptcyTimer() {
	r.bankruptcyEpoch++
	if r.bankruptcyTimer != nil {
		r.bankruptcyTimer.Stop()
		r.bankruptcyTimer = nil
	}
}

// onBankruptcyDeadline fires when the debtor ran out the negotiation
// window without settling: the engine declares them bankrupt.
func (r *Room) onBankruptcyDeadline(epoch int) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed || epoch != r.bankruptcyEpoch {
		return
	}
	debtor := r.State.Bankruptcy.DebtorSessionID
	pre := r.capture()
	if !r.State.ResolveBankruptcyDeadline(r.now()) {
		return
	}
	r.log.WithField("player", debtor).Info("bankruptcy deadline expired")
	r.logAction(debtor, "bankruptcy_deadline", nil)
	r.postMutation(pre)
}

// syncTimers reconciles the clocks with the state transition that just
// happened: negotiations pause the turn clock, their resolution resumes
// it, and a change of current player voids any pause context. Assumes
// lock held.
func (r *Room) syncTimers(pre preState) {
	if r.State.Phase != engine.PhasePlaying {
		if r.State.Phase == engine.PhaseLobby && pre.phase != engine.PhaseLobby {
			r.stopTurnTimer()
			r.stopBankruptcyTimer()
			r.pausedRemaining = nil
		}
		return
	}

	neg := r.State.ActiveNegotiation()
	curID := ""
	if cp := r.State.CurrentPlayer(); cp != nil {
		curID = cp.SessionID
	}

	// Match just started.
	if pre.phase == engine.PhaseLobby {
		r.armTurnTimer(r.TurnDuration)
		return
	}

	// Turn changed hands: the old player's pause context is void. If a
	// negotiation outlived the turn change (an auction surviving an
	// elimination), the clock stays stopped and the eventual resume falls
	// back to a fresh full turn.
	if curID != pre.currentID {
		r.stopTurnTimer()
		r.pausedRemaining = nil
		if neg != engine.NegotiationBankruptcy {
			r.stopBankruptcyTimer()
		}
		if neg == engine.NegotiationNone {
			r.armTurnTimer(r.TurnDuration)
		}
		return
	}

	switch {
	case pre.neg == engine.NegotiationNone && neg != engine.NegotiationNone:
		r.pauseTurnTimer()
		if neg == engine.NegotiationBankruptcy {
			r.armBankruptcyTimer(r.State.Bankruptcy.Deadline)
		}
	case pre.neg != engine.NegotiationNone && neg == engine.NegotiationNone:
		r.stopBankruptcyTimer()
		r.resumeTurnTimer()
	}
}
