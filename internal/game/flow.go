package game

import (
	"context"
	"time"

	"github.com/scythe504/bingo-backend/internal"
	"github.com/scythe504/bingo-backend/internal/bingo"
	"github.com/scythe504/bingo-backend/internal/schedule"
)

// =============================================================================
// GAME FLOW - STATE MACHINE
// =============================================================================
//
// A room advances only in response to a drained scheduled event or an
// explicit client request; there are no in-process recurring timers, so
// any stateless worker polling the shared store can carry any room
// forward. Every event handler applies its effect as a conditional
// transition: if the expected pre-state no longer holds the event is a
// stale duplicate and is dropped silently.

// StartCountdown begins a game: valid only from Waiting.
func StartCountdown(room *internal.Room) error {
	room.Mu.Lock()
	if room.Status != internal.StatusWaiting {
		status := room.Status
		room.Mu.Unlock()
		log.Infof("[StartCountdown] room=%s rejected, status=%s", room.Id, status)
		if status == internal.StatusEnded {
			return ErrRoomClosed
		}
		return ErrAlreadyStarted
	}

	room.Status = internal.StatusCountdown
	room.CountdownRemaining = Cfg.CountdownSeconds
	room.LastActivity = time.Now()

	snapshot := internal.Message[internal.GameStateData]{
		Type: "game_state",
		Data: room.Snapshot(),
	}
	room.Mu.Unlock()

	log.Infof("[StartCountdown] room=%s countdown started at %d", room.Id, Cfg.CountdownSeconds)
	SafeBroadcastToRoom(room, snapshot)

	scheduleOrFail(room, schedule.Event{
		Kind:      schedule.KindCountdownTick,
		RoomID:    room.Id,
		Remaining: Cfg.CountdownSeconds - 1,
	}, Cfg.CountdownTick)
	return nil
}

// HandleEvent is the worker dispatch point for drained events.
func HandleEvent(ctx context.Context, ev schedule.Event) {
	room := LookupRoom(ev.RoomID)
	if room == nil {
		// Room already torn down; a late event is a no-op by design.
		metricStaleEvents.Inc()
		return
	}

	switch ev.Kind {
	case schedule.KindCountdownTick:
		applyCountdownTick(room, ev)
	case schedule.KindCallNumber:
		applyCallNumber(room, ev)
	case schedule.KindResetRoom:
		applyResetRoom(room, ev)
	default:
		log.Warnf("[HandleEvent] room=%s unknown event kind %q", ev.RoomID, ev.Kind)
	}
}

// applyCountdownTick decrements the countdown. The event carries the
// remaining value it produces, so a replay (remaining already reached)
// is a stale no-op.
func applyCountdownTick(room *internal.Room, ev schedule.Event) {
	room.Mu.Lock()
	if room.Status != internal.StatusCountdown || room.CountdownRemaining != ev.Remaining+1 {
		room.Mu.Unlock()
		metricStaleEvents.Inc()
		return
	}

	room.CountdownRemaining = ev.Remaining
	room.LastActivity = time.Now()

	tickMsg := internal.Message[internal.CountdownTickData]{
		Type: "countdown_tick",
		Data: internal.CountdownTickData{RoomID: room.Id, Remaining: ev.Remaining},
	}

	starting := ev.Remaining == 0
	if starting {
		// Commit the full permutation up front: call events then carry
		// an index into it, which is what makes their replays no-ops.
		room.DrawSequence = bingo.NewDrawSequence(bingo.UniverseSize)
		room.DrawnNumbers = room.DrawnNumbers[:0]
		room.Status = internal.StatusActive
	}
	var startedMsg internal.Message[internal.GameStateData]
	if starting {
		startedMsg = internal.Message[internal.GameStateData]{
			Type: "game_started",
			Data: room.Snapshot(),
		}
	}
	room.Mu.Unlock()

	metricEventsProcessed.WithLabelValues(string(ev.Kind)).Inc()
	SafeBroadcastToRoom(room, tickMsg)

	if starting {
		log.Infof("[applyCountdownTick] room=%s countdown complete, game active", room.Id)
		SafeBroadcastToRoom(room, startedMsg)
		scheduleOrFail(room, schedule.Event{
			Kind:   schedule.KindCallNumber,
			RoomID: room.Id,
			Index:  0,
		}, Cfg.FirstCallDelay)
		return
	}

	scheduleOrFail(room, schedule.Event{
		Kind:      schedule.KindCountdownTick,
		RoomID:    room.Id,
		Remaining: ev.Remaining - 1,
	}, Cfg.CountdownTick)
}

// applyCallNumber appends the next number of the committed sequence.
// The index check makes duplicate delivery harmless and preserves the
// strict-prefix invariant between drawn numbers and the sequence.
func applyCallNumber(room *internal.Room, ev schedule.Event) {
	room.Mu.Lock()
	if room.Status != internal.StatusActive || room.NextDrawIndex() != ev.Index || ev.Index >= len(room.DrawSequence) {
		room.Mu.Unlock()
		metricStaleEvents.Inc()
		return
	}

	number := room.DrawSequence[ev.Index]
	room.DrawnNumbers = append(room.DrawnNumbers, number)
	room.LastActivity = time.Now()

	calledMsg := internal.Message[internal.NumberCalledData]{
		Type: "number_called",
		Data: internal.NumberCalledData{
			RoomID:       room.Id,
			Number:       number,
			DrawnNumbers: append([]int(nil), room.DrawnNumbers...),
			CallIndex:    ev.Index,
		},
	}

	exhausted := room.SequenceExhausted()
	var overMsg internal.Message[internal.GameStateData]
	if exhausted {
		room.Status = internal.StatusEnded
		overMsg = internal.Message[internal.GameStateData]{
			Type: "game_over",
			Data: room.Snapshot(),
		}
	}
	room.Mu.Unlock()

	metricEventsProcessed.WithLabelValues(string(ev.Kind)).Inc()
	metricNumbersCalled.Inc()
	SafeBroadcastToRoom(room, calledMsg)

	if exhausted {
		log.Infof("[applyCallNumber] room=%s sequence exhausted, no winner", room.Id)
		SafeBroadcastToRoom(room, overMsg)
		cancelPending(room)
		return
	}

	scheduleOrFail(room, schedule.Event{
		Kind:   schedule.KindCallNumber,
		RoomID: room.Id,
		Index:  ev.Index + 1,
	}, Cfg.CallInterval)
}

// applyResetRoom is the idle sweep: evict a room nobody has touched for
// the configured timeout, otherwise re-arm for the remainder.
func applyResetRoom(room *internal.Room, ev schedule.Event) {
	room.Mu.RLock()
	idle := time.Since(room.LastActivity)
	room.Mu.RUnlock()

	if idle < Cfg.IdleTimeout {
		if err := Store.Schedule(context.Background(), schedule.Event{
			Kind:   schedule.KindResetRoom,
			RoomID: room.Id,
		}, Cfg.IdleTimeout-idle); err != nil {
			log.Warnf("[applyResetRoom] room=%s failed to re-arm idle sweep: %v", room.Id, err)
		}
		return
	}

	metricEventsProcessed.WithLabelValues(string(ev.Kind)).Inc()
	log.Infof("[applyResetRoom] room=%s idle for %v, evicting", room.Id, idle)
	forceEndRoom(room, "room closed after inactivity")
	CleanupRoom(room)
}

// forceEndRoom terminates a room with an operational failure notice.
func forceEndRoom(room *internal.Room, reason string) {
	room.Mu.Lock()
	if room.Status == internal.StatusEnded {
		room.Mu.Unlock()
		return
	}
	room.Status = internal.StatusEnded
	room.Mu.Unlock()

	errMsg := internal.Message[internal.ErrorData]{
		Type: "game_error",
		Data: internal.ErrorData{Code: "room_terminated", Message: reason},
	}
	log.Warnf("[forceEndRoom] room=%s force-ended: %s", room.Id, reason)
	SafeBroadcastToRoom(room, errMsg)
	cancelPending(room)
}

// scheduleOrFail schedules the room's next event, retrying with backoff.
// The room must never be left silently stuck: if the store stays down
// past the failure budget, the room is force-ended and observers told.
func scheduleOrFail(room *internal.Room, ev schedule.Event, delay time.Duration) {
	backoff := 100 * time.Millisecond
	for attempt := 1; attempt <= Cfg.MaxScheduleFailures; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := Store.Schedule(ctx, ev, delay)
		cancel()
		if err == nil {
			return
		}
		log.Warnf("[scheduleOrFail] room=%s kind=%s attempt %d/%d failed: %v",
			room.Id, ev.Kind, attempt, Cfg.MaxScheduleFailures, err)
		if attempt < Cfg.MaxScheduleFailures {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	forceEndRoom(room, "game terminated: event scheduling failed repeatedly")
}

func cancelPending(room *internal.Room) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Store.CancelRoom(ctx, room.Id); err != nil {
		log.Warnf("[cancelPending] room=%s: %v", room.Id, err)
	}
}
