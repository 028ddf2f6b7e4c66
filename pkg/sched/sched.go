// Package sched provides the single-threaded cooperative scheduler that
// stands in for paint-frame scheduling, idle-time slices and timers. All
// suspension points of the engine go through one Scheduler instance, which
// runs on a virtual clock so ordering guarantees are deterministic and
// testable: due timers run first (by due time, then enqueue order), then
// frame tasks in FIFO order, then idle tasks one per step.
package sched

import (
	"container/heap"
	"time"
)

// Task is a unit of deferred work.
type Task func()

// Cancel revokes a scheduled task. Canceling an already-run or
// already-canceled task is a no-op.
type Cancel func()

type task struct {
	run      Task
	due      time.Duration // timers only
	seq      int
	canceled bool
}

// timerHeap orders timer tasks by due time, then enqueue order.
type timerHeap []*task

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(*task)) }
func (h *timerHeap) Pop() any {
	old := *h
	last := old[len(old)-1]
	*h = old[:len(old)-1]
	return last
}

// Scheduler is a deterministic cooperative task queue. It is not safe for
// concurrent use; the engine's model is single-threaded by design.
type Scheduler struct {
	now    time.Duration
	seq    int
	frame  []*task
	idle   []*task
	timers timerHeap
}

// New creates an empty scheduler with the virtual clock at zero.
func New() *Scheduler {
	return &Scheduler{}
}

// Now returns the current virtual time.
func (scheduler *Scheduler) Now() time.Duration {
	return scheduler.now
}

func (scheduler *Scheduler) nextSeq() int {
	scheduler.seq++
	return scheduler.seq
}

// OnFrame schedules work for the next paint frame. Frame tasks run before
// idle tasks and in the order they were scheduled.
func (scheduler *Scheduler) OnFrame(run Task) Cancel {
	entry := &task{run: run, seq: scheduler.nextSeq()}
	scheduler.frame = append(scheduler.frame, entry)
	return func() { entry.canceled = true }
}

// OnIdle schedules work for an idle time slice. Idle tasks run only when
// no frame task or due timer is pending, one task per step.
func (scheduler *Scheduler) OnIdle(run Task) Cancel {
	entry := &task{run: run, seq: scheduler.nextSeq()}
	scheduler.idle = append(scheduler.idle, entry)
	return func() { entry.canceled = true }
}

// After schedules work to run once the virtual clock reaches now+delay.
func (scheduler *Scheduler) After(delay time.Duration, run Task) Cancel {
	entry := &task{run: run, due: scheduler.now + delay, seq: scheduler.nextSeq()}
	heap.Push(&scheduler.timers, entry)
	return func() { entry.canceled = true }
}

// Pending reports whether any task (including canceled but not yet
// discarded ones) remains queued.
func (scheduler *Scheduler) Pending() bool {
	scheduler.compact()
	return len(scheduler.frame) > 0 || len(scheduler.idle) > 0 || len(scheduler.timers) > 0
}

// compact discards canceled tasks from the queue heads so Pending and Step
// see only runnable work.
func (scheduler *Scheduler) compact() {
	for len(scheduler.frame) > 0 && scheduler.frame[0].canceled {
		scheduler.frame = scheduler.frame[1:]
	}
	for len(scheduler.idle) > 0 && scheduler.idle[0].canceled {
		scheduler.idle = scheduler.idle[1:]
	}
	for len(scheduler.timers) > 0 && scheduler.timers[0].canceled {
		heap.Pop(&scheduler.timers)
	}
}

// Step runs the single next task and reports whether one ran. When only
// timers remain, the virtual clock advances to the earliest due time.
func (scheduler *Scheduler) Step() bool {
	scheduler.compact()

	if len(scheduler.timers) > 0 && scheduler.timers[0].due <= scheduler.now {
		next := heap.Pop(&scheduler.timers).(*task)
		next.run()
		return true
	}
	if len(scheduler.frame) > 0 {
		next := scheduler.frame[0]
		scheduler.frame = scheduler.frame[1:]
		next.run()
		return true
	}
	if len(scheduler.idle) > 0 {
		next := scheduler.idle[0]
		scheduler.idle = scheduler.idle[1:]
		next.run()
		return true
	}
	if len(scheduler.timers) > 0 {
		next := heap.Pop(&scheduler.timers).(*task)
		scheduler.now = next.due
		next.run()
		return true
	}
	return false
}

// Run drains the queue, including tasks scheduled by tasks it runs.
func (scheduler *Scheduler) Run() {
	for scheduler.Step() {
	}
}

// Advance moves the virtual clock forward and runs everything that becomes
// due, along with any frame/idle work scheduled in the process.
func (scheduler *Scheduler) Advance(delta time.Duration) {
	scheduler.now += delta
	for {
		scheduler.compact()
		ran := false
		if len(scheduler.timers) > 0 && scheduler.timers[0].due <= scheduler.now {
			ran = scheduler.Step()
		} else if len(scheduler.frame) > 0 || len(scheduler.idle) > 0 {
			ran = scheduler.Step()
		}
		if !ran {
			return
		}
	}
}
