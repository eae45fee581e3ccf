package chart

import "time"

// Scheduler runs follow-up tasks after a delay.
type Scheduler interface {
	Schedule(delay time.Duration, task func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(delay time.Duration, task func())

// Schedule implements Scheduler.
func (f SchedulerFunc) Schedule(delay time.Duration, task func()) {
	f(delay, task)
}

// TimerScheduler runs tasks on their own goroutine via time.AfterFunc.
type TimerScheduler struct{}

// Schedule implements Scheduler.
func (TimerScheduler) Schedule(delay time.Duration, task func()) {
	if delay <= 0 {
		go task()
		return
	}
	time.AfterFunc(delay, task)
}

// InlineScheduler runs tasks synchronously and ignores the delay.
type InlineScheduler struct{}

// Schedule implements Scheduler.
func (InlineScheduler) Schedule(_ time.Duration, task func()) {
	task()
}
