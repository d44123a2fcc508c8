//go:build linux

package main

import "golang.org/x/sys/unix"

// rtPriority is the SCHED_FIFO priority requested for the process.
// High enough to preempt normal tasks, below kernel threads.
const rtPriority = 50

// raisePriority moves the process onto the real-time FIFO scheduler so
// the polling loop is preempted as little as possible. Requires
// CAP_SYS_NICE; failure is reported, not fatal.
func raisePriority() error {
	attr := unix.SchedAttr{
		Policy:   unix.SCHED_FIFO,
		Priority: rtPriority,
	}
	return unix.SchedSetAttr(0, &attr, 0)
}
