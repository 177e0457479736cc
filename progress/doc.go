// Package progress converts coarse remote-job lifecycle events into a
// bounded, monotonically increasing percentage and a display message for a
// workflow host's progress bar.
//
// The estimator is a pure function of its configuration plus wall-clock
// time: it performs no I/O and has no error conditions. One Estimator is
// owned by exactly one job invocation and must not be shared.
package progress
