// Package retry provides bounded retry logic for transient failures.
//
// The [Do] function retries an operation with a configurable attempt budget
// and delay. Timeouts are expressed as attempts multiplied by delay, never as
// free-standing wall-clock deadlines, so the total bound is always explicit.
// It is used for package-manager invocations and other operations that may
// fail transiently on a freshly booted host.
package retry
