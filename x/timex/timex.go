package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// Ms converts a millisecond count to a Duration.
func Ms(ms uint32) time.Duration { return time.Duration(ms) * time.Millisecond }

// Deadline is a one-shot timeout that is polled rather than waited on.
// The zero value is disarmed.
type Deadline struct {
	at    time.Time
	armed bool
}

// Arm sets the deadline to now+after, replacing any previous arming.
func (d *Deadline) Arm(now time.Time, after time.Duration) {
	d.at = now.Add(after)
	d.armed = true
}

func (d *Deadline) Disarm() { d.armed = false }

func (d *Deadline) Armed() bool { return d.armed }

// At reports the armed instant; zero when disarmed.
func (d *Deadline) At() time.Time {
	if !d.armed {
		return time.Time{}
	}
	return d.at
}

// Expired reports armed && now >= deadline.
func (d *Deadline) Expired(now time.Time) bool {
	return d.armed && !now.Before(d.at)
}

// Remaining is clamped at zero; disarmed deadlines report zero.
func (d *Deadline) Remaining(now time.Time) time.Duration {
	if !d.armed {
		return 0
	}
	if r := d.at.Sub(now); r > 0 {
		return r
	}
	return 0
}
