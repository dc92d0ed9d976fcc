// Package lifecycle derives the test-lifecycle status of equipment from its
// next retest date.
package lifecycle

import (
	"math"
	"strings"
	"time"
)

type Status string

const (
	StatusValid    Status = "valid"
	StatusUpcoming Status = "upcoming"
	StatusExpired  Status = "expired"
	// StatusInvalid is only returned for a missing date under MissingDateInvalid.
	StatusInvalid Status = "invalid"
)

// MissingDatePolicy decides what a nil or unparseable retest date classifies as.
type MissingDatePolicy string

const (
	MissingDateInvalid MissingDatePolicy = "invalid"
	MissingDateValid   MissingDatePolicy = "valid"
)

const (
	DefaultLookaheadDays = 30
	dayDuration          = 24 * time.Hour
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
}

// Classifier holds the policy knobs. The zero value is usable: 30 day
// lookahead, missing dates reported as invalid, wall clock.
type Classifier struct {
	LookaheadDays int
	OnMissingDate MissingDatePolicy
	Now           func() time.Time
}

func NewClassifier(lookaheadDays int, onMissing MissingDatePolicy) *Classifier {
	return &Classifier{
		LookaheadDays: lookaheadDays,
		OnMissingDate: onMissing,
		Now:           time.Now,
	}
}

// Status classifies a retest date against the classifier's clock.
//
// diffDays = ceil((retest - now) / 24h); negative is expired, 0..lookahead is
// upcoming, anything further out is valid.
func (c *Classifier) Status(retest *time.Time) Status {
	if retest == nil || retest.IsZero() {
		return c.missing()
	}
	return c.StatusAt(*retest, c.now())
}

// StatusAt is Status with an explicit "now".
func (c *Classifier) StatusAt(retest, now time.Time) Status {
	diffDays := DiffDays(retest, now)
	switch {
	case diffDays < 0:
		return StatusExpired
	case diffDays <= int64(c.lookahead()):
		return StatusUpcoming
	default:
		return StatusValid
	}
}

// StatusOfString never fails: an unparseable value goes through the
// missing-date policy.
func (c *Classifier) StatusOfString(value string) Status {
	return c.Status(ParseDate(value))
}

// DiffDays returns the number of days from now until retest, rounded up.
func DiffDays(retest, now time.Time) int64 {
	return int64(math.Ceil(float64(retest.Sub(now)) / float64(dayDuration)))
}

// ParseDate accepts the date formats the UI and the database emit and
// returns nil for anything else.
func ParseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// ParsePolicy maps a configuration string to a policy, defaulting to invalid.
func ParsePolicy(value string) MissingDatePolicy {
	if MissingDatePolicy(strings.ToLower(strings.TrimSpace(value))) == MissingDateValid {
		return MissingDateValid
	}
	return MissingDateInvalid
}

func (c *Classifier) missing() Status {
	if c.OnMissingDate == MissingDateValid {
		return StatusValid
	}
	return StatusInvalid
}

func (c *Classifier) lookahead() int {
	if c.LookaheadDays <= 0 {
		return DefaultLookaheadDays
	}
	return c.LookaheadDays
}

// CurrentTime is the instant the classifier compares against.
func (c *Classifier) CurrentTime() time.Time {
	return c.now()
}

func (c *Classifier) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Color maps a status onto the UI palette.
func Color(s Status) string {
	switch s {
	case StatusValid:
		return "green"
	case StatusUpcoming:
		return "yellow"
	case StatusExpired:
		return "red"
	default:
		return "grey"
	}
}

// AllStatuses lists the states in display order.
func AllStatuses() []Status {
	return []Status{StatusValid, StatusUpcoming, StatusExpired, StatusInvalid}
}
