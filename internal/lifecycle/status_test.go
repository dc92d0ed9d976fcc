package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClassifier(now time.Time, policy MissingDatePolicy) *Classifier {
	c := NewClassifier(DefaultLookaheadDays, policy)
	c.Now = func() time.Time { return now }
	return c
}

func datePtr(t time.Time) *time.Time { return &t }

func TestClassifier_Status(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	c := fixedClassifier(now, MissingDateInvalid)

	tests := []struct {
		name   string
		retest time.Time
		want   Status
	}{
		{"one year out", now.AddDate(1, 0, 0), StatusValid},
		{"31 days out", now.AddDate(0, 0, 31), StatusValid},
		{"30 days out", now.AddDate(0, 0, 30), StatusUpcoming},
		{"15 days out", now.AddDate(0, 0, 15), StatusUpcoming},
		{"later today", now.Add(2 * time.Hour), StatusUpcoming},
		{"exactly now", now, StatusUpcoming},
		{"yesterday", now.AddDate(0, 0, -1), StatusExpired},
		{"a year ago", now.AddDate(-1, 0, 0), StatusExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Status(datePtr(tt.retest)))
		})
	}
}

func TestClassifier_BoundarySweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := fixedClassifier(now, MissingDateInvalid)

	for d := -400; d <= 400; d++ {
		got := c.Status(datePtr(now.AddDate(0, 0, d)))
		switch {
		case d < 0:
			require.Equal(t, StatusExpired, got, "day %d", d)
		case d <= 30:
			require.Equal(t, StatusUpcoming, got, "day %d", d)
		default:
			require.Equal(t, StatusValid, got, "day %d", d)
		}
	}
}

func TestClassifier_Idempotent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := fixedClassifier(now, MissingDateInvalid)
	retest := datePtr(now.AddDate(0, 0, 12))

	assert.Equal(t, c.Status(retest), c.Status(retest))
}

func TestClassifier_MissingDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("invalid policy", func(t *testing.T) {
		c := fixedClassifier(now, MissingDateInvalid)
		assert.Equal(t, StatusInvalid, c.Status(nil))
		assert.Equal(t, StatusInvalid, c.StatusOfString("not a date"))
		assert.Equal(t, StatusInvalid, c.Status(&time.Time{}))
	})

	t.Run("valid policy", func(t *testing.T) {
		c := fixedClassifier(now, MissingDateValid)
		assert.Equal(t, StatusValid, c.Status(nil))
		assert.Equal(t, StatusValid, c.StatusOfString(""))
	})

	t.Run("zero value classifier", func(t *testing.T) {
		var c Classifier
		assert.Equal(t, StatusInvalid, c.Status(nil))
	})
}

func TestClassifier_EndToEndScenarios(t *testing.T) {
	now := time.Now()
	c := NewClassifier(DefaultLookaheadDays, MissingDateInvalid)
	c.Now = func() time.Time { return now }

	assert.Equal(t, StatusUpcoming, c.Status(datePtr(now.AddDate(0, 0, 15))))
	assert.Equal(t, StatusExpired, c.Status(datePtr(now.AddDate(0, 0, -1))))
}

func TestClassifier_CustomLookahead(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClassifier(60, MissingDateInvalid)
	c.Now = func() time.Time { return now }

	assert.Equal(t, StatusUpcoming, c.Status(datePtr(now.AddDate(0, 0, 45))))
	assert.Equal(t, StatusValid, c.Status(datePtr(now.AddDate(0, 0, 61))))
}

func TestParseDate(t *testing.T) {
	assert.NotNil(t, ParseDate("2025-12-31"))
	assert.NotNil(t, ParseDate("2025-12-31T10:00:00Z"))
	assert.NotNil(t, ParseDate("31/12/2025"))
	assert.Nil(t, ParseDate("yesterday"))
	assert.Nil(t, ParseDate("   "))

	got := ParseDate("2025-12-31")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), *got)
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, MissingDateValid, ParsePolicy("VALID"))
	assert.Equal(t, MissingDateInvalid, ParsePolicy("invalid"))
	assert.Equal(t, MissingDateInvalid, ParsePolicy("whatever"))
}

func TestColor(t *testing.T) {
	assert.Equal(t, "green", Color(StatusValid))
	assert.Equal(t, "yellow", Color(StatusUpcoming))
	assert.Equal(t, "red", Color(StatusExpired))
	assert.Equal(t, "grey", Color(StatusInvalid))
}
