// Package records assembles inspection records ready for persistence: it
// validates the input, fixes the retest date, snapshots the lifecycle status
// and obtains a certificate number.
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"equiptrak/internal/entities"
	"equiptrak/internal/lifecycle"
	apperrors "equiptrak/pkg/errors"
)

// RetestIntervalDays is fixed for every record type. LOLER records may carry
// their own retest date instead.
const RetestIntervalDays = 364

// CertificateNumberGenerator hands out globally unique certificate numbers.
// A value is never reused, even when the record it was issued for is never
// stored.
type CertificateNumberGenerator interface {
	Next(ctx context.Context) (string, error)
}

type LineItem struct {
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
}

func (i *LineItem) empty() bool {
	return i == nil || (strings.TrimSpace(i.Name) == "" && strings.TrimSpace(i.SerialNumber) == "")
}

type Input struct {
	RecordType entities.RecordType
	CompanyID  uint64
	EngineerID uint64
	// TestDate defaults to today when nil.
	TestDate *time.Time
	// RetestDate is only accepted for LOLER records.
	RetestDate   *time.Time
	Notes        *string
	Items        []*LineItem
	Measurements json.RawMessage
}

// Draft is a fully populated record that has not been stored yet.
type Draft struct {
	RecordType        entities.RecordType
	CompanyID         uint64
	EngineerID        uint64
	TestDate          time.Time
	RetestDate        time.Time
	Status            lifecycle.Status
	CertificateNumber string
	Notes             *string
	Items             []LineItem
	Measurements      json.RawMessage
}

type Builder struct {
	classifier *lifecycle.Classifier
	generator  CertificateNumberGenerator
	validate   *validator.Validate
	now        func() time.Time
}

type Option func(*Builder)

// WithClock replaces the wall clock used for the default test date. The
// classifier keeps its own clock.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

func WithValidator(v *validator.Validate) Option {
	return func(b *Builder) { b.validate = v }
}

func NewBuilder(classifier *lifecycle.Classifier, generator CertificateNumberGenerator, opts ...Option) *Builder {
	b := &Builder{
		classifier: classifier,
		generator:  generator,
		validate:   validator.New(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build validates in, then requests exactly one certificate number. Inputs
// that fail validation never consume a number.
func (b *Builder) Build(ctx context.Context, in Input) (*Draft, error) {
	draft, err := b.Prepare(in)
	if err != nil {
		return nil, err
	}

	number, err := b.generator.Next(ctx)
	if err != nil {
		return nil, apperrors.GenerationFailed(err)
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, apperrors.GenerationFailed(nil)
	}
	draft.CertificateNumber = number

	return draft, nil
}

// Prepare performs everything Build does except numbering.
func (b *Builder) Prepare(in Input) (*Draft, error) {
	recordType := in.RecordType
	if recordType == "" {
		recordType = entities.RecordTypeService
	}
	if !recordType.Valid() {
		return nil, apperrors.NewValidationError("record_type", "unknown record type %q", recordType)
	}
	if in.EngineerID == 0 {
		return nil, apperrors.NewValidationError("engineer_id", "an engineer is required")
	}
	if in.CompanyID == 0 {
		return nil, apperrors.NewValidationError("company_id", "a company is required")
	}

	items, err := normalizeItems(in.Items)
	if err != nil {
		return nil, err
	}

	testDate := DateOnly(b.now())
	if in.TestDate != nil && !in.TestDate.IsZero() {
		testDate = DateOnly(*in.TestDate)
	}

	retestDate, err := resolveRetestDate(recordType, testDate, in.RetestDate)
	if err != nil {
		return nil, err
	}

	measurements, err := b.normalizeMeasurements(recordType, in.Measurements)
	if err != nil {
		return nil, err
	}

	return &Draft{
		RecordType:   recordType,
		CompanyID:    in.CompanyID,
		EngineerID:   in.EngineerID,
		TestDate:     testDate,
		RetestDate:   retestDate,
		Status:       b.classifier.Status(&retestDate),
		Notes:        trimNotes(in.Notes),
		Items:        items,
		Measurements: measurements,
	}, nil
}

// RetestDateFor adds the fixed interval in calendar days.
func RetestDateFor(testDate time.Time) time.Time {
	return DateOnly(testDate).AddDate(0, 0, RetestIntervalDays)
}

// DateOnly keeps the calendar date of t and pins it to UTC midnight so that
// day arithmetic is not affected by daylight saving transitions.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ResolveRetestDate is exported for the record date editor.
func ResolveRetestDate(recordType entities.RecordType, testDate time.Time, requested *time.Time) (time.Time, error) {
	return resolveRetestDate(recordType, DateOnly(testDate), requested)
}

func resolveRetestDate(recordType entities.RecordType, testDate time.Time, requested *time.Time) (time.Time, error) {
	if requested == nil || requested.IsZero() {
		return RetestDateFor(testDate), nil
	}
	if recordType != entities.RecordTypeLoler {
		return time.Time{}, apperrors.NewValidationError("retest_date",
			"retest date is fixed at %d days after the test date for %s records", RetestIntervalDays, recordType)
	}
	retest := DateOnly(*requested)
	if retest.Before(testDate) {
		return time.Time{}, apperrors.NewValidationError("retest_date", "retest date cannot be before the inspection date")
	}
	return retest, nil
}

func normalizeItems(in []*LineItem) ([]LineItem, error) {
	if len(in) == 0 || in[0].empty() {
		return nil, apperrors.NewValidationError("items[0]", "the first equipment item needs a name and serial number")
	}
	if len(in) > entities.MaxRecordItems {
		return nil, apperrors.NewValidationError("items", "at most %d equipment items per record", entities.MaxRecordItems)
	}

	out := make([]LineItem, 0, len(in))
	for i, item := range in {
		if item.empty() {
			continue
		}
		name := strings.TrimSpace(item.Name)
		serial := strings.TrimSpace(item.SerialNumber)
		if name == "" || serial == "" {
			return nil, apperrors.NewValidationError(itemField(i), "equipment items need both a name and a serial number")
		}
		out = append(out, LineItem{Name: name, SerialNumber: serial})
	}
	return out, nil
}

func (b *Builder) normalizeMeasurements(recordType entities.RecordType, raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	payload := entities.MeasurementsFor(recordType)
	if payload == nil {
		return nil, apperrors.NewValidationError("measurements", "%s records do not take measurements", recordType)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return nil, apperrors.NewValidationError("measurements", "does not match the %s payload: %v", recordType, err)
	}
	if err := b.validate.Struct(payload); err != nil {
		return nil, apperrors.NewValidationError("measurements", "%v", err)
	}

	normalized, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewValidationError("measurements", "%v", err)
	}
	return normalized, nil
}

func trimNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func itemField(i int) string {
	return "items[" + strconv.Itoa(i) + "]"
}
