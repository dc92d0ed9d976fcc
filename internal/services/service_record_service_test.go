package services

import (
	"errors"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equiptrak/internal/authz"
	"equiptrak/internal/dto"
	"equiptrak/internal/entities"
	"equiptrak/internal/events"
	"equiptrak/internal/records"
	apperrors "equiptrak/pkg/errors"
	"equiptrak/pkg/types"
)

type recordFixture struct {
	svc       ServiceRecordServiceInterface
	certs     CertificateServiceInterface
	equipment EquipmentServiceInterface
	tx        *fakeTxManager
	records   *fakeRecordRepo
	items     *fakeEquipmentRepo
	cache     *fakeCache
	gen       *sequenceGenerator
	bus       *capturingBus
}

func newRecordFixture() *recordFixture {
	email := "workshop@acme.co.uk"
	companies := newFakeCompanyRepo(
		&entities.Company{ID: 7, Name: "Acme Fabrication", Postcode: "B1 1AA", Email: &email},
		&entities.Company{ID: 8, Name: "Other Ltd"},
	)
	f := &recordFixture{
		tx:      &fakeTxManager{},
		records: newFakeRecordRepo(companies),
		items:   &fakeEquipmentRepo{},
		cache:   newFakeCache(),
		gen:     &sequenceGenerator{},
		bus:     &capturingBus{},
	}
	classifier := testClassifier()
	gate := authz.NewGatekeeper()
	builder := records.NewBuilder(classifier, f.gen, records.WithClock(func() time.Time { return testNow }))

	f.svc = NewServiceRecordService(f.tx, f.records, f.items, fakeTypeRepo{}, f.cache, builder, classifier, gate, f.bus, zap.NewNop())
	f.certs = NewCertificateService(f.records, companies, classifier, gate, "https://app.example/", zap.NewNop())
	f.equipment = NewEquipmentService(f.items, f.records, f.cache, classifier, gate, zap.NewNop())
	return f
}

func validRecordPayload() dto.CreateServiceRecordDTO {
	return dto.CreateServiceRecordDTO{
		RecordType: "spot_welder",
		CompanyID:  7,
		EngineerID: 3,
		TestDate:   null.StringFrom("2025-01-01"),
		Items: []*dto.RecordItemDTO{
			{Name: "ARO Spot Welder", SerialNumber: "SW-1001"},
			nil,
			{Name: "Tecna Spot Welder", SerialNumber: "SW-2002"},
		},
	}
}

func TestCreateRecordStoresRecordAndEquipment(t *testing.T) {
	f := newRecordFixture()

	out, err := f.svc.Create(adminCtx(), validRecordPayload())
	require.NoError(t, err)

	assert.Equal(t, "ET-00000001", out.CertificateNumber)
	assert.Equal(t, "2025-01-01", out.TestDate)
	assert.Equal(t, "2025-12-31", out.RetestDate)
	assert.Equal(t, "valid", out.Status)
	assert.Equal(t, "green", out.StatusColor)
	assert.Equal(t, "Spot Welder", out.RecordTypeName)
	assert.Equal(t, "Acme Fabrication", out.Company.Name)
	require.Len(t, out.Items, 2)
	assert.Equal(t, 1, out.Items[0].Position)
	assert.Equal(t, 2, out.Items[1].Position)
	assert.Equal(t, "SW-2002", out.Items[1].SerialNumber)

	assert.Equal(t, 1, f.gen.calls)
	assert.Equal(t, 1, f.tx.calls)
	require.Len(t, f.items.items, 2)
	for _, e := range f.items.items {
		assert.Equal(t, uint64(7), e.CompanyID)
		require.NotNil(t, e.EquipmentTypeID)
		assert.Equal(t, uint64(2), *e.EquipmentTypeID)
		assert.Equal(t, date(2025, time.December, 31), e.NextTestDate)
	}

	require.Len(t, f.bus.events, 1)
	issued, ok := f.bus.events[0].(events.RecordIssuedEvent)
	require.True(t, ok)
	assert.Equal(t, "ET-00000001", issued.CertificateNumber)
	assert.Equal(t, "ARO Spot Welder", issued.EquipmentName)
	assert.Equal(t, "Acme Fabrication", issued.CompanyName)
	assert.NotEmpty(t, issued.EventID)

	assert.ElementsMatch(t, []string{"equiptrak:dashboard:2025-06-01:all", "equiptrak:dashboard:2025-06-01:company:7"}, f.cache.deleted)
}

func TestCreateRecordRejectsBeforeNumbering(t *testing.T) {
	cases := map[string]struct {
		mutate func(p *dto.CreateServiceRecordDTO)
		field  string
	}{
		"missing engineer": {func(p *dto.CreateServiceRecordDTO) { p.EngineerID = 0 }, "engineer_id"},
		"bad test date":    {func(p *dto.CreateServiceRecordDTO) { p.TestDate = null.StringFrom("31/31/2025") }, "test_date"},
		"first item blank": {func(p *dto.CreateServiceRecordDTO) { p.Items[0] = &dto.RecordItemDTO{} }, "items[0]"},
		"retest on non-LOLER": {func(p *dto.CreateServiceRecordDTO) {
			p.RetestDate = null.StringFrom("2025-06-01")
		}, "retest_date"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newRecordFixture()
			payload := validRecordPayload()
			tc.mutate(&payload)

			_, err := f.svc.Create(adminCtx(), payload)

			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Zero(t, f.gen.calls)
			assert.Zero(t, f.tx.calls)
			assert.Empty(t, f.bus.events)
		})
	}
}

func TestCreateRecordGenerationFailure(t *testing.T) {
	f := newRecordFixture()
	f.gen.err = errors.New("sequence unavailable")

	_, err := f.svc.Create(adminCtx(), validRecordPayload())

	assert.ErrorIs(t, err, apperrors.ErrGenerationFailed)
	assert.Zero(t, f.tx.calls)
	assert.Empty(t, f.records.records)
	assert.Empty(t, f.items.items)
}

func TestCreateRecordPersistenceFailure(t *testing.T) {
	f := newRecordFixture()
	f.records.insertErr = apperrors.NewPersistenceError(errors.New(`insert or update on table "service_records" violates foreign key constraint "service_records_engineer_id_fkey"`))

	_, err := f.svc.Create(adminCtx(), validRecordPayload())

	require.True(t, apperrors.IsPersistence(err))
	assert.Contains(t, err.Error(), "service_records_engineer_id_fkey")
	assert.Empty(t, f.bus.events)
}

func TestCreateRecordRequiresAdmin(t *testing.T) {
	f := newRecordFixture()

	_, err := f.svc.Create(customerCtx(7), validRecordPayload())

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Zero(t, f.gen.calls)
}

func TestRecordVisibilityForCustomers(t *testing.T) {
	f := newRecordFixture()
	_, err := f.svc.Create(adminCtx(), validRecordPayload())
	require.NoError(t, err)

	_, err = f.svc.FindByID(customerCtx(8), 1)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	got, err := f.svc.FindByID(customerCtx(7), 1)
	require.NoError(t, err)
	assert.Equal(t, "ET-00000001", got.CertificateNumber)

	list, err := f.svc.GetAll(customerCtx(8), types.Filter{Limit: 50, Page: 1})
	require.NoError(t, err)
	assert.Empty(t, list.List)
}

func TestUpdateDatesRecomputesRetestAndResyncs(t *testing.T) {
	f := newRecordFixture()
	_, err := f.svc.Create(adminCtx(), validRecordPayload())
	require.NoError(t, err)

	out, err := f.svc.UpdateDates(adminCtx(), 1, dto.UpdateRecordDatesDTO{TestDate: "2025-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", out.TestDate)
	assert.Equal(t, "2026-02-28", out.RetestDate)
	assert.ElementsMatch(t, []uint64{1, 2}, f.items.resynced)

	_, err = f.svc.UpdateDates(adminCtx(), 1, dto.UpdateRecordDatesDTO{
		TestDate:   "2025-03-01",
		RetestDate: null.StringFrom("2025-09-01"),
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateDatesLolerKeepsRequestedRetest(t *testing.T) {
	f := newRecordFixture()
	payload := validRecordPayload()
	payload.RecordType = "loler"
	payload.RetestDate = null.StringFrom("2025-07-01")
	created, err := f.svc.Create(adminCtx(), payload)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-01", created.RetestDate)
	assert.Equal(t, "upcoming", created.Status)

	out, err := f.svc.UpdateDates(adminCtx(), created.ID, dto.UpdateRecordDatesDTO{
		TestDate:   "2025-02-01",
		RetestDate: null.StringFrom("2025-08-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-08-01", out.RetestDate)

	_, err = f.svc.UpdateDates(adminCtx(), created.ID, dto.UpdateRecordDatesDTO{
		TestDate:   "2025-02-01",
		RetestDate: null.StringFrom("2025-01-01"),
	})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "retest_date", verr.Field)
}

func TestUpdateCertificateNumber(t *testing.T) {
	f := newRecordFixture()
	_, err := f.svc.Create(adminCtx(), validRecordPayload())
	require.NoError(t, err)
	_, err = f.svc.Create(adminCtx(), validRecordPayload())
	require.NoError(t, err)

	_, err = f.svc.UpdateCertificateNumber(adminCtx(), 2, dto.UpdateCertificateNumberDTO{CertificateNumber: "ET-00000001"})
	require.True(t, apperrors.IsPersistence(err))
	assert.Contains(t, err.Error(), "duplicate key")

	out, err := f.svc.UpdateCertificateNumber(adminCtx(), 2, dto.UpdateCertificateNumberDTO{CertificateNumber: " WLD-2025-17 "})
	require.NoError(t, err)
	assert.Equal(t, "WLD-2025-17", out.CertificateNumber)

	_, err = f.svc.UpdateCertificateNumber(customerCtx(7), 2, dto.UpdateCertificateNumberDTO{CertificateNumber: "X"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCertificateLookup(t *testing.T) {
	f := newRecordFixture()
	_, err := f.svc.Create(adminCtx(), validRecordPayload())
	require.NoError(t, err)

	cert, err := f.certs.FindByNumber(customerCtx(7), "ET-00000001")
	require.NoError(t, err)
	assert.Equal(t, "https://app.example/certificates/ET-00000001", cert.VerifyURL)
	assert.Equal(t, "B1 1AA", cert.Company.Postcode)
	assert.Equal(t, "workshop@acme.co.uk", cert.Company.Email.String)
	assert.Equal(t, "Dave Jones", cert.Engineer.Name)
	assert.Len(t, cert.Items, 2)

	_, err = f.certs.FindByNumber(customerCtx(8), "ET-00000001")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.certs.FindByNumber(adminCtx(), "ET-404")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLatestRecordForEquipment(t *testing.T) {
	f := newRecordFixture()
	_, err := f.svc.Create(adminCtx(), validRecordPayload())
	require.NoError(t, err)

	later := validRecordPayload()
	later.TestDate = null.StringFrom("2025-05-20")
	later.Items = later.Items[:1]
	_, err = f.svc.Create(adminCtx(), later)
	require.NoError(t, err)

	latest, err := f.equipment.LatestRecord(adminCtx(), 1)
	require.NoError(t, err)
	assert.Equal(t, "ET-00000002", latest.CertificateNumber)

	latest, err = f.equipment.LatestRecord(adminCtx(), 2)
	require.NoError(t, err)
	assert.Equal(t, "ET-00000001", latest.CertificateNumber)

	eq, err := f.equipment.FindByID(adminCtx(), 1)
	require.NoError(t, err)
	assert.Equal(t, "2026-05-19", eq.NextTestDate.String)
}
