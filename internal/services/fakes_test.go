package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"equiptrak/internal/authz"
	"equiptrak/internal/entities"
	"equiptrak/internal/lifecycle"
	"equiptrak/internal/records"
	"equiptrak/internal/repositories"
	apperrors "equiptrak/pkg/errors"
	"equiptrak/pkg/eventbus"
	"equiptrak/pkg/types"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func testClassifier() *lifecycle.Classifier {
	return &lifecycle.Classifier{
		LookaheadDays: 30,
		OnMissingDate: lifecycle.MissingDateInvalid,
		Now:           func() time.Time { return testNow },
	}
}

func adminCtx() context.Context {
	return authz.WithPrincipal(context.Background(), &authz.Principal{Subject: "1", Role: authz.RoleAdmin})
}

func customerCtx(companyID uint64) context.Context {
	return authz.WithPrincipal(context.Background(), &authz.Principal{Subject: "2", Role: authz.RoleCustomer, CompanyID: &companyID})
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	return fn(nil)
}

type fakeCache struct {
	mu      sync.Mutex
	values  map[string]string
	deleted []string
	counter int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value.(string)
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *fakeCache) Incr(_ context.Context, _ string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	return c.counter, nil
}

type fakeCompanyRepo struct {
	companies map[uint64]*entities.Company
	nextID    uint64
}

func newFakeCompanyRepo(companies ...*entities.Company) *fakeCompanyRepo {
	r := &fakeCompanyRepo{companies: map[uint64]*entities.Company{}}
	for _, c := range companies {
		r.companies[c.ID] = c
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
	}
	return r
}

func (r *fakeCompanyRepo) GetAll(_ context.Context, _ types.Filter, scope *uint64) ([]*entities.Company, uint64, error) {
	out := make([]*entities.Company, 0)
	for _, c := range r.companies {
		if scope != nil && c.ID != *scope {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, uint64(len(out)), nil
}

func (r *fakeCompanyRepo) FindByID(_ context.Context, _ pgx.Tx, id uint64) (*entities.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCompanyRepo) Create(_ context.Context, _ pgx.Tx, c *entities.Company) (uint64, error) {
	r.nextID++
	cp := *c
	cp.ID = r.nextID
	stamp := testNow
	cp.CreatedAt, cp.UpdatedAt = &stamp, &stamp
	r.companies[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeCompanyRepo) Update(_ context.Context, _ pgx.Tx, c *entities.Company) error {
	existing, ok := r.companies[c.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	cp := *c
	stamp := testNow.Add(time.Hour)
	cp.CreatedAt, cp.UpdatedAt = existing.CreatedAt, &stamp
	r.companies[c.ID] = &cp
	return nil
}

func (r *fakeCompanyRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := r.companies[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.companies, id)
	return nil
}

type fakeEquipmentRepo struct {
	items     []*entities.Equipment
	listCalls int
	resynced  []uint64
}

func (r *fakeEquipmentRepo) ListAll(_ context.Context, _ types.Filter, scope *uint64) ([]*entities.Equipment, error) {
	r.listCalls++
	out := make([]*entities.Equipment, 0)
	for _, e := range r.items {
		if scope != nil && e.CompanyID != *scope {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeEquipmentRepo) FindByID(_ context.Context, id uint64) (*entities.Equipment, error) {
	for _, e := range r.items {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeEquipmentRepo) Update(_ context.Context, e *entities.Equipment) error {
	for i, existing := range r.items {
		if existing.ID == e.ID {
			cp := *e
			r.items[i] = &cp
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeEquipmentRepo) Delete(_ context.Context, id uint64) error {
	for i, e := range r.items {
		if e.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeEquipmentRepo) Upsert(_ context.Context, _ pgx.Tx, e *entities.Equipment) (uint64, error) {
	for _, existing := range r.items {
		if existing.CompanyID == e.CompanyID && existing.SerialNumber == e.SerialNumber {
			existing.Name = e.Name
			if existing.LastTestDate == nil || !e.LastTestDate.Before(*existing.LastTestDate) {
				existing.LastTestDate = e.LastTestDate
				existing.NextTestDate = e.NextTestDate
			}
			return existing.ID, nil
		}
	}
	cp := *e
	cp.ID = uint64(len(r.items) + 1)
	r.items = append(r.items, &cp)
	return cp.ID, nil
}

func (r *fakeEquipmentRepo) ResyncTestDates(_ context.Context, _ pgx.Tx, ids []uint64) error {
	r.resynced = append(r.resynced, ids...)
	return nil
}

type fakeTypeRepo struct{}

func (fakeTypeRepo) GetAll(_ context.Context) ([]*entities.EquipmentType, error) {
	out := make([]*entities.EquipmentType, 0)
	for i, code := range entities.RecordTypes() {
		out = append(out, &entities.EquipmentType{ID: uint64(i + 1), Code: code, Name: code.DisplayName()})
	}
	return out, nil
}

func (f fakeTypeRepo) FindByID(ctx context.Context, id uint64) (*entities.EquipmentType, error) {
	all, _ := f.GetAll(ctx)
	for _, t := range all {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f fakeTypeRepo) FindByCode(ctx context.Context, _ pgx.Tx, code entities.RecordType) (*entities.EquipmentType, error) {
	all, _ := f.GetAll(ctx)
	for _, t := range all {
		if t.Code == code {
			return t, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (fakeTypeRepo) Create(_ context.Context, _ *entities.EquipmentType) (uint64, error) {
	return 99, nil
}

type fakeRecordRepo struct {
	records   map[uint64]*entities.ServiceRecord
	companies *fakeCompanyRepo
	insertErr error
}

func newFakeRecordRepo(companies *fakeCompanyRepo) *fakeRecordRepo {
	return &fakeRecordRepo{records: map[uint64]*entities.ServiceRecord{}, companies: companies}
}

func (r *fakeRecordRepo) InsertRecord(_ context.Context, _ pgx.Tx, rec *entities.ServiceRecord) (uint64, error) {
	if r.insertErr != nil {
		return 0, r.insertErr
	}
	for _, existing := range r.records {
		if existing.CertificateNumber == rec.CertificateNumber {
			return 0, apperrors.NewPersistenceError(errDuplicateNumber)
		}
	}
	rec.ID = uint64(len(r.records) + 1)
	cp := *rec
	cp.Items = append([]entities.ServiceRecordItem(nil), rec.Items...)
	r.records[rec.ID] = &cp
	return rec.ID, nil
}

func (r *fakeRecordRepo) withJoins(rec *entities.ServiceRecord) *entities.ServiceRecord {
	cp := *rec
	if c, err := r.companies.FindByID(context.Background(), nil, rec.CompanyID); err == nil {
		cp.Company = c
	}
	cp.Engineer = &entities.Engineer{ID: rec.EngineerID, Name: "Dave Jones"}
	return &cp
}

func (r *fakeRecordRepo) FetchLatestRecordForEquipment(_ context.Context, equipmentID uint64) (*entities.ServiceRecord, error) {
	var latest *entities.ServiceRecord
	for _, rec := range r.records {
		for _, item := range rec.Items {
			if item.EquipmentID != equipmentID {
				continue
			}
			if latest == nil || rec.TestDate.After(latest.TestDate) ||
				(rec.TestDate.Equal(latest.TestDate) && rec.ID > latest.ID) {
				latest = rec
			}
		}
	}
	if latest == nil {
		return nil, apperrors.ErrNotFound
	}
	return r.withJoins(latest), nil
}

func (r *fakeRecordRepo) FindByID(_ context.Context, id uint64) (*entities.ServiceRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r.withJoins(rec), nil
}

func (r *fakeRecordRepo) FindByCertificateNumber(_ context.Context, number string) (*entities.ServiceRecord, error) {
	for _, rec := range r.records {
		if rec.CertificateNumber == number {
			return r.withJoins(rec), nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeRecordRepo) GetAll(_ context.Context, _ types.Filter, scope *uint64) ([]*entities.ServiceRecord, uint64, error) {
	out := make([]*entities.ServiceRecord, 0)
	for _, rec := range r.records {
		if scope != nil && rec.CompanyID != *scope {
			continue
		}
		out = append(out, r.withJoins(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, uint64(len(out)), nil
}

func (r *fakeRecordRepo) UpdateDates(_ context.Context, _ pgx.Tx, id uint64, testDate, retestDate time.Time) error {
	rec, ok := r.records[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	rec.TestDate = testDate
	rec.RetestDate = retestDate
	return nil
}

func (r *fakeRecordRepo) UpdateCertificateNumber(_ context.Context, _ pgx.Tx, id uint64, number string) error {
	for otherID, rec := range r.records {
		if otherID != id && rec.CertificateNumber == number {
			return apperrors.NewPersistenceError(errDuplicateNumber)
		}
	}
	rec, ok := r.records[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	rec.CertificateNumber = number
	return nil
}

type sequenceGenerator struct {
	calls int
	err   error
}

func (g *sequenceGenerator) Next(_ context.Context) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return records.FormatSequenceNumber("ET", int64(g.calls)), nil
}

type capturingBus struct {
	events []eventbus.Event
}

func (b *capturingBus) Publish(_ context.Context, event eventbus.Event) {
	b.events = append(b.events, event)
}

var errDuplicateNumber = errorString(`duplicate key value violates unique constraint "service_records_certificate_number_key"`)

type errorString string

func (e errorString) Error() string { return string(e) }

