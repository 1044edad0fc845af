package importer

import (
	"context"
	"errors"
	"sync"

	"github.com/rpattn/klinik/internal/domain"
	"github.com/rpattn/klinik/internal/repository"

	"github.com/google/uuid"
)

// memData is the committed or in-flight state of memStore.
type memData struct {
	diagnoses   map[string]domain.Diagnosis
	departments map[string]domain.Department
	labTests    map[string]domain.LabTest
	ranges      []domain.ReferenceRange
	inventory   map[string]domain.InventoryItem
}

func newMemData() *memData {
	return &memData{
		diagnoses:   map[string]domain.Diagnosis{},
		departments: map[string]domain.Department{},
		labTests:    map[string]domain.LabTest{},
		inventory:   map[string]domain.InventoryItem{},
	}
}

func (d *memData) clone() *memData {
	c := newMemData()
	for k, v := range d.diagnoses {
		c.diagnoses[k] = v
	}
	for k, v := range d.departments {
		c.departments[k] = v
	}
	for k, v := range d.labTests {
		c.labTests[k] = v
	}
	for k, v := range d.inventory {
		c.inventory[k] = v
	}
	c.ranges = append([]domain.ReferenceRange(nil), d.ranges...)
	return c
}

func scopedKey(scope domain.Scope, name string) string {
	return scope.CompanyID.String() + "/" + scope.PlantID.String() + "/" + domain.NameKey(name)
}

// memStore is an in-memory repository.Store with transaction and savepoint semantics.
type memStore struct {
	mu        sync.Mutex
	committed *memData
	logs      []domain.ImportLogEntry
	txCount   int

	// failWrite, when set, is consulted before every Create/Update with the natural key.
	failWrite func(key string) error
	commitErr error
}

var _ repository.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{committed: newMemData()}
}

func (s *memStore) InTx(ctx context.Context, fn func(repository.Tx) error) error {
	s.mu.Lock()
	s.txCount++
	work := s.committed.clone()
	s.mu.Unlock()

	if err := fn(&memTx{store: s, data: work}); err != nil {
		return err
	}
	if s.commitErr != nil {
		return s.commitErr
	}

	s.mu.Lock()
	s.committed = work
	s.mu.Unlock()
	return nil
}

func (s *memStore) Repositories() repository.Repositories {
	return s.repos(s.committed)
}

func (s *memStore) ImportLogs() repository.ImportLogRepository {
	return &memImportLogs{store: s}
}

func (s *memStore) repos(d *memData) repository.Repositories {
	return repository.Repositories{
		Diagnoses:   &memDiagnoses{store: s, data: d},
		Departments: &memDepartments{store: s, data: d},
		LabTests:    &memLabTests{store: s, data: d},
		Inventory:   &memInventory{store: s, data: d},
	}
}

func (s *memStore) check(key string) error {
	if s.failWrite == nil {
		return nil
	}
	return s.failWrite(key)
}

// seedDepartment commits a department outside any import run.
func (s *memStore) seedDepartment(dept domain.Department) {
	s.committed.departments[scopedKey(dept.Scope, dept.Name)] = dept
}

type memTx struct {
	store *memStore
	data  *memData
}

func (t *memTx) Repositories() repository.Repositories {
	return t.store.repos(t.data)
}

func (t *memTx) Savepoint(ctx context.Context, fn func(repository.Repositories) error) error {
	snapshot := t.data.clone()
	if err := fn(t.store.repos(t.data)); err != nil {
		*t.data = *snapshot
		return err
	}
	return nil
}

type memDiagnoses struct {
	store *memStore
	data  *memData
}

func (r *memDiagnoses) FindByCode(ctx context.Context, code string) (domain.Diagnosis, error) {
	d, ok := r.data.diagnoses[code]
	if !ok {
		return domain.Diagnosis{}, repository.ErrNotFound
	}
	return d, nil
}

func (r *memDiagnoses) Create(ctx context.Context, d domain.Diagnosis) error {
	if err := r.store.check(d.Code); err != nil {
		return err
	}
	if _, exists := r.data.diagnoses[d.Code]; exists {
		return errors.New("duplicate key value violates unique constraint \"diagnoses_code_key\"")
	}
	r.data.diagnoses[d.Code] = d
	return nil
}

func (r *memDiagnoses) Update(ctx context.Context, d domain.Diagnosis) error {
	if err := r.store.check(d.Code); err != nil {
		return err
	}
	if _, exists := r.data.diagnoses[d.Code]; !exists {
		return repository.ErrNotFound
	}
	r.data.diagnoses[d.Code] = d
	return nil
}

type memDepartments struct {
	store *memStore
	data  *memData
}

func (r *memDepartments) FindByName(ctx context.Context, scope domain.Scope, name string) (domain.Department, error) {
	d, ok := r.data.departments[scopedKey(scope, name)]
	if !ok {
		return domain.Department{}, repository.ErrNotFound
	}
	return d, nil
}

func (r *memDepartments) Create(ctx context.Context, d domain.Department) error {
	if err := r.store.check(d.Name); err != nil {
		return err
	}
	r.data.departments[scopedKey(d.Scope, d.Name)] = d
	return nil
}

func (r *memDepartments) Update(ctx context.Context, d domain.Department) error {
	if err := r.store.check(d.Name); err != nil {
		return err
	}
	r.data.departments[scopedKey(d.Scope, d.Name)] = d
	return nil
}

type memLabTests struct {
	store *memStore
	data  *memData
}

func (r *memLabTests) FindByName(ctx context.Context, scope domain.Scope, name string) (domain.LabTest, error) {
	t, ok := r.data.labTests[scopedKey(scope, name)]
	if !ok {
		return domain.LabTest{}, repository.ErrNotFound
	}
	return t, nil
}

func (r *memLabTests) Create(ctx context.Context, t domain.LabTest) error {
	if err := r.store.check(t.Name); err != nil {
		return err
	}
	r.data.labTests[scopedKey(t.Scope, t.Name)] = t
	return nil
}

func (r *memLabTests) Update(ctx context.Context, t domain.LabTest) error {
	if err := r.store.check(t.Name); err != nil {
		return err
	}
	r.data.labTests[scopedKey(t.Scope, t.Name)] = t
	return nil
}

func (r *memLabTests) AddReferenceRanges(ctx context.Context, ranges []domain.ReferenceRange) error {
	r.data.ranges = append(r.data.ranges, ranges...)
	return nil
}

func (r *memLabTests) List(ctx context.Context, scope domain.Scope, limit int, offset int) ([]domain.LabTest, error) {
	var out []domain.LabTest
	for _, t := range r.data.labTests {
		if t.Scope == scope {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memLabTests) ReferenceRangesByTestIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.ReferenceRange, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := map[uuid.UUID][]domain.ReferenceRange{}
	for _, rr := range r.data.ranges {
		if want[rr.LabTestID] {
			out[rr.LabTestID] = append(out[rr.LabTestID], rr)
		}
	}
	return out, nil
}

type memInventory struct {
	store *memStore
	data  *memData
}

func (r *memInventory) FindByName(ctx context.Context, scope domain.Scope, name string) (domain.InventoryItem, error) {
	i, ok := r.data.inventory[scopedKey(scope, name)]
	if !ok {
		return domain.InventoryItem{}, repository.ErrNotFound
	}
	return i, nil
}

func (r *memInventory) Create(ctx context.Context, i domain.InventoryItem) error {
	if err := r.store.check(i.Name); err != nil {
		return err
	}
	r.data.inventory[scopedKey(i.Scope, i.Name)] = i
	return nil
}

func (r *memInventory) Update(ctx context.Context, i domain.InventoryItem) error {
	if err := r.store.check(i.Name); err != nil {
		return err
	}
	r.data.inventory[scopedKey(i.Scope, i.Name)] = i
	return nil
}

type memImportLogs struct {
	store *memStore
}

func (r *memImportLogs) Record(ctx context.Context, entry domain.ImportLogEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.logs = append(r.store.logs, entry)
	return nil
}

func (r *memImportLogs) List(ctx context.Context, scope domain.Scope, kind string, limit int, offset int) ([]domain.ImportLogEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.ImportLogEntry
	for _, e := range r.store.logs {
		if e.Scope == scope && (kind == "" || e.Kind == kind) {
			out = append(out, e)
		}
	}
	return out, nil
}
