package payroll

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/google/uuid"
)

type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakePayrollRepository keeps the payroll store in memory and enforces the
// same unique keys as the schema.
type fakePayrollRepository struct {
	mu         sync.Mutex
	settings   map[string]payroll.PayrollSettings
	periods    map[string]payroll.PayrollPeriod
	records    map[string]payroll.PayrollRecord
	order      []string
	components map[string][]payroll.PayrollComponent
	hours      map[string]payroll.WorkedHours

	// failCreateRecord makes CreateRecord fail for the given employee ids.
	failCreateRecord map[string]error
}

func newFakePayrollRepository() *fakePayrollRepository {
	return &fakePayrollRepository{
		settings:         map[string]payroll.PayrollSettings{},
		periods:          map[string]payroll.PayrollPeriod{},
		records:          map[string]payroll.PayrollRecord{},
		components:       map[string][]payroll.PayrollComponent{},
		hours:            map[string]payroll.WorkedHours{},
		failCreateRecord: map[string]error{},
	}
}

func (r *fakePayrollRepository) GetSettings(ctx context.Context, organizationID string) (payroll.PayrollSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[organizationID]
	if !ok {
		return payroll.PayrollSettings{}, payroll.ErrPayrollSettingsNotFound
	}
	return s, nil
}

func (r *fakePayrollRepository) UpsertSettings(ctx context.Context, settings payroll.PayrollSettings) (payroll.PayrollSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if settings.ID == "" {
		settings.ID = uuid.NewString()
	}
	r.settings[settings.OrganizationID] = settings
	return settings, nil
}

func (r *fakePayrollRepository) CreatePeriod(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.periods {
		if p.OrganizationID == period.OrganizationID && p.StartDate.Equal(period.StartDate) {
			return payroll.PayrollPeriod{}, payroll.ErrPayrollPeriodAlreadyExists
		}
	}
	period.ID = uuid.NewString()
	period.CreatedAt = time.Now()
	period.UpdatedAt = period.CreatedAt
	r.periods[period.ID] = period
	return period, nil
}

func (r *fakePayrollRepository) GetPeriodByStartDate(ctx context.Context, organizationID string, startDate time.Time) (payroll.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.periods {
		if p.OrganizationID == organizationID && p.StartDate.Equal(startDate) {
			return p, nil
		}
	}
	return payroll.PayrollPeriod{}, payroll.ErrPayrollPeriodNotFound
}

func (r *fakePayrollRepository) GetPeriodByID(ctx context.Context, id string, organizationID string) (payroll.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.periods[id]
	if !ok || p.OrganizationID != organizationID {
		return payroll.PayrollPeriod{}, payroll.ErrPayrollPeriodNotFound
	}
	return p, nil
}

func (r *fakePayrollRepository) LockPeriod(ctx context.Context, id string) (payroll.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.periods[id]
	if !ok {
		return payroll.PayrollPeriod{}, payroll.ErrPayrollPeriodNotFound
	}
	return p, nil
}

func (r *fakePayrollRepository) ListPeriods(ctx context.Context, organizationID string, limit int) ([]payroll.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.PayrollPeriod
	for _, p := range r.periods {
		if p.OrganizationID == organizationID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b payroll.PayrollPeriod) int { return b.StartDate.Compare(a.StartDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePayrollRepository) UpdatePeriodTotals(ctx context.Context, id string, totals payroll.PeriodTotals) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.periods[id]
	if !ok {
		return payroll.ErrPayrollPeriodNotFound
	}
	p.TotalGrossPay = totals.TotalGrossPay
	p.TotalNetPay = totals.TotalNetPay
	p.TotalDeductions = totals.TotalDeductions
	r.periods[id] = p
	return nil
}

func (r *fakePayrollRepository) UpdatePeriodStatus(ctx context.Context, id string, status payroll.PayrollStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.periods[id]
	if !ok {
		return payroll.ErrPayrollPeriodNotFound
	}
	p.Status = status
	r.periods[id] = p
	return nil
}

func (r *fakePayrollRepository) CreateRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failCreateRecord[record.EmployeeID]; err != nil {
		return payroll.PayrollRecord{}, err
	}
	for _, existing := range r.records {
		if existing.EmployeeID == record.EmployeeID && existing.PeriodID == record.PeriodID {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
	}
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	r.records[record.ID] = record
	r.order = append(r.order, record.ID)
	return record, nil
}

func (r *fakePayrollRepository) GetRecordByID(ctx context.Context, id string, organizationID string) (payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.OrganizationID != organizationID {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return rec, nil
}

func (r *fakePayrollRepository) LockRecord(ctx context.Context, id string, organizationID string) (payroll.PayrollRecord, error) {
	return r.GetRecordByID(ctx, id, organizationID)
}

func (r *fakePayrollRepository) ListRecords(ctx context.Context, organizationID string, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.PayrollRecord
	for _, id := range r.order {
		rec := r.records[id]
		if rec.OrganizationID != organizationID {
			continue
		}
		if filter.PeriodID != nil && rec.PeriodID != *filter.PeriodID {
			continue
		}
		if filter.Status != nil && string(rec.Status) != *filter.Status {
			continue
		}
		if filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, rec)
	}
	total := int64(len(out))
	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (r *fakePayrollRepository) ListRecordsByPeriod(ctx context.Context, periodID string) ([]payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.PayrollRecord
	for _, id := range r.order {
		if rec := r.records[id]; rec.PeriodID == periodID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakePayrollRepository) UpdateRecord(ctx context.Context, record payroll.PayrollRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.records[record.ID]
	if !ok || existing.OrganizationID != record.OrganizationID {
		return payroll.ErrPayrollRecordNotFound
	}
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = time.Now()
	r.records[record.ID] = record
	return nil
}

func (r *fakePayrollRepository) AdvanceRecordStatuses(ctx context.Context, periodID string, status payroll.PayrollStatus, approvedBy *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rec := range r.records {
		if rec.PeriodID != periodID || !rec.Status.IsBehind(status) {
			continue
		}
		rec.Status = status
		if approvedBy != nil {
			if rec.ApprovedBy == nil {
				by := *approvedBy
				rec.ApprovedBy = &by
			}
			if rec.ApprovedAt == nil {
				at := time.Now()
				rec.ApprovedAt = &at
			}
		}
		r.records[id] = rec
	}
	return nil
}

func (r *fakePayrollRepository) ListComponents(ctx context.Context, recordID string) ([]payroll.PayrollComponent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.components[recordID]), nil
}

func (r *fakePayrollRepository) ListComponentsByRecordIDs(ctx context.Context, recordIDs []string) (map[string][]payroll.PayrollComponent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]payroll.PayrollComponent, len(recordIDs))
	for _, id := range recordIDs {
		out[id] = slices.Clone(r.components[id])
	}
	return out, nil
}

func (r *fakePayrollRepository) CreateComponents(ctx context.Context, components []payroll.PayrollComponent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range components {
		for _, existing := range r.components[c.RecordID] {
			if existing.Kind == c.Kind {
				return fmt.Errorf("duplicate component %s on record %s", c.Kind, c.RecordID)
			}
		}
		c.ID = uuid.NewString()
		r.components[c.RecordID] = append(r.components[c.RecordID], c)
	}
	return nil
}

func (r *fakePayrollRepository) UpsertComponent(ctx context.Context, component payroll.PayrollComponent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.components[component.RecordID]
	for i := range list {
		if list[i].Kind == component.Kind {
			component.ID = list[i].ID
			list[i] = component
			return nil
		}
	}
	component.ID = uuid.NewString()
	r.components[component.RecordID] = append(list, component)
	return nil
}

func (r *fakePayrollRepository) DeleteComponentsByKind(ctx context.Context, recordID string, kind payroll.ComponentKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[recordID] = slices.DeleteFunc(r.components[recordID], func(c payroll.PayrollComponent) bool {
		return c.Kind == kind
	})
	return nil
}

func (r *fakePayrollRepository) GetWorkedHours(ctx context.Context, organizationID string, start, end time.Time, employeeIDs []string) ([]payroll.WorkedHours, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.WorkedHours
	for _, id := range employeeIDs {
		if h, ok := r.hours[id]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}

// periodOf returns the stored period of the organization.
func (r *fakePayrollRepository) periodOf(organizationID string) (payroll.PayrollPeriod, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.periods {
		if p.OrganizationID == organizationID {
			return p, true
		}
	}
	return payroll.PayrollPeriod{}, false
}

func (r *fakePayrollRepository) recordOf(employeeID string) (payroll.PayrollRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID {
			return rec, true
		}
	}
	return payroll.PayrollRecord{}, false
}

func (r *fakePayrollRepository) setRecord(record payroll.PayrollRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = record
}

type fakeEmployeeRepository struct {
	employees []employee.Employee
}

func (r *fakeEmployeeRepository) GetByID(ctx context.Context, id string, organizationID string) (employee.Employee, error) {
	for _, e := range r.employees {
		if e.ID == id && e.OrganizationID == organizationID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *fakeEmployeeRepository) GetActiveByOrganizationID(ctx context.Context, organizationID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range r.employees {
		if e.OrganizationID == organizationID && e.IsActive() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepository) ListByOrganizationID(ctx context.Context, organizationID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range r.employees {
		if e.OrganizationID == organizationID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepository) CountActive(ctx context.Context, organizationID string) (int, error) {
	active, _ := r.GetActiveByOrganizationID(ctx, organizationID)
	return len(active), nil
}
