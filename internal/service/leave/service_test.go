package leave

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/simplehr/simplehr-backend-go/internal/domain/employee"
	"github.com/simplehr/simplehr-backend-go/internal/domain/leave"
	"github.com/simplehr/simplehr-backend-go/internal/domain/user"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/authz"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Employee ids are UUIDs, as the API requires.
const (
	employeeA = "0195a3c0-1d2e-7a4b-8c01-000000000001"
	employeeB = "0195a3c0-1d2e-7a4b-8c01-000000000002"
)

const testCompanyID = "company-1"

// ========== FAKES ==========

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]leave.LeaveRequest
	order    []string
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[string]leave.LeaveRequest{}}
}

func (f *fakeRequestRepo) Create(ctx context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	f.requests[r.ID] = r
	f.order = append(f.order, r.ID)
	return r, nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id string, companyID string) (leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok || r.CompanyID != companyID {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r, nil
}

func (f *fakeRequestRepo) List(ctx context.Context, companyID string, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leave.LeaveRequest
	for _, id := range f.order {
		r := f.requests[id]
		if r.CompanyID != companyID {
			continue
		}
		if filter.EmployeeID != nil && r.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRequestRepo) Decide(ctx context.Context, d leave.Decision) (leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[d.RequestID]
	if !ok || r.CompanyID != d.CompanyID {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if r.Status != leave.StatusPending {
		return leave.LeaveRequest{}, leave.ErrInvalidState
	}
	r.Status = d.Status
	r.RejectReason = d.RejectReason
	r.DecidedBy = &d.DecidedBy
	r.DecidedAt = &d.DecidedAt
	f.requests[r.ID] = r
	return r, nil
}

func (f *fakeRequestRepo) ListApprovedByStartYear(ctx context.Context, companyID, employeeID string, year int) ([]leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leave.LeaveRequest
	for _, id := range f.order {
		r := f.requests[id]
		if r.CompanyID == companyID && (employeeID == "" || r.EmployeeID == employeeID) &&
			r.Status == leave.StatusApproved && r.StartDate.Year() == year {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) SumApprovedDaysByType(ctx context.Context, companyID, employeeID string, year int) (map[leave.LeaveType]int, error) {
	approved, _ := f.ListApprovedByStartYear(ctx, companyID, employeeID, year)
	used := map[leave.LeaveType]int{}
	for _, r := range approved {
		used[r.LeaveType] += r.TotalDays
	}
	return used, nil
}

func (f *fakeRequestRepo) ListApprovedOverlapping(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	return nil, errors.New("not used")
}

type fakeEntitlementRepo struct {
	mu        sync.Mutex
	overrides map[string]map[leave.LeaveType]leave.Entitlement
}

func (f *fakeEntitlementRepo) GetByCompanyID(ctx context.Context, companyID string) (map[leave.LeaveType]leave.Entitlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[leave.LeaveType]leave.Entitlement{}
	for t, e := range f.overrides[companyID] {
		out[t] = e
	}
	return out, nil
}

func (f *fakeEntitlementRepo) Upsert(ctx context.Context, companyID string, t leave.LeaveType, e leave.Entitlement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.overrides[companyID] == nil {
		f.overrides[companyID] = map[leave.LeaveType]leave.Entitlement{}
	}
	f.overrides[companyID][t] = e
	return nil
}

type fakeEmployeeRepo struct {
	employees []employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id && e.CompanyID == companyID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) ListActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ========== HELPERS ==========

func newTestService(t *testing.T) (*LeaveServiceImpl, *fakeRequestRepo) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authorizer, err := authz.NewAuthorizer(user.RolePermissions, logger)
	require.NoError(t, err)

	repo := newFakeRequestRepo()
	employees := &fakeEmployeeRepo{employees: []employee.Employee{
		{ID: employeeA, CompanyID: testCompanyID, FullName: "Aung Aung"},
		{ID: employeeB, CompanyID: testCompanyID, FullName: "Su Su"},
	}}
	ents := &fakeEntitlementRepo{overrides: map[string]map[leave.LeaveType]leave.Entitlement{}}

	svc := NewLeaveService(repo, ents, employees, authorizer, events.NopPublisher{}, logger)
	return svc, repo
}

func actorContext(t *testing.T, actor user.Actor) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	claims := map[string]interface{}{
		"user_id":    actor.UserID,
		"company_id": actor.CompanyID,
		"role":       string(actor.Role),
		"type":       "access",
	}
	if actor.EmployeeID != "" {
		claims["employee_id"] = actor.EmployeeID
	}
	token, _, err := ja.Encode(claims)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func employeeContext(t *testing.T, employeeID string) context.Context {
	return actorContext(t, user.Actor{UserID: "user-" + employeeID, EmployeeID: employeeID, CompanyID: testCompanyID, Role: user.RoleEmployee})
}

func hrContext(t *testing.T) context.Context {
	return actorContext(t, user.Actor{UserID: "user-hr", CompanyID: testCompanyID, Role: user.RoleHR})
}

func fileAndApprove(t *testing.T, svc *LeaveServiceImpl, employeeID, leaveType, start, end string) leave.LeaveRequestResponse {
	t.Helper()
	filed, err := svc.FileRequest(employeeContext(t, employeeID), leave.CreateLeaveRequest{
		LeaveType: leaveType, StartDate: start, EndDate: end, Reason: "family",
	})
	require.NoError(t, err)
	approved, err := svc.Approve(hrContext(t), filed.ID)
	require.NoError(t, err)
	return approved
}

// ========== TESTS ==========

func TestFileRequest(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.FileRequest(employeeContext(t, employeeA), leave.CreateLeaveRequest{
		LeaveType: "annual", StartDate: "2025-03-03", EndDate: "2025-03-05", Reason: "trip",
	})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, got.Status)
	assert.Equal(t, leave.LeaveTypeEarned, got.LeaveType)
	assert.Equal(t, 3, got.TotalDays)
	assert.Equal(t, employeeA, got.EmployeeID)
	require.NotNil(t, got.EmployeeName)
	assert.Equal(t, "Aung Aung", *got.EmployeeName)
}

func TestFileRequest_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := employeeContext(t, employeeA)

	_, err := svc.FileRequest(ctx, leave.CreateLeaveRequest{
		LeaveType: "casual", StartDate: "2025-03-05", EndDate: "2025-03-03", Reason: "x",
	})
	assert.ErrorIs(t, err, leave.ErrInvalidRange)

	_, err = svc.FileRequest(ctx, leave.CreateLeaveRequest{
		LeaveType: "sabbatical", StartDate: "2025-03-05", EndDate: "2025-03-06", Reason: "x",
	})
	assert.Error(t, err)

	_, err = svc.FileRequest(ctx, leave.CreateLeaveRequest{
		EmployeeID: employeeB, LeaveType: "casual", StartDate: "2025-03-05", EndDate: "2025-03-06", Reason: "x",
	})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	onBehalf, err := svc.FileRequest(hrContext(t), leave.CreateLeaveRequest{
		EmployeeID: employeeB, LeaveType: "sick", StartDate: "2025-03-05", EndDate: "2025-03-05", Reason: "flu",
	})
	require.NoError(t, err)
	assert.Equal(t, employeeB, onBehalf.EmployeeID)

	_, err = svc.FileRequest(hrContext(t), leave.CreateLeaveRequest{
		LeaveType: "sick", StartDate: "2025-03-05", EndDate: "2025-03-05", Reason: "flu",
	})
	assert.ErrorIs(t, err, user.ErrEmployeeRequired)
}

func TestDecide(t *testing.T) {
	svc, _ := newTestService(t)
	hr := hrContext(t)

	filed, err := svc.FileRequest(employeeContext(t, employeeA), leave.CreateLeaveRequest{
		LeaveType: "casual", StartDate: "2025-03-03", EndDate: "2025-03-03", Reason: "errand",
	})
	require.NoError(t, err)

	_, err = svc.Reject(hr, leave.RejectLeaveRequest{ID: filed.ID})
	assert.ErrorIs(t, err, leave.ErrRejectReasonRequired)

	rejected, err := svc.Reject(hr, leave.RejectLeaveRequest{ID: filed.ID, Reason: "busy season"})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectReason)
	assert.Equal(t, "busy season", *rejected.RejectReason)

	_, err = svc.Approve(hr, filed.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidState)

	_, err = svc.Approve(hr, "missing")
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestDecide_ConcurrentExactlyOneWins(t *testing.T) {
	svc, _ := newTestService(t)
	hr := hrContext(t)

	filed, err := svc.FileRequest(employeeContext(t, employeeA), leave.CreateLeaveRequest{
		LeaveType: "casual", StartDate: "2025-03-03", EndDate: "2025-03-04", Reason: "errand",
	})
	require.NoError(t, err)

	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = svc.Approve(hr, filed.ID)
			} else {
				_, err = svc.Reject(hr, leave.RejectLeaveRequest{ID: filed.ID, Reason: "no"})
			}
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, leave.ErrInvalidState):
				conflicts.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(9), conflicts.Load())
}

func TestBalanceFor_CasualScenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := employeeContext(t, employeeA)

	fileAndApprove(t, svc, employeeA, "casual", "2025-02-03", "2025-02-04")
	fileAndApprove(t, svc, employeeA, "casual", "2025-05-12", "2025-05-14")

	got, err := svc.BalanceFor(ctx, "", 2025)
	require.NoError(t, err)
	assert.Equal(t, leave.BalanceItem{Total: 6, Used: 5, Remaining: 1}, got.Balances[leave.LeaveTypeCasual])

	fileAndApprove(t, svc, employeeA, "casual", "2025-09-01", "2025-09-02")

	got, err = svc.BalanceFor(ctx, employeeA, 2025)
	require.NoError(t, err)
	casual := got.Balances[leave.LeaveTypeCasual]
	assert.Equal(t, 7, casual.Used)
	assert.Equal(t, 0, casual.Remaining)
	assert.True(t, casual.OverAllocated)

	next, err := svc.BalanceFor(ctx, employeeA, 2026)
	require.NoError(t, err)
	assert.Equal(t, 0, next.Balances[leave.LeaveTypeCasual].Used)
}

func TestBalanceFor_Access(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.BalanceFor(employeeContext(t, employeeA), employeeB, 2025)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = svc.BalanceFor(hrContext(t), employeeB, 2025)
	assert.NoError(t, err)

	_, err = svc.BalanceFor(hrContext(t), "", 2025)
	assert.ErrorIs(t, err, user.ErrEmployeeRequired)
}

func TestSetEntitlement_OverridesDefault(t *testing.T) {
	svc, _ := newTestService(t)
	hr := hrContext(t)

	days := 8
	require.NoError(t, svc.SetEntitlement(hr, leave.SetEntitlementRequest{LeaveType: "casual", TotalDays: &days}))
	require.NoError(t, svc.SetEntitlement(hr, leave.SetEntitlementRequest{LeaveType: "sick"}))

	got, err := svc.BalanceFor(hr, employeeA, 2025)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Balances[leave.LeaveTypeCasual].Remaining)
	assert.True(t, got.Balances[leave.LeaveTypeSick].Unlimited)
	assert.Equal(t, 10, got.Balances[leave.LeaveTypeEarned].Total)
}

func TestAnalytics_MatchesPerEmployeeBalances(t *testing.T) {
	svc, _ := newTestService(t)
	hr := hrContext(t)

	fileAndApprove(t, svc, employeeA, "casual", "2025-02-03", "2025-02-04")
	fileAndApprove(t, svc, employeeB, "casual", "2025-02-05", "2025-02-05")
	fileAndApprove(t, svc, employeeB, "sick", "2025-06-01", "2025-06-03")

	got, err := svc.Analytics(hr, 2025)
	require.NoError(t, err)
	require.Len(t, got.Employees, 2)
	assert.Equal(t, 3, got.TotalUsed[leave.LeaveTypeCasual])
	assert.Equal(t, 3, got.TotalUsed[leave.LeaveTypeSick])

	for _, e := range got.Employees {
		single, err := svc.BalanceFor(hr, e.EmployeeID, 2025)
		require.NoError(t, err)
		assert.Equal(t, single.Balances, e.Leaves, e.EmployeeID)
	}
}

func TestListRequests_ScopedForEmployees(t *testing.T) {
	svc, _ := newTestService(t)

	fileAndApprove(t, svc, employeeA, "casual", "2025-02-03", "2025-02-04")
	fileAndApprove(t, svc, employeeB, "casual", "2025-02-05", "2025-02-05")

	mine, err := svc.ListRequests(employeeContext(t, employeeA), leave.LeaveRequestFilter{})
	require.NoError(t, err)
	require.Len(t, mine.Requests, 1)
	assert.Equal(t, employeeA, mine.Requests[0].EmployeeID)

	all, err := svc.ListRequests(hrContext(t), leave.LeaveRequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Requests, 2)
	assert.Equal(t, 1, all.TotalPages)

	_, err = svc.GetRequest(employeeContext(t, employeeA), all.Requests[1].ID)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}
