package attendance

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/simplehr/simplehr-backend-go/internal/domain/attendance"
	"github.com/simplehr/simplehr-backend-go/internal/domain/employee"
	"github.com/simplehr/simplehr-backend-go/internal/domain/user"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/authz"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Employee ids are UUIDs, as the API requires.
const (
	employeeA       = "0195a3c0-1d2e-7a4b-8c01-000000000001"
	employeeB       = "0195a3c0-1d2e-7a4b-8c01-000000000002"
	employeeUnknown = "0195a3c0-1d2e-7a4b-8c01-000000000009"
)

const testCompanyID = "company-1"

type recordingAttendanceRepo struct {
	stubAttendanceRepo
	days []attendance.Day
}

func (r *recordingAttendanceRepo) Upsert(ctx context.Context, day attendance.Day) error {
	r.days = append(r.days, day)
	return nil
}

type fakeEmployeeRepo struct{}

func (fakeEmployeeRepo) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	if companyID == testCompanyID && (id == employeeA || id == employeeB) {
		return employee.Employee{ID: id, CompanyID: companyID}, nil
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (fakeEmployeeRepo) ListActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return nil, nil
}

func newAttendanceService(t *testing.T) (*AttendanceServiceImpl, *recordingAttendanceRepo) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authorizer, err := authz.NewAuthorizer(user.RolePermissions, logger)
	require.NoError(t, err)

	repo := &recordingAttendanceRepo{stubAttendanceRepo: stubAttendanceRepo{counts: attendance.Counts{Present: 20}}}
	aggregator := NewAggregator(repo, stubLeaveRepo{}, weekdays, logger)
	return NewAttendanceService(repo, fakeEmployeeRepo{}, aggregator, authorizer, logger), repo
}

func actorContext(t *testing.T, role user.Role, employeeID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	claims := map[string]interface{}{
		"user_id":    "user-1",
		"company_id": testCompanyID,
		"role":       string(role),
		"type":       "access",
	}
	if employeeID != "" {
		claims["employee_id"] = employeeID
	}
	token, _, err := ja.Encode(claims)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func TestRecordDay(t *testing.T) {
	svc, repo := newAttendanceService(t)

	err := svc.RecordDay(actorContext(t, user.RoleHR, ""), attendance.RecordDayRequest{
		EmployeeID: employeeA, Date: "2025-02-03", Status: "late",
	})
	require.NoError(t, err)

	require.Len(t, repo.days, 1)
	assert.Equal(t, attendance.Day{
		EmployeeID: employeeA,
		CompanyID:  testCompanyID,
		WorkDate:   time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
		Status:     attendance.DayStatusLate,
	}, repo.days[0])
}

func TestRecordDay_Errors(t *testing.T) {
	svc, repo := newAttendanceService(t)
	ctx := actorContext(t, user.RoleHR, "")

	err := svc.RecordDay(ctx, attendance.RecordDayRequest{EmployeeID: employeeA, Date: "03/02/2025", Status: "sleeping"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)

	err = svc.RecordDay(ctx, attendance.RecordDayRequest{EmployeeID: employeeUnknown, Date: "2025-02-03", Status: "present"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	assert.Empty(t, repo.days)
}

func TestSummary(t *testing.T) {
	svc, _ := newAttendanceService(t)

	got, err := svc.Summary(actorContext(t, user.RoleEmployee, employeeA), "", 2, 2025)
	require.NoError(t, err)
	assert.Equal(t, attendance.SummaryResponse{
		EmployeeID: employeeA, Month: 2, Year: 2025,
		WorkingDays: 20, PresentDays: 20,
	}, got)
}

func TestSummary_Access(t *testing.T) {
	svc, _ := newAttendanceService(t)

	_, err := svc.Summary(actorContext(t, user.RoleEmployee, employeeA), employeeB, 2, 2025)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	got, err := svc.Summary(actorContext(t, user.RoleHR, ""), employeeB, 2, 2025)
	require.NoError(t, err)
	assert.Equal(t, employeeB, got.EmployeeID)

	_, err = svc.Summary(actorContext(t, user.RoleHR, ""), "", 2, 2025)
	assert.ErrorIs(t, err, user.ErrEmployeeRequired)

	_, err = svc.Summary(actorContext(t, user.RoleHR, ""), employeeB, 13, 2025)
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
