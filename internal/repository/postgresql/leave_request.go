package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/simplehr/simplehr-backend-go/internal/domain/leave"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.company_id, lr.employee_id, lr.leave_type,
	lr.start_date, lr.end_date, lr.total_days, lr.reason,
	lr.status, lr.reject_reason, lr.decided_by, lr.decided_at,
	lr.created_at, lr.updated_at,
	e.full_name`

func scanLeaveRequest(row rowScanner) (leave.LeaveRequest, error) {
	var req leave.LeaveRequest
	var leaveType, status string
	err := row.Scan(
		&req.ID, &req.CompanyID, &req.EmployeeID, &leaveType,
		&req.StartDate, &req.EndDate, &req.TotalDays, &req.Reason,
		&status, &req.RejectReason, &req.DecidedBy, &req.DecidedAt,
		&req.CreatedAt, &req.UpdatedAt,
		&req.EmployeeName,
	)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	req.LeaveType = leave.LeaveType(leaveType)
	req.Status = leave.RequestStatus(status)
	return req, nil
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			id, company_id, employee_id, leave_type,
			start_date, end_date, total_days, reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.ID, request.CompanyID, request.EmployeeID, string(request.LeaveType),
		request.StartDate, request.EndDate, request.TotalDays, request.Reason, string(request.Status),
	).Scan(&request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to insert leave request: %w", err)
	}

	return request, nil
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests lr
		JOIN employees e ON lr.employee_id = e.id
		WHERE lr.id = $1 AND lr.company_id = $2
	`, leaveRequestColumns)

	req, err := scanLeaveRequest(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return req, nil
}

func (r *leaveRequestRepositoryImpl) List(ctx context.Context, companyID string, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE lr.company_id = $1"
	args := []interface{}{companyID}
	argIndex := 2

	if filter.EmployeeID != nil {
		whereClause += fmt.Sprintf(" AND lr.employee_id = $%d", argIndex)
		args = append(args, *filter.EmployeeID)
		argIndex++
	}
	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND lr.status = $%d", argIndex)
		args = append(args, string(*filter.Status))
		argIndex++
	}
	if filter.LeaveType != nil {
		whereClause += fmt.Sprintf(" AND lr.leave_type = $%d", argIndex)
		args = append(args, string(*filter.LeaveType))
		argIndex++
	}
	if filter.Year != nil {
		whereClause += fmt.Sprintf(" AND EXTRACT(YEAR FROM lr.start_date) = $%d", argIndex)
		args = append(args, *filter.Year)
		argIndex++
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM leave_requests lr %s`, whereClause)
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests lr
		JOIN employees e ON lr.employee_id = e.id
		%s
		ORDER BY lr.start_date DESC, lr.created_at DESC
		LIMIT $%d OFFSET $%d
	`, leaveRequestColumns, whereClause, argIndex, argIndex+1)
	args = append(args, filter.Limit, offset)

	requests, err := r.queryRequests(ctx, q, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// Decide is a single conditional UPDATE, so concurrent deciders cannot both win.
func (r *leaveRequestRepositoryImpl) Decide(ctx context.Context, d leave.Decision) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $3, reject_reason = $4, decided_by = $5, decided_at = $6, updated_at = $6
		WHERE id = $1 AND company_id = $2 AND status = 'pending'
		RETURNING id
	`

	var decidedBy *string
	if d.DecidedBy != "" {
		decidedBy = &d.DecidedBy
	}

	var id string
	err := q.QueryRow(ctx, query, d.RequestID, d.CompanyID, string(d.Status), d.RejectReason, decidedBy, d.DecidedAt).Scan(&id)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, fmt.Errorf("failed to decide leave request: %w", err)
		}
		if _, getErr := r.GetByID(ctx, d.RequestID, d.CompanyID); getErr != nil {
			return leave.LeaveRequest{}, getErr
		}
		return leave.LeaveRequest{}, leave.ErrInvalidState
	}

	return r.GetByID(ctx, id, d.CompanyID)
}

func (r *leaveRequestRepositoryImpl) ListApprovedByStartYear(ctx context.Context, companyID, employeeID string, year int) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	from, to := yearBounds(year)
	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests lr
		JOIN employees e ON lr.employee_id = e.id
		WHERE lr.company_id = $1 AND lr.status = 'approved'
		  AND lr.start_date >= $2 AND lr.start_date < $3
		  AND ($4 = '' OR lr.employee_id::TEXT = $4)
		ORDER BY lr.employee_id, lr.start_date
	`, leaveRequestColumns)

	return r.queryRequests(ctx, q, query, companyID, from, to, employeeID)
}

func (r *leaveRequestRepositoryImpl) SumApprovedDaysByType(ctx context.Context, companyID, employeeID string, year int) (map[leave.LeaveType]int, error) {
	q := GetQuerier(ctx, r.db)

	from, to := yearBounds(year)
	query := `
		SELECT leave_type, COALESCE(SUM(total_days), 0)::INT
		FROM leave_requests
		WHERE company_id = $1 AND employee_id = $2 AND status = 'approved'
		  AND start_date >= $3 AND start_date < $4
		GROUP BY leave_type
	`

	rows, err := q.Query(ctx, query, companyID, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum approved leave: %w", err)
	}
	defer rows.Close()

	used := make(map[leave.LeaveType]int)
	for rows.Next() {
		var leaveType string
		var days int
		if err := rows.Scan(&leaveType, &days); err != nil {
			return nil, err
		}
		used[leave.LeaveType(leaveType)] = days
	}
	return used, rows.Err()
}

func (r *leaveRequestRepositoryImpl) ListApprovedOverlapping(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests lr
		JOIN employees e ON lr.employee_id = e.id
		WHERE lr.company_id = $1 AND lr.employee_id = $2 AND lr.status = 'approved'
		  AND lr.start_date <= $4 AND lr.end_date >= $3
		ORDER BY lr.start_date
	`, leaveRequestColumns)

	return r.queryRequests(ctx, q, query, companyID, employeeID, from, to)
}

func (r *leaveRequestRepositoryImpl) queryRequests(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]leave.LeaveRequest, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func yearBounds(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}
