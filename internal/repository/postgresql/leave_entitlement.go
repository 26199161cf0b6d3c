package postgresql

import (
	"context"
	"fmt"

	"github.com/simplehr/simplehr-backend-go/internal/domain/leave"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/database"
)

type leaveEntitlementRepository struct {
	db *database.DB
}

func NewLeaveEntitlementRepository(db *database.DB) leave.EntitlementRepository {
	return &leaveEntitlementRepository{db: db}
}

func (r *leaveEntitlementRepository) GetByCompanyID(ctx context.Context, companyID string) (map[leave.LeaveType]leave.Entitlement, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT leave_type, total_days
		FROM leave_entitlements
		WHERE company_id = $1
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get leave entitlements: %w", err)
	}
	defer rows.Close()

	overrides := make(map[leave.LeaveType]leave.Entitlement)
	for rows.Next() {
		var leaveType string
		var totalDays *int
		if err := rows.Scan(&leaveType, &totalDays); err != nil {
			return nil, err
		}
		e := leave.Entitlement{Unlimited: totalDays == nil}
		if totalDays != nil {
			e.Total = *totalDays
		}
		overrides[leave.LeaveType(leaveType)] = e
	}
	return overrides, rows.Err()
}

func (r *leaveEntitlementRepository) Upsert(ctx context.Context, companyID string, leaveType leave.LeaveType, e leave.Entitlement) error {
	q := GetQuerier(ctx, r.db)

	var totalDays *int
	if !e.Unlimited {
		totalDays = &e.Total
	}

	_, err := q.Exec(ctx, `
		INSERT INTO leave_entitlements (company_id, leave_type, total_days, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (company_id, leave_type)
		DO UPDATE SET total_days = EXCLUDED.total_days, updated_at = NOW()
	`, companyID, string(leaveType), totalDays)
	if err != nil {
		return fmt.Errorf("failed to upsert leave entitlement: %w", err)
	}
	return nil
}
