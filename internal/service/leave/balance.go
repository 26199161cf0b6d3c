package leave

import (
	"time"

	"github.com/simplehr/simplehr-backend-go/internal/domain/leave"
)

// DaysInclusive counts calendar days from start to end, both included. The
// result is never below 1.
func DaysInclusive(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	days := int(e.Sub(s).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// MergeEntitlements overlays company overrides on the default table.
func MergeEntitlements(overrides map[leave.LeaveType]leave.Entitlement) map[leave.LeaveType]leave.Entitlement {
	merged := leave.DefaultEntitlements()
	for t, e := range overrides {
		merged[t] = e
	}
	return merged
}

// ComputeBalances derives balances from approved requests. A request counts
// entirely towards the year of its start date.
func ComputeBalances(entitlements map[leave.LeaveType]leave.Entitlement, approved []leave.LeaveRequest, year int) map[leave.LeaveType]leave.Balance {
	used := make(map[leave.LeaveType]int, len(leave.AllLeaveTypes))
	for _, r := range approved {
		if r.Status != leave.StatusApproved || r.StartDate.Year() != year {
			continue
		}
		used[r.LeaveType] += r.TotalDays
	}
	return BalancesFromUsed(entitlements, used)
}

// BalancesFromUsed builds balances from per-type used days already summed by the store.
func BalancesFromUsed(entitlements map[leave.LeaveType]leave.Entitlement, used map[leave.LeaveType]int) map[leave.LeaveType]leave.Balance {
	balances := make(map[leave.LeaveType]leave.Balance, len(leave.AllLeaveTypes))
	for _, t := range leave.AllLeaveTypes {
		ent := entitlements[t]
		b := leave.Balance{Used: used[t], Unlimited: ent.Unlimited}
		if !ent.Unlimited {
			b.Total = ent.Total
			b.Remaining = max(0, ent.Total-b.Used)
			b.OverAllocated = b.Used > ent.Total
		}
		balances[t] = b
	}
	return balances
}
