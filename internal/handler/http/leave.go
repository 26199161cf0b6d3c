package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/simplehr/simplehr-backend-go/internal/domain/leave"
	"github.com/simplehr/simplehr-backend-go/internal/handler/http/response"
)

const leaveNotFound = "Leave request not found"

type LeaveHandler interface {
	// Requests
	FileRequest(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)

	// Balances
	Balance(w http.ResponseWriter, r *http.Request)
	Analytics(w http.ResponseWriter, r *http.Request)
	SetEntitlement(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &leaveHandlerImpl{leaveService: leaveService}
}

// ========== REQUESTS ==========

func (h *leaveHandlerImpl) FileRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.leaveService.FileRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", result)
}

func (h *leaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := leave.LeaveRequestFilter{Page: 1, Limit: 20}

	if pageStr := query.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if status := query.Get("status"); status != "" {
		s := leave.RequestStatus(status)
		filter.Status = &s
	}
	if leaveType := query.Get("leaveType"); leaveType != "" {
		lt, ok := leave.ParseLeaveType(leaveType)
		if !ok {
			response.BadRequest(w, "Invalid leave type", map[string]string{"leaveType": "is not a valid leave type"})
			return
		}
		filter.LeaveType = &lt
	}
	employeeID, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	if employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if yearStr := query.Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(w, "Invalid year", map[string]string{"year": "must be a number"})
			return
		}
		filter.Year = &year
	}

	result, err := h.leaveService.ListRequests(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Requests, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

func (h *leaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, leaveNotFound)
	if !ok {
		return
	}

	result, err := h.leaveService.GetRequest(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *leaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, leaveNotFound)
	if !ok {
		return
	}

	result, err := h.leaveService.Approve(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request approved", result)
}

func (h *leaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, leaveNotFound)
	if !ok {
		return
	}

	var req leave.RejectLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.leaveService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request rejected", result)
}

// ========== BALANCES ==========

func (h *leaveHandlerImpl) Balance(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	employeeID, ok := employeeIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.leaveService.BalanceFor(r.Context(), employeeID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *leaveHandlerImpl) Analytics(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	result, err := h.leaveService.Analytics(r.Context(), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *leaveHandlerImpl) SetEntitlement(w http.ResponseWriter, r *http.Request) {
	var req leave.SetEntitlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.leaveService.SetEntitlement(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave entitlement updated", nil)
}

// yearParam reads ?year=, defaulting to the current year.
func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		return time.Now().Year(), true
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		response.BadRequest(w, "Invalid year", map[string]string{"year": "must be a number"})
		return 0, false
	}
	return year, true
}
