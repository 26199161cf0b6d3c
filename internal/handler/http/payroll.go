package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/simplehr/simplehr-backend-go/internal/domain/payroll"
	"github.com/simplehr/simplehr-backend-go/internal/handler/http/response"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/validator"
)

const payrollNotFound = "Payroll record not found"

type PayrollHandler interface {
	// Records
	Generate(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)

	// Lifecycle
	Confirm(w http.ResponseWriter, r *http.Request)
	Pay(w http.ResponseWriter, r *http.Request)
	StartPayment(w http.ResponseWriter, r *http.Request)
	CompletePayment(w http.ResponseWriter, r *http.Request)
	Fail(w http.ResponseWriter, r *http.Request)
	Retry(w http.ResponseWriter, r *http.Request)

	// Analytics
	SalaryAnalytics(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== RECORDS ==========

func (h *payrollHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var req payroll.GeneratePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.Generate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll generated", result)
}

func (h *payrollHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, payrollNotFound)
	if !ok {
		return
	}

	result, err := h.payrollService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := parsePayrollFilter(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Records, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

func (h *payrollHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	filter, ok := parsePayrollFilter(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.ListMine(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Records, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

func parsePayrollFilter(w http.ResponseWriter, r *http.Request) (payroll.PayrollFilter, bool) {
	query := r.URL.Query()
	filter := payroll.PayrollFilter{Page: 1, Limit: 20}

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
	if monthStr := query.Get("month"); monthStr != "" {
		month, ok := validator.ParseIntInRange(monthStr, 1, 12)
		if !ok {
			response.BadRequest(w, "Invalid month", map[string]string{"month": "must be between 1 and 12"})
			return filter, false
		}
		filter.Month = &month
	}
	if yearStr := query.Get("year"); yearStr != "" {
		year, ok := validator.ParseIntInRange(yearStr, 2000, 2100)
		if !ok {
			response.BadRequest(w, "Invalid year", map[string]string{"year": "must be between 2000 and 2100"})
			return filter, false
		}
		filter.Year = &year
	}
	if status := query.Get("status"); status != "" {
		s := payroll.PayrollStatus(status)
		filter.Status = &s
	}
	employeeID, ok := employeeIDParam(w, r)
	if !ok {
		return filter, false
	}
	if employeeID != "" {
		filter.EmployeeID = &employeeID
	}

	return filter, true
}

// ========== LIFECYCLE ==========

func (h *payrollHandlerImpl) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, payrollNotFound)
	if !ok {
		return
	}

	var req payroll.ConfirmPayrollRequest
	// An empty body is allowed; it only carries the shortfall acknowledgement.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.payrollService.Confirm(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll confirmed", result)
}

func (h *payrollHandlerImpl) Pay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, payrollNotFound)
	if !ok {
		return
	}

	var req payroll.PayPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.payrollService.Pay(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll paid", result)
}

func (h *payrollHandlerImpl) StartPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, payrollNotFound)
	if !ok {
		return
	}

	var req payroll.PayPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.payrollService.StartPayment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment processing", result)
}

func (h *payrollHandlerImpl) CompletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, payrollNotFound)
	if !ok {
		return
	}

	var req payroll.CompletePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.payrollService.CompletePayment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll paid", result)
}

func (h *payrollHandlerImpl) Fail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, payrollNotFound)
	if !ok {
		return
	}

	var req payroll.FailPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.payrollService.Fail(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment marked as failed", result)
}

func (h *payrollHandlerImpl) Retry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, payrollNotFound)
	if !ok {
		return
	}

	result, err := h.payrollService.Retry(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll returned to confirmed", result)
}

// ========== ANALYTICS ==========

func (h *payrollHandlerImpl) SalaryAnalytics(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.SalaryAnalytics(r.Context(), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
