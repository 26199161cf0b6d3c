package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/simplehr/simplehr-backend-go/internal/domain/attendance"
	"github.com/simplehr/simplehr-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	RecordDay(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// RecordDay implements AttendanceHandler.
func (h *attendanceHandlerImpl) RecordDay(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecordDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.attendanceService.RecordDay(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance recorded", nil)
}

// Summary implements AttendanceHandler.
func (h *attendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	now := time.Now()
	month, year := int(now.Month()), now.Year()

	if monthStr := query.Get("month"); monthStr != "" {
		m, err := strconv.Atoi(monthStr)
		if err != nil {
			response.BadRequest(w, "Invalid month", map[string]string{"month": "must be a number"})
			return
		}
		month = m
	}
	if yearStr := query.Get("year"); yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(w, "Invalid year", map[string]string{"year": "must be a number"})
			return
		}
		year = y
	}

	employeeID, ok := employeeIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.Summary(r.Context(), employeeID, month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
