package errors

import "net/http"

var ErrPlanNotFound = &Exception{
	Message:    "daily plan not found",
	StatusCode: http.StatusNotFound,
}
