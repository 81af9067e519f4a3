package errors

import "net/http"

var ErrPlanNotSubmitted = &Exception{
	Message:    "plan has not been submitted",
	StatusCode: http.StatusConflict,
}
