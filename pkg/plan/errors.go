package plan

import "errors"

var (
	ErrPlanNotFound      = errors.New("plan not found")
	ErrFeatureNotFound   = errors.New("plan feature not found")
	ErrInvalidPlan       = errors.New("invalid plan configuration")
	ErrInvalidFeature    = errors.New("invalid feature configuration")
	ErrInvalidMoney      = errors.New("invalid monetary amount")
	ErrDuplicatePlan     = errors.New("duplicate plan slug")
	ErrDuplicateFeature  = errors.New("duplicate feature slug within plan")
	ErrFailedToLoadPlans = errors.New("failed to load plan catalog")
)
