package dto

import (
	"net/http"
	"strconv"

	"cnpgdemo/shared/constant"
	"cnpgdemo/shared/failure"
)

// Pagination is an offset window over an ordered result set.
type Pagination struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// FromRequest populates Pagination from the skip and limit query parameters,
// falling back to the defaults when a parameter is absent. Present but
// malformed or negative values are rejected.
//
// Example:
//
//	p := dto.Pagination{}
//	if err := p.FromRequest(req); err != nil { ... }
func (p *Pagination) FromRequest(r *http.Request) error {
	queryParams := r.URL.Query()

	p.Skip = constant.DefaultValueSkip
	p.Limit = constant.DefaultValueLimit

	if skip := queryParams.Get(constant.RequestParamSkip); skip != "" {
		skipInt, err := strconv.Atoi(skip)
		if err != nil || skipInt < 0 {
			return failure.InvalidSkipParam
		}

		p.Skip = skipInt
	}

	if limit := queryParams.Get(constant.RequestParamLimit); limit != "" {
		limitInt, err := strconv.Atoi(limit)
		if err != nil || limitInt < 0 {
			return failure.InvalidLimitParam
		}

		p.Limit = limitInt
	}

	return nil
}

// Clamp caps Limit at maxLimit. A maxLimit of zero or less means no cap.
func (p *Pagination) Clamp(maxLimit int) {
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
}
