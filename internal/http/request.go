package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"singil/internal/core"
)

const dateLayout = "2006-01-02"

// parseRangeParams reads start_date/end_date query parameters. Both empty
// means an unbounded range (the backend defaults to the current year);
// a single bound or a malformed date is rejected.
func parseRangeParams(r *http.Request) (core.DateRange, error) {
	start := strings.TrimSpace(r.URL.Query().Get("start_date"))
	end := strings.TrimSpace(r.URL.Query().Get("end_date"))
	if start == "" && end == "" {
		return core.DateRange{}, nil
	}
	if start == "" || end == "" {
		return core.DateRange{}, fmt.Errorf("start_date and end_date must be given together")
	}

	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return core.DateRange{}, fmt.Errorf("invalid start_date %q: want YYYY-MM-DD", start)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return core.DateRange{}, fmt.Errorf("invalid end_date %q: want YYYY-MM-DD", end)
	}

	rng := core.DateRange{Start: s, End: e}
	if err := rng.Validate(); err != nil {
		return core.DateRange{}, err
	}
	return rng, nil
}

// parsePageParams reads page/page_size. Zero values mean "keep the
// paginator's current state" and "default size" respectively.
func parsePageParams(r *http.Request) (page, size int, err error) {
	if v := strings.TrimSpace(r.URL.Query().Get("page")); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil || page < 1 {
			return 0, 0, fmt.Errorf("invalid page %q: %w", v, core.ErrInvalidPage)
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("page_size")); v != "" {
		size, err = strconv.Atoi(v)
		if err != nil || size < 1 {
			return 0, 0, fmt.Errorf("invalid page_size %q: %w", v, core.ErrInvalidPage)
		}
	}
	return page, size, nil
}

// pathDepartment resolves the {dept} path segment.
func pathDepartment(r *http.Request) (core.Department, error) {
	return core.ParseDepartment(r.PathValue("dept"))
}

// pathID resolves the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// decisionBody is the shared payload of the approval endpoints.
type decisionBody struct {
	Approve bool   `json:"approve"`
	Status  string `json:"status"`
	Reason  string `json:"reason"`
}

func parseDecision(r *http.Request) (decisionBody, error) {
	var body decisionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return decisionBody{}, fmt.Errorf("invalid request body: %w", err)
	}
	body.Status = strings.TrimSpace(body.Status)
	body.Reason = strings.TrimSpace(body.Reason)
	return body, nil
}
