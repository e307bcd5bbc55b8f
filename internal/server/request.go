package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/types"
)

const maxJSONBody = 1 << 20

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, "invalid request body")
	}
	return nil
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Newf("invalid %s: %q", name, r.PathValue(name))
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, errors.Newf("invalid %s: %q", name, raw)
	}
	return v, true, nil
}

// pagination reads page_number and page_size; the services apply defaults.
func pagination(r *http.Request) (types.Pagination, error) {
	var p types.Pagination
	var err error
	if p.PageNumber, _, err = queryInt(r, "page_number"); err != nil {
		return p, err
	}
	if p.PageSize, _, err = queryInt(r, "page_size"); err != nil {
		return p, err
	}
	return p, nil
}

func jobQuery(r *http.Request) (types.JobQuery, error) {
	q := r.URL.Query()
	jq := types.JobQuery{
		Search:   q.Get("search"),
		Skill:    q.Get("skill"),
		Location: q.Get("location"),
		Category: q.Get("category"),
	}
	maxExp, ok, err := queryInt(r, "max_experience")
	if err != nil {
		return jq, err
	}
	if ok {
		jq.MaxExperience = &maxExp
	}
	jq.Pagination, err = pagination(r)
	return jq, err
}

func applicationQuery(r *http.Request) (types.ApplicationQuery, error) {
	aq := types.ApplicationQuery{
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
	}
	var err error
	aq.Pagination, err = pagination(r)
	return aq, err
}
