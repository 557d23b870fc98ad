package handler // handler defines http handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lumo-cinema/ticketing/internal/model"
)

// getCustomerID extracts the customer_id placed in the context by the
// identity middleware and converts it to uint64.  JWT claim values arrive
// as float64 after JSON decoding, so several numeric shapes are accepted.
func getCustomerID(c echo.Context) (uint64, error) {
	v := c.Get("customer_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid customer_id in context")
}

// pathID parses a numeric path parameter, rejecting zero.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// canonicalSeatIDs canonicalizes the wire seat identifiers of a request
// and removes duplicates.  Canonicalizing before deduplication is what
// makes "A1" and "A01" collapse into one seat instead of colliding
// later on the unique hold key or missing a hold lookup.  The first
// malformed identifier is returned alongside the error for the 400
// response.
func canonicalSeatIDs(in []string) ([]string, string, error) {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		if raw == "" {
			continue
		}
		id, err := model.CanonicalSeatID(raw)
		if err != nil {
			return nil, raw, err
		}
		out = append(out, id)
	}
	return dedupeStrings(out), "", nil
}

// dedupeStrings returns the input without duplicates or empty entries,
// preserving order.
func dedupeStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
