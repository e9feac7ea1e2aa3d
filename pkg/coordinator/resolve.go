package coordinator

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/concord/pkg/domain"
)

const (
	// MsgParseFailure replaces the details of an error response whose body is not valid JSON.
	MsgParseFailure = "Failed to parse error response."
	// MsgNoGuidance is shown on success when the body carries no usable guidance.
	MsgNoGuidance = "Successfully submitted! No specific guidance received."
	// ErrorPrefix is prepended to every error message shown to the user.
	ErrorPrefix = "Error: "
)

var errNoResponse = errors.New("no response received")

// HTTPErrorMessage is the fallback detail for an error response without details.
func HTTPErrorMessage(status int) string {
	return fmt.Sprintf("HTTP error! status: %d", status)
}

// Resolve maps the result of one client call to its outcome.
// It never fails: malformed bodies degrade to fixed fallback messages.
func Resolve(resp *domain.GuidanceResponse, err error) domain.Outcome {
	if err == nil && resp == nil {
		err = errNoResponse
	}
	if err != nil {
		return domain.Outcome{
			Status:  domain.StatusError,
			Message: ErrorPrefix + err.Error(),
			Kind:    domain.KindTransportFailure,
		}
	}

	if !resp.OK() {
		out := domain.Outcome{
			Status:     domain.StatusError,
			Kind:       domain.KindServerRejection,
			HTTPStatus: resp.StatusCode,
		}
		body, ok := decodeBody(resp.Body)
		switch {
		case !ok:
			out.Message = ErrorPrefix + MsgParseFailure
			out.Degraded = true
		case textOf(body["details"]) != "":
			out.Message = ErrorPrefix + textOf(body["details"])
		default:
			out.Message = ErrorPrefix + HTTPErrorMessage(resp.StatusCode)
			out.Degraded = true
		}
		return out
	}

	out := domain.Outcome{Status: domain.StatusSuccess, HTTPStatus: resp.StatusCode}
	body, _ := decodeBody(resp.Body)
	if g := textOf(body["guidance"]); g != "" {
		out.Message = g
	} else {
		out.Message = MsgNoGuidance
		out.Degraded = true
	}
	return out
}

// decodeBody reports whether b is valid JSON. Values other than objects
// decode to an empty map, so their fields read as missing.
func decodeBody(b []byte) (map[string]any, bool) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	m, _ := v.(map[string]any)
	return m, true
}

// textOf renders a decoded JSON value as display text.
// Falsy values (null, false, 0, "") yield "".
func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
		return "true"
	case float64:
		if t == 0 {
			return ""
		}
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
