package pearch

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SearchType selects the depth of a search.
type SearchType string

const (
	// SearchFast returns basic results quickly.
	SearchFast SearchType = "fast"
	// SearchPro runs a comprehensive search.
	SearchPro SearchType = "pro"
)

// DefaultLimit is the result limit used when none is given.
const DefaultLimit = 50

// Params holds the raw per-item values a caller supplies for one search.
//
// Zero values mean "not set": Limit 0 becomes [DefaultLimit], an empty Type
// is omitted from the request, and zero MaxWaitTime or PollingInterval take
// the [DefaultPollConfig] values. TaskID is only read by the status
// operation.
type Params struct {
	Query            string
	Limit            int
	Type             string
	Insights         bool
	HighFreshness    bool
	ShowEmails       bool
	ShowPhoneNumbers bool
	ProfileScoring   bool

	// MaxWaitTime is the poll deadline in seconds.
	MaxWaitTime int
	// PollingInterval is the delay between status checks in seconds.
	PollingInterval int

	TaskID string
}

// SearchRequest is the JSON body sent to the submit endpoint.
//
// The boolean feature flags are always encoded, including false values; Type
// is encoded only when set.
type SearchRequest struct {
	Query            string     `json:"query" validate:"required"`
	Limit            int        `json:"limit" validate:"min=1"`
	Type             SearchType `json:"type,omitempty" validate:"omitempty,oneof=fast pro"`
	Insights         bool       `json:"insights"`
	HighFreshness    bool       `json:"high_freshness"`
	ShowEmails       bool       `json:"show_emails"`
	ShowPhoneNumbers bool       `json:"show_phone_numbers"`
	ProfileScoring   bool       `json:"profile_scoring"`
}

// Validate checks r without touching the network.
func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return &ValidationError{Field: "query", Reason: "is required and cannot be empty"}
	}
	return validationError(validate.Struct(r))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so errors match what the service and config files call the fields
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validationError converts the first validator failure into a *ValidationError.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Reason: err.Error()}
	}
	fe := verrs[0]
	var reason string
	switch fe.Tag() {
	case "required":
		reason = "is required and cannot be empty"
	case "min":
		reason = "must be at least " + fe.Param()
	case "max":
		reason = "must be at most " + fe.Param()
	case "oneof":
		reason = "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		reason = "failed " + fe.Tag() + " validation"
	}
	return &ValidationError{Field: fe.Field(), Reason: reason}
}

// BuildRequest assembles a [SearchRequest] from raw parameters.
//
// It fails with a [*ValidationError] when the query is empty or
// whitespace-only, the limit is negative, or the type is not "fast" or
// "pro". BuildRequest is pure.
//
// Example:
//
//	req, err := pearch.BuildRequest(pearch.Params{
//	    Query: "senior Go engineers in Berlin",
//	    Type:  "pro",
//	})
func BuildRequest(p Params) (SearchRequest, error) {
	if strings.TrimSpace(p.Query) == "" {
		return SearchRequest{}, &ValidationError{Field: "query", Reason: "is required and cannot be empty"}
	}

	limit := p.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	req := SearchRequest{
		Query:            p.Query,
		Limit:            limit,
		Type:             SearchType(strings.ToLower(strings.TrimSpace(p.Type))),
		Insights:         p.Insights,
		HighFreshness:    p.HighFreshness,
		ShowEmails:       p.ShowEmails,
		ShowPhoneNumbers: p.ShowPhoneNumbers,
		ProfileScoring:   p.ProfileScoring,
	}
	if err := req.Validate(); err != nil {
		return SearchRequest{}, err
	}
	return req, nil
}
