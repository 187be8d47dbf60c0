// Package validation checks API requests and configuration sections before
// they reach the analysis core, which assumes well-formed parameters.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/cluso-resilience/pkg/robustness"
)

var (
	// validate is a singleton validator instance
	validate = newValidator()

	// ErrInvalidRequest wraps every request validation failure
	ErrInvalidRequest = errors.New("invalid request")
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// fractions: a removal-fraction axis, each value in [0, 1], non-decreasing
	if err := v.RegisterValidation("fractions", func(fl validator.FieldLevel) bool {
		fracs, ok := fl.Field().Interface().([]float64)
		return ok && robustness.ValidFractions(fracs)
	}); err != nil {
		panic(err)
	}
	return v
}

// Request bounds
const (
	MaxK          = 5000
	MaxCandidates = 200000
	MaxRuns       = 1000
	MaxFractions  = 101
	MaxTrials     = 1000000
	// MaxDistanceKM is half the Earth's circumference, rounded up
	MaxDistanceKM = 20100
)

// BBoxRequest carries the optional region filter shared by analysis endpoints
type BBoxRequest struct {
	MinLat *float64 `json:"minLat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	MaxLat *float64 `json:"maxLat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	MinLon *float64 `json:"minLon,omitempty" validate:"omitempty,gte=-180,lte=180"`
	MaxLon *float64 `json:"maxLon,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// SimulateRequest is the body of POST /simulate
type SimulateRequest struct {
	BBoxRequest
	Strategy  string    `json:"strategy" validate:"required,oneof=random degree betweenness pagerank random_attack degree_targeted_attack betweenness_targeted_attack pagerank_targeted_attack"`
	Fractions []float64 `json:"fractions,omitempty" validate:"omitempty,max=101,fractions"`
	Runs      int       `json:"runs,omitempty" validate:"omitempty,min=1,max=1000"`
	Seed      int64     `json:"seed,omitempty"`
	Adaptive  *bool     `json:"adaptive,omitempty"`
}

// ReinforceRequest parameterizes the effective-resistance defense
type ReinforceRequest struct {
	BBoxRequest
	K             int     `json:"k" validate:"min=0,max=5000"`
	MaxCandidates int     `json:"max_candidates,omitempty" validate:"omitempty,min=1,max=200000"`
	MaxDistanceKM float64 `json:"max_distance_km" validate:"gte=0,lte=20100"`
	Seed          int64   `json:"seed"`
	Strategy      string  `json:"attack_strategy" validate:"required,oneof=random degree betweenness pagerank random_attack degree_targeted_attack betweenness_targeted_attack pagerank_targeted_attack"`
}

// SwapRequest parameterizes the edge-swap optimizer
type SwapRequest struct {
	BBoxRequest
	MaxTrials int     `json:"max_trials" validate:"min=1,max=1000000"`
	Patience  int     `json:"patience" validate:"min=1"`
	MinDeltaR float64 `json:"min_delta_r" validate:"gte=0"`
	Seed      int64   `json:"seed"`
	Prefilter bool    `json:"prefilter"`
	Strategy  string  `json:"attack_strategy" validate:"required,oneof=random degree betweenness pagerank random_attack degree_targeted_attack betweenness_targeted_attack pagerank_targeted_attack"`
}

// RedundancyRequest parameterizes the redundancy advisor
type RedundancyRequest struct {
	BBoxRequest
	M             int     `json:"m" validate:"min=1,max=500"`
	MaxDistanceKM float64 `json:"max_distance_km" validate:"gte=0,lte=20100"`
}

// TopKRequest parameterizes the top-k impact report
type TopKRequest struct {
	BBoxRequest
	By string `json:"by" validate:"required,oneof=degree betweenness"`
	K  int    `json:"k" validate:"min=1,max=500"`
}

// ImpactRequest parameterizes the multi-strategy attack impact report
type ImpactRequest struct {
	BBoxRequest
	Region string `json:"region,omitempty" validate:"omitempty,oneof=southeast-asia asia europe north-america"`
	Runs   int    `json:"n_runs" validate:"min=1,max=1000"`
}

// CustomImpactRequest parameterizes a single-strategy impact report
type CustomImpactRequest struct {
	BBoxRequest
	Strategy    string  `json:"strategy" validate:"required,oneof=random degree betweenness pagerank random_attack degree_targeted_attack betweenness_targeted_attack pagerank_targeted_attack"`
	MaxFraction float64 `json:"max_fraction" validate:"gt=0,lte=1"`
	Runs        int     `json:"n_runs" validate:"min=1,max=1000"`
}

// HubsRequest parameterizes the top hub ranking
type HubsRequest struct {
	BBoxRequest
	K int `json:"k" validate:"min=1,max=500"`
}

// RouteRequest names two airports by IATA or ICAO code
type RouteRequest struct {
	Source      string `json:"src" validate:"required,alphanum,min=3,max=4"`
	Target      string `json:"dst" validate:"required,alphanum,min=3,max=4,nefield=Source"`
	WithDefense bool   `json:"with_defense"`
}

// RouteAttackRequest parameterizes the route attack case study
type RouteAttackRequest struct {
	RouteRequest
	Method string   `json:"defense_method" validate:"required,oneof=ter swap"`
	K      int      `json:"defense_k" validate:"min=0,max=5000"`
	Combo  []string `json:"combo_iata,omitempty" validate:"omitempty,max=20,dive,alphanum,min=3,max=4"`
}

// Struct validates any request struct by its tags, plus the bbox ordering
// when the request embeds one.
func Struct(req any) error {
	if req == nil {
		return fmt.Errorf("%w: request cannot be nil", ErrInvalidRequest)
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if b, ok := bboxOf(req); ok {
		return ValidateBBox(b)
	}
	return nil
}

func bboxOf(req any) (BBoxRequest, bool) {
	switch r := req.(type) {
	case *BBoxRequest:
		return *r, true
	case *SimulateRequest:
		return r.BBoxRequest, true
	case *ReinforceRequest:
		return r.BBoxRequest, true
	case *SwapRequest:
		return r.BBoxRequest, true
	case *RedundancyRequest:
		return r.BBoxRequest, true
	case *TopKRequest:
		return r.BBoxRequest, true
	case *ImpactRequest:
		return r.BBoxRequest, true
	case *CustomImpactRequest:
		return r.BBoxRequest, true
	case *HubsRequest:
		return r.BBoxRequest, true
	}
	return BBoxRequest{}, false
}

// ValidateBBox checks ranges and that each minimum does not exceed its maximum
func ValidateBBox(b BBoxRequest) error {
	if err := validate.Struct(&b); err != nil {
		return formatValidationError(err)
	}
	if b.MinLat != nil && b.MaxLat != nil && *b.MinLat > *b.MaxLat {
		return fmt.Errorf("%w: minLat %g exceeds maxLat %g", ErrInvalidRequest, *b.MinLat, *b.MaxLat)
	}
	if b.MinLon != nil && b.MaxLon != nil && *b.MinLon > *b.MaxLon {
		return fmt.Errorf("%w: minLon %g exceeds maxLon %g", ErrInvalidRequest, *b.MinLon, *b.MaxLon)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		var msg string
		switch e.Tag() {
		case "required":
			msg = fmt.Sprintf("%s: field is required", field)
		case "min", "gte":
			msg = fmt.Sprintf("%s: must be at least %s", field, param)
		case "max", "lte":
			msg = fmt.Sprintf("%s: must not exceed %s", field, param)
		case "oneof":
			msg = fmt.Sprintf("%s: must be one of [%s]", field, param)
		case "nefield":
			msg = fmt.Sprintf("%s: must differ from %s", field, param)
		case "fractions":
			msg = fmt.Sprintf("%s: must be non-decreasing values in [0, 1]", field)
		case "alphanum":
			msg = fmt.Sprintf("%s: must be alphanumeric", field)
		default:
			msg = fmt.Sprintf("%s: validation failed (%s)", field, e.Tag())
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
}
