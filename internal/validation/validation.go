// Package validation checks HTTP request bodies before they reach the engine.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

var (
	validate *validator.Validate

	// Content identifiers: scenario, scene, network and action IDs.
	identPattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

	// ErrInvalidRequest wraps every validation failure.
	ErrInvalidRequest = errors.New("invalid request")
)

func init() {
	validate = validator.New()
	// Report JSON field names so messages match the request body.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return identPattern.MatchString(fl.Field().String())
	})
}

type CreateSessionRequest struct {
	ScenarioID string `json:"scenarioId" validate:"required,max=100,ident"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
}

type NetworkRequest struct {
	NetworkID string `json:"networkId" validate:"required,max=100,ident"`
}

type ActionRequest struct {
	ActionID string `json:"actionId" validate:"required,max=100,ident"`
}

// PatchSessionRequest is a partial update. TimerExpired is shorthand for
// the fixed countdown penalty and is added on top of any explicit delta.
type PatchSessionRequest struct {
	CurrentSceneID    string `json:"currentSceneId" validate:"omitempty,max=100,ident"`
	SelectedNetworkID string `json:"selectedNetworkId" validate:"omitempty,max=100,ident"`
	VPNEnabled        *bool  `json:"vpnEnabled"`
	SafetyPointsDelta int    `json:"safetyPointsDelta" validate:"gte=0,lte=100"`
	RiskPointsDelta   int    `json:"riskPointsDelta" validate:"gte=0,lte=100"`
	TimerExpired      bool   `json:"timerExpired"`
	Reason            string `json:"reason" validate:"omitempty,max=64"`
}

func ValidateCreateSession(req *CreateSessionRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request cannot be nil", ErrInvalidRequest)
	}
	return structErr(validate.Struct(req))
}

func ValidateNetwork(req *NetworkRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request cannot be nil", ErrInvalidRequest)
	}
	return structErr(validate.Struct(req))
}

func ValidateAction(req *ActionRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request cannot be nil", ErrInvalidRequest)
	}
	return structErr(validate.Struct(req))
}

// ValidatePatch checks req and converts it to a session patch.
func ValidatePatch(req *PatchSessionRequest) (state.SessionPatch, error) {
	if req == nil {
		return state.SessionPatch{}, fmt.Errorf("%w: request cannot be nil", ErrInvalidRequest)
	}
	if err := structErr(validate.Struct(req)); err != nil {
		return state.SessionPatch{}, err
	}

	p := state.SessionPatch{
		CurrentSceneID:    req.CurrentSceneID,
		SelectedNetworkID: req.SelectedNetworkID,
		VPNEnabled:        req.VPNEnabled,
		SafetyPointsDelta: req.SafetyPointsDelta,
		RiskPointsDelta:   req.RiskPointsDelta,
		Reason:            req.Reason,
	}
	if req.TimerExpired {
		timer := state.TimerExpiredPatch()
		p.RiskPointsDelta += timer.RiskPointsDelta
		if p.Reason == "" {
			p.Reason = timer.Reason
		}
	}
	if p.IsEmpty() {
		return state.SessionPatch{}, fmt.Errorf("%w: patch changes nothing", ErrInvalidRequest)
	}
	return p, nil
}

// structErr converts validator errors to a user-facing message wrapping
// ErrInvalidRequest.
func structErr(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	e := validationErrs[0]
	field, param := e.Field(), e.Param()
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
	case "max":
		return fmt.Errorf("%w: %s must not exceed %s", ErrInvalidRequest, field, param)
	case "gte":
		return fmt.Errorf("%w: %s must be at least %s", ErrInvalidRequest, field, param)
	case "lte":
		return fmt.Errorf("%w: %s must not exceed %s", ErrInvalidRequest, field, param)
	case "oneof":
		return fmt.Errorf("%w: %s must be one of [%s]", ErrInvalidRequest, field, param)
	case "ident":
		return fmt.Errorf("%w: %s may only contain letters, digits, '_', '-' and '.'", ErrInvalidRequest, field)
	default:
		return fmt.Errorf("%w: %s failed %s validation", ErrInvalidRequest, field, e.Tag())
	}
}
