package domain

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/weatheria/weather-backend/internal/validation"
)

// ProviderPayload is the subset of the OpenWeatherMap current-weather response
// that the service reads. Pointers keep absent fields distinguishable from zero.
type ProviderPayload struct {
	Name    *string             `json:"name" validate:"required"`
	Main    *ProviderMain       `json:"main" validate:"required"`
	Wind    *ProviderWind       `json:"wind" validate:"required"`
	Weather []ProviderCondition `json:"weather" validate:"required,min=1,dive"`
}

type ProviderMain struct {
	Temp      *float64 `json:"temp" validate:"required"`
	FeelsLike *float64 `json:"feels_like" validate:"required"`
	Humidity  *int     `json:"humidity" validate:"required,min=0,max=100"`
}

type ProviderWind struct {
	Speed *float64 `json:"speed" validate:"required"`
}

type ProviderCondition struct {
	Description *string `json:"description" validate:"required"`
	Icon        *string `json:"icon" validate:"required"`
}

// ParsePayload decodes and schema-checks a provider body in one step.
func ParsePayload(data []byte) (*ProviderPayload, error) {
	var payload ProviderPayload
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		return nil, &MalformedPayloadError{Err: err}
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Validate returns a *MalformedPayloadError naming every missing or invalid field.
func (p *ProviderPayload) Validate() error {
	if p == nil {
		return &MalformedPayloadError{Err: errors.New("empty payload")}
	}

	err := validation.GetValidator().Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &MalformedPayloadError{Err: err}
	}

	formatted := validation.FormatValidationErrors(verrs)
	fields := make([]string, 0, len(formatted))
	for _, fe := range formatted {
		fields = append(fields, fe.Field)
	}
	return &MalformedPayloadError{Fields: fields, Err: err}
}
