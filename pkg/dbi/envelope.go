package dbi

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// rawEnvelope mirrors CommonResponse with pointer fields so that a missing
// key can be told apart from a zero value.
type rawEnvelope struct {
	Status    *int            `json:"status" validate:"required"`
	Timestamp *float64        `json:"timestamp" validate:"required"`
	Success   *bool           `json:"success" validate:"required"`
	Response  json.RawMessage `json:"response" validate:"required"`
}

var validate = validator.New()

func validateEnvelope(data []byte) error {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	if err := validate.Struct(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}

	return nil
}
