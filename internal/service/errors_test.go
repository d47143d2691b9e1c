package service_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

func TestErrorKinds(t *testing.T) {
	kinds := []error{service.ErrValidation, service.ErrNotFound, service.ErrBusinessRule, service.ErrPersistence}
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"validation", &service.ValidationError{Field: "date", Message: "is required"}, service.ErrValidation},
		{"not found", service.NotFound("reservation", 7), service.ErrNotFound},
		{"rule", service.ErrNoAvailability, service.ErrBusinessRule},
		{"conflict", service.ErrConflict, service.ErrPersistence},
		{"wrapped rule", fmt.Errorf("allocate: %w", service.ErrDailyLimitExceeded), service.ErrBusinessRule},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, k := range kinds {
				assert.Equal(t, k == tc.want, errors.Is(tc.err, k), "kind %v", k)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "date: is required", (&service.ValidationError{Field: "date", Message: "is required"}).Error())
	assert.Equal(t, "bad body", (&service.ValidationError{Message: "bad body"}).Error())
	assert.Equal(t, "reservation 7 not found", service.NotFound("reservation", 7).Error())
	assert.Equal(t, "user not found", service.NotFound("user", nil).Error())

	var rv *service.RuleViolation
	assert.True(t, errors.As(fmt.Errorf("x: %w", service.ErrAlreadyStarted), &rv))
	assert.Equal(t, service.RuleAlreadyStarted, rv.Rule)
}
