package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package matches exactly one of
// them through errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrBusinessRule = errors.New("business rule violation")
	ErrPersistence  = errors.New("persistence error")
)

// ErrConflict is returned by stores when a write hits a uniqueness
// constraint. It is a persistence error.
var ErrConflict = &PersistenceError{Op: "write", Err: errors.New("conflict")}

// Rule names a business rule that rejected an operation.
type Rule string

const (
	RuleBlackoutDay        Rule = "BlackoutDay"
	RuleDailyLimitExceeded Rule = "DailyLimitExceeded"
	RuleNoAvailability     Rule = "NoAvailability"
	RuleAlreadyStarted     Rule = "AlreadyStarted"
	RuleAlreadyTerminal    Rule = "AlreadyTerminal"
)

// RuleViolation is a business rule rejection. The package level values
// below are returned as is so callers can compare with errors.Is.
type RuleViolation struct {
	Rule    Rule
	Message string
}

func (e *RuleViolation) Error() string { return e.Message }

// Is makes every RuleViolation match ErrBusinessRule.
func (e *RuleViolation) Is(target error) bool { return target == ErrBusinessRule }

var (
	ErrBlackoutDay        = &RuleViolation{RuleBlackoutDay, "reservations are not allowed on Sundays"}
	ErrDailyLimitExceeded = &RuleViolation{RuleDailyLimitExceeded, "only one reservation per day is allowed"}
	ErrNoAvailability     = &RuleViolation{RuleNoAvailability, "no parking spot is available for the selected window"}
	ErrAlreadyStarted     = &RuleViolation{RuleAlreadyStarted, "reservation has already started"}
	ErrAlreadyTerminal    = &RuleViolation{RuleAlreadyTerminal, "reservation is already cancelled or completed"}
)

// ValidationError reports malformed input, detected before any query.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound builds a NotFoundError. Stores use it for absent rows.
func NotFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// PersistenceError wraps a store failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// persistence wraps err unless it already carries one of the kinds.
func persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPersistence) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation) || errors.Is(err, ErrBusinessRule) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
