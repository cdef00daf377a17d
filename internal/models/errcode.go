package models

import (
	"errors"
	"strconv"
)

// ErrorCode is the outcome tag delivered as "_error". The integer values are
// part of the wire contract with the native core and must never be renumbered.
type ErrorCode int

const (
	NoErr                      ErrorCode = 0
	NotImplemented             ErrorCode = 1
	NotSetup                   ErrorCode = 2
	BadParameters              ErrorCode = 3
	NotLogged                  ErrorCode = 4
	NetworkError               ErrorCode = 5
	InternalError              ErrorCode = 6
	OperationAlreadyInProgress ErrorCode = 7
	ExternalCommunityNotSetup  ErrorCode = 8
	ExternalCommunityError     ErrorCode = 9
	FriendYourself             ErrorCode = 10
	PushNotSetup               ErrorCode = 11
	PushRegistrationFailed     ErrorCode = 12
	Canceled                   ErrorCode = 13
)

var codeNames = map[ErrorCode]string{
	NoErr:                      "no_error",
	NotImplemented:             "not_implemented",
	NotSetup:                   "not_setup",
	BadParameters:              "bad_parameters",
	NotLogged:                  "not_logged",
	NetworkError:               "network_error",
	InternalError:              "internal_error",
	OperationAlreadyInProgress: "operation_already_in_progress",
	ExternalCommunityNotSetup:  "external_community_not_setup",
	ExternalCommunityError:     "external_community_error",
	FriendYourself:             "friend_yourself",
	PushNotSetup:               "push_not_setup",
	PushRegistrationFailed:     "push_registration_failed",
	Canceled:                   "canceled",
}

func (c ErrorCode) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return "code_" + strconv.Itoa(int(c))
}

func (c ErrorCode) Error() string { return c.String() }

// Err returns nil for NoErr and the code itself otherwise.
func (c ErrorCode) Err() error {
	if c == NoErr {
		return nil
	}
	return c
}

// CodeOf extracts an ErrorCode from err. Errors that carry no code map to
// InternalError.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return NoErr
	}
	type coder interface{ Code() ErrorCode }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	var c ErrorCode
	if errors.As(err, &c) {
		return c
	}
	return InternalError
}

// OpError wraps a cause with the code that should reach the native side.
type OpError struct {
	C   ErrorCode
	Op  string
	Err error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.C.String()
}

func (e *OpError) Unwrap() error   { return e.Err }
func (e *OpError) Code() ErrorCode { return e.C }
