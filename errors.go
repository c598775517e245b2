// Package weiroll provides a Go implementation of the weiroll command planner
// for Ethereum smart contract operation chaining.
package weiroll

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for planning and registration failures.
var (
	// ErrArgumentCountMismatch indicates a subplan registration didn't pass exactly two args.
	ErrArgumentCountMismatch = errors.New("weiroll: subplan requires exactly one Subplan and one State argument")

	// ErrMultipleSubplans indicates a subplan registration passed more than one Subplan argument.
	ErrMultipleSubplans = errors.New("weiroll: subplan call has more than one Subplan argument")

	// ErrMultipleState indicates a subplan registration passed more than one State argument.
	ErrMultipleState = errors.New("weiroll: subplan call has more than one State argument")

	// ErrMissingStateOrSubplan indicates a subplan registration is missing its Subplan or State argument.
	ErrMissingStateOrSubplan = errors.New("weiroll: subplan call is missing its Subplan or State argument")

	// ErrCommandNotVisible indicates a Return handle references a command not yet seen in traversal order.
	ErrCommandNotVisible = errors.New("weiroll: return value not visible at this point")

	// ErrMissingReturnSlot indicates the encoder could not resolve a Return value's slot.
	ErrMissingReturnSlot = errors.New("weiroll: return value has no allocated slot")

	// ErrMissingLiteralValue indicates the encoder could not resolve a Literal's slot.
	ErrMissingLiteralValue = errors.New("weiroll: literal value has no allocated slot")

	// ErrMissingValue indicates CALL_WITH_VALUE is set but no value is present.
	ErrMissingValue = errors.New("weiroll: call type is CALL_WITH_VALUE but no value is set")

	// ErrMissingSubplan indicates a SubPlan command has no Subplan argument.
	ErrMissingSubplan = errors.New("weiroll: subplan command has no Subplan argument")

	// ErrInvalidReturnSlot indicates a RawCall or SubPlan command's result was referenced by a Return handle.
	ErrInvalidReturnSlot = errors.New("weiroll: raw call and subplan commands have no return slot")

	// ErrSlotOverflow indicates a state slot index would exceed 0x7f, the largest plain slot index.
	ErrSlotOverflow = errors.New("weiroll: state slot limit exceeded (index would exceed 0x7f)")

	// ErrCyclicPlanner indicates a planner references itself through subplans.
	ErrCyclicPlanner = errors.New("weiroll: cyclic planner reference detected")

	// ErrInvalidSubplan indicates the subplan call doesn't meet structural requirements.
	ErrInvalidSubplan = errors.New("weiroll: invalid subplan configuration")

	// ErrTooManyArguments indicates a function has too many arguments.
	ErrTooManyArguments = errors.New("weiroll: too many arguments (max 32 for extended commands)")

	// ErrInvalidCallType indicates an operation isn't valid for the call type.
	ErrInvalidCallType = errors.New("weiroll: invalid operation for this call type")

	// ErrNoReturnValue indicates the function has no return value to capture.
	ErrNoReturnValue = errors.New("weiroll: function has no return value")

	// ErrMalformedCommand indicates a byte slice passed to DecodeCommand is
	// shorter than a standard command word.
	ErrMalformedCommand = errors.New("weiroll: command word shorter than 32 bytes")
)

// MethodNotFoundError indicates the contract doesn't have the requested method.
type MethodNotFoundError struct {
	Contract common.Address
	Method   string
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("weiroll: method %q not found in contract %s", e.Method, e.Contract.Hex())
}

// ArgumentError indicates an issue with a function argument.
type ArgumentError struct {
	Method string
	Index  int
	Err    error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("weiroll: argument %d for method %q: %v", e.Index, e.Method, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// TypeMismatchError indicates a value's type doesn't match the expected parameter type.
type TypeMismatchError struct {
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("weiroll: type mismatch: expected %s, got %s", e.Expected, e.Got)
}

// PlanError wraps errors that occur during planning, identifying the offending command.
type PlanError struct {
	CommandIndex int
	Method       string
	Err          error
}

func (e *PlanError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("weiroll: command %d (%s): %v", e.CommandIndex, e.Method, e.Err)
	}
	return fmt.Sprintf("weiroll: command %d: %v", e.CommandIndex, e.Err)
}

func (e *PlanError) Unwrap() error {
	return e.Err
}

// EncodingError indicates a failure during value or command encoding.
type EncodingError struct {
	Value any
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("weiroll: encoding error for value %T: %v", e.Value, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}
