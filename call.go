package weiroll

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Call represents a pending contract call that can be added to a Planner.
// Call is immutable - modifier methods return new instances.
type Call struct {
	contract  *Contract
	method    abi.Method
	args      []Value
	flags     CallFlags
	value     *big.Int // ETH value for CALL_WITH_VALUE
	rawReturn bool     // Wrap return as raw bytes
}

// newCall creates a Call from a contract, method, and arguments.
// Arguments are converted to Values using the method's input types.
func newCall(contract *Contract, method abi.Method, rawArgs []any) (*Call, error) {
	if len(rawArgs) != len(method.Inputs) {
		return nil, &ArgumentError{
			Method: method.Name,
			Index:  len(rawArgs),
			Err:    ErrTooManyArguments,
		}
	}

	args := make([]Value, len(rawArgs))

	for i, arg := range rawArgs {
		val, err := toValue(arg, method.Inputs[i].Type)
		if err != nil {
			return nil, &ArgumentError{
				Method: method.Name,
				Index:  i,
				Err:    err,
			}
		}
		args[i] = val
	}

	return &Call{
		contract:  contract,
		method:    method,
		args:      args,
		flags:     contract.defaultFlags(),
		value:     nil,
		rawReturn: false,
	}, nil
}

// Contract returns the target contract for this call.
func (c *Call) Contract() *Contract {
	return c.contract
}

// Method returns the ABI method for this call.
func (c *Call) Method() abi.Method {
	return c.method
}

// Args returns the arguments for this call.
func (c *Call) Args() []Value {
	return c.args
}

// Flags returns the call flags.
func (c *Call) Flags() CallFlags {
	return c.flags
}

// EthValue returns the ETH value for this call (nil if none).
func (c *Call) EthValue() *big.Int {
	return c.value
}

// HasReturnValue returns true if the method has a return value.
func (c *Call) HasReturnValue() bool {
	return len(c.method.Outputs) > 0
}

// ReturnType returns the ABI type of the first return value, if any.
func (c *Call) ReturnType() *abi.Type {
	if len(c.method.Outputs) == 0 {
		return nil
	}
	return &c.method.Outputs[0].Type
}

// Selector returns the 4-byte function selector.
func (c *Call) Selector() [4]byte {
	var sel [4]byte
	copy(sel[:], c.method.ID[:4])
	return sel
}

// WithValue attaches ETH value to the call.
// This converts the call to CALL_WITH_VALUE.
// Only valid for external (non-library) contracts.
//
// Returns a new Call with the value set.
func (c *Call) WithValue(amount *big.Int) *Call {
	clone := c.clone()
	clone.value = new(big.Int).Set(amount)
	clone.flags = (clone.flags &^ FlagCallTypeMask) | FlagCallWithValue
	return clone
}

// Static forces the call to use STATICCALL.
// Only valid for external contracts (not libraries).
//
// Returns a new Call with STATICCALL flag set.
func (c *Call) Static() *Call {
	clone := c.clone()
	clone.flags = (clone.flags &^ FlagCallTypeMask) | FlagStaticCall
	return clone
}

// RawReturn wraps the return value as raw bytes.
// This is useful for capturing multiple return values or complex types.
//
// Returns a new Call with the tuple return flag set.
func (c *Call) RawReturn() *Call {
	clone := c.clone()
	clone.rawReturn = true
	clone.flags |= FlagTupleReturn
	return clone
}

// clone creates a shallow copy of the Call.
func (c *Call) clone() *Call {
	clone := *c
	// Deep copy the args slice
	clone.args = make([]Value, len(c.args))
	copy(clone.args, c.args)
	return &clone
}

// validate checks if the Call is valid for its call type.
func (c *Call) validate() error {
	callType := c.flags.CallType()

	if callType == FlagCallWithValue {
		if c.value == nil {
			return ErrMissingValue
		}
		return nil
	}

	// A call type changed after WithValue() (e.g. WithValue().Static())
	// still carries a stale value; any non-CALL_WITH_VALUE type can't
	// send ETH.
	if c.value != nil && c.value.Sign() > 0 {
		return ErrInvalidCallType
	}

	return nil
}

// encodingArgs returns the call's arguments in encoding order: when the
// call type is CALL_WITH_VALUE, a synthesized uint256 literal carrying
// the ETH value is prepended ahead of the declared arguments.
func (c *Call) encodingArgs() []Value {
	if c.flags.CallType() == FlagCallWithValue && c.value != nil {
		valueArg := Uint256(c.value)
		args := make([]Value, 0, len(c.args)+1)
		args = append(args, valueArg)
		args = append(args, c.args...)
		return args
	}
	return c.args
}

// computeFlags computes the final flags for encoding.
func (c *Call) computeFlags(isExtended bool) CallFlags {
	flags := c.flags
	if isExtended {
		flags |= FlagExtendedCommand
	}
	if c.rawReturn {
		flags |= FlagTupleReturn
	}
	return flags
}
