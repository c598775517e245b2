package weiroll

import (
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ContractType selects which of the three weiroll call-type flags
// (§6.1) a Contract's methods default to when registered with a
// Planner.
type ContractType uint8

const (
	// Library contracts are invoked via DELEGATECALL, executing in the
	// weiroll VM's own storage/msg context. This is how weiroll's
	// built-in command libraries (math, strings, subplan helpers) are
	// wired — they carry no state of their own.
	Library ContractType = iota

	// External contracts are invoked via CALL against their own address
	// and storage.
	External

	// StaticExternal contracts are invoked via STATICCALL: a read-only
	// CALL variant that reverts on any state-changing opcode.
	StaticExternal
)

// Contract binds a target address and parsed ABI to a ContractType,
// giving Planner.Add/AddSubplan/ReplaceState everything they need to
// turn a method name plus arguments into a Command (§3 "Command
// record", §4.1 "call_address").
type Contract struct {
	address      common.Address
	abi          abi.ABI
	contractType ContractType
}

// ContractOption configures a Contract at construction time.
type ContractOption func(*Contract)

// WithStaticCalls switches a contract's default call type to STATICCALL
// by setting its type to StaticExternal. It applies to Library contracts
// too: a Library built with this option becomes StaticExternal.
func WithStaticCalls() ContractOption {
	return func(c *Contract) {
		c.contractType = StaticExternal
	}
}

// NewLibrary wraps address/contractABI as a Library contract: every call
// built from it defaults to DELEGATECALL unless a per-call modifier
// (Call.Static, Call.WithValue) changes that call's type.
func NewLibrary(address common.Address, contractABI abi.ABI, opts ...ContractOption) *Contract {
	c := &Contract{
		address:      address,
		abi:          contractABI,
		contractType: Library,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewContract wraps address/contractABI as an External contract (CALL by
// default, or STATICCALL with WithStaticCalls).
func NewContract(address common.Address, contractABI abi.ABI, opts ...ContractOption) *Contract {
	c := &Contract{
		address:      address,
		abi:          contractABI,
		contractType: External,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Address returns the contract's target address.
func (c *Contract) Address() common.Address {
	return c.address
}

// ABI returns the contract's parsed ABI.
func (c *Contract) ABI() abi.ABI {
	return c.abi
}

// Type returns the contract's call-type classification.
func (c *Contract) Type() ContractType {
	return c.contractType
}

// Invoke resolves methodName against the contract's ABI and binds args
// into a Call ready for Planner.Add/AddSubplan/ReplaceState.
//
// Each element of args is dispatched one of two ways against the
// method's declared input type: if it already implements Value (a
// *ReturnValue from an earlier planner command, a StateValue, or a
// SubplanValue), it is passed through as-is and only type-checked; any
// other Go value (int, *big.Int, common.Address, []byte, a plain
// struct, ...) is ABI-encoded on the spot into a *LiteralValue. This
// lets callers freely mix constants and chained results in the same
// argument list:
//
//	sum := planner.Add(mathLib.MustInvoke("add", big.NewInt(1), big.NewInt(2)))
//	planner.Add(mathLib.MustInvoke("multiply", sum, big.NewInt(10)))
//
// where sum (a *ReturnValue) and big.NewInt(10) (a plain Go value)
// fill the first and second uint256 inputs of the same "multiply" call.
func (c *Contract) Invoke(methodName string, args ...any) (*Call, error) {
	method, ok := c.abi.Methods[methodName]
	if !ok {
		return nil, &MethodNotFoundError{Contract: c.address, Method: methodName}
	}

	return newCall(c, method, args)
}

// MustInvoke is like Invoke but panics on error. Intended for call
// sites building Calls from compile-time-constant method names and
// arguments (fixtures, package-level plan templates).
func (c *Contract) MustInvoke(methodName string, args ...any) *Call {
	call, err := c.Invoke(methodName, args...)
	if err != nil {
		panic(err)
	}
	return call
}

// HasMethod reports whether the contract's ABI declares methodName.
func (c *Contract) HasMethod(methodName string) bool {
	_, ok := c.abi.Methods[methodName]
	return ok
}

// MethodNames returns every method name declared in the contract's ABI.
func (c *Contract) MethodNames() []string {
	names := make([]string, 0, len(c.abi.Methods))
	for name := range c.abi.Methods {
		names = append(names, name)
	}
	return names
}

// defaultFlags returns the CallFlags a freshly-built Call for this
// contract starts with, before any per-call modifier (WithValue,
// Static) is applied.
func (c *Contract) defaultFlags() CallFlags {
	switch c.contractType {
	case Library:
		return FlagDelegateCall
	case StaticExternal:
		return FlagStaticCall
	default:
		return FlagCall
	}
}

// ParseABIReader parses a JSON ABI document read from r.
func ParseABIReader(r io.Reader) (abi.ABI, error) {
	return abi.JSON(r)
}

// ParseABI parses a JSON ABI string. A thin convenience wrapper over
// ParseABIReader for the common case of an in-memory ABI literal.
func ParseABI(abiJSON string) (abi.ABI, error) {
	return ParseABIReader(strings.NewReader(abiJSON))
}

// MustParseABI is like ParseABI but panics on error.
func MustParseABI(abiJSON string) abi.ABI {
	parsed, err := ParseABI(abiJSON)
	if err != nil {
		panic(err)
	}
	return parsed
}
