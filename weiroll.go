// Package weiroll implements a planner/compiler for the weiroll
// stack-machine calling convention on top of the EVM: a sequence of
// contract calls described in Go is compiled into the two artifacts a
// weiroll VM interpreter contract consumes — an ordered list of 32-byte
// command words and an ordered list of state-slot byte blobs.
//
// The package does not talk to a chain, a signer, or the interpreter
// contract itself; it only produces the two byte arrays above. Getting
// them on-chain (deploying the VM, submitting `execute(commands,
// state)`, decoding logs) is left entirely to the caller.
//
// # Building a plan
//
//	mathABI := weiroll.MustParseABI(mathABIJSON)
//	tokenABI := weiroll.MustParseABI(tokenABIJSON)
//
//	mathLib := weiroll.NewLibrary(mathAddr, mathABI)   // DELEGATECALL
//	token := weiroll.NewContract(tokenAddr, tokenABI)  // CALL
//
//	planner := weiroll.New()
//	sum := planner.Add(mathLib.MustInvoke("add", big.NewInt(1), big.NewInt(2)))
//	product := planner.Add(mathLib.MustInvoke("multiply", sum, big.NewInt(10)))
//	planner.Add(token.MustInvoke("transfer", recipient, product))
//
//	plan, err := planner.Plan()
//	if err != nil {
//	    return err
//	}
//	commands := plan.CommandsAsBytes32()
//	state := plan.StateAsBytes()
//
// sum and product above are *ReturnValue handles: nothing is executed
// at Add-time, the planner only records that command N's output feeds
// command N+1's input, and Plan() later resolves that into a concrete
// state-slot byte.
//
// # Sub-plans
//
// A sub-plan lets one command hand a nested, independently-built
// command list to a callback (flash-loan style interactions, or any
// case where the interpreter needs to re-enter its own execute loop).
// The outer and inner planners share one state vector during
// compilation — AddSubplan, not Add, registers this:
//
//	inner := weiroll.New()
//	inner.Add(mathLib.MustInvoke("add", big.NewInt(1), big.NewInt(2)))
//
//	outer := weiroll.New()
//	call := vm.MustInvoke("execute", inner.Subplan(), outer.State())
//	outer.AddSubplan(call, inner)
//
// ReplaceState registers the companion operation: a command whose
// return value wholesale replaces the interpreter's state array rather
// than landing in one slot.
//
// # Contract types
//
//   - Library (NewLibrary): DELEGATECALL, runs in the VM's own storage.
//   - External (NewContract): CALL, or STATICCALL with WithStaticCalls.
//
// Call.WithValue and Call.Static further adjust a single call's flags
// after it has been built (WithValue only applies to External
// contracts; CALL_WITH_VALUE requires a non-nil value).
//
// # Values
//
// Every call argument is one of four kinds, collectively the Value
// interface: LiteralValue (a constant, ABI-encoded at registration
// time), ReturnValue (another command's output), StateValue (the
// whole interpreter state array) and SubplanValue (a nested planner).
// Plain Go values passed to Contract.Invoke are converted to
// LiteralValue automatically; only State() and Subplan() need to be
// constructed explicitly.
//
// # Encoding
//
// Commands are 32 bytes (up to 6 one-byte argument slots) or, when an
// argument list needs more than 6 slot bytes, 64 bytes (up to 32).
// Dynamic-length arguments and return values carry the 0x80 tag bit on
// their slot byte so the interpreter knows to length-prefix-copy rather
// than fixed-copy. Plan() decides standard vs. extended per command
// automatically; callers never choose the encoding directly.
//
// # State slots
//
// Plan() runs a liveness pass before encoding: identical literals
// dedupe to one slot, and a slot is freed for reuse as soon as its
// producing command's and its consuming commands' last references have
// both been encoded. Slot indices are single bytes (0x00-0x7F); the
// 0xFE and 0xFF bytes are reserved sentinels for "whole state" and
// "no value", never state-vector indices.
package weiroll
