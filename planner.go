package weiroll

// CommandType specifies the type of command operation.
type CommandType uint8

const (
	// CommandTypeCall is a normal function call.
	CommandTypeCall CommandType = iota

	// CommandTypeRawCall is a state replacement call.
	CommandTypeRawCall

	// CommandTypeSubplan is a nested planner execution.
	CommandTypeSubplan
)

// Command represents a single operation in the plan.
type Command struct {
	call    *Call
	cmdType CommandType
}

// Call returns the underlying function call.
func (c *Command) Call() *Call {
	return c.call
}

// Type returns the command type.
func (c *Command) Type() CommandType {
	return c.cmdType
}

// Planner builds a sequence of weiroll commands.
type Planner struct {
	commands []*Command
	parent   *Planner // For subplan validation and cycle detection
}

// New creates a new Planner with the given options.
func New(opts ...PlannerOption) *Planner {
	p := &Planner{
		commands: make([]*Command, 0, 16),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add adds a function call to the plan and returns its return value (if
// any). Returns nil if the function has no return value.
func (p *Planner) Add(call *Call) *ReturnValue {
	cmd := &Command{call: call, cmdType: CommandTypeCall}
	p.commands = append(p.commands, cmd)

	if !call.HasReturnValue() {
		return nil
	}

	return &ReturnValue{
		command: cmd,
		abiType: *call.ReturnType(),
	}
}

// AddSubplan adds a subplan execution for callbacks like flash loans. The
// call must carry exactly one Subplan argument (referencing subplanner)
// and exactly one State argument.
func (p *Planner) AddSubplan(call *Call, subplanner *Planner) (*ReturnValue, error) {
	if subplanner == nil {
		return nil, ErrInvalidSubplan
	}

	if err := validateSubplanArgs(call); err != nil {
		return nil, err
	}

	if err := p.checkCycle(subplanner); err != nil {
		return nil, err
	}

	subplanner.parent = p

	cmd := &Command{call: call, cmdType: CommandTypeSubplan}
	p.commands = append(p.commands, cmd)

	if !call.HasReturnValue() {
		return nil, nil
	}

	return &ReturnValue{
		command: cmd,
		abiType: *call.ReturnType(),
	}, nil
}

// ReplaceState adds a call that replaces the planner state wholesale. The
// function must return bytes[]; its result is never exposed as a
// ReturnValue, since the interpreter forces the return byte to the
// whole-state sentinel.
func (p *Planner) ReplaceState(call *Call) error {
	if !call.HasReturnValue() {
		return ErrNoReturnValue
	}

	retType := call.ReturnType()
	if retType.String() != "bytes[]" {
		return &TypeMismatchError{Expected: "bytes[]", Got: retType.String()}
	}

	cmd := &Command{call: call, cmdType: CommandTypeRawCall}
	p.commands = append(p.commands, cmd)
	return nil
}

// State returns a StateValue for use in subplan calls.
func (p *Planner) State() *StateValue {
	return &StateValue{planner: p}
}

// Subplan returns a SubplanValue for use in function calls.
func (p *Planner) Subplan() *SubplanValue {
	return &SubplanValue{subplanner: p}
}

// Len returns the number of commands in the planner.
func (p *Planner) Len() int {
	return len(p.commands)
}

// CommandAt returns the command at the given index.
func (p *Planner) CommandAt(i int) *Command {
	if i < 0 || i >= len(p.commands) {
		return nil
	}
	return p.commands[i]
}

// ForEachCommand iterates over all commands in the planner. The callback
// receives the index and command. Return false to stop iteration.
func (p *Planner) ForEachCommand(fn func(int, *Command) bool) {
	for i, cmd := range p.commands {
		if !fn(i, cmd) {
			return
		}
	}
}

// Plan compiles all commands into executable format: a list of 32-byte
// (or 64-byte extended) command words and the initial state array. Plan
// is pure: it never mutates the planner and always recomputes its output
// from scratch, so calling it more than once is safe.
func (p *Planner) Plan(opts ...PlanOption) (*CompiledPlan, error) {
	cfg := defaultPlanConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.maxCommands > 0 && len(p.commands) > cfg.maxCommands {
		return nil, ErrTooManyArguments
	}

	vis := newVisibilityState()
	if err := analyzeVisibility(p, vis); err != nil {
		return nil, err
	}

	alloc := newSlotAllocator(cfg)
	for _, lv := range vis.literalVisibility {
		if _, err := alloc.preseedLiteral(lv.key, lv.data, lv.lastConsumer); err != nil {
			return nil, err
		}
	}

	words, err := buildCommands(p, vis, alloc)
	if err != nil {
		return nil, err
	}

	return &CompiledPlan{Commands: words, State: alloc.finalize()}, nil
}

// literalVisEntry records a distinct literal's last consumer, in the
// order the literal was first encountered.
type literalVisEntry struct {
	key          string
	data         []byte
	lastConsumer *Command
}

// visibilityState accumulates the results of the liveness traversal
// shared across a planner and any dynamic sub-plans it embeds.
type visibilityState struct {
	// commandVisibility maps a producer command to the last command (in
	// insertion order) that consumes its return value.
	commandVisibility map[*Command]*Command

	// literalVisibility lists each distinct literal, in first-seen
	// order, alongside its last consumer.
	literalVisibility []literalVisEntry
	literalIndex      map[string]int

	// seen marks commands already visited, so a Return reference to a
	// command later in insertion order is rejected.
	seen map[*Command]bool
}

func newVisibilityState() *visibilityState {
	return &visibilityState{
		commandVisibility: make(map[*Command]*Command),
		literalVisibility: make([]literalVisEntry, 0, 16),
		literalIndex:      make(map[string]int),
		seen:              make(map[*Command]bool),
	}
}

// analyzeVisibility performs a single pre-order traversal of p's
// commands, recording command and literal liveness into vis. It recurses
// into a sub-plan argument's planner only when the enclosing subplan
// command declares a dynamic return type, sharing the same visibility
// maps and seen set, so the sub-plan's commands are marked seen as they
// are visited. A sub-plan under a non-dynamic return type is not
// visited: its commands are never marked seen, and a Return reference
// to one of them fails with ErrCommandNotVisible.
func analyzeVisibility(p *Planner, vis *visibilityState) error {
	for i, cmd := range p.commands {
		for _, arg := range cmd.call.encodingArgs() {
			switch v := arg.(type) {
			case *ReturnValue:
				if !vis.seen[v.command] {
					return &PlanError{CommandIndex: i, Method: cmd.call.method.Name, Err: ErrCommandNotVisible}
				}
				vis.commandVisibility[v.command] = cmd

			case *LiteralValue:
				key := v.Key()
				if idx, ok := vis.literalIndex[key]; ok {
					vis.literalVisibility[idx].lastConsumer = cmd
				} else {
					vis.literalIndex[key] = len(vis.literalVisibility)
					vis.literalVisibility = append(vis.literalVisibility, literalVisEntry{
						key:          key,
						data:         v.data,
						lastConsumer: cmd,
					})
				}

			case *StateValue:
				// The whole-state sentinel carries no slot bookkeeping.

			case *SubplanValue:
				if cmd.call.HasReturnValue() && isDynamicType(*cmd.call.ReturnType()) {
					if err := analyzeVisibility(v.Planner(), vis); err != nil {
						return err
					}
				}
			}
		}
		vis.seen[cmd] = true
	}
	return nil
}

// buildCommands encodes p's commands into their final word form, using
// the shared allocator and visibility maps. It is called recursively for
// sub-plans, which encode into the same outer state vector.
func buildCommands(p *Planner, vis *visibilityState, alloc *slotAllocator) ([][]byte, error) {
	encoder := NewCommandEncoder()
	words := make([][]byte, 0, len(p.commands))

	for i, cmd := range p.commands {
		if err := cmd.call.validate(); err != nil {
			return nil, &PlanError{CommandIndex: i, Method: cmd.call.method.Name, Err: err}
		}

		subplanSlot, hasSubplanArg, err := embedSubplanArg(i, cmd, vis, alloc)
		if err != nil {
			return nil, err
		}

		args := cmd.call.encodingArgs()
		argSlots := make([]uint8, len(args))
		for j, arg := range args {
			slot, err := resolveArgSlot(arg, alloc, hasSubplanArg, subplanSlot)
			if err != nil {
				return nil, &PlanError{CommandIndex: i, Method: cmd.call.method.Name, Err: err}
			}
			argSlots[j] = slot
		}

		alloc.retire(cmd)

		returnByte, err := allocateReturnByte(i, cmd, vis, alloc)
		if err != nil {
			return nil, err
		}

		isExtended := len(argSlots) > MaxStandardArgs
		flags := cmd.call.computeFlags(isExtended)

		encoded, err := encoder.EncodeCommand(cmd.call.Selector(), flags, argSlots, returnByte, cmd.call.contract.Address())
		if err != nil {
			return nil, &PlanError{CommandIndex: i, Method: cmd.call.method.Name, Err: err}
		}
		words = append(words, encoded)
	}

	return words, nil
}

// embedSubplanArg handles step 1 of the per-command encoding loop: if cmd
// carries a Subplan argument, its planner is recursively built into
// command words, concatenated into one blob, and pushed as a new state
// slot that expires immediately after cmd.
func embedSubplanArg(i int, cmd *Command, vis *visibilityState, alloc *slotAllocator) (slot uint8, ok bool, err error) {
	for _, arg := range cmd.call.encodingArgs() {
		spv, isSub := arg.(*SubplanValue)
		if !isSub {
			continue
		}

		subWords, err := buildCommands(spv.Planner(), vis, alloc)
		if err != nil {
			return 0, false, err
		}

		slot, err := alloc.pushBlob(concatWords(subWords))
		if err != nil {
			return 0, false, &PlanError{CommandIndex: i, Method: cmd.call.method.Name, Err: err}
		}
		alloc.scheduleExpiry(cmd, slot)
		return slot, true, nil
	}
	return 0, false, nil
}

// allocateReturnByte handles step 5 of the per-command encoding loop.
func allocateReturnByte(i int, cmd *Command, vis *visibilityState, alloc *slotAllocator) (uint8, error) {
	if lastConsumer, produced := vis.commandVisibility[cmd]; produced {
		if cmd.cmdType == CommandTypeRawCall || cmd.cmdType == CommandTypeSubplan {
			return 0, &PlanError{CommandIndex: i, Method: cmd.call.method.Name, Err: ErrInvalidReturnSlot}
		}

		slot, err := alloc.allocateReturnSlot(cmd, lastConsumer)
		if err != nil {
			return 0, &PlanError{CommandIndex: i, Method: cmd.call.method.Name, Err: err}
		}

		if cmd.call.HasReturnValue() && isDynamicType(*cmd.call.ReturnType()) {
			slot |= DynamicSlotFlag
		}
		return slot, nil
	}

	if cmd.cmdType == CommandTypeRawCall || cmd.cmdType == CommandTypeSubplan {
		return StateSlotMarker, nil
	}

	return NoReturnSlot, nil
}

// resolveArgSlot handles step 2 of the per-command encoding loop for a
// single argument.
func resolveArgSlot(arg Value, alloc *slotAllocator, hasSubplanSlot bool, subplanSlot uint8) (uint8, error) {
	switch v := arg.(type) {
	case *ReturnValue:
		slot, ok := alloc.returnSlotFor(v.command)
		if !ok {
			return 0, ErrMissingReturnSlot
		}
		if v.IsDynamic() {
			slot |= DynamicSlotFlag
		}
		return slot, nil

	case *LiteralValue:
		slot, ok := alloc.literalSlot(v.Key())
		if !ok {
			return 0, ErrMissingLiteralValue
		}
		if v.IsDynamic() {
			slot |= DynamicSlotFlag
		}
		return slot, nil

	case *StateValue:
		return StateSlotMarker, nil

	case *SubplanValue:
		if !hasSubplanSlot {
			return 0, ErrMissingSubplan
		}
		return subplanSlot | DynamicSlotFlag, nil

	default:
		return 0, ErrMissingValue
	}
}

// concatWords concatenates a sub-plan's command words into a single
// contiguous byte blob for embedding as a state slot.
func concatWords(words [][]byte) []byte {
	total := 0
	for _, w := range words {
		total += len(w)
	}
	out := make([]byte, 0, total)
	for _, w := range words {
		out = append(out, w...)
	}
	return out
}

// checkCycle checks for cyclic planner references.
func (p *Planner) checkCycle(sub *Planner) error {
	visited := make(map[*Planner]bool)
	current := p

	for current != nil {
		if visited[current] {
			return ErrCyclicPlanner
		}
		visited[current] = true
		if current == sub {
			return ErrCyclicPlanner
		}
		current = current.parent
	}

	return nil
}

// validateSubplanArgs enforces invariant 6: a subplan command must carry
// exactly one Subplan argument and exactly one State argument, and no
// other combination of the two.
func validateSubplanArgs(call *Call) error {
	args := call.Args()

	subplanCount := 0
	stateCount := 0
	for _, arg := range args {
		switch arg.(type) {
		case *SubplanValue:
			subplanCount++
		case *StateValue:
			stateCount++
		}
	}

	if len(args) != 2 {
		return ErrArgumentCountMismatch
	}
	if subplanCount > 1 {
		return ErrMultipleSubplans
	}
	if stateCount > 1 {
		return ErrMultipleState
	}
	if subplanCount != 1 || stateCount != 1 {
		return ErrMissingStateOrSubplan
	}

	return nil
}

// CompiledPlan contains the output of Plan(), ready for VM execution.
type CompiledPlan struct {
	Commands [][]byte // Each command is 32 bytes (or 64 for extended)
	State    [][]byte // Initial state array
}

// CommandsAsBytes32 returns commands as [][32]byte for contract calls.
func (cp *CompiledPlan) CommandsAsBytes32() [][32]byte {
	result := make([][32]byte, 0, len(cp.Commands))
	for _, cmd := range cp.Commands {
		if len(cmd) >= 32 {
			var b [32]byte
			copy(b[:], cmd[:32])
			result = append(result, b)
		}
		// For extended commands, add the second word
		if len(cmd) >= 64 {
			var b [32]byte
			copy(b[:], cmd[32:64])
			result = append(result, b)
		}
	}
	return result
}

// StateAsBytes returns state as [][]byte for contract calls.
func (cp *CompiledPlan) StateAsBytes() [][]byte {
	return cp.State
}

// CommandCount returns the number of logical commands (not including
// extended words).
func (cp *CompiledPlan) CommandCount() int {
	count := 0
	for _, cmd := range cp.Commands {
		if len(cmd) == 32 || len(cmd) == 64 {
			count++
		}
	}
	return count
}
