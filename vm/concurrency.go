package vm

// ---------------------------------------------------------------------------
// Spawn units: goroutine-backed concurrent work with channel rendezvous
// ---------------------------------------------------------------------------

// spawnUnit is one independently scheduled unit of concurrent work created
// by a SPAWN instruction. Each unit owns a dedicated one-shot result channel
// and a done channel closed when the goroutine finishes. The result channel
// is buffered so the unit never blocks on a BARRIER that discards results.
type spawnUnit struct {
	result chan float64
	done   chan struct{}
}

// newSpawnUnit launches a unit computing a result from the sampled value.
// The unit shares no state with the VM: it operates only on the value copied
// into its closure here, and the spawning instruction never blocks.
func newSpawnUnit(value float64) *spawnUnit {
	u := &spawnUnit{
		result: make(chan float64, 1),
		done:   make(chan struct{}),
	}
	go func() {
		// Placeholder computation: carry the sampled value forward.
		u.result <- value
		close(u.done)
	}()
	return u
}

// wait blocks until the unit has finished.
func (u *spawnUnit) wait() {
	<-u.done
}

// execSpawn samples the current top of stack (0.0 when empty) and launches a
// unit carrying it. The program counter advances immediately.
func (vm *VM) execSpawn() {
	value := 0.0
	if n := len(vm.Stack); n > 0 {
		value = vm.Stack[n-1]
	}
	vm.spawns = append(vm.spawns, newSpawnUnit(value))
	if vm.Trace {
		log.Debugf("spawn #%d carrying %v", len(vm.spawns), value)
	}
}

// execSync is the collecting rendezvous: clear the stack, wait for every
// outstanding unit in spawn order, then drain each unit's channel onto the
// stack in spawn order. Completion order does not affect the result order.
func (vm *VM) execSync() {
	vm.Stack = vm.Stack[:0]
	for _, u := range vm.spawns {
		u.wait()
	}
	for _, u := range vm.spawns {
		vm.Stack = append(vm.Stack, <-u.result)
	}
	if vm.Trace {
		log.Debugf("sync collected %d results", len(vm.spawns))
	}
	vm.spawns = nil
}

// execBarrier waits for every outstanding unit in reverse spawn order and
// discards their results. The stack is left untouched.
func (vm *VM) execBarrier() {
	for i := len(vm.spawns) - 1; i >= 0; i-- {
		vm.spawns[i].wait()
	}
	if vm.Trace {
		log.Debugf("barrier joined %d units", len(vm.spawns))
	}
	vm.spawns = nil
}

// PendingSpawns reports how many spawned units have not yet been joined by a
// SYNC or BARRIER.
func (vm *VM) PendingSpawns() int {
	return len(vm.spawns)
}
