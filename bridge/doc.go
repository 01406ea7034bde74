// Package bridge exposes native Go functions to a host runtime.
//
// A Registry maps exposed names to a call contract and a native function.
// Invoking a name validates the host's argument list against the contract
// (arity first, then each position left to right, stopping at the first
// mismatch), materializes native arguments only once validation has
// passed, and dispatches. Native code may call back into the host through
// CallContext.InvokeCallback; the callback runs synchronously on the
// calling goroutine.
//
// The package has no WebAssembly runtime dependency; infrastructure/wazero
// binds a Registry to wazero guests.
package bridge
