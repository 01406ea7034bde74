// Package host runs WebAssembly guests against a bridge registry.
//
// It abstracts the underlying WASM engine (wazero), manages module lifecycle,
// and exposes the registry to guests through the host module built by
// infrastructure/wazero.
package host
