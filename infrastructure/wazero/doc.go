// Package wazero exposes a bridge.Registry to WebAssembly guests running
// in the wazero runtime.
//
// Every exposed function becomes a host function of signature (i64) -> i64
// in a host module (default "callbridge"). The parameter is a packed
// pointer/length of a CBOR wireformat.CallWire in guest memory; the result
// is a packed pointer/length of a wireformat.ResultWire the host wrote into
// memory obtained from the guest's "allocate" export.
//
// Arguments are resolved against guest memory on demand:
//
//   - strings are copied out;
//   - buffers alias guest memory, so native writes are visible to the guest;
//   - functions become host-callable values that re-enter the guest through
//     its callback export.
//
// # Basic Usage
//
//	registry, err := bridge.NewRegistry(
//	    bridge.WithBundle(bridge.DemoBundle()),
//	)
//	if err != nil {
//	    return err
//	}
//
//	runtime := wazero.NewRuntime(ctx)
//
//	err = wzadapter.RegisterWithRuntime(ctx, runtime, registry,
//	    wzadapter.WithModuleName("callbridge"),
//	)
package wazero
