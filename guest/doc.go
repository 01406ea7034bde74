// Package guest is the guest-side SDK for Go programs compiled with
// GOOS=wasip1 and loaded by package host.
//
// Calling the host:
//
//	sum, err := guest.Add(3, 4)
//
//	cb := guest.RegisterCallback(func(args []value.Value) (value.Value, error) {
//	    // args: 9607, "ip address", buffer("buffer data")
//	    return value.Null(), nil
//	})
//	defer cb.Release()
//	err = guest.Log(1, 1000, "hello", payload, cb)
//
// Buffers passed to the host reference the caller's memory for the
// duration of the call, so the host's writes are visible to the guest.
// Strings are copied. Callbacks run synchronously, nested inside the host call,
// through the callbridge_callback export.
//
// The handle table, allocation accounting and value encoding are plain Go
// and build on every platform; only the imports and exports require wasip1.
package guest
