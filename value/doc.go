// Package value models the values that cross the bridge between a host
// runtime and native Go code.
//
// A Value is a closed tagged variant (null, number, string, buffer,
// function). Converters assert the variant they are given; checking the
// variant against a call contract is the call adapter's job and happens
// once per call, before any conversion.
//
// Buffers are never copied on the way in: a View aliases host-owned memory
// and is valid only for the call frame (Scope) that borrowed it. Buffers
// handed to the host, for example as callback arguments, are always fresh
// copies.
package value
