// Package entities provides core domain entities for the bridge.
// These are general-purpose types shared by the value converter, the call
// adapter and the wire format; they carry no runtime dependencies.
package entities
