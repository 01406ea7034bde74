package bridge

import (
	"github.com/archernet/callbridge/domain/entities"
	"github.com/archernet/callbridge/value"
)

// Demo callback arguments passed by log.
const (
	DemoCallbackCode    = 9607
	DemoCallbackAddress = "ip address"
	DemoCallbackData    = "buffer data"
)

// Contracts of the demo functions.
var (
	AddContract = entities.NewContract("add", entities.KindNumber, entities.KindNumber)
	LogContract = entities.NewContract("log",
		entities.KindNumber,   // ssl
		entities.KindNumber,   // fd
		entities.KindString,   // msg
		entities.KindBuffer,   // data
		entities.KindFunction, // cb
	)
)

// DemoBundle returns the demo functions add and log.
func DemoBundle() Bundle {
	return NewBundle(
		Export{Contract: AddContract, Fn: Add},
		Export{Contract: LogContract, Fn: Log},
	)
}

// Add returns the sum of its two numeric arguments.
func Add(_ CallContext, args *Args) (value.Value, error) {
	return value.Number(args.Float(0) + args.Float(1)), nil
}

// Log logs a line describing a connection write and reports back to the
// host through the callback at position 4 before returning null.
func Log(cc CallContext, args *Args) (value.Value, error) {
	ssl := args.Int32(0)
	fd := args.Int(1)
	msg := args.String(2)
	data := args.Buffer(3)

	cc.Logger().InfoContext(cc, "log",
		"ssl", ssl,
		"fd", fd,
		"msg", msg,
		"buffer_len", data.Len(),
	)

	if _, err := cc.InvokeCallback(args.Callback(4), DemoCallbackCode, DemoCallbackAddress, []byte(DemoCallbackData)); err != nil {
		return value.Null(), err
	}
	return value.Null(), nil
}
