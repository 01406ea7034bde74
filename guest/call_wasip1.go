//go:build wasip1

package guest

import (
	"errors"

	"github.com/archernet/callbridge/value"
	"github.com/archernet/callbridge/wireformat"
)

//go:wasmimport callbridge add
func hostAdd(packed uint64) uint64

//go:wasmimport callbridge log
func hostLog(packed uint64) uint64

// HostFunc is an imported host function using the packed CallWire/ResultWire
// convention.
type HostFunc func(packed uint64) uint64

// Call invokes a host function with args. Buffers are passed by address and
// must not be modified until Call returns.
func Call(host HostFunc, args ...value.Value) (value.Value, error) {
	m := linear{}
	wires, err := encodeArgs(m, args)
	if err != nil {
		return value.Null(), err
	}
	payload, err := wireformat.EncodeCall(&wireformat.CallWire{Args: wires})
	if err != nil {
		return value.Null(), err
	}

	request := send(payload)
	packed := host(request)
	deallocate(uint32(request>>32), 0) //nolint:gosec // G115: unpacking

	if packed == 0 {
		return value.Null(), errors.New("host returned no result")
	}
	res, err := wireformat.DecodeResult(receive(packed))
	if err != nil {
		return value.Null(), err
	}
	return result(m, res)
}

// Add calls the host's add function.
func Add(a, b float64) (float64, error) {
	v, err := Call(hostAdd, value.Number(a), value.Number(b))
	if err != nil {
		return 0, err
	}
	return value.ToNumber(v), nil
}

// Log calls the host's log function. The host invokes cb before returning.
func Log(ssl int32, fd int64, msg string, data []byte, cb *Callback) error {
	_, err := Call(hostLog,
		value.Number(float64(ssl)),
		value.Number(float64(fd)),
		value.String(msg),
		value.Buffer(data),
		cb.Value(),
	)
	return err
}

// callback is the export the host calls to reach a registered Callback.
//
//go:wasmexport callbridge_callback
func callback(packed uint64) uint64 {
	return reply(dispatchCallback(linear{}, callbacks, receive(packed)))
}

// HandleCall serves a host call to a guest export. Exports that the host
// reaches through Module.Call wrap this:
//
//	//go:wasmexport run
//	func run(packed uint64) uint64 {
//		return guest.HandleCall(packed, runImpl)
//	}
func HandleCall(packed uint64, fn CallbackFunc) uint64 {
	return reply(serveCall(linear{}, receive(packed), fn))
}

func reply(res *wireformat.ResultWire) uint64 {
	data, err := wireformat.EncodeResult(res)
	if err != nil {
		data, err = wireformat.EncodeResult(wireformat.ErrorResult(err))
		if err != nil {
			return 0
		}
	}
	return send(data)
}
