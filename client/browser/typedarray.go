//go:build js && wasm

package browser

import (
	"runtime"
	"syscall/js"
	"unsafe"
)

var (
	objectCtor       = js.Global().Get("Object")
	uint8ArrayCtor   = js.Global().Get("Uint8Array")
	float32ArrayCtor = js.Global().Get("Float32Array")
)

type numeric interface {
	~int8 | ~int16 | ~int32 | ~uint8 | ~uint16 | ~uint32 | ~float32 | ~float64
}

// sliceAsBytesSlice reinterprets the provided slice of data as a []byte.
// See https://github.com/golang/go/issues/32402.
func sliceAsBytesSlice[T numeric](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	bytePtr := (*byte)(unsafe.Pointer(&data[0]))
	byteLen := len(data) * int(unsafe.Sizeof(T(0)))
	bytes := unsafe.Slice(bytePtr, byteLen)
	runtime.KeepAlive(data)
	return bytes
}

// uint8Array copies data into a new Uint8Array.
func uint8Array(data []byte) js.Value {
	arr := uint8ArrayCtor.New(len(data))
	js.CopyBytesToJS(arr, data)
	return arr
}

// float32Array copies data into a new Float32Array.
func float32Array(data []float32) js.Value {
	bytes := uint8Array(sliceAsBytesSlice(data))
	return float32ArrayCtor.New(bytes.Get("buffer"), 0, len(data))
}
