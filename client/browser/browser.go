//go:build js && wasm

// Package browser wraps the parts of the browser environment the client
// needs: the window, the canvas and its WebGL2 context.
package browser

import (
	"fmt"
	"net/url"
	"syscall/js"
)

type HTMLWindow struct{ jsValue js.Value }

func Window() HTMLWindow {
	return HTMLWindow{js.Global().Get("window")}
}

func (w HTMLWindow) RequestAnimationFrame(fn js.Func) { w.jsValue.Call("requestAnimationFrame", fn) }

// PerformanceNow returns the high resolution timestamp in milliseconds, on the
// same clock as requestAnimationFrame timestamps.
func (w HTMLWindow) PerformanceNow() float64 {
	return w.jsValue.Get("performance").Call("now").Float()
}

// Location returns the URL of the current page.
func (w HTMLWindow) Location() (*url.URL, error) {
	href := w.jsValue.Get("location").Get("href").String()
	u, err := url.Parse(href)
	if err != nil {
		return nil, fmt.Errorf("parsing location %q: %w", href, err)
	}
	return u, nil
}

// ElementByID returns the element with the given id, or false if there is
// none yet.
func (w HTMLWindow) ElementByID(id string) (js.Value, bool) {
	el := w.jsValue.Get("document").Call("getElementById", id)
	if el.IsNull() || el.IsUndefined() {
		return js.Value{}, false
	}
	return el, true
}

// ShowError reports err on the page, if the page defines showError.
func (w HTMLWindow) ShowError(msg string) {
	if fn := w.jsValue.Get("showError"); fn.Type() == js.TypeFunction {
		fn.Invoke(msg)
	}
}
