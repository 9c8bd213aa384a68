package browser

import "errors"

// ErrWebGL2Unsupported is returned when the canvas cannot provide a WebGL2
// context.
var ErrWebGL2Unsupported = errors.New("the browser does not support WebGL2")
