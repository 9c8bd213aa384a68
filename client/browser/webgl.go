//go:build js && wasm

package browser

import (
	"syscall/js"

	"github.com/hulkholden/webglhost/common/webgl"
)

// GLContext is a webgl.Context backed by a browser WebGL2RenderingContext.
type GLContext struct {
	gl js.Value
}

var _ webgl.Context = GLContext{}

// NewWebGL2Context gets the "webgl2" context of canvas without antialiasing
// and with a preserved drawing buffer.
func NewWebGL2Context(canvas js.Value) (GLContext, error) {
	attrs := objectCtor.New()
	attrs.Set("antialias", false)
	attrs.Set("preserveDrawingBuffer", true)
	gl := canvas.Call("getContext", "webgl2", attrs)
	if gl.IsNull() || gl.IsUndefined() {
		return GLContext{}, ErrWebGL2Unsupported
	}
	return GLContext{gl: gl}, nil
}

// jsObject converts o back to the value passed to WebGL. Missing objects
// become null.
func jsObject(o webgl.Object) js.Value {
	if v, ok := o.(js.Value); ok {
		return v
	}
	return js.Null()
}

func jsNullableString(v js.Value) string {
	if v.IsNull() || v.IsUndefined() {
		return ""
	}
	return v.String()
}

func (c GLContext) DrawingBufferWidth() int  { return c.gl.Get("drawingBufferWidth").Int() }
func (c GLContext) DrawingBufferHeight() int { return c.gl.Get("drawingBufferHeight").Int() }

func (c GLContext) ActiveTexture(texture uint32) { c.gl.Call("activeTexture", texture) }
func (c GLContext) AttachShader(program, shader webgl.Object) {
	c.gl.Call("attachShader", jsObject(program), jsObject(shader))
}
func (c GLContext) BindBuffer(target uint32, buffer webgl.Object) {
	c.gl.Call("bindBuffer", target, jsObject(buffer))
}
func (c GLContext) BindVertexArray(vao webgl.Object) { c.gl.Call("bindVertexArray", jsObject(vao)) }
func (c GLContext) BindFramebuffer(target uint32, fb webgl.Object) {
	c.gl.Call("bindFramebuffer", target, jsObject(fb))
}
func (c GLContext) BindTexture(target uint32, texture webgl.Object) {
	c.gl.Call("bindTexture", target, jsObject(texture))
}
func (c GLContext) BlendFunc(sfactor, dfactor uint32) { c.gl.Call("blendFunc", sfactor, dfactor) }
func (c GLContext) BufferData(target uint32, data []byte, usage uint32) {
	c.gl.Call("bufferData", target, uint8Array(data), usage)
}
func (c GLContext) CheckFramebufferStatus(target uint32) uint32 {
	return uint32(c.gl.Call("checkFramebufferStatus", target).Int())
}
func (c GLContext) Clear(mask uint32)                 { c.gl.Call("clear", mask) }
func (c GLContext) ClearColor(r, g, b, a float32)     { c.gl.Call("clearColor", r, g, b, a) }
func (c GLContext) CompileShader(shader webgl.Object) { c.gl.Call("compileShader", jsObject(shader)) }
func (c GLContext) GetShaderParameterBool(shader webgl.Object, pname uint32) bool {
	return c.gl.Call("getShaderParameter", jsObject(shader), pname).Truthy()
}
func (c GLContext) CreateBuffer() webgl.Object      { return c.gl.Call("createBuffer") }
func (c GLContext) CreateFramebuffer() webgl.Object { return c.gl.Call("createFramebuffer") }
func (c GLContext) CreateProgram() webgl.Object     { return c.gl.Call("createProgram") }
func (c GLContext) CreateShader(shaderType uint32) webgl.Object {
	return c.gl.Call("createShader", shaderType)
}
func (c GLContext) CreateTexture() webgl.Object     { return c.gl.Call("createTexture") }
func (c GLContext) CreateVertexArray() webgl.Object { return c.gl.Call("createVertexArray") }
func (c GLContext) DeleteBuffer(buffer webgl.Object) {
	c.gl.Call("deleteBuffer", jsObject(buffer))
}
func (c GLContext) DeleteFramebuffer(fb webgl.Object) {
	c.gl.Call("deleteFramebuffer", jsObject(fb))
}
func (c GLContext) DeleteProgram(program webgl.Object) {
	c.gl.Call("deleteProgram", jsObject(program))
}
func (c GLContext) DeleteShader(shader webgl.Object) {
	c.gl.Call("deleteShader", jsObject(shader))
}
func (c GLContext) DeleteTexture(texture webgl.Object) {
	c.gl.Call("deleteTexture", jsObject(texture))
}
func (c GLContext) DeleteVertexArray(vao webgl.Object) {
	c.gl.Call("deleteVertexArray", jsObject(vao))
}
func (c GLContext) DepthFunc(fn uint32) { c.gl.Call("depthFunc", fn) }
func (c GLContext) DetachShader(program, shader webgl.Object) {
	c.gl.Call("detachShader", jsObject(program), jsObject(shader))
}
func (c GLContext) Disable(capability uint32) { c.gl.Call("disable", capability) }
func (c GLContext) DrawArrays(mode uint32, first, count int32) {
	c.gl.Call("drawArrays", mode, first, count)
}
func (c GLContext) DrawElements(mode uint32, count int32, typ uint32, offset int32) {
	c.gl.Call("drawElements", mode, count, typ, offset)
}
func (c GLContext) Enable(capability uint32) { c.gl.Call("enable", capability) }
func (c GLContext) EnableVertexAttribArray(index uint32) {
	c.gl.Call("enableVertexAttribArray", index)
}
func (c GLContext) FramebufferTexture2D(target, attachment, textarget uint32, texture webgl.Object, level int32) {
	c.gl.Call("framebufferTexture2D", target, attachment, textarget, jsObject(texture), level)
}
func (c GLContext) FrontFace(mode uint32) { c.gl.Call("frontFace", mode) }
func (c GLContext) GetAttribLocation(program webgl.Object, name string) int32 {
	return int32(c.gl.Call("getAttribLocation", jsObject(program), name).Int())
}
func (c GLContext) GetError() uint32 { return uint32(c.gl.Call("getError").Int()) }
func (c GLContext) GetShaderInfoLog(shader webgl.Object) string {
	return jsNullableString(c.gl.Call("getShaderInfoLog", jsObject(shader)))
}
func (c GLContext) GetUniformLocation(program webgl.Object, name string) webgl.Object {
	return c.gl.Call("getUniformLocation", jsObject(program), name)
}
func (c GLContext) LinkProgram(program webgl.Object) { c.gl.Call("linkProgram", jsObject(program)) }
func (c GLContext) GetProgramParameterBool(program webgl.Object, pname uint32) bool {
	return c.gl.Call("getProgramParameter", jsObject(program), pname).Truthy()
}
func (c GLContext) GetProgramInfoLog(program webgl.Object) string {
	return jsNullableString(c.gl.Call("getProgramInfoLog", jsObject(program)))
}
func (c GLContext) PixelStorei(pname uint32, param int32) { c.gl.Call("pixelStorei", pname, param) }
func (c GLContext) ShaderSource(shader webgl.Object, source string) {
	c.gl.Call("shaderSource", jsObject(shader), source)
}
func (c GLContext) TexImage2D(target uint32, level, internalFormat, width, height, border int32, format, typ uint32, pixels []byte) {
	data := js.Null()
	if pixels != nil {
		data = uint8Array(pixels)
	}
	c.gl.Call("texImage2D", target, level, internalFormat, width, height, border, format, typ, data)
}
func (c GLContext) TexParameterf(target, pname uint32, param float32) {
	c.gl.Call("texParameterf", target, pname, param)
}
func (c GLContext) TexParameteri(target, pname uint32, param int32) {
	c.gl.Call("texParameteri", target, pname, param)
}
func (c GLContext) Uniform1f(location webgl.Object, x float32) {
	c.gl.Call("uniform1f", jsObject(location), x)
}
func (c GLContext) Uniform1i(location webgl.Object, x int32) {
	c.gl.Call("uniform1i", jsObject(location), x)
}
func (c GLContext) Uniform4f(location webgl.Object, x, y, z, w float32) {
	c.gl.Call("uniform4f", jsObject(location), x, y, z, w)
}
func (c GLContext) UniformMatrix4fv(location webgl.Object, transpose bool, data []float32) {
	c.gl.Call("uniformMatrix4fv", jsObject(location), transpose, float32Array(data))
}
func (c GLContext) UseProgram(program webgl.Object) { c.gl.Call("useProgram", jsObject(program)) }
func (c GLContext) VertexAttribPointer(index uint32, size int32, typ uint32, normalized bool, stride, offset int32) {
	c.gl.Call("vertexAttribPointer", index, size, typ, normalized, stride, offset)
}
func (c GLContext) Viewport(x, y, width, height int32) { c.gl.Call("viewport", x, y, width, height) }
