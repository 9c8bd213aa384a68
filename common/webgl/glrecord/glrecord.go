// Package glrecord provides a webgl.Context that records calls instead of
// drawing. It backs the headless runner and the bridge tests.
package glrecord

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hulkholden/webglhost/common/webgl"
)

// Object is the fake GL object handed out by Context.
type Object struct {
	Kind string
	ID   int
}

func (o *Object) String() string { return fmt.Sprintf("%s#%d", o.Kind, o.ID) }

// Context records every call as a line. The zero value reports a 0x0 drawing
// buffer and successful compiles and links.
type Context struct {
	Width, Height int

	// FailCompile and FailLink make the matching status queries report false.
	FailCompile bool
	FailLink    bool

	ShaderInfoLog  string
	ProgramInfoLog string

	mu     sync.Mutex
	calls  []string
	nextID int
}

var _ webgl.Context = (*Context)(nil)

// New returns a Context with the given drawing-buffer size.
func New(width, height int) *Context {
	return &Context{Width: width, Height: height}
}

// Calls returns the recorded calls so far.
func (c *Context) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// Reset discards the recorded calls.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

func (c *Context) record(name string, args ...any) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = formatArg(a)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, name+"("+strings.Join(parts, ", ")+")")
}

func (c *Context) create(kind string) webgl.Object {
	c.mu.Lock()
	c.nextID++
	obj := &Object{Kind: kind, ID: c.nextID}
	c.mu.Unlock()
	c.record("create" + kind)
	return obj
}

func formatArg(a any) string {
	switch v := a.(type) {
	case nil:
		return "null"
	case *Object:
		if v == nil {
			return "null"
		}
		return v.String()
	case []byte:
		if v == nil {
			return "null"
		}
		return fmt.Sprintf("[%d bytes]", len(v))
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprint(v)
	}
}

func (c *Context) DrawingBufferWidth() int  { return c.Width }
func (c *Context) DrawingBufferHeight() int { return c.Height }

func (c *Context) ActiveTexture(texture uint32) { c.record("activeTexture", texture) }
func (c *Context) AttachShader(program, shader webgl.Object) {
	c.record("attachShader", program, shader)
}
func (c *Context) BindBuffer(target uint32, buffer webgl.Object) {
	c.record("bindBuffer", target, buffer)
}
func (c *Context) BindVertexArray(vao webgl.Object) { c.record("bindVertexArray", vao) }
func (c *Context) BindFramebuffer(target uint32, fb webgl.Object) {
	c.record("bindFramebuffer", target, fb)
}
func (c *Context) BindTexture(target uint32, texture webgl.Object) {
	c.record("bindTexture", target, texture)
}
func (c *Context) BlendFunc(sfactor, dfactor uint32) { c.record("blendFunc", sfactor, dfactor) }
func (c *Context) BufferData(target uint32, data []byte, usage uint32) {
	c.record("bufferData", target, data, usage)
}
func (c *Context) CheckFramebufferStatus(target uint32) uint32 {
	c.record("checkFramebufferStatus", target)
	return 0x8CD5 // FRAMEBUFFER_COMPLETE
}
func (c *Context) Clear(mask uint32)                 { c.record("clear", mask) }
func (c *Context) ClearColor(r, g, b, a float32)     { c.record("clearColor", r, g, b, a) }
func (c *Context) CompileShader(shader webgl.Object) { c.record("compileShader", shader) }
func (c *Context) GetShaderParameterBool(shader webgl.Object, pname uint32) bool {
	c.record("getShaderParameter", shader, pname)
	return !c.FailCompile
}
func (c *Context) CreateBuffer() webgl.Object      { return c.create("Buffer") }
func (c *Context) CreateFramebuffer() webgl.Object { return c.create("Framebuffer") }
func (c *Context) CreateProgram() webgl.Object     { return c.create("Program") }
func (c *Context) CreateShader(shaderType uint32) webgl.Object {
	return c.create("Shader")
}
func (c *Context) CreateTexture() webgl.Object        { return c.create("Texture") }
func (c *Context) CreateVertexArray() webgl.Object    { return c.create("VertexArray") }
func (c *Context) DeleteBuffer(buffer webgl.Object)   { c.record("deleteBuffer", buffer) }
func (c *Context) DeleteFramebuffer(fb webgl.Object)  { c.record("deleteFramebuffer", fb) }
func (c *Context) DeleteProgram(program webgl.Object) { c.record("deleteProgram", program) }
func (c *Context) DeleteShader(shader webgl.Object)   { c.record("deleteShader", shader) }
func (c *Context) DeleteTexture(texture webgl.Object) { c.record("deleteTexture", texture) }
func (c *Context) DeleteVertexArray(vao webgl.Object) { c.record("deleteVertexArray", vao) }
func (c *Context) DepthFunc(fn uint32)                { c.record("depthFunc", fn) }
func (c *Context) DetachShader(program, shader webgl.Object) {
	c.record("detachShader", program, shader)
}
func (c *Context) Disable(capability uint32) { c.record("disable", capability) }
func (c *Context) DrawArrays(mode uint32, first, count int32) {
	c.record("drawArrays", mode, first, count)
}
func (c *Context) DrawElements(mode uint32, count int32, typ uint32, offset int32) {
	c.record("drawElements", mode, count, typ, offset)
}
func (c *Context) Enable(capability uint32)             { c.record("enable", capability) }
func (c *Context) EnableVertexAttribArray(index uint32) { c.record("enableVertexAttribArray", index) }
func (c *Context) FramebufferTexture2D(target, attachment, textarget uint32, texture webgl.Object, level int32) {
	c.record("framebufferTexture2D", target, attachment, textarget, texture, level)
}
func (c *Context) FrontFace(mode uint32) { c.record("frontFace", mode) }
func (c *Context) GetAttribLocation(program webgl.Object, name string) int32 {
	c.record("getAttribLocation", program, name)
	return 0
}
func (c *Context) GetError() uint32 {
	c.record("getError")
	return 0
}
func (c *Context) GetShaderInfoLog(shader webgl.Object) string {
	c.record("getShaderInfoLog", shader)
	return c.ShaderInfoLog
}
func (c *Context) GetUniformLocation(program webgl.Object, name string) webgl.Object {
	loc := c.create("UniformLocation")
	c.record("getUniformLocation", program, name)
	return loc
}
func (c *Context) LinkProgram(program webgl.Object) { c.record("linkProgram", program) }
func (c *Context) GetProgramParameterBool(program webgl.Object, pname uint32) bool {
	c.record("getProgramParameter", program, pname)
	return !c.FailLink
}
func (c *Context) GetProgramInfoLog(program webgl.Object) string {
	c.record("getProgramInfoLog", program)
	return c.ProgramInfoLog
}
func (c *Context) PixelStorei(pname uint32, param int32) { c.record("pixelStorei", pname, param) }
func (c *Context) ShaderSource(shader webgl.Object, source string) {
	c.record("shaderSource", shader, source)
}
func (c *Context) TexImage2D(target uint32, level, internalFormat, width, height, border int32, format, typ uint32, pixels []byte) {
	c.record("texImage2D", target, level, internalFormat, width, height, border, format, typ, pixels)
}
func (c *Context) TexParameterf(target, pname uint32, param float32) {
	c.record("texParameterf", target, pname, param)
}
func (c *Context) TexParameteri(target, pname uint32, param int32) {
	c.record("texParameteri", target, pname, param)
}
func (c *Context) Uniform1f(location webgl.Object, x float32) { c.record("uniform1f", location, x) }
func (c *Context) Uniform1i(location webgl.Object, x int32)   { c.record("uniform1i", location, x) }
func (c *Context) Uniform4f(location webgl.Object, x, y, z, w float32) {
	c.record("uniform4f", location, x, y, z, w)
}
func (c *Context) UniformMatrix4fv(location webgl.Object, transpose bool, data []float32) {
	c.record("uniformMatrix4fv", location, transpose, data)
}
func (c *Context) UseProgram(program webgl.Object) { c.record("useProgram", program) }
func (c *Context) VertexAttribPointer(index uint32, size int32, typ uint32, normalized bool, stride, offset int32) {
	c.record("vertexAttribPointer", index, size, typ, normalized, stride, offset)
}
func (c *Context) Viewport(x, y, width, height int32) { c.record("viewport", x, y, width, height) }
