// Package webgl forwards the guest's GL imports to a WebGL2 context,
// translating integer handles and linear-memory arguments on the way.
package webgl

// Object is an opaque GL object reference owned by a Context. A nil Object
// stands for the null object.
type Object any

// Enum values used by the bridge itself.
const (
	CompileStatus = 0x8B81
	LinkStatus    = 0x8B82
)

// Context is the WebGL2 surface used by the guest.
type Context interface {
	DrawingBufferWidth() int
	DrawingBufferHeight() int

	ActiveTexture(texture uint32)
	AttachShader(program, shader Object)
	BindBuffer(target uint32, buffer Object)
	BindVertexArray(vao Object)
	BindFramebuffer(target uint32, framebuffer Object)
	BindTexture(target uint32, texture Object)
	BlendFunc(sfactor, dfactor uint32)
	BufferData(target uint32, data []byte, usage uint32)
	CheckFramebufferStatus(target uint32) uint32
	Clear(mask uint32)
	ClearColor(r, g, b, a float32)
	CompileShader(shader Object)
	GetShaderParameterBool(shader Object, pname uint32) bool
	CreateBuffer() Object
	CreateFramebuffer() Object
	CreateProgram() Object
	CreateShader(shaderType uint32) Object
	CreateTexture() Object
	CreateVertexArray() Object
	DeleteBuffer(buffer Object)
	DeleteFramebuffer(framebuffer Object)
	DeleteProgram(program Object)
	DeleteShader(shader Object)
	DeleteTexture(texture Object)
	DeleteVertexArray(vao Object)
	DepthFunc(fn uint32)
	DetachShader(program, shader Object)
	Disable(capability uint32)
	DrawArrays(mode uint32, first, count int32)
	DrawElements(mode uint32, count int32, typ uint32, offset int32)
	Enable(capability uint32)
	EnableVertexAttribArray(index uint32)
	FramebufferTexture2D(target, attachment, textarget uint32, texture Object, level int32)
	FrontFace(mode uint32)
	GetAttribLocation(program Object, name string) int32
	GetError() uint32
	GetShaderInfoLog(shader Object) string
	GetUniformLocation(program Object, name string) Object
	LinkProgram(program Object)
	GetProgramParameterBool(program Object, pname uint32) bool
	GetProgramInfoLog(program Object) string
	PixelStorei(pname uint32, param int32)
	ShaderSource(shader Object, source string)
	// TexImage2D uploads pixels; a nil slice allocates without uploading.
	TexImage2D(target uint32, level, internalFormat, width, height, border int32, format, typ uint32, pixels []byte)
	TexParameterf(target, pname uint32, param float32)
	TexParameteri(target, pname uint32, param int32)
	Uniform1f(location Object, x float32)
	Uniform1i(location Object, x int32)
	Uniform4f(location Object, x, y, z, w float32)
	UniformMatrix4fv(location Object, transpose bool, data []float32)
	UseProgram(program Object)
	VertexAttribPointer(index uint32, size int32, typ uint32, normalized bool, stride, offset int32)
	Viewport(x, y, width, height int32)
}
