package webgl

import (
	"fmt"
	"math"

	"github.com/hulkholden/webglhost/common/handles"
	"github.com/hulkholden/webglhost/common/wasmmem"
)

// Handle is the integer the guest holds in place of a GL object.
type Handle = handles.Handle

// Bridge implements the guest's GL imports on top of a Context. Handles are
// not validated: an unknown or deleted handle is forwarded as the null object.
// Errors are only returned for linear-memory accesses out of range.
type Bridge struct {
	gl  Context
	mem func() wasmmem.Memory

	shaders          handles.Table[Object]
	programs         handles.Table[Object]
	buffers          handles.Table[Object]
	vertexArrays     handles.Table[Object]
	textures         handles.Table[Object]
	framebuffers     handles.Table[Object]
	uniformLocations handles.Table[Object]
}

// NewBridge returns a Bridge over gl. mem is called on each access since the
// guest's memory view can change when it grows.
func NewBridge(gl Context, mem func() wasmmem.Memory) *Bridge {
	return &Bridge{gl: gl, mem: mem}
}

func (b *Bridge) ScreenWidth() int32  { return int32(b.gl.DrawingBufferWidth()) }
func (b *Bridge) ScreenHeight() int32 { return int32(b.gl.DrawingBufferHeight()) }

func (b *Bridge) ActiveTexture(target uint32) { b.gl.ActiveTexture(target) }

func (b *Bridge) AttachShader(program, shader Handle) {
	b.gl.AttachShader(b.programs.Lookup(program), b.shaders.Lookup(shader))
}

func (b *Bridge) BindBuffer(target uint32, buffer Handle) {
	b.gl.BindBuffer(target, b.buffers.Lookup(buffer))
}

func (b *Bridge) BindVertexArray(vao Handle) {
	b.gl.BindVertexArray(b.vertexArrays.Lookup(vao))
}

func (b *Bridge) BindFramebuffer(target uint32, framebuffer Handle) {
	b.gl.BindFramebuffer(target, b.framebuffers.Lookup(framebuffer))
}

func (b *Bridge) BindTexture(target uint32, texture Handle) {
	b.gl.BindTexture(target, b.textures.Lookup(texture))
}

func (b *Bridge) BlendFunc(sfactor, dfactor uint32) { b.gl.BlendFunc(sfactor, dfactor) }

func (b *Bridge) BufferData(target, count, dataPtr, usage uint32) error {
	data, err := wasmmem.ReadBytes(b.mem(), dataPtr, count)
	if err != nil {
		return err
	}
	b.gl.BufferData(target, data, usage)
	return nil
}

func (b *Bridge) CheckFramebufferStatus(target uint32) uint32 {
	return b.gl.CheckFramebufferStatus(target)
}

func (b *Bridge) Clear(mask uint32)              { b.gl.Clear(mask) }
func (b *Bridge) ClearColor(r, g, bl, a float32) { b.gl.ClearColor(r, g, bl, a) }

func (b *Bridge) CompileShader(shader Handle) { b.gl.CompileShader(b.shaders.Lookup(shader)) }

func (b *Bridge) ShaderCompileStatus(shader Handle) uint32 {
	return boolToU32(b.gl.GetShaderParameterBool(b.shaders.Lookup(shader), CompileStatus))
}

func (b *Bridge) CreateBuffer() Handle      { return b.buffers.Create(b.gl.CreateBuffer()) }
func (b *Bridge) CreateFramebuffer() Handle { return b.framebuffers.Create(b.gl.CreateFramebuffer()) }
func (b *Bridge) CreateProgram() Handle     { return b.programs.Create(b.gl.CreateProgram()) }
func (b *Bridge) CreateTexture() Handle     { return b.textures.Create(b.gl.CreateTexture()) }
func (b *Bridge) CreateVertexArray() Handle { return b.vertexArrays.Create(b.gl.CreateVertexArray()) }
func (b *Bridge) CreateShader(typ uint32) Handle {
	return b.shaders.Create(b.gl.CreateShader(typ))
}

func (b *Bridge) DeleteBuffer(h Handle) {
	obj, _ := b.buffers.Delete(h)
	b.gl.DeleteBuffer(obj)
}

func (b *Bridge) DeleteFramebuffer(h Handle) {
	obj, _ := b.framebuffers.Delete(h)
	b.gl.DeleteFramebuffer(obj)
}

func (b *Bridge) DeleteProgram(h Handle) {
	obj, _ := b.programs.Delete(h)
	b.gl.DeleteProgram(obj)
}

func (b *Bridge) DeleteShader(h Handle) {
	obj, _ := b.shaders.Delete(h)
	b.gl.DeleteShader(obj)
}

func (b *Bridge) DeleteTexture(h Handle) {
	obj, _ := b.textures.Delete(h)
	b.gl.DeleteTexture(obj)
}

func (b *Bridge) DeleteVertexArray(h Handle) {
	obj, _ := b.vertexArrays.Delete(h)
	b.gl.DeleteVertexArray(obj)
}

func (b *Bridge) DepthFunc(fn uint32) { b.gl.DepthFunc(fn) }

func (b *Bridge) DetachShader(program, shader Handle) {
	b.gl.DetachShader(b.programs.Lookup(program), b.shaders.Lookup(shader))
}

func (b *Bridge) Disable(capability uint32) { b.gl.Disable(capability) }

func (b *Bridge) DrawArrays(mode uint32, first, count int32) { b.gl.DrawArrays(mode, first, count) }

func (b *Bridge) DrawElements(mode uint32, count int32, typ uint32, offset int32) {
	b.gl.DrawElements(mode, count, typ, offset)
}

func (b *Bridge) Enable(capability uint32)           { b.gl.Enable(capability) }
func (b *Bridge) EnableVertexAttribArray(idx uint32) { b.gl.EnableVertexAttribArray(idx) }

func (b *Bridge) FramebufferTexture2D(target, attachment, textarget uint32, texture Handle, level int32) {
	b.gl.FramebufferTexture2D(target, attachment, textarget, b.textures.Lookup(texture), level)
}

func (b *Bridge) FrontFace(mode uint32) { b.gl.FrontFace(mode) }

func (b *Bridge) GetAttribLocation(program Handle, namePtr, nameLen uint32) (int32, error) {
	name, err := wasmmem.ReadString(b.mem(), namePtr, nameLen)
	if err != nil {
		return -1, err
	}
	return b.gl.GetAttribLocation(b.programs.Lookup(program), name), nil
}

func (b *Bridge) GetError() uint32 { return b.gl.GetError() }

func (b *Bridge) GetShaderInfoLog(shader Handle, maxLength, lengthPtr, infoLogPtr uint32) error {
	log := b.gl.GetShaderInfoLog(b.shaders.Lookup(shader))
	_, err := wasmmem.WriteCString(b.mem(), infoLogPtr, maxLength, wasmmem.OptionalPtr(lengthPtr), log)
	return err
}

// GetUniformLocation issues a fresh handle on every call, even for a name
// looked up before.
func (b *Bridge) GetUniformLocation(program Handle, namePtr, nameLen uint32) (Handle, error) {
	name, err := wasmmem.ReadString(b.mem(), namePtr, nameLen)
	if err != nil {
		return 0, err
	}
	loc := b.gl.GetUniformLocation(b.programs.Lookup(program), name)
	return b.uniformLocations.Create(loc), nil
}

func (b *Bridge) LinkProgram(program Handle) { b.gl.LinkProgram(b.programs.Lookup(program)) }

func (b *Bridge) ProgramLinkStatus(program Handle) uint32 {
	return boolToU32(b.gl.GetProgramParameterBool(b.programs.Lookup(program), LinkStatus))
}

func (b *Bridge) GetProgramInfoLog(program Handle, maxLength, lengthPtr, infoLogPtr uint32) error {
	log := b.gl.GetProgramInfoLog(b.programs.Lookup(program))
	_, err := wasmmem.WriteCString(b.mem(), infoLogPtr, maxLength, wasmmem.OptionalPtr(lengthPtr), log)
	return err
}

func (b *Bridge) PixelStorei(pname uint32, param int32) { b.gl.PixelStorei(pname, param) }

func (b *Bridge) ShaderSource(shader Handle, srcPtr, srcLen uint32) error {
	src, err := wasmmem.ReadString(b.mem(), srcPtr, srcLen)
	if err != nil {
		return err
	}
	b.gl.ShaderSource(b.shaders.Lookup(shader), src)
	return nil
}

// TexImage2D uploads dataLen bytes at dataPtr, or allocates storage without
// uploading when dataLen is 0.
func (b *Bridge) TexImage2D(target uint32, level, internalFormat, width, height, border int32, format, typ, dataPtr, dataLen uint32) error {
	var pixels []byte
	if dataLen > 0 {
		var err error
		pixels, err = wasmmem.ReadBytes(b.mem(), dataPtr, dataLen)
		if err != nil {
			return err
		}
	}
	b.gl.TexImage2D(target, level, internalFormat, width, height, border, format, typ, pixels)
	return nil
}

func (b *Bridge) TexParameterf(target, pname uint32, param float32) {
	b.gl.TexParameterf(target, pname, param)
}

func (b *Bridge) TexParameteri(target, pname uint32, param int32) {
	b.gl.TexParameteri(target, pname, param)
}

func (b *Bridge) Uniform1f(location Handle, x float32) {
	b.gl.Uniform1f(b.uniformLocations.Lookup(location), x)
}

func (b *Bridge) Uniform1i(location Handle, x int32) {
	b.gl.Uniform1i(b.uniformLocations.Lookup(location), x)
}

func (b *Bridge) Uniform4f(location Handle, x, y, z, w float32) {
	b.gl.Uniform4f(b.uniformLocations.Lookup(location), x, y, z, w)
}

// UniformMatrix4fv uploads count 4x4 matrices read from dataPtr.
func (b *Bridge) UniformMatrix4fv(location Handle, count, transpose, dataPtr uint32) error {
	if uint64(count)*16 > math.MaxUint32 {
		return fmt.Errorf("reading %d matrices at %#x: %w", count, dataPtr, wasmmem.ErrOutOfRange)
	}
	data, err := wasmmem.ReadFloat32s(b.mem(), dataPtr, count*16)
	if err != nil {
		return err
	}
	b.gl.UniformMatrix4fv(b.uniformLocations.Lookup(location), transpose != 0, data)
	return nil
}

func (b *Bridge) UseProgram(program Handle) { b.gl.UseProgram(b.programs.Lookup(program)) }

func (b *Bridge) VertexAttribPointer(index uint32, size int32, typ, normalized uint32, stride, offset int32) {
	b.gl.VertexAttribPointer(index, size, typ, normalized != 0, stride, offset)
}

func (b *Bridge) Viewport(x, y, width, height int32) { b.gl.Viewport(x, y, width, height) }

func boolToU32(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}
