package platform

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/hulkholden/webglhost/common/webgl"
)

// ModuleName is the import module name the game links against.
const ModuleName = "env"

// trap aborts the calling guest function. wazero turns the panic into an
// error returned from the outermost exported function call.
func trap(err error) {
	if err != nil {
		panic(err)
	}
}

// Instantiate registers the env module with rt.
func (e *Env) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	b := rt.NewHostModuleBuilder(ModuleName)
	for name, fn := range e.imports() {
		b.NewFunctionBuilder().WithFunc(fn).Export(name)
	}
	mod, err := b.Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("instantiating %s module: %w", ModuleName, err)
	}
	return mod, nil
}

func (e *Env) imports() map[string]any {
	gl := e.gl
	h := func(v uint32) webgl.Handle { return webgl.Handle(v) }

	return map[string]any{
		"platform_run": func(ctx context.Context, maxDelta, tickDelta float64) {
			trap(e.Run(ctx, maxDelta, tickDelta))
		},
		"platform_quit": func() { e.Quit() },
		"platform_log_write": func(ptr, length uint32) {
			trap(e.LogWrite(ptr, length))
		},
		"platform_log_flush":       func() { e.LogFlush() },
		"platform_reject_promise":  func(id, errno uint32) { e.RejectPromise(id, errno) },
		"platform_resolve_promise": func(id, data uint32) { e.ResolvePromise(id, data) },
		"platform_fetch": func(ctx context.Context, ptr, length, callback, fetchCtx, allocator uint32) {
			trap(e.Fetch(ctx, ptr, length, callback, fetchCtx, allocator))
		},

		"getScreenW": func() int32 { return gl.ScreenWidth() },
		"getScreenH": func() int32 { return gl.ScreenHeight() },

		"activeTexture": func(target uint32) { gl.ActiveTexture(target) },
		"attachShader": func(program, shader uint32) {
			gl.AttachShader(h(program), h(shader))
		},
		"bindBuffer":      func(target, buffer uint32) { gl.BindBuffer(target, h(buffer)) },
		"bindVertexArray": func(vao uint32) { gl.BindVertexArray(h(vao)) },
		"bindFramebuffer": func(target, fb uint32) { gl.BindFramebuffer(target, h(fb)) },
		"bindTexture":     func(target, texture uint32) { gl.BindTexture(target, h(texture)) },
		"blendFunc":       func(sfactor, dfactor uint32) { gl.BlendFunc(sfactor, dfactor) },
		"bufferData": func(target, count, dataPtr, usage uint32) {
			trap(gl.BufferData(target, count, dataPtr, usage))
		},
		"checkFramebufferStatus": func(target uint32) uint32 { return gl.CheckFramebufferStatus(target) },
		"clear":                  func(mask uint32) { gl.Clear(mask) },
		"clearColor":             func(r, g, b, a float32) { gl.ClearColor(r, g, b, a) },
		"compileShader":          func(shader uint32) { gl.CompileShader(h(shader)) },
		"getShaderCompileStatus": func(shader uint32) uint32 { return gl.ShaderCompileStatus(h(shader)) },
		"createBuffer":           func() uint32 { return uint32(gl.CreateBuffer()) },
		"createFramebuffer":      func() uint32 { return uint32(gl.CreateFramebuffer()) },
		"createProgram":          func() uint32 { return uint32(gl.CreateProgram()) },
		"createShader":           func(typ uint32) uint32 { return uint32(gl.CreateShader(typ)) },
		"createTexture":          func() uint32 { return uint32(gl.CreateTexture()) },
		"createVertexArray":      func() uint32 { return uint32(gl.CreateVertexArray()) },
		"deleteBuffer":           func(id uint32) { gl.DeleteBuffer(h(id)) },
		"deleteFramebuffer":      func(id uint32) { gl.DeleteFramebuffer(h(id)) },
		"deleteProgram":          func(id uint32) { gl.DeleteProgram(h(id)) },
		"deleteShader":           func(id uint32) { gl.DeleteShader(h(id)) },
		"deleteTexture":          func(id uint32) { gl.DeleteTexture(h(id)) },
		"deleteVertexArray":      func(id uint32) { gl.DeleteVertexArray(h(id)) },
		"depthFunc":              func(fn uint32) { gl.DepthFunc(fn) },
		"detachShader": func(program, shader uint32) {
			gl.DetachShader(h(program), h(shader))
		},
		"disable":    func(capability uint32) { gl.Disable(capability) },
		"drawArrays": func(mode uint32, first, count int32) { gl.DrawArrays(mode, first, count) },
		"drawElements": func(mode uint32, count int32, typ uint32, offset int32) {
			gl.DrawElements(mode, count, typ, offset)
		},
		"enable":                  func(capability uint32) { gl.Enable(capability) },
		"enableVertexAttribArray": func(index uint32) { gl.EnableVertexAttribArray(index) },
		"framebufferTexture2D": func(target, attachment, textarget, texture uint32, level int32) {
			gl.FramebufferTexture2D(target, attachment, textarget, h(texture), level)
		},
		"frontFace": func(mode uint32) { gl.FrontFace(mode) },
		"getAttribLocation_": func(program, namePtr, nameLen uint32) int32 {
			loc, err := gl.GetAttribLocation(h(program), namePtr, nameLen)
			trap(err)
			return loc
		},
		"getError": func() uint32 { return gl.GetError() },
		"getShaderInfoLog": func(shader, maxLength, lengthPtr, infoLogPtr uint32) {
			trap(gl.GetShaderInfoLog(h(shader), maxLength, lengthPtr, infoLogPtr))
		},
		"getUniformLocation_": func(program, namePtr, nameLen uint32) uint32 {
			loc, err := gl.GetUniformLocation(h(program), namePtr, nameLen)
			trap(err)
			return uint32(loc)
		},
		"linkProgram":          func(program uint32) { gl.LinkProgram(h(program)) },
		"getProgramLinkStatus": func(program uint32) uint32 { return gl.ProgramLinkStatus(h(program)) },
		"getProgramInfoLog": func(program, maxLength, lengthPtr, infoLogPtr uint32) {
			trap(gl.GetProgramInfoLog(h(program), maxLength, lengthPtr, infoLogPtr))
		},
		"pixelStorei": func(pname uint32, param int32) { gl.PixelStorei(pname, param) },
		"shaderSource_": func(shader, srcPtr, srcLen uint32) {
			trap(gl.ShaderSource(h(shader), srcPtr, srcLen))
		},
		"texImage2D": func(target uint32, level, internalFormat, width, height, border int32, format, typ, dataPtr, dataLen uint32) {
			trap(gl.TexImage2D(target, level, internalFormat, width, height, border, format, typ, dataPtr, dataLen))
		},
		"texParameterf": func(target, pname uint32, param float32) { gl.TexParameterf(target, pname, param) },
		"texParameteri": func(target, pname uint32, param int32) { gl.TexParameteri(target, pname, param) },
		"uniform1f":     func(location uint32, x float32) { gl.Uniform1f(h(location), x) },
		"uniform1i":     func(location uint32, x int32) { gl.Uniform1i(h(location), x) },
		"uniform4f": func(location uint32, x, y, z, w float32) {
			gl.Uniform4f(h(location), x, y, z, w)
		},
		"uniformMatrix4fv": func(location, count, transpose, dataPtr uint32) {
			trap(gl.UniformMatrix4fv(h(location), count, transpose, dataPtr))
		},
		"useProgram": func(program uint32) { gl.UseProgram(h(program)) },
		"vertexAttribPointer": func(index uint32, size int32, typ, normalized uint32, stride, offset int32) {
			gl.VertexAttribPointer(index, size, typ, normalized, stride, offset)
		},
		"viewport": func(x, y, width, height int32) { gl.Viewport(x, y, width, height) },
	}
}
