package glrecord

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRecording(t *testing.T) {
	c := New(640, 480)
	shader := c.CreateShader(0x8B31)
	c.ShaderSource(shader, "void main(){}")
	c.CompileShader(shader)
	c.BufferData(0x8892, []byte{1, 2, 3}, 0x88E4)
	c.TexImage2D(0x0DE1, 0, 0x1908, 2, 2, 0, 0x1908, 0x1401, nil)
	c.BindBuffer(0x8892, nil)
	c.UniformMatrix4fv(nil, false, []float32{1, 0})

	want := []string{
		"createShader()",
		`shaderSource(Shader#1, "void main(){}")`,
		"compileShader(Shader#1)",
		"bufferData(34962, [3 bytes], 35044)",
		"texImage2D(3553, 0, 6408, 2, 2, 0, 6408, 5121, null)",
		"bindBuffer(34962, null)",
		"uniformMatrix4fv(null, false, [1 0])",
	}
	if diff := cmp.Diff(want, c.Calls()); diff != "" {
		t.Errorf("Calls() mismatch (-want +got):\n%s", diff)
	}

	c.Reset()
	if got := len(c.Calls()); got != 0 {
		t.Errorf("len(Calls()) after Reset = %d, want 0", got)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name        string
		failCompile bool
		failLink    bool
		wantCompile bool
		wantLink    bool
	}{
		{name: "ok", wantCompile: true, wantLink: true},
		{name: "compile fails", failCompile: true, wantLink: true},
		{name: "link fails", failLink: true, wantCompile: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := &Context{FailCompile: tc.failCompile, FailLink: tc.failLink}
			if got := c.GetShaderParameterBool(nil, 0x8B81); got != tc.wantCompile {
				t.Errorf("compile status = %v, want %v", got, tc.wantCompile)
			}
			if got := c.GetProgramParameterBool(nil, 0x8B82); got != tc.wantLink {
				t.Errorf("link status = %v, want %v", got, tc.wantLink)
			}
		})
	}
}

func TestObjectsAreSequential(t *testing.T) {
	c := New(1, 1)
	a := c.CreateBuffer().(*Object)
	b := c.CreateTexture().(*Object)
	if diff := cmp.Diff([]Object{{"Buffer", 1}, {"Texture", 2}}, []Object{*a, *b}); diff != "" {
		t.Errorf("objects mismatch (-want +got):\n%s", diff)
	}
}
