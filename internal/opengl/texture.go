package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"
)

func (c *Context) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (c *Context) DeleteTexture(texture uint32) {
	if texture == 0 {
		return
	}
	gl.DeleteTextures(1, &texture)
}

func (c *Context) ActiveTexture(unit uint32)          { gl.ActiveTexture(unit) }
func (c *Context) BindTexture(target, texture uint32) { gl.BindTexture(target, texture) }

// TexImage2D passes a nil pointer when pixels is empty so the driver
// allocates storage without an upload (render-target attachments).
func (c *Context) TexImage2D(target uint32, internalFormat int32, width, height int32, format, xtype uint32, pixels []byte) {
	if len(pixels) == 0 {
		gl.TexImage2D(target, 0, internalFormat, width, height, 0, format, xtype, nil)
		return
	}
	// Rows of RGB data are not 4-byte aligned in general.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(target, 0, internalFormat, width, height, 0, format, xtype, gl.Ptr(pixels))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
}

func (c *Context) TexParameteri(target, pname uint32, param int32) {
	gl.TexParameteri(target, pname, param)
}

func (c *Context) GenerateMipmap(target uint32) { gl.GenerateMipmap(target) }

func (c *Context) GetTexLevelParameteri(target uint32, level int32, pname uint32) int32 {
	var v int32
	gl.GetTexLevelParameteriv(target, level, pname, &v)
	return v
}
