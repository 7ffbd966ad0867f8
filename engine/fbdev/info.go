package fbdev

import "bytes"

// fixScreenInfo mirrors struct fb_fix_screeninfo.
type fixScreenInfo struct {
	ID           [16]byte
	SmemStart    uintptr
	SmemLen      uint32
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	Xpanstep     uint16
	Ypanstep     uint16
	Ywrapstep    uint16
	LineLength   uint32
	MmioStart    uintptr
	MmioLen      uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

func (f *fixScreenInfo) name() string {
	if i := bytes.IndexByte(f.ID[:], 0); i >= 0 {
		return string(f.ID[:i])
	}
	return string(f.ID[:])
}

// bitfield mirrors struct fb_bitfield.
type bitfield struct {
	Offset   uint32
	Length   uint32
	MsbRight uint32
}

// varScreenInfo mirrors struct fb_var_screeninfo.
type varScreenInfo struct {
	Xres         uint32
	Yres         uint32
	XresVirtual  uint32
	YresVirtual  uint32
	Xoffset      uint32
	Yoffset      uint32
	BitsPerPixel uint32
	Grayscale    uint32
	Red          bitfield
	Green        bitfield
	Blue         bitfield
	Transp       bitfield
	Nonstd       uint32
	Activate     uint32
	Height       uint32
	Width        uint32
	AccelFlags   uint32
	Pixclock     uint32
	LeftMargin   uint32
	RightMargin  uint32
	UpperMargin  uint32
	LowerMargin  uint32
	HsyncLen     uint32
	VsyncLen     uint32
	Sync         uint32
	Vmode        uint32
	Rotate       uint32
	Colorspace   uint32
	Reserved     [4]uint32
}
