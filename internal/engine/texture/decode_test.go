package texture

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/simscene/internal/physics"
)

func TestDecode_ChannelExpansion(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		pixel    []byte
		want     []byte
	}{
		{"luminance", 1, []byte{200}, []byte{200, 200, 200, 255}},
		{"luminance alpha", 2, []byte{90, 17}, []byte{90, 90, 90, 17}},
		{"rgb", 3, []byte{10, 20, 30}, []byte{10, 20, 30, 255}},
		{"rgba", 4, []byte{1, 2, 3, 4}, []byte{1, 2, 3, 4}},
	}

	d := NewDecoder(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const w, h = 3, 2
			src := bytes.Repeat(tt.pixel, w*h)

			r, err := d.Decode(src, Descriptor{Width: w, Height: h, Channels: tt.channels})
			require.NoError(t, err)
			require.Len(t, r.Pix(), w*h*4)
			assert.Equal(t, bytes.Repeat(tt.want, w*h), r.Pix())
			assert.Equal(t, w, r.Width())
			assert.Equal(t, h, r.Height())
		})
	}
}

func TestDecode_TopRowFirst(t *testing.T) {
	// 1x2 luminance: top row 10, bottom row 20
	r, err := NewDecoder(nil).Decode([]byte{10, 20}, Descriptor{Width: 1, Height: 2, Channels: 1})
	require.NoError(t, err)
	assert.Equal(t, uint8(10), r.Image.RGBAAt(0, 0).R)
	assert.Equal(t, uint8(20), r.Image.RGBAAt(0, 1).R)
}

func TestDecode_AddressOffset(t *testing.T) {
	src := []byte{0xFF, 0xFF, 1, 2, 3}
	r, err := NewDecoder(nil).Decode(src, Descriptor{Width: 1, Height: 1, Channels: 3, Address: 2})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 255}, r.Pix())
}

func TestDecode_NoTexture(t *testing.T) {
	tests := []struct {
		name string
		src  []byte
		desc Descriptor
	}{
		{"short source", make([]byte, 11), Descriptor{Width: 2, Height: 2, Channels: 3}},
		{"address past end", make([]byte, 12), Descriptor{Width: 2, Height: 2, Channels: 3, Address: 1}},
		{"negative address", make([]byte, 12), Descriptor{Width: 2, Height: 2, Channels: 3, Address: -1}},
		{"zero channels", make([]byte, 12), Descriptor{Width: 2, Height: 2}},
		{"five channels", make([]byte, 20), Descriptor{Width: 2, Height: 2, Channels: 5}},
		{"zero width", make([]byte, 12), Descriptor{Height: 2, Channels: 3}},
		{"zero height", make([]byte, 12), Descriptor{Width: 2, Channels: 3}},
		{"overflowing size", make([]byte, 12), Descriptor{Width: 1 << 40, Height: 1 << 40, Channels: 4}},
	}

	d := NewDecoder(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := d.Decode(tt.src, tt.desc)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, ErrNoTexture)
		})
	}
}

func TestDecode_TypesAndColorSpace(t *testing.T) {
	d := NewDecoder(nil)
	src := []byte{1, 2, 3}

	r, err := d.Decode(src, Descriptor{Width: 1, Height: 1, Channels: 3, Type: physics.TextureCube, ColorSpace: physics.ColorSpaceSRGB})
	require.NoError(t, err)
	assert.Equal(t, TypeCube, r.Type)
	assert.Equal(t, ColorSpaceSRGB, r.ColorSpace)

	r, err = d.Decode(src, Descriptor{Width: 1, Height: 1, Channels: 3, ColorSpace: 9})
	require.NoError(t, err)
	assert.Equal(t, ColorSpaceDefault, r.ColorSpace)

	_, err = d.Decode(src, Descriptor{ID: 4, Width: 1, Height: 1, Channels: 3, Type: 7})
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Contains(t, err.Error(), "texture 4")
}

func TestDescriptorFor(t *testing.T) {
	tt := &physics.TextureTable{
		Width:    []int32{4, 8},
		Height:   []int32{2, 8},
		Adr:      []int32{0, 24},
		NChannel: []int32{3, 1},
	}

	d := DescriptorFor(tt, 1)
	assert.Equal(t, Descriptor{ID: 1, Width: 8, Height: 8, Address: 24, Channels: 1}, d)

	d = DescriptorFor(tt, 5)
	assert.Equal(t, -1, d.Address)
}
