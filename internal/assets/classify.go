package assets

import (
	"path"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Known asset extensions. Anything else is classified by content.
var (
	binaryExtensions = map[string]bool{
		".stl": true, ".msh": true, ".skn": true, ".smdl": true, ".mjb": true,
		".bin": true, ".npy": true, ".hdr": true, ".ktx": true, ".ktx2": true,
		".dds": true, ".png": true, ".jpg": true, ".jpeg": true, ".bmp": true,
		".gif": true, ".tga": true, ".glb": true,
	}
	textExtensions = map[string]bool{
		".xml": true, ".mjcf": true, ".urdf": true, ".json": true, ".obj": true,
		".mtl": true, ".txt": true, ".yaml": true, ".yml": true, ".csv": true,
		".gltf": true, ".sdf": true,
	}
)

// IsBinary classifies an asset as binary or text. The extension decides when
// it is known; otherwise content sniffing (magic numbers, then UTF-8
// validity) decides.
func IsBinary(p string, data []byte) bool {
	ext := strings.ToLower(path.Ext(p))
	switch {
	case textExtensions[ext]:
		return false
	case binaryExtensions[ext]:
		return true
	case ext != "" && filetype.IsSupported(strings.TrimPrefix(ext, ".")):
		return true
	}

	if kind, err := filetype.Match(data); err == nil && kind != types.Unknown {
		return true
	}
	return !utf8.Valid(data)
}

// DecodeText decodes UTF-8 text, dropping a byte order mark and replacing
// invalid sequences.
func DecodeText(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
