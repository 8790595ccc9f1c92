package vm

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Program images: CBOR serialization of compiled programs
// ---------------------------------------------------------------------------

// ImageMagic identifies Weft program image files.
const ImageMagic = "WEFT"

// ImageVersion is the current image format version. Readers reject images
// with a different version.
const ImageVersion = 1

// image is the on-disk envelope for a compiled program.
type image struct {
	Magic   string   `cbor:"1,keyasint"`
	Version int      `cbor:"2,keyasint"`
	Program *Program `cbor:"3,keyasint"`
}

// Canonical mode gives deterministic bytes: identical programs always encode
// identically.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalProgram serializes a program to CBOR image bytes.
func MarshalProgram(p *Program) ([]byte, error) {
	data, err := cborEncMode.Marshal(&image{
		Magic:   ImageMagic,
		Version: ImageVersion,
		Program: p,
	})
	if err != nil {
		return nil, fmt.Errorf("vm: marshal program: %w", err)
	}
	return data, nil
}

// UnmarshalProgram deserializes a program from CBOR image bytes.
func UnmarshalProgram(data []byte) (*Program, error) {
	var img image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("vm: unmarshal program: %w", err)
	}
	if img.Magic != ImageMagic {
		return nil, fmt.Errorf("vm: bad image magic %q", img.Magic)
	}
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("vm: unsupported image version %d", img.Version)
	}
	if img.Program == nil {
		return nil, fmt.Errorf("vm: image has no program")
	}
	return img.Program, nil
}

// WriteImage writes a program image to a file.
func WriteImage(path string, p *Program) error {
	data, err := MarshalProgram(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("vm: write image %s: %w", path, err)
	}
	return nil
}

// ReadImage reads a program image from a file.
func ReadImage(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vm: read image %s: %w", path, err)
	}
	return UnmarshalProgram(data)
}
