// Package formats provides the compiled physics model container format.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
)

// SMDL format errors.
var (
	ErrInvalidModelMagic       = errors.New("invalid SMDL magic: expected 'SMDL'")
	ErrUnsupportedModelVersion = errors.New("unsupported SMDL version")
	ErrTruncatedModelData      = errors.New("truncated SMDL data")
	ErrDuplicateSection        = errors.New("duplicate SMDL section")
	ErrSectionKind             = errors.New("SMDL section has unexpected kind")
)

// ModelMagic is the 4-byte signature of a compiled model file.
const ModelMagic = "SMDL"

// ModelVersion represents the SMDL file version.
type ModelVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v ModelVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// CurrentModelVersion is the version written by EncodeModel.
var CurrentModelVersion = ModelVersion{Major: 1, Minor: 0}

// SectionKind is the element type of a section payload.
type SectionKind uint8

const (
	KindInt32   SectionKind = 1
	KindFloat32 SectionKind = 2
	KindFloat64 SectionKind = 3
	KindBytes   SectionKind = 4
	KindBool    SectionKind = 5
)

// String returns the kind name.
func (k SectionKind) String() string {
	switch k {
	case KindInt32:
		return "int32"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBytes:
		return "bytes"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k SectionKind) size() int {
	switch k {
	case KindInt32, KindFloat32:
		return 4
	case KindFloat64:
		return 8
	case KindBytes, KindBool:
		return 1
	default:
		return 0
	}
}

// Section is one named, typed column of a compiled model.
// Exactly one of the value slices is populated, matching Kind.
type Section struct {
	Name    string
	Kind    SectionKind
	Int32   []int32
	Float32 []float32
	Float64 []float64
	Bytes   []byte
	Bool    []bool
}

// Len returns the element count of the section.
func (s *Section) Len() int {
	switch s.Kind {
	case KindInt32:
		return len(s.Int32)
	case KindFloat32:
		return len(s.Float32)
	case KindFloat64:
		return len(s.Float64)
	case KindBytes:
		return len(s.Bytes)
	case KindBool:
		return len(s.Bool)
	}
	return 0
}

// ModelFile represents a parsed SMDL file.
type ModelFile struct {
	Version  ModelVersion
	Sections map[string]*Section
}

// NewModelFile returns an empty container at the current version.
func NewModelFile() *ModelFile {
	return &ModelFile{Version: CurrentModelVersion, Sections: make(map[string]*Section)}
}

// Has reports whether a section is present.
func (m *ModelFile) Has(name string) bool {
	_, ok := m.Sections[name]
	return ok
}

// Int32s returns an int32 section. A missing section yields nil.
func (m *ModelFile) Int32s(name string) ([]int32, error) {
	s, err := m.section(name, KindInt32)
	if s == nil {
		return nil, err
	}
	return s.Int32, nil
}

// Float32s returns a float32 section. A missing section yields nil.
func (m *ModelFile) Float32s(name string) ([]float32, error) {
	s, err := m.section(name, KindFloat32)
	if s == nil {
		return nil, err
	}
	return s.Float32, nil
}

// Float64s returns a float64 section. A missing section yields nil.
func (m *ModelFile) Float64s(name string) ([]float64, error) {
	s, err := m.section(name, KindFloat64)
	if s == nil {
		return nil, err
	}
	return s.Float64, nil
}

// Bytes returns a raw byte section. A missing section yields nil.
func (m *ModelFile) Bytes(name string) ([]byte, error) {
	s, err := m.section(name, KindBytes)
	if s == nil {
		return nil, err
	}
	return s.Bytes, nil
}

// Bools returns a bool section. A missing section yields nil.
func (m *ModelFile) Bools(name string) ([]bool, error) {
	s, err := m.section(name, KindBool)
	if s == nil {
		return nil, err
	}
	return s.Bool, nil
}

func (m *ModelFile) section(name string, kind SectionKind) (*Section, error) {
	s, ok := m.Sections[name]
	if !ok {
		return nil, nil
	}
	if s.Kind != kind {
		return nil, fmt.Errorf("%w: %s is %s, want %s", ErrSectionKind, name, s.Kind, kind)
	}
	return s, nil
}

// PutInt32s stores an int32 section.
func (m *ModelFile) PutInt32s(name string, v []int32) {
	m.Sections[name] = &Section{Name: name, Kind: KindInt32, Int32: v}
}

// PutFloat32s stores a float32 section.
func (m *ModelFile) PutFloat32s(name string, v []float32) {
	m.Sections[name] = &Section{Name: name, Kind: KindFloat32, Float32: v}
}

// PutFloat64s stores a float64 section.
func (m *ModelFile) PutFloat64s(name string, v []float64) {
	m.Sections[name] = &Section{Name: name, Kind: KindFloat64, Float64: v}
}

// PutBytes stores a raw byte section.
func (m *ModelFile) PutBytes(name string, v []byte) {
	m.Sections[name] = &Section{Name: name, Kind: KindBytes, Bytes: v}
}

// PutBools stores a bool section.
func (m *ModelFile) PutBools(name string, v []bool) {
	m.Sections[name] = &Section{Name: name, Kind: KindBool, Bool: v}
}

// LoadModelFile reads and parses an SMDL file from disk.
func LoadModelFile(path string) (*ModelFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading SMDL file: %w", err)
	}
	return ParseModel(data)
}

// ParseModel parses an SMDL file from raw bytes.
func ParseModel(data []byte) (*ModelFile, error) {
	if len(data) < 10 {
		return nil, ErrTruncatedModelData
	}

	if string(data[0:4]) != ModelMagic {
		return nil, ErrInvalidModelMagic
	}

	version := ModelVersion{Major: data[4], Minor: data[5]}

	// Supported versions: 1.x
	if version.Major != 1 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModelVersion, version)
	}

	r := bytes.NewReader(data[6:])

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: reading section count", ErrTruncatedModelData)
	}

	m := &ModelFile{Version: version, Sections: make(map[string]*Section, count)}
	for i := uint32(0); i < count; i++ {
		s, err := readSection(r)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		if _, dup := m.Sections[s.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSection, s.Name)
		}
		m.Sections[s.Name] = s
	}

	return m, nil
}

func readSection(r *bytes.Reader) (*Section, error) {
	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return nil, fmt.Errorf("%w: reading name length", ErrTruncatedModelData)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, fmt.Errorf("%w: reading name", ErrTruncatedModelData)
	}

	var kind uint8
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return nil, fmt.Errorf("%w: reading kind of %s", ErrTruncatedModelData, name)
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("%w: reading count of %s", ErrTruncatedModelData, name)
	}

	s := &Section{Name: string(name), Kind: SectionKind(kind)}
	size := s.Kind.size()
	if size == 0 {
		return nil, fmt.Errorf("%w: %s has kind %d", ErrSectionKind, name, kind)
	}
	// Reject counts that cannot fit before allocating.
	if int64(n)*int64(size) > int64(r.Len()) {
		return nil, fmt.Errorf("%w: %s needs %d bytes, %d left", ErrTruncatedModelData, name, int64(n)*int64(size), r.Len())
	}

	payload := make([]byte, int(n)*size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: reading %s", ErrTruncatedModelData, name)
	}

	switch s.Kind {
	case KindInt32:
		s.Int32 = make([]int32, n)
		for i := range s.Int32 {
			s.Int32[i] = int32(binary.LittleEndian.Uint32(payload[i*4:]))
		}
	case KindFloat32:
		s.Float32 = make([]float32, n)
		for i := range s.Float32 {
			s.Float32[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
		}
	case KindFloat64:
		s.Float64 = make([]float64, n)
		for i := range s.Float64 {
			s.Float64[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:]))
		}
	case KindBytes:
		s.Bytes = payload
	case KindBool:
		s.Bool = make([]bool, n)
		for i, b := range payload {
			s.Bool[i] = b != 0
		}
	}
	return s, nil
}

// EncodeModel serializes m. Sections are written in name order so the
// output is deterministic.
func EncodeModel(m *ModelFile) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteString(ModelMagic)
	buf.WriteByte(m.Version.Major)
	buf.WriteByte(m.Version.Minor)

	names := make([]string, 0, len(m.Sections))
	for name := range m.Sections {
		names = append(names, name)
	}
	sort.Strings(names)

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(names))); err != nil {
		return nil, err
	}

	for _, name := range names {
		s := m.Sections[name]
		if len(name) > math.MaxUint16 {
			return nil, fmt.Errorf("section name too long: %d bytes", len(name))
		}
		binary.Write(buf, binary.LittleEndian, uint16(len(name)))
		buf.WriteString(name)
		buf.WriteByte(uint8(s.Kind))
		binary.Write(buf, binary.LittleEndian, uint32(s.Len()))

		var err error
		switch s.Kind {
		case KindInt32:
			err = binary.Write(buf, binary.LittleEndian, s.Int32)
		case KindFloat32:
			err = binary.Write(buf, binary.LittleEndian, s.Float32)
		case KindFloat64:
			err = binary.Write(buf, binary.LittleEndian, s.Float64)
		case KindBytes:
			buf.Write(s.Bytes)
		case KindBool:
			for _, b := range s.Bool {
				if b {
					buf.WriteByte(1)
				} else {
					buf.WriteByte(0)
				}
			}
		default:
			err = fmt.Errorf("%w: %s has kind %d", ErrSectionKind, name, s.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
	}

	return buf.Bytes(), nil
}
