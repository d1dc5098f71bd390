package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
)

// Errors returned for malformed or unsupported assets. Every error returned by Load wraps one of these or a
// JSON decoding error.
var (
	ErrMissingResource      = errors.New("resource not provided")
	ErrBufferLength         = errors.New("buffer length does not match byteLength")
	ErrByteStride           = errors.New("byteStride is not supported")
	ErrUnsupportedSemantic  = errors.New("unsupported attribute semantic")
	ErrUnsupportedIndexType = errors.New("unsupported index component type")
	ErrImageRoleConflict    = errors.New("image used as both sRGB and linear data")
	ErrUnsupportedTexCoord  = errors.New("only texCoord 0 is supported")
	ErrUnsupportedAccessor  = errors.New("unsupported accessor")
	ErrIndexOutOfRange      = scene.ErrIndexOutOfRange
	ErrNodeCycle            = scene.ErrNodeCycle
)

var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.x")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidDataURI     = errors.New("invalid data URI")
	errRequiredExtension  = errors.New("required extension not supported")
)

// glbResourceName is the resource name the BIN chunk of a GLB container is exposed under.
const glbResourceName = ""

// gltfParser decodes a document and resolves its buffers against a resource table.
type gltfParser struct {
	document  *gltfDocument
	resources map[string][]byte
}

// newGLTFParser parses document, which is either glTF JSON or a GLB container, and resolves every buffer.
//
// Parameters:
//   - document: the glTF JSON text or GLB bytes
//   - resources: named external resources; the GLB BIN chunk is added under the empty name
//
// Returns:
//   - *gltfParser: the parser holding the decoded document
//   - error: error if the document is malformed or a buffer cannot be resolved
func newGLTFParser(document []byte, resources map[string][]byte) (*gltfParser, error) {
	p := &gltfParser{resources: make(map[string][]byte, len(resources)+1)}
	for name, data := range resources {
		p.resources[name] = data
	}

	var err error
	if isGLB(document) {
		err = p.parseGLB(document)
	} else {
		err = p.parseGLTF(document)
	}
	if err != nil {
		return nil, err
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := p.loadBuffers(); err != nil {
		return nil, err
	}
	return p, nil
}

func isGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic
}

func (p *gltfParser) parseGLTF(data []byte) error {
	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	p.document = &doc
	return nil
}

// parseGLB walks the chunks of a GLB container. The JSON chunk is decoded and the BIN chunk is exposed as the
// resource named by glbResourceName.
func (p *gltfParser) parseGLB(data []byte) error {
	r := bytes.NewReader(data)

	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to read GLB header: %w", err)
	}
	if header.Magic != gltfGLBMagic {
		return errInvalidGLBMagic
	}
	if header.Version != gltfGLBVersion {
		return fmt.Errorf("%w: got %d", errInvalidGLBVersion, header.Version)
	}

	var jsonChunk []byte
	for r.Len() >= 8 {
		var chunk gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			return fmt.Errorf("failed to read GLB chunk header: %w", err)
		}
		if int(chunk.ChunkLength) > r.Len() {
			return fmt.Errorf("GLB chunk of %d bytes exceeds the remaining %d", chunk.ChunkLength, r.Len())
		}
		body := make([]byte, chunk.ChunkLength)
		if _, err := r.Read(body); err != nil {
			return fmt.Errorf("failed to read GLB chunk: %w", err)
		}

		switch chunk.ChunkType {
		case gltfGLBChunkJSON:
			jsonChunk = body
		case gltfGLBChunkBIN:
			p.resources[glbResourceName] = body
		}
	}

	if jsonChunk == nil {
		return errMissingJSONChunk
	}
	return p.parseGLTF(jsonChunk)
}

func (p *gltfParser) validate() error {
	if !strings.HasPrefix(p.document.Asset.Version, "2.") {
		return fmt.Errorf("%w: got %q", errInvalidGLTFVersion, p.document.Asset.Version)
	}
	if len(p.document.ExtensionsRequired) > 0 {
		return fmt.Errorf("%w: %s", errRequiredExtension, strings.Join(p.document.ExtensionsRequired, ", "))
	}
	return nil
}

// loadBuffers resolves every buffer to its bytes. Buffer 0 without a URI is the GLB BIN chunk, which may carry
// up to three bytes of padding past byteLength.
func (p *gltfParser) loadBuffers() error {
	for i := range p.document.Buffers {
		buf := &p.document.Buffers[i]

		data, err := p.resolve(buf.URI, i == 0)
		if err != nil {
			return fmt.Errorf("buffer %d: %w", i, err)
		}

		padded := i == 0 && buf.URI == "" && len(data) > buf.ByteLength && len(data) <= buf.ByteLength+3
		if padded {
			data = data[:buf.ByteLength]
		}
		if len(data) != buf.ByteLength {
			return fmt.Errorf("buffer %d: %w: got %d, want %d", i, ErrBufferLength, len(data), buf.ByteLength)
		}
		buf.Data = data
	}
	return nil
}

// resolve returns the bytes a URI refers to: a base64 data URI, a named resource, or the GLB BIN chunk when
// the URI is empty and allowEmpty is set.
func (p *gltfParser) resolve(uri string, allowEmpty bool) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		return decodeDataURI(uri)
	}
	if uri == "" && !allowEmpty {
		return nil, fmt.Errorf("%w: empty uri", ErrMissingResource)
	}
	data, ok := p.resources[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingResource, uri)
	}
	return data, nil
}

// decodeDataURI decodes a base64 data URI. Only the base64 encoding is supported.
//
// Parameters:
//   - uri: the data URI (data:[<mediatype>][;base64],<data>)
//
// Returns:
//   - []byte: the decoded data
//   - error: error if the URI is not base64 encoded or cannot be decoded
func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, errInvalidDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidDataURI, err)
	}
	return data, nil
}

// dataURIMimeType returns the media type of a data URI, empty when it has none.
func dataURIMimeType(uri string) string {
	header, _, _ := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	mime, _, _ := strings.Cut(header, ";")
	return mime
}

// accessorView is an accessor resolved down to its byte range in a buffer.
type accessorView struct {
	buffer     int
	offset     int
	length     int
	count      int
	components int
	typ        int
	normalized bool
}

// accessor resolves an accessor index. Accessor and buffer-view offsets are composed; strided views, sparse
// accessors, accessors without a buffer view, and types other than SCALAR through VEC4 are rejected.
func (p *gltfParser) accessor(index int) (accessorView, error) {
	if index < 0 || index >= len(p.document.Accessors) {
		return accessorView{}, fmt.Errorf("accessor %d: %w", index, ErrIndexOutOfRange)
	}
	acc := p.document.Accessors[index]

	components := gltfAccessorTypeComponentCount(acc.Type)
	if components == 0 {
		return accessorView{}, fmt.Errorf("accessor %d: %w: type %s", index, ErrUnsupportedAccessor, acc.Type)
	}
	if acc.Sparse != nil {
		return accessorView{}, fmt.Errorf("accessor %d: %w: sparse", index, ErrUnsupportedAccessor)
	}
	if acc.BufferView == nil {
		return accessorView{}, fmt.Errorf("accessor %d: %w: no buffer view", index, ErrUnsupportedAccessor)
	}
	dt, ok := gltfComponentType(acc.ComponentType)
	if !ok {
		return accessorView{}, fmt.Errorf("accessor %d: %w: component type %d", index, ErrUnsupportedAccessor, acc.ComponentType)
	}

	bvIndex := *acc.BufferView
	if bvIndex < 0 || bvIndex >= len(p.document.BufferViews) {
		return accessorView{}, fmt.Errorf("accessor %d: buffer view %d: %w", index, bvIndex, ErrIndexOutOfRange)
	}
	bv := p.document.BufferViews[bvIndex]
	if bv.ByteStride != nil {
		return accessorView{}, fmt.Errorf("accessor %d: buffer view %d: %w", index, bvIndex, ErrByteStride)
	}
	if bv.Buffer < 0 || bv.Buffer >= len(p.document.Buffers) {
		return accessorView{}, fmt.Errorf("buffer view %d: buffer %d: %w", bvIndex, bv.Buffer, ErrIndexOutOfRange)
	}

	v := accessorView{
		buffer:     bv.Buffer,
		offset:     bv.ByteOffset + acc.ByteOffset,
		length:     acc.Count * components * dt.Size(),
		count:      acc.Count,
		components: components,
		typ:        acc.ComponentType,
		normalized: acc.Normalized,
	}
	if acc.ByteOffset+v.length > bv.ByteLength || bv.ByteOffset+bv.ByteLength > len(p.document.Buffers[bv.Buffer].Data) {
		return accessorView{}, fmt.Errorf("accessor %d: %w: range exceeds its buffer view", index, ErrIndexOutOfRange)
	}
	return v, nil
}

// bytes returns the exact byte range of an accessor.
func (p *gltfParser) bytes(v accessorView) []byte {
	return p.document.Buffers[v.buffer].Data[v.offset : v.offset+v.length]
}

// bufferViewBytes returns the bytes of a buffer view, used for embedded images.
func (p *gltfParser) bufferViewBytes(index int) ([]byte, error) {
	if index < 0 || index >= len(p.document.BufferViews) {
		return nil, fmt.Errorf("buffer view %d: %w", index, ErrIndexOutOfRange)
	}
	bv := p.document.BufferViews[index]
	if bv.ByteStride != nil {
		return nil, fmt.Errorf("buffer view %d: %w", index, ErrByteStride)
	}
	if bv.Buffer < 0 || bv.Buffer >= len(p.document.Buffers) {
		return nil, fmt.Errorf("buffer view %d: buffer %d: %w", index, bv.Buffer, ErrIndexOutOfRange)
	}
	data := p.document.Buffers[bv.Buffer].Data
	if bv.ByteOffset+bv.ByteLength > len(data) {
		return nil, fmt.Errorf("buffer view %d: %w: range exceeds buffer", index, ErrIndexOutOfRange)
	}
	return data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], nil
}

// readFloats reads an accessor as float32 components. Normalized integer accessors are converted with the
// glTF normalization rules; other integer accessors are rejected.
//
// Parameters:
//   - index: the accessor index
//   - components: the expected component count per element
//
// Returns:
//   - []float32: count*components values
//   - error: error if the accessor cannot be read as floats
func (p *gltfParser) readFloats(index, components int) ([]float32, error) {
	v, err := p.accessor(index)
	if err != nil {
		return nil, err
	}
	if v.components != components {
		return nil, fmt.Errorf("accessor %d: %w: want %d components, got %d", index, ErrUnsupportedAccessor, components, v.components)
	}

	raw := p.bytes(v)
	out := make([]float32, v.count*v.components)
	le := binary.LittleEndian
	switch {
	case v.typ == gltfComponentTypeFloat:
		for i := range out {
			out[i] = math.Float32frombits(le.Uint32(raw[i*4:]))
		}
	case v.typ == gltfComponentTypeUnsignedByte && v.normalized:
		for i := range out {
			out[i] = float32(raw[i]) / 255
		}
	case v.typ == gltfComponentTypeByte && v.normalized:
		for i := range out {
			out[i] = max(float32(int8(raw[i]))/127, -1)
		}
	case v.typ == gltfComponentTypeUnsignedShort && v.normalized:
		for i := range out {
			out[i] = float32(le.Uint16(raw[i*2:])) / 65535
		}
	case v.typ == gltfComponentTypeShort && v.normalized:
		for i := range out {
			out[i] = max(float32(int16(le.Uint16(raw[i*2:])))/32767, -1)
		}
	default:
		return nil, fmt.Errorf("accessor %d: %w: component type %d is not float data", index, ErrUnsupportedAccessor, v.typ)
	}
	return out, nil
}

// ExternalURIs lists the resource names a document refers to: every buffer and image URI that is not a data
// URI. The GLB BIN chunk is not listed.
//
// Parameters:
//   - document: the glTF JSON text or GLB bytes
//
// Returns:
//   - []string: the referenced resource names in document order, without duplicates
//   - error: error if the document cannot be decoded
func ExternalURIs(document []byte) ([]string, error) {
	p := &gltfParser{resources: make(map[string][]byte)}
	var err error
	if isGLB(document) {
		err = p.parseGLB(document)
	} else {
		err = p.parseGLTF(document)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var uris []string
	add := func(uri string) {
		if uri == "" || strings.HasPrefix(uri, "data:") || seen[uri] {
			return
		}
		seen[uri] = true
		uris = append(uris, uri)
	}
	for _, b := range p.document.Buffers {
		add(b.URI)
	}
	for _, img := range p.document.Images {
		add(img.URI)
	}
	return uris, nil
}
