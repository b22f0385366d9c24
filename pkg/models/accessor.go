package models

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/raycast/pkg/math3d"
)

// readVec3Accessor reads float VEC3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float components, got %v", accessor.ComponentType)
	}

	bufData, start, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		if offset+12 > len(bufData) {
			return nil, fmt.Errorf("accessor reads past end of buffer view at element %d", i)
		}
		result[i] = math3d.V3(
			readFloat32(bufData[offset:]),
			readFloat32(bufData[offset+4:]),
			readFloat32(bufData[offset+8:]),
		)
	}
	return result, nil
}

// accessorBytes resolves the buffer view behind an accessor and returns the
// view's bytes with the first element offset and the element stride. Reads
// are confined to the view.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	if *accessor.BufferView < 0 || *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, 0, fmt.Errorf("buffer view %d out of range", *accessor.BufferView)
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer < 0 || bufferView.Buffer >= len(doc.Buffers) {
		return nil, 0, 0, fmt.Errorf("buffer %d out of range", bufferView.Buffer)
	}

	// gltf.Open decodes GLB chunks, data URIs and sidecar .bin files into Data
	bufData := doc.Buffers[bufferView.Buffer].Data
	if len(bufData) == 0 {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	end := bufferView.ByteOffset + bufferView.ByteLength
	if bufferView.ByteOffset < 0 || bufferView.ByteLength <= 0 || end > len(bufData) {
		return nil, 0, 0, fmt.Errorf("buffer view %d (offset %d, length %d) does not fit buffer of %d bytes",
			*accessor.BufferView, bufferView.ByteOffset, bufferView.ByteLength, len(bufData))
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	return bufData[bufferView.ByteOffset:end], accessor.ByteOffset, stride, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}
