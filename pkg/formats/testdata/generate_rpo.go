//go:build ignore

// This program generates sample RPO/RPOZ files for unit tests.
// Run with: go run generate_rpo.go
package main

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"log"
	"os"
)

func main() {
	// Unit cube: 8 corners, position + normal per vertex, 12 triangles
	var vertices [][6]float32
	for i := 0; i < 8; i++ {
		x, y, z := float32(i&1), float32(i>>1&1), float32(i>>2&1)
		vertices = append(vertices, [6]float32{x, y, z, x*2 - 1, y*2 - 1, z*2 - 1})
	}
	faces := [][3]uint16{
		{0, 2, 1}, {1, 2, 3}, // z = 0
		{4, 5, 6}, {5, 7, 6}, // z = 1
		{0, 1, 4}, {1, 5, 4}, // y = 0
		{2, 6, 3}, {3, 6, 7}, // y = 1
		{0, 4, 2}, {2, 4, 6}, // x = 0
		{1, 3, 5}, {3, 7, 5}, // x = 1
	}

	// Chunk-table revision: (3, GL_FLOAT) position, (3, GL_FLOAT) normal,
	// then the (0, index count) terminator
	var scan bytes.Buffer
	scan.WriteString("RPO1")
	binary.Write(&scan, binary.LittleEndian, uint32(len(vertices)))
	binary.Write(&scan, binary.LittleEndian, uint32(len(faces)*6)) // index bytes
	binary.Write(&scan, binary.LittleEndian, []uint32{3, 0x1406, 3, 0x1406})
	binary.Write(&scan, binary.LittleEndian, []uint32{0, uint32(len(faces) * 3)})
	binary.Write(&scan, binary.LittleEndian, vertices)
	binary.Write(&scan, binary.LittleEndian, faces)

	var packed bytes.Buffer
	zw := zlib.NewWriter(&packed)
	if _, err := zw.Write(scan.Bytes()); err != nil {
		log.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		log.Fatal(err)
	}
	write("cube.rpoz", packed.Bytes())

	// Fixed 64-byte header revision with the face index count at 0x08
	header := make([]byte, 0x40)
	copy(header, "RPO1")
	binary.LittleEndian.PutUint32(header[0x04:], uint32(len(vertices)))
	binary.LittleEndian.PutUint32(header[0x08:], uint32(len(faces)*3))
	compact := bytes.NewBuffer(header)
	binary.Write(compact, binary.LittleEndian, vertices)
	binary.Write(compact, binary.LittleEndian, faces)
	write("cube.rpo", compact.Bytes())
}

func write(name string, data []byte) {
	if err := os.WriteFile(name, data, 0644); err != nil {
		log.Fatal(err)
	}
	log.Printf("Generated %s (%d bytes)", name, len(data))
}
