package formats

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestEncodeOBJ_Grammar(t *testing.T) {
	mesh := &Mesh{
		Vertices: []Vertex{
			{Components: [6]float32{1, 2, 3, 0, 0, 1}, Count: 6},
			{Components: [6]float32{-0.5, 0.25, 100}, Count: 3},
		},
		Faces: []Face{{0, 1, 1}, {1, 0, 0}},
	}

	got := string(EncodeOBJ(mesh, OBJOptions{Comments: []string{"Converted from shell.rpoz"}}))
	want := "# Converted from shell.rpoz\n" +
		"v 1.000000 2.000000 3.000000 0.000000 0.000000 1.000000\n" +
		"v -0.500000 0.250000 100.000000\n" +
		"\n" +
		"f 1 2 2\n" +
		"f 2 1 1\n"

	if got != want {
		t.Errorf("EncodeOBJ mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeOBJ_EmptyMesh(t *testing.T) {
	if got := string(EncodeOBJ(&Mesh{}, OBJOptions{})); got != "\n" {
		t.Errorf("expected single separator line, got %q", got)
	}
}

func TestEncodeOBJ_MultilineComment(t *testing.T) {
	got := string(EncodeOBJ(&Mesh{}, OBJOptions{Comments: []string{"first\r\nsecond"}}))
	want := "# first\n# second\n\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAppendOBJFloat(t *testing.T) {
	tests := []struct {
		in   float32
		want string
	}{
		{0, "0.000000"},
		{1, "1.000000"},
		{-1.5, "-1.500000"},
		{0.1, "0.100000"},
		{1e-7, "0.000000"},
		{123456789, "123456792.000000"},
		{3.4028235e38, "340282346638528859811704183484516925440.000000"},
		{float32(math.Copysign(0, -1)), "-0.000000"},
		{float32(math.NaN()), "nan"},
		{float32(math.Inf(1)), "inf"},
		{float32(math.Inf(-1)), "-inf"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := string(appendOBJFloat(nil, tt.in)); got != tt.want {
				t.Errorf("appendOBJFloat(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodeOBJ_NoScientificNotation(t *testing.T) {
	mesh := &Mesh{Vertices: []Vertex{{Components: [6]float32{1e30, -1e-30, 1e-40}, Count: 3}}}
	out := string(EncodeOBJ(mesh, OBJOptions{}))
	if strings.ContainsAny(out, "eE") {
		t.Errorf("unexpected exponent in %q", out)
	}
}

func TestWriteOBJ(t *testing.T) {
	mesh := &Mesh{
		Vertices: []Vertex{{Components: [6]float32{1, 1, 1}, Count: 3}},
		Faces:    []Face{{0, 0, 0}},
	}

	var buf bytes.Buffer
	n, err := WriteOBJ(&buf, mesh, OBJOptions{})
	if err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}
	if int(n) != buf.Len() {
		t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
	}
	if !bytes.Equal(buf.Bytes(), EncodeOBJ(mesh, OBJOptions{})) {
		t.Error("WriteOBJ output differs from EncodeOBJ")
	}
}
