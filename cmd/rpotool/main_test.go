package main

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const triangleOBJ = "v 1.000000 2.000000 3.000000 0.000000 0.000000 1.000000\n\nf 1 1 1\n"

type cliEnv struct {
	dir        string
	configPath string
}

// setupCLITestEnv isolates config discovery and writes a config pointing
// fetches at baseURL.
func setupCLITestEnv(t *testing.T, baseURL string) cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	if baseURL == "" {
		baseURL = "http://127.0.0.1:1"
	}
	configPath := filepath.Join(dir, "test-config.yaml")
	content := "convert:\n  comments: false\n" +
		"fetch:\n  catalog_url: " + baseURL + "/catalog.csv\n  asset_url: " + baseURL + "/dlc/\n  timeout: 5s\n  retries: 0\n" +
		"batch:\n  workers: 2\n" +
		"logging:\n  level: error\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cliEnv{dir: dir, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func triangleRPO() []byte {
	header := make([]byte, 0x40)
	copy(header, "RPO1")
	binary.LittleEndian.PutUint32(header[0x04:], 1)
	binary.LittleEndian.PutUint32(header[0x08:], 3)
	buf := bytes.NewBuffer(header)
	binary.Write(buf, binary.LittleEndian, []float32{1, 2, 3, 0, 0, 1})
	binary.Write(buf, binary.LittleEndian, [3]uint16{0, 0, 0})
	return buf.Bytes()
}

func triangleRPOZ(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(triangleRPO()); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("compress: %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestConvertFile(t *testing.T) {
	env := setupCLITestEnv(t, "")
	input := filepath.Join(env.dir, "shell.rpoz")
	writeFile(t, input, triangleRPOZ(t))

	out, _, err := runCLI(t, []string{"convert", input}, env.configPath, "")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "Successfully created")

	if got := readFile(t, filepath.Join(env.dir, "shell.obj")); got != triangleOBJ {
		t.Errorf("unexpected OBJ output:\n%s", got)
	}
}

func TestConvertFileExplicitOutput(t *testing.T) {
	env := setupCLITestEnv(t, "")
	input := filepath.Join(env.dir, "shell.rpo")
	writeFile(t, input, triangleRPO())

	if _, _, err := runCLI(t, []string{"convert", input, "-o", filepath.Join(env.dir, "model")}, env.configPath, ""); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got := readFile(t, filepath.Join(env.dir, "model.obj")); got != triangleOBJ {
		t.Errorf("unexpected OBJ output:\n%s", got)
	}
}

func TestConvertInvalidFile(t *testing.T) {
	env := setupCLITestEnv(t, "")
	input := filepath.Join(env.dir, "bad.rpo")
	writeFile(t, input, []byte("not a mesh"))

	_, _, err := runCLI(t, []string{"convert", input}, env.configPath, "")
	if err == nil {
		t.Fatal("expected error for invalid input")
	}
	if _, statErr := os.Stat(filepath.Join(env.dir, "bad.obj")); !os.IsNotExist(statErr) {
		t.Error("no output should be written on failure")
	}
}

func TestConvertDirectory(t *testing.T) {
	env := setupCLITestEnv(t, "")
	in := filepath.Join(env.dir, "shells")
	if err := os.Mkdir(in, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(in, "a.rpo"), triangleRPO())
	writeFile(t, filepath.Join(in, "b.rpoz"), triangleRPOZ(t))
	writeFile(t, filepath.Join(in, "c.rpo"), []byte{})

	outDir := filepath.Join(env.dir, "objs")
	out, _, err := runCLI(t, []string{"convert", in, "-o", outDir}, env.configPath, "")
	if err == nil {
		t.Fatal("expected error for the invalid asset")
	}
	requireContains(t, err.Error(), "1 of 3 conversions failed")
	requireContains(t, out, "Converted 2 of 3 assets")
	requireContains(t, out, "InvalidFormat")

	for _, name := range []string{"a.obj", "b.obj"} {
		if got := readFile(t, filepath.Join(outDir, name)); got != triangleOBJ {
			t.Errorf("%s: unexpected OBJ output:\n%s", name, got)
		}
	}
}

func TestConvertRejectsUnknownLayout(t *testing.T) {
	env := setupCLITestEnv(t, "")
	input := filepath.Join(env.dir, "shell.rpo")
	writeFile(t, input, triangleRPO())

	_, _, err := runCLI(t, []string{"convert", input, "--layout", "spiral"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected error for unknown layout")
	}
	requireContains(t, err.Error(), "spiral")
}

func TestInspect(t *testing.T) {
	env := setupCLITestEnv(t, "")
	input := filepath.Join(env.dir, "shell.rpoz")
	writeFile(t, input, triangleRPOZ(t))

	out, _, err := runCLI(t, []string{"inspect", input}, env.configPath, "")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"zlib", "RPO1", "compact", "Vertex stride", "24", "0x40", "1.000, 2.000, 3.000"} {
		requireContains(t, out, want)
	}
}

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	payload := triangleRPOZ(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/catalog.csv":
			_, _ = w.Write([]byte("set,set-fire,Fire Set\n" +
				"shell,sh-1,Fire Set,SILO,silo_fire.rpoz\n" +
				"shell,sh-2,Fire Set,HATCHERY,hatchery_fire.rpoz\n" +
				"shell_type,SILO\nshell_type,HATCHERY\n"))
		case "/dlc/silo_fire.rpoz", "/dlc/hatchery_fire.rpoz":
			_, _ = w.Write(payload)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearch(t *testing.T) {
	srv := newCatalogServer(t)
	env := setupCLITestEnv(t, srv.URL)

	out, _, err := runCLI(t, []string{"search", "silo"}, env.configPath, "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	requireContains(t, out, "silo_fire.rpoz")
	requireContains(t, out, "1 assets")

	out, _, err = runCLI(t, []string{"search"}, env.configPath, "")
	if err != nil {
		t.Fatalf("search overview: %v", err)
	}
	requireContains(t, out, "1 sets")
	requireContains(t, out, "Building types: SILO, HATCHERY")

	if _, _, err := runCLI(t, []string{"search", "--type", "DEPOT"}, env.configPath, ""); err == nil {
		t.Error("expected error when nothing matches")
	}
}

func TestFetch(t *testing.T) {
	srv := newCatalogServer(t)
	env := setupCLITestEnv(t, srv.URL)
	outDir := filepath.Join(env.dir, "downloads")

	out, _, err := runCLI(t, []string{"fetch", "--set", "fire set", "-o", outDir, "--yes"}, env.configPath, "")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	requireContains(t, out, "Converted 2 of 2 assets")

	for _, name := range []string{"silo_fire.obj", "hatchery_fire.obj"} {
		if got := readFile(t, filepath.Join(outDir, name)); got != triangleOBJ {
			t.Errorf("%s: unexpected OBJ output:\n%s", name, got)
		}
	}
}

func TestFetchDeclined(t *testing.T) {
	srv := newCatalogServer(t)
	env := setupCLITestEnv(t, srv.URL)
	outDir := filepath.Join(env.dir, "downloads")

	out, _, err := runCLI(t, []string{"fetch", "silo", "-o", outDir}, env.configPath, "n\n")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	requireContains(t, out, "Aborted.")
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Error("declined fetch should not create the output directory")
	}
}

func TestFetchNeedsSelection(t *testing.T) {
	env := setupCLITestEnv(t, "")
	if _, _, err := runCLI(t, []string{"fetch"}, env.configPath, ""); err == nil {
		t.Error("expected error without a term or filter")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t, "")
	target := filepath.Join(env.dir, "conf", "rpotool.yaml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote default configuration")

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", ""); err == nil {
		t.Error("expected error when config exists without --overwrite")
	}

	out, _, err = runCLI(t, []string{"config", "show", "--debug"}, target, "")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "layout: auto")
	requireContains(t, out, "level: debug")
}
