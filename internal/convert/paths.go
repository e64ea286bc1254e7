package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/rpotool/internal/fileutil"
)

// Input extensions picked up by PlanDirectory.
var inputExts = map[string]bool{
	".rpo":  true,
	".rpoz": true,
}

// IsInput reports whether path has an .rpo or .rpoz extension.
func IsInput(path string) bool {
	return inputExts[strings.ToLower(filepath.Ext(path))]
}

// OutputPath picks the OBJ path for input. With no output the input's
// extension is replaced; an existing directory receives <base>.obj; any
// other output gets ".obj" appended unless it already ends in it.
func OutputPath(input, output string) string {
	if output == "" {
		return objName(input)
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, objName(filepath.Base(input)))
	}
	if !strings.EqualFold(filepath.Ext(output), ".obj") {
		return output + ".obj"
	}
	return output
}

func objName(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".obj"
}

// PlanDirectory builds one job per .rpo/.rpoz file directly inside inDir,
// sorted by name. outDir defaults to inDir and is created when missing.
func PlanDirectory(inDir, outDir string) ([]Job, error) {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", inDir, err)
	}
	if outDir == "" {
		outDir = inDir
	}
	if err := fileutil.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("preparing output directory: %w", err)
	}

	var jobs []Job
	for _, e := range entries {
		if e.IsDir() || !IsInput(e.Name()) {
			continue
		}
		jobs = append(jobs, Job{
			Source: FileSource{Path: filepath.Join(inDir, e.Name())},
			Output: filepath.Join(outDir, objName(e.Name())),
		})
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].Source.Name() < jobs[j].Source.Name()
	})
	return jobs, nil
}
