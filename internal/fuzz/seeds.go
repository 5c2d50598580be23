package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10

func addProgramSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err == nil {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".json" {
				return nil
			}
			// #nosec G304 -- path comes from repository testdata walk
			src, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			f.Add(clampSeed(src))
			return nil
		})
	}
	f.Add([]byte(`{"functions": []}`))
	f.Add([]byte(`{"functions": [{"name": "main", "instrs": [{"op": "jmp"}]}]}`))
	f.Add([]byte(`{"functions": [{"name": "main", "instrs": [` +
		`{"op": "const", "value": 1, "dest": "a"},` +
		`{"op": "id", "args": ["a"], "dest": "b"},` +
		`{"op": "add", "args": ["a", "b"], "dest": "a"},` +
		`{"op": "br", "args": ["a", "l1", "l2"]}]}]}`))
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
