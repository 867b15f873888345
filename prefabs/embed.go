package prefabs

import (
	"embed"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Dir is where on-disk overrides of the embedded prefabs live, relative to
// the working directory.
const Dir = "prefabs"

//go:embed *.yaml scripts/*.tengo
var embedded embed.FS

// Load returns a prefab YAML file by name ("enemy.yaml" or
// "prefabs/enemy.yaml").
func Load(name string) ([]byte, error) {
	return read(strings.TrimPrefix(filepath.ToSlash(name), Dir+"/"))
}

// LoadScript returns a tengo script. "stalker.tengo", "scripts/stalker.tengo"
// and "prefabs/scripts/stalker.tengo" all name the same file.
func LoadScript(name string) ([]byte, error) {
	s := filepath.ToSlash(name)
	for _, prefix := range []string{Dir + "/", "scripts/"} {
		s = strings.TrimPrefix(s, prefix)
	}
	return read(path.Join("scripts", s))
}

// read prefers the copy on disk so edits are picked up without a rebuild.
func read(rel string) ([]byte, error) {
	if data, err := os.ReadFile(filepath.Join(Dir, filepath.FromSlash(rel))); err == nil {
		return data, nil
	}
	return embedded.ReadFile(rel)
}
