package demucs

import (
	"io/fs"
	"os"
	"path/filepath"
)

var outputExtensions = []string{"mp3", "wav"}

// two-stem accompaniment names vary by model generation
var accompanimentAliases = []string{"no_vocals", "accompaniment", "other"}

// FindOutputs locates the produced stem files under outputDir. The engine
// writes <outputDir>/<model>/<track>/<stem>.<ext>; the run succeeds only when
// every expected stem for the mode is present in a single directory. Returns
// a stem-name to path mapping, or nil when the set is incomplete.
func FindOutputs(outputDir, stemMode string) map[string]string {
	expected := expectedStems(stemMode)

	for _, ext := range outputExtensions {
		for _, dir := range dirsContaining(outputDir, expected[0]+"."+ext) {
			results := make(map[string]string, len(expected))
			complete := true
			for _, stem := range expected {
				path := filepath.Join(dir, stem+"."+ext)
				if _, err := os.Stat(path); err != nil {
					complete = false
					break
				}
				results[stem] = path
			}
			if complete {
				return results
			}
		}
	}

	// Two-stem runs name the accompaniment differently across models.
	if len(expected) == 2 {
		for _, ext := range outputExtensions {
			for _, dir := range dirsContaining(outputDir, "vocals."+ext) {
				for _, alias := range accompanimentAliases {
					path := filepath.Join(dir, alias+"."+ext)
					if _, err := os.Stat(path); err == nil {
						return map[string]string{
							"vocals":    filepath.Join(dir, "vocals."+ext),
							"no_vocals": path,
						}
					}
				}
			}
		}
	}
	return nil
}

// dirsContaining walks root and returns every directory holding a file with
// the given name.
func dirsContaining(root, name string) []string {
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == name {
			dirs = append(dirs, filepath.Dir(path))
		}
		return nil
	})
	return dirs
}
