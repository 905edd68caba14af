// SPDX-License-Identifier: MPL-2.0

package funcfile

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"funcshell/internal/cueutil"
)

//go:embed funcfile_schema.cue
var funcfileSchema string

// Parse reads and parses an app descriptor from the given path.
func Parse(path string) (*Funcfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read funcfile at %s: %w", path, err)
	}
	return ParseBytes(data, path)
}

// ParseBytes parses app descriptor content from bytes. Uses
// cueutil.ParseAndDecodeString for the 3-step CUE parsing flow:
// compile schema, compile user data, validate and decode.
func ParseBytes(data []byte, path string) (*Funcfile, error) {
	result, err := cueutil.ParseAndDecodeString[Funcfile](
		funcfileSchema,
		data,
		"#Funcfile",
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, err
	}

	f := result.Value
	f.FilePath = path

	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Discover locates and parses the app descriptor in dir. The descriptor must
// be named funcfile.cue and live at the directory root.
func Discover(dir string) (*Funcfile, error) {
	path := filepath.Join(dir, FuncfileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s found in %s", FuncfileName, dir)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return Parse(path)
}
