package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"oss.terrastruct.com/reflow/rflayouts"
)

// decodeOpts decodes an options file over opts, picking the format from the
// extension of path. Keys the file does not set keep their current value.
// Unknown keys are an error.
func decodeOpts(path string, b []byte, opts *rflayouts.Opts) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(b), opts)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("failed to decode %s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		err := dec.Decode(opts)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to decode %s: %w", path, err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		err := dec.Decode(opts)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to decode %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported options file extension %q: expected .toml, .yaml, .yml or .json", ext)
	}
	return nil
}
