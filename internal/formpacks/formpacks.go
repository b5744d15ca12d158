// Package formpacks bundles the static formpack assets: manifests, JSON
// schemas, translations, DOCX mappings and DOCX templates.
//
// The directory layout is the one the asset host serves and the DOCX mapper
// fetches:
//
//	<id>/manifest.yaml
//	<id>/schema.json
//	<id>/ui-schema.json
//	<id>/i18n/<lang>.json
//	<id>/docx/mapping.json
//	<id>/docx/<templateId>.docx
package formpacks

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"gopkg.in/yaml.v3"
)

// Known formpack ids.
const (
	Notfallpass    = "notfallpass"
	DoctorLetter   = "doctor-letter"
	OfflabelAntrag = "offlabel-antrag"
)

//go:embed app notfallpass doctor-letter offlabel-antrag
var files embed.FS

// ErrUnknownFormpack is returned for ids without a manifest.
var ErrUnknownFormpack = errors.New("formpacks: unknown formpack")

// FS returns the embedded asset tree.
func FS() fs.FS { return files }

// IDs lists the bundled formpacks.
func IDs() []string {
	return []string{Notfallpass, DoctorLetter, OfflabelAntrag}
}

// Manifest describes one formpack.
type Manifest struct {
	ID        string            `yaml:"id" json:"id"`
	Version   string            `yaml:"version" json:"version"`
	Title     map[string]string `yaml:"title" json:"title"`
	Locales   []string          `yaml:"locales" json:"locales"`
	Templates []string          `yaml:"templates" json:"templates"`
}

// HasTemplate reports whether the formpack ships the DOCX template id.
func (m *Manifest) HasTemplate(id string) bool {
	return slices.Contains(m.Templates, id)
}

// LoadManifest reads "<id>/manifest.yaml" from fsys.
func LoadManifest(fsys fs.FS, id string) (*Manifest, error) {
	if !fs.ValidPath(id) || id == "." {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormpack, id)
	}
	raw, err := fs.ReadFile(fsys, id+"/manifest.yaml")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormpack, id)
		}
		return nil, fmt.Errorf("read manifest %s: %w", id, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", id, err)
	}
	if m.ID != id {
		return nil, fmt.Errorf("manifest %s declares id %q", id, m.ID)
	}
	return &m, nil
}

// Schemas reads the JSON schema and UI schema of a formpack. Missing files
// yield nil maps.
func Schemas(fsys fs.FS, id string) (schema, uiSchema map[string]any, err error) {
	if schema, err = readJSON(fsys, id+"/schema.json"); err != nil {
		return nil, nil, err
	}
	if uiSchema, err = readJSON(fsys, id+"/ui-schema.json"); err != nil {
		return nil, nil, err
	}
	return schema, uiSchema, nil
}

func readJSON(fsys fs.FS, name string) (map[string]any, error) {
	raw, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return out, nil
}
