// Package raw implements the "raw" module: a model that is just a
// directory of artifact files. Loading records every file with its size
// and content digests.
package raw

import (
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/FocuswithJustin/modelmgr/core/backends"
	"github.com/FocuswithJustin/modelmgr/core/cas"
	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
	"github.com/FocuswithJustin/modelmgr/core/manifest"
	"github.com/FocuswithJustin/modelmgr/core/models"
)

// ModuleID is the manifest module_id of raw models.
const ModuleID = "raw"

// File is one artifact of a raw model.
type File struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
}

// Model is a loaded raw model.
type Model struct {
	models.Base
	Dir        string               `json:"-"`
	Descriptor *manifest.Descriptor `json:"descriptor"`
	Files      []File               `json:"files"`
}

// File returns the artifact at the slash-separated relative path.
func (m *Model) File(rel string) (File, bool) {
	i := sort.Search(len(m.Files), func(i int) bool { return m.Files[i].Path >= rel })
	if i < len(m.Files) && m.Files[i].Path == rel {
		return m.Files[i], true
	}
	return File{}, false
}

// TotalSize returns the summed size of all artifacts.
func (m *Model) TotalSize() int64 {
	var n int64
	for _, f := range m.Files {
		n += f.Size
	}
	return n
}

// Load reads the raw model in dir. The manifest itself is not listed as an
// artifact. Setting the "skip_hash" arg to true records sizes only.
func Load(dir string, args backends.Args, _ backends.Backend) (models.Model, error) {
	desc, err := manifest.Parse(dir)
	if err != nil {
		return nil, err
	}
	if desc.ModuleID != ModuleID {
		return nil, apperrors.NewValidation(manifest.KeyModuleID, "expected "+ModuleID+", got "+desc.ModuleID)
	}
	skipHash, _ := args["skip_hash"].(bool)

	var files []File
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == manifest.ManifestFile {
			return nil
		}

		f := File{Path: rel}
		if skipHash {
			info, err := d.Info()
			if err != nil {
				return err
			}
			f.Size = info.Size()
		} else {
			h, err := cas.HashFile(p)
			if err != nil {
				return err
			}
			f.Size, f.SHA256, f.BLAKE3 = h.SizeBytes, h.SHA256, h.BLAKE3
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, "scan %s", dir)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	return &Model{
		Base:       models.NewBase(ModuleID),
		Dir:        dir,
		Descriptor: desc,
		Files:      files,
	}, nil
}

var registerOnce sync.Once

// Register adds the LOCAL implementation to the default registry. Calling
// it more than once is a no-op.
func Register() {
	registerOnce.Do(func() {
		backends.DefaultRegistry().MustRegister(ModuleID, backends.KindLocal, backends.Implementation{
			TypeName:              "*raw.Model",
			Load:                  Load,
			SupportedLoadBackends: []backends.Kind{backends.KindLocal},
		})
	})
}

func init() {
	Register()
}
