// Command modelmgr loads, resolves and packages models from the command line.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/modelmgr/core/backends"
	"github.com/FocuswithJustin/modelmgr/core/config"
	"github.com/FocuswithJustin/modelmgr/core/manager"
	"github.com/FocuswithJustin/modelmgr/core/manifest"
	"github.com/FocuswithJustin/modelmgr/core/models"
	"github.com/FocuswithJustin/modelmgr/core/sqlite"
	"github.com/FocuswithJustin/modelmgr/internal/archive"
	"github.com/FocuswithJustin/modelmgr/internal/logging"
	"github.com/FocuswithJustin/modelmgr/internal/validation"

	// Register built-in modules and backend types
	_ "github.com/FocuswithJustin/modelmgr/internal/embedded"
)

const version = "0.1.0"

// stdout receives command output. Logs go to stderr.
var stdout io.Writer = os.Stdout

// CLI defines the command-line interface for modelmgr.
var CLI struct {
	// Global flags
	Config    []string `name:"config" short:"c" help:"Config file to merge (repeatable)" type:"existingfile"`
	LoadPath  string   `name:"load-path" help:"Prefix for relative model paths that do not exist" type:"path"`
	Backend   []string `name:"backend" short:"b" help:"Backend type to try, in priority order (repeatable, overrides config)"`
	LogLevel  string   `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat string   `name:"log-format" help:"Log format (json, text)"`

	Load     LoadCmd     `cmd:"" help:"Load a model and describe it"`
	Resolve  ResolveCmd  `cmd:"" help:"Resolve a model reference (directory path)"`
	Extract  ExtractCmd  `cmd:"" help:"Extract a model archive into a directory"`
	Pack     PackCmd     `cmd:"" help:"Pack a model directory into an archive"`
	Inspect  InspectCmd  `cmd:"" help:"Show a directory's manifest or an archive's entries"`
	Backends BackendsCmd `cmd:"" help:"List backend types, the configured order and module ids"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// LoadCmd loads a model.
type LoadCmd struct {
	Path      string            `arg:"" help:"Model directory or archive"`
	Singleton bool              `help:"Load as a shared singleton instance"`
	Repeat    int               `default:"1" help:"Number of times to load (shows singleton reuse)"`
	Arg       map[string]string `help:"Loader argument key=value (repeatable)"`
}

func (c *LoadCmd) Run() error {
	if err := validation.ValidatePath(c.Path); err != nil {
		return err
	}
	m, err := newManager()
	if err != nil {
		return err
	}

	opts := []manager.LoadOption{manager.WithSingleton(c.Singleton)}
	if len(c.Arg) > 0 {
		args := backends.Args{}
		for k, v := range c.Arg {
			args[k] = parseArgValue(v)
		}
		opts = append(opts, manager.WithArgs(args))
	}

	repeat := c.Repeat
	if repeat < 1 {
		repeat = 1
	}
	var loaded []models.Model
	for i := 0; i < repeat; i++ {
		model, err := m.Load(manager.Path(c.Path), opts...)
		if err != nil {
			return err
		}
		loaded = append(loaded, model)
	}

	out := describe(loaded[len(loaded)-1])
	distinct := make(map[models.Model]bool)
	for _, l := range loaded {
		distinct[l] = true
	}
	out.Instances = len(distinct)
	out.Cache = m.CacheSnapshot()
	return writeJSON(out)
}

// ResolveCmd resolves a model reference.
type ResolveCmd struct {
	Ref string `arg:"" help:"Path to a model directory"`
}

func (c *ResolveCmd) Run() error {
	if err := validation.ValidatePath(c.Ref); err != nil {
		return err
	}
	m, err := newManager()
	if err != nil {
		return err
	}
	model, err := m.Resolve(c.Ref)
	if err != nil {
		return err
	}
	return writeJSON(describe(model))
}

// ExtractCmd extracts a model archive.
type ExtractCmd struct {
	Archive string `arg:"" help:"Archive to extract" type:"existingfile"`
	Dest    string `arg:"" help:"Destination directory" type:"path"`
	Force   bool   `help:"Extract even if the destination exists"`
}

func (c *ExtractCmd) Run() error {
	for _, p := range []string{c.Archive, c.Dest} {
		if err := validation.ValidatePath(p); err != nil {
			return err
		}
	}
	m, err := newManager()
	if err != nil {
		return err
	}
	dest, err := m.ExtractArchive(c.Archive, c.Dest, c.Force)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, dest)
	return nil
}

// PackCmd packs a model directory.
type PackCmd struct {
	Dir     string `arg:"" help:"Model directory" type:"existingdir"`
	Out     string `arg:"" help:"Output archive path" type:"path"`
	Format  string `help:"Archive format (zip, tar, tar.gz, tar.xz); inferred from the output name when empty"`
	BaseDir string `name:"base-dir" help:"Nest all entries under this directory"`
}

func (c *PackCmd) Run() error {
	if !manifest.Exists(c.Dir) {
		return fmt.Errorf("%s does not contain %s", c.Dir, manifest.ManifestFile)
	}
	baseDir := c.BaseDir
	if baseDir != "" {
		clean, err := validation.SanitizePath(c.Dir, baseDir)
		if err != nil {
			return fmt.Errorf("invalid base directory %q: %w", baseDir, err)
		}
		baseDir = filepath.ToSlash(clean)
	}
	format, err := packFormat(c.Format, c.Out)
	if err != nil {
		return err
	}
	if err := archive.Pack(c.Dir, c.Out, format, baseDir); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s (%s)\n", c.Out, format)
	return nil
}

// InspectCmd shows a manifest or archive listing without loading.
type InspectCmd struct {
	Path string `arg:"" help:"Model directory or archive" type:"existingpath"`
}

func (c *InspectCmd) Run() error {
	info, err := os.Stat(c.Path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		d, err := manifest.Parse(c.Path)
		if err != nil {
			return err
		}
		return writeJSON(map[string]any{
			"module_id":        d.ModuleID,
			"creation_backend": d.CreationBackend,
			"name":             d.Name,
			"version":          d.Version,
			"digest":           d.Digest,
			"manifest":         d.Raw,
		})
	}

	format, err := archive.DetectFile(c.Path)
	if err != nil {
		return err
	}
	entries, err := archive.List(c.Path)
	if err != nil {
		return err
	}
	return writeJSON(map[string]any{
		"format":  format,
		"entries": entries,
	})
}

// BackendsCmd lists backends and modules.
type BackendsCmd struct{}

func (c *BackendsCmd) Run() error {
	m, err := newManager()
	if err != nil {
		return err
	}
	configured, err := m.Backends()
	if err != nil {
		return err
	}

	order := make([]string, len(configured))
	for i, b := range configured {
		order[i] = backends.Tag(b).String()
	}
	return writeJSON(map[string]any{
		"types":      backends.RegisteredTypes(),
		"configured": order,
		"modules":    m.ValidModuleIDs(),
		"sqlite":     sqlite.GetInfo(),
	})
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "modelmgr version %s\n", version)
	return nil
}

// Helper functions

// loadSettings merges config files, the environment and global flags.
func loadSettings() (*config.Settings, error) {
	s, err := config.Load(CLI.Config...)
	if err != nil {
		return nil, err
	}
	if CLI.LoadPath != "" {
		s.LoadPath = CLI.LoadPath
	}
	if len(CLI.Backend) > 0 {
		s.Backends.Priority = nil
		for _, t := range CLI.Backend {
			s.Backends.Priority = append(s.Backends.Priority, backends.Spec{Type: t})
		}
	}
	if CLI.LogLevel != "" {
		s.Log.Level = CLI.LogLevel
	}
	if CLI.LogFormat != "" {
		s.Log.Format = CLI.LogFormat
	}
	return s, nil
}

func newManager() (*manager.Manager, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	logging.InitLogger(logging.ParseLevel(s.Log.Level), logging.ParseFormat(s.Log.Format))
	return manager.New(manager.WithSettings(s)), nil
}

type modelInfo struct {
	ModuleID  string                            `json:"module_id"`
	Type      string                            `json:"type"`
	Backend   string                            `json:"backend"`
	LoadID    string                            `json:"load_id,omitempty"`
	Model     models.Model                      `json:"model"`
	Instances int                               `json:"instances,omitempty"`
	Cache     map[string]manager.CacheEntryInfo `json:"cache,omitempty"`
}

func describe(m models.Model) modelInfo {
	info := modelInfo{
		ModuleID: m.ModuleID(),
		Type:     fmt.Sprintf("%T", m),
		Backend:  m.LoadBackend().String(),
		Model:    m,
	}
	if id, ok := m.(models.Identified); ok {
		info.LoadID = id.LoadID()
	}
	return info
}

func writeJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// packFormat picks the archive format from a flag or the output file name.
func packFormat(flag, out string) (archive.Format, error) {
	name := strings.ToLower(flag)
	if name == "" {
		base := strings.ToLower(filepath.Base(out))
		switch {
		case strings.HasSuffix(base, ".tar.xz"), strings.HasSuffix(base, ".txz"):
			return archive.FormatTarXz, nil
		case strings.HasSuffix(base, ".tar.gz"), strings.HasSuffix(base, ".tgz"):
			return archive.FormatTarGz, nil
		case strings.HasSuffix(base, ".tar"):
			return archive.FormatTar, nil
		default:
			return archive.FormatZip, nil
		}
	}

	known := []archive.Format{archive.FormatZip, archive.FormatTar, archive.FormatTarGz, archive.FormatTarXz}
	for _, f := range known {
		if string(f) == name {
			return f, nil
		}
	}
	names := make([]string, len(known))
	for i, f := range known {
		names[i] = string(f)
	}
	sort.Strings(names)
	return "", fmt.Errorf("unknown archive format %q (want one of %s)", flag, strings.Join(names, ", "))
}

// parseArgValue turns "true"/"false" into booleans and leaves other values
// as strings.
func parseArgValue(v string) any {
	switch strings.ToLower(v) {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("modelmgr"),
		kong.Description("Load models from directories and archives through configured backends"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
