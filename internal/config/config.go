package config

import (
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/text/encoding/ianaindex"
)

// Filesystem selects how the RAM disk is formatted.
type Filesystem string

const (
	// FilesystemHFS formats the raw device directly with newfs_hfs.
	FilesystemHFS Filesystem = "hfs"
	// FilesystemAPFS creates an APFS container and then adds a volume to it.
	FilesystemAPFS Filesystem = "apfs"
)

const (
	DefaultCapacityGiB       = 4
	BlocksPerGiB             = 1024 * 2048
	DefaultRelativeMountPath = "Library/Developer/Xcode/DerivedData"
	DefaultVolumeLabel       = "DerivedData"
	DefaultEncoding          = "UTF-8"
	DefaultFilesystem        = FilesystemHFS
)

// Tools holds the absolute paths of the external programs ddram runs.
type Tools struct {
	Mount    string
	Hdiutil  string
	NewfsHFS string
	Diskutil string
	Mkdir    string
	Mdutil   string
}

// DefaultTools returns the stock macOS locations.
func DefaultTools() Tools {
	return Tools{
		Mount:    "/sbin/mount",
		Hdiutil:  "/usr/bin/hdiutil",
		NewfsHFS: "/sbin/newfs_hfs",
		Diskutil: "/usr/sbin/diskutil",
		Mkdir:    "/bin/mkdir",
		Mdutil:   "/usr/bin/mdutil",
	}
}

// Config is built once at startup and passed by value to every
// component. Nothing modifies it after New returns.
type Config struct {
	CapacityGiB       int
	HomeDir           string
	RelativeMountPath string
	MountPath         string
	Filesystem        Filesystem
	VolumeLabel       string
	Encoding          string
	Tools             Tools
}

type Option func(*Config)

func WithHomeDir(dir string) Option {
	return func(c *Config) { c.HomeDir = dir }
}

func WithCapacityGiB(gib int) Option {
	return func(c *Config) { c.CapacityGiB = gib }
}

func WithFilesystem(fs Filesystem) Option {
	return func(c *Config) { c.Filesystem = fs }
}

func WithEncoding(name string) Option {
	return func(c *Config) { c.Encoding = name }
}

func WithTools(tools Tools) Option {
	return func(c *Config) { c.Tools = tools }
}

// New returns the configuration for this run. The home directory is
// looked up with go-homedir unless WithHomeDir is given.
func New(opts ...Option) (Config, error) {
	cfg := Config{
		CapacityGiB:       DefaultCapacityGiB,
		RelativeMountPath: DefaultRelativeMountPath,
		Filesystem:        DefaultFilesystem,
		VolumeLabel:       DefaultVolumeLabel,
		Encoding:          DefaultEncoding,
		Tools:             DefaultTools(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.HomeDir == "" {
		home, err := homedir.Dir()
		if err != nil {
			return Config{}, errors.Annotate(err, "looking up home directory")
		}
		cfg.HomeDir = home
	}
	cfg.MountPath = filepath.Join(cfg.HomeDir, cfg.RelativeMountPath)

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Trace(err)
	}
	return cfg, nil
}

// Validate checks the invariants every component relies on.
func (c Config) Validate() error {
	if c.CapacityGiB <= 0 {
		return errors.NotValidf("capacity %d GiB", c.CapacityGiB)
	}

	switch c.Filesystem {
	case FilesystemHFS, FilesystemAPFS:
	default:
		return errors.NotValidf("filesystem %q (valid options: %s, %s)", c.Filesystem, FilesystemHFS, FilesystemAPFS)
	}

	if !filepath.IsAbs(c.HomeDir) {
		return errors.NotValidf("home directory %q", c.HomeDir)
	}
	if !filepath.IsAbs(c.MountPath) {
		return errors.NotValidf("mount path %q", c.MountPath)
	}
	rel, err := filepath.Rel(c.HomeDir, c.MountPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errors.NotValidf("mount path %q outside of %q", c.MountPath, c.HomeDir)
	}

	enc, err := ianaindex.IANA.Encoding(c.Encoding)
	if err != nil || enc == nil {
		return errors.NotValidf("text encoding %q", c.Encoding)
	}
	return nil
}

// Blocks is the size of the RAM disk in 512 byte blocks.
func (c Config) Blocks() int {
	return c.CapacityGiB * BlocksPerGiB
}

func (c Config) CapacityBytes() uint64 {
	return uint64(c.Blocks()) * 512
}
