package task

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/NamanBalaji/mcfetch/internal/source"
)

var ErrNoFiles = errors.New("no files to download")

// File is one artifact of a version: where it goes under the destination
// root and where it can be fetched from. An empty Path uses the name reported
// by the server.
type File struct {
	Path             string `yaml:"path" json:"path"`
	source.Endpoints `yaml:",inline"`
}

// Resolver maps a version to the files it consists of.
type Resolver interface {
	Resolve(ctx context.Context, version string) ([]File, error)
}

type ResolverFunc func(ctx context.Context, version string) ([]File, error)

func (f ResolverFunc) Resolve(ctx context.Context, version string) ([]File, error) {
	return f(ctx, version)
}

// StaticResolver returns the same files for every version.
type StaticResolver []File

func (s StaticResolver) Resolve(context.Context, string) ([]File, error) {
	if len(s) == 0 {
		return nil, ErrNoFiles
	}

	return s, nil
}

// LoadFiles reads a YAML list of files. Entries without a mirror get one
// derived from the official URL when a known mirror exists.
func LoadFiles(path string) ([]File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file list: %w", err)
	}

	var files []File
	if err := yaml.Unmarshal(b, &files); err != nil {
		return nil, fmt.Errorf("parse file list %s: %w", path, err)
	}

	for i := range files {
		files[i].Endpoints = source.NewEndpoints(files[i].Official, files[i].Mirror)

		if files[i].Official == "" && files[i].Mirror == "" {
			return nil, fmt.Errorf("file list %s: entry %d has no URL", path, i)
		}
	}

	return files, nil
}
