package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/NamanBalaji/mcfetch/internal/source"
)

const (
	threadPoolSize     = 64
	largeFileThreshold = 10 * 1024 * 1024
	largeFileChunks    = 8
	strategy           = source.Hybrid
	maxRetries         = 3
	connectTimeout     = 30
	readTimeout        = 60
	retryDelay         = 500 * time.Millisecond
	logLevel           = "info"
)

var dataDir = filepath.Join(xdg.DataHome, appName)
