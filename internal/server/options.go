package server

import (
	"os"
	"runtime"
)

// Options configures server creation.
type Options struct {
	// StorageDir roots the temporary workspace for uploads and generated
	// artifacts. Empty means the system temp directory.
	StorageDir string
	// CacheDir locates the digest cache. Empty disables caching.
	CacheDir string
	// DictionaryPath names a JSON file with extra tag names. Empty means
	// the built-in table only.
	DictionaryPath string
	// Concurrency bounds parallel extractions in batch requests.
	Concurrency int
	// Metrics receives request and extraction counters. Nil disables
	// recording.
	Metrics *Metrics
}

func (o Options) normalized() Options {
	if o.StorageDir == "" {
		o.StorageDir = os.TempDir()
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.NumCPU()
	}
	return o
}
