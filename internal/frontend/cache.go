package frontend

import (
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/sirupsen/logrus"
)

// IndexCache caches index.html in memory with injected globals.
// Thread-safe for concurrent reads.
type IndexCache struct {
	mu       sync.RWMutex
	original []byte
	injected []byte
}

// Prewarm loads index.html into memory and injects globals.
func (ic *IndexCache) Prewarm(
	logger logrus.FieldLogger,
	filesystem fs.FS,
	globals map[string]interface{},
) error {
	file, err := filesystem.Open(indexFileName)
	if err != nil {
		return fmt.Errorf("failed to open index.html: %w", err)
	}
	defer file.Close()

	original, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read index.html: %w", err)
	}

	injected, err := InjectGlobals(original, globals)
	if err != nil {
		return fmt.Errorf("failed to inject globals: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"original_size": len(original),
		"injected_size": len(injected),
	}).Info("Loaded index.html into memory")

	ic.mu.Lock()
	defer ic.mu.Unlock()

	ic.original = original
	ic.injected = injected

	return nil
}

// GetInjected returns the cached index.html with globals injected.
func (ic *IndexCache) GetInjected() []byte {
	ic.mu.RLock()
	defer ic.mu.RUnlock()

	return ic.injected
}

// Update re-injects globals into the cached original.
// On error the previous injected version is kept.
func (ic *IndexCache) Update(globals map[string]interface{}) error {
	ic.mu.RLock()
	original := ic.original
	ic.mu.RUnlock()

	injected, err := InjectGlobals(original, globals)
	if err != nil {
		return fmt.Errorf("failed to inject globals: %w", err)
	}

	ic.mu.Lock()
	defer ic.mu.Unlock()

	ic.injected = injected

	return nil
}
