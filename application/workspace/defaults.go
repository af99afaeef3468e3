package workspace

import (
	"sync"

	"github.com/zach-sndr/twitcanva/application/ports"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

// MemoryDefaults remembers the last model/settings used per node type.
// It is the default DefaultsProvider when none is injected.
type MemoryDefaults struct {
	mu     sync.RWMutex
	byType map[valueobjects.NodeType]rememberedDefaults
}

type rememberedDefaults struct {
	model    string
	settings map[string]string
}

// NewMemoryDefaults creates an empty defaults store
func NewMemoryDefaults() *MemoryDefaults {
	return &MemoryDefaults{
		byType: make(map[valueobjects.NodeType]rememberedDefaults),
	}
}

var _ ports.DefaultsProvider = (*MemoryDefaults)(nil)

// DefaultsFor returns the remembered model and settings for a type
func (d *MemoryDefaults) DefaultsFor(t valueobjects.NodeType) (string, map[string]string) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	remembered, ok := d.byType[t]
	if !ok {
		return "", nil
	}
	settings := make(map[string]string, len(remembered.settings))
	for k, v := range remembered.settings {
		settings[k] = v
	}
	return remembered.model, settings
}

// Remember records the model and settings as the new defaults for a type
func (d *MemoryDefaults) Remember(t valueobjects.NodeType, model string, settings map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	copied := make(map[string]string, len(settings))
	for k, v := range settings {
		copied[k] = v
	}
	d.byType[t] = rememberedDefaults{model: model, settings: copied}
}
