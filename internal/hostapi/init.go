package hostapi

import (
	"fmt"

	"github.com/okra-platform/striter/internal/realm"
)

// InitializeHostAPIs registers every built-in host API factory
func InitializeHostAPIs(registry Registry, r *realm.Realm) error {
	factories := []Factory{
		NewStringsAPIFactory(r),
	}

	for _, factory := range factories {
		if err := registry.Register(factory); err != nil {
			return fmt.Errorf("failed to register %s: %w", factory.Name(), err)
		}
	}

	return nil
}
