package design

import (
	"github.com/KevinKickass/OpenSitePlanner/internal/devices"
	"github.com/KevinKickass/OpenSitePlanner/internal/types"
)

// RequiredTransformers is the number of transformers needed to wire the
// given number of storage devices.
func RequiredTransformers(storage int) int {
	return (storage + 1) / 2
}

// BalanceTransformers adds clones of transformer, or removes the first
// transformers in list order, until the list holds exactly one transformer
// per two storage devices (rounded up).
func BalanceTransformers(siteDevices []types.Device, transformer types.Device) []types.Device {
	storage, transformers := 0, 0
	for _, d := range siteDevices {
		switch {
		case d.IsStorage():
			storage++
		case d.IsTransformer():
			transformers++
		}
	}

	required := RequiredTransformers(storage)
	out := make([]types.Device, 0, len(siteDevices)+max(0, required-transformers))

	if transformers > required {
		toRemove := transformers - required
		for _, d := range siteDevices {
			if d.IsTransformer() && toRemove > 0 {
				toRemove--
				continue
			}
			out = append(out, d)
		}
		return out
	}

	out = append(out, siteDevices...)
	for i := transformers; i < required; i++ {
		out = append(out, devices.Instantiate(transformer))
	}
	return out
}
