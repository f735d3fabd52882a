package types

import "strings"

type Category string

const (
	CategoryStorage     Category = "storage"
	CategoryTransformer Category = "transformer"
)

// Device is a catalog template or a placed instance of one. Placed
// instances carry a unique InstanceID; X and Y are filled in by layout
// placement and are not part of identity.
type Device struct {
	Name         string   `json:"name" yaml:"name"`
	Manufacturer string   `json:"mfg" yaml:"mfg"`
	Category     Category `json:"category" yaml:"category"`
	Length       float64  `json:"length" yaml:"length"`
	Width        float64  `json:"width" yaml:"width"`
	Cost         float64  `json:"cost" yaml:"cost"`
	ReleaseDate  *int     `json:"release_date" yaml:"release_date"`
	CapacityKWh  float64  `json:"capacity_kwh" yaml:"capacity_kwh"`
	Color        string   `json:"color,omitempty" yaml:"color"`
	Image        string   `json:"img,omitempty" yaml:"img"`
	X            *float64 `json:"x,omitempty" yaml:"-"`
	Y            *float64 `json:"y,omitempty" yaml:"-"`
	InstanceID   string   `json:"uuid,omitempty" yaml:"-"`
}

func (d Device) IsTransformer() bool {
	return strings.EqualFold(string(d.Category), string(CategoryTransformer))
}

func (d Device) IsStorage() bool {
	return strings.EqualFold(string(d.Category), string(CategoryStorage))
}

// Positioned reports whether both coordinates have been assigned.
func (d Device) Positioned() bool {
	return d.X != nil && d.Y != nil
}

// Row is an ordered group of devices sharing a vertical band.
type Row []Device

// Layout is the full row-grouped arrangement of a site's devices.
type Layout []Row

// Flatten returns all devices in row order.
func (l Layout) Flatten() []Device {
	out := make([]Device, 0, l.DeviceCount())
	for _, row := range l {
		out = append(out, row...)
	}
	return out
}

func (l Layout) DeviceCount() int {
	n := 0
	for _, row := range l {
		n += len(row)
	}
	return n
}

// BufferArea is the inflated rectangle reserved around a placed layout.
type BufferArea struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
	Area   float64 `json:"area"`
}
