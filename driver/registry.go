package driver

import (
	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/sfio"
)

// Registry holds the set of drivers a Library knows about and probes them
// in registration order, the Go equivalent of FreeType's module list walk
// in FT_Open_Face.
type Registry struct {
	drivers []Driver
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry { return &Registry{} }

// Register appends d to the probe order. Later-registered drivers are
// tried only if every earlier one rejects the stream.
func (r *Registry) Register(d Driver) {
	r.drivers = append(r.drivers, d)
}

// Drivers returns the registered drivers in probe order.
func (r *Registry) Drivers() []Driver { return r.drivers }

// ByName returns the driver registered under name, or nil.
func (r *Registry) ByName(name string) Driver {
	for _, d := range r.drivers {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// Probe tries each registered driver's Probe in turn, reseeking s to the
// start before and after each attempt so a driver that peeked past the
// header never confuses the next one, and opens the stream with the
// first driver that accepts it.
func (r *Registry) Probe(s sfio.Stream) (Face, Driver, error) {
	for _, d := range r.drivers {
		if err := s.Seek(0); err != nil {
			return nil, nil, err
		}
		if !d.Probe(s) {
			continue
		}
		if err := s.Seek(0); err != nil {
			return nil, nil, err
		}
		face, err := d.Open(s)
		if err != nil {
			return nil, nil, err
		}
		return face, d, nil
	}
	return nil, nil, errcode.New("driver.Probe", errcode.UnknownFileFormat)
}

// OpenForced bypasses probing and opens s directly with the named driver,
// the Go analogue of FT_Open_Face's FT_PARAM_TAG_IGNORE_PREFERRED_FAMILY-
// style "use this driver" override: useful when a caller already knows
// the format (for example, package cache re-opening a face it evicted).
func (r *Registry) OpenForced(name string, s sfio.Stream) (Face, Driver, error) {
	d := r.ByName(name)
	if d == nil {
		return nil, nil, errcode.New("driver.OpenForced", errcode.InvalidDriverHandle)
	}
	if err := s.Seek(0); err != nil {
		return nil, nil, err
	}
	face, err := d.Open(s)
	if err != nil {
		return nil, nil, err
	}
	return face, d, nil
}
