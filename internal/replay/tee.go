package replay

import "errors"

// Tee returns a host that shows every buffer on all of hosts.
// The first host's surface lengths are authoritative.
func Tee(hosts ...Host) Host {
	return teeHost(hosts)
}

type teeHost []Host

func (t teeHost) Primary() Surface {
	surfaces := make(teeSurface, len(t))
	for i, h := range t {
		surfaces[i] = h.Primary()
	}
	return surfaces
}

func (t teeHost) NewSurface(index int) (Surface, error) {
	surfaces := make(teeSurface, 0, len(t))
	for _, h := range t {
		s, err := h.NewSurface(index)
		if err != nil {
			return nil, err
		}
		surfaces = append(surfaces, s)
	}
	return surfaces, nil
}

type teeSurface []Surface

func (t teeSurface) Len() int {
	if len(t) == 0 {
		return 0
	}
	return t[0].Len()
}

// Replace forwards to every surface. A full overwrite of the first
// surface is a full overwrite of each, so surfaces seeded with different
// text still converge.
func (t teeSurface) Replace(start, end int, text string) error {
	full := start == 0 && end == t.Len()

	var errs []error
	for _, s := range t {
		sEnd := end
		if full {
			sEnd = s.Len()
		}
		if err := s.Replace(start, sEnd, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
