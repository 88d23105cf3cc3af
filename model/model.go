package model

import (
	"fmt"
	"sort"
)

// Model is an immutable snapshot of named market objects.
//
// Every "mutating" operation copies the handle index and returns a new
// Model; the objects themselves are shared between snapshots, which is safe
// because they are immutable too.
type Model struct {
	objects map[Handle]MarketObject
}

// NewModel builds a snapshot from objs.
//
// Errors:
//   - ErrNilObject for a zero MarketObject or a nil payload.
//   - ErrEmptyName, ErrDuplicateName, ErrHandleCollision.
func NewModel(objs ...MarketObject) (*Model, error) {
	m := &Model{objects: make(map[Handle]MarketObject, len(objs))}
	for _, o := range objs {
		h, err := checkObject(o)
		if err != nil {
			return nil, err
		}
		if prev, ok := m.objects[h]; ok {
			if prev.Name() == o.Name() {
				return nil, fmt.Errorf("%q: %w", o.Name(), ErrDuplicateName)
			}
			return nil, fmt.Errorf("%q vs %q: %w", prev.Name(), o.Name(), ErrHandleCollision)
		}
		m.objects[h] = o
	}

	return m, nil
}

// checkObject validates o and returns its handle.
func checkObject(o MarketObject) (Handle, error) {
	p := o.Parameterized()
	if p == nil {
		return 0, ErrNilObject
	}
	name := p.Name()
	if name == "" {
		return 0, ErrEmptyName
	}

	return HandleOf(name), nil
}

// Len returns the number of objects.
func (m *Model) Len() int { return len(m.objects) }

// Names returns all object names in ascending order.
func (m *Model) Names() []string {
	out := make([]string, 0, len(m.objects))
	for _, o := range m.objects {
		out = append(out, o.Name())
	}
	sort.Strings(out)

	return out
}

// Object looks up an object by name.
func (m *Model) Object(name string) (MarketObject, error) {
	o, ok := m.objects[HandleOf(name)]
	if !ok || o.Name() != name {
		return MarketObject{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}

	return o, nil
}

// Lookup finds an object by handle.
func (m *Model) Lookup(h Handle) (MarketObject, error) {
	o, ok := m.objects[h]
	if !ok {
		return MarketObject{}, fmt.Errorf("handle %s: %w", h, ErrNotFound)
	}

	return o, nil
}

// Curve returns the named curve.
func (m *Model) Curve(name string) (Curve, error) {
	o, err := m.Object(name)
	if err != nil {
		return nil, err
	}
	if o.Kind() != KindCurve {
		return nil, fmt.Errorf("%q is a %s: %w", name, o.Kind(), ErrKindMismatch)
	}

	return o.Curve(), nil
}

// DiscountCurve returns the named curve if it can discount.
func (m *Model) DiscountCurve(name string) (DiscountCurve, error) {
	c, err := m.Curve(name)
	if err != nil {
		return nil, err
	}
	dc, ok := c.(DiscountCurve)
	if !ok {
		return nil, fmt.Errorf("%q is not a discount curve: %w", name, ErrKindMismatch)
	}

	return dc, nil
}

// ForwardCurve returns the named curve if it projects forwards.
func (m *Model) ForwardCurve(name string) (ForwardCurve, error) {
	c, err := m.Curve(name)
	if err != nil {
		return nil, err
	}
	fc, ok := c.(ForwardCurve)
	if !ok {
		return nil, fmt.Errorf("%q is not a forward curve: %w", name, ErrKindMismatch)
	}

	return fc, nil
}

// VolatilitySurface returns the named surface.
func (m *Model) VolatilitySurface(name string) (VolatilitySurface, error) {
	o, err := m.Object(name)
	if err != nil {
		return nil, err
	}
	if o.Kind() != KindVolatilitySurface {
		return nil, fmt.Errorf("%q is a %s: %w", name, o.Kind(), ErrKindMismatch)
	}

	return o.Surface(), nil
}

// AddCurves returns a new Model with cs added; same-named objects are replaced.
func (m *Model) AddCurves(cs ...Curve) (*Model, error) {
	objs := make([]MarketObject, len(cs))
	for i, c := range cs {
		if c == nil {
			return nil, fmt.Errorf("curve %d: %w", i, ErrNilObject)
		}
		objs[i] = CurveObject(c)
	}

	return m.with(objs)
}

// AddVolatilitySurfaces returns a new Model with ss added; same-named objects
// are replaced.
func (m *Model) AddVolatilitySurfaces(ss ...VolatilitySurface) (*Model, error) {
	objs := make([]MarketObject, len(ss))
	for i, s := range ss {
		if s == nil {
			return nil, fmt.Errorf("surface %d: %w", i, ErrNilObject)
		}
		objs[i] = SurfaceObject(s)
	}

	return m.with(objs)
}

// Rebase returns a new Model in which each existing object is replaced by the
// same-named object from objs, keeping its kind. Objects not named are shared.
//
// Errors:
//   - ErrNilObject; ErrNotFound for a name the model does not hold.
//   - ErrKindMismatch when the replacement cannot play the stored object's
//     role (e.g. a surface for a curve).
func (m *Model) Rebase(objs ...ParameterObject) (*Model, error) {
	next := m.copyIndex(0)
	for i, p := range objs {
		if p == nil {
			return nil, fmt.Errorf("object %d: %w", i, ErrNilObject)
		}
		h := HandleOf(p.Name())
		prev, ok := m.objects[h]
		if !ok || prev.Name() != p.Name() {
			return nil, fmt.Errorf("object %q: %w", p.Name(), ErrNotFound)
		}
		w, err := wrap(prev.Kind(), p)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", p.Name(), err)
		}
		next.objects[h] = w
	}

	return next, nil
}

// with copies the index and inserts objs, replacing by name.
func (m *Model) with(objs []MarketObject) (*Model, error) {
	next := m.copyIndex(len(objs))
	for _, o := range objs {
		h, err := checkObject(o)
		if err != nil {
			return nil, err
		}
		if prev, ok := next.objects[h]; ok && prev.Name() != o.Name() {
			return nil, fmt.Errorf("%q vs %q: %w", prev.Name(), o.Name(), ErrHandleCollision)
		}
		next.objects[h] = o
	}

	return next, nil
}

// CloneForParameter returns a new Model in which every object named by an
// update is replaced by its clone for the update's parameters. Objects not
// named are shared with the receiver.
//
// Errors:
//   - ErrNotFound for an unknown handle.
//   - Any error from the object's CloneForParameter (e.g. ErrParameterLength).
//   - ErrKindMismatch when a clone changes variant.
//
// Complexity:
//   - Time O(len(objects) + Σ clone cost), Space O(len(objects)).
func (m *Model) CloneForParameter(updates []Update) (*Model, error) {
	next := m.copyIndex(0)
	for _, u := range updates {
		o, ok := m.objects[u.Handle]
		if !ok {
			return nil, fmt.Errorf("handle %s: %w", u.Handle, ErrNotFound)
		}
		cloned, err := o.Parameterized().CloneForParameter(u.Parameters)
		if err != nil {
			return nil, fmt.Errorf("clone %q: %w", o.Name(), err)
		}
		if cloned == nil {
			return nil, fmt.Errorf("clone %q: %w", o.Name(), ErrNilObject)
		}
		w, err := wrap(o.Kind(), cloned)
		if err != nil {
			return nil, err
		}
		next.objects[u.Handle] = w
	}

	return next, nil
}

func (m *Model) copyIndex(extra int) *Model {
	objects := make(map[Handle]MarketObject, len(m.objects)+extra)
	for h, o := range m.objects {
		objects[h] = o
	}

	return &Model{objects: objects}
}
