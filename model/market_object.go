package model

import "fmt"

// Kind tags the variant held by a MarketObject.
type Kind uint8

const (
	// KindCurve marks a MarketObject holding a Curve.
	KindCurve Kind = iota + 1
	// KindVolatilitySurface marks a MarketObject holding a VolatilitySurface.
	KindVolatilitySurface
)

// String returns a lower-case label for logs.
func (k Kind) String() string {
	switch k {
	case KindCurve:
		return "curve"
	case KindVolatilitySurface:
		return "volatility_surface"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// MarketObject is a curve or a volatility surface. The zero value is invalid.
type MarketObject struct {
	kind    Kind
	curve   Curve
	surface VolatilitySurface
}

// CurveObject wraps c as a MarketObject.
func CurveObject(c Curve) MarketObject {
	return MarketObject{kind: KindCurve, curve: c}
}

// SurfaceObject wraps s as a MarketObject.
func SurfaceObject(s VolatilitySurface) MarketObject {
	return MarketObject{kind: KindVolatilitySurface, surface: s}
}

// Kind reports which variant is held.
func (o MarketObject) Kind() Kind { return o.kind }

// Curve returns the held curve, or nil for a surface.
func (o MarketObject) Curve() Curve { return o.curve }

// Surface returns the held surface, or nil for a curve.
func (o MarketObject) Surface() VolatilitySurface { return o.surface }

// Name returns the name of the held object ("" for the zero value).
func (o MarketObject) Name() string {
	if p := o.Parameterized(); p != nil {
		return p.Name()
	}

	return ""
}

// Parameterized returns the held object through its ParameterObject view.
func (o MarketObject) Parameterized() ParameterObject {
	switch o.kind {
	case KindCurve:
		return o.curve
	case KindVolatilitySurface:
		return o.surface
	default:
		return nil
	}
}

// Match calls exactly one of the callbacks, depending on Kind.
// A nil callback is skipped.
func (o MarketObject) Match(onCurve func(Curve), onSurface func(VolatilitySurface)) {
	switch o.kind {
	case KindCurve:
		if onCurve != nil {
			onCurve(o.curve)
		}
	case KindVolatilitySurface:
		if onSurface != nil {
			onSurface(o.surface)
		}
	}
}

// wrap re-tags a cloned ParameterObject with the kind of the original.
func wrap(kind Kind, p ParameterObject) (MarketObject, error) {
	switch kind {
	case KindCurve:
		if c, ok := p.(Curve); ok {
			return CurveObject(c), nil
		}
	case KindVolatilitySurface:
		if s, ok := p.(VolatilitySurface); ok {
			return SurfaceObject(s), nil
		}
	}

	return MarketObject{}, fmt.Errorf("clone of %q: %w", p.Name(), ErrKindMismatch)
}
