package mesh

import "image/color"

// PrimitiveKind is the closed set of surface classes a face can be tagged with by a classifier
type PrimitiveKind uint8

const (
	Unclassified PrimitiveKind = iota
	Flat
	Cylinder
	Cone
	Sphere
	Torus
	Dense
)

func (k PrimitiveKind) String() string {
	switch k {
	case Flat:
		return "Flat"
	case Cylinder:
		return "Cylinder"
	case Cone:
		return "Cone"
	case Sphere:
		return "Sphere"
	case Torus:
		return "Torus"
	case Dense:
		return "Dense"
	default:
		return "Unclassified"
	}
}

// DefaultColor is the paint used for faces of a primitive that carry no color of their own
func (k PrimitiveKind) DefaultColor() color.RGBA {
	switch k {
	case Flat:
		return color.RGBA{R: 0x40, G: 0x80, B: 0xff, A: 0xff}
	case Cylinder:
		return color.RGBA{R: 0xff, G: 0x40, B: 0x40, A: 0xff}
	case Cone:
		return color.RGBA{R: 0x40, G: 0xc0, B: 0x40, A: 0xff}
	case Sphere:
		return color.RGBA{R: 0xff, G: 0xc0, B: 0x20, A: 0xff}
	case Torus:
		return color.RGBA{R: 0xa0, G: 0x40, B: 0xe0, A: 0xff}
	case Dense:
		return color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	default:
		return color.RGBA{R: 0xc8, G: 0xc8, B: 0xc8, A: 0xff}
	}
}

// PrimitiveSurface tags a face with the surface it was classified into, faces sharing an ID share the surface
type PrimitiveSurface struct {
	Kind PrimitiveKind
	ID   int
}

// PaintColor is the face's own color, falling back to the color of its primitive
func (f *Face) PaintColor() color.RGBA {
	if f.Color.A != 0 {
		return f.Color
	}
	return f.Primitive.Kind.DefaultColor()
}
