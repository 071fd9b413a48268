package card

type Color byte

const (
	Red Color = iota
	Green
	Purple
)

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Purple:
		return "purple"
	}
	return "?"
}

func (c Color) Letter() string {
	switch c {
	case Red:
		return "R"
	case Green:
		return "G"
	case Purple:
		return "P"
	}
	return "?"
}

func colorFromLetter(b byte) (Color, bool) {
	switch b {
	case 'R':
		return Red, true
	case 'G':
		return Green, true
	case 'P':
		return Purple, true
	}
	return 0, false
}

type Shading byte

const (
	Solid Shading = iota
	Striped
	Open
)

func (s Shading) String() string {
	switch s {
	case Solid:
		return "solid"
	case Striped:
		return "striped"
	case Open:
		return "open"
	}
	return "?"
}

func (s Shading) Letter() string {
	switch s {
	case Solid:
		return "F" // filled
	case Striped:
		return "S"
	case Open:
		return "O"
	}
	return "?"
}

func shadingFromLetter(b byte) (Shading, bool) {
	switch b {
	case 'F':
		return Solid, true
	case 'S':
		return Striped, true
	case 'O':
		return Open, true
	}
	return 0, false
}

type Shape byte

const (
	Diamond Shape = iota
	Squiggle
	Oval
)

func (s Shape) String() string {
	switch s {
	case Diamond:
		return "diamond"
	case Squiggle:
		return "squiggle"
	case Oval:
		return "oval"
	}
	return "?"
}

func (s Shape) Letter() string {
	switch s {
	case Diamond:
		return "D"
	case Squiggle:
		return "Q"
	case Oval:
		return "V"
	}
	return "?"
}

func shapeFromLetter(b byte) (Shape, bool) {
	switch b {
	case 'D':
		return Diamond, true
	case 'Q':
		return Squiggle, true
	case 'V':
		return Oval, true
	}
	return 0, false
}
