package typereg

// Transform shares its short name with a type in the external test package.
type Transform struct{ X, Y float64 }
