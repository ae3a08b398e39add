package models

// Category is one of the four sectors ("hélices") a proposal belongs to.
type Category string

const (
	CategoryGobierno  Category = "Gobierno"
	CategoryAcademia  Category = "Academia"
	CategoryEmpresa   Category = "Empresa"
	CategoryComunidad Category = "Comunidad"
)

// Categories lists the sectors in the order the client shows them.
var Categories = []Category{
	CategoryGobierno,
	CategoryAcademia,
	CategoryEmpresa,
	CategoryComunidad,
}

// Valid reports whether c is one of the fixed sectors.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
