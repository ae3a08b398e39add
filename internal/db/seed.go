package db

import (
	"time"

	"colabora/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// SeedProposals inserts the launch proposals into an empty table and returns
// how many were created. Seeded proposals start at zero votes so the counter
// always matches the vote records.
func SeedProposals(conn *gorm.DB) (int, error) {
	var count int64
	if err := conn.Model(&models.Proposal{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed counting proposals")
	}
	if count > 0 {
		return 0, nil
	}

	seeds := []models.Proposal{
		{
			Title:       "Plataforma de Transparencia Digital",
			Description: "Crear un portal donde los ciudadanos puedan consultar en tiempo real el uso de recursos públicos y avances de proyectos gubernamentales.",
			Category:    models.CategoryGobierno,
			CreatedAt:   time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:       "Becas para Investigación en IA",
			Description: "Programa de becas para estudiantes de posgrado enfocados en inteligencia artificial aplicada a problemas sociales.",
			Category:    models.CategoryAcademia,
			CreatedAt:   time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:       "Red de Startups Sociales",
			Description: "Incubadora de empresas que generen impacto social positivo con apoyo de mentoría y financiamiento semilla.",
			Category:    models.CategoryEmpresa,
			CreatedAt:   time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:       "Espacios Verdes Comunitarios",
			Description: "Rehabilitación de áreas abandonadas para convertirlas en parques y jardines gestionados por vecinos.",
			Category:    models.CategoryComunidad,
			CreatedAt:   time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:       "Digitalización de Trámites",
			Description: "Migrar todos los trámites gubernamentales a plataformas digitales para reducir tiempos y costos.",
			Category:    models.CategoryGobierno,
			CreatedAt:   time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:       "Laboratorios Ciudadanos de Innovación",
			Description: "Espacios públicos equipados donde la comunidad pueda experimentar con tecnología y desarrollar proyectos.",
			Category:    models.CategoryAcademia,
			CreatedAt:   time.Date(2026, 2, 18, 0, 0, 0, 0, time.UTC),
		},
	}

	for i := range seeds {
		seeds[i].ID = uuid.NewString()
		seeds[i].AuthorID = models.AnonymousAuthor
		seeds[i].ImageURLs = []string{}
	}
	if err := conn.Create(&seeds).Error; err != nil {
		return 0, errors.Wrap(err, "failed seeding proposals")
	}
	return len(seeds), nil
}
