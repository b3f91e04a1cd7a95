package repository

import (
	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/postgrest"
)

// Repositories holds all entity repository instances.
type Repositories struct {
	Product  *ProductRepository
	User     *UserRepository
	Order    *OrderRepository
	Occasion *OccasionRepository
	Setting  *SettingRepository
	Image    *ImageRepository
}

// NewRepositories creates the repository collection over one client.
func NewRepositories(client postgrest.Client, logger zerolog.Logger) *Repositories {
	return &Repositories{
		Product:  NewProductRepository(client, logger),
		User:     NewUserRepository(client, logger),
		Order:    NewOrderRepository(client, logger),
		Occasion: NewOccasionRepository(client, logger),
		Setting:  NewSettingRepository(client, logger),
		Image:    NewImageRepository(client, logger),
	}
}
