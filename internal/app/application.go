package app

import (
	"context"
	"fmt"

	"github.com/R3E-Network/petclinic/internal/app/pagination"
	"github.com/R3E-Network/petclinic/internal/app/services/owners"
	"github.com/R3E-Network/petclinic/internal/app/services/pets"
	"github.com/R3E-Network/petclinic/internal/app/services/vets"
	"github.com/R3E-Network/petclinic/internal/app/services/visits"
	"github.com/R3E-Network/petclinic/internal/app/storage"
	"github.com/R3E-Network/petclinic/internal/app/storage/memory"
	"github.com/R3E-Network/petclinic/internal/app/system"
	"github.com/R3E-Network/petclinic/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to a
// seeded in-memory store shared by all of them.
type Stores struct {
	Owners storage.OwnerStore
	Pets   storage.PetStore
	Visits storage.VisitStore
	Vets   storage.VetStore
}

// StoresFrom uses one Store for every dependency.
func StoresFrom(s storage.Store) Stores {
	return Stores{Owners: s, Pets: s, Visits: s, Vets: s}
}

// Option tweaks application construction.
type Option func(*options)

type options struct {
	pageSize int
}

// WithPageSize sets the default page size of the owner and vet lists.
func WithPageSize(size int) Option {
	return func(o *options) { o.pageSize = size }
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Owners *owners.Service
	Pets   *pets.Service
	Visits *visits.Service
	Vets   *vets.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger, opts ...Option) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}
	o := options{pageSize: pagination.DefaultSize}
	for _, opt := range opts {
		opt(&o)
	}

	if stores.Owners == nil || stores.Pets == nil || stores.Visits == nil || stores.Vets == nil {
		mem := memory.NewSeeded()
		if stores.Owners == nil {
			stores.Owners = mem
		}
		if stores.Pets == nil {
			stores.Pets = mem
		}
		if stores.Visits == nil {
			stores.Visits = mem
		}
		if stores.Vets == nil {
			stores.Vets = mem
		}
		log.Warn("no persistent store configured; using seeded in-memory store")
	}

	manager := system.NewManager()
	for _, name := range []string{"owners", "pets", "visits", "vets"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	return &Application{
		manager: manager,
		log:     log,
		Owners:  owners.New(stores.Owners, o.pageSize, log),
		Pets:    pets.New(stores.Owners, stores.Pets, log),
		Visits:  visits.New(stores.Owners, stores.Pets, stores.Visits, log),
		Vets:    vets.New(stores.Vets, o.pageSize, log),
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Services lists the registered lifecycle services in start order.
func (a *Application) Services() []string {
	return a.manager.Services()
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
