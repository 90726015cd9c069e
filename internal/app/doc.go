// Package app composes the pet clinic: it wires stores into the owner, pet,
// visit and vet services and manages the lifecycle of attached services.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring and lifecycle
//	├── domain/             # Plain data types (owner, vet)
//	├── pagination/         # Page window math
//	├── storage/            # Store interfaces and implementations
//	│   ├── memory/         # Seeded in-memory store for tests and local runs
//	│   └── sqlstore/       # sqlx store for Postgres and SQLite
//	├── services/           # owners, pets, visits, vets
//	├── validation/         # Form binding and validation rules
//	├── i18n/               # Locale bundles and Accept-Language negotiation
//	├── httpapi/            # Router, handlers, templates and flash messages
//	├── metrics/            # Prometheus collectors
//	├── runtime/            # Config-driven bootstrap of the HTTP server
//	└── system/             # Lifecycle manager
//
// # Dependency Direction
//
//	cmd/petclinic/
//	      │
//	      ▼
//	internal/app/runtime ──► internal/platform (database, migrations)
//	      │
//	      ▼
//	internal/app/httpapi ──► internal/middleware
//	      │
//	      ▼
//	internal/app (composition) ──► services ──► storage
package app
