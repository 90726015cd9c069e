// Package sqlstore implements the storage interfaces on top of sqlx for
// PostgreSQL (lib/pq or pgx) and SQLite (modernc).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/R3E-Network/petclinic/internal/app/domain/owner"
	"github.com/R3E-Network/petclinic/internal/app/domain/vet"
	"github.com/R3E-Network/petclinic/internal/app/storage"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	sqlx.BindDriver("pgx", sqlx.DOLLAR)
}

// Store implements storage.Store backed by a SQL database.
type Store struct {
	db      *sqlx.DB
	dialect dialect
}

var _ storage.Store = (*Store)(nil)

// New creates a Store using the provided database handle. The SQL dialect is
// derived from the handle's driver name.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, dialect: dialectFor(db.DriverName())}
}

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

func dialectFor(driver string) dialect {
	switch driver {
	case "sqlite", "sqlite3":
		return dialectSQLite
	default:
		return dialectPostgres
	}
}

// petNamesExpr aggregates an owner's pet names in name order.
func (d dialect) petNamesExpr() string {
	if d == dialectSQLite {
		return `COALESCE((SELECT group_concat(name, ', ') FROM (SELECT name FROM pets WHERE owner_id = o.id ORDER BY name)), '')`
	}
	return `COALESCE((SELECT string_agg(p.name, ', ' ORDER BY p.name) FROM pets p WHERE p.owner_id = o.id), '')`
}

// --- OwnerStore -------------------------------------------------------------

func (s *Store) CreateOwner(ctx context.Context, o owner.Owner) (owner.Owner, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
		INSERT INTO owners (first_name, last_name, address, city, telephone)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`), o.FirstName, o.LastName, o.Address, o.City, o.Telephone).Scan(&id)
	if err != nil {
		return owner.Owner{}, err
	}
	o.ID = id
	return o, nil
}

func (s *Store) UpdateOwner(ctx context.Context, o owner.Owner) (owner.Owner, error) {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE owners
		SET first_name = ?, last_name = ?, address = ?, city = ?, telephone = ?
		WHERE id = ?
	`), o.FirstName, o.LastName, o.Address, o.City, o.Telephone, o.ID)
	if err != nil {
		return owner.Owner{}, err
	}
	if err := requireAffected(result); err != nil {
		return owner.Owner{}, err
	}
	return o, nil
}

func (s *Store) GetOwner(ctx context.Context, id int64) (owner.Owner, error) {
	var o owner.Owner
	err := s.db.GetContext(ctx, &o, s.db.Rebind(`
		SELECT id, first_name, last_name, address, city, telephone
		FROM owners
		WHERE id = ?
	`), id)
	if err != nil {
		return owner.Owner{}, notFound(err)
	}
	return o, nil
}

func (s *Store) OwnerDetailRows(ctx context.Context, ownerID int64) ([]owner.DetailRow, error) {
	var rows []owner.DetailRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT o.id AS owner_id, o.first_name, o.last_name, o.address, o.city, o.telephone,
		       p.id AS pet_id, p.name AS pet_name, p.birth_date,
		       t.id AS type_id, t.name AS type_name,
		       v.id AS visit_id, v.visit_date, v.description AS visit_description
		FROM owners o
		LEFT JOIN pets p ON p.owner_id = o.id
		LEFT JOIN types t ON t.id = p.type_id
		LEFT JOIN visits v ON v.pet_id = p.id
		WHERE o.id = ?
		ORDER BY p.id, v.visit_date, v.id
	`), ownerID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) CountOwners(ctx context.Context, lastNamePrefix string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, s.db.Rebind(`
		SELECT COUNT(*) FROM owners o
		WHERE LOWER(o.last_name) LIKE LOWER(?) ESCAPE '\'
	`), likePrefix(lastNamePrefix))
	return count, err
}

func (s *Store) ListOwnerSummaries(ctx context.Context, lastNamePrefix string, limit, offset int) ([]owner.Summary, error) {
	query := fmt.Sprintf(`
		SELECT o.id, o.first_name, o.last_name, o.address, o.city, o.telephone,
		       %s AS pet_names
		FROM owners o
		WHERE LOWER(o.last_name) LIKE LOWER(?) ESCAPE '\'
		ORDER BY o.last_name, o.first_name, o.id
		LIMIT ? OFFSET ?
	`, s.dialect.petNamesExpr())

	result := []owner.Summary{}
	if err := s.db.SelectContext(ctx, &result, s.db.Rebind(query), likePrefix(lastNamePrefix), limit, offset); err != nil {
		return nil, err
	}
	return result, nil
}

// --- PetStore ---------------------------------------------------------------

func (s *Store) ListPetTypes(ctx context.Context) ([]owner.PetType, error) {
	result := []owner.PetType{}
	err := s.db.SelectContext(ctx, &result, `SELECT id, name FROM types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreatePet(ctx context.Context, p owner.Pet) (owner.Pet, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
		INSERT INTO pets (name, birth_date, type_id, owner_id)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), p.Name, p.BirthDate.Format(owner.DateLayout), p.TypeID, p.OwnerID).Scan(&id)
	if err != nil {
		return owner.Pet{}, err
	}
	p.ID = id
	return p, nil
}

func (s *Store) UpdatePet(ctx context.Context, p owner.Pet) (owner.Pet, error) {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE pets
		SET name = ?, birth_date = ?, type_id = ?
		WHERE id = ?
	`), p.Name, p.BirthDate.Format(owner.DateLayout), p.TypeID, p.ID)
	if err != nil {
		return owner.Pet{}, err
	}
	if err := requireAffected(result); err != nil {
		return owner.Pet{}, err
	}
	return p, nil
}

func (s *Store) GetPet(ctx context.Context, id int64) (owner.Pet, error) {
	var p owner.Pet
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`
		SELECT id, name, birth_date, type_id, owner_id
		FROM pets
		WHERE id = ?
	`), id)
	if err != nil {
		return owner.Pet{}, notFound(err)
	}
	return p, nil
}

// --- VisitStore -------------------------------------------------------------

func (s *Store) CreateVisit(ctx context.Context, v owner.Visit) (owner.Visit, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
		INSERT INTO visits (pet_id, visit_date, description)
		VALUES (?, ?, ?)
		RETURNING id
	`), v.PetID, v.Date.Format(owner.DateLayout), v.Description).Scan(&id)
	if err != nil {
		return owner.Visit{}, err
	}
	v.ID = id
	return v, nil
}

func (s *Store) ListVisits(ctx context.Context, petID int64) ([]owner.Visit, error) {
	result := []owner.Visit{}
	err := s.db.SelectContext(ctx, &result, s.db.Rebind(`
		SELECT id, pet_id, visit_date, description
		FROM visits
		WHERE pet_id = ?
		ORDER BY visit_date, id
	`), petID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// --- VetStore ---------------------------------------------------------------

func (s *Store) CountVets(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM vets`)
	return count, err
}

func (s *Store) ListVetIDs(ctx context.Context, limit, offset int) ([]int64, error) {
	ids := []int64{}
	err := s.db.SelectContext(ctx, &ids, s.db.Rebind(`
		SELECT id FROM vets ORDER BY id LIMIT ? OFFSET ?
	`), limit, offset)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

const vetRowsQuery = `
	SELECT v.id AS vet_id, v.first_name, v.last_name,
	       s.id AS specialty_id, s.name AS specialty_name
	FROM vets v
	LEFT JOIN vet_specialties vs ON vs.vet_id = v.id
	LEFT JOIN specialties s ON s.id = vs.specialty_id
`

func (s *Store) VetRows(ctx context.Context, ids []int64) ([]vet.Row, error) {
	var (
		query = vetRowsQuery + ` ORDER BY v.id, s.name`
		args  []interface{}
	)
	if ids != nil {
		if len(ids) == 0 {
			return []vet.Row{}, nil
		}
		var err error
		query, args, err = sqlx.In(vetRowsQuery+` WHERE v.id IN (?) ORDER BY v.id, s.name`, ids)
		if err != nil {
			return nil, err
		}
	}

	result := []vet.Row{}
	if err := s.db.SelectContext(ctx, &result, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return result, nil
}

// --- helpers ----------------------------------------------------------------

func likePrefix(prefix string) string {
	return storage.EscapeLike(prefix) + "%"
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
