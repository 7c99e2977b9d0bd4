package postgres

import (
	"context"

	"github.com/davquintana/contactbook-backend/internal/models"
	"github.com/davquintana/contactbook-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contactsRepo struct{ pool *pgxpool.Pool }

func NewContacts(pool *pgxpool.Pool) repository.Contacts {
	return &contactsRepo{pool: pool}
}

const contactCols = `id, user_id, apellido, nombre, empresa, domicilio, telefonos, email,
	propietario, es_publico, es_visible, legacy_password, created_at, updated_at`

func scanContact(row pgx.Row) (models.Contact, error) {
	var c models.Contact
	err := row.Scan(&c.ID, &c.UserID, &c.Surname, &c.GivenName, &c.Company, &c.Address,
		&c.Phone, &c.Email, &c.Owner, &c.Public, &c.Visible, &c.LegacyPassword,
		&c.CreatedAt, &c.UpdatedAt)
	return c, mapErr(err)
}

func collectContacts(rows pgx.Rows) ([]models.Contact, error) {
	defer rows.Close()
	var out []models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, mapErr(rows.Err())
}

func (r *contactsRepo) Add(ctx context.Context, c models.Contact) (models.Contact, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO contacts(id, user_id, apellido, nombre, empresa, domicilio, telefonos,
		                      email, propietario, es_publico, es_visible, legacy_password)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 RETURNING `+contactCols,
		c.ID, c.UserID, c.Surname, c.GivenName, c.Company, c.Address, c.Phone,
		c.Email, c.Owner, c.Public, c.Visible, c.LegacyPassword,
	)
	return scanContact(row)
}

func (r *contactsRepo) Get(ctx context.Context, userID, contactID string) (models.Contact, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+contactCols+` FROM contacts WHERE id=$1 AND user_id=$2`,
		contactID, userID,
	)
	return scanContact(row)
}

// Update merges the patch in a single statement, NULL patch fields keep the
// stored value. propietario is deliberately not part of the SET list.
func (r *contactsRepo) Update(ctx context.Context, userID, contactID string, p models.ContactPatch) (models.Contact, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE contacts SET
		    apellido        = COALESCE($3, apellido),
		    nombre          = COALESCE($4, nombre),
		    empresa         = COALESCE($5, empresa),
		    domicilio       = COALESCE($6, domicilio),
		    telefonos       = COALESCE($7, telefonos),
		    email           = COALESCE($8, email),
		    es_publico      = COALESCE($9, es_publico),
		    es_visible      = COALESCE($10, es_visible),
		    legacy_password = COALESCE($11, legacy_password),
		    updated_at      = now()
		  WHERE id=$1 AND user_id=$2
		  RETURNING `+contactCols,
		contactID, userID,
		p.Surname, p.GivenName, p.Company, p.Address, p.Phone, p.Email,
		p.Public, p.Visible, p.LegacyPassword,
	)
	return scanContact(row)
}

func (r *contactsRepo) Delete(ctx context.Context, userID, contactID string) error {
	// Deleting an absent id is a no-op, matching the legacy behavior.
	_, err := r.pool.Exec(ctx,
		`DELETE FROM contacts WHERE id=$1 AND user_id=$2`, contactID, userID)
	return mapErr(err)
}

func (r *contactsRepo) ListOwnVisible(ctx context.Context, userID string) ([]models.Contact, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+contactCols+` FROM contacts
		  WHERE user_id=$1 AND es_visible ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectContacts(rows)
}

func (r *contactsRepo) ListPublicVisible(ctx context.Context) ([]models.Contact, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+contactCols+` FROM contacts
		  WHERE es_publico AND es_visible ORDER BY created_at, id`)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectContacts(rows)
}

func (r *contactsRepo) ListAll(ctx context.Context) ([]models.Contact, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+contactCols+` FROM contacts ORDER BY created_at, id`)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectContacts(rows)
}

func (r *contactsRepo) SetPublic(ctx context.Context, contactID string, public bool) (models.Contact, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE contacts SET es_publico=$2, updated_at=now() WHERE id=$1
		 RETURNING `+contactCols,
		contactID, public,
	)
	return scanContact(row)
}
