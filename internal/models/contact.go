package models

import "time"

// Contact is a single address-book entry. Owner is the handle of the user it
// was created under; it is set server-side and never taken from the client.
// LegacyPassword is an unused field the old client still sends and expects
// back; it is stored verbatim and never interpreted.
type Contact struct {
	ID             string    `json:"_id"`
	UserID         string    `json:"-"`
	Surname        string    `json:"apellido"`
	GivenName      string    `json:"nombre"`
	Company        string    `json:"empresa,omitempty"`
	Address        string    `json:"domicilio,omitempty"`
	Phone          string    `json:"telefonos,omitempty"`
	Email          string    `json:"email"`
	Owner          string    `json:"propietario"`
	Public         bool      `json:"esPublico"`
	Visible        bool      `json:"esVisible"`
	LegacyPassword string    `json:"contrasenia,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ContactPatch carries a partial update: nil means "leave as is". There is
// deliberately no Owner field here, the stored owner always wins.
type ContactPatch struct {
	Surname        *string `json:"apellido"`
	GivenName      *string `json:"nombre"`
	Company        *string `json:"empresa"`
	Address        *string `json:"domicilio"`
	Phone          *string `json:"telefonos"`
	Email          *string `json:"email"`
	Public         *bool   `json:"esPublico"`
	Visible        *bool   `json:"esVisible"`
	LegacyPassword *string `json:"contrasenia"`
}

// Apply merges the patch over c, field by field.
func (p ContactPatch) Apply(c *Contact) {
	if p.Surname != nil {
		c.Surname = *p.Surname
	}
	if p.GivenName != nil {
		c.GivenName = *p.GivenName
	}
	if p.Company != nil {
		c.Company = *p.Company
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Public != nil {
		c.Public = *p.Public
	}
	if p.Visible != nil {
		c.Visible = *p.Visible
	}
	if p.LegacyPassword != nil {
		c.LegacyPassword = *p.LegacyPassword
	}
}

// VisibleTo is the access decision for reads: a viewer sees a contact when
// it is their own and locally visible, or when it is public and visible.
func (c Contact) VisibleTo(viewerHandle string) bool {
	if !c.Visible {
		return false
	}
	return c.Owner == viewerHandle || c.Public
}
