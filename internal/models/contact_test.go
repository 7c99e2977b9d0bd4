package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContact_VisibleTo(t *testing.T) {
	cases := []struct {
		name    string
		contact Contact
		viewer  string
		want    bool
	}{
		{"own visible private", Contact{Owner: "alice", Visible: true}, "alice", true},
		{"own hidden", Contact{Owner: "alice", Visible: false}, "alice", false},
		{"own hidden even if public", Contact{Owner: "alice", Public: true, Visible: false}, "alice", false},
		{"foreign private", Contact{Owner: "alice", Visible: true}, "bob", false},
		{"foreign public visible", Contact{Owner: "alice", Public: true, Visible: true}, "bob", true},
		{"foreign public hidden", Contact{Owner: "alice", Public: true, Visible: false}, "bob", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.contact.VisibleTo(tc.viewer))
		})
	}
}

func TestContactPatch_Apply_ShallowMerge(t *testing.T) {
	c := Contact{
		Surname:   "Smith",
		GivenName: "John",
		Company:   "Acme",
		Email:     "j@x.com",
		Owner:     "alice",
		Public:    false,
		Visible:   true,
	}

	newCompany := "Initech"
	pub := true
	ContactPatch{Company: &newCompany, Public: &pub}.Apply(&c)

	require.Equal(t, "Initech", c.Company)
	require.True(t, c.Public)
	// untouched fields survive
	require.Equal(t, "Smith", c.Surname)
	require.Equal(t, "j@x.com", c.Email)
	require.Equal(t, "alice", c.Owner)
	require.True(t, c.Visible)
}
