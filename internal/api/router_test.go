package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/davquintana/contactbook-backend/internal/api"
	"github.com/davquintana/contactbook-backend/internal/auth"
	"github.com/davquintana/contactbook-backend/internal/config"
	"github.com/davquintana/contactbook-backend/internal/repository/memory"
	"github.com/davquintana/contactbook-backend/internal/services"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{AdminEmail: "root@x.com"}
	repos := memory.NewRepositories(memory.NewStore())
	tm := auth.NewTokenManager("test-access", "test-refresh", time.Minute, time.Hour)
	accounts := services.NewAccountService(repos.Users, repos.AuditLogs, nil, cfg)
	contacts := services.NewContactService(repos.Contacts, repos.Users, repos.AuditLogs, nil)
	return api.NewRouter(cfg, tm, accounts, contacts)
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

type session struct {
	id    string
	token string
}

func signUp(t *testing.T, h http.Handler, usuario, correo, pw string) session {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/register", "", map[string]string{
		"usuario": usuario, "correo": correo, "contrasenia": pw,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/login", "", map[string]string{
		"usuarioCorreo": usuario, "contrasenia": pw,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	return session{id: body["_id"].(string), token: body["access_token"].(string)}
}

func TestRegister_DuplicateIs409(t *testing.T) {
	h := newTestRouter(t)
	signUp(t, h, "alice", "alice@x.com", "pw1")

	rec := do(t, h, http.MethodPost, "/register", "", map[string]string{
		"usuario": "alice", "correo": "other@x.com", "contrasenia": "pw",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_MissingFieldsIs400(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/register", "", map[string]string{"usuario": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_BadCredentialsIs401(t *testing.T) {
	h := newTestRouter(t)
	signUp(t, h, "alice", "alice@x.com", "pw1")

	rec := do(t, h, http.MethodPost, "/login", "", map[string]string{
		"usuarioCorreo": "alice", "contrasenia": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_ByEmailToo(t *testing.T) {
	h := newTestRouter(t)
	signUp(t, h, "alice", "alice@x.com", "pw1")

	rec := do(t, h, http.MethodPost, "/login", "", map[string]string{
		"usuarioCorreo": "alice@x.com", "contrasenia": "pw1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice", decode(t, rec)["usuario"])
}

func TestRefresh_IssuesNewPair(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/register", "", map[string]string{
		"usuario": "alice", "correo": "alice@x.com", "contrasenia": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, h, http.MethodPost, "/login", "", map[string]string{
		"usuarioCorreo": "alice", "contrasenia": "pw",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	refresh := decode(t, rec)["refresh_token"].(string)

	rec = do(t, h, http.MethodPost, "/refresh", "", map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, decode(t, rec)["access_token"])

	// an access token is not a refresh token
	access := decode(t, rec)["access_token"].(string)
	rec = do(t, h, http.MethodPost, "/refresh", "", map[string]string{"refresh_token": access})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContactRoutes_RequireToken(t *testing.T) {
	h := newTestRouter(t)
	alice := signUp(t, h, "alice", "alice@x.com", "pw1")

	rec := do(t, h, http.MethodGet, "/user/"+alice.id+"/contactos", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContactRoutes_ForeignIdentityIs403(t *testing.T) {
	h := newTestRouter(t)
	alice := signUp(t, h, "alice", "alice@x.com", "pw1")
	bob := signUp(t, h, "bob", "bob@x.com", "pw2")

	rec := do(t, h, http.MethodGet, "/user/"+alice.id+"/contactos", bob.token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAddContact_DefaultsAndForcedOwner(t *testing.T) {
	h := newTestRouter(t)
	alice := signUp(t, h, "alice", "alice@x.com", "pw1")

	rec := do(t, h, http.MethodPost, "/user/"+alice.id+"/contact", alice.token, map[string]any{
		"apellido":    "Smith",
		"nombre":      "John",
		"email":       "j@x.com",
		"propietario": "mallory", // must be overridden server-side
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "alice", body["propietario"])
	require.Equal(t, false, body["esPublico"]) // schema default
	require.Equal(t, true, body["esVisible"])  // schema default
}

func TestAddContact_MissingRequiredIs400(t *testing.T) {
	h := newTestRouter(t)
	alice := signUp(t, h, "alice", "alice@x.com", "pw1")

	rec := do(t, h, http.MethodPost, "/user/"+alice.id+"/contact", alice.token, map[string]any{
		"nombre": "John",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteContact_MissingIdIsStill200(t *testing.T) {
	h := newTestRouter(t)
	alice := signUp(t, h, "alice", "alice@x.com", "pw1")

	rec := do(t, h, http.MethodDelete, "/user/"+alice.id+"/contact/00000000-0000-0000-0000-000000000000", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutes_Gated(t *testing.T) {
	h := newTestRouter(t)
	alice := signUp(t, h, "alice", "alice@x.com", "pw1")
	admin := signUp(t, h, "root", "root@x.com", "pw-admin")

	rec := do(t, h, http.MethodGet, "/contactos", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/contactos", alice.token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodGet, "/contactos", admin.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminSetPublic_UnknownContactIs404(t *testing.T) {
	h := newTestRouter(t)
	admin := signUp(t, h, "root", "root@x.com", "pw-admin")

	rec := do(t, h, http.MethodPut, "/contacto/00000000-0000-0000-0000-000000000000", admin.token,
		map[string]any{"esPublico": true})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// End-to-end walk of the sharing flow: alice publishes a contact, bob sees
// it, alice withdraws it, bob no longer does.
func TestEndToEnd_PublicContactSharing(t *testing.T) {
	h := newTestRouter(t)
	alice := signUp(t, h, "alice", "alice@x.com", "pw1")

	rec := do(t, h, http.MethodPost, "/user/"+alice.id+"/contact", alice.token, map[string]any{
		"apellido":  "Smith",
		"nombre":    "John",
		"email":     "j@x.com",
		"esPublico": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	contactID := decode(t, rec)["_id"].(string)

	bob := signUp(t, h, "bob", "bob@x.com", "pw2")

	rec = do(t, h, http.MethodGet, "/user/"+bob.id+"/contactos", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, listIDs(decodeList(t, rec)), contactID)

	// alice flips it private through her own update path
	rec = do(t, h, http.MethodPut, "/user/"+alice.id+"/contact/"+contactID, alice.token,
		map[string]any{"esPublico": false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/user/"+bob.id+"/contactos", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, listIDs(decodeList(t, rec)), contactID)

	// alice still sees her own, exactly once
	rec = do(t, h, http.MethodGet, "/user/"+alice.id+"/contactos", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ids := listIDs(decodeList(t, rec))
	require.Equal(t, []string{contactID}, ids)
}

func TestUpdateContact_CannotChangeOwner(t *testing.T) {
	h := newTestRouter(t)
	alice := signUp(t, h, "alice", "alice@x.com", "pw1")

	rec := do(t, h, http.MethodPost, "/user/"+alice.id+"/contact", alice.token, map[string]any{
		"apellido": "Smith", "nombre": "John", "email": "j@x.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	contactID := decode(t, rec)["_id"].(string)

	rec = do(t, h, http.MethodPut, "/user/"+alice.id+"/contact/"+contactID, alice.token,
		map[string]any{"propietario": "mallory", "empresa": "Initech"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "alice", body["propietario"])
	require.Equal(t, "Initech", body["empresa"])
}

func listIDs(list []map[string]any) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c["_id"].(string))
	}
	return out
}
