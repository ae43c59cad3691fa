package api

import (
	"context"
	"net/http"

	"shopfront/internal/model"
)

// Credentials is a username/password pair for Login.
type Credentials struct {
	Username string
	Password string
}

// Registration is the sign-up form. PasswordConfirm must match
// Password; the backend enforces it too, but checking locally gives a
// better error.
type Registration struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	Role            model.Role
	ShopName        string
	ShopDesc        string
	FirstName       string
	LastName        string
}

// Login exchanges credentials for a token pair, stores both tokens and
// the returned profile in the session, and returns the profile. A nil
// user in the response is tolerated; the profile can be fetched later.
func (c *Client) Login(ctx context.Context, creds Credentials) (*model.User, error) {
	if creds.Username == "" {
		return nil, model.NewValidationError("username", "must not be empty")
	}
	if creds.Password == "" {
		return nil, model.NewValidationError("password", "must not be empty")
	}

	var out loginWire
	err := c.sendJSON(ctx, http.MethodPost, "/api/token/", loginRequestWire{
		Username: creds.Username,
		Password: creds.Password,
	}, &out)
	if err != nil {
		return nil, err
	}

	if err := c.tokens.SetTokens(out.Access, out.Refresh); err != nil {
		return nil, err
	}
	user := userFromWire(out.User)
	if user != nil {
		if err := c.tokens.SetUser(user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// Register creates an account and logs the new user in. Backends that
// return a legacy single "token" instead of an access/refresh pair get
// it stored as the access token with no refresh; the first 401 then
// clears the session instead of refreshing.
func (c *Client) Register(ctx context.Context, reg Registration) (*model.User, error) {
	if reg.Username == "" {
		return nil, model.NewValidationError("username", "must not be empty")
	}
	if reg.Email == "" {
		return nil, model.NewValidationError("email", "must not be empty")
	}
	if reg.Password == "" {
		return nil, model.NewValidationError("password", "must not be empty")
	}
	if reg.Password != reg.PasswordConfirm {
		return nil, model.NewValidationError("password_confirm", "passwords do not match")
	}

	var out registerWire
	err := c.sendJSON(ctx, http.MethodPost, "/api/auth/register/", registerRequestWire{
		Username:        reg.Username,
		Email:           reg.Email,
		Password:        reg.Password,
		PasswordConfirm: reg.PasswordConfirm,
		Role:            string(reg.Role),
		ShopName:        reg.ShopName,
		ShopDesc:        reg.ShopDesc,
		FirstName:       reg.FirstName,
		LastName:        reg.LastName,
	}, &out)
	if err != nil {
		return nil, err
	}

	access, refresh := out.Access, out.Refresh
	if access == "" {
		access = out.Token
	}
	if err := c.tokens.SetTokens(access, refresh); err != nil {
		return nil, err
	}
	user := userFromWire(out.User)
	if user != nil {
		if err := c.tokens.SetUser(user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// Logout discards all stored credentials. The backend holds no session
// state for this client, so this is purely local.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// Profile fetches the authenticated user's profile and refreshes the
// cached copy.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var out userWire
	if err := c.getJSON(ctx, "/api/auth/profile/", nil, &out); err != nil {
		return nil, err
	}
	user := userFromWire(&out)
	if err := c.tokens.SetUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ProfileUpdate holds the editable profile fields. Nil pointers are
// omitted from the PATCH body and left unchanged server-side.
type ProfileUpdate struct {
	Email     *string
	ShopName  *string
	ShopDesc  *string
	FirstName *string
	LastName  *string
}

// UpdateProfile PATCHes the changed fields and returns (and caches)
// the updated profile.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*model.User, error) {
	body := map[string]string{}
	if upd.Email != nil {
		body["email"] = *upd.Email
	}
	if upd.ShopName != nil {
		body["shopname"] = *upd.ShopName
	}
	if upd.ShopDesc != nil {
		body["shopdes"] = *upd.ShopDesc
	}
	if upd.FirstName != nil {
		body["first_name"] = *upd.FirstName
	}
	if upd.LastName != nil {
		body["last_name"] = *upd.LastName
	}
	if len(body) == 0 {
		return nil, model.NewValidationError("profile", "no fields to update")
	}

	var out userWire
	if err := c.sendJSON(ctx, http.MethodPatch, "/api/auth/profile/", body, &out); err != nil {
		return nil, err
	}
	user := userFromWire(&out)
	if err := c.tokens.SetUser(user); err != nil {
		return nil, err
	}
	return user, nil
}
