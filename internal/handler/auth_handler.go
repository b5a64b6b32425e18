package handler

import (
	"errors"
	"net/http"
	"regexp"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"chitty/internal/app/db"
	"chitty/internal/pkg/errs"
	"chitty/internal/pkg/logx"
	"chitty/internal/pkg/req"
	"chitty/internal/pkg/resp"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{2,32}$`)

type CredentialsInput struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// validCredentials checks shape only, not existence.
func validCredentials(input CredentialsInput) bool {
	if !nameRegex.MatchString(input.Name) {
		return false
	}
	passwordLen := utf8.RuneCountInString(input.Password)
	return passwordLen >= 6 && passwordLen <= 64
}

// HandleRegister creates a new account and issues a relay token for it.
// A taken name answers 409.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CredentialsInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !validCredentials(input) {
			resp.RespondError(w, r, errs.NewError(errs.ReasonBadRequest, "invalid name or password"))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			logx.Error(err, "register: failed to hash password")
			resp.RespondError(w, r, errs.NewError(errs.ReasonInternal))
			return
		}

		if _, err := deps.Accounts.Create(r.Context(), input.Name, string(hashedPassword)); err != nil {
			if errors.Is(err, db.ErrNameTaken) {
				logx.Warn("register: name already exists", "name", input.Name)
				resp.RespondError(w, r, errs.NewError(errs.ReasonConflict, "name already taken"))
				return
			}

			logx.Error(err, "register: failed to create account")
			resp.RespondError(w, r, errs.NewError(errs.ReasonInternal))
			return
		}

		tokenString, err := deps.Gate.Issue(input.Name)
		if err != nil {
			logx.Error(err, "register: failed to issue token", "name", input.Name)
			resp.RespondError(w, r, errs.NewError(errs.ReasonInternal))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"token": tokenString})
	}
}

// HandleLogin verifies credentials and issues a fresh relay token.
// Unknown name and bad password are indistinguishable to the caller.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CredentialsInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		account, err := deps.Accounts.GetByName(r.Context(), input.Name)
		if err != nil {
			if !errors.Is(err, db.ErrAccountNotFound) {
				logx.Error(err, "login: account fetch failed", "name", input.Name)
				resp.RespondError(w, r, errs.NewError(errs.ReasonInternal))
				return
			}

			logx.Warn("login: unknown name", "name", input.Name)
			resp.RespondError(w, r, errs.NewError(errs.ReasonNotFound, "unknown name or wrong password"))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "name", input.Name)
			resp.RespondError(w, r, errs.NewError(errs.ReasonNotFound, "unknown name or wrong password"))
			return
		}

		tokenString, err := deps.Gate.Issue(account.Name)
		if err != nil {
			logx.Error(err, "login: failed to issue token", "name", input.Name)
			resp.RespondError(w, r, errs.NewError(errs.ReasonInternal))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"token": tokenString})
	}
}

// HandleNameProbe reports whether a name is still available. A taken
// name answers 400, a free one 200.
func HandleNameProbe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name == "" {
			resp.RespondError(w, r, errs.NewError(errs.ReasonBadRequest))
			return
		}

		exists, err := deps.Accounts.Exists(r.Context(), name)
		if err != nil {
			logx.Error(err, "name probe: lookup failed", "name", name)
			resp.RespondError(w, r, errs.NewError(errs.ReasonInternal))
			return
		}

		if exists {
			resp.RespondError(w, r, errs.NewError(errs.ReasonBadRequest, "name already taken"))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"name": name, "available": true})
	}
}
