package httpapi

import (
	"encoding/json"
	"net/http"

	"signalsource-engine/internal/secrets"
)

type SecretsHandler struct{}

type setTokenReq struct {
	Token string `json:"token"`
}

func (h SecretsHandler) setToken(account string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setTokenReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, http.StatusBadRequest, "bad_json", "invalid json")
			return
		}
		if err := secrets.SetToken(account, req.Token); err != nil {
			WriteError(w, r, http.StatusBadRequest, "keyring_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h SecretsHandler) deleteToken(account string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := secrets.DeleteToken(account); err != nil {
			WriteError(w, r, http.StatusBadRequest, "keyring_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h SecretsHandler) SetTwitterToken(w http.ResponseWriter, r *http.Request) {
	h.setToken(secrets.TwitterAccount)(w, r)
}

func (h SecretsHandler) DeleteTwitterToken(w http.ResponseWriter, r *http.Request) {
	h.deleteToken(secrets.TwitterAccount)(w, r)
}

func (h SecretsHandler) SetGithubToken(w http.ResponseWriter, r *http.Request) {
	h.setToken(secrets.GithubAccount)(w, r)
}

func (h SecretsHandler) DeleteGithubToken(w http.ResponseWriter, r *http.Request) {
	h.deleteToken(secrets.GithubAccount)(w, r)
}
