package controllers

import (
	"net/http"

	"github.com/refriproject/refri-backend/api/middleware"
	"github.com/refriproject/refri-backend/api/responses"
)

// PublicPing answers without authentication.
func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"message": "pong"})
	}
}

// PrivatePing echoes the authenticated identity, useful for token debugging.
func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		responses.WriteSuccess(w, map[string]string{
			"message":  "pong",
			"userId":   middleware.UserIDFromContext(ctx),
			"username": middleware.UsernameFromContext(ctx),
		})
	}
}
