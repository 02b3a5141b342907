// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/medsync/internal/app"
	"github.com/MKhiriev/medsync/internal/utils"
)

// CheckHTTPMethod returns the router's MethodNotAllowed handler.
//
// A path registered for other methods answers 405 {"error":"Method not
// allowed"}; a path that is not registered at all answers 404. Only exact
// route patterns are matched. OPTIONS never reaches this handler because
// the CORS middleware answers preflights first.
func CheckHTTPMethod(router *chi.Mux) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, route := range router.Routes() {
			if route.Pattern != r.URL.Path {
				continue
			}
			if _, ok := route.Handlers[r.Method]; ok {
				router.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Allow", allowedMethods(route))
			utils.WriteError(w, app.MsgMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}

		utils.WriteError(w, app.MsgNotFound, http.StatusNotFound)
	}
}

func allowedMethods(route chi.Route) string {
	var allow string
	for _, m := range []string{http.MethodGet, http.MethodPost} {
		if _, ok := route.Handlers[m]; !ok {
			continue
		}
		if allow != "" {
			allow += ", "
		}
		allow += m
	}
	return allow
}
