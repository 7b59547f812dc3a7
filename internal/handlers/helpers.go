package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"microblog/internal/web"
)

// flashRedirect sends the actor to path with a message in the query
// string. Failures are terminal for the request, never for the process.
func flashRedirect(w http.ResponseWriter, r *http.Request, path, kind, message string) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	http.Redirect(w, r, path+sep+kind+"="+url.QueryEscape(message), http.StatusSeeOther)
}

func renderError(w http.ResponseWriter, r *http.Request, code int, title, message string) {
	w.WriteHeader(code)
	web.Render(w, r, "error.html", web.Page{Title: title, Data: message})
}

// safeNext only honors relative return paths, so login redirects can
// never send the actor off-site.
func safeNext(raw string) string {
	if raw == "" {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host != "" || u.Scheme != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return u.RequestURI()
}
