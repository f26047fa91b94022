package server

import (
	"crypto/tls"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pandyaved98/dotkonekt/handlers"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Upload   *handlers.UploadHandler
	Blogs    *handlers.BlogHandler
	Products *handlers.ProductsHandler
	Search   *handlers.SearchHandler
}

func SetupRoutes(h Handlers, authMW *handlers.AuthMiddleware) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/auth/register", h.Auth.Register).Methods("POST")
	r.HandleFunc("/auth/login", h.Auth.Login).Methods("POST")
	r.HandleFunc("/auth/logout", authMW.TokenRequired(h.Auth.Logout)).Methods("POST")

	r.HandleFunc("/rag/upload", authMW.TokenRequired(h.Upload.Upload)).Methods("POST")
	r.HandleFunc("/rag/ingest-url", authMW.TokenRequired(h.Upload.IngestURL)).Methods("POST")
	r.HandleFunc("/rag/search", authMW.TokenRequired(h.Search.Search)).Methods("GET")

	r.HandleFunc("/blogs", authMW.TokenRequired(h.Blogs.Create)).Methods("POST")
	r.HandleFunc("/blogs/{id}", authMW.TokenRequired(h.Blogs.Get)).Methods("GET")
	r.HandleFunc("/products", authMW.TokenRequired(h.Products.Recommend)).Methods("GET")

	return r
}

// ServeProduction builds the server when we operate in a production environment.
func ServeProduction(n *negroni.Negroni, domains []string, certCacheDir string) {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(certCacheDir),
	}

	// Listen for HTTP requests on port 80 in a new goroutine. Use
	// autocertManager.HTTPHandler(nil) as the handler. This will send ACME
	// "http-01" challenge responses as necessary, and 302 redirect all other
	// requests to HTTPS.
	go func() {
		srv := &http.Server{
			Addr:         ":80",
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	tlsConfig := &tls.Config{
		GetCertificate:           autocertManager.GetCertificate,
		PreferServerCipherSuites: true,
		CurvePreferences:         []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:         ":443",
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	err := srv.ListenAndServeTLS("", "") // Key and cert provided automatically by autocert.
	log.Fatal(err)
}

// ServeDevelopment starts the server when we operate in a dev environment.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
