package router

import (
	"net/http"

	authHandler "coedit/internal/auth"
	authService "coedit/internal/auth/service"
	docHandler "coedit/internal/document"
	docService "coedit/internal/document/service"
	"coedit/middleware"
	"coedit/pkg/response"
	"coedit/socket"
)

type Options struct {
	CORSOrigin    string
	WSRequireAuth bool
}

// Setup wires the REST API and the realtime endpoint. Every document route
// sits behind the auth middleware, and the owner id handlers use comes from
// the verified token only.
func Setup(auth *authService.AuthService, docs *docService.DocumentService, hub *socket.Hub, opts Options) http.Handler {
	mux := http.NewServeMux()
	requireAuth := middleware.AuthMiddleware(auth)

	// WebSocket
	var wsHandler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(hub, w, r)
	})
	if opts.WSRequireAuth {
		wsHandler = requireAuth(wsHandler)
	}
	mux.Handle("GET /ws", wsHandler)

	// REST API
	ah := authHandler.NewAuthHandler(auth)
	mux.HandleFunc("POST /api/auth/register", ah.Register)
	mux.HandleFunc("POST /api/auth/login", ah.Login)

	dh := docHandler.NewDocumentHandler(docs)
	mux.Handle("GET /api/documents/list", requireAuth(http.HandlerFunc(dh.ListDocuments)))
	mux.Handle("POST /api/documents/create", requireAuth(http.HandlerFunc(dh.CreateDocument)))
	mux.Handle("GET /api/documents/{id}", requireAuth(http.HandlerFunc(dh.GetDocument)))
	mux.Handle("PATCH /api/documents/{id}", requireAuth(http.HandlerFunc(dh.UpdateContent)))
	mux.Handle("PATCH /api/documents/{id}/rename", requireAuth(http.HandlerFunc(dh.RenameDocument)))
	mux.Handle("DELETE /api/documents/{id}", requireAuth(http.HandlerFunc(dh.DeleteDocument)))

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"message": "Backend server is running!"})
	})

	return middleware.CORSMiddleware(opts.CORSOrigin)(mux)
}
