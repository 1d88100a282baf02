package handler

import (
	"errors"
	"net/http"
	"strconv"

	"coedit/internal/document/model"
	"coedit/internal/document/service"
	"coedit/middleware"
	"coedit/pkg/apperror"
	"coedit/pkg/logger"
	"coedit/pkg/request"
	"coedit/pkg/response"
)

type DocumentHandler struct {
	Service *service.DocumentService
}

func NewDocumentHandler(service *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{Service: service}
}

func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	docs, err := h.Service.ListDocuments(claims.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req model.CreateDocRequest
	// A missing or malformed body just means no title.
	if err := request.DecodeJSON(w, r, &req); request.TooLarge(err) {
		writeDecodeError(w, err)
		return
	}

	doc, err := h.Service.CreateDocument(claims.UserID, req.Title)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, ok := documentID(w, r)
	if !ok {
		return
	}
	doc, err := h.Service.GetDocument(id, claims.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, ok := documentID(w, r)
	if !ok {
		return
	}
	var req model.UpdateContentRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	doc, err := h.Service.UpdateContent(id, claims.UserID, req.Content)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) RenameDocument(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, ok := documentID(w, r)
	if !ok {
		return
	}
	var req model.RenameRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	doc, err := h.Service.Rename(id, claims.UserID, req.Title)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, ok := documentID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteDocument(id, claims.UserID); err != nil {
		h.writeError(w, err)
		return
	}
	logger.Sugar.Infof("User %d deleted document %d", claims.UserID, id)
	response.JSON(w, http.StatusOK, model.DeleteResponse{Message: "Document deleted", ID: r.PathValue("id")})
}

// documentID parses the {id} path segment. An id that cannot name any document
// is answered like any other missing document.
func documentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(w, http.StatusNotFound, "error", "Document not found")
		return 0, false
	}
	return id, true
}

func writeDecodeError(w http.ResponseWriter, err error) {
	if request.TooLarge(err) {
		response.Error(w, http.StatusRequestEntityTooLarge, "error", "Request body too large")
		return
	}
	response.Error(w, http.StatusBadRequest, "error", "Invalid request body")
}

func (h *DocumentHandler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, apperror.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "error", "Document not found")
		return
	}
	logger.Sugar.Errorf("Handler: document request failed: %v", err)
	response.Error(w, apperror.StatusCode(err), "error", response.InternalMessage)
}
