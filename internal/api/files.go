package api

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 10 << 20 // 10 MB

// Load handles POST /load.
//
//	@Summary		Replace the working list with a vault file
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoadRequest	true	"File to load"
//	@Success		200		{object}	FileResult
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/load [post]
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.svc.Load(r.Context(), req.Path)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Save handles POST /save.
//
//	@Summary		Write the working list to a vault file
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			If-Match	header		string		false	"SHA-256 checksum the file on disk must still have"
//	@Param			body		body		SaveRequest	false	"Target file; defaults to the loaded one"
//	@Success		200			{object}	FileResult
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/save [post]
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	res, err := h.svc.Save(r.Context(), req.Path, ifMatch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("ETag", `"`+res.Checksum+`"`)
	writeJSON(w, http.StatusOK, res)
}

// ListFiles handles GET /files.
//
//	@Summary		List vocabulary files in the vault
//	@Tags			files
//	@Produce		json
//	@Success		200	{object}	FileListResponse
//	@Security		BearerAuth
//	@Router			/files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.Files(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FileListResponse{Files: files})
}

// Import handles POST /files (multipart/form-data, field "file"). The
// optional form field "path" overrides the uploaded file name.
//
//	@Summary		Import a vocabulary file into the vault
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Vocabulary file"
//	@Param			path	formData	string	false	"Target path in the vault"
//	@Success		201		{object}	models.FileMetadata
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}

	target := r.FormValue("path")
	if target == "" {
		target = header.Filename
	}
	meta, err := h.svc.Import(r.Context(), target, content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, meta)
}

// MoveFile handles POST /files/move.
//
//	@Summary		Rename a vault file
//	@Tags			files
//	@Accept			json
//	@Param			body	body	MoveFileRequest	true	"Source and target paths"
//	@Success		204		"File moved"
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files/move [post]
func (h *Handler) MoveFile(w http.ResponseWriter, r *http.Request) {
	var req MoveFileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.MoveFile(r.Context(), req.From, req.To); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteFile handles DELETE /files/*.
//
//	@Summary		Delete a vault file
//	@Tags			files
//	@Param			path	path	string	true	"File path"
//	@Success		204		"File deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files/{path} [delete]
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteFile(r.Context(), filePath(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchVault handles GET /vault/search.
//
//	@Summary		Full-text search across every vault file
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	VaultSearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/vault/search [get]
func (h *Handler) SearchVault(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.SearchVault(r.Context(), q, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VaultSearchResponse{Results: results})
}

// filePath extracts the file path from the URL wildcard. Supports encoded
// slashes (e.g. lists%2Fanimals.txt).
func filePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
