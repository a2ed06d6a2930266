package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vocab/internal/apperr"
	"github.com/starford/vocab/internal/session"
)

// Handler holds API route handlers.
type Handler struct {
	svc *session.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *session.Service) *Handler {
	return &Handler{svc: svc}
}

// position parses the 1-based {pos} URL parameter.
func position(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "pos")
	pos, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: position %q is not a number", apperr.ErrInvalidArgument, raw)
	}
	return pos, nil
}

// pathParam returns a URL parameter, accepting percent-encoded values.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Status handles GET /status.
//
//	@Summary		Describe the working list
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	Status
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status(r.Context()))
}

// ListTopics handles GET /topics.
//
//	@Summary		List topics with their positions
//	@Tags			topics
//	@Produce		json
//	@Success		200	{object}	TopicListResponse
//	@Security		BearerAuth
//	@Router			/topics [get]
func (h *Handler) ListTopics(w http.ResponseWriter, r *http.Request) {
	topics := h.svc.ListTopics(r.Context())
	writeJSON(w, http.StatusOK, TopicListResponse{Topics: topics, Total: len(topics)})
}

// InsertTopic handles POST /topics.
//
//	@Summary		Insert a topic before or after a position
//	@Tags			topics
//	@Accept			json
//	@Produce		json
//	@Param			body	body		InsertTopicRequest	true	"Topic to insert"
//	@Success		201		{object}	models.TopicDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/topics [post]
func (h *Handler) InsertTopic(w http.ResponseWriter, r *http.Request) {
	var req InsertTopicRequest
	if !decodeBody(w, r, &req) {
		return
	}
	insert := h.svc.InsertTopicBefore
	if req.Placement == PlaceAfter {
		insert = h.svc.InsertTopicAfter
	}
	topic, err := insert(r.Context(), req.Position, req.Name, req.Words)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

// GetTopic handles GET /topics/{pos}.
//
//	@Summary		List the words of a topic
//	@Tags			topics
//	@Produce		json
//	@Param			pos	path		int	true	"1-based topic position"
//	@Success		200	{object}	models.TopicDetail
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/topics/{pos} [get]
func (h *Handler) GetTopic(w http.ResponseWriter, r *http.Request) {
	pos, err := position(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	topic, err := h.svc.ListWords(r.Context(), pos)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

// RemoveTopic handles DELETE /topics/{pos}.
//
//	@Summary		Remove a topic
//	@Tags			topics
//	@Produce		json
//	@Param			pos	path		int	true	"1-based topic position"
//	@Success		200	{object}	models.TopicDetail
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/topics/{pos} [delete]
func (h *Handler) RemoveTopic(w http.ResponseWriter, r *http.Request) {
	pos, err := position(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	topic, err := h.svc.RemoveTopic(r.Context(), pos)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

// AddWord handles POST /topics/{pos}/words.
//
//	@Summary		Add a word to a topic
//	@Tags			words
//	@Accept			json
//	@Produce		json
//	@Param			pos		path		int			true	"1-based topic position"
//	@Param			body	body		WordRequest	true	"Word to add"
//	@Success		201		{object}	models.TopicDetail
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/topics/{pos}/words [post]
func (h *Handler) AddWord(w http.ResponseWriter, r *http.Request) {
	pos, err := position(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req WordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.AddWord(r.Context(), pos, req.Word); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeTopic(w, r, http.StatusCreated, pos)
}

// ChangeWord handles PUT /topics/{pos}/words/{word}.
//
//	@Summary		Rename a word inside a topic
//	@Tags			words
//	@Accept			json
//	@Produce		json
//	@Param			pos		path		int			true	"1-based topic position"
//	@Param			word	path		string		true	"Word to replace"
//	@Param			body	body		WordRequest	true	"Replacement word"
//	@Success		200		{object}	models.TopicDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/topics/{pos}/words/{word} [put]
func (h *Handler) ChangeWord(w http.ResponseWriter, r *http.Request) {
	pos, err := position(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req WordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.ChangeWord(r.Context(), pos, pathParam(r, "word"), req.Word); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeTopic(w, r, http.StatusOK, pos)
}

// RemoveWord handles DELETE /topics/{pos}/words/{word}.
//
//	@Summary		Remove a word from a topic
//	@Tags			words
//	@Param			pos		path	int		true	"1-based topic position"
//	@Param			word	path	string	true	"Word to remove"
//	@Success		204		"Word removed"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/topics/{pos}/words/{word} [delete]
func (h *Handler) RemoveWord(w http.ResponseWriter, r *http.Request) {
	pos, err := position(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.RemoveWord(r.Context(), pos, pathParam(r, "word")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchWord handles GET /search.
//
//	@Summary		Find the topics that list a word
//	@Tags			search
//	@Produce		json
//	@Param			word	query		string	true	"Word to look for (case-insensitive)"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) SearchWord(w http.ResponseWriter, r *http.Request) {
	word := r.URL.Query().Get("word")
	hits, err := h.svc.SearchWord(r.Context(), word)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Word: word, Hits: hits})
}

// WordsStartingWith handles GET /prefix/{letter}.
//
//	@Summary		List every word starting with a letter, sorted
//	@Tags			search
//	@Produce		json
//	@Param			letter	path		string	true	"Single letter"
//	@Success		200		{object}	PrefixResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/prefix/{letter} [get]
func (h *Handler) WordsStartingWith(w http.ResponseWriter, r *http.Request) {
	letter := pathParam(r, "letter")
	words, err := h.svc.WordsStartingWith(r.Context(), letter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PrefixResponse{Letter: letter, Words: words})
}

func (h *Handler) writeTopic(w http.ResponseWriter, r *http.Request, status, pos int) {
	topic, err := h.svc.ListWords(r.Context(), pos)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, topic)
}
