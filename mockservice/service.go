// Package mockservice is an in-memory implementation of the parts of the social-network API that the
// contract tests exercise. It lets the harness be run and tested without a real deployment. It makes
// no attempt to be a faithful copy of the service: it only honors the request/response contract.
package mockservice

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ryffproject/api-contract-tests/servicedef"
)

const (
	sessionCookie  = "PHPSESSID"
	maxUploadBytes = 32 << 20
)

type user struct {
	servicedef.User
	password string
}

type post struct {
	servicedef.Post
	voters map[int]bool
}

type handlerFunc func(r *http.Request, current *user) (map[string]interface{}, error)

// errorResponse is a failure the service reports to the client as {"error": message}.
type errorResponse string

func (e errorResponse) Error() string { return string(e) }

// Service holds all state in memory. It is safe for concurrent use.
type Service struct {
	mediaRoot     string
	logger        *slog.Logger
	router        *mux.Router
	handlers      map[string]handlerFunc
	public        map[string]bool
	lock          sync.Mutex
	users         map[int]*user
	posts         map[int]*post
	sessions      map[string]int
	follows       map[[2]int]bool
	conversations []servicedef.Conversation
	apnsTokens    map[int][]string
	lastID        int
}

// New creates a service. Uploaded files are written beneath mediaRoot, in the same subdirectories
// the real service uses; if mediaRoot is empty, uploads are discarded.
func New(mediaRoot string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{
		mediaRoot: mediaRoot,
		logger:    logger,
		router:    mux.NewRouter(),
	}
	s.Reset()
	s.handlers = map[string]handlerFunc{
		servicedef.EndpointCreateUser:          s.createUser,
		servicedef.EndpointDeleteUser:          s.deleteUser,
		servicedef.EndpointGetUser:             s.getUser,
		servicedef.EndpointLogin:               s.login,
		servicedef.EndpointLogout:              s.logout,
		servicedef.EndpointAddPost:             s.addPost,
		servicedef.EndpointGetPost:             s.getPost,
		servicedef.EndpointDeletePost:          s.deletePost,
		servicedef.EndpointAddUpvote:           s.addUpvote,
		servicedef.EndpointDeleteUpvote:        s.deleteUpvote,
		servicedef.EndpointAddFollow:           s.addFollow,
		servicedef.EndpointDeleteFollow:        s.deleteFollow,
		servicedef.EndpointAddConversation:     s.addConversation,
		servicedef.EndpointAddAPNsToken:        s.addAPNsToken,
		servicedef.EndpointSearchPostsTrending: s.searchPostsTrending,
	}
	s.public = map[string]bool{
		servicedef.EndpointCreateUser: true,
		servicedef.EndpointLogin:      true,
	}
	s.router.HandleFunc("/", s.serveStatus).Methods(http.MethodGet, http.MethodHead)
	s.router.HandleFunc("/{endpoint}", s.serveEndpoint).Methods(http.MethodPost)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "No such endpoint."})
	})
	return s
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Reset discards all users, posts and sessions, as uninstalling the real schema would.
func (s *Service) Reset() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.users = make(map[int]*user)
	s.posts = make(map[int]*post)
	s.sessions = make(map[string]int)
	s.follows = make(map[[2]int]bool)
	s.conversations = nil
	s.apnsTokens = make(map[int][]string)
}

// UserCount returns the number of users currently stored.
func (s *Service) UserCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.users)
}

// APNsTokens returns the push tokens registered for a user.
func (s *Service) APNsTokens(userID int) []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.apnsTokens[userID]...)
}

func (s *Service) serveStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"service": "ryff mock service"})
}

func (s *Service) serveEndpoint(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["endpoint"], ".php")
	handler, ok := s.handlers[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "No such endpoint."})
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Malformed request."})
		return
	}
	s.logger.Debug("request", "endpoint", name, "fields", r.PostForm.Encode())

	s.lock.Lock()
	defer s.lock.Unlock()

	current := s.currentUser(r)
	if !s.public[name] && current == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"error": "You must be logged in to do that."})
		return
	}

	body, err := handler(r, current)
	if err != nil {
		var message errorResponse
		if !errors.As(err, &message) {
			s.logger.Error("request failed", "endpoint", name, "error", err)
			message = "Internal error."
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"error": string(message)})
		return
	}
	if sessionID, ok := body[sessionCookie].(string); ok {
		delete(body, sessionCookie)
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: sessionID, Path: "/"})
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Service) currentUser(r *http.Request) *user {
	if username := r.PostForm.Get(servicedef.FieldAuthUsername); username != "" {
		u := s.findByUsername(username)
		if u != nil && u.password == r.PostForm.Get(servicedef.FieldAuthPassword) {
			return u
		}
		return nil
	}
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	return s.users[s.sessions[c.Value]]
}

func (s *Service) findByUsername(username string) *user {
	for _, u := range s.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (s *Service) startSession(userID int) string {
	id := uuid.NewString()
	s.sessions[id] = userID
	return id
}

func (s *Service) nextID() int {
	s.lastID++
	return s.lastID
}

func (s *Service) saveUpload(r *http.Request, field, subdir string, id int) error {
	if !hasUpload(r, field) {
		return nil
	}
	f, header, err := r.FormFile(field)
	if err != nil {
		return err
	}
	defer f.Close()
	if s.mediaRoot == "" {
		return nil
	}
	dir := filepath.Join(s.mediaRoot, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	out, err := os.Create(filepath.Join(dir, strconv.Itoa(id)+filepath.Ext(header.Filename)))
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, f)
	return err
}

func hasUpload(r *http.Request, field string) bool {
	if r.MultipartForm == nil {
		return false
	}
	return len(r.MultipartForm.File[field]) > 0
}

func formInt(r *http.Request, field string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.PostForm.Get(field)))
	return n
}

func formIntList(r *http.Request, field string) []int {
	var ids []int
	for _, s := range strings.Split(r.PostForm.Get(field), ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			ids = append(ids, n)
		}
	}
	return ids
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
