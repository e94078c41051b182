package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"sessionstate/internal/providers"
	"sessionstate/internal/savedstate"
	"sessionstate/internal/services"
	"sessionstate/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1 MB

var errRevisionMismatch = errors.New("revision mismatch")

type StateController struct {
	logger     providers.Logger
	service    services.SessionServiceInterface
	cache      providers.CacheProviderInterface
	quarantine *storage.Quarantine
}

type stateResponse struct {
	Revision      uint64                `json:"revision"`
	SchemaVersion savedstate.Version    `json:"schemaVersion"`
	AuthKind      string                `json:"authKind"`
	SignedInAs    savedstate.ProfileID  `json:"signedInAs,omitempty"`
	State         savedstate.SavedState `json:"state"`
}

type profileResponse struct {
	ID      savedstate.ProfileID   `json:"id"`
	Legacy  bool                   `json:"legacy"`
	Profile savedstate.ProfileData `json:"profile"`
}

type revisionResponse struct {
	Revision uint64 `json:"revision"`
}

func NewStateController(logger providers.Logger, service services.SessionServiceInterface, cache providers.CacheProviderInterface, quarantine *storage.Quarantine) *StateController {
	return &StateController{
		logger:     logger,
		service:    service,
		cache:      cache,
		quarantine: quarantine,
	}
}

func etag(revision uint64) string {
	return `"rev-` + strconv.FormatUint(revision, 10) + `"`
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (sc *StateController) respond(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		sc.logger.Errorf(providers.TypeApp, "Failed to encode response: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, gson)
}

// GetState renders the current state. Responses are cached per revision and
// carry the revision as ETag.
func (sc *StateController) GetState(w http.ResponseWriter, r *http.Request) {
	state, rev := sc.service.Snapshot()
	tag := etag(rev)
	w.Header().Set("ETag", tag)
	if r.Header.Get("If-None-Match") == tag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	cacheKey := "state:" + strconv.FormatUint(rev, 10)
	if data, ok := sc.cache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, data)
		return
	}

	resp := stateResponse{
		Revision:      rev,
		SchemaVersion: savedstate.CurrentVersion,
		AuthKind:      state.Auth.Kind().String(),
		State:         state,
	}
	if id, ok := state.SignedInProfile(); ok {
		resp.SignedInAs = id
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		sc.logger.Errorf(providers.TypeApp, "Failed to encode state: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	sc.cache.Set(cacheKey, gson)
	writeJSON(w, http.StatusOK, gson)
}

// PutState replaces the whole state. An If-Match header must name the
// current revision.
func (sc *StateController) PutState(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var next savedstate.SavedState
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := validateState(next); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	next = next.Canonical()

	var want uint64
	ifMatch := r.Header.Get("If-Match")
	if ifMatch != "" {
		parsed, ok := parseETag(ifMatch)
		if !ok {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		want = parsed
	}

	rev, err := sc.service.Update(func(state *savedstate.SavedState) error {
		if ifMatch != "" && sc.service.Revision() != want {
			return errRevisionMismatch
		}
		*state = next
		return nil
	})
	if errors.Is(err, errRevisionMismatch) {
		http.Error(w, "Precondition Failed", http.StatusPreconditionFailed)
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sc.logger.Infof(providers.TypePost, "State replaced at revision %d (%d profiles)", rev, len(next.ProfileData))
	w.Header().Set("ETag", etag(rev))
	sc.respond(w, http.StatusOK, revisionResponse{Revision: rev})
}

// GetProfile returns one profile's data. Legacy IDs minted during migration
// are accepted.
func (sc *StateController) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := parseProfileParam(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	profile, ok := sc.service.Profile(id)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	sc.respond(w, http.StatusOK, profileResponse{ID: id, Legacy: id.IsLegacy(), Profile: profile})
}

// SignOut clears the credentials and keeps every profile.
func (sc *StateController) SignOut(w http.ResponseWriter, r *http.Request) {
	rev := sc.service.SignOut()
	sc.logger.Infof(providers.TypePost, "Signed out at revision %d", rev)
	w.Header().Set("ETag", etag(rev))
	sc.respond(w, http.StatusOK, revisionResponse{Revision: rev})
}

// GetQuarantine lists the blobs set aside by load fallbacks.
func (sc *StateController) GetQuarantine(w http.ResponseWriter, r *http.Request) {
	entries, err := sc.quarantine.List()
	if err != nil {
		sc.logger.Errorf(providers.TypeApp, "Failed to list quarantine: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []storage.QuarantineEntry{}
	}
	sc.respond(w, http.StatusOK, entries)
}

func parseETag(s string) (uint64, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "W/")
	s = strings.Trim(s, `"`)
	s = strings.TrimPrefix(s, "rev-")
	rev, err := strconv.ParseUint(s, 10, 64)
	return rev, err == nil
}

func parseProfileParam(s string) (savedstate.ProfileID, error) {
	if s == "" {
		return "", errors.New("missing id")
	}
	return savedstate.ParseStoredProfileID(s)
}

// validateState rejects profile keys that are neither DIDs nor legacy IDs.
// A non-null auth must hold exactly one variant.
func validateState(s savedstate.SavedState) error {
	for id := range s.ProfileData {
		if _, err := parseProfileParam(string(id)); err != nil {
			return err
		}
	}
	if a := s.Auth; a != nil {
		set := 0
		if a.Guest != nil {
			set++
		}
		if a.Bearer != nil {
			set++
		}
		if a.DPoP != nil {
			set++
		}
		if set != 1 {
			return errors.New("auth must hold exactly one variant")
		}
	}
	return nil
}
