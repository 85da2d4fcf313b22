package gcaltest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
)

// Grant is the token set handed out for an authorization code.
type Grant struct {
	RefreshToken string
	Scope        string
	IDToken      string
}

// ListQuery records the parameters of an events.list call.
type ListQuery struct {
	CalendarID   string
	TimeMin      string
	TimeMax      string
	SingleEvents string
	OrderBy      string
	MaxResults   string
}

// Server is a fake Google OAuth2 + Calendar v3 server.
type Server struct {
	*httptest.Server

	mu             sync.Mutex
	codes          map[string]Grant
	refreshTokens  map[string]Grant
	accessTokens   map[string]time.Time // token -> expiry
	events         map[string]map[string]*calendar.Event
	nextID         int
	accessTTL      time.Duration
	rotateRefresh  bool
	refreshCalls   int
	exchangeCalls  int
	listQueries    []ListQuery
	insertRequests []*calendar.Event
	failInsert     int
	now            func() time.Time
}

// NewServer starts a fake server. Close it when done.
func NewServer() *Server {
	s := &Server{
		codes:         make(map[string]Grant),
		refreshTokens: make(map[string]Grant),
		accessTokens:  make(map[string]time.Time),
		events:        make(map[string]map[string]*calendar.Event),
		nextID:        1,
		accessTTL:     time.Hour,
		now:           time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", s.handleToken)
	mux.HandleFunc("/calendar/v3/", s.handleCalendars)

	s.Server = httptest.NewServer(mux)
	return s
}

// Endpoint is the OAuth2 endpoint served by s.
func (s *Server) Endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   s.URL + "/auth",
		TokenURL:  s.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// CalendarEndpoint is the Calendar API base URL served by s.
func (s *Server) CalendarEndpoint() string {
	return s.URL + "/calendar/v3/"
}

// AddCode registers a single-use authorization code.
func (s *Server) AddCode(code string, g Grant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code] = g
}

// AddRefreshToken registers a refresh token as if it had been issued earlier.
func (s *Server) AddRefreshToken(g Grant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens[g.RefreshToken] = g
}

// AddAccessToken registers a live access token.
func (s *Server) AddAccessToken(token string, expiry time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTokens[token] = expiry
}

// RevokeRefreshToken makes future refreshes with token fail with invalid_grant.
func (s *Server) RevokeRefreshToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refreshTokens, token)
}

// SetAccessTokenTTL sets expires_in for newly minted access tokens.
func (s *Server) SetAccessTokenTTL(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTTL = d
}

// SetRotateRefreshTokens makes the refresh grant return a new refresh token.
func (s *Server) SetRotateRefreshTokens(rotate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotateRefresh = rotate
}

// FailNextInserts makes the next n inserts fail with 403.
func (s *Server) FailNextInserts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failInsert = n
}

// AddEvent stores e in calendarID and returns its assigned id.
func (s *Server) AddEvent(calendarID string, e *calendar.Event) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeEvent(calendarID, e)
}

// RefreshCalls is the number of refresh-token grants served.
func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// ExchangeCalls is the number of authorization-code grants served.
func (s *Server) ExchangeCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exchangeCalls
}

// ListQueries returns the recorded events.list calls.
func (s *Server) ListQueries() []ListQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ListQuery(nil), s.listQueries...)
}

// InsertRequests returns the decoded bodies of events.insert calls.
func (s *Server) InsertRequests() []*calendar.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*calendar.Event(nil), s.insertRequests...)
}

// handleToken serves the authorization_code and refresh_token grants.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, "invalid_request", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		s.exchangeCalls++
		code := r.PostForm.Get("code")
		g, ok := s.codes[code]
		if !ok {
			writeOAuthError(w, "invalid_grant", "Malformed auth code.")
			return
		}
		delete(s.codes, code)
		if g.RefreshToken != "" {
			s.refreshTokens[g.RefreshToken] = g
		}
		s.writeToken(w, g, true)
	case "refresh_token":
		s.refreshCalls++
		g, ok := s.refreshTokens[r.PostForm.Get("refresh_token")]
		if !ok {
			writeOAuthError(w, "invalid_grant", "Token has been expired or revoked.")
			return
		}
		includeRefresh := false
		if s.rotateRefresh {
			delete(s.refreshTokens, g.RefreshToken)
			g.RefreshToken = fmt.Sprintf("refresh-%d", s.nextID)
			s.nextID++
			s.refreshTokens[g.RefreshToken] = g
			includeRefresh = true
		}
		s.writeToken(w, g, includeRefresh)
	default:
		writeOAuthError(w, "unsupported_grant_type", "")
	}
}

func (s *Server) writeToken(w http.ResponseWriter, g Grant, includeRefresh bool) {
	access := fmt.Sprintf("access-%d", s.nextID)
	s.nextID++
	s.accessTokens[access] = s.now().Add(s.accessTTL)

	body := map[string]any{
		"access_token": access,
		"token_type":   "Bearer",
		"expires_in":   int(s.accessTTL.Seconds()),
	}
	if g.Scope != "" {
		body["scope"] = g.Scope
	}
	if g.IDToken != "" {
		body["id_token"] = g.IDToken
	}
	if includeRefresh && g.RefreshToken != "" {
		body["refresh_token"] = g.RefreshToken
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

func writeOAuthError(w http.ResponseWriter, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "error_description": description})
}

// handleCalendars routes /calendar/v3/calendars/{calendarId}/events.
func (s *Server) handleCalendars(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.EscapedPath(), "/calendar/v3/calendars/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[1] != "events" {
		writeAPIError(w, http.StatusNotFound, "notFound")
		return
	}
	calendarID, err := url.PathUnescape(parts[0])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "badRequest")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authorized(r) {
		writeAPIError(w, http.StatusUnauthorized, "authError")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.listEvents(w, r, calendarID)
	case http.MethodPost:
		s.insertEvent(w, r, calendarID)
	default:
		writeAPIError(w, http.StatusMethodNotAllowed, "methodNotAllowed")
	}
}

func (s *Server) authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	expiry, ok := s.accessTokens[token]
	return ok && s.now().Before(expiry)
}

func (s *Server) insertEvent(w http.ResponseWriter, r *http.Request, calendarID string) {
	var event calendar.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeAPIError(w, http.StatusBadRequest, "parseError")
		return
	}
	recorded := event
	s.insertRequests = append(s.insertRequests, &recorded)

	if s.failInsert > 0 {
		s.failInsert--
		writeAPIError(w, http.StatusForbidden, "insufficientPermissions")
		return
	}

	start, startOK := eventInstant(event.Start)
	end, endOK := eventInstant(event.End)
	if !startOK || !endOK {
		writeAPIError(w, http.StatusBadRequest, "required")
		return
	}
	if end.Before(start) {
		writeAPIError(w, http.StatusBadRequest, "timeRangeEmpty")
		return
	}

	s.storeEvent(calendarID, &event)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event)
}

func (s *Server) storeEvent(calendarID string, e *calendar.Event) string {
	e.Id = fmt.Sprintf("event%d", s.nextID)
	s.nextID++
	e.Status = "confirmed"
	e.HtmlLink = "https://calendar.google.com/event?eid=" + e.Id
	if s.events[calendarID] == nil {
		s.events[calendarID] = make(map[string]*calendar.Event)
	}
	s.events[calendarID][e.Id] = e
	return e.Id
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request, calendarID string) {
	q := r.URL.Query()
	s.listQueries = append(s.listQueries, ListQuery{
		CalendarID:   calendarID,
		TimeMin:      q.Get("timeMin"),
		TimeMax:      q.Get("timeMax"),
		SingleEvents: q.Get("singleEvents"),
		OrderBy:      q.Get("orderBy"),
		MaxResults:   q.Get("maxResults"),
	})

	timeMin, minErr := parseBound(q.Get("timeMin"))
	timeMax, maxErr := parseBound(q.Get("timeMax"))
	if minErr != nil || maxErr != nil {
		writeAPIError(w, http.StatusBadRequest, "badRequest")
		return
	}

	type entry struct {
		event *calendar.Event
		start time.Time
	}
	var matched []entry
	for _, e := range s.events[calendarID] {
		start, ok := eventInstant(e.Start)
		if !ok {
			continue
		}
		end, ok := eventInstant(e.End)
		if !ok {
			end = start
		}
		// overlap semantics: an event is returned when it ends after timeMin and starts before timeMax
		if !timeMin.IsZero() && !end.After(timeMin) {
			continue
		}
		if !timeMax.IsZero() && !start.Before(timeMax) {
			continue
		}
		matched = append(matched, entry{event: e, start: start})
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].start.Equal(matched[j].start) {
			return matched[i].event.Id < matched[j].event.Id
		}
		return matched[i].start.Before(matched[j].start)
	})

	offset, _ := strconv.Atoi(q.Get("pageToken"))
	pageSize := len(matched)
	if n, err := strconv.Atoi(q.Get("maxResults")); err == nil && n > 0 {
		pageSize = n
	}

	resp := calendar.Events{Kind: "calendar#events"}
	endIdx := offset + pageSize
	if endIdx > len(matched) {
		endIdx = len(matched)
	}
	for _, m := range matched[min(offset, len(matched)):endIdx] {
		resp.Items = append(resp.Items, m.event)
	}
	if endIdx < len(matched) {
		resp.NextPageToken = strconv.Itoa(endIdx)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

// eventInstant reads the start/end of a stored event; all-day dates are midnight UTC.
func eventInstant(t *calendar.EventDateTime) (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}
	if t.DateTime != "" {
		v, err := time.Parse(time.RFC3339, t.DateTime)
		return v, err == nil
	}
	if t.Date != "" {
		v, err := time.Parse(time.DateOnly, t.Date)
		return v, err == nil
	}
	return time.Time{}, false
}

func writeAPIError(w http.ResponseWriter, status int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": reason,
			"errors":  []map[string]string{{"reason": reason, "message": reason}},
		},
	})
}
