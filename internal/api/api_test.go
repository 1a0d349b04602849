package api

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/pjournal/internal/auth"
	"github.com/julianstephens/pjournal/internal/errors"
	"github.com/julianstephens/pjournal/internal/journal"
	"github.com/julianstephens/pjournal/internal/models"
	"github.com/julianstephens/pjournal/internal/storage/sqlite"
)

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	signer *auth.Signer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "pjournal.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	signer, err := auth.NewSigner([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(NewRouter(journal.New(store, ""), signer))
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, signer: signer}
}

func (ts *testServer) token(owner string) string {
	ts.t.Helper()
	tok, err := ts.signer.Sign(owner, time.Hour)
	if err != nil {
		ts.t.Fatal(err)
	}
	return tok
}

// do sends a request as owner and decodes a JSON response into out when
// out is non-nil.
func (ts *testServer) do(owner, method, path, body string, out interface{}) int {
	ts.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, r)
	if err != nil {
		ts.t.Fatal(err)
	}
	if owner != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token(owner))
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			ts.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	var body map[string]string
	if code := ts.do("", http.MethodGet, "/healthz", "", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc"},
		{"garbage", "Bearer not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, ts.srv.URL+"/api/subjects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", resp.StatusCode)
			}
			if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("missing security headers")
			}
		})
	}
}

func TestSubjectLifecycle(t *testing.T) {
	ts := newTestServer(t)

	var created models.Subject
	code := ts.do("alice", http.MethodPost, "/api/subjects", `{"name":"Lifting","template":"weight training"}`, &created)
	if code != http.StatusCreated {
		t.Fatalf("create status = %d", code)
	}
	if created.ID == "" || created.Template == nil || created.Template.Fields[0].Name != "Exercise" {
		t.Fatalf("created = %+v", created)
	}

	var list []models.SubjectSummary
	ts.do("alice", http.MethodGet, "/api/subjects", "", &list)
	if diff := cmp.Diff([]models.SubjectSummary{{ID: created.ID, Name: "Lifting"}}, list); diff != "" {
		t.Errorf("list (-want +got):\n%s", diff)
	}

	var other []models.SubjectSummary
	ts.do("bob", http.MethodGet, "/api/subjects", "", &other)
	if len(other) != 0 {
		t.Errorf("bob sees %v", other)
	}
	var missing errorBody
	if code := ts.do("bob", http.MethodGet, "/api/subjects/"+created.ID, "", &missing); code != http.StatusNotFound {
		t.Errorf("cross-owner get status = %d", code)
	}
	if missing.Kind != errors.KindNotFound {
		t.Errorf("kind = %q", missing.Kind)
	}

	var dup errorBody
	if code := ts.do("alice", http.MethodPost, "/api/subjects", `{"name":"lifting"}`, &dup); code != http.StatusConflict {
		t.Errorf("duplicate status = %d", code)
	}

	if code := ts.do("alice", http.MethodPost, "/api/subjects", `{"name":"X","template":"yoga"}`, nil); code != http.StatusBadRequest {
		t.Errorf("bad kind status = %d", code)
	}

	if code := ts.do("alice", http.MethodDelete, "/api/subjects/Lifting", "", nil); code != http.StatusNoContent {
		t.Errorf("delete status = %d", code)
	}
	if code := ts.do("alice", http.MethodGet, "/api/subjects/Lifting", "", nil); code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", code)
	}
}

func TestSaveTemplateValidation(t *testing.T) {
	ts := newTestServer(t)
	var created models.Subject
	ts.do("alice", http.MethodPost, "/api/subjects", `{"name":"Notes"}`, &created)

	body := `{"name":"Notes","template":{"fields":[{"name":"","field_inputs":[{"input_type":"NUMBER","input_helper":null}]}]}}`
	var resp errorBody
	if code := ts.do("alice", http.MethodPut, "/api/subjects/Notes", body, &resp); code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d (%+v)", code, resp)
	}
	if resp.Kind != errors.KindValidation || len(resp.Issues) == 0 {
		t.Errorf("resp = %+v", resp)
	}

	body = `{"name":"Notes","template":{"fields":[{"name":"Mood","field_inputs":[{"input_type":"RANGE","input_helper":"Energy"}]}]}}`
	var saved models.Subject
	if code := ts.do("alice", http.MethodPut, "/api/subjects/Notes", body, &saved); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(saved.Template.Fields) != 1 || saved.Template.Fields[0].Name != "Mood" {
		t.Fatalf("saved = %+v", saved.Template.Fields)
	}

	draft := saved.Clone()
	draft.Template.Fields[0].Inputs = []models.FieldInput{models.NewInput(models.InputTextarea, nil)}
	raw, err := json.Marshal(draft)
	if err != nil {
		t.Fatal(err)
	}
	resp = errorBody{}
	if code := ts.do("alice", http.MethodPut, "/api/subjects/Notes", string(raw), &resp); code != http.StatusBadRequest {
		t.Fatalf("dropping a saved input: status = %d (%+v)", code, resp)
	}
	if resp.Kind != errors.KindInvalid {
		t.Errorf("resp = %+v", resp)
	}
}

func TestEntriesAndChart(t *testing.T) {
	ts := newTestServer(t)
	var created models.Subject
	ts.do("alice", http.MethodPost, "/api/subjects", `{"name":"Lifting","template":"weight training"}`, &created)

	post := func(kg, reps float64) models.Entry {
		t.Helper()
		body, _ := json.Marshal(models.Entry{Fields: []models.Field{{
			Name: "Exercise",
			Inputs: []models.FieldInput{
				{Kind: models.InputNumber, Helper: models.Ptr("kg"), Value: models.NumberValue{Number: models.Ptr(kg)}},
				{Kind: models.InputNumber, Helper: models.Ptr("reps"), Value: models.NumberValue{Number: models.Ptr(reps)}},
			},
		}}})
		var e models.Entry
		if code := ts.do("alice", http.MethodPost, "/api/subjects/Lifting/entries", string(body), &e); code != http.StatusCreated {
			t.Fatalf("post entry status = %d", code)
		}
		return e
	}
	first := post(100, 5)
	post(110, 3)

	var entries []models.Entry
	ts.do("alice", http.MethodGet, "/api/subjects/Lifting/entries", "", &entries)
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}

	var got models.Entry
	if code := ts.do("alice", http.MethodGet, "/api/subjects/Lifting/entries/"+first.ID, "", &got); code != http.StatusOK {
		t.Fatalf("get entry status = %d", code)
	}
	if got.ID != first.ID {
		t.Errorf("entry id = %q", got.ID)
	}

	var empty errorBody
	if code := ts.do("alice", http.MethodPost, "/api/subjects/Lifting/entries", `{"fields":[]}`, &empty); code != http.StatusBadRequest {
		t.Errorf("empty entry status = %d", code)
	}
	if empty.Kind != errors.KindEmptySubmission {
		t.Errorf("kind = %q", empty.Kind)
	}

	var c chartResponse
	if code := ts.do("alice", http.MethodGet, "/api/subjects/Lifting/chart?field=Exercise", "", &c); code != http.StatusOK {
		t.Fatalf("chart status = %d", code)
	}
	if len(c.Points) != 2 {
		t.Fatalf("points = %+v", c.Points)
	}
	if code := ts.do("alice", http.MethodGet, "/api/subjects/Lifting/chart", "", nil); code != http.StatusBadRequest {
		t.Errorf("chart without field status = %d", code)
	}
}

func TestExportImport(t *testing.T) {
	ts := newTestServer(t)
	ts.do("alice", http.MethodPost, "/api/subjects", `{"name":"Lifting","template":"weight training"}`, nil)

	req, _ := http.NewRequest(http.MethodGet, ts.srv.URL+"/api/subjects/Lifting/export", nil)
	req.Header.Set("Authorization", "Bearer "+ts.token("alice"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	doc, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(doc), "Exercise") {
		t.Fatalf("export = %s", doc)
	}

	var imported models.Subject
	if code := ts.do("bob", http.MethodPost, "/api/import?name=Copied", string(doc), &imported); code != http.StatusCreated {
		t.Fatalf("import status = %d", code)
	}
	if imported.Name != "Copied" || imported.OwnerID != "bob" {
		t.Errorf("imported = %+v", imported)
	}
}

func TestSettingsAndAccount(t *testing.T) {
	ts := newTestServer(t)

	var s models.UserSettings
	if code := ts.do("alice", http.MethodPut, "/api/settings", `{"bodyweight":80.5,"units":"imperial"}`, &s); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if s.Units != "Imperial" || s.Bodyweight == nil || *s.Bodyweight != 80.5 {
		t.Errorf("settings = %+v", s)
	}
	if code := ts.do("alice", http.MethodPut, "/api/settings", `{"bodyweight":-1}`, nil); code != http.StatusUnprocessableEntity {
		t.Errorf("negative bodyweight status = %d", code)
	}
	if code := ts.do("alice", http.MethodPut, "/api/settings", `{bad json`, nil); code != http.StatusBadRequest {
		t.Errorf("bad json status = %d", code)
	}

	ts.do("alice", http.MethodPost, "/api/subjects", `{"name":"Notes"}`, nil)
	if code := ts.do("alice", http.MethodDelete, "/api/account", "", nil); code != http.StatusNoContent {
		t.Fatalf("delete account status = %d", code)
	}
	var list []models.SubjectSummary
	ts.do("alice", http.MethodGet, "/api/subjects", "", &list)
	if len(list) != 0 {
		t.Errorf("subjects after delete = %v", list)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind errors.Kind
		want int
	}{
		{errors.KindValidation, http.StatusUnprocessableEntity},
		{errors.KindNotFound, http.StatusNotFound},
		{errors.KindConflict, http.StatusConflict},
		{errors.KindInvalid, http.StatusBadRequest},
		{errors.KindEmptySubmission, http.StatusBadRequest},
		{errors.KindNoTemplate, http.StatusBadRequest},
		{errors.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.kind); got != tt.want {
			t.Errorf("StatusFor(%q) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ServeListener(ctx, ln, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
	}()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + ln.Addr().String())
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never answered: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ServeListener = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
