package views

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/kidandcat/motk/internal/apiclient"
	"github.com/kidandcat/motk/internal/models"
)

// shotServer serves one project whose shots live in memory and records
// every request it sees.
type shotServer struct {
	mu        sync.Mutex
	shots     []models.Shot
	requests  []string
	bodies    []string
	rejectPut bool
	failTasks bool
}

func (s *shotServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.record(r, "")
		s.mu.Lock()
		defer s.mu.Unlock()
		json.NewEncoder(w).Encode(models.ProjectDetails{
			Project: models.Project{ID: 1, Name: "Feature", Status: "active"},
			Shots:   append([]models.Shot(nil), s.shots...),
		})
	})
	mux.HandleFunc("GET /tasks/project/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.record(r, "")
		s.mu.Lock()
		fail := s.failTasks
		s.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"detail":"Project not found"}`)
			return
		}
		io.WriteString(w, `[]`)
	})
	mux.HandleFunc("PUT /shots/{id}", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.record(r, string(body))
		if s.rejectPut {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"detail":"Invalid shot status"}`)
			return
		}
		var upd models.ShotUpdate
		json.Unmarshal(body, &upd)
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.shots {
			if s.shots[i].ID != id {
				continue
			}
			if upd.Name != nil {
				s.shots[i].Name = *upd.Name
			}
			if upd.Status != nil {
				s.shots[i].Status = *upd.Status
			}
			json.NewEncoder(w).Encode(s.shots[i])
		}
	})
	mux.HandleFunc("DELETE /shots/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.record(r, "")
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		s.mu.Lock()
		defer s.mu.Unlock()
		out := s.shots[:0]
		for _, sh := range s.shots {
			if sh.ID != id {
				out = append(out, sh)
			}
		}
		s.shots = out
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (s *shotServer) record(r *http.Request, body string) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	s.bodies = append(s.bodies, body)
	s.mu.Unlock()
}

func (s *shotServer) body(req string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.requests {
		if r == req {
			return s.bodies[i]
		}
	}
	return ""
}

func (s *shotServer) count(req string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r == req {
			n++
		}
	}
	return n
}

func newDetail(t *testing.T, s *shotServer) *ProjectDetail {
	t.Helper()
	srv := httptest.NewServer(s.handler())
	t.Cleanup(srv.Close)
	d := NewProjectDetail(apiclient.New(srv.URL, nil), 1)
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	return d
}

func TestDetailLoadsBothCollections(t *testing.T) {
	s := &shotServer{shots: []models.Shot{{ID: 7, Name: "sh010", Status: "pending", ProjectID: 1}}}
	d := newDetail(t, s)

	if d.Status() != Ready || d.Project().Name != "Feature" || len(d.Project().Shots) != 1 {
		t.Fatalf("unexpected detail %+v", d.Project())
	}
	if s.count("GET /projects/1") != 1 || s.count("GET /tasks/project/1") != 1 {
		t.Fatalf("unexpected requests %v", s.requests)
	}
}

func TestDetailPartialFailureShowsNothing(t *testing.T) {
	s := &shotServer{failTasks: true, shots: []models.Shot{{ID: 7}}}
	srv := httptest.NewServer(s.handler())
	defer srv.Close()

	d := NewProjectDetail(apiclient.New(srv.URL, nil), 1)
	if err := d.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if d.Status() != Failed || len(d.Project().Shots) != 0 {
		t.Fatal("expected no partial data")
	}
	if d.Message() != "Error: Project not found" {
		t.Fatalf("unexpected message %q", d.Message())
	}
}

func TestGridEditSendsOnlyChangedField(t *testing.T) {
	s := &shotServer{shots: []models.Shot{{ID: 7, Name: "sh010", Status: "pending", ProjectID: 1}}}
	d := newDetail(t, s)

	d.Shots.Begin(7)
	if d.Shots.State(7) != RowEditing {
		t.Fatal("expected editing state")
	}
	if err := d.Shots.Edit(context.Background(), 7, FieldName, "sh020"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if n := s.count("PUT /shots/7"); n != 1 {
		t.Fatalf("expected one PUT, got %d", n)
	}
	if body := s.body("PUT /shots/7"); body != `{"name":"sh020"}` {
		t.Fatalf("unexpected body %s", body)
	}
	if d.Project().Shots[0].Name != "sh020" || d.Shots.State(7) != RowClean {
		t.Fatalf("expected refetched name and clean row, got %+v", d.Project().Shots[0])
	}
	if s.count("GET /projects/1") != 2 {
		t.Fatal("expected a full refetch after the edit")
	}
}

func TestGridEditUnchangedSkipsRequest(t *testing.T) {
	s := &shotServer{shots: []models.Shot{{ID: 7, Name: "sh010", Status: "pending"}}}
	d := newDetail(t, s)

	d.Shots.Edit(context.Background(), 7, FieldName, "sh010")
	if s.count("PUT /shots/7") != 0 {
		t.Fatal("expected no request for an unchanged value")
	}
}

func TestGridRejectedEditRevertsViaRefetch(t *testing.T) {
	s := &shotServer{rejectPut: true, shots: []models.Shot{{ID: 7, Name: "sh010", Status: "pending"}}}
	d := newDetail(t, s)

	var alerts []string
	d.Shots.OnAlert = func(msg string) { alerts = append(alerts, msg) }
	if err := d.Shots.Edit(context.Background(), 7, FieldStatus, "bogus"); err == nil {
		t.Fatal("expected error")
	}
	if len(alerts) != 1 || alerts[0] != "Failed to update shot: Invalid shot status" {
		t.Fatalf("unexpected alerts %v", alerts)
	}
	if d.Project().Shots[0].Status != "pending" || d.Shots.State(7) != RowReverted {
		t.Fatalf("expected server value restored, got %+v", d.Project().Shots[0])
	}
	if s.count("GET /projects/1") != 2 {
		t.Fatal("expected a full refetch after the rejected edit")
	}
}

func TestGridRejectedEditReportsFailedRefetch(t *testing.T) {
	s := &shotServer{rejectPut: true, shots: []models.Shot{{ID: 7, Name: "sh010", Status: "pending"}}}
	d := newDetail(t, s)
	s.mu.Lock()
	s.failTasks = true
	s.mu.Unlock()

	err := d.Shots.Edit(context.Background(), 7, FieldStatus, "bogus")
	if !errors.Is(err, apiclient.ErrValidation) {
		t.Fatalf("expected the rejected update, got %v", err)
	}
	if !errors.Is(err, apiclient.ErrNotFound) {
		t.Fatalf("expected the failed refetch as well, got %v", err)
	}
	if d.Status() != Failed {
		t.Fatalf("expected detail to show the refetch failure, got %v", d.Status())
	}
}

func TestGridDeleteRefetches(t *testing.T) {
	s := &shotServer{shots: []models.Shot{{ID: 7, Name: "a"}, {ID: 8, Name: "b"}}}
	d := newDetail(t, s)

	if err := d.Shots.Delete(context.Background(), 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.count("DELETE /shots/7") != 1 {
		t.Fatal("expected exactly one DELETE")
	}
	if s.count("GET /projects/1") != 2 {
		t.Fatalf("expected refetch after delete, got %v", s.requests)
	}
	for _, sh := range d.Project().Shots {
		if sh.ID == 7 {
			t.Fatal("deleted row still rendered")
		}
	}
}
