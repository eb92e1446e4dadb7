package googletasks_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/option"

	"todo/internal/backend/googletasks"
	"todo/internal/service"
)

// fakeAPI serves the subset of the Tasks API the client uses.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks/v1/users/@me/lists/@default", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"real-default","title":"My Tasks"}`)
	})
	mux.HandleFunc("/tasks/v1/users/@me/lists", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[
			{"id":"real-default","title":"My Tasks"},
			{"id":"shop","title":"Shopping"},
			{"id":"w1","title":"Work"},
			{"id":"w2","title":" work "}
		]}`)
	})
	mux.HandleFunc("/tasks/v1/lists/shop/tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("showCompleted") != "false" {
			t.Errorf("expected showCompleted=false, got %q", r.URL.RawQuery)
		}
		switch r.URL.Query().Get("pageToken") {
		case "":
			fmt.Fprint(w, `{"items":[{"id":"t1","title":"Eggs","due":"2024-05-01T00:00:00.000Z"}],"nextPageToken":"p2"}`)
		case "p2":
			fmt.Fprint(w, `{"items":[{"id":"t2","title":"Bread"}]}`)
		default:
			http.Error(w, "bad token", http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/tasks/v1/lists/gone/tasks", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":401,"message":"invalid credentials"}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *googletasks.Client {
	t.Helper()
	srv := fakeAPI(t)
	c, err := googletasks.NewWithHTTPClient(context.Background(), srv.Client(), option.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestDefaultList(t *testing.T) {
	c := newClient(t)

	list, err := c.DefaultList(context.Background())
	if err != nil {
		t.Fatalf("default list: %v", err)
	}
	if list.ID != googletasks.DefaultListID || list.Title != "My Tasks" || !list.IsDefault {
		t.Errorf("unexpected default list %+v", list)
	}
}

func TestListLists_FlagsDefault(t *testing.T) {
	c := newClient(t)

	lists, err := c.ListLists(context.Background())
	if err != nil {
		t.Fatalf("list lists: %v", err)
	}
	if len(lists) != 4 {
		t.Fatalf("expected 4 lists, got %d", len(lists))
	}
	if lists[0].ID != googletasks.DefaultListID || !lists[0].IsDefault {
		t.Errorf("first list should be the default, got %+v", lists[0])
	}
	if lists[1].IsDefault {
		t.Errorf("only one list is the default, got %+v", lists[1])
	}
}

func TestResolveList(t *testing.T) {
	c := newClient(t)

	list, err := c.ResolveList(context.Background(), "  shopping")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if list.ID != "shop" {
		t.Errorf("expected shop, got %+v", list)
	}

	if _, err := c.ResolveList(context.Background(), "Work"); err == nil || !strings.Contains(err.Error(), "ambiguous list name") {
		t.Errorf("expected ambiguity error, got %v", err)
	}
	if _, err := c.ResolveList(context.Background(), "Garden"); err == nil || !strings.Contains(err.Error(), "list not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestListOpenTasks_FollowsPages(t *testing.T) {
	c := newClient(t)

	got, err := c.ListOpenTasks(context.Background(), "shop")
	if err != nil {
		t.Fatalf("list open tasks: %v", err)
	}
	want := []service.RemoteTask{
		{ID: "t1", Title: "Eggs", Due: "2024-05-01T00:00:00.000Z"},
		{ID: "t2", Title: "Bread"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("task %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestListOpenTasks_AuthError(t *testing.T) {
	c := newClient(t)

	_, err := c.ListOpenTasks(context.Background(), "gone")
	if err == nil || !strings.Contains(err.Error(), "run: todo login") {
		t.Errorf("expected login hint, got %v", err)
	}
}

func TestMatchList(t *testing.T) {
	lists := []service.TaskList{
		{ID: "a", Title: "Inbox"},
		{ID: "b", Title: "Later"},
	}
	got, err := googletasks.MatchList(lists, "INBOX ")
	if err != nil || got.ID != "a" {
		t.Errorf("expected a, got %+v (%v)", got, err)
	}
}
