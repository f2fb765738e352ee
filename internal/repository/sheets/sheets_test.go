package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
)

// fakeSheet serves the two Sheets API calls the repository makes.
type fakeSheet struct {
	mu       sync.Mutex
	values   [][]interface{}
	appends  int
	lastOpts string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var body struct {
			Values [][]interface{} `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.values = append(f.values, body.Values...)
		f.appends++
		f.lastOpts = r.URL.Query().Get("valueInputOption")
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodGet:
		var head [][]interface{}
		if len(f.values) > 0 {
			head = f.values[:1]
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"values": head})
	default:
		http.NotFound(w, r)
	}
}

func newRepo(t *testing.T, fake *fakeSheet) *GoogleSheetRepository {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	repo, err := NewGoogleSheetRepository(context.Background(), "sheet-1", nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewGoogleSheetRepository: %v", err)
	}
	return repo
}

func TestMilkingExporter_WritesHeaderOnce(t *testing.T) {
	fake := &fakeSheet{}
	exporter := NewMilkingExporter(newRepo(t, fake))
	ctx := context.Background()

	first := [][]interface{}{{"2024-05-09", "Kindia Dairy", 12.0, 7.0, 0.0, 5.0}}
	if err := exporter.Export(ctx, first); err != nil {
		t.Fatalf("Export: %v", err)
	}
	second := [][]interface{}{{"2024-05-10", "Kindia Dairy", 8.0, 8.0, 0.0, 0.0}}
	if err := exporter.Export(ctx, second); err != nil {
		t.Fatalf("Export: %v", err)
	}

	if fake.appends != 2 || len(fake.values) != 3 {
		t.Fatalf("appends = %d, values = %v", fake.appends, fake.values)
	}
	if fake.values[0][0] != "date" || fake.values[2][0] != "2024-05-10" {
		t.Errorf("values = %v", fake.values)
	}
	if fake.lastOpts != "USER_ENTERED" {
		t.Errorf("valueInputOption = %q", fake.lastOpts)
	}
}

func TestMilkingExporter_NothingToExport(t *testing.T) {
	fake := &fakeSheet{}
	if err := NewMilkingExporter(newRepo(t, fake)).Export(context.Background(), nil); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if fake.appends != 0 {
		t.Errorf("appends = %d", fake.appends)
	}
}

func TestNewGoogleSheetRepository_RequiresID(t *testing.T) {
	if _, err := NewGoogleSheetRepository(context.Background(), "", nil); err == nil {
		t.Fatal("expected error for empty spreadsheet id")
	}
}
