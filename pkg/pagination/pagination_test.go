package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, target string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsFor(t, "/")

	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected default offset 0, got %d", p.Offset)
	}
}

func TestFromContext_CustomValues(t *testing.T) {
	p := paramsFor(t, "/?limit=50&offset=10")

	if p.Limit != 50 {
		t.Errorf("expected limit 50, got %d", p.Limit)
	}
	if p.Offset != 10 {
		t.Errorf("expected offset 10, got %d", p.Offset)
	}
}

func TestFromContext_MaxLimit(t *testing.T) {
	p := paramsFor(t, "/?limit=500")

	if p.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_InvalidValues(t *testing.T) {
	p := paramsFor(t, "/?limit=abc&offset=-5")

	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit for garbage, got %d", p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected negative offset clamped to 0, got %d", p.Offset)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		limit, offset int
		want          Params
	}{
		{"zero limit", 0, 0, Params{Limit: DefaultLimit}},
		{"in range", 5, 15, Params{Limit: 5, Offset: 15}},
		{"over max", 1000, 0, Params{Limit: MaxLimit}},
		{"negative", -1, -1, Params{Limit: DefaultLimit}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.limit, tt.offset); got != tt.want {
				t.Errorf("New(%d, %d) = %+v, want %+v", tt.limit, tt.offset, got, tt.want)
			}
		})
	}
}

func TestSQL(t *testing.T) {
	p := Params{Limit: 20, Offset: 40}
	if got := p.SQL(); got != "LIMIT 20 OFFSET 40" {
		t.Errorf("expected 'LIMIT 20 OFFSET 40', got %q", got)
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name       string
		params     Params
		n          int
		start, end int
	}{
		{"first page", Params{Limit: 10}, 25, 0, 10},
		{"last partial page", Params{Limit: 10, Offset: 20}, 25, 20, 25},
		{"past the end", Params{Limit: 10, Offset: 40}, 25, 25, 25},
		{"empty", Params{Limit: 10}, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.params.Window(tt.n)
			if start != tt.start || end != tt.end {
				t.Errorf("Window(%d) = [%d:%d], want [%d:%d]", tt.n, start, end, tt.start, tt.end)
			}
		})
	}
}

func TestNewResponse(t *testing.T) {
	resp := NewResponse([]string{"a", "b"}, 50, Params{Limit: 20, Offset: 0})

	if resp.Total != 50 || resp.Limit != 20 || resp.Offset != 0 {
		t.Errorf("unexpected response fields: %+v", resp)
	}
	if !resp.HasMore {
		t.Error("expected HasMore true")
	}

	resp = NewResponse(nil, 50, Params{Limit: 20, Offset: 40})
	if resp.HasMore {
		t.Error("expected HasMore false on last page")
	}
}

func TestParams_HasNext(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		total  int
		want   bool
	}{
		{"more results", Params{Limit: 10, Offset: 0}, 25, true},
		{"exact end", Params{Limit: 10, Offset: 20}, 30, false},
		{"past end", Params{Limit: 10, Offset: 30}, 25, false},
		{"no results", Params{Limit: 10, Offset: 0}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.HasNext(tt.total); got != tt.want {
				t.Errorf("HasNext(%d) = %v, want %v", tt.total, got, tt.want)
			}
		})
	}
}

func TestParams_PreviousOffset(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   int
	}{
		{"first page", Params{Limit: 10, Offset: 0}, 0},
		{"second page", Params{Limit: 10, Offset: 10}, 0},
		{"third page", Params{Limit: 10, Offset: 20}, 10},
		{"partial", Params{Limit: 10, Offset: 5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.PreviousOffset(); got != tt.want {
				t.Errorf("PreviousOffset() = %d, want %d", got, tt.want)
			}
		})
	}
}

func linkMap(links []Link) map[string]string {
	out := make(map[string]string, len(links))
	for _, l := range links {
		out[l.Relation] = l.URL
	}
	return out
}

func TestParams_Links_FirstPage(t *testing.T) {
	links := linkMap(Params{Limit: 10, Offset: 0}.Links("/formpacks", 25))

	if links["self"] != "/formpacks?offset=0&limit=10" {
		t.Errorf("unexpected self link %q", links["self"])
	}
	if links["next"] != "/formpacks?offset=10&limit=10" {
		t.Errorf("unexpected next link %q", links["next"])
	}
	if _, ok := links["previous"]; ok {
		t.Error("did not expect 'previous' link on first page")
	}
}

func TestParams_Links_MiddlePage(t *testing.T) {
	links := linkMap(Params{Limit: 10, Offset: 10}.Links("/formpacks", 25))

	if links["previous"] != "/formpacks?offset=0&limit=10" {
		t.Errorf("unexpected previous link %q", links["previous"])
	}
	if _, ok := links["next"]; !ok {
		t.Error("expected 'next' link")
	}
}

func TestParams_Links_NoResults(t *testing.T) {
	links := Params{Limit: 10, Offset: 0}.Links("/formpacks", 0)

	if len(links) != 1 {
		t.Fatalf("expected 1 link (self only), got %d", len(links))
	}
	if links[0].Relation != "self" {
		t.Errorf("expected 'self', got %q", links[0].Relation)
	}
}
