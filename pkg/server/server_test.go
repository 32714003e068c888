package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarJC5/slabs/pkg/page"
	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/schema/loader"
	"github.com/MarJC5/slabs/pkg/validation"
)

const contactDoc = `{
  "name": "contact",
  "title": "Contact us",
  "description": "<p>We answer within a day.</p>",
  "fields": {
    "email": {"type": "email", "label": "Email", "required": true},
    "callMe": {"type": "boolean", "label": "Call me"},
    "phone": {
      "type": "text", "label": "Phone", "required": true,
      "conditional": {"field": "callMe", "operator": "==", "value": true}
    }
  }
}`

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	doc, err := loader.Decode(loader.FormatJSON, "", []byte(contactDoc))
	require.NoError(t, err)
	srv, err := New(loader.NewCatalog([]schema.Document{doc}), opts...)
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, srv http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestListForms(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(t), http.MethodGet, "/forms", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Forms []FormSummary `json:"forms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, []FormSummary{{Name: "contact", Title: "Contact us", Fields: 3}}, payload.Forms)
}

func TestShowForm(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(t), http.MethodGet, "/forms/contact", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Contact us</title>")
	assert.Contains(t, body, "<p>We answer within a day.</p>")
	assert.Contains(t, body, `data-field-name="email"`)
	assert.Contains(t, body, `href="/assets/slabs.css"`)
	assert.Contains(t, body, "data-hidden")
}

func TestShowFormWithTheme(t *testing.T) {
	t.Parallel()

	selector, err := page.NewStaticSelector("", "", &theme.Manifest{
		Name:   "acme",
		Tokens: map[string]string{"primary": "#123"},
	})
	require.NoError(t, err)
	pages, err := page.New(page.WithThemeSelector(selector))
	require.NoError(t, err)

	rec := do(t, newTestServer(t, WithPageRenderer(pages)), http.MethodGet, "/forms/contact", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "--slabs-primary:#123")
	assert.Contains(t, rec.Body.String(), "--primary:#123;")
}

func TestShowSchema(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(t), http.MethodGet, "/forms/contact/schema", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc schema.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, []string{"email", "callMe", "phone"}, doc.Fields.Names())
}

func TestUnknownForm(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	for _, target := range []string{"/forms/missing", "/forms/missing/schema"} {
		rec := do(t, srv, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "NOT_FOUND")
	}
}

func TestValidateForm(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	cases := []struct {
		name      string
		body      string
		status    int
		valid     bool
		codes     []validation.Code
		wantPhone any
	}{
		{
			name:   "hidden phone is nulled and skipped",
			body:   `{"email": "ada@example.com", "callMe": false, "phone": "123"}`,
			status: http.StatusOK,
			valid:  true,
		},
		{
			name:      "visible phone is required",
			body:      `{"email": "ada@example.com", "callMe": true}`,
			status:    http.StatusUnprocessableEntity,
			codes:     []validation.Code{validation.CodeRequired},
			wantPhone: nil,
		},
		{
			name:      "invalid email",
			body:      `{"email": "nope", "callMe": true, "phone": "123"}`,
			status:    http.StatusUnprocessableEntity,
			codes:     []validation.Code{validation.CodeInvalidEmail},
			wantPhone: "123",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := do(t, srv, http.MethodPost, "/forms/contact/validate", tc.body)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())

			var resp ValidateResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.valid, resp.Result.Valid)
			assert.Equal(t, tc.wantPhone, resp.Values["phone"])

			var codes []validation.Code
			for _, e := range resp.Result.Errors {
				codes = append(codes, e.Code)
			}
			assert.Equal(t, tc.codes, codes)
		})
	}
}

const orderDoc = `{
  "name": "order",
  "fields": {
    "items": {
      "type": "repeater", "label": "Items",
      "fields": {
        "gift": {"type": "boolean", "label": "Gift"},
        "note": {
          "type": "text", "label": "Note", "required": true,
          "conditional": {"field": "gift", "operator": "==", "value": true}
        }
      }
    }
  }
}`

func TestValidateFormClearsNestedHiddenValues(t *testing.T) {
	t.Parallel()

	doc, err := loader.Decode(loader.FormatJSON, "", []byte(orderDoc))
	require.NoError(t, err)
	srv, err := New(loader.NewCatalog([]schema.Document{doc}))
	require.NoError(t, err)

	body := `{"items": [{"gift": false, "note": "stale"}, {"gift": true, "note": "for Ada"}, {"gift": true}]}`
	rec := do(t, srv, http.MethodPost, "/forms/order/validate", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []any{
		map[string]any{"gift": false, "note": nil},
		map[string]any{"gift": true, "note": "for Ada"},
		map[string]any{"gift": true},
	}, resp.Values["items"])
	require.Len(t, resp.Result.Errors, 1)
	assert.Equal(t, "Items #3"+validation.PathSeparator+"Note", resp.Result.Errors[0].Field)
	assert.Equal(t, validation.CodeRequired, resp.Result.Errors[0].Code)
}

func TestResolveVisibility(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(t), http.MethodPost, "/forms/contact/visibility", `{"callMe": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp VisibilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, map[string]bool{"email": true, "callMe": true, "phone": true}, resp.Visible)
}

func TestRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	for _, target := range []string{"/forms/contact/validate", "/forms/contact/visibility"} {
		rec := do(t, srv, http.MethodPost, target, `[1, 2]`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "INVALID_JSON")
	}
}

func TestServesStylesheet(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(t), http.MethodGet, "/assets/slabs.css", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

func TestNewRequiresCatalog(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	assert.Error(t, err)
}
