package handler

import (
	"bytes"
	"encoding/csv"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	appI18n "github.com/pavelanni/gradesheet/internal/i18n"
	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/session"
)

const studentsCSV = "Name,Timestamp,UniversityID,Email,Q1,Q2,Q3\n" +
	"Alice,2025-02-01 09:00,U1,alice@example.edu,A,B,C\n" +
	"Bob,2025-02-01 09:05,U2,bob@example.edu,D,,C\n"

func newTestServer(t *testing.T, opts ...session.Option) (*httptest.Server, *session.Session) {
	t.Helper()
	if err := appI18n.Init("en"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}
	s := session.New(opts...)
	h, err := New(s, model.ServerConfig{Addr: ":0", Lang: "en", MaxUploadBytes: 1 << 20})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := chi.NewRouter()
	r.Use(appI18n.Middleware("en"))
	h.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, s
}

func noRedirectClient() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func upload(t *testing.T, srv *httptest.Server, name, content string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte(content))
	mw.Close()

	resp, err := noRedirectClient().Post(srv.URL+"/upload", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST /upload: %v", err)
	}
	return resp
}

func keyForm(letters string) url.Values {
	form := url.Values{}
	for i, r := range letters {
		form.Set("correct"+strconv.Itoa(i+1), string(r))
	}
	return form
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return buf.String()
}

func TestExportBeforeEvaluation(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, format := range []string{"csv", "xlsx", "print", "json"} {
		resp, err := http.Get(srv.URL + "/export/" + format)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		body := readBody(t, resp)
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("%s: status %d, want 409", format, resp.StatusCode)
		}
		if !strings.Contains(body, "No results to export") {
			t.Errorf("%s: body %q", format, body)
		}
	}
}

func TestUnknownExportFormat(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/export/pdf")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status %d, want 404", resp.StatusCode)
	}
}

func TestEvaluateWithoutUpload(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.PostForm(srv.URL+"/evaluate", keyForm(strings.Repeat("A", 25)))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(body, "Please upload the Excel file first.") {
		t.Error("expected upload notice")
	}
}

func TestUploadRejectsGarbage(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := upload(t, srv, "responses.xlsx", "definitely not a workbook")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(body, "Could not read the uploaded file") {
		t.Error("expected upload failure notice")
	}
}

func TestGradingFlow(t *testing.T) {
	srv, s := newTestServer(t)
	client := noRedirectClient()

	resp := upload(t, srv, "class.csv", studentsCSV)
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("upload status %d, want 303", resp.StatusCode)
	}
	if name, n := s.Source(); name != "class.csv" || n != 2 {
		t.Fatalf("Source = %q, %d", name, n)
	}

	// Invalid key names the question and keeps results empty.
	bad := keyForm("ABCD" + "E" + strings.Repeat("A", 20))
	resp, err := client.PostForm(srv.URL+"/evaluate", bad)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(body, "for Question 5") {
		t.Error("expected notice naming question 5")
	}

	resp, err = client.PostForm(srv.URL+"/evaluate", keyForm("ABC"+strings.Repeat("D", 22)))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("evaluate status %d, want 303", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body = readBody(t, resp)
	for _, want := range []string{"Total Students", "Alice", "3/25", "12%", "Pass Rate", "0/2"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	resp, err = http.Get(srv.URL + "/export/csv")
	if err != nil {
		t.Fatalf("GET csv: %v", err)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.HasPrefix(got, `attachment; filename="evaluation_results_`) || !strings.HasSuffix(got, `.csv"`) {
		t.Errorf("Content-Disposition = %q", got)
	}
	rows, err := csv.NewReader(strings.NewReader(readBody(t, resp))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "Alice" || rows[1][4] != "3" || rows[1][5] != "12%" || rows[2][4] != "1" {
		t.Errorf("unexpected csv rows %v", rows[1:])
	}

	resp, err = http.Get(srv.URL + "/export/print")
	if err != nil {
		t.Fatalf("GET print: %v", err)
	}
	body = readBody(t, resp)
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") || !strings.Contains(body, "window.print()") {
		t.Error("expected printable html document")
	}

	resp, err = http.Get(srv.URL + "/export/xlsx")
	if err != nil {
		t.Fatalf("GET xlsx: %v", err)
	}
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(body, "PK") {
		t.Errorf("xlsx status %d", resp.StatusCode)
	}
}

func TestKeyHelpers(t *testing.T) {
	srv, s := newTestServer(t)
	client := noRedirectClient()

	resp, err := client.PostForm(srv.URL+"/key/fill", url.Values{"answer": {"b"}})
	if err != nil {
		t.Fatalf("POST fill: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("fill status %d", resp.StatusCode)
	}
	if s.DraftKey()[24] != "B" {
		t.Errorf("draft[24] = %q, want B", s.DraftKey()[24])
	}

	resp, err = http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	if body := readBody(t, resp); !strings.Contains(body, `name="correct25" value="B"`) {
		t.Error("expected filled key in form")
	}

	resp, err = client.PostForm(srv.URL+"/key/clear", nil)
	if err != nil {
		t.Fatalf("POST clear: %v", err)
	}
	resp.Body.Close()
	if s.DraftKey()[0] != "" {
		t.Error("expected cleared key")
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK || body != "ok\n" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestExportUsesEvaluationTime(t *testing.T) {
	at := time.Date(2024, 3, 9, 8, 15, 0, 0, time.UTC)
	srv, _ := newTestServer(t, session.WithClock(func() time.Time { return at }))

	upload(t, srv, "class.csv", studentsCSV).Body.Close()
	resp, err := noRedirectClient().PostForm(srv.URL+"/evaluate", keyForm(strings.Repeat("A", 25)))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()

	tests := []struct {
		format      string
		disposition string
	}{
		{"csv", `attachment; filename="evaluation_results_2024-03-09.csv"`},
		{"json", `attachment; filename="evaluation_results_2024-03-09.json"`},
		{"print", `inline; filename="evaluation_results_2024-03-09.html"`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/export/" + tt.format)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			body := readBody(t, resp)
			if got := resp.Header.Get("Content-Disposition"); got != tt.disposition {
				t.Errorf("Content-Disposition = %q, want %q", got, tt.disposition)
			}
			if tt.format == "print" && !strings.Contains(body, "Generated on: 2024-03-09 08:15:00") {
				t.Error("print document should carry the evaluation time")
			}
		})
	}
}

func TestUploadRejectsLegacyWorkbook(t *testing.T) {
	srv, s := newTestServer(t)
	resp := upload(t, srv, "class.xls", "\xd0\xcf\x11\xe0")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(body, ".xls workbooks are not supported") {
		t.Error("expected a notice explaining that .xls is unsupported")
	}
	if name, _ := s.Source(); name != "" {
		t.Errorf("rejected upload should not replace the source, got %q", name)
	}
}
