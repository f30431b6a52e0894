package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/aerogramlab/aerogram/pkg/pipeline"
	"github.com/aerogramlab/aerogram/pkg/store"
)

func testServer(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	srv := httptest.NewServer(NewServer(runner, st, logger).Router())
	t.Cleanup(srv.Close)
	return srv
}

const requestBody = `{
  "station": "KOUN",
  "time": "2024-05-20T00:00:00Z",
  "levels": [
    {"pressure": 1000, "height": 110, "temperature": 30, "dewpoint": 22, "u_wind": 2, "v_wind": 2},
    {"pressure": 925, "height": 780, "temperature": 26, "dewpoint": 18, "u_wind": 5, "v_wind": 5},
    {"pressure": 850, "height": 1500, "temperature": 20, "dewpoint": 14, "u_wind": 10, "v_wind": 5},
    {"pressure": 700, "height": 3100, "temperature": 5, "dewpoint": -2, "u_wind": 15, "v_wind": 0},
    {"pressure": 500, "height": 5800, "temperature": -15, "dewpoint": -25, "u_wind": 25, "v_wind": -5},
    {"pressure": 300, "height": 9500, "temperature": -45, "dewpoint": -60, "u_wind": 35, "v_wind": -10}
  ],
  "options": {"samples": 30}
}`

func TestHealthz(t *testing.T) {
	srv := testServer(t, nil)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestComputeDiagram(t *testing.T) {
	srv := testServer(t, nil)

	resp, err := http.Post(srv.URL+"/v1/diagram", "application/json", strings.NewReader(requestBody))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body: %s", resp.StatusCode, body)
	}

	var doc struct {
		ID      string `json:"id"`
		Diagram struct {
			Station string  `json:"station"`
			CAPE    float64 `json:"cape"`
			Barbs   []any   `json:"barbs"`
		} `json:"diagram"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if doc.ID == "" {
		t.Error("response has no document ID")
	}
	if doc.Diagram.Station != "KOUN" {
		t.Errorf("station = %q, want KOUN", doc.Diagram.Station)
	}
	if doc.Diagram.CAPE <= 0 {
		t.Errorf("cape = %v, want > 0", doc.Diagram.CAPE)
	}
	if len(doc.Diagram.Barbs) == 0 {
		t.Error("response has no barbs")
	}
}

func TestComputeDiagramCSV(t *testing.T) {
	srv := testServer(t, nil)

	csvBody := "pressure,height,temperature,dewpoint,u_wind,v_wind\n" +
		"1000,110,30,22,2,2\n925,780,26,18,5,5\n850,1500,20,14,10,5\n" +
		"700,3100,5,-2,15,0\n500,5800,-15,-25,25,-5\n300,9500,-45,-60,35,-10\n"

	resp, err := http.Post(srv.URL+"/v1/diagram/csv?station=KDDC&rotation=30", "text/csv", strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body: %s", resp.StatusCode, body)
	}

	var doc struct {
		Diagram struct {
			Station string `json:"station"`
			Config  struct {
				RotationDegrees float64 `json:"rotation_degrees"`
			} `json:"config"`
		} `json:"diagram"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if doc.Diagram.Station != "KDDC" {
		t.Errorf("station = %q, want KDDC", doc.Diagram.Station)
	}
	if doc.Diagram.Config.RotationDegrees != 30 {
		t.Errorf("rotation = %v, want 30", doc.Diagram.Config.RotationDegrees)
	}
}

func TestComputeDiagramBadInput(t *testing.T) {
	srv := testServer(t, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "malformed JSON",
			body: `{"levels": [`,
			want: http.StatusBadRequest,
		},
		{
			name: "dewpoint above temperature",
			body: `{"station":"X","levels":[
				{"pressure":1000,"temperature":10,"dewpoint":20},
				{"pressure":850,"temperature":5,"dewpoint":0}],"options":{}}`,
			want: http.StatusBadRequest,
		},
		{
			name: "single level",
			body: `{"station":"X","levels":[{"pressure":1000,"temperature":10,"dewpoint":5}],"options":{}}`,
			want: http.StatusBadRequest,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/diagram", "application/json", strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("POST error: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.want {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("status = %d, want %d, body: %s", resp.StatusCode, tc.want, body)
			}
			var e struct {
				Error string `json:"error"`
				Code  string `json:"code"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
				t.Fatalf("error body not JSON: %v", err)
			}
			if e.Error == "" {
				t.Error("error body has no message")
			}
		})
	}
}

func TestArchiveFlow(t *testing.T) {
	st := store.NewMemoryStore()
	srv := testServer(t, st)

	// Compute once; it should land in the archive.
	resp, err := http.Post(srv.URL+"/v1/diagram", "application/json", strings.NewReader(requestBody))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	var doc struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	resp.Body.Close()

	// List
	resp, err = http.Get(srv.URL + "/v1/diagrams?station=KOUN")
	if err != nil {
		t.Fatalf("GET list error: %v", err)
	}
	var list struct {
		Diagrams []store.Entry `json:"diagrams"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	resp.Body.Close()
	if len(list.Diagrams) != 1 || list.Diagrams[0].ID != doc.ID {
		t.Fatalf("list = %+v, want the archived entry %s", list.Diagrams, doc.ID)
	}
	if list.Diagrams[0].CAPE <= 0 {
		t.Error("archived entry should carry CAPE")
	}

	// Fetch the stored document.
	resp, err = http.Get(srv.URL + "/v1/diagrams/" + doc.ID)
	if err != nil {
		t.Fatalf("GET entry error: %v", err)
	}
	stored, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body: %s", resp.StatusCode, stored)
	}
	if !bytes.Contains(stored, []byte(`"diagram"`)) {
		t.Error("stored document missing diagram payload")
	}

	// Delete, then the entry is gone.
	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/diagrams/"+doc.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/diagrams/" + doc.ID)
	if err != nil {
		t.Fatalf("GET after delete error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", resp.StatusCode)
	}
}

func TestArchiveDisabled(t *testing.T) {
	srv := testServer(t, nil)
	resp, err := http.Get(srv.URL + "/v1/diagrams")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when no archive is configured", resp.StatusCode)
	}
}
