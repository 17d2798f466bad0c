package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/shipgen/shipctl/pkg/models"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestUploadFile_SendsMultipartForm(t *testing.T) {
	var gotPath string
	var gotFile, gotAvailability, gotUsePlanta, gotSkipPlacas string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if f, header, err := r.FormFile("file"); err == nil {
			data, _ := io.ReadAll(f)
			f.Close()
			gotFile = header.Filename + ":" + string(data)
		}
		if f, header, err := r.FormFile("availability_file"); err == nil {
			f.Close()
			gotAvailability = header.Filename
		}
		gotUsePlanta = r.FormValue("use_planta_as_origen")
		gotSkipPlacas = r.FormValue("skip_placas")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"job_id":"j1","status":"processing","message":"Archivo subido","filename":"consolidado.xlsx"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.UploadFile(context.Background(), UploadRequest{
		FilePath:         writeTempFile(t, "consolidado.xlsx", "primary-bytes"),
		AvailabilityPath: writeTempFile(t, "Disponibilidad de Camiones 01-08.xlsx", "availability-bytes"),
		Options: models.ProcessingOptions{
			UsePlantaAsOrigen: true,
			SkipPlacas:        false,
		},
	})
	if err != nil {
		t.Fatalf("UploadFile returned error: %v", err)
	}

	if gotPath != "/api/upload-file" {
		t.Errorf("expected path /api/upload-file, got %s", gotPath)
	}
	if gotFile != "consolidado.xlsx:primary-bytes" {
		t.Errorf("unexpected primary file part: %s", gotFile)
	}
	if gotAvailability != "Disponibilidad de Camiones 01-08.xlsx" {
		t.Errorf("unexpected availability part: %s", gotAvailability)
	}
	if gotUsePlanta != "true" {
		t.Errorf("expected use_planta_as_origen=true, got %q", gotUsePlanta)
	}
	if gotSkipPlacas != "false" {
		t.Errorf("expected skip_placas=false, got %q", gotSkipPlacas)
	}
	if resp.JobID != "j1" || resp.Status != models.StatusProcessing {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestUploadFile_ParsesServerDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Solo se permiten archivos Excel (.xlsx, .xlsm, .xls)"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.UploadFile(context.Background(), UploadRequest{
		FilePath: writeTempFile(t, "datos.csv", "a,b"),
	})
	if err == nil {
		t.Fatal("expected error for rejected upload")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", statusErr.StatusCode)
	}
	if statusErr.Detail != "Solo se permiten archivos Excel (.xlsx, .xlsm, .xls)" {
		t.Errorf("unexpected detail: %q", statusErr.Detail)
	}
}

func TestGetJob_DecodesServerFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/job/j1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"job_id": "j1",
			"status": "completed",
			"progress": 100,
			"message": "Procesamiento completado exitosamente",
			"result_files": ["outputs/j1/shipment_j1.xml", "outputs/j1/placas.xlsx"],
			"validation_stats": {"validated": 42}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	job, err := client.GetJob(context.Background(), "j1")
	if err != nil {
		t.Fatalf("GetJob returned error: %v", err)
	}

	if job.Status != models.StatusCompleted || job.Progress != 100 {
		t.Errorf("unexpected job state: %+v", job)
	}
	if len(job.ResultFiles) != 2 || job.ResultFiles[0] != "outputs/j1/shipment_j1.xml" {
		t.Errorf("unexpected result files: %v", job.ResultFiles)
	}
	if job.ValidationStats["validated"] != float64(42) {
		t.Errorf("unexpected validation stats: %v", job.ValidationStats)
	}
}

func TestListJobs_SendsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/jobs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "5" {
			t.Errorf("expected limit=5, got %s", r.URL.Query().Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jobs":[{"job_id":"j1","status":"pending"}],"total":7}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	list, err := client.ListJobs(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListJobs returned error: %v", err)
	}
	if list.Total != 7 || len(list.Jobs) != 1 {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestDownload_EscapesPathSegments(t *testing.T) {
	var gotURI string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		w.Write([]byte("binary-bytes"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	body, err := client.Download(context.Background(), "outputs/j1/placas validadas.xlsx")
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if string(data) != "binary-bytes" {
		t.Errorf("unexpected body: %q", data)
	}
	if gotURI != "/api/download/outputs/j1/placas%20validadas.xlsx" {
		t.Errorf("unexpected request URI: %s", gotURI)
	}
}

func TestDeleteJob_UsesDeleteMethod(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"message":"Trabajo eliminado exitosamente"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.DeleteJob(context.Background(), "j1"); err != nil {
		t.Fatalf("DeleteJob returned error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/job/j1" {
		t.Errorf("unexpected request: %s %s", gotMethod, gotPath)
	}
}

func TestCleanup_SendsDays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Query().Get("days") != "14" {
			t.Errorf("expected days=14, got %s", r.URL.Query().Get("days"))
		}
		w.Write([]byte(`{"message":"Limpieza completada","jobs_cleaned":3}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.Cleanup(context.Background(), 14)
	if err != nil {
		t.Fatalf("Cleanup returned error: %v", err)
	}
	if result.JobsCleaned != 3 {
		t.Errorf("expected 3 jobs cleaned, got %d", result.JobsCleaned)
	}
}

func TestHealth_DecodesCounters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"healthy","active_jobs":2,"total_jobs":9}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	health, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	if health.Status != "healthy" || health.ActiveJobs != 2 || health.TotalJobs != 9 {
		t.Errorf("unexpected health: %+v", health)
	}
}

func TestClient_SendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetAPIKey("secret")
	if _, err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
}
