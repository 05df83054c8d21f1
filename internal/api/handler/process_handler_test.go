package handler

import (
	"net/http"
	"testing"
)

func TestListProcesses(t *testing.T) {
	tests := []struct {
		name           string
		queryString    string
		expectedStatus int
		expectedCount  int
		expectedTotal  int
	}{
		{
			name:           "default listing",
			queryString:    "",
			expectedStatus: http.StatusOK,
			expectedCount:  10,
			expectedTotal:  10,
		},
		{
			name:           "status success",
			queryString:    "?query=status|success",
			expectedStatus: http.StatusOK,
			expectedCount:  8,
			expectedTotal:  8,
		},
		{
			name:           "status running",
			queryString:    "?query=status|running",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
			expectedTotal:  1,
		},
		{
			name:           "status failed",
			queryString:    "?query=status|failed",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
			expectedTotal:  1,
		},
		{
			name:           "type backup",
			queryString:    "?query=type|backup",
			expectedStatus: http.StatusOK,
			expectedCount:  7,
			expectedTotal:  7,
		},
		{
			name:           "type restore",
			queryString:    "?query=type|restore",
			expectedStatus: http.StatusOK,
			expectedCount:  2,
			expectedTotal:  2,
		},
		{
			name:           "type cleanup_backups",
			queryString:    "?query=type|cleanup_backups",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
			expectedTotal:  1,
		},
		{
			// Processes are seeded at 2-3 day intervals; four land in
			// this window.
			name:           "start_time range",
			queryString:    "?query=start_time|gte|2025-11-05T00:00:00Z,start_time|lte|2025-11-15T23:59:59Z",
			expectedStatus: http.StatusOK,
			expectedCount:  4,
			expectedTotal:  4,
		},
		{
			name:           "order by start_time ascending",
			queryString:    "?order=start_time|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  10,
			expectedTotal:  10,
		},
		{
			name:           "order by start_time descending",
			queryString:    "?order=start_time|desc",
			expectedStatus: http.StatusOK,
			expectedCount:  10,
			expectedTotal:  10,
		},
		{
			name:           "order by status",
			queryString:    "?order=status|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  10,
			expectedTotal:  10,
		},
		{
			name:           "first page",
			queryString:    "?page=1&per_page=3&order=start_time|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  3,
			expectedTotal:  10,
		},
		{
			name:           "middle page",
			queryString:    "?page=2&per_page=3&order=start_time|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  3,
			expectedTotal:  10,
		},
		{
			name:           "partial last page",
			queryString:    "?page=4&per_page=3&order=start_time|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
			expectedTotal:  10,
		},
		{
			name:           "successful backups",
			queryString:    "?query=type|backup,status|success&order=start_time|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  6,
			expectedTotal:  6,
		},
		{
			name:           "restores in date range",
			queryString:    "?query=type|restore,start_time|gte|2025-11-01T00:00:00Z&order=start_time|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  2,
			expectedTotal:  2,
		},
		{
			name:           "end_time isnull selects still-running",
			queryString:    "?query=end_time|isnull",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
			expectedTotal:  1,
		},
		{
			name:           "end_time isnotnull selects finished",
			queryString:    "?query=end_time|isnotnull",
			expectedStatus: http.StatusOK,
			expectedCount:  9,
			expectedTotal:  9,
		},
		{
			name:           "field outside allow-list",
			queryString:    "?query=invalid_field|value",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "order field outside allow-list",
			queryString:    "?order=invalid_field|desc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown operator",
			queryString:    "?query=status|invalidop|value",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			defer env.cleanup()
			env.seedTestData(t)

			w := env.makeRequest(t, "/processes"+tt.queryString)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d\nBody: %s", tt.expectedStatus, w.Code, w.Body.String())
				return
			}

			if tt.expectedStatus != http.StatusOK {
				errResp := parseErrorResponse(t, w)
				if errResp.Code != tt.expectedStatus {
					t.Errorf("expected error code %d, got %d", tt.expectedStatus, errResp.Code)
				}
				return
			}

			resp := parseProcessListResponse(t, w)

			if len(resp.Items) != tt.expectedCount {
				t.Errorf("expected %d items, got %d", tt.expectedCount, len(resp.Items))
			}
			if resp.Pagination.Total != tt.expectedTotal {
				t.Errorf("expected total %d, got %d", tt.expectedTotal, resp.Pagination.Total)
			}
		})
	}
}

func TestListProcessesPaginationMetadata(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	env.seedTestData(t)

	w := env.makeRequest(t, "/processes?page=2&per_page=4")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	resp := parseProcessListResponse(t, w)

	if resp.Pagination.Page != 2 {
		t.Errorf("expected page 2, got %d", resp.Pagination.Page)
	}
	if resp.Pagination.PerPage != 4 {
		t.Errorf("expected per_page 4, got %d", resp.Pagination.PerPage)
	}
	if resp.Pagination.Total != 10 {
		t.Errorf("expected total 10, got %d", resp.Pagination.Total)
	}
	if resp.Pagination.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", resp.Pagination.TotalPages)
	}
}

func TestListProcessesStatusFiltering(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	env.seedTestData(t)

	w := env.makeRequest(t, "/processes?query=status|success&order=start_time|asc")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d\nBody: %s", w.Code, w.Body.String())
	}

	resp := parseProcessListResponse(t, w)
	for i, item := range resp.Items {
		if item.Status != "success" {
			t.Errorf("item[%d]: expected status success, got %s", i, item.Status)
		}
	}
}

func TestListProcessesTypeFiltering(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	env.seedTestData(t)

	w := env.makeRequest(t, "/processes?query=type|backup&order=start_time|asc")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d\nBody: %s", w.Code, w.Body.String())
	}

	resp := parseProcessListResponse(t, w)
	for i, item := range resp.Items {
		if item.Type != "backup" {
			t.Errorf("item[%d]: expected type backup, got %s", i, item.Type)
		}
	}
}

func TestListProcessesCombinedFiltering(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	env.seedTestData(t)

	w := env.makeRequest(t, "/processes?query=type|backup,status|running")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d\nBody: %s", w.Code, w.Body.String())
	}

	resp := parseProcessListResponse(t, w)

	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 running backup process, got %d", len(resp.Items))
	}
	if resp.Items[0].Type != "backup" {
		t.Errorf("expected type backup, got %s", resp.Items[0].Type)
	}
	if resp.Items[0].Status != "running" {
		t.Errorf("expected status running, got %s", resp.Items[0].Status)
	}
}
