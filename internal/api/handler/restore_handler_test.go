package handler

import (
	"net/http"
	"testing"
)

func TestListRestores(t *testing.T) {
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
			expectedCount:  5,
			expectedTotal:  5,
		},
		{
			name:           "filter by backup_id",
			queryString:    "?query=backup_id|backup-001",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
			expectedTotal:  1,
		},
		{
			name:           "database-target restores",
			queryString:    "?query=target|database",
			expectedStatus: http.StatusOK,
			expectedCount:  3,
			expectedTotal:  3,
		},
		{
			name:           "folder-target restores",
			queryString:    "?query=target|folder",
			expectedStatus: http.StatusOK,
			expectedCount:  2,
			expectedTotal:  2,
		},
		{
			// Seeded restores run every 5 days from Nov 4; two land in
			// this window.
			name:           "start_time range",
			queryString:    "?query=start_time|gte|2025-11-05T00:00:00Z,start_time|lte|2025-11-15T23:59:59Z",
			expectedStatus: http.StatusOK,
			expectedCount:  2,
			expectedTotal:  2,
		},
		{
			name:           "order ascending",
			queryString:    "?order=start_time|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  5,
			expectedTotal:  5,
		},
		{
			name:           "order descending",
			queryString:    "?order=start_time|desc",
			expectedStatus: http.StatusOK,
			expectedCount:  5,
			expectedTotal:  5,
		},
		{
			name:           "first page",
			queryString:    "?page=1&per_page=2&order=start_time|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  2,
			expectedTotal:  5,
		},
		{
			name:           "middle page",
			queryString:    "?page=2&per_page=2&order=start_time|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  2,
			expectedTotal:  5,
		},
		{
			name:           "partial last page",
			queryString:    "?page=3&per_page=2&order=start_time|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
			expectedTotal:  5,
		},
		{
			name:           "target filter combines with date range",
			queryString:    "?query=target|database,start_time|gte|2025-11-10T00:00:00Z&order=start_time|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  2,
			expectedTotal:  2,
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
			queryString:    "?query=backup_id|invalidop|value",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			defer env.cleanup()
			env.seedTestData(t)

			w := env.makeRequest(t, "/restores"+tt.queryString)

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

			resp := parseRestoreListResponse(t, w)

			if len(resp.Items) != tt.expectedCount {
				t.Errorf("expected %d items, got %d", tt.expectedCount, len(resp.Items))
			}
			if resp.Pagination.Total != tt.expectedTotal {
				t.Errorf("expected total %d, got %d", tt.expectedTotal, resp.Pagination.Total)
			}
		})
	}
}

func TestListRestoresPaginationMetadata(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	env.seedTestData(t)

	w := env.makeRequest(t, "/restores?page=2&per_page=2")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	resp := parseRestoreListResponse(t, w)

	if resp.Pagination.Page != 2 {
		t.Errorf("expected page 2, got %d", resp.Pagination.Page)
	}
	if resp.Pagination.PerPage != 2 {
		t.Errorf("expected per_page 2, got %d", resp.Pagination.PerPage)
	}
	if resp.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", resp.Pagination.Total)
	}
	if resp.Pagination.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", resp.Pagination.TotalPages)
	}
}

func TestListRestoresTargetFiltering(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	env.seedTestData(t)

	w := env.makeRequest(t, "/restores?query=target|database&order=start_time|asc")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d\nBody: %s", w.Code, w.Body.String())
	}

	resp := parseRestoreListResponse(t, w)

	if len(resp.Items) != 3 {
		t.Errorf("expected 3 database restores, got %d", len(resp.Items))
	}
	for i, item := range resp.Items {
		if item.Target != "database" {
			t.Errorf("item[%d]: expected target database, got %s", i, item.Target)
		}
	}
}

func TestListRestoresBackupIDFiltering(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	env.seedTestData(t)

	w := env.makeRequest(t, "/restores?query=backup_id|backup-003")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d\nBody: %s", w.Code, w.Body.String())
	}

	resp := parseRestoreListResponse(t, w)

	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 restore for backup-003, got %d", len(resp.Items))
	}
	if resp.Items[0].BackupID != "backup-003" {
		t.Errorf("expected backup_id backup-003, got %s", resp.Items[0].BackupID)
	}
}
