package handler

import (
	"net/http"
	"testing"

	"github.com/mschot/dbcalm-open-backend/internal/api/dto"
)

func assertBackupIDs(t *testing.T, items []dto.BackupResponse, want []string) {
	t.Helper()
	if len(items) != len(want) {
		t.Errorf("expected %d items, got %d", len(want), len(items))
		for i, item := range items {
			t.Logf("item[%d]: %s - %v", i, item.ID, item.StartTime)
		}
		return
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("item[%d]: expected %s, got %s", i, id, items[i].ID)
		}
	}
}

func TestListBackups(t *testing.T) {
	tests := []struct {
		name           string
		queryString    string
		expectedStatus int
		expectedCount  int
		expectedTotal  int
		expectedIDs    []string
	}{
		{
			name:           "default listing",
			queryString:    "",
			expectedStatus: http.StatusOK,
			expectedCount:  10,
			expectedTotal:  10,
		},
		{
			// Full backups are the rows without a parent.
			name:           "from_backup_id isnull selects full backups",
			queryString:    "?query=from_backup_id|isnull",
			expectedStatus: http.StatusOK,
			expectedCount:  5,
			expectedTotal:  5,
			expectedIDs:    []string{"backup-005", "backup-004", "backup-003", "backup-002", "backup-001"},
		},
		{
			name:           "from_backup_id isnotnull selects incrementals",
			queryString:    "?query=from_backup_id|isnotnull",
			expectedStatus: http.StatusOK,
			expectedCount:  5,
			expectedTotal:  5,
			expectedIDs:    []string{"backup-010", "backup-009", "backup-008", "backup-007", "backup-006"},
		},
		{
			name:           "two-part term is shorthand equality",
			queryString:    "?query=id|backup-003",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
			expectedTotal:  1,
			expectedIDs:    []string{"backup-003"},
		},
		{
			name:           "start_time range",
			queryString:    "?query=start_time|gte|2025-11-05T00:00:00Z,start_time|lte|2025-11-18T23:59:59Z",
			expectedStatus: http.StatusOK,
			expectedCount:  6,
			expectedTotal:  6,
		},
		{
			name:           "order ascending",
			queryString:    "?order=start_time|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  10,
			expectedTotal:  10,
			expectedIDs:    []string{"backup-001", "backup-006", "backup-002", "backup-007", "backup-003", "backup-008", "backup-004", "backup-009", "backup-005", "backup-010"},
		},
		{
			name:           "order descending",
			queryString:    "?order=start_time|desc",
			expectedStatus: http.StatusOK,
			expectedCount:  10,
			expectedTotal:  10,
			expectedIDs:    []string{"backup-010", "backup-005", "backup-009", "backup-004", "backup-008", "backup-003", "backup-007", "backup-002", "backup-006", "backup-001"},
		},
		{
			name:           "first page",
			queryString:    "?page=1&per_page=3&order=start_time|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  3,
			expectedTotal:  10,
			expectedIDs:    []string{"backup-001", "backup-006", "backup-002"},
		},
		{
			name:           "middle page",
			queryString:    "?page=2&per_page=3&order=start_time|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  3,
			expectedTotal:  10,
			expectedIDs:    []string{"backup-007", "backup-003", "backup-008"},
		},
		{
			name:           "partial last page",
			queryString:    "?page=4&per_page=3&order=start_time|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
			expectedTotal:  10,
			expectedIDs:    []string{"backup-010"},
		},
		{
			name:           "filters combine with order",
			queryString:    "?query=from_backup_id|isnull,start_time|gte|2025-11-10T00:00:00Z&order=start_time|asc",
			expectedStatus: http.StatusOK,
			expectedCount:  3,
			expectedTotal:  3,
			expectedIDs:    []string{"backup-003", "backup-004", "backup-005"},
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
			queryString:    "?query=id|invalidop|value",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad order direction",
			queryString:    "?order=start_time|invalid",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			defer env.cleanup()
			env.seedTestData(t)

			w := env.makeRequest(t, "/backups"+tt.queryString)

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

			resp := parseBackupListResponse(t, w)

			if len(resp.Items) != tt.expectedCount {
				t.Errorf("expected %d items, got %d", tt.expectedCount, len(resp.Items))
			}
			if resp.Pagination.Total != tt.expectedTotal {
				t.Errorf("expected total %d, got %d", tt.expectedTotal, resp.Pagination.Total)
			}
			if tt.expectedIDs != nil {
				assertBackupIDs(t, resp.Items, tt.expectedIDs)
			}
		})
	}
}

func TestListBackupsPaginationMetadata(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	env.seedTestData(t)

	w := env.makeRequest(t, "/backups?page=2&per_page=3")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	resp := parseBackupListResponse(t, w)

	if resp.Pagination.Page != 2 {
		t.Errorf("expected page 2, got %d", resp.Pagination.Page)
	}
	if resp.Pagination.PerPage != 3 {
		t.Errorf("expected per_page 3, got %d", resp.Pagination.PerPage)
	}
	if resp.Pagination.Total != 10 {
		t.Errorf("expected total 10, got %d", resp.Pagination.Total)
	}
	if resp.Pagination.TotalPages != 4 {
		t.Errorf("expected 4 total pages, got %d", resp.Pagination.TotalPages)
	}
}

func TestListBackupsDateRangeFiltering(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	env.seedTestData(t)

	// Nov 6-16 covers three fulls and the two incrementals between them;
	// backup-009 on Nov 17 falls just outside.
	w := env.makeRequest(t, "/backups?query=start_time|gte|2025-11-06T00:00:00Z,start_time|lte|2025-11-16T23:59:59Z&order=start_time|asc")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d\nBody: %s", w.Code, w.Body.String())
	}

	resp := parseBackupListResponse(t, w)
	assertBackupIDs(t, resp.Items, []string{"backup-002", "backup-007", "backup-003", "backup-008", "backup-004"})
}
