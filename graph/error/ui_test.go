package grapherror

import (
	"errors"
	"testing"
	"time"
)

func TestGraphError_ToUIMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *GraphError
		want string
	}{
		{
			name: "custom message wins",
			err:  &GraphError{Category: CategoryCompile, UserMessage: "Cycle through A and B"},
			want: "Cycle through A and B",
		},
		{
			name: "validation default",
			err:  &GraphError{Category: CategoryValidation},
			want: defaultMessages[CategoryValidation],
		},
		{
			name: "raid default",
			err:  &GraphError{Category: CategoryRaid},
			want: defaultMessages[CategoryRaid],
		},
		{
			name: "unknown category",
			err:  &GraphError{Category: Category("mystery")},
			want: "An error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.ToUIMessage(); got != tt.want {
				t.Errorf("ToUIMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGraphError_ToResponse(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("compile error echoes cause", func(t *testing.T) {
		ge := &GraphError{
			Err:         errors.New("node a revisited"),
			Category:    CategoryCompile,
			Subcategory: SubcategoryCompileCycle,
			Context:     map[string]interface{}{"graph_id": "g-1"},
			Timestamp:   ts,
		}
		r := ge.ToResponse()
		if r.Error != "node a revisited" {
			t.Errorf("Error = %q", r.Error)
		}
		if r.Subcategory != SubcategoryCompileCycle {
			t.Errorf("Subcategory = %q", r.Subcategory)
		}
		if r.Timestamp != "2026-03-01T12:00:00Z" {
			t.Errorf("Timestamp = %q", r.Timestamp)
		}
		if r.Context["graph_id"] != "g-1" {
			t.Errorf("Context = %v", r.Context)
		}
	})

	t.Run("storage error hides cause", func(t *testing.T) {
		ge := &GraphError{
			Err:       errors.New("database is locked: /var/lib/devtycoon.db"),
			Category:  CategoryStorage,
			Timestamp: ts,
		}
		r := ge.ToResponse()
		if r.Error != defaultMessages[CategoryStorage] {
			t.Errorf("Error = %q, want the generic message", r.Error)
		}
		if r.Context != nil {
			t.Errorf("Context = %v, want nil", r.Context)
		}
	})
}

func TestGraphError_ToMeta(t *testing.T) {
	ge := New(CategoryValidation, errors.New("bad"), "").
		WithSubcategory(SubcategoryValidationStructure).
		WithContext("issues", 2)

	meta := ge.ToMeta()
	for _, key := range []string{"error", "category", "description", "subcategory", "context"} {
		if _, ok := meta[key]; !ok {
			t.Errorf("ToMeta() missing key %q", key)
		}
	}
	if meta["category"] != "validation" {
		t.Errorf("category = %q", meta["category"])
	}
}

func TestGraphError_ToLogFields(t *testing.T) {
	tests := []struct {
		name           string
		err            *GraphError
		wantFieldCount int
		checkFields    map[string]interface{}
	}{
		{
			name: "basic error without subcategory or context",
			err: &GraphError{
				Err:         errors.New("connection failed"),
				Category:    CategoryWebSocket,
				UserMessage: "Connection lost",
			},
			wantFieldCount: 6,
			checkFields: map[string]interface{}{
				"error_category": CategoryWebSocket,
				"error_message":  "connection failed",
				"user_message":   "Connection lost",
			},
		},
		{
			name: "error with subcategory and context",
			err: &GraphError{
				Err:         errors.New("room full"),
				Category:    CategoryRaid,
				Subcategory: SubcategoryRaidFull,
				Context:     map[string]interface{}{"raid_id": "r9"},
			},
			wantFieldCount: 10,
			checkFields: map[string]interface{}{
				"error_subcategory": SubcategoryRaidFull,
				"raid_id":           "r9",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := tt.err.ToLogFields()
			if len(fields) != tt.wantFieldCount {
				t.Fatalf("ToLogFields() returned %d fields, want %d", len(fields), tt.wantFieldCount)
			}
			got := make(map[string]interface{})
			for i := 0; i < len(fields); i += 2 {
				got[fields[i].(string)] = fields[i+1]
			}
			for k, want := range tt.checkFields {
				if got[k] != want {
					t.Errorf("field %q = %v, want %v", k, got[k], want)
				}
			}
		})
	}
}
