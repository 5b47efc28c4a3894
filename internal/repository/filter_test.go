package repository

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/Masterminds/squirrel"
)

func toSQL(t *testing.T, conds []squirrel.Sqlizer) (string, []any) {
	t.Helper()
	sql, args, err := squirrel.And(conds).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	return sql, args
}

func TestBuildConditions(t *testing.T) {
	tests := []struct {
		name     string
		params   map[string]string
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "range on feature",
			params:   map[string]string{"Spoilage_Risk_Score_gt": "0.5"},
			wantSQL:  "(p.spoilage_risk_score > ?)",
			wantArgs: []any{0.5},
		},
		{
			name:     "equality on prediction label",
			params:   map[string]string{"spoilage_risk": "High"},
			wantSQL:  "(pr.spoilage_risk = ?)",
			wantArgs: []any{"High"},
		},
		{
			name:     "bool and upper bound",
			params:   map[string]string{"trigger_markdown": "true", "days_to_expiry_pred_lt": "3"},
			wantSQL:  "(pr.days_to_expiry_pred < ? AND pr.trigger_markdown = ?)",
			wantArgs: []any{3.0, true},
		},
		{
			name:     "category equality",
			params:   map[string]string{"category": "dairy"},
			wantSQL:  "(p.category = ?)",
			wantArgs: []any{"dairy"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conds, ignored, err := BuildConditions(tt.params)
			if err != nil {
				t.Fatalf("BuildConditions: %v", err)
			}
			if len(ignored) != 0 {
				t.Errorf("ignored = %v", ignored)
			}
			sql, args := toSQL(t, conds)
			if sql != tt.wantSQL {
				t.Errorf("sql = %q, want %q", sql, tt.wantSQL)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %#v, want %#v", args, tt.wantArgs)
			}
		})
	}
}

func TestBuildConditionsIgnoresUnknownKeys(t *testing.T) {
	conds, ignored, err := BuildConditions(map[string]string{
		"color":             "red",
		"Unknown_Field_gt":  "1",
		"dead_stock_gt":     "true",
		"Overstock_Risk_lt": "0.2",
	})
	if err != nil {
		t.Fatalf("BuildConditions: %v", err)
	}
	if len(conds) != 1 {
		t.Errorf("len(conds) = %d, want 1", len(conds))
	}
	want := []string{"Unknown_Field_gt", "color", "dead_stock_gt"}
	if !reflect.DeepEqual(ignored, want) {
		t.Errorf("ignored = %v, want %v", ignored, want)
	}
}

func TestBuildConditionsRejectsBadValue(t *testing.T) {
	_, _, err := BuildConditions(map[string]string{"Overstock_Risk_gt": "lots"})
	var fe *FilterValueError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FilterValueError, got %v", err)
	}
	if !strings.Contains(fe.Error(), "Overstock_Risk_gt") {
		t.Errorf("error should name the parameter: %v", fe)
	}
}
