package specification

import (
	"strings"
	"testing"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	s "github.com/krew-solutions/predicate-go/specification/domain"
	"github.com/krew-solutions/predicate-go/specification/domain/operators"
)

func TestIntersectsCompilesToSTIntersects(t *testing.T) {
	reg := RegisterIntersects(operators.NewDefaultRegistry())
	region := `{"type": "Polygon", "coordinates": [[[0, 0], [0, 1], [1, 1], [0, 0]]]}`
	node := s.MustAttr("area", OperatorIntersects, region, s.WithRegistry(reg))

	expr, err := CompileRelational(NewModel("zones"), node, PostgresOperators(reg))
	if err != nil {
		t.Fatalf("CompileRelational failed: %v", err)
	}
	sql, _, err := goqu.Dialect("postgres").From("zones").Where(expr).ToSQL()
	if err != nil {
		t.Fatalf("ToSQL failed: %v", err)
	}
	if !strings.Contains(sql, "ST_Intersects(") || !strings.Contains(sql, "ST_GeomFromGeoJSON(") {
		t.Errorf("unexpected SQL: %s", sql)
	}
}

func TestIntersectsMarshalsStructuredOperand(t *testing.T) {
	reg := RegisterIntersects(operators.NewDefaultRegistry())
	entry, _ := reg.Entry(OperatorIntersects)

	expr, err := entry.SQL(goqu.I("zones.area"), map[string]any{"type": "Point", "coordinates": []any{1, 2}})
	if err != nil {
		t.Fatalf("SQL backend failed: %v", err)
	}
	sql, _, err := goqu.Dialect("postgres").From("zones").Where(expr).ToSQL()
	if err != nil {
		t.Fatalf("ToSQL failed: %v", err)
	}
	if !strings.Contains(sql, `"type":"Point"`) {
		t.Errorf("expected serialized GeoJSON literal, got: %s", sql)
	}
}

func TestIntersectsIsNotInTheCoreCatalog(t *testing.T) {
	if operators.Default().Has(OperatorIntersects) {
		t.Error("spatial operators must stay opt-in")
	}
}
