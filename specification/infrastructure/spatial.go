package specification

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/krew-solutions/predicate-go/specification/domain/operators"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OperatorIntersects is a spatial extension operator, not part of the core
// catalog: it must be registered explicitly into a custom registry.
const OperatorIntersects operators.Operator = "intersects"

// RegisterIntersects adds the relational backend for OperatorIntersects:
// an ST_Intersects call against a geometry literal built from the GeoJSON
// operand. Chainable.
func RegisterIntersects(reg *operators.Registry) *operators.Registry {
	return reg.Register(OperatorIntersects, operators.Entry{
		Kind: operators.KindScalar,
		SQL:  sqlIntersects,
	})
}

func sqlIntersects(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	geo, ok := operand.(string)
	if !ok {
		b, err := json.Marshal(operand)
		if err != nil {
			return nil, errors.Wrap(err, "intersects operand is not GeoJSON-serializable")
		}
		geo = string(b)
	}
	return goqu.L("ST_Intersects(?, ST_GeomFromGeoJSON(?))", col, geo), nil
}
