package dice

// Roll evaluates an Expression using the given Source and returns a RollResult.
//
// Precondition: expr must come from Parse (Count >= 1, Sides >= 2); src must be non-nil.
// Postcondition: len(result.Values) == expr.Count;
//
//	result.Natural == sum(result.Values); result.Bonus == expr.Modifier;
//	result.Result() == result.Natural + result.Bonus.
func Roll(expr Expression, src Source) (RollResult, error) {
	values := make([]int, expr.Count)
	natural := 0
	for i := range values {
		values[i] = src.Intn(expr.Sides) + 1
		natural += values[i]
	}

	return RollResult{
		Expression: expr.Raw,
		Values:     values,
		Natural:    natural,
		Bonus:      expr.Modifier,
	}, nil
}

// RollExpr parses expr and rolls it using src in a single call.
//
// Precondition: expr must be a valid dice expression string; src must be non-nil.
// Postcondition: Returns a RollResult or a parse error.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src)
}

// MustParse parses expr and panics on error. Useful for package-level constants.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}
